package backtest

import (
	"fmt"
	"strings"

	"github.com/montanaflynn/stats"
	"github.com/olekukonko/tablewriter"

	"github.com/battrading/bat/ledger"
)

// Report is the read-only summary of a trade log. Only completed round
// trips count toward NumTrades and the win statistics; opens without a
// matching close are excluded.
type Report struct {
	Symbol         string
	InitialBalance float64

	NumTrades int
	Wins      int
	Losses    int
	Winrate   float64

	FinalBalance  float64
	NetReturns    float64
	PercentReturn float64

	AvgProfit   float64
	LargestWin  float64
	LargestLoss float64
}

// Analyze aggregates records into a Report. An empty log yields the
// zero result with FinalBalance equal to the initial balance.
func Analyze(symbol string, initialBalance float64, records []ledger.TradeRecord) Report {
	rep := Report{
		Symbol:         symbol,
		InitialBalance: initialBalance,
		FinalBalance:   initialBalance,
	}

	var profits []float64
	for _, rec := range records {
		if !rec.Completed() {
			continue
		}
		rep.NumTrades++
		profits = append(profits, rec.Profit)
		if rec.Result == ledger.ResultWin {
			rep.Wins++
		} else {
			rep.Losses++
		}
	}

	if len(records) > 0 {
		// Keep the headline number consistent with the displayed trade
		// table rather than recomputing from scratch.
		rep.FinalBalance = records[len(records)-1].TotalAccountWorth
	}

	if rep.NumTrades > 0 {
		rep.Winrate = float64(rep.Wins) / float64(rep.NumTrades) * 100

		if mean, err := stats.Mean(profits); err == nil {
			rep.AvgProfit = mean
		}
		if max, err := stats.Max(profits); err == nil {
			rep.LargestWin = max
		}
		if min, err := stats.Min(profits); err == nil {
			rep.LargestLoss = min
		}
	}

	if initialBalance > 0 {
		rep.NetReturns = rep.FinalBalance - initialBalance
		rep.PercentReturn = rep.NetReturns / initialBalance * 100
	}
	return rep
}

func (r Report) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Backtest results for %s:\n", r.Symbol)

	table := tablewriter.NewWriter(&b)
	table.SetHeader([]string{"Metric", "Value"})
	table.SetAlignment(tablewriter.ALIGN_RIGHT)

	table.Append([]string{"Initial Balance", money(r.InitialBalance)})
	table.Append([]string{"Final Balance", money(r.FinalBalance)})
	table.Append([]string{"Net Returns", money(r.NetReturns)})
	table.Append([]string{"Percent Return", fmt.Sprintf("%.2f%%", r.PercentReturn)})
	table.Append([]string{"Trades", fmt.Sprintf("%d", r.NumTrades)})
	table.Append([]string{"Wins / Losses", fmt.Sprintf("%d / %d", r.Wins, r.Losses)})
	table.Append([]string{"Winrate", fmt.Sprintf("%.2f%%", r.Winrate)})
	table.Append([]string{"Avg Profit / Trade", money(r.AvgProfit)})
	table.Append([]string{"Largest Win", money(r.LargestWin)})
	table.Append([]string{"Largest Loss", money(r.LargestLoss)})
	table.Render()

	return b.String()
}

func money(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
