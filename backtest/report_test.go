package backtest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/battrading/bat/ledger"
)

func completed(profit float64) ledger.TradeRecord {
	result := ledger.ResultLoss
	if profit > 0 {
		result = ledger.ResultWin
	}
	return ledger.TradeRecord{Profit: profit, Result: result}
}

func TestAnalyzeStatistics(t *testing.T) {
	t.Parallel()

	records := []ledger.TradeRecord{
		{Result: ledger.ResultOpen},
		completed(500),
		completed(-200),
		{Result: ledger.ResultOpen},
		completed(300),
	}
	records[len(records)-1].TotalAccountWorth = 10_600

	rep := Analyze("AAPL", 10_000, records)
	assert.Equal(t, 3, rep.NumTrades)
	assert.Equal(t, 2, rep.Wins)
	assert.Equal(t, 1, rep.Losses)
	assert.InDelta(t, 66.666, rep.Winrate, 0.01)
	assert.Equal(t, 10_600.0, rep.FinalBalance)
	assert.Equal(t, 600.0, rep.NetReturns)
	assert.Equal(t, 6.0, rep.PercentReturn)
	assert.InDelta(t, 200.0, rep.AvgProfit, 1e-9)
	assert.Equal(t, 500.0, rep.LargestWin)
	assert.Equal(t, -200.0, rep.LargestLoss)
}

func TestAnalyzeOpensOnly(t *testing.T) {
	t.Parallel()

	records := []ledger.TradeRecord{{Result: ledger.ResultOpen, TotalAccountWorth: 10_000}}

	rep := Analyze("AAPL", 10_000, records)
	assert.Zero(t, rep.NumTrades)
	assert.Zero(t, rep.Winrate)
	assert.Zero(t, rep.LargestWin)
	assert.Zero(t, rep.LargestLoss)
	assert.Equal(t, 10_000.0, rep.FinalBalance)
}

func TestReportString(t *testing.T) {
	t.Parallel()

	rep := Analyze("EUR/USD", 10_000, []ledger.TradeRecord{completed(250)})
	out := rep.String()
	assert.True(t, strings.Contains(out, "EUR/USD"))
	assert.True(t, strings.Contains(out, "Winrate"))
}
