package journal

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"

	"github.com/battrading/bat/ledger"
)

// CSVJournal appends trades to a CSV file, flushing after every write
// so a crashed session loses at most nothing.
type CSVJournal struct {
	w *csv.Writer
	f *os.File
}

func NewCSV(path string) (*CSVJournal, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}

	w := csv.NewWriter(f)
	if err := w.Write([]string{"id", "time", "symbol", "action", "price", "shares",
		"cost_or_proceeds", "profit", "balance", "total_account_worth", "total_profit", "result"}); err != nil {
		f.Close()
		return nil, err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return nil, err
	}

	return &CSVJournal{w: w, f: f}, nil
}

func (j *CSVJournal) RecordTrade(t ledger.TradeRecord) error {
	if err := j.w.Write([]string{
		t.ID,
		t.Time.UTC().Format(time.RFC3339),
		t.Symbol,
		string(t.Action),
		f(t.Price),
		f(t.Shares),
		f(t.CostOrProceeds),
		f(t.Profit),
		f(t.Balance),
		f(t.TotalAccountWorth),
		f(t.TotalProfit),
		string(t.Result),
	}); err != nil {
		return err
	}
	j.w.Flush()
	return j.w.Error()
}

func (j *CSVJournal) Close() error {
	j.w.Flush()
	if err := j.w.Error(); err != nil {
		j.f.Close()
		return err
	}
	return j.f.Close()
}

func f(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
