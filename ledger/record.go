package ledger

import (
	"os"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/battrading/bat/pkg/id"
)

// Action identifies what the state machine did.
type Action string

const (
	ActionBuy        Action = "BUY"
	ActionSellShort  Action = "SELL_SHORT"
	ActionClose      Action = "CLOSE"
	ActionCloseLong  Action = "CLOSE_LONG"
	ActionCloseShort Action = "CLOSE_SHORT"
)

// Result marks a record as an open or a completed round trip.
type Result string

const (
	ResultOpen Result = "OPEN"
	ResultWin  Result = "Win"
	ResultLoss Result = "Loss"
)

// TradeRecord is an immutable audit-trail entry appended each time the
// state machine acts. One record per executed action; a flip produces
// two (the close, then the opposite open).
type TradeRecord struct {
	ID                string    `csv:"id"`
	Time              time.Time `csv:"time"`
	Symbol            string    `csv:"symbol"`
	Action            Action    `csv:"action"`
	Price             float64   `csv:"price"`
	Shares            float64   `csv:"shares"`
	CostOrProceeds    float64   `csv:"cost_or_proceeds"`
	Profit            float64   `csv:"profit"`
	Balance           float64   `csv:"balance"`
	TotalAccountWorth float64   `csv:"total_account_worth"`
	TotalProfit       float64   `csv:"total_profit"`
	Result            Result    `csv:"result"`
}

// Completed reports whether the record represents a finished round
// trip (it carries a Win/Loss result rather than an open).
func (r TradeRecord) Completed() bool {
	return r.Result == ResultWin || r.Result == ResultLoss
}

// ExportCSV writes the trade records to path as CSV.
func ExportCSV(path string, records []TradeRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return gocsv.MarshalFile(&records, f)
}

var newID = id.New
