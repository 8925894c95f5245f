package journal

import (
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/battrading/bat/ledger"
)

type SQLiteJournal struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLiteJournal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteJournal{db: db}, nil
}

func (j *SQLiteJournal) RecordTrade(t ledger.TradeRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO trades
		(id, time, symbol, action, price, shares, cost_or_proceeds, profit, balance, total_account_worth, total_profit, result)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Time.UTC(), t.Symbol, string(t.Action), t.Price, t.Shares,
		t.CostOrProceeds, t.Profit, t.Balance, t.TotalAccountWorth, t.TotalProfit, string(t.Result),
	)
	return err
}

// ListTrades returns the recorded trades for a symbol in time order.
// An empty symbol returns everything.
func (j *SQLiteJournal) ListTrades(symbol string) ([]ledger.TradeRecord, error) {
	query := `SELECT id, time, symbol, action, price, shares, cost_or_proceeds,
		profit, balance, total_account_worth, total_profit, result FROM trades`
	args := []any{}
	if symbol != "" {
		query += ` WHERE symbol = ?`
		args = append(args, symbol)
	}
	query += ` ORDER BY time, id`

	rows, err := j.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ledger.TradeRecord
	for rows.Next() {
		var t ledger.TradeRecord
		var ts time.Time
		var action, result string
		if err := rows.Scan(&t.ID, &ts, &t.Symbol, &action, &t.Price, &t.Shares,
			&t.CostOrProceeds, &t.Profit, &t.Balance, &t.TotalAccountWorth, &t.TotalProfit, &result); err != nil {
			return nil, err
		}
		t.Time = ts
		t.Action = ledger.Action(action)
		t.Result = ledger.Result(result)
		out = append(out, t)
	}
	return out, rows.Err()
}

func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}
