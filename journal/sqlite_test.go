package journal

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/battrading/bat/ledger"
)

func newTestSQLite(t *testing.T) *SQLiteJournal {
	t.Helper()

	j, err := NewSQLite(filepath.Join(t.TempDir(), "trades.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })
	return j
}

func testRecord(id, symbol string, profit float64) ledger.TradeRecord {
	result := ledger.ResultOpen
	action := ledger.ActionBuy
	if profit != 0 {
		action = ledger.ActionCloseLong
		result = ledger.ResultWin
		if profit < 0 {
			result = ledger.ResultLoss
		}
	}
	return ledger.TradeRecord{
		ID:                id,
		Time:              time.Date(2025, 6, 2, 14, 30, 0, 0, time.UTC),
		Symbol:            symbol,
		Action:            action,
		Price:             101.5,
		Shares:            10,
		CostOrProceeds:    1015,
		Profit:            profit,
		Balance:           9000,
		TotalAccountWorth: 10_000 + profit,
		TotalProfit:       profit,
		Result:            result,
	}
}

func TestSQLiteRoundTrip(t *testing.T) {
	t.Parallel()

	j := newTestSQLite(t)

	want := testRecord("01A", "AAPL", 150)
	require.NoError(t, j.RecordTrade(want))

	got, err := j.ListTrades("AAPL")
	require.NoError(t, err)
	require.Len(t, got, 1)

	assert.Equal(t, want.ID, got[0].ID)
	assert.Equal(t, want.Action, got[0].Action)
	assert.Equal(t, want.Result, got[0].Result)
	assert.Equal(t, want.Profit, got[0].Profit)
	assert.Equal(t, want.TotalAccountWorth, got[0].TotalAccountWorth)
	assert.True(t, want.Time.Equal(got[0].Time))
}

func TestSQLiteListFiltersBySymbol(t *testing.T) {
	t.Parallel()

	j := newTestSQLite(t)
	require.NoError(t, j.RecordTrade(testRecord("01A", "AAPL", 0)))
	require.NoError(t, j.RecordTrade(testRecord("01B", "EUR/USD", 100)))

	got, err := j.ListTrades("EUR/USD")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "01B", got[0].ID)

	all, err := j.ListTrades("")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestSQLiteDuplicateIDRejected(t *testing.T) {
	t.Parallel()

	j := newTestSQLite(t)
	require.NoError(t, j.RecordTrade(testRecord("01A", "AAPL", 0)))
	assert.Error(t, j.RecordTrade(testRecord("01A", "AAPL", 0)))
}
