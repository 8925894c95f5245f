package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 6, 2, 14, 30, 0, 0, time.UTC)

func TestLongRoundTrip(t *testing.T) {
	t.Parallel()

	l := New("AAPL", 10_000)

	rec, err := l.Open(t0, Long, 100, 100)
	require.NoError(t, err)
	assert.Equal(t, ActionBuy, rec.Action)
	assert.Equal(t, ResultOpen, rec.Result)
	assert.Equal(t, 0.0, rec.Profit)
	assert.Equal(t, 0.0, l.Cash())
	assert.Equal(t, 10_000.0, l.AccountWorth())

	rec, err = l.Close(t0.Add(time.Minute), 110)
	require.NoError(t, err)
	assert.Equal(t, ActionCloseLong, rec.Action)
	assert.Equal(t, ResultWin, rec.Result)
	assert.Equal(t, 1000.0, rec.Profit)
	assert.Equal(t, 11_000.0, rec.TotalAccountWorth)
	assert.Equal(t, 11_000.0, l.Cash())
	assert.Equal(t, Flat, l.Side())
}

func TestShortRoundTrip(t *testing.T) {
	t.Parallel()

	l := New("EUR/USD", 10_000)

	rec, err := l.Open(t0, Short, 5000, 1.10)
	require.NoError(t, err)
	assert.Equal(t, ActionSellShort, rec.Action)
	// Short proceeds are credited to cash immediately.
	assert.InDelta(t, 15_500.0, l.Cash(), 1e-9)
	assert.Equal(t, 10_000.0, l.AccountWorth())

	rec, err = l.Close(t0.Add(time.Hour), 1.05)
	require.NoError(t, err)
	assert.Equal(t, ActionCloseShort, rec.Action)
	assert.Equal(t, ResultWin, rec.Result)
	assert.InDelta(t, 250.0, rec.Profit, 1e-9)
	assert.InDelta(t, 10_250.0, l.Cash(), 1e-9)
	assert.InDelta(t, 10_250.0, l.AccountWorth(), 1e-9)
}

func TestLosingCloseMarkedLoss(t *testing.T) {
	t.Parallel()

	l := New("AAPL", 10_000)
	_, err := l.Open(t0, Long, 10, 100)
	require.NoError(t, err)

	rec, err := l.Close(t0.Add(time.Minute), 90)
	require.NoError(t, err)
	assert.Equal(t, ResultLoss, rec.Result)
	assert.Equal(t, -100.0, rec.Profit)
	assert.Equal(t, 9900.0, l.AccountWorth())
}

func TestWeightedAverageEntry(t *testing.T) {
	t.Parallel()

	l := New("BTC/USD", 100_000)
	_, err := l.Open(t0, Long, 1, 50_000)
	require.NoError(t, err)
	_, err = l.Open(t0.Add(time.Minute), Long, 1, 40_000)
	require.NoError(t, err)

	assert.Equal(t, 2.0, l.Quantity())
	assert.Equal(t, 45_000.0, l.EntryPrice())
}

func TestOppositeSideOpenRejected(t *testing.T) {
	t.Parallel()

	l := New("AAPL", 10_000)
	_, err := l.Open(t0, Long, 10, 100)
	require.NoError(t, err)

	_, err = l.Open(t0, Short, 10, 100)
	assert.ErrorIs(t, err, ErrSideMismatch)
}

func TestOpenValidation(t *testing.T) {
	t.Parallel()

	l := New("AAPL", 10_000)

	_, err := l.Open(t0, Flat, 10, 100)
	assert.ErrorIs(t, err, ErrBadSide)

	_, err = l.Open(t0, Long, 0, 100)
	assert.ErrorIs(t, err, ErrBadQuantity)

	_, err = l.Open(t0, Long, 10, -1)
	assert.ErrorIs(t, err, ErrBadPrice)
}

func TestCloseWithoutPosition(t *testing.T) {
	t.Parallel()

	l := New("AAPL", 10_000)
	_, err := l.Close(t0, 100)
	assert.ErrorIs(t, err, ErrNoPosition)
}

func TestAccountWorthIgnoresUnrealized(t *testing.T) {
	t.Parallel()

	l := New("AAPL", 10_000)
	_, err := l.Open(t0, Long, 100, 100)
	require.NoError(t, err)

	// Paper gains never move account worth until the close.
	assert.Equal(t, 10_000.0, l.AccountWorth())
	assert.Equal(t, 5000.0, l.UnrealizedPL(150))
}

func TestRecordsAppendOnly(t *testing.T) {
	t.Parallel()

	l := New("AAPL", 10_000)
	_, err := l.Open(t0, Long, 10, 100)
	require.NoError(t, err)
	_, err = l.Close(t0.Add(time.Minute), 110)
	require.NoError(t, err)

	recs := l.Records()
	require.Len(t, recs, 2)
	assert.NotEmpty(t, recs[0].ID)
	assert.NotEqual(t, recs[0].ID, recs[1].ID)
	assert.False(t, recs[0].Completed())
	assert.True(t, recs[1].Completed())
}
