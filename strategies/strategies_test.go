package strategies

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/battrading/bat/market"
)

func barsFromCloses(closes []float64) []market.Bar {
	start := time.Date(2025, 6, 2, 9, 30, 0, 0, time.UTC)
	bars := make([]market.Bar, len(closes))
	for i, c := range closes {
		bars[i] = market.Bar{
			Time: start.Add(time.Duration(i) * time.Minute),
			Open: c, High: c, Low: c, Close: c, Volume: 1,
		}
	}
	return bars
}

func ramp(n int, from, step float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = from + float64(i)*step
	}
	return out
}

func TestByName(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"moving_average", "ma", "mean_reversion", "bollinger", "rsi", "macd"} {
		s, err := ByName(name)
		require.NoError(t, err, name)
		assert.NotEmpty(t, s.Name())
		assert.Greater(t, s.RequiredLookback(), 0)
	}

	_, err := ByName("momentum")
	assert.Error(t, err)
}

func TestRegistryOverridesDefaults(t *testing.T) {
	custom := NewRSI(7, 20, 80)
	Register(custom)
	t.Cleanup(func() { delete(registry, custom.Name()) })

	s, err := ByName("rsi")
	require.NoError(t, err)
	assert.Same(t, custom, s)
}

func TestMovingAverageTrendSignals(t *testing.T) {
	t.Parallel()

	s := NewMovingAverage(1, 3, 5)

	// A falling market stacks the averages fast < medium < slow: buy.
	rows, err := s.GenerateSignals(barsFromCloses(ramp(10, 100, -1)))
	require.NoError(t, err)
	require.Len(t, rows, 10)
	last := rows[len(rows)-1]
	assert.True(t, last.Buy)
	assert.False(t, last.Sell)

	// A rising market is the mirror image: sell.
	rows, err = s.GenerateSignals(barsFromCloses(ramp(10, 100, 1)))
	require.NoError(t, err)
	last = rows[len(rows)-1]
	assert.False(t, last.Buy)
	assert.True(t, last.Sell)
}

func TestMovingAverageNoSignalsBeforeLookback(t *testing.T) {
	t.Parallel()

	s := NewMovingAverage(1, 3, 5)
	rows, err := s.GenerateSignals(barsFromCloses(ramp(10, 100, -1)))
	require.NoError(t, err)

	for i := 0; i < s.RequiredLookback()-1; i++ {
		assert.False(t, rows[i].Buy, "row %d", i)
		assert.False(t, rows[i].Sell, "row %d", i)
	}
}

func TestMovingAverageBadWindows(t *testing.T) {
	t.Parallel()

	s := &MovingAverage{Short: 5, Medium: 3, Long: 10}
	_, err := s.GenerateSignals(barsFromCloses(ramp(20, 100, 1)))
	assert.Error(t, err)
}

func TestMovingAverageShortHistory(t *testing.T) {
	t.Parallel()

	s := NewMovingAverage(1, 3, 5)
	rows, err := s.GenerateSignals(barsFromCloses(ramp(3, 100, -1)))
	require.NoError(t, err)
	require.Len(t, rows, 3)
	for _, r := range rows {
		assert.False(t, r.Buy)
		assert.False(t, r.Sell)
	}
}

func TestRSIExtremes(t *testing.T) {
	t.Parallel()

	s := NewRSI(5, 30, 70)

	// Monotonic decline pins RSI at 0: oversold, buy.
	rows, err := s.GenerateSignals(barsFromCloses(ramp(12, 100, -1)))
	require.NoError(t, err)
	last := rows[len(rows)-1]
	assert.True(t, last.Buy)
	assert.False(t, last.Sell)

	// Monotonic rise pins RSI at 100: overbought, sell.
	rows, err = s.GenerateSignals(barsFromCloses(ramp(12, 100, 1)))
	require.NoError(t, err)
	last = rows[len(rows)-1]
	assert.False(t, last.Buy)
	assert.True(t, last.Sell)
}

func TestRSIThresholdOrdering(t *testing.T) {
	t.Parallel()

	s := &RSI{Window: 5, Oversold: 70, Overbought: 30}
	_, err := s.GenerateSignals(barsFromCloses(ramp(12, 100, 1)))
	assert.Error(t, err)
}

func TestMeanReversionBandExcursion(t *testing.T) {
	t.Parallel()

	s := NewMeanReversion(5, 1)

	closes := []float64{100, 100, 100, 100, 100, 100, 100, 100, 100, 90}
	rows, err := s.GenerateSignals(barsFromCloses(closes))
	require.NoError(t, err)

	last := rows[len(rows)-1]
	assert.True(t, last.Buy, "sharp drop below the lower band")
	assert.False(t, last.Sell)

	closes[len(closes)-1] = 110
	rows, err = s.GenerateSignals(barsFromCloses(closes))
	require.NoError(t, err)
	last = rows[len(rows)-1]
	assert.True(t, last.Sell, "sharp spike above the upper band")
	assert.False(t, last.Buy)
}

func TestMACDCrossOnReversal(t *testing.T) {
	t.Parallel()

	s := NewMACD(3, 6, 3)

	// A long decline followed by a recovery forces the MACD line across
	// its signal line on the way up.
	closes := append(ramp(20, 120, -1), ramp(20, 101, 1)...)
	rows, err := s.GenerateSignals(barsFromCloses(closes))
	require.NoError(t, err)
	require.Len(t, rows, 40)

	var sawBuy bool
	for _, r := range rows[20:] {
		assert.False(t, r.Conflicting())
		if r.Buy {
			sawBuy = true
		}
	}
	assert.True(t, sawBuy)
}

func TestMACDQuietBeforeLookback(t *testing.T) {
	t.Parallel()

	s := NewMACD(0, 0, 0)
	assert.Equal(t, 35, s.RequiredLookback())

	rows, err := s.GenerateSignals(barsFromCloses(ramp(10, 100, 1)))
	require.NoError(t, err)
	for _, r := range rows {
		assert.False(t, r.Buy)
		assert.False(t, r.Sell)
	}
}

func TestDefaults(t *testing.T) {
	t.Parallel()

	ma := NewMovingAverage(0, 0, 0)
	assert.Equal(t, 25, ma.RequiredLookback())

	mr := NewMeanReversion(0, 0)
	assert.Equal(t, 20, mr.Window)
	assert.Equal(t, 2.0, mr.NumStd)

	rsi := NewRSI(0, 0, 0)
	assert.Equal(t, 15, rsi.RequiredLookback())
}
