package market

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func bar(t time.Time, close float64) Bar {
	return Bar{Time: t, Open: close, High: close, Low: close, Close: close, Volume: 1}
}

func TestBarValidate(t *testing.T) {
	t.Parallel()

	ts := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)

	assert.NoError(t, Bar{Time: ts, Open: 10, High: 12, Low: 9, Close: 11, Volume: 100}.Validate())
	assert.Error(t, Bar{Open: 10, High: 12, Low: 9, Close: 11}.Validate(), "zero time")
	assert.Error(t, Bar{Time: ts, Open: 0, High: 12, Low: 9, Close: 11}.Validate(), "zero open")
	assert.Error(t, Bar{Time: ts, Open: 10, High: 9, Low: 8, Close: 11, Volume: 1}.Validate(), "high below close")
	assert.Error(t, Bar{Time: ts, Open: 10, High: 12, Low: 11, Close: 11, Volume: 1}.Validate(), "low above open")
	assert.Error(t, Bar{Time: ts, Open: 10, High: 12, Low: 9, Close: 11, Volume: -1}.Validate(), "negative volume")
}

func TestAscending(t *testing.T) {
	t.Parallel()

	ts := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	a := bar(ts, 1)
	b := bar(ts.Add(time.Minute), 2)

	assert.True(t, Ascending(nil))
	assert.True(t, Ascending([]Bar{a, b}))
	assert.False(t, Ascending([]Bar{b, a}))
	assert.False(t, Ascending([]Bar{a, a}), "duplicate timestamps")
}

func TestMergeBars(t *testing.T) {
	t.Parallel()

	ts := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	window := []Bar{bar(ts, 1), bar(ts.Add(time.Minute), 2)}

	// Same timestamp replaces the in-progress candle.
	updated := bar(ts.Add(time.Minute), 2.5)
	window = MergeBars(window, []Bar{updated}, 10)
	assert.Len(t, window, 2)
	assert.Equal(t, 2.5, window[1].Close)

	// Newer appends, older is dropped.
	window = MergeBars(window, []Bar{bar(ts.Add(-time.Minute), 0.5), bar(ts.Add(2*time.Minute), 3)}, 10)
	assert.Len(t, window, 3)
	assert.Equal(t, 3.0, window[2].Close)

	// Cap trims from the front.
	window = MergeBars(window, []Bar{bar(ts.Add(3*time.Minute), 4)}, 3)
	assert.Len(t, window, 3)
	assert.Equal(t, 2.5, window[0].Close)
}

func TestSignalRowConflicting(t *testing.T) {
	t.Parallel()

	assert.True(t, SignalRow{Buy: true, Sell: true}.Conflicting())
	assert.False(t, SignalRow{Buy: true}.Conflicting())
	assert.False(t, SignalRow{}.Conflicting())
}

func TestClassify(t *testing.T) {
	t.Parallel()

	assert.Equal(t, Forex, Classify("EUR/USD"))
	assert.Equal(t, Forex, Classify("USD/JPY"))
	assert.Equal(t, Crypto, Classify("BTC/USD"))
	assert.Equal(t, Crypto, Classify("ETH/EUR"))
	assert.Equal(t, Stock, Classify("AAPL"))
	assert.Equal(t, Stock, Classify("/USD"))
}

func TestPipValue(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0.0001, PipValue("EUR/USD"))
	assert.Equal(t, 0.01, PipValue("USD/JPY"))
	assert.Equal(t, 0.0001, PipValue("AAPL"))
}
