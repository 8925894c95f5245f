package market

import (
	"fmt"
	"time"
)

// Bar is one OHLCV sample for a fixed time interval. Bars are immutable
// once fetched from a provider.
type Bar struct {
	Time   time.Time `csv:"time" json:"time"`
	Open   float64   `csv:"open" json:"open"`
	High   float64   `csv:"high" json:"high"`
	Low    float64   `csv:"low" json:"low"`
	Close  float64   `csv:"close" json:"close"`
	Volume float64   `csv:"volume" json:"volume"`
}

// Validate checks the basic OHLC price invariants.
func (b Bar) Validate() error {
	if b.Time.IsZero() {
		return fmt.Errorf("bar: zero timestamp")
	}
	if b.Open <= 0 || b.High <= 0 || b.Low <= 0 || b.Close <= 0 {
		return fmt.Errorf("bar %s: non-positive price", b.Time.Format(time.RFC3339))
	}
	if b.Low > b.Open || b.Low > b.Close || b.High < b.Open || b.High < b.Close {
		return fmt.Errorf("bar %s: low/high bounds violated (o=%v h=%v l=%v c=%v)",
			b.Time.Format(time.RFC3339), b.Open, b.High, b.Low, b.Close)
	}
	if b.Volume < 0 {
		return fmt.Errorf("bar %s: negative volume", b.Time.Format(time.RFC3339))
	}
	return nil
}

// SignalRow is a Bar annotated by a strategy with buy/sell flags.
type SignalRow struct {
	Bar
	Buy  bool
	Sell bool
}

// Conflicting reports whether the row carries both a buy and a sell
// signal. Such rows are invalid input and must be rejected before they
// reach the trade decision.
func (r SignalRow) Conflicting() bool {
	return r.Buy && r.Sell
}

// Ascending reports whether bars are strictly increasing in time with
// no duplicate timestamps. Gaps are permitted.
func Ascending(bars []Bar) bool {
	for i := 1; i < len(bars); i++ {
		if !bars[i].Time.After(bars[i-1].Time) {
			return false
		}
	}
	return true
}

// MergeBars merges freshly fetched bars into a rolling window. A bar
// whose timestamp matches the window's last bar replaces it (the
// in-progress candle updating), newer bars are appended, older bars are
// dropped. The window is trimmed from the front once it exceeds max.
func MergeBars(window, latest []Bar, max int) []Bar {
	for _, b := range latest {
		n := len(window)
		switch {
		case n == 0 || b.Time.After(window[n-1].Time):
			window = append(window, b)
		case b.Time.Equal(window[n-1].Time):
			window[n-1] = b
		}
	}
	if max > 0 && len(window) > max {
		window = append(window[:0:0], window[len(window)-max:]...)
	}
	return window
}

// Closes extracts the close series, the input most indicators need.
func Closes(bars []Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Close
	}
	return out
}
