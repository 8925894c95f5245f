package strategies

import (
	"fmt"

	"github.com/markcheno/go-talib"

	"github.com/battrading/bat/market"
)

// RSI buys when the relative strength index dips under the oversold
// threshold and sells when it runs over the overbought threshold.
type RSI struct {
	Window     int
	Oversold   float64
	Overbought float64
}

func NewRSI(window int, oversold, overbought float64) *RSI {
	if window <= 0 {
		window = 14
	}
	if oversold <= 0 {
		oversold = 30
	}
	if overbought <= 0 {
		overbought = 70
	}
	return &RSI{Window: window, Oversold: oversold, Overbought: overbought}
}

func (s *RSI) Name() string { return "rsi" }

func (s *RSI) SignalNames() (string, string) { return "RSI Buy", "RSI Sell" }

// RequiredLookback adds a bar because RSI needs a prior close for its
// first gain/loss delta.
func (s *RSI) RequiredLookback() int { return s.Window + 1 }

func (s *RSI) GenerateSignals(bars []market.Bar) ([]market.SignalRow, error) {
	if s.Oversold >= s.Overbought {
		return nil, fmt.Errorf("rsi: oversold %.1f must be below overbought %.1f", s.Oversold, s.Overbought)
	}

	rows := make([]market.SignalRow, len(bars))
	for i, b := range bars {
		rows[i].Bar = b
	}
	if len(bars) < s.RequiredLookback() {
		return rows, nil
	}

	rsi := talib.Rsi(market.Closes(bars), s.Window)
	for i := s.Window; i < len(bars); i++ {
		rows[i].Buy = rsi[i] < s.Oversold
		rows[i].Sell = rsi[i] > s.Overbought
	}
	return rows, nil
}
