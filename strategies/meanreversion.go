package strategies

import (
	"github.com/markcheno/go-talib"

	"github.com/battrading/bat/market"
)

// MeanReversion trades Bollinger band excursions: buy a close below
// the lower band, sell a close above the upper band.
type MeanReversion struct {
	Window int
	NumStd float64
}

func NewMeanReversion(window int, numStd float64) *MeanReversion {
	if window <= 0 {
		window = 20
	}
	if numStd <= 0 {
		numStd = 2.0
	}
	return &MeanReversion{Window: window, NumStd: numStd}
}

func (s *MeanReversion) Name() string { return "mean_reversion" }

func (s *MeanReversion) SignalNames() (string, string) { return "Band Buy", "Band Sell" }

func (s *MeanReversion) RequiredLookback() int { return s.Window }

func (s *MeanReversion) GenerateSignals(bars []market.Bar) ([]market.SignalRow, error) {
	rows := make([]market.SignalRow, len(bars))
	for i, b := range bars {
		rows[i].Bar = b
	}
	if len(bars) < s.Window {
		return rows, nil
	}

	closes := market.Closes(bars)
	upper, _, lower := talib.BBands(closes, s.Window, s.NumStd, s.NumStd, talib.SMA)

	for i := s.Window - 1; i < len(bars); i++ {
		rows[i].Buy = closes[i] < lower[i]
		rows[i].Sell = closes[i] > upper[i]
	}
	return rows, nil
}
