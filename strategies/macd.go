package strategies

import (
	"github.com/markcheno/go-talib"

	"github.com/battrading/bat/market"
)

// MACD signals on crossings of the MACD line over its signal line:
// buy on a cross above, sell on a cross below.
type MACD struct {
	Fast   int
	Slow   int
	Signal int
}

func NewMACD(fast, slow, signal int) *MACD {
	if fast <= 0 {
		fast = 12
	}
	if slow <= 0 {
		slow = 26
	}
	if signal <= 0 {
		signal = 9
	}
	return &MACD{Fast: fast, Slow: slow, Signal: signal}
}

func (s *MACD) Name() string { return "macd" }

func (s *MACD) SignalNames() (string, string) { return "MACD Buy", "MACD Sell" }

func (s *MACD) RequiredLookback() int { return s.Slow + s.Signal }

func (s *MACD) GenerateSignals(bars []market.Bar) ([]market.SignalRow, error) {
	rows := make([]market.SignalRow, len(bars))
	for i, b := range bars {
		rows[i].Bar = b
	}
	if len(bars) < s.RequiredLookback() {
		return rows, nil
	}

	macd, signal, _ := talib.Macd(market.Closes(bars), s.Fast, s.Slow, s.Signal)

	// Crossings need a valid previous value, hence the extra bar.
	for i := s.RequiredLookback(); i < len(bars); i++ {
		rows[i].Buy = macd[i] > signal[i] && macd[i-1] <= signal[i-1]
		rows[i].Sell = macd[i] < signal[i] && macd[i-1] >= signal[i-1]
	}
	return rows, nil
}
