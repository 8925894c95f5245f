package strategies

import (
	"fmt"

	"github.com/markcheno/go-talib"

	"github.com/battrading/bat/market"
)

// MovingAverage signals on the alignment of three simple moving
// averages. With the fast average below the medium and the medium
// below the slow the trend is read as down and due to revert, so it
// buys; the mirror image sells. Contrarian by construction.
type MovingAverage struct {
	Short  int
	Medium int
	Long   int
}

func NewMovingAverage(short, medium, long int) *MovingAverage {
	if short <= 0 {
		short = 1
	}
	if medium <= 0 {
		medium = 5
	}
	if long <= 0 {
		long = 25
	}
	return &MovingAverage{Short: short, Medium: medium, Long: long}
}

func (s *MovingAverage) Name() string { return "moving_average" }

func (s *MovingAverage) SignalNames() (string, string) { return "MA Buy", "MA Sell" }

func (s *MovingAverage) RequiredLookback() int { return s.Long }

func (s *MovingAverage) GenerateSignals(bars []market.Bar) ([]market.SignalRow, error) {
	if s.Short >= s.Medium || s.Medium >= s.Long {
		return nil, fmt.Errorf("moving_average: windows must increase (%d, %d, %d)", s.Short, s.Medium, s.Long)
	}

	rows := make([]market.SignalRow, len(bars))
	for i, b := range bars {
		rows[i].Bar = b
	}
	if len(bars) < s.Long {
		return rows, nil
	}

	closes := market.Closes(bars)
	short := talib.Sma(closes, s.Short)
	medium := talib.Sma(closes, s.Medium)
	long := talib.Sma(closes, s.Long)

	for i := s.Long - 1; i < len(bars); i++ {
		rows[i].Buy = medium[i] < long[i] && short[i] < medium[i]
		rows[i].Sell = medium[i] > long[i] && short[i] > medium[i]
	}
	return rows, nil
}
