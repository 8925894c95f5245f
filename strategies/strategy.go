// Package strategies holds the signal generators. A strategy is pure:
// it maps a bar history to per-bar buy/sell flags and never touches a
// broker, so the same strategy drives backtests and live runs.
package strategies

import (
	"fmt"
	"strings"

	"github.com/battrading/bat/market"
)

// Strategy turns bar history into buy/sell signal rows, one per input
// bar, in the same order.
type Strategy interface {
	Name() string

	// GenerateSignals annotates every bar with buy/sell flags. The
	// returned slice is the same length as bars.
	GenerateSignals(bars []market.Bar) ([]market.SignalRow, error)

	// SignalNames labels the buy and sell columns for display and export.
	SignalNames() (buy, sell string)

	// RequiredLookback is the minimum bar count before signals are
	// meaningful. Callers should refuse to act on shorter histories.
	RequiredLookback() int
}

// Validator lets a strategy veto its own output before a live order is
// placed. Optional; the runner checks with a type assertion.
type Validator interface {
	ValidateSignalConditions(rows []market.SignalRow) error
}

var registry = make(map[string]Strategy)

func Register(s Strategy) {
	registry[s.Name()] = s
}

func Get(name string) Strategy {
	return registry[name]
}

// ByName builds a strategy with default parameters. Registered
// strategies take precedence so tests and callers can inject their own.
func ByName(name string) (Strategy, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if s, ok := registry[key]; ok {
		return s, nil
	}

	switch key {
	case "moving_average", "ma":
		return NewMovingAverage(0, 0, 0), nil
	case "mean_reversion", "bollinger":
		return NewMeanReversion(0, 0), nil
	case "rsi":
		return NewRSI(0, 0, 0), nil
	case "macd":
		return NewMACD(0, 0, 0), nil
	default:
		return nil, fmt.Errorf("unknown strategy %q (supported: moving_average, mean_reversion, rsi, macd)", name)
	}
}
