package engine

import "github.com/battrading/bat/market"

// ExecSide is the direction of a single execution, independent of what
// position it opens or closes: covering a short is a buy, exiting a
// long is a sell.
type ExecSide int

const (
	ExecBuy ExecSide = iota
	ExecSell
)

// Spread models the forex bid/ask spread as a fixed pip cost applied
// asymmetrically around the bar close: buys fill at the ask
// (close + cost), sells at the bid (close - cost). For non-forex
// symbols or a zero pip setting it is a no-op.
type Spread struct {
	Symbol string
	Pips   float64
}

func (s Spread) cost() float64 {
	if s.Pips <= 0 || !market.IsForex(s.Symbol) {
		return 0
	}
	return s.Pips * market.PipValue(s.Symbol)
}

// Fill returns the execution price for a close-price quote. Applied on
// every open and every close so round trips always pay the spread.
func (s Spread) Fill(side ExecSide, close float64) float64 {
	if side == ExecBuy {
		return close + s.cost()
	}
	return close - s.cost()
}
