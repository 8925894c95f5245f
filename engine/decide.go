// Package engine holds the trade decision logic shared by the backtest
// and live runners: a pure state machine plus position sizing and the
// forex spread fill model. It owns no state and performs no I/O.
package engine

import "github.com/battrading/bat/ledger"

// Mode selects the rule table the state machine applies.
type Mode string

const (
	LongOnly  Mode = "long_only"
	LongShort Mode = "long_short"
)

// Valid reports whether the mode is one of the two supported tables.
func (m Mode) Valid() bool {
	return m == LongOnly || m == LongShort
}

// Action is the state machine's verdict for one signal row.
type Action int

const (
	None Action = iota
	OpenLong
	OpenShort
	Close
	FlipToLong
	FlipToShort
)

func (a Action) String() string {
	switch a {
	case OpenLong:
		return "open-long"
	case OpenShort:
		return "open-short"
	case Close:
		return "close"
	case FlipToLong:
		return "flip-to-long"
	case FlipToShort:
		return "flip-to-short"
	default:
		return "none"
	}
}

// Decide maps (current position side, signals, mode) to an action.
//
// Long-only: a buy opens from flat, a sell closes a long; everything
// else is ignored. A buy while already long is ignored (no pyramiding).
//
// Long/short: a buy while short flips to long (full close, then open),
// a sell while long flips to short; signals matching the held side are
// ignored. Conflicting rows (buy and sell both set) must be rejected
// upstream; Decide assumes mutual exclusion.
func Decide(side ledger.Side, buy, sell bool, mode Mode) Action {
	if mode == LongOnly {
		switch {
		case buy && side == ledger.Flat:
			return OpenLong
		case sell && side == ledger.Long:
			return Close
		default:
			return None
		}
	}

	switch {
	case buy && side == ledger.Short:
		return FlipToLong
	case buy && side == ledger.Flat:
		return OpenLong
	case sell && side == ledger.Long:
		return FlipToShort
	case sell && side == ledger.Flat:
		return OpenShort
	default:
		return None
	}
}
