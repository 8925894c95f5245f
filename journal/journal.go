// Package journal persists executed trades, so a live session leaves
// an audit trail that survives restarts.
package journal

import "github.com/battrading/bat/ledger"

type Journal interface {
	RecordTrade(ledger.TradeRecord) error
	Close() error
}

// Nop discards everything. Used when no journal path is configured.
type Nop struct{}

func (Nop) RecordTrade(ledger.TradeRecord) error { return nil }
func (Nop) Close() error                         { return nil }
