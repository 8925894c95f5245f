// Package data defines the market-data provider contract and its
// concrete sources: CSV files, the Alpaca data API, and the synthetic
// feed.
package data

import (
	"context"
	"time"

	"github.com/battrading/bat/market"
)

// Provider supplies OHLCV bars. Implementations must return bars
// sorted ascending by timestamp with no duplicate timestamps; gaps
// (illiquid periods) are allowed and must not be synthesized away.
type Provider interface {
	// GetData fetches historical bars for a ticker. Zero start/end mean
	// "as far as the source goes"; limit caps the row count (0 = source
	// default).
	GetData(ctx context.Context, ticker, timeframe string, start, end time.Time, limit int) ([]market.Bar, error)

	// GetLiveData fetches the most recent bars, most-recent-last.
	GetLiveData(ctx context.Context, ticker string, lookback int) ([]market.Bar, error)
}
