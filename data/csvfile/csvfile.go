// Package csvfile loads bar history from CSV, the usual input for
// backtests. The expected header is time,open,high,low,close,volume
// with RFC3339 timestamps.
package csvfile

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/battrading/bat/market"
)

// Load reads and validates all bars from path.
func Load(path string) ([]market.Bar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var bars []market.Bar
	if err := gocsv.UnmarshalFile(f, &bars); err != nil {
		return nil, fmt.Errorf("load bars from %s: %w", path, err)
	}

	for i, b := range bars {
		if err := b.Validate(); err != nil {
			return nil, fmt.Errorf("%s row %d: %w", path, i+1, err)
		}
	}
	if !market.Ascending(bars) {
		return nil, fmt.Errorf("%s: bars not strictly ascending by time", path)
	}
	return bars, nil
}

// Provider serves a loaded file through the data.Provider contract,
// which lets the live runner replay a file in tests and demos.
type Provider struct {
	bars []market.Bar
}

func NewProvider(path string) (*Provider, error) {
	bars, err := Load(path)
	if err != nil {
		return nil, err
	}
	return &Provider{bars: bars}, nil
}

func (p *Provider) GetData(_ context.Context, _ string, _ string, start, end time.Time, limit int) ([]market.Bar, error) {
	var out []market.Bar
	for _, b := range p.bars {
		if !start.IsZero() && b.Time.Before(start) {
			continue
		}
		if !end.IsZero() && b.Time.After(end) {
			continue
		}
		out = append(out, b)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (p *Provider) GetLiveData(_ context.Context, _ string, lookback int) ([]market.Bar, error) {
	if lookback <= 0 || lookback > len(p.bars) {
		lookback = len(p.bars)
	}
	return p.bars[len(p.bars)-lookback:], nil
}
