// Package backtest replays annotated bar history through the trade
// state machine and summarizes the resulting trade log.
package backtest

import (
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/battrading/bat/engine"
	"github.com/battrading/bat/ledger"
	"github.com/battrading/bat/market"
)

type Config struct {
	Symbol         string
	InitialBalance float64
	Mode           engine.Mode
	PositionPct    float64 // percent of cash committed per open, default 100
	SpreadPips     float64 // forex only, 0 disables
}

type Runner struct {
	cfg    Config
	spread engine.Spread
	led    *ledger.Ledger
}

func New(cfg Config) (*Runner, error) {
	if cfg.Symbol == "" {
		return nil, fmt.Errorf("backtest: symbol is required")
	}
	if cfg.InitialBalance <= 0 {
		return nil, fmt.Errorf("backtest: initial balance must be positive, got %.2f", cfg.InitialBalance)
	}
	if cfg.Mode == "" {
		cfg.Mode = engine.LongOnly
	}
	if !cfg.Mode.Valid() {
		return nil, fmt.Errorf("backtest: unknown trading mode %q", cfg.Mode)
	}
	if cfg.PositionPct <= 0 {
		cfg.PositionPct = 100
	}

	return &Runner{
		cfg:    cfg,
		spread: engine.Spread{Symbol: cfg.Symbol, Pips: cfg.SpreadPips},
		led:    ledger.New(cfg.Symbol, cfg.InitialBalance),
	}, nil
}

// Ledger exposes the final position and cash state after Run.
func (r *Runner) Ledger() *ledger.Ledger { return r.led }

// Run walks the rows once, in order, starting at the second row, and
// returns the trade log. The walk is deterministic: identical rows
// always produce identical records (IDs aside).
func (r *Runner) Run(rows []market.SignalRow) ([]ledger.TradeRecord, error) {
	for i := 1; i < len(rows); i++ {
		row := rows[i]
		if row.Conflicting() {
			log.WithField("time", row.Time).Warn("conflicting buy and sell signals, row skipped")
			continue
		}

		action := engine.Decide(r.led.Side(), row.Buy, row.Sell, r.cfg.Mode)
		if err := r.apply(action, row.Time, row.Close); err != nil {
			return nil, fmt.Errorf("backtest: row %d (%s): %w", i, row.Time.Format(time.RFC3339), err)
		}
	}
	return r.led.Records(), nil
}

func (r *Runner) apply(action engine.Action, t time.Time, close float64) error {
	switch action {
	case engine.OpenLong:
		return r.open(t, ledger.Long, close)
	case engine.OpenShort:
		return r.open(t, ledger.Short, close)
	case engine.Close:
		return r.close(t, close)
	case engine.FlipToLong:
		if err := r.close(t, close); err != nil {
			return err
		}
		return r.open(t, ledger.Long, close)
	case engine.FlipToShort:
		if err := r.close(t, close); err != nil {
			return err
		}
		return r.open(t, ledger.Short, close)
	}
	return nil
}

func (r *Runner) open(t time.Time, side ledger.Side, close float64) error {
	execSide := engine.ExecBuy
	if side == ledger.Short {
		execSide = engine.ExecSell
	}
	fill := r.spread.Fill(execSide, close)

	qty, _ := engine.PositionSize(r.led.Cash(), r.cfg.PositionPct, fill)
	if qty <= 0 {
		log.WithFields(log.Fields{"time": t, "cash": r.led.Cash()}).
			Warn("no cash to open position, signal ignored")
		return nil
	}

	_, err := r.led.Open(t, side, qty, fill)
	return err
}

func (r *Runner) close(t time.Time, close float64) error {
	// Exiting a long sells at the bid; covering a short buys at the ask.
	execSide := engine.ExecSell
	if r.led.Side() == ledger.Short {
		execSide = engine.ExecBuy
	}

	_, err := r.led.Close(t, r.spread.Fill(execSide, close))
	return err
}
