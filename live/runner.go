// Package live runs a strategy against a broker in a polling loop:
// fetch bars, recompute signals over a rolling window, and trade the
// latest row. Position state is always the broker's, never a local
// copy, so a restart or an out-of-band manual trade cannot desync the
// runner.
package live

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/battrading/bat/backtest"
	"github.com/battrading/bat/broker"
	"github.com/battrading/bat/engine"
	"github.com/battrading/bat/journal"
	"github.com/battrading/bat/ledger"
	"github.com/battrading/bat/market"
	"github.com/battrading/bat/pkg/id"
	"github.com/battrading/bat/strategies"
)

// Provider is the slice of the data contract the runner needs.
type Provider interface {
	GetLiveData(ctx context.Context, ticker string, lookback int) ([]market.Bar, error)
}

// PendingChecker is implemented by gateways that park limit orders
// locally and need a nudge each cycle to fill them.
type PendingChecker interface {
	CheckPendingOrders() int
}

type Config struct {
	Symbol      string
	Mode        engine.Mode
	PositionPct float64
	SpreadPips  float64

	Interval   time.Duration // sleep between iterations, default 1m
	MaxCandles int           // rolling window cap, default 200
	Lookback   int           // bars per poll, default strategy lookback

	UseLimitOrders      bool
	PendingOrderTimeout time.Duration // default 1m

	// MaxIterations stops the loop after N iterations; 0 runs until the
	// context is cancelled.
	MaxIterations int
}

type pendingTrack struct {
	order    broker.Order
	side     ledger.Side
	placedAt time.Time
}

type Runner struct {
	cfg      Config
	strat    strategies.Strategy
	provider Provider
	gw       broker.Gateway
	jnl      journal.Journal
	log      *log.Entry

	spread  engine.Spread
	window  []market.Bar
	pending map[string]pendingTrack

	initialEquity float64
	realized      float64
	history       []ledger.TradeRecord

	now func() time.Time
}

func New(cfg Config, strat strategies.Strategy, provider Provider, gw broker.Gateway, jnl journal.Journal) (*Runner, error) {
	if cfg.Symbol == "" {
		return nil, fmt.Errorf("live: symbol is required")
	}
	if strat == nil || provider == nil || gw == nil {
		return nil, fmt.Errorf("live: strategy, provider, and gateway are all required")
	}
	if cfg.Mode == "" {
		cfg.Mode = engine.LongOnly
	}
	if !cfg.Mode.Valid() {
		return nil, fmt.Errorf("live: unknown trading mode %q", cfg.Mode)
	}
	if cfg.PositionPct <= 0 {
		cfg.PositionPct = 100
	}
	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}
	if cfg.MaxCandles <= 0 {
		cfg.MaxCandles = 200
	}
	if cfg.Lookback <= 0 {
		cfg.Lookback = strat.RequiredLookback()
		if cfg.Lookback <= 0 {
			cfg.Lookback = 1
		}
	}
	if cfg.PendingOrderTimeout <= 0 {
		cfg.PendingOrderTimeout = time.Minute
	}
	if jnl == nil {
		jnl = journal.Nop{}
	}

	return &Runner{
		cfg:      cfg,
		strat:    strat,
		provider: provider,
		gw:       gw,
		jnl:      jnl,
		log: log.WithFields(log.Fields{
			"symbol":   cfg.Symbol,
			"strategy": strat.Name(),
			"mode":     string(cfg.Mode),
		}),
		spread:  engine.Spread{Symbol: cfg.Symbol, Pips: cfg.SpreadPips},
		pending: make(map[string]pendingTrack),
		now:     time.Now,
	}, nil
}

// Run polls until the context is cancelled or MaxIterations is
// reached. A failed iteration is logged and the loop continues; only
// cancellation stops it.
func (r *Runner) Run(ctx context.Context) error {
	if acct, err := r.gw.GetAccount(ctx); err == nil {
		r.initialEquity = acct.Equity
	} else {
		r.log.WithError(err).Warn("initial account fetch failed")
	}

	r.log.WithField("interval", r.cfg.Interval).Info("live runner started")

	for iter := 0; r.cfg.MaxIterations == 0 || iter < r.cfg.MaxIterations; iter++ {
		select {
		case <-ctx.Done():
			r.log.Info("stop requested, shutting down")
			return nil
		default:
		}

		if err := r.runOnce(ctx); err != nil {
			r.log.WithError(err).Error("iteration failed, continuing")
		}

		select {
		case <-ctx.Done():
			r.log.Info("stop requested, shutting down")
			return nil
		case <-time.After(r.cfg.Interval):
		}
	}
	return nil
}

func (r *Runner) runOnce(ctx context.Context) error {
	latest, err := r.provider.GetLiveData(ctx, r.cfg.Symbol, r.cfg.Lookback)
	if err != nil {
		return fmt.Errorf("fetch bars: %w", err)
	}
	r.window = market.MergeBars(r.window, latest, r.cfg.MaxCandles)

	if len(r.window) < r.strat.RequiredLookback() {
		r.log.WithFields(log.Fields{
			"have": len(r.window), "need": r.strat.RequiredLookback(),
		}).Debug("insufficient lookback, waiting for more bars")
		return nil
	}

	rows, err := r.strat.GenerateSignals(r.window)
	if err != nil {
		return fmt.Errorf("generate signals: %w", err)
	}
	row := rows[len(rows)-1]

	if row.Conflicting() {
		r.log.WithField("time", row.Time).Warn("conflicting buy and sell signals, iteration skipped")
		return nil
	}
	if v, ok := r.strat.(strategies.Validator); ok {
		if err := v.ValidateSignalConditions(rows); err != nil {
			r.log.WithError(err).Warn("signal conditions rejected")
			return nil
		}
	}

	if pc, ok := r.gw.(PendingChecker); ok {
		if n := pc.CheckPendingOrders(); n > 0 {
			r.log.WithField("fills", n).Info("pending limit orders filled")
		}
	}
	r.reapPending(ctx)

	// Stale orders on the opposite side of a fresh signal would fill
	// after conditions reversed; cancel them before deciding.
	if row.Buy {
		r.cancelPendingSide(ctx, broker.SideSell)
	}
	if row.Sell {
		r.cancelPendingSide(ctx, broker.SideBuy)
	}

	pos, err := r.gw.GetPositionForSymbol(ctx, r.cfg.Symbol)
	if err != nil {
		return fmt.Errorf("fetch position: %w", err)
	}
	pos = pos.Normalize()

	action := engine.Decide(pos.Side, row.Buy, row.Sell, r.cfg.Mode)
	if action == engine.None {
		return nil
	}

	r.log.WithFields(log.Fields{
		"action": action.String(), "side": pos.Side.String(), "close": row.Close,
	}).Info("acting on signal")
	return r.execute(ctx, action, pos, row)
}

func (r *Runner) execute(ctx context.Context, action engine.Action, pos broker.Position, row market.SignalRow) error {
	acct, err := r.gw.GetAccount(ctx)
	if err != nil {
		return fmt.Errorf("fetch account: %w", err)
	}
	if acct.Equity <= 0 {
		return fmt.Errorf("account equity %.2f is not positive, refusing to trade", acct.Equity)
	}

	switch action {
	case engine.OpenLong:
		return r.open(ctx, ledger.Long, row, acct)
	case engine.OpenShort:
		return r.open(ctx, ledger.Short, row, acct)
	case engine.Close:
		return r.closePosition(ctx, pos, row)
	case engine.FlipToLong, engine.FlipToShort:
		if err := r.closePosition(ctx, pos, row); err != nil {
			return err
		}
		// Re-fetch so sizing sees the cash freed by the close.
		acct, err = r.gw.GetAccount(ctx)
		if err != nil {
			return fmt.Errorf("fetch account after close: %w", err)
		}
		side := ledger.Long
		if action == engine.FlipToShort {
			side = ledger.Short
		}
		return r.open(ctx, side, row, acct)
	}
	return nil
}

func (r *Runner) open(ctx context.Context, side ledger.Side, row market.SignalRow, acct broker.Account) error {
	execSide := engine.ExecBuy
	if side == ledger.Short {
		execSide = engine.ExecSell
	}
	fill := r.spread.Fill(execSide, row.Close)

	qty, amount := engine.PositionSize(acct.Cash, r.cfg.PositionPct, fill)
	if qty <= 0 {
		r.log.WithField("cash", acct.Cash).Warn("no cash to open position, signal ignored")
		return nil
	}
	if amount > acct.BuyingPower {
		r.log.WithFields(log.Fields{
			"trade_value": amount, "buying_power": acct.BuyingPower,
		}).Warn("trade value exceeds buying power, order rejected")
		return nil
	}

	req := broker.OrderRequest{Symbol: r.cfg.Symbol, Qty: qty, Type: broker.Market}
	if r.cfg.UseLimitOrders {
		req.Type = broker.Limit
		req.LimitPrice = fill
	}

	var order broker.Order
	var err error
	if side == ledger.Long {
		order, err = r.gw.Buy(ctx, req)
	} else {
		order, err = r.gw.Sell(ctx, req)
	}
	if err != nil {
		return fmt.Errorf("submit %s open: %w", side, err)
	}

	if order.Status == broker.StatusPending {
		r.pending[order.ID] = pendingTrack{order: order, side: side, placedAt: r.now()}
		r.log.WithFields(log.Fields{
			"order_id": order.ID, "limit": order.LimitPrice,
		}).Info("limit order pending")
		return nil
	}

	price := order.FilledPrice
	if price <= 0 {
		price = fill
	}
	action := ledger.ActionBuy
	if side == ledger.Short {
		action = ledger.ActionSellShort
	}
	r.record(ctx, row.Time, action, price, order.Qty, 0, ledger.ResultOpen)
	return nil
}

func (r *Runner) closePosition(ctx context.Context, pos broker.Position, row market.SignalRow) error {
	if pos.Side == ledger.Flat || pos.Qty == 0 {
		return nil
	}

	order, err := r.gw.ClosePosition(ctx, r.cfg.Symbol)
	if err != nil {
		return fmt.Errorf("close position: %w", err)
	}

	execSide := engine.ExecSell
	if pos.Side == ledger.Short {
		execSide = engine.ExecBuy
	}
	price := order.FilledPrice
	if price <= 0 {
		price = r.spread.Fill(execSide, row.Close)
	}

	var profit float64
	action := ledger.ActionCloseLong
	if pos.Side == ledger.Long {
		profit = (price - pos.AvgEntryPrice) * pos.Qty
	} else {
		profit = (pos.AvgEntryPrice - price) * pos.Qty
		action = ledger.ActionCloseShort
	}
	r.realized += profit

	result := ledger.ResultLoss
	if profit > 0 {
		result = ledger.ResultWin
	}
	r.record(ctx, row.Time, action, price, pos.Qty, profit, result)
	return nil
}

// record appends to the local history and the journal. The history is
// reporting only; the broker remains the source of truth for position
// state.
func (r *Runner) record(ctx context.Context, t time.Time, action ledger.Action, price, qty, profit float64, result ledger.Result) {
	var cash, equity float64
	if acct, err := r.gw.GetAccount(ctx); err == nil {
		cash, equity = acct.Cash, acct.Equity
	} else {
		r.log.WithError(err).Warn("account refresh failed, record has zero balances")
	}

	rec := ledger.TradeRecord{
		ID:                id.New(),
		Time:              t,
		Symbol:            r.cfg.Symbol,
		Action:            action,
		Price:             price,
		Shares:            qty,
		CostOrProceeds:    qty * price,
		Profit:            profit,
		Balance:           cash,
		TotalAccountWorth: equity,
		TotalProfit:       r.realized,
		Result:            result,
	}
	r.history = append(r.history, rec)

	if err := r.jnl.RecordTrade(rec); err != nil {
		r.log.WithError(err).Error("journal write failed")
	}

	r.log.WithFields(log.Fields{
		"action": string(action), "price": price, "qty": qty, "profit": profit,
	}).Info("trade recorded")
}

// reapPending cancels tracked limit orders older than the timeout. A
// cancel that fails is assumed to have filled broker-side in the
// meantime and is recorded as an open.
func (r *Runner) reapPending(ctx context.Context) {
	if len(r.pending) == 0 {
		return
	}

	now := r.now()
	for orderID, p := range r.pending {
		if now.Sub(p.placedAt) < r.cfg.PendingOrderTimeout {
			continue
		}

		if err := r.gw.CancelOrder(ctx, orderID); err != nil {
			r.log.WithField("order_id", orderID).Info("expired order already filled")
			action := ledger.ActionBuy
			if p.side == ledger.Short {
				action = ledger.ActionSellShort
			}
			r.record(ctx, now, action, p.order.LimitPrice, p.order.Qty, 0, ledger.ResultOpen)
		} else {
			r.log.WithFields(log.Fields{
				"order_id": orderID, "age": now.Sub(p.placedAt),
			}).Info("pending order expired, cancelled")
		}
		delete(r.pending, orderID)
	}
}

func (r *Runner) cancelPendingSide(ctx context.Context, side broker.OrderSide) {
	for orderID, p := range r.pending {
		if p.order.Side != side {
			continue
		}
		if err := r.gw.CancelOrder(ctx, orderID); err != nil {
			r.log.WithError(err).WithField("order_id", orderID).Warn("cancel of opposite-side order failed")
		}
		delete(r.pending, orderID)
	}
}

// History returns the trades recorded this session.
func (r *Runner) History() []ledger.TradeRecord { return r.history }

// PendingOrders reports limit orders still awaiting a fill.
func (r *Runner) PendingOrders() int { return len(r.pending) }

// Summary aggregates this session's trades.
func (r *Runner) Summary() backtest.Report {
	return backtest.Analyze(r.cfg.Symbol, r.initialEquity, r.history)
}
