// Package sim is a fully local broker: live market data in, instant
// fills out, with the same gateway surface as a real adapter. Useful
// for strategy testing without touching an exchange.
package sim

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/battrading/bat/broker"
	"github.com/battrading/bat/ledger"
	"github.com/battrading/bat/pkg/id"
)

type position struct {
	qty      float64 // signed: >0 long, <0 short
	avgEntry float64
}

type pendingOrder struct {
	id         string
	symbol     string
	side       broker.OrderSide
	qty        float64
	limitPrice float64
	createdAt  time.Time
}

// Engine implements broker.Gateway against in-memory state. Prices are
// pushed in via SetPrice (typically from the same data provider the
// live runner polls).
type Engine struct {
	mu             sync.Mutex
	initialBalance float64
	cash           float64
	prices         map[string]float64
	positions      map[string]*position
	pending        map[string]*pendingOrder
	tradeCount     int
	now            func() time.Time
}

func NewEngine(initialBalance float64) *Engine {
	return &Engine{
		initialBalance: initialBalance,
		cash:           initialBalance,
		prices:         make(map[string]float64),
		positions:      make(map[string]*position),
		pending:        make(map[string]*pendingOrder),
		now:            time.Now,
	}
}

// SetPrice updates the engine's view of the market for symbol.
func (e *Engine) SetPrice(symbol string, price float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.prices[symbol] = price
}

func (e *Engine) priceLocked(symbol string) (float64, error) {
	p, ok := e.prices[symbol]
	if !ok || p <= 0 {
		return 0, fmt.Errorf("sim: no price for %q", symbol)
	}
	return p, nil
}

func (e *Engine) Buy(ctx context.Context, req broker.OrderRequest) (broker.Order, error) {
	return e.submit(ctx, broker.SideBuy, req)
}

func (e *Engine) Sell(ctx context.Context, req broker.OrderRequest) (broker.Order, error) {
	return e.submit(ctx, broker.SideSell, req)
}

func (e *Engine) submit(_ context.Context, side broker.OrderSide, req broker.OrderRequest) (broker.Order, error) {
	if req.Qty <= 0 {
		return broker.Order{}, fmt.Errorf("sim: quantity must be positive, got %v", req.Qty)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	current, err := e.priceLocked(req.Symbol)
	if err != nil {
		return broker.Order{}, err
	}

	orderID := id.New()

	// A limit order that cannot fill at the current price is parked as
	// pending; it fills later via CheckPendingOrders or is cancelled.
	if req.Type == broker.Limit && req.LimitPrice > 0 {
		unfillable := (side == broker.SideBuy && current > req.LimitPrice) ||
			(side == broker.SideSell && current < req.LimitPrice)
		if unfillable {
			e.pending[orderID] = &pendingOrder{
				id:         orderID,
				symbol:     req.Symbol,
				side:       side,
				qty:        req.Qty,
				limitPrice: req.LimitPrice,
				createdAt:  e.now(),
			}
			return broker.Order{
				ID:         orderID,
				Symbol:     req.Symbol,
				Side:       side,
				Qty:        req.Qty,
				Type:       broker.Limit,
				LimitPrice: req.LimitPrice,
				Status:     broker.StatusPending,
			}, nil
		}
		current = req.LimitPrice
	}

	if err := e.executeLocked(side, req.Symbol, req.Qty, current); err != nil {
		return broker.Order{}, err
	}

	return broker.Order{
		ID:          orderID,
		Symbol:      req.Symbol,
		Side:        side,
		Qty:         req.Qty,
		Type:        req.Type,
		Status:      broker.StatusFilled,
		FilledPrice: current,
	}, nil
}

// executeLocked applies a fill to cash and the signed position,
// recomputing the quantity-weighted average entry on same-side adds
// and crossing through flat on an oversized opposite-side fill.
func (e *Engine) executeLocked(side broker.OrderSide, symbol string, qty, price float64) error {
	value := qty * price

	if side == broker.SideBuy && value > e.cash {
		return fmt.Errorf("sim: insufficient cash: need %.2f, have %.2f", value, e.cash)
	}

	pos := e.positions[symbol]
	if pos == nil {
		pos = &position{}
		e.positions[symbol] = pos
	}

	signed := qty
	if side == broker.SideSell {
		signed = -qty
		e.cash += value
	} else {
		e.cash -= value
	}

	switch {
	case pos.qty == 0 || sameSign(pos.qty, signed):
		total := abs(pos.qty) + qty
		pos.avgEntry = (abs(pos.qty)*pos.avgEntry + qty*price) / total
		pos.qty += signed
	case qty >= abs(pos.qty):
		// Close out and cross through flat to the other side.
		remaining := qty - abs(pos.qty)
		pos.qty = remaining
		if side == broker.SideSell {
			pos.qty = -remaining
		}
		pos.avgEntry = price
		if remaining == 0 {
			pos.avgEntry = 0
		}
	default:
		// Partial reduce keeps the original entry.
		pos.qty += signed
	}

	e.tradeCount++
	return nil
}

func (e *Engine) ClosePosition(ctx context.Context, symbol string) (broker.Order, error) {
	e.mu.Lock()
	pos := e.positions[symbol]
	var qty float64
	if pos != nil {
		qty = pos.qty
	}
	e.mu.Unlock()

	if qty == 0 {
		return broker.Order{}, fmt.Errorf("sim: no position to close for %q", symbol)
	}

	req := broker.OrderRequest{Symbol: symbol, Qty: abs(qty), Type: broker.Market}
	if qty > 0 {
		return e.Sell(ctx, req)
	}
	return e.Buy(ctx, req)
}

func (e *Engine) CancelOrder(_ context.Context, orderID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.pending[orderID]; !ok {
		return fmt.Errorf("sim: order %q is not pending", orderID)
	}
	delete(e.pending, orderID)
	return nil
}

// CheckPendingOrders fills any parked limit order whose price condition
// is now met. Returns the number of fills.
func (e *Engine) CheckPendingOrders() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	filled := 0
	for orderID, o := range e.pending {
		current, err := e.priceLocked(o.symbol)
		if err != nil {
			continue
		}

		fillable := (o.side == broker.SideBuy && current <= o.limitPrice) ||
			(o.side == broker.SideSell && current >= o.limitPrice)
		if !fillable {
			continue
		}

		if err := e.executeLocked(o.side, o.symbol, o.qty, o.limitPrice); err != nil {
			continue
		}
		delete(e.pending, orderID)
		filled++
	}
	return filled
}

func (e *Engine) GetPositionForSymbol(_ context.Context, symbol string) (broker.Position, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	pos := e.positions[symbol]
	if pos == nil || pos.qty == 0 {
		return broker.Position{Symbol: symbol, Side: ledger.Flat}, nil
	}

	current := e.prices[symbol]
	p := broker.Position{
		Symbol:        symbol,
		Qty:           pos.qty,
		AvgEntryPrice: pos.avgEntry,
		MarketValue:   pos.qty * current,
	}
	if pos.qty > 0 {
		p.UnrealizedPL = (current - pos.avgEntry) * pos.qty
	} else {
		p.UnrealizedPL = (pos.avgEntry - current) * -pos.qty
	}
	return p.Normalize(), nil
}

func (e *Engine) GetAccount(_ context.Context) (broker.Account, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	portfolio := e.cash
	for symbol, pos := range e.positions {
		portfolio += pos.qty * e.prices[symbol]
	}

	return broker.Account{
		ID:             "sim-account",
		Equity:         portfolio,
		BuyingPower:    e.cash,
		PortfolioValue: portfolio,
		Cash:           e.cash,
	}, nil
}

// PendingCount reports parked limit orders, for status display.
func (e *Engine) PendingCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.pending)
}

// TradeCount reports executed fills since start.
func (e *Engine) TradeCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tradeCount
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

func sameSign(a, b float64) bool {
	return (a > 0 && b > 0) || (a < 0 && b < 0)
}
