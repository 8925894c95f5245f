// Package broker defines the gateway contract the runners trade
// through. Two concrete gateways exist: the Alpaca REST adapter and a
// fully local simulated broker; the runners depend only on this
// interface.
package broker

import (
	"context"

	"github.com/battrading/bat/ledger"
)

type OrderType string

const (
	Market OrderType = "market"
	Limit  OrderType = "limit"
)

type OrderSide string

const (
	SideBuy  OrderSide = "buy"
	SideSell OrderSide = "sell"
)

type OrderStatus string

const (
	StatusFilled   OrderStatus = "filled"
	StatusPending  OrderStatus = "pending"
	StatusCanceled OrderStatus = "canceled"
	StatusFailed   OrderStatus = "failed"
)

// OrderRequest describes one order submission. LimitPrice is ignored
// for market orders.
type OrderRequest struct {
	Symbol     string
	Qty        float64
	Type       OrderType
	LimitPrice float64
}

// Order is the broker's answer to a submission, cancel, or close.
type Order struct {
	ID          string
	Symbol      string
	Side        OrderSide
	Qty         float64
	Type        OrderType
	LimitPrice  float64
	Status      OrderStatus
	FilledPrice float64
}

// Position is the broker-side view of holdings for one symbol. Qty may
// arrive negative for shorts depending on the adapter; Normalize folds
// the sign into Side.
type Position struct {
	Symbol        string
	Qty           float64
	Side          ledger.Side
	AvgEntryPrice float64
	MarketValue   float64
	UnrealizedPL  float64
}

// Normalize returns the position with a non-negative quantity and a
// consistent side, regardless of the adapter's sign convention. A zero
// quantity is flat.
func (p Position) Normalize() Position {
	switch {
	case p.Qty < 0:
		p.Qty = -p.Qty
		p.Side = ledger.Short
	case p.Qty == 0:
		p.Side = ledger.Flat
	case p.Side == ledger.Flat:
		p.Side = ledger.Long
	}
	return p
}

// Account is a point-in-time account snapshot.
type Account struct {
	ID             string
	Equity         float64
	BuyingPower    float64
	PortfolioValue float64
	Cash           float64
}

// Gateway abstracts order placement and position/account queries.
// Position and account state is always re-fetched through it, never
// cached, so local bookkeeping cannot drift from broker truth.
type Gateway interface {
	Buy(ctx context.Context, req OrderRequest) (Order, error)
	Sell(ctx context.Context, req OrderRequest) (Order, error)
	ClosePosition(ctx context.Context, symbol string) (Order, error)
	CancelOrder(ctx context.Context, orderID string) error
	GetPositionForSymbol(ctx context.Context, symbol string) (Position, error)
	GetAccount(ctx context.Context) (Account, error)
}
