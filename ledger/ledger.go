// Package ledger is the single source of truth for current holdings and
// realized performance. It performs no I/O; the runners decide when to
// trade, the ledger only records the result.
package ledger

import (
	"errors"
	"time"
)

// Side is the current position direction.
type Side int8

const (
	Flat Side = iota
	Long
	Short
)

func (s Side) String() string {
	switch s {
	case Long:
		return "long"
	case Short:
		return "short"
	default:
		return "flat"
	}
}

var (
	ErrNoPosition   = errors.New("ledger: no open position to close")
	ErrBadSide      = errors.New("ledger: open requires long or short")
	ErrBadQuantity  = errors.New("ledger: quantity must be positive")
	ErrBadPrice     = errors.New("ledger: price must be positive")
	ErrSideMismatch = errors.New("ledger: cannot add to opposite side without closing")
)

// Ledger tracks one symbol's position, cash balance, and realized
// gains. Account worth is realized-only: open positions never move it.
type Ledger struct {
	symbol         string
	initialBalance float64

	cash     float64
	realized float64

	side       Side
	qty        float64
	entryPrice float64

	records []TradeRecord
}

func New(symbol string, initialBalance float64) *Ledger {
	return &Ledger{
		symbol:         symbol,
		initialBalance: initialBalance,
		cash:           initialBalance,
	}
}

func (l *Ledger) Symbol() string          { return l.symbol }
func (l *Ledger) InitialBalance() float64 { return l.initialBalance }
func (l *Ledger) Cash() float64           { return l.cash }
func (l *Ledger) RealizedGains() float64  { return l.realized }
func (l *Ledger) Side() Side              { return l.side }
func (l *Ledger) Quantity() float64       { return l.qty }
func (l *Ledger) EntryPrice() float64     { return l.entryPrice }

// AccountWorth is initial balance plus realized gains. Unrealized P&L
// on an open position is deliberately excluded so that return
// statistics never double-count a position that has not closed.
func (l *Ledger) AccountWorth() float64 {
	return l.initialBalance + l.realized
}

// UnrealizedPL marks the open position against price. Reported for
// display only; it never feeds AccountWorth.
func (l *Ledger) UnrealizedPL(price float64) float64 {
	switch l.side {
	case Long:
		return (price - l.entryPrice) * l.qty
	case Short:
		return (l.entryPrice - price) * l.qty
	default:
		return 0
	}
}

// Records returns the append-only trade log.
func (l *Ledger) Records() []TradeRecord {
	return l.records
}

// Open records a new position, or adds to an existing same-side one
// with a quantity-weighted average entry price. Long opens spend cash;
// short opens credit the sale proceeds to cash immediately; there is
// no margin modeling, the liability lives only in entryPrice/qty.
func (l *Ledger) Open(t time.Time, side Side, qty, price float64) (TradeRecord, error) {
	if side != Long && side != Short {
		return TradeRecord{}, ErrBadSide
	}
	if qty <= 0 {
		return TradeRecord{}, ErrBadQuantity
	}
	if price <= 0 {
		return TradeRecord{}, ErrBadPrice
	}
	if l.side != Flat && l.side != side {
		return TradeRecord{}, ErrSideMismatch
	}

	if l.side == side && l.qty > 0 {
		total := l.qty + qty
		l.entryPrice = (l.qty*l.entryPrice + qty*price) / total
		l.qty = total
	} else {
		l.side = side
		l.qty = qty
		l.entryPrice = price
	}

	value := qty * price
	action := ActionBuy
	if side == Long {
		l.cash -= value
	} else {
		action = ActionSellShort
		l.cash += value
	}

	rec := l.append(t, action, price, qty, value, 0, ResultOpen)
	return rec, nil
}

// Close closes the full held quantity at price and realizes the P&L.
// Partial closes are not supported: the state machine always exits a
// position completely before reversing.
func (l *Ledger) Close(t time.Time, price float64) (TradeRecord, error) {
	if l.side == Flat || l.qty <= 0 {
		return TradeRecord{}, ErrNoPosition
	}
	if price <= 0 {
		return TradeRecord{}, ErrBadPrice
	}

	qty := l.qty
	value := qty * price

	var profit float64
	var action Action
	if l.side == Long {
		profit = (price - l.entryPrice) * qty
		action = ActionCloseLong
		l.cash += value
	} else {
		profit = (l.entryPrice - price) * qty
		action = ActionCloseShort
		l.cash -= value
	}

	l.realized += profit
	l.side = Flat
	l.qty = 0
	l.entryPrice = 0

	result := ResultLoss
	if profit > 0 {
		result = ResultWin
	}

	rec := l.append(t, action, price, qty, value, profit, result)
	return rec, nil
}

func (l *Ledger) append(t time.Time, action Action, price, qty, value, profit float64, result Result) TradeRecord {
	rec := TradeRecord{
		ID:                newID(),
		Time:              t,
		Symbol:            l.symbol,
		Action:            action,
		Price:             price,
		Shares:            qty,
		CostOrProceeds:    value,
		Profit:            profit,
		Balance:           l.cash,
		TotalAccountWorth: l.AccountWorth(),
		TotalProfit:       l.realized,
		Result:            result,
	}
	l.records = append(l.records, rec)
	return rec
}
