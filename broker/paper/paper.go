// Package paper implements an in-memory simulated broker with deterministic,
// immediate order matching against a single cash account. It is the ground
// truth the engine's risk and accounting logic is tested against.
package paper

import (
	"context"
	"sync"
	"time"

	"github.com/rustyeddy/tradebot/broker"
	"github.com/rustyeddy/tradebot/pkg/id"
)

// Broker holds the full simulated account: cash, the position book, the
// order table, and an append-only fill history. All state is guarded by a
// single mutex so engine cycles and host status reads can run on different
// goroutines.
type Broker struct {
	mu        sync.Mutex
	cash      float64
	initial   float64
	positions map[string]broker.Position
	orders    map[string]broker.Order
	history   []broker.Order
}

// New creates a paper broker funded with the given starting cash.
func New(initialBalance float64) *Broker {
	return &Broker{
		cash:      initialBalance,
		initial:   initialBalance,
		positions: make(map[string]broker.Position),
		orders:    make(map[string]broker.Order),
	}
}

// Connect always succeeds; there is no remote side.
func (b *Broker) Connect(ctx context.Context) error {
	return nil
}

func (b *Broker) Balance(ctx context.Context) (float64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.cash, nil
}

// Positions returns a copy of the position book. Mutating the returned map
// has no effect on broker state.
func (b *Broker) Positions(ctx context.Context) (map[string]broker.Position, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make(map[string]broker.Position, len(b.positions))
	for sym, pos := range b.positions {
		out[sym] = pos
	}
	return out, nil
}

// PlaceOrder fills or rejects synchronously; it never leaves an order
// pending. Every call assigns a fresh order ID regardless of outcome, and
// every order ends up in the order table. Only fills reach the history.
//
// Buys are rejected when the notional exceeds available cash; sells are
// rejected when the book holds no position or too little quantity. A
// rejected order mutates no account state.
func (b *Broker) PlaceOrder(ctx context.Context, symbol string, side broker.Side, quantity, price float64) (broker.Order, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	order := broker.Order{
		ID:       id.New(),
		Symbol:   symbol,
		Side:     side,
		Quantity: quantity,
		Price:    price,
		Status:   broker.StatusFilled,
		Time:     time.Now(),
	}

	if rejected := b.rejectLocked(symbol, side, quantity, price); rejected {
		order.Status = broker.StatusRejected
		b.orders[order.ID] = order
		return order, nil
	}

	switch side {
	case broker.Buy:
		b.cash -= order.Value()
		if pos, ok := b.positions[symbol]; ok {
			total := pos.Quantity + quantity
			pos.AvgPrice = (pos.AvgPrice*pos.Quantity + price*quantity) / total
			pos.Quantity = total
			b.positions[symbol] = pos
		} else {
			b.positions[symbol] = broker.Position{
				Symbol:       symbol,
				Quantity:     quantity,
				AvgPrice:     price,
				CurrentPrice: price,
			}
		}

	case broker.Sell:
		b.cash += order.Value()
		pos := b.positions[symbol]
		pos.Quantity -= quantity
		if pos.Quantity <= 0 {
			delete(b.positions, symbol)
		} else {
			b.positions[symbol] = pos
		}
	}

	b.orders[order.ID] = order
	b.history = append(b.history, order)
	return order, nil
}

// rejectLocked decides whether an order must be rejected, without mutating
// anything. Non-positive quantity or price is always rejected.
func (b *Broker) rejectLocked(symbol string, side broker.Side, quantity, price float64) bool {
	if quantity <= 0 || price <= 0 {
		return true
	}

	switch side {
	case broker.Buy:
		return quantity*price > b.cash
	case broker.Sell:
		pos, ok := b.positions[symbol]
		return !ok || pos.Quantity < quantity
	default:
		return true
	}
}

// OrderStatus reports the status of a previously placed order, or
// broker.ErrOrderNotFound for an unknown ID.
func (b *Broker) OrderStatus(ctx context.Context, orderID string) (broker.Status, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	order, ok := b.orders[orderID]
	if !ok {
		return "", broker.ErrOrderNotFound
	}
	return order.Status, nil
}

// CancelOrder fails with broker.ErrOrderNotOpen for any known order because
// fills here are synchronous and terminal; there is never a pending order to
// cancel. Unknown IDs fail with broker.ErrOrderNotFound.
func (b *Broker) CancelOrder(ctx context.Context, orderID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.orders[orderID]; !ok {
		return broker.ErrOrderNotFound
	}
	return broker.ErrOrderNotOpen
}

// UpdatePrices marks existing positions to market. Cash and realized results
// are untouched; unknown symbols are ignored.
func (b *Broker) UpdatePrices(prices map[string]float64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for symbol, price := range prices {
		if pos, ok := b.positions[symbol]; ok {
			pos.CurrentPrice = price
			b.positions[symbol] = pos
		}
	}
}

// TotalValue returns cash plus the market value of every open position, the
// authoritative equity figure for the account.
func (b *Broker) TotalValue(ctx context.Context) (float64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	total := b.cash
	for _, pos := range b.positions {
		total += pos.MarketValue()
	}
	return total, nil
}

// History returns a copy of the fill history, oldest first. Rejected orders
// never appear here.
func (b *Broker) History() []broker.Order {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]broker.Order, len(b.history))
	copy(out, b.history)
	return out
}
