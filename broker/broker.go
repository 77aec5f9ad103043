// Package broker defines the order contract shared by every broker backend
// and the interface the trading engine drives.
package broker

import (
	"context"
	"errors"
)

var (
	ErrOrderNotFound = errors.New("order not found")
	ErrOrderNotOpen  = errors.New("order is not open")
)

// Broker is the capability every backend must provide. Implementations own
// their account state exclusively; callers only see copies.
type Broker interface {
	Connect(ctx context.Context) error
	Balance(ctx context.Context) (float64, error)
	Positions(ctx context.Context) (map[string]Position, error)
	PlaceOrder(ctx context.Context, symbol string, side Side, quantity, price float64) (Order, error)
	OrderStatus(ctx context.Context, orderID string) (Status, error)
	CancelOrder(ctx context.Context, orderID string) error
}

// PriceUpdater is an optional capability for brokers that hold their own
// position book and can be marked to market. Probe with a type assertion.
type PriceUpdater interface {
	UpdatePrices(prices map[string]float64)
}

// Valuer is an optional capability for brokers that can report total account
// equity directly. Callers without it fall back to balance plus the sum of
// position market values.
type Valuer interface {
	TotalValue(ctx context.Context) (float64, error)
}
