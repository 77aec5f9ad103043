// Package data fetches market data: historical candles and current prices.
package data

import (
	"context"
	"errors"

	"github.com/rustyeddy/tradebot/market"
)

// ErrNoData reports that a symbol has no retrievable data. The engine treats
// it as "skip this symbol for this cycle".
var ErrNoData = errors.New("no data for symbol")

// Provider serves price data to the engine.
//
// PricesBulk is best effort: a symbol whose price cannot be fetched is
// simply absent from the result, never an error.
type Provider interface {
	Historical(ctx context.Context, symbol string) ([]market.Candle, error)
	PricesBulk(ctx context.Context, symbols []string) map[string]float64
}
