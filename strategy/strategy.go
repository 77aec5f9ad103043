// Package strategy defines the trade-signal contract and the built-in
// technical-analysis strategies.
package strategy

import (
	"fmt"
	"strings"

	"github.com/rustyeddy/tradebot/market"
)

// Signal is a strategy's advisory output for one instrument.
type Signal int

const (
	Hold Signal = iota
	Buy
	Sell
)

func (s Signal) String() string {
	switch s {
	case Buy:
		return "buy"
	case Sell:
		return "sell"
	default:
		return "hold"
	}
}

// Strategy turns a price history into a signal. Candles are ordered oldest
// to newest. Implementations must return Hold, not an error, when the
// history is too short to analyze.
type Strategy interface {
	Name() string
	Analyze(candles []market.Candle, symbol string) (Signal, error)
}

// ByName constructs a built-in strategy with its default parameters.
func ByName(name string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "rsi":
		return NewRSI(14, 30, 70), nil
	case "macd":
		return NewMACD(12, 26, 9), nil
	case "bollinger":
		return NewBollinger(20, 2.0), nil
	case "momentum":
		return NewMomentum(10, 30, 0.02), nil
	default:
		return nil, fmt.Errorf("unknown strategy %q (supported: rsi, macd, bollinger, momentum)", name)
	}
}
