package strategy

import (
	"github.com/rustyeddy/tradebot/indicators"
	"github.com/rustyeddy/tradebot/market"
)

// RSIStrategy buys when the RSI drops below the oversold bound and sells
// when it rises above the overbought bound.
type RSIStrategy struct {
	Period     int
	Oversold   float64
	Overbought float64
}

func NewRSI(period int, oversold, overbought float64) *RSIStrategy {
	return &RSIStrategy{Period: period, Oversold: oversold, Overbought: overbought}
}

func (s *RSIStrategy) Name() string { return "rsi" }

func (s *RSIStrategy) Analyze(candles []market.Candle, symbol string) (Signal, error) {
	if len(candles) < s.Period+1 {
		return Hold, nil
	}

	rsi, err := indicators.RSI(market.Closes(candles), s.Period)
	if err != nil {
		return Hold, err
	}

	switch {
	case rsi < s.Oversold:
		return Buy, nil
	case rsi > s.Overbought:
		return Sell, nil
	default:
		return Hold, nil
	}
}
