package strategy

import (
	"github.com/rustyeddy/tradebot/indicators"
	"github.com/rustyeddy/tradebot/market"
)

// BollingerStrategy buys when the last close drops below the lower band
// (oversold) and sells when it rises above the upper band (overbought).
type BollingerStrategy struct {
	Period int
	StdDev float64
}

func NewBollinger(period int, stdDev float64) *BollingerStrategy {
	return &BollingerStrategy{Period: period, StdDev: stdDev}
}

func (s *BollingerStrategy) Name() string { return "bollinger" }

func (s *BollingerStrategy) Analyze(candles []market.Candle, symbol string) (Signal, error) {
	if len(candles) < s.Period+1 {
		return Hold, nil
	}

	closes := market.Closes(candles)
	lower, _, upper, err := indicators.Bollinger(closes, s.Period, s.StdDev)
	if err != nil {
		return Hold, err
	}

	price := closes[len(closes)-1]
	switch {
	case price < lower:
		return Buy, nil
	case price > upper:
		return Sell, nil
	default:
		return Hold, nil
	}
}
