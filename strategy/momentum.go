package strategy

import (
	"github.com/rustyeddy/tradebot/indicators"
	"github.com/rustyeddy/tradebot/market"
)

// MomentumStrategy trades short/long moving-average crossovers. A bullish
// cross must also clear the momentum threshold; a bearish cross always
// sells.
type MomentumStrategy struct {
	Short     int
	Long      int
	Threshold float64
}

func NewMomentum(short, long int, threshold float64) *MomentumStrategy {
	return &MomentumStrategy{Short: short, Long: long, Threshold: threshold}
}

func (s *MomentumStrategy) Name() string { return "momentum" }

func (s *MomentumStrategy) Analyze(candles []market.Candle, symbol string) (Signal, error) {
	if len(candles) < s.Long+1 {
		return Hold, nil
	}

	closes := market.Closes(candles)
	prev := closes[:len(closes)-1]

	curShort, err := indicators.SMA(closes, s.Short)
	if err != nil {
		return Hold, err
	}
	curLong, err := indicators.SMA(closes, s.Long)
	if err != nil {
		return Hold, err
	}
	prevShort, err := indicators.SMA(prev, s.Short)
	if err != nil {
		return Hold, err
	}
	prevLong, err := indicators.SMA(prev, s.Long)
	if err != nil {
		return Hold, err
	}

	if curLong == 0 {
		return Hold, nil
	}
	momentum := (curShort - curLong) / curLong

	switch {
	case prevShort <= prevLong && curShort > curLong && momentum > s.Threshold:
		return Buy, nil
	case prevShort >= prevLong && curShort < curLong:
		return Sell, nil
	default:
		return Hold, nil
	}
}
