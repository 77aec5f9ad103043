package strategy

import (
	"github.com/rustyeddy/tradebot/indicators"
	"github.com/rustyeddy/tradebot/market"
)

// MACDStrategy signals on crossovers between the MACD line and its signal
// line: buy on a bullish cross, sell on a bearish cross.
type MACDStrategy struct {
	Fast         int
	Slow         int
	SignalPeriod int
}

func NewMACD(fast, slow, signalPeriod int) *MACDStrategy {
	return &MACDStrategy{Fast: fast, Slow: slow, SignalPeriod: signalPeriod}
}

func (s *MACDStrategy) Name() string { return "macd" }

func (s *MACDStrategy) Analyze(candles []market.Candle, symbol string) (Signal, error) {
	// One extra bar so a previous value exists for cross detection.
	if len(candles) < s.Slow+s.SignalPeriod+1 {
		return Hold, nil
	}

	macd, signal, err := indicators.MACD(market.Closes(candles), s.Fast, s.Slow, s.SignalPeriod)
	if err != nil {
		return Hold, err
	}

	last := len(macd) - 1
	curMACD, prevMACD := macd[last], macd[last-1]
	curSig, prevSig := signal[last], signal[last-1]

	switch {
	case prevMACD <= prevSig && curMACD > curSig:
		return Buy, nil
	case prevMACD >= prevSig && curMACD < curSig:
		return Sell, nil
	default:
		return Hold, nil
	}
}
