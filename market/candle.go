// Package market holds shared market-data types.
package market

import "time"

// Candle represents one OHLCV (Open, High, Low, Close, Volume) bar.
// Series of candles are always ordered oldest to newest.
type Candle struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Closes extracts the close series from candles, preserving order.
func Closes(candles []Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.Close
	}
	return out
}
