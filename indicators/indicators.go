// Package indicators provides technical-analysis computations over close
// series. All functions are pure; callers decide what a value means.
package indicators

import (
	"fmt"
	"math"
)

// SMA returns the simple moving average of the last period values.
func SMA(values []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, fmt.Errorf("period must be positive, got %d", period)
	}
	if len(values) < period {
		return 0, fmt.Errorf("not enough values: need %d, got %d", period, len(values))
	}

	sum := 0.0
	for _, v := range values[len(values)-period:] {
		sum += v
	}
	return sum / float64(period), nil
}

// EMASeries returns the exponential moving average series, same length as
// the input. Entries before index period-1 are zero and not meaningful; the
// series is seeded with the SMA of the first period values.
func EMASeries(values []float64, period int) ([]float64, error) {
	if period <= 0 {
		return nil, fmt.Errorf("period must be positive, got %d", period)
	}
	if len(values) < period {
		return nil, fmt.Errorf("not enough values: need %d, got %d", period, len(values))
	}

	out := make([]float64, len(values))

	sum := 0.0
	for i := 0; i < period; i++ {
		sum += values[i]
	}
	ema := sum / float64(period)
	out[period-1] = ema

	k := 2.0 / float64(period+1)
	for i := period; i < len(values); i++ {
		ema = (values[i]-ema)*k + ema
		out[i] = ema
	}
	return out, nil
}

// RSI returns the Relative Strength Index of the latest value using Wilder
// smoothing over the whole series.
func RSI(values []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, fmt.Errorf("period must be positive, got %d", period)
	}
	if len(values) < period+1 {
		return 0, fmt.Errorf("not enough values: need %d, got %d", period+1, len(values))
	}

	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		change := values[i] - values[i-1]
		if change > 0 {
			avgGain += change
		} else {
			avgLoss -= change
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)

	for i := period + 1; i < len(values); i++ {
		change := values[i] - values[i-1]
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
	}

	if avgLoss == 0 {
		return 100, nil
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs), nil
}

// MACD returns the MACD line and its signal line, aligned to each other.
// Index 0 of both corresponds to the first bar where the slow EMA is
// defined; signal entries before index signalPeriod-1 are zero and not
// meaningful.
func MACD(values []float64, fast, slow, signalPeriod int) (macd, signal []float64, err error) {
	if fast <= 0 || slow <= 0 || signalPeriod <= 0 {
		return nil, nil, fmt.Errorf("periods must be positive, got %d/%d/%d", fast, slow, signalPeriod)
	}
	if fast >= slow {
		return nil, nil, fmt.Errorf("fast period %d must be below slow period %d", fast, slow)
	}
	if len(values) < slow+signalPeriod {
		return nil, nil, fmt.Errorf("not enough values: need %d, got %d", slow+signalPeriod, len(values))
	}

	fastEMA, err := EMASeries(values, fast)
	if err != nil {
		return nil, nil, err
	}
	slowEMA, err := EMASeries(values, slow)
	if err != nil {
		return nil, nil, err
	}

	macd = make([]float64, len(values)-slow+1)
	for i := range macd {
		j := slow - 1 + i
		macd[i] = fastEMA[j] - slowEMA[j]
	}

	signal, err = EMASeries(macd, signalPeriod)
	if err != nil {
		return nil, nil, err
	}
	return macd, signal, nil
}

// Bollinger returns the lower band, middle (SMA), and upper band for the
// latest value, using a population standard deviation over the last period
// values.
func Bollinger(values []float64, period int, stdDev float64) (lower, middle, upper float64, err error) {
	middle, err = SMA(values, period)
	if err != nil {
		return 0, 0, 0, err
	}

	window := values[len(values)-period:]
	var sq float64
	for _, v := range window {
		d := v - middle
		sq += d * d
	}
	sd := math.Sqrt(sq / float64(period))

	return middle - stdDev*sd, middle, middle + stdDev*sd, nil
}
