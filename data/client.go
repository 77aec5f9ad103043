package data

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/rustyeddy/tradebot/market"
)

const DefaultBaseURL = "https://query1.finance.yahoo.com"

// Client fetches candles and quotes from a Yahoo-chart-style JSON endpoint.
// Requests are throttled with a token bucket and guarded by a circuit
// breaker so a broken upstream trips fast instead of stalling every cycle.
type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
	log     *slog.Logger
}

func NewClient(baseURL string, log *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if log == nil {
		log = slog.Default()
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "market-data",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("market data breaker state changed",
				"breaker", name, "from", from.String(), "to", to.String())
		},
	})

	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
		limiter: rate.NewLimiter(rate.Limit(5), 5),
		breaker: breaker,
		log:     log,
	}
}

// chartResponse mirrors the subset of the chart payload we read. Quote
// arrays may contain nulls for bars the venue has no data for.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func (c *Client) fetchChart(ctx context.Context, symbol, rng, interval string) (*chartResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	u := fmt.Sprintf("%s/v8/finance/chart/%s?range=%s&interval=%s",
		c.baseURL, url.PathEscape(symbol), rng, interval)

	resp, err := c.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", "tradebot/1.0")

		res, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer res.Body.Close()

		if res.StatusCode == http.StatusNotFound {
			return nil, ErrNoData
		}
		if res.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("chart %s: unexpected status %d", symbol, res.StatusCode)
		}

		var cr chartResponse
		if err := json.NewDecoder(res.Body).Decode(&cr); err != nil {
			return nil, fmt.Errorf("chart %s: decode: %w", symbol, err)
		}
		return &cr, nil
	})
	if err != nil {
		return nil, err
	}

	cr := resp.(*chartResponse)
	if cr.Chart.Error != nil {
		return nil, fmt.Errorf("chart %s: %s: %w", symbol, cr.Chart.Error.Code, ErrNoData)
	}
	if len(cr.Chart.Result) == 0 {
		return nil, fmt.Errorf("chart %s: empty result: %w", symbol, ErrNoData)
	}
	return cr, nil
}

// Historical returns about three months of daily candles, oldest first.
func (c *Client) Historical(ctx context.Context, symbol string) ([]market.Candle, error) {
	cr, err := c.fetchChart(ctx, symbol, "3mo", "1d")
	if err != nil {
		return nil, err
	}

	result := cr.Chart.Result[0]
	if len(result.Timestamp) == 0 || len(result.Indicators.Quote) == 0 {
		return nil, fmt.Errorf("chart %s: no bars: %w", symbol, ErrNoData)
	}
	quote := result.Indicators.Quote[0]

	candles := make([]market.Candle, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(quote.Close) || quote.Close[i] == nil {
			continue
		}
		candle := market.Candle{
			Time:  time.Unix(ts, 0).UTC(),
			Close: *quote.Close[i],
		}
		if i < len(quote.Open) && quote.Open[i] != nil {
			candle.Open = *quote.Open[i]
		}
		if i < len(quote.High) && quote.High[i] != nil {
			candle.High = *quote.High[i]
		}
		if i < len(quote.Low) && quote.Low[i] != nil {
			candle.Low = *quote.Low[i]
		}
		if i < len(quote.Volume) && quote.Volume[i] != nil {
			candle.Volume = *quote.Volume[i]
		}
		candles = append(candles, candle)
	}

	if len(candles) == 0 {
		return nil, fmt.Errorf("chart %s: no bars: %w", symbol, ErrNoData)
	}
	return candles, nil
}

// CurrentPrice returns the latest close for the symbol.
func (c *Client) CurrentPrice(ctx context.Context, symbol string) (float64, error) {
	cr, err := c.fetchChart(ctx, symbol, "1d", "1d")
	if err != nil {
		return 0, err
	}

	result := cr.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return 0, fmt.Errorf("chart %s: no quote: %w", symbol, ErrNoData)
	}
	closes := result.Indicators.Quote[0].Close
	for i := len(closes) - 1; i >= 0; i-- {
		if closes[i] != nil {
			return *closes[i], nil
		}
	}
	return 0, fmt.Errorf("chart %s: no close: %w", symbol, ErrNoData)
}

// PricesBulk fetches current prices one symbol at a time. Failures are
// logged and the symbol is left out of the result.
func (c *Client) PricesBulk(ctx context.Context, symbols []string) map[string]float64 {
	prices := make(map[string]float64, len(symbols))
	for _, symbol := range symbols {
		price, err := c.CurrentPrice(ctx, symbol)
		if err != nil {
			c.log.Warn("no price for symbol", "symbol", symbol, "error", err)
			continue
		}
		prices[symbol] = price
	}
	return prices
}
