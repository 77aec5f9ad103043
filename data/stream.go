package data

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rustyeddy/tradebot/market"
)

// Stream layers a live websocket quote feed over another Provider. Quotes
// pushed by the feed are cached and served from memory by PricesBulk;
// symbols with no cached quote fall back to the wrapped provider, as do all
// historical requests.
type Stream struct {
	url  string
	next Provider
	log  *slog.Logger

	mu     sync.RWMutex
	quotes map[string]float64
	conn   *websocket.Conn

	cancel context.CancelFunc
	done   chan struct{}
}

// tick is one message on the feed.
type tick struct {
	Symbol string  `json:"symbol"`
	Price  float64 `json:"price"`
}

func NewStream(url string, next Provider, log *slog.Logger) *Stream {
	if log == nil {
		log = slog.Default()
	}
	return &Stream{
		url:    url,
		next:   next,
		log:    log,
		quotes: make(map[string]float64),
	}
}

// Connect dials the feed and starts the read loop. The loop redials with a
// fixed backoff until Close is called or ctx is cancelled.
func (s *Stream) Connect(ctx context.Context) error {
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, s.url, nil)
	if err != nil {
		s.cancel()
		close(s.done)
		return err
	}

	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()

	go s.readLoop(ctx, conn)
	return nil
}

func (s *Stream) readLoop(ctx context.Context, conn *websocket.Conn) {
	defer close(s.done)

	for {
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				conn.Close()
				if ctx.Err() != nil {
					return
				}
				s.log.Warn("quote stream read failed, reconnecting", "error", err)
				break
			}

			var t tick
			if err := json.Unmarshal(msg, &t); err != nil || t.Symbol == "" {
				continue
			}
			s.mu.Lock()
			s.quotes[t.Symbol] = t.Price
			s.mu.Unlock()
		}

		// Redial until it works or we are told to stop.
		for {
			select {
			case <-ctx.Done():
				return
			case <-time.After(5 * time.Second):
			}

			next, _, err := websocket.DefaultDialer.DialContext(ctx, s.url, nil)
			if err != nil {
				s.log.Warn("quote stream redial failed", "error", err)
				continue
			}
			conn = next
			s.mu.Lock()
			s.conn = next
			s.mu.Unlock()
			break
		}
	}
}

// Close stops the read loop and waits for it to exit. The connection has to
// be closed here as well; cancelling the dial context does not unblock a
// pending read.
func (s *Stream) Close() error {
	if s.cancel == nil {
		return nil
	}
	s.cancel()

	s.mu.Lock()
	if s.conn != nil {
		s.conn.Close()
	}
	s.mu.Unlock()

	<-s.done
	return nil
}

func (s *Stream) Historical(ctx context.Context, symbol string) ([]market.Candle, error) {
	return s.next.Historical(ctx, symbol)
}

// PricesBulk serves cached live quotes first and asks the wrapped provider
// only for symbols the feed has not quoted yet.
func (s *Stream) PricesBulk(ctx context.Context, symbols []string) map[string]float64 {
	prices := make(map[string]float64, len(symbols))

	var missing []string
	s.mu.RLock()
	for _, symbol := range symbols {
		if price, ok := s.quotes[symbol]; ok {
			prices[symbol] = price
		} else {
			missing = append(missing, symbol)
		}
	}
	s.mu.RUnlock()

	if len(missing) > 0 {
		for symbol, price := range s.next.PricesBulk(ctx, missing) {
			prices[symbol] = price
		}
	}
	return prices
}
