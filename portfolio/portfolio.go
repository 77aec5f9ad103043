// Package portfolio keeps the engine's own append-only record of executed
// trades, independent of broker bookkeeping. It only ever sees what the
// engine reports back after a fill.
package portfolio

import (
	"sync"
	"time"

	"github.com/rustyeddy/tradebot/broker"
)

// TradeRecord is one executed trade as observed by the engine. Records are
// never mutated after creation. RealizedPL is 0 for buys and
// (sell price - average entry) * quantity for sells.
type TradeRecord struct {
	Symbol     string
	Side       broker.Side
	Quantity   float64
	Price      float64
	Time       time.Time
	RealizedPL float64
}

// Portfolio is the append-only trade ledger plus derived aggregates. Safe
// for concurrent use: engine cycles append while host status reads fold.
type Portfolio struct {
	mu      sync.Mutex
	records []TradeRecord
	now     func() time.Time
}

func New() *Portfolio {
	return &Portfolio{now: time.Now}
}

// Record appends a trade with the current wall-clock timestamp. It never
// fails.
func (p *Portfolio) Record(symbol string, side broker.Side, quantity, price, pnl float64) TradeRecord {
	p.mu.Lock()
	defer p.mu.Unlock()

	rec := TradeRecord{
		Symbol:     symbol,
		Side:       side,
		Quantity:   quantity,
		Price:      price,
		Time:       p.now(),
		RealizedPL: pnl,
	}
	p.records = append(p.records, rec)
	return rec
}

// TotalPnL is the sum of realized P&L across all records.
func (p *Portfolio) TotalPnL() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()

	var total float64
	for _, rec := range p.records {
		total += rec.RealizedPL
	}
	return total
}

// DailyPnL is the sum of realized P&L for records dated today.
func (p *Portfolio) DailyPnL() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()

	var total float64
	ty, tm, td := p.now().Date()
	for _, rec := range p.records {
		y, m, d := rec.Time.Date()
		if y == ty && m == tm && d == td {
			total += rec.RealizedPL
		}
	}
	return total
}

// TradeCount is the number of recorded trades.
func (p *Portfolio) TradeCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.records)
}

// WinRate is the fraction of sell trades with positive realized P&L. Buys
// count toward neither side; with no sells the rate is 0.
func (p *Portfolio) WinRate() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()

	var sells, wins int
	for _, rec := range p.records {
		if rec.Side != broker.Sell {
			continue
		}
		sells++
		if rec.RealizedPL > 0 {
			wins++
		}
	}
	if sells == 0 {
		return 0
	}
	return float64(wins) / float64(sells)
}

// Records returns a copy of the ledger, oldest first.
func (p *Portfolio) Records() []TradeRecord {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]TradeRecord, len(p.records))
	copy(out, p.records)
	return out
}
