// Package journal persists executed trades outside the in-memory ledger so
// a run leaves an auditable record behind.
package journal

import "time"

// TradeRecord is the durable form of one executed trade.
type TradeRecord struct {
	OrderID    string
	Symbol     string
	Side       string
	Quantity   float64
	Price      float64
	Time       time.Time
	RealizedPL float64
}

type Journal interface {
	RecordTrade(TradeRecord) error
	Close() error
}

// Noop discards every record. Used when journaling is disabled.
type Noop struct{}

func (Noop) RecordTrade(TradeRecord) error { return nil }
func (Noop) Close() error                  { return nil }
