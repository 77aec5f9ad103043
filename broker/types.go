package broker

import "time"

type Side string

const (
	Buy  Side = "buy"
	Sell Side = "sell"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusFilled    Status = "filled"
	StatusCancelled Status = "cancelled"
	StatusRejected  Status = "rejected"
)

// Order is a single order request and its outcome. Once a terminal status
// (filled, cancelled, rejected) is set the order is immutable.
type Order struct {
	ID       string
	Symbol   string
	Side     Side
	Quantity float64
	Price    float64
	Status   Status
	Time     time.Time
}

// Value returns the order's notional value.
func (o Order) Value() float64 {
	return o.Quantity * o.Price
}

// Position is a current holding in one instrument with cost-basis tracking.
// AvgPrice only changes on buy fills; CurrentPrice is the latest mark.
type Position struct {
	Symbol       string
	Quantity     float64
	AvgPrice     float64
	CurrentPrice float64
}

// MarketValue returns the position's value at the current mark.
func (p Position) MarketValue() float64 {
	return p.Quantity * p.CurrentPrice
}

// UnrealizedPL returns the open profit or loss against the average entry.
func (p Position) UnrealizedPL() float64 {
	return (p.CurrentPrice - p.AvgPrice) * p.Quantity
}

// UnrealizedPLPct returns the open profit or loss as a fraction of the
// average entry price. A position with no cost basis reports 0.
func (p Position) UnrealizedPLPct() float64 {
	if p.AvgPrice == 0 {
		return 0
	}
	return (p.CurrentPrice - p.AvgPrice) / p.AvgPrice
}
