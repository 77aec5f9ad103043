// Package risk implements stateless pre-trade policy: position sizing, the
// admission gate for new entries, and the stop-loss scan. Every check reads
// live broker state at decision time; nothing is cached.
package risk

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/rustyeddy/tradebot/broker"
)

// Manager holds the account-level risk thresholds. The zero value is not
// usable; construct with NewManager or fill every field.
type Manager struct {
	// MaxPositionPct caps a single position's notional as a fraction of
	// total account value, e.g. 0.10 for 10%.
	MaxPositionPct float64

	// StopLossPct is the unrealized-loss fraction at which a position is
	// force-closed, e.g. 0.05 for 5%.
	StopLossPct float64

	// DailyLossLimitPct is the daily realized-loss fraction of account
	// value at which new entries are blocked for the rest of the day.
	DailyLossLimitPct float64

	// MaxOpenPositions caps the number of simultaneously open positions.
	MaxOpenPositions int
}

// NewManager returns a Manager with the default thresholds used by the
// standalone runner.
func NewManager() *Manager {
	return &Manager{
		MaxPositionPct:    0.10,
		StopLossPct:       0.05,
		DailyLossLimitPct: 0.03,
		MaxOpenPositions:  10,
	}
}

// totalValue is account equity: cash plus open position market values.
// Brokers exposing the Valuer capability answer directly.
func totalValue(ctx context.Context, b broker.Broker) (float64, error) {
	if v, ok := b.(broker.Valuer); ok {
		return v.TotalValue(ctx)
	}

	balance, err := b.Balance(ctx)
	if err != nil {
		return 0, fmt.Errorf("risk: get balance: %w", err)
	}
	positions, err := b.Positions(ctx)
	if err != nil {
		return 0, fmt.Errorf("risk: get positions: %w", err)
	}
	for _, pos := range positions {
		balance += pos.MarketValue()
	}
	return balance, nil
}

// PositionSize returns the whole-share quantity for a new entry at the given
// price, targeting MaxPositionPct of total account value. The result is
// never negative. Sizing is against equity, not free cash, so the suggested
// quantity can exceed what cash allows; CanOpenPosition catches that.
func (m *Manager) PositionSize(ctx context.Context, b broker.Broker, price float64) (int, error) {
	if price <= 0 {
		return 0, nil
	}

	total, err := totalValue(ctx, b)
	if err != nil {
		return 0, err
	}

	quantity := int(math.Floor(total * m.MaxPositionPct / price))
	if quantity < 0 {
		quantity = 0
	}
	return quantity, nil
}

// CanOpenPosition is the admission gate for a sized entry. Checks run in a
// fixed priority order so the reported reason is deterministic when several
// limits are breached at once: position count first, then exposure percent,
// then cash sufficiency.
func (m *Manager) CanOpenPosition(ctx context.Context, b broker.Broker, symbol string, price, quantity float64) (bool, string, error) {
	positions, err := b.Positions(ctx)
	if err != nil {
		return false, "", fmt.Errorf("risk: get positions: %w", err)
	}
	balance, err := b.Balance(ctx)
	if err != nil {
		return false, "", fmt.Errorf("risk: get balance: %w", err)
	}

	total := balance
	for _, pos := range positions {
		total += pos.MarketValue()
	}

	if len(positions) >= m.MaxOpenPositions {
		return false, fmt.Sprintf("max open positions (%d) reached", m.MaxOpenPositions), nil
	}

	notional := price * quantity
	if maxValue := total * m.MaxPositionPct; notional > maxValue {
		return false, fmt.Sprintf("position value (%.0f) exceeds max (%.0f)", notional, maxValue), nil
	}

	if notional > balance {
		return false, fmt.Sprintf("insufficient capital (%.0f available)", balance), nil
	}

	return true, "", nil
}

// ExceededDailyLoss reports whether today's realized loss has reached the
// daily limit relative to total account value. A zero or negative account
// value always trips the limit.
func (m *Manager) ExceededDailyLoss(dailyPnL, accountValue float64) bool {
	if m.DailyLossLimitPct <= 0 {
		return false
	}
	if accountValue <= 0 {
		return true
	}
	return dailyPnL <= -m.DailyLossLimitPct*accountValue
}

// CheckStopLoss scans every open position and returns the symbols whose
// unrealized loss has reached the stop-loss threshold, sorted for
// deterministic iteration. It has no side effects; the engine acts on the
// result. Positions with no cost basis are never flagged.
func (m *Manager) CheckStopLoss(ctx context.Context, b broker.Broker) ([]string, error) {
	positions, err := b.Positions(ctx)
	if err != nil {
		return nil, fmt.Errorf("risk: get positions: %w", err)
	}

	var flagged []string
	for symbol, pos := range positions {
		if pos.AvgPrice == 0 {
			continue
		}
		if pos.UnrealizedPLPct() <= -m.StopLossPct {
			flagged = append(flagged, symbol)
		}
	}
	sort.Strings(flagged)
	return flagged, nil
}
