// Package engine runs the decision loop: fetch prices, enforce stop-loss,
// evaluate the strategy per symbol, gate entries through the risk manager,
// and place orders with the broker.
package engine

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/rustyeddy/tradebot/broker"
	"github.com/rustyeddy/tradebot/data"
	"github.com/rustyeddy/tradebot/journal"
	"github.com/rustyeddy/tradebot/portfolio"
	"github.com/rustyeddy/tradebot/risk"
	"github.com/rustyeddy/tradebot/strategy"
)

// Engine orchestrates one broker, one strategy, and one symbol universe.
// Cycles are strictly sequential; Status may be called concurrently from a
// host while a cycle runs.
type Engine struct {
	broker    broker.Broker
	strategy  strategy.Strategy
	risk      *risk.Manager
	provider  data.Provider
	journal   journal.Journal
	symbols   []string
	log       *slog.Logger
	portfolio *portfolio.Portfolio

	stopOnce sync.Once
	stop     chan struct{}
}

// New wires an engine. Pass journal.Noop{} when no durable record is wanted;
// a nil logger falls back to slog.Default.
func New(b broker.Broker, strat strategy.Strategy, rm *risk.Manager, provider data.Provider, j journal.Journal, symbols []string, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	if j == nil {
		j = journal.Noop{}
	}
	return &Engine{
		broker:    b,
		strategy:  strat,
		risk:      rm,
		provider:  provider,
		journal:   j,
		symbols:   symbols,
		log:       log,
		portfolio: portfolio.New(),
		stop:      make(chan struct{}),
	}
}

// Portfolio exposes the engine-owned trade ledger for hosts.
func (e *Engine) Portfolio() *portfolio.Portfolio {
	return e.portfolio
}

// RunOnce executes a single decision cycle. A data failure on one symbol is
// logged and skipped; only a broker read failure aborts the cycle.
func (e *Engine) RunOnce(ctx context.Context) error {
	metricCycles.Inc()
	e.log.Info("running analysis cycle")

	prices := e.provider.PricesBulk(ctx, e.symbols)

	if pu, ok := e.broker.(broker.PriceUpdater); ok {
		pu.UpdatePrices(prices)
	}

	if err := e.applyStopLosses(ctx, prices); err != nil {
		return err
	}

	for _, symbol := range e.symbols {
		if err := e.analyzeSymbol(ctx, symbol, prices[symbol]); err != nil {
			e.log.Error("analysis failed", "symbol", symbol, "error", err)
		}
	}

	e.logStatus(ctx)
	return nil
}

// applyStopLosses force-closes every position flagged by the risk manager,
// selling the full held quantity at the best known price: the freshly
// fetched one, or the position's last mark when the fetch came up empty.
func (e *Engine) applyStopLosses(ctx context.Context, prices map[string]float64) error {
	flagged, err := e.risk.CheckStopLoss(ctx, e.broker)
	if err != nil {
		return err
	}

	for _, symbol := range flagged {
		positions, err := e.broker.Positions(ctx)
		if err != nil {
			return err
		}
		pos, ok := positions[symbol]
		if !ok {
			continue
		}

		price, ok := prices[symbol]
		if !ok {
			price = pos.CurrentPrice
		}

		e.log.Warn("stop-loss triggered",
			"symbol", symbol, "loss_pct", pos.UnrealizedPLPct())

		order, err := e.broker.PlaceOrder(ctx, symbol, broker.Sell, pos.Quantity, price)
		if err != nil {
			e.log.Error("stop-loss order failed", "symbol", symbol, "error", err)
			continue
		}
		if order.Status != broker.StatusFilled {
			metricOrdersRejected.Inc()
			continue
		}

		metricStopLossExits.Inc()
		pnl := (price - pos.AvgPrice) * pos.Quantity
		e.recordTrade(order, pnl)
	}
	return nil
}

// analyzeSymbol fetches the symbol's history, asks the strategy for a
// signal, and acts on it.
func (e *Engine) analyzeSymbol(ctx context.Context, symbol string, price float64) error {
	candles, err := e.provider.Historical(ctx, symbol)
	if err != nil {
		if errors.Is(err, data.ErrNoData) {
			e.log.Warn("no history for symbol, skipping", "symbol", symbol)
			return nil
		}
		return err
	}

	signal, err := e.strategy.Analyze(candles, symbol)
	if err != nil {
		return err
	}
	if signal != strategy.Hold {
		e.log.Info("strategy signal", "symbol", symbol, "signal", signal.String())
	}

	return e.executeSignal(ctx, symbol, signal, price)
}

// executeSignal turns a signal into a broker action under the risk policy.
// Nothing happens without a positive current price.
func (e *Engine) executeSignal(ctx context.Context, symbol string, signal strategy.Signal, price float64) error {
	if price <= 0 {
		return nil
	}

	switch signal {
	case strategy.Buy:
		return e.executeBuy(ctx, symbol, price)
	case strategy.Sell:
		return e.executeSell(ctx, symbol, price)
	default:
		return nil
	}
}

func (e *Engine) executeBuy(ctx context.Context, symbol string, price float64) error {
	positions, err := e.broker.Positions(ctx)
	if err != nil {
		return err
	}
	if _, ok := positions[symbol]; ok {
		// Already holding; signals never average up.
		return nil
	}

	balance, err := e.broker.Balance(ctx)
	if err != nil {
		return err
	}
	total := balance
	for _, pos := range positions {
		total += pos.MarketValue()
	}
	if e.risk.ExceededDailyLoss(e.portfolio.DailyPnL(), total) {
		metricEntriesBlocked.Inc()
		e.log.Warn("daily loss limit reached, blocking new entries", "symbol", symbol)
		return nil
	}

	quantity, err := e.risk.PositionSize(ctx, e.broker, price)
	if err != nil {
		return err
	}
	if quantity <= 0 {
		return nil
	}

	allowed, reason, err := e.risk.CanOpenPosition(ctx, e.broker, symbol, price, float64(quantity))
	if err != nil {
		return err
	}
	if !allowed {
		metricEntriesBlocked.Inc()
		e.log.Info("risk check blocked buy", "symbol", symbol, "reason", reason)
		return nil
	}

	order, err := e.broker.PlaceOrder(ctx, symbol, broker.Buy, float64(quantity), price)
	if err != nil {
		return err
	}
	if order.Status != broker.StatusFilled {
		metricOrdersRejected.Inc()
		return nil
	}

	e.log.Info("bought", "symbol", symbol, "quantity", quantity, "price", price)
	e.recordTrade(order, 0)
	return nil
}

func (e *Engine) executeSell(ctx context.Context, symbol string, price float64) error {
	positions, err := e.broker.Positions(ctx)
	if err != nil {
		return err
	}
	pos, ok := positions[symbol]
	if !ok {
		return nil
	}

	order, err := e.broker.PlaceOrder(ctx, symbol, broker.Sell, pos.Quantity, price)
	if err != nil {
		return err
	}
	if order.Status != broker.StatusFilled {
		metricOrdersRejected.Inc()
		return nil
	}

	pnl := (price - pos.AvgPrice) * pos.Quantity
	e.log.Info("sold", "symbol", symbol, "quantity", pos.Quantity, "price", price, "pnl", pnl)
	e.recordTrade(order, pnl)
	return nil
}

// recordTrade appends a fill to the in-memory ledger and mirrors it to the
// journal. The ledger stays authoritative; a journal write failure is logged
// and dropped, never propagated into the cycle.
func (e *Engine) recordTrade(order broker.Order, pnl float64) {
	metricOrdersFilled.Inc()
	rec := e.portfolio.Record(order.Symbol, order.Side, order.Quantity, order.Price, pnl)

	err := e.journal.RecordTrade(journal.TradeRecord{
		OrderID:    order.ID,
		Symbol:     rec.Symbol,
		Side:       string(rec.Side),
		Quantity:   rec.Quantity,
		Price:      rec.Price,
		Time:       rec.Time,
		RealizedPL: rec.RealizedPL,
	})
	if err != nil {
		e.log.Error("journal write failed", "order", order.ID, "error", err)
	}
}

// Status is a point-in-time snapshot for hosts. It is eventually consistent
// with an in-flight cycle.
type Status struct {
	Cash          float64
	PositionValue float64
	TotalValue    float64
	TradeCount    int
	TotalPnL      float64
	DailyPnL      float64
	WinRate       float64
}

func (e *Engine) Status(ctx context.Context) (Status, error) {
	balance, err := e.broker.Balance(ctx)
	if err != nil {
		return Status{}, err
	}
	positions, err := e.broker.Positions(ctx)
	if err != nil {
		return Status{}, err
	}

	var posValue float64
	for _, pos := range positions {
		posValue += pos.MarketValue()
	}

	return Status{
		Cash:          balance,
		PositionValue: posValue,
		TotalValue:    balance + posValue,
		TradeCount:    e.portfolio.TradeCount(),
		TotalPnL:      e.portfolio.TotalPnL(),
		DailyPnL:      e.portfolio.DailyPnL(),
		WinRate:       e.portfolio.WinRate(),
	}, nil
}

func (e *Engine) logStatus(ctx context.Context) {
	status, err := e.Status(ctx)
	if err != nil {
		e.log.Error("status read failed", "error", err)
		return
	}
	e.log.Info("cycle complete",
		"cash", status.Cash,
		"position_value", status.PositionValue,
		"total_value", status.TotalValue,
		"trades", status.TradeCount)
}

// Run repeats cycles on a fixed interval until ctx is cancelled or Stop is
// called. A failed cycle is logged and the loop continues; a stop request
// takes effect at the sleep boundary, after the current cycle completes.
func (e *Engine) Run(ctx context.Context, interval time.Duration) {
	e.log.Info("trading engine started",
		"strategy", e.strategy.Name(),
		"symbols", e.symbols,
		"interval", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := e.RunOnce(ctx); err != nil {
			metricCycleErrors.Inc()
			e.log.Error("cycle failed", "error", err)
		}

		select {
		case <-ctx.Done():
			e.log.Info("trading engine stopped", "reason", ctx.Err())
			return
		case <-e.stop:
			e.log.Info("trading engine stopped")
			return
		case <-ticker.C:
		}
	}
}

// Stop requests a clean shutdown after the current cycle. Safe to call more
// than once and from any goroutine.
func (e *Engine) Stop() {
	e.stopOnce.Do(func() { close(e.stop) })
}
