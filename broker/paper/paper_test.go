package paper

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/tradebot/broker"
)

func TestBuyFillUpdatesCashAndPosition(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	b := New(10000)

	order, err := b.PlaceOrder(ctx, "AAPL", broker.Buy, 10, 100)
	require.NoError(t, err)
	assert.Equal(t, broker.StatusFilled, order.Status)
	assert.NotEmpty(t, order.ID)

	cash, err := b.Balance(ctx)
	require.NoError(t, err)
	assert.Equal(t, 9000.0, cash)

	positions, err := b.Positions(ctx)
	require.NoError(t, err)
	pos := positions["AAPL"]
	assert.Equal(t, 10.0, pos.Quantity)
	assert.Equal(t, 100.0, pos.AvgPrice)
	assert.Equal(t, 100.0, pos.CurrentPrice)
}

func TestBuyRejectedWhenCostExceedsCash(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	b := New(10000)

	order, err := b.PlaceOrder(ctx, "AAPL", broker.Buy, 10, 1500)
	require.NoError(t, err)
	assert.Equal(t, broker.StatusRejected, order.Status)

	// A rejection is a no-op on account state.
	cash, _ := b.Balance(ctx)
	assert.Equal(t, 10000.0, cash)
	positions, _ := b.Positions(ctx)
	assert.Empty(t, positions)

	// But the order is still in the table.
	status, err := b.OrderStatus(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, broker.StatusRejected, status)
}

func TestBuyAveragesEntryPrice(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	b := New(100000)

	_, err := b.PlaceOrder(ctx, "AAPL", broker.Buy, 10, 100)
	require.NoError(t, err)
	_, err = b.PlaceOrder(ctx, "AAPL", broker.Buy, 30, 200)
	require.NoError(t, err)

	positions, _ := b.Positions(ctx)
	pos := positions["AAPL"]
	assert.Equal(t, 40.0, pos.Quantity)
	// (100*10 + 200*30) / 40
	assert.InDelta(t, 175.0, pos.AvgPrice, 1e-9)
}

func TestSellRejectedWithoutPosition(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	b := New(10000)

	order, err := b.PlaceOrder(ctx, "AAPL", broker.Sell, 5, 100)
	require.NoError(t, err)
	assert.Equal(t, broker.StatusRejected, order.Status)

	cash, _ := b.Balance(ctx)
	assert.Equal(t, 10000.0, cash)
}

func TestSellRejectedWhenUndersized(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	b := New(10000)
	_, err := b.PlaceOrder(ctx, "AAPL", broker.Buy, 5, 100)
	require.NoError(t, err)

	order, err := b.PlaceOrder(ctx, "AAPL", broker.Sell, 6, 100)
	require.NoError(t, err)
	assert.Equal(t, broker.StatusRejected, order.Status)

	positions, _ := b.Positions(ctx)
	assert.Equal(t, 5.0, positions["AAPL"].Quantity)
}

func TestSellFullQuantityRemovesPosition(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	b := New(10000)
	_, err := b.PlaceOrder(ctx, "AAPL", broker.Buy, 10, 100)
	require.NoError(t, err)

	order, err := b.PlaceOrder(ctx, "AAPL", broker.Sell, 10, 120)
	require.NoError(t, err)
	assert.Equal(t, broker.StatusFilled, order.Status)

	cash, _ := b.Balance(ctx)
	assert.Equal(t, 10200.0, cash)

	positions, _ := b.Positions(ctx)
	_, held := positions["AAPL"]
	assert.False(t, held, "fully closed position must be removed, not zeroed")
}

func TestRoundTripLeavesCashUnchanged(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	b := New(10000)
	_, err := b.PlaceOrder(ctx, "AAPL", broker.Buy, 10, 100)
	require.NoError(t, err)
	_, err = b.PlaceOrder(ctx, "AAPL", broker.Sell, 10, 100)
	require.NoError(t, err)

	cash, _ := b.Balance(ctx)
	assert.Equal(t, 10000.0, cash)
	positions, _ := b.Positions(ctx)
	assert.Empty(t, positions)
}

func TestPartialSellKeepsRemainder(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	b := New(10000)
	_, err := b.PlaceOrder(ctx, "AAPL", broker.Buy, 10, 100)
	require.NoError(t, err)

	_, err = b.PlaceOrder(ctx, "AAPL", broker.Sell, 4, 110)
	require.NoError(t, err)

	positions, _ := b.Positions(ctx)
	pos := positions["AAPL"]
	assert.Equal(t, 6.0, pos.Quantity)
	// Cost basis is untouched by sells.
	assert.Equal(t, 100.0, pos.AvgPrice)
}

func TestNonPositiveInputsRejected(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	tests := []struct {
		name     string
		side     broker.Side
		quantity float64
		price    float64
	}{
		{"zero quantity buy", broker.Buy, 0, 100},
		{"negative quantity buy", broker.Buy, -5, 100},
		{"zero price buy", broker.Buy, 10, 0},
		{"negative price sell", broker.Sell, 10, -1},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			b := New(10000)
			order, err := b.PlaceOrder(ctx, "AAPL", tt.side, tt.quantity, tt.price)
			require.NoError(t, err)
			assert.Equal(t, broker.StatusRejected, order.Status)

			cash, _ := b.Balance(ctx)
			assert.Equal(t, 10000.0, cash)
		})
	}
}

func TestOrderStatusUnknownID(t *testing.T) {
	t.Parallel()

	b := New(10000)
	_, err := b.OrderStatus(context.Background(), "nope")
	assert.ErrorIs(t, err, broker.ErrOrderNotFound)
}

func TestCancelOrderSemantics(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	b := New(10000)
	order, err := b.PlaceOrder(ctx, "AAPL", broker.Buy, 1, 100)
	require.NoError(t, err)

	// Synchronous fills leave nothing open to cancel.
	assert.ErrorIs(t, b.CancelOrder(ctx, order.ID), broker.ErrOrderNotOpen)
	assert.ErrorIs(t, b.CancelOrder(ctx, "nope"), broker.ErrOrderNotFound)
}

func TestUpdatePricesMarksToMarketOnly(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	b := New(10000)
	_, err := b.PlaceOrder(ctx, "AAPL", broker.Buy, 10, 100)
	require.NoError(t, err)

	b.UpdatePrices(map[string]float64{"AAPL": 90, "MSFT": 500})

	positions, _ := b.Positions(ctx)
	pos := positions["AAPL"]
	assert.Equal(t, 90.0, pos.CurrentPrice)
	assert.Equal(t, 100.0, pos.AvgPrice)
	_, held := positions["MSFT"]
	assert.False(t, held, "marking must never create positions")

	cash, _ := b.Balance(ctx)
	assert.Equal(t, 9000.0, cash)
}

func TestTotalValue(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	b := New(10000)
	_, err := b.PlaceOrder(ctx, "AAPL", broker.Buy, 10, 100)
	require.NoError(t, err)
	b.UpdatePrices(map[string]float64{"AAPL": 120})

	total, err := b.TotalValue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 9000.0+1200.0, total)
}

func TestPositionsReturnsDefensiveCopy(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	b := New(10000)
	_, err := b.PlaceOrder(ctx, "AAPL", broker.Buy, 10, 100)
	require.NoError(t, err)

	positions, _ := b.Positions(ctx)
	positions["AAPL"] = broker.Position{Symbol: "AAPL", Quantity: 999}
	delete(positions, "AAPL")

	fresh, _ := b.Positions(ctx)
	assert.Equal(t, 10.0, fresh["AAPL"].Quantity)
}

func TestOrderIDsAreUnique(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	b := New(1000000)
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		order, err := b.PlaceOrder(ctx, "AAPL", broker.Buy, 1, 1)
		require.NoError(t, err)
		assert.False(t, seen[order.ID], "duplicate order id %q", order.ID)
		seen[order.ID] = true
	}
}

func TestHistoryExcludesRejections(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	b := New(1000)
	_, err := b.PlaceOrder(ctx, "AAPL", broker.Buy, 5, 100)
	require.NoError(t, err)
	_, err = b.PlaceOrder(ctx, "AAPL", broker.Buy, 100, 100) // rejected
	require.NoError(t, err)

	history := b.History()
	require.Len(t, history, 1)
	assert.Equal(t, broker.StatusFilled, history[0].Status)
}
