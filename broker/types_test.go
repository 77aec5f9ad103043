package broker

import (
	"math"
	"testing"
)

func TestPositionDerivedValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		pos   Position
		value float64
		pl    float64
		plPct float64
	}{
		{"flat", Position{Quantity: 10, AvgPrice: 100, CurrentPrice: 100}, 1000, 0, 0},
		{"gain", Position{Quantity: 10, AvgPrice: 100, CurrentPrice: 120}, 1200, 200, 0.2},
		{"loss", Position{Quantity: 10, AvgPrice: 100, CurrentPrice: 90}, 900, -100, -0.1},
		{"zero basis", Position{Quantity: 10, AvgPrice: 0, CurrentPrice: 50}, 500, 500, 0},
		{"unmarked", Position{Quantity: 10, AvgPrice: 100}, 0, -1000, -1},
	}

	const tol = 1e-9

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.pos.MarketValue(); math.Abs(got-tt.value) > tol {
				t.Fatalf("MarketValue() = %v, expected %v", got, tt.value)
			}
			if got := tt.pos.UnrealizedPL(); math.Abs(got-tt.pl) > tol {
				t.Fatalf("UnrealizedPL() = %v, expected %v", got, tt.pl)
			}
			if got := tt.pos.UnrealizedPLPct(); math.Abs(got-tt.plPct) > tol {
				t.Fatalf("UnrealizedPLPct() = %v, expected %v", got, tt.plPct)
			}
		})
	}
}

func TestOrderValue(t *testing.T) {
	t.Parallel()

	o := Order{Quantity: 10, Price: 150}
	if got := o.Value(); got != 1500 {
		t.Fatalf("Value() = %v, expected 1500", got)
	}
}
