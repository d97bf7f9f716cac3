package cmd

import (
	"math"
	"math/rand"
	"testing"
)

func TestMixSelection(t *testing.T) {
	tests := []struct {
		amount    float64
		wantFirst float64
		tolerance float64
	}{
		{0, 1, 0},
		{1, 0, 0},
		{0.3, 0.7, 0.05},
		{0.5, 0.5, 0.05},
	}

	const n = 2000
	for _, tt := range tests {
		first, err := mixSelection(tt.amount, n, rand.New(rand.NewSource(42)))
		if err != nil {
			t.Fatalf("amount %g: %v", tt.amount, err)
		}
		if got := float64(first) / n; math.Abs(got-tt.wantFirst) > tt.tolerance {
			t.Errorf("amount %g: expected first child fraction %g, got %g", tt.amount, tt.wantFirst, got)
		}
	}
}
