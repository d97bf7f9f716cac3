package bssrdf

import (
	"math"
	"testing"
)

func TestCatmullRomReproducesLinear(t *testing.T) {
	nodes := []float64{0, 1, 2, 4, 7}
	values := make([]float64, len(nodes))
	for i, x := range nodes {
		values[i] = 3*x + 1
	}

	for _, x := range []float64{0, 0.5, 1.5, 2, 3.3, 6.9, 7} {
		offset, w, ok := CatmullRomWeights(nodes, x)
		if !ok {
			t.Fatalf("x %g should be in range", x)
		}
		sum, v := 0.0, 0.0
		for i := 0; i < 4; i++ {
			sum += w[i]
			if w[i] != 0 {
				v += w[i] * values[offset+i]
			}
		}
		if math.Abs(sum-1) > 1e-9 {
			t.Errorf("x %g: weights sum to %g", x, sum)
		}
		if math.Abs(v-(3*x+1)) > 1e-9 {
			t.Errorf("x %g: interpolated %g, expected %g", x, v, 3*x+1)
		}
	}

	if _, _, ok := CatmullRomWeights(nodes, -0.1); ok {
		t.Error("x below the first node should be rejected")
	}
	if _, _, ok := CatmullRomWeights(nodes, 7.1); ok {
		t.Error("x above the last node should be rejected")
	}
}

func TestIntegrateCatmullRom(t *testing.T) {
	x := []float64{0, 0.5, 1, 2}
	values := []float64{2, 2, 2, 2}
	cdf := make([]float64, len(x))
	total := IntegrateCatmullRom(x, values, cdf)
	if math.Abs(total-4) > 1e-12 {
		t.Errorf("Integral of constant 2 over [0,2] = %g, expected 4", total)
	}
	if math.Abs(cdf[2]-2) > 1e-12 {
		t.Errorf("Running integral at x=1 is %g, expected 2", cdf[2])
	}
}

func TestInvertCatmullRom(t *testing.T) {
	x := []float64{0, 1, 2, 3}
	values := []float64{0, 2, 4, 6}
	tests := []struct {
		u, expected float64
	}{
		{-1, 0},
		{0, 0},
		{3, 1.5},
		{5, 2.5},
		{6, 3},
		{10, 3},
	}
	for _, tt := range tests {
		if got := InvertCatmullRom(x, values, tt.u); math.Abs(got-tt.expected) > 1e-5 {
			t.Errorf("InvertCatmullRom(%g) = %g, expected %g", tt.u, got, tt.expected)
		}
	}
}
