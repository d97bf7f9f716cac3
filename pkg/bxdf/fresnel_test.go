package bxdf

import (
	"math"
	"testing"

	"github.com/df07/go-material-eval/pkg/core"
)

func TestFrDielectric(t *testing.T) {
	tests := []struct {
		name     string
		cosTheta float64
		eta      float64
		expected float64
	}{
		{"normal incidence glass", 1, 1.5, 0.04},
		{"index matched", 0.7, 1, 0},
		{"grazing", 0, 1.5, 1},
		{"total internal reflection", -0.1, 1.5, 1},
		{"normal incidence from inside", -1, 1.5, 0.04},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FrDielectric(tt.cosTheta, tt.eta)
			if math.Abs(got-tt.expected) > 1e-9 {
				t.Errorf("FrDielectric(%g, %g) = %g, expected %g", tt.cosTheta, tt.eta, got, tt.expected)
			}
		})
	}
}

func TestFrComplexMatchesDielectricWithoutAbsorption(t *testing.T) {
	for _, cosTheta := range []float64{0.1, 0.4, 0.8, 1} {
		d := FrDielectric(cosTheta, 1.7)
		c := FrComplex(cosTheta, complex(1.7, 0))
		if math.Abs(d-c) > 1e-9 {
			t.Errorf("cos %g: FrComplex %g differs from FrDielectric %g", cosTheta, c, d)
		}
	}
}

func TestRefract(t *testing.T) {
	n := core.NewVec3(0, 0, 1)

	wt, etap, ok := Refract(core.NewVec3(0, 0, 1), n, 1.5)
	if !ok || etap != 1.5 {
		t.Fatalf("Normal incidence should refract with eta 1.5, got ok=%v eta=%g", ok, etap)
	}
	if !vecNear(wt, core.NewVec3(0, 0, -1), 1e-12) {
		t.Errorf("Normal incidence should pass straight through, got %v", wt)
	}

	// Snell's law: sin_i = eta * sin_t
	wi := core.NewVec3(math.Sin(0.6), 0, math.Cos(0.6))
	wt, _, ok = Refract(wi, n, 1.5)
	if !ok {
		t.Fatal("Expected refraction")
	}
	if math.Abs(core.SinTheta(wi)-1.5*core.SinTheta(wt)) > 1e-9 {
		t.Errorf("Snell's law violated: sin_i %g sin_t %g", core.SinTheta(wi), core.SinTheta(wt))
	}

	// Leaving the dense medium at a steep angle
	_, _, ok = Refract(core.NewVec3(0.9, 0, -math.Sqrt(1-0.81)), n, 1.5)
	if ok {
		t.Error("Expected total internal reflection")
	}
}

func TestPowerHeuristic(t *testing.T) {
	if w := PowerHeuristic(1, 1, 1, 1); math.Abs(w-0.5) > 1e-12 {
		t.Errorf("Equal pdfs should weigh 0.5, got %g", w)
	}
	if w := PowerHeuristic(1, 0, 1, 0); w != 0 {
		t.Errorf("Zero pdfs should weigh 0, got %g", w)
	}
	if w := PowerHeuristic(1, math.Inf(1), 1, 1); w != 1 {
		t.Errorf("Infinite pdf should weigh 1, got %g", w)
	}
}

func vecNear(a, b core.Vec3, tol float64) bool {
	return math.Abs(a.X-b.X) < tol && math.Abs(a.Y-b.Y) < tol && math.Abs(a.Z-b.Z) < tol
}
