package core

import (
	"math"
	"testing"
)

func TestVec3_CrossAndDot(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Vec3
		cross    Vec3
		expected float64
	}{
		{"X cross Y", NewVec3(1, 0, 0), NewVec3(0, 1, 0), NewVec3(0, 0, 1), 0},
		{"Y cross Z", NewVec3(0, 1, 0), NewVec3(0, 0, 1), NewVec3(1, 0, 0), 0},
		{"Parallel", NewVec3(2, 0, 0), NewVec3(3, 0, 0), NewVec3(0, 0, 0), 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Cross(tt.b); got != tt.cross {
				t.Errorf("Expected cross %v, got %v", tt.cross, got)
			}
			if got := tt.a.Dot(tt.b); got != tt.expected {
				t.Errorf("Expected dot %f, got %f", tt.expected, got)
			}
		})
	}
}

func TestVec3_NormalizeZero(t *testing.T) {
	if got := NewVec3(0, 0, 0).Normalize(); !got.IsZero() {
		t.Errorf("Normalizing the zero vector should stay zero, got %v", got)
	}
}

func TestGramSchmidt(t *testing.T) {
	w := NewVec3(0, 0, 1)
	v := NewVec3(1, 2, 3)
	got := GramSchmidt(v, w)
	if math.Abs(got.Dot(w)) > 1e-12 {
		t.Errorf("GramSchmidt result should be orthogonal to w, dot=%g", got.Dot(w))
	}
	if got != NewVec3(1, 2, 0) {
		t.Errorf("Expected (1,2,0), got %v", got)
	}
}

func TestFrameRoundTrip(t *testing.T) {
	normals := []Vec3{
		NewVec3(0, 0, 1),
		NewVec3(0, 0, -1),
		NewVec3(1, 1, 1).Normalize(),
		NewVec3(-0.3, 0.9, 0.1).Normalize(),
	}

	for _, n := range normals {
		f := FrameFromZ(n)
		const tolerance = 1e-9
		if math.Abs(f.X.Dot(f.Y)) > tolerance || math.Abs(f.X.Dot(f.Z)) > tolerance || math.Abs(f.Y.Dot(f.Z)) > tolerance {
			t.Errorf("Frame for %v is not orthogonal: %+v", n, f)
		}
		if got := f.ToLocal(n); math.Abs(got.Z-1) > tolerance {
			t.Errorf("Normal should map to +Z in its own frame, got %v", got)
		}

		v := NewVec3(0.2, -0.7, 0.4)
		back := f.FromLocal(f.ToLocal(v))
		if back.Subtract(v).Length() > tolerance {
			t.Errorf("Round trip mismatch: %v -> %v", v, back)
		}
	}
}

func TestFindInterval(t *testing.T) {
	nodes := []float64{0, 1, 2, 4, 8}
	tests := []struct {
		x        float64
		expected int
	}{
		{-1, 0},
		{0.5, 0},
		{1, 1},
		{3, 2},
		{7.9, 3},
		{100, 3},
	}
	for _, tt := range tests {
		got := FindInterval(len(nodes), func(i int) bool { return nodes[i] <= tt.x })
		if got != tt.expected {
			t.Errorf("FindInterval(%g): expected %d, got %d", tt.x, tt.expected, got)
		}
	}
}
