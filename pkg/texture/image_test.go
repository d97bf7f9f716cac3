package texture

import (
	"math"
	"testing"

	"github.com/df07/go-material-eval/pkg/core"
)

// TestBilerpChannelCenters checks that texel centers return the exact texel value
func TestBilerpChannelCenters(t *testing.T) {
	// Layout:
	//   white black
	//   black white
	img := NewRGBImage(2, 2, []core.Vec3{
		core.NewVec3(1, 1, 1), core.NewVec3(0, 0, 0),
		core.NewVec3(0, 0, 0), core.NewVec3(1, 1, 1),
	})

	tests := []struct {
		name     string
		st       core.Vec2
		expected float64
	}{
		{"top-left center", core.NewVec2(0.25, 0.25), 1},
		{"top-right center", core.NewVec2(0.75, 0.25), 0},
		{"bottom-left center", core.NewVec2(0.25, 0.75), 0},
		{"bottom-right center", core.NewVec2(0.75, 0.75), 1},
		{"middle", core.NewVec2(0.5, 0.5), 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := img.BilerpChannel(tt.st, 0, WrapClamp)
			if math.Abs(got-tt.expected) > 1e-12 {
				t.Errorf("Expected %f, got %f", tt.expected, got)
			}
		})
	}
}

func TestWrapModes(t *testing.T) {
	img, err := NewImage(2, 1, 1, []float64{0.25, 0.75})
	if err != nil {
		t.Fatal(err)
	}

	if got := img.GetChannel(-1, 0, 0, WrapRepeat); got != 0.75 {
		t.Errorf("Repeat: expected 0.75, got %f", got)
	}
	if got := img.GetChannel(3, 0, 0, WrapRepeat); got != 0.75 {
		t.Errorf("Repeat: expected 0.75, got %f", got)
	}
	if got := img.GetChannel(-5, 0, 0, WrapClamp); got != 0.25 {
		t.Errorf("Clamp: expected 0.25, got %f", got)
	}
	if got := img.GetChannel(2, 0, 0, WrapBlack); got != 0 {
		t.Errorf("Black: expected 0, got %f", got)
	}
}

func TestNewImageValidation(t *testing.T) {
	if _, err := NewImage(2, 2, 3, make([]float64, 11)); err == nil {
		t.Error("Expected error for short pixel buffer")
	}
	if _, err := NewImage(0, 2, 3, nil); err == nil {
		t.Error("Expected error for zero width")
	}
}

func TestConstantNormalMapEncoding(t *testing.T) {
	img := NewConstantNormalMap(4, 4, core.NewVec3(0, 0, 1))
	st := core.NewVec2(0.3, 0.6)
	if got := img.BilerpChannel(st, 0, WrapRepeat); math.Abs(got-0.5) > 1e-12 {
		t.Errorf("Expected x channel 0.5, got %f", got)
	}
	if got := img.BilerpChannel(st, 2, WrapRepeat); math.Abs(got-1) > 1e-12 {
		t.Errorf("Expected z channel 1, got %f", got)
	}
}
