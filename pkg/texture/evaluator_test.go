package texture

import (
	"math"
	"testing"

	"github.com/df07/go-material-eval/pkg/core"
	"github.com/df07/go-material-eval/pkg/spectrum"
)

func TestBasicEvaluatorCapability(t *testing.T) {
	img := NewCheckerboardImage(4, 4, 2, core.NewVec3(1, 1, 1), core.NewVec3(0, 0, 0))
	constant := NewFloatConstant(0.5)
	image := NewFloatImageTexture(img, WrapRepeat, 1)
	scaled := &FloatScaledTexture{Tex: constant, Scale: constant}

	tests := []struct {
		name     string
		ftex     []FloatTexture
		stex     []SpectrumTexture
		expected bool
	}{
		{"empty", nil, nil, true},
		{"constants", []FloatTexture{constant}, []SpectrumTexture{NewSpectrumConstant(spectrum.NewConstantSpectrum(1))}, true},
		{"image", []FloatTexture{image}, nil, true},
		{"missing optional", []FloatTexture{constant}, []SpectrumTexture{nil}, true},
		{"scaled", []FloatTexture{constant, scaled}, nil, false},
		{"checkerboard", []FloatTexture{&FloatCheckerboardTexture{Tex1: constant, Tex2: constant, UScale: 1, VScale: 1}}, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := (BasicTextureEvaluator{}).CanEvaluate(tt.ftex, tt.stex); got != tt.expected {
				t.Errorf("BasicTextureEvaluator: expected %t, got %t", tt.expected, got)
			}
			if !(UniversalTextureEvaluator{}).CanEvaluate(tt.ftex, tt.stex) {
				t.Error("UniversalTextureEvaluator should accept every texture set")
			}
		})
	}
}

func TestEvaluatorsAgree(t *testing.T) {
	img := NewGradientImage(8, 8, core.NewVec3(1, 0.5, 0), core.NewVec3(0, 0.5, 1))
	ftex := NewFloatImageTexture(img, WrapRepeat, 2)
	stex := NewSpectrumImageTexture(img, WrapRepeat, 1)
	lambda := spectrum.SampleVisibleWavelengths(0.4)
	ctx := TextureEvalContext{UV: core.NewVec2(0.3, 0.7)}

	universal, basic := UniversalTextureEvaluator{}, BasicTextureEvaluator{}
	if a, b := universal.EvaluateFloat(ftex, ctx), basic.EvaluateFloat(ftex, ctx); math.Abs(a-b) > 1e-12 {
		t.Errorf("Float evaluation differs: %f vs %f", a, b)
	}
	if a, b := universal.EvaluateSpectrum(stex, ctx, &lambda), basic.EvaluateSpectrum(stex, ctx, &lambda); a != b {
		t.Errorf("Spectrum evaluation differs: %v vs %v", a, b)
	}
}

func TestBasicEvaluatorRejectsUnsupportedTexture(t *testing.T) {
	defer func() {
		r := recover()
		if _, ok := r.(*core.FatalError); !ok {
			t.Errorf("Expected *core.FatalError panic, got %v", r)
		}
	}()
	scaled := &FloatScaledTexture{Tex: NewFloatConstant(1), Scale: NewFloatConstant(2)}
	(BasicTextureEvaluator{}).EvaluateFloat(scaled, TextureEvalContext{})
}

func TestFloatScaledTexture(t *testing.T) {
	calls := 0
	inner := FloatFuncTexture(func(ctx TextureEvalContext) float64 {
		calls++
		return 3
	})
	zero := &FloatScaledTexture{Tex: inner, Scale: NewFloatConstant(0)}
	if zero.Evaluate(TextureEvalContext{}) != 0 || calls != 0 {
		t.Error("A zero scale should short-circuit the inner texture")
	}
	two := &FloatScaledTexture{Tex: inner, Scale: NewFloatConstant(2)}
	if got := two.Evaluate(TextureEvalContext{}); got != 6 {
		t.Errorf("Expected 6, got %f", got)
	}
}
