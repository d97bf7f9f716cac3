package texture

import (
	"fmt"
	"math"

	"github.com/df07/go-material-eval/pkg/core"
	"github.com/df07/go-material-eval/pkg/spectrum"
)

// FloatTexture is a handle to a scalar-valued texture. A nil FloatTexture
// means the parameter was not supplied.
type FloatTexture interface {
	Evaluate(ctx TextureEvalContext) float64
}

// SpectrumTexture is a handle to a spectrum-valued texture. A nil
// SpectrumTexture means the parameter was not supplied.
type SpectrumTexture interface {
	Evaluate(ctx TextureEvalContext, lambda *spectrum.SampledWavelengths) spectrum.SampledSpectrum
}

// FloatConstantTexture returns the same value everywhere
type FloatConstantTexture struct {
	Value float64
}

// NewFloatConstant creates a new constant float texture
func NewFloatConstant(v float64) *FloatConstantTexture {
	return &FloatConstantTexture{Value: v}
}

// Evaluate returns the constant value
func (t *FloatConstantTexture) Evaluate(ctx TextureEvalContext) float64 {
	return t.Value
}

func (t *FloatConstantTexture) String() string {
	return fmt.Sprintf("[ FloatConstantTexture value: %g ]", t.Value)
}

// SpectrumConstantTexture returns the same spectrum everywhere
type SpectrumConstantTexture struct {
	Value spectrum.Spectrum
}

// NewSpectrumConstant creates a new constant spectrum texture
func NewSpectrumConstant(s spectrum.Spectrum) *SpectrumConstantTexture {
	return &SpectrumConstantTexture{Value: s}
}

// Evaluate samples the spectrum at the given wavelengths
func (t *SpectrumConstantTexture) Evaluate(ctx TextureEvalContext, lambda *spectrum.SampledWavelengths) spectrum.SampledSpectrum {
	return spectrum.Sample(t.Value, lambda)
}

// FloatImageTexture looks up one channel of an image using the UV coordinates
type FloatImageTexture struct {
	Image   *Image
	Channel int
	Wrap    WrapMode
	Scale   float64
	Invert  bool
}

// NewFloatImageTexture creates a new float image texture reading channel 0
func NewFloatImageTexture(img *Image, wrap WrapMode, scale float64) *FloatImageTexture {
	return &FloatImageTexture{Image: img, Wrap: wrap, Scale: scale}
}

// Evaluate bilinearly samples the image. V is flipped so that v=0 is the bottom row.
func (t *FloatImageTexture) Evaluate(ctx TextureEvalContext) float64 {
	st := core.NewVec2(ctx.UV.X, 1-ctx.UV.Y)
	v := t.Scale * t.Image.BilerpChannel(st, t.Channel, t.Wrap)
	if t.Invert {
		return math.Max(0, 1-v)
	}
	return v
}

// SpectrumImageTexture looks up an RGB image and uplifts the color to a spectrum
type SpectrumImageTexture struct {
	Image *Image
	Wrap  WrapMode
	Scale float64
}

// NewSpectrumImageTexture creates a new RGB image texture
func NewSpectrumImageTexture(img *Image, wrap WrapMode, scale float64) *SpectrumImageTexture {
	return &SpectrumImageTexture{Image: img, Wrap: wrap, Scale: scale}
}

// Evaluate bilinearly samples the image and converts the RGB result to a spectrum
func (t *SpectrumImageTexture) Evaluate(ctx TextureEvalContext, lambda *spectrum.SampledWavelengths) spectrum.SampledSpectrum {
	st := core.NewVec2(ctx.UV.X, 1-ctx.UV.Y)
	rgb := spectrum.NewRGBSpectrum(
		t.Scale*t.Image.BilerpChannel(st, 0, t.Wrap),
		t.Scale*t.Image.BilerpChannel(st, 1, t.Wrap),
		t.Scale*t.Image.BilerpChannel(st, 2, t.Wrap),
	)
	return spectrum.Sample(rgb, lambda)
}

// FloatScaledTexture multiplies one float texture by another
type FloatScaledTexture struct {
	Tex   FloatTexture
	Scale FloatTexture
}

// Evaluate returns Tex * Scale, skipping Tex when the scale is zero
func (t *FloatScaledTexture) Evaluate(ctx TextureEvalContext) float64 {
	sc := t.Scale.Evaluate(ctx)
	if sc == 0 {
		return 0
	}
	return t.Tex.Evaluate(ctx) * sc
}

// FloatCheckerboardTexture alternates between two textures on a UV grid
type FloatCheckerboardTexture struct {
	Tex1, Tex2     FloatTexture
	UScale, VScale float64
}

// Evaluate picks Tex1 or Tex2 according to the checker cell containing UV
func (t *FloatCheckerboardTexture) Evaluate(ctx TextureEvalContext) float64 {
	cu := int(math.Floor(ctx.UV.X * t.UScale))
	cv := int(math.Floor(ctx.UV.Y * t.VScale))
	if (cu+cv)%2 == 0 {
		return t.Tex1.Evaluate(ctx)
	}
	return t.Tex2.Evaluate(ctx)
}

// FloatFuncTexture adapts a function of the evaluation context. It is mostly
// useful for procedural displacement.
type FloatFuncTexture func(ctx TextureEvalContext) float64

// Evaluate calls the wrapped function
func (f FloatFuncTexture) Evaluate(ctx TextureEvalContext) float64 {
	return f(ctx)
}
