package texture

import (
	"github.com/df07/go-material-eval/pkg/core"
	"github.com/df07/go-material-eval/pkg/spectrum"
)

// TextureEvaluator is the strategy materials use to evaluate their textures.
// CanEvaluate must succeed for a set of textures before any of them is passed
// to EvaluateFloat or EvaluateSpectrum.
type TextureEvaluator interface {
	CanEvaluate(ftex []FloatTexture, stex []SpectrumTexture) bool
	EvaluateFloat(tex FloatTexture, ctx TextureEvalContext) float64
	EvaluateSpectrum(tex SpectrumTexture, ctx TextureEvalContext, lambda *spectrum.SampledWavelengths) spectrum.SampledSpectrum
}

// UniversalTextureEvaluator evaluates any texture, one point at a time
type UniversalTextureEvaluator struct{}

// CanEvaluate always succeeds
func (UniversalTextureEvaluator) CanEvaluate(ftex []FloatTexture, stex []SpectrumTexture) bool {
	return true
}

// EvaluateFloat evaluates tex at ctx
func (UniversalTextureEvaluator) EvaluateFloat(tex FloatTexture, ctx TextureEvalContext) float64 {
	core.DCheck(tex != nil, "evaluating a missing float texture")
	if tex == nil {
		return 0
	}
	return tex.Evaluate(ctx)
}

// EvaluateSpectrum evaluates tex at ctx for the given wavelengths
func (UniversalTextureEvaluator) EvaluateSpectrum(tex SpectrumTexture, ctx TextureEvalContext, lambda *spectrum.SampledWavelengths) spectrum.SampledSpectrum {
	core.DCheck(tex != nil, "evaluating a missing spectrum texture")
	if tex == nil {
		return spectrum.SampledSpectrum{}
	}
	return tex.Evaluate(ctx, lambda)
}

// BasicTextureEvaluator handles only constant and image textures. It models
// a batched execution mode where every lane must run the same simple lookup;
// materials using anything else have to be routed to the universal path.
type BasicTextureEvaluator struct{}

// CanEvaluate reports whether every supplied texture is a constant or image texture.
// Missing (nil) textures are always accepted.
func (BasicTextureEvaluator) CanEvaluate(ftex []FloatTexture, stex []SpectrumTexture) bool {
	for _, f := range ftex {
		switch f.(type) {
		case nil, *FloatConstantTexture, *FloatImageTexture:
		default:
			return false
		}
	}
	for _, s := range stex {
		switch s.(type) {
		case nil, *SpectrumConstantTexture, *SpectrumImageTexture:
		default:
			return false
		}
	}
	return true
}

// EvaluateFloat evaluates a constant or image float texture
func (BasicTextureEvaluator) EvaluateFloat(tex FloatTexture, ctx TextureEvalContext) float64 {
	switch t := tex.(type) {
	case *FloatConstantTexture:
		return t.Value
	case *FloatImageTexture:
		return t.Evaluate(ctx)
	case nil:
		core.DCheck(false, "evaluating a missing float texture")
		return 0
	}
	core.Fatalf("BasicTextureEvaluator cannot evaluate %T", tex)
	return 0
}

// EvaluateSpectrum evaluates a constant or image spectrum texture
func (BasicTextureEvaluator) EvaluateSpectrum(tex SpectrumTexture, ctx TextureEvalContext, lambda *spectrum.SampledWavelengths) spectrum.SampledSpectrum {
	switch t := tex.(type) {
	case *SpectrumConstantTexture:
		return spectrum.Sample(t.Value, lambda)
	case *SpectrumImageTexture:
		return t.Evaluate(ctx, lambda)
	case nil:
		core.DCheck(false, "evaluating a missing spectrum texture")
		return spectrum.SampledSpectrum{}
	}
	core.Fatalf("BasicTextureEvaluator cannot evaluate %T", tex)
	return spectrum.SampledSpectrum{}
}
