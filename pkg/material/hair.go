package material

import (
	"fmt"
	"math"

	"github.com/df07/go-material-eval/pkg/bxdf"
	"github.com/df07/go-material-eval/pkg/core"
	"github.com/df07/go-material-eval/pkg/spectrum"
	"github.com/df07/go-material-eval/pkg/texture"
)

// Hair models a fiber with a cuticle of tilted scales. Absorption comes from the
// first of SigmaA, Color or the melanin concentrations that is set.
type Hair struct {
	SigmaA      texture.SpectrumTexture
	Color       texture.SpectrumTexture
	Eumelanin   texture.FloatTexture
	Pheomelanin texture.FloatTexture
	Eta         texture.FloatTexture
	BetaM       texture.FloatTexture // Longitudinal roughness
	BetaN       texture.FloatTexture // Azimuthal roughness
	Alpha       texture.FloatTexture // Scale tilt in degrees
}

// NewHair creates a hair material. At least one of sigmaA, color, eumelanin or
// pheomelanin must be set; the rest default to eta 1.55, beta_m 0.3, beta_n 0.3
// and alpha 2.
func NewHair(sigmaA, color texture.SpectrumTexture, eumelanin, pheomelanin, eta, betaM, betaN, alpha texture.FloatTexture) *Hair {
	return &Hair{
		SigmaA:      sigmaA,
		Color:       color,
		Eumelanin:   eumelanin,
		Pheomelanin: pheomelanin,
		Eta:         floatOrConstant(eta, 1.55),
		BetaM:       floatOrConstant(betaM, 0.3),
		BetaN:       floatOrConstant(betaN, 0.3),
		Alpha:       floatOrConstant(alpha, 2),
	}
}

func (h *Hair) Kind() Kind   { return KindHair }
func (h *Hair) Name() string { return "HairMaterial" }
func (h *Hair) sealed()      {}

// CanEvaluateTextures checks every texture the material may read
func (h *Hair) CanEvaluateTextures(eval texture.TextureEvaluator) bool {
	return eval.CanEvaluate(
		[]texture.FloatTexture{h.Eumelanin, h.Pheomelanin, h.Eta, h.BetaM, h.BetaN, h.Alpha},
		[]texture.SpectrumTexture{h.SigmaA, h.Color})
}

// GetBSDF fills out with a hair kernel. The offset across the fiber is taken from v.
func (h *Hair) GetBSDF(eval texture.TextureEvaluator, ctx *MaterialEvalContext, lambda *spectrum.SampledWavelengths, out *bxdf.HairBxDF) bxdf.BSDF {
	tctx := ctx.TextureEvalContext
	bm := math.Max(1e-2, eval.EvaluateFloat(h.BetaM, tctx))
	bn := math.Max(1e-2, eval.EvaluateFloat(h.BetaN, tctx))
	a := eval.EvaluateFloat(h.Alpha, tctx)
	e := eval.EvaluateFloat(h.Eta, tctx)

	var sigmaA spectrum.SampledSpectrum
	switch {
	case h.SigmaA != nil:
		sigmaA = eval.EvaluateSpectrum(h.SigmaA, tctx, lambda).ClampZero()
	case h.Color != nil:
		c := eval.EvaluateSpectrum(h.Color, tctx, lambda).Clamp(0, 1)
		sigmaA = bxdf.SigmaAFromReflectance(c, bn)
	default:
		core.CheckFatal(h.Eumelanin != nil || h.Pheomelanin != nil,
			"HairMaterial needs sigma_a, color, or a melanin concentration")
		var ce, cp float64
		if h.Eumelanin != nil {
			ce = math.Max(0, eval.EvaluateFloat(h.Eumelanin, tctx))
		}
		if h.Pheomelanin != nil {
			cp = math.Max(0, eval.EvaluateFloat(h.Pheomelanin, tctx))
		}
		sigmaA = spectrum.Sample(bxdf.SigmaAFromConcentration(ce, cp), lambda)
	}

	offset := -1 + 2*ctx.UV.Y
	*out = bxdf.NewHairBxDF(offset, e, sigmaA, bm, bn, a)
	return bxdf.NewBSDF(ctx.Ns, ctx.Dpdus, out)
}

// Hair is never bumped
func (h *Hair) GetDisplacement() texture.FloatTexture { return nil }
func (h *Hair) GetNormalMap() *texture.Image          { return nil }
func (h *Hair) HasSubsurfaceScattering() bool         { return false }

func (h *Hair) String() string {
	return fmt.Sprintf("[ HairMaterial sigma_a: %v color: %v eumelanin: %v pheomelanin: %v eta: %v beta_m: %v beta_n: %v alpha: %v ]",
		h.SigmaA, h.Color, h.Eumelanin, h.Pheomelanin, h.Eta, h.BetaM, h.BetaN, h.Alpha)
}
