package material

import (
	"fmt"
	"math"

	"github.com/df07/go-material-eval/pkg/bxdf"
	"github.com/df07/go-material-eval/pkg/core"
	"github.com/df07/go-material-eval/pkg/spectrum"
	"github.com/df07/go-material-eval/pkg/texture"
)

// Conductor is a metal described either by its complex index of refraction
// (Eta, K) or, when Eta is nil, by an artist-facing Reflectance
type Conductor struct {
	Displacement   texture.FloatTexture
	NormalMap      *texture.Image
	Eta            texture.SpectrumTexture
	K              texture.SpectrumTexture
	Reflectance    texture.SpectrumTexture
	URoughness     texture.FloatTexture
	VRoughness     texture.FloatTexture
	RemapRoughness bool
}

// NewConductor creates a conductor. Either eta and k or reflectance must be set.
func NewConductor(eta, k, reflectance texture.SpectrumTexture, uRoughness, vRoughness texture.FloatTexture, remapRoughness bool) *Conductor {
	core.CheckFatal((eta != nil && k != nil) || reflectance != nil,
		"ConductorMaterial needs both eta and k, or reflectance")
	return &Conductor{
		Eta:            eta,
		K:              k,
		Reflectance:    reflectance,
		URoughness:     floatOrConstant(uRoughness, 0),
		VRoughness:     floatOrConstant(vRoughness, 0),
		RemapRoughness: remapRoughness,
	}
}

func (c *Conductor) Kind() Kind   { return KindConductor }
func (c *Conductor) Name() string { return "ConductorMaterial" }
func (c *Conductor) sealed()      {}

// CanEvaluateTextures checks the roughness and optical constant textures
func (c *Conductor) CanEvaluateTextures(eval texture.TextureEvaluator) bool {
	return eval.CanEvaluate([]texture.FloatTexture{c.URoughness, c.VRoughness},
		[]texture.SpectrumTexture{c.Eta, c.K, c.Reflectance})
}

// GetBSDF fills out with a conductor kernel
func (c *Conductor) GetBSDF(eval texture.TextureEvaluator, ctx *MaterialEvalContext, lambda *spectrum.SampledWavelengths, out *bxdf.ConductorBxDF) bxdf.BSDF {
	distrib := roughnessDistribution(eval, ctx, c.URoughness, c.VRoughness, c.RemapRoughness)
	var eta, k spectrum.SampledSpectrum
	if c.Eta != nil {
		eta = eval.EvaluateSpectrum(c.Eta, ctx.TextureEvalContext, lambda)
		k = eval.EvaluateSpectrum(c.K, ctx.TextureEvalContext, lambda)
	} else {
		r := eval.EvaluateSpectrum(c.Reflectance, ctx.TextureEvalContext, lambda)
		eta, k = reflectanceToConductor(r)
	}
	*out = bxdf.NewConductorBxDF(distrib, eta, k)
	return bxdf.NewBSDF(ctx.Ns, ctx.Dpdus, out)
}

// minConductorGap is the smallest 1-r for r below 1. Reflectance at or above 1
// uses it so k stays finite.
const minConductorGap = 0x1p-53

// reflectanceToConductor returns eta = 1 and the k that gives normal-incidence
// reflectance r: k = 2*sqrt(r) / sqrt(max(0, 1-r))
func reflectanceToConductor(r spectrum.SampledSpectrum) (eta, k spectrum.SampledSpectrum) {
	k = r.Map(func(v float64) float64 {
		v = math.Max(v, 0)
		return 2 * math.Sqrt(v) / math.Sqrt(math.Max(minConductorGap, 1-v))
	})
	return spectrum.NewSampledSpectrum(1), k
}

func (c *Conductor) HasSubsurfaceScattering() bool         { return false }
func (c *Conductor) GetDisplacement() texture.FloatTexture { return c.Displacement }
func (c *Conductor) GetNormalMap() *texture.Image          { return c.NormalMap }

func (c *Conductor) String() string {
	return fmt.Sprintf("[ ConductorMaterial eta: %v k: %v reflectance: %v uroughness: %v vroughness: %v remaproughness: %t ]",
		c.Eta, c.K, c.Reflectance, c.URoughness, c.VRoughness, c.RemapRoughness)
}
