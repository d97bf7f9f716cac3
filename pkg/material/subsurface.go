package material

import (
	"fmt"

	"github.com/df07/go-material-eval/pkg/bssrdf"
	"github.com/df07/go-material-eval/pkg/bxdf"
	"github.com/df07/go-material-eval/pkg/core"
	"github.com/df07/go-material-eval/pkg/spectrum"
	"github.com/df07/go-material-eval/pkg/texture"
)

// Subsurface is a translucent material with a dielectric boundary and light
// transport below the surface. The medium is given either by SigmaA and SigmaS
// or by a diffuse Reflectance and a mean free path MFP.
type Subsurface struct {
	Displacement   texture.FloatTexture
	NormalMap      *texture.Image
	Scale          float64
	SigmaA         texture.SpectrumTexture
	SigmaS         texture.SpectrumTexture
	Reflectance    texture.SpectrumTexture
	MFP            texture.SpectrumTexture
	G              float64
	Eta            float64
	URoughness     texture.FloatTexture
	VRoughness     texture.FloatTexture
	RemapRoughness bool

	table *bssrdf.Table
}

// SubsurfaceParams groups the constructor arguments of a Subsurface
type SubsurfaceParams struct {
	Scale                  float64
	SigmaA, SigmaS         texture.SpectrumTexture
	Reflectance, MFP       texture.SpectrumTexture
	G, Eta                 float64
	URoughness, VRoughness texture.FloatTexture
	RemapRoughness         bool
}

// NewSubsurface creates a subsurface material and tabulates its diffusion
// profile for g and eta. Zero scale and eta read as 1 and 1.33.
func NewSubsurface(p SubsurfaceParams) *Subsurface {
	core.CheckFatal((p.SigmaA != nil && p.SigmaS != nil) || (p.Reflectance != nil && p.MFP != nil),
		"SubsurfaceMaterial needs sigma_a and sigma_s, or reflectance and mfp")
	if p.Scale == 0 {
		p.Scale = 1
	}
	if p.Eta == 0 {
		p.Eta = 1.33
	}
	s := &Subsurface{
		Scale:          p.Scale,
		SigmaA:         p.SigmaA,
		SigmaS:         p.SigmaS,
		Reflectance:    p.Reflectance,
		MFP:            p.MFP,
		G:              p.G,
		Eta:            p.Eta,
		URoughness:     floatOrConstant(p.URoughness, 0),
		VRoughness:     floatOrConstant(p.VRoughness, 0),
		RemapRoughness: p.RemapRoughness,
		table:          bssrdf.NewTable(bssrdf.DefaultRhoSamples, bssrdf.DefaultRadiusSamples),
	}
	logger.Debugf("Tabulating beam diffusion profile g=%g eta=%g (%dx%d)",
		s.G, s.Eta, bssrdf.DefaultRhoSamples, bssrdf.DefaultRadiusSamples)
	bssrdf.ComputeBeamDiffusion(s.G, s.Eta, s.table)
	return s
}

func (s *Subsurface) Kind() Kind   { return KindSubsurface }
func (s *Subsurface) Name() string { return "SubsurfaceMaterial" }
func (s *Subsurface) sealed()      {}

// Table returns the precomputed diffusion profile. It must not be modified.
func (s *Subsurface) Table() *bssrdf.Table { return s.table }

// CanEvaluateTextures checks the roughness and coefficient textures
func (s *Subsurface) CanEvaluateTextures(eval texture.TextureEvaluator) bool {
	return eval.CanEvaluate([]texture.FloatTexture{s.URoughness, s.VRoughness},
		[]texture.SpectrumTexture{s.SigmaA, s.SigmaS, s.Reflectance, s.MFP})
}

// GetBSDF fills out with the dielectric boundary of the medium
func (s *Subsurface) GetBSDF(eval texture.TextureEvaluator, ctx *MaterialEvalContext, lambda *spectrum.SampledWavelengths, out *bxdf.DielectricBxDF) bxdf.BSDF {
	distrib := roughnessDistribution(eval, ctx, s.URoughness, s.VRoughness, s.RemapRoughness)
	*out = bxdf.NewDielectricBxDF(s.Eta, distrib)
	return bxdf.NewBSDF(ctx.Ns, ctx.Dpdus, out)
}

// GetBSSRDF fills out with the tabulated subsurface function at ctx
func (s *Subsurface) GetBSSRDF(eval texture.TextureEvaluator, ctx *MaterialEvalContext, lambda *spectrum.SampledWavelengths, out *bssrdf.TabulatedBSSRDF) {
	tctx := ctx.TextureEvalContext
	var sigmaA, sigmaS spectrum.SampledSpectrum
	if s.SigmaA != nil && s.SigmaS != nil {
		sigmaA = eval.EvaluateSpectrum(s.SigmaA, tctx, lambda).Multiply(s.Scale).ClampZero()
		sigmaS = eval.EvaluateSpectrum(s.SigmaS, tctx, lambda).Multiply(s.Scale).ClampZero()
	} else {
		core.DCheck(s.Reflectance != nil && s.MFP != nil, "subsurface material without reflectance and mfp")
		mfree := eval.EvaluateSpectrum(s.MFP, tctx, lambda).Multiply(s.Scale).ClampZero()
		r := eval.EvaluateSpectrum(s.Reflectance, tctx, lambda).Clamp(0, 1)
		sigmaA, sigmaS = bssrdf.SubsurfaceFromDiffuse(s.table, r, mfree)
	}
	*out = bssrdf.NewTabulatedBSSRDF(ctx.P, ctx.Ns, ctx.Wo, s.Eta, sigmaA, sigmaS, s.table)
}

func (s *Subsurface) HasSubsurfaceScattering() bool         { return true }
func (s *Subsurface) GetDisplacement() texture.FloatTexture { return s.Displacement }
func (s *Subsurface) GetNormalMap() *texture.Image          { return s.NormalMap }

func (s *Subsurface) String() string {
	return fmt.Sprintf("[ SubsurfaceMaterial scale: %g sigma_a: %v sigma_s: %v reflectance: %v mfp: %v g: %g eta: %g uroughness: %v vroughness: %v remaproughness: %t ]",
		s.Scale, s.SigmaA, s.SigmaS, s.Reflectance, s.MFP, s.G, s.Eta, s.URoughness, s.VRoughness, s.RemapRoughness)
}
