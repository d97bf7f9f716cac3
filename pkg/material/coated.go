package material

import (
	"fmt"

	"github.com/df07/go-material-eval/pkg/bxdf"
	"github.com/df07/go-material-eval/pkg/core"
	"github.com/df07/go-material-eval/pkg/spectrum"
	"github.com/df07/go-material-eval/pkg/texture"
)

// LayerParams configures the medium between a coating and its base
type LayerParams struct {
	Thickness texture.FloatTexture
	Albedo    texture.SpectrumTexture // Single-scattering albedo of the medium
	G         texture.FloatTexture    // Henyey-Greenstein asymmetry
	MaxDepth  int                     // Bounce budget of the random walk
	NSamples  int                     // Walks averaged per evaluation
}

// withDefaults fills missing layer parameters: thickness 0.01, albedo 0, g 0,
// 10 bounces and 1 sample
func (p LayerParams) withDefaults() LayerParams {
	p.Thickness = floatOrConstant(p.Thickness, 0.01)
	p.Albedo = spectrumOrConstant(p.Albedo, 0)
	p.G = floatOrConstant(p.G, 0)
	if p.MaxDepth <= 0 {
		p.MaxDepth = 10
	}
	if p.NSamples <= 0 {
		p.NSamples = 1
	}
	return p
}

func (p *LayerParams) evaluate(eval texture.TextureEvaluator, ctx *MaterialEvalContext, lambda *spectrum.SampledWavelengths) bxdf.LayeredConfig {
	return bxdf.LayeredConfig{
		Thickness: eval.EvaluateFloat(p.Thickness, ctx.TextureEvalContext),
		Albedo:    eval.EvaluateSpectrum(p.Albedo, ctx.TextureEvalContext, lambda).Clamp(0, 1),
		G:         core.Clamp(eval.EvaluateFloat(p.G, ctx.TextureEvalContext), -1, 1),
		MaxDepth:  p.MaxDepth,
		NSamples:  p.NSamples,
	}
}

// CoatedDiffuse is a diffuse base under a dielectric coating, like varnished wood
type CoatedDiffuse struct {
	Displacement   texture.FloatTexture
	NormalMap      *texture.Image
	Reflectance    texture.SpectrumTexture
	URoughness     texture.FloatTexture
	VRoughness     texture.FloatTexture
	Eta            spectrum.Spectrum
	Layer          LayerParams
	RemapRoughness bool
}

// NewCoatedDiffuse creates a coated diffuse material. Missing reflectance reads
// as 0.5, roughness as 0 and eta as 1.5.
func NewCoatedDiffuse(reflectance texture.SpectrumTexture, uRoughness, vRoughness texture.FloatTexture, eta spectrum.Spectrum, layer LayerParams, remapRoughness bool) *CoatedDiffuse {
	return &CoatedDiffuse{
		Reflectance:    spectrumOrConstant(reflectance, 0.5),
		URoughness:     floatOrConstant(uRoughness, 0),
		VRoughness:     floatOrConstant(vRoughness, 0),
		Eta:            etaOrConstant(eta, 1.5),
		Layer:          layer.withDefaults(),
		RemapRoughness: remapRoughness,
	}
}

func (c *CoatedDiffuse) Kind() Kind   { return KindCoatedDiffuse }
func (c *CoatedDiffuse) Name() string { return "CoatedDiffuseMaterial" }
func (c *CoatedDiffuse) sealed()      {}

// CanEvaluateTextures checks the interface, medium and base textures
func (c *CoatedDiffuse) CanEvaluateTextures(eval texture.TextureEvaluator) bool {
	return eval.CanEvaluate(
		[]texture.FloatTexture{c.URoughness, c.VRoughness, c.Layer.Thickness, c.Layer.G},
		[]texture.SpectrumTexture{c.Reflectance, c.Layer.Albedo})
}

// GetBSDF fills out with a layered kernel: a dielectric over a Lambertian base
func (c *CoatedDiffuse) GetBSDF(eval texture.TextureEvaluator, ctx *MaterialEvalContext, lambda *spectrum.SampledWavelengths, out *bxdf.CoatedDiffuseBxDF) bxdf.BSDF {
	r := eval.EvaluateSpectrum(c.Reflectance, ctx.TextureEvalContext, lambda).Clamp(0, 1)
	distrib := roughnessDistribution(eval, ctx, c.URoughness, c.VRoughness, c.RemapRoughness)
	cfg := c.Layer.evaluate(eval, ctx, lambda)
	eta := sampleEta(c.Eta, lambda)

	*out = bxdf.NewCoatedDiffuseBxDF(
		bxdf.NewDielectricBxDF(eta, distrib),
		bxdf.NewRoughDiffuseBxDF(r, spectrum.SampledSpectrum{}, 0),
		cfg)
	return bxdf.NewBSDF(ctx.Ns, ctx.Dpdus, out)
}

func (c *CoatedDiffuse) HasSubsurfaceScattering() bool         { return false }
func (c *CoatedDiffuse) GetDisplacement() texture.FloatTexture { return c.Displacement }
func (c *CoatedDiffuse) GetNormalMap() *texture.Image          { return c.NormalMap }

func (c *CoatedDiffuse) String() string {
	return fmt.Sprintf("[ CoatedDiffuseMaterial reflectance: %v uroughness: %v vroughness: %v eta: %v thickness: %v albedo: %v g: %v maxdepth: %d nsamples: %d remaproughness: %t ]",
		c.Reflectance, c.URoughness, c.VRoughness, c.Eta, c.Layer.Thickness, c.Layer.Albedo, c.Layer.G,
		c.Layer.MaxDepth, c.Layer.NSamples, c.RemapRoughness)
}

// CoatedConductor is a metal under a dielectric coating, like car paint clear coat
type CoatedConductor struct {
	Displacement        texture.FloatTexture
	NormalMap           *texture.Image
	InterfaceURoughness texture.FloatTexture
	InterfaceVRoughness texture.FloatTexture
	InterfaceEta        spectrum.Spectrum
	ConductorURoughness texture.FloatTexture
	ConductorVRoughness texture.FloatTexture
	ConductorEta        texture.SpectrumTexture
	K                   texture.SpectrumTexture
	Reflectance         texture.SpectrumTexture
	Layer               LayerParams
	RemapRoughness      bool
}

// CoatedConductorParams groups the constructor arguments of a CoatedConductor
type CoatedConductorParams struct {
	InterfaceURoughness, InterfaceVRoughness texture.FloatTexture
	InterfaceEta                             spectrum.Spectrum
	ConductorURoughness, ConductorVRoughness texture.FloatTexture
	ConductorEta, K                          texture.SpectrumTexture
	Reflectance                              texture.SpectrumTexture
	Layer                                    LayerParams
	RemapRoughness                           bool
}

// NewCoatedConductor creates a coated conductor. The base needs conductor eta
// and k or a reflectance; missing roughness reads as 0 and interface eta as 1.5.
func NewCoatedConductor(p CoatedConductorParams) *CoatedConductor {
	core.CheckFatal((p.ConductorEta != nil && p.K != nil) || p.Reflectance != nil,
		"CoatedConductorMaterial needs both conductor eta and k, or reflectance")
	return &CoatedConductor{
		InterfaceURoughness: floatOrConstant(p.InterfaceURoughness, 0),
		InterfaceVRoughness: floatOrConstant(p.InterfaceVRoughness, 0),
		InterfaceEta:        etaOrConstant(p.InterfaceEta, 1.5),
		ConductorURoughness: floatOrConstant(p.ConductorURoughness, 0),
		ConductorVRoughness: floatOrConstant(p.ConductorVRoughness, 0),
		ConductorEta:        p.ConductorEta,
		K:                   p.K,
		Reflectance:         p.Reflectance,
		Layer:               p.Layer.withDefaults(),
		RemapRoughness:      p.RemapRoughness,
	}
}

func (c *CoatedConductor) Kind() Kind   { return KindCoatedConductor }
func (c *CoatedConductor) Name() string { return "CoatedConductorMaterial" }
func (c *CoatedConductor) sealed()      {}

// CanEvaluateTextures checks the interface, medium and conductor textures
func (c *CoatedConductor) CanEvaluateTextures(eval texture.TextureEvaluator) bool {
	return eval.CanEvaluate(
		[]texture.FloatTexture{c.InterfaceURoughness, c.InterfaceVRoughness, c.Layer.Thickness,
			c.Layer.G, c.ConductorURoughness, c.ConductorVRoughness},
		[]texture.SpectrumTexture{c.ConductorEta, c.K, c.Reflectance, c.Layer.Albedo})
}

// GetBSDF fills out with a layered kernel: a dielectric over a conductor. The
// conductor constants are divided by the interface eta since the base sits
// inside the coating.
func (c *CoatedConductor) GetBSDF(eval texture.TextureEvaluator, ctx *MaterialEvalContext, lambda *spectrum.SampledWavelengths, out *bxdf.CoatedConductorBxDF) bxdf.BSDF {
	interfaceDistrib := roughnessDistribution(eval, ctx, c.InterfaceURoughness, c.InterfaceVRoughness, c.RemapRoughness)
	cfg := c.Layer.evaluate(eval, ctx, lambda)
	ieta := sampleEta(c.InterfaceEta, lambda)

	var ce, ck spectrum.SampledSpectrum
	if c.ConductorEta != nil {
		ce = eval.EvaluateSpectrum(c.ConductorEta, ctx.TextureEvalContext, lambda)
		ck = eval.EvaluateSpectrum(c.K, ctx.TextureEvalContext, lambda)
	} else {
		r := eval.EvaluateSpectrum(c.Reflectance, ctx.TextureEvalContext, lambda)
		ce, ck = reflectanceToConductor(r)
	}
	ce = ce.Multiply(1 / ieta)
	ck = ck.Multiply(1 / ieta)
	conductorDistrib := roughnessDistribution(eval, ctx, c.ConductorURoughness, c.ConductorVRoughness, c.RemapRoughness)

	*out = bxdf.NewCoatedConductorBxDF(
		bxdf.NewDielectricBxDF(ieta, interfaceDistrib),
		bxdf.NewConductorBxDF(conductorDistrib, ce, ck),
		cfg)
	return bxdf.NewBSDF(ctx.Ns, ctx.Dpdus, out)
}

func (c *CoatedConductor) HasSubsurfaceScattering() bool         { return false }
func (c *CoatedConductor) GetDisplacement() texture.FloatTexture { return c.Displacement }
func (c *CoatedConductor) GetNormalMap() *texture.Image          { return c.NormalMap }

func (c *CoatedConductor) String() string {
	return fmt.Sprintf("[ CoatedConductorMaterial interface.eta: %v interface.roughness: (%v, %v) conductor.eta: %v k: %v reflectance: %v conductor.roughness: (%v, %v) thickness: %v albedo: %v g: %v maxdepth: %d nsamples: %d remaproughness: %t ]",
		c.InterfaceEta, c.InterfaceURoughness, c.InterfaceVRoughness, c.ConductorEta, c.K, c.Reflectance,
		c.ConductorURoughness, c.ConductorVRoughness, c.Layer.Thickness, c.Layer.Albedo, c.Layer.G,
		c.Layer.MaxDepth, c.Layer.NSamples, c.RemapRoughness)
}
