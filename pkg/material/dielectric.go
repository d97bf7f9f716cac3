package material

import (
	"fmt"

	"github.com/df07/go-material-eval/pkg/bxdf"
	"github.com/df07/go-material-eval/pkg/spectrum"
	"github.com/df07/go-material-eval/pkg/texture"
)

// Dielectric is a glass-like interface that reflects and refracts, smooth or rough
type Dielectric struct {
	Displacement   texture.FloatTexture
	NormalMap      *texture.Image
	URoughness     texture.FloatTexture
	VRoughness     texture.FloatTexture
	Eta            spectrum.Spectrum // Index of refraction, possibly dispersive
	RemapRoughness bool              // Convert roughness to microfacet alpha
}

// NewDielectric creates a dielectric. Missing roughness reads as 0 (smooth) and
// a missing eta as 1.5.
func NewDielectric(eta spectrum.Spectrum, uRoughness, vRoughness texture.FloatTexture, remapRoughness bool) *Dielectric {
	return &Dielectric{
		URoughness:     floatOrConstant(uRoughness, 0),
		VRoughness:     floatOrConstant(vRoughness, 0),
		Eta:            etaOrConstant(eta, 1.5),
		RemapRoughness: remapRoughness,
	}
}

func (d *Dielectric) Kind() Kind   { return KindDielectric }
func (d *Dielectric) Name() string { return "DielectricMaterial" }
func (d *Dielectric) sealed()      {}

// CanEvaluateTextures checks the roughness textures
func (d *Dielectric) CanEvaluateTextures(eval texture.TextureEvaluator) bool {
	return eval.CanEvaluate([]texture.FloatTexture{d.URoughness, d.VRoughness}, nil)
}

// GetBSDF fills out with a dielectric kernel for the hero wavelength of lambda
func (d *Dielectric) GetBSDF(eval texture.TextureEvaluator, ctx *MaterialEvalContext, lambda *spectrum.SampledWavelengths, out *bxdf.DielectricBxDF) bxdf.BSDF {
	eta := sampleEta(d.Eta, lambda)
	distrib := roughnessDistribution(eval, ctx, d.URoughness, d.VRoughness, d.RemapRoughness)
	*out = bxdf.NewDielectricBxDF(eta, distrib)
	return bxdf.NewBSDF(ctx.Ns, ctx.Dpdus, out)
}

func (d *Dielectric) HasSubsurfaceScattering() bool         { return false }
func (d *Dielectric) GetDisplacement() texture.FloatTexture { return d.Displacement }
func (d *Dielectric) GetNormalMap() *texture.Image          { return d.NormalMap }

func (d *Dielectric) String() string {
	return fmt.Sprintf("[ DielectricMaterial eta: %v uroughness: %v vroughness: %v remaproughness: %t ]",
		d.Eta, d.URoughness, d.VRoughness, d.RemapRoughness)
}

// ThinDielectric is a zero-thickness slab such as a window pane or soap bubble
type ThinDielectric struct {
	Displacement texture.FloatTexture
	NormalMap    *texture.Image
	Eta          spectrum.Spectrum
}

// NewThinDielectric creates a thin dielectric. A missing eta reads as 1.5.
func NewThinDielectric(eta spectrum.Spectrum) *ThinDielectric {
	return &ThinDielectric{Eta: etaOrConstant(eta, 1.5)}
}

func (d *ThinDielectric) Kind() Kind   { return KindThinDielectric }
func (d *ThinDielectric) Name() string { return "ThinDielectricMaterial" }
func (d *ThinDielectric) sealed()      {}

// CanEvaluateTextures always succeeds, the material has no textures
func (d *ThinDielectric) CanEvaluateTextures(eval texture.TextureEvaluator) bool {
	return true
}

// GetBSDF fills out with a thin dielectric kernel for the hero wavelength of lambda
func (d *ThinDielectric) GetBSDF(eval texture.TextureEvaluator, ctx *MaterialEvalContext, lambda *spectrum.SampledWavelengths, out *bxdf.ThinDielectricBxDF) bxdf.BSDF {
	*out = bxdf.NewThinDielectricBxDF(sampleEta(d.Eta, lambda))
	return bxdf.NewBSDF(ctx.Ns, ctx.Dpdus, out)
}

func (d *ThinDielectric) HasSubsurfaceScattering() bool         { return false }
func (d *ThinDielectric) GetDisplacement() texture.FloatTexture { return d.Displacement }
func (d *ThinDielectric) GetNormalMap() *texture.Image          { return d.NormalMap }

func (d *ThinDielectric) String() string {
	return fmt.Sprintf("[ ThinDielectricMaterial eta: %v ]", d.Eta)
}
