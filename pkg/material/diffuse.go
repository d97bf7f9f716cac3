package material

import (
	"fmt"

	"github.com/df07/go-material-eval/pkg/bxdf"
	"github.com/df07/go-material-eval/pkg/core"
	"github.com/df07/go-material-eval/pkg/spectrum"
	"github.com/df07/go-material-eval/pkg/texture"
)

// Diffuse is a matte reflector with optional Oren-Nayar roughness
type Diffuse struct {
	Displacement texture.FloatTexture
	NormalMap    *texture.Image
	Reflectance  texture.SpectrumTexture
	Sigma        texture.FloatTexture // Facet slope deviation in degrees
}

// NewDiffuse creates a diffuse material. Missing reflectance reads as 0.5 and
// missing sigma as 0 (Lambertian).
func NewDiffuse(reflectance texture.SpectrumTexture, sigma texture.FloatTexture) *Diffuse {
	return &Diffuse{
		Reflectance: spectrumOrConstant(reflectance, 0.5),
		Sigma:       floatOrConstant(sigma, 0),
	}
}

func (d *Diffuse) Kind() Kind   { return KindDiffuse }
func (d *Diffuse) Name() string { return "DiffuseMaterial" }
func (d *Diffuse) sealed()      {}

// CanEvaluateTextures checks sigma and reflectance
func (d *Diffuse) CanEvaluateTextures(eval texture.TextureEvaluator) bool {
	return eval.CanEvaluate([]texture.FloatTexture{d.Sigma}, []texture.SpectrumTexture{d.Reflectance})
}

// GetBSDF fills out with a reflection-only rough diffuse kernel. Reflectance is
// clamped to [0,1] and sigma to [0,90].
func (d *Diffuse) GetBSDF(eval texture.TextureEvaluator, ctx *MaterialEvalContext, lambda *spectrum.SampledWavelengths, out *bxdf.RoughDiffuseBxDF) bxdf.BSDF {
	r := eval.EvaluateSpectrum(d.Reflectance, ctx.TextureEvalContext, lambda).Clamp(0, 1)
	sigma := core.Clamp(eval.EvaluateFloat(d.Sigma, ctx.TextureEvalContext), 0, 90)
	*out = bxdf.NewRoughDiffuseBxDF(r, spectrum.SampledSpectrum{}, sigma)
	return bxdf.NewBSDF(ctx.Ns, ctx.Dpdus, out)
}

func (d *Diffuse) HasSubsurfaceScattering() bool         { return false }
func (d *Diffuse) GetDisplacement() texture.FloatTexture { return d.Displacement }
func (d *Diffuse) GetNormalMap() *texture.Image          { return d.NormalMap }

func (d *Diffuse) String() string {
	return fmt.Sprintf("[ DiffuseMaterial reflectance: %v sigma: %v ]", d.Reflectance, d.Sigma)
}

// DiffuseTransmission is a thin translucent sheet that scatters diffusely on both sides
type DiffuseTransmission struct {
	Displacement  texture.FloatTexture
	NormalMap     *texture.Image
	Reflectance   texture.SpectrumTexture
	Transmittance texture.SpectrumTexture
	Sigma         texture.FloatTexture
	Scale         float64 // Applied to reflectance and transmittance before clamping
}

// NewDiffuseTransmission creates a diffuse transmitter. Missing reflectance and
// transmittance read as 0.25 and missing sigma as 0.
func NewDiffuseTransmission(reflectance, transmittance texture.SpectrumTexture, sigma texture.FloatTexture, scale float64) *DiffuseTransmission {
	return &DiffuseTransmission{
		Reflectance:   spectrumOrConstant(reflectance, 0.25),
		Transmittance: spectrumOrConstant(transmittance, 0.25),
		Sigma:         floatOrConstant(sigma, 0),
		Scale:         scale,
	}
}

func (d *DiffuseTransmission) Kind() Kind   { return KindDiffuseTransmission }
func (d *DiffuseTransmission) Name() string { return "DiffuseTransmissionMaterial" }
func (d *DiffuseTransmission) sealed()      {}

// CanEvaluateTextures checks sigma, reflectance and transmittance
func (d *DiffuseTransmission) CanEvaluateTextures(eval texture.TextureEvaluator) bool {
	return eval.CanEvaluate([]texture.FloatTexture{d.Sigma},
		[]texture.SpectrumTexture{d.Reflectance, d.Transmittance})
}

// GetBSDF fills out with a rough diffuse kernel that also transmits.
// Scaled reflectance and transmittance are clamped to [0,1] and sigma to [0,90].
func (d *DiffuseTransmission) GetBSDF(eval texture.TextureEvaluator, ctx *MaterialEvalContext, lambda *spectrum.SampledWavelengths, out *bxdf.RoughDiffuseBxDF) bxdf.BSDF {
	tctx := ctx.TextureEvalContext
	r := eval.EvaluateSpectrum(d.Reflectance, tctx, lambda).Multiply(d.Scale).Clamp(0, 1)
	t := eval.EvaluateSpectrum(d.Transmittance, tctx, lambda).Multiply(d.Scale).Clamp(0, 1)
	sigma := core.Clamp(eval.EvaluateFloat(d.Sigma, tctx), 0, 90)
	*out = bxdf.NewRoughDiffuseBxDF(r, t, sigma)
	return bxdf.NewBSDF(ctx.Ns, ctx.Dpdus, out)
}

func (d *DiffuseTransmission) HasSubsurfaceScattering() bool         { return false }
func (d *DiffuseTransmission) GetDisplacement() texture.FloatTexture { return d.Displacement }
func (d *DiffuseTransmission) GetNormalMap() *texture.Image          { return d.NormalMap }

func (d *DiffuseTransmission) String() string {
	return fmt.Sprintf("[ DiffuseTransmissionMaterial reflectance: %v transmittance: %v sigma: %v scale: %g ]",
		d.Reflectance, d.Transmittance, d.Sigma, d.Scale)
}
