package material

import (
	"github.com/df07/go-material-eval/pkg/bssrdf"
	"github.com/df07/go-material-eval/pkg/bxdf"
	"github.com/df07/go-material-eval/pkg/core"
	"github.com/df07/go-material-eval/pkg/log"
	"github.com/df07/go-material-eval/pkg/spectrum"
	"github.com/df07/go-material-eval/pkg/texture"
)

var logger = log.New("material")

// Kind identifies the variant held by a Material
type Kind int

const (
	KindDielectric Kind = iota
	KindThinDielectric
	KindMix
	KindHair
	KindDiffuse
	KindConductor
	KindCoatedDiffuse
	KindCoatedConductor
	KindSubsurface
	KindDiffuseTransmission
	KindMeasured
	numKinds
)

var kindNames = [numKinds]string{
	KindDielectric:          "dielectric",
	KindThinDielectric:      "thindielectric",
	KindMix:                 "mix",
	KindHair:                "hair",
	KindDiffuse:             "diffuse",
	KindConductor:           "conductor",
	KindCoatedDiffuse:       "coateddiffuse",
	KindCoatedConductor:     "coatedconductor",
	KindSubsurface:          "subsurface",
	KindDiffuseTransmission: "diffusetransmission",
	KindMeasured:            "measured",
}

func (k Kind) String() string {
	if k < 0 || k >= numKinds {
		return "unknown"
	}
	return kindNames[k]
}

// Kinds lists every material kind in declaration order
func Kinds() []Kind {
	kinds := make([]Kind, numKinds)
	for i := range kinds {
		kinds[i] = Kind(i)
	}
	return kinds
}

// ParseKind maps a kind name back to its Kind
func ParseKind(name string) (Kind, bool) {
	for i, n := range kindNames {
		if n == name {
			return Kind(i), true
		}
	}
	return 0, false
}

// Material is one of the eleven variants in this package. The set is closed:
// the facade functions below switch over every concrete type.
type Material interface {
	Kind() Kind
	Name() string
	CanEvaluateTextures(eval texture.TextureEvaluator) bool
	HasSubsurfaceScattering() bool
	GetDisplacement() texture.FloatTexture
	GetNormalMap() *texture.Image
	String() string

	sealed()
}

// CanEvaluateTextures reports whether eval can handle every texture m reads
func CanEvaluateTextures(m Material, eval texture.TextureEvaluator) bool {
	return m.CanEvaluateTextures(eval)
}

// HasSubsurfaceScattering reports whether m produces a BSSRDF
func HasSubsurfaceScattering(m Material) bool {
	return m.HasSubsurfaceScattering()
}

// GetDisplacement returns the displacement texture of m, or nil
func GetDisplacement(m Material) texture.FloatTexture {
	return m.GetDisplacement()
}

// GetNormalMap returns the normal map of m, or nil
func GetNormalMap(m Material) *texture.Image {
	return m.GetNormalMap()
}

// GetBSDF allocates the scattering kernel of m from buf and returns the BSDF
// built around it. It returns false without evaluating anything when eval
// cannot handle the textures of m. Mix materials must be resolved with
// ChooseMaterial first.
func GetBSDF(m Material, eval texture.TextureEvaluator, ctx *MaterialEvalContext, lambda *spectrum.SampledWavelengths, buf *core.ScratchBuffer) (bxdf.BSDF, bool) {
	if !m.CanEvaluateTextures(eval) {
		return bxdf.BSDF{}, false
	}

	switch m := m.(type) {
	case *Dielectric:
		return m.GetBSDF(eval, ctx, lambda, core.Alloc[bxdf.DielectricBxDF](buf)), true
	case *ThinDielectric:
		return m.GetBSDF(eval, ctx, lambda, core.Alloc[bxdf.ThinDielectricBxDF](buf)), true
	case *Mix:
		return m.GetBSDF(eval, ctx, lambda), true
	case *Hair:
		return m.GetBSDF(eval, ctx, lambda, core.Alloc[bxdf.HairBxDF](buf)), true
	case *Diffuse:
		return m.GetBSDF(eval, ctx, lambda, core.Alloc[bxdf.RoughDiffuseBxDF](buf)), true
	case *Conductor:
		return m.GetBSDF(eval, ctx, lambda, core.Alloc[bxdf.ConductorBxDF](buf)), true
	case *CoatedDiffuse:
		return m.GetBSDF(eval, ctx, lambda, core.Alloc[bxdf.CoatedDiffuseBxDF](buf)), true
	case *CoatedConductor:
		return m.GetBSDF(eval, ctx, lambda, core.Alloc[bxdf.CoatedConductorBxDF](buf)), true
	case *Subsurface:
		return m.GetBSDF(eval, ctx, lambda, core.Alloc[bxdf.DielectricBxDF](buf)), true
	case *DiffuseTransmission:
		return m.GetBSDF(eval, ctx, lambda, core.Alloc[bxdf.RoughDiffuseBxDF](buf)), true
	case *Measured:
		return m.GetBSDF(eval, ctx, lambda, core.Alloc[bxdf.MeasuredBxDF](buf)), true
	}
	core.Fatalf("unhandled material type %T", m)
	return bxdf.BSDF{}, false
}

// GetBSSRDF returns the subsurface scattering function of m allocated from buf,
// or nil for every variant without subsurface transport.
func GetBSSRDF(m Material, eval texture.TextureEvaluator, ctx *MaterialEvalContext, lambda *spectrum.SampledWavelengths, buf *core.ScratchBuffer) *bssrdf.TabulatedBSSRDF {
	switch m := m.(type) {
	case *Subsurface:
		out := core.Alloc[bssrdf.TabulatedBSSRDF](buf)
		m.GetBSSRDF(eval, ctx, lambda, out)
		return out
	case *Mix:
		m.GetBSSRDF(eval, ctx, lambda)
		return nil
	case *Dielectric, *ThinDielectric, *Hair, *Diffuse, *Conductor,
		*CoatedDiffuse, *CoatedConductor, *DiffuseTransmission, *Measured:
		return nil
	}
	core.Fatalf("unhandled material type %T", m)
	return nil
}

// ChooseMaterial follows mix materials in t until it reaches a concrete one.
// Materials that are not mixes are returned unchanged.
func ChooseMaterial(t *Table, m Material, eval texture.TextureEvaluator, ctx *MaterialEvalContext) Material {
	for {
		mix, ok := m.(*Mix)
		if !ok {
			return m
		}
		m = t.Get(mix.ChooseMaterial(eval, ctx))
	}
}

// roughnessDistribution evaluates a pair of roughness textures into a microfacet distribution
func roughnessDistribution(eval texture.TextureEvaluator, ctx *MaterialEvalContext, u, v texture.FloatTexture, remap bool) bxdf.TrowbridgeReitzDistribution {
	urough := eval.EvaluateFloat(u, ctx.TextureEvalContext)
	vrough := eval.EvaluateFloat(v, ctx.TextureEvalContext)
	if remap {
		urough = bxdf.RoughnessToAlpha(urough)
		vrough = bxdf.RoughnessToAlpha(vrough)
	}
	return bxdf.NewTrowbridgeReitzDistribution(urough, vrough)
}

// sampleEta evaluates eta at the hero wavelength. A dispersive eta terminates
// the secondary wavelengths, and a zero eta reads as 1.
func sampleEta(eta spectrum.Spectrum, lambda *spectrum.SampledWavelengths) float64 {
	sampled := eta.Evaluate(lambda.Lambda(0))
	if !spectrum.IsConstant(eta) {
		lambda.TerminateSecondary()
	}
	if sampled == 0 {
		sampled = 1
	}
	return sampled
}

func floatOrConstant(tex texture.FloatTexture, v float64) texture.FloatTexture {
	if tex == nil {
		return texture.NewFloatConstant(v)
	}
	return tex
}

func spectrumOrConstant(tex texture.SpectrumTexture, v float64) texture.SpectrumTexture {
	if tex == nil {
		return texture.NewSpectrumConstant(spectrum.NewConstantSpectrum(v))
	}
	return tex
}

func etaOrConstant(eta spectrum.Spectrum, v float64) spectrum.Spectrum {
	if eta == nil {
		return spectrum.NewConstantSpectrum(v)
	}
	return eta
}

// SetNormalMap attaches img to m. Hair and mix materials carry no normal map
// and report false.
func SetNormalMap(m Material, img *texture.Image) bool {
	switch m := m.(type) {
	case *Dielectric:
		m.NormalMap = img
	case *ThinDielectric:
		m.NormalMap = img
	case *Diffuse:
		m.NormalMap = img
	case *DiffuseTransmission:
		m.NormalMap = img
	case *Conductor:
		m.NormalMap = img
	case *CoatedDiffuse:
		m.NormalMap = img
	case *CoatedConductor:
		m.NormalMap = img
	case *Subsurface:
		m.NormalMap = img
	case *Measured:
		m.NormalMap = img
	default:
		return false
	}
	return true
}
