package material

import (
	"fmt"

	"github.com/df07/go-material-eval/pkg/bxdf"
	"github.com/df07/go-material-eval/pkg/core"
	"github.com/df07/go-material-eval/pkg/spectrum"
	"github.com/df07/go-material-eval/pkg/texture"
)

// Measured reflects according to a tabulated, isotropic BRDF dataset
type Measured struct {
	Displacement texture.FloatTexture
	NormalMap    *texture.Image
	BRDF         *bxdf.MeasuredBRDF
}

// NewMeasured wraps a loaded BRDF dataset
func NewMeasured(brdf *bxdf.MeasuredBRDF) *Measured {
	core.CheckFatal(brdf != nil, "MeasuredMaterial needs a BRDF dataset")
	return &Measured{BRDF: brdf}
}

func (m *Measured) Kind() Kind   { return KindMeasured }
func (m *Measured) Name() string { return "MeasuredMaterial" }
func (m *Measured) sealed()      {}

// CanEvaluateTextures always succeeds, the material has no textures
func (m *Measured) CanEvaluateTextures(eval texture.TextureEvaluator) bool {
	return true
}

// GetBSDF fills out with the dataset resolved at the wavelengths of lambda
func (m *Measured) GetBSDF(eval texture.TextureEvaluator, ctx *MaterialEvalContext, lambda *spectrum.SampledWavelengths, out *bxdf.MeasuredBxDF) bxdf.BSDF {
	*out = bxdf.NewMeasuredBxDF(m.BRDF, lambda)
	return bxdf.NewBSDF(ctx.Ns, ctx.Dpdus, out)
}

func (m *Measured) HasSubsurfaceScattering() bool         { return false }
func (m *Measured) GetDisplacement() texture.FloatTexture { return m.Displacement }
func (m *Measured) GetNormalMap() *texture.Image          { return m.NormalMap }

func (m *Measured) String() string {
	return fmt.Sprintf("[ MeasuredMaterial brdf: %s ]", m.BRDF.Name)
}
