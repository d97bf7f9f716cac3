package material

import (
	"fmt"

	"github.com/df07/go-material-eval/pkg/bxdf"
	"github.com/df07/go-material-eval/pkg/core"
	"github.com/df07/go-material-eval/pkg/spectrum"
	"github.com/df07/go-material-eval/pkg/texture"
)

// Mix picks one of two materials at each shading point. The choice is a hash of
// the point and the outgoing direction, so it never changes between samples.
// A Mix has no BSDF of its own; callers resolve it with ChooseMaterial.
type Mix struct {
	Amount    texture.FloatTexture // 0 selects Materials[0], 1 selects Materials[1]
	Materials [2]MaterialID
}

// NewMix creates a mix of two materials already stored in a Table.
// A missing amount reads as 0.5.
func NewMix(amount texture.FloatTexture, m0, m1 MaterialID) *Mix {
	return &Mix{
		Amount:    floatOrConstant(amount, 0.5),
		Materials: [2]MaterialID{m0, m1},
	}
}

func (m *Mix) Kind() Kind   { return KindMix }
func (m *Mix) Name() string { return "MixMaterial" }
func (m *Mix) sealed()      {}

// GetMaterial returns the identifier of child i
func (m *Mix) GetMaterial(i int) MaterialID {
	return m.Materials[i]
}

// CanEvaluateTextures checks the amount texture
func (m *Mix) CanEvaluateTextures(eval texture.TextureEvaluator) bool {
	return eval.CanEvaluate([]texture.FloatTexture{m.Amount}, nil)
}

// ChooseMaterial returns the child selected at ctx. Amounts at or beyond the
// ends of [0,1] select a child outright; anything between is compared against
// a hash of the position, the outgoing direction and both children.
func (m *Mix) ChooseMaterial(eval texture.TextureEvaluator, ctx *MaterialEvalContext) MaterialID {
	amt := eval.EvaluateFloat(m.Amount, ctx.TextureEvalContext)
	if amt <= 0 {
		return m.Materials[0]
	}
	if amt >= 1 {
		return m.Materials[1]
	}
	u := core.HashFloat([]core.Vec3{ctx.P, ctx.Wo}, uint64(m.Materials[0]), uint64(m.Materials[1]))
	if amt < u {
		return m.Materials[0]
	}
	return m.Materials[1]
}

// GetBSDF must not be called on a mix
func (m *Mix) GetBSDF(eval texture.TextureEvaluator, ctx *MaterialEvalContext, lambda *spectrum.SampledWavelengths) bxdf.BSDF {
	core.Fatalf("MixMaterial.GetBSDF called; resolve the mix with ChooseMaterial first")
	return bxdf.BSDF{}
}

// GetBSSRDF must not be called on a mix
func (m *Mix) GetBSSRDF(eval texture.TextureEvaluator, ctx *MaterialEvalContext, lambda *spectrum.SampledWavelengths) {
	core.Fatalf("MixMaterial.GetBSSRDF called; resolve the mix with ChooseMaterial first")
}

// GetDisplacement must not be called on a mix
func (m *Mix) GetDisplacement() texture.FloatTexture {
	core.Fatalf("MixMaterial.GetDisplacement called; resolve the mix with ChooseMaterial first")
	return nil
}

// GetNormalMap must not be called on a mix
func (m *Mix) GetNormalMap() *texture.Image {
	core.Fatalf("MixMaterial.GetNormalMap called; resolve the mix with ChooseMaterial first")
	return nil
}

func (m *Mix) HasSubsurfaceScattering() bool { return false }

func (m *Mix) String() string {
	return fmt.Sprintf("[ MixMaterial amount: %v materials: [ %d %d ] ]", m.Amount, m.Materials[0], m.Materials[1])
}
