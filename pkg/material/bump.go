package material

import (
	"math"

	"github.com/df07/go-material-eval/pkg/core"
	"github.com/df07/go-material-eval/pkg/texture"
)

// bumpEpsilon replaces a UV offset whose screen-space differentials are both zero
const bumpEpsilon = 0.0005

// Bump perturbs the shading tangents of ctx using either a displacement texture or
// a tangent-space normal map. Exactly one of displacement and normalMap must be set.
func Bump(eval texture.TextureEvaluator, displacement texture.FloatTexture, normalMap *texture.Image, ctx *BumpEvalContext) (dpdu, dpdv core.Vec3) {
	core.DCheck(displacement != nil || normalMap != nil, "bump called without displacement or normal map")
	core.DCheck(displacement == nil || normalMap == nil, "bump called with both displacement and normal map")
	if displacement != nil {
		return BumpMap(eval, displacement, ctx)
	}
	return NormalMap(normalMap, ctx)
}

// BumpMap computes tangents of the displaced surface p + h(u,v)*n by forward differences of h
func BumpMap(eval texture.TextureEvaluator, displacement texture.FloatTexture, ctx *BumpEvalContext) (dpdu, dpdv core.Vec3) {
	core.DCheck(eval.CanEvaluate([]texture.FloatTexture{displacement}, nil), "evaluator cannot handle displacement %T", displacement)

	base := ctx.TextureEvalContext()
	shifted := base

	du := 0.5 * (math.Abs(ctx.Dudx) + math.Abs(ctx.Dudy))
	if du == 0 {
		du = bumpEpsilon
	}
	shifted.P = ctx.P.Add(ctx.Shading.Dpdu.Multiply(du))
	shifted.UV = ctx.UV.Add(core.NewVec2(du, 0))
	uDisplace := eval.EvaluateFloat(displacement, shifted)

	dv := 0.5 * (math.Abs(ctx.Dvdx) + math.Abs(ctx.Dvdy))
	if dv == 0 {
		dv = bumpEpsilon
	}
	shifted.P = ctx.P.Add(ctx.Shading.Dpdv.Multiply(dv))
	shifted.UV = ctx.UV.Add(core.NewVec2(0, dv))
	vDisplace := eval.EvaluateFloat(displacement, shifted)

	displace := eval.EvaluateFloat(displacement, base)

	n := ctx.Shading.N
	dpdu = ctx.Shading.Dpdu.
		Add(n.Multiply((uDisplace - displace) / du)).
		Add(ctx.Shading.Dndu.Multiply(displace))
	dpdv = ctx.Shading.Dpdv.
		Add(n.Multiply((vDisplace - displace) / dv)).
		Add(ctx.Shading.Dndv.Multiply(displace))
	return dpdu, dpdv
}

// NormalMap reads a tangent-space normal from the image and rebuilds tangents around it.
// The new dpdu keeps the length of the original one, as does dpdv.
func NormalMap(normalMap *texture.Image, ctx *BumpEvalContext) (dpdu, dpdv core.Vec3) {
	st := core.NewVec2(ctx.UV.X, 1-ctx.UV.Y)
	ns := core.NewVec3(
		2*normalMap.BilerpChannel(st, 0, texture.WrapRepeat)-1,
		2*normalMap.BilerpChannel(st, 1, texture.WrapRepeat)-1,
		2*normalMap.BilerpChannel(st, 2, texture.WrapRepeat)-1,
	).Normalize()
	ns = core.FrameFromZ(ctx.Shading.N).FromLocal(ns)

	ulen, vlen := ctx.Shading.Dpdu.Length(), ctx.Shading.Dpdv.Length()
	dpdu = core.GramSchmidt(ctx.Shading.Dpdu, ns).Normalize().Multiply(ulen)
	dpdv = ns.Cross(dpdu).Normalize().Multiply(vlen)
	return dpdu, dpdv
}
