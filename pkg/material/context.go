package material

import (
	"fmt"

	"github.com/df07/go-material-eval/pkg/core"
	"github.com/df07/go-material-eval/pkg/texture"
)

// MaterialEvalContext is the shading point a material sees when it builds its BSDF.
// It extends the texture context with the outgoing direction and the shading frame.
type MaterialEvalContext struct {
	texture.TextureEvalContext
	Wo    core.Vec3 // Outgoing direction
	Ns    core.Vec3 // Shading normal
	Dpdus core.Vec3 // Shading tangent
}

// NewMaterialEvalContext snapshots the parts of si that materials depend on
func NewMaterialEvalContext(si *core.SurfaceInteraction) MaterialEvalContext {
	return MaterialEvalContext{
		TextureEvalContext: texture.NewTextureEvalContext(si),
		Wo:                 si.Wo,
		Ns:                 si.Shading.N,
		Dpdus:              si.Shading.Dpdu,
	}
}

func (ctx MaterialEvalContext) String() string {
	return fmt.Sprintf("[ MaterialEvalContext p: %v uv: %v wo: %v n: %v ns: %v dpdus: %v ]",
		ctx.P, ctx.UV, ctx.Wo, ctx.N, ctx.Ns, ctx.Dpdus)
}

// BumpEvalContext carries what bump and normal mapping need to perturb the shading frame
type BumpEvalContext struct {
	P       core.Vec3
	UV      core.Vec2
	Shading core.ShadingGeometry

	Dudx, Dudy, Dvdx, Dvdy float64
	Dpdx, Dpdy             core.Vec3
	FaceIndex              int
}

// NewBumpEvalContext snapshots the shading geometry and differentials of si
func NewBumpEvalContext(si *core.SurfaceInteraction) BumpEvalContext {
	return BumpEvalContext{
		P:         si.P,
		UV:        si.UV,
		Shading:   si.Shading,
		Dudx:      si.Dudx,
		Dudy:      si.Dudy,
		Dvdx:      si.Dvdx,
		Dvdy:      si.Dvdy,
		Dpdx:      si.Dpdx,
		Dpdy:      si.Dpdy,
		FaceIndex: si.FaceIndex,
	}
}

// TextureEvalContext drops the shading derivatives. The normal is the unperturbed shading normal.
func (ctx *BumpEvalContext) TextureEvalContext() texture.TextureEvalContext {
	return texture.TextureEvalContext{
		P:         ctx.P,
		Dpdx:      ctx.Dpdx,
		Dpdy:      ctx.Dpdy,
		N:         ctx.Shading.N,
		UV:        ctx.UV,
		Dudx:      ctx.Dudx,
		Dudy:      ctx.Dudy,
		Dvdx:      ctx.Dvdx,
		Dvdy:      ctx.Dvdy,
		FaceIndex: ctx.FaceIndex,
	}
}

func (ctx BumpEvalContext) String() string {
	return fmt.Sprintf("[ BumpEvalContext p: %v uv: %v ns: %v dpdu: %v dpdv: %v du: (%g, %g) dv: (%g, %g) ]",
		ctx.P, ctx.UV, ctx.Shading.N, ctx.Shading.Dpdu, ctx.Shading.Dpdv,
		ctx.Dudx, ctx.Dudy, ctx.Dvdx, ctx.Dvdy)
}
