package texture

import (
	"github.com/df07/go-material-eval/pkg/core"
)

// TextureEvalContext is everything a texture may look at when it is evaluated
type TextureEvalContext struct {
	P          core.Vec3
	Dpdx, Dpdy core.Vec3
	N          core.Vec3
	UV         core.Vec2

	Dudx, Dudy, Dvdx, Dvdy float64
	FaceIndex              int
}

// NewTextureEvalContext projects a surface interaction onto a texture context
func NewTextureEvalContext(si *core.SurfaceInteraction) TextureEvalContext {
	return TextureEvalContext{
		P:         si.P,
		Dpdx:      si.Dpdx,
		Dpdy:      si.Dpdy,
		N:         si.N,
		UV:        si.UV,
		Dudx:      si.Dudx,
		Dudy:      si.Dudy,
		Dvdx:      si.Dvdx,
		Dvdy:      si.Dvdy,
		FaceIndex: si.FaceIndex,
	}
}
