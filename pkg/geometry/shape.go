package geometry

import (
	"github.com/df07/go-material-eval/pkg/core"
	"github.com/df07/go-material-eval/pkg/material"
)

// Intersection is a ray hit: the distance along the ray, the surface record
// handed to material evaluation and the material bound to the shape.
type Intersection struct {
	T           float64
	Interaction core.SurfaceInteraction
	Material    material.MaterialID
}

// Shape interface for parametric surfaces that can be hit by rays
type Shape interface {
	Hit(ray core.Ray, tMin, tMax float64) (*Intersection, bool)
	// InteractionAt evaluates the surface at parametric coordinates (u, v)
	// as seen from direction wo.
	InteractionAt(uv core.Vec2, wo core.Vec3) core.SurfaceInteraction
	MaterialID() material.MaterialID
	BoundingBox() core.AABB
}

// HitDifferential intersects rd with shape and, when rd carries differentials,
// fills in the screen-space derivatives of the hit point.
func HitDifferential(shape Shape, rd core.RayDifferential, tMin, tMax float64) (*Intersection, bool) {
	isect, ok := shape.Hit(rd.Ray, tMin, tMax)
	if !ok {
		return nil, false
	}
	if rd.HasDifferentials {
		ApplyRayDifferentials(&isect.Interaction, rd)
	}
	return isect, true
}

// ApplyRayDifferentials intersects the offset rays of rd with the tangent plane
// at si and derives dp/dx, dp/dy and the UV derivatives from the result.
func ApplyRayDifferentials(si *core.SurfaceInteraction, rd core.RayDifferential) {
	n := si.N
	d := -n.Dot(si.P)
	tx := (-n.Dot(rd.RxOrigin) - d) / n.Dot(rd.RxDirection)
	ty := (-n.Dot(rd.RyOrigin) - d) / n.Dot(rd.RyDirection)
	if !finite(tx) || !finite(ty) {
		si.ComputeDifferentials(core.Vec3{}, core.Vec3{})
		return
	}
	px := rd.RxOrigin.Add(rd.RxDirection.Multiply(tx))
	py := rd.RyOrigin.Add(rd.RyDirection.Multiply(ty))
	si.ComputeDifferentials(px.Subtract(si.P), py.Subtract(si.P))
}
