package geometry

import (
	"math"

	"github.com/df07/go-material-eval/pkg/core"
	"github.com/df07/go-material-eval/pkg/material"
)

// Quad represents a parallelogram defined by a corner and two edge vectors.
// UV coordinates run from 0 to 1 along U and V.
type Quad struct {
	Corner   core.Vec3 // One corner of the quad
	U        core.Vec3 // First edge vector
	V        core.Vec3 // Second edge vector
	Normal   core.Vec3 // Normal vector (computed from U × V)
	Material material.MaterialID
	D        float64   // Plane equation constant: ax + by + cz = d
	W        core.Vec3 // Cached cross product for barycentric coordinates
}

// NewQuad creates a new quad from a corner point and two edge vectors
func NewQuad(corner, u, v core.Vec3, mat material.MaterialID) *Quad {
	cross := u.Cross(v)
	normal := cross.Normalize()

	return &Quad{
		Corner:   corner,
		U:        u,
		V:        v,
		Normal:   normal,
		Material: mat,
		D:        normal.Dot(corner),
		W:        normal.Multiply(1.0 / normal.Dot(cross)),
	}
}

// MaterialID returns the material bound to the quad
func (q *Quad) MaterialID() material.MaterialID { return q.Material }

// BoundingBox returns the axis-aligned bounding box of the four corners
func (q *Quad) BoundingBox() core.AABB {
	return core.NewAABBFromPoints(
		q.Corner,
		q.Corner.Add(q.U),
		q.Corner.Add(q.V),
		q.Corner.Add(q.U).Add(q.V),
	).Expand(1e-4)
}

// Hit tests if a ray intersects with the quad
func (q *Quad) Hit(ray core.Ray, tMin, tMax float64) (*Intersection, bool) {
	denominator := ray.Direction.Dot(q.Normal)

	// Ray is parallel to the quad
	if math.Abs(denominator) < 1e-8 {
		return nil, false
	}

	t := (q.D - ray.Origin.Dot(q.Normal)) / denominator
	if t < tMin || t > tMax {
		return nil, false
	}

	hitVector := ray.At(t).Subtract(q.Corner)
	alpha := q.W.Dot(hitVector.Cross(q.V))
	beta := q.W.Dot(q.U.Cross(hitVector))
	if alpha < 0 || alpha > 1 || beta < 0 || beta > 1 {
		return nil, false
	}

	return &Intersection{
		T:           t,
		Interaction: q.InteractionAt(core.NewVec2(alpha, beta), ray.Direction.Negate()),
		Material:    q.Material,
	}, true
}

// InteractionAt evaluates the quad at parametric coordinates (u, v)
func (q *Quad) InteractionAt(uv core.Vec2, wo core.Vec3) core.SurfaceInteraction {
	p := q.Corner.Add(q.U.Multiply(uv.X)).Add(q.V.Multiply(uv.Y))
	return core.NewSurfaceInteraction(p, uv, wo, q.U, q.V, core.Vec3{}, core.Vec3{}, false)
}
