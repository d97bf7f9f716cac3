package geometry

import (
	"math"

	"github.com/df07/go-material-eval/pkg/core"
	"github.com/df07/go-material-eval/pkg/material"
)

// Sphere is a full sphere parameterized by azimuth u and polar angle v,
// with v = 0 at the bottom pole and v = 1 at the top
type Sphere struct {
	Center   core.Vec3
	Radius   float64
	Material material.MaterialID
}

// NewSphere creates a new sphere
func NewSphere(center core.Vec3, radius float64, mat material.MaterialID) *Sphere {
	return &Sphere{
		Center:   center,
		Radius:   radius,
		Material: mat,
	}
}

// MaterialID returns the material bound to the sphere
func (s *Sphere) MaterialID() material.MaterialID { return s.Material }

// BoundingBox returns the axis-aligned bounding box for this sphere
func (s *Sphere) BoundingBox() core.AABB {
	r := math.Abs(s.Radius)
	radiusVec := core.NewVec3(r, r, r)
	return core.NewAABB(s.Center.Subtract(radiusVec), s.Center.Add(radiusVec))
}

// Hit tests if a ray intersects with the sphere
func (s *Sphere) Hit(ray core.Ray, tMin, tMax float64) (*Intersection, bool) {
	// Vector from ray origin to sphere center
	oc := ray.Origin.Subtract(s.Center)

	// Quadratic equation coefficients: at² + bt + c = 0
	a := ray.Direction.Dot(ray.Direction)
	halfB := oc.Dot(ray.Direction)
	c := oc.Dot(oc) - s.Radius*s.Radius

	discriminant := halfB*halfB - a*c
	if discriminant < 0 {
		return nil, false
	}
	sqrtD := math.Sqrt(discriminant)

	// Try the closer intersection point first
	root := (-halfB - sqrtD) / a
	if root < tMin || root > tMax {
		root = (-halfB + sqrtD) / a
		if root < tMin || root > tMax {
			return nil, false
		}
	}

	pObj := ray.At(root).Subtract(s.Center)
	// Refine the hit point onto the surface
	pObj = pObj.Multiply(s.Radius / pObj.Length())

	return &Intersection{
		T:           root,
		Interaction: s.interaction(pObj, ray.Direction.Negate()),
		Material:    s.Material,
	}, true
}

// InteractionAt evaluates the sphere at parametric coordinates (u, v)
func (s *Sphere) InteractionAt(uv core.Vec2, wo core.Vec3) core.SurfaceInteraction {
	phi := uv.X * 2 * math.Pi
	theta := math.Pi * (1 - uv.Y)
	pObj := core.SphericalDirection(math.Sin(theta), math.Cos(theta), phi).Multiply(s.Radius)
	return s.interaction(pObj, wo)
}

// interaction builds the differential geometry at pObj, a point relative to the center
func (s *Sphere) interaction(pObj, wo core.Vec3) core.SurfaceInteraction {
	r := s.Radius
	if pObj.X == 0 && pObj.Y == 0 {
		pObj.X = 1e-5 * r
	}
	phi := math.Atan2(pObj.Y, pObj.X)
	if phi < 0 {
		phi += 2 * math.Pi
	}
	cosTheta := core.Clamp(pObj.Z/r, -1, 1)
	theta := core.SafeACos(cosTheta)

	const phiMax = 2 * math.Pi
	const thetaZMin, thetaZMax = math.Pi, 0.0
	u := phi / phiMax
	v := (theta - thetaZMin) / (thetaZMax - thetaZMin)

	zRadius := math.Sqrt(pObj.X*pObj.X + pObj.Y*pObj.Y)
	cosPhi, sinPhi := pObj.X/zRadius, pObj.Y/zRadius
	sinTheta := core.SafeSqrt(1 - cosTheta*cosTheta)

	dpdu := core.NewVec3(-phiMax*pObj.Y, phiMax*pObj.X, 0)
	dpdv := core.NewVec3(pObj.Z*cosPhi, pObj.Z*sinPhi, -r*sinTheta).Multiply(thetaZMax - thetaZMin)

	// Weingarten equations for the normal derivatives
	d2Pduu := core.NewVec3(pObj.X, pObj.Y, 0).Multiply(-phiMax * phiMax)
	d2Pduv := core.NewVec3(-sinPhi, cosPhi, 0).Multiply((thetaZMax - thetaZMin) * pObj.Z * phiMax)
	d2Pdvv := pObj.Multiply(-(thetaZMax - thetaZMin) * (thetaZMax - thetaZMin))
	dndu, dndv := weingarten(dpdu, dpdv, d2Pduu, d2Pduv, d2Pdvv)

	return core.NewSurfaceInteraction(s.Center.Add(pObj), core.NewVec2(u, v), wo, dpdu, dpdv, dndu, dndv, false)
}

// weingarten computes dn/du and dn/dv from the first and second fundamental forms
func weingarten(dpdu, dpdv, d2Pduu, d2Pduv, d2Pdvv core.Vec3) (dndu, dndv core.Vec3) {
	e1 := dpdu.Dot(dpdu)
	f1 := dpdu.Dot(dpdv)
	g1 := dpdv.Dot(dpdv)
	n := dpdu.Cross(dpdv).Normalize()
	e := n.Dot(d2Pduu)
	f := n.Dot(d2Pduv)
	g := n.Dot(d2Pdvv)

	egf2 := e1*g1 - f1*f1
	invEGF2 := 0.0
	if egf2 != 0 {
		invEGF2 = 1 / egf2
	}
	dndu = dpdu.Multiply((f*f1 - e*g1) * invEGF2).Add(dpdv.Multiply((e*f1 - f*e1) * invEGF2))
	dndv = dpdu.Multiply((g*f1 - f*g1) * invEGF2).Add(dpdv.Multiply((f*f1 - g*e1) * invEGF2))
	return dndu, dndv
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
