package core

import "math"

// ShadingGeometry holds the possibly perturbed frame used for shading
type ShadingGeometry struct {
	N          Vec3
	Dpdu, Dpdv Vec3
	Dndu, Dndv Vec3
}

// SurfaceInteraction is the intersection record handed to material evaluation.
// It carries the true geometry, the shading geometry and the screen-space
// differentials of the hit point.
type SurfaceInteraction struct {
	P         Vec3 // Point of intersection
	Wo        Vec3 // Outgoing direction (towards the viewer)
	N         Vec3 // Geometric normal
	UV        Vec2 // Surface parameterization
	Dpdu      Vec3
	Dpdv      Vec3
	Dndu      Vec3
	Dndv      Vec3
	Shading   ShadingGeometry
	FaceIndex int

	Dpdx, Dpdy             Vec3
	Dudx, Dvdx, Dudy, Dvdy float64
}

// NewSurfaceInteraction builds an interaction whose shading geometry matches the true geometry.
// The geometric normal is cross(dpdu, dpdv), flipped when flipNormal is set.
func NewSurfaceInteraction(p Vec3, uv Vec2, wo, dpdu, dpdv, dndu, dndv Vec3, flipNormal bool) SurfaceInteraction {
	n := dpdu.Cross(dpdv).Normalize()
	if flipNormal {
		n = n.Negate()
	}
	return SurfaceInteraction{
		P:    p,
		Wo:   wo.Normalize(),
		N:    n,
		UV:   uv,
		Dpdu: dpdu,
		Dpdv: dpdv,
		Dndu: dndu,
		Dndv: dndv,
		Shading: ShadingGeometry{
			N:    n,
			Dpdu: dpdu,
			Dpdv: dpdv,
			Dndu: dndu,
			Dndv: dndv,
		},
	}
}

// SetShadingGeometry replaces the shading frame. The geometric normal is flipped
// towards ns when orientationIsAuthoritative is set, otherwise ns is flipped towards n.
func (si *SurfaceInteraction) SetShadingGeometry(ns, dpdus, dpdvs, dndus, dndvs Vec3, orientationIsAuthoritative bool) {
	si.Shading.N = ns
	if orientationIsAuthoritative {
		si.N = FaceForward(si.N, si.Shading.N)
	} else {
		si.Shading.N = FaceForward(si.Shading.N, si.N)
	}
	si.Shading.Dpdu = dpdus
	si.Shading.Dpdv = dpdvs
	si.Shading.Dndu = dndus
	si.Shading.Dndv = dndvs
	// Guard against a degenerate tangent that would make the shading frame collapse
	for si.Shading.Dpdu.LengthSquared() > 1e16 || si.Shading.Dpdv.LengthSquared() > 1e16 {
		si.Shading.Dpdu = si.Shading.Dpdu.Multiply(1e-8)
		si.Shading.Dpdv = si.Shading.Dpdv.Multiply(1e-8)
	}
}

// ComputeDifferentials stores the screen-space position differentials and derives
// the UV differentials by least-squares projection onto dpdu and dpdv.
func (si *SurfaceInteraction) ComputeDifferentials(dpdx, dpdy Vec3) {
	si.Dpdx, si.Dpdy = dpdx, dpdy

	ata00 := si.Dpdu.Dot(si.Dpdu)
	ata01 := si.Dpdu.Dot(si.Dpdv)
	ata11 := si.Dpdv.Dot(si.Dpdv)
	invDet := 1 / (ata00*ata11 - ata01*ata01)
	if math.IsInf(invDet, 0) || math.IsNaN(invDet) {
		invDet = 0
	}

	atb0x, atb1x := si.Dpdu.Dot(dpdx), si.Dpdv.Dot(dpdx)
	atb0y, atb1y := si.Dpdu.Dot(dpdy), si.Dpdv.Dot(dpdy)

	si.Dudx = finiteOr((ata11*atb0x-ata01*atb1x)*invDet, 0)
	si.Dvdx = finiteOr((ata00*atb1x-ata01*atb0x)*invDet, 0)
	si.Dudy = finiteOr((ata11*atb0y-ata01*atb1y)*invDet, 0)
	si.Dvdy = finiteOr((ata00*atb1y-ata01*atb0y)*invDet, 0)

	si.Dudx = Clamp(si.Dudx, -1e8, 1e8)
	si.Dvdx = Clamp(si.Dvdx, -1e8, 1e8)
	si.Dudy = Clamp(si.Dudy, -1e8, 1e8)
	si.Dvdy = Clamp(si.Dvdy, -1e8, 1e8)
}

func finiteOr(v, fallback float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fallback
	}
	return v
}
