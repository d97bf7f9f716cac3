package bxdf

import (
	"math"

	"github.com/df07/go-material-eval/pkg/core"
)

// HGPhaseFunction is the Henyey-Greenstein phase function with asymmetry g
type HGPhaseFunction struct {
	g float64
}

// NewHGPhaseFunction creates a phase function
func NewHGPhaseFunction(g float64) HGPhaseFunction {
	return HGPhaseFunction{g: g}
}

// PhaseSample is a sampled scattering direction
type PhaseSample struct {
	P   float64
	Wi  core.Vec3
	PDF float64
}

// HenyeyGreenstein evaluates the phase function for the cosine between wo and wi
func HenyeyGreenstein(cosTheta, g float64) float64 {
	denom := 1 + core.Sqr(g) + 2*g*cosTheta
	return core.Inv4Pi * (1 - core.Sqr(g)) / (denom * core.SafeSqrt(denom))
}

// P evaluates the phase function
func (h HGPhaseFunction) P(wo, wi core.Vec3) float64 {
	return HenyeyGreenstein(wo.Dot(wi), h.g)
}

// SampleP samples an incident direction; the density equals the phase function value
func (h HGPhaseFunction) SampleP(wo core.Vec3, u core.Vec2) (PhaseSample, bool) {
	g := core.Clamp(h.g, -.99, .99)

	var cosTheta float64
	if math.Abs(g) < 1e-3 {
		cosTheta = 1 - 2*u.X
	} else {
		cosTheta = -1 / (2 * g) * (1 + core.Sqr(g) - core.Sqr((1-core.Sqr(g))/(1+g-2*g*u.X)))
	}

	sinTheta := core.SafeSqrt(1 - core.Sqr(cosTheta))
	phi := 2 * math.Pi * u.Y
	wi := core.FrameFromZ(wo).FromLocal(core.SphericalDirection(sinTheta, cosTheta, phi))

	pdf := HenyeyGreenstein(cosTheta, g)
	return PhaseSample{P: pdf, Wi: wi, PDF: pdf}, true
}

// PDF returns the sampling density
func (h HGPhaseFunction) PDF(wo, wi core.Vec3) float64 {
	return h.P(wo, wi)
}
