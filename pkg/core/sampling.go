package core

import (
	"math"
	"math/rand"
)

// Sampler provides random sampling for rendering algorithms
// Can be swapped out for deterministic testing or different sampling patterns
type Sampler interface {
	Get1D() float64
	Get2D() Vec2
}

// RandomSampler wraps a standard Go random generator
type RandomSampler struct {
	random *rand.Rand
}

// NewRandomSampler creates a sampler from a Go random generator
func NewRandomSampler(random *rand.Rand) *RandomSampler {
	return &RandomSampler{random: random}
}

// Get1D returns a random float64 in [0, 1)
func (r *RandomSampler) Get1D() float64 {
	return r.random.Float64()
}

// Get2D returns two random float64 values in [0, 1)
func (r *RandomSampler) Get2D() Vec2 {
	return NewVec2(r.random.Float64(), r.random.Float64())
}

// OneMinusEpsilon is the largest float64 below 1
const OneMinusEpsilon = 0x1.fffffffffffffp-1

// SampleUniformDiskConcentric maps a square sample to the unit disk using concentric mapping
// This avoids rejection sampling by mapping a square uniformly to a disk
func SampleUniformDiskConcentric(u Vec2) Vec2 {
	uOffset := NewVec2(2*u.X-1, 2*u.Y-1)
	if uOffset.X == 0 && uOffset.Y == 0 {
		return NewVec2(0, 0)
	}

	var theta, r float64
	if math.Abs(uOffset.X) > math.Abs(uOffset.Y) {
		r = uOffset.X
		theta = PiOver4 * (uOffset.Y / uOffset.X)
	} else {
		r = uOffset.Y
		theta = PiOver2 - PiOver4*(uOffset.X/uOffset.Y)
	}
	return NewVec2(r*math.Cos(theta), r*math.Sin(theta))
}

// SampleCosineHemisphere returns a cosine-distributed direction about +Z
func SampleCosineHemisphere(u Vec2) Vec3 {
	d := SampleUniformDiskConcentric(u)
	z := SafeSqrt(1 - d.X*d.X - d.Y*d.Y)
	return NewVec3(d.X, d.Y, z)
}

// CosineHemispherePDF is the density of SampleCosineHemisphere
func CosineHemispherePDF(cosTheta float64) float64 {
	return cosTheta * InvPi
}

// SampleUniformSphere generates a uniform direction on the unit sphere
func SampleUniformSphere(u Vec2) Vec3 {
	z := 1 - 2*u.X
	r := SafeSqrt(1 - z*z)
	phi := 2 * math.Pi * u.Y
	return NewVec3(r*math.Cos(phi), r*math.Sin(phi), z)
}

// UniformSpherePDF is the density of SampleUniformSphere
const UniformSpherePDF = Inv4Pi

// SampleExponential samples x ~ a*exp(-a*x)
func SampleExponential(u, a float64) float64 {
	return -math.Log(1-u) / a
}

// SampleDiscrete2 picks between two outcomes with weights w0 and w1 and
// returns the chosen index, its probability and the remapped sample.
func SampleDiscrete2(w0, w1, u float64) (int, float64, float64) {
	sum := w0 + w1
	if sum == 0 {
		return -1, 0, u
	}
	p0 := w0 / sum
	if u < p0 {
		return 0, p0, math.Min(u/p0, OneMinusEpsilon)
	}
	return 1, 1 - p0, math.Min((u-p0)/(1-p0), OneMinusEpsilon)
}
