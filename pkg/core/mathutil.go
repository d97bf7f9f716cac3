package core

import "math"

// Commonly used constants
const (
	Pi      = math.Pi
	InvPi   = 1 / math.Pi
	Inv2Pi  = 1 / (2 * math.Pi)
	Inv4Pi  = 1 / (4 * math.Pi)
	PiOver2 = math.Pi / 2
	PiOver4 = math.Pi / 4
)

// Clamp restricts v to [lo, hi]
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Lerp linearly interpolates between a and b
func Lerp(t, a, b float64) float64 {
	return (1-t)*a + t*b
}

// Sqr returns v*v
func Sqr(v float64) float64 {
	return v * v
}

// SafeSqrt returns sqrt(max(0, v))
func SafeSqrt(v float64) float64 {
	return math.Sqrt(math.Max(0, v))
}

// SafeASin clamps its argument to [-1, 1] before calling asin
func SafeASin(v float64) float64 {
	return math.Asin(Clamp(v, -1, 1))
}

// SafeACos clamps its argument to [-1, 1] before calling acos
func SafeACos(v float64) float64 {
	return math.Acos(Clamp(v, -1, 1))
}

// Radians converts degrees to radians
func Radians(deg float64) float64 {
	return (math.Pi / 180) * deg
}

// FindInterval returns the largest index i in [0, size-2] such that pred(i) is true,
// assuming pred is true for a prefix of the indices.
func FindInterval(size int, pred func(int) bool) int {
	first, length := 1, size-2
	for length > 0 {
		half := length >> 1
		middle := first + half
		if pred(middle) {
			first = middle + 1
			length -= half + 1
		} else {
			length = half
		}
	}
	return int(Clamp(float64(first-1), 0, float64(size-2)))
}

// Spherical direction helpers for vectors expressed in a local shading frame.

// CosTheta returns the cosine of the polar angle of w
func CosTheta(w Vec3) float64 { return w.Z }

// AbsCosTheta returns |cos(theta)| of w
func AbsCosTheta(w Vec3) float64 { return math.Abs(w.Z) }

// Cos2Theta returns cos^2(theta) of w
func Cos2Theta(w Vec3) float64 { return w.Z * w.Z }

// Sin2Theta returns sin^2(theta) of w
func Sin2Theta(w Vec3) float64 { return math.Max(0, 1-Cos2Theta(w)) }

// SinTheta returns sin(theta) of w
func SinTheta(w Vec3) float64 { return math.Sqrt(Sin2Theta(w)) }

// TanTheta returns tan(theta) of w
func TanTheta(w Vec3) float64 { return SinTheta(w) / CosTheta(w) }

// Tan2Theta returns tan^2(theta) of w
func Tan2Theta(w Vec3) float64 { return Sin2Theta(w) / Cos2Theta(w) }

// CosPhi returns cos(phi) of w
func CosPhi(w Vec3) float64 {
	sinTheta := SinTheta(w)
	if sinTheta == 0 {
		return 1
	}
	return Clamp(w.X/sinTheta, -1, 1)
}

// SinPhi returns sin(phi) of w
func SinPhi(w Vec3) float64 {
	sinTheta := SinTheta(w)
	if sinTheta == 0 {
		return 0
	}
	return Clamp(w.Y/sinTheta, -1, 1)
}

// SameHemisphere reports whether two local directions are on the same side of the surface
func SameHemisphere(w, wp Vec3) bool {
	return w.Z*wp.Z > 0
}

// SphericalDirection builds a unit vector from sin/cos theta and phi
func SphericalDirection(sinTheta, cosTheta, phi float64) Vec3 {
	return NewVec3(Clamp(sinTheta, -1, 1)*math.Cos(phi), Clamp(sinTheta, -1, 1)*math.Sin(phi), Clamp(cosTheta, -1, 1))
}
