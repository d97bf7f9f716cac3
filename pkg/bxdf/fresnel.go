package bxdf

import (
	"math"
	"math/cmplx"

	"github.com/df07/go-material-eval/pkg/core"
	"github.com/df07/go-material-eval/pkg/spectrum"
)

// Reflect mirrors wo about n
func Reflect(wo, n core.Vec3) core.Vec3 {
	return wo.Negate().Add(n.Multiply(2 * wo.Dot(n)))
}

// Refract computes the transmitted direction for wi entering a medium with
// relative index eta across normal n. It returns the relative index actually
// used (inverted when wi is below the surface) and false on total internal reflection.
func Refract(wi, n core.Vec3, eta float64) (core.Vec3, float64, bool) {
	cosThetaI := n.Dot(wi)
	if cosThetaI < 0 {
		eta = 1 / eta
		cosThetaI = -cosThetaI
		n = n.Negate()
	}

	sin2ThetaI := math.Max(0, 1-core.Sqr(cosThetaI))
	sin2ThetaT := sin2ThetaI / core.Sqr(eta)
	if sin2ThetaT >= 1 {
		return core.Vec3{}, 0, false
	}
	cosThetaT := core.SafeSqrt(1 - sin2ThetaT)

	wt := wi.Negate().Multiply(1 / eta).Add(n.Multiply(cosThetaI/eta - cosThetaT))
	return wt, eta, true
}

// FrDielectric is the unpolarized Fresnel reflectance of a dielectric interface
func FrDielectric(cosThetaI, eta float64) float64 {
	cosThetaI = core.Clamp(cosThetaI, -1, 1)
	if cosThetaI < 0 {
		eta = 1 / eta
		cosThetaI = -cosThetaI
	}

	sin2ThetaI := 1 - core.Sqr(cosThetaI)
	sin2ThetaT := sin2ThetaI / core.Sqr(eta)
	if sin2ThetaT >= 1 {
		return 1
	}
	cosThetaT := core.SafeSqrt(1 - sin2ThetaT)

	rParl := (eta*cosThetaI - cosThetaT) / (eta*cosThetaI + cosThetaT)
	rPerp := (cosThetaI - eta*cosThetaT) / (cosThetaI + eta*cosThetaT)
	return (core.Sqr(rParl) + core.Sqr(rPerp)) / 2
}

// FrComplex is the Fresnel reflectance of a conductor with complex index eta
func FrComplex(cosThetaI float64, eta complex128) float64 {
	cosThetaI = core.Clamp(cosThetaI, 0, 1)
	sin2ThetaI := complex(1-cosThetaI*cosThetaI, 0)
	sin2ThetaT := sin2ThetaI / (eta * eta)
	cosThetaT := cmplx.Sqrt(1 - sin2ThetaT)
	ci := complex(cosThetaI, 0)

	rParl := (eta*ci - cosThetaT) / (eta*ci + cosThetaT)
	rPerp := (ci - eta*cosThetaT) / (ci + eta*cosThetaT)
	return (norm(rParl) + norm(rPerp)) / 2
}

// FrComplexSpectrum evaluates FrComplex per wavelength
func FrComplexSpectrum(cosThetaI float64, eta, k spectrum.SampledSpectrum) spectrum.SampledSpectrum {
	var result spectrum.SampledSpectrum
	for i := range result {
		result[i] = FrComplex(cosThetaI, complex(eta[i], k[i]))
	}
	return result
}

func norm(z complex128) float64 {
	return real(z)*real(z) + imag(z)*imag(z)
}

// PowerHeuristic is the beta=2 multiple importance sampling weight
func PowerHeuristic(nf int, fPDF float64, ng int, gPDF float64) float64 {
	f, g := float64(nf)*fPDF, float64(ng)*gPDF
	if math.IsInf(f*f, 1) {
		return 1
	}
	if f == 0 && g == 0 {
		return 0
	}
	return (f * f) / (f*f + g*g)
}
