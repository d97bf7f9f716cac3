package spectrum

import (
	"fmt"
	"math"
)

// Visible range bounds in nanometers
const (
	LambdaMin = 360.0
	LambdaMax = 830.0
)

// SampledWavelengths is the set of wavelengths carried by one light path.
// Index 0 is the hero wavelength. Materials with wavelength-dependent
// refraction may terminate the others in place.
type SampledWavelengths struct {
	lambda [NSamples]float64
	pdf    [NSamples]float64
}

// NewSampledWavelengths builds a set from explicit wavelengths and densities
func NewSampledWavelengths(lambda, pdf [NSamples]float64) SampledWavelengths {
	return SampledWavelengths{lambda: lambda, pdf: pdf}
}

// SampleUniformWavelengths stratifies NSamples wavelengths uniformly over [lambdaMin, lambdaMax]
func SampleUniformWavelengths(u, lambdaMin, lambdaMax float64) SampledWavelengths {
	var swl SampledWavelengths
	swl.lambda[0] = lerp(u, lambdaMin, lambdaMax)
	delta := (lambdaMax - lambdaMin) / NSamples
	for i := 1; i < NSamples; i++ {
		swl.lambda[i] = swl.lambda[i-1] + delta
		if swl.lambda[i] > lambdaMax {
			swl.lambda[i] = lambdaMin + (swl.lambda[i] - lambdaMax)
		}
	}
	for i := range swl.pdf {
		swl.pdf[i] = 1 / (lambdaMax - lambdaMin)
	}
	return swl
}

// SampleVisibleWavelengths importance samples wavelengths according to the
// visual response, with stratified offsets of 1/NSamples.
func SampleVisibleWavelengths(u float64) SampledWavelengths {
	var swl SampledWavelengths
	for i := 0; i < NSamples; i++ {
		up := u + float64(i)/NSamples
		if up >= 1 {
			up -= 1
		}
		swl.lambda[i] = sampleVisibleWavelength(up)
		swl.pdf[i] = VisibleWavelengthsPDF(swl.lambda[i])
	}
	return swl
}

// VisibleWavelengthsPDF is the density used by SampleVisibleWavelengths
func VisibleWavelengthsPDF(lambda float64) float64 {
	if lambda < LambdaMin || lambda > LambdaMax {
		return 0
	}
	c := math.Cosh(0.0072 * (lambda - 538))
	return 0.0039398042 / (c * c)
}

func sampleVisibleWavelength(u float64) float64 {
	return 538 - 138.888889*math.Atanh(0.85691062-1.82750197*u)
}

// Lambda returns the i'th wavelength
func (swl *SampledWavelengths) Lambda(i int) float64 {
	return swl.lambda[i]
}

// PDF returns the per-wavelength sampling densities
func (swl *SampledWavelengths) PDF() SampledSpectrum {
	return SampledSpectrum(swl.pdf)
}

// TerminateSecondary drops every wavelength but the hero one. The hero PDF is
// divided by NSamples so that estimates stay unbiased.
func (swl *SampledWavelengths) TerminateSecondary() {
	if swl.SecondaryTerminated() {
		return
	}
	for i := 1; i < NSamples; i++ {
		swl.pdf[i] = 0
	}
	swl.pdf[0] /= NSamples
}

// SecondaryTerminated reports whether only the hero wavelength is still active
func (swl *SampledWavelengths) SecondaryTerminated() bool {
	for i := 1; i < NSamples; i++ {
		if swl.pdf[i] != 0 {
			return false
		}
	}
	return true
}

func (swl SampledWavelengths) String() string {
	return fmt.Sprintf("[ lambda: %v pdf: %v ]", swl.lambda, swl.pdf)
}

func lerp(t, a, b float64) float64 {
	return (1-t)*a + t*b
}
