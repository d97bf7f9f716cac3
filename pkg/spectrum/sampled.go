package spectrum

import (
	"fmt"
	"math"
)

// NSamples is the number of wavelengths carried by each light path
const NSamples = 4

// SampledSpectrum holds spectral values at the wavelengths of a SampledWavelengths
type SampledSpectrum [NSamples]float64

// NewSampledSpectrum returns a spectrum with every sample set to c
func NewSampledSpectrum(c float64) SampledSpectrum {
	var s SampledSpectrum
	for i := range s {
		s[i] = c
	}
	return s
}

// Add returns s + o
func (s SampledSpectrum) Add(o SampledSpectrum) SampledSpectrum {
	for i := range s {
		s[i] += o[i]
	}
	return s
}

// Subtract returns s - o
func (s SampledSpectrum) Subtract(o SampledSpectrum) SampledSpectrum {
	for i := range s {
		s[i] -= o[i]
	}
	return s
}

// MultiplyVec returns the component-wise product of s and o
func (s SampledSpectrum) MultiplyVec(o SampledSpectrum) SampledSpectrum {
	for i := range s {
		s[i] *= o[i]
	}
	return s
}

// Multiply scales every sample by a
func (s SampledSpectrum) Multiply(a float64) SampledSpectrum {
	for i := range s {
		s[i] *= a
	}
	return s
}

// DivideVec returns s / o, with 0 wherever o is 0
func (s SampledSpectrum) DivideVec(o SampledSpectrum) SampledSpectrum {
	for i := range s {
		if o[i] != 0 {
			s[i] /= o[i]
		} else {
			s[i] = 0
		}
	}
	return s
}

// Map applies f to every sample
func (s SampledSpectrum) Map(f func(float64) float64) SampledSpectrum {
	for i := range s {
		s[i] = f(s[i])
	}
	return s
}

// Sqrt returns the component-wise square root
func (s SampledSpectrum) Sqrt() SampledSpectrum {
	return s.Map(math.Sqrt)
}

// Exp returns the component-wise exponential
func (s SampledSpectrum) Exp() SampledSpectrum {
	return s.Map(math.Exp)
}

// ClampZero clamps negative samples to zero
func (s SampledSpectrum) ClampZero() SampledSpectrum {
	return s.Map(func(v float64) float64 { return math.Max(0, v) })
}

// Clamp restricts every sample to [lo, hi]
func (s SampledSpectrum) Clamp(lo, hi float64) SampledSpectrum {
	return s.Map(func(v float64) float64 { return math.Max(lo, math.Min(hi, v)) })
}

// MaxComponent returns the largest sample
func (s SampledSpectrum) MaxComponent() float64 {
	m := s[0]
	for _, v := range s[1:] {
		m = math.Max(m, v)
	}
	return m
}

// MinComponent returns the smallest sample
func (s SampledSpectrum) MinComponent() float64 {
	m := s[0]
	for _, v := range s[1:] {
		m = math.Min(m, v)
	}
	return m
}

// Average returns the mean of the samples
func (s SampledSpectrum) Average() float64 {
	sum := 0.0
	for _, v := range s {
		sum += v
	}
	return sum / NSamples
}

// IsZero reports whether every sample is zero
func (s SampledSpectrum) IsZero() bool {
	for _, v := range s {
		if v != 0 {
			return false
		}
	}
	return true
}

func (s SampledSpectrum) String() string {
	return fmt.Sprintf("[ %g, %g, %g, %g ]", s[0], s[1], s[2], s[3])
}
