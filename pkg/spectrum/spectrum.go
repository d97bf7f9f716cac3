package spectrum

import (
	"fmt"
	"math"
	"sort"
)

// Spectrum is a function of wavelength in nanometers
type Spectrum interface {
	Evaluate(lambda float64) float64
	MaxValue() float64
}

// Sample evaluates s at every wavelength in lambda
func Sample(s Spectrum, lambda *SampledWavelengths) SampledSpectrum {
	var out SampledSpectrum
	for i := range out {
		out[i] = s.Evaluate(lambda.Lambda(i))
	}
	return out
}

// IsConstant reports whether s is known to be wavelength-independent
func IsConstant(s Spectrum) bool {
	_, ok := s.(*ConstantSpectrum)
	return ok
}

// ConstantSpectrum has the same value at every wavelength
type ConstantSpectrum struct {
	C float64
}

// NewConstantSpectrum creates a new constant spectrum
func NewConstantSpectrum(c float64) *ConstantSpectrum {
	return &ConstantSpectrum{C: c}
}

// Evaluate returns the constant value
func (s *ConstantSpectrum) Evaluate(lambda float64) float64 { return s.C }

// MaxValue returns the constant value
func (s *ConstantSpectrum) MaxValue() float64 { return s.C }

func (s *ConstantSpectrum) String() string {
	return fmt.Sprintf("[ ConstantSpectrum c: %g ]", s.C)
}

// PiecewiseLinearSpectrum interpolates between tabulated (lambda, value) pairs
// and is zero outside the tabulated range.
type PiecewiseLinearSpectrum struct {
	lambdas []float64
	values  []float64
}

// NewPiecewiseLinearSpectrum creates a spectrum from wavelength/value pairs.
// lambdas must be sorted in increasing order.
func NewPiecewiseLinearSpectrum(lambdas, values []float64) (*PiecewiseLinearSpectrum, error) {
	if len(lambdas) != len(values) {
		return nil, fmt.Errorf("spectrum: %d wavelengths but %d values", len(lambdas), len(values))
	}
	if len(lambdas) == 0 {
		return nil, fmt.Errorf("spectrum: no samples")
	}
	if !sort.Float64sAreSorted(lambdas) {
		return nil, fmt.Errorf("spectrum: wavelengths must be increasing")
	}
	return &PiecewiseLinearSpectrum{
		lambdas: append([]float64(nil), lambdas...),
		values:  append([]float64(nil), values...),
	}, nil
}

// Evaluate interpolates the tabulated values at lambda
func (s *PiecewiseLinearSpectrum) Evaluate(lambda float64) float64 {
	n := len(s.lambdas)
	if lambda < s.lambdas[0] || lambda > s.lambdas[n-1] {
		return 0
	}
	if n == 1 {
		return s.values[0]
	}
	o := sort.SearchFloat64s(s.lambdas, lambda)
	if o == 0 {
		return s.values[0]
	}
	t := (lambda - s.lambdas[o-1]) / (s.lambdas[o] - s.lambdas[o-1])
	return lerp(t, s.values[o-1], s.values[o])
}

// MaxValue returns the largest tabulated value
func (s *PiecewiseLinearSpectrum) MaxValue() float64 {
	m := math.Inf(-1)
	for _, v := range s.values {
		m = math.Max(m, v)
	}
	return m
}

// RGBSpectrum turns an RGB triple into a smooth, unbounded spectrum by
// interpolating between the blue, green and red primaries' dominant
// wavelengths and holding the end values flat.
type RGBSpectrum struct {
	R, G, B float64
}

// Dominant wavelengths of the primaries
const (
	blueLambda  = 450.0
	greenLambda = 550.0
	redLambda   = 630.0
)

// NewRGBSpectrum creates a new RGB spectrum
func NewRGBSpectrum(r, g, b float64) *RGBSpectrum {
	return &RGBSpectrum{R: r, G: g, B: b}
}

// Evaluate returns the interpolated value at lambda
func (s *RGBSpectrum) Evaluate(lambda float64) float64 {
	switch {
	case lambda <= blueLambda:
		return s.B
	case lambda <= greenLambda:
		return lerp((lambda-blueLambda)/(greenLambda-blueLambda), s.B, s.G)
	case lambda <= redLambda:
		return lerp((lambda-greenLambda)/(redLambda-greenLambda), s.G, s.R)
	}
	return s.R
}

// MaxValue returns the largest primary
func (s *RGBSpectrum) MaxValue() float64 {
	return math.Max(s.R, math.Max(s.G, s.B))
}

func (s *RGBSpectrum) String() string {
	return fmt.Sprintf("[ RGBSpectrum r: %g g: %g b: %g ]", s.R, s.G, s.B)
}
