package bxdf

import (
	"fmt"
	"math"
	"sort"

	"github.com/df07/go-material-eval/pkg/core"
	"github.com/df07/go-material-eval/pkg/spectrum"
)

// MeasuredBRDF is an isotropic reflectance table parameterized by the
// half-vector/difference-vector angles and wavelength. Values are laid out
// as [thetaH][thetaD][phiD][wavelength].
type MeasuredBRDF struct {
	Name        string
	ThetaHRes   int
	ThetaDRes   int
	PhiDRes     int
	Wavelengths []float64
	Values      []float64
}

// NewMeasuredBRDF validates and wraps a reflectance table
func NewMeasuredBRDF(name string, thetaHRes, thetaDRes, phiDRes int, wavelengths, values []float64) (*MeasuredBRDF, error) {
	if thetaHRes <= 0 || thetaDRes <= 0 || phiDRes <= 0 {
		return nil, fmt.Errorf("measured brdf %q: resolution must be positive, got %dx%dx%d", name, thetaHRes, thetaDRes, phiDRes)
	}
	if len(wavelengths) == 0 {
		return nil, fmt.Errorf("measured brdf %q: no wavelengths", name)
	}
	if !sort.Float64sAreSorted(wavelengths) {
		return nil, fmt.Errorf("measured brdf %q: wavelengths must be sorted", name)
	}
	want := thetaHRes * thetaDRes * phiDRes * len(wavelengths)
	if len(values) != want {
		return nil, fmt.Errorf("measured brdf %q: expected %d values, got %d", name, want, len(values))
	}
	return &MeasuredBRDF{
		Name:        name,
		ThetaHRes:   thetaHRes,
		ThetaDRes:   thetaDRes,
		PhiDRes:     phiDRes,
		Wavelengths: wavelengths,
		Values:      values,
	}, nil
}

// TabulateMeasuredBRDF fills a table by evaluating fn at every bin center
func TabulateMeasuredBRDF(name string, thetaHRes, thetaDRes, phiDRes int, wavelengths []float64,
	fn func(thetaH, thetaD, phiD, lambda float64) float64) (*MeasuredBRDF, error) {
	values := make([]float64, 0, thetaHRes*thetaDRes*phiDRes*len(wavelengths))
	for i := 0; i < thetaHRes; i++ {
		// Theta_h bins are packed towards the specular peak
		thetaH := core.Sqr((float64(i)+0.5)/float64(thetaHRes)) * core.PiOver2
		for j := 0; j < thetaDRes; j++ {
			thetaD := (float64(j) + 0.5) / float64(thetaDRes) * core.PiOver2
			for k := 0; k < phiDRes; k++ {
				phiD := (float64(k) + 0.5) / float64(phiDRes) * math.Pi
				for _, lambda := range wavelengths {
					values = append(values, fn(thetaH, thetaD, phiD, lambda))
				}
			}
		}
	}
	return NewMeasuredBRDF(name, thetaHRes, thetaDRes, phiDRes, wavelengths, values)
}

// Lookup returns the tabulated reflectance, nearest bin in angle and linear in wavelength
func (m *MeasuredBRDF) Lookup(thetaH, thetaD, phiD, lambda float64) float64 {
	// Reciprocity makes phi_d and phi_d + pi equivalent
	phiD = math.Mod(phiD, math.Pi)
	if phiD < 0 {
		phiD += math.Pi
	}

	i := binIndex(math.Sqrt(core.Clamp(thetaH/core.PiOver2, 0, 1)), m.ThetaHRes)
	j := binIndex(thetaD/core.PiOver2, m.ThetaDRes)
	k := binIndex(phiD/math.Pi, m.PhiDRes)
	base := ((i*m.ThetaDRes+j)*m.PhiDRes + k) * len(m.Wavelengths)
	row := m.Values[base : base+len(m.Wavelengths)]

	n := len(m.Wavelengths)
	if lambda <= m.Wavelengths[0] {
		return row[0]
	}
	if lambda >= m.Wavelengths[n-1] {
		return row[n-1]
	}
	o := core.FindInterval(n, func(idx int) bool { return m.Wavelengths[idx] <= lambda })
	t := (lambda - m.Wavelengths[o]) / (m.Wavelengths[o+1] - m.Wavelengths[o])
	return core.Lerp(t, row[o], row[o+1])
}

func (m *MeasuredBRDF) String() string {
	return fmt.Sprintf("[ MeasuredBRDF %q %dx%dx%d, %d wavelengths ]", m.Name, m.ThetaHRes, m.ThetaDRes, m.PhiDRes, len(m.Wavelengths))
}

func binIndex(x float64, res int) int {
	i := int(x * float64(res))
	if i < 0 {
		return 0
	}
	if i >= res {
		return res - 1
	}
	return i
}

// HalfDiffAngles converts a direction pair to Rusinkiewicz coordinates
func HalfDiffAngles(wo, wi core.Vec3) (thetaH, thetaD, phiD float64) {
	wh := wo.Add(wi).Normalize()
	thetaH = core.SafeACos(wh.Z)
	phiH := math.Atan2(wh.Y, wh.X)

	d := rotateY(rotateZ(wi, -phiH), -thetaH)
	thetaD = core.SafeACos(d.Z)
	phiD = math.Atan2(d.Y, d.X)
	return thetaH, thetaD, phiD
}

func rotateZ(v core.Vec3, a float64) core.Vec3 {
	s, c := math.Sincos(a)
	return core.NewVec3(v.X*c-v.Y*s, v.X*s+v.Y*c, v.Z)
}

func rotateY(v core.Vec3, a float64) core.Vec3 {
	s, c := math.Sincos(a)
	return core.NewVec3(v.X*c+v.Z*s, v.Y, -v.X*s+v.Z*c)
}

// MeasuredBxDF evaluates a MeasuredBRDF at a fixed set of wavelengths
type MeasuredBxDF struct {
	brdf   *MeasuredBRDF
	lambda spectrum.SampledWavelengths
}

// NewMeasuredBxDF binds a table to the wavelengths being shaded
func NewMeasuredBxDF(brdf *MeasuredBRDF, lambda *spectrum.SampledWavelengths) MeasuredBxDF {
	return MeasuredBxDF{brdf: brdf, lambda: *lambda}
}

// BRDF returns the underlying table
func (m *MeasuredBxDF) BRDF() *MeasuredBRDF { return m.brdf }

func (m *MeasuredBxDF) Flags() Flags {
	return GlossyReflection
}

func (m *MeasuredBxDF) F(wo, wi core.Vec3, mode TransportMode) spectrum.SampledSpectrum {
	if !core.SameHemisphere(wo, wi) || m.brdf == nil {
		return spectrum.SampledSpectrum{}
	}
	if wo.Z < 0 {
		wo, wi = wo.Negate(), wi.Negate()
	}
	if wo.Add(wi).LengthSquared() == 0 {
		return spectrum.SampledSpectrum{}
	}

	thetaH, thetaD, phiD := HalfDiffAngles(wo, wi)
	var f spectrum.SampledSpectrum
	for i := range f {
		f[i] = math.Max(0, m.brdf.Lookup(thetaH, thetaD, phiD, m.lambda.Lambda(i)))
	}
	return f
}

func (m *MeasuredBxDF) SampleF(wo core.Vec3, uc float64, u core.Vec2, mode TransportMode, sampleFlags ReflTransFlags) (Sample, bool) {
	if sampleFlags&SampleReflection == 0 {
		return Sample{}, false
	}
	wi := core.SampleCosineHemisphere(u)
	if wo.Z < 0 {
		wi.Z = -wi.Z
	}
	pdf := core.CosineHemispherePDF(core.AbsCosTheta(wi))
	return newSample(m.F(wo, wi, mode), wi, pdf, GlossyReflection), true
}

func (m *MeasuredBxDF) PDF(wo, wi core.Vec3, mode TransportMode, sampleFlags ReflTransFlags) float64 {
	if sampleFlags&SampleReflection == 0 || !core.SameHemisphere(wo, wi) {
		return 0
	}
	return core.CosineHemispherePDF(core.AbsCosTheta(wi))
}

func (m *MeasuredBxDF) String() string {
	return fmt.Sprintf("[ MeasuredBxDF brdf: %v ]", m.brdf)
}
