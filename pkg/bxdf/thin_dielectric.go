package bxdf

import (
	"fmt"

	"github.com/df07/go-material-eval/pkg/core"
	"github.com/df07/go-material-eval/pkg/spectrum"
)

// ThinDielectricBxDF models a thin slab with parallel smooth faces. Light
// leaves either mirrored or straight through, with interreflection inside the
// slab folded into the reflectance.
type ThinDielectricBxDF struct {
	eta float64
}

// NewThinDielectricBxDF creates a thin slab with relative index eta
func NewThinDielectricBxDF(eta float64) ThinDielectricBxDF {
	return ThinDielectricBxDF{eta: eta}
}

// Eta returns the relative index of refraction
func (d *ThinDielectricBxDF) Eta() float64 { return d.eta }

func (d *ThinDielectricBxDF) Flags() Flags {
	return Reflection | Transmission | Specular
}

func (d *ThinDielectricBxDF) SampleF(wo core.Vec3, uc float64, u core.Vec2, mode TransportMode, sampleFlags ReflTransFlags) (Sample, bool) {
	r := FrDielectric(core.AbsCosTheta(wo), d.eta)
	t := 1 - r
	if r < 1 {
		r += core.Sqr(t) * r / (1 - core.Sqr(r))
		t = 1 - r
	}

	pr, pt := reflTransProbabilities(r, t, sampleFlags)
	if pr == 0 && pt == 0 {
		return Sample{}, false
	}

	if uc < pr/(pr+pt) {
		wi := core.NewVec3(-wo.X, -wo.Y, wo.Z)
		fr := spectrum.NewSampledSpectrum(r / core.AbsCosTheta(wi))
		return newSample(fr, wi, pr/(pr+pt), SpecularReflection), true
	}
	wi := wo.Negate()
	ft := spectrum.NewSampledSpectrum(t / core.AbsCosTheta(wi))
	return newSample(ft, wi, pt/(pr+pt), SpecularTransmission), true
}

func (d *ThinDielectricBxDF) F(wo, wi core.Vec3, mode TransportMode) spectrum.SampledSpectrum {
	return spectrum.SampledSpectrum{}
}

func (d *ThinDielectricBxDF) PDF(wo, wi core.Vec3, mode TransportMode, sampleFlags ReflTransFlags) float64 {
	return 0
}

func (d *ThinDielectricBxDF) String() string {
	return fmt.Sprintf("[ ThinDielectricBxDF eta: %g ]", d.eta)
}
