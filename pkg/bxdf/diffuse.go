package bxdf

import (
	"fmt"
	"math"

	"github.com/df07/go-material-eval/pkg/core"
	"github.com/df07/go-material-eval/pkg/spectrum"
)

// RoughDiffuseBxDF is an Oren-Nayar reflector with an optional Lambertian
// transmission lobe. Sigma is the facet slope standard deviation in degrees;
// zero gives a Lambertian reflector.
type RoughDiffuseBxDF struct {
	r, t  spectrum.SampledSpectrum
	sigma float64
	a, b  float64
}

// NewRoughDiffuseBxDF creates a rough diffuse kernel
func NewRoughDiffuseBxDF(r, t spectrum.SampledSpectrum, sigma float64) RoughDiffuseBxDF {
	s2 := core.Sqr(core.Radians(sigma))
	return RoughDiffuseBxDF{
		r:     r,
		t:     t,
		sigma: sigma,
		a:     1 - s2/(2*(s2+0.33)),
		b:     0.45 * s2 / (s2 + 0.09),
	}
}

// R returns the reflectance
func (d *RoughDiffuseBxDF) R() spectrum.SampledSpectrum { return d.r }

// T returns the transmittance
func (d *RoughDiffuseBxDF) T() spectrum.SampledSpectrum { return d.t }

// Sigma returns the roughness in degrees
func (d *RoughDiffuseBxDF) Sigma() float64 { return d.sigma }

func (d *RoughDiffuseBxDF) Flags() Flags {
	flags := Unset
	if !d.r.IsZero() {
		flags |= DiffuseReflection
	}
	if !d.t.IsZero() {
		flags |= DiffuseTransmission
	}
	return flags
}

func (d *RoughDiffuseBxDF) F(wo, wi core.Vec3, mode TransportMode) spectrum.SampledSpectrum {
	if !core.SameHemisphere(wo, wi) {
		return d.t.Multiply(core.InvPi)
	}
	if d.r.IsZero() {
		return spectrum.SampledSpectrum{}
	}
	if d.b == 0 {
		return d.r.Multiply(core.InvPi)
	}

	sinThetaI, sinThetaO := core.SinTheta(wi), core.SinTheta(wo)
	maxCos := 0.0
	if sinThetaI > 1e-4 && sinThetaO > 1e-4 {
		dCos := core.CosPhi(wi)*core.CosPhi(wo) + core.SinPhi(wi)*core.SinPhi(wo)
		maxCos = math.Max(0, dCos)
	}

	var sinAlpha, tanBeta float64
	if core.AbsCosTheta(wi) > core.AbsCosTheta(wo) {
		sinAlpha = sinThetaO
		tanBeta = sinThetaI / core.AbsCosTheta(wi)
	} else {
		sinAlpha = sinThetaI
		tanBeta = sinThetaO / core.AbsCosTheta(wo)
	}
	return d.r.Multiply(core.InvPi * (d.a + d.b*maxCos*sinAlpha*tanBeta))
}

func (d *RoughDiffuseBxDF) SampleF(wo core.Vec3, uc float64, u core.Vec2, mode TransportMode, sampleFlags ReflTransFlags) (Sample, bool) {
	pr, pt := reflTransProbabilities(d.r.MaxComponent(), d.t.MaxComponent(), sampleFlags)
	if pr == 0 && pt == 0 {
		return Sample{}, false
	}

	wi := core.SampleCosineHemisphere(u)
	if uc < pr/(pr+pt) {
		if wo.Z < 0 {
			wi.Z = -wi.Z
		}
		pdf := core.CosineHemispherePDF(core.AbsCosTheta(wi)) * pr / (pr + pt)
		return newSample(d.F(wo, wi, mode), wi, pdf, DiffuseReflection), true
	}
	if wo.Z > 0 {
		wi.Z = -wi.Z
	}
	pdf := core.CosineHemispherePDF(core.AbsCosTheta(wi)) * pt / (pr + pt)
	return newSample(d.F(wo, wi, mode), wi, pdf, DiffuseTransmission), true
}

func (d *RoughDiffuseBxDF) PDF(wo, wi core.Vec3, mode TransportMode, sampleFlags ReflTransFlags) float64 {
	pr, pt := reflTransProbabilities(d.r.MaxComponent(), d.t.MaxComponent(), sampleFlags)
	if pr == 0 && pt == 0 {
		return 0
	}
	if core.SameHemisphere(wo, wi) {
		return pr / (pr + pt) * core.CosineHemispherePDF(core.AbsCosTheta(wi))
	}
	return pt / (pr + pt) * core.CosineHemispherePDF(core.AbsCosTheta(wi))
}

func (d *RoughDiffuseBxDF) String() string {
	return fmt.Sprintf("[ RoughDiffuseBxDF R: %v T: %v sigma: %g ]", d.r, d.t, d.sigma)
}
