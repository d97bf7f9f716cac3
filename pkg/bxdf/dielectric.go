package bxdf

import (
	"fmt"

	"github.com/df07/go-material-eval/pkg/core"
	"github.com/df07/go-material-eval/pkg/spectrum"
)

var upZ = core.NewVec3(0, 0, 1)

// DielectricBxDF models a smooth or rough interface between two dielectrics
type DielectricBxDF struct {
	eta     float64
	distrib TrowbridgeReitzDistribution
}

// NewDielectricBxDF creates a dielectric interface with relative index eta
func NewDielectricBxDF(eta float64, distrib TrowbridgeReitzDistribution) DielectricBxDF {
	return DielectricBxDF{eta: eta, distrib: distrib}
}

// Eta returns the relative index of refraction
func (d *DielectricBxDF) Eta() float64 { return d.eta }

// Distribution returns the microfacet distribution
func (d *DielectricBxDF) Distribution() TrowbridgeReitzDistribution { return d.distrib }

func (d *DielectricBxDF) Flags() Flags {
	flags := Reflection | Transmission
	if d.eta == 1 {
		flags = Transmission
	}
	if d.distrib.EffectivelySmooth() {
		return flags | Specular
	}
	return flags | Glossy
}

func (d *DielectricBxDF) SampleF(wo core.Vec3, uc float64, u core.Vec2, mode TransportMode, sampleFlags ReflTransFlags) (Sample, bool) {
	if d.eta == 1 || d.distrib.EffectivelySmooth() {
		r := FrDielectric(core.CosTheta(wo), d.eta)
		t := 1 - r
		pr, pt := reflTransProbabilities(r, t, sampleFlags)
		if pr == 0 && pt == 0 {
			return Sample{}, false
		}

		if uc < pr/(pr+pt) {
			wi := core.NewVec3(-wo.X, -wo.Y, wo.Z)
			fr := spectrum.NewSampledSpectrum(r / core.AbsCosTheta(wi))
			return newSample(fr, wi, pr/(pr+pt), SpecularReflection), true
		}

		wi, etap, ok := Refract(wo, upZ, d.eta)
		if !ok {
			return Sample{}, false
		}
		ft := t / core.AbsCosTheta(wi)
		if mode == Radiance {
			ft /= core.Sqr(etap)
		}
		s := newSample(spectrum.NewSampledSpectrum(ft), wi, pt/(pr+pt), SpecularTransmission)
		s.Eta = etap
		return s, true
	}

	wm := d.distrib.SampleWm(wo, u)
	r := FrDielectric(wo.Dot(wm), d.eta)
	t := 1 - r
	pr, pt := reflTransProbabilities(r, t, sampleFlags)
	if pr == 0 && pt == 0 {
		return Sample{}, false
	}

	if uc < pr/(pr+pt) {
		wi := Reflect(wo, wm)
		if !core.SameHemisphere(wo, wi) {
			return Sample{}, false
		}
		pdf := d.distrib.PDF(wo, wm) / (4 * wo.AbsDot(wm)) * pr / (pr + pt)
		f := d.distrib.D(wm) * d.distrib.G(wo, wi) * r / (4 * core.CosTheta(wi) * core.CosTheta(wo))
		return newSample(spectrum.NewSampledSpectrum(f), wi, pdf, GlossyReflection), true
	}

	wi, etap, ok := Refract(wo, wm, d.eta)
	if !ok || core.SameHemisphere(wo, wi) || wi.Z == 0 {
		return Sample{}, false
	}
	denom := core.Sqr(wi.Dot(wm) + wo.Dot(wm)/etap)
	dwmdwi := wi.AbsDot(wm) / denom
	pdf := d.distrib.PDF(wo, wm) * dwmdwi * pt / (pr + pt)
	ft := t * d.distrib.D(wm) * d.distrib.G(wo, wi) *
		abs(wi.Dot(wm)*wo.Dot(wm)/(core.CosTheta(wi)*core.CosTheta(wo)*denom))
	if mode == Radiance {
		ft /= core.Sqr(etap)
	}
	s := newSample(spectrum.NewSampledSpectrum(ft), wi, pdf, GlossyTransmission)
	s.Eta = etap
	return s, true
}

// generalizedHalfVector returns the half vector for reflection or refraction
// between wo and wi, oriented to +Z, and the relative eta it used.
func (d *DielectricBxDF) generalizedHalfVector(wo, wi core.Vec3) (core.Vec3, float64, bool, bool) {
	cosThetaO, cosThetaI := core.CosTheta(wo), core.CosTheta(wi)
	reflect := cosThetaI*cosThetaO > 0
	etap := 1.0
	if !reflect {
		if cosThetaO > 0 {
			etap = d.eta
		} else {
			etap = 1 / d.eta
		}
	}
	wm := wi.Multiply(etap).Add(wo)
	if cosThetaI == 0 || cosThetaO == 0 || wm.LengthSquared() == 0 {
		return core.Vec3{}, 0, false, false
	}
	wm = core.FaceForward(wm.Normalize(), upZ)

	// Discard back-facing microfacets
	if wm.Dot(wi)*cosThetaI < 0 || wm.Dot(wo)*cosThetaO < 0 {
		return core.Vec3{}, 0, false, false
	}
	return wm, etap, reflect, true
}

func (d *DielectricBxDF) F(wo, wi core.Vec3, mode TransportMode) spectrum.SampledSpectrum {
	if d.eta == 1 || d.distrib.EffectivelySmooth() {
		return spectrum.SampledSpectrum{}
	}
	wm, etap, reflect, ok := d.generalizedHalfVector(wo, wi)
	if !ok {
		return spectrum.SampledSpectrum{}
	}

	cosThetaO, cosThetaI := core.CosTheta(wo), core.CosTheta(wi)
	fr := FrDielectric(wo.Dot(wm), d.eta)
	if reflect {
		return spectrum.NewSampledSpectrum(d.distrib.D(wm) * d.distrib.G(wo, wi) * fr / abs(4*cosThetaI*cosThetaO))
	}

	denom := core.Sqr(wi.Dot(wm)+wo.Dot(wm)/etap) * cosThetaI * cosThetaO
	ft := d.distrib.D(wm) * (1 - fr) * d.distrib.G(wo, wi) * abs(wi.Dot(wm)*wo.Dot(wm)/denom)
	if mode == Radiance {
		ft /= core.Sqr(etap)
	}
	return spectrum.NewSampledSpectrum(ft)
}

func (d *DielectricBxDF) PDF(wo, wi core.Vec3, mode TransportMode, sampleFlags ReflTransFlags) float64 {
	if d.eta == 1 || d.distrib.EffectivelySmooth() {
		return 0
	}
	wm, etap, reflect, ok := d.generalizedHalfVector(wo, wi)
	if !ok {
		return 0
	}

	r := FrDielectric(wo.Dot(wm), d.eta)
	pr, pt := reflTransProbabilities(r, 1-r, sampleFlags)
	if pr == 0 && pt == 0 {
		return 0
	}

	if reflect {
		return d.distrib.PDF(wo, wm) / (4 * wo.AbsDot(wm)) * pr / (pr + pt)
	}
	denom := core.Sqr(wi.Dot(wm) + wo.Dot(wm)/etap)
	dwmdwi := wi.AbsDot(wm) / denom
	return d.distrib.PDF(wo, wm) * dwmdwi * pt / (pr + pt)
}

func (d *DielectricBxDF) String() string {
	return fmt.Sprintf("[ DielectricBxDF eta: %g distrib: %v ]", d.eta, d.distrib)
}

func reflTransProbabilities(r, t float64, sampleFlags ReflTransFlags) (float64, float64) {
	if sampleFlags&SampleReflection == 0 {
		r = 0
	}
	if sampleFlags&SampleTransmission == 0 {
		t = 0
	}
	return r, t
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
