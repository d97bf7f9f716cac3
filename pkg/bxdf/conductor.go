package bxdf

import (
	"fmt"

	"github.com/df07/go-material-eval/pkg/core"
	"github.com/df07/go-material-eval/pkg/spectrum"
)

// ConductorBxDF models a metal with complex index eta + ik
type ConductorBxDF struct {
	distrib TrowbridgeReitzDistribution
	eta, k  spectrum.SampledSpectrum
}

// NewConductorBxDF creates a conductor kernel
func NewConductorBxDF(distrib TrowbridgeReitzDistribution, eta, k spectrum.SampledSpectrum) ConductorBxDF {
	return ConductorBxDF{distrib: distrib, eta: eta, k: k}
}

// Eta returns the real part of the index of refraction
func (c *ConductorBxDF) Eta() spectrum.SampledSpectrum { return c.eta }

// K returns the absorption coefficient
func (c *ConductorBxDF) K() spectrum.SampledSpectrum { return c.k }

// Distribution returns the microfacet distribution
func (c *ConductorBxDF) Distribution() TrowbridgeReitzDistribution { return c.distrib }

func (c *ConductorBxDF) Flags() Flags {
	if c.distrib.EffectivelySmooth() {
		return SpecularReflection
	}
	return GlossyReflection
}

func (c *ConductorBxDF) SampleF(wo core.Vec3, uc float64, u core.Vec2, mode TransportMode, sampleFlags ReflTransFlags) (Sample, bool) {
	if sampleFlags&SampleReflection == 0 {
		return Sample{}, false
	}
	if c.distrib.EffectivelySmooth() {
		wi := core.NewVec3(-wo.X, -wo.Y, wo.Z)
		f := FrComplexSpectrum(core.AbsCosTheta(wi), c.eta, c.k).Multiply(1 / core.AbsCosTheta(wi))
		return newSample(f, wi, 1, SpecularReflection), true
	}

	if wo.Z == 0 {
		return Sample{}, false
	}
	wm := c.distrib.SampleWm(wo, u)
	wi := Reflect(wo, wm)
	if !core.SameHemisphere(wo, wi) {
		return Sample{}, false
	}
	pdf := c.distrib.PDF(wo, wm) / (4 * wo.AbsDot(wm))

	cosThetaO, cosThetaI := core.AbsCosTheta(wo), core.AbsCosTheta(wi)
	if cosThetaI == 0 || cosThetaO == 0 {
		return Sample{}, false
	}
	fr := FrComplexSpectrum(wo.AbsDot(wm), c.eta, c.k)
	f := fr.Multiply(c.distrib.D(wm) * c.distrib.G(wo, wi) / (4 * cosThetaI * cosThetaO))
	return newSample(f, wi, pdf, GlossyReflection), true
}

func (c *ConductorBxDF) F(wo, wi core.Vec3, mode TransportMode) spectrum.SampledSpectrum {
	if !core.SameHemisphere(wo, wi) || c.distrib.EffectivelySmooth() {
		return spectrum.SampledSpectrum{}
	}
	cosThetaO, cosThetaI := core.AbsCosTheta(wo), core.AbsCosTheta(wi)
	if cosThetaI == 0 || cosThetaO == 0 {
		return spectrum.SampledSpectrum{}
	}
	wm := wi.Add(wo)
	if wm.LengthSquared() == 0 {
		return spectrum.SampledSpectrum{}
	}
	wm = wm.Normalize()

	fr := FrComplexSpectrum(wo.AbsDot(wm), c.eta, c.k)
	return fr.Multiply(c.distrib.D(wm) * c.distrib.G(wo, wi) / (4 * cosThetaI * cosThetaO))
}

func (c *ConductorBxDF) PDF(wo, wi core.Vec3, mode TransportMode, sampleFlags ReflTransFlags) float64 {
	if sampleFlags&SampleReflection == 0 || !core.SameHemisphere(wo, wi) || c.distrib.EffectivelySmooth() {
		return 0
	}
	wm := wo.Add(wi)
	if wm.LengthSquared() == 0 {
		return 0
	}
	wm = core.FaceForward(wm.Normalize(), upZ)
	return c.distrib.PDF(wo, wm) / (4 * wo.AbsDot(wm))
}

func (c *ConductorBxDF) String() string {
	return fmt.Sprintf("[ ConductorBxDF distrib: %v eta: %v k: %v ]", c.distrib, c.eta, c.k)
}
