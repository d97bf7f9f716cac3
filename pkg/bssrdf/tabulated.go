package bssrdf

import (
	"fmt"
	"math"

	"github.com/df07/go-material-eval/pkg/bxdf"
	"github.com/df07/go-material-eval/pkg/core"
	"github.com/df07/go-material-eval/pkg/spectrum"
)

// ProbeSegment is the segment along which exit points are searched
type ProbeSegment struct {
	P0, P1 core.Vec3
}

// Sample is the scattering at a found exit point
type Sample struct {
	Sp  spectrum.SampledSpectrum
	PDF spectrum.SampledSpectrum
	Sw  NormalizedFresnelBxDF
	Wo  core.Vec3
}

// TabulatedBSSRDF is a separable BSSRDF whose radial profile is read from a Table
type TabulatedBSSRDF struct {
	po     core.Vec3
	wo     core.Vec3
	ns     core.Vec3
	eta    float64
	sigmaT spectrum.SampledSpectrum
	rho    spectrum.SampledSpectrum
	table  *Table
}

// NewTabulatedBSSRDF creates a BSSRDF at entry point po
func NewTabulatedBSSRDF(po, ns, wo core.Vec3, eta float64, sigmaA, sigmaS spectrum.SampledSpectrum, table *Table) TabulatedBSSRDF {
	sigmaT := sigmaA.Add(sigmaS)
	return TabulatedBSSRDF{
		po:     po,
		wo:     wo,
		ns:     ns,
		eta:    eta,
		sigmaT: sigmaT,
		rho:    sigmaS.DivideVec(sigmaT),
		table:  table,
	}
}

// Eta returns the relative index of refraction at the boundary
func (b *TabulatedBSSRDF) Eta() float64 { return b.eta }

// SigmaT returns the extinction coefficient
func (b *TabulatedBSSRDF) SigmaT() spectrum.SampledSpectrum { return b.sigmaT }

// Rho returns the single scattering albedo
func (b *TabulatedBSSRDF) Rho() spectrum.SampledSpectrum { return b.rho }

// Table returns the profile table
func (b *TabulatedBSSRDF) Table() *Table { return b.table }

// Sp evaluates the spatial profile between the entry point and pi
func (b *TabulatedBSSRDF) Sp(pi core.Vec3) spectrum.SampledSpectrum {
	return b.Sr(b.po.Subtract(pi).Length())
}

// Sr evaluates the radial profile at distance r
func (b *TabulatedBSSRDF) Sr(r float64) spectrum.SampledSpectrum {
	var sr spectrum.SampledSpectrum
	for i := range sr {
		// Convert to unitless optical radius
		rOptical := r * b.sigmaT[i]

		rhoOffset, rhoWeights, ok := CatmullRomWeights(b.table.RhoSamples, b.rho[i])
		if !ok {
			continue
		}
		radiusOffset, radiusWeights, ok := CatmullRomWeights(b.table.RadiusSamples, rOptical)
		if !ok {
			continue
		}

		v := 0.0
		for j := 0; j < 4; j++ {
			if rhoWeights[j] == 0 {
				continue
			}
			for k := 0; k < 4; k++ {
				if radiusWeights[k] == 0 {
					continue
				}
				v += rhoWeights[j] * radiusWeights[k] * b.table.EvalProfile(rhoOffset+j, radiusOffset+k)
			}
		}
		// Cancel the 2 pi r factor baked into the table
		if rOptical != 0 {
			v /= 2 * math.Pi * rOptical
		}
		sr[i] = v
	}
	sr = sr.MultiplyVec(b.sigmaT).MultiplyVec(b.sigmaT)
	return sr.ClampZero()
}

// SampleSr samples a radius for the first wavelength
func (b *TabulatedBSSRDF) SampleSr(u float64) (float64, bool) {
	if b.sigmaT[0] == 0 {
		return 0, false
	}
	x, _, _ := SampleCatmullRom2D(b.table.RhoSamples, b.table.RadiusSamples, b.table.Profile, b.table.ProfileCDF, b.rho[0], u)
	return x / b.sigmaT[0], true
}

// PDFSr returns the density of sampling radius r per wavelength
func (b *TabulatedBSSRDF) PDFSr(r float64) spectrum.SampledSpectrum {
	var pdf spectrum.SampledSpectrum
	for i := range pdf {
		rOptical := r * b.sigmaT[i]

		rhoOffset, rhoWeights, ok := CatmullRomWeights(b.table.RhoSamples, b.rho[i])
		if !ok {
			continue
		}
		radiusOffset, radiusWeights, ok := CatmullRomWeights(b.table.RadiusSamples, rOptical)
		if !ok {
			continue
		}

		sr, rhoEff := 0.0, 0.0
		for j := 0; j < 4; j++ {
			if rhoWeights[j] == 0 {
				continue
			}
			rhoEff += b.table.RhoEff[rhoOffset+j] * rhoWeights[j]
			for k := 0; k < 4; k++ {
				if radiusWeights[k] == 0 {
					continue
				}
				sr += rhoWeights[j] * radiusWeights[k] * b.table.EvalProfile(rhoOffset+j, radiusOffset+k)
			}
		}
		if rOptical != 0 {
			sr /= 2 * math.Pi * rOptical
		}
		if rhoEff != 0 {
			pdf[i] = sr * b.sigmaT[i] * b.sigmaT[i] / rhoEff
		}
	}
	return pdf.ClampZero()
}

// SampleProbe picks a projection axis and radius and returns the segment to
// intersect against the surface to find an exit point
func (b *TabulatedBSSRDF) SampleProbe(u1 float64, u2 core.Vec2) (ProbeSegment, bool) {
	var f core.Frame
	switch {
	case u1 < .25:
		f = frameFromX(b.ns)
		u1 *= 4
	case u1 < .5:
		f = frameFromY(b.ns)
		u1 = (u1 - .25) * 4
	default:
		f = core.FrameFromZ(b.ns)
		u1 = (u1 - .5) * 2
	}

	r, ok := b.SampleSr(u1)
	if !ok || r < 0 {
		return ProbeSegment{}, false
	}
	phi := 2 * math.Pi * u2.X

	rMax, ok := b.SampleSr(0.999)
	if !ok || r >= rMax {
		return ProbeSegment{}, false
	}
	l := 2 * math.Sqrt(rMax*rMax-r*r)

	start := b.po.Add(f.X.Multiply(r * math.Cos(phi)).Add(f.Y.Multiply(r * math.Sin(phi)))).Subtract(f.Z.Multiply(l / 2))
	return ProbeSegment{P0: start, P1: start.Add(f.Z.Multiply(l))}, true
}

// PDFSp is the combined density of sampling pi with normal ni over the three projection axes
func (b *TabulatedBSSRDF) PDFSp(pi, ni core.Vec3) spectrum.SampledSpectrum {
	f := core.FrameFromZ(b.ns)
	d := f.ToLocal(pi.Subtract(b.po))
	nLocal := f.ToLocal(ni)

	rProj := [3]float64{
		math.Sqrt(d.Y*d.Y + d.Z*d.Z),
		math.Sqrt(d.Z*d.Z + d.X*d.X),
		math.Sqrt(d.X*d.X + d.Y*d.Y),
	}
	axisProb := [3]float64{.25, .25, .5}

	var pdf spectrum.SampledSpectrum
	for axis := 0; axis < 3; axis++ {
		pdf = pdf.Add(b.PDFSr(rProj[axis]).Multiply(math.Abs(nLocal.Component(axis)) * axisProb[axis]))
	}
	return pdf
}

// ProbeIntersectionToSample converts a found exit point into a BSSRDF sample
func (b *TabulatedBSSRDF) ProbeIntersectionToSample(pi, ni, nsi core.Vec3) Sample {
	return Sample{
		Sp:  b.Sp(pi),
		PDF: b.PDFSp(pi, ni),
		Sw:  NewNormalizedFresnelBxDF(b.eta),
		Wo:  nsi,
	}
}

func (b *TabulatedBSSRDF) String() string {
	return fmt.Sprintf("[ TabulatedBSSRDF po: %v eta: %g sigma_t: %v rho: %v ]", b.po, b.eta, b.sigmaT, b.rho)
}

func frameFromX(x core.Vec3) core.Frame {
	y, z := core.CoordinateSystem(x)
	return core.Frame{X: x, Y: y, Z: z}
}

func frameFromY(y core.Vec3) core.Frame {
	z, x := core.CoordinateSystem(y)
	return core.Frame{X: x, Y: y, Z: z}
}

// NormalizedFresnelBxDF is the directional term at the exit point of a BSSRDF
type NormalizedFresnelBxDF struct {
	eta float64
}

// NewNormalizedFresnelBxDF creates the exit lobe for relative index eta
func NewNormalizedFresnelBxDF(eta float64) NormalizedFresnelBxDF {
	return NormalizedFresnelBxDF{eta: eta}
}

func (n *NormalizedFresnelBxDF) Flags() bxdf.Flags {
	return bxdf.DiffuseReflection
}

func (n *NormalizedFresnelBxDF) F(wo, wi core.Vec3, mode bxdf.TransportMode) spectrum.SampledSpectrum {
	if !core.SameHemisphere(wo, wi) {
		return spectrum.SampledSpectrum{}
	}
	c := 1 - 2*FresnelMoment1(1/n.eta)
	f := (1 - bxdf.FrDielectric(core.CosTheta(wi), n.eta)) / (c * math.Pi)
	if mode == bxdf.Radiance {
		f *= n.eta * n.eta
	}
	return spectrum.NewSampledSpectrum(f)
}

func (n *NormalizedFresnelBxDF) SampleF(wo core.Vec3, uc float64, u core.Vec2, mode bxdf.TransportMode, sampleFlags bxdf.ReflTransFlags) (bxdf.Sample, bool) {
	if sampleFlags&bxdf.SampleReflection == 0 {
		return bxdf.Sample{}, false
	}
	wi := core.SampleCosineHemisphere(u)
	if wo.Z < 0 {
		wi.Z = -wi.Z
	}
	return bxdf.Sample{
		F:     n.F(wo, wi, mode),
		Wi:    wi,
		PDF:   n.PDF(wo, wi, mode, sampleFlags),
		Flags: bxdf.DiffuseReflection,
		Eta:   1,
	}, true
}

func (n *NormalizedFresnelBxDF) PDF(wo, wi core.Vec3, mode bxdf.TransportMode, sampleFlags bxdf.ReflTransFlags) float64 {
	if sampleFlags&bxdf.SampleReflection == 0 || !core.SameHemisphere(wo, wi) {
		return 0
	}
	return core.CosineHemispherePDF(core.AbsCosTheta(wi))
}
