package bxdf

import (
	"fmt"
	"math"

	"github.com/df07/go-material-eval/pkg/core"
	"github.com/df07/go-material-eval/pkg/spectrum"
)

const (
	hairPMax     = 3
	sqrtPiOver8  = 0.626657069
	eumelaninR   = 0.419
	eumelaninG   = 0.697
	eumelaninB   = 1.37
	pheomelaninR = 0.187
	pheomelaninG = 0.4
	pheomelaninB = 1.05
)

// HairBxDF is the Chiang et al. fiber scattering model. Directions are in a
// frame where +X runs along the fiber and the offset h in [-1,1] is measured
// across it.
type HairBxDF struct {
	h, eta       float64
	sigmaA       spectrum.SampledSpectrum
	betaM, betaN float64
	v            [hairPMax + 1]float64
	s            float64
	sin2kAlpha   [3]float64
	cos2kAlpha   [3]float64
}

// NewHairBxDF creates a hair kernel. alpha is the scale tilt in degrees.
func NewHairBxDF(h, eta float64, sigmaA spectrum.SampledSpectrum, betaM, betaN, alpha float64) HairBxDF {
	core.DCheck(h >= -1 && h <= 1, "hair offset %g outside [-1,1]", h)
	core.DCheck(betaM >= 0 && betaM <= 1, "beta_m %g outside [0,1]", betaM)
	core.DCheck(betaN >= 0 && betaN <= 1, "beta_n %g outside [0,1]", betaN)

	b := HairBxDF{h: h, eta: eta, sigmaA: sigmaA, betaM: betaM, betaN: betaN}

	// Longitudinal variance per lobe
	b.v[0] = core.Sqr(0.726*betaM + 0.812*core.Sqr(betaM) + 3.7*math.Pow(betaM, 20))
	b.v[1] = .25 * b.v[0]
	b.v[2] = 4 * b.v[0]
	for p := 3; p <= hairPMax; p++ {
		b.v[p] = b.v[2]
	}

	// Azimuthal logistic scale
	b.s = sqrtPiOver8 * (0.265*betaN + 1.194*core.Sqr(betaN) + 5.372*math.Pow(betaN, 22))

	b.sin2kAlpha[0] = math.Sin(core.Radians(alpha))
	b.cos2kAlpha[0] = core.SafeSqrt(1 - core.Sqr(b.sin2kAlpha[0]))
	for i := 1; i < 3; i++ {
		b.sin2kAlpha[i] = 2 * b.cos2kAlpha[i-1] * b.sin2kAlpha[i-1]
		b.cos2kAlpha[i] = core.Sqr(b.cos2kAlpha[i-1]) - core.Sqr(b.sin2kAlpha[i-1])
	}
	return b
}

// H returns the offset across the fiber
func (b *HairBxDF) H() float64 { return b.h }

// Eta returns the index of refraction of the fiber interior
func (b *HairBxDF) Eta() float64 { return b.eta }

// SigmaA returns the interior absorption coefficient
func (b *HairBxDF) SigmaA() spectrum.SampledSpectrum { return b.sigmaA }

// BetaM returns the longitudinal roughness
func (b *HairBxDF) BetaM() float64 { return b.betaM }

// BetaN returns the azimuthal roughness
func (b *HairBxDF) BetaN() float64 { return b.betaN }

func (b *HairBxDF) Flags() Flags {
	return GlossyReflection
}

// tiltedTheta accounts for scale tilt on lobe p
func (b *HairBxDF) tiltedTheta(p int, sinThetaO, cosThetaO float64) (float64, float64) {
	var sinThetapO, cosThetapO float64
	switch p {
	case 0:
		sinThetapO = sinThetaO*b.cos2kAlpha[1] - cosThetaO*b.sin2kAlpha[1]
		cosThetapO = cosThetaO*b.cos2kAlpha[1] + sinThetaO*b.sin2kAlpha[1]
	case 1:
		sinThetapO = sinThetaO*b.cos2kAlpha[0] + cosThetaO*b.sin2kAlpha[0]
		cosThetapO = cosThetaO*b.cos2kAlpha[0] - sinThetaO*b.sin2kAlpha[0]
	case 2:
		sinThetapO = sinThetaO*b.cos2kAlpha[2] + cosThetaO*b.sin2kAlpha[2]
		cosThetapO = cosThetaO*b.cos2kAlpha[2] - sinThetaO*b.sin2kAlpha[2]
	default:
		sinThetapO, cosThetapO = sinThetaO, cosThetaO
	}
	return sinThetapO, math.Abs(cosThetapO)
}

// transmittance is the absorption along one pass through the fiber
func (b *HairBxDF) transmittance(sinThetaO, cosThetaO float64) (spectrum.SampledSpectrum, float64) {
	sinThetaT := sinThetaO / b.eta
	cosThetaT := core.SafeSqrt(1 - core.Sqr(sinThetaT))

	etap := core.SafeSqrt(core.Sqr(b.eta)-core.Sqr(sinThetaO)) / cosThetaO
	sinGammaT := b.h / etap
	cosGammaT := core.SafeSqrt(1 - core.Sqr(sinGammaT))
	gammaT := core.SafeASin(sinGammaT)

	t := b.sigmaA.Multiply(-2 * cosGammaT / cosThetaT).Exp()
	return t, gammaT
}

func (b *HairBxDF) F(wo, wi core.Vec3, mode TransportMode) spectrum.SampledSpectrum {
	sinThetaO := wo.X
	cosThetaO := core.SafeSqrt(1 - core.Sqr(sinThetaO))
	phiO := math.Atan2(wo.Z, wo.Y)
	gammaO := core.SafeASin(b.h)

	sinThetaI := wi.X
	cosThetaI := core.SafeSqrt(1 - core.Sqr(sinThetaI))
	phiI := math.Atan2(wi.Z, wi.Y)

	t, gammaT := b.transmittance(sinThetaO, cosThetaO)
	phi := phiI - phiO
	ap := hairAp(cosThetaO, b.eta, b.h, t)

	var fsum spectrum.SampledSpectrum
	for p := 0; p < hairPMax; p++ {
		sinThetapO, cosThetapO := b.tiltedTheta(p, sinThetaO, cosThetaO)
		m := hairMp(cosThetaI, cosThetapO, sinThetaI, sinThetapO, b.v[p])
		fsum = fsum.Add(ap[p].Multiply(m * hairNp(phi, p, b.s, gammaO, gammaT)))
	}

	// Residual lobes folded into a uniform azimuthal term
	m := hairMp(cosThetaI, cosThetaO, sinThetaI, sinThetaO, b.v[hairPMax])
	fsum = fsum.Add(ap[hairPMax].Multiply(m / (2 * math.Pi)))

	if core.AbsCosTheta(wi) > 0 {
		fsum = fsum.Multiply(1 / core.AbsCosTheta(wi))
	}
	return fsum
}

func (b *HairBxDF) apPDF(cosThetaO float64) [hairPMax + 1]float64 {
	sinThetaO := core.SafeSqrt(1 - core.Sqr(cosThetaO))
	t, _ := b.transmittance(sinThetaO, cosThetaO)
	ap := hairAp(cosThetaO, b.eta, b.h, t)

	var pdf [hairPMax + 1]float64
	sumY := 0.0
	for i := range ap {
		sumY += ap[i].Average()
	}
	if sumY == 0 {
		return pdf
	}
	for i := range ap {
		pdf[i] = ap[i].Average() / sumY
	}
	return pdf
}

func (b *HairBxDF) SampleF(wo core.Vec3, uc float64, u core.Vec2, mode TransportMode, sampleFlags ReflTransFlags) (Sample, bool) {
	if sampleFlags&SampleReflection == 0 {
		return Sample{}, false
	}

	sinThetaO := wo.X
	cosThetaO := core.SafeSqrt(1 - core.Sqr(sinThetaO))
	phiO := math.Atan2(wo.Z, wo.Y)
	gammaO := core.SafeASin(b.h)

	// Choose a lobe in proportion to its attenuation
	apPDF := b.apPDF(cosThetaO)
	p := hairPMax
	for i := 0; i < hairPMax; i++ {
		if uc < apPDF[i] {
			p = i
			break
		}
		uc -= apPDF[i]
	}
	if apPDF[p] > 0 {
		uc = math.Min(uc/apPDF[p], core.OneMinusEpsilon)
	}

	sinThetapO, cosThetapO := b.tiltedTheta(p, sinThetaO, cosThetaO)

	// Sample the longitudinal lobe
	cosTheta := 1 + b.v[p]*math.Log(math.Max(u.X, 1e-5)+(1-u.X)*math.Exp(-2/b.v[p]))
	sinTheta := core.SafeSqrt(1 - core.Sqr(cosTheta))
	cosPhi := math.Cos(2 * math.Pi * u.Y)
	sinThetaI := -cosTheta*sinThetapO + sinTheta*cosPhi*cosThetapO
	cosThetaI := core.SafeSqrt(1 - core.Sqr(sinThetaI))

	// Sample the azimuthal lobe
	etap := core.SafeSqrt(core.Sqr(b.eta)-core.Sqr(sinThetaO)) / cosThetaO
	gammaT := core.SafeASin(b.h / etap)
	var dphi float64
	if p < hairPMax {
		dphi = hairPhi(p, gammaO, gammaT) + sampleTrimmedLogistic(uc, b.s, -math.Pi, math.Pi)
	} else {
		dphi = 2 * math.Pi * uc
	}

	phiI := phiO + dphi
	wi := core.NewVec3(sinThetaI, cosThetaI*math.Cos(phiI), cosThetaI*math.Sin(phiI))

	pdf := b.pdf(sinThetaO, cosThetaO, sinThetaI, cosThetaI, dphi, gammaO, gammaT, apPDF)
	return newSample(b.F(wo, wi, mode), wi, pdf, b.Flags()), true
}

func (b *HairBxDF) pdf(sinThetaO, cosThetaO, sinThetaI, cosThetaI, dphi, gammaO, gammaT float64, apPDF [hairPMax + 1]float64) float64 {
	pdf := 0.0
	for p := 0; p < hairPMax; p++ {
		sinThetapO, cosThetapO := b.tiltedTheta(p, sinThetaO, cosThetaO)
		pdf += hairMp(cosThetaI, cosThetapO, sinThetaI, sinThetapO, b.v[p]) * apPDF[p] * hairNp(dphi, p, b.s, gammaO, gammaT)
	}
	pdf += hairMp(cosThetaI, cosThetaO, sinThetaI, sinThetaO, b.v[hairPMax]) * apPDF[hairPMax] / (2 * math.Pi)
	return pdf
}

func (b *HairBxDF) PDF(wo, wi core.Vec3, mode TransportMode, sampleFlags ReflTransFlags) float64 {
	if sampleFlags&SampleReflection == 0 {
		return 0
	}
	sinThetaO := wo.X
	cosThetaO := core.SafeSqrt(1 - core.Sqr(sinThetaO))
	phiO := math.Atan2(wo.Z, wo.Y)
	gammaO := core.SafeASin(b.h)

	sinThetaI := wi.X
	cosThetaI := core.SafeSqrt(1 - core.Sqr(sinThetaI))
	phiI := math.Atan2(wi.Z, wi.Y)

	etap := core.SafeSqrt(core.Sqr(b.eta)-core.Sqr(sinThetaO)) / cosThetaO
	gammaT := core.SafeASin(b.h / etap)

	return b.pdf(sinThetaO, cosThetaO, sinThetaI, cosThetaI, phiI-phiO, gammaO, gammaT, b.apPDF(cosThetaO))
}

func (b *HairBxDF) String() string {
	return fmt.Sprintf("[ HairBxDF h: %g eta: %g sigma_a: %v beta_m: %g beta_n: %g ]", b.h, b.eta, b.sigmaA, b.betaM, b.betaN)
}

// SigmaAFromConcentration converts melanin concentrations to an absorption spectrum
func SigmaAFromConcentration(ce, cp float64) spectrum.Spectrum {
	return spectrum.NewRGBSpectrum(
		ce*eumelaninR+cp*pheomelaninR,
		ce*eumelaninG+cp*pheomelaninG,
		ce*eumelaninB+cp*pheomelaninB)
}

// SigmaAFromReflectance inverts the fiber color to an absorption coefficient
// for the given azimuthal roughness
func SigmaAFromReflectance(c spectrum.SampledSpectrum, betaN float64) spectrum.SampledSpectrum {
	denom := 5.969 - 0.215*betaN + 2.532*core.Sqr(betaN) - 10.73*math.Pow(betaN, 3) +
		5.574*math.Pow(betaN, 4) + 0.245*math.Pow(betaN, 5)
	var sigmaA spectrum.SampledSpectrum
	for i := range c {
		sigmaA[i] = core.Sqr(math.Log(c[i]) / denom)
	}
	return sigmaA
}

func hairI0(x float64) float64 {
	val := 0.0
	x2i := 1.0
	ifact := 1.0
	i4 := 1.0
	for i := 0; i < 10; i++ {
		if i > 1 {
			ifact *= float64(i)
		}
		val += x2i / (i4 * core.Sqr(ifact))
		x2i *= x * x
		i4 *= 4
	}
	return val
}

func hairLogI0(x float64) float64 {
	if x > 12 {
		return x + 0.5*(-math.Log(2*math.Pi)+math.Log(1/x)+1/(8*x))
	}
	return math.Log(hairI0(x))
}

func hairMp(cosThetaI, cosThetaO, sinThetaI, sinThetaO, v float64) float64 {
	a := cosThetaI * cosThetaO / v
	b := sinThetaI * sinThetaO / v
	if v <= .1 {
		return math.Exp(hairLogI0(a) - b - 1/v + 0.6931 + math.Log(1/(2*v)))
	}
	return (math.Exp(-b) * hairI0(a)) / (math.Sinh(1/v) * 2 * v)
}

func hairAp(cosThetaO, eta, h float64, t spectrum.SampledSpectrum) [hairPMax + 1]spectrum.SampledSpectrum {
	var ap [hairPMax + 1]spectrum.SampledSpectrum
	cosGammaO := core.SafeSqrt(1 - core.Sqr(h))
	f := FrDielectric(cosThetaO*cosGammaO, eta)

	ap[0] = spectrum.NewSampledSpectrum(f)
	ap[1] = t.Multiply(core.Sqr(1 - f))
	for p := 2; p < hairPMax; p++ {
		ap[p] = ap[p-1].MultiplyVec(t).Multiply(f)
	}
	denom := spectrum.NewSampledSpectrum(1).Subtract(t.Multiply(f))
	ap[hairPMax] = ap[hairPMax-1].MultiplyVec(t).Multiply(f).DivideVec(denom)
	return ap
}

func hairPhi(p int, gammaO, gammaT float64) float64 {
	return 2*float64(p)*gammaT - 2*gammaO + float64(p)*math.Pi
}

func logistic(x, s float64) float64 {
	x = math.Abs(x)
	return math.Exp(-x/s) / (s * core.Sqr(1+math.Exp(-x/s)))
}

func logisticCDF(x, s float64) float64 {
	return 1 / (1 + math.Exp(-x/s))
}

func trimmedLogistic(x, s, a, b float64) float64 {
	return logistic(x, s) / (logisticCDF(b, s) - logisticCDF(a, s))
}

func sampleTrimmedLogistic(u, s, a, b float64) float64 {
	k := logisticCDF(b, s) - logisticCDF(a, s)
	x := -s * math.Log(1/(u*k+logisticCDF(a, s))-1)
	return core.Clamp(x, a, b)
}

func hairNp(phi float64, p int, s, gammaO, gammaT float64) float64 {
	dphi := phi - hairPhi(p, gammaO, gammaT)
	for dphi > math.Pi {
		dphi -= 2 * math.Pi
	}
	for dphi < -math.Pi {
		dphi += 2 * math.Pi
	}
	return trimmedLogistic(dphi, s, -math.Pi, math.Pi)
}
