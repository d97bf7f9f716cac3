package bssrdf

import (
	"fmt"
	"math"
	"sync"

	"github.com/df07/go-material-eval/pkg/bxdf"
	"github.com/df07/go-material-eval/pkg/core"
	"github.com/df07/go-material-eval/pkg/spectrum"
)

// Default resolution of the tabulated profile
const (
	DefaultRhoSamples    = 100
	DefaultRadiusSamples = 64
)

// Table stores the radial scattering profile for unit extinction, tabulated
// over single-scattering albedo and optical radius
type Table struct {
	RhoSamples    []float64
	RadiusSamples []float64
	Profile       []float64
	RhoEff        []float64
	ProfileCDF    []float64
}

// NewTable allocates an empty table
func NewTable(nRhoSamples, nRadiusSamples int) *Table {
	return &Table{
		RhoSamples:    make([]float64, nRhoSamples),
		RadiusSamples: make([]float64, nRadiusSamples),
		Profile:       make([]float64, nRhoSamples*nRadiusSamples),
		RhoEff:        make([]float64, nRhoSamples),
		ProfileCDF:    make([]float64, nRhoSamples*nRadiusSamples),
	}
}

// EvalProfile returns the tabulated profile entry
func (t *Table) EvalProfile(rhoIndex, radiusIndex int) float64 {
	return t.Profile[rhoIndex*len(t.RadiusSamples)+radiusIndex]
}

func (t *Table) String() string {
	return fmt.Sprintf("[ BSSRDFTable %d rho x %d radius ]", len(t.RhoSamples), len(t.RadiusSamples))
}

// ComputeBeamDiffusion fills t with photon beam diffusion profiles for
// phase asymmetry g and relative index eta
func ComputeBeamDiffusion(g, eta float64, t *Table) {
	nRho, nRadius := len(t.RhoSamples), len(t.RadiusSamples)

	// Radii grow geometrically to resolve the peak near zero
	t.RadiusSamples[0] = 0
	if nRadius > 1 {
		t.RadiusSamples[1] = 2.5e-3
	}
	for i := 2; i < nRadius; i++ {
		t.RadiusSamples[i] = t.RadiusSamples[i-1] * 1.2
	}

	for i := range t.RhoSamples {
		t.RhoSamples[i] = (1 - math.Exp(-8*float64(i)/float64(nRho-1))) / (1 - math.Exp(-8))
	}

	var wg sync.WaitGroup
	for i := 0; i < nRho; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rho := t.RhoSamples[i]
			row := t.Profile[i*nRadius : (i+1)*nRadius]
			for j, r := range t.RadiusSamples {
				row[j] = 2 * math.Pi * r * (BeamDiffusionSS(rho, 1-rho, g, eta, r) + BeamDiffusionMS(rho, 1-rho, g, eta, r))
			}
			t.RhoEff[i] = IntegrateCatmullRom(t.RadiusSamples, row, t.ProfileCDF[i*nRadius:(i+1)*nRadius])
		}(i)
	}
	wg.Wait()
}

// BeamDiffusionMS is the multiple scattering term of photon beam diffusion
func BeamDiffusionMS(sigmaS, sigmaA, g, eta, r float64) float64 {
	const nSamples = 100
	ed := 0.0

	// Reduced scattering coefficients
	sigmapS := sigmaS * (1 - g)
	sigmapT := sigmaA + sigmapS
	rhop := sigmapS / sigmapT

	dg := (2*sigmaA + sigmapT) / (3 * sigmapT * sigmapT)
	sigmaTr := core.SafeSqrt(sigmaA / dg)

	fm1, fm2 := FresnelMoment1(eta), FresnelMoment2(eta)
	ze := -2 * dg * (1 + 3*fm2) / (1 - 2*fm1)
	cPhi, cE := .25*(1-2*fm1), .5*(1-3*fm2)

	for i := 0; i < nSamples; i++ {
		// Real and virtual point sources
		zr := core.SampleExponential((float64(i)+0.5)/nSamples, sigmapT)
		zv := -zr + 2*ze
		dr := math.Sqrt(r*r + zr*zr)
		dv := math.Sqrt(r*r + zv*zv)

		phiD := core.Inv4Pi / dg * (math.Exp(-sigmaTr*dr)/dr - math.Exp(-sigmaTr*dv)/dv)
		edn := core.Inv4Pi * (zr*(1+sigmaTr*dr)*math.Exp(-sigmaTr*dr)/(dr*dr*dr) -
			zv*(1+sigmaTr*dv)*math.Exp(-sigmaTr*dv)/(dv*dv*dv))
		e := phiD*cPhi + edn*cE

		kappa := 1 - math.Exp(-2*sigmapT*(dr+zr))
		ed += kappa * rhop * rhop * e
	}
	return ed / nSamples
}

// BeamDiffusionSS is the single scattering term of photon beam diffusion
func BeamDiffusionSS(sigmaS, sigmaA, g, eta, r float64) float64 {
	const nSamples = 100
	sigmaT := sigmaA + sigmaS
	rho := sigmaS / sigmaT

	// Minimum t below which the refracted ray cannot reach r
	tCrit := r * core.SafeSqrt(eta*eta-1)

	ess := 0.0
	for i := 0; i < nSamples; i++ {
		ti := tCrit + core.SampleExponential((float64(i)+0.5)/nSamples, sigmaT)
		d := math.Sqrt(r*r + ti*ti)
		cosThetaO := ti / d
		ess += rho * math.Exp(-sigmaT*(d+tCrit)) / (d * d) *
			bxdf.HenyeyGreenstein(cosThetaO, g) * (1 - bxdf.FrDielectric(-cosThetaO, eta)) * math.Abs(cosThetaO)
	}
	return ess / nSamples
}

// FresnelMoment1 is the first moment of the dielectric Fresnel reflectance
func FresnelMoment1(eta float64) float64 {
	eta2, eta3, eta4, eta5 := eta*eta, eta*eta*eta, eta*eta*eta*eta, eta*eta*eta*eta*eta
	if eta < 1 {
		return 0.45966 - 1.73965*eta + 3.37668*eta2 - 3.904945*eta3 + 2.49277*eta4 - 0.68441*eta5
	}
	return -4.61686 + 11.1136*eta - 10.4646*eta2 + 5.11455*eta3 - 1.27198*eta4 + 0.12746*eta5
}

// FresnelMoment2 is the second moment of the dielectric Fresnel reflectance
func FresnelMoment2(eta float64) float64 {
	eta2, eta3, eta4, eta5 := eta*eta, eta*eta*eta, eta*eta*eta*eta, eta*eta*eta*eta*eta
	if eta < 1 {
		return 0.27614 - 0.87350*eta + 1.12077*eta2 - 0.65095*eta3 + 0.07883*eta4 + 0.04860*eta5
	}
	rEta := 1 / eta
	rEta2, rEta3 := rEta*rEta, rEta*rEta*rEta
	return -547.033 + 45.3087*rEta3 - 218.725*rEta2 + 458.843*rEta + 404.557*eta - 189.519*eta2 +
		54.9327*eta3 - 9.00603*eta4 + 0.63942*eta5
}

// SubsurfaceFromDiffuse inverts the table to find the scattering
// coefficients that produce diffuse reflectance rhoEff with mean free path mfp
func SubsurfaceFromDiffuse(t *Table, rhoEff, mfp spectrum.SampledSpectrum) (sigmaA, sigmaS spectrum.SampledSpectrum) {
	for c := range rhoEff {
		rho := InvertCatmullRom(t.RhoSamples, t.RhoEff, rhoEff[c])
		sigmaS[c] = rho / mfp[c]
		sigmaA[c] = (1 - rho) / mfp[c]
	}
	return sigmaA, sigmaS
}
