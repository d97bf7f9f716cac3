package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"path/filepath"

	"github.com/df07/go-material-eval/pkg/bxdf"
	"github.com/df07/go-material-eval/pkg/loaders"
	"github.com/df07/go-material-eval/pkg/material"
	"github.com/df07/go-material-eval/pkg/scene"
	"github.com/df07/go-material-eval/pkg/spectrum"
	"github.com/df07/go-material-eval/pkg/texture"
)

// ErrInvalidMaterial is returned for material definitions that cannot be built
var ErrInvalidMaterial = errors.New("invalid material")

// Value is a constant parameter written either as a number or as an [r, g, b] triple
type Value struct {
	rgb    [3]float64
	scalar bool
}

// UnmarshalJSON accepts a number or a three-element array
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var triple []float64
		if err := json.Unmarshal(data, &triple); err != nil {
			return err
		}
		if len(triple) != 3 {
			return fmt.Errorf("expected [r, g, b], got %d values", len(triple))
		}
		copy(v.rgb[:], triple)
		v.scalar = false
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	v.rgb = [3]float64{f, f, f}
	v.scalar = true
	return nil
}

// MarshalJSON writes the value back in the form it was read
func (v Value) MarshalJSON() ([]byte, error) {
	if v.scalar {
		return json.Marshal(v.rgb[0])
	}
	return json.Marshal(v.rgb[:])
}

// Float returns the scalar value
func (v *Value) Float() (float64, error) {
	if !v.scalar {
		return 0, fmt.Errorf("expected a number, got %v", v.rgb)
	}
	return v.rgb[0], nil
}

func (v *Value) spectrum() spectrum.Spectrum {
	if v.scalar {
		return spectrum.NewConstantSpectrum(v.rgb[0])
	}
	return spectrum.NewRGBSpectrum(v.rgb[0], v.rgb[1], v.rgb[2])
}

// SpectrumCfg is a piecewise-linear spectrum over wavelengths in nm
type SpectrumCfg struct {
	Lambda []float64 `json:"lambda"`
	Values []float64 `json:"values"`
}

// MaterialCfg describes one material. Which fields apply depends on Type,
// one of the names returned by material.Kinds.
type MaterialCfg struct {
	Name string `json:"name"`
	Type string `json:"type"`

	Reflectance   *Value `json:"reflectance,omitempty"`
	Transmittance *Value `json:"transmittance,omitempty"`
	Eta           *Value `json:"eta,omitempty"`
	K             *Value `json:"k,omitempty"`
	SigmaA        *Value `json:"sigma_a,omitempty"`
	SigmaS        *Value `json:"sigma_s,omitempty"`
	MFP           *Value `json:"mfp,omitempty"`
	Color         *Value `json:"color,omitempty"`
	Albedo        *Value `json:"albedo,omitempty"`

	EtaSpectrum *SpectrumCfg `json:"etaSpectrum,omitempty"`

	Roughness      *float64 `json:"roughness,omitempty"`
	URoughness     *float64 `json:"uroughness,omitempty"`
	VRoughness     *float64 `json:"vroughness,omitempty"`
	RemapRoughness bool     `json:"remaproughness,omitempty"`
	Sigma          *float64 `json:"sigma,omitempty"`
	Scale          *float64 `json:"scale,omitempty"`
	G              *float64 `json:"g,omitempty"`
	Thickness      *float64 `json:"thickness,omitempty"`
	MaxDepth       int      `json:"maxdepth,omitempty"`
	NSamples       int      `json:"nsamples,omitempty"`

	InterfaceRoughness *float64 `json:"interface.roughness,omitempty"`
	InterfaceEta       *float64 `json:"interface.eta,omitempty"`
	ConductorRoughness *float64 `json:"conductor.roughness,omitempty"`

	Eumelanin   *float64 `json:"eumelanin,omitempty"`
	Pheomelanin *float64 `json:"pheomelanin,omitempty"`
	BetaM       *float64 `json:"beta_m,omitempty"`
	BetaN       *float64 `json:"beta_n,omitempty"`
	Alpha       *float64 `json:"alpha,omitempty"`

	NormalMap string `json:"normalmap,omitempty"` // PNG or JPEG, relative to the config file

	Amount    *float64 `json:"amount,omitempty"`
	Materials []string `json:"materials,omitempty"`
}

// Built is the result of BuildTable
type Built struct {
	Table *material.Table
	IDs   map[string]material.MaterialID
	Order []string // Names in the order they were defined, presets last
}

// BuildTable builds every material and preset of the config. Mix materials
// may only name materials defined before them.
func (c *Config) BuildTable() (*Built, error) {
	b := &Built{
		Table: material.NewTable(),
		IDs:   map[string]material.MaterialID{},
	}
	for _, mc := range c.Materials {
		id, err := mc.build(b, c.dir)
		if err != nil {
			return nil, fmt.Errorf("material %q: %w", mc.Name, err)
		}
		b.add(mc.Name, id)
	}
	for _, name := range c.Presets {
		if _, ok := b.IDs[name]; ok {
			return nil, fmt.Errorf("%w: preset %q shadows a material", ErrInvalidConfig, name)
		}
		id, err := scene.AddPreset(b.Table, name)
		if err != nil {
			return nil, err
		}
		b.add(name, id)
	}
	logger.Infof("Built %d materials (%d table entries)", len(b.Order), b.Table.Len())
	return b, nil
}

func (b *Built) add(name string, id material.MaterialID) {
	b.IDs[name] = id
	b.Order = append(b.Order, name)
}

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidMaterial, fmt.Sprintf(format, args...))
}

func floatTex(v *float64) texture.FloatTexture {
	if v == nil {
		return nil
	}
	return texture.NewFloatConstant(*v)
}

func spectrumTex(v *Value) texture.SpectrumTexture {
	if v == nil {
		return nil
	}
	return texture.NewSpectrumConstant(v.spectrum())
}

// roughness resolves the shared and per-direction roughness fields
func (mc *MaterialCfg) roughness() (u, v texture.FloatTexture) {
	u, v = floatTex(mc.Roughness), floatTex(mc.Roughness)
	if mc.URoughness != nil {
		u = floatTex(mc.URoughness)
	}
	if mc.VRoughness != nil {
		v = floatTex(mc.VRoughness)
	}
	return u, v
}

// eta resolves a dielectric index given as a number or a spectrum table
func (mc *MaterialCfg) eta() (spectrum.Spectrum, error) {
	if mc.EtaSpectrum != nil {
		s, err := spectrum.NewPiecewiseLinearSpectrum(mc.EtaSpectrum.Lambda, mc.EtaSpectrum.Values)
		if err != nil {
			return nil, invalid("etaSpectrum: %v", err)
		}
		return s, nil
	}
	if mc.Eta == nil {
		return nil, nil
	}
	f, err := mc.Eta.Float()
	if err != nil {
		return nil, invalid("eta: %v", err)
	}
	return spectrum.NewConstantSpectrum(f), nil
}

func (mc *MaterialCfg) layer() material.LayerParams {
	return material.LayerParams{
		Thickness: floatTex(mc.Thickness),
		Albedo:    spectrumTex(mc.Albedo),
		G:         floatTex(mc.G),
		MaxDepth:  mc.MaxDepth,
		NSamples:  mc.NSamples,
	}
}

func (mc *MaterialCfg) build(b *Built, dir string) (material.MaterialID, error) {
	kind, ok := material.ParseKind(mc.Type)
	if !ok {
		return 0, invalid("unknown type %q", mc.Type)
	}
	if kind == material.KindMix {
		if mc.NormalMap != "" {
			return 0, invalid("mix materials take no normal map")
		}
		return mc.buildMix(b)
	}
	m, err := mc.buildMaterial(kind)
	if err != nil {
		return 0, err
	}
	if mc.NormalMap != "" {
		path := mc.NormalMap
		if !filepath.IsAbs(path) {
			path = filepath.Join(dir, path)
		}
		img, err := loaders.LoadNormalMap(path)
		if err != nil {
			return 0, err
		}
		if !material.SetNormalMap(m, img) {
			return 0, invalid("%s materials take no normal map", mc.Type)
		}
	}
	return b.Table.Add(m), nil
}

func (mc *MaterialCfg) buildMix(b *Built) (material.MaterialID, error) {
	if len(mc.Materials) != 2 {
		return 0, invalid("mix needs exactly two materials, got %d", len(mc.Materials))
	}
	var children [2]material.MaterialID
	for i, name := range mc.Materials {
		id, ok := b.IDs[name]
		if !ok {
			return 0, invalid("mix child %q is not defined before the mix", name)
		}
		children[i] = id
	}
	return b.Table.AddMix(floatTex(mc.Amount), children[0], children[1])
}

func (mc *MaterialCfg) buildMaterial(kind material.Kind) (material.Material, error) {
	uRough, vRough := mc.roughness()

	switch kind {
	case material.KindDiffuse:
		return material.NewDiffuse(spectrumTex(mc.Reflectance), floatTex(mc.Sigma)), nil

	case material.KindDiffuseTransmission:
		scale := 1.0
		if mc.Scale != nil {
			scale = *mc.Scale
		}
		return material.NewDiffuseTransmission(spectrumTex(mc.Reflectance), spectrumTex(mc.Transmittance), floatTex(mc.Sigma), scale), nil

	case material.KindDielectric:
		eta, err := mc.eta()
		if err != nil {
			return nil, err
		}
		return material.NewDielectric(eta, uRough, vRough, mc.RemapRoughness), nil

	case material.KindThinDielectric:
		eta, err := mc.eta()
		if err != nil {
			return nil, err
		}
		return material.NewThinDielectric(eta), nil

	case material.KindConductor:
		if (mc.Eta == nil || mc.K == nil) && mc.Reflectance == nil {
			return nil, invalid("conductor needs eta and k, or reflectance")
		}
		return material.NewConductor(spectrumTex(mc.Eta), spectrumTex(mc.K), spectrumTex(mc.Reflectance), uRough, vRough, mc.RemapRoughness), nil

	case material.KindCoatedDiffuse:
		eta, err := mc.eta()
		if err != nil {
			return nil, err
		}
		return material.NewCoatedDiffuse(spectrumTex(mc.Reflectance), uRough, vRough, eta, mc.layer(), mc.RemapRoughness), nil

	case material.KindCoatedConductor:
		if (mc.Eta == nil || mc.K == nil) && mc.Reflectance == nil {
			return nil, invalid("coated conductor needs eta and k, or reflectance")
		}
		var ifaceEta spectrum.Spectrum
		if mc.InterfaceEta != nil {
			ifaceEta = spectrum.NewConstantSpectrum(*mc.InterfaceEta)
		}
		return material.NewCoatedConductor(material.CoatedConductorParams{
			InterfaceURoughness: floatTex(mc.InterfaceRoughness),
			InterfaceVRoughness: floatTex(mc.InterfaceRoughness),
			InterfaceEta:        ifaceEta,
			ConductorURoughness: floatTex(mc.ConductorRoughness),
			ConductorVRoughness: floatTex(mc.ConductorRoughness),
			ConductorEta:        spectrumTex(mc.Eta),
			K:                   spectrumTex(mc.K),
			Reflectance:         spectrumTex(mc.Reflectance),
			Layer:               mc.layer(),
			RemapRoughness:      mc.RemapRoughness,
		}), nil

	case material.KindSubsurface:
		if (mc.SigmaA == nil || mc.SigmaS == nil) && (mc.Reflectance == nil || mc.MFP == nil) {
			return nil, invalid("subsurface needs sigma_a and sigma_s, or reflectance and mfp")
		}
		p := material.SubsurfaceParams{
			SigmaA:         spectrumTex(mc.SigmaA),
			SigmaS:         spectrumTex(mc.SigmaS),
			Reflectance:    spectrumTex(mc.Reflectance),
			MFP:            spectrumTex(mc.MFP),
			URoughness:     uRough,
			VRoughness:     vRough,
			RemapRoughness: mc.RemapRoughness,
		}
		if mc.Scale != nil {
			p.Scale = *mc.Scale
		}
		if mc.G != nil {
			p.G = *mc.G
		}
		if mc.Eta != nil {
			eta, err := mc.Eta.Float()
			if err != nil {
				return nil, invalid("eta: %v", err)
			}
			p.Eta = eta
		}
		return material.NewSubsurface(p), nil

	case material.KindHair:
		eumelanin := mc.Eumelanin
		if mc.SigmaA == nil && mc.Color == nil && mc.Eumelanin == nil && mc.Pheomelanin == nil {
			// Brown hair when no absorption is given
			e := 1.3
			eumelanin = &e
		}
		return material.NewHair(spectrumTex(mc.SigmaA), spectrumTex(mc.Color), floatTex(eumelanin), floatTex(mc.Pheomelanin),
			floatTex(etaScalar(mc.Eta)), floatTex(mc.BetaM), floatTex(mc.BetaN), floatTex(mc.Alpha)), nil

	case material.KindMeasured:
		if mc.Albedo == nil {
			return nil, invalid("measured material needs an albedo to tabulate")
		}
		albedo := mc.Albedo.spectrum()
		brdf, err := bxdf.TabulateMeasuredBRDF(mc.Name, 8, 8, 4, []float64{400, 500, 600, 700},
			func(thetaH, thetaD, phiD, lambda float64) float64 {
				return albedo.Evaluate(lambda) / math.Pi
			})
		if err != nil {
			return nil, invalid("tabulating %q: %v", mc.Name, err)
		}
		return material.NewMeasured(brdf), nil
	}
	return nil, invalid("type %q cannot be built here", mc.Type)
}

func etaScalar(v *Value) *float64 {
	if v == nil {
		return nil
	}
	f := v.rgb[0]
	return &f
}
