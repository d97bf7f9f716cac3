package scene

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/df07/go-material-eval/pkg/bxdf"
	"github.com/df07/go-material-eval/pkg/core"
	"github.com/df07/go-material-eval/pkg/material"
	"github.com/df07/go-material-eval/pkg/spectrum"
	"github.com/df07/go-material-eval/pkg/texture"
)

// ErrUnknownPreset is returned for preset names that are not registered
var ErrUnknownPreset = errors.New("unknown preset")

// PresetInfo describes a named preset material
type PresetInfo struct {
	Name        string `json:"name"`
	Kind        string `json:"kind"`
	Description string `json:"description"`
}

// preset builds its material into a table. Presets made of several materials
// (mixes) add their children first.
type preset struct {
	info  PresetInfo
	build func(t *material.Table) material.MaterialID
}

func rgb(r, g, b float64) texture.SpectrumTexture {
	return texture.NewSpectrumConstant(spectrum.NewRGBSpectrum(r, g, b))
}

func constant(v float64) texture.FloatTexture {
	return texture.NewFloatConstant(v)
}

func piecewise(lambdas, values []float64) *spectrum.PiecewiseLinearSpectrum {
	s, err := spectrum.NewPiecewiseLinearSpectrum(lambdas, values)
	core.CheckFatal(err == nil, "preset spectrum: %v", err)
	return s
}

var visibleSamples = []float64{400, 500, 600, 700}

// Crown glass refractive index
var bk7 = []float64{1.5308, 1.5214, 1.5163, 1.5131}

// Gold complex refractive index
var (
	goldEta = []float64{1.658, 0.916, 0.250, 0.160}
	goldK   = []float64{1.956, 1.840, 2.970, 3.960}
)

var presets = []preset{
	{PresetInfo{"matte", "diffuse", "Lambertian grey"}, func(t *material.Table) material.MaterialID {
		return t.Add(material.NewDiffuse(rgb(0.5, 0.5, 0.5), nil))
	}},
	{PresetInfo{"clay", "diffuse", "Oren-Nayar terracotta, sigma 20 degrees"}, func(t *material.Table) material.MaterialID {
		return t.Add(material.NewDiffuse(rgb(0.65, 0.35, 0.2), constant(20)))
	}},
	{PresetInfo{"glass", "dielectric", "Smooth glass, eta 1.5"}, func(t *material.Table) material.MaterialID {
		return t.Add(material.NewDielectric(nil, nil, nil, false))
	}},
	{PresetInfo{"frosted-glass", "dielectric", "Rough glass with remapped roughness 0.3"}, func(t *material.Table) material.MaterialID {
		return t.Add(material.NewDielectric(nil, constant(0.3), constant(0.3), true))
	}},
	{PresetInfo{"crown-glass", "dielectric", "Dispersive BK7 glass"}, func(t *material.Table) material.MaterialID {
		return t.Add(material.NewDielectric(piecewise(visibleSamples, bk7), nil, nil, false))
	}},
	{PresetInfo{"window", "thindielectric", "Thin pane of glass"}, func(t *material.Table) material.MaterialID {
		return t.Add(material.NewThinDielectric(nil))
	}},
	{PresetInfo{"gold", "conductor", "Gold from measured eta and k, roughness 0.05"}, func(t *material.Table) material.MaterialID {
		eta := texture.NewSpectrumConstant(piecewise(visibleSamples, goldEta))
		k := texture.NewSpectrumConstant(piecewise(visibleSamples, goldK))
		return t.Add(material.NewConductor(eta, k, nil, constant(0.05), constant(0.05), false))
	}},
	{PresetInfo{"copper", "conductor", "Copper from an artist reflectance"}, func(t *material.Table) material.MaterialID {
		return t.Add(material.NewConductor(nil, nil, rgb(0.95, 0.64, 0.54), constant(0.1), constant(0.1), true))
	}},
	{PresetInfo{"brushed-steel", "conductor", "Anisotropic steel"}, func(t *material.Table) material.MaterialID {
		return t.Add(material.NewConductor(nil, nil, rgb(0.56, 0.57, 0.58), constant(0.02), constant(0.25), false))
	}},
	{PresetInfo{"plastic", "coateddiffuse", "Red diffuse base under a smooth coat"}, func(t *material.Table) material.MaterialID {
		return t.Add(material.NewCoatedDiffuse(rgb(0.6, 0.08, 0.08), nil, nil, nil, material.LayerParams{}, false))
	}},
	{PresetInfo{"varnished-wood", "coateddiffuse", "Checkered wood under a thick amber varnish"}, func(t *material.Table) material.MaterialID {
		wood := texture.NewSpectrumImageTexture(
			texture.NewCheckerboardImage(64, 64, 8, core.NewVec3(0.45, 0.28, 0.12), core.NewVec3(0.35, 0.2, 0.08)),
			texture.WrapRepeat, 1)
		layer := material.LayerParams{Thickness: constant(0.1), Albedo: rgb(0.3, 0.2, 0.05), G: constant(0.3), MaxDepth: 10, NSamples: 1}
		return t.Add(material.NewCoatedDiffuse(wood, constant(0.05), constant(0.05), nil, layer, false))
	}},
	{PresetInfo{"car-paint", "coatedconductor", "Gold flake under a clear coat"}, func(t *material.Table) material.MaterialID {
		return t.Add(material.NewCoatedConductor(material.CoatedConductorParams{
			ConductorEta:        texture.NewSpectrumConstant(piecewise(visibleSamples, goldEta)),
			K:                   texture.NewSpectrumConstant(piecewise(visibleSamples, goldK)),
			ConductorURoughness: constant(0.2),
			ConductorVRoughness: constant(0.2),
		}))
	}},
	{PresetInfo{"skin", "subsurface", "Skin-like medium from reflectance and mean free path"}, func(t *material.Table) material.MaterialID {
		return t.Add(material.NewSubsurface(material.SubsurfaceParams{
			Reflectance: rgb(0.83, 0.58, 0.45),
			MFP:         rgb(1.2, 0.45, 0.25),
			Scale:       1,
			Eta:         1.4,
		}))
	}},
	{PresetInfo{"jade", "subsurface", "Green medium from absorption and scattering coefficients"}, func(t *material.Table) material.MaterialID {
		return t.Add(material.NewSubsurface(material.SubsurfaceParams{
			SigmaA:         rgb(0.5, 0.05, 0.4),
			SigmaS:         rgb(2, 3, 2),
			Scale:          5,
			G:              0.2,
			URoughness:     constant(0.1),
			VRoughness:     constant(0.1),
			RemapRoughness: true,
		}))
	}},
	{PresetInfo{"hair-brown", "hair", "Brown hair, eumelanin 1.3"}, func(t *material.Table) material.MaterialID {
		return t.Add(material.NewHair(nil, nil, constant(1.3), nil, nil, nil, nil, nil))
	}},
	{PresetInfo{"hair-dyed", "hair", "Hair absorption derived from a target color"}, func(t *material.Table) material.MaterialID {
		return t.Add(material.NewHair(nil, rgb(0.7, 0.2, 0.3), nil, nil, nil, nil, nil, nil))
	}},
	{PresetInfo{"leaf", "diffusetransmission", "Thin leaf that transmits green light"}, func(t *material.Table) material.MaterialID {
		return t.Add(material.NewDiffuseTransmission(rgb(0.18, 0.35, 0.08), rgb(0.12, 0.4, 0.05), nil, 1))
	}},
	{PresetInfo{"satin", "measured", "Tabulated sheen-like reflectance"}, func(t *material.Table) material.MaterialID {
		return t.Add(material.NewMeasured(satinBRDF()))
	}},
	{PresetInfo{"checker-mix", "mix", "Checkerboard of glass and matte"}, func(t *material.Table) material.MaterialID {
		glass := t.Add(material.NewDielectric(nil, nil, nil, false))
		matte := t.Add(material.NewDiffuse(rgb(0.8, 0.8, 0.8), nil))
		amount := &texture.FloatCheckerboardTexture{Tex1: constant(0), Tex2: constant(1), UScale: 8, VScale: 8}
		id, err := t.AddMix(amount, glass, matte)
		core.CheckFatal(err == nil, "checker-mix: %v", err)
		return id
	}},
	{PresetInfo{"dust", "mix", "Copper with a 30 percent dusting of clay"}, func(t *material.Table) material.MaterialID {
		copper := t.Add(material.NewConductor(nil, nil, rgb(0.95, 0.64, 0.54), constant(0.1), constant(0.1), true))
		clay := t.Add(material.NewDiffuse(rgb(0.65, 0.35, 0.2), constant(20)))
		id, err := t.AddMix(constant(0.3), copper, clay)
		core.CheckFatal(err == nil, "dust: %v", err)
		return id
	}},
	{PresetInfo{"hammered", "diffuse", "Matte with a rippled displacement"}, func(t *material.Table) material.MaterialID {
		d := material.NewDiffuse(rgb(0.5, 0.5, 0.55), nil)
		d.Displacement = texture.FloatFuncTexture(func(ctx texture.TextureEvalContext) float64 {
			return 0.01 * math.Sin(40*ctx.UV.X) * math.Sin(40*ctx.UV.Y)
		})
		return t.Add(d)
	}},
	{PresetInfo{"tiles", "diffuse", "Matte with a tilted normal map"}, func(t *material.Table) material.MaterialID {
		d := material.NewDiffuse(rgb(0.7, 0.7, 0.65), nil)
		d.NormalMap = texture.NewConstantNormalMap(16, 16, core.NewVec3(0.2, 0.1, 1))
		return t.Add(d)
	}},
}

// satinBRDF tabulates a sheen lobe that brightens towards grazing difference angles
func satinBRDF() *bxdf.MeasuredBRDF {
	brdf, err := bxdf.TabulateMeasuredBRDF("satin", 16, 16, 8, visibleSamples,
		func(thetaH, thetaD, phiD, lambda float64) float64 {
			sheen := math.Pow(math.Sin(thetaD), 4)
			tint := 0.3 + 0.2*(lambda-400)/300
			return (tint + 0.5*sheen) / math.Pi
		})
	core.CheckFatal(err == nil, "satin BRDF: %v", err)
	return brdf
}

// ListPresets returns the registered presets sorted by name
func ListPresets() []PresetInfo {
	infos := make([]PresetInfo, len(presets))
	for i, p := range presets {
		infos[i] = p.info
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}

// AddPreset builds the named preset into t and returns the ID of its top-level material
func AddPreset(t *material.Table, name string) (material.MaterialID, error) {
	for _, p := range presets {
		if p.info.Name == name {
			return p.build(t), nil
		}
	}
	return 0, fmt.Errorf("%q: %w", name, ErrUnknownPreset)
}
