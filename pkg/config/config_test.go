package config

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/df07/go-material-eval/pkg/core"
	"github.com/df07/go-material-eval/pkg/material"
	"github.com/df07/go-material-eval/pkg/scene"
	"github.com/df07/go-material-eval/pkg/shading"
	"github.com/df07/go-material-eval/pkg/texture"
)

const fullConfig = `{
	"evaluator": "basic",
	"wavelengths": [450, 550],
	"probe": {"shape": "quad", "u": 0.5, "v": 0.5, "wo": {"x": 0, "y": 0.6, "z": 0.8}, "points": 3},
	"materials": [
		{"name": "red", "type": "diffuse", "reflectance": [0.8, 0.1, 0.1], "sigma": 10},
		{"name": "glass", "type": "dielectric", "etaSpectrum": {"lambda": [400, 700], "values": [1.53, 1.51]}, "roughness": 0.1},
		{"name": "pane", "type": "thindielectric", "eta": 1.4},
		{"name": "copper", "type": "conductor", "reflectance": [0.95, 0.64, 0.54], "uroughness": 0.05, "vroughness": 0.2},
		{"name": "gold", "type": "conductor", "eta": [0.2, 0.9, 1.6], "k": [3.9, 1.8, 1.9]},
		{"name": "lacquer", "type": "coateddiffuse", "reflectance": 0.4, "thickness": 0.05, "albedo": 0.1, "g": 0.2, "maxdepth": 5, "nsamples": 2},
		{"name": "paint", "type": "coatedconductor", "reflectance": 0.9, "interface.roughness": 0.05, "conductor.roughness": 0.3, "interface.eta": 1.45},
		{"name": "leaf", "type": "diffusetransmission", "reflectance": 0.3, "transmittance": 0.4, "scale": 2},
		{"name": "hair", "type": "hair"},
		{"name": "satin", "type": "measured", "albedo": [0.6, 0.5, 0.4]},
		{"name": "rust", "type": "mix", "materials": ["copper", "red"], "amount": 0.25}
	],
	"presets": ["jade"]
}`

func TestDecodeAndBuild(t *testing.T) {
	cfg, err := Decode(strings.NewReader(fullConfig))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if *cfg.SampleU != DefaultSampleU {
		t.Errorf("Expected default sampleU, got %g", *cfg.SampleU)
	}
	eval, err := cfg.TextureEvaluator()
	if err != nil {
		t.Fatalf("TextureEvaluator: %v", err)
	}
	if _, ok := eval.(texture.BasicTextureEvaluator); !ok {
		t.Errorf("Expected the basic evaluator, got %T", eval)
	}

	built, err := cfg.BuildTable()
	if err != nil {
		t.Fatalf("BuildTable: %v", err)
	}

	expected := map[string]material.Kind{
		"red":     material.KindDiffuse,
		"glass":   material.KindDielectric,
		"pane":    material.KindThinDielectric,
		"copper":  material.KindConductor,
		"gold":    material.KindConductor,
		"lacquer": material.KindCoatedDiffuse,
		"paint":   material.KindCoatedConductor,
		"leaf":    material.KindDiffuseTransmission,
		"hair":    material.KindHair,
		"satin":   material.KindMeasured,
		"rust":    material.KindMix,
		"jade":    material.KindSubsurface,
	}
	if len(built.Order) != len(expected) {
		t.Errorf("Expected %d named materials, got %v", len(expected), built.Order)
	}
	for name, kind := range expected {
		id, ok := built.IDs[name]
		if !ok {
			t.Errorf("Material %q missing", name)
			continue
		}
		if got := built.Table.Get(id).Kind(); got != kind {
			t.Errorf("%s: expected %v, got %v", name, kind, got)
		}
	}

	hair := built.Table.Get(built.IDs["hair"]).(*material.Hair)
	if hair.Eumelanin == nil {
		t.Error("Hair without absorption should default to eumelanin")
	}
	lacquer := built.Table.Get(built.IDs["lacquer"]).(*material.CoatedDiffuse)
	if lacquer.Layer.MaxDepth != 5 || lacquer.Layer.NSamples != 2 {
		t.Errorf("Layer parameters not applied: %+v", lacquer.Layer)
	}

	scn := shading.NewScene(built.Table, eval)
	buf := core.NewScratchBuffer()
	for _, name := range built.Order {
		points := cfg.ProbePoints(built.IDs[name], rand.New(rand.NewSource(42)))
		if len(points) != 3 {
			t.Fatalf("Expected 3 probe points, got %d", len(points))
		}
		for _, p := range points {
			rec := shading.Summarize(scn, 0, p, buf)
			buf.Reset()
			if rec.Err != nil {
				t.Errorf("%s: %v", name, rec.Err)
			}
			if rec.Lambda.Lambda(0) != 450 || rec.Lambda.Lambda(1) != 550 || rec.Lambda.Lambda(3) != 550 {
				t.Errorf("%s: explicit wavelengths not used: %v", name, rec.Lambda)
			}
		}
	}
}

func TestProbeDefaults(t *testing.T) {
	cfg, err := Decode(strings.NewReader(`{"materials": [{"name": "m", "type": "diffuse"}]}`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	points := cfg.ProbePoints(0, rand.New(rand.NewSource(42)))
	if len(points) != 1 {
		t.Fatalf("Expected one point, got %d", len(points))
	}
	si := points[0].Interaction
	if si.UV != core.NewVec2(0.25, 0.5) {
		t.Errorf("Expected default uv (0.25, 0.5), got %v", si.UV)
	}
	if si.Wo.Subtract(si.N).Length() > 1e-9 {
		t.Errorf("Default wo should be the surface normal, got wo %v n %v", si.Wo, si.N)
	}
	if points[0].Lambda != nil || points[0].WavelengthU != DefaultSampleU {
		t.Errorf("Expected sampled wavelengths at u=%g", DefaultSampleU)
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		json string
		want error
	}{
		{"no materials", `{}`, ErrInvalidConfig},
		{"too many wavelengths", `{"wavelengths": [400, 450, 500, 550, 600], "presets": ["matte"]}`, ErrInvalidConfig},
		{"wavelength range", `{"wavelengths": [200], "presets": ["matte"]}`, ErrInvalidConfig},
		{"sampleU range", `{"sampleU": 1, "presets": ["matte"]}`, ErrInvalidConfig},
		{"evaluator", `{"evaluator": "gpu", "presets": ["matte"]}`, ErrInvalidConfig},
		{"shape", `{"probe": {"shape": "torus"}, "presets": ["matte"]}`, ErrInvalidConfig},
		{"zero wo", `{"probe": {"wo": {"x": 0, "y": 0, "z": 0}}, "presets": ["matte"]}`, ErrInvalidConfig},
		{"unnamed", `{"materials": [{"type": "diffuse"}]}`, ErrInvalidConfig},
		{"duplicate", `{"materials": [{"name": "a", "type": "diffuse"}, {"name": "a", "type": "diffuse"}]}`, ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.json))
			if !errors.Is(err, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, err)
			}
		})
	}

	if _, err := Decode(strings.NewReader(`{"presets": ["matte"], "colour": 1}`)); err == nil {
		t.Error("Expected unknown fields to be rejected")
	}
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name string
		json string
		want error
	}{
		{"unknown type", `{"materials": [{"name": "a", "type": "velvet"}]}`, ErrInvalidMaterial},
		{"conductor without data", `{"materials": [{"name": "a", "type": "conductor", "eta": 0.2}]}`, ErrInvalidMaterial},
		{"coated conductor without data", `{"materials": [{"name": "a", "type": "coatedconductor"}]}`, ErrInvalidMaterial},
		{"subsurface without data", `{"materials": [{"name": "a", "type": "subsurface", "sigma_a": 1}]}`, ErrInvalidMaterial},
		{"dielectric rgb eta", `{"materials": [{"name": "a", "type": "dielectric", "eta": [1.5, 1.5, 1.6]}]}`, ErrInvalidMaterial},
		{"measured without albedo", `{"materials": [{"name": "a", "type": "measured"}]}`, ErrInvalidMaterial},
		{"mix arity", `{"materials": [{"name": "a", "type": "diffuse"}, {"name": "m", "type": "mix", "materials": ["a"]}]}`, ErrInvalidMaterial},
		{"mix forward reference", `{"materials": [{"name": "m", "type": "mix", "materials": ["a", "b"]}, {"name": "a", "type": "diffuse"}, {"name": "b", "type": "diffuse"}]}`, ErrInvalidMaterial},
		{"unknown preset", `{"presets": ["unobtainium"]}`, scene.ErrUnknownPreset},
		{"preset shadows material", `{"materials": [{"name": "matte", "type": "diffuse"}], "presets": ["matte"]}`, ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Decode(strings.NewReader(tt.json))
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			_, err = cfg.BuildTable()
			if !errors.Is(err, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestValueForms(t *testing.T) {
	cfg, err := Decode(strings.NewReader(`{"materials": [{"name": "a", "type": "diffuse", "reflectance": 0.25}, {"name": "b", "type": "diffuse", "reflectance": [0.1, 0.2, 0.3]}]}`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if f, err := cfg.Materials[0].Reflectance.Float(); err != nil || math.Abs(f-0.25) > 0 {
		t.Errorf("Expected scalar 0.25, got %g %v", f, err)
	}
	if _, err := cfg.Materials[1].Reflectance.Float(); err == nil {
		t.Error("Expected an error reading an RGB value as a number")
	}
	if _, err := Decode(strings.NewReader(`{"materials": [{"name": "a", "type": "diffuse", "reflectance": [0.1, 0.2]}]}`)); err == nil {
		t.Error("Expected two-element colors to be rejected")
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "probe.json")
	if err := os.WriteFile(path, []byte(fullConfig), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.Materials) != 11 {
		t.Errorf("Expected 11 materials, got %d", len(cfg.Materials))
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Expected a not-exist error, got %v", err)
	}
}

func TestLoadResolvesNormalMap(t *testing.T) {
	dir := t.TempDir()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 128, B: 230, A: 255})
		}
	}
	f, err := os.Create(filepath.Join(dir, "bumps.png"))
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	f.Close()

	tests := []struct {
		name    string
		json    string
		wantErr bool
	}{
		{"diffuse", `{"materials": [{"name": "a", "type": "diffuse", "normalmap": "bumps.png"}]}`, false},
		{"hair", `{"materials": [{"name": "a", "type": "hair", "normalmap": "bumps.png"}]}`, true},
		{"missing file", `{"materials": [{"name": "a", "type": "diffuse", "normalmap": "nope.png"}]}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name+".json")
			if err := os.WriteFile(path, []byte(tt.json), 0o644); err != nil {
				t.Fatal(err)
			}
			cfg, err := Load(path)
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			built, err := cfg.BuildTable()
			if tt.wantErr {
				if err == nil {
					t.Error("Expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("BuildTable: %v", err)
			}
			m := built.Table.Get(built.IDs["a"])
			if m.GetNormalMap() == nil {
				t.Fatal("Expected the normal map to be attached")
			}

			// A tilted map moves the shading normal away from the geometric one
			p := cfg.ProbePoints(built.IDs["a"], rand.New(rand.NewSource(42)))[0]
			res, err := shading.Shade(shading.NewScene(built.Table, nil), p, core.NewScratchBuffer())
			if err != nil {
				t.Fatalf("Shade: %v", err)
			}
			if res.Interaction.Shading.N.Dot(res.Interaction.N) > 0.999 {
				t.Errorf("Shading normal %v not perturbed from %v", res.Interaction.Shading.N, res.Interaction.N)
			}
		})
	}
}
