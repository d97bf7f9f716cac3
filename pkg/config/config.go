// Package config loads JSON probe descriptions: which materials to build, where
// to probe them and at which wavelengths.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/df07/go-material-eval/pkg/core"
	"github.com/df07/go-material-eval/pkg/log"
	"github.com/df07/go-material-eval/pkg/spectrum"
	"github.com/df07/go-material-eval/pkg/texture"
)

var logger = log.New("config")

// ErrInvalidConfig is returned for documents that decode but describe an unusable probe
var ErrInvalidConfig = errors.New("invalid config")

// Defaults
const (
	DefaultSampleU   = 0.5
	DefaultEvaluator = "universal"
	DefaultShape     = "sphere"
	DefaultPoints    = 1
)

// ProbeCfg places the shading point on a unit shape
type ProbeCfg struct {
	Shape  string     `json:"shape,omitempty"` // sphere or quad
	U      *float64   `json:"u,omitempty"`
	V      *float64   `json:"v,omitempty"`
	Wo     *core.Vec3 `json:"wo,omitempty"` // Towards the viewer; defaults to the surface normal
	Wi     *core.Vec3 `json:"wi,omitempty"` // Defaults to the mirror direction of wo
	Points int        `json:"points,omitempty"`
}

// Config is a probe description
type Config struct {
	Wavelengths []float64     `json:"wavelengths,omitempty"` // Explicit wavelengths in nm, at most spectrum.NSamples
	SampleU     *float64      `json:"sampleU,omitempty"`     // Sample for visible wavelength sampling
	Evaluator   string        `json:"evaluator,omitempty"`   // universal or basic
	Probe       ProbeCfg      `json:"probe"`
	Materials   []MaterialCfg `json:"materials,omitempty"`
	Presets     []string      `json:"presets,omitempty"`

	dir string // Directory relative file paths resolve against
}

// Load reads and validates the config at path
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg, err := Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	cfg.dir = filepath.Dir(path)
	logger.Debugf("Loaded config from %s: %d materials, %d presets, evaluator %s",
		path, len(cfg.Materials), len(cfg.Presets), cfg.Evaluator)
	return cfg, nil
}

// Decode reads a config from r, applies defaults and validates it.
// Unknown fields are rejected.
func Decode(r io.Reader) (*Config, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	var cfg Config
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.SampleU == nil {
		u := DefaultSampleU
		c.SampleU = &u
	}
	if c.Evaluator == "" {
		c.Evaluator = DefaultEvaluator
	}
	if c.Probe.Shape == "" {
		c.Probe.Shape = DefaultShape
	}
	if c.Probe.U == nil {
		u := 0.25
		c.Probe.U = &u
	}
	if c.Probe.V == nil {
		v := 0.5
		c.Probe.V = &v
	}
	if c.Probe.Points <= 0 {
		c.Probe.Points = DefaultPoints
	}
}

// Validate checks everything that can be checked without building materials
func (c *Config) Validate() error {
	if len(c.Wavelengths) > spectrum.NSamples {
		return fmt.Errorf("%w: %d wavelengths given, at most %d allowed", ErrInvalidConfig, len(c.Wavelengths), spectrum.NSamples)
	}
	for _, l := range c.Wavelengths {
		if l < spectrum.LambdaMin || l > spectrum.LambdaMax {
			return fmt.Errorf("%w: wavelength %g outside [%g, %g]", ErrInvalidConfig, l, spectrum.LambdaMin, spectrum.LambdaMax)
		}
	}
	if u := *c.SampleU; u < 0 || u >= 1 {
		return fmt.Errorf("%w: sampleU %g outside [0, 1)", ErrInvalidConfig, u)
	}
	if _, err := c.TextureEvaluator(); err != nil {
		return err
	}
	switch c.Probe.Shape {
	case "sphere", "quad":
	default:
		return fmt.Errorf("%w: unknown probe shape %q", ErrInvalidConfig, c.Probe.Shape)
	}
	if c.Probe.Wo != nil && c.Probe.Wo.IsZero() {
		return fmt.Errorf("%w: probe wo must be non-zero", ErrInvalidConfig)
	}
	if len(c.Materials) == 0 && len(c.Presets) == 0 {
		return fmt.Errorf("%w: no materials or presets", ErrInvalidConfig)
	}

	names := map[string]bool{}
	for i, m := range c.Materials {
		if m.Name == "" {
			return fmt.Errorf("%w: material %d has no name", ErrInvalidConfig, i)
		}
		if names[m.Name] {
			return fmt.Errorf("%w: duplicate material name %q", ErrInvalidConfig, m.Name)
		}
		names[m.Name] = true
	}
	return nil
}

// TextureEvaluator returns the evaluator named by the config
func (c *Config) TextureEvaluator() (texture.TextureEvaluator, error) {
	switch c.Evaluator {
	case "universal":
		return texture.UniversalTextureEvaluator{}, nil
	case "basic":
		return texture.BasicTextureEvaluator{}, nil
	}
	return nil, fmt.Errorf("%w: unknown evaluator %q", ErrInvalidConfig, c.Evaluator)
}

// SampledWavelengths returns the explicit wavelengths padded by repeating the
// last one, or nil when wavelengths are to be sampled from SampleU
func (c *Config) SampledWavelengths() *spectrum.SampledWavelengths {
	if len(c.Wavelengths) == 0 {
		return nil
	}
	var lambda, pdf [spectrum.NSamples]float64
	for i := range lambda {
		lambda[i] = c.Wavelengths[min(i, len(c.Wavelengths)-1)]
		pdf[i] = 1
	}
	swl := spectrum.NewSampledWavelengths(lambda, pdf)
	return &swl
}
