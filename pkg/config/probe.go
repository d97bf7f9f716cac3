package config

import (
	"math/rand"

	"github.com/df07/go-material-eval/pkg/core"
	"github.com/df07/go-material-eval/pkg/geometry"
	"github.com/df07/go-material-eval/pkg/material"
	"github.com/df07/go-material-eval/pkg/shading"
)

// probeShape returns the unit shape the probe sits on
func (c *Config) probeShape(id material.MaterialID) geometry.Shape {
	if c.Probe.Shape == "quad" {
		return geometry.NewQuad(core.NewVec3(-0.5, -0.5, 0), core.NewVec3(1, 0, 0), core.NewVec3(0, 1, 0), id)
	}
	return geometry.NewSphere(core.Vec3{}, 1, id)
}

// ProbePoints returns the shading points for material id. The first point sits
// at the configured (u, v); further points are spread uniformly over the
// shape with random, and each draws its own wavelength sample.
func (c *Config) ProbePoints(id material.MaterialID, random *rand.Rand) []shading.Point {
	shape := c.probeShape(id)
	lambda := c.SampledWavelengths()

	points := make([]shading.Point, c.Probe.Points)
	for i := range points {
		uv := core.NewVec2(*c.Probe.U, *c.Probe.V)
		wavelengthU := *c.SampleU
		if i > 0 {
			uv = core.NewVec2(random.Float64(), random.Float64())
			wavelengthU = random.Float64()
		}

		wo := shape.InteractionAt(uv, core.NewVec3(0, 0, 1)).N
		if c.Probe.Wo != nil {
			wo = *c.Probe.Wo
		}
		p := shading.Point{
			Interaction: shape.InteractionAt(uv, wo),
			Material:    id,
			WavelengthU: wavelengthU,
			Lambda:      lambda,
		}
		if c.Probe.Wi != nil {
			p.Wi = c.Probe.Wi.Normalize()
		}
		points[i] = p
	}
	return points
}
