// Package shading turns surface interactions into scattering functions: it
// resolves mix materials, applies bump or normal mapping and asks the chosen
// material for its BSDF and BSSRDF.
package shading

import (
	"fmt"

	"github.com/df07/go-material-eval/pkg/bssrdf"
	"github.com/df07/go-material-eval/pkg/bxdf"
	"github.com/df07/go-material-eval/pkg/core"
	"github.com/df07/go-material-eval/pkg/log"
	"github.com/df07/go-material-eval/pkg/material"
	"github.com/df07/go-material-eval/pkg/spectrum"
	"github.com/df07/go-material-eval/pkg/texture"
)

var logger = log.New("shading")

// Scene is the read-only state shared by every shading call
type Scene struct {
	Materials *material.Table
	// Evaluator is tried first; materials it cannot handle fall back to
	// texture.UniversalTextureEvaluator.
	Evaluator texture.TextureEvaluator
}

// NewScene creates a scene that prefers eval, or the universal evaluator when eval is nil
func NewScene(materials *material.Table, eval texture.TextureEvaluator) *Scene {
	if eval == nil {
		eval = texture.UniversalTextureEvaluator{}
	}
	return &Scene{Materials: materials, Evaluator: eval}
}

// Point is one shading request
type Point struct {
	Interaction core.SurfaceInteraction
	Material    material.MaterialID
	WavelengthU float64                      // Sample used to pick the wavelengths
	Lambda      *spectrum.SampledWavelengths // Explicit wavelengths, overrides WavelengthU
	Wi          core.Vec3                    // Incident direction for summaries, zero means the mirrored wo
}

// Shaded is the outcome of shading a point. BSDF and BSSRDF refer to memory
// in the scratch buffer passed to Shade and are valid until it is reset.
type Shaded struct {
	Material    material.Material
	Interaction core.SurfaceInteraction
	Lambda      spectrum.SampledWavelengths
	BSDF        bxdf.BSDF
	BSSRDF      *bssrdf.TabulatedBSSRDF
	Fallback    bool // Universal evaluator was needed
}

// Shade evaluates the material bound to p. The only error is an unknown material ID;
// contract violations inside materials are fatal.
func Shade(scene *Scene, p Point, buf *core.ScratchBuffer) (Shaded, error) {
	universal := texture.UniversalTextureEvaluator{}

	m, err := scene.Materials.Lookup(p.Material)
	if err != nil {
		return Shaded{}, fmt.Errorf("shading point: %w", err)
	}

	res := Shaded{Interaction: p.Interaction}
	if p.Lambda != nil {
		res.Lambda = *p.Lambda
	} else {
		res.Lambda = spectrum.SampleVisibleWavelengths(p.WavelengthU)
	}
	si := &res.Interaction

	// Mix selection only reads the amount texture, which the universal evaluator can always do
	ctx := material.NewMaterialEvalContext(si)
	m = material.ChooseMaterial(scene.Materials, m, universal, &ctx)
	res.Material = m

	displacement, normalMap := material.GetDisplacement(m), material.GetNormalMap(m)
	if displacement != nil || normalMap != nil {
		bctx := material.NewBumpEvalContext(si)
		dpdu, dpdv := material.Bump(universal, displacement, normalMap, &bctx)
		ns := dpdu.Cross(dpdv).Normalize()
		si.SetShadingGeometry(ns, dpdu, dpdv, si.Shading.Dndu, si.Shading.Dndv, false)
		ctx = material.NewMaterialEvalContext(si)
	}

	eval := scene.Evaluator
	bsdf, ok := material.GetBSDF(m, eval, &ctx, &res.Lambda, buf)
	if !ok {
		eval = universal
		res.Fallback = true
		bsdf, _ = material.GetBSDF(m, eval, &ctx, &res.Lambda, buf)
	}
	res.BSDF = bsdf

	if material.HasSubsurfaceScattering(m) {
		res.BSSRDF = material.GetBSSRDF(m, eval, &ctx, &res.Lambda, buf)
	}
	return res, nil
}

// Record summarizes a shaded point without referencing scratch memory
type Record struct {
	Index     int
	Kind      material.Kind
	Name      string
	Flags     bxdf.Flags
	F         spectrum.SampledSpectrum
	PDF       float64
	Lambda    spectrum.SampledWavelengths
	HasBSSRDF bool
	Fallback  bool
	Err       error
}

// Summarize shades p and evaluates the resulting BSDF for the pair (wo, wi)
func Summarize(scene *Scene, index int, p Point, buf *core.ScratchBuffer) Record {
	res, err := Shade(scene, p, buf)
	if err != nil {
		return Record{Index: index, Err: err}
	}

	wo := res.Interaction.Wo
	wi := p.Wi
	if wi.IsZero() {
		// Mirror wo about the shading normal
		n := res.Interaction.Shading.N
		wi = n.Multiply(2 * wo.Dot(n)).Subtract(wo)
	}

	rec := Record{
		Index:     index,
		Kind:      res.Material.Kind(),
		Name:      res.Material.Name(),
		Lambda:    res.Lambda,
		HasBSSRDF: res.BSSRDF != nil,
		Fallback:  res.Fallback,
	}
	if res.BSDF.IsValid() {
		rec.Flags = res.BSDF.Flags()
		rec.F = res.BSDF.F(wo, wi, bxdf.Radiance)
		rec.PDF = res.BSDF.PDF(wo, wi, bxdf.Radiance, bxdf.SampleAll)
	}
	return rec
}
