package bxdf

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/df07/go-material-eval/pkg/core"
	"github.com/df07/go-material-eval/pkg/spectrum"
)

// LayeredConfig holds the random walk parameters shared by coated kernels
type LayeredConfig struct {
	Thickness float64
	Albedo    spectrum.SampledSpectrum
	G         float64
	MaxDepth  int
	NSamples  int
}

// layered estimates scattering from a dielectric coating over a base kernel
// with a stochastic walk through a participating slab between them. Both
// coated variants are two-sided.
type layered struct {
	top    *DielectricBxDF
	bottom BxDF
	cfg    LayeredConfig
}

func normalizeConfig(cfg LayeredConfig) LayeredConfig {
	cfg.Thickness = math.Max(cfg.Thickness, math.SmallestNonzeroFloat32)
	if cfg.NSamples < 1 {
		cfg.NSamples = 1
	}
	return cfg
}

// walkRNG is seeded from the query so that repeated evaluations agree
type walkRNG struct {
	r *rand.Rand
}

func newWalkRNG(a, b core.Vec3) walkRNG {
	return walkRNG{r: rand.New(rand.NewPCG(core.Hash([]core.Vec3{a}), core.Hash([]core.Vec3{b})))}
}

func (w walkRNG) float() float64 {
	return math.Min(w.r.Float64(), core.OneMinusEpsilon)
}

func (w walkRNG) vec2() core.Vec2 {
	return core.NewVec2(w.float(), w.float())
}

func tr(dz float64, w core.Vec3) float64 {
	if math.Abs(dz) <= math.SmallestNonzeroFloat64 {
		return 1
	}
	return math.Exp(-math.Abs(dz / w.Z))
}

func (l layered) Flags() Flags {
	topFlags, bottomFlags := l.top.Flags(), l.bottom.Flags()
	flags := Reflection
	if topFlags.IsSpecular() {
		flags |= Specular
	}
	if topFlags.IsDiffuse() || bottomFlags.IsDiffuse() || !l.cfg.Albedo.IsZero() {
		flags |= Diffuse
	} else if topFlags.IsGlossy() || bottomFlags.IsGlossy() {
		flags |= Glossy
	}
	if topFlags.IsTransmissive() && bottomFlags.IsTransmissive() {
		flags |= Transmission
	}
	return flags
}

func (l layered) F(wo, wi core.Vec3, mode TransportMode) spectrum.SampledSpectrum {
	var f spectrum.SampledSpectrum
	if wo.Z < 0 {
		wo, wi = wo.Negate(), wi.Negate()
	}

	// Two-sided: light always enters through the top interface
	var enter BxDF = l.top
	var exit, nonExit BxDF = l.top, l.bottom
	exitZ := l.cfg.Thickness
	if !core.SameHemisphere(wo, wi) {
		exit, nonExit = l.bottom, l.top
		exitZ = 0
	}

	nSamples := l.cfg.NSamples
	if core.SameHemisphere(wo, wi) {
		f = enter.F(wo, wi, mode).Multiply(float64(nSamples))
	}

	rng := newWalkRNG(wo, wi)
	phase := NewHGPhaseFunction(l.cfg.G)

	for s := 0; s < nSamples; s++ {
		wos, ok := enter.SampleF(wo, rng.float(), rng.vec2(), mode, SampleTransmission)
		if !ok || wos.F.IsZero() || wos.PDF == 0 || wos.Wi.Z == 0 {
			continue
		}

		// Sample the exit interface from wi as if light arrived from there
		wis, ok := exit.SampleF(wi, rng.float(), rng.vec2(), mode.Flip(), SampleTransmission)
		if !ok || wis.F.IsZero() || wis.PDF == 0 || wis.Wi.Z == 0 {
			continue
		}

		beta := wos.F.Multiply(core.AbsCosTheta(wos.Wi) / wos.PDF)
		z := l.cfg.Thickness
		w := wos.Wi

		for depth := 0; depth < l.cfg.MaxDepth; depth++ {
			if depth > 3 && beta.MaxComponent() < 0.25 {
				q := math.Max(0, 1-beta.MaxComponent())
				if rng.float() < q {
					break
				}
				beta = beta.Multiply(1 / (1 - q))
			}

			if l.cfg.Albedo.IsZero() {
				if z == l.cfg.Thickness {
					z = 0
				} else {
					z = l.cfg.Thickness
				}
				beta = beta.Multiply(tr(l.cfg.Thickness, w))
			} else {
				dz := core.SampleExponential(rng.float(), 1/math.Abs(w.Z))
				zp := z - dz
				if w.Z > 0 {
					zp = z + dz
				}
				if zp == z {
					continue
				}
				if 0 < zp && zp < l.cfg.Thickness {
					// Scattering inside the slab: connect to the exit sample
					wt := 1.0
					if !exit.Flags().IsSpecular() {
						wt = PowerHeuristic(1, wis.PDF, 1, phase.PDF(w.Negate(), wis.Wi.Negate()))
					}
					contrib := beta.MultiplyVec(l.cfg.Albedo).MultiplyVec(wis.F).
						Multiply(phase.P(w.Negate(), wis.Wi.Negate()) * wt * tr(zp-exitZ, wis.Wi) / wis.PDF)
					f = f.Add(contrib)

					ps, ok := phase.SampleP(w.Negate(), rng.vec2())
					if !ok || ps.PDF == 0 || ps.Wi.Z == 0 {
						continue
					}
					beta = beta.MultiplyVec(l.cfg.Albedo).Multiply(ps.P / ps.PDF)
					w = ps.Wi
					z = zp

					if ((z < exitZ && w.Z > 0) || (z > exitZ && w.Z < 0)) && !exit.Flags().IsSpecular() {
						fExit := exit.F(w.Negate(), wi, mode)
						if !fExit.IsZero() {
							exitPDF := exit.PDF(w.Negate(), wi, mode, SampleTransmission)
							wt := PowerHeuristic(1, ps.PDF, 1, exitPDF)
							f = f.Add(beta.MultiplyVec(fExit).Multiply(tr(zp-exitZ, ps.Wi) * wt))
						}
					}
					continue
				}
				z = core.Clamp(zp, 0, l.cfg.Thickness)
			}

			if z == exitZ {
				es, ok := exit.SampleF(w.Negate(), rng.float(), rng.vec2(), mode, SampleReflection)
				if !ok || es.F.IsZero() || es.PDF == 0 || es.Wi.Z == 0 {
					break
				}
				beta = beta.MultiplyVec(es.F).Multiply(core.AbsCosTheta(es.Wi) / es.PDF)
				w = es.Wi
				continue
			}

			if !nonExit.Flags().IsSpecular() {
				wt := 1.0
				if !exit.Flags().IsSpecular() {
					wt = PowerHeuristic(1, wis.PDF, 1, nonExit.PDF(w.Negate(), wis.Wi.Negate(), mode, SampleAll))
				}
				contrib := beta.MultiplyVec(nonExit.F(w.Negate(), wis.Wi.Negate(), mode)).MultiplyVec(wis.F).
					Multiply(core.AbsCosTheta(wis.Wi) * wt * tr(l.cfg.Thickness, wis.Wi) / wis.PDF)
				f = f.Add(contrib)
			}

			bs, ok := nonExit.SampleF(w.Negate(), rng.float(), rng.vec2(), mode, SampleReflection)
			if !ok || bs.F.IsZero() || bs.PDF == 0 || bs.Wi.Z == 0 {
				break
			}
			beta = beta.MultiplyVec(bs.F).Multiply(core.AbsCosTheta(bs.Wi) / bs.PDF)
			w = bs.Wi

			if !exit.Flags().IsSpecular() {
				fExit := exit.F(w.Negate(), wi, mode)
				if !fExit.IsZero() {
					wt := 1.0
					if !nonExit.Flags().IsSpecular() {
						exitPDF := exit.PDF(w.Negate(), wi, mode, SampleTransmission)
						wt = PowerHeuristic(1, bs.PDF, 1, exitPDF)
					}
					f = f.Add(beta.MultiplyVec(fExit).Multiply(tr(l.cfg.Thickness, bs.Wi) * wt))
				}
			}
		}
	}
	return f.Multiply(1 / float64(nSamples))
}

func (l layered) SampleF(wo core.Vec3, uc float64, u core.Vec2, mode TransportMode, sampleFlags ReflTransFlags) (Sample, bool) {
	flipWi := false
	if wo.Z < 0 {
		wo = wo.Negate()
		flipWi = true
	}

	bs, ok := l.top.SampleF(wo, uc, u, mode, SampleAll)
	if !ok || bs.F.IsZero() || bs.PDF == 0 || bs.Wi.Z == 0 {
		return Sample{}, false
	}
	if bs.IsReflection() {
		if flipWi {
			bs.Wi = bs.Wi.Negate()
		}
		bs.PDFIsProportional = true
		return bs, true
	}

	w := bs.Wi
	specularPath := bs.IsSpecular()
	rng := newWalkRNG(wo, core.NewVec3(uc, u.X, u.Y))

	f := bs.F.Multiply(core.AbsCosTheta(bs.Wi))
	pdf := bs.PDF
	z := l.cfg.Thickness
	phase := NewHGPhaseFunction(l.cfg.G)

	for depth := 0; depth < l.cfg.MaxDepth; depth++ {
		rrBeta := f.MaxComponent() / pdf
		if depth > 3 && rrBeta < 0.25 {
			q := math.Max(0, 1-rrBeta)
			if rng.float() < q {
				return Sample{}, false
			}
			pdf *= 1 - q
		}
		if w.Z == 0 {
			return Sample{}, false
		}

		if !l.cfg.Albedo.IsZero() {
			dz := core.SampleExponential(rng.float(), 1/core.AbsCosTheta(w))
			zp := z - dz
			if w.Z > 0 {
				zp = z + dz
			}
			if zp == z {
				return Sample{}, false
			}
			if 0 < zp && zp < l.cfg.Thickness {
				ps, ok := phase.SampleP(w.Negate(), rng.vec2())
				if !ok || ps.PDF == 0 || ps.Wi.Z == 0 {
					return Sample{}, false
				}
				f = f.MultiplyVec(l.cfg.Albedo).Multiply(ps.P)
				pdf *= ps.PDF
				specularPath = false
				w = ps.Wi
				z = zp
				continue
			}
			z = core.Clamp(zp, 0, l.cfg.Thickness)
		} else {
			if z == l.cfg.Thickness {
				z = 0
			} else {
				z = l.cfg.Thickness
			}
			f = f.Multiply(tr(l.cfg.Thickness, w))
		}

		var iface BxDF = l.top
		if z == 0 {
			iface = l.bottom
		}

		bs, ok := iface.SampleF(w.Negate(), rng.float(), rng.vec2(), mode, SampleAll)
		if !ok || bs.F.IsZero() || bs.PDF == 0 || bs.Wi.Z == 0 {
			return Sample{}, false
		}
		f = f.MultiplyVec(bs.F)
		pdf *= bs.PDF
		specularPath = specularPath && bs.IsSpecular()
		w = bs.Wi

		if bs.IsTransmission() {
			flags := Transmission
			if core.SameHemisphere(wo, w) {
				flags = Reflection
			}
			if specularPath {
				flags |= Specular
			} else {
				flags |= Glossy
			}
			if flipWi {
				w = w.Negate()
			}
			return Sample{F: f, Wi: w, PDF: pdf, Flags: flags, Eta: 1, PDFIsProportional: true}, true
		}

		f = f.Multiply(core.AbsCosTheta(bs.Wi))
	}
	return Sample{}, false
}

func (l layered) PDF(wo, wi core.Vec3, mode TransportMode, sampleFlags ReflTransFlags) float64 {
	if wo.Z < 0 {
		wo, wi = wo.Negate(), wi.Negate()
	}

	rng := newWalkRNG(wi, wo)
	nSamples := l.cfg.NSamples

	pdfSum := 0.0
	if core.SameHemisphere(wo, wi) {
		pdfSum += float64(nSamples) * l.top.PDF(wo, wi, mode, SampleReflection)
	}

	for s := 0; s < nSamples; s++ {
		if core.SameHemisphere(wo, wi) {
			// TRT term
			var rIface, tIface BxDF = l.bottom, l.top
			wos, okO := tIface.SampleF(wo, rng.float(), rng.vec2(), mode, SampleTransmission)
			wis, okI := tIface.SampleF(wi, rng.float(), rng.vec2(), mode.Flip(), SampleTransmission)
			if okO && !wos.F.IsZero() && wos.PDF > 0 && okI && !wis.F.IsZero() && wis.PDF > 0 {
				if tIface.Flags().IsSpecular() {
					pdfSum += rIface.PDF(wos.Wi.Negate(), wis.Wi.Negate(), mode, SampleAll)
				} else {
					rs, ok := rIface.SampleF(wos.Wi.Negate(), rng.float(), rng.vec2(), mode, SampleAll)
					if ok && !rs.F.IsZero() && rs.PDF > 0 {
						if !rIface.Flags().IsSpecular() {
							rPDF := rIface.PDF(wos.Wi.Negate(), wis.Wi.Negate(), mode, SampleAll)
							pdfSum += PowerHeuristic(1, wis.PDF, 1, rPDF) * rPDF

							tPDF := tIface.PDF(rs.Wi.Negate(), wi, mode, SampleAll)
							pdfSum += PowerHeuristic(1, rs.PDF, 1, tPDF) * tPDF
						} else {
							pdfSum += tIface.PDF(rs.Wi.Negate(), wi, mode, SampleAll)
						}
					}
				}
			}
			continue
		}

		// TT term
		var toIface, tiIface BxDF = l.top, l.bottom
		wos, ok := toIface.SampleF(wo, rng.float(), rng.vec2(), mode, SampleAll)
		if !ok || wos.F.IsZero() || wos.PDF == 0 || wos.Wi.Z == 0 || wos.IsReflection() {
			continue
		}
		wis, ok := tiIface.SampleF(wi, rng.float(), rng.vec2(), mode.Flip(), SampleAll)
		if !ok || wis.F.IsZero() || wis.PDF == 0 || wis.Wi.Z == 0 || wis.IsReflection() {
			continue
		}
		switch {
		case toIface.Flags().IsSpecular():
			pdfSum += tiIface.PDF(wos.Wi.Negate(), wi, mode, SampleAll)
		case tiIface.Flags().IsSpecular():
			pdfSum += toIface.PDF(wo, wis.Wi.Negate(), mode, SampleAll)
		default:
			pdfSum += (toIface.PDF(wo, wis.Wi.Negate(), mode, SampleAll) + tiIface.PDF(wos.Wi.Negate(), wi, mode, SampleAll)) / 2
		}
	}

	// Blend with a uniform density to cover paths the estimate missed
	return core.Lerp(0.9, 1/(4*math.Pi), pdfSum/float64(nSamples))
}

// CoatedDiffuseBxDF is a dielectric coating over a rough diffuse base
type CoatedDiffuseBxDF struct {
	top    DielectricBxDF
	bottom RoughDiffuseBxDF
	cfg    LayeredConfig
}

// NewCoatedDiffuseBxDF creates a coated diffuse kernel
func NewCoatedDiffuseBxDF(top DielectricBxDF, bottom RoughDiffuseBxDF, cfg LayeredConfig) CoatedDiffuseBxDF {
	return CoatedDiffuseBxDF{top: top, bottom: bottom, cfg: normalizeConfig(cfg)}
}

func (c *CoatedDiffuseBxDF) walk() layered {
	return layered{top: &c.top, bottom: &c.bottom, cfg: c.cfg}
}

// Interface returns the coating
func (c *CoatedDiffuseBxDF) Interface() *DielectricBxDF { return &c.top }

// Base returns the diffuse base
func (c *CoatedDiffuseBxDF) Base() *RoughDiffuseBxDF { return &c.bottom }

// Config returns the random walk parameters
func (c *CoatedDiffuseBxDF) Config() LayeredConfig { return c.cfg }

func (c *CoatedDiffuseBxDF) Flags() Flags { return c.walk().Flags() }

func (c *CoatedDiffuseBxDF) F(wo, wi core.Vec3, mode TransportMode) spectrum.SampledSpectrum {
	return c.walk().F(wo, wi, mode)
}

func (c *CoatedDiffuseBxDF) SampleF(wo core.Vec3, uc float64, u core.Vec2, mode TransportMode, sampleFlags ReflTransFlags) (Sample, bool) {
	return c.walk().SampleF(wo, uc, u, mode, sampleFlags)
}

func (c *CoatedDiffuseBxDF) PDF(wo, wi core.Vec3, mode TransportMode, sampleFlags ReflTransFlags) float64 {
	return c.walk().PDF(wo, wi, mode, sampleFlags)
}

func (c *CoatedDiffuseBxDF) String() string {
	return fmt.Sprintf("[ CoatedDiffuseBxDF top: %v bottom: %v thickness: %g albedo: %v g: %g maxDepth: %d nSamples: %d ]",
		&c.top, &c.bottom, c.cfg.Thickness, c.cfg.Albedo, c.cfg.G, c.cfg.MaxDepth, c.cfg.NSamples)
}

// CoatedConductorBxDF is a dielectric coating over a conductor base
type CoatedConductorBxDF struct {
	top    DielectricBxDF
	bottom ConductorBxDF
	cfg    LayeredConfig
}

// NewCoatedConductorBxDF creates a coated conductor kernel
func NewCoatedConductorBxDF(top DielectricBxDF, bottom ConductorBxDF, cfg LayeredConfig) CoatedConductorBxDF {
	return CoatedConductorBxDF{top: top, bottom: bottom, cfg: normalizeConfig(cfg)}
}

func (c *CoatedConductorBxDF) walk() layered {
	return layered{top: &c.top, bottom: &c.bottom, cfg: c.cfg}
}

// Interface returns the coating
func (c *CoatedConductorBxDF) Interface() *DielectricBxDF { return &c.top }

// Base returns the conductor base
func (c *CoatedConductorBxDF) Base() *ConductorBxDF { return &c.bottom }

// Config returns the random walk parameters
func (c *CoatedConductorBxDF) Config() LayeredConfig { return c.cfg }

func (c *CoatedConductorBxDF) Flags() Flags { return c.walk().Flags() }

func (c *CoatedConductorBxDF) F(wo, wi core.Vec3, mode TransportMode) spectrum.SampledSpectrum {
	return c.walk().F(wo, wi, mode)
}

func (c *CoatedConductorBxDF) SampleF(wo core.Vec3, uc float64, u core.Vec2, mode TransportMode, sampleFlags ReflTransFlags) (Sample, bool) {
	return c.walk().SampleF(wo, uc, u, mode, sampleFlags)
}

func (c *CoatedConductorBxDF) PDF(wo, wi core.Vec3, mode TransportMode, sampleFlags ReflTransFlags) float64 {
	return c.walk().PDF(wo, wi, mode, sampleFlags)
}

func (c *CoatedConductorBxDF) String() string {
	return fmt.Sprintf("[ CoatedConductorBxDF top: %v bottom: %v thickness: %g albedo: %v g: %g maxDepth: %d nSamples: %d ]",
		&c.top, &c.bottom, c.cfg.Thickness, c.cfg.Albedo, c.cfg.G, c.cfg.MaxDepth, c.cfg.NSamples)
}
