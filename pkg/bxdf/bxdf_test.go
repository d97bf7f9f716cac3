package bxdf

import (
	"math"
	"math/rand"
	"testing"

	"github.com/df07/go-material-eval/pkg/core"
	"github.com/df07/go-material-eval/pkg/spectrum"
)

// reflectance estimates the directional albedo of a kernel by sampling
func reflectance(b BxDF, wo core.Vec3, n int, random *rand.Rand) float64 {
	sum := 0.0
	for i := 0; i < n; i++ {
		bs, ok := b.SampleF(wo, random.Float64(), core.NewVec2(random.Float64(), random.Float64()), Radiance, SampleAll)
		if !ok || bs.PDF == 0 {
			continue
		}
		sum += bs.F.Average() * core.AbsCosTheta(bs.Wi) / bs.PDF
	}
	return sum / float64(n)
}

func TestSmoothDielectricSampling(t *testing.T) {
	b := NewDielectricBxDF(1.5, NewTrowbridgeReitzDistribution(0, 0))
	if !b.Flags().IsSpecular() || !b.Flags().IsReflective() || !b.Flags().IsTransmissive() {
		t.Fatalf("Unexpected flags %v", b.Flags())
	}

	wo := core.NewVec3(0, 0, 1)
	r := FrDielectric(1, 1.5)

	refl, ok := b.SampleF(wo, 0, core.NewVec2(0.5, 0.5), Radiance, SampleAll)
	if !ok || !refl.IsReflection() {
		t.Fatal("uc = 0 should select reflection")
	}
	if math.Abs(refl.PDF-r) > 1e-9 {
		t.Errorf("Reflection pdf %g, expected %g", refl.PDF, r)
	}

	trans, ok := b.SampleF(wo, 0.99, core.NewVec2(0.5, 0.5), Radiance, SampleAll)
	if !ok || !trans.IsTransmission() {
		t.Fatal("uc = 0.99 should select transmission")
	}
	if trans.Eta != 1.5 {
		t.Errorf("Transmission eta %g, expected 1.5", trans.Eta)
	}
	if !vecNear(trans.Wi, core.NewVec3(0, 0, -1), 1e-12) {
		t.Errorf("Normal incidence should transmit straight through, got %v", trans.Wi)
	}
	// Radiance is compressed by 1/eta^2 when entering glass
	expected := (1 - r) / (1.5 * 1.5)
	if math.Abs(trans.F[0]-expected) > 1e-9 {
		t.Errorf("Transmitted f %g, expected %g", trans.F[0], expected)
	}

	if b.PDF(wo, trans.Wi, Radiance, SampleAll) != 0 || !b.F(wo, trans.Wi, Radiance).IsZero() {
		t.Error("Specular dielectric should have zero f and pdf")
	}

	// Restricting to reflection always reflects
	only, ok := b.SampleF(wo, 0.99, core.NewVec2(0.5, 0.5), Radiance, SampleReflection)
	if !ok || !only.IsReflection() || only.PDF != 1 {
		t.Errorf("Reflection-only sampling should reflect with pdf 1, got %v", only)
	}
}

func TestIndexMatchedDielectricOnlyTransmits(t *testing.T) {
	b := NewDielectricBxDF(1, NewTrowbridgeReitzDistribution(0.3, 0.3))
	if b.Flags().IsReflective() {
		t.Errorf("eta = 1 should not reflect, flags %v", b.Flags())
	}
	bs, ok := b.SampleF(core.NewVec3(0.3, 0, 0.9).Normalize(), 0.2, core.NewVec2(0.1, 0.7), Radiance, SampleAll)
	if !ok || !bs.IsTransmission() {
		t.Fatalf("Expected pass-through transmission, got %v", bs)
	}
}

func TestRoughDielectricConsistency(t *testing.T) {
	b := NewDielectricBxDF(1.5, NewTrowbridgeReitzDistribution(0.3, 0.3))
	random := rand.New(rand.NewSource(3))
	wo := core.NewVec3(0.2, 0.1, 0.8).Normalize()
	for i := 0; i < 500; i++ {
		bs, ok := b.SampleF(wo, random.Float64(), core.NewVec2(random.Float64(), random.Float64()), Radiance, SampleAll)
		if !ok {
			continue
		}
		pdf := b.PDF(wo, bs.Wi, Radiance, SampleAll)
		if math.Abs(pdf-bs.PDF) > 1e-6*math.Max(1, pdf) {
			t.Fatalf("Sampled pdf %g does not match PDF() %g for wi %v", bs.PDF, pdf, bs.Wi)
		}
		f := b.F(wo, bs.Wi, Radiance)
		if math.Abs(f[0]-bs.F[0]) > 1e-6*math.Max(1, f[0]) {
			t.Fatalf("Sampled f %g does not match F() %g", bs.F[0], f[0])
		}
	}
}

func TestThinDielectric(t *testing.T) {
	b := NewThinDielectricBxDF(1.5)
	wo := core.NewVec3(0.3, 0.4, 0.5).Normalize()

	refl, ok := b.SampleF(wo, 0, core.Vec2{}, Radiance, SampleAll)
	if !ok || !refl.IsReflection() {
		t.Fatal("Expected reflection")
	}
	trans, ok := b.SampleF(wo, 0.999, core.Vec2{}, Radiance, SampleAll)
	if !ok || !trans.IsTransmission() {
		t.Fatal("Expected transmission")
	}
	if !vecNear(trans.Wi, wo.Negate(), 1e-12) {
		t.Errorf("Thin slab should transmit without bending, got %v", trans.Wi)
	}
	if math.Abs(refl.PDF+trans.PDF-1) > 1e-9 {
		t.Errorf("Lobe probabilities should sum to 1, got %g", refl.PDF+trans.PDF)
	}
	// Interreflection raises reflectance above the single-interface value
	if refl.PDF <= FrDielectric(core.AbsCosTheta(wo), 1.5) {
		t.Errorf("Slab reflectance %g should exceed single interface %g", refl.PDF, FrDielectric(core.AbsCosTheta(wo), 1.5))
	}
}

func TestRoughDiffuse(t *testing.T) {
	r := spectrum.NewSampledSpectrum(0.5)
	lambert := NewRoughDiffuseBxDF(r, spectrum.SampledSpectrum{}, 0)
	wo := core.NewVec3(0, 0.6, 0.8)
	wi := core.NewVec3(0.6, 0, 0.8)

	f := lambert.F(wo, wi, Radiance)
	if math.Abs(f[0]-0.5/math.Pi) > 1e-12 {
		t.Errorf("sigma 0 should be Lambertian: got %g, expected %g", f[0], 0.5/math.Pi)
	}
	if lambert.Flags() != DiffuseReflection {
		t.Errorf("Expected diffuse reflection flags, got %v", lambert.Flags())
	}
	if !lambert.F(wo, wi.Negate(), Radiance).IsZero() {
		t.Error("No transmittance should give zero f across the surface")
	}

	random := rand.New(rand.NewSource(11))
	if albedo := reflectance(&lambert, wo, 20000, random); math.Abs(albedo-0.5) > 0.01 {
		t.Errorf("Lambertian albedo %g, expected 0.5", albedo)
	}

	rough := NewRoughDiffuseBxDF(r, spectrum.NewSampledSpectrum(0.25), 30)
	if rough.Flags() != DiffuseReflection|DiffuseTransmission {
		t.Errorf("Expected reflection and transmission flags, got %v", rough.Flags())
	}
	ft := rough.F(wo, wi.Negate(), Radiance)
	if math.Abs(ft[0]-0.25/math.Pi) > 1e-12 {
		t.Errorf("Transmission should be Lambertian, got %g", ft[0])
	}
	if albedo := reflectance(&rough, wo, 20000, random); albedo > 0.75+0.02 {
		t.Errorf("Rough diffuse should not create energy: %g", albedo)
	}
}

func TestConductor(t *testing.T) {
	// Smooth conductor with eta 1, k 0 reflects nothing
	b := NewConductorBxDF(NewTrowbridgeReitzDistribution(0, 0), spectrum.NewSampledSpectrum(1), spectrum.SampledSpectrum{})
	if b.Flags() != SpecularReflection {
		t.Errorf("Expected specular reflection flags, got %v", b.Flags())
	}
	bs, ok := b.SampleF(core.NewVec3(0, 0, 1), 0.5, core.NewVec2(0.5, 0.5), Radiance, SampleAll)
	if !ok || !bs.F.IsZero() {
		t.Errorf("Index matched conductor should not reflect, got %v", bs.F)
	}

	// Large k approaches a perfect mirror
	mirror := NewConductorBxDF(NewTrowbridgeReitzDistribution(0, 0), spectrum.NewSampledSpectrum(1), spectrum.NewSampledSpectrum(1e4))
	bs, _ = mirror.SampleF(core.NewVec3(0, 0, 1), 0.5, core.NewVec2(0.5, 0.5), Radiance, SampleAll)
	if math.Abs(bs.F[0]-1) > 1e-3 {
		t.Errorf("High absorption conductor should reflect fully, got %g", bs.F[0])
	}
	if _, ok := mirror.SampleF(core.NewVec3(0, 0, 1), 0.5, core.Vec2{}, Radiance, SampleTransmission); ok {
		t.Error("Conductor cannot sample transmission")
	}

	rough := NewConductorBxDF(NewTrowbridgeReitzDistribution(0.4, 0.4), spectrum.NewSampledSpectrum(0.2), spectrum.NewSampledSpectrum(3))
	random := rand.New(rand.NewSource(5))
	wo := core.NewVec3(0.1, 0.2, 0.9).Normalize()
	for i := 0; i < 200; i++ {
		bs, ok := rough.SampleF(wo, 0.5, core.NewVec2(random.Float64(), random.Float64()), Radiance, SampleAll)
		if !ok {
			continue
		}
		if pdf := rough.PDF(wo, bs.Wi, Radiance, SampleAll); math.Abs(pdf-bs.PDF) > 1e-6*math.Max(1, pdf) {
			t.Fatalf("Sampled pdf %g does not match PDF() %g", bs.PDF, pdf)
		}
	}
}

func TestCoatedDiffuseDeterministic(t *testing.T) {
	top := NewDielectricBxDF(1.5, NewTrowbridgeReitzDistribution(0, 0))
	bottom := NewRoughDiffuseBxDF(spectrum.NewSampledSpectrum(0.5), spectrum.SampledSpectrum{}, 0)
	b := NewCoatedDiffuseBxDF(top, bottom, LayeredConfig{Thickness: 0.01, MaxDepth: 10, NSamples: 1})

	flags := b.Flags()
	if !flags.IsReflective() || flags.IsTransmissive() || !flags.IsDiffuse() {
		t.Errorf("Unexpected coated diffuse flags %v", flags)
	}

	wo := core.NewVec3(0.2, 0.3, 0.9).Normalize()
	wi := core.NewVec3(-0.4, 0.1, 0.8).Normalize()
	f1 := b.F(wo, wi, Radiance)
	f2 := b.F(wo, wi, Radiance)
	if f1 != f2 {
		t.Errorf("Layered evaluation should be repeatable: %v vs %v", f1, f2)
	}
	if f1.MinComponent() < 0 {
		t.Errorf("Negative reflectance %v", f1)
	}

	// Two-sided: flipping both directions gives the same answer
	if f3 := b.F(wo.Negate(), wi.Negate(), Radiance); f3 != f1 {
		t.Errorf("Coated diffuse should be two-sided: %v vs %v", f3, f1)
	}

	random := rand.New(rand.NewSource(17))
	for i := 0; i < 200; i++ {
		bs, ok := b.SampleF(wo, random.Float64(), core.NewVec2(random.Float64(), random.Float64()), Radiance, SampleAll)
		if !ok {
			continue
		}
		if !core.SameHemisphere(wo, bs.Wi) {
			t.Fatalf("Opaque coated diffuse sampled through the surface: %v", bs.Wi)
		}
		if !bs.PDFIsProportional {
			t.Fatal("Layered samples carry a proportional pdf")
		}
	}
	if pdf := b.PDF(wo, wi, Radiance, SampleAll); pdf <= 0 {
		t.Errorf("Expected positive pdf, got %g", pdf)
	}
}

func TestCoatedConductorAlbedo(t *testing.T) {
	top := NewDielectricBxDF(1.5, NewTrowbridgeReitzDistribution(0.1, 0.1))
	bottom := NewConductorBxDF(NewTrowbridgeReitzDistribution(0.2, 0.2), spectrum.NewSampledSpectrum(0.2), spectrum.NewSampledSpectrum(3.9))
	b := NewCoatedConductorBxDF(top, bottom, LayeredConfig{
		Thickness: 0.01, Albedo: spectrum.NewSampledSpectrum(0.5), G: 0.3, MaxDepth: 10, NSamples: 1,
	})
	if !b.Flags().IsDiffuse() {
		t.Errorf("Scattering medium should add a diffuse component, flags %v", b.Flags())
	}
	wo := core.NewVec3(0, 0.3, 0.95).Normalize()
	random := rand.New(rand.NewSource(19))
	if albedo := reflectance(&b, wo, 4000, random); albedo > 1.05 || albedo <= 0 {
		t.Errorf("Coated conductor albedo %g should be in (0, 1]", albedo)
	}
}

func TestHGPhaseFunction(t *testing.T) {
	random := rand.New(rand.NewSource(23))
	for _, g := range []float64{-0.5, 0, 0.7} {
		p := NewHGPhaseFunction(g)
		wo := core.NewVec3(0, 0, 1)

		// Integrates to one over the sphere
		const n = 100000
		sum := 0.0
		for i := 0; i < n; i++ {
			wi := core.SampleUniformSphere(core.NewVec2(random.Float64(), random.Float64()))
			sum += p.P(wo, wi) / core.UniformSpherePDF
		}
		if est := sum / n; math.Abs(est-1) > 0.03 {
			t.Errorf("g %g: phase integral %g, expected 1", g, est)
		}

		ps, _ := p.SampleP(wo, core.NewVec2(random.Float64(), random.Float64()))
		if math.Abs(ps.PDF-p.P(wo, ps.Wi)) > 1e-9 {
			t.Errorf("g %g: sampled pdf %g should equal phase value %g", g, ps.PDF, p.P(wo, ps.Wi))
		}
	}
}

func TestBSDFFrame(t *testing.T) {
	r := spectrum.NewSampledSpectrum(0.8)
	kernel := NewRoughDiffuseBxDF(r, spectrum.SampledSpectrum{}, 0)
	bsdf := NewBSDF(core.NewVec3(0, 1, 0), core.NewVec3(1, 0, 0), &kernel)

	if !bsdf.IsValid() {
		t.Fatal("BSDF should be valid")
	}
	local := bsdf.RenderToLocal(core.NewVec3(0, 1, 0))
	if !vecNear(local, core.NewVec3(0, 0, 1), 1e-12) {
		t.Errorf("Shading normal should map to +Z, got %v", local)
	}
	if back := bsdf.LocalToRender(local); !vecNear(back, core.NewVec3(0, 1, 0), 1e-12) {
		t.Errorf("Round trip failed, got %v", back)
	}

	wo := core.NewVec3(0, 1, 0)
	if f := bsdf.F(wo, core.NewVec3(0.6, 0.8, 0), Radiance); math.Abs(f[0]-0.8/math.Pi) > 1e-12 {
		t.Errorf("Expected Lambertian value, got %g", f[0])
	}
	if f := bsdf.F(wo, core.NewVec3(0.6, -0.8, 0), Radiance); !f.IsZero() {
		t.Errorf("Opaque BSDF should not transmit, got %v", f)
	}

	bs, ok := bsdf.SampleF(wo, 0.5, core.NewVec2(0.3, 0.3), Radiance, SampleAll)
	if !ok || bs.Wi.Y <= 0 {
		t.Errorf("Sampled direction should be on the normal side in render space: %v", bs.Wi)
	}
	if _, ok := bsdf.SampleF(wo, 0.5, core.NewVec2(0.3, 0.3), Radiance, SampleTransmission); ok {
		t.Error("Transmission-only sampling of an opaque BSDF should fail")
	}
}

func TestFlagsString(t *testing.T) {
	if s := (GlossyReflection).String(); s != "Reflection|Glossy" {
		t.Errorf("Unexpected flags string %q", s)
	}
	if s := Unset.String(); s != "Unset" {
		t.Errorf("Unexpected flags string %q", s)
	}
}
