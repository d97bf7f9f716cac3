package material

import (
	"errors"
	"math"
	"math/rand"
	"sync"
	"testing"

	"github.com/df07/go-material-eval/pkg/bxdf"
	"github.com/df07/go-material-eval/pkg/core"
	"github.com/df07/go-material-eval/pkg/spectrum"
	"github.com/df07/go-material-eval/pkg/texture"
)

var universal = texture.UniversalTextureEvaluator{}

func newTestContext(p, wo core.Vec3, uv core.Vec2) *MaterialEvalContext {
	return &MaterialEvalContext{
		TextureEvalContext: texture.TextureEvalContext{P: p, N: core.NewVec3(0, 0, 1), UV: uv},
		Wo:                 wo,
		Ns:                 core.NewVec3(0, 0, 1),
		Dpdus:              core.NewVec3(1, 0, 0),
	}
}

func defaultContext() *MaterialEvalContext {
	return newTestContext(core.Vec3{}, core.NewVec3(0, 0, 1), core.NewVec2(0.5, 0.5))
}

func constSpectrumTex(v float64) texture.SpectrumTexture {
	return texture.NewSpectrumConstant(spectrum.NewConstantSpectrum(v))
}

func dispersiveEta(t *testing.T) spectrum.Spectrum {
	eta, err := spectrum.NewPiecewiseLinearSpectrum([]float64{360, 830}, []float64{1.55, 1.45})
	if err != nil {
		t.Fatalf("Failed to build eta spectrum: %v", err)
	}
	return eta
}

// expectFatal runs fn and fails the test unless it panics with a *core.FatalError
func expectFatal(t *testing.T, name string, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		if _, ok := r.(*core.FatalError); !ok {
			t.Errorf("%s: expected *core.FatalError panic, got %v", name, r)
		}
	}()
	fn()
}

func TestDielectricSmoothConstantEta(t *testing.T) {
	m := NewDielectric(spectrum.NewConstantSpectrum(1.5), nil, nil, true)
	lambda := spectrum.SampleVisibleWavelengths(0.3)
	before := lambda
	buf := core.NewScratchBuffer()

	bsdf, ok := GetBSDF(m, universal, defaultContext(), &lambda, buf)
	if !ok {
		t.Fatal("Universal evaluator should accept a dielectric")
	}
	d, ok := bsdf.BxDF().(*bxdf.DielectricBxDF)
	if !ok {
		t.Fatalf("Expected *bxdf.DielectricBxDF, got %T", bsdf.BxDF())
	}
	if d.Eta() != 1.5 {
		t.Errorf("Expected eta exactly 1.5, got %g", d.Eta())
	}
	if !d.Distribution().EffectivelySmooth() {
		t.Errorf("Zero roughness should give a smooth distribution, got %v", d.Distribution())
	}
	if !bsdf.Flags().IsSpecular() {
		t.Errorf("Smooth dielectric should be specular, flags %v", bsdf.Flags())
	}
	if lambda != before {
		t.Errorf("Constant eta must leave wavelengths untouched: %v -> %v", before, lambda)
	}
	if buf.Allocated() != 1 {
		t.Errorf("Expected one scratch allocation, got %d", buf.Allocated())
	}
}

func TestDispersiveEtaTerminatesSecondary(t *testing.T) {
	eta := dispersiveEta(t)
	materials := []Material{
		NewDielectric(eta, nil, nil, false),
		NewThinDielectric(eta),
		NewCoatedDiffuse(nil, nil, nil, eta, LayerParams{}, false),
		NewCoatedConductor(CoatedConductorParams{InterfaceEta: eta, Reflectance: constSpectrumTex(0.8)}),
	}
	for _, m := range materials {
		t.Run(m.Name(), func(t *testing.T) {
			lambda := spectrum.SampleVisibleWavelengths(0.6)
			hero := lambda.Lambda(0)
			if _, ok := GetBSDF(m, universal, defaultContext(), &lambda, core.NewScratchBuffer()); !ok {
				t.Fatal("GetBSDF failed")
			}
			if !lambda.SecondaryTerminated() {
				t.Error("Dispersive eta should terminate secondary wavelengths")
			}
			if lambda.Lambda(0) != hero {
				t.Errorf("Hero wavelength changed from %g to %g", hero, lambda.Lambda(0))
			}
		})
	}
}

func TestZeroEtaReadsAsOne(t *testing.T) {
	m := NewDielectric(spectrum.NewConstantSpectrum(0), nil, nil, false)
	lambda := spectrum.SampleVisibleWavelengths(0.5)
	bsdf, _ := GetBSDF(m, universal, defaultContext(), &lambda, core.NewScratchBuffer())
	if eta := bsdf.BxDF().(*bxdf.DielectricBxDF).Eta(); eta != 1 {
		t.Errorf("Expected eta 1 for a zero spectrum, got %g", eta)
	}
}

func TestRoughnessRemap(t *testing.T) {
	tests := []struct {
		name      string
		roughness float64
		remap     bool
		alpha     float64
	}{
		{"remapped", 0.25, true, 0.5},
		{"raw", 0.25, false, 0.25},
		{"remapped one", 1, true, 1},
		{"raw small", 0.04, false, 0.04},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rough := texture.NewFloatConstant(tt.roughness)
			ctx := defaultContext()

			dielectric := NewDielectric(nil, rough, rough, tt.remap)
			lambda := spectrum.SampleVisibleWavelengths(0.5)
			bsdf, _ := GetBSDF(dielectric, universal, ctx, &lambda, core.NewScratchBuffer())
			d := bsdf.BxDF().(*bxdf.DielectricBxDF).Distribution()
			if math.Abs(d.AlphaX()-tt.alpha) > 1e-12 || math.Abs(d.AlphaY()-tt.alpha) > 1e-12 {
				t.Errorf("Dielectric: expected alpha %g, got (%g, %g)", tt.alpha, d.AlphaX(), d.AlphaY())
			}

			conductor := NewConductor(nil, nil, constSpectrumTex(0.9), rough, rough, tt.remap)
			bsdf, _ = GetBSDF(conductor, universal, ctx, &lambda, core.NewScratchBuffer())
			c := bsdf.BxDF().(*bxdf.ConductorBxDF).Distribution()
			if math.Abs(c.AlphaX()-tt.alpha) > 1e-12 {
				t.Errorf("Conductor: expected alpha %g, got %g", tt.alpha, c.AlphaX())
			}
		})
	}
}

func TestRoughnessRemapMonotonic(t *testing.T) {
	prev := -1.0
	for i := 0; i <= 100; i++ {
		a := bxdf.RoughnessToAlpha(float64(i) / 100)
		if a < prev {
			t.Fatalf("RoughnessToAlpha decreased at %d: %g < %g", i, a, prev)
		}
		if a != bxdf.RoughnessToAlpha(float64(i)/100) {
			t.Fatalf("RoughnessToAlpha not deterministic at %d", i)
		}
		prev = a
	}
}

func newMixTable(amount float64) (*Table, MaterialID, MaterialID, MaterialID) {
	table := NewTable()
	m0 := table.Add(NewDiffuse(constSpectrumTex(0.2), nil))
	m1 := table.Add(NewConductor(nil, nil, constSpectrumTex(0.9), nil, nil, false))
	mix, _ := table.AddMix(texture.NewFloatConstant(amount), m0, m1)
	return table, m0, m1, mix
}

func TestMixThresholds(t *testing.T) {
	tests := []struct {
		amount   float64
		expected int
	}{
		{-0.5, 0},
		{0, 0},
		{1, 1},
		{1.5, 1},
	}
	random := rand.New(rand.NewSource(42))
	for _, tt := range tests {
		table, m0, m1, mixID := newMixTable(tt.amount)
		mix := table.Get(mixID).(*Mix)
		want := []MaterialID{m0, m1}[tt.expected]
		for i := 0; i < 50; i++ {
			p := core.NewVec3(random.Float64(), random.Float64(), random.Float64())
			wo := core.NewVec3(random.Float64()-0.5, random.Float64()-0.5, 1).Normalize()
			if got := mix.ChooseMaterial(universal, newTestContext(p, wo, core.Vec2{})); got != want {
				t.Fatalf("amount %g: expected child %d, got %d", tt.amount, want, got)
			}
		}
	}
}

func TestMixSelectionIsDeterministic(t *testing.T) {
	table, m0, _, mixID := newMixTable(0.3)
	mix := table.Get(mixID).(*Mix)
	random := rand.New(rand.NewSource(42))

	const n = 1000
	first := 0
	for i := 0; i < n; i++ {
		p := core.NewVec3(random.Float64()*10, random.Float64()*10, random.Float64()*10)
		ctx := newTestContext(p, core.NewVec3(0, 0, 1), core.Vec2{})
		a := mix.ChooseMaterial(universal, ctx)
		if b := mix.ChooseMaterial(universal, ctx); a != b {
			t.Fatalf("Selection at %v changed between calls: %d then %d", p, a, b)
		}
		if a == m0 {
			first++
		}
	}

	// amount < u selects the first child, so it wins with probability 1 - amount
	frac := float64(first) / n
	if math.Abs(frac-0.7) > 0.05 {
		t.Errorf("Expected first child about 70%% of the time, got %.1f%%", 100*frac)
	}
}

func TestMixSelectionDependsOnDirection(t *testing.T) {
	table, _, _, mixID := newMixTable(0.5)
	mix := table.Get(mixID).(*Mix)
	p := core.NewVec3(1, 2, 3)
	random := rand.New(rand.NewSource(42))

	seen := map[MaterialID]bool{}
	for i := 0; i < 64; i++ {
		wo := core.SampleUniformSphere(core.NewVec2(random.Float64(), random.Float64()))
		seen[mix.ChooseMaterial(universal, newTestContext(p, wo, core.Vec2{}))] = true
	}
	if len(seen) != 2 {
		t.Errorf("Varying wo at a fixed point should reach both children, saw %v", seen)
	}
}

func TestChooseMaterialResolvesNestedMixes(t *testing.T) {
	table, m0, m1, inner := newMixTable(0)
	outer, err := table.AddMix(texture.NewFloatConstant(1), m1, inner)
	if err != nil {
		t.Fatalf("AddMix failed: %v", err)
	}

	got := ChooseMaterial(table, table.Get(outer), universal, defaultContext())
	if got != table.Get(m0) {
		t.Errorf("Expected nested mix to resolve to %v, got %v", table.Get(m0), got)
	}
	if d := table.Get(m0); ChooseMaterial(table, d, universal, defaultContext()) != d {
		t.Error("Non-mix materials should be returned unchanged")
	}
}

func TestMixAccessorsAreFatal(t *testing.T) {
	table, _, _, mixID := newMixTable(0.5)
	mix := table.Get(mixID)
	ctx := defaultContext()
	lambda := spectrum.SampleVisibleWavelengths(0.5)
	buf := core.NewScratchBuffer()

	expectFatal(t, "GetBSDF", func() { GetBSDF(mix, universal, ctx, &lambda, buf) })
	expectFatal(t, "GetBSSRDF", func() { GetBSSRDF(mix, universal, ctx, &lambda, buf) })
	expectFatal(t, "GetDisplacement", func() { GetDisplacement(mix) })
	expectFatal(t, "GetNormalMap", func() { GetNormalMap(mix) })
	if HasSubsurfaceScattering(mix) {
		t.Error("Mix should not report subsurface scattering")
	}
}

func TestTableRejectsUnknownChildren(t *testing.T) {
	table := NewTable()
	d := table.Add(NewDiffuse(nil, nil))
	if _, err := table.AddMix(nil, d, 7); !errors.Is(err, ErrUnknownMaterial) {
		t.Errorf("Expected ErrUnknownMaterial, got %v", err)
	}
	if _, err := table.Lookup(-1); !errors.Is(err, ErrUnknownMaterial) {
		t.Errorf("Expected ErrUnknownMaterial for negative id, got %v", err)
	}
	expectFatal(t, "Add", func() { table.Add(NewMix(nil, d, 3)) })
	if table.Len() != 1 {
		t.Errorf("Failed additions should not grow the table, len %d", table.Len())
	}
}

func TestDiffuseClamps(t *testing.T) {
	tests := []struct {
		name        string
		reflectance float64
		sigma       float64
		wantR       float64
		wantSigma   float64
	}{
		{"in range", 0.4, 20, 0.4, 20},
		{"bright", 1.5, 0, 1, 0},
		{"negative", -0.2, -10, 0, 0},
		{"rough", 0.5, 120, 0.5, 90},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewDiffuse(constSpectrumTex(tt.reflectance), texture.NewFloatConstant(tt.sigma))
			lambda := spectrum.SampleVisibleWavelengths(0.5)
			bsdf, _ := GetBSDF(m, universal, defaultContext(), &lambda, core.NewScratchBuffer())
			d := bsdf.BxDF().(*bxdf.RoughDiffuseBxDF)
			for i, r := range d.R() {
				if r != tt.wantR {
					t.Errorf("R[%d] = %g, expected %g", i, r, tt.wantR)
				}
			}
			if d.Sigma() != tt.wantSigma {
				t.Errorf("Sigma = %g, expected %g", d.Sigma(), tt.wantSigma)
			}
			if !d.T().IsZero() {
				t.Errorf("Diffuse should not transmit, T = %v", d.T())
			}
		})
	}
}

func TestConductorKGrowsNearOne(t *testing.T) {
	tests := []struct {
		r, k float64
	}{
		{0.99, 2 * math.Sqrt(0.99) / math.Sqrt(0.01)},
		{0.99995, 2 * math.Sqrt(0.99995) / math.Sqrt(0.00005)},
		{0.999999, 2 * math.Sqrt(0.999999) / math.Sqrt(0.000001)},
	}
	prev := 0.0
	for _, tt := range tests {
		_, k := reflectanceToConductor(spectrum.NewSampledSpectrum(tt.r))
		if math.Abs(k[0]-tt.k) > 1e-6*tt.k {
			t.Errorf("r=%g: k = %g, expected %g", tt.r, k[0], tt.k)
		}
		if k[0] <= prev {
			t.Errorf("r=%g: k = %g does not grow past %g", tt.r, k[0], prev)
		}
		prev = k[0]
	}
}

func TestDiffuseTransmissionScalesThenClamps(t *testing.T) {
	m := NewDiffuseTransmission(constSpectrumTex(0.4), constSpectrumTex(0.7), texture.NewFloatConstant(120), 2)
	lambda := spectrum.SampleVisibleWavelengths(0.5)
	bsdf, _ := GetBSDF(m, universal, defaultContext(), &lambda, core.NewScratchBuffer())
	d := bsdf.BxDF().(*bxdf.RoughDiffuseBxDF)

	if math.Abs(d.R()[0]-0.8) > 1e-12 {
		t.Errorf("Expected scaled reflectance 0.8, got %g", d.R()[0])
	}
	if d.T()[0] != 1 {
		t.Errorf("Expected transmittance clamped to 1, got %g", d.T()[0])
	}
	if d.Sigma() != 90 {
		t.Errorf("Expected sigma clamped to 90, got %g", d.Sigma())
	}
	if !bsdf.Flags().IsTransmissive() {
		t.Errorf("Expected transmissive flags, got %v", bsdf.Flags())
	}
}

func TestConductorFromReflectance(t *testing.T) {
	tests := []struct {
		name string
		r    float64
	}{
		{"black", 0},
		{"grey", 0.5},
		{"near one", 0.99999},
		{"one", 1},
		{"above one", 1.3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewConductor(nil, nil, constSpectrumTex(tt.r), nil, nil, false)
			lambda := spectrum.SampleVisibleWavelengths(0.5)
			bsdf, _ := GetBSDF(m, universal, defaultContext(), &lambda, core.NewScratchBuffer())
			c := bsdf.BxDF().(*bxdf.ConductorBxDF)

			for i := range c.K() {
				k := c.K()[i]
				if math.IsNaN(k) || math.IsInf(k, 0) || k < 0 {
					t.Fatalf("k[%d] = %g is not a finite non-negative value", i, k)
				}
				if c.Eta()[i] != 1 {
					t.Errorf("eta[%d] = %g, expected 1", i, c.Eta()[i])
				}
			}
			if tt.r == 0 && !c.K().IsZero() {
				t.Errorf("Zero reflectance should give k = 0, got %v", c.K())
			}
			if tt.r > 0 && tt.r < 1 {
				// Normal-incidence Fresnel of (1, k) recovers r
				fr := bxdf.FrComplex(1, complex(1, c.K()[0]))
				if math.Abs(fr-tt.r) > 1e-6 {
					t.Errorf("Fresnel reflectance %g, expected %g", fr, tt.r)
				}
			}
		})
	}
}

func TestConductorExplicitEtaK(t *testing.T) {
	m := NewConductor(constSpectrumTex(0.2), constSpectrumTex(3.9), nil, nil, nil, false)
	lambda := spectrum.SampleVisibleWavelengths(0.5)
	bsdf, _ := GetBSDF(m, universal, defaultContext(), &lambda, core.NewScratchBuffer())
	c := bsdf.BxDF().(*bxdf.ConductorBxDF)
	if c.Eta()[0] != 0.2 || c.K()[0] != 3.9 {
		t.Errorf("Expected eta 0.2 and k 3.9, got %g and %g", c.Eta()[0], c.K()[0])
	}
	expectFatal(t, "NewConductor", func() { NewConductor(nil, nil, nil, nil, nil, false) })
}

func TestHairAbsorptionSources(t *testing.T) {
	ctx := newTestContext(core.Vec3{}, core.NewVec3(0, 0, 1), core.NewVec2(0.3, 0.75))

	t.Run("sigma_a", func(t *testing.T) {
		m := NewHair(constSpectrumTex(-0.5), constSpectrumTex(0.3), nil, nil, nil, texture.NewFloatConstant(0), nil, nil)
		lambda := spectrum.SampleVisibleWavelengths(0.5)
		bsdf, _ := GetBSDF(m, universal, ctx, &lambda, core.NewScratchBuffer())
		h := bsdf.BxDF().(*bxdf.HairBxDF)
		if !h.SigmaA().IsZero() {
			t.Errorf("Negative sigma_a should clamp to zero and win over color, got %v", h.SigmaA())
		}
		if h.BetaM() != 1e-2 {
			t.Errorf("beta_m should be floored at 0.01, got %g", h.BetaM())
		}
		if math.Abs(h.H()-0.5) > 1e-12 {
			t.Errorf("Expected h = 2v - 1 = 0.5, got %g", h.H())
		}
	})

	t.Run("color", func(t *testing.T) {
		m := NewHair(nil, constSpectrumTex(0.3), nil, nil, nil, nil, nil, nil)
		lambda := spectrum.SampleVisibleWavelengths(0.5)
		bsdf, _ := GetBSDF(m, universal, ctx, &lambda, core.NewScratchBuffer())
		got := bsdf.BxDF().(*bxdf.HairBxDF).SigmaA()
		want := bxdf.SigmaAFromReflectance(spectrum.NewSampledSpectrum(0.3), 0.3)
		if got != want {
			t.Errorf("Expected sigma_a %v from color, got %v", want, got)
		}
	})

	t.Run("melanin", func(t *testing.T) {
		m := NewHair(nil, nil, texture.NewFloatConstant(1.3), nil, nil, nil, nil, nil)
		lambda := spectrum.SampleVisibleWavelengths(0.5)
		bsdf, _ := GetBSDF(m, universal, ctx, &lambda, core.NewScratchBuffer())
		got := bsdf.BxDF().(*bxdf.HairBxDF).SigmaA()
		want := spectrum.Sample(bxdf.SigmaAFromConcentration(1.3, 0), &lambda)
		if got != want {
			t.Errorf("Expected sigma_a %v from eumelanin, got %v", want, got)
		}
	})

	t.Run("missing", func(t *testing.T) {
		m := NewHair(nil, nil, nil, nil, nil, nil, nil, nil)
		lambda := spectrum.SampleVisibleWavelengths(0.5)
		expectFatal(t, "GetBSDF", func() { GetBSDF(m, universal, ctx, &lambda, core.NewScratchBuffer()) })
	})
}

func TestHairHasNoBump(t *testing.T) {
	m := NewHair(nil, nil, texture.NewFloatConstant(1), nil, nil, nil, nil, nil)
	if m.GetDisplacement() != nil || m.GetNormalMap() != nil {
		t.Error("Hair should never report displacement or a normal map")
	}
}

func TestCoatedParameterMarshaling(t *testing.T) {
	layer := LayerParams{
		Thickness: texture.NewFloatConstant(0.05),
		Albedo:    constSpectrumTex(1.4),
		G:         texture.NewFloatConstant(-3),
		MaxDepth:  7,
		NSamples:  3,
	}
	lambda := spectrum.SampleVisibleWavelengths(0.5)
	ctx := defaultContext()

	cd := NewCoatedDiffuse(constSpectrumTex(0.6), nil, nil, nil, layer, false)
	bsdf, _ := GetBSDF(cd, universal, ctx, &lambda, core.NewScratchBuffer())
	coated := bsdf.BxDF().(*bxdf.CoatedDiffuseBxDF)
	cfg := coated.Config()
	if cfg.Thickness != 0.05 || cfg.G != -1 || cfg.MaxDepth != 7 || cfg.NSamples != 3 {
		t.Errorf("Unexpected layer config %+v", cfg)
	}
	if cfg.Albedo[0] != 1 {
		t.Errorf("Albedo should be clamped to 1, got %g", cfg.Albedo[0])
	}
	if coated.Interface().Eta() != 1.5 || coated.Base().R()[0] != 0.6 {
		t.Errorf("Unexpected layers: eta %g base %v", coated.Interface().Eta(), coated.Base().R())
	}

	cc := NewCoatedConductor(CoatedConductorParams{
		InterfaceEta: spectrum.NewConstantSpectrum(2),
		ConductorEta: constSpectrumTex(0.4),
		K:            constSpectrumTex(3),
	})
	bsdf, _ = GetBSDF(cc, universal, ctx, &lambda, core.NewScratchBuffer())
	base := bsdf.BxDF().(*bxdf.CoatedConductorBxDF).Base()
	if math.Abs(base.Eta()[0]-0.2) > 1e-12 || math.Abs(base.K()[0]-1.5) > 1e-12 {
		t.Errorf("Conductor constants should be relative to the coating, got eta %g k %g", base.Eta()[0], base.K()[0])
	}
	if cfg := bsdf.BxDF().(*bxdf.CoatedConductorBxDF).Config(); cfg.MaxDepth != 10 || cfg.NSamples != 1 {
		t.Errorf("Expected default depth 10 and 1 sample, got %+v", cfg)
	}
}

func TestMeasuredAlwaysEvaluable(t *testing.T) {
	brdf, err := bxdf.TabulateMeasuredBRDF("flat", 8, 8, 8, []float64{400, 700},
		func(thetaH, thetaD, phiD, lambda float64) float64 { return core.InvPi * 0.5 })
	if err != nil {
		t.Fatalf("Failed to tabulate BRDF: %v", err)
	}
	m := NewMeasured(brdf)
	if !m.CanEvaluateTextures(texture.BasicTextureEvaluator{}) {
		t.Error("Measured material should be evaluable by any evaluator")
	}
	lambda := spectrum.SampleVisibleWavelengths(0.5)
	bsdf, ok := GetBSDF(m, texture.BasicTextureEvaluator{}, defaultContext(), &lambda, core.NewScratchBuffer())
	if !ok {
		t.Fatal("GetBSDF failed")
	}
	if bsdf.BxDF().(*bxdf.MeasuredBxDF).BRDF() != brdf {
		t.Error("Measured BxDF should reference the material's dataset")
	}
}

var (
	sharedSubsurface     *Subsurface
	sharedSubsurfaceOnce sync.Once
)

func subsurfaceForTest() *Subsurface {
	sharedSubsurfaceOnce.Do(func() {
		sharedSubsurface = NewSubsurface(SubsurfaceParams{
			Reflectance: constSpectrumTex(0.6),
			MFP:         constSpectrumTex(0.5),
			Eta:         1.33,
		})
	})
	return sharedSubsurface
}

func TestOnlySubsurfaceHasBSSRDF(t *testing.T) {
	ctx := defaultContext()
	materials := []Material{
		NewDielectric(nil, nil, nil, false),
		NewThinDielectric(nil),
		NewHair(nil, nil, texture.NewFloatConstant(1), nil, nil, nil, nil, nil),
		NewDiffuse(nil, nil),
		NewConductor(nil, nil, constSpectrumTex(0.5), nil, nil, false),
		NewCoatedDiffuse(nil, nil, nil, nil, LayerParams{}, false),
		NewCoatedConductor(CoatedConductorParams{Reflectance: constSpectrumTex(0.5)}),
		NewDiffuseTransmission(nil, nil, nil, 1),
	}
	for _, m := range materials {
		lambda := spectrum.SampleVisibleWavelengths(0.5)
		buf := core.NewScratchBuffer()
		if HasSubsurfaceScattering(m) {
			t.Errorf("%s should not report subsurface scattering", m.Name())
		}
		if b := GetBSSRDF(m, universal, ctx, &lambda, buf); b != nil {
			t.Errorf("%s returned a BSSRDF", m.Name())
		}
		if buf.Allocated() != 0 {
			t.Errorf("%s allocated %d objects for an absent BSSRDF", m.Name(), buf.Allocated())
		}
	}

	s := subsurfaceForTest()
	if !HasSubsurfaceScattering(s) {
		t.Fatal("Subsurface should report subsurface scattering")
	}
	lambda := spectrum.SampleVisibleWavelengths(0.5)
	b := GetBSSRDF(s, universal, ctx, &lambda, core.NewScratchBuffer())
	if b == nil {
		t.Fatal("Subsurface should return a BSSRDF")
	}
	if b.Eta() != 1.33 || b.Table() != s.Table() {
		t.Errorf("BSSRDF should share the material table and eta, got eta %g", b.Eta())
	}
	for i, rho := range b.Rho() {
		if rho < 0 || rho > 1 {
			t.Errorf("rho[%d] = %g outside [0,1]", i, rho)
		}
	}
}

func TestSubsurfaceBSDFUsesFixedEta(t *testing.T) {
	s := subsurfaceForTest()
	lambda := spectrum.SampleVisibleWavelengths(0.5)
	before := lambda
	bsdf, ok := GetBSDF(s, universal, defaultContext(), &lambda, core.NewScratchBuffer())
	if !ok {
		t.Fatal("GetBSDF failed")
	}
	if eta := bsdf.BxDF().(*bxdf.DielectricBxDF).Eta(); eta != 1.33 {
		t.Errorf("Expected boundary eta 1.33, got %g", eta)
	}
	if lambda != before {
		t.Error("Subsurface BSDF should not terminate wavelengths")
	}
}

func TestSubsurfaceDirectCoefficients(t *testing.T) {
	s := &Subsurface{
		Scale:      2,
		SigmaA:     constSpectrumTex(-1),
		SigmaS:     constSpectrumTex(0.5),
		Eta:        1.33,
		URoughness: texture.NewFloatConstant(0),
		VRoughness: texture.NewFloatConstant(0),
		table:      subsurfaceForTest().Table(),
	}
	lambda := spectrum.SampleVisibleWavelengths(0.5)
	b := GetBSSRDF(s, universal, defaultContext(), &lambda, core.NewScratchBuffer())
	// sigma_a clamps to 0, so sigma_t = 2 * 0.5 and the albedo is 1
	if math.Abs(b.SigmaT()[0]-1) > 1e-12 || math.Abs(b.Rho()[0]-1) > 1e-12 {
		t.Errorf("Expected sigma_t 1 and rho 1, got %g and %g", b.SigmaT()[0], b.Rho()[0])
	}
	expectFatal(t, "NewSubsurface", func() { NewSubsurface(SubsurfaceParams{SigmaA: constSpectrumTex(1)}) })
}

func TestBasicEvaluatorFallback(t *testing.T) {
	procedural := texture.FloatFuncTexture(func(ctx texture.TextureEvalContext) float64 { return 0.1 })
	m := NewDielectric(nil, procedural, nil, false)
	lambda := spectrum.SampleVisibleWavelengths(0.5)
	buf := core.NewScratchBuffer()

	if _, ok := GetBSDF(m, texture.BasicTextureEvaluator{}, defaultContext(), &lambda, buf); ok {
		t.Error("Basic evaluator should reject a procedural roughness texture")
	}
	if buf.Allocated() != 0 {
		t.Error("A rejected material must not allocate")
	}
	if _, ok := GetBSDF(m, universal, defaultContext(), &lambda, buf); !ok {
		t.Error("Universal evaluator should accept a procedural roughness texture")
	}
}

func TestKindNames(t *testing.T) {
	if len(Kinds()) != 11 {
		t.Fatalf("Expected 11 kinds, got %d", len(Kinds()))
	}
	for _, k := range Kinds() {
		parsed, ok := ParseKind(k.String())
		if !ok || parsed != k {
			t.Errorf("ParseKind(%q) = %v, %t", k.String(), parsed, ok)
		}
	}
	if _, ok := ParseKind("lambertian"); ok {
		t.Error("Unknown kind names should not parse")
	}
	if Kind(99).String() != "unknown" {
		t.Errorf("Out of range kind should print as unknown, got %q", Kind(99).String())
	}
}

func TestMaterialKindsMatchVariants(t *testing.T) {
	table := NewTable()
	d := table.Add(NewDiffuse(nil, nil))
	materials := map[Kind]Material{
		KindDielectric:          NewDielectric(nil, nil, nil, false),
		KindThinDielectric:      NewThinDielectric(nil),
		KindMix:                 NewMix(nil, d, d),
		KindHair:                NewHair(nil, nil, texture.NewFloatConstant(1), nil, nil, nil, nil, nil),
		KindDiffuse:             NewDiffuse(nil, nil),
		KindConductor:           NewConductor(nil, nil, constSpectrumTex(0.5), nil, nil, false),
		KindCoatedDiffuse:       NewCoatedDiffuse(nil, nil, nil, nil, LayerParams{}, false),
		KindCoatedConductor:     NewCoatedConductor(CoatedConductorParams{Reflectance: constSpectrumTex(0.5)}),
		KindSubsurface:          subsurfaceForTest(),
		KindDiffuseTransmission: NewDiffuseTransmission(nil, nil, nil, 1),
	}
	for k, m := range materials {
		if m.Kind() != k {
			t.Errorf("%s reports kind %v, expected %v", m.Name(), m.Kind(), k)
		}
		if m.String() == "" {
			t.Errorf("%s has an empty description", m.Name())
		}
	}
}

func TestSetNormalMap(t *testing.T) {
	img := texture.NewConstantNormalMap(2, 2, core.NewVec3(0, 0, 1))
	d := NewDiffuse(nil, nil)
	if !SetNormalMap(d, img) || d.GetNormalMap() != img {
		t.Error("Expected the diffuse material to take the normal map")
	}

	mix := NewMix(nil, 0, 1)
	if SetNormalMap(mix, img) {
		t.Error("Mix materials should refuse a normal map")
	}
}
