package cmd

import (
	"fmt"
	"math"
	"time"

	"github.com/df07/go-material-eval/pkg/bssrdf"
	"github.com/urfave/cli"
)

// Tabulate the beam diffusion profile and print the effective albedo curve.
func TabulateBSSRDF(ctx *cli.Context) error {
	setupLogging(ctx)

	g, eta := ctx.Float64("g"), ctx.Float64("eta")
	nRho, nRadius := ctx.Int("rho"), ctx.Int("radius")
	if nRho < 2 || nRadius < 2 {
		return fmt.Errorf("table needs at least 2 rho and 2 radius samples")
	}
	if eta <= 0 {
		return fmt.Errorf("eta must be positive, got %g", eta)
	}

	start := time.Now()
	t := bssrdf.NewTable(nRho, nRadius)
	bssrdf.ComputeBeamDiffusion(g, eta, t)
	elapsed := time.Since(start)
	logger.Infof("tabulated %s in %s", t, elapsed)

	step := max(1, nRho/max(1, ctx.Int("rows")))
	table := newTable(ctx, "Index", "rho", "rho_eff", "Profile at r=1")
	for i := 0; i < nRho; i += step {
		table.Append([]string{
			fmt.Sprintf("%d", i),
			fmt.Sprintf("%.4f", t.RhoSamples[i]),
			fmt.Sprintf("%.4f", t.RhoEff[i]),
			fmt.Sprintf("%.4g", profileAt(t, i, 1)),
		})
	}
	table.SetFooter([]string{"", fmt.Sprintf("g=%g", g), fmt.Sprintf("eta=%g", eta), fmt.Sprintf("%s", elapsed)})
	table.Render()
	return nil
}

// profileAt returns the profile entry of row rhoIndex at the radius sample closest to r
func profileAt(t *bssrdf.Table, rhoIndex int, r float64) float64 {
	best := 0
	for j, rs := range t.RadiusSamples {
		if math.Abs(rs-r) < math.Abs(t.RadiusSamples[best]-r) {
			best = j
		}
	}
	return t.EvalProfile(rhoIndex, best)
}
