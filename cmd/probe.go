package cmd

import (
	"fmt"
	"math/rand"

	"github.com/df07/go-material-eval/pkg/config"
	"github.com/df07/go-material-eval/pkg/shading"
	"github.com/urfave/cli"
)

// Shade the materials of a config file at its probe point.
func Probe(ctx *cli.Context) error {
	setupLogging(ctx)

	if ctx.NArg() != 1 {
		return fmt.Errorf("probe expects exactly one config file")
	}
	cfg, err := config.Load(ctx.Args().First())
	if err != nil {
		logger.Error(err)
		return err
	}
	if n := ctx.Int("points"); n > 0 {
		cfg.Probe.Points = n
	}

	built, err := cfg.BuildTable()
	if err != nil {
		logger.Error(err)
		return err
	}
	eval, err := cfg.TextureEvaluator()
	if err != nil {
		return err
	}

	random := rand.New(rand.NewSource(ctx.Int64("seed")))
	var (
		points []shading.Point
		names  []string
	)
	for _, name := range built.Order {
		for _, p := range cfg.ProbePoints(built.IDs[name], random) {
			points = append(points, p)
			names = append(names, name)
		}
	}

	records, batchErr := shading.EvaluateBatch(shading.NewScene(built.Table, eval), points, ctx.Int("workers"))

	table := newTable(ctx, "Material", "Variant", "Flags", "Wavelengths", "F", "PDF", "BSSRDF", "Fallback")
	for i, rec := range records {
		if rec.Err != nil {
			table.Append([]string{names[i], "error", rec.Err.Error(), "", "", "", "", ""})
			continue
		}
		table.Append([]string{
			names[i],
			rec.Name,
			rec.Flags.String(),
			rec.Lambda.String(),
			rec.F.String(),
			fmt.Sprintf("%.4g", rec.PDF),
			fmt.Sprintf("%t", rec.HasBSSRDF),
			fmt.Sprintf("%t", rec.Fallback),
		})
	}
	table.Render()

	if batchErr != nil {
		logger.Error(batchErr)
	}
	return batchErr
}
