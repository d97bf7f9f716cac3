package cmd

import (
	"fmt"
	"math/rand"

	"github.com/df07/go-material-eval/pkg/core"
	"github.com/df07/go-material-eval/pkg/geometry"
	"github.com/df07/go-material-eval/pkg/material"
	"github.com/df07/go-material-eval/pkg/shading"
	"github.com/df07/go-material-eval/pkg/spectrum"
	"github.com/df07/go-material-eval/pkg/texture"
	"github.com/urfave/cli"
)

// Report how often a mix of the given amount selects each child.
func MixStats(ctx *cli.Context) error {
	setupLogging(ctx)

	amount, n := ctx.Float64("amount"), ctx.Int("points")
	if n <= 0 {
		return fmt.Errorf("points must be positive, got %d", n)
	}
	first, err := mixSelection(amount, n, rand.New(rand.NewSource(ctx.Int64("seed"))))
	if err != nil {
		logger.Error(err)
		return err
	}

	table := newTable(ctx, "Amount", "Points", "First", "Second")
	table.Append([]string{
		fmt.Sprintf("%g", amount),
		fmt.Sprintf("%d", n),
		fmt.Sprintf("%.4f", float64(first)/float64(n)),
		fmt.Sprintf("%.4f", float64(n-first)/float64(n)),
	})
	table.Render()
	return nil
}

// mixSelection shades n random points of a unit sphere carrying a two-way mix
// and returns how many resolved to the first child
func mixSelection(amount float64, n int, random *rand.Rand) (int, error) {
	t := material.NewTable()
	m0 := t.Add(material.NewDiffuse(texture.NewSpectrumConstant(spectrum.NewConstantSpectrum(0.2)), nil))
	m1 := t.Add(material.NewDiffuse(texture.NewSpectrumConstant(spectrum.NewConstantSpectrum(0.8)), nil))
	mix, err := t.AddMix(texture.NewFloatConstant(amount), m0, m1)
	if err != nil {
		return 0, err
	}

	scn := shading.NewScene(t, nil)
	sphere := geometry.NewSphere(core.Vec3{}, 1, mix)
	buf := core.NewScratchBuffer()
	first := 0
	for i := 0; i < n; i++ {
		uv := core.NewVec2(random.Float64(), random.Float64())
		si := sphere.InteractionAt(uv, core.NewVec3(0, 1, 0))
		res, err := shading.Shade(scn, shading.Point{Interaction: si, Material: mix, WavelengthU: random.Float64()}, buf)
		buf.Reset()
		if err != nil {
			return 0, err
		}
		if res.Material == t.Get(m0) {
			first++
		}
	}
	return first, nil
}
