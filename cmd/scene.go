package cmd

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/df07/go-material-eval/pkg/geometry"
	"github.com/df07/go-material-eval/pkg/scene"
	"github.com/df07/go-material-eval/pkg/shading"
	"github.com/urfave/cli"
)

// Shade every stride'th pixel of a built-in scene and report per-kind statistics.
func ShadeScene(ctx *cli.Context) error {
	setupLogging(ctx)

	name := ctx.Args().First()
	if name == "" {
		name = "default"
	}
	scn, err := scene.NewScene(name, geometry.CameraConfig{Width: ctx.Int("width")})
	if err != nil {
		logger.Error(err)
		return err
	}

	stride := ctx.Int("stride")
	start := time.Now()
	pixels := scn.ShadingPoints(stride, rand.New(rand.NewSource(ctx.Int64("seed"))))
	points := make([]shading.Point, len(pixels))
	for i, px := range pixels {
		points[i] = px.Point
	}
	records, batchErr := shading.EvaluateBatch(shading.NewScene(scn.Materials, nil), points, ctx.Int("workers"))
	elapsed := time.Since(start)
	logger.Noticef("shaded %d points of scene %q in %s", len(points), name, elapsed)

	stats, failed := shading.Tally(records)
	table := newTable(ctx, "Kind", "Points", "Mean F", "Max F", "Mean PDF", "Transmissive", "BSSRDF", "Fallback")
	for _, ks := range stats {
		table.Append([]string{
			ks.Kind.String(),
			fmt.Sprintf("%d", ks.Points),
			fmt.Sprintf("%.4f", ks.MeanF),
			fmt.Sprintf("%.4f", ks.MaxF),
			fmt.Sprintf("%.4g", ks.MeanPDF),
			fmt.Sprintf("%d", ks.Transmits),
			fmt.Sprintf("%d", ks.Subsurface),
			fmt.Sprintf("%d", ks.Fallbacks),
		})
	}
	table.SetFooter([]string{"ERRORS", fmt.Sprintf("%d", failed), "", "", "", "", "TIME", fmt.Sprintf("%s", elapsed)})
	table.Render()

	if out := ctx.String("out"); out != "" {
		if err := writeResponseImage(out, scn.Camera, pixels, records, stride); err != nil {
			logger.Error(err)
			return err
		}
		logger.Noticef("response image saved as %s", out)
	}
	return batchErr
}

// writeResponseImage paints each shaded pixel block with the average BSDF
// response scaled by pi, so a white diffuse surface maps to 1.
func writeResponseImage(filename string, camera *geometry.Camera, pixels []scene.PixelPoint, records []shading.Record, stride int) error {
	if stride < 1 {
		stride = 1
	}
	img := image.NewRGBA(image.Rect(0, 0, camera.Width(), camera.Height()))
	for i, px := range pixels {
		c := color.RGBA{R: 255, A: 255}
		if rec := records[i]; rec.Err == nil {
			v := uint8(255 * math.Sqrt(math.Min(1, math.Max(0, rec.F.Average()*math.Pi))))
			c = color.RGBA{R: v, G: v, B: v, A: 255}
		}
		for y := px.Y; y < min(px.Y+stride, camera.Height()); y++ {
			for x := px.X; x < min(px.X+stride, camera.Width()); x++ {
				img.Set(x, y, c)
			}
		}
	}

	if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}
	defer file.Close()
	if err := png.Encode(file, img); err != nil {
		return fmt.Errorf("saving PNG: %w", err)
	}
	return nil
}
