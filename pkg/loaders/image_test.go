package loaders

import (
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/df07/go-material-eval/pkg/texture"
)

func writePNG(t *testing.T, path string, img image.Image) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("Failed to encode PNG: %v", err)
	}
}

func TestLoadImage(t *testing.T) {
	testFile := filepath.Join(t.TempDir(), "test.png")

	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, G: 255, B: 255, A: 255})
	img.Set(1, 0, color.RGBA{R: 255, G: 0, B: 0, A: 255})
	img.Set(0, 1, color.RGBA{R: 0, G: 255, B: 0, A: 255})
	img.Set(1, 1, color.RGBA{R: 0, G: 0, B: 255, A: 255})
	writePNG(t, testFile, img)

	loaded, err := LoadImage(testFile)
	if err != nil {
		t.Fatalf("LoadImage failed: %v", err)
	}
	if loaded.Width != 2 || loaded.Height != 2 || loaded.NChannels != 3 {
		t.Fatalf("Expected 2x2x3 image, got %dx%dx%d", loaded.Width, loaded.Height, loaded.NChannels)
	}

	tests := []struct {
		name    string
		x, y    int
		r, g, b float64
	}{
		{"top-left white", 0, 0, 1, 1, 1},
		{"top-right red", 1, 0, 1, 0, 0},
		{"bottom-left green", 0, 1, 0, 1, 0},
		{"bottom-right blue", 1, 1, 0, 0, 1},
	}
	const tolerance = 0.01
	for _, tt := range tests {
		for c, want := range []float64{tt.r, tt.g, tt.b} {
			got := loaded.GetChannel(tt.x, tt.y, c, texture.WrapRepeat)
			if math.Abs(got-want) > tolerance {
				t.Errorf("%s channel %d: expected %g, got %g", tt.name, c, want, got)
			}
		}
	}
}

func TestLoadNormalMap(t *testing.T) {
	testFile := filepath.Join(t.TempDir(), "normal.png")
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, color.RGBA{R: 128, G: 128, B: 255, A: 255})
		}
	}
	writePNG(t, testFile, img)

	nm, err := LoadNormalMap(testFile)
	if err != nil {
		t.Fatalf("LoadNormalMap failed: %v", err)
	}
	if z := nm.GetChannel(2, 2, 2, texture.WrapRepeat); math.Abs(z-1) > 1e-9 {
		t.Errorf("Expected blue channel 1, got %g", z)
	}
}

func TestLoadImageErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := LoadImage(filepath.Join(dir, "missing.png")); err == nil {
		t.Error("Expected error for missing file")
	}

	bad := filepath.Join(dir, "bad.png")
	if err := os.WriteFile(bad, []byte("not an image"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadImage(bad); err == nil {
		t.Error("Expected error for undecodable file")
	}
}
