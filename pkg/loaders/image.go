package loaders

import (
	"fmt"
	"image"
	_ "image/jpeg" // JPEG decoder
	_ "image/png"  // PNG decoder
	"os"

	"github.com/df07/go-material-eval/pkg/log"
	"github.com/df07/go-material-eval/pkg/texture"
)

var logger = log.New("loaders")

// LoadImage loads a PNG or JPEG file as a 3-channel texture image in [0,1]
func LoadImage(filename string) (*texture.Image, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open image file: %w", err)
	}
	defer file.Close()

	img, format, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", filename, err)
	}
	logger.Debugf("Loaded %s image %s (%dx%d)", format, filename, img.Bounds().Dx(), img.Bounds().Dy())
	return texture.FromGoImage(img), nil
}

// LoadNormalMap loads a tangent-space normal map. Texel values are stored
// unchanged; decoding to [-1,1] happens at lookup.
func LoadNormalMap(filename string) (*texture.Image, error) {
	img, err := LoadImage(filename)
	if err != nil {
		return nil, err
	}
	if img.Width == 0 || img.Height == 0 {
		return nil, fmt.Errorf("normal map %s is empty", filename)
	}
	return img, nil
}
