package texture

import (
	"github.com/df07/go-material-eval/pkg/core"
)

// NewCheckerboardImage creates a procedural checkerboard pattern image
func NewCheckerboardImage(width, height, checkSize int, color1, color2 core.Vec3) *Image {
	pixels := make([]core.Vec3, width*height)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			checkX := x / checkSize
			checkY := y / checkSize

			color := color2
			if (checkX+checkY)%2 == 0 {
				color = color1
			}
			pixels[y*width+x] = color
		}
	}

	return NewRGBImage(width, height, pixels)
}

// NewUVDebugImage creates an image showing UV coordinates as colors
// U maps to red channel, V maps to green channel
func NewUVDebugImage(width, height int) *Image {
	pixels := make([]core.Vec3, width*height)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			u := float64(x) / float64(width-1)
			v := float64(y) / float64(height-1)
			pixels[y*width+x] = core.NewVec3(u, v, 0.0)
		}
	}

	return NewRGBImage(width, height, pixels)
}

// NewGradientImage creates a vertical gradient from color1 (top) to color2 (bottom)
func NewGradientImage(width, height int, color1, color2 core.Vec3) *Image {
	pixels := make([]core.Vec3, width*height)

	for y := 0; y < height; y++ {
		t := float64(y) / float64(height-1)
		color := color1.Multiply(1.0 - t).Add(color2.Multiply(t))

		for x := 0; x < width; x++ {
			pixels[y*width+x] = color
		}
	}

	return NewRGBImage(width, height, pixels)
}

// NewConstantNormalMap encodes a single tangent-space normal into every texel.
// Components are remapped from [-1,1] to [0,1].
func NewConstantNormalMap(width, height int, n core.Vec3) *Image {
	n = n.Normalize()
	encoded := core.NewVec3(0.5*(n.X+1), 0.5*(n.Y+1), 0.5*(n.Z+1))
	pixels := make([]core.Vec3, width*height)
	for i := range pixels {
		pixels[i] = encoded
	}
	return NewRGBImage(width, height, pixels)
}

// NewBumpRampImage creates a single-channel height ramp that increases along u.
// Used as a displacement source with FloatImageTexture.
func NewBumpRampImage(width, height int, amplitude float64) *Image {
	pixels := make([]float64, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			pixels[y*width+x] = amplitude * float64(x) / float64(width-1)
		}
	}
	return &Image{Width: width, Height: height, NChannels: 1, Pixels: pixels}
}
