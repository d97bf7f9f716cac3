package texture

import (
	"fmt"
	"image"
	"math"

	"github.com/df07/go-material-eval/pkg/core"
)

// WrapMode controls lookups outside of the [0,1]^2 texture domain
type WrapMode int

const (
	WrapRepeat WrapMode = iota
	WrapClamp
	WrapBlack
)

func (w WrapMode) String() string {
	switch w {
	case WrapRepeat:
		return "repeat"
	case WrapClamp:
		return "clamp"
	case WrapBlack:
		return "black"
	}
	return "invalid"
}

// Image is a float image with an arbitrary number of channels.
// Pixels are stored row-major with (0,0) at the top-left.
type Image struct {
	Width     int
	Height    int
	NChannels int
	Pixels    []float64 // Pixels[(y*Width+x)*NChannels + c]
}

// NewImage creates a new image, validating the pixel buffer size
func NewImage(width, height, nChannels int, pixels []float64) (*Image, error) {
	if width <= 0 || height <= 0 || nChannels <= 0 {
		return nil, fmt.Errorf("image: invalid resolution %dx%d with %d channels", width, height, nChannels)
	}
	if len(pixels) != width*height*nChannels {
		return nil, fmt.Errorf("image: expected %d values, got %d", width*height*nChannels, len(pixels))
	}
	return &Image{Width: width, Height: height, NChannels: nChannels, Pixels: pixels}, nil
}

// NewRGBImage creates a 3-channel image from colors
func NewRGBImage(width, height int, colors []core.Vec3) *Image {
	pixels := make([]float64, 0, len(colors)*3)
	for _, c := range colors {
		pixels = append(pixels, c.X, c.Y, c.Z)
	}
	return &Image{Width: width, Height: height, NChannels: 3, Pixels: pixels}
}

// FromGoImage converts an already decoded image into a 3-channel float image in [0,1]
func FromGoImage(img image.Image) *Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	pixels := make([]float64, 0, w*h*3)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			pixels = append(pixels, float64(r)/0xffff, float64(g)/0xffff, float64(b)/0xffff)
		}
	}
	return &Image{Width: w, Height: h, NChannels: 3, Pixels: pixels}
}

// GetChannel returns a single texel channel, applying the wrap mode to (x, y)
func (img *Image) GetChannel(x, y, c int, wrap WrapMode) float64 {
	if !remap(&x, img.Width, wrap) || !remap(&y, img.Height, wrap) {
		return 0
	}
	return img.Pixels[(y*img.Width+x)*img.NChannels+c]
}

// BilerpChannel bilinearly interpolates channel c at continuous coordinates st in [0,1]^2
func (img *Image) BilerpChannel(st core.Vec2, c int, wrap WrapMode) float64 {
	x := st.X*float64(img.Width) - 0.5
	y := st.Y*float64(img.Height) - 0.5
	xf, yf := math.Floor(x), math.Floor(y)
	xi, yi := int(xf), int(yf)
	dx, dy := x-xf, y-yf

	return (1-dx)*(1-dy)*img.GetChannel(xi, yi, c, wrap) +
		dx*(1-dy)*img.GetChannel(xi+1, yi, c, wrap) +
		(1-dx)*dy*img.GetChannel(xi, yi+1, c, wrap) +
		dx*dy*img.GetChannel(xi+1, yi+1, c, wrap)
}

// remap applies the wrap mode to a texel coordinate and reports whether it is valid
func remap(v *int, size int, wrap WrapMode) bool {
	switch wrap {
	case WrapRepeat:
		*v %= size
		if *v < 0 {
			*v += size
		}
	case WrapClamp:
		*v = max(0, min(size-1, *v))
	case WrapBlack:
		if *v < 0 || *v >= size {
			return false
		}
	}
	return true
}
