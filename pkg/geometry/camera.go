package geometry

import (
	"math"

	"github.com/df07/go-material-eval/pkg/core"
)

// CameraConfig describes a pinhole camera
type CameraConfig struct {
	Center      core.Vec3 `json:"center"`
	LookAt      core.Vec3 `json:"lookAt"`
	Up          core.Vec3 `json:"up"`
	Width       int       `json:"width"`
	AspectRatio float64   `json:"aspectRatio"`
	VFov        float64   `json:"vfov"` // Vertical field of view in degrees
}

// MergeCameraConfig returns base with every non-zero field of override applied
func MergeCameraConfig(base, override CameraConfig) CameraConfig {
	result := base
	if !override.Center.IsZero() {
		result.Center = override.Center
	}
	if !override.LookAt.IsZero() {
		result.LookAt = override.LookAt
	}
	if !override.Up.IsZero() {
		result.Up = override.Up
	}
	if override.Width != 0 {
		result.Width = override.Width
	}
	if override.AspectRatio != 0 {
		result.AspectRatio = override.AspectRatio
	}
	if override.VFov != 0 {
		result.VFov = override.VFov
	}
	return result
}

// Camera generates rays with pixel differentials
type Camera struct {
	config      CameraConfig
	height      int
	origin      core.Vec3
	upperLeft   core.Vec3
	pixelDeltaU core.Vec3
	pixelDeltaV core.Vec3
}

// NewCamera creates a pinhole camera from config
func NewCamera(config CameraConfig) *Camera {
	height := int(float64(config.Width) / config.AspectRatio)
	if height < 1 {
		height = 1
	}

	theta := core.Radians(config.VFov)
	viewportHeight := 2 * math.Tan(theta/2)
	viewportWidth := viewportHeight * float64(config.Width) / float64(height)

	// Orthonormal camera basis, w points away from the view direction
	w := config.Center.Subtract(config.LookAt).Normalize()
	u := config.Up.Cross(w).Normalize()
	v := w.Cross(u)

	horizontal := u.Multiply(viewportWidth)
	vertical := v.Multiply(-viewportHeight)
	upperLeft := config.Center.Subtract(w).
		Subtract(horizontal.Multiply(0.5)).
		Subtract(vertical.Multiply(0.5))

	return &Camera{
		config:      config,
		height:      height,
		origin:      config.Center,
		upperLeft:   upperLeft,
		pixelDeltaU: horizontal.Multiply(1 / float64(config.Width)),
		pixelDeltaV: vertical.Multiply(1 / float64(height)),
	}
}

// Width returns the image width in pixels
func (c *Camera) Width() int { return c.config.Width }

// Height returns the image height in pixels
func (c *Camera) Height() int { return c.height }

// Config returns the configuration the camera was built from
func (c *Camera) Config() CameraConfig { return c.config }

// GenerateRay returns the primary ray through film position (x, y) in pixels,
// with auxiliary rays offset by one pixel in x and y
func (c *Camera) GenerateRay(x, y float64) core.RayDifferential {
	rd := core.RayDifferential{
		Ray:              core.NewRay(c.origin, c.filmPoint(x, y).Subtract(c.origin).Normalize()),
		HasDifferentials: true,
		RxOrigin:         c.origin,
		RyOrigin:         c.origin,
	}
	rd.RxDirection = c.filmPoint(x+1, y).Subtract(c.origin).Normalize()
	rd.RyDirection = c.filmPoint(x, y+1).Subtract(c.origin).Normalize()
	return rd
}

func (c *Camera) filmPoint(x, y float64) core.Vec3 {
	return c.upperLeft.Add(c.pixelDeltaU.Multiply(x)).Add(c.pixelDeltaV.Multiply(y))
}
