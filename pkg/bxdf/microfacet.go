package bxdf

import (
	"fmt"
	"math"

	"github.com/df07/go-material-eval/pkg/core"
)

// TrowbridgeReitzDistribution is the anisotropic GGX microfacet distribution
type TrowbridgeReitzDistribution struct {
	alphaX, alphaY float64
}

// NewTrowbridgeReitzDistribution creates a distribution. When the surface is
// rough in one direction, the other alpha is kept away from zero so that D
// stays finite.
func NewTrowbridgeReitzDistribution(alphaX, alphaY float64) TrowbridgeReitzDistribution {
	d := TrowbridgeReitzDistribution{alphaX: alphaX, alphaY: alphaY}
	if !d.EffectivelySmooth() {
		d.alphaX = math.Max(d.alphaX, 1e-4)
		d.alphaY = math.Max(d.alphaY, 1e-4)
	}
	return d
}

// RoughnessToAlpha maps a perceptually uniform roughness in [0,1] to alpha
func RoughnessToAlpha(roughness float64) float64 {
	return math.Sqrt(roughness)
}

// AlphaX returns the alpha along the shading tangent
func (d TrowbridgeReitzDistribution) AlphaX() float64 { return d.alphaX }

// AlphaY returns the alpha along the shading bitangent
func (d TrowbridgeReitzDistribution) AlphaY() float64 { return d.alphaY }

// EffectivelySmooth reports whether the distribution should be treated as a perfect specular surface
func (d TrowbridgeReitzDistribution) EffectivelySmooth() bool {
	return math.Max(d.alphaX, d.alphaY) < 1e-3
}

// D is the microfacet normal distribution
func (d TrowbridgeReitzDistribution) D(wm core.Vec3) float64 {
	tan2Theta := core.Tan2Theta(wm)
	if math.IsInf(tan2Theta, 0) || math.IsNaN(tan2Theta) {
		return 0
	}
	cos4Theta := core.Sqr(core.Cos2Theta(wm))
	if cos4Theta < 1e-16 {
		return 0
	}
	e := tan2Theta * (core.Sqr(core.CosPhi(wm)/d.alphaX) + core.Sqr(core.SinPhi(wm)/d.alphaY))
	return 1 / (math.Pi * d.alphaX * d.alphaY * cos4Theta * core.Sqr(1+e))
}

// Lambda is the Smith auxiliary function
func (d TrowbridgeReitzDistribution) Lambda(w core.Vec3) float64 {
	tan2Theta := core.Tan2Theta(w)
	if math.IsInf(tan2Theta, 0) || math.IsNaN(tan2Theta) {
		return 0
	}
	alpha2 := core.Sqr(core.CosPhi(w)*d.alphaX) + core.Sqr(core.SinPhi(w)*d.alphaY)
	return (math.Sqrt(1+alpha2*tan2Theta) - 1) / 2
}

// G1 is the masking function
func (d TrowbridgeReitzDistribution) G1(w core.Vec3) float64 {
	return 1 / (1 + d.Lambda(w))
}

// G is the height-correlated masking-shadowing function
func (d TrowbridgeReitzDistribution) G(wo, wi core.Vec3) float64 {
	return 1 / (1 + d.Lambda(wo) + d.Lambda(wi))
}

// DVisible is the distribution of visible normals from direction w
func (d TrowbridgeReitzDistribution) DVisible(w, wm core.Vec3) float64 {
	return d.G1(w) / core.AbsCosTheta(w) * d.D(wm) * w.AbsDot(wm)
}

// PDF is the density of SampleWm
func (d TrowbridgeReitzDistribution) PDF(w, wm core.Vec3) float64 {
	return d.DVisible(w, wm)
}

// SampleWm samples a visible microfacet normal as seen from w
func (d TrowbridgeReitzDistribution) SampleWm(w core.Vec3, u core.Vec2) core.Vec3 {
	wh := core.NewVec3(d.alphaX*w.X, d.alphaY*w.Y, w.Z).Normalize()
	if wh.Z < 0 {
		wh = wh.Negate()
	}

	t1 := core.NewVec3(1, 0, 0)
	if wh.Z < 0.99999 {
		t1 = core.NewVec3(0, 0, 1).Cross(wh).Normalize()
	}
	t2 := wh.Cross(t1)

	r := math.Sqrt(u.X)
	theta := 2 * math.Pi * u.Y
	px, py := r*math.Cos(theta), r*math.Sin(theta)

	h := math.Sqrt(1 - core.Sqr(px))
	py = core.Lerp((1+wh.Z)/2, h, py)

	pz := math.Sqrt(math.Max(0, 1-px*px-py*py))
	nh := t1.Multiply(px).Add(t2.Multiply(py)).Add(wh.Multiply(pz))
	return core.NewVec3(d.alphaX*nh.X, d.alphaY*nh.Y, math.Max(1e-6, nh.Z)).Normalize()
}

func (d TrowbridgeReitzDistribution) String() string {
	return fmt.Sprintf("[ TrowbridgeReitzDistribution alpha_x: %g alpha_y: %g ]", d.alphaX, d.alphaY)
}
