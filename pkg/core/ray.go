package core

// Ray represents a ray with an origin and direction
type Ray struct {
	Origin    Vec3
	Direction Vec3
}

// NewRay creates a new ray
func NewRay(origin, direction Vec3) Ray {
	return Ray{Origin: origin, Direction: direction}
}

// At returns the point at parameter t along the ray
func (r Ray) At(t float64) Vec3 {
	return r.Origin.Add(r.Direction.Multiply(t))
}

// RayDifferential is a ray plus two auxiliary rays offset by one pixel in x and y
type RayDifferential struct {
	Ray
	HasDifferentials bool
	RxOrigin         Vec3
	RyOrigin         Vec3
	RxDirection      Vec3
	RyDirection      Vec3
}

// ScaleDifferentials shrinks the pixel offsets, typically by 1/sqrt(samplesPerPixel)
func (r *RayDifferential) ScaleDifferentials(s float64) {
	r.RxOrigin = r.Origin.Add(r.RxOrigin.Subtract(r.Origin).Multiply(s))
	r.RyOrigin = r.Origin.Add(r.RyOrigin.Subtract(r.Origin).Multiply(s))
	r.RxDirection = r.Direction.Add(r.RxDirection.Subtract(r.Direction).Multiply(s))
	r.RyDirection = r.Direction.Add(r.RyDirection.Subtract(r.Direction).Multiply(s))
}
