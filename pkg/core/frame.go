package core

// Frame is an orthonormal basis used to move directions between world space
// and a local shading space where Z is the normal.
type Frame struct {
	X, Y, Z Vec3
}

// FrameFromZ builds a frame around the unit vector z
func FrameFromZ(z Vec3) Frame {
	x, y := CoordinateSystem(z)
	return Frame{X: x, Y: y, Z: z}
}

// FrameFromXZ builds a frame from two orthonormal vectors
func FrameFromXZ(x, z Vec3) Frame {
	return Frame{X: x, Y: z.Cross(x), Z: z}
}

// ToLocal expresses a world-space direction in the frame
func (f Frame) ToLocal(v Vec3) Vec3 {
	return NewVec3(v.Dot(f.X), v.Dot(f.Y), v.Dot(f.Z))
}

// FromLocal converts a frame-local direction back to world space
func (f Frame) FromLocal(v Vec3) Vec3 {
	return f.X.Multiply(v.X).Add(f.Y.Multiply(v.Y)).Add(f.Z.Multiply(v.Z))
}
