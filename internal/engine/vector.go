package engine

import "github.com/chewxy/math32"

// WorldUp is the upward direction in the right-handed, Y-up coordinate system used throughout.
var WorldUp = NewVector3(0, 1, 0)

// Vector3 represents a 3D Vector (position, direction, scale, etc).
// Vector3 functions return modified copies, so they can be chained.
type Vector3 struct {
	X, Y, Z float32
}

// NewVector3 creates a new Vector3 with the specified x, y, and z components.
func NewVector3(x, y, z float32) Vector3 {
	return Vector3{X: x, Y: y, Z: z}
}

// Add returns a copy of the calling Vector3, added together with the other Vector3 provided.
func (vec Vector3) Add(other Vector3) Vector3 {
	vec.X += other.X
	vec.Y += other.Y
	vec.Z += other.Z
	return vec
}

// Sub returns a copy of the calling Vector3, with the other Vector3 subtracted from it.
func (vec Vector3) Sub(other Vector3) Vector3 {
	vec.X -= other.X
	vec.Y -= other.Y
	vec.Z -= other.Z
	return vec
}

// Scale returns a copy of the Vector3 with each component multiplied by the scalar provided.
func (vec Vector3) Scale(scalar float32) Vector3 {
	vec.X *= scalar
	vec.Y *= scalar
	vec.Z *= scalar
	return vec
}

// Invert returns a copy of the Vector3 pointing the other way.
func (vec Vector3) Invert() Vector3 {
	return Vector3{-vec.X, -vec.Y, -vec.Z}
}

// Dot returns the dot product of the calling Vector3 and the other Vector3.
func (vec Vector3) Dot(other Vector3) float32 {
	return vec.X*other.X + vec.Y*other.Y + vec.Z*other.Z
}

// Cross returns the cross product of the calling Vector3 and the other Vector3.
func (vec Vector3) Cross(other Vector3) Vector3 {
	return Vector3{
		X: vec.Y*other.Z - vec.Z*other.Y,
		Y: vec.Z*other.X - vec.X*other.Z,
		Z: vec.X*other.Y - vec.Y*other.X,
	}
}

// Magnitude returns the length of the Vector3.
func (vec Vector3) Magnitude() float32 {
	return math32.Sqrt(vec.MagnitudeSquared())
}

// MagnitudeSquared returns the squared length of the Vector3; this is faster than Magnitude() as it avoids a square root.
func (vec Vector3) MagnitudeSquared() float32 {
	return vec.X*vec.X + vec.Y*vec.Y + vec.Z*vec.Z
}

// Distance returns the distance from the calling Vector3 to the other Vector3.
func (vec Vector3) Distance(other Vector3) float32 {
	return vec.Sub(other).Magnitude()
}

// Unit returns a copy of the Vector3 with a length of 1. A zero-length Vector3 is returned unchanged.
func (vec Vector3) Unit() Vector3 {
	l := vec.Magnitude()
	if l == 0 {
		return vec
	}
	return vec.Scale(1 / l)
}

// Min returns a Vector3 holding the smaller of each component.
func (vec Vector3) Min(other Vector3) Vector3 {
	return Vector3{math32.Min(vec.X, other.X), math32.Min(vec.Y, other.Y), math32.Min(vec.Z, other.Z)}
}

// Max returns a Vector3 holding the larger of each component.
func (vec Vector3) Max(other Vector3) Vector3 {
	return Vector3{math32.Max(vec.X, other.X), math32.Max(vec.Y, other.Y), math32.Max(vec.Z, other.Z)}
}

// Equals returns true if the two Vectors are close enough in all values.
func (vec Vector3) Equals(other Vector3) bool {
	const eps = 1e-5
	return math32.Abs(vec.X-other.X) <= eps &&
		math32.Abs(vec.Y-other.Y) <= eps &&
		math32.Abs(vec.Z-other.Z) <= eps
}

// IsZero returns true if all components are zero.
func (vec Vector3) IsZero() bool {
	return vec.X == 0 && vec.Y == 0 && vec.Z == 0
}

// Vector4 is a homogeneous vector produced by projecting a Vector3 through a Matrix4.
type Vector4 struct {
	X, Y, Z, W float32
}

// XYZ drops the W component.
func (vec Vector4) XYZ() Vector3 {
	return Vector3{vec.X, vec.Y, vec.Z}
}
