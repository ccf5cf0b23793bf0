package engine

import "github.com/chewxy/math32"

// Matrix4 represents a 4x4 matrix for translation, scale, rotation, and projection. It is indexed as matrix[row][column]
// and multiplies column vectors, so a transform built as T.Mult(R).Mult(S) scales first, then rotates, then translates.
type Matrix4 [4][4]float32

// NewMatrix4 returns a new identity Matrix4.
func NewMatrix4() Matrix4 {
	return Matrix4{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 1, 0},
		{0, 0, 0, 1},
	}
}

// NewMatrix4Translate returns a Matrix4 that translates by the given amounts.
func NewMatrix4Translate(x, y, z float32) Matrix4 {
	mat := NewMatrix4()
	mat[0][3] = x
	mat[1][3] = y
	mat[2][3] = z
	return mat
}

// NewMatrix4Scale returns a Matrix4 that scales by the given amounts.
func NewMatrix4Scale(x, y, z float32) Matrix4 {
	mat := NewMatrix4()
	mat[0][0] = x
	mat[1][1] = y
	mat[2][2] = z
	return mat
}

// NewMatrix4RotateX returns a Matrix4 rotating counter-clockwise around the X axis by angle radians.
func NewMatrix4RotateX(angle float32) Matrix4 {
	s, c := math32.Sin(angle), math32.Cos(angle)
	return Matrix4{
		{1, 0, 0, 0},
		{0, c, -s, 0},
		{0, s, c, 0},
		{0, 0, 0, 1},
	}
}

// NewMatrix4RotateY returns a Matrix4 rotating counter-clockwise around the Y axis by angle radians.
func NewMatrix4RotateY(angle float32) Matrix4 {
	s, c := math32.Sin(angle), math32.Cos(angle)
	return Matrix4{
		{c, 0, s, 0},
		{0, 1, 0, 0},
		{-s, 0, c, 0},
		{0, 0, 0, 1},
	}
}

// NewMatrix4RotateZ returns a Matrix4 rotating counter-clockwise around the Z axis by angle radians.
func NewMatrix4RotateZ(angle float32) Matrix4 {
	s, c := math32.Sin(angle), math32.Cos(angle)
	return Matrix4{
		{c, -s, 0, 0},
		{s, c, 0, 0},
		{0, 0, 1, 0},
		{0, 0, 0, 1},
	}
}

// NewMatrix4RotateFromEuler creates a rotation Matrix4 from Euler angles applied in XYZ order
// (the object is rotated around its local X axis first, then Y, then Z).
func NewMatrix4RotateFromEuler(euler Vector3) Matrix4 {
	return NewMatrix4RotateX(euler.X).Mult(NewMatrix4RotateY(euler.Y)).Mult(NewMatrix4RotateZ(euler.Z))
}

// NewProjectionPerspective generates a perspective frustum Matrix4. fovy is the vertical field of view in degrees,
// aspect is the view's width divided by its height, and near and far are the clipping planes.
func NewProjectionPerspective(fovy, aspect, near, far float32) Matrix4 {

	if aspect == 0 {
		aspect = 1
	}

	f := 1 / math32.Tan(fovy*math32.Pi/360)

	return Matrix4{
		{f / aspect, 0, 0, 0},
		{0, f, 0, 0},
		{0, 0, (far + near) / (near - far), (2 * far * near) / (near - far)},
		{0, 0, -1, 0},
	}

}

// NewLookAtMatrix generates a view Matrix4 for an eye at from looking towards to, with up being the upward
// direction (usually +Y). If from and to are the same, an identity translation to the eye is returned.
func NewLookAtMatrix(from, to, up Vector3) Matrix4 {

	forward := to.Sub(from).Unit()
	if forward.IsZero() {
		return NewMatrix4Translate(-from.X, -from.Y, -from.Z)
	}

	right := forward.Cross(up).Unit()

	// Looking straight along the up vector; pick another axis so the matrix stays usable.
	if right.IsZero() {
		right = forward.Cross(NewVector3(0, 0, 1)).Unit()
	}

	newUp := right.Cross(forward)

	return Matrix4{
		{right.X, right.Y, right.Z, -right.Dot(from)},
		{newUp.X, newUp.Y, newUp.Z, -newUp.Dot(from)},
		{-forward.X, -forward.Y, -forward.Z, forward.Dot(from)},
		{0, 0, 0, 1},
	}

}

// Mult returns matrix * other.
func (matrix Matrix4) Mult(other Matrix4) Matrix4 {

	var out Matrix4

	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			out[row][col] = matrix[row][0]*other[0][col] +
				matrix[row][1]*other[1][col] +
				matrix[row][2]*other[2][col] +
				matrix[row][3]*other[3][col]
		}
	}

	return out

}

// MultVec transforms the point provided by the Matrix4 (treating it as having a W of 1), ignoring the resulting W.
func (matrix Matrix4) MultVec(vec Vector3) Vector3 {
	return Vector3{
		X: matrix[0][0]*vec.X + matrix[0][1]*vec.Y + matrix[0][2]*vec.Z + matrix[0][3],
		Y: matrix[1][0]*vec.X + matrix[1][1]*vec.Y + matrix[1][2]*vec.Z + matrix[1][3],
		Z: matrix[2][0]*vec.X + matrix[2][1]*vec.Y + matrix[2][2]*vec.Z + matrix[2][3],
	}
}

// MultVecW transforms the point provided by the Matrix4, returning the homogeneous result; used for projection.
func (matrix Matrix4) MultVecW(vec Vector3) Vector4 {
	return Vector4{
		X: matrix[0][0]*vec.X + matrix[0][1]*vec.Y + matrix[0][2]*vec.Z + matrix[0][3],
		Y: matrix[1][0]*vec.X + matrix[1][1]*vec.Y + matrix[1][2]*vec.Z + matrix[1][3],
		Z: matrix[2][0]*vec.X + matrix[2][1]*vec.Y + matrix[2][2]*vec.Z + matrix[2][3],
		W: matrix[3][0]*vec.X + matrix[3][1]*vec.Y + matrix[3][2]*vec.Z + matrix[3][3],
	}
}

// MultDir transforms the direction provided by the upper 3x3 of the Matrix4, ignoring translation.
func (matrix Matrix4) MultDir(vec Vector3) Vector3 {
	return Vector3{
		X: matrix[0][0]*vec.X + matrix[0][1]*vec.Y + matrix[0][2]*vec.Z,
		Y: matrix[1][0]*vec.X + matrix[1][1]*vec.Y + matrix[1][2]*vec.Z,
		Z: matrix[2][0]*vec.X + matrix[2][1]*vec.Y + matrix[2][2]*vec.Z,
	}
}

// Equals returns true if both matrices are the same within a small tolerance.
func (matrix Matrix4) Equals(other Matrix4) bool {
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			if math32.Abs(matrix[row][col]-other[row][col]) > 1e-5 {
				return false
			}
		}
	}
	return true
}
