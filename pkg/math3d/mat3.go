package math3d

import "math"

// Mat3 is a 3x3 matrix stored in row-major order.
//
// Memory layout (indices):
// | 0 1 2 |
// | 3 4 5 |
// | 6 7 8 |
//
// Mat3 is used for pure rotations of query points, where Mat4's
// translation column is dead weight.
type Mat3 [9]float64

// Identity3 returns the 3x3 identity matrix.
func Identity3() Mat3 {
	return Mat3{
		1, 0, 0,
		0, 1, 0,
		0, 0, 1,
	}
}

// RotationMatrix builds the rotation of angle radians about axis using
// Rodrigues' formula. The axis is normalized internally; a zero axis yields
// the identity. The result is right-handed and row-major: Metal's
// float3x3(a, b, c) takes columns, so the same nine literals there give
// the transpose, a rotation by -angle.
func RotationMatrix(axis Vec3, angle float64) Mat3 {
	if axis.LenSq() == 0 {
		return Identity3()
	}
	axis = axis.Normalize()
	s, c := math.Sin(angle), math.Cos(angle)
	oc := 1 - c
	x, y, z := axis.X, axis.Y, axis.Z

	return Mat3{
		oc*x*x + c, oc*x*y - z*s, oc*z*x + y*s,
		oc*x*y + z*s, oc*y*y + c, oc*y*z - x*s,
		oc*z*x - y*s, oc*y*z + x*s, oc*z*z + c,
	}
}

// Mul multiplies two matrices: a * b.
//
//nolint:st1016 // a*b naming convention is clearer for matrix multiplication
func (a Mat3) Mul(b Mat3) Mat3 {
	var m Mat3
	for row := range 3 {
		for col := range 3 {
			var sum float64
			for k := range 3 {
				sum += a[row*3+k] * b[k*3+col]
			}
			m[row*3+col] = sum
		}
	}
	return m
}

// MulVec3 returns m * v.
func (m Mat3) MulVec3(v Vec3) Vec3 {
	return Vec3{
		m[0]*v.X + m[1]*v.Y + m[2]*v.Z,
		m[3]*v.X + m[4]*v.Y + m[5]*v.Z,
		m[6]*v.X + m[7]*v.Y + m[8]*v.Z,
	}
}

// Transpose returns the transposed matrix. For a rotation this is its inverse.
func (m Mat3) Transpose() Mat3 {
	return Mat3{
		m[0], m[3], m[6],
		m[1], m[4], m[7],
		m[2], m[5], m[8],
	}
}

// Determinant returns the determinant of the matrix.
func (m Mat3) Determinant() float64 {
	return m[0]*(m[4]*m[8]-m[5]*m[7]) -
		m[1]*(m[3]*m[8]-m[5]*m[6]) +
		m[2]*(m[3]*m[7]-m[4]*m[6])
}
