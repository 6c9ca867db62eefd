package sdf

import (
	"errors"
	"math"

	"github.com/taigrr/marcher/pkg/math3d"
)

// ErrSingularMatrix is returned by Transform for a non-invertible matrix.
var ErrSingularMatrix = errors.New("sdf: singular transform matrix")

// Constant returns a field that evaluates to v everywhere.
func Constant(v MapValue) Field {
	return func(math3d.Vec3) MapValue { return v }
}

// UnionFields folds Union over fs from left to right.
func UnionFields(fs ...Field) Field {
	return fold(Union, fs)
}

// IntersectFields intersects a with b. The material is a's.
func IntersectFields(a, b Field) Field {
	return fold(Intersect, []Field{a, b})
}

// SubtractFields carves b out of a.
func SubtractFields(a, b Field) Field {
	return fold(Subtract, []Field{a, b})
}

// SmoothUnionFields folds SmoothUnionK with sharpness k over fs. The
// material of the result is the first field's.
func SmoothUnionFields(k float64, fs ...Field) Field {
	return fold(func(a, b MapValue) MapValue { return SmoothUnionK(a, b, k) }, fs)
}

// Combine applies op to the values of a and b at every point.
func Combine(op func(a, b MapValue) MapValue, a, b Field) Field {
	return fold(op, []Field{a, b})
}

func fold(op func(a, b MapValue) MapValue, fs []Field) Field {
	if len(fs) == 0 {
		panic("sdf: no fields to combine")
	}
	for _, f := range fs {
		if f == nil {
			panic("sdf: nil field")
		}
	}
	if len(fs) == 1 {
		return fs[0]
	}
	return func(p math3d.Vec3) MapValue {
		v := fs[0](p)
		for _, f := range fs[1:] {
			v = op(v, f(p))
		}
		return v
	}
}

// Translate moves f by offset.
func Translate(f Field, offset math3d.Vec3) Field {
	if f == nil {
		panic("sdf: nil field")
	}
	return func(p math3d.Vec3) MapValue {
		return f(p.Sub(offset))
	}
}

// Rotate turns f by angle radians about axis through the origin. A zero
// axis leaves f unchanged.
func Rotate(f Field, axis math3d.Vec3, angle float64) Field {
	return RotateMatrix(f, math3d.RotationMatrix(axis, angle))
}

// RotateMatrix turns f by the rotation r. The field is queried with r's
// transpose, its inverse.
func RotateMatrix(f Field, r math3d.Mat3) Field {
	if f == nil {
		panic("sdf: nil field")
	}
	inv := r.Transpose()
	return func(p math3d.Vec3) MapValue {
		return f(inv.MulVec3(p))
	}
}

// Transform places f with the affine matrix m. Distances are only preserved
// for rigid transforms; a uniform scale s is corrected for, other scales
// yield a bound rather than a distance.
func Transform(f Field, m math3d.Mat4) (Field, error) {
	if f == nil {
		panic("sdf: nil field")
	}
	det := m.Determinant()
	if math.Abs(det) < 1e-12 {
		return nil, ErrSingularMatrix
	}
	inv := m.Inverse()
	scale := math.Cbrt(math.Abs(det))
	return func(p math3d.Vec3) MapValue {
		v := f(inv.MulVec3(p))
		v.SignedDistance *= scale
		return v
	}, nil
}
