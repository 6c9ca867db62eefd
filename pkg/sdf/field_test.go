package sdf

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taigrr/marcher/pkg/math3d"
)

func sphereField(center math3d.Vec3, r float64, m Material) Field {
	return func(p math3d.Vec3) MapValue { return Sphere(p, center, r, m) }
}

func TestUnionFields(t *testing.T) {
	f := UnionFields(
		sphereField(math3d.V3(-2, 0, 0), 1, red),
		sphereField(math3d.V3(2, 0, 0), 1, green),
		sphereField(math3d.V3(0, 3, 0), 1, blue),
	)

	tests := []struct {
		name     string
		p        math3d.Vec3
		distance float64
		material Material
	}{
		{"left", math3d.V3(-2, 0, 0), -1, red},
		{"right", math3d.V3(3, 0, 0), 0, green},
		{"top", math3d.V3(0, 5, 0), 1, blue},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			v := f(tc.p)
			assert.InDelta(t, tc.distance, v.SignedDistance, tol)
			assert.Equal(t, tc.material, v.Material)
		})
	}
}

func TestSingleFieldPassesThrough(t *testing.T) {
	s := sphereField(math3d.Zero3(), 1, red)
	f := UnionFields(s)
	p := math3d.V3(0.3, 2, -1)
	assert.Equal(t, s(p), f(p))
}

func TestFieldOperators(t *testing.T) {
	outer := sphereField(math3d.Zero3(), 2, red)
	inner := sphereField(math3d.Zero3(), 1, green)

	sub := SubtractFields(outer, inner)
	assert.Less(t, sub(math3d.V3(1.5, 0, 0)).SignedDistance, 0.0)
	assert.Greater(t, sub(math3d.V3(0.5, 0, 0)).SignedDistance, 0.0)

	in := IntersectFields(inner, outer)
	v := in(math3d.V3(1.5, 0, 0))
	assert.InDelta(t, 0.5, v.SignedDistance, tol)
	assert.Equal(t, green, v.Material)

	blend := SmoothUnionFields(8, inner, sphereField(math3d.V3(1.5, 0, 0), 1, blue))
	mid := blend(math3d.V3(0.7, 0, 0))
	assert.InDelta(t, SmoothMin(-0.3, -0.2, 8), mid.SignedDistance, tol)
	assert.Equal(t, green, mid.Material)

	poly := Combine(func(a, b MapValue) MapValue { return SmoothUnionPoly(a, b, 0.5) }, inner, outer)
	assert.Less(t, poly(math3d.Zero3()).SignedDistance, -2.0+tol)
}

func TestConstant(t *testing.T) {
	v := mv(4, blue)
	f := Constant(v)
	assert.Equal(t, v, f(math3d.V3(100, -3, 2)))
}

func TestTranslate(t *testing.T) {
	f := Translate(sphereField(math3d.Zero3(), 1, red), math3d.V3(0, 0, -5))
	assert.InDelta(t, -1, f(math3d.V3(0, 0, -5)).SignedDistance, tol)
	assert.InDelta(t, 4, f(math3d.Zero3()).SignedDistance, tol)
}

func TestRotate(t *testing.T) {
	box := func(p math3d.Vec3) MapValue { return Box(p, math3d.V3(2, 1, 1), red) }

	t.Run("quarter turn about z", func(t *testing.T) {
		f := Rotate(box, math3d.V3(0, 0, 1), math.Pi/2)
		// The long axis now points along y.
		assert.InDelta(t, 0.5, f(math3d.V3(0, 2.5, 0)).SignedDistance, tol)
		assert.InDelta(t, 1.5, f(math3d.V3(2.5, 0, 0)).SignedDistance, tol)
	})

	t.Run("zero axis", func(t *testing.T) {
		f := Rotate(box, math3d.Zero3(), 1)
		p := math3d.V3(2.5, 0.3, -0.2)
		assert.InDelta(t, box(p).SignedDistance, f(p).SignedDistance, tol)
	})

	t.Run("rotation moves points forward", func(t *testing.T) {
		marker := sphereField(math3d.V3(1, 0, 0), 0.1, red)
		f := RotateMatrix(marker, math3d.RotationMatrix(math3d.V3(0, 0, 1), math.Pi/2))
		// Rotating (1,0,0) by +90 degrees about z lands on (0,1,0).
		assert.InDelta(t, -0.1, f(math3d.V3(0, 1, 0)).SignedDistance, tol)
	})
}

func TestTransform(t *testing.T) {
	m := math3d.Translate(math3d.V3(5, 0, 0)).Mul(math3d.ScaleUniform(2))
	f, err := Transform(sphereField(math3d.Zero3(), 1, red), m)
	require.NoError(t, err)

	// Unit sphere becomes a radius-2 sphere at (5,0,0).
	assert.InDelta(t, 1, f(math3d.V3(8, 0, 0)).SignedDistance, tol)
	assert.InDelta(t, -2, f(math3d.V3(5, 0, 0)).SignedDistance, tol)
	assert.Equal(t, red, f(math3d.Zero3()).Material)

	_, err = Transform(sphereField(math3d.Zero3(), 1, red), math3d.Scale(math3d.V3(1, 0, 1)))
	assert.ErrorIs(t, err, ErrSingularMatrix)
}

func TestNilFieldPanics(t *testing.T) {
	s := sphereField(math3d.Zero3(), 1, red)
	assert.Panics(t, func() { UnionFields() })
	assert.Panics(t, func() { UnionFields(s, nil) })
	assert.Panics(t, func() { SubtractFields(nil, s) })
	assert.Panics(t, func() { Translate(nil, math3d.Zero3()) })
	assert.Panics(t, func() { Rotate(nil, math3d.Up(), 1) })
	assert.Panics(t, func() { _, _ = Transform(nil, math3d.Identity()) })
}

func BenchmarkUnionFields(b *testing.B) {
	f := UnionFields(
		sphereField(math3d.V3(-2, 0, 0), 1, red),
		sphereField(math3d.V3(2, 0, 0), 1, green),
		func(p math3d.Vec3) MapValue { return Dodecahedron(p, 1, blue) },
	)
	p := math3d.V3(0.5, 0.5, 0.5)
	for b.Loop() {
		_ = f(p)
	}
}
