package sdf

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taigrr/marcher/pkg/math3d"
)

func TestAABBBasics(t *testing.T) {
	box := NewAABB(math3d.V3(-1, -2, -3), math3d.V3(1, 2, 3))

	assert.Equal(t, math3d.V3(0, 0, 0), box.Center())
	assert.Equal(t, math3d.V3(2, 4, 6), box.Size())
	assert.Equal(t, math3d.V3(1, 2, 3), box.HalfSize())

	grown := box.Expand(0.5)
	assert.Equal(t, math3d.V3(-1.5, -2.5, -3.5), grown.Min)
	assert.Equal(t, math3d.V3(1.5, 2.5, 3.5), grown.Max)
}

func TestAABBContainsPoint(t *testing.T) {
	box := NewAABB(math3d.V3(0, 0, 0), math3d.V3(10, 10, 10))

	tests := []struct {
		name     string
		point    math3d.Vec3
		expected bool
	}{
		{"center", math3d.V3(5, 5, 5), true},
		{"corner min", math3d.V3(0, 0, 0), true},
		{"corner max", math3d.V3(10, 10, 10), true},
		{"outside X", math3d.V3(-1, 5, 5), false},
		{"outside Y", math3d.V3(5, 11, 5), false},
		{"outside Z", math3d.V3(5, 5, -0.1), false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, box.ContainsPoint(tc.point))
		})
	}
}

func TestAABBTransform(t *testing.T) {
	box := NewAABB(math3d.V3(-1, -1, -1), math3d.V3(1, 1, 1))

	moved := box.Transform(math3d.Translate(math3d.V3(5, 0, 0)))
	assert.InDelta(t, 4, moved.Min.X, tol)
	assert.InDelta(t, 6, moved.Max.X, tol)

	// A 45 degree turn about y widens the box to sqrt(2) in x and z.
	turned := box.Transform(math3d.RotateY(math.Pi / 4))
	assert.InDelta(t, math.Sqrt2, turned.Max.X, tol)
	assert.InDelta(t, -math.Sqrt2, turned.Min.Z, tol)
	assert.InDelta(t, 1, turned.Max.Y, tol)
}

func TestAABBIntersectRay(t *testing.T) {
	box := NewAABB(math3d.V3(-1, -1, -1), math3d.V3(1, 1, 1))

	tests := []struct {
		name      string
		ray       Ray
		hit       bool
		near, far float64
	}{
		{"head on", NewRay(math3d.V3(0, 0, 5), math3d.V3(0, 0, -1)), true, 4, 6},
		{"from inside", NewRay(math3d.V3(0, 0, 0), math3d.V3(1, 0, 0)), true, -1, 1},
		{"miss", NewRay(math3d.V3(0, 3, 5), math3d.V3(0, 0, -1)), false, 0, 0},
		{"pointing away", NewRay(math3d.V3(0, 0, 5), math3d.V3(0, 0, 1)), false, 0, 0},
		{"parallel outside slab", NewRay(math3d.V3(2, 0, 5), math3d.V3(0, 0, -1)), false, 0, 0},
		{"diagonal", NewRay(math3d.V3(-3, -3, 0), math3d.V3(1, 1, 0).Normalize()), true, 2 * math.Sqrt2, 4 * math.Sqrt2},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			near, far, ok := box.IntersectRay(tc.ray)
			require.Equal(t, tc.hit, ok)
			if !tc.hit {
				return
			}
			assert.InDelta(t, tc.near, near, tol)
			assert.InDelta(t, tc.far, far, tol)
		})
	}
}
