package sdf

import (
	"math"

	"github.com/taigrr/marcher/pkg/math3d"
)

// AABB represents an axis-aligned bounding box around a field's surfaces.
type AABB struct {
	Min math3d.Vec3
	Max math3d.Vec3
}

// NewAABB creates an AABB from min and max points.
func NewAABB(min, max math3d.Vec3) AABB {
	return AABB{Min: min, Max: max}
}

// Center returns the center of the AABB.
func (b AABB) Center() math3d.Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// Size returns the dimensions of the AABB.
func (b AABB) Size() math3d.Vec3 {
	return b.Max.Sub(b.Min)
}

// HalfSize returns half the dimensions (extents from center).
func (b AABB) HalfSize() math3d.Vec3 {
	return b.Size().Scale(0.5)
}

// Expand grows the box by margin on every side.
func (b AABB) Expand(margin float64) AABB {
	m := math3d.Splat3(margin)
	return AABB{Min: b.Min.Sub(m), Max: b.Max.Add(m)}
}

// Transform returns an AABB that bounds the original AABB after transformation.
// This computes a new AABB that contains all 8 transformed corners.
func (b AABB) Transform(m math3d.Mat4) AABB {
	corners := [8]math3d.Vec3{
		{X: b.Min.X, Y: b.Min.Y, Z: b.Min.Z},
		{X: b.Max.X, Y: b.Min.Y, Z: b.Min.Z},
		{X: b.Min.X, Y: b.Max.Y, Z: b.Min.Z},
		{X: b.Max.X, Y: b.Max.Y, Z: b.Min.Z},
		{X: b.Min.X, Y: b.Min.Y, Z: b.Max.Z},
		{X: b.Max.X, Y: b.Min.Y, Z: b.Max.Z},
		{X: b.Min.X, Y: b.Max.Y, Z: b.Max.Z},
		{X: b.Max.X, Y: b.Max.Y, Z: b.Max.Z},
	}

	transformed := m.MulVec3(corners[0])
	newMin := transformed
	newMax := transformed

	for i := 1; i < 8; i++ {
		transformed = m.MulVec3(corners[i])
		newMin = newMin.Min(transformed)
		newMax = newMax.Max(transformed)
	}

	return AABB{Min: newMin, Max: newMax}
}

// ContainsPoint returns true if the point is inside the AABB.
func (b AABB) ContainsPoint(p math3d.Vec3) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// IntersectRay clips r against the box with the slab method and returns the
// parameter interval [tNear, tFar] inside it. tNear is negative when the ray
// starts inside. ok is false when the ray misses or the box is behind it.
func (b AABB) IntersectRay(r Ray) (tNear, tFar float64, ok bool) {
	tNear, tFar = math.Inf(-1), math.Inf(1)

	slab := func(origin, dir, lo, hi float64) bool {
		if dir == 0 {
			return origin >= lo && origin <= hi
		}
		t0 := (lo - origin) / dir
		t1 := (hi - origin) / dir
		if t0 > t1 {
			t0, t1 = t1, t0
		}
		tNear = math.Max(tNear, t0)
		tFar = math.Min(tFar, t1)
		return tNear <= tFar
	}

	if !slab(r.Origin.X, r.Direction.X, b.Min.X, b.Max.X) ||
		!slab(r.Origin.Y, r.Direction.Y, b.Min.Y, b.Max.Y) ||
		!slab(r.Origin.Z, r.Direction.Z, b.Min.Z, b.Max.Z) {
		return 0, 0, false
	}
	if tFar < 0 {
		return 0, 0, false
	}
	return tNear, tFar, true
}
