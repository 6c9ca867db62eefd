package sdf

import (
	"math"

	"github.com/taigrr/marcher/pkg/math3d"
)

// Plane returns the signed distance from p to the plane through origin
// with unit normal. Positive on the side normal points to.
func Plane(p, origin, normal math3d.Vec3) float64 {
	return p.Sub(origin).Dot(normal)
}

// DoublePlane returns the signed distance to the slab bounded by the plane
// through origin and its point reflection through the world origin. One
// call covers a pair of opposite faces of a centrally symmetric solid.
func DoublePlane(p, origin, normal math3d.Vec3) float64 {
	return math.Max(Plane(p, origin, normal), Plane(p.Negate(), origin, normal))
}

// PlaneObject is the half-space behind the plane through origin with the
// given unit normal.
func PlaneObject(p, origin, normal math3d.Vec3, m Material) MapValue {
	return MapValue{SignedDistance: Plane(p, origin, normal), Material: m}
}

// XZPlane is the half-space below the horizontal plane at height y.
func XZPlane(p math3d.Vec3, y float64, m Material) MapValue {
	return MapValue{SignedDistance: p.Y - y, Material: m}
}

// Cube is an axis-aligned cube of half-extent d centered at the origin.
//
// The distance is exact outside but is 0 (not negative) everywhere inside,
// so subtracting from or intersecting with a Cube treats its interior as
// surface. Use Box for a true interior distance.
func Cube(p math3d.Vec3, d float64, m Material) MapValue {
	return MapValue{
		SignedDistance: p.Abs().Sub(math3d.Splat3(d)).MaxScalar(0).Len(),
		Material:       m,
	}
}

// Box is an axis-aligned box with the given half extents centered at the
// origin. Exact inside and out.
func Box(p, halfExtents math3d.Vec3, m Material) MapValue {
	q := p.Abs().Sub(halfExtents)
	outside := q.MaxScalar(0).Len()
	inside := math.Min(q.MaxComponent(), 0)
	return MapValue{SignedDistance: outside + inside, Material: m}
}

// Sphere is the ball of radius r around center.
func Sphere(p, center math3d.Vec3, r float64, m Material) MapValue {
	return MapValue{SignedDistance: p.Distance(center) - r, Material: m}
}
