package sdf

import (
	"math"

	"github.com/taigrr/marcher/pkg/math3d"
)

// DefaultSmoothness is the blend sharpness used by SmoothUnion.
const DefaultSmoothness = 3.0

// Union returns whichever operand is nearer, material included. Ties go to b.
func Union(a, b MapValue) MapValue {
	if a.SignedDistance < b.SignedDistance {
		return a
	}
	return b
}

// Intersect returns the larger of the two distances. The material is always
// a's, even when b bounds the result, so an intersection takes on the look of
// its first operand.
func Intersect(a, b MapValue) MapValue {
	if a.SignedDistance > b.SignedDistance {
		return a
	}
	return MapValue{SignedDistance: b.SignedDistance, Material: a.Material}
}

// Subtract carves b out of a. Where b's complement is the tighter bound the
// result is b's negated distance reported with a's material.
func Subtract(a, b MapValue) MapValue {
	if -b.SignedDistance > a.SignedDistance {
		return MapValue{SignedDistance: -b.SignedDistance, Material: a.Material}
	}
	return a
}

// SmoothUnion blends a and b with the exponential kernel at
// DefaultSmoothness. The material is always a's.
func SmoothUnion(a, b MapValue) MapValue {
	return SmoothUnionK(a, b, DefaultSmoothness)
}

// SmoothUnionK is SmoothUnion with sharpness k.
func SmoothUnionK(a, b MapValue, k float64) MapValue {
	return MapValue{
		SignedDistance: SmoothMin(a.SignedDistance, b.SignedDistance, k),
		Material:       a.Material,
	}
}

// SmoothUnionPoly blends a and b with the polynomial kernel of radius k.
// The material is always a's.
func SmoothUnionPoly(a, b MapValue, k float64) MapValue {
	return MapValue{
		SignedDistance: SmoothMinPoly(a.SignedDistance, b.SignedDistance, k),
		Material:       a.Material,
	}
}

// SmoothMin is the exponential smooth minimum
//
//	(a·e^(-ka) + b·e^(-kb)) / (e^(-ka) + e^(-kb))
//
// It tends to min(a, b) as k grows and SmoothMin(a, a, k) == a.
// A negative k turns it into a smooth maximum.
func SmoothMin(a, b, k float64) float64 {
	if a == b {
		return a
	}
	// Factor out the dominant exponent so large k*|a-b| cannot overflow.
	ea, eb := -k*a, -k*b
	top := math.Max(ea, eb)
	x := math.Exp(ea - top)
	y := math.Exp(eb - top)
	return (a*x + b*y) / (x + y)
}

// SmoothMinPoly is the polynomial smooth minimum with blend radius k.
// For k <= 0 it is min(a, b).
func SmoothMinPoly(a, b, k float64) float64 {
	if k <= 0 {
		return math.Min(a, b)
	}
	h := math3d.Clamp(0.5+0.5*(b-a)/k, 0, 1)
	return math3d.Mix(b, a, h) - k*h*(1-h)
}

// SmoothMax is the exponential smooth maximum, SmoothMin with -k.
func SmoothMax(a, b, k float64) float64 {
	return SmoothMin(a, b, -k)
}
