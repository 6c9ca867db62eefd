// Package sdf provides signed-distance primitives, Platonic solids built by
// half-space intersection, and the CSG algebra that composes them into a
// scene field.
//
// Sign convention: negative inside a solid, positive outside, zero on the
// surface. Every function in this package is pure and safe to call from any
// number of goroutines.
package sdf

import "github.com/taigrr/marcher/pkg/math3d"

// Ray is a half-line. Direction is not required to be normalized.
type Ray struct {
	Origin    math3d.Vec3
	Direction math3d.Vec3
}

// NewRay creates a ray.
func NewRay(origin, direction math3d.Vec3) Ray {
	return Ray{Origin: origin, Direction: direction}
}

// At returns the point origin + t*direction.
func (r Ray) At(t float64) math3d.Vec3 {
	return r.Origin.Add(r.Direction.Scale(t))
}

// LightColor holds per-channel diffuse and specular coefficients. For
// surfaces these are reflectances in [0,1]; for lights they are emission
// and may exceed 1.
type LightColor struct {
	Diffuse  math3d.Vec3
	Specular math3d.Vec3
}

// Material is what a surface reports to the lighting model.
type Material struct {
	Color     LightColor
	Shininess float64 // Blinn-Phong exponent
}

// NewMaterial creates a material from diffuse and specular colors.
func NewMaterial(diffuse, specular math3d.Vec3, shininess float64) Material {
	return Material{
		Color:     LightColor{Diffuse: diffuse, Specular: specular},
		Shininess: shininess,
	}
}

// Exponent returns the shininess clamped to the valid domain [0, inf).
func (m Material) Exponent() float64 {
	if m.Shininess < 0 {
		return 0
	}
	return m.Shininess
}

// MapValue is the unit of the CSG algebra: a signed distance and the
// material of the surface it measures to.
type MapValue struct {
	SignedDistance float64
	Material       Material
}

// Inside reports whether the value lies strictly inside a solid.
func (v MapValue) Inside() bool {
	return v.SignedDistance < 0
}

// Field is a composed scene: it maps a point in space to a MapValue.
type Field func(p math3d.Vec3) MapValue
