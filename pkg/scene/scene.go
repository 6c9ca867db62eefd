// Package scene assembles distance fields, materials and lights into
// renderable scenes: built-in presets, TOML scene files and glTF imports.
package scene

import (
	"image/color"
	"math"

	"github.com/taigrr/marcher/pkg/lighting"
	"github.com/taigrr/marcher/pkg/math3d"
	"github.com/taigrr/marcher/pkg/sdf"
)

// DefaultBackground is used for rays that hit nothing.
var DefaultBackground = color.RGBA{30, 30, 40, 255}

// DefaultMaterial is assigned to objects that name no material.
var DefaultMaterial = sdf.NewMaterial(math3d.Splat3(0.8), math3d.Splat3(0.3), 16)

// Scene is a composed field together with the lights that shade it.
type Scene struct {
	Name              string
	Field             sdf.Field
	PointLights       []lighting.PointLight
	DirectionalLights []lighting.DirectionalLight

	// Bounds encloses every finite surface. Nil means unbounded, which is
	// required for scenes containing planes.
	Bounds *sdf.AABB

	Ambient    math3d.Vec3 // multiplied by the surface diffuse color
	Background color.RGBA

	// Camera placement suggested by the scene source.
	CameraPosition math3d.Vec3
	CameraTarget   math3d.Vec3
}

// Evaluate returns the distance and material at p.
func (s *Scene) Evaluate(p math3d.Vec3) sdf.MapValue {
	return s.Field(p)
}

// WithRotation returns a copy of s whose geometry is turned by r about the
// origin. Lights and camera stay fixed.
func (s *Scene) WithRotation(r math3d.Mat3) *Scene {
	out := *s
	out.Field = sdf.RotateMatrix(s.Field, r)
	if s.Bounds != nil {
		b := rotatedBounds(*s.Bounds)
		out.Bounds = &b
	}
	return &out
}

// AddObject unions f into the scene. The bounds grow by box when both are
// finite; a nil box makes the scene unbounded.
func (s *Scene) AddObject(f sdf.Field, box *sdf.AABB) {
	if s.Field == nil {
		s.Field = f
		s.Bounds = box
		return
	}
	s.Field = sdf.UnionFields(s.Field, f)
	if s.Bounds == nil || box == nil {
		s.Bounds = nil
		return
	}
	merged := sdf.NewAABB(s.Bounds.Min.Min(box.Min), s.Bounds.Max.Max(box.Max))
	s.Bounds = &merged
}

// rotatedBounds returns a box that contains b under any rotation about the
// origin.
func rotatedBounds(b sdf.AABB) sdf.AABB {
	far := b.Min.Abs().Max(b.Max.Abs())
	r := far.Len()
	return sdf.NewAABB(math3d.Splat3(-r), math3d.Splat3(r))
}

func ptr[T any](v T) *T { return &v }

func deg2rad(d float64) float64 { return d * math.Pi / 180 }
