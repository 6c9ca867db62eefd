package scene

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/taigrr/marcher/pkg/lighting"
	"github.com/taigrr/marcher/pkg/math3d"
	"github.com/taigrr/marcher/pkg/sdf"
)

// ErrUnknownPreset is returned by Preset for names it does not know.
var ErrUnknownPreset = errors.New("unknown preset")

var presets = map[string]func() *Scene{
	"platonic":  platonic,
	"carved":    carved,
	"blend":     blend,
	"octahedra": octahedra,
}

// PresetNames returns the names accepted by Preset in sorted order.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Preset builds the named built-in scene.
func Preset(name string) (*Scene, error) {
	build, ok := presets[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPreset, name)
	}
	return build(), nil
}

var (
	white = sdf.LightColor{Diffuse: math3d.Splat3(1), Specular: math3d.Splat3(1)}
	dim   = sdf.LightColor{Diffuse: math3d.Splat3(0.6), Specular: math3d.Splat3(0.6)}

	matRed    = sdf.NewMaterial(math3d.V3(0.9, 0.2, 0.2), math3d.Splat3(0.8), 32)
	matOrange = sdf.NewMaterial(math3d.V3(0.95, 0.55, 0.1), math3d.Splat3(0.6), 16)
	matGreen  = sdf.NewMaterial(math3d.V3(0.2, 0.8, 0.3), math3d.Splat3(0.8), 64)
	matBlue   = sdf.NewMaterial(math3d.V3(0.2, 0.4, 0.95), math3d.Splat3(0.9), 48)
	matPurple = sdf.NewMaterial(math3d.V3(0.6, 0.3, 0.85), math3d.Splat3(0.7), 24)
	matFloor  = sdf.NewMaterial(math3d.Splat3(0.45), math3d.Splat3(0.05), 4)
)

// defaultLights is a key light above the camera and a dimmer fill from the
// upper left.
func defaultLights() ([]lighting.PointLight, []lighting.DirectionalLight) {
	return []lighting.PointLight{
			{Position: math3d.V3(0, 4, 6), Color: white},
		}, []lighting.DirectionalLight{
			{Direction: math3d.V3(-0.4, 1, 0.5).Normalize(), Color: dim},
		}
}

func newScene(name string) *Scene {
	points, dirs := defaultLights()
	return &Scene{
		Name:              name,
		PointLights:       points,
		DirectionalLights: dirs,
		Ambient:           math3d.Splat3(0.12),
		Background:        DefaultBackground,
		CameraPosition:    math3d.V3(0, 1.5, 8),
	}
}

// shape adapts a primitive centered at the origin into a field.
func shape(f func(p math3d.Vec3, d float64, m sdf.Material) sdf.MapValue, d float64, m sdf.Material) sdf.Field {
	return func(p math3d.Vec3) sdf.MapValue { return f(p, d, m) }
}

func sphere(r float64, m sdf.Material) sdf.Field {
	return func(p math3d.Vec3) sdf.MapValue { return sdf.Sphere(p, math3d.Zero3(), r, m) }
}

func box(half math3d.Vec3, m sdf.Material) sdf.Field {
	return func(p math3d.Vec3) sdf.MapValue { return sdf.Box(p, half, m) }
}

// platonic lines up the five Platonic solids over a floor.
func platonic() *Scene {
	s := newScene("platonic")
	solids := []sdf.Field{
		shape(sdf.Tetrahedron, 0.6, matRed),
		shape(sdf.Cube, 0.7, matOrange),
		shape(sdf.Octahedron, 1, matGreen),
		shape(sdf.Dodecahedron, 0.8, matBlue),
		shape(sdf.Icosahedron, 0.8, matPurple),
	}
	for i, f := range solids {
		x := float64(i-2) * 2.5
		s.AddObject(sdf.Translate(f, math3d.V3(x, 0, 0)), nil)
	}
	s.AddObject(func(p math3d.Vec3) sdf.MapValue { return sdf.XZPlane(p, -1.2, matFloor) }, nil)
	s.CameraPosition = math3d.V3(0, 2, 9)
	return s
}

// carved is a spherical shell with its front cut away.
func carved() *Scene {
	s := newScene("carved")
	shell := sdf.SubtractFields(sphere(2, matOrange), sphere(1.6, matBlue))
	cut := sdf.Translate(box(math3d.V3(3, 3, 2), matRed), math3d.V3(0, 0.5, 2))
	core := sdf.Translate(shape(sdf.Dodecahedron, 0.7, matGreen), math3d.V3(0, -0.4, 0))
	s.AddObject(sdf.UnionFields(sdf.SubtractFields(shell, cut), core), ptr(sdf.NewAABB(math3d.Splat3(-2.1), math3d.Splat3(2.1))))
	s.CameraPosition = math3d.V3(0, 1, 7)
	return s
}

// blend melts two spheres into each other and an icosahedron into both.
func blend() *Scene {
	s := newScene("blend")
	pair := sdf.SmoothUnionFields(sdf.DefaultSmoothness,
		sdf.Translate(sphere(1, matRed), math3d.V3(-1.1, 0, 0)),
		sdf.Translate(sphere(1, matBlue), math3d.V3(1.1, 0, 0)),
	)
	ico := sdf.Translate(shape(sdf.Icosahedron, 0.7, matGreen), math3d.V3(0, 1.2, 0))
	const k = 0.6
	f := sdf.Combine(func(a, b sdf.MapValue) sdf.MapValue { return sdf.SmoothUnionPoly(a, b, k) }, pair, ico)
	b := sdf.NewAABB(math3d.V3(-2.2, -1.1, -1.1), math3d.V3(2.2, 2.2, 1.1)).Expand(k)
	s.AddObject(f, &b)
	return s
}

// octahedra sets the two octahedron constructions side by side.
func octahedra() *Scene {
	s := newScene("octahedra")
	turn := math3d.RotationMatrix(math3d.V3(0.3, 1, 0), math.Pi/6)
	left := sdf.Translate(sdf.RotateMatrix(shape(sdf.Octahedron, 1.2, matGreen), turn), math3d.V3(-1.6, 0, 0))
	right := sdf.Translate(sdf.RotateMatrix(shape(sdf.OctahedronDoublePlane, 1.2, matPurple), turn), math3d.V3(1.6, 0, 0))
	s.AddObject(left, ptr(sdf.NewAABB(math3d.V3(-2.9, -1.3, -1.3), math3d.V3(-0.3, 1.3, 1.3))))
	s.AddObject(right, ptr(sdf.NewAABB(math3d.V3(0.3, -1.3, -1.3), math3d.V3(2.9, 1.3, 1.3))))
	s.CameraPosition = math3d.V3(0, 1, 6)
	return s
}
