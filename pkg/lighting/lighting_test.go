package lighting

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taigrr/marcher/pkg/math3d"
	"github.com/taigrr/marcher/pkg/sdf"
)

const eps = 1e-9

func assertVec(t *testing.T, want, got math3d.Vec3, msgAndArgs ...any) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, eps, msgAndArgs...)
	assert.InDelta(t, want.Y, got.Y, eps, msgAndArgs...)
	assert.InDelta(t, want.Z, got.Z, eps, msgAndArgs...)
}

var (
	white    = sdf.LightColor{Diffuse: math3d.Splat3(1), Specular: math3d.Splat3(1)}
	redShiny = sdf.NewMaterial(math3d.V3(1, 0, 0), math3d.V3(1, 1, 1), 32)
)

// headOnTrace is a hit on the unit sphere at (0,0,1) seen from +z.
func headOnTrace(m sdf.Material) Trace {
	ray := sdf.NewRay(math3d.V3(0, 0, 5), math3d.V3(0, 0, -1))
	return NewTrace(4, math3d.V3(0, 0, 1), ray, m, true)
}

func TestNewTrace(t *testing.T) {
	tr := headOnTrace(redShiny)
	assert.Equal(t, 4.0, tr.Dist)
	assert.True(t, tr.Hit)
	assert.Equal(t, redShiny, tr.Material)
	assert.Equal(t, math3d.Zero3(), tr.Normal)
	assert.Equal(t, sdf.Ray{}, tr.Reflection)
}

func TestDiffuse(t *testing.T) {
	tr := headOnTrace(redShiny)
	n := math3d.V3(0, 0, 1)

	tests := []struct {
		name     string
		lightDir math3d.Vec3
		expected math3d.Vec3
	}{
		{"head on", math3d.V3(0, 0, 1), math3d.V3(1, 0, 0)},
		{"grazing", math3d.V3(1, 0, 0), math3d.Zero3()},
		{"behind", math3d.V3(0, 0, -1), math3d.Zero3()},
		{"sixty degrees", math3d.V3(math.Sqrt(3)/2, 0, 0.5), math3d.V3(0.5, 0, 0)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assertVec(t, tc.expected, Diffuse(tr, n, math3d.Splat3(1), tc.lightDir))
		})
	}

	// Light color multiplies per channel.
	assertVec(t, math3d.V3(0.5, 0, 0), Diffuse(tr, n, math3d.V3(0.5, 2, 2), n))
}

func TestSpecular(t *testing.T) {
	n := math3d.V3(0, 0, 1)

	t.Run("mirror direction", func(t *testing.T) {
		tr := headOnTrace(redShiny)
		assertVec(t, math3d.Splat3(1), Specular(tr, n, math3d.Splat3(1), n))
	})

	t.Run("half vector facing away", func(t *testing.T) {
		tr := headOnTrace(sdf.NewMaterial(math3d.Zero3(), math3d.Splat3(1), 0))
		// Zero exponent must not turn 0^0 into a highlight.
		assertVec(t, math3d.Zero3(), Specular(tr, n, math3d.Splat3(1), math3d.V3(0, 0, -1)))
	})

	t.Run("zero exponent facing", func(t *testing.T) {
		tr := headOnTrace(sdf.NewMaterial(math3d.Zero3(), math3d.Splat3(0.25), 0))
		assertVec(t, math3d.Splat3(0.25), Specular(tr, n, math3d.Splat3(1), math3d.V3(1, 0, 0)))
	})

	t.Run("negative shininess clamps", func(t *testing.T) {
		tr := headOnTrace(sdf.NewMaterial(math3d.Zero3(), math3d.Splat3(1), -3))
		assertVec(t, math3d.Splat3(1), Specular(tr, n, math3d.Splat3(1), math3d.V3(1, 0, 0)))
	})

	t.Run("falls off with exponent", func(t *testing.T) {
		dir := math3d.V3(1, 0, 1).Normalize()
		lo := Specular(headOnTrace(sdf.NewMaterial(math3d.Zero3(), math3d.Splat3(1), 4)), n, math3d.Splat3(1), dir)
		hi := Specular(headOnTrace(sdf.NewMaterial(math3d.Zero3(), math3d.Splat3(1), 64)), n, math3d.Splat3(1), dir)
		assert.Greater(t, lo.X, hi.X)
		assert.Greater(t, hi.X, 0.0)
	})
}

func TestAttenuation(t *testing.T) {
	tests := []struct {
		d, expected float64
	}{
		{0, 1},
		{math.Sqrt(90), 0.1},
		{4, 1 / 2.6},
	}
	for _, tc := range tests {
		assert.InDelta(t, tc.expected, Attenuation(tc.d), eps, "d=%v", tc.d)
	}
}

func TestPointLightingHeadOn(t *testing.T) {
	tr := headOnTrace(redShiny)
	n := math3d.V3(0, 0, 1)
	light := PointLight{Position: math3d.V3(0, 0, 5), Color: white}

	// Diffuse (1,0,0) plus specular (1,1,1), attenuated at d=4.
	want := math3d.V3(2, 1, 1).Scale(1 / 2.6)
	assertVec(t, want, PointLighting(tr, n, light))
	assertVec(t, want, PointLightingWithDirection(tr, n, light, n, 4))
}

func TestZeroContributions(t *testing.T) {
	n := math3d.V3(0, 0, 1)
	black := sdf.NewMaterial(math3d.Zero3(), math3d.Zero3(), 16)
	tr := headOnTrace(black)

	assertVec(t, math3d.Zero3(), PointLighting(tr, n, PointLight{Position: math3d.V3(0, 0, 5), Color: white}))

	dark := PointLight{Position: math3d.V3(0, 0, 5)}
	assertVec(t, math3d.Zero3(), PointLighting(headOnTrace(redShiny), n, dark))

	behind := DirectionalLight{Direction: math3d.V3(0, 0, -1), Color: white}
	assertVec(t, math3d.Zero3(), DirectionalLighting(headOnTrace(redShiny), n, behind))

	onSurface := headOnTrace(redShiny)
	coincident := PointLight{Position: onSurface.P, Color: white}
	assertVec(t, math3d.Zero3(), PointLighting(onSurface, n, coincident), "light on the hit point")
	assertVec(t, math3d.Zero3(), Specular(onSurface, n, math3d.Splat3(1), math3d.Zero3()))

	noDirection := DirectionalLight{Color: white}
	assertVec(t, math3d.Zero3(), DirectionalLighting(onSurface, n, noDirection), "zero direction")
}

func TestDirectionalLightingIgnoresDistance(t *testing.T) {
	n := math3d.V3(0, 0, 1)
	light := DirectionalLight{Direction: n, Color: white}
	near := headOnTrace(redShiny)
	far := near
	far.P = math3d.V3(0, 0, -1000)
	assertVec(t, math3d.V3(2, 1, 1), DirectionalLighting(near, n, light))
	assertVec(t, DirectionalLighting(near, n, light), DirectionalLighting(far, n, light))
}

func TestShade(t *testing.T) {
	tr := headOnTrace(redShiny)
	n := math3d.V3(0, 0, 1)
	points := []PointLight{
		{Position: math3d.V3(0, 0, 5), Color: white},
		{Position: math3d.V3(3, 0, 1), Color: sdf.LightColor{Diffuse: math3d.V3(0, 1, 0)}},
	}
	dirs := []DirectionalLight{{Direction: n, Color: white}}

	want := PointLighting(tr, n, points[0]).
		Add(PointLighting(tr, n, points[1])).
		Add(DirectionalLighting(tr, n, dirs[0]))
	assertVec(t, want, Shade(tr, n, points, dirs))

	reversed := []PointLight{points[1], points[0]}
	assertVec(t, want, Shade(tr, n, reversed, dirs))

	assertVec(t, math3d.Zero3(), Shade(tr, n, nil, nil))
}

func BenchmarkShade(b *testing.B) {
	tr := headOnTrace(redShiny)
	n := math3d.V3(0, 0, 1)
	points := []PointLight{
		{Position: math3d.V3(0, 0, 5), Color: white},
		{Position: math3d.V3(3, 2, 1), Color: white},
	}
	dirs := []DirectionalLight{{Direction: math3d.V3(1, 1, 1).Normalize(), Color: white}}
	for b.Loop() {
		_ = Shade(tr, n, points, dirs)
	}
}
