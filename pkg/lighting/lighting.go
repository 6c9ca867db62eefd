// Package lighting implements the local illumination model for marched
// surfaces: Lambertian diffuse, Blinn-Phong specular, and inverse-square
// style attenuation for point lights.
//
// All directions passed in are expected to be unit length and to point from
// the surface towards the light. Nothing here checks for shadows.
package lighting

import (
	"math"

	"github.com/taigrr/marcher/pkg/math3d"
	"github.com/taigrr/marcher/pkg/sdf"
)

// AttenuationFactor scales the squared distance in Attenuation.
const AttenuationFactor = 0.1

// Trace is the record of a ray march that shading consumes.
type Trace struct {
	Dist     float64     // distance travelled along Ray
	P        math3d.Vec3 // surface point
	Ray      sdf.Ray     // the marched ray
	Material sdf.Material
	Hit      bool

	// Filled by the marcher after construction.
	Reflection sdf.Ray
	Normal     math3d.Vec3
}

// NewTrace creates a trace. Reflection and Normal are left zero.
func NewTrace(dist float64, p math3d.Vec3, ray sdf.Ray, material sdf.Material, hit bool) Trace {
	return Trace{
		Dist:     dist,
		P:        p,
		Ray:      ray,
		Material: material,
		Hit:      hit,
	}
}

// PointLight emits from a position and falls off with distance.
type PointLight struct {
	Position math3d.Vec3
	Color    sdf.LightColor
}

// DirectionalLight is infinitely far away. Direction points from the
// surface towards the light and is not attenuated.
type DirectionalLight struct {
	Direction math3d.Vec3
	Color     sdf.LightColor
}

// Diffuse returns the Lambertian term max(L·N, 0) * surface * light.
func Diffuse(trace Trace, normal, lightDiffuse, lightDir math3d.Vec3) math3d.Vec3 {
	lambert := math.Max(lightDir.Dot(normal), 0)
	return trace.Material.Color.Diffuse.Mul(lightDiffuse).Scale(lambert)
}

// Specular returns the Blinn-Phong term. The half vector is taken between
// lightDir and the reversed ray direction. A half vector facing away from
// the normal contributes nothing, including for a zero exponent. A zero
// lightDir has no direction and contributes nothing.
func Specular(trace Trace, normal, lightSpecular, lightDir math3d.Vec3) math3d.Vec3 {
	if lightDir.LenSq() == 0 {
		return math3d.Zero3()
	}
	half := lightDir.Sub(trace.Ray.Direction).Normalize()
	angle := half.Dot(normal)
	if angle <= 0 {
		return math3d.Zero3()
	}
	s := math.Pow(angle, trace.Material.Exponent())
	return trace.Material.Color.Specular.Mul(lightSpecular).Scale(s)
}

// Attenuation returns 1 / (1 + AttenuationFactor*d²).
func Attenuation(d float64) float64 {
	return 1 / (1 + AttenuationFactor*d*d)
}

// PointLightingWithDirection shades against light using a precomputed unit
// direction and distance d. The attenuation applies to the diffuse and
// specular sum.
func PointLightingWithDirection(trace Trace, normal math3d.Vec3, light PointLight, lightDir math3d.Vec3, d float64) math3d.Vec3 {
	c := Diffuse(trace, normal, light.Color.Diffuse, lightDir).
		Add(Specular(trace, normal, light.Color.Specular, lightDir))
	return c.Scale(Attenuation(d))
}

// PointLighting shades against light, deriving direction and distance from
// the light position and trace.P. A light sitting exactly on trace.P has no
// direction to the surface and contributes nothing.
func PointLighting(trace Trace, normal math3d.Vec3, light PointLight) math3d.Vec3 {
	toLight := light.Position.Sub(trace.P)
	return PointLightingWithDirection(trace, normal, light, toLight.Normalize(), toLight.Len())
}

// DirectionalLighting shades against a directional light. A zero Direction
// contributes nothing.
func DirectionalLighting(trace Trace, normal math3d.Vec3, light DirectionalLight) math3d.Vec3 {
	return Diffuse(trace, normal, light.Color.Diffuse, light.Direction).
		Add(Specular(trace, normal, light.Color.Specular, light.Direction))
}

// Shade sums the contribution of every light.
func Shade(trace Trace, normal math3d.Vec3, points []PointLight, directionals []DirectionalLight) math3d.Vec3 {
	var c math3d.Vec3
	for _, l := range points {
		c = c.Add(PointLighting(trace, normal, l))
	}
	for _, l := range directionals {
		c = c.Add(DirectionalLighting(trace, normal, l))
	}
	return c
}
