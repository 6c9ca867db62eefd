package render

import (
	"math"

	"github.com/taigrr/marcher/pkg/lighting"
	"github.com/taigrr/marcher/pkg/math3d"
	"github.com/taigrr/marcher/pkg/sdf"
)

// Default sphere-tracing limits.
const (
	DefaultMaxSteps      = 128
	DefaultMaxDistance   = 100.0
	DefaultEpsilon       = 1e-3
	DefaultNormalEpsilon = 1e-4
)

// Marcher sphere-traces rays through a distance field.
type Marcher struct {
	MaxSteps      int     // give up after this many field evaluations
	MaxDistance   float64 // give up beyond this distance along the ray
	Epsilon       float64 // hit threshold, scaled by distance beyond 1
	NormalEpsilon float64 // central-difference step for normals
}

// NewMarcher returns a marcher with the default limits.
func NewMarcher() Marcher {
	return Marcher{
		MaxSteps:      DefaultMaxSteps,
		MaxDistance:   DefaultMaxDistance,
		Epsilon:       DefaultEpsilon,
		NormalEpsilon: DefaultNormalEpsilon,
	}
}

// March traces ray from its origin out to MaxDistance.
func (m Marcher) March(f sdf.Field, ray sdf.Ray) lighting.Trace {
	tr, _ := m.MarchRange(f, ray, 0, m.MaxDistance)
	return tr
}

// MarchRange traces ray over [tMin, tMax] and also reports the number of
// field evaluations spent. The direction is normalized first so distances
// along the ray are world distances. On a hit the trace carries the surface
// normal and the reflected ray.
func (m Marcher) MarchRange(f sdf.Field, ray sdf.Ray, tMin, tMax float64) (lighting.Trace, int) {
	ray.Direction = ray.Direction.NormalizeOr(math3d.V3(0, 0, -1))
	tMax = math.Min(tMax, m.MaxDistance)

	t := math.Max(tMin, 0)
	steps := 0
	for steps < m.MaxSteps && t <= tMax {
		p := ray.At(t)
		v := f(p)
		steps++

		d := math.Abs(v.SignedDistance)
		if d < m.Epsilon*math.Max(1, t) {
			tr := lighting.NewTrace(t, p, ray, v.Material, true)
			tr.Normal = EstimateNormal(f, p, m.NormalEpsilon).NormalizeOr(ray.Direction.Negate())
			tr.Reflection = sdf.NewRay(
				p.Add(tr.Normal.Scale(2*m.Epsilon)),
				ray.Direction.Reflect(tr.Normal),
			)
			return tr, steps
		}
		t += d
	}

	return lighting.NewTrace(t, ray.At(t), ray, sdf.Material{}, false), steps
}

// EstimateNormal returns the central-difference gradient of f at p with
// step h. The result is not normalized.
func EstimateNormal(f sdf.Field, p math3d.Vec3, h float64) math3d.Vec3 {
	dx := math3d.V3(h, 0, 0)
	dy := math3d.V3(0, h, 0)
	dz := math3d.V3(0, 0, h)
	return math3d.V3(
		f(p.Add(dx)).SignedDistance-f(p.Sub(dx)).SignedDistance,
		f(p.Add(dy)).SignedDistance-f(p.Sub(dy)).SignedDistance,
		f(p.Add(dz)).SignedDistance-f(p.Sub(dz)).SignedDistance,
	)
}
