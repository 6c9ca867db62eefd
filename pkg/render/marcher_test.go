package render

import (
	"math"
	"testing"

	"github.com/taigrr/marcher/pkg/math3d"
	"github.com/taigrr/marcher/pkg/sdf"
)

var testMaterial = sdf.NewMaterial(math3d.V3(1, 0, 0), math3d.Splat3(1), 32)

func unitSphere(p math3d.Vec3) sdf.MapValue {
	return sdf.Sphere(p, math3d.Zero3(), 1, testMaterial)
}

func TestMarchHitsSphere(t *testing.T) {
	m := NewMarcher()
	tr := m.March(unitSphere, sdf.NewRay(math3d.V3(0, 0, 5), math3d.V3(0, 0, -1)))

	if !tr.Hit {
		t.Fatal("expected hit")
	}
	if math.Abs(tr.Dist-4) > m.Epsilon {
		t.Errorf("Dist = %v, want 4", tr.Dist)
	}
	if !vecNear(tr.P, math3d.V3(0, 0, 1), m.Epsilon) {
		t.Errorf("P = %v, want (0, 0, 1)", tr.P)
	}
	if !vecNear(tr.Normal, math3d.V3(0, 0, 1), 1e-6) {
		t.Errorf("Normal = %v, want (0, 0, 1)", tr.Normal)
	}
	if !vecNear(tr.Reflection.Direction, math3d.V3(0, 0, 1), 1e-6) {
		t.Errorf("Reflection = %v, want (0, 0, 1)", tr.Reflection.Direction)
	}
	if tr.Reflection.Origin.Z <= tr.P.Z {
		t.Errorf("reflection should start above the surface, got %v", tr.Reflection.Origin)
	}
	if tr.Material != testMaterial {
		t.Errorf("Material = %v, want %v", tr.Material, testMaterial)
	}
}

func TestMarchNormalizesDirection(t *testing.T) {
	m := NewMarcher()
	tr := m.March(unitSphere, sdf.NewRay(math3d.V3(5, 0, 0), math3d.V3(-10, 0, 0)))
	if !tr.Hit {
		t.Fatal("expected hit")
	}
	if math.Abs(tr.Dist-4) > m.Epsilon {
		t.Errorf("Dist = %v, want 4 in world units", tr.Dist)
	}
	if math.Abs(tr.Ray.Direction.Len()-1) > 1e-12 {
		t.Errorf("trace ray direction not normalized: %v", tr.Ray.Direction)
	}
}

func TestMarchMiss(t *testing.T) {
	m := NewMarcher()
	tr := m.March(unitSphere, sdf.NewRay(math3d.V3(0, 3, 5), math3d.V3(0, 0, -1)))
	if tr.Hit {
		t.Fatalf("expected miss, hit at %v", tr.P)
	}
	if tr.Dist <= m.MaxDistance {
		t.Errorf("Dist = %v, should have passed MaxDistance", tr.Dist)
	}
}

func TestMarchRangeLimits(t *testing.T) {
	m := NewMarcher()
	ray := sdf.NewRay(math3d.V3(0, 0, 5), math3d.V3(0, 0, -1))

	t.Run("stops at tMax", func(t *testing.T) {
		tr, _ := m.MarchRange(unitSphere, ray, 0, 3)
		if tr.Hit {
			t.Error("surface lies beyond tMax, should miss")
		}
	})

	t.Run("starts at tMin", func(t *testing.T) {
		_, full := m.MarchRange(unitSphere, ray, 0, 10)
		tr, clipped := m.MarchRange(unitSphere, ray, 3.5, 10)
		if !tr.Hit {
			t.Fatal("expected hit")
		}
		if clipped > full {
			t.Errorf("starting closer took %d steps, from origin %d", clipped, full)
		}
	})

	t.Run("step budget", func(t *testing.T) {
		tight := m
		tight.MaxSteps = 1
		// A grazing ray needs many steps.
		tr, steps := tight.MarchRange(unitSphere, sdf.NewRay(math3d.V3(-5, 1.0001, 0), math3d.V3(1, 0, 0)), 0, 10)
		if tr.Hit || steps != 1 {
			t.Errorf("hit=%v steps=%d, want miss after 1 step", tr.Hit, steps)
		}
	})
}

func TestEstimateNormal(t *testing.T) {
	floor := func(p math3d.Vec3) sdf.MapValue { return sdf.XZPlane(p, 0, testMaterial) }
	n := EstimateNormal(floor, math3d.V3(3, 0, -2), 1e-4).Normalize()
	if !vecNear(n, math3d.Up(), 1e-9) {
		t.Errorf("plane normal = %v, want up", n)
	}

	n = EstimateNormal(unitSphere, math3d.V3(1, 1, 1).Normalize(), 1e-4).Normalize()
	if !vecNear(n, math3d.V3(1, 1, 1).Normalize(), 1e-6) {
		t.Errorf("sphere normal = %v", n)
	}
}

func BenchmarkMarchSphere(b *testing.B) {
	m := NewMarcher()
	ray := sdf.NewRay(math3d.V3(0.3, 0.2, 5), math3d.V3(0, 0, -1))
	for b.Loop() {
		_ = m.March(unitSphere, ray)
	}
}
