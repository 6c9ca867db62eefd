package math3d

import (
	"math"
	"testing"
)

const eps = 1e-12

func vecNear(a, b Vec3, tol float64) bool {
	return math.Abs(a.X-b.X) <= tol && math.Abs(a.Y-b.Y) <= tol && math.Abs(a.Z-b.Z) <= tol
}

func TestVec3Basics(t *testing.T) {
	a := V3(1, 2, 3)
	b := V3(4, -5, 6)

	tests := []struct {
		name     string
		got      Vec3
		expected Vec3
	}{
		{"add", a.Add(b), V3(5, -3, 9)},
		{"sub", a.Sub(b), V3(-3, 7, -3)},
		{"mul", a.Mul(b), V3(4, -10, 18)},
		{"scale", a.Scale(2), V3(2, 4, 6)},
		{"div", b.Div(2), V3(2, -2.5, 3)},
		{"cross", V3(1, 0, 0).Cross(V3(0, 1, 0)), V3(0, 0, 1)},
		{"negate", a.Negate(), V3(-1, -2, -3)},
		{"abs", b.Abs(), V3(4, 5, 6)},
		{"min", a.Min(b), V3(1, -5, 3)},
		{"max", a.Max(b), V3(4, 2, 6)},
		{"max scalar", b.MaxScalar(0), V3(4, 0, 6)},
		{"lerp", a.Lerp(b, 0.5), V3(2.5, -1.5, 4.5)},
		{"reflect", V3(1, -1, 0).Reflect(V3(0, 1, 0)), V3(1, 1, 0)},
		{"splat", Splat3(7), V3(7, 7, 7)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if !vecNear(tc.got, tc.expected, eps) {
				t.Errorf("got %v, want %v", tc.got, tc.expected)
			}
		})
	}

	if got := a.Dot(b); got != 12 {
		t.Errorf("Dot = %v, want 12", got)
	}
	if got := V3(3, 4, 0).Len(); got != 5 {
		t.Errorf("Len = %v, want 5", got)
	}
	if got := V3(0, 0, 0).Distance(V3(0, 3, 4)); got != 5 {
		t.Errorf("Distance = %v, want 5", got)
	}
	if got := b.MaxComponent(); got != 6 {
		t.Errorf("MaxComponent = %v, want 6", got)
	}
}

func TestVec3Swizzle(t *testing.T) {
	v := V3(1, 2, 3)
	if got := v.ZXY(); got != V3(3, 1, 2) {
		t.Errorf("ZXY = %v, want (3, 1, 2)", got)
	}
	if got := v.YZX(); got != V3(2, 3, 1) {
		t.Errorf("YZX = %v, want (2, 3, 1)", got)
	}
	// Three applications of a cyclic permutation are the identity.
	if got := v.ZXY().ZXY().ZXY(); got != v {
		t.Errorf("ZXY^3 = %v, want %v", got, v)
	}
	if got := v.ZXY().YZX(); got != v {
		t.Errorf("ZXY then YZX = %v, want %v", got, v)
	}
}

func TestVec3Normalize(t *testing.T) {
	n := V3(0, 3, 4).Normalize()
	if math.Abs(n.Len()-1) > eps {
		t.Errorf("normalized length = %v, want 1", n.Len())
	}
	if !vecNear(n, V3(0, 0.6, 0.8), eps) {
		t.Errorf("Normalize = %v, want (0, 0.6, 0.8)", n)
	}

	if got := Zero3().Normalize(); got != Zero3() {
		t.Errorf("zero vector normalized to %v, want zero", got)
	}

	fallback := V3(0, 1, 0)
	if got := Zero3().NormalizeOr(fallback); got != fallback {
		t.Errorf("NormalizeOr on zero = %v, want fallback %v", got, fallback)
	}
	if got := V3(2, 0, 0).NormalizeOr(fallback); got != V3(1, 0, 0) {
		t.Errorf("NormalizeOr = %v, want (1, 0, 0)", got)
	}
}

func TestClampMix(t *testing.T) {
	tests := []struct {
		name     string
		got      float64
		expected float64
	}{
		{"clamp below", Clamp(-1, 0, 1), 0},
		{"clamp above", Clamp(2, 0, 1), 1},
		{"clamp inside", Clamp(0.25, 0, 1), 0.25},
		{"mix start", Mix(2, 4, 0), 2},
		{"mix end", Mix(2, 4, 1), 4},
		{"mix half", Mix(2, 4, 0.5), 3},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.got != tc.expected {
				t.Errorf("got %v, want %v", tc.got, tc.expected)
			}
		})
	}
}
