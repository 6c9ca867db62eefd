package sdf

import (
	"math"

	"github.com/taigrr/marcher/pkg/math3d"
)

// Golden ratio and its inverse.
const (
	Phi    = 1.6180339887498949
	InvPhi = Phi - 1
)

// Face directions of the Platonic solids, computed once. The dodecahedron
// and icosahedron only list one normal per pair of opposite faces since
// they are built from double planes.
var (
	tetrahedronNormals  [4]math3d.Vec3
	tetrahedronOrigins  [4]math3d.Vec3  // unit-cube vertices the tetrahedron faces pass through
	dodecahedronNormals [6]math3d.Vec3  // icosahedron vertex directions
	icosahedronNormals  [10]math3d.Vec3 // dodecahedron vertex directions
)

func init() {
	dn := 1 / math.Sqrt(3)

	tetrahedronNormals = [4]math3d.Vec3{
		{X: -dn, Y: dn, Z: dn},
		{X: dn, Y: -dn, Z: dn},
		{X: dn, Y: dn, Z: -dn},
		{X: -dn, Y: -dn, Z: -dn},
	}
	tetrahedronOrigins = [4]math3d.Vec3{
		{X: 1, Y: 1, Z: 1},
		{X: 1, Y: -1, Z: -1},
		{X: -1, Y: 1, Z: -1},
		{X: -1, Y: -1, Z: 1},
	}

	// The remaining icosahedron vertices are cyclic permutations of v and w
	// and their negatives; double planes take care of the negatives.
	v := math3d.V3(0, 1, Phi).Normalize()
	w := math3d.V3(0, 1, -Phi).Normalize()
	dodecahedronNormals = [6]math3d.Vec3{
		v, w,
		v.ZXY(), v.YZX(),
		w.ZXY(), w.YZX(),
	}

	v1 := math3d.V3(1, 1, 1).Scale(dn)
	v2 := math3d.V3(-1, 1, 1).Scale(dn)
	v3 := math3d.V3(-1, 1, -1).Scale(dn)
	v4 := math3d.V3(1, 1, -1).Scale(dn)
	v5 := math3d.V3(0, InvPhi, Phi).Scale(dn)
	v6 := math3d.V3(0, InvPhi, -Phi).Scale(dn)
	icosahedronNormals = [10]math3d.Vec3{
		v1, v2, v3, v4,
		v5, v6,
		v5.ZXY(), v5.YZX(),
		v6.ZXY(), v6.YZX(),
	}
}

// TetrahedronNormals returns the outward face normals of Tetrahedron.
func TetrahedronNormals() [4]math3d.Vec3 { return tetrahedronNormals }

// DodecahedronNormals returns one outward normal per pair of opposite
// dodecahedron faces. These are the vertex directions of the dual
// icosahedron.
func DodecahedronNormals() [6]math3d.Vec3 { return dodecahedronNormals }

// IcosahedronNormals returns one outward normal per pair of opposite
// icosahedron faces. These are the vertex directions of the dual
// dodecahedron.
func IcosahedronNormals() [10]math3d.Vec3 { return icosahedronNormals }

// Tetrahedron is the regular tetrahedron inscribed in the cube of
// half-extent d, built as the intersection of four half-spaces.
func Tetrahedron(p math3d.Vec3, d float64, m Material) MapValue {
	sd := math.Inf(-1)
	for i, n := range tetrahedronNormals {
		sd = math.Max(sd, Plane(p, tetrahedronOrigins[i].Scale(d), n))
	}
	return MapValue{SignedDistance: sd, Material: m}
}

// Octahedron is the intersection of a tetrahedron and its point reflection.
// The result has vertices at distance d along each axis.
func Octahedron(p math3d.Vec3, d float64, m Material) MapValue {
	return Intersect(Tetrahedron(p, d, m), Tetrahedron(p.Negate(), d, m))
}

// OctahedronDoublePlane builds the same solid as Octahedron by replacing
// each tetrahedron face with a double plane.
func OctahedronDoublePlane(p math3d.Vec3, d float64, m Material) MapValue {
	sd := math.Inf(-1)
	for i, n := range tetrahedronNormals {
		sd = math.Max(sd, DoublePlane(p, tetrahedronOrigins[i].Scale(d), n))
	}
	return MapValue{SignedDistance: sd, Material: m}
}

// Dodecahedron with inradius d: the faces of a dodecahedron sit at the
// vertices of its dual icosahedron.
func Dodecahedron(p math3d.Vec3, d float64, m Material) MapValue {
	return MapValue{SignedDistance: intersectDoublePlanes(p, d, dodecahedronNormals[:]), Material: m}
}

// Icosahedron with inradius d, faced by the vertex directions of the dual
// dodecahedron.
func Icosahedron(p math3d.Vec3, d float64, m Material) MapValue {
	return MapValue{SignedDistance: intersectDoublePlanes(p, d, icosahedronNormals[:]), Material: m}
}

func intersectDoublePlanes(p math3d.Vec3, d float64, normals []math3d.Vec3) float64 {
	sd := math.Inf(-1)
	for _, n := range normals {
		sd = math.Max(sd, DoublePlane(p, n.Scale(d), n))
	}
	return sd
}
