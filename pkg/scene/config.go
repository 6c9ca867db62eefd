package scene

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/taigrr/marcher/pkg/lighting"
	"github.com/taigrr/marcher/pkg/math3d"
	"github.com/taigrr/marcher/pkg/sdf"
)

// ErrInvalidConfig wraps every validation failure of a scene file.
var ErrInvalidConfig = errors.New("invalid scene config")

// Config is the TOML representation of a scene.
//
//	name = "demo"
//	ambient = [0.1, 0.1, 0.1]
//	background = [30, 30, 40]
//
//	[camera]
//	position = [0.0, 1.0, 6.0]
//	target = [0.0, 0.0, 0.0]
//
//	[materials.gold]
//	diffuse = [1.0, 0.8, 0.2]
//	specular = [1.0, 1.0, 1.0]
//	shininess = 64.0
//
//	[[objects]]
//	shape = "sphere"
//	radius = 1.0
//	material = "gold"
//
//	[[objects]]
//	shape = "box"
//	op = "subtract"
//	half_extents = [0.5, 0.5, 2.0]
//
//	[[point_lights]]
//	position = [0.0, 4.0, 4.0]
//	diffuse = [1.0, 1.0, 1.0]
//	specular = [1.0, 1.0, 1.0]
type Config struct {
	Name              string                    `toml:"name"`
	Ambient           *[3]float64               `toml:"ambient"`
	Background        *[3]int                   `toml:"background"`
	Bounds            *BoundsConfig             `toml:"bounds"`
	Camera            *CameraConfig             `toml:"camera"`
	Materials         map[string]MaterialConfig `toml:"materials"`
	Objects           []ObjectConfig            `toml:"objects"`
	PointLights       []PointLightConfig        `toml:"point_lights"`
	DirectionalLights []DirectionalLightConfig  `toml:"directional_lights"`
}

// BoundsConfig is an explicit bounding box. Without one the scene is
// bounded by the union of its object bounds, or unbounded if any object is
// a plane.
type BoundsConfig struct {
	Min [3]float64 `toml:"min"`
	Max [3]float64 `toml:"max"`
}

// CameraConfig places the viewer's camera.
type CameraConfig struct {
	Position [3]float64 `toml:"position"`
	Target   [3]float64 `toml:"target"`
}

// MaterialConfig describes a named material.
type MaterialConfig struct {
	Diffuse   [3]float64 `toml:"diffuse"`
	Specular  [3]float64 `toml:"specular"`
	Shininess float64    `toml:"shininess"`
}

// ObjectConfig is one solid and the operation that folds it into the
// objects before it.
type ObjectConfig struct {
	Shape       string     `toml:"shape"`
	Op          string     `toml:"op"`
	Size        float64    `toml:"size"`
	Radius      float64    `toml:"radius"`
	HalfExtents [3]float64 `toml:"half_extents"`
	Position    [3]float64 `toml:"position"`
	Normal      [3]float64 `toml:"normal"`
	Axis        [3]float64 `toml:"axis"`
	AngleDeg    float64    `toml:"angle_deg"`
	Scale       float64    `toml:"scale"`
	Material    string     `toml:"material"`
	K           float64    `toml:"k"`
}

// PointLightConfig describes a point light.
type PointLightConfig struct {
	Position [3]float64 `toml:"position"`
	Diffuse  [3]float64 `toml:"diffuse"`
	Specular [3]float64 `toml:"specular"`
}

// DirectionalLightConfig describes a directional light. Direction points
// towards the light.
type DirectionalLightConfig struct {
	Direction [3]float64 `toml:"direction"`
	Diffuse   [3]float64 `toml:"diffuse"`
	Specular  [3]float64 `toml:"specular"`
}

// defaultPolyK is the smooth_poly blend radius when k is not set.
const defaultPolyK = 0.5

// LoadConfig reads and parses a TOML scene file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scene: %w", err)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// ParseConfig parses a TOML scene. Unknown keys are rejected.
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	dec := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return &cfg, nil
}

// Build assembles the scene. Materials in overrides replace configured
// materials of the same name and may be referenced by objects.
func (c *Config) Build(overrides map[string]sdf.Material) (*Scene, error) {
	if len(c.Objects) == 0 {
		return nil, fmt.Errorf("%w: no objects", ErrInvalidConfig)
	}

	materials := make(map[string]sdf.Material, len(c.Materials)+len(overrides))
	for name, m := range c.Materials {
		if m.Shininess < 0 {
			return nil, fmt.Errorf("%w: material %q: negative shininess", ErrInvalidConfig, name)
		}
		materials[name] = sdf.NewMaterial(vec(m.Diffuse), vec(m.Specular), m.Shininess)
	}
	for name, m := range overrides {
		materials[name] = m
	}

	// Without any configured lights the scene keeps the default rig.
	s := newScene(c.Name)
	if len(c.PointLights)+len(c.DirectionalLights) > 0 {
		s.PointLights, s.DirectionalLights = nil, nil
	}
	if c.Ambient != nil {
		s.Ambient = vec(*c.Ambient)
	}
	if c.Background != nil {
		bg, err := rgb(*c.Background)
		if err != nil {
			return nil, err
		}
		s.Background = bg
	}
	if c.Camera != nil {
		s.CameraPosition = vec(c.Camera.Position)
		s.CameraTarget = vec(c.Camera.Target)
	}

	var (
		field  sdf.Field
		bounds *sdf.AABB
	)
	for i, o := range c.Objects {
		f, b, err := o.field(materials)
		if err != nil {
			return nil, fmt.Errorf("%w: object %d: %w", ErrInvalidConfig, i, err)
		}
		if i == 0 {
			if o.Op != "" && o.Op != "union" {
				return nil, fmt.Errorf("%w: object 0: first object must be a union, got %q", ErrInvalidConfig, o.Op)
			}
			field, bounds = f, b
			continue
		}
		field, bounds, err = fold(o, field, f, bounds, b)
		if err != nil {
			return nil, fmt.Errorf("%w: object %d: %w", ErrInvalidConfig, i, err)
		}
	}
	s.Field = field
	s.Bounds = bounds
	if c.Bounds != nil {
		b := sdf.NewAABB(vec(c.Bounds.Min), vec(c.Bounds.Max))
		s.Bounds = &b
	}

	for _, l := range c.PointLights {
		s.PointLights = append(s.PointLights, lighting.PointLight{
			Position: vec(l.Position),
			Color:    sdf.LightColor{Diffuse: vec(l.Diffuse), Specular: vec(l.Specular)},
		})
	}
	for i, l := range c.DirectionalLights {
		dir := vec(l.Direction)
		if dir.LenSq() == 0 {
			return nil, fmt.Errorf("%w: directional light %d: zero direction", ErrInvalidConfig, i)
		}
		s.DirectionalLights = append(s.DirectionalLights, lighting.DirectionalLight{
			Direction: dir.Normalize(),
			Color:     sdf.LightColor{Diffuse: vec(l.Diffuse), Specular: vec(l.Specular)},
		})
	}
	return s, nil
}

// fold combines acc with f according to o.Op. Bounds follow the operation:
// subtracting and intersecting never grow the left operand.
func fold(o ObjectConfig, acc, f sdf.Field, accBounds, fBounds *sdf.AABB) (sdf.Field, *sdf.AABB, error) {
	switch o.Op {
	case "", "union":
		return sdf.UnionFields(acc, f), mergeBounds(accBounds, fBounds, 0), nil
	case "intersect":
		return sdf.IntersectFields(acc, f), accBounds, nil
	case "subtract":
		return sdf.SubtractFields(acc, f), accBounds, nil
	case "smooth":
		k := o.K
		if k == 0 {
			k = sdf.DefaultSmoothness
		}
		if k < 0 {
			return nil, nil, fmt.Errorf("negative smoothness %v", k)
		}
		return sdf.SmoothUnionFields(k, acc, f), mergeBounds(accBounds, fBounds, 0), nil
	case "smooth_poly":
		k := o.K
		if k == 0 {
			k = defaultPolyK
		}
		if k < 0 {
			return nil, nil, fmt.Errorf("negative blend radius %v", k)
		}
		op := func(a, b sdf.MapValue) sdf.MapValue { return sdf.SmoothUnionPoly(a, b, k) }
		return sdf.Combine(op, acc, f), mergeBounds(accBounds, fBounds, k), nil
	default:
		return nil, nil, fmt.Errorf("unknown op %q", o.Op)
	}
}

func mergeBounds(a, b *sdf.AABB, margin float64) *sdf.AABB {
	if a == nil || b == nil {
		return nil
	}
	m := sdf.NewAABB(a.Min.Min(b.Min), a.Max.Max(b.Max)).Expand(margin)
	return &m
}

// field builds the object's field and, for finite shapes, its bounds.
func (o ObjectConfig) field(materials map[string]sdf.Material) (sdf.Field, *sdf.AABB, error) {
	m := DefaultMaterial
	if o.Material != "" {
		var ok bool
		if m, ok = materials[o.Material]; !ok {
			return nil, nil, fmt.Errorf("unknown material %q", o.Material)
		}
	}

	pos := vec(o.Position)

	// Planes are placed directly; rotation and translation do not apply.
	switch o.Shape {
	case "plane":
		n := vec(o.Normal)
		if n.LenSq() == 0 {
			return nil, nil, errors.New("plane needs a normal")
		}
		n = n.Normalize()
		return func(p math3d.Vec3) sdf.MapValue { return sdf.PlaneObject(p, pos, n, m) }, nil, nil
	case "xz_plane":
		y := pos.Y
		return func(p math3d.Vec3) sdf.MapValue { return sdf.XZPlane(p, y, m) }, nil, nil
	}

	var (
		f      sdf.Field
		radius float64 // bounding sphere about the local origin
	)
	switch o.Shape {
	case "sphere":
		if o.Radius <= 0 {
			return nil, nil, errors.New("sphere needs a positive radius")
		}
		r := o.Radius
		f = func(p math3d.Vec3) sdf.MapValue { return sdf.Sphere(p, math3d.Zero3(), r, m) }
		radius = r
	case "box":
		half := vec(o.HalfExtents)
		if half.X <= 0 || half.Y <= 0 || half.Z <= 0 {
			return nil, nil, errors.New("box needs positive half_extents")
		}
		f = box(half, m)
		radius = half.Len()
	default:
		prim, scale, ok := solidByName(o.Shape)
		if !ok {
			return nil, nil, fmt.Errorf("unknown shape %q", o.Shape)
		}
		if o.Size <= 0 {
			return nil, nil, fmt.Errorf("%s needs a positive size", o.Shape)
		}
		f = shape(prim, o.Size, m)
		radius = o.Size * scale
	}

	if o.Scale < 0 {
		return nil, nil, errors.New("scale must not be negative")
	}
	if o.Scale != 0 && o.Scale != 1 {
		scaled, err := sdf.Transform(f, math3d.ScaleUniform(o.Scale))
		if err != nil {
			return nil, nil, err
		}
		f = scaled
		radius *= o.Scale
	}
	if o.AngleDeg != 0 {
		f = sdf.Rotate(f, vec(o.Axis), deg2rad(o.AngleDeg))
	}
	if pos != math3d.Zero3() {
		f = sdf.Translate(f, pos)
	}
	b := sdf.NewAABB(pos.Sub(math3d.Splat3(radius)), pos.Add(math3d.Splat3(radius)))
	return f, &b, nil
}

// solidByName maps a shape name to its primitive and the ratio of its
// circumradius to its size parameter.
func solidByName(name string) (func(math3d.Vec3, float64, sdf.Material) sdf.MapValue, float64, bool) {
	switch name {
	case "cube":
		return sdf.Cube, math3d.Splat3(1).Len(), true
	case "tetrahedron":
		return sdf.Tetrahedron, math3d.Splat3(1).Len(), true
	case "octahedron":
		return sdf.Octahedron, 1, true
	case "octahedron_planes":
		return sdf.OctahedronDoublePlane, 1, true
	case "dodecahedron":
		// circumradius / inradius of the dodecahedron
		return sdf.Dodecahedron, 1.2584, true
	case "icosahedron":
		return sdf.Icosahedron, 1.2584, true
	}
	return nil, 0, false
}

func vec(a [3]float64) math3d.Vec3 {
	return math3d.V3(a[0], a[1], a[2])
}

func rgb(a [3]int) (color.RGBA, error) {
	for _, c := range a {
		if c < 0 || c > 255 {
			return color.RGBA{}, fmt.Errorf("%w: background component %d out of range", ErrInvalidConfig, c)
		}
	}
	return color.RGBA{uint8(a[0]), uint8(a[1]), uint8(a[2]), 255}, nil
}
