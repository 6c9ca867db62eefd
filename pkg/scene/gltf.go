package scene

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/ext/lightspunctual"

	"github.com/taigrr/marcher/pkg/lighting"
	"github.com/taigrr/marcher/pkg/math3d"
	"github.com/taigrr/marcher/pkg/sdf"
)

// Import is what a glTF document contributes to a scene: named materials,
// KHR_lights_punctual lights and box proxies for its meshes.
type Import struct {
	Materials         map[string]sdf.Material
	PointLights       []lighting.PointLight
	DirectionalLights []lighting.DirectionalLight
	Proxies           []Proxy
}

// Proxy stands in for a glTF mesh primitive: the world-space bounding box
// of its vertices, drawn as a solid box.
type Proxy struct {
	Name     string
	Bounds   sdf.AABB
	Material sdf.Material
}

// Field returns the proxy's box as a distance field.
func (p Proxy) Field() sdf.Field {
	center, half, m := p.Bounds.Center(), p.Bounds.HalfSize(), p.Material
	return func(q math3d.Vec3) sdf.MapValue {
		return sdf.Box(q.Sub(center), half, m)
	}
}

// Apply adds imported lights and proxies to s. Imported materials are not
// applied here; pass them to Config.Build to override configured ones.
func (s *Scene) Apply(imp *Import) {
	s.PointLights = append(s.PointLights, imp.PointLights...)
	s.DirectionalLights = append(s.DirectionalLights, imp.DirectionalLights...)
	for _, p := range imp.Proxies {
		s.AddObject(p.Field(), ptr(p.Bounds))
	}
}

// ImportGLTF loads a GLTF or GLB file.
func ImportGLTF(path string) (*Import, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf: %w", err)
	}
	imp, err := FromDocument(doc)
	if err != nil {
		return nil, fmt.Errorf("import %s: %w", path, err)
	}
	return imp, nil
}

// FromDocument extracts materials, lights and mesh proxies from doc.
// Lights and meshes are placed by walking the default scene's node
// hierarchy, or every root node if the document names no scene.
func FromDocument(doc *gltf.Document) (*Import, error) {
	imp := &Import{Materials: make(map[string]sdf.Material, len(doc.Materials))}

	materials := make([]sdf.Material, len(doc.Materials))
	for i, m := range doc.Materials {
		materials[i] = convertMaterial(m)
		imp.Materials[materialName(m, i)] = materials[i]
	}

	var lights lightspunctual.Lights
	if ext, ok := doc.Extensions[lightspunctual.ExtensionName]; ok {
		if l, ok := ext.(lightspunctual.Lights); ok {
			lights = l
		}
	}

	w := &walker{doc: doc, imp: imp, lights: lights, materials: materials, visiting: make(map[int]bool)}
	for _, idx := range rootNodes(doc) {
		if err := w.visit(idx, math3d.Identity()); err != nil {
			return nil, err
		}
	}
	return imp, nil
}

type walker struct {
	doc       *gltf.Document
	imp       *Import
	lights    lightspunctual.Lights
	materials []sdf.Material
	visiting  map[int]bool
}

func (w *walker) visit(idx int, parent math3d.Mat4) error {
	if idx < 0 || idx >= len(w.doc.Nodes) {
		return fmt.Errorf("node index %d out of range", idx)
	}
	if w.visiting[idx] {
		return fmt.Errorf("node %d: cycle in node hierarchy", idx)
	}
	w.visiting[idx] = true
	defer delete(w.visiting, idx)

	node := w.doc.Nodes[idx]
	world := parent.Mul(localMatrix(node))

	if ext, ok := node.Extensions[lightspunctual.ExtensionName]; ok {
		if li, ok := ext.(lightspunctual.LightIndex); ok {
			if int(li) >= len(w.lights) {
				return fmt.Errorf("node %d: light index %d out of range", idx, li)
			}
			w.addLight(w.lights[li], world)
		}
	}

	if node.Mesh != nil {
		if err := w.addMesh(*node.Mesh, world); err != nil {
			return fmt.Errorf("node %d: %w", idx, err)
		}
	}

	for _, child := range node.Children {
		if err := w.visit(child, world); err != nil {
			return err
		}
	}
	return nil
}

func (w *walker) addLight(l *lightspunctual.Light, world math3d.Mat4) {
	c := l.ColorOrDefault()
	rgb := math3d.V3(c[0], c[1], c[2]).Scale(l.IntensityOrDefault())
	color := sdf.LightColor{Diffuse: rgb, Specular: rgb}

	switch l.Type {
	case lightspunctual.TypeDirectional:
		// Lights shine down their local -Z; the surface-to-light direction is +Z.
		dir := world.MulVec3Dir(math3d.V3(0, 0, 1)).NormalizeOr(math3d.Up())
		w.imp.DirectionalLights = append(w.imp.DirectionalLights, lighting.DirectionalLight{Direction: dir, Color: color})
	default:
		// Spot lights are treated as point lights.
		w.imp.PointLights = append(w.imp.PointLights, lighting.PointLight{Position: world.Translation(), Color: color})
	}
}

func (w *walker) addMesh(meshIdx int, world math3d.Mat4) error {
	if meshIdx < 0 || meshIdx >= len(w.doc.Meshes) {
		return fmt.Errorf("mesh index %d out of range", meshIdx)
	}
	mesh := w.doc.Meshes[meshIdx]
	for i, prim := range mesh.Primitives {
		posIdx, ok := prim.Attributes[gltf.POSITION]
		if !ok {
			continue
		}
		local, err := positionBounds(w.doc, posIdx)
		if err != nil {
			return fmt.Errorf("mesh %q primitive %d: %w", mesh.Name, i, err)
		}
		m := DefaultMaterial
		if prim.Material != nil && *prim.Material < len(w.materials) {
			m = w.materials[*prim.Material]
		}
		w.imp.Proxies = append(w.imp.Proxies, Proxy{
			Name:     mesh.Name,
			Bounds:   local.Transform(world),
			Material: m,
		})
	}
	return nil
}

// rootNodes returns the nodes to start walking from.
func rootNodes(doc *gltf.Document) []int {
	if doc.Scene != nil && *doc.Scene < len(doc.Scenes) {
		return doc.Scenes[*doc.Scene].Nodes
	}
	if len(doc.Scenes) > 0 {
		return doc.Scenes[0].Nodes
	}
	child := make(map[int]bool)
	for _, n := range doc.Nodes {
		for _, c := range n.Children {
			child[c] = true
		}
	}
	var roots []int
	for i := range doc.Nodes {
		if !child[i] {
			roots = append(roots, i)
		}
	}
	return roots
}

// localMatrix returns the node's transform, from its matrix if set and
// otherwise from translation, rotation and scale.
func localMatrix(n *gltf.Node) math3d.Mat4 {
	if n.Matrix != [16]float64{} && math3d.Mat4(n.Matrix) != math3d.Identity() {
		return math3d.Mat4(n.Matrix)
	}
	s := math3d.V3(n.Scale[0], n.Scale[1], n.Scale[2])
	if s == math3d.Zero3() {
		s = math3d.Splat3(1)
	}
	t := math3d.V3(n.Translation[0], n.Translation[1], n.Translation[2])
	return math3d.Translate(t).Mul(quatMatrix(n.Rotation)).Mul(math3d.Scale(s))
}

// quatMatrix converts an (x, y, z, w) quaternion to a rotation matrix. The
// zero quaternion is treated as the identity.
func quatMatrix(q [4]float64) math3d.Mat4 {
	l := math.Sqrt(q[0]*q[0] + q[1]*q[1] + q[2]*q[2] + q[3]*q[3])
	if l == 0 {
		return math3d.Identity()
	}
	x, y, z, w := q[0]/l, q[1]/l, q[2]/l, q[3]/l
	s := math.Sqrt(math.Max(0, 1-w*w))
	if s < 1e-12 {
		return math3d.Identity()
	}
	angle := 2 * math.Acos(math3d.Clamp(w, -1, 1))
	return math3d.Rotate(math3d.V3(x/s, y/s, z/s), angle)
}

// convertMaterial maps a metallic-roughness material onto Blinn-Phong.
// Rough surfaces get weak, broad highlights; metals tint them.
func convertMaterial(m *gltf.Material) sdf.Material {
	base := [4]float64{1, 1, 1, 1}
	metallic, roughness := 1.0, 1.0
	if pbr := m.PBRMetallicRoughness; pbr != nil {
		if pbr.BaseColorFactor != nil {
			base = *pbr.BaseColorFactor
		}
		if pbr.MetallicFactor != nil {
			metallic = *pbr.MetallicFactor
		}
		if pbr.RoughnessFactor != nil {
			roughness = *pbr.RoughnessFactor
		}
	}
	diffuse := math3d.V3(base[0], base[1], base[2])
	roughness = math3d.Clamp(roughness, 0, 1)
	metallic = math3d.Clamp(metallic, 0, 1)
	specular := math3d.Splat3(1).Lerp(diffuse, metallic).Scale(1 - roughness)
	return sdf.NewMaterial(diffuse, specular, shininess(roughness))
}

// shininess converts roughness to a Blinn-Phong exponent, 2/r⁴ - 2,
// limited to [1, 256].
func shininess(roughness float64) float64 {
	r4 := roughness * roughness * roughness * roughness
	if r4 == 0 {
		return 256
	}
	return math3d.Clamp(2/r4-2, 1, 256)
}

func materialName(m *gltf.Material, i int) string {
	if m.Name != "" {
		return m.Name
	}
	return fmt.Sprintf("material%d", i)
}

// positionBounds returns the bounding box of a POSITION accessor, from its
// declared min/max when present and otherwise by reading the vertices.
func positionBounds(doc *gltf.Document, accessorIdx int) (sdf.AABB, error) {
	if accessorIdx < 0 || accessorIdx >= len(doc.Accessors) {
		return sdf.AABB{}, fmt.Errorf("accessor index %d out of range", accessorIdx)
	}
	accessor := doc.Accessors[accessorIdx]
	if accessor.Type != gltf.AccessorVec3 {
		return sdf.AABB{}, fmt.Errorf("expected VEC3, got %v", accessor.Type)
	}
	if len(accessor.Min) == 3 && len(accessor.Max) == 3 {
		return sdf.NewAABB(
			math3d.V3(accessor.Min[0], accessor.Min[1], accessor.Min[2]),
			math3d.V3(accessor.Max[0], accessor.Max[1], accessor.Max[2]),
		), nil
	}

	positions, err := readVec3Accessor(doc, accessor)
	if err != nil {
		return sdf.AABB{}, err
	}
	if len(positions) == 0 {
		return sdf.AABB{}, errors.New("no vertices")
	}
	b := sdf.NewAABB(positions[0], positions[0])
	for _, p := range positions[1:] {
		b.Min = b.Min.Min(p)
		b.Max = b.Max.Max(p)
	}
	return b, nil
}

// readVec3Accessor reads float VEC3 data from an embedded buffer.
func readVec3Accessor(doc *gltf.Document, accessor *gltf.Accessor) ([]math3d.Vec3, error) {
	if accessor.ComponentType != gltf.ComponentFloat {
		return nil, fmt.Errorf("unsupported component type %v", accessor.ComponentType)
	}
	if accessor.BufferView == nil {
		return nil, errors.New("accessor has no buffer view")
	}

	if *accessor.BufferView < 0 || *accessor.BufferView >= len(doc.BufferViews) {
		return nil, fmt.Errorf("buffer view index %d out of range", *accessor.BufferView)
	}
	bufferView := doc.BufferViews[*accessor.BufferView]
	if bufferView.Buffer < 0 || bufferView.Buffer >= len(doc.Buffers) {
		return nil, fmt.Errorf("buffer index %d out of range", bufferView.Buffer)
	}
	buffer := doc.Buffers[bufferView.Buffer]
	if buffer.URI != "" && buffer.Data == nil {
		return nil, errors.New("external buffers not supported")
	}
	data := buffer.Data

	start := bufferView.ByteOffset + accessor.ByteOffset
	stride := bufferView.ByteStride
	if stride == 0 {
		stride = 12 // 3 floats * 4 bytes
	}

	result := make([]math3d.Vec3, accessor.Count)
	for i := range accessor.Count {
		offset := start + i*stride
		if offset+12 > len(data) {
			return nil, fmt.Errorf("vertex %d outside buffer", i)
		}
		result[i] = math3d.V3(
			float64(readFloat32(data[offset:])),
			float64(readFloat32(data[offset+4:])),
			float64(readFloat32(data[offset+8:])),
		)
	}
	return result, nil
}

// readFloat32 reads a little-endian float32.
func readFloat32(b []byte) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b))
}
