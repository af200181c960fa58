package assets

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"go.uber.org/zap"

	"github.com/Faultbox/armview/internal/engine/scene"
	"github.com/Faultbox/armview/internal/logger"
)

// maxNodeDepth guards against cyclic node references in malformed files.
const maxNodeDepth = 256

// DecodeFile reads a .glb or .gltf file into a scene graph. The returned
// root is named after the file and holds the document's scene roots.
func DecodeFile(path string) (*scene.Node, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return DecodeDocument(doc, name, filepath.Dir(path))
}

// DecodeDocument builds a scene graph from an opened document. dir resolves
// external image URIs and may be empty.
func DecodeDocument(doc *gltf.Document, name, dir string) (*scene.Node, error) {
	roots := sceneRoots(doc)
	if len(roots) == 0 {
		return nil, ErrNoScene
	}

	b := &builder{
		doc:      doc,
		dir:      dir,
		log:      logger.Named("assets"),
		meshes:   make(map[int][]*scene.Mesh),
		textures: make(map[int]*image.RGBA),
		nodes:    make(map[int]*scene.Node),
		skins:    make(map[int]*scene.Skin),
	}

	root := scene.NewNode(name)
	for _, idx := range roots {
		n, err := b.node(idx, 0)
		if err != nil {
			return nil, err
		}
		root.Add(n)
	}
	b.bindSkins()
	return root, nil
}

// sceneRoots returns the default scene's root nodes. Documents without
// scenes fall back to every node that is nobody's child.
func sceneRoots(doc *gltf.Document) []int {
	if len(doc.Scenes) > 0 {
		idx := 0
		if doc.Scene != nil && *doc.Scene < len(doc.Scenes) {
			idx = *doc.Scene
		}
		if sc := doc.Scenes[idx]; sc != nil && len(sc.Nodes) > 0 {
			return sc.Nodes
		}
	}

	child := make([]bool, len(doc.Nodes))
	for _, n := range doc.Nodes {
		for _, c := range n.Children {
			if c >= 0 && c < len(child) {
				child[c] = true
			}
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

type builder struct {
	doc *gltf.Document
	dir string
	log *zap.Logger

	meshes   map[int][]*scene.Mesh
	textures map[int]*image.RGBA

	// nodes maps document indices to built nodes so skins can resolve
	// joints once the whole graph exists.
	nodes   map[int]*scene.Node
	skins   map[int]*scene.Skin
	skinned []skinUse
}

// skinUse is a node's private copy of its meshes awaiting a skin.
type skinUse struct {
	node   string
	skin   int
	meshes []*scene.Mesh
}

func (b *builder) node(idx, depth int) (*scene.Node, error) {
	if depth > maxNodeDepth {
		return nil, fmt.Errorf("node %d: hierarchy deeper than %d", idx, maxNodeDepth)
	}
	if idx < 0 || idx >= len(b.doc.Nodes) {
		return nil, fmt.Errorf("node index %d out of range", idx)
	}
	src := b.doc.Nodes[idx]

	n := scene.NewNode(src.Name)
	applyTransform(n, src)
	b.nodes[idx] = n

	if src.Mesh != nil {
		meshes, err := b.mesh(*src.Mesh)
		if err != nil {
			return nil, fmt.Errorf("node %q: %w", src.Name, err)
		}
		if src.Skin != nil {
			meshes = b.skinCopies(src.Name, *src.Skin, meshes)
		}
		n.Meshes = meshes
	}

	for _, c := range src.Children {
		child, err := b.node(c, depth+1)
		if err != nil {
			return nil, err
		}
		n.Add(child)
	}
	return n, nil
}

var identity = [16]float64{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1}

// applyTransform copies a node's TRS, decomposing an explicit matrix when
// one is present.
func applyTransform(n *scene.Node, src *gltf.Node) {
	if m := src.MatrixOrDefault(); m != identity && m != ([16]float64{}) {
		var mat mgl32.Mat4
		for i, v := range m {
			mat[i] = float32(v)
		}
		n.Position, n.Rotation, n.Scale = decompose(mat)
		return
	}

	t := src.TranslationOrDefault()
	r := src.RotationOrDefault()
	s := src.ScaleOrDefault()
	n.Position = mgl32.Vec3{float32(t[0]), float32(t[1]), float32(t[2])}
	n.Rotation = scene.EulerFromQuat(mgl32.Quat{
		W: float32(r[3]),
		V: mgl32.Vec3{float32(r[0]), float32(r[1]), float32(r[2])},
	}.Normalize())
	n.Scale = mgl32.Vec3{float32(s[0]), float32(s[1]), float32(s[2])}
}

// decompose splits an affine column-major matrix into translation, XYZ
// Euler rotation and scale.
func decompose(m mgl32.Mat4) (pos, rot, scale mgl32.Vec3) {
	pos = mgl32.Vec3{m[12], m[13], m[14]}

	c0 := mgl32.Vec3{m[0], m[1], m[2]}
	c1 := mgl32.Vec3{m[4], m[5], m[6]}
	c2 := mgl32.Vec3{m[8], m[9], m[10]}
	scale = mgl32.Vec3{c0.Len(), c1.Len(), c2.Len()}
	if m.Det() < 0 {
		scale[0] = -scale[0]
	}

	r := mgl32.Ident4()
	for k, c := range []mgl32.Vec3{c0, c1, c2} {
		if scale[k] != 0 {
			c = c.Mul(1 / scale[k])
		}
		r[k*4], r[k*4+1], r[k*4+2] = c[0], c[1], c[2]
	}
	rot = scene.EulerFromMatrix(r)
	return pos, rot, scale
}

// mesh converts every triangle primitive of a glTF mesh. Results are
// shared between nodes that reference the same mesh.
func (b *builder) mesh(idx int) ([]*scene.Mesh, error) {
	if cached, ok := b.meshes[idx]; ok {
		return cached, nil
	}
	if idx < 0 || idx >= len(b.doc.Meshes) {
		return nil, fmt.Errorf("mesh index %d out of range", idx)
	}
	src := b.doc.Meshes[idx]

	var out []*scene.Mesh
	for i, prim := range src.Primitives {
		if prim.Mode != gltf.PrimitiveTriangles {
			b.log.Debug("skipping non-triangle primitive",
				zap.String("mesh", src.Name), zap.Int("primitive", i))
			continue
		}
		m, err := b.primitive(prim)
		if err != nil {
			return nil, fmt.Errorf("mesh %q primitive %d: %w", src.Name, i, err)
		}
		m.Name = fmt.Sprintf("%s#%d", src.Name, i)
		out = append(out, m)
	}
	b.meshes[idx] = out
	return out, nil
}

func (b *builder) accessor(idx int) (*gltf.Accessor, error) {
	if idx < 0 || idx >= len(b.doc.Accessors) {
		return nil, fmt.Errorf("accessor index %d out of range", idx)
	}
	return b.doc.Accessors[idx], nil
}

func (b *builder) primitive(prim *gltf.Primitive) (*scene.Mesh, error) {
	posIdx, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		return nil, fmt.Errorf("missing %s attribute", gltf.POSITION)
	}
	acr, err := b.accessor(posIdx)
	if err != nil {
		return nil, err
	}
	positions, err := modeler.ReadPosition(b.doc, acr, nil)
	if err != nil {
		return nil, fmt.Errorf("positions: %w", err)
	}

	m := &scene.Mesh{Positions: positions, BaseColor: [4]float32{1, 1, 1, 1}}

	if idx, ok := prim.Attributes[gltf.NORMAL]; ok {
		if acr, err := b.accessor(idx); err == nil {
			if normals, err := modeler.ReadNormal(b.doc, acr, nil); err == nil && len(normals) == len(positions) {
				m.Normals = normals
			}
		}
	}
	if idx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
		if acr, err := b.accessor(idx); err == nil {
			if uvs, err := modeler.ReadTextureCoord(b.doc, acr, nil); err == nil && len(uvs) == len(positions) {
				m.TexCoords = uvs
			}
		}
	}

	if prim.Indices != nil {
		acr, err := b.accessor(*prim.Indices)
		if err != nil {
			return nil, err
		}
		if m.Indices, err = modeler.ReadIndices(b.doc, acr, nil); err != nil {
			return nil, fmt.Errorf("indices: %w", err)
		}
		for _, i := range m.Indices {
			if int(i) >= len(positions) {
				return nil, fmt.Errorf("index %d exceeds %d vertices", i, len(positions))
			}
		}
	} else {
		m.Indices = make([]uint32, len(positions))
		for i := range m.Indices {
			m.Indices[i] = uint32(i)
		}
	}

	m.ComputeNormals()
	b.influences(m, prim)

	if prim.Material != nil {
		b.material(m, *prim.Material)
	}
	return m, nil
}

// influences reads JOINTS_0 and WEIGHTS_0. Partial or mismatched sets
// are dropped and the mesh stays rigid.
func (b *builder) influences(m *scene.Mesh, prim *gltf.Primitive) {
	jIdx, okJ := prim.Attributes[gltf.JOINTS_0]
	wIdx, okW := prim.Attributes[gltf.WEIGHTS_0]
	if !okJ || !okW {
		return
	}
	jAcr, err := b.accessor(jIdx)
	if err != nil {
		return
	}
	wAcr, err := b.accessor(wIdx)
	if err != nil {
		return
	}
	joints, err := modeler.ReadJoints(b.doc, jAcr, nil)
	if err != nil {
		b.log.Warn("joints unreadable", zap.Error(err))
		return
	}
	weights, err := modeler.ReadWeights(b.doc, wAcr, nil)
	if err != nil {
		b.log.Warn("weights unreadable", zap.Error(err))
		return
	}
	if len(joints) != len(m.Positions) || len(weights) != len(m.Positions) {
		b.log.Warn("skin influences do not match vertex count",
			zap.Int("vertices", len(m.Positions)),
			zap.Int("joints", len(joints)),
			zap.Int("weights", len(weights)))
		return
	}
	m.Joints, m.Weights = joints, weights
}

// skinCopies gives a skinned node its own mesh values, since the same
// glTF mesh may be bound to different skins. Geometry stays shared.
func (b *builder) skinCopies(node string, skin int, meshes []*scene.Mesh) []*scene.Mesh {
	out := make([]*scene.Mesh, len(meshes))
	for i, m := range meshes {
		c := *m
		out[i] = &c
	}
	b.skinned = append(b.skinned, skinUse{node: node, skin: skin, meshes: out})
	return out
}

// bindSkins attaches skins once every node is built. A skin that cannot
// be resolved is logged and its meshes are drawn rigidly.
func (b *builder) bindSkins() {
	for _, use := range b.skinned {
		skin, err := b.skin(use.skin)
		if err != nil {
			b.log.Warn("skin unusable, mesh drawn unskinned",
				zap.String("node", use.node), zap.Int("skin", use.skin), zap.Error(err))
			continue
		}
		for _, m := range use.meshes {
			if len(m.Joints) == 0 {
				continue
			}
			m.Skin = skin
		}
	}
}

func (b *builder) skin(idx int) (*scene.Skin, error) {
	if s, ok := b.skins[idx]; ok {
		return s, nil
	}
	if idx < 0 || idx >= len(b.doc.Skins) {
		return nil, fmt.Errorf("skin index %d out of range", idx)
	}
	src := b.doc.Skins[idx]

	s := &scene.Skin{Name: src.Name, Joints: make([]*scene.Node, len(src.Joints))}
	for i, j := range src.Joints {
		n, ok := b.nodes[j]
		if !ok {
			return nil, fmt.Errorf("joint node %d is not in the scene", j)
		}
		s.Joints[i] = n
	}

	if src.InverseBindMatrices != nil {
		acr, err := b.accessor(*src.InverseBindMatrices)
		if err != nil {
			return nil, err
		}
		data, err := modeler.ReadAccessor(b.doc, acr, nil)
		if err != nil {
			return nil, fmt.Errorf("inverse bind matrices: %w", err)
		}
		mats, ok := data.([][4][4]float32)
		if !ok {
			return nil, fmt.Errorf("inverse bind matrices: unexpected %T", data)
		}
		if len(mats) < len(s.Joints) {
			return nil, fmt.Errorf("%d inverse bind matrices for %d joints", len(mats), len(s.Joints))
		}
		s.InverseBind = make([]mgl32.Mat4, len(s.Joints))
		for i := range s.InverseBind {
			// accessor matrices are column-major, one column per row here
			for c := 0; c < 4; c++ {
				for r := 0; r < 4; r++ {
					s.InverseBind[i][c*4+r] = mats[i][c][r]
				}
			}
		}
	}

	b.skins[idx] = s
	return s, nil
}

// material applies the base colour factor and texture. Texture failures
// are logged and leave the mesh untextured.
func (b *builder) material(m *scene.Mesh, idx int) {
	if idx < 0 || idx >= len(b.doc.Materials) {
		return
	}
	pbr := b.doc.Materials[idx].PBRMetallicRoughness
	if pbr == nil {
		return
	}
	f := pbr.BaseColorFactorOrDefault()
	m.BaseColor = [4]float32{float32(f[0]), float32(f[1]), float32(f[2]), float32(f[3])}

	if pbr.BaseColorTexture == nil || len(m.TexCoords) == 0 {
		return
	}
	img, err := b.texture(pbr.BaseColorTexture.Index)
	if err != nil {
		b.log.Warn("base colour texture unusable", zap.Int("texture", pbr.BaseColorTexture.Index), zap.Error(err))
		return
	}
	m.Texture = img
}

func (b *builder) texture(idx int) (*image.RGBA, error) {
	if img, ok := b.textures[idx]; ok {
		return img, nil
	}
	if idx < 0 || idx >= len(b.doc.Textures) || b.doc.Textures[idx].Source == nil {
		return nil, fmt.Errorf("texture %d has no source image", idx)
	}
	src := *b.doc.Textures[idx].Source
	if src < 0 || src >= len(b.doc.Images) {
		return nil, fmt.Errorf("image index %d out of range", src)
	}

	data, err := b.imageData(b.doc.Images[src])
	if err != nil {
		return nil, err
	}
	img, err := decodeTexture(data)
	if err != nil {
		return nil, err
	}
	b.textures[idx] = img
	return img, nil
}

// imageData returns the encoded bytes of an image held in a buffer view,
// a data URI or an external file next to the document.
func (b *builder) imageData(img *gltf.Image) ([]byte, error) {
	if img.BufferView != nil {
		bvIdx := *img.BufferView
		if bvIdx < 0 || bvIdx >= len(b.doc.BufferViews) {
			return nil, fmt.Errorf("buffer view %d out of range", bvIdx)
		}
		bv := b.doc.BufferViews[bvIdx]
		if bv.Buffer < 0 || bv.Buffer >= len(b.doc.Buffers) {
			return nil, fmt.Errorf("buffer %d out of range", bv.Buffer)
		}
		data := b.doc.Buffers[bv.Buffer].Data
		end := bv.ByteOffset + bv.ByteLength
		if bv.ByteOffset < 0 || end > len(data) {
			return nil, fmt.Errorf("buffer view %d exceeds buffer", bvIdx)
		}
		return data[bv.ByteOffset:end], nil
	}
	if img.IsEmbeddedResource() {
		return img.MarshalData()
	}
	if img.URI == "" || b.dir == "" {
		return nil, fmt.Errorf("image %q has no data", img.Name)
	}
	return os.ReadFile(filepath.Join(b.dir, filepath.FromSlash(img.URI)))
}
