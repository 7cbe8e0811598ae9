package importer

import (
	gomath "math"
	"path/filepath"
	"testing"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/modelconv/pkg/math"
	"github.com/Faultbox/modelconv/pkg/scene"
)

// triangleDocument returns a document with one textured triangle drawn by a
// single translated node.
func triangleDocument() *gltf.Document {
	doc := gltf.NewDocument()
	pos := modeler.WritePosition(doc, [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}})
	uv := modeler.WriteTextureCoord(doc, [][2]float32{{0, 0}, {1, 0}, {0, 1}})
	idx := modeler.WriteIndices(doc, []uint32{0, 1, 2})

	doc.Meshes = []*gltf.Mesh{{
		Name: "tri",
		Primitives: []*gltf.Primitive{{
			Attributes: map[string]uint32{gltf.POSITION: pos, gltf.TEXCOORD_0: uv},
			Indices:    gltf.Index(idx),
		}},
	}}
	doc.Nodes = []*gltf.Node{{
		Name:        "holder",
		Mesh:        gltf.Index(0),
		Translation: [3]float32{1, 2, 3},
	}}
	doc.Scenes[0].Nodes = []uint32{0}
	return doc
}

func TestFromDocumentTriangle(t *testing.T) {
	s, err := FromDocument(triangleDocument(), nil)
	require.NoError(t, err)
	require.NoError(t, scene.Validate(s))

	require.NotNil(t, s.Root)
	assert.Equal(t, RootName, s.Root.Name)
	assert.True(t, s.Root.Transform.IsIdentity())
	require.Len(t, s.Root.Children, 1)

	holder := s.Root.Children[0]
	assert.Equal(t, "holder", holder.Name)
	assert.Equal(t, [3]float32{1, 2, 3}, holder.Transform.Translation())
	assert.Equal(t, []int{0}, holder.Meshes)

	require.Len(t, s.Meshes, 1)
	m := s.Meshes[0]
	assert.Equal(t, "tri", m.Name)
	assert.Equal(t, scene.PrimitiveTriangle, m.PrimitiveTypes)
	assert.Equal(t, []scene.Face{{0, 1, 2}}, m.Faces)
	assert.True(t, m.HasTexCoords(0))

	for i := 0; i < 3; i++ {
		assert.InDeltaSlice(t, []float32{0, 0, 1}, m.Normals[i][:], 1e-6)
		assert.InDeltaSlice(t, []float32{1, 0, 0}, m.Tangents[i][:], 1e-6)
		assert.InDeltaSlice(t, []float32{0, 1, 0}, m.Bitangents[i][:], 1e-6)
	}
	assert.True(t, s.Flags.Has(scene.FlagGeneratedNormals))
	assert.True(t, s.Flags.Has(scene.FlagGeneratedTangents))

	// No material on the primitive: one default metallic-roughness material.
	require.Len(t, s.Materials, 1)
	assert.Equal(t, scene.ShadingPBR, s.Materials[0].ShadingModel())
}

func TestFromDocumentKeepsProvidedAttributes(t *testing.T) {
	doc := triangleDocument()
	prim := doc.Meshes[0].Primitives[0]
	prim.Attributes[gltf.NORMAL] = modeler.WriteNormal(doc, [][3]float32{{0, 0, -1}, {0, 0, -1}, {0, 0, -1}})
	prim.Attributes[gltf.TANGENT] = modeler.WriteTangent(doc, [][4]float32{{1, 0, 0, -1}, {1, 0, 0, -1}, {1, 0, 0, -1}})
	prim.Attributes[gltf.COLOR_0] = modeler.WriteColor(doc, [][4]uint8{{255, 0, 0, 255}, {0, 255, 0, 255}, {0, 0, 255, 255}})

	s, err := FromDocument(doc, nil)
	require.NoError(t, err)

	m := s.Meshes[0]
	assert.Equal(t, [3]float32{0, 0, -1}, m.Normals[0])
	assert.Equal(t, [3]float32{1, 0, 0}, m.Tangents[0])
	// cross((0,0,-1), (1,0,0)) * -1
	assert.InDeltaSlice(t, []float32{0, 1, 0}, m.Bitangents[0][:], 1e-6)
	assert.False(t, s.Flags.Has(scene.FlagGeneratedNormals))
	assert.False(t, s.Flags.Has(scene.FlagGeneratedTangents))

	require.True(t, m.HasColors())
	assert.Equal(t, [4]float32{1, 0, 0, 1}, m.Colors[0])
}

func TestFromDocumentPrimitives(t *testing.T) {
	doc := triangleDocument()
	pos := modeler.WritePosition(doc, [][3]float32{{0, 0, 0}, {1, 0, 0}})
	doc.Meshes[0].Name = ""
	doc.Meshes[0].Primitives = append(doc.Meshes[0].Primitives, &gltf.Primitive{
		Attributes: map[string]uint32{gltf.POSITION: pos},
		Mode:       gltf.PrimitiveLines,
	})

	s, err := FromDocument(doc, nil)
	require.NoError(t, err)

	require.Len(t, s.Meshes, 2)
	assert.Equal(t, "mesh0_0", s.Meshes[0].Name)
	assert.Equal(t, "mesh0_1", s.Meshes[1].Name)
	assert.Equal(t, scene.PrimitiveLine, s.Meshes[1].PrimitiveTypes)
	assert.Equal(t, []int{0, 1}, s.Root.Children[0].Meshes)
	assert.Equal(t, 0, s.Meshes[1].MaterialIndex)
}

func TestFromDocumentNodeCycle(t *testing.T) {
	doc := triangleDocument()
	doc.Nodes = append(doc.Nodes, &gltf.Node{Name: "loop", Children: []uint32{0}})
	doc.Nodes[0].Children = []uint32{1}

	_, err := FromDocument(doc, nil)
	assert.ErrorIs(t, err, ErrNodeCycle)
}

func TestFromDocumentWithoutScenes(t *testing.T) {
	doc := triangleDocument()
	doc.Scenes = nil
	doc.Scene = nil
	doc.Nodes = append(doc.Nodes,
		&gltf.Node{Name: "parent", Children: []uint32{2}},
		&gltf.Node{Name: "child", Mesh: gltf.Index(0)},
	)

	s, err := FromDocument(doc, nil)
	require.NoError(t, err)

	require.Len(t, s.Root.Children, 2)
	assert.Equal(t, "holder", s.Root.Children[0].Name)
	assert.Equal(t, "parent", s.Root.Children[1].Name)
	assert.Equal(t, "child", s.Root.Children[1].Children[0].Name)
}

func TestFromDocumentMaterials(t *testing.T) {
	doc := triangleDocument()
	doc.Images = []*gltf.Image{{URI: "textures/rusty%20metal.png"}, {MimeType: "image/png", BufferView: gltf.Index(0)}}
	doc.Samplers = []*gltf.Sampler{{
		WrapS:     gltf.WrapClampToEdge,
		WrapT:     gltf.WrapMirroredRepeat,
		MagFilter: gltf.MagNearest,
		MinFilter: gltf.MinLinear,
	}}
	doc.Textures = []*gltf.Texture{
		{Source: gltf.Index(0), Sampler: gltf.Index(0)},
		{Source: gltf.Index(1)},
	}
	doc.Materials = []*gltf.Material{
		{
			Name: "rust",
			PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
				BaseColorFactor:          &[4]float32{0.5, 0.25, 0.125, 1},
				BaseColorTexture:         &gltf.TextureInfo{Index: 0},
				MetallicFactor:           gltf.Float(0.75),
				MetallicRoughnessTexture: &gltf.TextureInfo{Index: 1, TexCoord: 1},
			},
			NormalTexture: &gltf.NormalTexture{Index: gltf.Index(1), Scale: gltf.Float(0.5)},
			AlphaMode:     gltf.AlphaMask,
			AlphaCutoff:   gltf.Float(0.3),
			DoubleSided:   true,
		},
		{
			Name:       "flat",
			Extensions: gltf.Extensions{extUnlit: map[string]any{}},
		},
	}
	doc.Meshes[0].Primitives[0].Material = gltf.Index(0)
	doc.Meshes = append(doc.Meshes, &gltf.Mesh{Name: "flat", Primitives: []*gltf.Primitive{{
		Attributes: doc.Meshes[0].Primitives[0].Attributes,
		Material:   gltf.Index(1),
	}}})

	s, err := FromDocument(doc, nil)
	require.NoError(t, err)
	require.Len(t, s.Materials, 2)

	rust := s.Materials[0]
	assert.Equal(t, scene.ShadingPBR, rust.ShadingModel())
	assert.Equal(t, [4]float32{0.5, 0.25, 0.125, 1}, scene.GetOr(rust, scene.KeyBaseColorFactor, [4]float32{}))
	assert.Equal(t, float32(0.75), scene.GetOr(rust, scene.KeyMetallicFactor, 0))
	assert.Equal(t, float32(1), scene.GetOr(rust, scene.KeyRoughnessFactor, 0))
	assert.Equal(t, float32(0.5), scene.GetOr(rust, scene.KeyNormalScale, 0))
	assert.Equal(t, "MASK", scene.GetOr(rust, scene.KeyAlphaMode, ""))
	assert.Equal(t, float32(0.3), scene.GetOr(rust, scene.KeyAlphaCutoff, 0))
	assert.True(t, scene.GetOr(rust, scene.KeyDoubleSided, false))

	albedo := rust.Textures(scene.SlotBaseColor)
	require.Len(t, albedo, 1)
	assert.Equal(t, "textures/rusty metal.png", albedo[0].Path)
	assert.Equal(t, scene.Sampler{
		WrapU: scene.WrapClamp,
		WrapV: scene.WrapMirror,
		Mag:   scene.FilterNearest,
		Min:   scene.FilterLinear,
	}, albedo[0].Sampler)

	orm := rust.Textures(scene.SlotOcclusionMetallicRoughness)
	require.Len(t, orm, 1)
	assert.Equal(t, "*1", orm[0].Path)
	assert.Equal(t, 1, orm[0].UVIndex)
	assert.Equal(t, defaultSampler(), orm[0].Sampler)
	assert.Len(t, rust.Textures(scene.SlotNormal), 1)
	assert.Empty(t, rust.Textures(scene.SlotEmissive))

	assert.Equal(t, scene.ShadingUnlit, s.Materials[1].ShadingModel())
	assert.Equal(t, 1, s.Meshes[1].MaterialIndex)
}

func TestFromDocumentMissingMaterial(t *testing.T) {
	doc := triangleDocument()
	doc.Meshes[0].Primitives[0].Material = gltf.Index(4)

	_, err := FromDocument(doc, nil)
	assert.Error(t, err)
}

func TestOpenBinary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tri.glb")
	require.NoError(t, gltf.SaveBinary(triangleDocument(), path))

	s, err := Open(path, nil)
	require.NoError(t, err)
	require.Len(t, s.Meshes, 1)
	assert.Len(t, s.Meshes[0].Positions, 3)
	assert.Equal(t, [3]float32{1, 2, 3}, s.Root.Children[0].Transform.Translation())

	_, err = Open(filepath.Join(t.TempDir(), "missing.glb"), nil)
	assert.Error(t, err)
}

func TestLocalMatrix(t *testing.T) {
	half := float32(gomath.Sqrt2 / 2)

	tests := []struct {
		name  string
		node  *gltf.Node
		point [3]float32
		want  [3]float32
	}{
		{"zero node", &gltf.Node{}, [3]float32{1, 2, 3}, [3]float32{1, 2, 3}},
		{"translation", &gltf.Node{Translation: [3]float32{1, 0, 0}}, [3]float32{0, 0, 0}, [3]float32{1, 0, 0}},
		{"rotation about z", &gltf.Node{Rotation: [4]float32{0, 0, half, half}}, [3]float32{1, 0, 0}, [3]float32{0, 1, 0}},
		{"trs order", &gltf.Node{
			Translation: [3]float32{10, 0, 0},
			Rotation:    [4]float32{0, 0, half, half},
			Scale:       [3]float32{2, 2, 2},
		}, [3]float32{1, 0, 0}, [3]float32{10, 2, 0}},
		{"explicit matrix", &gltf.Node{
			Matrix: [16]float32{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 4, 5, 6, 1},
		}, [3]float32{0, 0, 0}, [3]float32{4, 5, 6}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := localMatrix(tt.node).TransformPoint(tt.point)
			assert.InDeltaSlice(t, tt.want[:], got[:], 1e-5)
		})
	}

	assert.Equal(t, math.Identity(), localMatrix(&gltf.Node{}))
	assert.Equal(t, math.Identity(), localMatrix(&gltf.Node{
		Matrix:   [16]float32(math.Identity()),
		Rotation: [4]float32{0, 0, 0, 1},
		Scale:    [3]float32{1, 1, 1},
	}))
}

func TestBuildFaces(t *testing.T) {
	tests := []struct {
		name  string
		mode  gltf.PrimitiveMode
		idx   []uint32
		faces []scene.Face
		prim  scene.PrimitiveType
	}{
		{"triangles", gltf.PrimitiveTriangles, []uint32{0, 1, 2, 2, 1, 3}, []scene.Face{{0, 1, 2}, {2, 1, 3}}, scene.PrimitiveTriangle},
		{"triangles with remainder", gltf.PrimitiveTriangles, []uint32{0, 1, 2, 3}, []scene.Face{{0, 1, 2}, {3}}, scene.PrimitiveTriangle},
		{"strip", gltf.PrimitiveTriangleStrip, []uint32{0, 1, 2, 3}, []scene.Face{{0, 1, 2}, {2, 1, 3}}, scene.PrimitiveTriangle},
		{"fan", gltf.PrimitiveTriangleFan, []uint32{0, 1, 2, 3}, []scene.Face{{0, 1, 2}, {0, 2, 3}}, scene.PrimitiveTriangle},
		{"lines", gltf.PrimitiveLines, []uint32{0, 1, 2, 3}, []scene.Face{{0, 1}, {2, 3}}, scene.PrimitiveLine},
		{"line loop", gltf.PrimitiveLineLoop, []uint32{0, 1, 2}, []scene.Face{{0, 1}, {1, 2}, {2, 0}}, scene.PrimitiveLine},
		{"points", gltf.PrimitivePoints, []uint32{4, 5}, []scene.Face{{4}, {5}}, scene.PrimitivePoint},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			faces, prim := buildFaces(tt.mode, tt.idx)
			assert.Equal(t, tt.faces, faces)
			assert.Equal(t, tt.prim, prim)
		})
	}
}

func TestGenerateTangentsWithoutUV(t *testing.T) {
	positions := [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}
	normals := [][3]float32{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}

	tangents, bitangents := generateTangents(positions, normals, nil, []scene.Face{{0, 1, 2}})

	for i := range positions {
		n := normals[i]
		tg, bt := tangents[i], bitangents[i]
		assert.InDelta(t, 0, n[0]*tg[0]+n[1]*tg[1]+n[2]*tg[2], 1e-6, "tangent %d not orthogonal", i)
		assert.InDelta(t, 0, n[0]*bt[0]+n[1]*bt[1]+n[2]*bt[2], 1e-6, "bitangent %d not orthogonal", i)
		assert.InDelta(t, 1, tg[0]*tg[0]+tg[1]*tg[1]+tg[2]*tg[2], 1e-5, "tangent %d not unit", i)
	}
}
