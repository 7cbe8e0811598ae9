package asset

import (
	"go.uber.org/zap"

	"github.com/Faultbox/modelconv/pkg/scene"
)

// Buffers are the shared, globally contiguous geometry arrays.
// Indices are local to each mesh; DrawCall.VertexOffset is the base vertex.
type Buffers struct {
	Indices    []uint32
	Positions  [][3]float32
	Normals    [][3]float32
	Tangents   [][3]float32
	Bitangents [][3]float32
	TexCoords  [][2]float32 // Densely packed, see DrawCall.TexCoordOffset
	Colors     [][4]float32 // Densely packed, see DrawCall.ColorOffset
}

// VertexCount returns the number of vertices in the position buffer.
func (b *Buffers) VertexCount() int {
	return len(b.Positions)
}

// DrawCall describes where one mesh lives inside the shared buffers.
type DrawCall struct {
	SourceMesh     int    // Index into the scene mesh list
	Name           string // Source mesh name
	IndexOffset    int    // First element in Buffers.Indices
	IndexCount     int    // Number of indices, always a multiple of 3
	VertexOffset   int    // First element in the position/normal/tangent/bitangent buffers
	VertexCount    int    // Number of vertices
	HasTexCoords   bool   // Whether TexCoordOffset is meaningful
	TexCoordOffset int    // First element in Buffers.TexCoords
	HasColors      bool   // Whether ColorOffset is meaningful
	ColorOffset    int    // First element in Buffers.Colors
	SourceMaterial int    // Material index in the scene material list
}

// GatherStats counts what the gatherer skipped or repaired.
type GatherStats struct {
	MeshesPacked     int
	MeshesSkipped    int
	FacesSkipped     int
	MissingTexCoords int
	AttributeFixups  int
}

// Geometry is the output of Gather.
type Geometry struct {
	Buffers   Buffers
	DrawCalls []DrawCall
	Stats     GatherStats
}

// GatherOptions configures Gather.
type GatherOptions struct {
	VertexColors bool        // Pack color channel 0 into the colors section
	Logger       *zap.Logger // nil disables logging
}

// Gather appends every packable mesh, in source order, to one set of shared
// buffers and records a draw call per packed mesh. Nothing here is fatal:
// meshes without faces or with non-triangle topology are skipped, malformed
// faces are dropped individually, and the rest of the scene is still packed.
func Gather(meshes []*scene.Mesh, opts GatherOptions) *Geometry {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	g := &Geometry{}
	for i, m := range meshes {
		if m == nil {
			log.Warn("skipping nil mesh", zap.Int("mesh", i))
			g.Stats.MeshesSkipped++
			continue
		}
		mlog := log.With(zap.Int("mesh", i), zap.String("name", m.Name))

		if len(m.Faces) == 0 {
			mlog.Warn("skipping mesh without faces")
			g.Stats.MeshesSkipped++
			continue
		}
		if !m.IsTriangleOnly() {
			mlog.Warn("skipping mesh with unsupported primitive topology",
				zap.Stringer("primitives", m.PrimitiveTypes))
			g.Stats.MeshesSkipped++
			continue
		}
		if m.VertexCount() == 0 {
			mlog.Warn("skipping mesh without vertices")
			g.Stats.MeshesSkipped++
			continue
		}

		g.DrawCalls = append(g.DrawCalls, g.appendMesh(i, m, opts.VertexColors, mlog))
		g.Stats.MeshesPacked++
	}
	return g
}

func (g *Geometry) appendMesh(index int, m *scene.Mesh, colors bool, log *zap.Logger) DrawCall {
	b := &g.Buffers
	n := m.VertexCount()

	dc := DrawCall{
		SourceMesh:     index,
		Name:           m.Name,
		IndexOffset:    len(b.Indices),
		VertexOffset:   len(b.Positions),
		VertexCount:    n,
		SourceMaterial: m.MaterialIndex,
	}

	for fi, face := range m.Faces {
		if len(face) != 3 {
			log.Error("skipping malformed face", zap.Int("face", fi), zap.Int("indices", len(face)))
			g.Stats.FacesSkipped++
			continue
		}
		if int(face[0]) >= n || int(face[1]) >= n || int(face[2]) >= n {
			log.Error("skipping face with out-of-range index",
				zap.Int("face", fi), zap.Uint32s("indices", face), zap.Int("vertices", n))
			g.Stats.FacesSkipped++
			continue
		}
		b.Indices = append(b.Indices, face[0], face[1], face[2])
	}
	dc.IndexCount = len(b.Indices) - dc.IndexOffset

	b.Positions = append(b.Positions, m.Positions...)
	b.Normals = g.appendVec3(b.Normals, m.Normals, n, "normals", log)
	b.Tangents = g.appendVec3(b.Tangents, m.Tangents, n, "tangents", log)
	b.Bitangents = g.appendVec3(b.Bitangents, m.Bitangents, n, "bitangents", log)

	if m.HasTexCoords(0) {
		dc.HasTexCoords = true
		dc.TexCoordOffset = len(b.TexCoords)
		for _, uv := range m.TexCoords[0].Coords {
			b.TexCoords = append(b.TexCoords, [2]float32{uv[0], uv[1]})
		}
	} else {
		log.Error("mesh has no valid 2-component UV channel 0, texcoords left empty")
		g.Stats.MissingTexCoords++
	}

	if colors && m.HasColors() {
		dc.HasColors = true
		dc.ColorOffset = len(b.Colors)
		b.Colors = append(b.Colors, m.Colors...)
	}

	return dc
}

// appendVec3 appends exactly n elements so every vertex attribute buffer
// stays the same length as the position buffer.
func (g *Geometry) appendVec3(dst, src [][3]float32, n int, attr string, log *zap.Logger) [][3]float32 {
	if len(src) == n {
		return append(dst, src...)
	}

	log.Error("vertex attribute count mismatch",
		zap.String("attribute", attr), zap.Int("have", len(src)), zap.Int("want", n))
	g.Stats.AttributeFixups++

	if len(src) > n {
		return append(dst, src[:n]...)
	}
	dst = append(dst, src...)
	return append(dst, make([][3]float32, n-len(src))...)
}
