package scene

import "fmt"

// PrimitiveType is a bit set of the primitive kinds present in a mesh.
type PrimitiveType uint32

const (
	PrimitivePoint    PrimitiveType = 1 << iota // Single-index faces
	PrimitiveLine                               // Two-index faces
	PrimitiveTriangle                           // Three-index faces
	PrimitivePolygon                            // Faces with more than three indices
)

// String returns a "|"-joined list of primitive names.
func (p PrimitiveType) String() string {
	if p == 0 {
		return "None"
	}
	names := []struct {
		bit  PrimitiveType
		name string
	}{
		{PrimitivePoint, "Point"},
		{PrimitiveLine, "Line"},
		{PrimitiveTriangle, "Triangle"},
		{PrimitivePolygon, "Polygon"},
	}
	out := ""
	rest := p
	for _, n := range names {
		if p&n.bit == 0 {
			continue
		}
		if out != "" {
			out += "|"
		}
		out += n.name
		rest &^= n.bit
	}
	if rest != 0 {
		if out != "" {
			out += "|"
		}
		out += fmt.Sprintf("Unknown(0x%x)", uint32(rest))
	}
	return out
}

// Face is a list of vertex indices local to its mesh.
type Face []uint32

// UVChannel holds one set of texture coordinates. Components tells how many
// of the three stored components are meaningful.
type UVChannel struct {
	Components int
	Coords     [][3]float32
}

// Mesh is a single-material geometry block.
type Mesh struct {
	Name           string
	PrimitiveTypes PrimitiveType
	Faces          []Face

	Positions  [][3]float32
	Normals    [][3]float32
	Tangents   [][3]float32
	Bitangents [][3]float32
	TexCoords  []UVChannel  // Indexed by UV channel
	Colors     [][4]float32 // Vertex color channel 0, optional

	MaterialIndex int // Index into Scene.Materials
}

// VertexCount returns the number of vertices, defined by the position array.
func (m *Mesh) VertexCount() int {
	return len(m.Positions)
}

// IsTriangleOnly reports whether the mesh contains triangles and nothing else.
func (m *Mesh) IsTriangleOnly() bool {
	return m.PrimitiveTypes == PrimitiveTriangle
}

// HasTexCoords reports whether channel ch is a 2-component channel with one
// coordinate per vertex.
func (m *Mesh) HasTexCoords(ch int) bool {
	if ch < 0 || ch >= len(m.TexCoords) {
		return false
	}
	uv := m.TexCoords[ch]
	return uv.Components == 2 && len(uv.Coords) == m.VertexCount()
}

// HasColors reports whether the mesh has one color per vertex.
func (m *Mesh) HasColors() bool {
	return len(m.Colors) > 0 && len(m.Colors) == m.VertexCount()
}
