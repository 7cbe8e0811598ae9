// Package dump prints scenes and manifests for debugging.
package dump

import (
	"io"

	"github.com/davecgh/go-spew/spew"

	"github.com/Faultbox/modelconv/pkg/asset"
	"github.com/Faultbox/modelconv/pkg/scene"
)

var spewConfig *spew.ConfigState

func init() {
	spewConfig = spew.NewDefaultConfig()
	spewConfig.DisableCapacities = true
	spewConfig.DisablePointerAddresses = true
	spewConfig.SortKeys = true
}

// NodeSummary is one node of a scene without its geometry.
type NodeSummary struct {
	Name      string
	Transform [16]float32
	Meshes    []int
	Children  []NodeSummary
}

// MeshSummary describes a mesh by counts instead of vertex data.
type MeshSummary struct {
	Name       string
	Primitives string
	Vertices   int
	Faces      int
	UVChannels int
	HasColors  bool
	Material   int
}

// MaterialSummary lists a material's shading model and texture paths.
type MaterialSummary struct {
	Name     string
	Shading  string
	Textures map[string][]string
}

// SceneSummary is the printable form of a scene.
type SceneSummary struct {
	Flags     scene.Flags
	Root      *NodeSummary
	Meshes    []MeshSummary
	Materials []MaterialSummary
}

var slots = []scene.TextureSlot{
	scene.SlotBaseColor,
	scene.SlotOcclusionMetallicRoughness,
	scene.SlotNormal,
	scene.SlotEmissive,
}

// Summarize builds the printable form of s.
func Summarize(s *scene.Scene) *SceneSummary {
	if s == nil {
		return nil
	}
	out := &SceneSummary{Flags: s.Flags}
	if s.Root != nil {
		root := summarizeNode(s.Root)
		out.Root = &root
	}
	for _, m := range s.Meshes {
		if m == nil {
			out.Meshes = append(out.Meshes, MeshSummary{Name: "<nil>", Material: -1})
			continue
		}
		out.Meshes = append(out.Meshes, MeshSummary{
			Name:       m.Name,
			Primitives: m.PrimitiveTypes.String(),
			Vertices:   m.VertexCount(),
			Faces:      len(m.Faces),
			UVChannels: len(m.TexCoords),
			HasColors:  m.HasColors(),
			Material:   m.MaterialIndex,
		})
	}
	for _, m := range s.Materials {
		if m == nil {
			out.Materials = append(out.Materials, MaterialSummary{Name: "<nil>"})
			continue
		}
		ms := MaterialSummary{Name: m.Name, Shading: m.ShadingModel().String(), Textures: map[string][]string{}}
		for _, slot := range slots {
			for _, b := range m.Textures(slot) {
				ms.Textures[slot.String()] = append(ms.Textures[slot.String()], b.Path)
			}
		}
		out.Materials = append(out.Materials, ms)
	}
	return out
}

func summarizeNode(n *scene.Node) NodeSummary {
	ns := NodeSummary{Name: n.Name, Transform: n.Transform, Meshes: n.Meshes}
	for _, c := range n.Children {
		if c != nil {
			ns.Children = append(ns.Children, summarizeNode(c))
		}
	}
	return ns
}

// Scene writes a summary of s to w.
func Scene(w io.Writer, s *scene.Scene) {
	spewConfig.Fdump(w, Summarize(s))
}

// Manifest writes m to w.
func Manifest(w io.Writer, m *asset.Manifest) {
	spewConfig.Fdump(w, m)
}

// Sdump returns the dump of a as a string.
func Sdump(a ...interface{}) string {
	return spewConfig.Sdump(a...)
}
