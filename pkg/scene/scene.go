// Package scene defines the in-memory scene graph handed to the asset packer.
//
// A Scene is produced by an importer and treated as read-only afterwards:
// the packer never mutates nodes, meshes or materials.
package scene

import (
	"errors"
	"fmt"

	"github.com/Faultbox/modelconv/pkg/math"
)

// Scene validation errors. All of them are fatal for the asset being converted.
var (
	ErrNilScene           = errors.New("scene is nil")
	ErrSceneIncomplete    = errors.New("scene is marked incomplete")
	ErrNoRootNode         = errors.New("scene has no root node")
	ErrNoMeshes           = errors.New("scene has no meshes")
	ErrInvalidMeshRef     = errors.New("node references missing mesh")
	ErrInvalidMaterialRef = errors.New("mesh references missing material")
)

// Flags describe importer-level state of a scene.
type Flags uint32

const (
	// FlagIncomplete is set when the importer could not produce a full scene.
	FlagIncomplete Flags = 1 << iota
	// FlagGeneratedNormals is set when the importer synthesized normals.
	FlagGeneratedNormals
	// FlagGeneratedTangents is set when the importer synthesized tangents.
	FlagGeneratedTangents
)

// Has reports whether all bits of f are set.
func (s Flags) Has(f Flags) bool {
	return s&f == f
}

// Node is one element of the scene hierarchy.
type Node struct {
	Name      string    // Node name (informational)
	Transform math.Mat4 // Local transform relative to the parent
	Meshes    []int     // Indices into Scene.Meshes
	Children  []*Node   // Child nodes, visited in order
}

// NewNode returns a node with an identity transform.
func NewNode(name string) *Node {
	return &Node{Name: name, Transform: math.Identity()}
}

// AddChild appends child and returns it.
func (n *Node) AddChild(child *Node) *Node {
	n.Children = append(n.Children, child)
	return child
}

// Scene is an imported model: a node tree plus the meshes and materials it references.
type Scene struct {
	Root      *Node
	Meshes    []*Mesh
	Materials []*Material
	Flags     Flags
}

// NodeCount returns the number of nodes reachable from the root.
func (s *Scene) NodeCount() int {
	if s == nil || s.Root == nil {
		return 0
	}
	count := 0
	stack := []*Node{s.Root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		count++
		stack = append(stack, n.Children...)
	}
	return count
}

// Validate performs the scene-level checks that decide whether a conversion
// may start at all. Element-level problems (bad faces, unsupported materials)
// are not reported here; the packer skips those individually.
func Validate(s *Scene) error {
	if s == nil {
		return ErrNilScene
	}
	if s.Flags.Has(FlagIncomplete) {
		return ErrSceneIncomplete
	}
	if s.Root == nil {
		return ErrNoRootNode
	}
	if len(s.Meshes) == 0 {
		return ErrNoMeshes
	}

	for i, m := range s.Meshes {
		if m == nil {
			return fmt.Errorf("%w: mesh %d is nil", ErrNoMeshes, i)
		}
		if m.MaterialIndex < 0 || m.MaterialIndex >= len(s.Materials) {
			return fmt.Errorf("%w: mesh %d (%q) uses material %d of %d",
				ErrInvalidMaterialRef, i, m.Name, m.MaterialIndex, len(s.Materials))
		}
	}

	stack := []*Node{s.Root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, ref := range n.Meshes {
			if ref < 0 || ref >= len(s.Meshes) {
				return fmt.Errorf("%w: node %q references mesh %d of %d",
					ErrInvalidMeshRef, n.Name, ref, len(s.Meshes))
			}
		}
		stack = append(stack, n.Children...)
	}

	return nil
}
