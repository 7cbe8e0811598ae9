package asset

import (
	"errors"
	"fmt"

	"github.com/Faultbox/modelconv/pkg/math"
	"github.com/Faultbox/modelconv/pkg/scene"
)

// NoTransform is the parent index handed to the root node. It never appears
// in resolved output.
const NoTransform = -1

// DefaultMaxDepth bounds the node recursion when no explicit limit is given.
const DefaultMaxDepth = 256

// ErrHierarchyTooDeep is returned when the node tree is deeper than allowed.
var ErrHierarchyTooDeep = errors.New("node hierarchy exceeds maximum depth")

// Transforms is the output of Resolve: the list of world matrices plus, for
// every mesh, the transform index of each node instance that draws it.
type Transforms struct {
	Matrices []math.Mat4
	perMesh  map[int][]int
}

// Len returns the number of unique world matrices.
func (t *Transforms) Len() int {
	return len(t.Matrices)
}

// ForMesh returns the transform indices of mesh in node visitation order.
// A mesh that no node references returns nil.
func (t *Transforms) ForMesh(mesh int) []int {
	return t.perMesh[mesh]
}

// Resolve walks the hierarchy depth-first, parent before child, and computes
// world matrices. The root always occupies slot 0. Any other node whose local
// transform is exactly identity reuses its parent's slot instead of
// allocating a new one. Equal matrices reached through different
// non-identity chains are kept as separate entries.
func Resolve(root *scene.Node, maxDepth int) (*Transforms, error) {
	if root == nil {
		return nil, scene.ErrNoRootNode
	}
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}

	t := &Transforms{perMesh: make(map[int][]int)}
	r := resolver{out: t, maxDepth: maxDepth}
	if err := r.visit(root, NoTransform, math.Identity(), 0); err != nil {
		return nil, err
	}
	return t, nil
}

type resolver struct {
	out      *Transforms
	maxDepth int
}

func (r *resolver) visit(n *scene.Node, parent int, parentWorld math.Mat4, depth int) error {
	if depth > r.maxDepth {
		return fmt.Errorf("%w: node %q at depth %d (limit %d)", ErrHierarchyTooDeep, n.Name, depth, r.maxDepth)
	}

	current, world := parent, parentWorld
	if parent == NoTransform || !n.Transform.IsIdentity() {
		world = parentWorld.Mul(n.Transform)
		current = len(r.out.Matrices)
		r.out.Matrices = append(r.out.Matrices, world)
	}

	for _, mesh := range n.Meshes {
		r.out.perMesh[mesh] = append(r.out.perMesh[mesh], current)
	}

	for _, child := range n.Children {
		if child == nil {
			continue
		}
		if err := r.visit(child, current, world, depth+1); err != nil {
			return err
		}
	}
	return nil
}
