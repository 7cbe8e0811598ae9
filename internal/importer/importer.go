// Package importer reads glTF 2.0 files (.gltf and .glb) into the
// importer-neutral scene model consumed by the asset pipeline.
package importer

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
	"go.uber.org/zap"

	"github.com/Faultbox/modelconv/pkg/scene"
)

// ErrNodeCycle is returned when a node is its own ancestor.
var ErrNodeCycle = errors.New("node hierarchy contains a cycle")

// RootName is the name of the synthesized root node.
const RootName = "root"

// Open reads the glTF or GLB file at path.
func Open(path string, log *zap.Logger) (*scene.Scene, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %q", path)
	}
	return FromDocument(doc, log)
}

// FromDocument converts an already decoded glTF document.
func FromDocument(doc *gltf.Document, log *zap.Logger) (*scene.Scene, error) {
	if log == nil {
		log = zap.NewNop()
	}
	im := &importer{
		doc:      doc,
		log:      log,
		out:      &scene.Scene{},
		material: make(map[uint32]int),
		onStack:  make(map[uint32]bool),
	}
	if err := im.run(); err != nil {
		return nil, err
	}
	return im.out, nil
}

type importer struct {
	doc *gltf.Document
	log *zap.Logger
	out *scene.Scene

	meshes          [][]int         // glTF mesh -> scene mesh per primitive
	material        map[uint32]int  // glTF material -> scene material
	defaultMaterial *int            // lazily created for primitives without one
	onStack         map[uint32]bool // nodes on the current recursion path
}

func (im *importer) run() error {
	im.meshes = make([][]int, len(im.doc.Meshes))
	for i, m := range im.doc.Meshes {
		if m == nil {
			continue
		}
		for p, prim := range m.Primitives {
			if prim == nil {
				continue
			}
			mesh, err := im.convertPrimitive(meshName(m.Name, i, p, len(m.Primitives)), prim)
			if err != nil {
				return errors.Wrapf(err, "mesh %d primitive %d", i, p)
			}
			im.meshes[i] = append(im.meshes[i], len(im.out.Meshes))
			im.out.Meshes = append(im.out.Meshes, mesh)
		}
	}

	root := scene.NewNode(RootName)
	for _, idx := range im.rootNodes() {
		child, err := im.convertNode(idx)
		if err != nil {
			return err
		}
		root.AddChild(child)
	}
	im.out.Root = root

	im.log.Debug("document imported",
		zap.Int("nodes", im.out.NodeCount()),
		zap.Int("meshes", len(im.out.Meshes)),
		zap.Int("materials", len(im.out.Materials)))
	return nil
}

// rootNodes returns the top-level nodes of the default scene. Without any
// scene every node that is nobody's child is a root.
func (im *importer) rootNodes() []uint32 {
	if len(im.doc.Scenes) > 0 {
		idx := uint32(0)
		if im.doc.Scene != nil && int(*im.doc.Scene) < len(im.doc.Scenes) {
			idx = *im.doc.Scene
		}
		if s := im.doc.Scenes[idx]; s != nil {
			return s.Nodes
		}
		return nil
	}

	isChild := make([]bool, len(im.doc.Nodes))
	for _, n := range im.doc.Nodes {
		if n == nil {
			continue
		}
		for _, c := range n.Children {
			if int(c) < len(isChild) {
				isChild[c] = true
			}
		}
	}
	var roots []uint32
	for i, child := range isChild {
		if !child {
			roots = append(roots, uint32(i))
		}
	}
	return roots
}

func (im *importer) convertNode(idx uint32) (*scene.Node, error) {
	if int(idx) >= len(im.doc.Nodes) || im.doc.Nodes[idx] == nil {
		return nil, errors.Errorf("node %d does not exist", idx)
	}
	if im.onStack[idx] {
		return nil, errors.Wrapf(ErrNodeCycle, "node %d", idx)
	}
	im.onStack[idx] = true
	defer delete(im.onStack, idx)

	src := im.doc.Nodes[idx]
	n := &scene.Node{
		Name:      src.Name,
		Transform: localMatrix(src),
	}
	if src.Mesh != nil {
		if int(*src.Mesh) >= len(im.meshes) {
			return nil, errors.Errorf("node %d references mesh %d of %d", idx, *src.Mesh, len(im.meshes))
		}
		n.Meshes = append(n.Meshes, im.meshes[*src.Mesh]...)
	}
	if src.Skin != nil || len(src.Weights) > 0 {
		im.log.Debug("ignoring skin and morph weights", zap.Uint32("node", idx), zap.String("name", src.Name))
	}

	for _, c := range src.Children {
		child, err := im.convertNode(c)
		if err != nil {
			return nil, err
		}
		n.AddChild(child)
	}
	return n, nil
}

func meshName(name string, mesh, prim, prims int) string {
	if name == "" {
		name = fmt.Sprintf("mesh%d", mesh)
	}
	if prims > 1 {
		name = fmt.Sprintf("%s_%d", name, prim)
	}
	return name
}

// imagePath names an image by its URI, or "*N" for images stored inside the
// file (buffer views and data URIs).
func imagePath(doc *gltf.Document, idx uint32) string {
	if int(idx) >= len(doc.Images) || doc.Images[idx] == nil {
		return fmt.Sprintf("*%d", idx)
	}
	img := doc.Images[idx]
	if img.URI == "" || strings.HasPrefix(img.URI, "data:") {
		return fmt.Sprintf("*%d", idx)
	}
	if p, err := url.PathUnescape(img.URI); err == nil {
		return p
	}
	return img.URI
}
