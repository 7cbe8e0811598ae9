// Package asset flattens a scene into a single binary buffer plus a JSON
// manifest describing where each mesh, transform and material lives.
package asset

import (
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/Faultbox/modelconv/pkg/scene"
)

// Options configures Build.
type Options struct {
	VertexColors bool        // Pack vertex color channel 0
	MaxDepth     int         // Node hierarchy depth limit, 0 means DefaultMaxDepth
	Logger       *zap.Logger // nil disables logging
}

// Stats aggregates what every stage skipped or substituted.
type Stats struct {
	Transforms int
	Geometry   GatherStats
	Materials  MaterialStats
}

// Package is a fully laid out asset, ready to be written.
type Package struct {
	Manifest Manifest
	Stats    Stats

	chunks []chunk
}

// Build runs the whole pipeline on s: validation, transform resolution,
// geometry gathering, material deduplication and packing. An error means
// nothing usable was produced.
func Build(s *scene.Scene, opts Options) (*Package, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	if err := scene.Validate(s); err != nil {
		return nil, err
	}

	t, err := Resolve(s.Root, opts.MaxDepth)
	if err != nil {
		return nil, fmt.Errorf("resolving transforms: %w", err)
	}
	log.Debug("transforms resolved", zap.Int("nodes", s.NodeCount()), zap.Int("transforms", t.Len()))

	g := Gather(s.Meshes, GatherOptions{
		VertexColors: opts.VertexColors,
		Logger:       log.Named("geometry"),
	})
	m := BuildMaterials(s.Materials, log.Named("material"))

	p := Pack(t, g, m)
	log.Debug("package laid out",
		zap.Int("meshes", len(p.Manifest.Meshes)),
		zap.Int64("bytes", p.Size()))
	return p, nil
}

// Pack lays out the binary from the three stage outputs. Section offsets in
// the manifest are computed from the same chunk list WriteTo emits.
func Pack(t *Transforms, g *Geometry, m *MaterialSet) *Package {
	p := &Package{
		chunks: encodeSections(t.Matrices, &g.Buffers),
		Stats: Stats{
			Transforms: t.Len(),
			Geometry:   g.Stats,
			Materials:  m.Stats,
		},
	}

	p.Manifest.BinaryInfo = layout(p.chunks)
	p.Manifest.Meshes = make([]MeshInfo, 0, len(g.DrawCalls))
	for _, dc := range g.DrawCalls {
		transforms := append(make([]int, 0, len(t.ForMesh(dc.SourceMesh))), t.ForMesh(dc.SourceMesh)...)
		p.Manifest.Meshes = append(p.Manifest.Meshes, MeshInfo{
			Name:                 dc.Name,
			Transforms:           transforms,
			IndexBufferOffset:    dc.IndexOffset,
			IndexBufferLen:       dc.IndexCount,
			VertexBufferOffset:   dc.VertexOffset,
			VertexNum:            dc.VertexCount,
			HasTexCoords:         dc.HasTexCoords,
			TexCoordBufferOffset: dc.TexCoordOffset,
			HasColors:            dc.HasColors,
			ColorBufferOffset:    dc.ColorOffset,
			Material:             m.Remap(dc.SourceMaterial),
		})
	}

	p.Manifest.MaterialSettings = MaterialSettings{
		Materials: nonNil(m.Materials),
		Textures:  nonNil(m.Textures),
		Samplers:  nonNil(m.Samplers),
	}
	return p
}

// Size returns the binary length in bytes.
func (p *Package) Size() int64 {
	var n int64
	for _, c := range p.chunks {
		n += int64(len(c.data))
	}
	return n
}

// WriteTo writes the binary sections to w in canonical order.
func (p *Package) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for _, c := range p.chunks {
		n, err := w.Write(c.data)
		total += int64(n)
		if err != nil {
			return total, fmt.Errorf("writing %s section: %w", c.section, err)
		}
	}
	return total, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
