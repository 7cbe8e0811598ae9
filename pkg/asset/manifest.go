package asset

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/Faultbox/modelconv/pkg/scene"
)

// Manifest validation errors.
var (
	ErrSizeMismatch   = errors.New("binary size does not match manifest")
	ErrBadLayout      = errors.New("section layout is not contiguous")
	ErrMeshOutOfRange = errors.New("mesh range exceeds buffer")
	ErrBadReference   = errors.New("reference out of table range")
)

// MeshInfo is the draw-call record of one packed mesh.
type MeshInfo struct {
	Name                 string `json:"name"`
	Transforms           []int  `json:"transforms"`
	IndexBufferOffset    int    `json:"index_buffer_offset"`
	IndexBufferLen       int    `json:"index_buffer_len"`
	VertexBufferOffset   int    `json:"vertex_buffer_offset"`
	VertexNum            int    `json:"vertex_num"`
	HasTexCoords         bool   `json:"has_texcoords"`
	TexCoordBufferOffset int    `json:"texcoord_buffer_offset"`
	HasColors            bool   `json:"has_colors"`
	ColorBufferOffset    int    `json:"color_buffer_offset"`
	Material             int    `json:"material"`
}

// MaterialSettings holds the three deduplicated tables.
type MaterialSettings struct {
	Materials []MaterialDesc  `json:"materials"`
	Textures  []TextureDesc   `json:"textures"`
	Samplers  []scene.Sampler `json:"samplers"`
}

// Manifest is the JSON side-file describing the binary.
type Manifest struct {
	Meshes           []MeshInfo       `json:"meshes"`
	BinaryInfo       BinaryInfo       `json:"binary_info"`
	BinaryFilename   string           `json:"binary_filename"`
	MaterialSettings MaterialSettings `json:"material_settings"`
	OutputDirectory  string           `json:"output_directory"`
}

// ReadManifest decodes a manifest.
func ReadManifest(r io.Reader) (*Manifest, error) {
	var m Manifest
	if err := json.NewDecoder(r).Decode(&m); err != nil {
		return nil, fmt.Errorf("decoding manifest: %w", err)
	}
	return &m, nil
}

// WriteManifest encodes m to w, indented with two spaces when indent is set.
func WriteManifest(w io.Writer, m *Manifest, indent bool) error {
	enc := json.NewEncoder(w)
	if indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(m)
}

// Validate checks the manifest against a binary of binarySize bytes:
// contiguous canonical layout, total size, mesh ranges and table
// references. All problems found are returned together.
func (m *Manifest) Validate(binarySize int64) error {
	var errs []error
	info := &m.BinaryInfo

	var offset int64
	for _, s := range Sections {
		si := info.Get(s)
		if si.Offset != offset {
			errs = append(errs, fmt.Errorf("%w: %s at offset %d, want %d", ErrBadLayout, s, si.Offset, offset))
		}
		if si.Stride != s.Stride() {
			errs = append(errs, fmt.Errorf("%w: %s stride %d, want %d", ErrStrideMismatch, s, si.Stride, s.Stride()))
		} else if si.Size%si.Stride != 0 {
			errs = append(errs, fmt.Errorf("%w: %s size %d", ErrPartialElement, s, si.Size))
		}
		offset += si.Size
	}
	if total := info.TotalSize(); total != binarySize {
		errs = append(errs, fmt.Errorf("%w: sections sum to %d bytes, binary has %d", ErrSizeMismatch, total, binarySize))
	}

	indices := info.Get(SectionIndices).Count()
	transforms := info.Get(SectionTransforms).Count()
	texcoords := info.Get(SectionTexCoords).Count()
	colors := info.Get(SectionColors).Count()
	vertexSections := []Section{SectionPositions, SectionNormals, SectionTangents, SectionBitangents}

	for i, mesh := range m.Meshes {
		if mesh.IndexBufferLen%3 != 0 {
			errs = append(errs, fmt.Errorf("%w: mesh %d index length %d is not a multiple of 3", ErrMeshOutOfRange, i, mesh.IndexBufferLen))
		}
		if int64(mesh.IndexBufferOffset+mesh.IndexBufferLen) > indices {
			errs = append(errs, fmt.Errorf("%w: mesh %d indices [%d, +%d) of %d", ErrMeshOutOfRange, i, mesh.IndexBufferOffset, mesh.IndexBufferLen, indices))
		}
		end := int64(mesh.VertexBufferOffset + mesh.VertexNum)
		for _, s := range vertexSections {
			if end > info.Get(s).Count() {
				errs = append(errs, fmt.Errorf("%w: mesh %d vertices end at %d, %s has %d", ErrMeshOutOfRange, i, end, s, info.Get(s).Count()))
			}
		}
		if mesh.HasTexCoords && int64(mesh.TexCoordBufferOffset+mesh.VertexNum) > texcoords {
			errs = append(errs, fmt.Errorf("%w: mesh %d texcoords end at %d of %d", ErrMeshOutOfRange, i, mesh.TexCoordBufferOffset+mesh.VertexNum, texcoords))
		}
		if mesh.HasColors && int64(mesh.ColorBufferOffset+mesh.VertexNum) > colors {
			errs = append(errs, fmt.Errorf("%w: mesh %d colors end at %d of %d", ErrMeshOutOfRange, i, mesh.ColorBufferOffset+mesh.VertexNum, colors))
		}
		for _, t := range mesh.Transforms {
			if t < 0 || int64(t) >= transforms {
				errs = append(errs, fmt.Errorf("%w: mesh %d transform %d of %d", ErrBadReference, i, t, transforms))
			}
		}
		if mesh.Material < 0 || mesh.Material >= len(m.MaterialSettings.Materials) {
			errs = append(errs, fmt.Errorf("%w: mesh %d material %d of %d", ErrBadReference, i, mesh.Material, len(m.MaterialSettings.Materials)))
		}
	}

	ms := &m.MaterialSettings
	checkRef := func(mat int, slot string, tex, smp int) {
		if tex < 0 || tex >= len(ms.Textures) || smp < 0 || smp >= len(ms.Samplers) {
			errs = append(errs, fmt.Errorf("%w: material %d %s texture %d sampler %d", ErrBadReference, mat, slot, tex, smp))
		}
	}
	for i, mat := range ms.Materials {
		checkRef(i, "albedo", mat.Albedo.Texture.Texture, mat.Albedo.Texture.Sampler)
		checkRef(i, "metallic", mat.Metallic.Texture.Texture, mat.Metallic.Texture.Sampler)
		checkRef(i, "roughness", mat.Roughness.Texture.Texture, mat.Roughness.Texture.Sampler)
		checkRef(i, "occlusion", mat.Occlusion.Texture.Texture, mat.Occlusion.Texture.Sampler)
		checkRef(i, "normal", mat.Normal.Texture.Texture, mat.Normal.Texture.Sampler)
		checkRef(i, "emissive", mat.Emissive.Texture.Texture, mat.Emissive.Texture.Sampler)
	}

	return errors.Join(errs...)
}
