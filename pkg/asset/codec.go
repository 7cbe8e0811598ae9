package asset

import (
	"encoding/binary"
	"errors"
	"fmt"
	gomath "math"

	"github.com/Faultbox/modelconv/pkg/math"
)

// Binary decoding errors.
var (
	ErrSectionOutOfRange = errors.New("section extends past end of binary")
	ErrStrideMismatch    = errors.New("section stride does not match format")
	ErrPartialElement    = errors.New("section size is not a multiple of its stride")
)

// chunk is one section's encoded bytes. A package holds one chunk per
// canonical section, in canonical order, including empty ones.
type chunk struct {
	section Section
	data    []byte
}

// encodeSections serializes every section in canonical order.
func encodeSections(transforms []math.Mat4, b *Buffers) []chunk {
	chunks := make([]chunk, 0, len(Sections))
	for _, s := range Sections {
		chunks = append(chunks, chunk{section: s, data: encodeSection(s, transforms, b)})
	}
	return chunks
}

func encodeSection(s Section, transforms []math.Mat4, b *Buffers) []byte {
	switch s {
	case SectionTransforms:
		out := make([]byte, 0, len(transforms)*int(s.Stride()))
		for _, m := range transforms {
			out = appendFloats(out, m[:]...)
		}
		return out
	case SectionIndices:
		out := make([]byte, 0, len(b.Indices)*int(s.Stride()))
		for _, idx := range b.Indices {
			out = binary.LittleEndian.AppendUint32(out, idx)
		}
		return out
	case SectionPositions:
		return appendVec3s(nil, b.Positions)
	case SectionNormals:
		return appendVec3s(nil, b.Normals)
	case SectionTangents:
		return appendVec3s(nil, b.Tangents)
	case SectionBitangents:
		return appendVec3s(nil, b.Bitangents)
	case SectionTexCoords:
		out := make([]byte, 0, len(b.TexCoords)*int(s.Stride()))
		for _, v := range b.TexCoords {
			out = appendFloats(out, v[:]...)
		}
		return out
	case SectionColors:
		out := make([]byte, 0, len(b.Colors)*int(s.Stride()))
		for _, v := range b.Colors {
			out = appendFloats(out, v[:]...)
		}
		return out
	}
	return nil
}

func appendFloats(dst []byte, vals ...float32) []byte {
	for _, v := range vals {
		dst = binary.LittleEndian.AppendUint32(dst, gomath.Float32bits(v))
	}
	return dst
}

func appendVec3s(dst []byte, vals [][3]float32) []byte {
	if dst == nil {
		dst = make([]byte, 0, len(vals)*12)
	}
	for _, v := range vals {
		dst = appendFloats(dst, v[:]...)
	}
	return dst
}

// layout computes each section's offset by accumulating the sizes of the
// chunks before it.
func layout(chunks []chunk) BinaryInfo {
	var info BinaryInfo
	var offset int64
	for _, c := range chunks {
		size := int64(len(c.data))
		info[c.section] = SectionInfo{
			Size:   size,
			Stride: c.section.Stride(),
			Offset: offset,
		}
		offset += size
	}
	return info
}

// Decoded is the content of a binary file read back through its manifest.
type Decoded struct {
	Transforms []math.Mat4
	Buffers    Buffers
}

// Decode reads every section described by info out of data.
func Decode(info BinaryInfo, data []byte) (*Decoded, error) {
	sections := make(map[Section][]byte, len(Sections))
	for _, s := range Sections {
		si := info[s]
		if si.Size == 0 {
			continue
		}
		if si.Stride != s.Stride() {
			return nil, fmt.Errorf("%w: %s has stride %d, want %d", ErrStrideMismatch, s, si.Stride, s.Stride())
		}
		if si.Size%si.Stride != 0 {
			return nil, fmt.Errorf("%w: %s size %d stride %d", ErrPartialElement, s, si.Size, si.Stride)
		}
		if si.Offset < 0 || si.End() > int64(len(data)) {
			return nil, fmt.Errorf("%w: %s [%d, %d) of %d bytes", ErrSectionOutOfRange, s, si.Offset, si.End(), len(data))
		}
		sections[s] = data[si.Offset:si.End()]
	}

	d := &Decoded{}
	floats := func(raw []byte) []float32 {
		out := make([]float32, len(raw)/4)
		for i := range out {
			out[i] = gomath.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:]))
		}
		return out
	}

	f := floats(sections[SectionTransforms])
	for i := 0; i+16 <= len(f); i += 16 {
		var m math.Mat4
		copy(m[:], f[i:i+16])
		d.Transforms = append(d.Transforms, m)
	}

	raw := sections[SectionIndices]
	for i := 0; i+4 <= len(raw); i += 4 {
		d.Buffers.Indices = append(d.Buffers.Indices, binary.LittleEndian.Uint32(raw[i:]))
	}

	d.Buffers.Positions = vec3s(floats(sections[SectionPositions]))
	d.Buffers.Normals = vec3s(floats(sections[SectionNormals]))
	d.Buffers.Tangents = vec3s(floats(sections[SectionTangents]))
	d.Buffers.Bitangents = vec3s(floats(sections[SectionBitangents]))

	f = floats(sections[SectionTexCoords])
	for i := 0; i+2 <= len(f); i += 2 {
		d.Buffers.TexCoords = append(d.Buffers.TexCoords, [2]float32{f[i], f[i+1]})
	}
	f = floats(sections[SectionColors])
	for i := 0; i+4 <= len(f); i += 4 {
		d.Buffers.Colors = append(d.Buffers.Colors, [4]float32{f[i], f[i+1], f[i+2], f[i+3]})
	}

	return d, nil
}

func vec3s(f []float32) [][3]float32 {
	var out [][3]float32
	for i := 0; i+3 <= len(f); i += 3 {
		out = append(out, [3]float32{f[i], f[i+1], f[i+2]})
	}
	return out
}
