package asset

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Section identifies one contiguous region of the binary file.
type Section int

const (
	SectionTransforms Section = iota
	SectionIndices
	SectionPositions
	SectionNormals
	SectionTangents
	SectionBitangents
	SectionTexCoords
	SectionColors

	sectionCount
)

// Sections is the canonical order of the binary file. The binary writer,
// the manifest offsets and the decoder all walk this list.
var Sections = [sectionCount]Section{
	SectionTransforms,
	SectionIndices,
	SectionPositions,
	SectionNormals,
	SectionTangents,
	SectionBitangents,
	SectionTexCoords,
	SectionColors,
}

var sectionNames = [sectionCount]string{
	SectionTransforms: "transforms",
	SectionIndices:    "indices",
	SectionPositions:  "positions",
	SectionNormals:    "normals",
	SectionTangents:   "tangents",
	SectionBitangents: "bitangents",
	SectionTexCoords:  "texcoords",
	SectionColors:     "colors",
}

// Element sizes in bytes.
var sectionStrides = [sectionCount]int64{
	SectionTransforms: 16 * 4, // Column-major float32 4x4
	SectionIndices:    4,      // uint32
	SectionPositions:  3 * 4,
	SectionNormals:    3 * 4,
	SectionTangents:   3 * 4,
	SectionBitangents: 3 * 4,
	SectionTexCoords:  2 * 4,
	SectionColors:     4 * 4,
}

// String returns the manifest key of the section.
func (s Section) String() string {
	if s >= 0 && s < sectionCount {
		return sectionNames[s]
	}
	return fmt.Sprintf("section(%d)", int(s))
}

// Stride returns the element size of the section in bytes.
func (s Section) Stride() int64 {
	if s >= 0 && s < sectionCount {
		return sectionStrides[s]
	}
	return 0
}

// SectionInfo locates a section inside the binary file.
type SectionInfo struct {
	Size   int64 `json:"size_in_bytes"`
	Stride int64 `json:"stride_in_bytes"`
	Offset int64 `json:"offset_in_bytes"`
}

// Count returns the number of elements in the section.
func (i SectionInfo) Count() int64 {
	if i.Stride == 0 {
		return 0
	}
	return i.Size / i.Stride
}

// End returns the offset one past the last byte of the section.
func (i SectionInfo) End() int64 {
	return i.Offset + i.Size
}

// ErrMissingSection is returned when a manifest lacks a section key.
var ErrMissingSection = errors.New("manifest is missing binary section")

// BinaryInfo holds the location of every section. It marshals to a JSON
// object whose keys appear in canonical order; all keys are always present.
type BinaryInfo [sectionCount]SectionInfo

// Get returns the info of section s.
func (b *BinaryInfo) Get(s Section) SectionInfo {
	return b[s]
}

// TotalSize returns the sum of all section sizes.
func (b *BinaryInfo) TotalSize() int64 {
	var total int64
	for _, s := range Sections {
		total += b[s].Size
	}
	return total
}

// MarshalJSON implements json.Marshaler.
func (b BinaryInfo) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, s := range Sections {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(s.String())
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(b[s])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (b *BinaryInfo) UnmarshalJSON(data []byte) error {
	var raw map[string]SectionInfo
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for _, s := range Sections {
		info, ok := raw[s.String()]
		if !ok {
			return fmt.Errorf("%w: %s", ErrMissingSection, s)
		}
		b[s] = info
	}
	return nil
}
