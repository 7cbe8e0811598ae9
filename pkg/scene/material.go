package scene

import "fmt"

// ShadingModel identifies the lighting model a material was authored for.
type ShadingModel int

const (
	ShadingUnknown ShadingModel = iota
	ShadingFlat
	ShadingGouraud
	ShadingPhong
	ShadingBlinn
	ShadingUnlit
	ShadingPBR // Metallic-roughness physically based
)

// String returns a human-readable shading model name.
func (s ShadingModel) String() string {
	switch s {
	case ShadingUnknown:
		return "Unknown"
	case ShadingFlat:
		return "Flat"
	case ShadingGouraud:
		return "Gouraud"
	case ShadingPhong:
		return "Phong"
	case ShadingBlinn:
		return "Blinn"
	case ShadingUnlit:
		return "Unlit"
	case ShadingPBR:
		return "PBR"
	default:
		return fmt.Sprintf("Unknown(%d)", int(s))
	}
}

// Key is a typed material property key. The type parameter fixes the value
// type stored under the key, so lookups never need a type switch.
type Key[T any] struct {
	name string
}

// Name returns the key name.
func (k Key[T]) Name() string {
	return k.name
}

// Material property keys.
var (
	KeyShadingModel      = Key[ShadingModel]{"shading_model"}
	KeyBaseColorFactor   = Key[[4]float32]{"base_color_factor"}
	KeyMetallicFactor    = Key[float32]{"metallic_factor"}
	KeyRoughnessFactor   = Key[float32]{"roughness_factor"}
	KeyOcclusionStrength = Key[float32]{"occlusion_strength"}
	KeyNormalScale       = Key[float32]{"normal_scale"}
	KeyEmissiveFactor    = Key[[3]float32]{"emissive_factor"}
	KeyDoubleSided       = Key[bool]{"double_sided"}
	KeyAlphaMode         = Key[string]{"alpha_mode"}
	KeyAlphaCutoff       = Key[float32]{"alpha_cutoff"}
)

// TextureSlot names the purpose a texture is bound for in a source material.
type TextureSlot int

const (
	SlotBaseColor TextureSlot = iota
	SlotOcclusionMetallicRoughness
	SlotNormal
	SlotEmissive
)

// String returns the slot name.
func (s TextureSlot) String() string {
	switch s {
	case SlotBaseColor:
		return "base_color"
	case SlotOcclusionMetallicRoughness:
		return "occlusion_metallic_roughness"
	case SlotNormal:
		return "normal"
	case SlotEmissive:
		return "emissive"
	default:
		return fmt.Sprintf("slot(%d)", int(s))
	}
}

// Mapping is the coordinate mapping used to sample a texture.
type Mapping int

const (
	MappingUV Mapping = iota
	MappingSphere
	MappingCylinder
	MappingBox
	MappingPlane
	MappingOther
)

// String returns the mapping name.
func (m Mapping) String() string {
	switch m {
	case MappingUV:
		return "uv"
	case MappingSphere:
		return "sphere"
	case MappingCylinder:
		return "cylinder"
	case MappingBox:
		return "box"
	case MappingPlane:
		return "plane"
	default:
		return "other"
	}
}

// TextureBinding is one texture bound to a material slot.
type TextureBinding struct {
	Path    string  // Source image path, or "*N" for embedded image N
	Mapping Mapping // Coordinate mapping
	UVIndex int     // UV channel used when Mapping is MappingUV
	Sampler Sampler // Sampling parameters
}

// Material is a property bag queried through typed keys plus texture
// bindings per slot.
type Material struct {
	Name     string
	props    map[string]any
	textures map[TextureSlot][]TextureBinding
}

// NewMaterial returns an empty material.
func NewMaterial(name string) *Material {
	return &Material{
		Name:     name,
		props:    make(map[string]any),
		textures: make(map[TextureSlot][]TextureBinding),
	}
}

// Set stores v under key k.
func Set[T any](m *Material, k Key[T], v T) {
	if m.props == nil {
		m.props = make(map[string]any)
	}
	m.props[k.name] = v
}

// Get returns the value stored under k and whether it was present.
func Get[T any](m *Material, k Key[T]) (T, bool) {
	v, ok := m.props[k.name]
	if !ok {
		var zero T
		return zero, false
	}
	t, ok := v.(T)
	return t, ok
}

// GetOr returns the value stored under k, or def when absent.
func GetOr[T any](m *Material, k Key[T], def T) T {
	if v, ok := Get(m, k); ok {
		return v
	}
	return def
}

// ShadingModel returns the material's shading model.
func (m *Material) ShadingModel() ShadingModel {
	return GetOr(m, KeyShadingModel, ShadingUnknown)
}

// Bind appends a texture binding to slot.
func (m *Material) Bind(slot TextureSlot, b TextureBinding) {
	if m.textures == nil {
		m.textures = make(map[TextureSlot][]TextureBinding)
	}
	m.textures[slot] = append(m.textures[slot], b)
}

// Textures returns the bindings of slot in bind order.
func (m *Material) Textures(slot TextureSlot) []TextureBinding {
	return m.textures[slot]
}

// TextureCount returns the number of bindings in slot.
func (m *Material) TextureCount(slot TextureSlot) int {
	return len(m.textures[slot])
}
