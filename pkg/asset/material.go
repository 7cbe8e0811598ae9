package asset

import (
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/modelconv/pkg/scene"
)

// TexturePurpose is the closed set of roles a packed texture can play.
type TexturePurpose string

const (
	TextureAlbedo                     TexturePurpose = "albedo"
	TextureNormal                     TexturePurpose = "normal"
	TextureEmissive                   TexturePurpose = "emissive"
	TextureOcclusionMetallicRoughness TexturePurpose = "occlusion_metallic_roughness"
)

// SRGB reports whether textures of this purpose hold color data.
func (p TexturePurpose) SRGB() bool {
	return p == TextureAlbedo || p == TextureEmissive
}

// Substitutes used when a slot has no usable texture. Their paths carry no
// extension so downstream tools can tell them apart from real image files.
const (
	DefaultWhiteTexture      = "default_white"
	DefaultBlackTexture      = "default_black"
	DefaultFlatNormalTexture = "default_flat_normal"
)

var defaultTexturePaths = map[TexturePurpose]string{
	TextureAlbedo:                     DefaultWhiteTexture,
	TextureNormal:                     DefaultFlatNormalTexture,
	TextureEmissive:                   DefaultBlackTexture,
	TextureOcclusionMetallicRoughness: DefaultWhiteTexture,
}

// DefaultSampler is used together with substitute textures.
var DefaultSampler = scene.Sampler{
	WrapU: scene.WrapRepeat,
	WrapV: scene.WrapRepeat,
	Mag:   scene.FilterLinear,
	Min:   scene.FilterLinearMipmapLinear,
}

// Channels of the combined occlusion/metallic/roughness texture.
const (
	ChannelOcclusion = 0 // R
	ChannelMetallic  = 1 // G
	ChannelRoughness = 2 // B
)

// DefaultMaterialName names the material that replaces rejected ones.
const DefaultMaterialName = "default"

// TextureDesc is one entry of the texture table.
type TextureDesc struct {
	Type TexturePurpose `json:"type"`
	Path string         `json:"path"`
}

// IsFile reports whether Path names an image file rather than a built-in
// substitute or an embedded image.
func (t TextureDesc) IsFile() bool {
	return strings.Contains(t.Path, ".") && !strings.HasPrefix(t.Path, "*")
}

// TextureRef points into the texture and sampler tables.
type TextureRef struct {
	Texture int `json:"texture"`
	Sampler int `json:"sampler"`
}

// ChannelRef is a TextureRef restricted to one color channel.
type ChannelRef struct {
	Texture int `json:"texture"`
	Sampler int `json:"sampler"`
	Channel int `json:"channel"`
}

// AlbedoParams describes the base color.
type AlbedoParams struct {
	Texture TextureRef `json:"texture"`
	Factor  [4]float32 `json:"factor"`
}

// ChannelParams describes a scalar read from one texture channel.
type ChannelParams struct {
	Texture ChannelRef `json:"texture"`
	Factor  float32    `json:"factor"`
}

// OcclusionParams describes ambient occlusion.
type OcclusionParams struct {
	Texture  ChannelRef `json:"texture"`
	Strength float32    `json:"strength"`
}

// NormalParams describes the normal map.
type NormalParams struct {
	Texture TextureRef `json:"texture"`
	Scale   float32    `json:"scale"`
}

// EmissiveParams describes emitted light.
type EmissiveParams struct {
	Texture TextureRef `json:"texture"`
	Factor  [3]float32 `json:"factor"`
}

// MaterialDesc is one entry of the material table.
type MaterialDesc struct {
	Name        string          `json:"name"`
	Albedo      AlbedoParams    `json:"albedo"`
	Metallic    ChannelParams   `json:"metallic"`
	Roughness   ChannelParams   `json:"roughness"`
	Occlusion   OcclusionParams `json:"occlusion"`
	Normal      NormalParams    `json:"normal"`
	Emissive    EmissiveParams  `json:"emissive"`
	DoubleSided bool            `json:"double_sided"`
	AlphaMode   string          `json:"alpha_mode"`
	AlphaCutoff float32         `json:"alpha_cutoff"`
}

// MaterialStats counts what the deduplicator rejected or substituted.
type MaterialStats struct {
	Converted int
	Rejected  int
	Fallbacks int
}

// MaterialSet holds the material, texture and sampler tables in first-seen
// order, plus the mapping from scene material indices to table indices.
type MaterialSet struct {
	Materials []MaterialDesc
	Textures  []TextureDesc
	Samplers  []scene.Sampler
	Stats     MaterialStats

	remap []int
}

// Remap returns the material table index for a scene material index, or -1
// when the index is out of range.
func (s *MaterialSet) Remap(source int) int {
	if source < 0 || source >= len(s.remap) {
		return -1
	}
	return s.remap[source]
}

const pendingDefault = -2

// BuildMaterials converts every physically based material and deduplicates
// the textures and samplers they reference. Non-PBR materials are rejected
// whole; scene meshes that used them are remapped to a single default
// material appended after all converted ones.
func BuildMaterials(materials []*scene.Material, log *zap.Logger) *MaterialSet {
	if log == nil {
		log = zap.NewNop()
	}

	s := &MaterialSet{remap: make([]int, len(materials))}
	for i, m := range materials {
		if m == nil || m.ShadingModel() != scene.ShadingPBR {
			shading := scene.ShadingUnknown
			name := ""
			if m != nil {
				shading, name = m.ShadingModel(), m.Name
			}
			log.Warn("rejecting material that is not physically based",
				zap.Int("material", i), zap.String("name", name), zap.Stringer("shading", shading))
			s.remap[i] = pendingDefault
			s.Stats.Rejected++
			continue
		}

		mlog := log.With(zap.Int("material", i), zap.String("name", m.Name))
		s.remap[i] = len(s.Materials)
		s.Materials = append(s.Materials, s.convert(m, mlog))
		s.Stats.Converted++
	}

	if s.Stats.Rejected > 0 {
		def := len(s.Materials)
		s.Materials = append(s.Materials, s.defaultMaterial())
		for i, r := range s.remap {
			if r == pendingDefault {
				s.remap[i] = def
			}
		}
	}
	return s
}

func (s *MaterialSet) convert(m *scene.Material, log *zap.Logger) MaterialDesc {
	albedo := s.resolveSlot(m, scene.SlotBaseColor, TextureAlbedo, log)
	omr := s.resolveSlot(m, scene.SlotOcclusionMetallicRoughness, TextureOcclusionMetallicRoughness, log)
	normal := s.resolveSlot(m, scene.SlotNormal, TextureNormal, log)
	emissive := s.resolveSlot(m, scene.SlotEmissive, TextureEmissive, log)

	return MaterialDesc{
		Name: m.Name,
		Albedo: AlbedoParams{
			Texture: albedo,
			Factor:  scene.GetOr(m, scene.KeyBaseColorFactor, [4]float32{1, 1, 1, 1}),
		},
		Metallic: ChannelParams{
			Texture: channel(omr, ChannelMetallic),
			Factor:  scene.GetOr(m, scene.KeyMetallicFactor, 1),
		},
		Roughness: ChannelParams{
			Texture: channel(omr, ChannelRoughness),
			Factor:  scene.GetOr(m, scene.KeyRoughnessFactor, 1),
		},
		Occlusion: OcclusionParams{
			Texture:  channel(omr, ChannelOcclusion),
			Strength: scene.GetOr(m, scene.KeyOcclusionStrength, 1),
		},
		Normal: NormalParams{
			Texture: normal,
			Scale:   scene.GetOr(m, scene.KeyNormalScale, 1),
		},
		Emissive: EmissiveParams{
			Texture: emissive,
			Factor:  scene.GetOr(m, scene.KeyEmissiveFactor, [3]float32{}),
		},
		DoubleSided: scene.GetOr(m, scene.KeyDoubleSided, false),
		AlphaMode:   scene.GetOr(m, scene.KeyAlphaMode, "OPAQUE"),
		AlphaCutoff: scene.GetOr(m, scene.KeyAlphaCutoff, 0.5),
	}
}

func (s *MaterialSet) defaultMaterial() MaterialDesc {
	omr := s.defaultRef(TextureOcclusionMetallicRoughness)
	return MaterialDesc{
		Name:        DefaultMaterialName,
		Albedo:      AlbedoParams{Texture: s.defaultRef(TextureAlbedo), Factor: [4]float32{1, 1, 1, 1}},
		Metallic:    ChannelParams{Texture: channel(omr, ChannelMetallic), Factor: 0},
		Roughness:   ChannelParams{Texture: channel(omr, ChannelRoughness), Factor: 1},
		Occlusion:   OcclusionParams{Texture: channel(omr, ChannelOcclusion), Strength: 1},
		Normal:      NormalParams{Texture: s.defaultRef(TextureNormal), Scale: 1},
		Emissive:    EmissiveParams{Texture: s.defaultRef(TextureEmissive)},
		AlphaMode:   "OPAQUE",
		AlphaCutoff: 0.5,
	}
}

// resolveSlot returns the texture for one slot, or the purpose's default
// when the slot is empty, bound more than once, or uses a mapping other
// than UV channel 0.
func (s *MaterialSet) resolveSlot(m *scene.Material, slot scene.TextureSlot, purpose TexturePurpose, log *zap.Logger) TextureRef {
	bindings := m.Textures(slot)
	switch {
	case len(bindings) == 0:
		log.Debug("no texture bound, using default", zap.Stringer("slot", slot))
	case len(bindings) > 1:
		log.Warn("multiple textures bound, using default",
			zap.Stringer("slot", slot), zap.Int("count", len(bindings)))
	case bindings[0].Mapping != scene.MappingUV || bindings[0].UVIndex != 0:
		log.Warn("unsupported texture mapping, using default",
			zap.Stringer("slot", slot), zap.Stringer("mapping", bindings[0].Mapping),
			zap.Int("uv_index", bindings[0].UVIndex), zap.String("path", bindings[0].Path))
	default:
		b := bindings[0]
		return TextureRef{
			Texture: s.textureIndex(TextureDesc{Type: purpose, Path: b.Path}),
			Sampler: s.samplerIndex(b.Sampler),
		}
	}

	s.Stats.Fallbacks++
	return s.defaultRef(purpose)
}

func (s *MaterialSet) defaultRef(purpose TexturePurpose) TextureRef {
	return TextureRef{
		Texture: s.textureIndex(TextureDesc{Type: purpose, Path: defaultTexturePaths[purpose]}),
		Sampler: s.samplerIndex(DefaultSampler),
	}
}

// textureIndex returns the index of desc, adding it on first sight.
func (s *MaterialSet) textureIndex(desc TextureDesc) int {
	for i, t := range s.Textures {
		if t == desc {
			return i
		}
	}
	s.Textures = append(s.Textures, desc)
	return len(s.Textures) - 1
}

// samplerIndex returns the index of the first matching sampler, adding
// sampler on first sight.
func (s *MaterialSet) samplerIndex(sampler scene.Sampler) int {
	for i, existing := range s.Samplers {
		if SamplersMatch(existing, sampler) {
			return i
		}
	}
	s.Samplers = append(s.Samplers, sampler)
	return len(s.Samplers) - 1
}

// SamplersMatch compares two samplers. An invalid wrap mode on either side
// matches any wrap mode on that axis; filters must be equal.
func SamplersMatch(a, b scene.Sampler) bool {
	return wrapMatches(a.WrapU, b.WrapU) &&
		wrapMatches(a.WrapV, b.WrapV) &&
		wrapMatches(a.WrapW, b.WrapW) &&
		a.Mag == b.Mag &&
		a.Min == b.Min
}

func wrapMatches(a, b scene.WrapMode) bool {
	return !a.Valid() || !b.Valid() || a == b
}

func channel(ref TextureRef, ch int) ChannelRef {
	return ChannelRef{Texture: ref.Texture, Sampler: ref.Sampler, Channel: ch}
}
