package asset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/modelconv/pkg/scene"
)

func TestBuildMaterialsDeduplicates(t *testing.T) {
	first := pbrMaterial("first")
	first.Bind(scene.SlotBaseColor, uvBinding("rock.png"))

	second := pbrMaterial("second")
	second.Bind(scene.SlotBaseColor, uvBinding("rock.png"))
	second.Bind(scene.SlotNormal, uvBinding("rock_n.png"))
	second.Bind(scene.SlotEmissive, uvBinding("rock.png"))

	set := BuildMaterials([]*scene.Material{first, second}, nil)

	want := []TextureDesc{
		{Type: TextureAlbedo, Path: "rock.png"},
		{Type: TextureOcclusionMetallicRoughness, Path: DefaultWhiteTexture},
		{Type: TextureNormal, Path: DefaultFlatNormalTexture},
		{Type: TextureEmissive, Path: DefaultBlackTexture},
		{Type: TextureNormal, Path: "rock_n.png"},
		{Type: TextureEmissive, Path: "rock.png"},
	}
	assert.Equal(t, want, set.Textures)
	require.Len(t, set.Samplers, 1)
	assert.Equal(t, DefaultSampler, set.Samplers[0])

	require.Len(t, set.Materials, 2)
	assert.Equal(t, 0, set.Materials[0].Albedo.Texture.Texture)
	assert.Equal(t, 0, set.Materials[1].Albedo.Texture.Texture)
	assert.Equal(t, 4, set.Materials[1].Normal.Texture.Texture)
	assert.Equal(t, 5, set.Materials[1].Emissive.Texture.Texture)
	assert.Equal(t, 0, set.Remap(0))
	assert.Equal(t, 1, set.Remap(1))
	assert.Equal(t, MaterialStats{Converted: 2, Fallbacks: 4}, set.Stats)
}

func TestBuildMaterialsParameters(t *testing.T) {
	m := pbrMaterial("glass")
	scene.Set(m, scene.KeyBaseColorFactor, [4]float32{0.5, 0.5, 1, 0.25})
	scene.Set(m, scene.KeyRoughnessFactor, 0.1)
	scene.Set(m, scene.KeyAlphaMode, "BLEND")
	scene.Set(m, scene.KeyDoubleSided, true)
	m.Bind(scene.SlotOcclusionMetallicRoughness, uvBinding("orm.png"))

	set := BuildMaterials([]*scene.Material{m}, nil)
	require.Len(t, set.Materials, 1)
	got := set.Materials[0]

	assert.Equal(t, "glass", got.Name)
	assert.Equal(t, [4]float32{0.5, 0.5, 1, 0.25}, got.Albedo.Factor)
	assert.Equal(t, float32(1), got.Metallic.Factor)
	assert.Equal(t, float32(0.1), got.Roughness.Factor)
	assert.Equal(t, float32(1), got.Occlusion.Strength)
	assert.Equal(t, float32(1), got.Normal.Scale)
	assert.Equal(t, [3]float32{}, got.Emissive.Factor)
	assert.Equal(t, "BLEND", got.AlphaMode)
	assert.Equal(t, float32(0.5), got.AlphaCutoff)
	assert.True(t, got.DoubleSided)

	orm := set.Textures[got.Metallic.Texture.Texture]
	assert.Equal(t, TextureDesc{Type: TextureOcclusionMetallicRoughness, Path: "orm.png"}, orm)
	assert.Equal(t, got.Metallic.Texture.Texture, got.Roughness.Texture.Texture)
	assert.Equal(t, got.Metallic.Texture.Texture, got.Occlusion.Texture.Texture)
	assert.Equal(t, ChannelOcclusion, got.Occlusion.Texture.Channel)
	assert.Equal(t, ChannelMetallic, got.Metallic.Texture.Channel)
	assert.Equal(t, ChannelRoughness, got.Roughness.Texture.Channel)
}

func TestBuildMaterialsFallbacks(t *testing.T) {
	tests := []struct {
		name string
		bind func(m *scene.Material)
	}{
		{"two albedo textures", func(m *scene.Material) {
			m.Bind(scene.SlotBaseColor, uvBinding("a.png"))
			m.Bind(scene.SlotBaseColor, uvBinding("b.png"))
		}},
		{"spherical mapping", func(m *scene.Material) {
			b := uvBinding("a.png")
			b.Mapping = scene.MappingSphere
			m.Bind(scene.SlotBaseColor, b)
		}},
		{"second uv channel", func(m *scene.Material) {
			b := uvBinding("a.png")
			b.UVIndex = 1
			m.Bind(scene.SlotBaseColor, b)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := pbrMaterial("m")
			tt.bind(m)

			set := BuildMaterials([]*scene.Material{m}, nil)

			ref := set.Materials[0].Albedo.Texture
			assert.Equal(t, TextureDesc{Type: TextureAlbedo, Path: DefaultWhiteTexture}, set.Textures[ref.Texture])
			assert.Equal(t, DefaultSampler, set.Samplers[ref.Sampler])
			for _, tex := range set.Textures {
				assert.False(t, tex.IsFile(), "unexpected texture %q", tex.Path)
			}
		})
	}
}

func TestBuildMaterialsRejectsNonPBR(t *testing.T) {
	phong := scene.NewMaterial("phong")
	scene.Set(phong, scene.KeyShadingModel, scene.ShadingPhong)
	unlit := scene.NewMaterial("unlit")
	scene.Set(unlit, scene.KeyShadingModel, scene.ShadingUnlit)

	set := BuildMaterials([]*scene.Material{phong, pbrMaterial("metal"), unlit, nil}, nil)

	require.Len(t, set.Materials, 2)
	assert.Equal(t, "metal", set.Materials[0].Name)
	assert.Equal(t, DefaultMaterialName, set.Materials[1].Name)

	assert.Equal(t, 1, set.Remap(0))
	assert.Equal(t, 0, set.Remap(1))
	assert.Equal(t, 1, set.Remap(2))
	assert.Equal(t, 1, set.Remap(3))
	assert.Equal(t, -1, set.Remap(4))
	assert.Equal(t, -1, set.Remap(-1))
	assert.Equal(t, 3, set.Stats.Rejected)
	assert.Equal(t, 1, set.Stats.Converted)
}

func TestBuildMaterialsNoDefaultWithoutRejection(t *testing.T) {
	set := BuildMaterials([]*scene.Material{pbrMaterial("a")}, nil)
	require.Len(t, set.Materials, 1)
	assert.NotEqual(t, DefaultMaterialName, set.Materials[0].Name)
}

func TestSamplersMatch(t *testing.T) {
	base := scene.Sampler{
		WrapU: scene.WrapRepeat,
		WrapV: scene.WrapClamp,
		Mag:   scene.FilterLinear,
		Min:   scene.FilterLinear,
	}

	tests := []struct {
		name   string
		mutate func(s scene.Sampler) scene.Sampler
		want   bool
	}{
		{"identical", func(s scene.Sampler) scene.Sampler { return s }, true},
		{"invalid wrap u is wildcard", func(s scene.Sampler) scene.Sampler { s.WrapU = scene.WrapInvalid; return s }, true},
		{"different wrap v", func(s scene.Sampler) scene.Sampler { s.WrapV = scene.WrapMirror; return s }, false},
		{"wrap w set on one side", func(s scene.Sampler) scene.Sampler { s.WrapW = scene.WrapDecal; return s }, true},
		{"different mag filter", func(s scene.Sampler) scene.Sampler { s.Mag = scene.FilterNearest; return s }, false},
		{"different min filter", func(s scene.Sampler) scene.Sampler { s.Min = scene.FilterUnset; return s }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			other := tt.mutate(base)
			assert.Equal(t, tt.want, SamplersMatch(base, other))
			assert.Equal(t, tt.want, SamplersMatch(other, base))
		})
	}
}

func TestTextureDescIsFile(t *testing.T) {
	assert.True(t, TextureDesc{Path: "textures/wood.png"}.IsFile())
	assert.False(t, TextureDesc{Path: DefaultWhiteTexture}.IsFile())
	assert.False(t, TextureDesc{Path: "*0"}.IsFile())
	assert.True(t, TextureAlbedo.SRGB())
	assert.True(t, TextureEmissive.SRGB())
	assert.False(t, TextureNormal.SRGB())
	assert.False(t, TextureOcclusionMetallicRoughness.SRGB())
}
