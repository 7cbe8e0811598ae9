package importer

import (
	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
	"go.uber.org/zap"

	"github.com/Faultbox/modelconv/pkg/scene"
)

const extUnlit = "KHR_materials_unlit"

// primitiveMaterial returns the scene material of prim, converting the glTF
// material on first use. Primitives without a material share one default
// metallic-roughness material.
func (im *importer) primitiveMaterial(prim *gltf.Primitive) (int, error) {
	if prim.Material == nil {
		if im.defaultMaterial == nil {
			idx := len(im.out.Materials)
			im.out.Materials = append(im.out.Materials, im.convertMaterial(&gltf.Material{Name: "gltf_default"}))
			im.defaultMaterial = &idx
		}
		return *im.defaultMaterial, nil
	}

	src := *prim.Material
	if idx, ok := im.material[src]; ok {
		return idx, nil
	}
	if int(src) >= len(im.doc.Materials) || im.doc.Materials[src] == nil {
		return 0, errors.Errorf("material %d does not exist", src)
	}
	idx := len(im.out.Materials)
	im.out.Materials = append(im.out.Materials, im.convertMaterial(im.doc.Materials[src]))
	im.material[src] = idx
	return idx, nil
}

func (im *importer) convertMaterial(src *gltf.Material) *scene.Material {
	m := scene.NewMaterial(src.Name)
	log := im.log.With(zap.String("material", src.Name))

	shading := scene.ShadingPBR
	if _, ok := src.Extensions[extUnlit]; ok {
		shading = scene.ShadingUnlit
	}
	scene.Set(m, scene.KeyShadingModel, shading)

	pbr := src.PBRMetallicRoughness
	if pbr == nil {
		pbr = &gltf.PBRMetallicRoughness{}
	}
	scene.Set(m, scene.KeyBaseColorFactor, valueOr(pbr.BaseColorFactor, [4]float32{1, 1, 1, 1}))
	scene.Set(m, scene.KeyMetallicFactor, valueOr(pbr.MetallicFactor, 1))
	scene.Set(m, scene.KeyRoughnessFactor, valueOr(pbr.RoughnessFactor, 1))
	scene.Set(m, scene.KeyEmissiveFactor, src.EmissiveFactor)
	scene.Set(m, scene.KeyDoubleSided, src.DoubleSided)
	scene.Set(m, scene.KeyAlphaMode, alphaMode(src.AlphaMode))
	scene.Set(m, scene.KeyAlphaCutoff, valueOr(src.AlphaCutoff, 0.5))

	if t := pbr.BaseColorTexture; t != nil {
		im.bind(m, scene.SlotBaseColor, t.Index, t.TexCoord)
	}

	// The packed format has one combined occlusion/metallic/roughness
	// texture. A separate occlusion map only fills the slot when there is no
	// metallic-roughness texture.
	mr := pbr.MetallicRoughnessTexture
	occ := src.OcclusionTexture
	switch {
	case mr != nil:
		im.bind(m, scene.SlotOcclusionMetallicRoughness, mr.Index, mr.TexCoord)
		if occ != nil && occ.Index != nil && *occ.Index != mr.Index {
			log.Warn("separate occlusion texture ignored", zap.Uint32("texture", *occ.Index))
		}
	case occ != nil && occ.Index != nil:
		im.bind(m, scene.SlotOcclusionMetallicRoughness, *occ.Index, occ.TexCoord)
	}
	strength := float32(1)
	if occ != nil {
		strength = valueOr(occ.Strength, 1)
	}
	scene.Set(m, scene.KeyOcclusionStrength, strength)

	scale := float32(1)
	if nt := src.NormalTexture; nt != nil {
		scale = valueOr(nt.Scale, 1)
		if nt.Index != nil {
			im.bind(m, scene.SlotNormal, *nt.Index, nt.TexCoord)
		}
	}
	scene.Set(m, scene.KeyNormalScale, scale)

	if t := src.EmissiveTexture; t != nil {
		im.bind(m, scene.SlotEmissive, t.Index, t.TexCoord)
	}
	return m
}

func (im *importer) bind(m *scene.Material, slot scene.TextureSlot, texture, texCoord uint32) {
	if int(texture) >= len(im.doc.Textures) || im.doc.Textures[texture] == nil {
		im.log.Warn("material references missing texture",
			zap.String("material", m.Name), zap.Stringer("slot", slot), zap.Uint32("texture", texture))
		return
	}
	tex := im.doc.Textures[texture]

	b := scene.TextureBinding{
		Mapping: scene.MappingUV,
		UVIndex: int(texCoord),
		Sampler: defaultSampler(),
	}
	if tex.Source != nil {
		b.Path = imagePath(im.doc, *tex.Source)
	} else {
		b.Path = tex.Name
	}
	if tex.Sampler != nil && int(*tex.Sampler) < len(im.doc.Samplers) && im.doc.Samplers[*tex.Sampler] != nil {
		b.Sampler = convertSampler(im.doc.Samplers[*tex.Sampler])
	}
	m.Bind(slot, b)
}

// defaultSampler is the glTF default: repeat on both axes with filtering
// left to the implementation.
func defaultSampler() scene.Sampler {
	return scene.Sampler{
		WrapU: scene.WrapRepeat,
		WrapV: scene.WrapRepeat,
		Mag:   scene.FilterLinear,
		Min:   scene.FilterLinearMipmapLinear,
	}
}

func convertSampler(s *gltf.Sampler) scene.Sampler {
	out := defaultSampler()
	out.WrapU = wrapMode(s.WrapS)
	out.WrapV = wrapMode(s.WrapT)

	switch s.MagFilter {
	case gltf.MagNearest:
		out.Mag = scene.FilterNearest
	case gltf.MagLinear:
		out.Mag = scene.FilterLinear
	}

	switch s.MinFilter {
	case gltf.MinNearest:
		out.Min = scene.FilterNearest
	case gltf.MinLinear:
		out.Min = scene.FilterLinear
	case gltf.MinNearestMipMapNearest:
		out.Min = scene.FilterNearestMipmapNearest
	case gltf.MinLinearMipMapNearest:
		out.Min = scene.FilterLinearMipmapNearest
	case gltf.MinNearestMipMapLinear:
		out.Min = scene.FilterNearestMipmapLinear
	case gltf.MinLinearMipMapLinear:
		out.Min = scene.FilterLinearMipmapLinear
	}
	return out
}

func wrapMode(w gltf.WrappingMode) scene.WrapMode {
	switch w {
	case gltf.WrapClampToEdge:
		return scene.WrapClamp
	case gltf.WrapMirroredRepeat:
		return scene.WrapMirror
	default:
		return scene.WrapRepeat
	}
}

func alphaMode(a gltf.AlphaMode) string {
	switch a {
	case gltf.AlphaMask:
		return "MASK"
	case gltf.AlphaBlend:
		return "BLEND"
	default:
		return "OPAQUE"
	}
}

func valueOr[T any](p *T, def T) T {
	if p == nil {
		return def
	}
	return *p
}
