package asset

import (
	"github.com/Faultbox/modelconv/pkg/scene"
)

// gridMesh returns a triangle mesh with n vertices, a fan of faces and every
// per-vertex attribute present.
func gridMesh(name string, n, material int) *scene.Mesh {
	m := &scene.Mesh{
		Name:           name,
		PrimitiveTypes: scene.PrimitiveTriangle,
		MaterialIndex:  material,
		TexCoords:      []scene.UVChannel{{Components: 2}},
	}
	for i := 0; i < n; i++ {
		f := float32(i)
		m.Positions = append(m.Positions, [3]float32{f, f * 2, f * 3})
		m.Normals = append(m.Normals, [3]float32{0, 0, 1})
		m.Tangents = append(m.Tangents, [3]float32{1, 0, 0})
		m.Bitangents = append(m.Bitangents, [3]float32{0, 1, 0})
		m.TexCoords[0].Coords = append(m.TexCoords[0].Coords, [3]float32{f / 10, 1 - f/10, 0})
		m.Colors = append(m.Colors, [4]float32{f, 0, 0, 1})
	}
	for i := 1; i+1 < n; i++ {
		m.Faces = append(m.Faces, scene.Face{0, uint32(i), uint32(i + 1)})
	}
	return m
}

func pbrMaterial(name string) *scene.Material {
	m := scene.NewMaterial(name)
	scene.Set(m, scene.KeyShadingModel, scene.ShadingPBR)
	return m
}

func uvBinding(path string) scene.TextureBinding {
	return scene.TextureBinding{
		Path:    path,
		Mapping: scene.MappingUV,
		Sampler: scene.Sampler{
			WrapU: scene.WrapRepeat,
			WrapV: scene.WrapRepeat,
			Mag:   scene.FilterLinear,
			Min:   scene.FilterLinearMipmapLinear,
		},
	}
}

// singleTriangleScene is an identity root drawing one textured triangle.
func singleTriangleScene() *scene.Scene {
	root := scene.NewNode("root")
	root.Meshes = []int{0}

	mat := pbrMaterial("painted")
	mat.Bind(scene.SlotBaseColor, uvBinding("albedo.png"))

	return &scene.Scene{
		Root:      root,
		Meshes:    []*scene.Mesh{gridMesh("tri", 3, 0)},
		Materials: []*scene.Material{mat},
	}
}
