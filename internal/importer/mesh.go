package importer

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"go.uber.org/zap"

	"github.com/Faultbox/modelconv/pkg/scene"
)

func (im *importer) convertPrimitive(name string, prim *gltf.Primitive) (*scene.Mesh, error) {
	log := im.log.With(zap.String("mesh", name))
	m := &scene.Mesh{Name: name}

	if err := im.readVertices(m, prim, log); err != nil {
		return nil, err
	}

	indices, err := im.readIndices(prim, len(m.Positions))
	if err != nil {
		return nil, err
	}
	m.Faces, m.PrimitiveTypes = buildFaces(prim.Mode, indices)

	if len(m.Normals) == 0 && len(m.Positions) > 0 {
		m.Normals = generateNormals(m.Positions, m.Faces)
		im.out.Flags |= scene.FlagGeneratedNormals
		log.Debug("generated normals")
	}
	if len(m.Tangents) == 0 && len(m.Positions) > 0 {
		var uv [][3]float32
		if m.HasTexCoords(0) {
			uv = m.TexCoords[0].Coords
		}
		m.Tangents, m.Bitangents = generateTangents(m.Positions, m.Normals, uv, m.Faces)
		im.out.Flags |= scene.FlagGeneratedTangents
		log.Debug("generated tangents", zap.Bool("from_uv", uv != nil))
	}

	m.MaterialIndex, err = im.primitiveMaterial(prim)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (im *importer) accessor(attr string, idx uint32) (*gltf.Accessor, error) {
	if int(idx) >= len(im.doc.Accessors) || im.doc.Accessors[idx] == nil {
		return nil, errors.Errorf("%s accessor %d does not exist", attr, idx)
	}
	return im.doc.Accessors[idx], nil
}

func (im *importer) readVertices(m *scene.Mesh, prim *gltf.Primitive, log *zap.Logger) error {
	idx, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		log.Warn("primitive has no positions")
		return nil
	}
	acr, err := im.accessor(gltf.POSITION, idx)
	if err != nil {
		return err
	}
	if m.Positions, err = modeler.ReadPosition(im.doc, acr, nil); err != nil {
		return errors.Wrapf(err, "reading %s", gltf.POSITION)
	}

	if idx, ok := prim.Attributes[gltf.NORMAL]; ok {
		acr, err := im.accessor(gltf.NORMAL, idx)
		if err != nil {
			return err
		}
		if m.Normals, err = modeler.ReadNormal(im.doc, acr, nil); err != nil {
			return errors.Wrapf(err, "reading %s", gltf.NORMAL)
		}
	}

	if idx, ok := prim.Attributes[gltf.TANGENT]; ok {
		acr, err := im.accessor(gltf.TANGENT, idx)
		if err != nil {
			return err
		}
		tangents, err := modeler.ReadTangent(im.doc, acr, nil)
		if err != nil {
			return errors.Wrapf(err, "reading %s", gltf.TANGENT)
		}
		if len(tangents) == len(m.Positions) && len(m.Normals) == len(m.Positions) {
			m.Tangents, m.Bitangents = splitTangents(m.Normals, tangents)
		} else {
			log.Warn("ignoring tangents that do not match the vertex count",
				zap.Int("tangents", len(tangents)), zap.Int("vertices", len(m.Positions)))
		}
	}

	for ch := 0; ; ch++ {
		attr := fmt.Sprintf("TEXCOORD_%d", ch)
		idx, ok := prim.Attributes[attr]
		if !ok {
			break
		}
		acr, err := im.accessor(attr, idx)
		if err != nil {
			return err
		}
		uv, err := modeler.ReadTextureCoord(im.doc, acr, nil)
		if err != nil {
			return errors.Wrapf(err, "reading %s", attr)
		}
		channel := scene.UVChannel{Components: 2, Coords: make([][3]float32, len(uv))}
		for i, c := range uv {
			channel.Coords[i] = [3]float32{c[0], c[1], 0}
		}
		m.TexCoords = append(m.TexCoords, channel)
	}

	if idx, ok := prim.Attributes[gltf.COLOR_0]; ok {
		acr, err := im.accessor(gltf.COLOR_0, idx)
		if err != nil {
			return err
		}
		colors, err := modeler.ReadColor(im.doc, acr, nil)
		if err != nil {
			return errors.Wrapf(err, "reading %s", gltf.COLOR_0)
		}
		m.Colors = make([][4]float32, len(colors))
		for i, c := range colors {
			m.Colors[i] = [4]float32{float32(c[0]) / 255, float32(c[1]) / 255, float32(c[2]) / 255, float32(c[3]) / 255}
		}
	}
	return nil
}

// readIndices returns the primitive's indices, or 0..vertices-1 for
// non-indexed geometry.
func (im *importer) readIndices(prim *gltf.Primitive, vertices int) ([]uint32, error) {
	if prim.Indices == nil {
		indices := make([]uint32, vertices)
		for i := range indices {
			indices[i] = uint32(i)
		}
		return indices, nil
	}
	acr, err := im.accessor("indices", *prim.Indices)
	if err != nil {
		return nil, err
	}
	indices, err := modeler.ReadIndices(im.doc, acr, nil)
	if err != nil {
		return nil, errors.Wrap(err, "reading indices")
	}
	return indices, nil
}

// buildFaces splits an index list into faces according to the topology.
// Strips and fans become triangle lists and line strips become line lists.
// Trailing indices that do not complete a face are kept as a short face so
// later stages report them.
func buildFaces(mode gltf.PrimitiveMode, idx []uint32) ([]scene.Face, scene.PrimitiveType) {
	var faces []scene.Face
	switch mode {
	case gltf.PrimitivePoints:
		for _, i := range idx {
			faces = append(faces, scene.Face{i})
		}
		return faces, scene.PrimitivePoint

	case gltf.PrimitiveLines:
		faces = chunk(idx, 2)
		return faces, scene.PrimitiveLine

	case gltf.PrimitiveLineStrip, gltf.PrimitiveLineLoop:
		for i := 0; i+1 < len(idx); i++ {
			faces = append(faces, scene.Face{idx[i], idx[i+1]})
		}
		if mode == gltf.PrimitiveLineLoop && len(idx) > 2 {
			faces = append(faces, scene.Face{idx[len(idx)-1], idx[0]})
		}
		return faces, scene.PrimitiveLine

	case gltf.PrimitiveTriangleStrip:
		for i := 0; i+2 < len(idx); i++ {
			if i%2 == 0 {
				faces = append(faces, scene.Face{idx[i], idx[i+1], idx[i+2]})
			} else {
				faces = append(faces, scene.Face{idx[i+1], idx[i], idx[i+2]})
			}
		}
		return faces, scene.PrimitiveTriangle

	case gltf.PrimitiveTriangleFan:
		for i := 1; i+1 < len(idx); i++ {
			faces = append(faces, scene.Face{idx[0], idx[i], idx[i+1]})
		}
		return faces, scene.PrimitiveTriangle
	}

	faces = chunk(idx, 3)
	return faces, scene.PrimitiveTriangle
}

func chunk(idx []uint32, n int) []scene.Face {
	faces := make([]scene.Face, 0, (len(idx)+n-1)/n)
	for i := 0; i < len(idx); i += n {
		end := min(i+n, len(idx))
		faces = append(faces, append(scene.Face(nil), idx[i:end]...))
	}
	return faces
}
