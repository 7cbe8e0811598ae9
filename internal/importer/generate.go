package importer

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/modelconv/pkg/scene"
)

const degenerateEpsilon = 1e-12

// triangles calls fn for every well-formed triangle face.
func triangles(faces []scene.Face, vertices int, fn func(a, b, c uint32)) {
	for _, f := range faces {
		if len(f) != 3 || int(f[0]) >= vertices || int(f[1]) >= vertices || int(f[2]) >= vertices {
			continue
		}
		fn(f[0], f[1], f[2])
	}
}

// generateNormals computes area-weighted vertex normals. Vertices no
// triangle touches get +Z.
func generateNormals(positions [][3]float32, faces []scene.Face) [][3]float32 {
	acc := make([]mgl32.Vec3, len(positions))
	triangles(faces, len(positions), func(a, b, c uint32) {
		p0, p1, p2 := mgl32.Vec3(positions[a]), mgl32.Vec3(positions[b]), mgl32.Vec3(positions[c])
		n := p1.Sub(p0).Cross(p2.Sub(p0))
		acc[a] = acc[a].Add(n)
		acc[b] = acc[b].Add(n)
		acc[c] = acc[c].Add(n)
	})

	out := make([][3]float32, len(positions))
	for i, n := range acc {
		if n.Dot(n) < degenerateEpsilon {
			out[i] = [3]float32{0, 0, 1}
			continue
		}
		out[i] = n.Normalize()
	}
	return out
}

// generateTangents derives per-vertex tangents and bitangents from the UV
// layout. Without usable UVs any basis orthogonal to the normal is used.
func generateTangents(positions, normals, uv [][3]float32, faces []scene.Face) (tangents, bitangents [][3]float32) {
	tan := make([]mgl32.Vec3, len(positions))
	bit := make([]mgl32.Vec3, len(positions))

	if len(uv) == len(positions) {
		triangles(faces, len(positions), func(a, b, c uint32) {
			p0 := mgl32.Vec3(positions[a])
			e1 := mgl32.Vec3(positions[b]).Sub(p0)
			e2 := mgl32.Vec3(positions[c]).Sub(p0)
			du1, dv1 := uv[b][0]-uv[a][0], uv[b][1]-uv[a][1]
			du2, dv2 := uv[c][0]-uv[a][0], uv[c][1]-uv[a][1]

			r := du1*dv2 - du2*dv1
			if r*r < degenerateEpsilon {
				return
			}
			t := e1.Mul(dv2).Sub(e2.Mul(dv1)).Mul(1 / r)
			bt := e2.Mul(du1).Sub(e1.Mul(du2)).Mul(1 / r)
			for _, v := range [3]uint32{a, b, c} {
				tan[v] = tan[v].Add(t)
				bit[v] = bit[v].Add(bt)
			}
		})
	}

	tangents = make([][3]float32, len(positions))
	bitangents = make([][3]float32, len(positions))
	for i := range positions {
		n := mgl32.Vec3{0, 0, 1}
		if i < len(normals) {
			n = mgl32.Vec3(normals[i])
		}

		// Gram-Schmidt against the normal.
		t := tan[i].Sub(n.Mul(n.Dot(tan[i])))
		if t.Dot(t) < degenerateEpsilon {
			t = orthogonal(n)
		} else {
			t = t.Normalize()
		}

		b := n.Cross(t)
		if b.Dot(bit[i]) < 0 {
			b = b.Mul(-1)
		}
		tangents[i] = t
		bitangents[i] = b
	}
	return tangents, bitangents
}

// splitTangents converts glTF xyzw tangents, where w is the handedness,
// into tangent and bitangent vectors.
func splitTangents(normals [][3]float32, tangents [][4]float32) (t, b [][3]float32) {
	t = make([][3]float32, len(tangents))
	b = make([][3]float32, len(tangents))
	for i, tw := range tangents {
		tv := mgl32.Vec3{tw[0], tw[1], tw[2]}
		w := tw[3]
		if w == 0 {
			w = 1
		}
		t[i] = tv
		b[i] = mgl32.Vec3(normals[i]).Cross(tv).Mul(w)
	}
	return t, b
}

// orthogonal returns a unit vector perpendicular to n.
func orthogonal(n mgl32.Vec3) mgl32.Vec3 {
	axis := mgl32.Vec3{1, 0, 0}
	if abs(n.X()) > 0.9 {
		axis = mgl32.Vec3{0, 1, 0}
	}
	return n.Cross(axis).Normalize()
}

func abs(f float32) float32 {
	if f < 0 {
		return -f
	}
	return f
}
