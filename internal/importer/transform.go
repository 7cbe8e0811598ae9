package importer

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"

	"github.com/Faultbox/modelconv/pkg/math"
)

// localMatrix returns the node's matrix when one is set, else T*R*S.
// Nodes built in memory leave unset fields zeroed, so a zero rotation or
// scale stands for the identity.
func localMatrix(n *gltf.Node) math.Mat4 {
	if n.Matrix != [16]float32{} && math.Mat4(n.Matrix) != math.Identity() {
		return math.Mat4(n.Matrix)
	}

	t, r, s := n.Translation, n.Rotation, n.Scale
	if r == [4]float32{} {
		r = [4]float32{0, 0, 0, 1}
	}
	if s == [3]float32{} {
		s = [3]float32{1, 1, 1}
	}

	rot := mgl32.Ident4()
	if r != [4]float32{0, 0, 0, 1} {
		q := mgl32.Quat{W: r[3], V: mgl32.Vec3{r[0], r[1], r[2]}}.Normalize()
		rot = q.Mat4()
	}
	m := mgl32.Translate3D(t[0], t[1], t[2]).Mul4(rot).Mul4(mgl32.Scale3D(s[0], s[1], s[2]))
	return math.Mat4(m)
}
