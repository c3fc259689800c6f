package geom

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Vector is a position in scene space (left-handed, Y up).
type Vector = mgl32.Vec3

// Quat is a rotation. Components follow mgl32: W is the scalar part and V
// holds x, y and z.
type Quat = mgl32.Quat

var (
	// ZeroQuat marks "no valid orientation". It is never a rotation.
	ZeroQuat = Quat{}
	Forward  = Vector{0, 0, 1}
	Up       = Vector{0, 1, 0}
)

func NewVector(x, y, z float32) Vector {
	return Vector{x, y, z}
}

func NewQuat(x, y, z, w float32) Quat {
	return Quat{W: w, V: Vector{x, y, z}}
}

func Identity() Quat {
	return mgl32.QuatIdent()
}

// IsDegenerate reports whether q carries a zero scalar component, which is
// how the decoder signals that a rotation could not be derived.
func IsDegenerate(q Quat) bool {
	return q.W == 0
}

// LookRotation returns the rotation whose +Z axis points along forward and
// whose +Y axis is as close to up as possible. forward must be non-zero.
func LookRotation(forward, up Vector) Quat {
	f := forward.Normalize()
	right := up.Cross(f)
	if right.LenSqr() < 1e-12 {
		// up is parallel to forward, so only the forward axis is defined
		return mgl32.QuatBetweenVectors(Forward, f)
	}
	right = right.Normalize()
	u := f.Cross(right)

	m := mgl32.Mat3FromCols(right, u, f)
	return mgl32.Mat4ToQuat(m.Mat4()).Normalize()
}

// Compose returns the rotation that applies each rotation right to left, so
// Compose(a, b) rotates by b first and then by a.
func Compose(rotations ...Quat) Quat {
	result := Identity()
	for _, q := range rotations {
		result = result.Mul(q)
	}
	return result
}

// AxisAngle returns a rotation of angle radians around axis.
func AxisAngle(angle float32, axis Vector) Quat {
	return mgl32.QuatRotate(angle, axis.Normalize())
}
