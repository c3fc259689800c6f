package pose

import (
	"github.com/cfoust/mocap/pkg/geom"
)

// Snapshot is a copy of the tracked pose suitable for serialization.
type Snapshot struct {
	Bones        []Bone     `cbor:"bones"`
	RootRotation Quaternion `cbor:"rootRotation"`
	RootCaptured bool       `cbor:"rootCaptured"`
}

type Bone struct {
	Name     string      `cbor:"name"`
	Location *Vector     `cbor:"location,omitempty"`
	Rotation *Quaternion `cbor:"rotation,omitempty"`
	Original *Quaternion `cbor:"original,omitempty"`
}

type Vector struct {
	X float32 `cbor:"x"`
	Y float32 `cbor:"y"`
	Z float32 `cbor:"z"`
}

type Quaternion struct {
	X float32 `cbor:"x"`
	Y float32 `cbor:"y"`
	Z float32 `cbor:"z"`
	W float32 `cbor:"w"`
}

func toVector(v geom.Vector) Vector {
	return Vector{X: v.X(), Y: v.Y(), Z: v.Z()}
}

func toQuaternion(q geom.Quat) Quaternion {
	return Quaternion{X: q.V.X(), Y: q.V.Y(), Z: q.V.Z(), W: q.W}
}

// Find returns the bone with the given name.
func (s Snapshot) Find(name string) (Bone, bool) {
	for _, bone := range s.Bones {
		if bone.Name == name {
			return bone, true
		}
	}
	return Bone{}, false
}
