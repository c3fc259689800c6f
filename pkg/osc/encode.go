package osc

import (
	"github.com/cfoust/mocap/pkg/geom"

	"github.com/hypebeast/go-osc/osc"
)

// The encoders below produce frames in the layout the companion application
// uses. They exist for the synthetic sender and for tests.

func LocationMessage(address string, location geom.Vector) *osc.Message {
	return osc.NewMessage(
		address,
		location.X(), location.Y(), -location.Z(),
	)
}

func QuaternionMessage(address string, rotation geom.Quat) *osc.Message {
	return osc.NewMessage(
		address,
		rotation.W, rotation.V.X(), rotation.V.Y(), -rotation.V.Z(),
	)
}

func PoseMessage(address string, location geom.Vector, rotation geom.Quat) *osc.Message {
	message := LocationMessage(address, location)
	message.Append(rotation.W)
	message.Append(rotation.V.X())
	message.Append(rotation.V.Y())
	message.Append(-rotation.V.Z())
	return message
}

// MatrixMessage sends a row-major 3x3 rotation matrix, optionally preceded by
// a location.
func MatrixMessage(address string, location *geom.Vector, matrix [9]float32) *osc.Message {
	message := osc.NewMessage(address)
	if location != nil {
		message.Append(location.X())
		message.Append(location.Y())
		message.Append(-location.Z())
	}
	for _, value := range matrix {
		message.Append(value)
	}
	return message
}

// Marshal is a shorthand for MarshalBinary on frames we built ourselves.
func Marshal(message *osc.Message) ([]byte, error) {
	return message.MarshalBinary()
}
