package osc

import (
	"encoding/binary"
	"math"

	"github.com/cfoust/mocap/pkg/geom"

	opt "github.com/repeale/fp-go/option"
)

const (
	// Smallest frame we look at: a padded address and a padded type tag.
	MIN_FRAME_SIZE = 8
	// Longest run of float type tags we decode. Longer runs stop tracking.
	MAX_ARITY = 12
)

const (
	bundleMarker = '#'
	typeTagStart = ','
	floatTag     = 'f'
)

// BoneUpdate is the content of one datagram. An absent Location or Rotation
// means the sender stopped tracking that attribute for the bone.
type BoneUpdate struct {
	Address  string
	Location opt.Option[geom.Vector]
	Rotation opt.Option[geom.Quat]
}

func align4(offset int) int {
	return (offset + 3) &^ 3
}

type reader struct {
	data   []byte
	offset int
}

func (r *reader) float() (float32, bool) {
	if r.offset+4 > len(r.data) {
		return 0, false
	}
	bits := binary.BigEndian.Uint32(r.data[r.offset : r.offset+4])
	r.offset += 4
	return math.Float32frombits(bits), true
}

func (r *reader) floats(n int) ([]float32, bool) {
	values := make([]float32, n)
	for i := range values {
		value, ok := r.float()
		if !ok {
			return nil, false
		}
		values[i] = value
	}
	return values, true
}

func (r *reader) location() (geom.Vector, bool) {
	v, ok := r.floats(3)
	if !ok {
		return geom.Vector{}, false
	}
	return geom.NewVector(v[0], v[1], -v[2]), true
}

// Quaternions arrive as (w, x, y, z).
func (r *reader) quaternion() (geom.Quat, bool) {
	v, ok := r.floats(4)
	if !ok {
		return geom.Quat{}, false
	}
	return geom.NewQuat(v[1], v[2], -v[3], v[0]), true
}

// Rotation matrices arrive row-major.
func (r *reader) matrix() (geom.Quat, bool) {
	m, ok := r.floats(9)
	if !ok {
		return geom.Quat{}, false
	}

	forward := geom.NewVector(-m[2], -m[5], m[8])
	up := geom.NewVector(m[1], m[4], -m[7])
	if forward.Len() > 0 {
		return geom.LookRotation(forward, up), true
	}

	return geom.ZeroQuat, true
}

// Decode turns one datagram into a BoneUpdate. Bundles, comments and frames
// that are malformed or truncated decode to None. A well-formed frame with an
// argument list we do not understand yields an update with only the address
// set.
func Decode(data []byte) opt.Option[BoneUpdate] {
	none := opt.None[BoneUpdate]()

	if len(data) < MIN_FRAME_SIZE || data[0] == bundleMarker {
		return none
	}

	length := 0
	for length < len(data) && data[length] != 0 {
		length++
	}
	if length == len(data) {
		return none
	}

	update := BoneUpdate{
		Address:  string(data[:length]),
		Location: opt.None[geom.Vector](),
		Rotation: opt.None[geom.Quat](),
	}

	start := align4(length + 1)
	if start >= len(data) || data[start] != typeTagStart {
		return none
	}

	arity := 0
	for start+1+arity < len(data) &&
		data[start+1+arity] == floatTag {
		arity++
	}
	if arity > MAX_ARITY {
		return opt.Some(update)
	}

	r := reader{
		data: data,
		// skip ',', the tags and the NUL that ends them
		offset: align4(start + 1 + arity + 1),
	}

	var (
		location geom.Vector
		rotation geom.Quat
		ok       bool
	)

	switch arity {
	case 3:
		if location, ok = r.location(); !ok {
			return none
		}
		update.Location = opt.Some(location)
	case 4:
		if rotation, ok = r.quaternion(); !ok {
			return none
		}
		update.Rotation = opt.Some(rotation)
	case 7:
		if location, ok = r.location(); !ok {
			return none
		}
		if rotation, ok = r.quaternion(); !ok {
			return none
		}
		update.Location = opt.Some(location)
		update.Rotation = opt.Some(rotation)
	case 9:
		if rotation, ok = r.matrix(); !ok {
			return none
		}
		update.Rotation = opt.Some(rotation)
	case 12:
		if location, ok = r.location(); !ok {
			return none
		}
		if rotation, ok = r.matrix(); !ok {
			return none
		}
		update.Location = opt.Some(location)
		update.Rotation = opt.Some(rotation)
	}

	return opt.Some(update)
}
