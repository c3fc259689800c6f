package pose

import (
	"sort"

	"github.com/cfoust/mocap/pkg/geom"
	"github.com/cfoust/mocap/pkg/osc"

	opt "github.com/repeale/fp-go/option"
	"github.com/sasha-s/go-deadlock"
)

// Store is the pose shared between the network receiver and the frame loop.
// Every read or write happens under a single mutex.
type Store struct {
	mutex deadlock.Mutex

	locations map[string]geom.Vector
	rotations map[string]geom.Quat

	// Captured the first time a bone is touched, never overwritten.
	originalLocations map[string]geom.Vector
	originalRotations map[string]geom.Quat

	rootRotation geom.Quat
	rootCaptured bool
}

func NewStore() *Store {
	s := &Store{}
	s.reset()
	return s
}

func (s *Store) reset() {
	s.locations = make(map[string]geom.Vector)
	s.rotations = make(map[string]geom.Quat)
	s.originalLocations = make(map[string]geom.Vector)
	s.originalRotations = make(map[string]geom.Quat)
	s.rootRotation = geom.Identity()
	s.rootCaptured = false
}

// Reset forgets everything, including captured originals.
func (s *Store) Reset() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.reset()
}

// Apply records one decoded datagram. A missing attribute removes the bone's
// entry for that attribute.
func (s *Store) Apply(update osc.BoneUpdate) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	name := update.Address

	if opt.IsSome(update.Location) {
		s.locations[name] = update.Location.Value
	} else {
		delete(s.locations, name)
	}

	if opt.IsSome(update.Rotation) {
		s.rotations[name] = update.Rotation.Value
	} else {
		delete(s.rotations, name)
	}
}

// Frame runs fn with the store locked. The Frame must not escape fn.
func (s *Store) Frame(fn func(frame *Frame)) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	fn(&Frame{store: s})
}

// Snapshot copies the tracked state.
func (s *Store) Snapshot() Snapshot {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	snapshot := Snapshot{
		Bones:        make([]Bone, 0, len(s.locations)+len(s.rotations)),
		RootRotation: toQuaternion(s.rootRotation),
		RootCaptured: s.rootCaptured,
	}

	names := make(map[string]struct{})
	for name := range s.locations {
		names[name] = struct{}{}
	}
	for name := range s.rotations {
		names[name] = struct{}{}
	}

	for _, name := range sortedKeys(names) {
		bone := Bone{Name: name}
		if location, ok := s.locations[name]; ok {
			value := toVector(location)
			bone.Location = &value
		}
		if rotation, ok := s.rotations[name]; ok {
			value := toQuaternion(rotation)
			bone.Rotation = &value
		}
		if original, ok := s.originalRotations[name]; ok {
			value := toQuaternion(original)
			bone.Original = &value
		}
		snapshot.Bones = append(snapshot.Bones, bone)
	}

	return snapshot
}

func sortedKeys[T any](m map[string]T) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Frame is a locked view of the store handed out by Store.Frame.
type Frame struct {
	store *Store
}

// LocationNames returns the bones with a tracked location, sorted.
func (f *Frame) LocationNames() []string {
	return sortedKeys(f.store.locations)
}

// RotationNames returns the bones with a tracked rotation, sorted.
func (f *Frame) RotationNames() []string {
	return sortedKeys(f.store.rotations)
}

func (f *Frame) Location(name string) (geom.Vector, bool) {
	value, ok := f.store.locations[name]
	return value, ok
}

func (f *Frame) Rotation(name string) (geom.Quat, bool) {
	value, ok := f.store.rotations[name]
	return value, ok
}

func (f *Frame) OriginalRotation(name string) (geom.Quat, bool) {
	value, ok := f.store.originalRotations[name]
	return value, ok
}

// CaptureRotation records the original rotation of a bone unless one is
// already known. It reports whether the value was stored.
func (f *Frame) CaptureRotation(name string, rotation geom.Quat) bool {
	if _, ok := f.store.originalRotations[name]; ok {
		return false
	}
	f.store.originalRotations[name] = rotation
	return true
}

func (f *Frame) OriginalLocation(name string) (geom.Vector, bool) {
	value, ok := f.store.originalLocations[name]
	return value, ok
}

func (f *Frame) CaptureLocation(name string, location geom.Vector) bool {
	if _, ok := f.store.originalLocations[name]; ok {
		return false
	}
	f.store.originalLocations[name] = location
	return true
}

// OriginalRotationNames returns every bone with a captured rotation, sorted.
func (f *Frame) OriginalRotationNames() []string {
	return sortedKeys(f.store.originalRotations)
}

func (f *Frame) OriginalLocationNames() []string {
	return sortedKeys(f.store.originalLocations)
}

func (f *Frame) RootRotation() (geom.Quat, bool) {
	return f.store.rootRotation, f.store.rootCaptured
}

// CaptureRootRotation stores the root rotation the first time it is called.
func (f *Frame) CaptureRootRotation(rotation geom.Quat) bool {
	if f.store.rootCaptured {
		return false
	}
	f.store.rootRotation = rotation
	f.store.rootCaptured = true
	return true
}
