// Package rig applies the tracked pose to a scene hierarchy once per frame.
package rig

import (
	"sort"

	"github.com/cfoust/mocap/pkg/geom"
	"github.com/cfoust/mocap/pkg/pose"
	"github.com/cfoust/mocap/pkg/scene"
)

type Options struct {
	// Compose received rotations onto the rotation a node had when data
	// first arrived for it instead of overwriting it.
	KeepOriginal bool `yaml:"keepOriginal"`
	// Re-express received rotations in the frame of the original root
	// rotation. Only meaningful with KeepOriginal.
	UseRoot bool `yaml:"useRoot"`
	// Create empty nodes for tracked bones the scene does not have, if the
	// scene supports it.
	CreateMissing bool `yaml:"createMissing"`
}

type Updater struct {
	store   *pose.Store
	scene   scene.Scene
	options Options
}

func NewUpdater(store *pose.Store, target scene.Scene, options Options) *Updater {
	return &Updater{
		store:   store,
		scene:   target,
		options: options,
	}
}

func (u *Updater) Options() Options {
	return u.options
}

// Tick runs one full update pass with the store locked.
func (u *Updater) Tick() {
	u.store.Frame(func(frame *pose.Frame) {
		u.updateLocations(frame)
		u.captureOriginals(frame)
		u.updateRotations(frame)
	})
}

func (u *Updater) find(name string) scene.Node {
	node := u.scene.Find(name)
	if node != nil || !u.options.CreateMissing {
		return node
	}

	creator, ok := u.scene.(scene.Creator)
	if !ok {
		return nil
	}
	return creator.Create(name)
}

func (u *Updater) updateLocations(frame *pose.Frame) {
	for _, name := range frame.LocationNames() {
		node := u.find(name)
		if node == nil {
			continue
		}

		for _, link := range scene.Chain(node) {
			location, ok := frame.Location(link.Name())
			if !ok {
				continue
			}

			frame.CaptureLocation(link.Name(), link.Position())
			link.SetPosition(location)
		}
	}
}

func (u *Updater) captureOriginals(frame *pose.Frame) {
	for _, name := range frame.RotationNames() {
		if _, ok := frame.OriginalRotation(name); ok {
			continue
		}

		node := u.find(name)
		if node == nil {
			continue
		}

		frame.CaptureRootRotation(u.scene.RootRotation(node))

		scene.Walk(node, func(child scene.Node) bool {
			frame.CaptureRotation(child.Name(), child.Rotation())
			return true
		})
	}
}

func (u *Updater) updateRotations(frame *pose.Frame) {
	root, _ := frame.RootRotation()

	for _, name := range frame.RotationNames() {
		node := u.find(name)
		if node == nil {
			continue
		}

		// A degenerate rotation on this bone still lets its ancestors
		// update.
		for _, link := range scene.Chain(node) {
			u.applyRotation(frame, link, root)
		}
	}
}

func (u *Updater) applyRotation(frame *pose.Frame, node scene.Node, root geom.Quat) {
	received, ok := frame.Rotation(node.Name())
	if !ok || geom.IsDegenerate(received) {
		return
	}

	if !u.options.KeepOriginal {
		node.SetRotation(received)
		return
	}

	original, ok := frame.OriginalRotation(node.Name())
	if !ok {
		return
	}

	if !u.options.UseRoot {
		node.SetRotation(geom.Compose(received, original))
		return
	}

	node.SetRotation(geom.Compose(root, received, root.Inverse(), original))
}

// Reset puts every node the updater has touched back to the rotation and
// location it had before tracking data arrived.
func (u *Updater) Reset() {
	u.store.Frame(func(frame *pose.Frame) {
		for _, node := range u.byDepth(frame.OriginalRotationNames()) {
			original, _ := frame.OriginalRotation(node.Name())
			node.SetRotation(original)
		}

		for _, node := range u.byDepth(frame.OriginalLocationNames()) {
			original, _ := frame.OriginalLocation(node.Name())
			node.SetPosition(original)
		}
	})
}

// byDepth resolves names to nodes ordered so that parents come before their
// children.
func (u *Updater) byDepth(names []string) []scene.Node {
	type entry struct {
		node  scene.Node
		depth int
	}

	var entries []entry
	for _, name := range names {
		node := u.scene.Find(name)
		if node == nil {
			continue
		}
		entries = append(entries, entry{node, len(scene.Chain(node))})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].depth < entries[j].depth
	})

	nodes := make([]scene.Node, len(entries))
	for i, e := range entries {
		nodes[i] = e.node
	}
	return nodes
}
