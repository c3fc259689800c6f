package scene

import (
	"github.com/cfoust/mocap/pkg/geom"
)

// Node is a transform in the host scene graph. Positions and rotations are
// in world space.
type Node interface {
	Name() string
	Parent() Node
	Children() []Node
	Position() geom.Vector
	SetPosition(position geom.Vector)
	Rotation() geom.Quat
	SetRotation(rotation geom.Quat)
}

// Scene resolves bone names to nodes.
type Scene interface {
	// Find returns the first node with the given name, or nil.
	Find(name string) Node
	// RootRotation returns the world rotation of the top of node's hierarchy.
	RootRotation(node Node) geom.Quat
}

// Creator is implemented by scenes that can create empty nodes on demand.
type Creator interface {
	Create(name string) Node
}

// Chain returns node and its ancestors ordered from the top of the hierarchy
// down to node.
func Chain(node Node) []Node {
	var chain []Node
	for current := node; current != nil; current = current.Parent() {
		chain = append(chain, current)
	}

	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}

// Walk visits node and then all of its descendants, depth first. Returning
// false from fn skips the children of that node.
func Walk(node Node, fn func(node Node) bool) {
	if !fn(node) {
		return
	}
	for _, child := range node.Children() {
		Walk(child, fn)
	}
}
