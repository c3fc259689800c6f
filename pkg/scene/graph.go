package scene

import (
	"github.com/cfoust/mocap/pkg/geom"

	"github.com/sasha-s/go-deadlock"
)

// Graph is an in-memory scene made of Transforms that store local position
// and rotation relative to their parent.
type Graph struct {
	mutex  deadlock.RWMutex
	root   *Transform
	byName map[string][]*Transform
}

type Transform struct {
	graph    *Graph
	name     string
	parent   *Transform
	children []*Transform

	localPosition geom.Vector
	localRotation geom.Quat
}

var _ Scene = (*Graph)(nil)
var _ Creator = (*Graph)(nil)
var _ Node = (*Transform)(nil)

func NewGraph(rootName string) *Graph {
	g := &Graph{
		byName: make(map[string][]*Transform),
	}
	g.root = &Transform{
		graph:         g,
		name:          rootName,
		localRotation: geom.Identity(),
	}
	g.byName[rootName] = []*Transform{g.root}
	return g
}

func (g *Graph) Root() *Transform {
	return g.root
}

// Add attaches a new transform below parent with the given local offset and
// rotation. A nil parent means the graph root.
func (g *Graph) Add(parent *Transform, name string, position geom.Vector, rotation geom.Quat) *Transform {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	if parent == nil {
		parent = g.root
	}

	t := &Transform{
		graph:         g,
		name:          name,
		parent:        parent,
		localPosition: position,
		localRotation: rotation,
	}
	parent.children = append(parent.children, t)
	g.byName[name] = append(g.byName[name], t)
	return t
}

func (g *Graph) Create(name string) Node {
	return g.Add(nil, name, geom.Vector{}, geom.Identity())
}

func (g *Graph) Find(name string) Node {
	t := g.Lookup(name)
	if t == nil {
		return nil
	}
	return t
}

// Lookup is Find without the interface conversion.
func (g *Graph) Lookup(name string) *Transform {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	matches := g.byName[name]
	if len(matches) == 0 {
		return nil
	}
	return matches[0]
}

func (g *Graph) RootRotation(node Node) geom.Quat {
	top := node
	for parent := top.Parent(); parent != nil; parent = top.Parent() {
		top = parent
	}
	return top.Rotation()
}

func (t *Transform) Name() string {
	return t.name
}

func (t *Transform) Parent() Node {
	if t.parent == nil {
		return nil
	}
	return t.parent
}

func (t *Transform) Children() []Node {
	t.graph.mutex.RLock()
	defer t.graph.mutex.RUnlock()

	children := make([]Node, len(t.children))
	for i, child := range t.children {
		children[i] = child
	}
	return children
}

func (t *Transform) worldRotation() geom.Quat {
	if t.parent == nil {
		return t.localRotation
	}
	return t.parent.worldRotation().Mul(t.localRotation)
}

func (t *Transform) worldPosition() geom.Vector {
	if t.parent == nil {
		return t.localPosition
	}
	parent := t.parent
	return parent.worldPosition().Add(parent.worldRotation().Rotate(t.localPosition))
}

func (t *Transform) Position() geom.Vector {
	t.graph.mutex.RLock()
	defer t.graph.mutex.RUnlock()
	return t.worldPosition()
}

func (t *Transform) SetPosition(position geom.Vector) {
	t.graph.mutex.Lock()
	defer t.graph.mutex.Unlock()

	if t.parent == nil {
		t.localPosition = position
		return
	}

	parent := t.parent
	offset := position.Sub(parent.worldPosition())
	t.localPosition = parent.worldRotation().Inverse().Rotate(offset)
}

func (t *Transform) Rotation() geom.Quat {
	t.graph.mutex.RLock()
	defer t.graph.mutex.RUnlock()
	return t.worldRotation()
}

func (t *Transform) SetRotation(rotation geom.Quat) {
	t.graph.mutex.Lock()
	defer t.graph.mutex.Unlock()

	if t.parent == nil {
		t.localRotation = rotation
		return
	}

	t.localRotation = t.parent.worldRotation().Inverse().Mul(rotation)
}

func (t *Transform) LocalPosition() geom.Vector {
	t.graph.mutex.RLock()
	defer t.graph.mutex.RUnlock()
	return t.localPosition
}

func (t *Transform) LocalRotation() geom.Quat {
	t.graph.mutex.RLock()
	defer t.graph.mutex.RUnlock()
	return t.localRotation
}
