package scene

import (
	"testing"

	"github.com/cfoust/mocap/pkg/geom"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const epsilon = 1e-4

func TestWorldTransforms(t *testing.T) {
	g := NewGraph("root")
	turn := geom.AxisAngle(mgl32.DegToRad(90), geom.Up)
	parent := g.Add(nil, "parent", geom.NewVector(1, 0, 0), turn)
	child := g.Add(parent, "child", geom.NewVector(0, 0, 1), geom.Identity())

	// Turning 90 degrees around Y maps +Z onto +X.
	assert.True(t, child.Position().ApproxEqualThreshold(geom.NewVector(2, 0, 0), epsilon))
	assert.True(t, child.Rotation().ApproxEqualThreshold(turn, epsilon))

	child.SetPosition(geom.NewVector(1, 0, 0))
	assert.True(t, child.Position().ApproxEqualThreshold(geom.NewVector(1, 0, 0), epsilon))
	assert.True(t, child.LocalPosition().ApproxEqualThreshold(geom.Vector{}, epsilon))

	child.SetRotation(geom.Identity())
	assert.True(t, child.Rotation().ApproxEqualThreshold(geom.Identity(), epsilon))
	assert.True(t, child.LocalRotation().ApproxEqualThreshold(turn.Inverse(), epsilon))
}

func TestChildrenFollowParent(t *testing.T) {
	g := NewGraph("root")
	parent := g.Add(nil, "parent", geom.Vector{}, geom.Identity())
	child := g.Add(parent, "child", geom.NewVector(0, 1, 0), geom.Identity())

	parent.SetPosition(geom.NewVector(5, 0, 0))
	assert.True(t, child.Position().ApproxEqualThreshold(geom.NewVector(5, 1, 0), epsilon))
}

func TestFind(t *testing.T) {
	g := NewGraph("root")
	first := g.Add(nil, "bone", geom.Vector{}, geom.Identity())
	g.Add(first, "bone", geom.Vector{}, geom.Identity())

	assert.Same(t, first, g.Find("bone"))
	assert.Nil(t, g.Find("missing"))
	assert.Nil(t, g.Root().Parent())
}

func TestCreate(t *testing.T) {
	g := NewGraph("root")
	node := g.Create("empty")
	require.NotNil(t, node)
	assert.Equal(t, "root", node.Parent().Name())
	assert.Equal(t, node, g.Find("empty"))
}

func TestRootRotation(t *testing.T) {
	g := Humanoid()
	turn := geom.AxisAngle(1, geom.Up)
	g.Root().SetRotation(turn)

	hand := g.Find("Left_Hand")
	require.NotNil(t, hand)
	assert.True(t, g.RootRotation(hand).ApproxEqualThreshold(turn, epsilon))
}

func TestChainAndWalk(t *testing.T) {
	g := Humanoid()
	wrist := g.Find("Right_Wrist")
	require.NotNil(t, wrist)

	var chain []string
	for _, node := range Chain(wrist) {
		chain = append(chain, node.Name())
	}
	assert.Equal(t, []string{
		SKELETON_ROOT,
		"Hip",
		"Torso",
		"Right_Shoulder",
		"Right_Elbow",
		"Right_Wrist",
	}, chain)

	var visited []string
	Walk(g.Find("Left_Shoulder"), func(node Node) bool {
		visited = append(visited, node.Name())
		return true
	})
	assert.Equal(t, []string{
		"Left_Shoulder",
		"Left_Elbow",
		"Left_Wrist",
		"Left_Hand",
	}, visited)
}

func TestHumanoid(t *testing.T) {
	g := Humanoid()
	for _, name := range HumanoidBones() {
		assert.NotNil(t, g.Find(name), name)
	}
	assert.Len(t, HumanoidBones(), 20)
}
