package scene

import (
	"github.com/cfoust/mocap/pkg/geom"
)

const SKELETON_ROOT = "Skeleton"

type bone struct {
	name   string
	parent string
	offset geom.Vector
}

// Bone names as sent by the tracking application's default skeleton. Parents
// always come before their children.
var humanoid = []bone{
	{"Hip", "", geom.Vector{0, 1, 0}},
	{"Torso", "Hip", geom.Vector{0, 0.25, 0}},
	{"Neck", "Torso", geom.Vector{0, 0.3, 0}},
	{"Head", "Neck", geom.Vector{0, 0.15, 0}},
}

func init() {
	for _, side := range []struct {
		prefix string
		sign   float32
	}{
		{"Left", 1},
		{"Right", -1},
	} {
		p := side.prefix + "_"
		s := side.sign
		humanoid = append(humanoid,
			bone{p + "Shoulder", "Torso", geom.Vector{s * 0.18, 0.25, 0}},
			bone{p + "Elbow", p + "Shoulder", geom.Vector{s * 0.28, 0, 0}},
			bone{p + "Wrist", p + "Elbow", geom.Vector{s * 0.25, 0, 0}},
			bone{p + "Hand", p + "Wrist", geom.Vector{s * 0.08, 0, 0}},
			bone{p + "Hip", "Hip", geom.Vector{s * 0.1, -0.05, 0}},
			bone{p + "Knee", p + "Hip", geom.Vector{0, -0.45, 0}},
			bone{p + "Ankle", p + "Knee", geom.Vector{0, -0.42, 0}},
			bone{p + "Foot", p + "Ankle", geom.Vector{0, -0.05, 0.12}},
		)
	}
}

// HumanoidBones lists the bone names of the default skeleton, parents first.
func HumanoidBones() []string {
	names := make([]string, len(humanoid))
	for i, b := range humanoid {
		names[i] = b.name
	}
	return names
}

// Humanoid builds a graph holding the default skeleton in its rest pose.
func Humanoid() *Graph {
	g := NewGraph(SKELETON_ROOT)
	for _, b := range humanoid {
		var parent *Transform
		if b.parent != "" {
			parent = g.Lookup(b.parent)
		}
		g.Add(parent, b.name, b.offset, geom.Identity())
	}
	return g
}
