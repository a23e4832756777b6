// Package helicopter assembles the terrain and helicopter scene graph and
// animates it.
package helicopter

import (
	"fmt"

	"heliscene/internal/animation"
	"heliscene/internal/scene"

	"github.com/go-gl/mathgl/mgl32"
)

// Parts are the uploaded geometries of the scene.
type Parts struct {
	Terrain   scene.Geometry
	Body      scene.Geometry
	Door      scene.Geometry
	MainRotor scene.Geometry
	TailRotor scene.Geometry
}

// Settings tune the rig.
type Settings struct {
	RotorSpeed     float32 // radians per second
	Altitude       float32
	TailRotorPivot mgl32.Vec3
	// Heading defaults to animation.SimpleHeading.
	Heading func(elapsed float32) animation.Heading
}

// Rig is the assembled scene plus the ids of its animated nodes.
type Rig struct {
	Graph     *scene.Graph
	Root      scene.NodeID
	Terrain   scene.NodeID
	Body      scene.NodeID
	Door      scene.NodeID
	MainRotor scene.NodeID
	TailRotor scene.NodeID

	settings Settings
}

// Assemble builds root -> terrain -> body -> {door, main rotor, tail rotor}.
func Assemble(parts Parts, s Settings) (*Rig, error) {
	if s.Heading == nil {
		s.Heading = animation.SimpleHeading
	}
	g := scene.New()
	r := &Rig{Graph: g, settings: s}

	r.Root = g.Add(scene.NewNode())
	r.Terrain = g.Add(scene.NewGeometryNode(parts.Terrain))
	r.Body = g.Add(scene.NewGeometryNode(parts.Body))
	r.Door = g.Add(scene.NewGeometryNode(parts.Door))
	r.MainRotor = g.Add(scene.NewGeometryNode(parts.MainRotor))

	tail := scene.NewGeometryNode(parts.TailRotor)
	tail.ReferencePoint = s.TailRotorPivot
	r.TailRotor = g.Add(tail)

	links := [][2]scene.NodeID{
		{r.Body, r.Door},
		{r.Body, r.MainRotor},
		{r.Body, r.TailRotor},
		{r.Terrain, r.Body},
		{r.Root, r.Terrain},
	}
	for _, l := range links {
		if err := g.AddChild(l[0], l[1]); err != nil {
			return nil, fmt.Errorf("assemble helicopter: %w", err)
		}
	}
	r.Advance(0)
	return r, nil
}

// Advance spins the rotors and moves the body along its heading.
func (r *Rig) Advance(elapsed float32) {
	spin := elapsed * r.settings.RotorSpeed
	r.Graph.Node(r.MainRotor).Rotation[1] = spin
	r.Graph.Node(r.TailRotor).Rotation[0] = spin

	h := r.settings.Heading(elapsed)
	body := r.Graph.Node(r.Body)
	body.Position = mgl32.Vec3{h.X, r.settings.Altitude, h.Z}
	body.Rotation = mgl32.Vec3{h.Roll, h.Pitch, h.Yaw}
}
