// Package scene implements the retained-mode scene graph: an arena of
// transform nodes addressed by NodeID and a depth-first traversal that
// composes world transforms and submits draw calls.
package scene

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

var (
	ErrUnknownNode = errors.New("scene: unknown node")
	ErrHasParent   = errors.New("scene: node already has a parent")
	ErrCycle       = errors.New("scene: attachment would create a cycle")
)

// Renderer receives one call per drawable node during Traverse.
type Renderer interface {
	DrawNode(g Geometry, mvp, model mgl32.Mat4)
}

// Graph owns every node. Parents refer to children by id only.
type Graph struct {
	nodes []Node
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{}
}

// Add stores n in the arena and returns its id. Children already set on
// n are dropped; use AddChild to build topology.
func (g *Graph) Add(n Node) NodeID {
	n.children = nil
	n.attached = false
	g.nodes = append(g.nodes, n)
	return NodeID(len(g.nodes) - 1)
}

// Len returns the number of nodes in the arena.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Node returns a pointer to the node so callers can mutate its transform.
// The pointer is invalidated by a later Add.
func (g *Graph) Node(id NodeID) *Node {
	if !g.valid(id) {
		return nil
	}
	return &g.nodes[id]
}

// AddChild appends child to parent's children.
func (g *Graph) AddChild(parent, child NodeID) error {
	if !g.valid(parent) || !g.valid(child) {
		return fmt.Errorf("%w: parent %d, child %d", ErrUnknownNode, parent, child)
	}
	if g.nodes[child].attached {
		return fmt.Errorf("%w: %d", ErrHasParent, child)
	}
	if parent == child || g.reaches(child, parent) {
		return fmt.Errorf("%w: %d under %d", ErrCycle, child, parent)
	}
	g.nodes[parent].children = append(g.nodes[parent].children, child)
	g.nodes[child].attached = true
	return nil
}

// Walk visits root and its descendants depth-first, pre-order, children
// in insertion order, calling fn with each node's world transform.
func (g *Graph) Walk(root NodeID, inherited mgl32.Mat4, fn func(id NodeID, world mgl32.Mat4)) {
	if !g.valid(root) {
		return
	}
	world := inherited.Mul4(g.nodes[root].Local())
	fn(root, world)
	for _, c := range g.nodes[root].children {
		g.Walk(c, world, fn)
	}
}

// Traverse draws root and its descendants. Nodes without drawable
// geometry are still descended into.
func (g *Graph) Traverse(root NodeID, inherited, viewProjection mgl32.Mat4, r Renderer) {
	g.Walk(root, inherited, func(id NodeID, world mgl32.Mat4) {
		geom := g.nodes[id].Geometry
		if !geom.Drawable() {
			return
		}
		r.DrawNode(geom, viewProjection.Mul4(world), world)
	})
}

func (g *Graph) valid(id NodeID) bool {
	return id >= 0 && int(id) < len(g.nodes)
}

// reaches reports whether target is from or one of its descendants.
func (g *Graph) reaches(from, target NodeID) bool {
	stack := []NodeID{from}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if id == target {
			return true
		}
		stack = append(stack, g.nodes[id].children...)
	}
	return false
}
