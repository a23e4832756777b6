package scene

import "github.com/go-gl/mathgl/mgl32"

// NodeID addresses a node inside a Graph.
type NodeID int

// Geometry references GPU-resident vertex/index data.
type Geometry struct {
	VAO   uint32
	Count int32 // number of indices to draw
}

// Drawable reports whether the geometry can issue a draw call.
func (g Geometry) Drawable() bool {
	return g.VAO != 0 && g.Count > 0
}

// Node is a transform plus optional geometry.
type Node struct {
	Position       mgl32.Vec3
	Rotation       mgl32.Vec3 // Euler angles in radians, applied X then Y then Z
	Scale          mgl32.Vec3
	ReferencePoint mgl32.Vec3 // pivot for rotation and scale
	Geometry       Geometry

	children []NodeID
	attached bool
}

// NewNode returns an empty node with unit scale.
func NewNode() Node {
	return Node{Scale: mgl32.Vec3{1, 1, 1}}
}

// NewGeometryNode returns a unit-scale node drawing g.
func NewGeometryNode(g Geometry) Node {
	n := NewNode()
	n.Geometry = g
	return n
}

// Children returns the node's children in draw order.
func (n *Node) Children() []NodeID {
	out := make([]NodeID, len(n.children))
	copy(out, n.children)
	return out
}

// Local composes the node's transform relative to its parent:
// T(position) * T(ref) * Rx * Ry * Rz * T(-ref) * S(scale).
func (n *Node) Local() mgl32.Mat4 {
	ref := n.ReferencePoint
	m := mgl32.Translate3D(n.Position.X(), n.Position.Y(), n.Position.Z())
	m = m.Mul4(mgl32.Translate3D(ref.X(), ref.Y(), ref.Z()))
	m = m.Mul4(mgl32.HomogRotate3DX(n.Rotation.X()))
	m = m.Mul4(mgl32.HomogRotate3DY(n.Rotation.Y()))
	m = m.Mul4(mgl32.HomogRotate3DZ(n.Rotation.Z()))
	m = m.Mul4(mgl32.Translate3D(-ref.X(), -ref.Y(), -ref.Z()))
	return m.Mul4(mgl32.Scale3D(n.Scale.X(), n.Scale.Y(), n.Scale.Z()))
}
