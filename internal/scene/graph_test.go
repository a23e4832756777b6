package scene

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tol = 1e-5

type draw struct {
	geom       Geometry
	mvp, model mgl32.Mat4
}

type recorder struct {
	draws []draw
}

func (r *recorder) DrawNode(g Geometry, mvp, model mgl32.Mat4) {
	r.draws = append(r.draws, draw{geom: g, mvp: mvp, model: model})
}

func assertVec3(t *testing.T, want, got mgl32.Vec3) {
	t.Helper()
	assert.Truef(t, want.ApproxEqualThreshold(got, tol), "want %v, got %v", want, got)
}

func assertMat4(t *testing.T, want, got mgl32.Mat4) {
	t.Helper()
	assert.Truef(t, want.ApproxEqualThreshold(got, tol), "want\n%v\ngot\n%v", want, got)
}

func transformPoint(m mgl32.Mat4, p mgl32.Vec3) mgl32.Vec3 {
	return m.Mul4x1(p.Vec4(1)).Vec3()
}

func TestLocalPivotedRotationAndScale(t *testing.T) {
	n := NewNode()
	n.Position = mgl32.Vec3{10, 0, 0}
	n.ReferencePoint = mgl32.Vec3{0, 0, 1}
	n.Rotation = mgl32.Vec3{0, 0, math.Pi / 2}
	n.Scale = mgl32.Vec3{2, 2, 2}

	// (1,0,1) -> scale (2,0,2) -> unpivot (2,0,1) -> Rz90 (0,2,1) -> pivot (0,2,2) -> move (10,2,2)
	assertVec3(t, mgl32.Vec3{10, 2, 2}, transformPoint(n.Local(), mgl32.Vec3{1, 0, 1}))
}

func TestLocalRotationOrderIsXYZ(t *testing.T) {
	n := NewNode()
	n.Rotation = mgl32.Vec3{math.Pi / 2, math.Pi / 2, 0}

	// Ry90 maps (1,0,0) to (0,0,-1), then Rx90 maps that to (0,1,0).
	assertVec3(t, mgl32.Vec3{0, 1, 0}, transformPoint(n.Local(), mgl32.Vec3{1, 0, 0}))

	want := mgl32.HomogRotate3DX(math.Pi / 2).Mul4(mgl32.HomogRotate3DY(math.Pi / 2))
	assertMat4(t, want, n.Local())
}

func TestLocalMatchesExplicitProduct(t *testing.T) {
	n := Node{
		Position:       mgl32.Vec3{1, 2, 3},
		Rotation:       mgl32.Vec3{0.3, -0.7, 1.1},
		Scale:          mgl32.Vec3{0.5, 2, 3},
		ReferencePoint: mgl32.Vec3{0.35, 2.3, 10.4},
	}
	want := mgl32.Translate3D(1, 2, 3).
		Mul4(mgl32.Translate3D(0.35, 2.3, 10.4)).
		Mul4(mgl32.HomogRotate3DX(0.3)).
		Mul4(mgl32.HomogRotate3DY(-0.7)).
		Mul4(mgl32.HomogRotate3DZ(1.1)).
		Mul4(mgl32.Translate3D(-0.35, -2.3, -10.4)).
		Mul4(mgl32.Scale3D(0.5, 2, 3))
	assertMat4(t, want, n.Local())
}

func TestWorldComposesAlongChain(t *testing.T) {
	g := New()
	root := NewNode()
	root.Position = mgl32.Vec3{0, 5, 0}
	mid := NewNode()
	mid.Rotation = mgl32.Vec3{0, math.Pi / 2, 0}
	leaf := NewGeometryNode(Geometry{VAO: 1, Count: 3})
	leaf.Position = mgl32.Vec3{1, 0, 0}
	leaf.Scale = mgl32.Vec3{2, 2, 2}

	rootID := g.Add(root)
	midID := g.Add(mid)
	leafID := g.Add(leaf)
	require.NoError(t, g.AddChild(rootID, midID))
	require.NoError(t, g.AddChild(midID, leafID))

	worlds := map[NodeID]mgl32.Mat4{}
	g.Walk(rootID, mgl32.Ident4(), func(id NodeID, world mgl32.Mat4) {
		worlds[id] = world
	})
	require.Len(t, worlds, 3)

	assertMat4(t, worlds[midID].Mul4(g.Node(leafID).Local()), worlds[leafID])
	assertMat4(t, worlds[rootID].Mul4(g.Node(midID).Local()), worlds[midID])

	// leaf origin -> (1,0,0) -> Ry90 (0,0,-1) -> root (0,5,-1)
	assertVec3(t, mgl32.Vec3{0, 5, -1}, transformPoint(worlds[leafID], mgl32.Vec3{}))

	vp := mgl32.Perspective(mgl32.DegToRad(45), 4.0/3.0, 0.1, 1000)
	r := &recorder{}
	g.Traverse(rootID, mgl32.Ident4(), vp, r)
	require.Len(t, r.draws, 1)
	assertMat4(t, worlds[leafID], r.draws[0].model)
	assertMat4(t, vp.Mul4(worlds[leafID]), r.draws[0].mvp)
}

func TestInheritedTransformIsApplied(t *testing.T) {
	g := New()
	id := g.Add(NewGeometryNode(Geometry{VAO: 4, Count: 6}))
	inherited := mgl32.Translate3D(3, 0, 0)

	r := &recorder{}
	g.Traverse(id, inherited, mgl32.Ident4(), r)
	require.Len(t, r.draws, 1)
	assertMat4(t, inherited, r.draws[0].model)
}

func TestWalkVisitsChildrenInInsertionOrder(t *testing.T) {
	g := New()
	root := g.Add(NewNode())
	a := g.Add(NewGeometryNode(Geometry{VAO: 1, Count: 3}))
	b := g.Add(NewNode())
	c := g.Add(NewGeometryNode(Geometry{VAO: 3, Count: 3}))
	grandchild := g.Add(NewGeometryNode(Geometry{VAO: 2, Count: 3}))
	for _, child := range []NodeID{c, a, b} {
		require.NoError(t, g.AddChild(root, child))
	}
	require.NoError(t, g.AddChild(c, grandchild))

	var order []NodeID
	g.Walk(root, mgl32.Ident4(), func(id NodeID, _ mgl32.Mat4) {
		order = append(order, id)
	})
	assert.Equal(t, []NodeID{root, c, grandchild, a, b}, order)

	r := &recorder{}
	g.Traverse(root, mgl32.Ident4(), mgl32.Ident4(), r)
	var vaos []uint32
	for _, d := range r.draws {
		vaos = append(vaos, d.geom.VAO)
	}
	assert.Equal(t, []uint32{3, 2, 1}, vaos)
}

func TestPivotOnlyNodeIsNotDrawn(t *testing.T) {
	for name, pivot := range map[string]Geometry{
		"no handle":   {VAO: 0, Count: 12},
		"zero count":  {VAO: 7, Count: 0},
		"zero values": {},
	} {
		t.Run(name, func(t *testing.T) {
			g := New()
			p := NewGeometryNode(pivot)
			p.Position = mgl32.Vec3{0, 0, -4}
			pivotID := g.Add(p)
			childID := g.Add(NewGeometryNode(Geometry{VAO: 9, Count: 36}))
			require.NoError(t, g.AddChild(pivotID, childID))

			r := &recorder{}
			g.Traverse(pivotID, mgl32.Ident4(), mgl32.Ident4(), r)
			require.Len(t, r.draws, 1)
			assert.Equal(t, uint32(9), r.draws[0].geom.VAO)
			assertMat4(t, mgl32.Translate3D(0, 0, -4), r.draws[0].model)
		})
	}
}

func TestSingleEmptyRoot(t *testing.T) {
	g := New()
	root := g.Add(NewNode())
	r := &recorder{}
	assert.NotPanics(t, func() {
		g.Traverse(root, mgl32.Ident4(), mgl32.Ident4(), r)
	})
	assert.Empty(t, r.draws)
}

func TestDeepChain(t *testing.T) {
	const depth = 500
	g := New()
	prev := g.Add(NewNode())
	root := prev
	for i := 0; i < depth; i++ {
		n := NewGeometryNode(Geometry{VAO: 1, Count: 3})
		n.Position = mgl32.Vec3{0, 1, 0}
		id := g.Add(n)
		require.NoError(t, g.AddChild(prev, id))
		prev = id
	}

	r := &recorder{}
	g.Traverse(root, mgl32.Ident4(), mgl32.Ident4(), r)
	require.Len(t, r.draws, depth)
	assertVec3(t, mgl32.Vec3{0, depth, 0}, transformPoint(r.draws[depth-1].model, mgl32.Vec3{}))
}

func TestAddChildRejectsBadTopology(t *testing.T) {
	g := New()
	a := g.Add(NewNode())
	b := g.Add(NewNode())
	c := g.Add(NewNode())
	require.NoError(t, g.AddChild(a, b))
	require.NoError(t, g.AddChild(b, c))

	assert.ErrorIs(t, g.AddChild(a, a), ErrCycle)
	assert.ErrorIs(t, g.AddChild(c, a), ErrCycle)
	assert.ErrorIs(t, g.AddChild(a, c), ErrHasParent)
	assert.ErrorIs(t, g.AddChild(a, NodeID(42)), ErrUnknownNode)
	assert.ErrorIs(t, g.AddChild(NodeID(-1), b), ErrUnknownNode)

	assert.Equal(t, []NodeID{b}, g.Node(a).Children())
	assert.Nil(t, g.Node(NodeID(99)))
}

func TestAddDropsPresetChildren(t *testing.T) {
	g := New()
	a := g.Add(NewNode())
	n := NewNode()
	n.children = []NodeID{a}
	id := g.Add(n)
	assert.Empty(t, g.Node(id).Children())
	assert.Equal(t, 2, g.Len())
}

func BenchmarkTraverseHelicopterShape(b *testing.B) {
	g := New()
	root := g.Add(NewNode())
	terrain := g.Add(NewGeometryNode(Geometry{VAO: 1, Count: 1000}))
	body := g.Add(NewGeometryNode(Geometry{VAO: 2, Count: 1000}))
	_ = g.AddChild(root, terrain)
	_ = g.AddChild(terrain, body)
	for i := 0; i < 3; i++ {
		_ = g.AddChild(body, g.Add(NewGeometryNode(Geometry{VAO: uint32(3 + i), Count: 100})))
	}
	r := &recorder{draws: make([]draw, 0, 8)}
	vp := mgl32.Perspective(mgl32.DegToRad(45), 4.0/3.0, 0.1, 1000)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r.draws = r.draws[:0]
		g.Traverse(root, mgl32.Ident4(), vp, r)
	}
}
