package graphics

import (
	"heliscene/internal/mesh"
	"heliscene/internal/scene"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
)

// Upload copies m into a new vertex array: position at location 0, colour
// at 1 and normal at 2, plus a uint32 element buffer.
func Upload(m mesh.Mesh) scene.Geometry {
	vertices := m.Interleaved()

	var vao, vbo, ebo uint32
	gl.GenVertexArrays(1, &vao)
	gl.GenBuffers(1, &vbo)
	gl.GenBuffers(1, &ebo)

	gl.BindVertexArray(vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, vbo)
	if len(vertices) > 0 {
		gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, gl.Ptr(vertices), gl.STATIC_DRAW)
	}

	stride := int32(mesh.Stride * 4)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, stride, 0)
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointerWithOffset(1, 4, gl.FLOAT, false, stride, 3*4)
	gl.EnableVertexAttribArray(2)
	gl.VertexAttribPointerWithOffset(2, 3, gl.FLOAT, false, stride, 7*4)

	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, ebo)
	if len(m.Indices) > 0 {
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(m.Indices)*4, gl.Ptr(m.Indices), gl.STATIC_DRAW)
	}

	gl.BindVertexArray(0)
	return scene.Geometry{VAO: vao, Count: m.IndexCount()}
}

// Drawer issues one indexed draw per node with the node's matrices bound
// to the "MVP" and "model_matrix" uniforms of its shader.
type Drawer struct {
	Shader *Shader
}

func (d Drawer) DrawNode(g scene.Geometry, mvp, model mgl32.Mat4) {
	d.Shader.SetMatrix4("MVP", &mvp[0])
	d.Shader.SetMatrix4("model_matrix", &model[0])
	gl.BindVertexArray(g.VAO)
	gl.DrawElements(gl.TRIANGLES, g.Count, gl.UNSIGNED_INT, gl.PtrOffset(0))
}
