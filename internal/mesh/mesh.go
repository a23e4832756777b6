// Package mesh loads triangle meshes from Wavefront OBJ files into flat
// arrays ready for upload.
package mesh

import (
	"errors"
	"fmt"
	"os"
)

// ErrNoGeometry is returned when a file holds no faces.
var ErrNoGeometry = errors.New("mesh: no geometry")

// Mesh is an indexed triangle mesh with per-vertex colour and normal.
type Mesh struct {
	Name     string
	Vertices []float32 // x, y, z
	Normals  []float32 // x, y, z
	Colors   []float32 // r, g, b, a
	Indices  []uint32
}

// IndexCount is the number of indices to draw.
func (m *Mesh) IndexCount() int32 {
	return int32(len(m.Indices))
}

// VertexCount is the number of distinct vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices) / 3
}

// Paint sets every vertex to c.
func (m *Mesh) Paint(c [4]float32) {
	n := m.VertexCount()
	m.Colors = make([]float32, 0, n*4)
	for i := 0; i < n; i++ {
		m.Colors = append(m.Colors, c[:]...)
	}
}

// Helicopter holds the four parts of the helicopter model.
type Helicopter struct {
	Body      Mesh
	MainRotor Mesh
	TailRotor Mesh
	Door      Mesh
}

// HelicopterColors paints each part.
type HelicopterColors struct {
	Body, MainRotor, TailRotor, Door [4]float32
}

// LoadTerrain reads path as a single mesh painted with color.
func LoadTerrain(path string, color [4]float32) (Mesh, error) {
	objects, err := loadFile(path)
	if err != nil {
		return Mesh{}, err
	}
	m := merge(objects)
	m.Name = "terrain"
	m.Paint(color)
	return m, nil
}

// LoadHelicopter reads path, whose objects are, in file order, the body,
// main rotor, tail rotor and door.
func LoadHelicopter(path string, colors HelicopterColors) (Helicopter, error) {
	objects, err := loadFile(path)
	if err != nil {
		return Helicopter{}, err
	}
	if len(objects) < 4 {
		return Helicopter{}, fmt.Errorf("helicopter %s: want 4 objects, got %d", path, len(objects))
	}
	h := Helicopter{
		Body:      objects[0],
		MainRotor: objects[1],
		TailRotor: objects[2],
		Door:      objects[3],
	}
	h.Body.Paint(colors.Body)
	h.MainRotor.Paint(colors.MainRotor)
	h.TailRotor.Paint(colors.TailRotor)
	h.Door.Paint(colors.Door)
	return h, nil
}

func loadFile(path string) ([]Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open mesh file: %w", err)
	}
	defer f.Close()

	objects, err := DecodeOBJ(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return objects, nil
}

// merge concatenates meshes, rebasing indices.
func merge(ms []Mesh) Mesh {
	if len(ms) == 1 {
		return ms[0]
	}
	var out Mesh
	for _, m := range ms {
		base := uint32(out.VertexCount())
		out.Vertices = append(out.Vertices, m.Vertices...)
		out.Normals = append(out.Normals, m.Normals...)
		for _, i := range m.Indices {
			out.Indices = append(out.Indices, base+i)
		}
	}
	return out
}

// Stride is the number of floats per interleaved vertex.
const Stride = 3 + 4 + 3

// Interleaved packs position, colour and normal per vertex. Vertices with
// no colour are white.
func (m *Mesh) Interleaved() []float32 {
	n := m.VertexCount()
	out := make([]float32, 0, n*Stride)
	for i := 0; i < n; i++ {
		out = append(out, m.Vertices[i*3:i*3+3]...)
		if len(m.Colors) >= (i+1)*4 {
			out = append(out, m.Colors[i*4:i*4+4]...)
		} else {
			out = append(out, 1, 1, 1, 1)
		}
		if len(m.Normals) >= (i+1)*3 {
			out = append(out, m.Normals[i*3:i*3+3]...)
		} else {
			out = append(out, 0, 0, 0)
		}
	}
	return out
}
