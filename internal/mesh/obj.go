package mesh

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

// DecodeOBJ reads Wavefront OBJ text and returns one mesh per object, in
// file order. Polygons are fan-triangulated. Each distinct (position,
// normal) pair becomes one output vertex so a single index buffer serves
// both attributes. Faces without normals get a flat face normal.
func DecodeOBJ(r io.Reader) ([]Mesh, error) {
	d := &decoder{}
	d.begin("unnamed")

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for sc.Scan() {
		line++
		if err := d.parseLine(sc.Text()); err != nil {
			return nil, fmt.Errorf("obj line %d: %w", line, err)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read obj: %w", err)
	}
	d.finish()
	if len(d.objects) == 0 {
		return nil, ErrNoGeometry
	}
	return d.objects, nil
}

type vertexKey struct {
	pos, norm int
}

type decoder struct {
	positions []mgl32.Vec3
	normals   []mgl32.Vec3

	objects []Mesh
	cur     Mesh
	seen    map[vertexKey]uint32
}

func (d *decoder) begin(name string) {
	d.cur = Mesh{Name: name}
	d.seen = make(map[vertexKey]uint32)
}

// finish keeps the current object only if it has faces.
func (d *decoder) finish() {
	if len(d.cur.Indices) > 0 {
		d.objects = append(d.objects, d.cur)
	}
}

func (d *decoder) parseLine(text string) error {
	if i := strings.IndexByte(text, '#'); i >= 0 {
		text = text[:i]
	}
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return nil
	}
	switch fields[0] {
	case "o", "g":
		name := "unnamed"
		if len(fields) > 1 {
			name = strings.Join(fields[1:], " ")
		}
		if len(d.cur.Indices) == 0 {
			d.cur.Name = name
			return nil
		}
		d.finish()
		d.begin(name)
	case "v":
		v, err := parseVec3(fields[1:])
		if err != nil {
			return fmt.Errorf("vertex: %w", err)
		}
		d.positions = append(d.positions, v)
	case "vn":
		v, err := parseVec3(fields[1:])
		if err != nil {
			return fmt.Errorf("normal: %w", err)
		}
		d.normals = append(d.normals, v)
	case "f":
		return d.parseFace(fields[1:])
	}
	// vt, s, usemtl, mtllib and the rest carry nothing we draw.
	return nil
}

func parseVec3(fields []string) (mgl32.Vec3, error) {
	var v mgl32.Vec3
	if len(fields) < 3 {
		return v, fmt.Errorf("want 3 components, got %d", len(fields))
	}
	for i := 0; i < 3; i++ {
		f, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return v, err
		}
		v[i] = float32(f)
	}
	return v, nil
}

type corner struct {
	pos, norm int // norm is -1 when absent
}

func (d *decoder) parseFace(fields []string) error {
	if len(fields) < 3 {
		return fmt.Errorf("face: want at least 3 vertices, got %d", len(fields))
	}
	corners := make([]corner, len(fields))
	for i, f := range fields {
		c, err := d.parseCorner(f)
		if err != nil {
			return fmt.Errorf("face: %w", err)
		}
		corners[i] = c
	}

	// Corners without a normal, including those of a face that names
	// normals only on some corners, share one flat face normal.
	flat := -1
	for i := range corners {
		if corners[i].norm >= 0 {
			continue
		}
		if flat < 0 {
			d.normals = append(d.normals, d.faceNormal(corners))
			flat = len(d.normals) - 1
		}
		corners[i].norm = flat
	}

	for i := 1; i+1 < len(corners); i++ {
		d.emit(corners[0])
		d.emit(corners[i])
		d.emit(corners[i+1])
	}
	return nil
}

// parseCorner reads v, v/vt, v//vn or v/vt/vn.
func (d *decoder) parseCorner(s string) (corner, error) {
	parts := strings.Split(s, "/")
	pos, err := resolveIndex(parts[0], len(d.positions))
	if err != nil {
		return corner{}, fmt.Errorf("position %q: %w", s, err)
	}
	c := corner{pos: pos, norm: -1}
	if len(parts) == 3 && parts[2] != "" {
		c.norm, err = resolveIndex(parts[2], len(d.normals))
		if err != nil {
			return corner{}, fmt.Errorf("normal %q: %w", s, err)
		}
	}
	return c, nil
}

var errZeroIndex = errors.New("index 0 is invalid")

// resolveIndex turns a 1-based or negative relative OBJ index into a
// 0-based one.
func resolveIndex(s string, count int) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	switch {
	case v > 0:
		v--
	case v < 0:
		v += count
	default:
		return 0, errZeroIndex
	}
	if v < 0 || v >= count {
		return 0, fmt.Errorf("index out of range [0,%d)", count)
	}
	return v, nil
}

func (d *decoder) faceNormal(c []corner) mgl32.Vec3 {
	a := d.positions[c[0].pos]
	b := d.positions[c[1].pos]
	e := d.positions[c[2].pos]
	n := b.Sub(a).Cross(e.Sub(a))
	if n.Len() == 0 {
		return mgl32.Vec3{0, 1, 0}
	}
	return n.Normalize()
}

func (d *decoder) emit(c corner) {
	key := vertexKey{c.pos, c.norm}
	idx, ok := d.seen[key]
	if !ok {
		idx = uint32(d.cur.VertexCount())
		p := d.positions[c.pos]
		n := d.normals[c.norm]
		d.cur.Vertices = append(d.cur.Vertices, p[0], p[1], p[2])
		d.cur.Normals = append(d.cur.Normals, n[0], n[1], n[2])
		d.seen[key] = idx
	}
	d.cur.Indices = append(d.cur.Indices, idx)
}
