package loaders

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ObjVertexStride is the number of floats per vertex: position xyz,
// normal xyz, uv.
const ObjVertexStride = 8

// ObjMesh is the geometry drawn with one material.
type ObjMesh struct {
	Material string
	Vertices []float32
	Indices  []uint32
}

// ObjMaterial is the subset of an MTL entry the engine uses.
type ObjMaterial struct {
	Name       string
	Diffuse    [4]float32
	DiffuseMap string
	NormalMap  string
}

// ObjModel is a triangulated Wavefront model split per material.
type ObjModel struct {
	Meshes    []ObjMesh
	Materials []ObjMaterial
}

func (m *ObjModel) Release() {
	m.Meshes = nil
	m.Materials = nil
}

// MaterialIndex returns the index of the named material, or -1.
func (m *ObjModel) MaterialIndex(name string) int {
	for i, mat := range m.Materials {
		if mat.Name == name {
			return i
		}
	}
	return -1
}

type objRef struct{ v, vt, vn int }

type meshBuilder struct {
	mesh  ObjMesh
	index map[objRef]uint32
}

type objParser struct {
	dir       string
	positions [][3]float32
	normals   [][3]float32
	uvs       [][2]float32
	meshes    []*meshBuilder
	current   *meshBuilder
	materials []ObjMaterial
}

// LoadModel parses a Wavefront OBJ file and any MTL libraries it references.
func LoadModel(path string) (*ObjModel, error) {
	if ext(path) != ".obj" {
		return nil, unsupported(path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	p := &objParser{dir: filepath.Dir(path)}
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		if err := p.parseLine(scanner.Text()); err != nil {
			return nil, fmt.Errorf("%w: %s:%d: %v", ErrMalformed, filepath.Base(path), line, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	model := &ObjModel{Materials: p.materials}
	for _, b := range p.meshes {
		if len(b.mesh.Indices) > 0 {
			model.Meshes = append(model.Meshes, b.mesh)
		}
	}
	if len(model.Meshes) == 0 {
		return nil, fmt.Errorf("%w: %s has no faces", ErrMalformed, filepath.Base(path))
	}
	return model, nil
}

func (p *objParser) parseLine(text string) error {
	if i := strings.IndexByte(text, '#'); i >= 0 {
		text = text[:i]
	}
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return nil
	}
	args := fields[1:]
	switch fields[0] {
	case "v":
		v, err := parseFloats(args, 3)
		if err != nil {
			return err
		}
		p.positions = append(p.positions, [3]float32{v[0], v[1], v[2]})
	case "vn":
		v, err := parseFloats(args, 3)
		if err != nil {
			return err
		}
		p.normals = append(p.normals, [3]float32{v[0], v[1], v[2]})
	case "vt":
		v, err := parseFloats(args, 2)
		if err != nil {
			return err
		}
		p.uvs = append(p.uvs, [2]float32{v[0], v[1]})
	case "f":
		return p.face(args)
	case "usemtl":
		if len(args) == 0 {
			return fmt.Errorf("usemtl without a name")
		}
		p.useMaterial(strings.Join(args, " "))
	case "mtllib":
		for _, lib := range args {
			if err := p.loadMaterials(filepath.Join(p.dir, lib)); err != nil {
				return err
			}
		}
	}
	return nil
}

func (p *objParser) useMaterial(name string) {
	for _, b := range p.meshes {
		if b.mesh.Material == name {
			p.current = b
			return
		}
	}
	p.current = &meshBuilder{mesh: ObjMesh{Material: name}, index: make(map[objRef]uint32)}
	p.meshes = append(p.meshes, p.current)
}

func (p *objParser) face(args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("face with %d vertices", len(args))
	}
	if p.current == nil {
		p.useMaterial("")
	}
	refs := make([]uint32, len(args))
	for i, arg := range args {
		ref, err := p.resolve(arg)
		if err != nil {
			return err
		}
		refs[i] = p.current.vertex(ref, p)
	}
	for i := 1; i+1 < len(refs); i++ {
		p.current.mesh.Indices = append(p.current.mesh.Indices, refs[0], refs[i], refs[i+1])
	}
	return nil
}

func (p *objParser) resolve(arg string) (objRef, error) {
	parts := strings.Split(arg, "/")
	if len(parts) > 3 {
		return objRef{}, fmt.Errorf("bad vertex reference %q", arg)
	}
	var ref objRef
	var err error
	if ref.v, err = objIndex(parts[0], len(p.positions)); err != nil || ref.v < 0 {
		return objRef{}, fmt.Errorf("bad position index in %q", arg)
	}
	ref.vt, ref.vn = -1, -1
	if len(parts) > 1 && parts[1] != "" {
		if ref.vt, err = objIndex(parts[1], len(p.uvs)); err != nil || ref.vt < 0 {
			return objRef{}, fmt.Errorf("bad uv index in %q", arg)
		}
	}
	if len(parts) > 2 && parts[2] != "" {
		if ref.vn, err = objIndex(parts[2], len(p.normals)); err != nil || ref.vn < 0 {
			return objRef{}, fmt.Errorf("bad normal index in %q", arg)
		}
	}
	return ref, nil
}

// objIndex converts a 1-based (or negative, relative) OBJ index to a 0-based
// one, returning -1 when it is out of range.
func objIndex(s string, n int) (int, error) {
	i, err := strconv.Atoi(s)
	if err != nil {
		return -1, err
	}
	switch {
	case i > 0 && i <= n:
		return i - 1, nil
	case i < 0 && -i <= n:
		return n + i, nil
	default:
		return -1, nil
	}
}

func (b *meshBuilder) vertex(ref objRef, p *objParser) uint32 {
	if idx, ok := b.index[ref]; ok {
		return idx
	}
	pos := p.positions[ref.v]
	var normal [3]float32
	var uv [2]float32
	if ref.vn >= 0 {
		normal = p.normals[ref.vn]
	}
	if ref.vt >= 0 {
		uv = p.uvs[ref.vt]
	}
	idx := uint32(len(b.mesh.Vertices) / ObjVertexStride)
	b.mesh.Vertices = append(b.mesh.Vertices, pos[0], pos[1], pos[2], normal[0], normal[1], normal[2], uv[0], uv[1])
	b.index[ref] = idx
	return idx
}

func (p *objParser) loadMaterials(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("material library: %w", err)
	}
	defer f.Close()

	current := -1
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		args := fields[1:]
		if fields[0] == "newmtl" {
			p.materials = append(p.materials, ObjMaterial{Name: strings.Join(args, " "), Diffuse: [4]float32{1, 1, 1, 1}})
			current = len(p.materials) - 1
			continue
		}
		if current < 0 {
			continue
		}
		mat := &p.materials[current]
		switch fields[0] {
		case "Kd":
			v, err := parseFloats(args, 3)
			if err != nil {
				return fmt.Errorf("%s: Kd: %w", filepath.Base(path), err)
			}
			copy(mat.Diffuse[:3], v)
		case "d":
			v, err := parseFloats(args, 1)
			if err != nil {
				return fmt.Errorf("%s: d: %w", filepath.Base(path), err)
			}
			mat.Diffuse[3] = v[0]
		case "map_Kd":
			if len(args) > 0 {
				mat.DiffuseMap = args[len(args)-1]
			}
		case "map_Bump", "map_bump", "bump", "norm":
			if len(args) > 0 {
				mat.NormalMap = args[len(args)-1]
			}
		}
	}
	return scanner.Err()
}

func parseFloats(args []string, n int) ([]float32, error) {
	if len(args) < n {
		return nil, fmt.Errorf("want %d values, have %d", n, len(args))
	}
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		v, err := strconv.ParseFloat(args[i], 32)
		if err != nil {
			return nil, err
		}
		out[i] = float32(v)
	}
	return out, nil
}
