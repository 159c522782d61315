package envelope

import (
	"fmt"

	"nbr/internal/codec"
	"nbr/internal/records"
	"nbr/internal/resource"
)

// PixelFormat identifies the layout of pixel data.
type PixelFormat uint8

const (
	FormatRGBA8 PixelFormat = iota + 1
	FormatR8
)

// BytesPerPixel returns the pixel stride for the format.
func (f PixelFormat) BytesPerPixel() int {
	switch f {
	case FormatRGBA8:
		return 4
	case FormatR8:
		return 1
	default:
		return 0
	}
}

func (f PixelFormat) String() string {
	switch f {
	case FormatRGBA8:
		return "rgba8"
	case FormatR8:
		return "r8"
	default:
		return fmt.Sprintf("format(%d)", uint8(f))
	}
}

type Filter uint8

const (
	FilterLinear Filter = iota
	FilterNearest
)

type Wrap uint8

const (
	WrapRepeat Wrap = iota
	WrapClamp
	WrapMirror
)

// Texture is a 2D (Depth 1) or layered pixel grid.
type Texture struct {
	Width  uint32
	Height uint32
	Depth  uint32
	Format PixelFormat
	Filter Filter
	Wrap   Wrap
	Pixels []byte
}

type textureInfo struct {
	width, height, depth uint32
	format, filter, wrap uint8
	reserved             uint8
}

func (i *textureInfo) Fields() []codec.Field {
	return []codec.Field{
		codec.F("width", &i.width),
		codec.F("height", &i.height),
		codec.F("depth", &i.depth),
		codec.F("format", &i.format),
		codec.F("filter", &i.filter),
		codec.F("wrap", &i.wrap),
		codec.F("reserved", &i.reserved),
	}
}

func (t *Texture) Type() resource.Type { return resource.Texture }

func (t *Texture) Summary() string {
	return fmt.Sprintf("%dx%dx%d %s, %d bytes", t.Width, t.Height, t.Depth, t.Format, len(t.Pixels))
}

func (t *Texture) encode(s *codec.Stream) error {
	info := textureInfo{
		width: t.Width, height: t.Height, depth: t.Depth,
		format: uint8(t.Format), filter: uint8(t.Filter), wrap: uint8(t.Wrap),
	}
	if err := s.WriteRecord(&info); err != nil {
		return err
	}
	return s.WriteBlob(t.Pixels)
}

func (t *Texture) decode(s *codec.Stream) error {
	var info textureInfo
	if err := s.ReadRecord(&info); err != nil {
		return err
	}
	pixels, err := s.ReadBlob()
	if err != nil {
		return fmt.Errorf("pixels: %w", err)
	}
	*t = Texture{
		Width: info.width, Height: info.height, Depth: info.depth,
		Format: PixelFormat(info.format), Filter: Filter(info.filter), Wrap: Wrap(info.wrap),
		Pixels: pixels,
	}
	return nil
}

// CubeFaces is the number of faces in a cubemap, ordered +X, -X, +Y, -Y, +Z, -Z.
const CubeFaces = 6

type Cubemap struct {
	FaceSize uint32
	Format   PixelFormat
	Faces    [CubeFaces][]byte
}

type cubemapInfo struct {
	faceSize uint32
	format   uint8
	faces    uint8
	reserved uint16
}

func (i *cubemapInfo) Fields() []codec.Field {
	return []codec.Field{
		codec.F("face_size", &i.faceSize),
		codec.F("format", &i.format),
		codec.F("faces", &i.faces),
		codec.F("reserved", &i.reserved),
	}
}

func (c *Cubemap) Type() resource.Type { return resource.Cubemap }

func (c *Cubemap) Summary() string {
	return fmt.Sprintf("%d faces of %dx%d %s", CubeFaces, c.FaceSize, c.FaceSize, c.Format)
}

func (c *Cubemap) encode(s *codec.Stream) error {
	info := cubemapInfo{faceSize: c.FaceSize, format: uint8(c.Format), faces: CubeFaces}
	if err := s.WriteRecord(&info); err != nil {
		return err
	}
	for i := range c.Faces {
		if err := s.WriteBlob(c.Faces[i]); err != nil {
			return fmt.Errorf("face %d: %w", i, err)
		}
	}
	return nil
}

func (c *Cubemap) decode(s *codec.Stream) error {
	var info cubemapInfo
	if err := s.ReadRecord(&info); err != nil {
		return err
	}
	if info.faces != CubeFaces {
		return fmt.Errorf("%w: cubemap with %d faces", codec.ErrCorrupt, info.faces)
	}
	c.FaceSize = info.faceSize
	c.Format = PixelFormat(info.format)
	for i := range c.Faces {
		face, err := s.ReadBlob()
		if err != nil {
			return fmt.Errorf("face %d: %w", i, err)
		}
		c.Faces[i] = face
	}
	return nil
}

// Shader holds GLSL stage sources; absent stages are empty.
type Shader struct {
	Vertex   string
	Fragment string
	Compute  string
}

func (sh *Shader) Type() resource.Type { return resource.Shader }

func (sh *Shader) Summary() string {
	var stages []string
	for _, st := range []struct {
		name string
		src  string
	}{{"vertex", sh.Vertex}, {"fragment", sh.Fragment}, {"compute", sh.Compute}} {
		if st.src != "" {
			stages = append(stages, st.name)
		}
	}
	return fmt.Sprintf("stages %v", stages)
}

func (sh *Shader) encode(s *codec.Stream) error {
	for _, src := range []string{sh.Vertex, sh.Fragment, sh.Compute} {
		if err := s.WriteText(src); err != nil {
			return err
		}
	}
	return nil
}

func (sh *Shader) decode(s *codec.Stream) error {
	for _, dst := range []*string{&sh.Vertex, &sh.Fragment, &sh.Compute} {
		src, err := s.ReadText()
		if err != nil {
			return err
		}
		*dst = src
	}
	return nil
}

// VertexStride is the number of floats per model vertex:
// position xyz, normal xyz, uv.
const VertexStride = 8

type Mesh struct {
	Vertices []float32
	Indices  []uint32
	Material uint32
}

type Material struct {
	Name       string
	Diffuse    records.Color
	DiffuseMap string
	NormalMap  string
}

type Model struct {
	Meshes    []Mesh
	Materials []Material
}

func (m *Model) Type() resource.Type { return resource.Model }

func (m *Model) Summary() string {
	vertices, indices := 0, 0
	for _, mesh := range m.Meshes {
		vertices += len(mesh.Vertices) / VertexStride
		indices += len(mesh.Indices)
	}
	return fmt.Sprintf("%d meshes, %d vertices, %d indices, %d materials",
		len(m.Meshes), vertices, indices, len(m.Materials))
}

func (m *Model) encode(s *codec.Stream) error {
	if err := s.WriteU32(uint32(len(m.Meshes))); err != nil {
		return err
	}
	for i, mesh := range m.Meshes {
		if err := s.WriteU32(mesh.Material); err != nil {
			return fmt.Errorf("mesh %d: %w", i, err)
		}
		if err := s.WriteF32s(mesh.Vertices); err != nil {
			return fmt.Errorf("mesh %d vertices: %w", i, err)
		}
		if err := s.WriteU32s(mesh.Indices); err != nil {
			return fmt.Errorf("mesh %d indices: %w", i, err)
		}
	}
	if err := s.WriteU32(uint32(len(m.Materials))); err != nil {
		return err
	}
	for i := range m.Materials {
		mat := &m.Materials[i]
		if err := s.WriteText(mat.Name); err != nil {
			return fmt.Errorf("material %d: %w", i, err)
		}
		if err := s.WriteRecord(&mat.Diffuse); err != nil {
			return fmt.Errorf("material %d: %w", i, err)
		}
		if err := s.WriteText(mat.DiffuseMap); err != nil {
			return fmt.Errorf("material %d: %w", i, err)
		}
		if err := s.WriteText(mat.NormalMap); err != nil {
			return fmt.Errorf("material %d: %w", i, err)
		}
	}
	return nil
}

func (m *Model) decode(s *codec.Stream) error {
	meshes, err := readLength(s, "mesh")
	if err != nil {
		return err
	}
	m.Meshes = make([]Mesh, meshes)
	for i := range m.Meshes {
		mesh := &m.Meshes[i]
		if mesh.Material, err = s.ReadU32(); err != nil {
			return fmt.Errorf("mesh %d: %w", i, err)
		}
		if mesh.Vertices, err = s.ReadF32s(); err != nil {
			return fmt.Errorf("mesh %d vertices: %w", i, err)
		}
		if mesh.Indices, err = s.ReadU32s(); err != nil {
			return fmt.Errorf("mesh %d indices: %w", i, err)
		}
	}
	materials, err := readLength(s, "material")
	if err != nil {
		return err
	}
	m.Materials = make([]Material, materials)
	for i := range m.Materials {
		mat := &m.Materials[i]
		if mat.Name, err = s.ReadText(); err != nil {
			return fmt.Errorf("material %d: %w", i, err)
		}
		if err = s.ReadRecord(&mat.Diffuse); err != nil {
			return fmt.Errorf("material %d: %w", i, err)
		}
		if mat.DiffuseMap, err = s.ReadText(); err != nil {
			return fmt.Errorf("material %d: %w", i, err)
		}
		if mat.NormalMap, err = s.ReadText(); err != nil {
			return fmt.Errorf("material %d: %w", i, err)
		}
	}
	return nil
}

// Glyph is a rasterized character. Pixels are R8 coverage, Width*Height bytes.
type Glyph struct {
	Rune    rune
	Width   uint32
	Height  uint32
	OffsetX int32
	OffsetY int32
	Advance float32
	Pixels  []byte
}

type glyphInfo struct {
	r               int32
	width, height   uint32
	offsetX, offsetY int32
	advance         float32
}

func (g *glyphInfo) Fields() []codec.Field {
	return []codec.Field{
		codec.F("rune", &g.r),
		codec.F("width", &g.width),
		codec.F("height", &g.height),
		codec.F("offset_x", &g.offsetX),
		codec.F("offset_y", &g.offsetY),
		codec.F("advance", &g.advance),
	}
}

type Font struct {
	Size    float32
	Ascent  float32
	Descent float32
	LineGap float32
	Glyphs  []Glyph
}

type fontMetrics struct {
	size, ascent, descent, lineGap float32
}

func (f *fontMetrics) Fields() []codec.Field {
	return []codec.Field{
		codec.F("size", &f.size),
		codec.F("ascent", &f.ascent),
		codec.F("descent", &f.descent),
		codec.F("line_gap", &f.lineGap),
	}
}

func (f *Font) Type() resource.Type { return resource.Font }

func (f *Font) Summary() string {
	return fmt.Sprintf("%d glyphs at %gpx", len(f.Glyphs), f.Size)
}

func (f *Font) encode(s *codec.Stream) error {
	metrics := fontMetrics{size: f.Size, ascent: f.Ascent, descent: f.Descent, lineGap: f.LineGap}
	if err := s.WriteRecord(&metrics); err != nil {
		return err
	}
	if err := s.WriteU32(uint32(len(f.Glyphs))); err != nil {
		return err
	}
	for i, g := range f.Glyphs {
		info := glyphInfo{r: g.Rune, width: g.Width, height: g.Height, offsetX: g.OffsetX, offsetY: g.OffsetY, advance: g.Advance}
		if err := s.WriteRecord(&info); err != nil {
			return fmt.Errorf("glyph %d: %w", i, err)
		}
		if err := s.WriteBlob(g.Pixels); err != nil {
			return fmt.Errorf("glyph %d: %w", i, err)
		}
	}
	return nil
}

func (f *Font) decode(s *codec.Stream) error {
	var metrics fontMetrics
	if err := s.ReadRecord(&metrics); err != nil {
		return err
	}
	f.Size, f.Ascent, f.Descent, f.LineGap = metrics.size, metrics.ascent, metrics.descent, metrics.lineGap
	count, err := readLength(s, "glyph")
	if err != nil {
		return err
	}
	f.Glyphs = make([]Glyph, count)
	for i := range f.Glyphs {
		var info glyphInfo
		if err := s.ReadRecord(&info); err != nil {
			return fmt.Errorf("glyph %d: %w", i, err)
		}
		pixels, err := s.ReadBlob()
		if err != nil {
			return fmt.Errorf("glyph %d: %w", i, err)
		}
		f.Glyphs[i] = Glyph{
			Rune: info.r, Width: info.width, Height: info.height,
			OffsetX: info.offsetX, OffsetY: info.offsetY, Advance: info.advance,
			Pixels: pixels,
		}
	}
	return nil
}

// SampleFormat is the width of one PCM sample.
type SampleFormat uint8

const (
	SampleU8 SampleFormat = iota + 1
	SampleS16
	SampleS24
	SampleS32
)

// BitDepth returns the sample width in bits.
func (f SampleFormat) BitDepth() int {
	switch f {
	case SampleU8:
		return 8
	case SampleS16:
		return 16
	case SampleS24:
		return 24
	case SampleS32:
		return 32
	default:
		return 0
	}
}

// Audio is interleaved little-endian PCM.
type Audio struct {
	Format     SampleFormat
	Channels   uint16
	SampleRate uint32
	Samples    []byte
}

type audioInfo struct {
	format     uint8
	reserved   uint8
	channels   uint16
	sampleRate uint32
}

func (a *audioInfo) Fields() []codec.Field {
	return []codec.Field{
		codec.F("format", &a.format),
		codec.F("reserved", &a.reserved),
		codec.F("channels", &a.channels),
		codec.F("sample_rate", &a.sampleRate),
	}
}

func (a *Audio) Type() resource.Type { return resource.AudioBuffer }

// Frames returns the number of sample frames.
func (a *Audio) Frames() int {
	stride := a.Format.BitDepth() / 8 * int(a.Channels)
	if stride == 0 {
		return 0
	}
	return len(a.Samples) / stride
}

func (a *Audio) Summary() string {
	return fmt.Sprintf("%d-bit %d ch @ %d Hz, %d frames", a.Format.BitDepth(), a.Channels, a.SampleRate, a.Frames())
}

func (a *Audio) encode(s *codec.Stream) error {
	info := audioInfo{format: uint8(a.Format), channels: a.Channels, sampleRate: a.SampleRate}
	if err := s.WriteRecord(&info); err != nil {
		return err
	}
	return s.WriteBlob(a.Samples)
}

func (a *Audio) decode(s *codec.Stream) error {
	var info audioInfo
	if err := s.ReadRecord(&info); err != nil {
		return err
	}
	samples, err := s.ReadBlob()
	if err != nil {
		return fmt.Errorf("samples: %w", err)
	}
	*a = Audio{Format: SampleFormat(info.format), Channels: info.channels, SampleRate: info.sampleRate, Samples: samples}
	return nil
}

func readLength(s *codec.Stream, what string) (int, error) {
	n, err := s.ReadU32()
	if err != nil {
		return 0, fmt.Errorf("%s count: %w", what, err)
	}
	if n > codec.MaxTextLength/16 {
		return 0, fmt.Errorf("%w: %s count %d", codec.ErrCorrupt, what, n)
	}
	return int(n), nil
}
