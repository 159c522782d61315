package loaders

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// Default rasterization settings.
const (
	DefaultFontSize = 48.0
	DefaultFontDPI  = 72.0

	FirstGlyph rune = 32
	LastGlyph  rune = 126
)

// FontOptions controls glyph rasterization.
type FontOptions struct {
	Size float64
	DPI  float64
}

func (o FontOptions) withDefaults() FontOptions {
	if o.Size <= 0 {
		o.Size = DefaultFontSize
	}
	if o.DPI <= 0 {
		o.DPI = DefaultFontDPI
	}
	return o
}

// FontFace is an open, sized font face. Release closes it.
type FontFace struct {
	Size    float64
	Ascent  float32
	Descent float32
	LineGap float32
	face    font.Face
}

// GlyphBitmap is one rasterized character; Pixels hold 8-bit coverage.
type GlyphBitmap struct {
	Rune    rune
	Width   int
	Height  int
	OffsetX int
	OffsetY int
	Advance float32
	Pixels  []byte
}

// LoadFont parses a TrueType or OpenType font and opens a face at the
// requested size.
func LoadFont(path string, opts FontOptions) (*FontFace, error) {
	switch ext(path) {
	case ".ttf", ".otf":
	default:
		return nil, unsupported(path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	parsed, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrMalformed, filepath.Base(path), err)
	}
	opts = opts.withDefaults()
	face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    opts.Size,
		DPI:     opts.DPI,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrMalformed, filepath.Base(path), err)
	}
	m := face.Metrics()
	return &FontFace{
		Size:    opts.Size,
		Ascent:  fixedToFloat(m.Ascent),
		Descent: fixedToFloat(m.Descent),
		LineGap: fixedToFloat(m.Height - m.Ascent - m.Descent),
		face:    face,
	}, nil
}

// Rasterize renders every rune in [first, last] the face can draw. Offsets
// are relative to the pen position on the baseline.
func (f *FontFace) Rasterize(first, last rune) []GlyphBitmap {
	if f.face == nil {
		return nil
	}
	glyphs := make([]GlyphBitmap, 0, int(last-first)+1)
	for r := first; r <= last; r++ {
		dr, mask, maskp, advance, ok := f.face.Glyph(fixed.Point26_6{}, r)
		if !ok {
			continue
		}
		g := GlyphBitmap{
			Rune:    r,
			Width:   dr.Dx(),
			Height:  dr.Dy(),
			OffsetX: dr.Min.X,
			OffsetY: dr.Min.Y,
			Advance: fixedToFloat(advance),
			Pixels:  make([]byte, dr.Dx()*dr.Dy()),
		}
		for y := 0; y < g.Height; y++ {
			for x := 0; x < g.Width; x++ {
				_, _, _, a := mask.At(maskp.X+x, maskp.Y+y).RGBA()
				g.Pixels[y*g.Width+x] = byte(a >> 8)
			}
		}
		glyphs = append(glyphs, g)
	}
	return glyphs
}

func (f *FontFace) Release() {
	if f.face != nil {
		_ = f.face.Close()
		f.face = nil
	}
}

func fixedToFloat(v fixed.Int26_6) float32 {
	return float32(v) / 64
}
