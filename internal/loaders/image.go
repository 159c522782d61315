package loaders

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".bmp":  true,
	".tif":  true,
	".tiff": true,
	".webp": true,
}

// Image is a decoded picture in straight-alpha RGBA8, rows top to bottom.
type Image struct {
	Width  int
	Height int
	Pix    []byte
}

func (img *Image) Release() {
	img.Pix = nil
}

// LoadImage decodes a texture source.
func LoadImage(path string) (*Image, error) {
	if !imageExtensions[ext(path)] {
		return nil, unsupported(path)
	}
	rgba, err := decodeNRGBA(path)
	if err != nil {
		return nil, err
	}
	return &Image{Width: rgba.Rect.Dx(), Height: rgba.Rect.Dy(), Pix: rgba.Pix}, nil
}

func decodeNRGBA(path string) (*image.NRGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	src, _, err := image.Decode(f)
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return nil, unsupported(path)
		}
		return nil, fmt.Errorf("%w: %s: %w", ErrMalformed, filepath.Base(path), err)
	}
	if nrgba, ok := src.(*image.NRGBA); ok && nrgba.Rect.Min == (image.Point{}) && nrgba.Stride == 4*nrgba.Rect.Dx() {
		return nrgba, nil
	}
	bounds := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(dst, dst.Rect, src, bounds.Min, draw.Src)
	return dst, nil
}

// CubeFaceCount is the number of faces in a cube image.
const CubeFaceCount = 6

// CubeImage holds six square faces ordered +X, -X, +Y, -Y, +Z, -Z.
type CubeImage struct {
	FaceSize int
	Faces    [CubeFaceCount][]byte
}

func (c *CubeImage) Release() {
	for i := range c.Faces {
		c.Faces[i] = nil
	}
}

// LoadCubemap decodes a single image holding all six faces as a horizontal
// (6:1) or vertical (1:6) strip.
func LoadCubemap(path string) (*CubeImage, error) {
	if !imageExtensions[ext(path)] {
		return nil, unsupported(path)
	}
	strip, err := decodeNRGBA(path)
	if err != nil {
		return nil, err
	}
	w, h := strip.Rect.Dx(), strip.Rect.Dy()
	var size int
	var step image.Point
	switch {
	case w > 0 && w == CubeFaceCount*h:
		size, step = h, image.Pt(h, 0)
	case h > 0 && h == CubeFaceCount*w:
		size, step = w, image.Pt(0, w)
	default:
		return nil, fmt.Errorf("%w: %s is %dx%d, want a 6:1 or 1:6 face strip", ErrMalformed, filepath.Base(path), w, h)
	}

	cube := &CubeImage{FaceSize: size}
	for i := range cube.Faces {
		origin := image.Pt(step.X*i, step.Y*i)
		face := make([]byte, 0, size*size*4)
		for y := 0; y < size; y++ {
			start := strip.PixOffset(origin.X, origin.Y+y)
			face = append(face, strip.Pix[start:start+size*4]...)
		}
		cube.Faces[i] = face
	}
	return cube, nil
}
