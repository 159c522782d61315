package convert

import (
	"encoding/binary"
	"fmt"

	"nbr/internal/envelope"
	"nbr/internal/loaders"
	"nbr/internal/records"
)

func descriptor[T any](asset Asset) (T, error) {
	d, ok := asset.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("unexpected descriptor %T, want %T", asset, zero)
	}
	return d, nil
}

func encodeTexture(asset Asset) (envelope.Payload, error) {
	img, err := descriptor[*loaders.Image](asset)
	if err != nil {
		return nil, err
	}
	return &envelope.Texture{
		Width:  uint32(img.Width),
		Height: uint32(img.Height),
		Depth:  1,
		Format: envelope.FormatRGBA8,
		Filter: envelope.FilterLinear,
		Wrap:   envelope.WrapRepeat,
		Pixels: img.Pix,
	}, nil
}

func encodeCubemap(asset Asset) (envelope.Payload, error) {
	cube, err := descriptor[*loaders.CubeImage](asset)
	if err != nil {
		return nil, err
	}
	out := &envelope.Cubemap{FaceSize: uint32(cube.FaceSize), Format: envelope.FormatRGBA8}
	for i := range out.Faces {
		out.Faces[i] = cube.Faces[i]
	}
	return out, nil
}

func encodeShader(asset Asset) (envelope.Payload, error) {
	src, err := descriptor[*loaders.ShaderSource](asset)
	if err != nil {
		return nil, err
	}
	return &envelope.Shader{Vertex: src.Vertex(), Fragment: src.Fragment(), Compute: src.Compute()}, nil
}

func encodeModel(asset Asset) (envelope.Payload, error) {
	model, err := descriptor[*loaders.ObjModel](asset)
	if err != nil {
		return nil, err
	}
	out := &envelope.Model{Materials: make([]envelope.Material, 0, len(model.Materials))}
	index := make(map[string]uint32, len(model.Materials))
	for _, mat := range model.Materials {
		index[mat.Name] = uint32(len(out.Materials))
		out.Materials = append(out.Materials, envelope.Material{
			Name:       mat.Name,
			Diffuse:    records.Color{R: mat.Diffuse[0], G: mat.Diffuse[1], B: mat.Diffuse[2], A: mat.Diffuse[3]},
			DiffuseMap: mat.DiffuseMap,
			NormalMap:  mat.NormalMap,
		})
	}
	for _, mesh := range model.Meshes {
		idx, ok := index[mesh.Material]
		if !ok {
			// Meshes that name an undefined material get a plain white one.
			idx = uint32(len(out.Materials))
			index[mesh.Material] = idx
			out.Materials = append(out.Materials, envelope.Material{Name: mesh.Material, Diffuse: records.Color{R: 1, G: 1, B: 1, A: 1}})
		}
		out.Meshes = append(out.Meshes, envelope.Mesh{Vertices: mesh.Vertices, Indices: mesh.Indices, Material: idx})
	}
	return out, nil
}

func encodeFont(asset Asset) (envelope.Payload, error) {
	face, err := descriptor[*loaders.FontFace](asset)
	if err != nil {
		return nil, err
	}
	out := &envelope.Font{
		Size:    float32(face.Size),
		Ascent:  face.Ascent,
		Descent: face.Descent,
		LineGap: face.LineGap,
	}
	for _, g := range face.Rasterize(loaders.FirstGlyph, loaders.LastGlyph) {
		out.Glyphs = append(out.Glyphs, envelope.Glyph{
			Rune:    g.Rune,
			Width:   uint32(g.Width),
			Height:  uint32(g.Height),
			OffsetX: int32(g.OffsetX),
			OffsetY: int32(g.OffsetY),
			Advance: g.Advance,
			Pixels:  g.Pixels,
		})
	}
	return out, nil
}

func encodeAudio(asset Asset) (envelope.Payload, error) {
	pcm, err := descriptor[*loaders.PCM](asset)
	if err != nil {
		return nil, err
	}
	var format envelope.SampleFormat
	switch pcm.BitDepth {
	case 8:
		format = envelope.SampleU8
	case 16:
		format = envelope.SampleS16
	case 24:
		format = envelope.SampleS24
	case 32:
		format = envelope.SampleS32
	default:
		return nil, fmt.Errorf("unsupported bit depth %d", pcm.BitDepth)
	}
	width := pcm.BitDepth / 8
	samples := make([]byte, len(pcm.Samples)*width)
	for i, v := range pcm.Samples {
		dst := samples[i*width:]
		switch width {
		case 1:
			dst[0] = byte(v)
		case 2:
			binary.LittleEndian.PutUint16(dst, uint16(int16(v)))
		case 3:
			u := uint32(int32(v))
			dst[0], dst[1], dst[2] = byte(u), byte(u>>8), byte(u>>16)
		case 4:
			binary.LittleEndian.PutUint32(dst, uint32(int32(v)))
		}
	}
	return &envelope.Audio{
		Format:     format,
		Channels:   uint16(pcm.Channels),
		SampleRate: uint32(pcm.SampleRate),
		Samples:    samples,
	}, nil
}
