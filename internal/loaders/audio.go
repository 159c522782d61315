package loaders

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-audio/wav"
)

const wavFormatPCM = 1

// PCM is decoded, interleaved integer audio. Samples keep the source range:
// 8-bit data is unsigned, wider data is signed.
type PCM struct {
	Channels   int
	SampleRate int
	BitDepth   int
	Samples    []int
}

// Frames returns the number of sample frames.
func (p *PCM) Frames() int {
	if p.Channels == 0 {
		return 0
	}
	return len(p.Samples) / p.Channels
}

func (p *PCM) Release() {
	p.Samples = nil
}

// LoadAudio decodes an uncompressed PCM WAV file.
func LoadAudio(path string) (*PCM, error) {
	if ext(path) != ".wav" {
		return nil, unsupported(path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("%w: %s is not a valid wav file", ErrMalformed, filepath.Base(path))
	}
	if dec.WavAudioFormat != wavFormatPCM {
		return nil, fmt.Errorf("%w: %s uses wav format %d", ErrUnsupportedFormat, filepath.Base(path), dec.WavAudioFormat)
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrMalformed, filepath.Base(path), err)
	}
	switch dec.BitDepth {
	case 8, 16, 24, 32:
	default:
		return nil, fmt.Errorf("%w: %s has %d-bit samples", ErrUnsupportedFormat, filepath.Base(path), dec.BitDepth)
	}
	return &PCM{
		Channels:   int(dec.NumChans),
		SampleRate: int(dec.SampleRate),
		BitDepth:   int(dec.BitDepth),
		Samples:    buf.Data,
	}, nil
}
