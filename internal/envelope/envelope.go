package envelope

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/renameio"

	"nbr/internal/codec"
	"nbr/internal/fileutil"
	"nbr/internal/resource"
)

const (
	// Magic is "NBR\x00" read as a little-endian u32.
	Magic uint32 = 0x0052424E

	MajorVersion uint16 = 1
	MinorVersion uint16 = 0
)

var (
	ErrBadMagic           = errors.New("not an nbr envelope")
	ErrUnsupportedVersion = errors.New("unsupported envelope version")
	ErrUnknownType        = errors.New("unknown envelope resource type")
)

// Header opens every envelope file.
type Header struct {
	Magic    uint32
	Major    uint16
	Minor    uint16
	Type     uint16
	Reserved uint16
}

func (h *Header) Fields() []codec.Field {
	return []codec.Field{
		codec.F("magic", &h.Magic),
		codec.F("major", &h.Major),
		codec.F("minor", &h.Minor),
		codec.F("type", &h.Type),
		codec.F("reserved", &h.Reserved),
	}
}

// ResourceType returns the header's type tag.
func (h Header) ResourceType() resource.Type {
	return resource.Type(h.Type)
}

// Payload is one of the descriptor types defined in this package.
type Payload interface {
	Type() resource.Type
	Summary() string
	encode(s *codec.Stream) error
	decode(s *codec.Stream) error
}

// NewPayload returns an empty payload for t.
func NewPayload(t resource.Type) (Payload, error) {
	switch t {
	case resource.Texture:
		return &Texture{}, nil
	case resource.Cubemap:
		return &Cubemap{}, nil
	case resource.Shader:
		return &Shader{}, nil
	case resource.Model:
		return &Model{}, nil
	case resource.Font:
		return &Font{}, nil
	case resource.AudioBuffer:
		return &Audio{}, nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownType, uint16(t))
	}
}

// Path returns the envelope path for a source file converted into outDir.
func Path(outDir, source string, t resource.Type) string {
	return filepath.Join(outDir, fileutil.Stem(source)+t.Extension())
}

// Encode writes the header and payload to an open stream.
func Encode(s *codec.Stream, p Payload) error {
	header := Header{Magic: Magic, Major: MajorVersion, Minor: MinorVersion, Type: uint16(p.Type())}
	if err := s.WriteRecord(&header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if err := p.encode(s); err != nil {
		return fmt.Errorf("write %s payload: %w", p.Type(), err)
	}
	return nil
}

// Decode reads a header and the payload it announces.
func Decode(s *codec.Stream) (Header, Payload, error) {
	var header Header
	if err := s.ReadRecord(&header); err != nil {
		return header, nil, fmt.Errorf("read header: %w", err)
	}
	if header.Magic != Magic {
		return header, nil, fmt.Errorf("%w: magic %#08x", ErrBadMagic, header.Magic)
	}
	if header.Major != MajorVersion {
		return header, nil, fmt.Errorf("%w: %d.%d", ErrUnsupportedVersion, header.Major, header.Minor)
	}
	p, err := NewPayload(header.ResourceType())
	if err != nil {
		return header, nil, err
	}
	if err := p.decode(s); err != nil {
		return header, nil, fmt.Errorf("read %s payload: %w", p.Type(), err)
	}
	return header, p, nil
}

// WriteFile encodes p into path. The file is written to a temporary name in
// the same directory and renamed into place, so readers never observe a
// partially written envelope and a failed write leaves nothing behind.
func WriteFile(path string, p Payload) error {
	pending, err := renameio.TempFile(filepath.Dir(path), path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() { _ = pending.Cleanup() }()

	stream := codec.NewStream(pending, codec.WriteOnly)
	if err := Encode(stream, p); err != nil {
		stream.Detach()
		return err
	}
	stream.Detach()
	if err := pending.Chmod(0o644); err != nil {
		return fmt.Errorf("chmod %s: %w", path, err)
	}
	if err := pending.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("commit %s: %w", path, err)
	}
	return nil
}

// ReadFile decodes the envelope stored at path.
func ReadFile(path string) (Header, Payload, error) {
	stream, err := codec.Open(path, codec.ReadOnly)
	if err != nil {
		return Header{}, nil, err
	}
	defer stream.Close()
	return Decode(stream)
}

// Exists reports whether an envelope is already present at path.
func Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
