package codec

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sync"
)

// Mode is the open state of a Stream.
type Mode int

const (
	Closed Mode = iota
	ReadOnly
	WriteOnly
	ReadWrite
)

func (m Mode) String() string {
	switch m {
	case Closed:
		return "closed"
	case ReadOnly:
		return "read"
	case WriteOnly:
		return "write"
	case ReadWrite:
		return "read-write"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

func (m Mode) canRead() bool  { return m == ReadOnly || m == ReadWrite }
func (m Mode) canWrite() bool { return m == WriteOnly || m == ReadWrite }

// StringCapacity is the fixed buffer size ReadString uses. Longer strings are
// truncated.
const StringCapacity = 1024

// MaxTextLength bounds length-prefixed text and blobs so a corrupt prefix
// cannot trigger an unbounded allocation.
const MaxTextLength = 1 << 30

// File is the handle a Stream drives.
type File interface {
	io.Reader
	io.Writer
	io.Seeker
	io.Closer
}

// Stream is a mode-checked binary stream. It is safe for concurrent use; each
// call, including a whole record, runs under the stream's lock.
type Stream struct {
	mu   sync.Mutex
	f    File
	mode Mode
	name string
}

// Open opens path in the requested mode. WriteOnly truncates or creates the
// file; ReadWrite creates it when missing and keeps existing content.
func Open(path string, mode Mode) (*Stream, error) {
	var flags int
	switch mode {
	case ReadOnly:
		flags = os.O_RDONLY
	case WriteOnly:
		flags = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	case ReadWrite:
		flags = os.O_RDWR | os.O_CREATE
	default:
		return nil, fmt.Errorf("codec: cannot open %q in %s mode", path, mode)
	}
	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return &Stream{f: f, mode: mode, name: path}, nil
}

// NewStream wraps an already open handle.
func NewStream(f File, mode Mode) *Stream {
	if f == nil {
		mode = Closed
	}
	name := ""
	if named, ok := f.(interface{ Name() string }); ok {
		name = named.Name()
	}
	return &Stream{f: f, mode: mode, name: name}
}

// Mode reports the current state.
func (s *Stream) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// Name returns the path the stream was opened with, when known.
func (s *Stream) Name() string {
	return s.name
}

// Close closes the underlying handle and moves the stream to Closed.
func (s *Stream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.require("close", s.mode != Closed)
	s.mode = Closed
	return s.f.Close()
}

// Detach moves the stream to Closed without closing the underlying handle.
// Callers that own the handle (atomic writers, for example) finish it
// themselves.
func (s *Stream) Detach() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.require("detach", s.mode != Closed)
	s.mode = Closed
}

func (s *Stream) require(op string, ok bool) {
	if !ok {
		panic(&ContractViolation{Op: op, Mode: s.mode, Name: s.name})
	}
}

func (s *Stream) requireRead(op string)  { s.require(op, s.mode.canRead()) }
func (s *Stream) requireWrite(op string) { s.require(op, s.mode.canWrite()) }

// SeekRead moves the cursor to an absolute position for reading.
func (s *Stream) SeekRead(pos int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requireRead("seek-read")
	_, err := s.f.Seek(pos, io.SeekStart)
	return err
}

// SeekWrite moves the cursor to an absolute position for writing.
func (s *Stream) SeekWrite(pos int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requireWrite("seek-write")
	_, err := s.f.Seek(pos, io.SeekStart)
	return err
}

// TellRead returns the cursor position.
func (s *Stream) TellRead() (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requireRead("tell-read")
	return s.f.Seek(0, io.SeekCurrent)
}

// TellWrite returns the cursor position.
func (s *Stream) TellWrite() (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requireWrite("tell-write")
	return s.f.Seek(0, io.SeekCurrent)
}

// Write writes all of p.
func (s *Stream) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requireWrite("write")
	return s.f.Write(p)
}

// ReadFull fills p completely or returns ErrShortRead.
func (s *Stream) ReadFull(p []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requireRead("read")
	return s.readFull(p)
}

func (s *Stream) readFull(p []byte) error {
	if _, err := io.ReadFull(s.f, p); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return fmt.Errorf("%w: want %d bytes", ErrShortRead, len(p))
		}
		return err
	}
	return nil
}

// WriteRecord encodes r and writes it with a single call.
func (s *Stream) WriteRecord(r Record) error {
	buf := MarshalRecord(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requireWrite("write-record")
	_, err := s.f.Write(buf)
	return err
}

// ReadRecord reads exactly SizeOf(r) bytes and decodes them into r.
func (s *Stream) ReadRecord(r Record) error {
	buf := make([]byte, SizeOf(r))
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requireRead("read-record")
	if err := s.readFull(buf); err != nil {
		return fmt.Errorf("read %s: %w", SchemaOf(r).Type, err)
	}
	return UnmarshalRecord(buf, r)
}

// WriteString writes the raw bytes of str with no length prefix and no
// terminator.
func (s *Stream) WriteString(str string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requireWrite("write-string")
	_, err := io.WriteString(s.f, str)
	return err
}

// ReadString reads up to StringCapacity bytes and returns the text before
// the first NUL. The cursor advances by the number of bytes consumed from the
// stream, not by the length of the returned string; content past the
// capacity is left unread and anything past the NUL inside the buffer is
// discarded.
func (s *Stream) ReadString() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requireRead("read-string")
	buf := make([]byte, StringCapacity)
	n, err := io.ReadFull(s.f, buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		if errors.Is(err, io.EOF) {
			return "", io.EOF
		}
		return "", err
	}
	buf = buf[:n]
	for i, b := range buf {
		if b == 0 {
			return string(buf[:i]), nil
		}
	}
	return string(buf), nil
}

// WriteText writes a u32 length followed by the bytes of str.
func (s *Stream) WriteText(str string) error {
	return s.WriteBlob([]byte(str))
}

// ReadText reads a value written by WriteText.
func (s *Stream) ReadText() (string, error) {
	b, err := s.ReadBlob()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// WriteBlob writes a u32 length followed by b.
func (s *Stream) WriteBlob(b []byte) error {
	if len(b) > MaxTextLength {
		return fmt.Errorf("%w: blob of %d bytes exceeds limit", ErrCorrupt, len(b))
	}
	buf := make([]byte, 4, 4+len(b))
	binary.LittleEndian.PutUint32(buf, uint32(len(b)))
	buf = append(buf, b...)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requireWrite("write-blob")
	_, err := s.f.Write(buf)
	return err
}

// ReadBlob reads a value written by WriteBlob.
func (s *Stream) ReadBlob() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requireRead("read-blob")
	var prefix [4]byte
	if err := s.readFull(prefix[:]); err != nil {
		return nil, err
	}
	n := binary.LittleEndian.Uint32(prefix[:])
	if n > MaxTextLength {
		return nil, fmt.Errorf("%w: blob length %d", ErrCorrupt, n)
	}
	out := make([]byte, n)
	if err := s.readFull(out); err != nil {
		return nil, err
	}
	return out, nil
}

// WriteF32s writes a u32 count followed by the values.
func (s *Stream) WriteF32s(values []float32) error {
	buf := make([]byte, 4+4*len(values))
	binary.LittleEndian.PutUint32(buf, uint32(len(values)))
	for i, v := range values {
		binary.LittleEndian.PutUint32(buf[4+4*i:], math.Float32bits(v))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requireWrite("write-f32s")
	_, err := s.f.Write(buf)
	return err
}

// ReadF32s reads a value written by WriteF32s.
func (s *Stream) ReadF32s() ([]float32, error) {
	raw, err := s.readCounted("read-f32s", 4)
	if err != nil {
		return nil, err
	}
	out := make([]float32, len(raw)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[4*i:]))
	}
	return out, nil
}

// WriteU32s writes a u32 count followed by the values.
func (s *Stream) WriteU32s(values []uint32) error {
	buf := make([]byte, 4+4*len(values))
	binary.LittleEndian.PutUint32(buf, uint32(len(values)))
	for i, v := range values {
		binary.LittleEndian.PutUint32(buf[4+4*i:], v)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requireWrite("write-u32s")
	_, err := s.f.Write(buf)
	return err
}

// ReadU32s reads a value written by WriteU32s.
func (s *Stream) ReadU32s() ([]uint32, error) {
	raw, err := s.readCounted("read-u32s", 4)
	if err != nil {
		return nil, err
	}
	out := make([]uint32, len(raw)/4)
	for i := range out {
		out[i] = binary.LittleEndian.Uint32(raw[4*i:])
	}
	return out, nil
}

func (s *Stream) readCounted(op string, width int) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requireRead(op)
	var prefix [4]byte
	if err := s.readFull(prefix[:]); err != nil {
		return nil, err
	}
	count := binary.LittleEndian.Uint32(prefix[:])
	if uint64(count)*uint64(width) > MaxTextLength {
		return nil, fmt.Errorf("%w: %d elements", ErrCorrupt, count)
	}
	raw := make([]byte, int(count)*width)
	if err := s.readFull(raw); err != nil {
		return nil, err
	}
	return raw, nil
}
