package codec

import (
	"encoding/binary"
	"math"
)

func (s *Stream) writeFixed(op string, buf []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requireWrite(op)
	_, err := s.f.Write(buf)
	return err
}

func (s *Stream) readFixed(op string, n int) ([]byte, error) {
	buf := make([]byte, n)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requireRead(op)
	if err := s.readFull(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func (s *Stream) WriteU8(v uint8) error {
	return s.writeFixed("write-u8", []byte{v})
}

func (s *Stream) ReadU8() (uint8, error) {
	b, err := s.readFixed("read-u8", 1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (s *Stream) WriteU16(v uint16) error {
	return s.writeFixed("write-u16", binary.LittleEndian.AppendUint16(nil, v))
}

func (s *Stream) ReadU16() (uint16, error) {
	b, err := s.readFixed("read-u16", 2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (s *Stream) WriteU32(v uint32) error {
	return s.writeFixed("write-u32", binary.LittleEndian.AppendUint32(nil, v))
}

func (s *Stream) ReadU32() (uint32, error) {
	b, err := s.readFixed("read-u32", 4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (s *Stream) WriteI32(v int32) error {
	return s.WriteU32(uint32(v))
}

func (s *Stream) ReadI32() (int32, error) {
	v, err := s.ReadU32()
	return int32(v), err
}

func (s *Stream) WriteF32(v float32) error {
	return s.WriteU32(math.Float32bits(v))
}

func (s *Stream) ReadF32() (float32, error) {
	v, err := s.ReadU32()
	return math.Float32frombits(v), err
}
