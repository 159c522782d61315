package codec

import (
	"encoding/binary"
	"fmt"
	"math"
	"reflect"
	"strings"
	"sync"
)

// Kind is the wire representation of a single field.
type Kind uint8

const (
	KindU8 Kind = iota + 1
	KindI8
	KindU16
	KindI16
	KindU32
	KindI32
	KindU64
	KindI64
	KindF32
	KindF64
	KindBool
)

var kindNames = map[Kind]string{
	KindU8:   "u8",
	KindI8:   "i8",
	KindU16:  "u16",
	KindI16:  "i16",
	KindU32:  "u32",
	KindI32:  "i32",
	KindU64:  "u64",
	KindI64:  "i64",
	KindF32:  "f32",
	KindF64:  "f64",
	KindBool: "bool",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Width returns the encoded size of the kind in bytes.
func (k Kind) Width() int {
	switch k {
	case KindU8, KindI8, KindBool:
		return 1
	case KindU16, KindI16:
		return 2
	case KindU32, KindI32, KindF32:
		return 4
	case KindU64, KindI64, KindF64:
		return 8
	default:
		return 0
	}
}

// Field names one fixed-width value of a record. Ptr must point at one of
// the scalar types listed by Kind.
type Field struct {
	Name string
	Ptr  any
}

// F builds a Field.
func F(name string, ptr any) Field {
	return Field{Name: name, Ptr: ptr}
}

// Record is a compound value with a canonical field order.
type Record interface {
	Fields() []Field
}

// FieldInfo describes one compiled field.
type FieldInfo struct {
	Name   string
	Kind   Kind
	Offset int
}

// Schema is the compiled layout of a record type.
type Schema struct {
	Type   string
	Fields []FieldInfo
	Size   int
}

// String renders the layout as "name:kind@offset" pairs.
func (s *Schema) String() string {
	parts := make([]string, 0, len(s.Fields))
	for _, f := range s.Fields {
		parts = append(parts, fmt.Sprintf("%s:%s@%d", f.Name, f.Kind, f.Offset))
	}
	return s.Type + "{" + strings.Join(parts, " ") + "}"
}

var schemaCache sync.Map // reflect.Type -> *Schema

// SchemaOf returns the compiled schema for the record's type, compiling it on
// first use.
func SchemaOf(r Record) *Schema {
	rt := reflect.TypeOf(r)
	if cached, ok := schemaCache.Load(rt); ok {
		return cached.(*Schema)
	}
	schema := compile(rt, r.Fields())
	actual, _ := schemaCache.LoadOrStore(rt, schema)
	return actual.(*Schema)
}

// SizeOf returns the encoded size of the record in bytes.
func SizeOf(r Record) int {
	return SchemaOf(r).Size
}

func compile(rt reflect.Type, fields []Field) *Schema {
	schema := &Schema{Type: typeName(rt), Fields: make([]FieldInfo, 0, len(fields))}
	offset := 0
	for _, f := range fields {
		kind := kindOf(f.Ptr)
		if kind == 0 {
			panic(fmt.Sprintf("codec: field %s.%s has unsupported type %T", schema.Type, f.Name, f.Ptr))
		}
		schema.Fields = append(schema.Fields, FieldInfo{Name: f.Name, Kind: kind, Offset: offset})
		offset += kind.Width()
	}
	schema.Size = offset
	return schema
}

func typeName(rt reflect.Type) string {
	for rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}
	return rt.Name()
}

func kindOf(ptr any) Kind {
	switch ptr.(type) {
	case *uint8:
		return KindU8
	case *int8:
		return KindI8
	case *uint16:
		return KindU16
	case *int16:
		return KindI16
	case *uint32:
		return KindU32
	case *int32:
		return KindI32
	case *uint64:
		return KindU64
	case *int64:
		return KindI64
	case *float32:
		return KindF32
	case *float64:
		return KindF64
	case *bool:
		return KindBool
	default:
		return 0
	}
}

// MarshalRecord encodes r into a new buffer of exactly SizeOf(r) bytes.
func MarshalRecord(r Record) []byte {
	schema := SchemaOf(r)
	buf := make([]byte, schema.Size)
	fields := checkedFields(schema, r)
	for i, info := range schema.Fields {
		putField(buf[info.Offset:], info.Kind, fields[i].Ptr)
	}
	return buf
}

// UnmarshalRecord decodes buf into r. buf must hold at least SizeOf(r) bytes.
func UnmarshalRecord(buf []byte, r Record) error {
	schema := SchemaOf(r)
	if len(buf) < schema.Size {
		return fmt.Errorf("%w: %s needs %d bytes, have %d", ErrShortRead, schema.Type, schema.Size, len(buf))
	}
	fields := checkedFields(schema, r)
	for i, info := range schema.Fields {
		getField(buf[info.Offset:], info.Kind, fields[i].Ptr)
	}
	return nil
}

func checkedFields(schema *Schema, r Record) []Field {
	fields := r.Fields()
	if len(fields) != len(schema.Fields) {
		panic(fmt.Sprintf("codec: %s produced %d fields, schema has %d", schema.Type, len(fields), len(schema.Fields)))
	}
	for i, f := range fields {
		if kindOf(f.Ptr) != schema.Fields[i].Kind {
			panic(fmt.Sprintf("codec: %s field %d (%s) changed kind", schema.Type, i, f.Name))
		}
	}
	return fields
}

func putField(dst []byte, kind Kind, ptr any) {
	le := binary.LittleEndian
	switch kind {
	case KindU8:
		dst[0] = *ptr.(*uint8)
	case KindI8:
		dst[0] = byte(*ptr.(*int8))
	case KindBool:
		if *ptr.(*bool) {
			dst[0] = 1
		} else {
			dst[0] = 0
		}
	case KindU16:
		le.PutUint16(dst, *ptr.(*uint16))
	case KindI16:
		le.PutUint16(dst, uint16(*ptr.(*int16)))
	case KindU32:
		le.PutUint32(dst, *ptr.(*uint32))
	case KindI32:
		le.PutUint32(dst, uint32(*ptr.(*int32)))
	case KindF32:
		le.PutUint32(dst, math.Float32bits(*ptr.(*float32)))
	case KindU64:
		le.PutUint64(dst, *ptr.(*uint64))
	case KindI64:
		le.PutUint64(dst, uint64(*ptr.(*int64)))
	case KindF64:
		le.PutUint64(dst, math.Float64bits(*ptr.(*float64)))
	}
}

func getField(src []byte, kind Kind, ptr any) {
	le := binary.LittleEndian
	switch kind {
	case KindU8:
		*ptr.(*uint8) = src[0]
	case KindI8:
		*ptr.(*int8) = int8(src[0])
	case KindBool:
		*ptr.(*bool) = src[0] != 0
	case KindU16:
		*ptr.(*uint16) = le.Uint16(src)
	case KindI16:
		*ptr.(*int16) = int16(le.Uint16(src))
	case KindU32:
		*ptr.(*uint32) = le.Uint32(src)
	case KindI32:
		*ptr.(*int32) = int32(le.Uint32(src))
	case KindF32:
		*ptr.(*float32) = math.Float32frombits(le.Uint32(src))
	case KindU64:
		*ptr.(*uint64) = le.Uint64(src)
	case KindI64:
		*ptr.(*int64) = int64(le.Uint64(src))
	case KindF64:
		*ptr.(*float64) = math.Float64frombits(le.Uint64(src))
	}
}
