// Package codec implements the fixed-order, fixed-width binary discipline
// shared by container envelopes and structured persistence such as scene
// files.
//
// A Stream wraps a seekable file handle and tracks which operations its open
// mode allows. Compound values implement Record: they list their fields, in
// canonical order, as named pointers to fixed-width scalars. The first time a
// record type is seen its field list is compiled into a Schema (name, width,
// offset per field) and that schema drives both WriteRecord and ReadRecord, so
// the writer and the reader cannot disagree on order or width. There are no
// tags or per-field length prefixes on the wire; a reader must consume fields
// exactly as the writer produced them.
//
// All values are little-endian. Calling an operation that the stream's mode
// does not allow, or any operation on a closed stream, is a caller bug and
// panics with *ContractViolation.
package codec
