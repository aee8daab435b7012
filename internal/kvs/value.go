// Package kvs implements the NVS engine: two-pass partition parsing,
// namespace resolution, typed value encode/decode, and the
// add/update/delete/find mutators, all driven over a sparseimage.Store
// (spec §4.4).
package kvs

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/nilotpal-labs/flashkit/internal/kvspage"
	flasherrors "github.com/nilotpal-labs/flashkit/pkg/errors"
)

// ValueKind names the logical type of a decoded or to-be-added value.
type ValueKind int

const (
	KindU8 ValueKind = iota
	KindU16
	KindU32
	KindU64
	KindI8
	KindI16
	KindI32
	KindI64
	KindString
	KindBlob
	KindBlobIndex
)

// String renders a ValueKind the way parse reports name types.
func (k ValueKind) String() string {
	switch k {
	case KindU8:
		return "U8"
	case KindU16:
		return "U16"
	case KindU32:
		return "U32"
	case KindU64:
		return "U64"
	case KindI8:
		return "I8"
	case KindI16:
		return "I16"
	case KindI32:
		return "I32"
	case KindI64:
		return "I64"
	case KindString:
		return "String"
	case KindBlob:
		return "Blob"
	case KindBlobIndex:
		return "BlobIndex"
	default:
		return "Unknown"
	}
}

func (k ValueKind) dataType() kvspage.DataType {
	switch k {
	case KindU8:
		return kvspage.TypeU8
	case KindU16:
		return kvspage.TypeU16
	case KindU32:
		return kvspage.TypeU32
	case KindU64:
		return kvspage.TypeU64
	case KindI8:
		return kvspage.TypeI8
	case KindI16:
		return kvspage.TypeI16
	case KindI32:
		return kvspage.TypeI32
	case KindI64:
		return kvspage.TypeI64
	case KindString:
		return kvspage.TypeString
	case KindBlob:
		return kvspage.TypeBlob
	case KindBlobIndex:
		return kvspage.TypeBlobIndex
	default:
		return 0
	}
}

func kindFromDataType(t kvspage.DataType) (ValueKind, bool) {
	switch t {
	case kvspage.TypeU8:
		return KindU8, true
	case kvspage.TypeU16:
		return KindU16, true
	case kvspage.TypeU32:
		return KindU32, true
	case kvspage.TypeU64:
		return KindU64, true
	case kvspage.TypeI8:
		return KindI8, true
	case kvspage.TypeI16:
		return KindI16, true
	case kvspage.TypeI32:
		return KindI32, true
	case kvspage.TypeI64:
		return KindI64, true
	case kvspage.TypeString:
		return KindString, true
	case kvspage.TypeBlob:
		return KindBlob, true
	case kvspage.TypeBlobIndex:
		return KindBlobIndex, true
	default:
		return 0, false
	}
}

// Value is a decoded or pending-to-be-written typed value. Exactly one of
// the numeric fields, Str, or Bytes is meaningful, selected by Kind — kept
// as a plain struct rather than an interface{} payload so U64/I64 stay true
// 64-bit integers end to end (spec §9: "big-integer values... keep them as
// integers").
type Value struct {
	Kind  ValueKind
	U64   uint64
	I64   int64
	Str   string
	Bytes []byte

	// BlobIndex fields, meaningful only when Kind == KindBlobIndex: the
	// assembled blob's total size and the chunk range carrying its data in
	// separate type-Blob entries linked by chunk index (spec §4.4).
	TotalSize  uint32
	ChunkCount uint8
	ChunkStart uint8
}

// U8Value, U16Value, ... construct a Value of the matching integer kind.
func U8Value(v uint8) Value   { return Value{Kind: KindU8, U64: uint64(v)} }
func U16Value(v uint16) Value { return Value{Kind: KindU16, U64: uint64(v)} }
func U32Value(v uint32) Value { return Value{Kind: KindU32, U64: uint64(v)} }
func U64Value(v uint64) Value { return Value{Kind: KindU64, U64: v} }
func I8Value(v int8) Value    { return Value{Kind: KindI8, I64: int64(v)} }
func I16Value(v int16) Value  { return Value{Kind: KindI16, I64: int64(v)} }
func I32Value(v int32) Value  { return Value{Kind: KindI32, I64: int64(v)} }
func I64Value(v int64) Value  { return Value{Kind: KindI64, I64: v} }
func StringValue(v string) Value { return Value{Kind: KindString, Str: v} }
func BlobValue(v []byte) Value   { return Value{Kind: KindBlob, Bytes: v} }

// BlobValueFromHex parses the add-path's textual blob format: whitespace-
// separated hexadecimal byte pairs, e.g. "de ad be ef" (spec.md line 103).
// Each token must decode to exactly one byte; malformed input is rejected
// with ErrorCodeInvalidValue before any bytes are written, per §7's
// propagation policy. Decoded-from-storage blobs never go through this path
// — they're built directly via BlobValue from already-validated bytes.
func BlobValueFromHex(s string) (Value, error) {
	fields := strings.Fields(s)
	out := make([]byte, 0, len(fields))
	for _, tok := range fields {
		b, err := hex.DecodeString(tok)
		if err != nil || len(b) != 1 {
			return Value{}, flasherrors.NewInvalidValueError(fmt.Sprintf("malformed hex byte pair %q in blob value", tok))
		}
		out = append(out, b[0])
	}
	v := BlobValue(out)
	if err := v.validate(); err != nil {
		return Value{}, err
	}
	return v, nil
}

const maxVariableLengthBytes = 64

// validate applies spec §4.4's add-path value validation rules, returning a
// typed InvalidValue error before any bytes are written.
func (v Value) validate() error {
	switch v.Kind {
	case KindU8:
		if v.U64 > 0xFF {
			return flasherrors.NewInvalidValueError(fmt.Sprintf("value %d does not fit U8", v.U64))
		}
	case KindU16:
		if v.U64 > 0xFFFF {
			return flasherrors.NewInvalidValueError(fmt.Sprintf("value %d does not fit U16", v.U64))
		}
	case KindU32:
		if v.U64 > 0xFFFFFFFF {
			return flasherrors.NewInvalidValueError(fmt.Sprintf("value %d does not fit U32", v.U64))
		}
	case KindU64:
		// Full width; nothing to check.
	case KindI8:
		if v.I64 < -0x80 || v.I64 > 0x7F {
			return flasherrors.NewInvalidValueError(fmt.Sprintf("value %d does not fit I8", v.I64))
		}
	case KindI16:
		if v.I64 < -0x8000 || v.I64 > 0x7FFF {
			return flasherrors.NewInvalidValueError(fmt.Sprintf("value %d does not fit I16", v.I64))
		}
	case KindI32:
		if v.I64 < -0x80000000 || v.I64 > 0x7FFFFFFF {
			return flasherrors.NewInvalidValueError(fmt.Sprintf("value %d does not fit I32", v.I64))
		}
	case KindI64:
		// Full width; nothing to check.
	case KindString:
		if len(v.Str) > maxVariableLengthBytes {
			return flasherrors.NewInvalidValueError(fmt.Sprintf("string payload of %d bytes exceeds %d-byte limit", len(v.Str), maxVariableLengthBytes))
		}
	case KindBlob:
		if len(v.Bytes) > maxVariableLengthBytes {
			return flasherrors.NewInvalidValueError(fmt.Sprintf("blob payload of %d bytes exceeds %d-byte limit", len(v.Bytes), maxVariableLengthBytes))
		}
	}
	return nil
}

// spanFor returns how many 32-byte slots this value's entry occupies.
func (v Value) spanFor() int {
	switch v.Kind {
	case KindString:
		return 1 + ceilDiv(len(v.Str), kvspage.SlotSize)
	case KindBlob:
		return 1 + ceilDiv(len(v.Bytes), kvspage.SlotSize)
	case KindBlobIndex:
		return 1
	default:
		return 1
	}
}

func ceilDiv(a, b int) int {
	if a == 0 {
		return 0
	}
	return (a + b - 1) / b
}

// decodeInlineValue reads a fixed-width numeric value out of an entry's
// 8-byte value area (offset 24 of the slot), little-endian (spec §4.4).
func decodeInlineValue(kind ValueKind, area [8]byte) Value {
	switch kind {
	case KindU8:
		return U8Value(area[0])
	case KindU16:
		return U16Value(binary.LittleEndian.Uint16(area[0:2]))
	case KindU32:
		return U32Value(binary.LittleEndian.Uint32(area[0:4]))
	case KindU64:
		return U64Value(binary.LittleEndian.Uint64(area[0:8]))
	case KindI8:
		return I8Value(int8(area[0]))
	case KindI16:
		return I16Value(int16(binary.LittleEndian.Uint16(area[0:2])))
	case KindI32:
		return I32Value(int32(binary.LittleEndian.Uint32(area[0:4])))
	case KindI64:
		return I64Value(int64(binary.LittleEndian.Uint64(area[0:8])))
	default:
		return Value{}
	}
}

// decodeBlobIndexValue reads a blob-index entry's total size, chunk count,
// and chunk-start index out of its 8-byte value area: U32 total size at
// offset 24, then a chunk-count byte and a chunk-start-index byte.
func decodeBlobIndexValue(area [8]byte) Value {
	return Value{
		Kind:       KindBlobIndex,
		TotalSize:  binary.LittleEndian.Uint32(area[0:4]),
		ChunkCount: area[4],
		ChunkStart: area[5],
	}
}

// encodeBlobIndexValue is decodeBlobIndexValue's inverse.
func encodeBlobIndexValue(v Value) [8]byte {
	var area [8]byte
	binary.LittleEndian.PutUint32(area[0:4], v.TotalSize)
	area[4] = v.ChunkCount
	area[5] = v.ChunkStart
	return area
}

// encodeInlineValue writes a fixed-width numeric value into an entry's
// 8-byte value area.
func encodeInlineValue(v Value) [8]byte {
	var area [8]byte
	switch v.Kind {
	case KindU8:
		area[0] = byte(v.U64)
	case KindU16:
		binary.LittleEndian.PutUint16(area[0:2], uint16(v.U64))
	case KindU32:
		binary.LittleEndian.PutUint32(area[0:4], uint32(v.U64))
	case KindU64:
		binary.LittleEndian.PutUint64(area[0:8], v.U64)
	case KindI8:
		area[0] = byte(int8(v.I64))
	case KindI16:
		binary.LittleEndian.PutUint16(area[0:2], uint16(int16(v.I64)))
	case KindI32:
		binary.LittleEndian.PutUint32(area[0:4], uint32(int32(v.I64)))
	case KindI64:
		binary.LittleEndian.PutUint64(area[0:8], uint64(v.I64))
	}
	return area
}
