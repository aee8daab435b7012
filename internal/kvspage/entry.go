package kvspage

import (
	"encoding/binary"
	"hash/crc32"
)

// DataType is the on-flash type tag of an entry's value.
type DataType uint8

const (
	TypeU8        DataType = 0x01
	TypeU16       DataType = 0x02
	TypeU32       DataType = 0x04
	TypeU64       DataType = 0x08
	TypeI8        DataType = 0x11
	TypeI16       DataType = 0x12
	TypeI32       DataType = 0x14
	TypeI64       DataType = 0x18
	TypeString    DataType = 0x21
	TypeBlob      DataType = 0x42
	TypeBlobIndex DataType = 0x48
)

// KnownDataType reports whether t is one of the type codes this package
// understands.
func KnownDataType(t DataType) bool {
	switch t {
	case TypeU8, TypeU16, TypeU32, TypeU64, TypeI8, TypeI16, TypeI32, TypeI64,
		TypeString, TypeBlob, TypeBlobIndex:
		return true
	default:
		return false
	}
}

// Variable reports whether t carries its payload in trailing slots rather
// than inline in the entry's value area.
func (t DataType) Variable() bool {
	return t == TypeString || t == TypeBlob
}

// Entry is a decoded entry slot's fixed 32-byte header fields. It does not
// include the trailing data slots of a multi-span record — the kvs package
// reads those directly off the page once it knows the span.
type Entry struct {
	NamespaceIndex uint8
	DataType       DataType
	Span           uint8
	ChunkIndex     uint8
	HeaderCRC      uint32
	Key            [16]byte

	// ValueArea is the raw 8 bytes at offset 24: either an inline fixed-width
	// value, or (length:2, reserved:2, crc:4) for variable-length types.
	ValueArea [8]byte
}

// DecodeEntry parses one 32-byte entry slot. It does not validate anything;
// callers run Validate separately so a structurally broken entry can still
// be reported rather than discarded.
func DecodeEntry(slot []byte) Entry {
	var e Entry
	e.NamespaceIndex = slot[0]
	e.DataType = DataType(slot[1])
	e.Span = slot[2]
	e.ChunkIndex = slot[3]
	e.HeaderCRC = binary.LittleEndian.Uint32(slot[4:8])
	copy(e.Key[:], slot[8:24])
	copy(e.ValueArea[:], slot[24:32])
	return e
}

// EncodeEntry serializes e into a fresh 32-byte slot buffer, including
// whatever HeaderCRC is currently set. Callers that need a fresh CRC should
// set it via ComputeHeaderCRC before calling EncodeEntry.
func EncodeEntry(e Entry) []byte {
	slot := make([]byte, SlotSize)
	slot[0] = e.NamespaceIndex
	slot[1] = byte(e.DataType)
	slot[2] = e.Span
	slot[3] = e.ChunkIndex
	binary.LittleEndian.PutUint32(slot[4:8], e.HeaderCRC)
	copy(slot[8:24], e.Key[:])
	copy(slot[24:32], e.ValueArea[:])
	return slot
}

// ComputeHeaderCRC computes the CRC-32 over an encoded entry slot's bytes
// 0..3 concatenated with bytes 8..31 — the 24 bytes that exclude the header
// CRC field itself (spec §4.3).
func ComputeHeaderCRC(slot []byte) uint32 {
	buf := make([]byte, 0, 24)
	buf = append(buf, slot[0:4]...)
	buf = append(buf, slot[8:32]...)
	return crc32.ChecksumIEEE(buf)
}

// KeyString trims an entry's fixed 16-byte key field at its first NUL (or
// its full length if unterminated) into a Go string.
func (e Entry) KeyString() string {
	for i, b := range e.Key {
		if b == 0 {
			return string(e.Key[:i])
		}
	}
	return string(e.Key[:])
}

// PrintableKey reports whether the key field holds only printable ASCII
// (0x20..0x7E) up to its terminator, per spec §4.3's validation rule.
func (e Entry) PrintableKey() bool {
	for _, b := range e.Key {
		if b == 0 {
			return true
		}
		if b < 0x20 || b > 0x7E {
			return false
		}
	}
	return true
}

// ValidSpan reports whether e.Span falls in the valid 1..=126 range.
func (e Entry) ValidSpan() bool {
	return e.Span >= 1 && e.Span <= MaxSlots
}

// InlineLength returns the 16-bit length a variable-length entry's value
// area carries at offset 24; the reserved bytes at offset 26 are not read.
func (e Entry) InlineLength() uint16 {
	return binary.LittleEndian.Uint16(e.ValueArea[0:2])
}

// InlineDataCRC returns the 32-bit data CRC a variable-length entry's value
// area carries at offset 28.
func (e Entry) InlineDataCRC() uint32 {
	return binary.LittleEndian.Uint32(e.ValueArea[4:8])
}

// SetInlineLength writes a variable-length entry's length field.
func (e *Entry) SetInlineLength(n uint16) {
	binary.LittleEndian.PutUint16(e.ValueArea[0:2], n)
}

// SetInlineDataCRC writes a variable-length entry's data CRC field.
func (e *Entry) SetInlineDataCRC(crc uint32) {
	binary.LittleEndian.PutUint32(e.ValueArea[4:8], crc)
}
