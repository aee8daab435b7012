// Package kvspage decodes a single 4 KiB NVS page: its 32-byte header, its
// 32-byte entry-state bitmap, and the 126 fixed-size entry slots that
// follow. It has no notion of namespaces or typed values — that belongs to
// the kvs package, which drives a kvspage.Page per page it walks.
package kvspage

import (
	"encoding/binary"

	flasherrors "github.com/nilotpal-labs/flashkit/pkg/errors"
)

const (
	// Size is the fixed on-flash size of one NVS page.
	Size = 4096

	// HeaderSize is the byte length of the page header.
	HeaderSize = 32

	// BitmapSize is the byte length of the entry-state bitmap.
	BitmapSize = 32

	// SlotSize is the byte length of one entry slot.
	SlotSize = 32

	// MaxSlots is the number of entry slots per page.
	MaxSlots = 126
)

// State is a page's lifecycle state, encoded in the first word of the
// header.
type State uint32

const (
	StateUninit  State = 0xFFFFFFFF
	StateActive  State = 0xFFFFFFFE
	StateFull    State = 0xFFFFFFFC
	StateFreeing State = 0xFFFFFFF8
	StateCorrupt State = 0xFFFFFFF0
)

// String renders a State the way log lines and parse reports want to see it.
func (s State) String() string {
	switch s {
	case StateUninit:
		return "UNINIT"
	case StateActive:
		return "ACTIVE"
	case StateFull:
		return "FULL"
	case StateFreeing:
		return "FREEING"
	case StateCorrupt:
		return "CORRUPT"
	default:
		return "UNKNOWN"
	}
}

// Skippable reports whether the parser should skip a page in this state
// entirely (spec §4.3: UNINIT and CORRUPT pages are never parsed).
func (s State) Skippable() bool {
	return s == StateUninit || s == StateCorrupt
}

// Header is the decoded fixed layout at the start of a page: 32-bit state,
// 32-bit sequence, 8-bit version, 19 bytes reserved, 32-bit CRC.
type Header struct {
	State    State
	Sequence uint32
	Version  uint8
	CRC      uint32
}

// DecodeHeader parses the 32-byte page header from buf[:HeaderSize].
func DecodeHeader(buf []byte) (Header, error) {
	if len(buf) < HeaderSize {
		return Header{}, flasherrors.NewStructurallyInvalidError("short page header buffer", 0, -1)
	}
	return Header{
		State:    State(binary.LittleEndian.Uint32(buf[0:4])),
		Sequence: binary.LittleEndian.Uint32(buf[4:8]),
		Version:  buf[8],
		CRC:      binary.LittleEndian.Uint32(buf[28:32]),
	}, nil
}

// EncodeHeader serializes h into a fresh 32-byte buffer, CRC included.
func EncodeHeader(h Header) []byte {
	buf := make([]byte, HeaderSize)
	binary.LittleEndian.PutUint32(buf[0:4], uint32(h.State))
	binary.LittleEndian.PutUint32(buf[4:8], h.Sequence)
	buf[8] = h.Version
	binary.LittleEndian.PutUint32(buf[28:32], h.CRC)
	return buf
}

// Page is a decoded page: its header plus copies of its bitmap and its
// slot region. Changing them does not change the buffer the page was
// decoded from.
type Page struct {
	Offset int64
	Header Header
	Bitmap Bitmap
	Slots  []byte // raw bytes of the MaxSlots*SlotSize entry-slot region
}

// Decode parses a full 4096-byte page; offset is the page's address and is
// recorded as Page.Offset (the kvs engine passes the store address of the
// page). buf must be exactly Size bytes.
func Decode(offset int64, buf []byte) (Page, error) {
	if len(buf) != Size {
		return Page{}, flasherrors.NewStructurallyInvalidError("page buffer is not 4096 bytes", offset, -1)
	}
	header, err := DecodeHeader(buf[:HeaderSize])
	if err != nil {
		return Page{}, err
	}
	bitmap := Bitmap{}
	copy(bitmap[:], buf[HeaderSize:HeaderSize+BitmapSize])
	slots := make([]byte, len(buf)-HeaderSize-BitmapSize)
	copy(slots, buf[HeaderSize+BitmapSize:])
	return Page{Offset: offset, Header: header, Bitmap: bitmap, Slots: slots}, nil
}

// Slot returns the raw 32-byte region for entry slot index i.
func (p Page) Slot(i int) []byte {
	return p.Slots[i*SlotSize : (i+1)*SlotSize]
}
