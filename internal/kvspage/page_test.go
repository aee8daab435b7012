package kvspage

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHeaderRoundTrip(t *testing.T) {
	h := Header{State: StateActive, Sequence: 7, Version: 1}
	buf := make([]byte, Size)
	copy(buf[:HeaderSize], EncodeHeader(h))

	decoded, err := DecodeHeader(buf[:HeaderSize])
	require.NoError(t, err)
	require.Equal(t, h.State, decoded.State)
	require.Equal(t, h.Sequence, decoded.Sequence)
	require.Equal(t, h.Version, decoded.Version)
}

func TestStateSkippable(t *testing.T) {
	require.True(t, StateUninit.Skippable())
	require.True(t, StateCorrupt.Skippable())
	require.False(t, StateActive.Skippable())
	require.False(t, StateFull.Skippable())
}

func TestBitmapGetSetRoundTrip(t *testing.T) {
	var b Bitmap
	b.Set(0, SlotWritten)
	b.Set(1, SlotEmpty)
	b.Set(4, SlotErased)

	require.Equal(t, SlotWritten, b.Get(0))
	require.Equal(t, SlotEmpty, b.Get(1))
	require.Equal(t, SlotErased, b.Get(4))
	// Untouched slots default to ERASED (zero value).
	require.Equal(t, SlotErased, b.Get(2))
}

func TestBitmapUniformRange(t *testing.T) {
	var b Bitmap
	b.Set(10, SlotWritten)
	b.Set(11, SlotWritten)
	b.Set(12, SlotWritten)
	require.True(t, b.UniformRange(10, 3))

	b.Set(12, SlotEmpty)
	require.False(t, b.UniformRange(10, 3))
}

func TestEntryHeaderCRCRoundTrip(t *testing.T) {
	e := Entry{NamespaceIndex: 1, DataType: TypeU32, Span: 1, ChunkIndex: 0xFF}
	copy(e.Key[:], "count")
	e.HeaderCRC = ComputeHeaderCRC(EncodeEntry(e))

	slot := EncodeEntry(e)
	got := ComputeHeaderCRC(slot)
	require.Equal(t, e.HeaderCRC, got)

	decoded := DecodeEntry(slot)
	require.Equal(t, "count", decoded.KeyString())
	require.True(t, decoded.PrintableKey())
	require.True(t, decoded.ValidSpan())
}

func TestDecodePageRejectsWrongSize(t *testing.T) {
	_, err := Decode(0, make([]byte, 100))
	require.Error(t, err)
}

func TestIterateWrittenSkipsNonWrittenAndAdvancesBySpan(t *testing.T) {
	buf := make([]byte, Size)
	copy(buf[:HeaderSize], EncodeHeader(Header{State: StateActive}))

	var bitmap Bitmap
	bitmap.Set(0, SlotWritten)
	bitmap.Set(1, SlotWritten)
	bitmap.Set(2, SlotWritten)
	copy(buf[HeaderSize:HeaderSize+BitmapSize], bitmap[:])

	e0 := Entry{NamespaceIndex: 1, DataType: TypeU32, Span: 1, ChunkIndex: 0xFF}
	copy(e0.Key[:], "count")
	e0.HeaderCRC = ComputeHeaderCRC(EncodeEntry(e0))
	copy(buf[HeaderSize+BitmapSize:], EncodeEntry(e0))

	e1 := Entry{NamespaceIndex: 1, DataType: TypeString, Span: 2, ChunkIndex: 0xFF}
	copy(e1.Key[:], "name")
	e1.SetInlineLength(3)
	e1.HeaderCRC = ComputeHeaderCRC(EncodeEntry(e1))
	copy(buf[HeaderSize+BitmapSize+SlotSize:], EncodeEntry(e1))

	page, err := Decode(0, buf)
	require.NoError(t, err)

	written := page.IterateWritten()
	require.Len(t, written, 2)
	require.Equal(t, 0, written[0].SlotIndex)
	require.Equal(t, "count", written[0].Entry.KeyString())
	require.Equal(t, 1, written[1].SlotIndex)
	require.Equal(t, "name", written[1].Entry.KeyString())
	require.Empty(t, written[1].Anomalies)
}
