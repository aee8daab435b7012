package kvs

import (
	"context"
	"hash/crc32"

	"github.com/nilotpal-labs/flashkit/internal/kvspage"
	flasherrors "github.com/nilotpal-labs/flashkit/pkg/errors"
)

func crc32Of(data []byte) uint32 {
	return crc32.ChecksumIEEE(data)
}

// Location identifies where an entry lives on a partition: the page it
// belongs to, its starting slot index, the store-relative byte offset of
// that slot, and how many slots it spans.
type Location struct {
	PageOffset int64
	SlotIndex  int
	ByteOffset int64
	Span       int
}

// resolveNamespace scans every namespace-definition entry in the partition
// and returns the index assigned to name, if any.
func (e *Engine) resolveNamespace(ctx context.Context, name string) (uint8, bool, error) {
	raw, _, err := e.scanPages(ctx)
	if err != nil {
		return 0, false, err
	}
	for _, ri := range raw {
		if ri.entry.NamespaceIndex == namespaceDefinitionIndex && ri.entry.DataType == kvspage.TypeU8 && ri.entry.KeyString() == name {
			return ri.entry.ValueArea[0], true, nil
		}
	}
	return 0, false, nil
}

// usedNamespaceIndices returns the set of namespace indices already assigned
// by a definition entry anywhere in the partition.
func (e *Engine) usedNamespaceIndices(ctx context.Context) (map[uint8]bool, error) {
	raw, _, err := e.scanPages(ctx)
	if err != nil {
		return nil, err
	}
	used := map[uint8]bool{}
	for _, ri := range raw {
		if ri.entry.NamespaceIndex == namespaceDefinitionIndex && ri.entry.DataType == kvspage.TypeU8 {
			used[ri.entry.ValueArea[0]] = true
		}
	}
	return used, nil
}

// AddNamespace assigns the smallest unused namespace index in 1..=254 to
// name and writes the namespace-definition entry that records it
// (spec §4.4). It refuses with Conflict if name is already assigned.
func (e *Engine) AddNamespace(ctx context.Context, name string) (uint8, error) {
	if _, exists, err := e.resolveNamespace(ctx, name); err != nil {
		return 0, err
	} else if exists {
		return 0, flasherrors.NewConflictError(name)
	}

	used, err := e.usedNamespaceIndices(ctx)
	if err != nil {
		return 0, err
	}
	var index uint8
	found := false
	for candidate := 1; candidate <= int(e.options.MaxNamespaces); candidate++ {
		if !used[uint8(candidate)] {
			index = uint8(candidate)
			found = true
			break
		}
	}
	if !found {
		return 0, flasherrors.NewExhaustedError("namespace index")
	}

	entry := kvspage.Entry{NamespaceIndex: namespaceDefinitionIndex, DataType: kvspage.TypeU8, Span: 1, ChunkIndex: 0xFF}
	copyKey(&entry, name)
	entry.ValueArea[0] = index

	if err := e.writeEntry(ctx, entry, nil); err != nil {
		return 0, err
	}
	return index, nil
}

// AddItem writes value under (namespace, key). namespace must already have
// been created via AddNamespace.
func (e *Engine) AddItem(ctx context.Context, namespace, key string, value Value) error {
	if err := value.validate(); err != nil {
		return err
	}
	nsIndex, ok, err := e.resolveNamespace(ctx, namespace)
	if err != nil {
		return err
	}
	if !ok {
		return flasherrors.NewNotFoundError(namespace, key).WithMessage("namespace has not been added")
	}

	entry := kvspage.Entry{NamespaceIndex: nsIndex, DataType: value.Kind.dataType(), Span: uint8(value.spanFor()), ChunkIndex: 0xFF}
	copyKey(&entry, key)

	var dataBytes []byte
	switch value.Kind {
	case KindString:
		dataBytes = paddedData([]byte(value.Str))
		entry.SetInlineLength(uint16(len(value.Str)))
		entry.SetInlineDataCRC(crc32Of([]byte(value.Str)))
	case KindBlob:
		dataBytes = paddedData(value.Bytes)
		entry.SetInlineLength(uint16(len(value.Bytes)))
		entry.SetInlineDataCRC(crc32Of(value.Bytes))
	case KindBlobIndex:
		entry.ValueArea = encodeBlobIndexValue(value)
	default:
		entry.ValueArea = encodeInlineValue(value)
	}

	return e.writeEntry(ctx, entry, dataBytes)
}

// DeleteItem erases the slots of the (namespace, key) entry and marks them
// EMPTY. A missing item yields NotFound.
func (e *Engine) DeleteItem(ctx context.Context, namespace, key string) error {
	loc, err := e.FindItem(ctx, namespace, key)
	if err != nil {
		return err
	}

	erased := make([]byte, kvspage.SlotSize)
	for i := range erased {
		erased[i] = 0xFF
	}
	for i := 0; i < loc.Span; i++ {
		if err := e.store.Write(ctx, loc.ByteOffset+int64(i)*kvspage.SlotSize, erased); err != nil {
			return err
		}
	}
	return e.setBitmapRange(ctx, loc.PageOffset, loc.SlotIndex, loc.Span, kvspage.SlotEmpty)
}

// UpdateItem is delete-then-add; a failed delete because the item does not
// yet exist is not fatal (spec §4.4).
func (e *Engine) UpdateItem(ctx context.Context, namespace, key string, value Value) error {
	if err := e.DeleteItem(ctx, namespace, key); err != nil {
		if !flasherrors.IsKVSError(err) || flasherrors.GetErrorCode(err) != flasherrors.ErrorCodeNotFound {
			return err
		}
	}
	return e.AddItem(ctx, namespace, key, value)
}

// FindItem returns the location of the first (namespace, key) match, or a
// NotFound error.
func (e *Engine) FindItem(ctx context.Context, namespace, key string) (*Location, error) {
	raw, _, err := e.scanPages(ctx)
	if err != nil {
		return nil, err
	}
	nsIndex, ok, err := e.resolveNamespace(ctx, namespace)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, flasherrors.NewNotFoundError(namespace, key)
	}

	for _, ri := range raw {
		if ri.entry.NamespaceIndex == nsIndex && ri.entry.KeyString() == key {
			span := int(ri.entry.Span)
			if span < 1 {
				span = 1
			}
			return &Location{
				PageOffset: ri.pageOffset,
				SlotIndex:  ri.slotIndex,
				ByteOffset: ri.pageOffset + kvspage.HeaderSize + kvspage.BitmapSize + int64(ri.slotIndex)*kvspage.SlotSize,
				Span:       span,
			}, nil
		}
	}
	return nil, flasherrors.NewNotFoundError(namespace, key)
}

// writeEntry locates span consecutive non-WRITTEN slots within a single
// ACTIVE or FULL page, writes the leading entry slot (patching its header
// CRC immediately before the write) followed by any trailing data slots,
// then flips the covered bitmap bits to WRITTEN.
func (e *Engine) writeEntry(ctx context.Context, entry kvspage.Entry, dataBytes []byte) error {
	span := int(entry.Span)
	if span < 1 {
		span = 1
	}

	pageOffset, startSlot, err := e.findFreeRun(ctx, span)
	if err != nil {
		return err
	}

	encoded := encodeEntryWithCRC(entry)
	leadOffset := pageOffset + kvspage.HeaderSize + kvspage.BitmapSize + int64(startSlot)*kvspage.SlotSize
	if err := e.store.Write(ctx, leadOffset, encoded); err != nil {
		return err
	}
	if len(dataBytes) > 0 {
		if err := e.store.Write(ctx, leadOffset+kvspage.SlotSize, dataBytes); err != nil {
			return err
		}
	}
	return e.setBitmapRange(ctx, pageOffset, startSlot, span, kvspage.SlotWritten)
}

// encodeEntryWithCRC computes the header CRC over entry's encoded bytes and
// returns the final 32-byte slot, ready to write.
func encodeEntryWithCRC(entry kvspage.Entry) []byte {
	entry.HeaderCRC = 0
	draft := kvspage.EncodeEntry(entry)
	entry.HeaderCRC = kvspage.ComputeHeaderCRC(draft)
	return kvspage.EncodeEntry(entry)
}

// findFreeRun scans ACTIVE/FULL pages for span consecutive non-WRITTEN
// slots within a single page.
func (e *Engine) findFreeRun(ctx context.Context, span int) (pageOffset int64, startSlot int, err error) {
	data, readErr := e.store.ReadSync(ctx, e.partition, e.size)
	if readErr != nil {
		return 0, 0, readErr
	}
	pageSize := int64(e.options.PageSize)

	for i := 0; i < e.pageCount(); i++ {
		offset := int64(i) * pageSize
		page, decodeErr := kvspage.Decode(e.partition+offset, data[offset:offset+pageSize])
		if decodeErr != nil {
			return 0, 0, decodeErr
		}
		if page.Header.State != kvspage.StateActive && page.Header.State != kvspage.StateFull {
			continue
		}

		run := 0
		for slot := 0; slot < kvspage.MaxSlots; slot++ {
			if page.Bitmap.Get(slot) == kvspage.SlotWritten {
				run = 0
				continue
			}
			run++
			if run == span {
				return page.Offset, slot - span + 1, nil
			}
		}
	}
	return 0, 0, flasherrors.NewExhaustedError("entry slot")
}

// setBitmapRange flips bitmap bits [start, start+span) on the page at
// pageOffset to state, rewriting the whole 32-byte bitmap (spec §9:
// "pass the bitmap by mutable reference").
func (e *Engine) setBitmapRange(ctx context.Context, pageOffset int64, start, span int, state kvspage.SlotState) error {
	bitmapAddr := pageOffset + kvspage.HeaderSize
	current, err := e.store.ReadSync(ctx, bitmapAddr, kvspage.BitmapSize)
	if err != nil {
		return err
	}
	var bitmap kvspage.Bitmap
	copy(bitmap[:], current)
	for i := start; i < start+span; i++ {
		bitmap.Set(i, state)
	}
	return e.store.Write(ctx, bitmapAddr, bitmap[:])
}

func copyKey(entry *kvspage.Entry, key string) {
	n := copy(entry.Key[:], key)
	if n < len(entry.Key) {
		entry.Key[n] = 0
	}
}

func paddedData(data []byte) []byte {
	padded := ceilDiv(len(data), kvspage.SlotSize) * kvspage.SlotSize
	buf := make([]byte, padded)
	for i := range buf {
		buf[i] = 0xFF
	}
	copy(buf, data)
	return buf
}
