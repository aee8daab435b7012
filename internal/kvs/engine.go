package kvs

import (
	"context"
	"fmt"
	"hash/crc32"

	"github.com/nilotpal-labs/flashkit/internal/kvspage"
	"github.com/nilotpal-labs/flashkit/internal/sparseimage"
	flasherrors "github.com/nilotpal-labs/flashkit/pkg/errors"
	"github.com/nilotpal-labs/flashkit/pkg/logger"
	"github.com/nilotpal-labs/flashkit/pkg/options"
	"go.uber.org/zap"
)

const namespaceDefinitionIndex = 0

// Engine is the NVS engine over one partition of a Sparse Image Store. It
// owns no persistent state of its own — every operation re-derives what it
// needs by reading through the store (spec §3's ownership note).
type Engine struct {
	store     *sparseimage.Store
	partition int64 // byte offset of the partition within the store
	size      int64 // partition size in bytes
	options   options.KVSOptions
	log       *zap.SugaredLogger
}

// New creates an Engine over [partitionOffset, partitionOffset+size) of
// store. size must be a multiple of the configured page size.
func New(store *sparseimage.Store, partitionOffset, size int64, opts options.KVSOptions, log *zap.SugaredLogger) (*Engine, error) {
	if opts.PageSize == 0 {
		opts = options.NewDefaultKVSOptions()
	}
	if size <= 0 || size%int64(opts.PageSize) != 0 {
		return nil, flasherrors.NewFieldRangeError("size", size, opts.PageSize, nil)
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Engine{store: store, partition: partitionOffset, size: size, options: opts, log: log}, nil
}

func (e *Engine) pageCount() int {
	return int(e.size / int64(e.options.PageSize))
}

// Parse walks every non-skippable page of the partition and returns its
// decoded state plus every WRITTEN, fully resolved item (spec §4.4's
// two-pass parse).
func (e *Engine) Parse(ctx context.Context) ([]PageResult, error) {
	raw, pages, err := e.scanPages(ctx)
	if err != nil {
		return nil, err
	}

	nsMap := map[uint8]string{}
	for _, item := range raw {
		if item.entry.NamespaceIndex == namespaceDefinitionIndex && item.entry.DataType == kvspage.TypeU8 {
			nsMap[item.entry.ValueArea[0]] = item.entry.KeyString()
		}
	}

	pageIndex := make(map[int64]int, len(pages))
	for i, p := range pages {
		pageIndex[p.Offset] = i
	}

	for _, ri := range raw {
		if ri.entry.NamespaceIndex == namespaceDefinitionIndex && ri.entry.DataType == kvspage.TypeU8 {
			continue
		}
		name, ok := nsMap[ri.entry.NamespaceIndex]
		if !ok {
			name = fmt.Sprintf("ns_%d", ri.entry.NamespaceIndex)
		}
		value, dataCRCValid := decodeItemValue(ri.entry, ri.dataBytes)
		item := Item{
			PageOffset:     ri.pageOffset,
			SlotIndex:      ri.slotIndex,
			Namespace:      name,
			NamespaceIndex: ri.entry.NamespaceIndex,
			Key:            ri.entry.KeyString(),
			Value:          value,
			HeaderCRCValid: ri.headerCRCValid,
			DataCRCValid:   dataCRCValid,
			Anomalies:      ri.anomalies,
		}
		idx := pageIndex[ri.pageOffset]
		pages[idx].Items = append(pages[idx].Items, item)
	}

	return pages, nil
}

// decodeItemValue decodes an entry's typed value and, for variable-length
// kinds, verifies the data CRC against the trailing data slots.
func decodeItemValue(entry kvspage.Entry, dataBytes []byte) (Value, bool) {
	kind, known := kindFromDataType(entry.DataType)
	if !known {
		return Value{}, false
	}
	switch kind {
	case KindString, KindBlob:
		length := int(entry.InlineLength())
		if length > len(dataBytes) {
			length = len(dataBytes)
		}
		actual := dataBytes[:length]
		valid := crc32.ChecksumIEEE(actual) == entry.InlineDataCRC()
		if kind == KindString {
			return StringValue(string(actual)), valid
		}
		cp := make([]byte, len(actual))
		copy(cp, actual)
		return BlobValue(cp), valid
	case KindBlobIndex:
		return decodeBlobIndexValue(entry.ValueArea), true
	default:
		return decodeInlineValue(kind, entry.ValueArea), true
	}
}

type rawItem struct {
	pageOffset     int64
	slotIndex      int
	entry          kvspage.Entry
	dataBytes      []byte
	headerCRCValid bool
	anomalies      []error
}

// scanPages reads the whole partition, decodes every non-skippable page,
// and collects every WRITTEN entry (namespace definitions included — the
// caller separates them out) in page order. It is the shared first pass
// behind Parse and every mutator that needs to resolve a namespace or find
// a free slot.
func (e *Engine) scanPages(ctx context.Context) ([]rawItem, []PageResult, error) {
	data, err := e.store.ReadSync(ctx, e.partition, e.size)
	if err != nil {
		return nil, nil, err
	}

	pageSize := int64(e.options.PageSize)
	var raw []rawItem
	var pages []PageResult

	for i := 0; i < e.pageCount(); i++ {
		offset := int64(i) * pageSize
		chunk := data[offset : offset+pageSize]

		page, decodeErr := kvspage.Decode(e.partition+offset, chunk)
		if decodeErr != nil {
			return nil, nil, decodeErr
		}
		if page.Header.State.Skippable() {
			continue
		}

		pages = append(pages, PageResult{
			Offset:   page.Offset,
			State:    page.Header.State,
			Sequence: page.Header.Sequence,
		})

		for _, we := range page.IterateWritten() {
			entry := we.Entry
			var dataBytes []byte
			if entry.DataType.Variable() && entry.ValidSpan() {
				lo := (we.SlotIndex + 1) * kvspage.SlotSize
				hi := (we.SlotIndex + int(entry.Span)) * kvspage.SlotSize
				if hi <= len(page.Slots) {
					dataBytes = page.Slots[lo:hi]
				}
			}
			raw = append(raw, rawItem{
				pageOffset:     page.Offset,
				slotIndex:      we.SlotIndex,
				entry:          entry,
				dataBytes:      dataBytes,
				headerCRCValid: we.HeaderCRCValid(page.Offset),
				anomalies:      we.Anomalies,
			})
		}
	}

	return raw, pages, nil
}
