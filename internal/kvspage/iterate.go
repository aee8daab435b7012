package kvspage

import flasherrors "github.com/nilotpal-labs/flashkit/pkg/errors"

// WrittenEntry pairs a decoded Entry with where it lives on the page and
// whatever structural problems were found with it. A structurally invalid
// entry is still returned — callers decide whether to surface it — per
// spec §7's "parse-time anomalies are attached, not raised" policy.
type WrittenEntry struct {
	SlotIndex int
	Entry     Entry
	Anomalies []error
}

// HeaderCRCValid reports whether the entry's stored header CRC matches the
// CRC computed over its encoded bytes.
func (w WrittenEntry) HeaderCRCValid(pageOffset int64) bool {
	got := ComputeHeaderCRC(EncodeEntry(w.Entry))
	return got == w.Entry.HeaderCRC
}

// IterateWritten walks a page's bitmap and slots once, yielding every
// WRITTEN entry and advancing the slot cursor by the entry's span so
// multi-slot records are visited exactly once (spec §4.4's first parse
// pass). A structurally invalid span (0 or >MaxSlots, or one that would run
// past the end of the page) is reported as a single-slot anomaly and the
// cursor advances by 1 so a corrupt page does not hang the walk.
func (p Page) IterateWritten() []WrittenEntry {
	var out []WrittenEntry
	for i := 0; i < MaxSlots; {
		if p.Bitmap.Get(i) != SlotWritten {
			i++
			continue
		}

		entry := DecodeEntry(p.Slot(i))
		var anomalies []error

		span := int(entry.Span)
		if !entry.ValidSpan() {
			anomalies = append(anomalies, flasherrors.NewStructurallyInvalidError("invalid span", p.Offset, i))
			span = 1
		} else if i+span > MaxSlots {
			anomalies = append(anomalies, flasherrors.NewStructurallyInvalidError("span runs past end of page", p.Offset, i))
			span = 1
		}

		if !entry.PrintableKey() {
			anomalies = append(anomalies, flasherrors.NewStructurallyInvalidError("non-printable key", p.Offset, i))
		}
		if !KnownDataType(entry.DataType) {
			anomalies = append(anomalies, flasherrors.NewStructurallyInvalidError("unknown data type", p.Offset, i))
		}
		if entry.ValidSpan() && i+int(entry.Span) <= MaxSlots && !p.Bitmap.UniformRange(i, int(entry.Span)) {
			anomalies = append(anomalies, flasherrors.NewStructurallyInvalidError("bitmap state not uniform across entry span", p.Offset, i))
		}

		out = append(out, WrittenEntry{SlotIndex: i, Entry: entry, Anomalies: anomalies})
		i += span
	}
	return out
}
