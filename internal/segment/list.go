package segment

import "sort"

// List is an ordered collection of non-overlapping, non-touching Segments,
// sorted ascending by address. Insert and Remove are the only mutators:
// Insert coalesces to enforce that invariant, and Remove only cuts ranges
// out, which cannot make two segments touch; every other method is a
// read-only query over the current segments.
type List struct {
	segs []Segment
}

// NewList returns an empty List.
func NewList() *List {
	return &List{}
}

// Len returns the number of segments currently in the list.
func (l *List) Len() int {
	return len(l.segs)
}

// Segments returns the list's segments in address order. The caller must not
// mutate the returned slice or its elements.
func (l *List) Segments() []Segment {
	return l.segs
}

// indexAtOrBefore returns the index of the last segment whose Addr is <= addr,
// or -1 if every segment starts after addr.
func (l *List) indexAtOrBefore(addr int64) int {
	i := sort.Search(len(l.segs), func(i int) bool { return l.segs[i].Addr > addr })
	return i - 1
}

// Find returns the segment containing addr, if any.
func (l *List) Find(addr int64) (Segment, bool) {
	i := l.indexAtOrBefore(addr)
	if i < 0 {
		return Segment{}, false
	}
	if l.segs[i].Contains(addr) {
		return l.segs[i], true
	}
	return Segment{}, false
}

// Covered reports whether every byte in [addr, addr+length) is present in
// the list. length <= 0 is trivially covered.
func (l *List) Covered(addr, length int64) bool {
	_, _, hasGap := l.FirstGap(addr, length)
	return !hasGap
}

// FirstGap returns the first uncovered sub-range within [addr, addr+length),
// clipped to that query range. ok is false if the whole range is covered.
func (l *List) FirstGap(addr, length int64) (gapAddr, gapLen int64, ok bool) {
	if length <= 0 {
		return 0, 0, false
	}
	end := addr + length
	cursor := addr
	for cursor < end {
		seg, found := l.Find(cursor)
		if !found {
			// cursor is uncovered; the gap runs until the next segment
			// starts or the query ends, whichever comes first.
			gapEnd := end
			if next, ok := l.nextSegmentAfter(cursor); ok && next.Addr < gapEnd {
				gapEnd = next.Addr
			}
			return cursor, gapEnd - cursor, true
		}
		cursor = seg.End()
	}
	return 0, 0, false
}

// nextSegmentAfter returns the first segment whose Addr is > addr.
func (l *List) nextSegmentAfter(addr int64) (Segment, bool) {
	i := sort.Search(len(l.segs), func(i int) bool { return l.segs[i].Addr > addr })
	if i >= len(l.segs) {
		return Segment{}, false
	}
	return l.segs[i], true
}

// NextSegmentStart returns the address of the first segment starting after
// addr, if any. Used by callers that need to compute a gap's extent across
// more than one List (the Sparse Image Store's read+pending union).
func (l *List) NextSegmentStart(addr int64) (int64, bool) {
	seg, ok := l.nextSegmentAfter(addr)
	if !ok {
		return 0, false
	}
	return seg.Addr, true
}

// Insert adds (addr, data) to the list. Any existing segment that touches or
// overlaps the new range is absorbed into a single merged segment; within
// the overlap, data's bytes win (spec §4.1: "the later insertion's bytes
// win"). Insert is a no-op for an empty data slice.
func (l *List) Insert(addr int64, data []byte) {
	if len(data) == 0 {
		return
	}

	newEnd := addr + int64(len(data))

	// Partition the existing segments into those absorbed by this insert
	// and those left untouched.
	var absorbed []Segment
	kept := l.segs[:0:0]
	for _, seg := range l.segs {
		if seg.touchesOrOverlaps(addr, int64(len(data))) {
			absorbed = append(absorbed, seg)
		} else {
			kept = append(kept, seg)
		}
	}

	mergedLo, mergedHi := addr, newEnd
	for _, seg := range absorbed {
		if seg.Addr < mergedLo {
			mergedLo = seg.Addr
		}
		if seg.End() > mergedHi {
			mergedHi = seg.End()
		}
	}

	buf := make([]byte, mergedHi-mergedLo)
	for _, seg := range absorbed {
		copy(buf[seg.Addr-mergedLo:], seg.Data)
	}
	copy(buf[addr-mergedLo:], data)

	kept = append(kept, Segment{Addr: mergedLo, Data: buf})
	sort.Slice(kept, func(i, j int) bool { return kept[i].Addr < kept[j].Addr })
	l.segs = kept
}

// Remove deletes the portion of the list within [lo, hi), splitting any
// segment that only partially falls inside the range.
func (l *List) Remove(lo, hi int64) {
	if hi <= lo {
		return
	}
	kept := l.segs[:0:0]
	for _, seg := range l.segs {
		segLo, segHi := seg.Addr, seg.End()
		if segHi <= lo || segLo >= hi {
			kept = append(kept, seg)
			continue
		}
		if segLo < lo {
			left := make([]byte, lo-segLo)
			copy(left, seg.Data[:lo-segLo])
			kept = append(kept, Segment{Addr: segLo, Data: left})
		}
		if segHi > hi {
			right := make([]byte, segHi-hi)
			copy(right, seg.Data[hi-segLo:])
			kept = append(kept, Segment{Addr: hi, Data: right})
		}
	}
	sort.Slice(kept, func(i, j int) bool { return kept[i].Addr < kept[j].Addr })
	l.segs = kept
}

// Materialize produces a dense [hi-lo]byte buffer for [lo, hi), filling any
// uncovered bytes with fill. hi must be >= lo.
func (l *List) Materialize(lo, hi int64, fill byte) []byte {
	if hi <= lo {
		return nil
	}
	buf := make([]byte, hi-lo)
	if fill != 0 {
		for i := range buf {
			buf[i] = fill
		}
	}
	i := l.indexAtOrBefore(lo)
	if i < 0 {
		i = 0
	}
	for ; i < len(l.segs); i++ {
		seg := l.segs[i]
		if seg.Addr >= hi {
			break
		}
		segLo, segHi := seg.Addr, seg.End()
		if segLo < lo {
			segLo = lo
		}
		if segHi > hi {
			segHi = hi
		}
		if segLo >= segHi {
			continue
		}
		copy(buf[segLo-lo:segHi-lo], seg.Data[segLo-seg.Addr:segHi-seg.Addr])
	}
	return buf
}

// ByteAt returns the byte at addr and whether it is covered by the list.
func (l *List) ByteAt(addr int64) (byte, bool) {
	seg, ok := l.Find(addr)
	if !ok {
		return 0, false
	}
	return seg.Data[addr-seg.Addr], true
}

// Clone returns a deep copy of the list.
func (l *List) Clone() *List {
	out := &List{segs: make([]Segment, len(l.segs))}
	for i, seg := range l.segs {
		out.segs[i] = seg.clone()
	}
	return out
}
