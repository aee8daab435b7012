// Package segment implements the ordered, coalescing list of non-overlapping
// (address, bytes) ranges that backs both of the Sparse Image Store's caches
// (spec §4.1). It has no notion of "read" vs "pending" or of the erased-flash
// sentinel — that priority and fill-value logic belongs to the store, which
// owns two independent Lists.
package segment

// Segment is a contiguous run of bytes starting at Addr. A List never holds
// two Segments that overlap or touch; Data is always non-empty.
type Segment struct {
	Addr int64
	Data []byte
}

// End returns the address one past the last byte of the segment.
func (s Segment) End() int64 {
	return s.Addr + int64(len(s.Data))
}

// Contains reports whether addr falls within the segment.
func (s Segment) Contains(addr int64) bool {
	return addr >= s.Addr && addr < s.End()
}

// touchesOrOverlaps reports whether a segment starting at addr with the given
// length touches or overlaps s. Touching counts because the List invariant
// forbids adjacent segments — they must be merged into one.
func (s Segment) touchesOrOverlaps(addr, length int64) bool {
	end := addr + length
	return s.Addr <= end && s.End() >= addr
}

// clone returns a Segment holding its own copy of Data, so callers that
// mutate a returned buffer never reach back into the List's storage.
func (s Segment) clone() Segment {
	data := make([]byte, len(s.Data))
	copy(data, s.Data)
	return Segment{Addr: s.Addr, Data: data}
}
