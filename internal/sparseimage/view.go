package sparseimage

import "context"

// ReadSync ensures [addr, addr+length) is cached, then returns its effective
// bytes: pending overrides read overrides the erased-flash sentinel
// (spec §3).
func (s *Store) ReadSync(ctx context.Context, addr, length int64) ([]byte, error) {
	if err := s.checkRange(addr, length); err != nil {
		return nil, err
	}
	if length == 0 {
		return nil, nil
	}
	if err := s.Ensure(ctx, addr, length); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.effectiveMaterializeLocked(addr, addr+length), nil
}

// effectiveMaterializeLocked produces the dense effective-byte buffer for
// [lo, hi): read content overlaid with pending writes, defaulting to the
// erased sentinel where neither list has coverage (spec §3). Caller must
// hold s.mu.
func (s *Store) effectiveMaterializeLocked(lo, hi int64) []byte {
	buf := s.read.Materialize(lo, hi, erasedByte)
	for _, seg := range s.pending.Segments() {
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

// ReadAsyncResult is delivered on the channel ReadAsync returns.
type ReadAsyncResult struct {
	Data []byte
	Err  error
}

// ReadAsync runs ReadSync on a new goroutine and reports its outcome on the
// returned channel, which is always sent to exactly once and then closed.
func (s *Store) ReadAsync(ctx context.Context, addr, length int64) <-chan ReadAsyncResult {
	out := make(chan ReadAsyncResult, 1)
	go func() {
		defer close(out)
		data, err := s.ReadSync(ctx, addr, length)
		out <- ReadAsyncResult{Data: data, Err: err}
	}()
	return out
}

// ByteAt returns the single effective byte at addr without ensuring it is
// cached first: it assumes the range has already been materialized by a
// prior Ensure/ReadSync, or accepts the erased-flash sentinel default for an
// uncovered address. Unlike ReadSync, it never invokes a read callback and
// never suspends (spec §4.2's byte-indexed view, §5's "byte-indexed reads
// without ensure are synchronous in-memory").
func (s *Store) ByteAt(addr int64) (byte, error) {
	if err := s.checkRange(addr, 1); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.effectiveMaterializeLocked(addr, addr+1)[0], nil
}

// CopyRange returns the effective bytes of [addr, addr+length) without
// ensuring the range is cached first — the byte-indexed view's synchronous
// range-copy flavor (spec §4.2's "same assumption" as ByteAt, as opposed to
// CopyRangeAsync's ensure-then-copy). It never suspends.
func (s *Store) CopyRange(addr, length int64) ([]byte, error) {
	if err := s.checkRange(addr, length); err != nil {
		return nil, err
	}
	if length == 0 {
		return nil, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.effectiveMaterializeLocked(addr, addr+length), nil
}

// CopyRangeAsync is the byte-indexed view's asynchronous range-copy flavor:
// ensure-then-copy, run on a new goroutine (spec §4.2).
func (s *Store) CopyRangeAsync(ctx context.Context, addr, length int64) <-chan ReadAsyncResult {
	return s.ReadAsync(ctx, addr, length)
}
