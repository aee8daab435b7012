package sparseimage

import (
	"context"

	flasherrors "github.com/nilotpal-labs/flashkit/pkg/errors"
)

// Ensure fills the read cache for [addr, addr+length) so that a subsequent
// synchronous read observes the effective content there. It is the
// workhorse behind ReadSync, ReadAsync, and the byte-indexed view's
// ensure-then-copy flavor. Write never calls it: its "sector fully covered"
// check only consults the lists already held (firstUncachedGapLocked).
func (s *Store) Ensure(ctx context.Context, addr, length int64) error {
	if err := s.checkRange(addr, length); err != nil {
		return err
	}
	if length == 0 {
		return nil
	}

	noProgressStreak := 0
	for {
		s.mu.Lock()
		gapAddr, gapLen, hasGap := s.firstUncachedGapLocked(addr, length)
		s.mu.Unlock()
		if !hasGap {
			return nil
		}

		if s.readCB == nil {
			// spec §4.2: with no read callback configured, gaps are
			// zero-filled directly into the read list rather than left at
			// the 0xFF sentinel.
			s.mu.Lock()
			s.read.Insert(gapAddr, make([]byte, gapLen))
			s.mu.Unlock()
			continue
		}

		if err := s.acquireFetch(ctx); err != nil {
			return err
		}
		result, cbErr := s.readCB(ctx, gapAddr, gapLen)
		s.releaseFetch()
		if cbErr != nil {
			return flasherrors.NewCallbackFailureError(cbErr, "read", gapAddr)
		}

		if s.applyReadResult(gapAddr, gapLen, result) {
			noProgressStreak = 0
			continue
		}

		noProgressStreak++
		if noProgressStreak < s.options.MaxReadRetries {
			continue
		}

		s.log.Warnw("read callback made no progress after max retries; filling remaining gap with erased sentinel",
			"addr", addr, "length", length, "maxRetries", s.options.MaxReadRetries)
		s.mu.Lock()
		if gAddr, gLen, still := s.firstUncachedGapLocked(addr, length); still {
			s.read.Insert(gAddr, fillBytes(gLen, erasedByte))
		}
		s.mu.Unlock()
		return nil
	}
}

// firstUncachedGapLocked returns the first sub-range of [addr, addr+length)
// covered by neither the read list nor the pending list. Caller must hold s.mu.
func (s *Store) firstUncachedGapLocked(addr, length int64) (gapAddr, gapLen int64, ok bool) {
	end := addr + length
	cursor := addr
	for cursor < end {
		rSeg, rOK := s.read.Find(cursor)
		pSeg, pOK := s.pending.Find(cursor)
		if rOK || pOK {
			next := cursor
			if rOK && rSeg.End() > next {
				next = rSeg.End()
			}
			if pOK && pSeg.End() > next {
				next = pSeg.End()
			}
			cursor = next
			continue
		}

		gapEnd := end
		if next, has := s.read.NextSegmentStart(cursor); has && next < gapEnd {
			gapEnd = next
		}
		if next, has := s.pending.NextSegmentStart(cursor); has && next < gapEnd {
			gapEnd = next
		}
		return cursor, gapEnd - cursor, true
	}
	return 0, 0, false
}

// applyReadResult inserts a callback's response into the read list and
// reports whether it advanced coverage of the originally requested gap.
// Responses landing entirely outside the requested gap are still accepted
// (spec §9's Open Question: "preserve the lenient behavior but log it") —
// they just don't count as progress for this call's retry budget.
func (s *Store) applyReadResult(requestedAddr, requestedLen int64, result ReadResult) bool {
	addr, data := result.resolve(requestedAddr)
	if len(data) == 0 {
		return false
	}

	overlapsRequested := addr < requestedAddr+requestedLen && addr+int64(len(data)) > requestedAddr
	if !overlapsRequested {
		s.log.Warnw("read callback response landed entirely outside the requested gap; accepting anyway",
			"requestedAddr", requestedAddr, "requestedLen", requestedLen,
			"responseAddr", addr, "responseLen", len(data))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	buf := make([]byte, len(data))
	copy(buf, data)
	s.read.Insert(addr, buf)

	_, remaining, hasGap := s.read.FirstGap(requestedAddr, requestedLen)
	if !hasGap {
		return true
	}
	return remaining < requestedLen
}

// acquireFetch blocks until the single read-fetch token is available, or
// ctx is done.
func (s *Store) acquireFetch(ctx context.Context) error {
	select {
	case <-s.fetchGate:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// releaseFetch returns the read-fetch token.
func (s *Store) releaseFetch() {
	s.fetchGate <- struct{}{}
}

func fillBytes(n int64, value byte) []byte {
	buf := make([]byte, n)
	if value != 0 {
		for i := range buf {
			buf[i] = value
		}
	}
	return buf
}
