package sparseimage

import (
	"context"

	"github.com/nilotpal-labs/flashkit/internal/segment"
	flasherrors "github.com/nilotpal-labs/flashkit/pkg/errors"
	"go.uber.org/multierr"
)

// FlushResult reports what a Flush call actually committed.
type FlushResult struct {
	// CommittedThrough is the address one past the last byte successfully
	// written, or -1 if nothing was committed.
	CommittedThrough int64
	SegmentsWritten  int
	SegmentsFailed   int
}

// Flush invokes FlushPrepareFunc (if configured), then commits every pending
// segment to the backing device via WriteFunc in ascending address order.
// Segments are committed strictly in order: the first WriteFunc failure
// stops the commit loop, and that segment plus every later pending segment
// remains pending (spec §4.2, §8: "flush commits a prefix of the pending
// list; a failure mid-flush leaves the failed segment and everything after
// it pending for a future retry").
func (s *Store) Flush(ctx context.Context) (FlushResult, error) {
	if s.flushPrepareCB != nil {
		if err := s.flushPrepareCB(ctx, s); err != nil {
			return FlushResult{CommittedThrough: -1}, flasherrors.NewCallbackFailureError(err, "flush_prepare", 0)
		}
	}

	s.mu.Lock()
	segs := make([]segment.Segment, len(s.pending.Segments()))
	copy(segs, s.pending.Segments())
	s.mu.Unlock()

	result := FlushResult{CommittedThrough: -1}
	var errs error

	for i, seg := range segs {
		if s.writeCB != nil {
			if err := s.writeCB(ctx, seg.Addr, seg.Data); err != nil {
				result.SegmentsFailed = len(segs) - i
				errs = multierr.Append(errs, flasherrors.NewCallbackFailureError(err, "write", seg.Addr))
				break
			}
		}

		s.mu.Lock()
		s.read.Insert(seg.Addr, seg.Data)
		s.pending.Remove(seg.Addr, seg.End())
		s.mu.Unlock()

		result.SegmentsWritten++
		result.CommittedThrough = seg.End()
	}

	return result, errs
}
