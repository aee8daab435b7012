package sparseimage

import "context"

// ReadResult is the tagged variant a ReadFunc returns. The source toolkit
// this is ported from accepts a read callback's response in three different
// shapes at runtime (raw bytes, a typed slice, or an {address, data}
// record) and sniffs which one it got. spec §9 calls for replacing that
// with a compile-time-checked tagged variant instead: a ReadResult can only
// be built via AtRequestedBase or AtExplicitBase, so every caller states
// which shape it means.
type ReadResult struct {
	addr     int64
	data     []byte
	explicit bool
}

// AtRequestedBase builds a ReadResult for a callback that filled the byte
// range starting exactly at the address it was asked to read.
func AtRequestedBase(data []byte) ReadResult {
	return ReadResult{data: data}
}

// AtExplicitBase builds a ReadResult for a callback that serviced a
// different (or partial) base address than it was asked for — the store
// never assumes the read callback returns exactly the requested range
// (spec §3).
func AtExplicitBase(addr int64, data []byte) ReadResult {
	return ReadResult{addr: addr, data: data, explicit: true}
}

// resolve returns the effective base address the result should be inserted
// at, given the address that was actually requested.
func (r ReadResult) resolve(requestedAddr int64) (addr int64, data []byte) {
	if r.explicit {
		return r.addr, r.data
	}
	return requestedAddr, r.data
}

// ReadFunc fetches bytes from the backing device. It may return fewer bytes
// than requested, or bytes based at a different address than requested
// (AtExplicitBase); the store loops until the requested range is covered or
// retries are exhausted (spec §4.2).
type ReadFunc func(ctx context.Context, addr, length int64) (ReadResult, error)

// WriteFunc persists bytes to the backing device starting at addr. During
// flush it is invoked with sector-aligned addresses whenever the pending
// sector was materialized (spec §6).
type WriteFunc func(ctx context.Context, addr int64, data []byte) error

// FlushPrepareFunc runs once at the start of Flush, before any WriteFunc
// invocation.
type FlushPrepareFunc func(ctx context.Context, s *Store) error
