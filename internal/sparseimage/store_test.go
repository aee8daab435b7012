package sparseimage

import (
	"bytes"
	"context"
	"testing"

	"github.com/nilotpal-labs/flashkit/pkg/options"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, size int64) *Store {
	t.Helper()
	s, err := New(context.Background(), Config{
		Size:    size,
		Options: options.StoreOptions{SectorSize: 16, MaxReadRetries: 4},
	})
	require.NoError(t, err)
	return s
}

func TestStoreReadSyncZeroFillsWithNoReadCallback(t *testing.T) {
	s := newTestStore(t, 32)
	data, err := s.ReadSync(context.Background(), 0, 8)
	require.NoError(t, err)
	require.Equal(t, make([]byte, 8), data)
}

func TestStoreWriteThenReadSeesEffectiveBytes(t *testing.T) {
	s := newTestStore(t, 32)
	ctx := context.Background()

	require.NoError(t, s.Write(ctx, 4, []byte{1, 2, 3}))
	data, err := s.ReadSync(ctx, 0, 8)
	require.NoError(t, err)
	require.Equal(t, []byte{0, 0, 0, 0, 1, 2, 3, 0}, data)
}

func TestStoreOutOfRangeRejected(t *testing.T) {
	s := newTestStore(t, 32)
	ctx := context.Background()

	_, err := s.ReadSync(ctx, 30, 8)
	require.Error(t, err)

	err = s.Write(ctx, -1, []byte{1})
	require.Error(t, err)
}

func TestStoreFlushCommitsInAscendingOrderAndUpdatesReadCache(t *testing.T) {
	s := newTestStore(t, 64)
	ctx := context.Background()

	var written []int64
	s.writeCB = func(ctx context.Context, addr int64, data []byte) error {
		written = append(written, addr)
		return nil
	}

	require.NoError(t, s.Write(ctx, 32, []byte{9}))
	require.NoError(t, s.Write(ctx, 0, []byte{1}))

	result, err := s.Flush(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, result.SegmentsWritten)
	require.Equal(t, []int64{0, 32}, written)

	stats := s.Stats()
	require.Equal(t, 0, stats.PendingSegments)

	b, err := s.ByteAt(0)
	require.NoError(t, err)
	require.Equal(t, byte(1), b)
}

func TestStoreFlushStopsAtFirstFailureAndKeepsRestPending(t *testing.T) {
	s := newTestStore(t, 64)
	ctx := context.Background()

	failing := errFixture("write failed")
	s.writeCB = func(ctx context.Context, addr int64, data []byte) error {
		if addr == 16 {
			return failing
		}
		return nil
	}

	require.NoError(t, s.Write(ctx, 0, []byte{1}))
	require.NoError(t, s.Write(ctx, 16, []byte{2}))
	require.NoError(t, s.Write(ctx, 32, []byte{3}))

	result, err := s.Flush(ctx)
	require.Error(t, err)
	require.Equal(t, 1, result.SegmentsWritten)
	require.Equal(t, 2, result.SegmentsFailed)

	stats := s.Stats()
	require.Equal(t, 2, stats.PendingSegments)
}

func TestStoreWritePruneIsNoOpWhenSectorHasUncachedHoles(t *testing.T) {
	s := newTestStore(t, 32)
	ctx := context.Background()

	require.NoError(t, s.Write(ctx, 0, []byte{0, 0, 0}))
	stats := s.Stats()
	require.Equal(t, 1, stats.PendingSegments)
}

func TestStoreWriteMatchingCachedSectorIsFullyPruned(t *testing.T) {
	s := newTestStore(t, 32)
	ctx := context.Background()

	s.readCB = func(ctx context.Context, addr, length int64) (ReadResult, error) {
		return AtRequestedBase(make([]byte, length)), nil
	}
	require.NoError(t, s.Ensure(ctx, 0, 16))

	require.NoError(t, s.Write(ctx, 4, []byte{0, 0, 0}))
	stats := s.Stats()
	require.Equal(t, 0, stats.PendingSegments)
}

func TestStoreByteAtAndCopyRangeNeverFetch(t *testing.T) {
	s := newTestStore(t, 32)
	ctx := context.Background()

	fetched := false
	s.readCB = func(ctx context.Context, addr, length int64) (ReadResult, error) {
		fetched = true
		return AtRequestedBase(make([]byte, length)), nil
	}

	// Nothing has been Ensure'd or written; ByteAt/CopyRange must fall back
	// to the erased sentinel rather than invoking readCB.
	b, err := s.ByteAt(4)
	require.NoError(t, err)
	require.Equal(t, byte(0xFF), b)
	require.False(t, fetched)

	data, err := s.CopyRange(0, 8)
	require.NoError(t, err)
	require.Equal(t, bytes.Repeat([]byte{0xFF}, 8), data)
	require.False(t, fetched)

	require.NoError(t, s.Write(ctx, 4, []byte{7}))
	b, err = s.ByteAt(4)
	require.NoError(t, err)
	require.Equal(t, byte(7), b)
	require.False(t, fetched)
}

func TestStoreWritePartialSectorPrunesByteRevertedToBaseline(t *testing.T) {
	s := newTestStore(t, 32)
	ctx := context.Background()

	// Cache only one byte of the sector so it is not fully covered and
	// Write takes the partial-sector path rather than materializing the
	// whole sector.
	s.read.Insert(0, []byte{0x05})

	require.NoError(t, s.Write(ctx, 0, []byte{0x09}))
	require.Equal(t, 1, s.Stats().PendingSegments)

	require.NoError(t, s.Write(ctx, 0, []byte{0x05}))
	require.Equal(t, 0, s.Stats().PendingSegments)
}

type errFixture string

func (e errFixture) Error() string { return string(e) }
