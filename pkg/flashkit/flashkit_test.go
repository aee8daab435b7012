package flashkit

import (
	"context"
	"testing"

	"github.com/nilotpal-labs/flashkit/internal/kvs"
	"github.com/nilotpal-labs/flashkit/internal/kvspage"
	"github.com/nilotpal-labs/flashkit/internal/sparseimage"
	"github.com/nilotpal-labs/flashkit/pkg/options"
	"github.com/stretchr/testify/require"
)

func newBacking(pages int) []byte {
	backing := make([]byte, pages*kvspage.Size)
	for i := range backing {
		backing[i] = 0xFF
	}
	for p := 0; p < pages; p++ {
		header := kvspage.EncodeHeader(kvspage.Header{State: kvspage.StateActive, Sequence: uint32(p)})
		copy(backing[p*kvspage.Size:], header)
	}
	return backing
}

func TestInstanceAddItemThenParse(t *testing.T) {
	ctx := context.Background()
	backing := newBacking(4)
	size := int64(len(backing))

	readCB := func(ctx context.Context, addr, length int64) (sparseimage.ReadResult, error) {
		return sparseimage.AtRequestedBase(backing[addr : addr+length]), nil
	}

	inst, err := NewInstance(ctx, "test", Config{
		Size:          size,
		Partition:     0,
		PartitionSize: size,
		StoreOptions:  options.StoreOptions{SectorSize: 256, MaxReadRetries: 4},
		KVSOptions:    options.KVSOptions{PageSize: kvspage.Size, MaxNamespaces: 254, MaxEntrySlots: kvspage.MaxSlots},
		ReadCB:        readCB,
	})
	require.NoError(t, err)

	_, err = inst.AddNamespace(ctx, "storage")
	require.NoError(t, err)
	require.NoError(t, inst.AddItem(ctx, "storage", "count", kvs.U32Value(7)))

	pages, err := inst.Parse(ctx)
	require.NoError(t, err)

	var found bool
	for _, p := range pages {
		for _, item := range p.Items {
			if item.Key == "count" {
				found = true
				require.Equal(t, uint64(7), item.Value.U64)
			}
		}
	}
	require.True(t, found)

	stats := inst.Stats()
	require.Greater(t, stats.PendingBytes, int64(0))

	_, err = inst.Flush(ctx)
	require.NoError(t, err)
}
