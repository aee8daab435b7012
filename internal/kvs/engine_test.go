package kvs

import (
	"context"
	"testing"

	"github.com/nilotpal-labs/flashkit/internal/kvspage"
	"github.com/nilotpal-labs/flashkit/internal/sparseimage"
	flasherrors "github.com/nilotpal-labs/flashkit/pkg/errors"
	"github.com/nilotpal-labs/flashkit/pkg/options"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T) (*Engine, *sparseimage.Store) {
	t.Helper()
	backing := make([]byte, 4*kvspage.Size)
	for i := range backing {
		backing[i] = 0xFF
	}
	// Mark every page ACTIVE so the engine can allocate slots in it; an
	// all-0xFF page otherwise decodes as UNINIT and is skipped.
	for p := 0; p < 4; p++ {
		header := kvspage.EncodeHeader(kvspage.Header{State: kvspage.StateActive, Sequence: uint32(p)})
		copy(backing[p*kvspage.Size:], header)
	}

	store, err := sparseimage.FromBacking(backing, 256)
	require.NoError(t, err)

	opts := options.KVSOptions{PageSize: kvspage.Size, MaxNamespaces: 254, MaxEntrySlots: kvspage.MaxSlots}
	engine, err := New(store, 0, int64(len(backing)), opts, nil)
	require.NoError(t, err)
	return engine, store
}

func TestAddNamespaceAssignsSmallestUnusedIndex(t *testing.T) {
	engine, _ := newTestEngine(t)
	ctx := context.Background()

	idx1, err := engine.AddNamespace(ctx, "storage")
	require.NoError(t, err)
	require.Equal(t, uint8(1), idx1)

	idx2, err := engine.AddNamespace(ctx, "other")
	require.NoError(t, err)
	require.Equal(t, uint8(2), idx2)
}

func TestAddNamespaceConflict(t *testing.T) {
	engine, _ := newTestEngine(t)
	ctx := context.Background()

	_, err := engine.AddNamespace(ctx, "storage")
	require.NoError(t, err)

	_, err = engine.AddNamespace(ctx, "storage")
	require.Error(t, err)
	require.Equal(t, flasherrors.ErrorCodeConflict, flasherrors.GetErrorCode(err))
}

func TestAddItemThenParseRoundTripsU32(t *testing.T) {
	engine, _ := newTestEngine(t)
	ctx := context.Background()

	_, err := engine.AddNamespace(ctx, "storage")
	require.NoError(t, err)
	require.NoError(t, engine.AddItem(ctx, "storage", "count", U32Value(42)))

	pages, err := engine.Parse(ctx)
	require.NoError(t, err)

	var found *Item
	for _, p := range pages {
		for i := range p.Items {
			if p.Items[i].Key == "count" {
				found = &p.Items[i]
			}
		}
	}
	require.NotNil(t, found)
	require.Equal(t, "storage", found.Namespace)
	require.Equal(t, KindU32, found.Value.Kind)
	require.Equal(t, uint64(42), found.Value.U64)
	require.True(t, found.HeaderCRCValid)
}

func TestAddItemStringRoundTrip(t *testing.T) {
	engine, _ := newTestEngine(t)
	ctx := context.Background()

	_, err := engine.AddNamespace(ctx, "storage")
	require.NoError(t, err)
	require.NoError(t, engine.AddItem(ctx, "storage", "name", StringValue("abc")))

	pages, err := engine.Parse(ctx)
	require.NoError(t, err)

	var found *Item
	for _, p := range pages {
		for i := range p.Items {
			if p.Items[i].Key == "name" {
				found = &p.Items[i]
			}
		}
	}
	require.NotNil(t, found)
	require.Equal(t, "abc", found.Value.Str)
	require.True(t, found.DataCRCValid)
	require.True(t, found.HeaderCRCValid)

	loc, err := engine.FindItem(ctx, "storage", "name")
	require.NoError(t, err)
	require.Equal(t, 2, loc.Span)
}

func TestDeleteThenFindNotFoundThenReAdd(t *testing.T) {
	engine, _ := newTestEngine(t)
	ctx := context.Background()

	_, err := engine.AddNamespace(ctx, "storage")
	require.NoError(t, err)
	require.NoError(t, engine.AddItem(ctx, "storage", "count", U32Value(1)))

	require.NoError(t, engine.DeleteItem(ctx, "storage", "count"))
	_, err = engine.FindItem(ctx, "storage", "count")
	require.Error(t, err)
	require.Equal(t, flasherrors.ErrorCodeNotFound, flasherrors.GetErrorCode(err))

	require.NoError(t, engine.AddItem(ctx, "storage", "count", U32Value(99)))
	loc, err := engine.FindItem(ctx, "storage", "count")
	require.NoError(t, err)
	require.NotNil(t, loc)
}

func TestUpdateItemTreatsMissingDeleteAsNonFatal(t *testing.T) {
	engine, _ := newTestEngine(t)
	ctx := context.Background()

	_, err := engine.AddNamespace(ctx, "storage")
	require.NoError(t, err)
	require.NoError(t, engine.UpdateItem(ctx, "storage", "count", U32Value(5)))

	loc, err := engine.FindItem(ctx, "storage", "count")
	require.NoError(t, err)
	require.Equal(t, 1, loc.Span)
}

func TestAddItemRejectsOversizedString(t *testing.T) {
	engine, _ := newTestEngine(t)
	ctx := context.Background()

	_, err := engine.AddNamespace(ctx, "storage")
	require.NoError(t, err)

	oversized := make([]byte, 65)
	err = engine.AddItem(ctx, "storage", "too-big", StringValue(string(oversized)))
	require.Error(t, err)
	require.Equal(t, flasherrors.ErrorCodeInvalidValue, flasherrors.GetErrorCode(err))
}
