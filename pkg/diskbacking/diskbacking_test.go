package diskbacking

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/nilotpal-labs/flashkit/internal/sparseimage"
	"github.com/nilotpal-labs/flashkit/pkg/options"
	"github.com/stretchr/testify/require"
)

func TestOpenGrowsFileToSize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "image.bin")

	dev, err := Open(path, 4096, 0o644)
	require.NoError(t, err)
	defer dev.Close()

	stat, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, int64(4096), stat.Size())
	require.Equal(t, int64(4096), dev.Size())
}

func TestStoreFlushPersistsThroughDeviceWriteFunc(t *testing.T) {
	path := filepath.Join(t.TempDir(), "image.bin")
	dev, err := Open(path, 64, 0o644)
	require.NoError(t, err)
	defer dev.Close()

	ctx := context.Background()
	store, err := sparseimage.New(ctx, sparseimage.Config{
		Size:           64,
		Options:        options.StoreOptions{SectorSize: 16, MaxReadRetries: 4},
		ReadCB:         dev.ReadFunc(),
		WriteCB:        dev.WriteFunc(),
		FlushPrepareCB: dev.FlushPrepareFunc(),
	})
	require.NoError(t, err)

	require.NoError(t, store.Write(ctx, 8, []byte("hello")))
	_, err = store.Flush(ctx)
	require.NoError(t, err)

	data, err := store.ReadSync(ctx, 8, 5)
	require.NoError(t, err)
	require.Equal(t, []byte("hello"), data)

	onDisk, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, []byte("hello"), onDisk[8:13])
}

func TestFlushPrepareFuncSyncsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "image.bin")
	dev, err := Open(path, 16, 0o644)
	require.NoError(t, err)
	defer dev.Close()

	require.NoError(t, dev.FlushPrepareFunc()(context.Background(), nil))
}
