// Package diskbacking adapts an *os.File into the read/write/flush-prepare
// callbacks a sparseimage.Store needs to talk to a real flash-image file on
// disk. Device services the store's byte-range traffic with random-access
// ReadAt/WriteAt instead of copying whole files.
package diskbacking

import (
	"context"
	"fmt"
	"os"

	"github.com/nilotpal-labs/flashkit/internal/sparseimage"
	flasherrors "github.com/nilotpal-labs/flashkit/pkg/errors"
)

// Device backs a Sparse Image Store with a flash-image file opened on disk.
// Reads and writes are serviced with os.File.ReadAt/WriteAt so the store's
// single-threaded callback model never needs to track a shared file offset.
type Device struct {
	file *os.File
	size int64
}

// Open opens path for reading and writing and returns a Device of size
// bytes. The file is created with permission if it does not already exist
// and grown to size bytes if shorter; a longer file is not truncated.
func Open(path string, size int64, permission os.FileMode) (*Device, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, permission)
	if err != nil {
		return nil, fmt.Errorf("diskbacking: opening %s: %w", path, err)
	}

	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("diskbacking: stat %s: %w", path, err)
	}
	if stat.Size() < size {
		if err := f.Truncate(size); err != nil {
			f.Close()
			return nil, fmt.Errorf("diskbacking: truncating %s to %d bytes: %w", path, size, err)
		}
	}

	return &Device{file: f, size: size}, nil
}

// Close closes the underlying file.
func (d *Device) Close() error {
	return d.file.Close()
}

// Size returns the backing file's declared size.
func (d *Device) Size() int64 {
	return d.size
}

// ReadFunc returns a sparseimage.ReadFunc that reads directly from the
// backing file. The callback always services exactly the requested range,
// so every response is reported via sparseimage.AtRequestedBase.
func (d *Device) ReadFunc() sparseimage.ReadFunc {
	return func(ctx context.Context, addr, length int64) (sparseimage.ReadResult, error) {
		buf := make([]byte, length)
		if _, err := d.file.ReadAt(buf, addr); err != nil {
			return sparseimage.ReadResult{}, flasherrors.NewCallbackFailureError(err, "read", addr)
		}
		return sparseimage.AtRequestedBase(buf), nil
	}
}

// WriteFunc returns a sparseimage.WriteFunc that commits bytes to the
// backing file at the given address.
func (d *Device) WriteFunc() sparseimage.WriteFunc {
	return func(ctx context.Context, addr int64, data []byte) error {
		if _, err := d.file.WriteAt(data, addr); err != nil {
			return flasherrors.NewCallbackFailureError(err, "write", addr)
		}
		return nil
	}
}

// FlushPrepareFunc returns a sparseimage.FlushPrepareFunc that syncs the
// backing file's current contents to stable storage before any pending
// write is applied, so a crash mid-flush never corrupts data the store
// already believed committed.
func (d *Device) FlushPrepareFunc() sparseimage.FlushPrepareFunc {
	return func(ctx context.Context, s *sparseimage.Store) error {
		if err := d.file.Sync(); err != nil {
			return flasherrors.NewCallbackFailureError(err, "flush-prepare", 0)
		}
		return nil
	}
}
