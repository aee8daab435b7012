// Package sparseimage implements the Sparse Image Store (spec §4.2): a lazy,
// sector-aware, copy-on-write cache of a flash device's address space. It
// mediates all reads and writes through two segment.Lists — a read cache and
// a pending-write list — and commits pending writes to a device through a
// pluggable callback at Flush.
package sparseimage

import (
	"context"
	"sync"

	"github.com/nilotpal-labs/flashkit/internal/segment"
	flasherrors "github.com/nilotpal-labs/flashkit/pkg/errors"
	"github.com/nilotpal-labs/flashkit/pkg/logger"
	"github.com/nilotpal-labs/flashkit/pkg/options"
	"go.uber.org/zap"
)

// erasedByte is the sentinel spec §3 defines for an address with no cached
// or pending content: what an erased flash cell reads back as.
const erasedByte = 0xFF

// Store is the Sparse Image Store. It owns exactly two segment.Lists — read
// and pending — and services every read and write against the "effective
// byte" view spec §3 defines: pending overrides read overrides erasedByte.
//
// A Store is not safe for concurrent mutation from multiple goroutines
// beyond the read-fetch serialization described in spec §5; it is meant to
// be owned by one logical task at a time, the same single-threaded
// cooperative model the rest of this package's callbacks assume.
type Store struct {
	size    int64
	options options.StoreOptions

	readCB         ReadFunc
	writeCB        WriteFunc
	flushPrepareCB FlushPrepareFunc

	mu      sync.Mutex
	read    *segment.List
	pending *segment.List

	// fetchGate serializes read-callback invocations: exactly one token
	// lives in the channel, and holding it is equivalent to holding the
	// "single logical lock" spec §5 describes for the read-fetch path.
	fetchGate chan struct{}

	log *zap.SugaredLogger
}

// Config bundles the inputs to New.
type Config struct {
	Size             int64
	Options          options.StoreOptions
	ReadCB           ReadFunc
	WriteCB          WriteFunc
	FlushPrepareCB   FlushPrepareFunc
	Logger           *zap.SugaredLogger
}

// New creates an empty Store over an address space of the given size.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Size < 0 {
		return nil, flasherrors.NewRequiredFieldError("Size").
			WithDetail("provided", cfg.Size)
	}
	if cfg.Options.SectorSize == 0 {
		cfg.Options = options.NewDefaultStoreOptions()
	}
	if !options.IsPowerOfTwo(cfg.Options.SectorSize) {
		return nil, flasherrors.NewPowerOfTwoError("SectorSize", uint64(cfg.Options.SectorSize))
	}
	if cfg.Options.MaxReadRetries <= 0 {
		cfg.Options.MaxReadRetries = options.DefaultMaxReadRetries
	}

	log := cfg.Logger
	if log == nil {
		log = logger.Nop()
	}

	gate := make(chan struct{}, 1)
	gate <- struct{}{}

	return &Store{
		size:           cfg.Size,
		options:        cfg.Options,
		readCB:         cfg.ReadCB,
		writeCB:        cfg.WriteCB,
		flushPrepareCB: cfg.FlushPrepareCB,
		read:           segment.NewList(),
		pending:        segment.NewList(),
		fetchGate:      gate,
		log:            log,
	}, nil
}

// FromBacking creates a Store pre-seeded with a single read segment at
// address 0 holding a copy of data. The store's size equals len(data).
func FromBacking(data []byte, sectorSize uint32) (*Store, error) {
	ctx := context.Background()
	s, err := New(ctx, Config{
		Size:    int64(len(data)),
		Options: options.StoreOptions{SectorSize: sectorSize, MaxReadRetries: options.DefaultMaxReadRetries},
	})
	if err != nil {
		return nil, err
	}
	if len(data) > 0 {
		buf := make([]byte, len(data))
		copy(buf, data)
		s.read.Insert(0, buf)
	}
	return s, nil
}

// Size returns the store's declared address-space size.
func (s *Store) Size() int64 {
	return s.size
}

// checkRange validates that [addr, addr+length) falls within [0, size).
func (s *Store) checkRange(addr, length int64) error {
	if addr < 0 || length < 0 || addr+length > s.size {
		return flasherrors.NewOutOfRangeError(addr, length, s.size)
	}
	return nil
}

// Stats reports the store's current size, cache occupancy, and segment
// counts (spec §6).
type Stats struct {
	TotalSize       int64
	CachedBytes     int64
	PendingBytes    int64
	ReadSegments    int
	PendingSegments int
}

// Stats returns a snapshot of the store's current occupancy.
func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	var cached, pendingBytes int64
	for _, seg := range s.read.Segments() {
		cached += int64(len(seg.Data))
	}
	for _, seg := range s.pending.Segments() {
		pendingBytes += int64(len(seg.Data))
	}
	return Stats{
		TotalSize:       s.size,
		CachedBytes:     cached,
		PendingBytes:    pendingBytes,
		ReadSegments:    s.read.Len(),
		PendingSegments: s.pending.Len(),
	}
}
