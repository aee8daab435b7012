// Package flashkit is the toolkit's top-level facade: it wires a
// sparseimage.Store to a kvs.Engine behind an Instance, giving callers one
// constructor and one set of methods for the whole flash-image toolkit
// instead of two packages to assemble by hand.
package flashkit

import (
	"context"

	"github.com/nilotpal-labs/flashkit/internal/kvs"
	"github.com/nilotpal-labs/flashkit/internal/sparseimage"
	"github.com/nilotpal-labs/flashkit/pkg/logger"
	"github.com/nilotpal-labs/flashkit/pkg/options"
	"go.uber.org/zap"
)

// Instance is the primary entry point for interacting with a flash image:
// its Sparse Image Store cache and, for one partition of it, an NVS engine.
type Instance struct {
	store *sparseimage.Store
	kvs   *kvs.Engine
	log   *zap.SugaredLogger
}

// Config bundles the inputs to NewInstance.
type Config struct {
	// Size is the total address-space size of the flash image.
	Size int64

	// Partition is the byte offset within Size where the NVS partition
	// begins.
	Partition int64

	// PartitionSize is the NVS partition's size in bytes; it must be a
	// multiple of the configured KVS page size.
	PartitionSize int64

	StoreOptions options.StoreOptions
	KVSOptions   options.KVSOptions

	ReadCB         sparseimage.ReadFunc
	WriteCB        sparseimage.WriteFunc
	FlushPrepareCB sparseimage.FlushPrepareFunc
}

// NewInstance builds the Sparse Image Store and, over its configured
// partition, the NVS engine, sharing one logger scoped to service between
// both.
func NewInstance(ctx context.Context, service string, cfg Config) (*Instance, error) {
	log := logger.New(service)

	store, err := sparseimage.New(ctx, sparseimage.Config{
		Size:           cfg.Size,
		Options:        cfg.StoreOptions,
		ReadCB:         cfg.ReadCB,
		WriteCB:        cfg.WriteCB,
		FlushPrepareCB: cfg.FlushPrepareCB,
		Logger:         log,
	})
	if err != nil {
		return nil, err
	}

	partitionSize := cfg.PartitionSize
	if partitionSize == 0 {
		partitionSize = cfg.Size - cfg.Partition
	}
	engine, err := kvs.New(store, cfg.Partition, partitionSize, cfg.KVSOptions, log)
	if err != nil {
		return nil, err
	}

	return &Instance{store: store, kvs: engine, log: log}, nil
}

// Store returns the underlying Sparse Image Store, for callers that need
// direct cache control (Flush, Stats) beyond what the NVS engine exposes.
func (i *Instance) Store() *sparseimage.Store {
	return i.store
}

// AddNamespace assigns a namespace index to name.
func (i *Instance) AddNamespace(ctx context.Context, name string) (uint8, error) {
	return i.kvs.AddNamespace(ctx, name)
}

// AddItem writes value under (namespace, key).
func (i *Instance) AddItem(ctx context.Context, namespace, key string, value kvs.Value) error {
	return i.kvs.AddItem(ctx, namespace, key, value)
}

// UpdateItem replaces the value stored under (namespace, key).
func (i *Instance) UpdateItem(ctx context.Context, namespace, key string, value kvs.Value) error {
	return i.kvs.UpdateItem(ctx, namespace, key, value)
}

// DeleteItem removes the (namespace, key) entry.
func (i *Instance) DeleteItem(ctx context.Context, namespace, key string) error {
	return i.kvs.DeleteItem(ctx, namespace, key)
}

// FindItem locates the (namespace, key) entry without decoding every item
// in the partition.
func (i *Instance) FindItem(ctx context.Context, namespace, key string) (*kvs.Location, error) {
	return i.kvs.FindItem(ctx, namespace, key)
}

// Parse decodes every item currently stored in the NVS partition.
func (i *Instance) Parse(ctx context.Context) ([]kvs.PageResult, error) {
	return i.kvs.Parse(ctx)
}

// Flush commits every pending write in the Sparse Image Store to the
// backing device.
func (i *Instance) Flush(ctx context.Context) (sparseimage.FlushResult, error) {
	return i.store.Flush(ctx)
}

// Stats reports the store's current cache occupancy.
func (i *Instance) Stats() sparseimage.Stats {
	return i.store.Stats()
}
