// Package options provides functional-option configuration for the two
// pieces of flashkit that need it: the Sparse Image Store's sector size and
// read-retry bound, and the NVS engine's page layout constants.
package options

import "math/bits"

// StoreOptions configures a Sparse Image Store.
type StoreOptions struct {
	// SectorSize is the power-of-two byte count the store treats as the
	// smallest atomically-writable unit (spec §4.2's sector-aware placement).
	SectorSize uint32 `json:"sectorSize"`

	// MaxReadRetries bounds the read-fetch retry loop before an unfilled
	// gap is completed with the 0xFF sentinel (spec §4.2).
	MaxReadRetries int `json:"maxReadRetries"`
}

// KVSOptions configures an NVS engine.
type KVSOptions struct {
	// PageSize is the fixed NVS page size in bytes.
	PageSize uint32 `json:"pageSize"`

	// MaxNamespaces is the largest assignable namespace index.
	MaxNamespaces uint8 `json:"maxNamespaces"`

	// MaxEntrySlots is the number of 32-byte entry slots per page.
	MaxEntrySlots int `json:"maxEntrySlots"`
}

// StoreOptionFunc mutates a StoreOptions during construction.
type StoreOptionFunc func(*StoreOptions)

// KVSOptionFunc mutates a KVSOptions during construction.
type KVSOptionFunc func(*KVSOptions)

// WithDefaultStoreOptions resets every field to its documented default.
func WithDefaultStoreOptions() StoreOptionFunc {
	return func(o *StoreOptions) {
		*o = NewDefaultStoreOptions()
	}
}

// WithSectorSize overrides the sector size. Non-power-of-two or
// out-of-bounds values are ignored rather than applied, matching the
// teacher package's silent-reject-invalid-input pattern for option setters.
func WithSectorSize(size uint32) StoreOptionFunc {
	return func(o *StoreOptions) {
		if size < MinSectorSize || size > MaxSectorSize {
			return
		}
		if bits.OnesCount32(size) != 1 {
			return
		}
		o.SectorSize = size
	}
}

// WithMaxReadRetries overrides the read-fetch retry bound.
func WithMaxReadRetries(retries int) StoreOptionFunc {
	return func(o *StoreOptions) {
		if retries > 0 {
			o.MaxReadRetries = retries
		}
	}
}

// WithDefaultKVSOptions resets every field to its documented default.
func WithDefaultKVSOptions() KVSOptionFunc {
	return func(o *KVSOptions) {
		*o = NewDefaultKVSOptions()
	}
}

// IsPowerOfTwo reports whether n is a nonzero power of two, the precondition
// the Sparse Image Store enforces on both construction and option overrides.
func IsPowerOfTwo(n uint32) bool {
	return n != 0 && bits.OnesCount32(n) == 1
}
