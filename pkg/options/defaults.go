package options

const (
	// DefaultSectorSize is the sector size a Sparse Image Store assumes when
	// none is given. spec §3 calls out 256 as the generic default and 4096
	// as the typical flash sector size; 256 is kept as the zero-config
	// default so small in-memory stores built in tests don't materialize
	// full 4KiB sectors for single-byte writes.
	DefaultSectorSize uint32 = 256

	// MinSectorSize is the smallest sector size accepted. Below this, the
	// notion of "sector-aligned write" stops being meaningful.
	MinSectorSize uint32 = 16

	// MaxSectorSize is the largest sector size accepted.
	MaxSectorSize uint32 = 1 << 20

	// DefaultMaxReadRetries bounds the read-fetch retry loop described in
	// spec §4.2: once a callback stops making progress on the requested
	// gap this many times in a row, the remainder is filled with 0xFF
	// instead of looping forever.
	DefaultMaxReadRetries int = 8

	// PageSize is the fixed NVS page size (spec §3). Unlike sector size,
	// this is a wire-format constant, not a tunable — it is exposed via
	// KVSOptions only so callers can read it back, not so they can change it.
	PageSize uint32 = 4096

	// MaxNamespaces is the largest namespace index assignable (spec §4.4:
	// indices 1..=254; index 0 is reserved and 255 is reserved for "no
	// namespace"/unused-slot sentinels in the on-flash format).
	MaxNamespaces uint8 = 254

	// MaxEntrySlots is the number of 32-byte entry slots per page (spec §3).
	MaxEntrySlots int = 126
)

var defaultStoreOptions = StoreOptions{
	SectorSize:     DefaultSectorSize,
	MaxReadRetries: DefaultMaxReadRetries,
}

var defaultKVSOptions = KVSOptions{
	PageSize:      PageSize,
	MaxNamespaces: MaxNamespaces,
	MaxEntrySlots: MaxEntrySlots,
}

// NewDefaultStoreOptions returns a copy of the Sparse Image Store's default
// configuration.
func NewDefaultStoreOptions() StoreOptions {
	return defaultStoreOptions
}

// NewDefaultKVSOptions returns a copy of the NVS engine's default configuration.
func NewDefaultKVSOptions() KVSOptions {
	return defaultKVSOptions
}
