package kvs

import "github.com/nilotpal-labs/flashkit/internal/kvspage"

// Item is a fully resolved, user-facing KVS record: a namespace-qualified
// key with its decoded value and checksum verdicts, as returned by Parse
// and FindItem.
type Item struct {
	PageOffset     int64
	SlotIndex      int
	Namespace      string
	NamespaceIndex uint8
	Key            string
	Value          Value
	HeaderCRCValid bool

	// DataCRCValid is only meaningful for String/Blob values; it is true
	// for every other known kind since they carry no separate data CRC, and
	// false when the entry's data type is unknown.
	DataCRCValid bool

	Anomalies []error
}

// PageResult is one parsed page: its state, sequence, and the items found
// written on it.
type PageResult struct {
	Offset   int64
	State    kvspage.State
	Sequence uint32
	Items    []Item
}
