package errors

// ErrorCode categorizes a flashkit error independently of its message text,
// so callers can branch on failure kind without string matching.
type ErrorCode string

// Base codes apply across both the Sparse Image Store and the NVS engine.
const (
	// ErrorCodeInternal covers unexpected failures that do not fit any of
	// the codes below — bugs or broken invariants, not caller mistakes.
	ErrorCodeInternal ErrorCode = "INTERNAL_ERROR"

	// ErrorCodeInvalidInput marks a caller-supplied argument that fails a
	// structural precondition before any state is touched.
	ErrorCodeInvalidInput ErrorCode = "INVALID_INPUT"
)

// Sparse Image Store codes, matching spec §7's taxonomy for that component.
const (
	// ErrorCodeOutOfRange marks an address or length outside the store's
	// declared size.
	ErrorCodeOutOfRange ErrorCode = "OUT_OF_RANGE"

	// ErrorCodeCallbackFailure wraps an error returned by the caller's
	// read, write, or flush-prepare callback.
	ErrorCodeCallbackFailure ErrorCode = "CALLBACK_FAILURE"
)

// NVS engine codes, matching spec §7's taxonomy for that component.
const (
	// ErrorCodeStructurallyInvalid marks a decode-time anomaly (bad span,
	// unprintable key, unknown type, mis-sized payload) found during parse.
	// It is attached to the parse result, never returned from Parse itself.
	ErrorCodeStructurallyInvalid ErrorCode = "STRUCTURALLY_INVALID"

	// ErrorCodeNotFound marks a delete/find/update targeting an absent
	// (namespace, key) pair.
	ErrorCodeNotFound ErrorCode = "NOT_FOUND"

	// ErrorCodeConflict marks an add-namespace call whose name already exists.
	ErrorCodeConflict ErrorCode = "CONFLICT"

	// ErrorCodeExhausted marks no free entry slot for an add, or no unused
	// namespace index left in 1..=254.
	ErrorCodeExhausted ErrorCode = "EXHAUSTED"

	// ErrorCodeInvalidValue marks a typed value that fails range or length
	// validation during add, before any bytes are written.
	ErrorCodeInvalidValue ErrorCode = "INVALID_VALUE"
)
