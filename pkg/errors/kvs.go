package errors

// KVSError carries NVS engine context — the namespace, key, and on-page
// location involved — on top of the base error fields. It is returned for
// ErrorCodeNotFound, ErrorCodeConflict, ErrorCodeExhausted,
// ErrorCodeInvalidValue, and ErrorCodeStructurallyInvalid failures.
type KVSError struct {
	*baseError

	namespace  string // Namespace name involved, if resolved.
	key        string // Entry key involved.
	pageOffset int64  // Byte offset of the page involved, if known.
	slot       int    // Entry-slot index within the page, if known.
}

// NewKVSError creates a new NVS engine error.
func NewKVSError(err error, code ErrorCode, msg string) *KVSError {
	return &KVSError{baseError: NewBaseError(err, code, msg)}
}

// WithMessage updates the message while preserving the KVSError type.
func (ke *KVSError) WithMessage(msg string) *KVSError {
	ke.baseError.WithMessage(msg)
	return ke
}

// WithCode updates the code while preserving the KVSError type.
func (ke *KVSError) WithCode(code ErrorCode) *KVSError {
	ke.baseError.WithCode(code)
	return ke
}

// WithDetail attaches structured context while preserving the KVSError type.
func (ke *KVSError) WithDetail(key string, value any) *KVSError {
	ke.baseError.WithDetail(key, value)
	return ke
}

// WithNamespace records the namespace name involved in the failure.
func (ke *KVSError) WithNamespace(namespace string) *KVSError {
	ke.namespace = namespace
	return ke
}

// WithKey records the entry key involved in the failure.
func (ke *KVSError) WithKey(key string) *KVSError {
	ke.key = key
	return ke
}

// WithPage records the byte offset of the page involved in the failure.
func (ke *KVSError) WithPage(offset int64) *KVSError {
	ke.pageOffset = offset
	return ke
}

// WithSlot records the entry-slot index involved in the failure.
func (ke *KVSError) WithSlot(slot int) *KVSError {
	ke.slot = slot
	return ke
}

// Namespace returns the namespace name involved in the failure.
func (ke *KVSError) Namespace() string { return ke.namespace }

// Key returns the entry key involved in the failure.
func (ke *KVSError) Key() string { return ke.key }

// PageOffset returns the byte offset of the page involved in the failure.
func (ke *KVSError) PageOffset() int64 { return ke.pageOffset }

// Slot returns the entry-slot index involved in the failure.
func (ke *KVSError) Slot() int { return ke.slot }

// NewNotFoundError builds the error raised when a (namespace, key) pair is
// absent on delete, find, or update.
func NewNotFoundError(namespace, key string) *KVSError {
	return NewKVSError(nil, ErrorCodeNotFound, "namespace/key pair not found").
		WithNamespace(namespace).
		WithKey(key)
}

// NewConflictError builds the error raised when add-namespace targets a name
// that already exists.
func NewConflictError(namespace string) *KVSError {
	return NewKVSError(nil, ErrorCodeConflict, "namespace already exists").
		WithNamespace(namespace)
}

// NewExhaustedError builds the error raised when no free entry slot or
// namespace index remains.
func NewExhaustedError(resource string) *KVSError {
	return NewKVSError(nil, ErrorCodeExhausted, "no free "+resource+" available").
		WithDetail("resource", resource)
}

// NewInvalidValueError builds the error raised when a typed value fails
// range or length validation during add.
func NewInvalidValueError(reason string) *KVSError {
	return NewKVSError(nil, ErrorCodeInvalidValue, reason)
}

// NewStructurallyInvalidError builds an anomaly attached to a parse result
// rather than raised to the caller.
func NewStructurallyInvalidError(reason string, pageOffset int64, slot int) *KVSError {
	return NewKVSError(nil, ErrorCodeStructurallyInvalid, reason).
		WithPage(pageOffset).
		WithSlot(slot)
}
