package errors

// StoreError carries Sparse Image Store context — the address, length, and
// sector involved — on top of the base error fields. It is returned for
// ErrorCodeOutOfRange and ErrorCodeCallbackFailure failures.
type StoreError struct {
	*baseError

	address int64 // Byte address the failing operation targeted.
	length  int64 // Length in bytes of the failing operation.
	sector  int64 // Enclosing sector address, when the error is sector-scoped.
}

// NewStoreError creates a new Sparse Image Store error.
func NewStoreError(err error, code ErrorCode, msg string) *StoreError {
	return &StoreError{baseError: NewBaseError(err, code, msg)}
}

// WithMessage updates the message while preserving the StoreError type.
func (se *StoreError) WithMessage(msg string) *StoreError {
	se.baseError.WithMessage(msg)
	return se
}

// WithCode updates the code while preserving the StoreError type.
func (se *StoreError) WithCode(code ErrorCode) *StoreError {
	se.baseError.WithCode(code)
	return se
}

// WithDetail attaches structured context while preserving the StoreError type.
func (se *StoreError) WithDetail(key string, value any) *StoreError {
	se.baseError.WithDetail(key, value)
	return se
}

// WithAddress records the byte address involved in the failure.
func (se *StoreError) WithAddress(addr int64) *StoreError {
	se.address = addr
	return se
}

// WithLength records the byte length involved in the failure.
func (se *StoreError) WithLength(length int64) *StoreError {
	se.length = length
	return se
}

// WithSector records the enclosing sector address, for sector-scoped failures.
func (se *StoreError) WithSector(sector int64) *StoreError {
	se.sector = sector
	return se
}

// Address returns the byte address involved in the failure.
func (se *StoreError) Address() int64 { return se.address }

// Length returns the byte length involved in the failure.
func (se *StoreError) Length() int64 { return se.length }

// Sector returns the enclosing sector address involved in the failure.
func (se *StoreError) Sector() int64 { return se.sector }

// NewOutOfRangeError builds the error raised when an address/length pair
// falls outside the store's declared size.
func NewOutOfRangeError(addr, length, size int64) *StoreError {
	return NewStoreError(nil, ErrorCodeOutOfRange, "address range outside store size").
		WithAddress(addr).
		WithLength(length).
		WithDetail("storeSize", size)
}

// NewCallbackFailureError wraps an error returned by a caller-supplied
// read, write, or flush-prepare callback.
func NewCallbackFailureError(cause error, callback string, addr int64) *StoreError {
	return NewStoreError(cause, ErrorCodeCallbackFailure, "device callback failed").
		WithAddress(addr).
		WithDetail("callback", callback)
}
