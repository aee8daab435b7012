// Package errors implements flashkit's typed error taxonomy (spec §7): a
// baseError carrying a code, message, cause, and structured details, with
// StoreError, KVSError, and ValidationError attaching domain-specific context
// for the Sparse Image Store, the NVS engine, and caller-input validation
// respectively. Callers branch on ErrorCode rather than message text, and
// extract the domain context they need via the As*Error helpers below.
package errors

import stdErrors "errors"

// IsValidationError reports whether err is, or wraps, a *ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return stdErrors.As(err, &ve)
}

// IsStoreError reports whether err is, or wraps, a *StoreError.
func IsStoreError(err error) bool {
	var se *StoreError
	return stdErrors.As(err, &se)
}

// IsKVSError reports whether err is, or wraps, a *KVSError.
func IsKVSError(err error) bool {
	var ke *KVSError
	return stdErrors.As(err, &ke)
}

// AsValidationError extracts a *ValidationError from err's chain, if present.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if stdErrors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// AsStoreError extracts a *StoreError from err's chain, if present.
func AsStoreError(err error) (*StoreError, bool) {
	var se *StoreError
	if stdErrors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// AsKVSError extracts a *KVSError from err's chain, if present.
func AsKVSError(err error) (*KVSError, bool) {
	var ke *KVSError
	if stdErrors.As(err, &ke) {
		return ke, true
	}
	return nil, false
}

// GetErrorCode extracts the ErrorCode from any error in this package's
// hierarchy, or ErrorCodeInternal for errors outside it.
func GetErrorCode(err error) ErrorCode {
	if ve, ok := AsValidationError(err); ok {
		return ve.Code()
	}
	if se, ok := AsStoreError(err); ok {
		return se.Code()
	}
	if ke, ok := AsKVSError(err); ok {
		return ke.Code()
	}
	return ErrorCodeInternal
}

// GetErrorDetails extracts the structured detail map from any error in this
// package's hierarchy, or an empty map for errors outside it.
func GetErrorDetails(err error) map[string]any {
	if ve, ok := AsValidationError(err); ok {
		if d := ve.Details(); d != nil {
			return d
		}
	}
	if se, ok := AsStoreError(err); ok {
		if d := se.Details(); d != nil {
			return d
		}
	}
	if ke, ok := AsKVSError(err); ok {
		if d := ke.Details(); d != nil {
			return d
		}
	}
	return make(map[string]any)
}
