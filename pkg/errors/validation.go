package errors

// ValidationError marks a caller-supplied argument (constructor options,
// address/length pairs before the store-specific context is known, etc.)
// that fails a structural precondition.
type ValidationError struct {
	*baseError

	field    string
	rule     string
	provided any
	expected any
}

// NewValidationError creates a new validation error.
func NewValidationError(err error, code ErrorCode, msg string) *ValidationError {
	return &ValidationError{baseError: NewBaseError(err, code, msg)}
}

// WithMessage updates the message while preserving the ValidationError type.
func (ve *ValidationError) WithMessage(msg string) *ValidationError {
	ve.baseError.WithMessage(msg)
	return ve
}

// WithCode updates the code while preserving the ValidationError type.
func (ve *ValidationError) WithCode(code ErrorCode) *ValidationError {
	ve.baseError.WithCode(code)
	return ve
}

// WithDetail attaches structured context while preserving the ValidationError type.
func (ve *ValidationError) WithDetail(key string, value any) *ValidationError {
	ve.baseError.WithDetail(key, value)
	return ve
}

// WithField sets which field failed validation.
func (ve *ValidationError) WithField(field string) *ValidationError {
	ve.field = field
	return ve
}

// WithRule specifies which validation rule was violated.
func (ve *ValidationError) WithRule(rule string) *ValidationError {
	ve.rule = rule
	return ve
}

// WithProvided captures the value that failed validation.
func (ve *ValidationError) WithProvided(value any) *ValidationError {
	ve.provided = value
	return ve
}

// WithExpected describes what would have been a valid value.
func (ve *ValidationError) WithExpected(value any) *ValidationError {
	ve.expected = value
	return ve
}

// Field returns the field name that failed validation.
func (ve *ValidationError) Field() string { return ve.field }

// Rule returns the validation rule that was violated.
func (ve *ValidationError) Rule() string { return ve.rule }

// Provided returns the value that failed validation.
func (ve *ValidationError) Provided() any { return ve.provided }

// Expected returns what would have been a valid value.
func (ve *ValidationError) Expected() any { return ve.expected }

// NewRequiredFieldError builds an error for a missing required field.
func NewRequiredFieldError(fieldName string) *ValidationError {
	return NewValidationError(nil, ErrorCodeInvalidInput, "required field is missing").
		WithField(fieldName).
		WithRule("required")
}

// NewFieldRangeError builds an error for a field outside its acceptable range.
func NewFieldRangeError(fieldName string, provided, min, max any) *ValidationError {
	return NewValidationError(nil, ErrorCodeInvalidInput, "field value is outside acceptable range").
		WithField(fieldName).
		WithRule("range").
		WithProvided(provided).
		WithDetail("minValue", min).
		WithDetail("maxValue", max)
}

// NewPowerOfTwoError builds an error for a size field that must be a power of two.
func NewPowerOfTwoError(fieldName string, provided uint64) *ValidationError {
	return NewValidationError(nil, ErrorCodeInvalidInput, "field value must be a power of two").
		WithField(fieldName).
		WithRule("power_of_two").
		WithProvided(provided)
}
