package domain

import "errors"

var (
	// ErrNotFound signals a missing record.
	ErrNotFound = errors.New("string not found")
	// ErrAlreadyExists signals a duplicate record (same value, same hash).
	ErrAlreadyExists = errors.New("string already exists")
	// ErrEmptyValue signals an empty input value.
	ErrEmptyValue = errors.New("value must not be empty")
	// ErrValueTooLarge signals a value above the size cap.
	ErrValueTooLarge = errors.New("value exceeds maximum size")
	// ErrInvalidFilter signals an unparsable filter parameter.
	ErrInvalidFilter = errors.New("invalid filter parameter")
)
