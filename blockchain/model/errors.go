package model

import "github.com/cockroachdb/errors"

var (
	// ErrEncoding marks a field value that has no canonical representation.
	ErrEncoding = errors.New("encoding error")
	// ErrInvalidKey marks a missing or wrongly sized authentication key.
	ErrInvalidKey = errors.New("invalid key")
	// ErrMalformedState marks a verify attempted without a usable signed record.
	ErrMalformedState = errors.New("malformed state")
)
