package errors

import "errors"

// Domain errors
var (
	// Input errors
	ErrInputMissing      = errors.New("input document not found")
	ErrUnsupportedFormat = errors.New("unsupported output format")

	// Verification errors
	ErrInvalidIntegrity     = errors.New("invalid integrity format")
	ErrUnexpectedStatus     = errors.New("unexpected HTTP status")
	ErrNetwork              = errors.New("network error")
	ErrInvalidHashAlgorithm = errors.New("unsupported hash algorithm")
)
