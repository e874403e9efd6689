package checker

import (
	"fmt"

	sharederrors "github.com/khanhnv2901/seca-sri/internal/shared/errors"
)

// InvalidIntegrityFormatError reports an integrity value that is not
// "<sha256|sha384|sha512>-<digest>".
type InvalidIntegrityFormatError struct {
	Value string
}

func (e *InvalidIntegrityFormatError) Error() string {
	return fmt.Sprintf("invalid integrity format %q", e.Value)
}

func (e *InvalidIntegrityFormatError) Is(target error) bool {
	return target == sharederrors.ErrInvalidIntegrity
}

// HTTPStatusError signals a fetch that did not answer 200.
type HTTPStatusError struct {
	URL        string
	StatusCode int
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("fetch %s: HTTP %d", e.URL, e.StatusCode)
}

func (e *HTTPStatusError) Is(target error) bool {
	return target == sharederrors.ErrUnexpectedStatus
}

// NetworkError wraps a transport failure (DNS, TLS, reset, timeout).
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

func (e *NetworkError) Is(target error) bool {
	return target == sharederrors.ErrNetwork
}
