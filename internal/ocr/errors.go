package ocr

import (
	"errors"
	"fmt"
)

// Sentinel errors for OCR processing.
var (
	// ErrUnprocessableImage is returned when the backend rejected the input
	// as unreadable (corrupt or unsupported image data).
	ErrUnprocessableImage = errors.New("image could not be processed")

	// ErrMissingCredentials is returned when the cloud backend has no
	// usable credentials configured.
	ErrMissingCredentials = errors.New("missing cloud OCR credentials")

	// ErrNoText is returned when recognition succeeded but produced no text.
	ErrNoText = errors.New("no text recognized")
)

// TransientError marks a recoverable backend failure (network, rate limit,
// deadline). Callers may retry; the engine does not.
type TransientError struct {
	Op  string
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("ocr: %s: transient failure: %v", e.Op, e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

// PermanentError marks a failure that will not succeed on retry, such as a
// corrupt image or rejected request.
type PermanentError struct {
	Op  string
	Err error
}

func (e *PermanentError) Error() string {
	return fmt.Sprintf("ocr: %s: permanent failure: %v", e.Op, e.Err)
}

func (e *PermanentError) Unwrap() error { return e.Err }

// IsTransient reports whether err represents a retryable OCR failure.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}
