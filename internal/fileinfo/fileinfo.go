// Package fileinfo validates raw document bytes before they enter the
// extraction pipelines: magic-byte format sniffing and content hashing
// for deduplication and audit.
package fileinfo

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/aduanatech/docextract/constants"
)

// ErrEmptyInput is returned when no bytes were supplied at all, so callers
// can distinguish "not supplied" from "wrong type".
var ErrEmptyInput = errors.New("empty input")

// FormatError reports bytes that do not match the expected magic signature.
type FormatError struct {
	Expected constants.FileFormat
	Detected constants.FileFormat
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("format mismatch: expected %s, detected %s", e.Expected, e.Detected)
}

// pngSignature is the fixed 8-byte PNG file header.
var pngSignature = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}

// pdfHeaderWindow bounds how far into the buffer the %PDF- marker may sit;
// some producers prepend a BOM or junk preamble before the header.
const pdfHeaderWindow = 1024

// DetectFormat inspects leading magic bytes and returns the container format.
func DetectFormat(data []byte) constants.FileFormat {
	if len(data) >= len(pngSignature) && bytes.Equal(data[:len(pngSignature)], pngSignature) {
		return constants.PNG
	}
	window := data
	if len(window) > pdfHeaderWindow {
		window = window[:pdfHeaderWindow]
	}
	if bytes.Contains(window, []byte("%PDF-")) {
		return constants.PDF
	}
	return constants.Unknown
}

// IsValidPNG reports whether data carries the PNG signature.
func IsValidPNG(data []byte) bool {
	return len(data) > 0 && DetectFormat(data) == constants.PNG
}

// IsValidPDF reports whether data carries a PDF header.
func IsValidPDF(data []byte) bool {
	return len(data) > 0 && DetectFormat(data) == constants.PDF
}

// Validate checks data against an expected format. Empty input yields
// ErrEmptyInput rather than a format mismatch.
func Validate(data []byte, expected constants.FileFormat) error {
	if len(data) == 0 {
		return ErrEmptyInput
	}
	if detected := DetectFormat(data); detected != expected {
		return &FormatError{Expected: expected, Detected: detected}
	}
	return nil
}

// HashSHA256 returns the lowercase hex SHA-256 digest of data. The digest
// is content-addressed: identical bytes always produce identical output.
func HashSHA256(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
