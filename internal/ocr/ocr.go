// Package ocr is the adapter boundary between the extraction engine and
// external OCR backends. Both backends reduce to the same contract:
// raster image in, plain text out, with line breaks preserved in reading
// order, since downstream field extraction is line sensitive.
package ocr

import "context"

// Engine extracts plain text from a single raster image.
type Engine interface {
	// ExtractText runs OCR over image bytes (PNG or JPEG) and returns the
	// recognized text. Failures are classified as *TransientError or
	// *PermanentError so callers can decide whether to retry; the engine
	// itself never retries.
	ExtractText(ctx context.Context, image []byte) (string, error)
}

// Name strings for the configured backend.
const (
	BackendVision    = "vision"
	BackendTesseract = "tesseract"
)
