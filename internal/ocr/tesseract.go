package ocr

import (
	"context"
	"log/slog"

	"github.com/otiai10/gosseract/v2"
)

// TesseractEngine runs OCR through a local tesseract installation via
// gosseract. CPU-bound and synchronous-blocking from the caller's view;
// the context is honored before work starts.
type TesseractEngine struct {
	language      string
	logger        *slog.Logger
	clientFactory func() *gosseract.Client
}

// NewTesseractEngine constructs a tesseract-backed engine. language is a
// tesseract language pack name; empty defaults to "spa" since the target
// documents are Spanish-language customs forms.
func NewTesseractEngine(language string, logger *slog.Logger) *TesseractEngine {
	if language == "" {
		language = "spa"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TesseractEngine{
		language:      language,
		logger:        logger,
		clientFactory: gosseract.NewClient,
	}
}

// ExtractText implements Engine.
func (e *TesseractEngine) ExtractText(ctx context.Context, image []byte) (string, error) {
	const op = "tesseract.extract_text"
	select {
	case <-ctx.Done():
		return "", &TransientError{Op: op, Err: ctx.Err()}
	default:
	}
	if len(image) == 0 {
		return "", &PermanentError{Op: op, Err: ErrUnprocessableImage}
	}

	c := e.clientFactory()
	defer func() {
		_ = c.Close()
	}()

	if err := c.SetImageFromBytes(image); err != nil {
		return "", &PermanentError{Op: op, Err: err}
	}
	if err := c.SetLanguage(e.language); err != nil {
		return "", &PermanentError{Op: op, Err: err}
	}
	text, err := c.Text()
	if err != nil {
		e.logger.Error("ocr.tesseract.failed", "error", err)
		return "", &PermanentError{Op: op, Err: err}
	}

	e.logger.Debug("ocr.tesseract.ok", "bytes_in", len(image), "chars_out", len(text))
	return text, nil
}
