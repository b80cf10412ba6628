// Package pipeline composes file sniffing, PDF text recovery, OCR and
// field extraction into one call per document type. A pipeline is
// stateless and safe for concurrent use; persistence stays outside, behind
// the repository boundary.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/aduanatech/docextract/constants"
	"github.com/aduanatech/docextract/internal/extract"
	"github.com/aduanatech/docextract/internal/fileinfo"
	"github.com/aduanatech/docextract/internal/ocr"
	"github.com/aduanatech/docextract/internal/pdfimages"
	"github.com/aduanatech/docextract/internal/pdftext"
)

// ErrNoTextExtracted is returned when neither the PDF text layer nor OCR
// produced any usable text for the input.
var ErrNoTextExtracted = errors.New("no text could be extracted from document")

// Result is the outcome of one extraction run. Warnings are non-fatal
// findings; IsValid reports whether every required field was captured and
// coerced.
type Result[T any] struct {
	Record      T         `json:"record"`
	SourceHash  string    `json:"source_hash"`
	ExtractedAt time.Time `json:"extracted_at"`
	Warnings    []string  `json:"warnings,omitempty"`
	IsValid     bool      `json:"is_valid"`
}

// parseFunc maps raw text onto a typed record via the extraction engine.
type parseFunc[T any] func(text string) (T, *extract.Document)

// Pipeline runs the full extraction flow for one document type.
type Pipeline[T any] struct {
	docType constants.DocumentType
	engine  ocr.Engine
	images  *pdfimages.Extractor
	parse   parseFunc[T]
	logger  *slog.Logger
}

func newPipeline[T any](docType constants.DocumentType, engine ocr.Engine, images *pdfimages.Extractor, parse parseFunc[T], logger *slog.Logger) *Pipeline[T] {
	if logger == nil {
		logger = slog.Default()
	}
	if images == nil {
		images = pdfimages.NewExtractor("", logger)
	}
	return &Pipeline[T]{
		docType: docType,
		engine:  engine,
		images:  images,
		parse:   parse,
		logger:  logger,
	}
}

// ExtractFromPath reads the file and runs the full pipeline over it.
func (p *Pipeline[T]) ExtractFromPath(ctx context.Context, path string) (Result[T], error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Result[T]{}, fmt.Errorf("read %s: %w", path, err)
	}
	return p.ExtractFromBytes(ctx, data)
}

// ExtractFromStream drains the reader and runs the full pipeline.
func (p *Pipeline[T]) ExtractFromStream(ctx context.Context, r io.Reader) (Result[T], error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Result[T]{}, fmt.Errorf("read stream: %w", err)
	}
	return p.ExtractFromBytes(ctx, data)
}

// ExtractFromBytes sniffs the payload format, recovers text via the text
// layer or OCR, and extracts the typed record.
func (p *Pipeline[T]) ExtractFromBytes(ctx context.Context, data []byte) (Result[T], error) {
	if len(data) == 0 {
		return Result[T]{}, fileinfo.ErrEmptyInput
	}

	var (
		text     string
		warnings []string
		err      error
	)
	format := fileinfo.DetectFormat(data)
	switch format {
	case constants.PNG:
		text, err = p.engine.ExtractText(ctx, data)
		if err != nil {
			return Result[T]{}, fmt.Errorf("ocr %s: %w", p.docType, err)
		}
	case constants.PDF:
		text, warnings, err = p.textFromPDF(ctx, data)
		if err != nil {
			return Result[T]{}, err
		}
	default:
		return Result[T]{}, fmt.Errorf("unsupported input format %s", format)
	}

	if strings.TrimSpace(text) == "" {
		return Result[T]{}, fmt.Errorf("%s: %w", p.docType, ErrNoTextExtracted)
	}

	res, err := p.ProcessRawText(ctx, text)
	if err != nil {
		return Result[T]{}, err
	}
	res.SourceHash = fileinfo.HashSHA256(data)
	res.Warnings = append(warnings, res.Warnings...)

	p.logger.Info("pipeline.extract.ok",
		"doc_type", p.docType,
		"format", format,
		"valid", res.IsValid,
		"warnings", len(res.Warnings),
	)
	return res, nil
}

// ProcessRawText runs field extraction over already recovered text. The
// run is deterministic; SourceHash covers the text itself when no source
// bytes exist.
func (p *Pipeline[T]) ProcessRawText(ctx context.Context, text string) (Result[T], error) {
	if err := ctx.Err(); err != nil {
		return Result[T]{}, err
	}
	if strings.TrimSpace(text) == "" {
		return Result[T]{}, fmt.Errorf("%s: %w", p.docType, ErrNoTextExtracted)
	}

	record, doc := p.parse(text)
	res := Result[T]{
		Record:      record,
		SourceHash:  fileinfo.HashSHA256([]byte(text)),
		ExtractedAt: time.Now().UTC(),
		Warnings:    doc.Warnings,
		IsValid:     doc.Valid,
	}

	if res.IsValid {
		res.Warnings = append(res.Warnings, validateRecord(p.docType, record)...)
	}
	return res, nil
}

// textFromPDF prefers the embedded text layer page by page and falls back
// to OCR over that page's recovered images. A page carrying both text and
// images keeps its text and leaves a warning behind.
func (p *Pipeline[T]) textFromPDF(ctx context.Context, data []byte) (string, []string, error) {
	var warnings []string

	pages, err := pdftext.ExtractPages(data)
	if err != nil {
		warnings = append(warnings, fmt.Sprintf("pdf text layer unavailable: %v", err))
		pages = nil
	}

	blankPages := make(map[int]bool)
	allBlank := true
	for _, pg := range pages {
		if pg.HasText() {
			allBlank = false
		} else {
			blankPages[pg.PageIndex] = true
		}
	}
	if len(pages) == 0 {
		allBlank = true
	}

	// Image recovery and OCR only run for pages the text layer left blank.
	var ocrText map[int]string
	if allBlank || len(blankPages) > 0 {
		var ocrErr error
		ocrText, warnings, ocrErr = p.ocrPageImages(ctx, data, pages, blankPages, allBlank, warnings)
		if ocrErr != nil {
			return "", warnings, ocrErr
		}
	}

	var parts []string
	for _, pg := range pages {
		if pg.HasText() {
			parts = append(parts, pg.Text)
		} else if t := ocrText[pg.PageIndex]; t != "" {
			parts = append(parts, t)
		}
	}
	// Orphan image text sorts after the page-anchored text.
	for _, idx := range sortedKeys(ocrText) {
		if idx >= len(pages) {
			parts = append(parts, ocrText[idx])
		}
	}
	return strings.Join(parts, "\n"), warnings, nil
}

// ocrPageImages recovers embedded images and OCRs the ones on blank pages
// (every page when the whole text layer is missing). Unreferenced images
// are OCRed last so a broken page tree does not drop scanned content.
func (p *Pipeline[T]) ocrPageImages(ctx context.Context, data []byte, pages []pdftext.PageText, blankPages map[int]bool, allBlank bool, warnings []string) (map[int]string, []string, error) {
	imgRes, err := p.images.Extract(ctx, data, "")
	if err != nil {
		return nil, warnings, fmt.Errorf("recover pdf images: %w", err)
	}
	warnings = append(warnings, imgRes.Warnings...)

	// Text-bearing pages that also carry images are suspicious scans.
	flagged := make(map[int]bool)
	for _, img := range imgRes.Images {
		if img.PageIndex >= 0 && !allBlank && !blankPages[img.PageIndex] && !flagged[img.PageIndex] {
			warnings = append(warnings, fmt.Sprintf("page %d has embedded images; used text layer", img.PageIndex))
			flagged[img.PageIndex] = true
		}
	}

	texts := make(map[int]string)
	var firstOCRErr error
	for _, img := range imgRes.Images {
		wanted := allBlank || img.PageIndex < 0 || blankPages[img.PageIndex]
		if !wanted {
			continue
		}
		imageData, err := os.ReadFile(img.Path)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("read recovered image %s: %v", img.Path, err))
			continue
		}
		text, err := p.engine.ExtractText(ctx, imageData)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, warnings, err
			}
			if firstOCRErr == nil {
				firstOCRErr = err
			}
			warnings = append(warnings, fmt.Sprintf("ocr page %d image %d: %v", img.PageIndex, img.SequenceIndex, err))
			continue
		}
		key := img.PageIndex
		if key < 0 {
			key = len(pages) + img.SequenceIndex
		}
		if texts[key] != "" {
			texts[key] += "\n"
		}
		texts[key] += text
	}

	if len(texts) == 0 && firstOCRErr != nil {
		// Nothing recovered at all; surface the backend failure so the
		// caller can consult ocr.IsTransient.
		return nil, warnings, fmt.Errorf("pdf ocr fallback: %w", firstOCRErr)
	}
	return texts, warnings, nil
}

func sortedKeys(m map[int]string) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
