// Package pdftext extracts the embedded text layer of a PDF, page by
// page, reconstructing visual line order from glyph positions. Field
// extraction downstream is line sensitive, so text is grouped into rows
// by baseline rather than emitted as a single run.
package pdftext

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
)

// baselineTolerance groups glyphs whose Y coordinates differ by less than
// this many points onto the same visual line.
const baselineTolerance = 2.0

// PageText holds the reconstructed text of one page.
type PageText struct {
	PageIndex int // zero-based
	Text      string
}

// HasText reports whether the page carries any non-blank text.
func (p PageText) HasText() bool {
	return strings.TrimSpace(p.Text) != ""
}

// ExtractPages pulls the text layer out of PDF bytes. Pages without a text
// layer yield an entry with empty Text so callers can decide per page
// whether to fall back to OCR.
func ExtractPages(data []byte) (pages []PageText, err error) {
	// The underlying reader panics on some malformed cross-reference
	// tables; surface that as an error instead of crashing the call.
	defer func() {
		if r := recover(); r != nil {
			pages, err = nil, fmt.Errorf("pdf text layer: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("pdf text layer: %w", err)
	}

	total := reader.NumPage()
	pages = make([]PageText, 0, total)
	for i := 1; i <= total; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, PageText{PageIndex: i - 1})
			continue
		}
		pages = append(pages, PageText{
			PageIndex: i - 1,
			Text:      rebuildLines(page.Content().Text),
		})
	}
	return pages, nil
}

// rebuildLines orders glyph runs top-to-bottom, left-to-right and joins
// them with newlines per baseline group. PDF user space has its origin at
// the bottom-left, so higher Y means closer to the top of the page.
func rebuildLines(texts []pdf.Text) string {
	if len(texts) == 0 {
		return ""
	}

	sorted := make([]pdf.Text, len(texts))
	copy(sorted, texts)
	sort.SliceStable(sorted, func(i, j int) bool {
		if di := sorted[i].Y - sorted[j].Y; di > baselineTolerance || di < -baselineTolerance {
			return sorted[i].Y > sorted[j].Y
		}
		return sorted[i].X < sorted[j].X
	})

	var b strings.Builder
	lineY := sorted[0].Y
	lastX := -1.0
	for idx, t := range sorted {
		if idx > 0 {
			if lineY-t.Y > baselineTolerance {
				b.WriteString("\n")
				lineY = t.Y
				lastX = -1.0
			} else if lastX >= 0 && t.X-lastX > 1.0 {
				b.WriteString(" ")
			}
		}
		b.WriteString(t.S)
		lastX = t.X + t.W
	}
	return b.String()
}
