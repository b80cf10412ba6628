// Package extract is the field extraction engine: a deterministic pipeline
// that turns noisy OCR text into structured records. Each document type is
// described by a declarative Schema of anchor labels, capture policies and
// validators; the engine itself is generic.
package extract

import (
	"fmt"
)

// Run executes the extraction pipeline over raw OCR text:
// line segmentation, anchor matching, value capture, coercion, line-item
// capture and cross-field checks. The run is deterministic: identical text
// and schema always yield an identical Document.
func Run(text string, schema *Schema) *Document {
	lines := SegmentLines(text)
	folded := make([]string, len(lines))
	for i, line := range lines {
		folded[i] = fold(line)
	}

	doc := &Document{Fields: make(map[string]FieldValue, len(schema.Fields)), Valid: true}

	for _, spec := range schema.Fields {
		raw, found := captureField(lines, folded, spec)
		if !found {
			if spec.Required {
				doc.Valid = false
				doc.Warnings = append(doc.Warnings, fmt.Sprintf("field %s: no label matched", spec.ID))
			}
			doc.Fields[spec.ID] = FieldValue{}
			continue
		}

		fv := coerce(spec, raw)
		if !fv.OK {
			doc.Warnings = append(doc.Warnings, fmt.Sprintf("field %s: cannot parse %q", spec.ID, raw))
			if spec.Required {
				doc.Valid = false
			}
		}
		doc.Fields[spec.ID] = fv
	}

	if schema.Items != nil {
		items, warnings := captureItems(lines, folded, schema.Items)
		doc.Items = items
		doc.Warnings = append(doc.Warnings, warnings...)
	}

	// Consistency checks run last, over the fully captured document.
	for _, check := range schema.Checks {
		if w := check(doc); w != "" {
			doc.Warnings = append(doc.Warnings, w)
		}
	}
	return doc
}

// captureField finds the first line in reading order matching any of the
// field's labels and captures the raw value per the capture policy. OCR
// text is top-to-bottom, so the first physical occurrence of a label is
// the authoritative one.
func captureField(lines, folded []string, spec FieldSpec) (string, bool) {
	for i := range lines {
		for _, label := range spec.Labels {
			foldedLabel := fold(label)
			pos := runeIndex(folded[i], foldedLabel)
			if pos < 0 {
				continue
			}
			end := pos + len([]rune(foldedLabel))

			switch spec.Capture {
			case CaptureSameLine:
				return cutAfter(lines[i], end), true
			case CaptureNextLine:
				if i+1 < len(lines) {
					return lines[i+1], true
				}
				return "", true
			default: // CaptureSameLineOrNext
				if rest := cutAfter(lines[i], end); rest != "" {
					return rest, true
				}
				if i+1 < len(lines) {
					return lines[i+1], true
				}
				return "", true
			}
		}
	}
	return "", false
}

// matchesAny reports whether the folded line contains any folded label.
func matchesAny(foldedLine string, labels []string) bool {
	for _, label := range labels {
		if runeIndex(foldedLine, fold(label)) >= 0 {
			return true
		}
	}
	return false
}
