package extract

import (
	"regexp"
	"time"

	"github.com/shopspring/decimal"

	"github.com/aduanatech/docextract/constants"
)

// FieldKind is the semantic type a captured raw string is coerced into.
type FieldKind int

const (
	KindText FieldKind = iota
	KindIdentifier
	KindDate
	KindAmount
	KindInteger
)

// CapturePolicy selects where a field's value sits relative to its anchor
// line. Layouts vary by document type, so the policy is per field.
type CapturePolicy int

const (
	// CaptureSameLine takes the remainder of the anchor line after the label.
	CaptureSameLine CapturePolicy = iota
	// CaptureNextLine takes the next non-empty line after the anchor.
	CaptureNextLine
	// CaptureSameLineOrNext prefers the same-line remainder and falls back
	// to the next non-empty line when the label stands alone.
	CaptureSameLineOrNext
)

// FieldSpec declares one extractable field: its label patterns as printed
// on the document, where its value sits, and how to validate it. Anchor
// tables are data, not code; one engine runs every document type.
type FieldSpec struct {
	ID       string
	Labels   []string
	Capture  CapturePolicy
	Kind     FieldKind
	Required bool
	Pattern  *regexp.Regexp
}

// ItemSection declares a repeating line-item block: rows start after a
// recognized header line and end at the first footer/total line or EOF.
type ItemSection struct {
	HeaderLabels []string
	FooterLabels []string
}

// Check is a cross-field consistency rule. It returns a warning message,
// or "" when the rule holds. Checks never invalidate a record by
// themselves.
type Check func(doc *Document) string

// Schema is the full declarative description of one document type.
type Schema struct {
	DocType constants.DocumentType
	Fields  []FieldSpec
	Items   *ItemSection
	Checks  []Check
}

// FieldValue is one captured and coerced field.
type FieldValue struct {
	Raw     string
	Text    string
	Date    time.Time
	Amount  decimal.Decimal
	Int     int
	Present bool // anchor found and raw text captured
	OK      bool // coercion and validation passed
}

// LineItem is one parsed row of a repeating tabular section.
type LineItem struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	Amount      decimal.Decimal `json:"amount"`
}

// Document is the generic output of one engine run.
type Document struct {
	Fields   map[string]FieldValue
	Items    []LineItem
	Warnings []string
	Valid    bool
}

// Field returns the value captured for id; the zero FieldValue when absent.
func (d *Document) Field(id string) FieldValue {
	return d.Fields[id]
}

// ItemsTotal sums the parsed item amounts.
func (d *Document) ItemsTotal() decimal.Decimal {
	total := decimal.Zero
	for _, it := range d.Items {
		total = total.Add(it.Amount)
	}
	return total
}
