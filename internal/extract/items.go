package extract

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// captureItems collects the contiguous row block between the section's
// header line and the first footer/total line (or end of text). Rows are
// parsed independently; a row that fails to parse becomes a warning and is
// skipped rather than aborting the block.
func captureItems(lines, folded []string, sec *ItemSection) ([]LineItem, []string) {
	start := -1
	for i := range folded {
		if matchesAny(folded[i], sec.HeaderLabels) {
			start = i + 1
			break
		}
	}
	if start < 0 {
		return nil, nil
	}

	var items []LineItem
	var warnings []string
	for j := start; j < len(lines); j++ {
		if matchesAny(folded[j], sec.FooterLabels) {
			break
		}
		item, ok := parseItemRow(lines[j])
		if !ok {
			warnings = append(warnings, fmt.Sprintf("item row %d: cannot parse %q", len(items)+len(warnings)+1, lines[j]))
			continue
		}
		items = append(items, item)
	}
	return items, warnings
}

// parseItemRow splits one tabular row into quantity, description and
// amount. The amount is the last token that parses as money; an integer
// leading token is the quantity, defaulting to 1.
func parseItemRow(line string) (LineItem, bool) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return LineItem{}, false
	}

	amount, ok := ParseAmount(fields[len(fields)-1])
	if !ok {
		return LineItem{}, false
	}
	rest := fields[:len(fields)-1]

	qty := decimal.NewFromInt(1)
	if n, ok := ParseInteger(rest[0]); ok && rest[0] == fmt.Sprint(n) {
		qty = decimal.NewFromInt(int64(n))
		rest = rest[1:]
	}

	desc := strings.Join(rest, " ")
	if desc == "" {
		return LineItem{}, false
	}
	return LineItem{Description: desc, Quantity: qty, Amount: amount}, true
}
