package extract

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// amountTolerance is the rounding slack allowed when comparing an item sum
// against a printed total: one hundredth of a currency unit.
var amountTolerance = decimal.New(1, -2)

// SumOfItemsMatches verifies that parsed line items add up to the field's
// captured total within the fixed tolerance.
func SumOfItemsMatches(totalFieldID string) Check {
	return func(doc *Document) string {
		total := doc.Field(totalFieldID)
		if !total.OK || len(doc.Items) == 0 {
			return ""
		}
		sum := doc.ItemsTotal()
		if sum.Sub(total.Amount).Abs().GreaterThan(amountTolerance) {
			return fmt.Sprintf("items sum %s does not match %s %s", sum, totalFieldID, total.Amount)
		}
		return ""
	}
}

// DateNotAfter verifies chronological order between two captured dates.
func DateNotAfter(earlierID, laterID string) Check {
	return func(doc *Document) string {
		earlier, later := doc.Field(earlierID), doc.Field(laterID)
		if !earlier.OK || !later.OK {
			return ""
		}
		if earlier.Date.After(later.Date) {
			return fmt.Sprintf("%s %s is later than %s %s",
				earlierID, earlier.Date.Format("2006-01-02"), laterID, later.Date.Format("2006-01-02"))
		}
		return ""
	}
}

// AmountNotGreater verifies that one captured amount does not exceed another.
func AmountNotGreater(smallerID, largerID string) Check {
	return func(doc *Document) string {
		smaller, larger := doc.Field(smallerID), doc.Field(largerID)
		if !smaller.OK || !larger.OK {
			return ""
		}
		if smaller.Amount.GreaterThan(larger.Amount) {
			return fmt.Sprintf("%s %s exceeds %s %s", smallerID, smaller.Amount, largerID, larger.Amount)
		}
		return ""
	}
}

// QuantitySumMatchesCount verifies that item quantities add up to a
// captured package count.
func QuantitySumMatchesCount(countFieldID string) Check {
	return func(doc *Document) string {
		count := doc.Field(countFieldID)
		if !count.OK || len(doc.Items) == 0 {
			return ""
		}
		sum := decimal.Zero
		for _, it := range doc.Items {
			sum = sum.Add(it.Quantity)
		}
		if !sum.Equal(decimal.NewFromInt(int64(count.Int))) {
			return fmt.Sprintf("item quantities sum %s does not match %s %d", sum, countFieldID, count.Int)
		}
		return ""
	}
}

// OneOf verifies that a captured text field folds to one of the expected
// values, e.g. the inspection modality on an aforo notice.
func OneOf(fieldID string, expected ...string) Check {
	return func(doc *Document) string {
		fv := doc.Field(fieldID)
		if !fv.OK {
			return ""
		}
		got := fold(fv.Text)
		for _, want := range expected {
			if got == fold(want) {
				return ""
			}
		}
		return fmt.Sprintf("%s %q is not a recognized value", fieldID, fv.Text)
	}
}
