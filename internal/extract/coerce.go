package extract

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// dateFormats is the ordered list of accepted calendar formats; the first
// parse that succeeds wins. Day-first formats lead because the source
// documents are Chilean customs forms.
var dateFormats = []string{
	"02/01/2006",
	"02-01-2006",
	"02.01.2006",
	"2006-01-02",
	"02/01/06",
}

// spanishMonths maps folded month names to their numbers for long-form
// dates such as "15 de marzo de 2024".
var spanishMonths = map[string]time.Month{
	"enero": time.January, "febrero": time.February, "marzo": time.March,
	"abril": time.April, "mayo": time.May, "junio": time.June,
	"julio": time.July, "agosto": time.August, "septiembre": time.September,
	"octubre": time.October, "noviembre": time.November, "diciembre": time.December,
}

var reLongDate = regexp.MustCompile(`^(\d{1,2})\s+de\s+([a-z]+)\s+de\s+(\d{4})$`)

// ParseDate coerces a captured raw string into a calendar date.
func ParseDate(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	for _, layout := range dateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	if m := reLongDate.FindStringSubmatch(fold(s)); m != nil {
		if month, ok := spanishMonths[m[2]]; ok {
			day, _ := strconv.Atoi(m[1])
			year, _ := strconv.Atoi(m[3])
			if day >= 1 && day <= 31 {
				return time.Date(year, month, day, 0, 0, 0, 0, time.UTC), true
			}
		}
	}
	return time.Time{}, false
}

// currencyTokens are symbols and codes stripped off amounts before parsing.
var currencyTokens = []string{"$", "CLP", "USD", "EUR", "UF", "clp", "usd"}

func stripCurrency(s string) string {
	s = strings.TrimSpace(s)
	for _, tok := range currencyTokens {
		s = strings.TrimSpace(strings.TrimPrefix(s, tok))
		s = strings.TrimSpace(strings.TrimSuffix(s, tok))
	}
	return s
}

// ParseAmount coerces a monetary string into a fixed-point decimal,
// accepting both Chilean formatting ("1.234.567,89", "1.500") and plain
// decimal-point notation ("1234.56"). A lone dot followed by exactly three
// digits is read as a thousands separator.
func ParseAmount(raw string) (decimal.Decimal, bool) {
	s := stripCurrency(raw)
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return decimal.Zero, false
	}

	hasComma := strings.Contains(s, ",")
	dots := strings.Count(s, ".")
	switch {
	case hasComma:
		// comma is the decimal separator; dots are thousands
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	case dots > 1:
		s = strings.ReplaceAll(s, ".", "")
	case dots == 1:
		if idx := strings.LastIndex(s, "."); len(s)-idx-1 == 3 {
			s = strings.ReplaceAll(s, ".", "")
		}
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

var reDigits = regexp.MustCompile(`\d+`)

// ParseInteger extracts the first integer run from the raw string.
func ParseInteger(raw string) (int, bool) {
	m := reDigits.FindString(raw)
	if m == "" {
		return 0, false
	}
	v, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	return v, true
}

// coerce applies the field's semantic type to the captured raw string.
// Failure marks the field invalid; it never aborts the record.
func coerce(spec FieldSpec, raw string) FieldValue {
	fv := FieldValue{Raw: raw, Present: true}
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return fv
	}

	switch spec.Kind {
	case KindDate:
		if t, ok := ParseDate(trimmed); ok {
			fv.Date, fv.OK = t, true
		}
	case KindAmount:
		if d, ok := ParseAmount(trimmed); ok {
			fv.Amount, fv.OK = d, true
		}
	case KindInteger:
		if n, ok := ParseInteger(trimmed); ok {
			fv.Int, fv.OK = n, true
		}
	case KindIdentifier:
		id := strings.ToUpper(strings.Join(strings.Fields(trimmed), " "))
		if spec.Pattern == nil || spec.Pattern.MatchString(id) {
			fv.Text, fv.OK = id, true
		}
	default: // KindText
		fv.Text, fv.OK = trimmed, true
	}
	return fv
}
