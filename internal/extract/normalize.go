package extract

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// SegmentLines splits OCR text into trimmed, non-empty lines preserving
// original order. Position is semantically meaningful: OCR output mirrors
// the visual layout of the scanned document.
func SegmentLines(text string) []string {
	var lines []string
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(strings.TrimSuffix(raw, "\r"))
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// fold lowercases and strips diacritics rune-by-rune, so "Emisión" matches
// "EMISION". The mapping is one rune in, one rune out, which keeps rune
// indexes aligned between a line and its folded form; value capture cuts
// the original line at positions found in the folded one.
func fold(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		b.WriteRune(foldRune(r))
	}
	return b.String()
}

func foldRune(r rune) rune {
	if r < utf8.RuneSelf {
		return unicode.ToLower(r)
	}
	decomposed := norm.NFD.String(string(r))
	base, _ := utf8.DecodeRuneInString(decomposed)
	if unicode.Is(unicode.Mn, base) {
		return r
	}
	return unicode.ToLower(base)
}

// runeIndex returns the rune offset of needle inside haystack, or -1.
func runeIndex(haystack, needle string) int {
	byteIdx := strings.Index(haystack, needle)
	if byteIdx < 0 {
		return -1
	}
	return utf8.RuneCountInString(haystack[:byteIdx])
}

// cutAfter returns the remainder of line after the first rune offset past
// the folded label match, with leading separators removed.
func cutAfter(line string, runeOffset int) string {
	runes := []rune(line)
	if runeOffset >= len(runes) {
		return ""
	}
	return trimSeparators(string(runes[runeOffset:]))
}

// trimSeparators removes the label/value separator noise OCR leaves behind:
// colons, dashes, dots and runs of whitespace.
func trimSeparators(s string) string {
	return strings.TrimSpace(strings.TrimLeft(s, " \t:.-"))
}
