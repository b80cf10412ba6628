package fileinfo

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aduanatech/docextract/constants"
)

var (
	pngBytes = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0x00, 0x00}
	pdfBytes = []byte("%PDF-1.7\n1 0 obj\n<<>>\nendobj\n")
)

func TestDetectFormat(t *testing.T) {
	assert.Equal(t, constants.PNG, DetectFormat(pngBytes))
	assert.Equal(t, constants.PDF, DetectFormat(pdfBytes))
	assert.Equal(t, constants.Unknown, DetectFormat([]byte("hello world")))
	assert.Equal(t, constants.Unknown, DetectFormat(nil))
}

func TestDetectFormatPDFWithPreamble(t *testing.T) {
	// BOM + junk before the header still counts as PDF.
	data := append([]byte{0xEF, 0xBB, 0xBF, ' ', ' '}, pdfBytes...)
	assert.Equal(t, constants.PDF, DetectFormat(data))
}

func TestValidateEmptyInput(t *testing.T) {
	assert.False(t, IsValidPNG(nil))
	assert.False(t, IsValidPDF(nil))

	err := Validate(nil, constants.PNG)
	require.ErrorIs(t, err, ErrEmptyInput)

	var fe *FormatError
	assert.NotErrorAs(t, err, &fe)
}

func TestValidateFormatMismatch(t *testing.T) {
	err := Validate(pngBytes, constants.PDF)
	var fe *FormatError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, constants.PDF, fe.Expected)
	assert.Equal(t, constants.PNG, fe.Detected)
}

func TestHashSHA256Deterministic(t *testing.T) {
	a := HashSHA256(pdfBytes)
	b := HashSHA256(pdfBytes)
	assert.Equal(t, a, b)
	assert.Len(t, a, 64)
	assert.Equal(t, strings.ToLower(a), a, "digest must be lowercase hex")

	mutated := append([]byte(nil), pdfBytes...)
	mutated[0] ^= 0x01
	assert.NotEqual(t, a, HashSHA256(mutated))
}

func TestHashSHA256KnownVector(t *testing.T) {
	// sha256("") is a fixed, platform-independent value.
	assert.Equal(t,
		"e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
		HashSHA256(nil))
}
