package pdfimages

import (
	"bytes"
	"compress/zlib"
	"context"
	"fmt"
	"image/png"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aduanatech/docextract/internal/fileinfo"
)

func zlibDeflate(t *testing.T, raw []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	_, err := w.Write(raw)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

// buildPDF assembles a minimal single-page document whose image objects
// are wired through the page's /Resources /XObject table.
func buildPDF(imageObjs ...string) []byte {
	var b bytes.Buffer
	b.WriteString("%PDF-1.4\n")
	b.WriteString("1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n")
	b.WriteString("2 0 obj\n<< /Type /Pages /Kids [3 0 R] /Count 1 >>\nendobj\n")

	xobjects := ""
	for i := range imageObjs {
		xobjects += fmt.Sprintf("/Im%d %d 0 R ", i, 4+i)
	}
	b.WriteString(fmt.Sprintf(
		"3 0 obj\n<< /Type /Page /Parent 2 0 R /Resources << /XObject << %s>> >> >>\nendobj\n",
		xobjects))
	for _, obj := range imageObjs {
		b.WriteString(obj)
	}
	b.WriteString("trailer\n<< /Root 1 0 R >>\n%%EOF\n")
	return b.Bytes()
}

func grayImageObj(num int, stream []byte) string {
	return fmt.Sprintf(
		"%d 0 obj\n<< /Subtype /Image /Width 2 /Height 2 /ColorSpace /DeviceGray /BitsPerComponent 8 /Filter /FlateDecode /Length %d >>\nstream\n%s\nendstream\nendobj\n",
		num, len(stream), stream)
}

func jpegImageObj(num int, stream []byte) string {
	return fmt.Sprintf(
		"%d 0 obj\n<< /Subtype /Image /Width 1 /Height 1 /Filter /DCTDecode /Length %d >>\nstream\n%s\nendstream\nendobj\n",
		num, len(stream), stream)
}

func TestExtractNoImages(t *testing.T) {
	e := NewExtractor(t.TempDir(), nil)
	res, err := e.Extract(context.Background(), buildPDF(), "")
	require.NoError(t, err)
	assert.Empty(t, res.Images)
	assert.Empty(t, res.Warnings)
}

func TestExtractFlateGrayImage(t *testing.T) {
	raw := []byte{0x00, 0x40, 0x80, 0xFF}
	data := buildPDF(grayImageObj(4, zlibDeflate(t, raw)))

	dir := t.TempDir()
	e := NewExtractor(dir, nil)
	res, err := e.Extract(context.Background(), data, "")
	require.NoError(t, err)
	require.Len(t, res.Images, 1)
	assert.Empty(t, res.Warnings)
	assert.Equal(t, 0, res.Images[0].PageIndex)
	assert.Equal(t, 0, res.Images[0].SequenceIndex)

	f, err := os.Open(res.Images[0].Path)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 2, img.Bounds().Dx())
	assert.Equal(t, 2, img.Bounds().Dy())
}

func TestExtractJPEGPassthrough(t *testing.T) {
	jpg := append([]byte{0xFF, 0xD8, 0xFF, 0xE0}, []byte("fake-jfif-payload")...)
	data := buildPDF(jpegImageObj(4, jpg))

	e := NewExtractor(t.TempDir(), nil)
	res, err := e.Extract(context.Background(), data, "")
	require.NoError(t, err)
	require.Len(t, res.Images, 1)

	written, err := os.ReadFile(res.Images[0].Path)
	require.NoError(t, err)
	assert.Equal(t, jpg, written)
}

func TestExtractCorruptImageBecomesWarning(t *testing.T) {
	// bad SOI marker: recorded as a warning, call still succeeds
	data := buildPDF(jpegImageObj(4, []byte("not a jpeg")))

	e := NewExtractor(t.TempDir(), nil)
	res, err := e.Extract(context.Background(), data, "")
	require.NoError(t, err)
	assert.Empty(t, res.Images)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "corrupt JPEG")
}

func TestExtractMixedCorruptAndGood(t *testing.T) {
	good := zlibDeflate(t, []byte{1, 2, 3, 4})
	data := buildPDF(jpegImageObj(4, []byte("junk")), grayImageObj(5, good))

	e := NewExtractor(t.TempDir(), nil)
	res, err := e.Extract(context.Background(), data, "")
	require.NoError(t, err)
	require.Len(t, res.Images, 1)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, 1, res.Images[0].SequenceIndex)
}

func TestExtractNamesAreCallScoped(t *testing.T) {
	data := buildPDF(grayImageObj(4, zlibDeflate(t, []byte{9, 9, 9, 9})))
	dir := t.TempDir()
	e := NewExtractor(dir, nil)

	first, err := e.Extract(context.Background(), data, "")
	require.NoError(t, err)
	second, err := e.Extract(context.Background(), data, "")
	require.NoError(t, err)

	require.Len(t, first.Images, 1)
	require.Len(t, second.Images, 1)
	assert.NotEqual(t, first.Images[0].Path, second.Images[0].Path,
		"retries must not collide with leftovers from earlier calls")
}

func TestExtractRejectsNonPDF(t *testing.T) {
	e := NewExtractor(t.TempDir(), nil)

	_, err := e.Extract(context.Background(), nil, "")
	require.ErrorIs(t, err, fileinfo.ErrEmptyInput)

	var fe *fileinfo.FormatError
	_, err = e.Extract(context.Background(), []byte("plain text"), "")
	require.ErrorAs(t, err, &fe)
}
