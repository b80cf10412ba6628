// Package pdfimages recovers embedded raster images from PDF bytes and
// persists them as standalone PNG/JPEG files. Recovery follows
// partial-failure semantics: a corrupt embedded image becomes a warning,
// never an aborted call, as long as the PDF itself parsed.
package pdfimages

import (
	"bytes"
	"compress/zlib"
	"context"
	"fmt"
	"image"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/aduanatech/docextract/constants"
	"github.com/aduanatech/docextract/internal/fileinfo"
)

// ExtractedImage describes one recovered image. Ownership of the backing
// file passes to the caller once returned.
type ExtractedImage struct {
	Path          string
	PageIndex     int // zero-based; -1 when no page references the image
	SequenceIndex int
}

// Result is the outcome of one extraction call.
type Result struct {
	Images   []ExtractedImage
	Warnings []string
}

// Extractor writes recovered images under a configured output folder.
type Extractor struct {
	outputDir string
	logger    *slog.Logger
}

// NewExtractor builds an extractor. outputDir is the default destination
// used when a call does not supply one; empty falls back to a docextract
// subdirectory of the OS temp dir.
func NewExtractor(outputDir string, logger *slog.Logger) *Extractor {
	if outputDir == "" {
		outputDir = filepath.Join(os.TempDir(), "docextract")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{outputDir: outputDir, logger: logger}
}

// Extract enumerates pages in document order and their referenced image
// XObjects in structural order, writing each decodable image to outputDir
// (or the extractor default when empty). File names combine a content
// digest prefix with a call-scoped component, so concurrent calls and
// retries over leftovers never collide.
func (e *Extractor) Extract(ctx context.Context, data []byte, outputDir string) (Result, error) {
	var res Result

	if err := fileinfo.Validate(data, constants.PDF); err != nil {
		return res, err
	}
	if outputDir == "" {
		outputDir = e.outputDir
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return res, fmt.Errorf("create output folder: %w", err)
	}

	objects := scanObjects(data)
	byNum := make(map[int]object, len(objects))
	for _, obj := range objects {
		byNum[obj.num] = obj
	}
	resolveDict := func(num int) string { return byNum[num].dict }

	hashPrefix := fileinfo.HashSHA256(data)[:12]
	callID := uuid.NewString()[:8]

	written := make(map[int]bool)
	pageIndex := 0
	for _, obj := range objects {
		if !isPageDict(obj.dict) {
			continue
		}
		seq := 0
		for _, ref := range xobjectRefs(obj.dict, resolveDict) {
			img, ok := byNum[ref]
			if !ok || !isImageDict(img.dict) {
				continue
			}
			if err := ctx.Err(); err != nil {
				return res, err
			}
			path, err := e.writeImage(img, outputDir, hashPrefix, callID, pageIndex, seq)
			written[ref] = true
			if err != nil {
				res.Warnings = append(res.Warnings, fmt.Sprintf("page %d image %d: %v", pageIndex, seq, err))
				seq++
				continue
			}
			res.Images = append(res.Images, ExtractedImage{Path: path, PageIndex: pageIndex, SequenceIndex: seq})
			seq++
		}
		pageIndex++
	}

	// Images that no page references are still recovered; a broken page
	// tree must not silently drop scanned content.
	orphanSeq := 0
	for _, obj := range objects {
		if !isImageDict(obj.dict) || written[obj.num] {
			continue
		}
		if err := ctx.Err(); err != nil {
			return res, err
		}
		path, err := e.writeImage(obj, outputDir, hashPrefix, callID, -1, orphanSeq)
		if err != nil {
			res.Warnings = append(res.Warnings, fmt.Sprintf("unreferenced image %d: %v", obj.num, err))
			orphanSeq++
			continue
		}
		res.Warnings = append(res.Warnings, fmt.Sprintf("image object %d not referenced by any page", obj.num))
		res.Images = append(res.Images, ExtractedImage{Path: path, PageIndex: -1, SequenceIndex: orphanSeq})
		orphanSeq++
	}

	e.logger.Debug("pdfimages.extract.ok",
		"pages", pageIndex,
		"images", len(res.Images),
		"warnings", len(res.Warnings),
	)
	return res, nil
}

// writeImage decodes one image object and writes it to disk, returning the
// absolute-or-caller-resolvable path of the produced file.
func (e *Extractor) writeImage(obj object, dir, hashPrefix, callID string, page, seq int) (string, error) {
	filters := dictFilters(obj.dict)
	if len(obj.stream) == 0 {
		return "", fmt.Errorf("empty image stream")
	}

	name := func(ext string) string {
		return filepath.Join(dir, fmt.Sprintf("%s_%s_p%d_%d.%s", hashPrefix, callID, page, seq, ext))
	}

	for _, f := range filters {
		switch f {
		case "DCTDecode":
			if len(obj.stream) < 2 || obj.stream[0] != 0xFF || obj.stream[1] != 0xD8 {
				return "", fmt.Errorf("corrupt JPEG stream")
			}
			path := name("jpg")
			if err := os.WriteFile(path, obj.stream, 0o644); err != nil {
				return "", fmt.Errorf("write jpeg: %w", err)
			}
			return path, nil
		case "FlateDecode":
			img, err := decodeFlateImage(obj)
			if err != nil {
				return "", err
			}
			path := name("png")
			out, err := os.Create(path)
			if err != nil {
				return "", fmt.Errorf("create png: %w", err)
			}
			if err := png.Encode(out, img); err != nil {
				_ = out.Close()
				return "", fmt.Errorf("encode png: %w", err)
			}
			if err := out.Close(); err != nil {
				return "", err
			}
			return path, nil
		}
	}
	return "", fmt.Errorf("unsupported image filters %v", filters)
}

// decodeFlateImage inflates a FlateDecode image stream and rebuilds the
// raster. Only the encodings seen in scanned customs documents are
// supported: 8-bit DeviceGray and DeviceRGB without predictors.
func decodeFlateImage(obj object) (image.Image, error) {
	width := dictInt(obj.dict, "Width")
	height := dictInt(obj.dict, "Height")
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("missing image dimensions")
	}
	if bpc := dictInt(obj.dict, "BitsPerComponent"); bpc != -1 && bpc != 8 {
		return nil, fmt.Errorf("unsupported bits per component %d", bpc)
	}

	zr, err := zlib.NewReader(bytes.NewReader(obj.stream))
	if err != nil {
		return nil, fmt.Errorf("inflate: %w", err)
	}
	defer func() {
		_ = zr.Close()
	}()
	raw, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("inflate: %w", err)
	}

	switch cs := dictName(obj.dict, "ColorSpace"); cs {
	case "DeviceGray":
		if len(raw) < width*height {
			return nil, fmt.Errorf("truncated gray raster: %d bytes", len(raw))
		}
		img := image.NewGray(image.Rect(0, 0, width, height))
		copy(img.Pix, raw[:width*height])
		return img, nil
	case "DeviceRGB", "":
		if len(raw) < width*height*3 {
			return nil, fmt.Errorf("truncated rgb raster: %d bytes", len(raw))
		}
		img := image.NewRGBA(image.Rect(0, 0, width, height))
		for i := 0; i < width*height; i++ {
			img.Pix[i*4+0] = raw[i*3+0]
			img.Pix[i*4+1] = raw[i*3+1]
			img.Pix[i*4+2] = raw[i*3+2]
			img.Pix[i*4+3] = 0xFF
		}
		return img, nil
	default:
		return nil, fmt.Errorf("unsupported color space %s", cs)
	}
}
