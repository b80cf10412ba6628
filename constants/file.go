package constants

import "strings"

// FileFormat identifies the accepted input container formats.
type FileFormat string

const (
	PNG     FileFormat = "PNG"
	PDF     FileFormat = "PDF"
	Unknown FileFormat = "UNKNOWN"
)

// AllowedExtensions holds the default allowed file extensions for ingestion.
var AllowedExtensions = map[string]struct{}{
	"pdf": {},
	"png": {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MapExtToFormat maps a normalized extension to a FileFormat.
func MapExtToFormat(ext string) FileFormat {
	switch NormalizeExt(ext) {
	case "png":
		return PNG
	case "pdf":
		return PDF
	default:
		return Unknown
	}
}
