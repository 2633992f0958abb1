package constants

import "strings"

// Formats for the OCR input boundary.
const (
	IMAGE = "IMAGE"
	TXT   = "TXT"
)

// AllowedExtensions holds the default allowed file extensions for receipt uploads.
var AllowedExtensions = map[string]struct{}{
	"jpg":  {},
	"jpeg": {},
	"png":  {},
	"txt":  {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MapExtToFormat classifies a file extension into an input format.
func MapExtToFormat(ext string) string {
	switch NormalizeExt(ext) {
	case "jpg", "jpeg", "png":
		return IMAGE
	default:
		return TXT
	}
}

// PaymentMethods is the small open set of payment labels the extractors emit.
var PaymentMethods = []string{"Cash", "Card", NotAvailable}
