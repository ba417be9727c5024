package constants

import "strings"

// SupportedMediaTypes are the payload types the vision provider accepts.
var SupportedMediaTypes = map[string]struct{}{
	"image/jpeg":      {},
	"image/png":       {},
	"image/gif":       {},
	"image/webp":      {},
	"application/pdf": {},
}

// DefaultMediaType is assumed when a payload carries no type.
const DefaultMediaType = "image/jpeg"

// UploadImageFormats are the formats accepted in a job's label image data URI.
var UploadImageFormats = []string{"jpg", "jpeg", "png", "gif"}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MediaTypeForExt returns the content type for a label image extension, or "".
func MediaTypeForExt(ext string) string {
	switch NormalizeExt(ext) {
	case "jpg", "jpeg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "gif":
		return "image/gif"
	case "webp":
		return "image/webp"
	case "pdf":
		return "application/pdf"
	}
	return ""
}
