package extract

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	"github.com/joseph-ayodele/label-approvals/constants"
	"github.com/joseph-ayodele/label-approvals/internal/entity"
)

// Image is the label image handed to an extractor. Base64 may be a data URI.
type Image struct {
	Base64      string
	URL         string
	ContentType string
}

// ImageFromLabel picks the image reference out of a stored label image.
func ImageFromLabel(l entity.LabelImage) Image {
	return Image{
		Base64:      entity.Deref(l.Base64),
		URL:         entity.Deref(l.ImageURL),
		ContentType: entity.Deref(l.ImageContentType),
	}
}

// Empty reports whether the image carries neither bytes nor a URL.
func (i Image) Empty() bool { return i.Base64 == "" && i.URL == "" }

// Digest identifies the image content for caching.
func (i Image) Digest() string {
	h := sha256.New()
	if i.Base64 != "" {
		h.Write([]byte("b64:"))
		h.Write([]byte(i.Base64))
	} else {
		h.Write([]byte("url:"))
		h.Write([]byte(i.URL))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Result is what one extraction produced. Text holds the raw OCR text and is empty
// for the vision path.
type Result struct {
	Data *entity.BrandData
	Text string
	Mode constants.AnalysisMode
}

// Extractor turns a label image into BrandData.
type Extractor interface {
	Extract(ctx context.Context, img Image) (Result, error)
}
