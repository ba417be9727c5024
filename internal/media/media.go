// Package media decodes label image payloads: data URIs, bare base64 and raw bytes.
package media

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	_ "golang.org/x/image/webp"

	"github.com/joseph-ayodele/label-approvals/constants"
)

var (
	ErrEmptyPayload = errors.New("empty image payload")
	ErrNotDataURI   = errors.New("not a data URI")
)

var reDataURI = regexp.MustCompile(`^data:([a-zA-Z0-9.+\-]+/[a-zA-Z0-9.+\-]+)?(;[^,]*)?,`)

// Payload is a decoded image.
type Payload struct {
	Data        []byte
	ContentType string
}

// DataURI is the parsed form of "data:<type>;base64,<data>".
type DataURI struct {
	ContentType string
	Base64      string
}

// ParseDataURI splits a base64 data URI. Only base64 encoding is accepted.
func ParseDataURI(s string) (DataURI, error) {
	s = strings.TrimSpace(s)
	m := reDataURI.FindStringSubmatch(s)
	if m == nil {
		return DataURI{}, ErrNotDataURI
	}
	if !strings.Contains(m[2], ";base64") {
		return DataURI{}, fmt.Errorf("data URI is not base64 encoded")
	}
	return DataURI{ContentType: strings.ToLower(m[1]), Base64: s[len(m[0]):]}, nil
}

// StripDataURIPrefix returns the base64 body and the declared type ("" when absent).
func StripDataURIPrefix(s string) (b64, contentType string) {
	if du, err := ParseDataURI(s); err == nil {
		return du.Base64, du.ContentType
	}
	return strings.TrimSpace(s), ""
}

// DecodeBase64 accepts a data URI or bare base64 (standard or raw, whitespace tolerated).
func DecodeBase64(s string) (Payload, error) {
	b64, ct := StripDataURIPrefix(s)
	b64 = strings.Map(func(r rune) rune {
		switch r {
		case '\n', '\r', ' ', '\t':
			return -1
		}
		return r
	}, b64)
	if b64 == "" {
		return Payload{}, ErrEmptyPayload
	}
	data, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(b64, "="))
		if err != nil {
			return Payload{}, fmt.Errorf("decode base64: %w", err)
		}
	}
	if ct == "" {
		ct = Sniff(data)
	}
	return Payload{Data: data, ContentType: ct}, nil
}

// EncodeDataURI renders bytes as a base64 data URI.
func EncodeDataURI(data []byte, contentType string) string {
	if contentType == "" {
		contentType = constants.DefaultMediaType
	}
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// Sniff guesses the content type of an image payload.
func Sniff(data []byte) string {
	switch {
	case bytes.HasPrefix(data, []byte("%PDF")):
		return "application/pdf"
	case len(data) >= 12 && string(data[0:4]) == "RIFF" && string(data[8:12]) == "WEBP":
		return "image/webp"
	}
	if _, format, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		return "image/" + format
	}
	return ""
}

// Info describes a decodable image.
type Info struct {
	Format string // "jpeg" | "png" | "gif" | "webp"
	Width  int
	Height int
}

// Inspect decodes only the image header and rejects payloads with no real dimensions.
func Inspect(data []byte) (Info, error) {
	if len(data) == 0 {
		return Info{}, ErrEmptyPayload
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Info{}, fmt.Errorf("decode image: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return Info{}, fmt.Errorf("image has no dimensions")
	}
	return Info{Format: format, Width: cfg.Width, Height: cfg.Height}, nil
}

// ReadFileAsDataURI loads an image file as a data URI. The jpeg extension is reported as jpg.
func ReadFileAsDataURI(path string) (string, error) {
	ext := constants.NormalizeExt(filepath.Ext(path))
	if ext == "jpeg" {
		ext = "jpg"
	}
	switch ext {
	case "jpg", "png", "gif", "webp":
	default:
		return "", fmt.Errorf("unsupported image extension %q", ext)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return EncodeDataURI(b, "image/"+ext), nil
}

// NormalizeContentType maps the non-standard "image/jpg" onto "image/jpeg".
func NormalizeContentType(ct string) string {
	ct = strings.ToLower(strings.TrimSpace(ct))
	if ct == "image/jpg" {
		return "image/jpeg"
	}
	return ct
}
