//go:build !gosseract

package ocr

import "log/slog"

// NewEngine returns the tesseract CLI engine. Build with -tags gosseract for the in-process one.
func NewEngine(cfg Config, logger *slog.Logger) Engine {
	return NewExtractor(cfg, logger)
}
