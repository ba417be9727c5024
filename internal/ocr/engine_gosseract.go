//go:build gosseract

package ocr

import "log/slog"

// NewEngine returns the in-process libtesseract engine.
func NewEngine(cfg Config, logger *slog.Logger) Engine {
	return NewGosseractEngine(cfg, logger)
}
