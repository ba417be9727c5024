package extract

import (
	"context"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/label-approvals/constants"
	"github.com/joseph-ayodele/label-approvals/internal/common"
	"github.com/joseph-ayodele/label-approvals/internal/entity"
	"github.com/joseph-ayodele/label-approvals/internal/media"
	"github.com/joseph-ayodele/label-approvals/internal/ocr"
)

// OCRExtractor runs an OCR engine and reads the label fields out of the text heuristically.
type OCRExtractor struct {
	engine ocr.Engine
	logger *slog.Logger
}

func NewOCRExtractor(engine ocr.Engine, logger *slog.Logger) *OCRExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &OCRExtractor{engine: engine, logger: logger}
}

// Extract returns the engine's ProviderError when OCR fails, so the analysis is dropped
// rather than recorded as every field missing.
func (x *OCRExtractor) Extract(ctx context.Context, img Image) (Result, error) {
	start := time.Now()
	if img.Base64 == "" {
		return Result{}, common.NewAppError("OCR_INPUT", "OCR analysis needs an embedded base64 image", common.ErrInvalidInput)
	}

	payload, err := media.DecodeBase64(img.Base64)
	var res ocr.Result
	if err != nil {
		res = ocr.Result{Success: false, ErrorMessage: "Invalid image data: " + err.Error(), Engine: "decode"}
	} else {
		res = x.engine.ExtractText(ctx, payload)
	}

	if !res.Success {
		x.logger.Warn("extract.ocr.failed", "engine", res.Engine, "error", res.ErrorMessage)
		return Result{}, res.Err()
	}

	data := ParseLabelText(res.FullText)
	x.logger.Info("extract.ocr.ok",
		"chars", len(res.FullText),
		"avg_conf", res.AverageConfidence,
		"brand", entity.Deref(data.BrandName),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return Result{Data: data, Text: res.FullText, Mode: constants.AnalysisModeOCR}, nil
}
