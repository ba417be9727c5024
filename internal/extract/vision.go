package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/label-approvals/constants"
	"github.com/joseph-ayodele/label-approvals/internal/common"
	"github.com/joseph-ayodele/label-approvals/internal/entity"
	"github.com/joseph-ayodele/label-approvals/internal/llm"
)

// VisionExtractor asks a vision model to read the label into BrandData.
type VisionExtractor struct {
	provider llm.Provider
	logger   *slog.Logger
}

func NewVisionExtractor(provider llm.Provider, logger *slog.Logger) *VisionExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &VisionExtractor{provider: provider, logger: logger}
}

func (x *VisionExtractor) Extract(ctx context.Context, img Image) (Result, error) {
	start := time.Now()
	m := llm.Media{Base64: img.Base64, ContentType: img.ContentType}
	if img.Base64 == "" {
		m = llm.Media{URL: img.URL}
	}

	x.logger.Info("extract.llm.start", "has_base64", img.Base64 != "", "has_url", img.URL != "")
	resp, err := x.provider.CompletePromptWithMedia(ctx, llm.BuildVisionPrompt(), m)
	if err != nil {
		return Result{}, fmt.Errorf("vision extraction: %w", err)
	}

	data, err := DecodeBrandData(resp, x.logger)
	if err != nil {
		x.logger.Error("extract.llm.parse_failed", "error", err, "response", common.Truncate(resp, 500, "…"))
		return Result{}, err
	}

	x.logger.Info("extract.llm.ok",
		"brand", entity.Deref(data.BrandName),
		"products", len(data.Products),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return Result{Data: data, Mode: constants.AnalysisModeLLM}, nil
}

// DecodeBrandData pulls BrandData out of a model reply. The JSON is validated against
// llm.BrandDataSchema first; on failure it is sanitized and validated again.
func DecodeBrandData(resp string, logger *slog.Logger) (*entity.BrandData, error) {
	body := []byte(llm.ExtractJSON(resp))
	if !json.Valid(body) {
		return nil, &llm.ParseError{Raw: resp, Err: fmt.Errorf("response is not valid JSON")}
	}

	if err := llm.BrandDataSchema.Validate(body); err != nil {
		cleaned, dropped, sErr := llm.SanitizeBrandData(body, logger)
		if sErr != nil {
			return nil, &llm.ParseError{Raw: resp, Err: sErr}
		}
		if vErr := llm.BrandDataSchema.Validate(cleaned); vErr != nil {
			return nil, &llm.ParseError{Raw: resp, Err: vErr}
		}
		if logger != nil {
			logger.Warn("extract.llm.lenient_sanitize_applied", "dropped", dropped)
		}
		body = cleaned
	}

	var data entity.BrandData
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, &llm.ParseError{Raw: resp, Err: err}
	}
	return &data, nil
}
