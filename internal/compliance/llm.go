package compliance

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/label-approvals/internal/common"
	"github.com/joseph-ayodele/label-approvals/internal/entity"
	"github.com/joseph-ayodele/label-approvals/internal/extract"
	"github.com/joseph-ayodele/label-approvals/internal/llm"
)

const noReasoning = "The model did not explain this answer."

// LLMMatcher asks a text model to compare the declared and extracted BrandData.
type LLMMatcher struct {
	provider llm.Provider
	logger   *slog.Logger
}

func NewLLMMatcher(provider llm.Provider, logger *slog.Logger) *LLMMatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &LLMMatcher{provider: provider, logger: logger}
}

func (m *LLMMatcher) Match(ctx context.Context, declared *entity.BrandData, extracted extract.Result) (*entity.AnalysisResult, error) {
	start := time.Now()
	prompt := llm.BuildAnalysisPrompt(declared, extracted.Data)

	resp, err := m.provider.CompletePrompt(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("compliance analysis: %w", err)
	}
	m.logger.Info("compliance.llm.response", "response", common.Truncate(resp, 500, "…"))

	r, err := DecodeAnalysisResult(resp)
	if err != nil {
		m.logger.Error("compliance.llm.parse_failed", "error", err)
		return nil, err
	}
	if declared.FirstProduct().Warnings() == "" {
		notApplicable(r)
	}

	m.logger.Info("compliance.llm.done",
		"brand", r.BrandNameFound,
		"class", r.ProductClassFound,
		"abv", r.AlcoholContentFound,
		"net", r.NetContentsFound,
		"warning", r.HealthWarning(),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return r, nil
}

// DecodeAnalysisResult parses and validates a model reply into an AnalysisResult.
// Missing reasoning strings are filled so every question carries an explanation.
func DecodeAnalysisResult(resp string) (*entity.AnalysisResult, error) {
	var r entity.AnalysisResult
	if err := llm.AnalysisResultSchema.Decode(resp, &r); err != nil {
		return nil, err
	}
	for _, s := range []**string{
		&r.BrandNameFoundReasoning,
		&r.ProductClassFoundReasoning,
		&r.AlcoholContentFoundReasoning,
		&r.NetContentsFoundReasoning,
		&r.HealthWarningFoundReasoning,
	} {
		if *s == nil || **s == "" {
			*s = entity.Ptr(noReasoning)
		}
	}
	return &r, nil
}
