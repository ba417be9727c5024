// Package analysis runs one label through extraction and compliance matching
// and returns an updated copy of its job.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/label-approvals/constants"
	"github.com/joseph-ayodele/label-approvals/internal/common"
	"github.com/joseph-ayodele/label-approvals/internal/compliance"
	"github.com/joseph-ayodele/label-approvals/internal/entity"
	"github.com/joseph-ayodele/label-approvals/internal/extract"
	"github.com/joseph-ayodele/label-approvals/internal/llm"
	"github.com/joseph-ayodele/label-approvals/internal/ocr"
)

// Extractor is the part of extract.Service the analyzer needs.
type Extractor interface {
	Extract(ctx context.Context, img extract.Image, mode constants.AnalysisMode) (extract.Result, error)
}

// Analyzer coordinates extraction then compliance matching for the first label image of a job.
type Analyzer struct {
	logger      *slog.Logger
	extractor   Extractor
	matchers    compliance.Matchers
	defaultMode constants.AnalysisMode
}

func NewAnalyzer(logger *slog.Logger, extractor Extractor, matchers compliance.Matchers, defaultMode constants.AnalysisMode) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	if defaultMode == "" {
		defaultMode = constants.DefaultAnalysisMode
	}
	return &Analyzer{logger: logger, extractor: extractor, matchers: matchers, defaultMode: defaultMode}
}

// DefaultMode is the mode used when neither the caller nor the job names one.
func (a *Analyzer) DefaultMode() constants.AnalysisMode { return a.defaultMode }

// Analyze extracts label facts from the job's first image, answers the compliance
// questions against the declared product info and returns a new job carrying both.
// The input job is never modified. It returns (nil, false) when the job has no
// images or when extraction or matching fails; failures are logged, not returned.
func (a *Analyzer) Analyze(ctx context.Context, job *entity.Job, override *constants.AnalysisMode) (*entity.Job, bool) {
	if job == nil || len(job.Metadata.LabelImages) == 0 {
		if job != nil {
			a.logger.Info("analysis.skipped", "job_id", job.ID, "reason", "no label images")
		}
		analysisRuns.WithLabelValues("", outcomeSkipped).Inc()
		return nil, false
	}

	ctx = common.WithJobID(ctx, job.ID.String())
	mode := extract.ResolveMode(override, job.Metadata.AnalysisMode, a.defaultMode)
	start := time.Now()
	a.logger.Info("analysis.start", "job_id", job.ID, "mode", mode)

	updated, err := a.run(ctx, job, mode)
	elapsed := time.Since(start)
	analysisDuration.WithLabelValues(string(mode)).Observe(elapsed.Seconds())
	if err != nil {
		a.logger.Error("analysis.failed",
			"job_id", job.ID,
			"mode", mode,
			"provider", providerOf(err, mode),
			"elapsed_ms", elapsed.Milliseconds(),
			"error", err,
		)
		analysisRuns.WithLabelValues(string(mode), outcomeFailed).Inc()
		return nil, false
	}

	res := updated.Metadata.LabelImages[0].AnalysisResult
	countFound(res)
	a.logger.Info("analysis.ok",
		"job_id", job.ID,
		"mode", mode,
		"brand_name_found", res.BrandNameFound,
		"product_class_found", res.ProductClassFound,
		"alcohol_content_found", res.AlcoholContentFound,
		"net_contents_found", res.NetContentsFound,
		"health_warning_found", res.HealthWarning(),
		"elapsed_ms", elapsed.Milliseconds(),
	)
	analysisRuns.WithLabelValues(string(mode), outcomeOK).Inc()
	return updated, true
}

func (a *Analyzer) run(ctx context.Context, job *entity.Job, mode constants.AnalysisMode) (*entity.Job, error) {
	matcher, ok := a.matchers[mode]
	if !ok || matcher == nil {
		return nil, fmt.Errorf("no compliance matcher for mode %q", mode)
	}

	extracted, err := a.extractor.Extract(ctx, extract.ImageFromLabel(job.Metadata.LabelImages[0]), mode)
	if err != nil {
		return nil, fmt.Errorf("extract: %w", err)
	}

	result, err := matcher.Match(ctx, job.Metadata.ProductInfo, extracted)
	if err != nil {
		return nil, fmt.Errorf("match: %w", err)
	}

	updated := job.WithAnalysis(0, extracted.Data, result)
	if updated == nil {
		return nil, errors.New("label image vanished during analysis")
	}
	return updated, nil
}

// providerOf names the external dependency behind err, falling back to the mode's provider.
func providerOf(err error, mode constants.AnalysisMode) string {
	var lerr *llm.ProviderError
	if errors.As(err, &lerr) {
		return lerr.Provider
	}
	var oerr *ocr.ProviderError
	if errors.As(err, &oerr) {
		return oerr.Provider
	}
	if mode == constants.AnalysisModeOCR {
		return "tesseract"
	}
	return "openai"
}

func countFound(r *entity.AnalysisResult) {
	if r == nil {
		return
	}
	for field, found := range map[string]bool{
		"brand_name":      r.BrandNameFound,
		"product_class":   r.ProductClassFound,
		"alcohol_content": r.AlcoholContentFound,
		"net_contents":    r.NetContentsFound,
		"health_warning":  r.HealthWarningFound != nil && *r.HealthWarningFound,
	} {
		if found {
			fieldsFound.WithLabelValues(field).Inc()
		}
	}
}
