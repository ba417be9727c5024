// Package compliance answers the five label compliance questions by comparing what the
// applicant declared with what was extracted from the label image.
package compliance

import (
	"context"

	"github.com/joseph-ayodele/label-approvals/constants"
	"github.com/joseph-ayodele/label-approvals/internal/entity"
	"github.com/joseph-ayodele/label-approvals/internal/extract"
	"github.com/joseph-ayodele/label-approvals/internal/llm"
)

// Matcher evaluates declared data against one extraction. A mismatch is a normal
// result with found=false, never an error.
type Matcher interface {
	Match(ctx context.Context, declared *entity.BrandData, extracted extract.Result) (*entity.AnalysisResult, error)
}

// Matchers maps each analysis mode to its matcher.
type Matchers map[constants.AnalysisMode]Matcher

// NotApplicableWarning is the health-warning reasoning when no warning was declared.
const NotApplicableWarning = llm.NotApplicableWarning

func notApplicable(r *entity.AnalysisResult) {
	r.HealthWarningFound = nil
	r.HealthWarningFoundReasoning = entity.Ptr(NotApplicableWarning)
}
