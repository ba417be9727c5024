package entity

import "strconv"

// AnalysisResult answers the five compliance questions for one label image.
// HealthWarningFound is nil only when no warning was declared.
type AnalysisResult struct {
	BrandNameFound               bool    `json:"brand_name_found"`
	BrandNameFoundReasoning      *string `json:"brand_name_found_results_reasoning"`
	ProductClassFound            bool    `json:"product_class_found"`
	ProductClassFoundReasoning   *string `json:"product_class_found_results_reasoning"`
	AlcoholContentFound          bool    `json:"alcohol_content_found"`
	AlcoholContentFoundReasoning *string `json:"alcohol_content_found_results_reasoning"`
	NetContentsFound             bool    `json:"net_contents_found"`
	NetContentsFoundReasoning    *string `json:"net_contents_found_results_reasoning"`
	HealthWarningFound           *bool   `json:"health_warning_found"`
	HealthWarningFoundReasoning  *string `json:"health_warning_found_results_reasoning"`
}

// Clone returns a deep copy.
func (r *AnalysisResult) Clone() *AnalysisResult {
	if r == nil {
		return nil
	}
	out := *r
	out.BrandNameFoundReasoning = clonePtr(r.BrandNameFoundReasoning)
	out.ProductClassFoundReasoning = clonePtr(r.ProductClassFoundReasoning)
	out.AlcoholContentFoundReasoning = clonePtr(r.AlcoholContentFoundReasoning)
	out.NetContentsFoundReasoning = clonePtr(r.NetContentsFoundReasoning)
	out.HealthWarningFound = clonePtr(r.HealthWarningFound)
	out.HealthWarningFoundReasoning = clonePtr(r.HealthWarningFoundReasoning)
	return &out
}

// Complete reports whether every reasoning field is populated.
func (r *AnalysisResult) Complete() bool {
	if r == nil {
		return false
	}
	for _, s := range []*string{
		r.BrandNameFoundReasoning,
		r.ProductClassFoundReasoning,
		r.AlcoholContentFoundReasoning,
		r.NetContentsFoundReasoning,
		r.HealthWarningFoundReasoning,
	} {
		if s == nil || *s == "" {
			return false
		}
	}
	return true
}

// HealthWarning renders HealthWarningFound for logs: "true", "false" or "n/a".
func (r *AnalysisResult) HealthWarning() string {
	if r == nil || r.HealthWarningFound == nil {
		return "n/a"
	}
	return strconv.FormatBool(*r.HealthWarningFound)
}
