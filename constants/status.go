package constants

import "strings"

// JobStatus is the review state of a label approval job.
type JobStatus string

// Stable values (store these exact strings in DB).
const (
	JobStatusPending  JobStatus = "pending"
	JobStatusApproved JobStatus = "approved"
	JobStatusRejected JobStatus = "rejected"
)

var JobStatuses = []string{
	string(JobStatusPending),
	string(JobStatusApproved),
	string(JobStatusRejected),
}

// ParseJobStatus accepts any casing of a known status.
func ParseJobStatus(s string) (JobStatus, bool) {
	switch JobStatus(strings.ToLower(strings.TrimSpace(s))) {
	case JobStatusPending:
		return JobStatusPending, true
	case JobStatusApproved:
		return JobStatusApproved, true
	case JobStatusRejected:
		return JobStatusRejected, true
	}
	return "", false
}

// AnalysisMode selects the extraction and matching strategy for a job.
type AnalysisMode string

const (
	AnalysisModeLLM AnalysisMode = "using_llm"
	AnalysisModeOCR AnalysisMode = "pytesseract"
)

// DefaultAnalysisMode is used when neither the caller nor the job picks one.
const DefaultAnalysisMode = AnalysisModeLLM

// ParseAnalysisMode maps user input to a mode. "ocr" and "tesseract" are accepted aliases.
func ParseAnalysisMode(s string) (AnalysisMode, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(AnalysisModeLLM), "llm":
		return AnalysisModeLLM, true
	case string(AnalysisModeOCR), "ocr", "tesseract":
		return AnalysisModeOCR, true
	}
	return "", false
}
