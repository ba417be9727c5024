package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/label-approvals/constants"
	"github.com/joseph-ayodele/label-approvals/internal/common"
	"github.com/joseph-ayodele/label-approvals/internal/entity"
	"github.com/joseph-ayodele/label-approvals/internal/repository"
	"github.com/joseph-ayodele/label-approvals/internal/services/jobs"
)

// CreateJobRequest is the wire shape of a new submission, shared by the gRPC and HTTP transports.
type CreateJobRequest struct {
	BrandName         string  `json:"brand_name" binding:"required"`
	ProductClass      string  `json:"product_class" binding:"required"`
	AlcoholContentABV *string `json:"alcohol_content_abv"`
	NetContents       *string `json:"net_contents"`
	BottlerInfo       *string `json:"bottler_info"`
	Manufacturer      *string `json:"manufacturer"`
	Warnings          *string `json:"warnings"`
	LabelImageBase64  *string `json:"label_image_base64"`
	AnalysisMode      *string `json:"analysis_mode"`
	Status            *string `json:"status"`
	ReviewerID        *string `json:"reviewer_id"`
	ReviewerName      *string `json:"reviewer_name"`
}

func (r CreateJobRequest) ToInput() jobs.CreateJobInput {
	in := jobs.CreateJobInput{
		BrandName:         r.BrandName,
		ProductClass:      r.ProductClass,
		AlcoholContentABV: r.AlcoholContentABV,
		NetContents:       r.NetContents,
		BottlerInfo:       r.BottlerInfo,
		Manufacturer:      r.Manufacturer,
		Warnings:          r.Warnings,
		LabelImageBase64:  r.LabelImageBase64,
		ReviewerID:        r.ReviewerID,
		ReviewerName:      r.ReviewerName,
	}
	if r.AnalysisMode != nil && *r.AnalysisMode != "" {
		in.AnalysisMode = entity.Ptr(constants.AnalysisMode(*r.AnalysisMode))
	}
	if r.Status != nil && *r.Status != "" {
		in.Status = entity.Ptr(constants.JobStatus(*r.Status))
	}
	return in
}

// JobDTO is a job as returned to clients.
type JobDTO struct {
	ID           string             `json:"id"`
	BrandName    string             `json:"brand_name"`
	ProductClass string             `json:"product_class"`
	Status       string             `json:"status"`
	JobMetadata  entity.JobMetadata `json:"job_metadata"`
	CreatedAt    string             `json:"created_at"`
	UpdatedAt    string             `json:"updated_at"`
	CreatedBy    entity.Actor       `json:"created_by"`
	UpdatedBy    entity.Actor       `json:"updated_by"`
}

func ToJobDTO(j *entity.Job) *JobDTO {
	if j == nil {
		return nil
	}
	return &JobDTO{
		ID:           j.ID.String(),
		BrandName:    j.BrandName,
		ProductClass: j.ProductClass,
		Status:       string(j.Status),
		JobMetadata:  j.Metadata,
		CreatedAt:    j.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:    j.UpdatedAt.UTC().Format(time.RFC3339),
		CreatedBy:    j.CreatedBy,
		UpdatedBy:    j.UpdatedBy,
	}
}

func ToJobDTOs(js []*entity.Job) []*JobDTO {
	out := make([]*JobDTO, 0, len(js))
	for _, j := range js {
		out = append(out, ToJobDTO(j))
	}
	return out
}

// ListJobsResponse is one page of jobs.
type ListJobsResponse struct {
	Jobs       []*JobDTO `json:"jobs"`
	TotalCount int       `json:"total_count"`
	Offset     int       `json:"offset"`
	Limit      int       `json:"limit"`
}

// ParseJobID validates a path or request job id.
func ParseJobID(s string) (uuid.UUID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return uuid.Nil, common.NewAppError("INVALID_JOB_ID", "job_id is required", common.ErrInvalidInput)
	}
	if vErr := common.UUID("job_id", s); vErr != nil {
		return uuid.Nil, common.NewAppError("INVALID_JOB_ID", "job_id "+vErr.Message, common.ErrInvalidInput)
	}
	return uuid.MustParse(s), nil
}

// ParseMode returns nil for an empty mode.
func ParseMode(s string) (*constants.AnalysisMode, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	m, ok := constants.ParseAnalysisMode(s)
	if !ok {
		return nil, common.NewAppError("INVALID_MODE", fmt.Sprintf("unknown analysis mode %q", s), common.ErrInvalidInput)
	}
	return &m, nil
}

// ParseListFilter validates list parameters. Limit is capped at 1000.
func ParseListFilter(brandNameLike, status string, offset, limit int) (jobs.ListFilter, error) {
	f := jobs.ListFilter{BrandNameLike: strings.TrimSpace(brandNameLike), Offset: offset, Limit: limit}
	if offset < 0 {
		return f, common.NewAppError("INVALID_OFFSET", "offset must be >= 0", common.ErrInvalidInput)
	}
	if limit < 0 {
		return f, common.NewAppError("INVALID_LIMIT", "limit must be >= 0", common.ErrInvalidInput)
	}
	if limit > 1000 {
		f.Limit = 1000
	}
	if strings.TrimSpace(status) != "" {
		st, ok := constants.ParseJobStatus(status)
		if !ok {
			return f, common.NewAppError("INVALID_STATUS",
				"status must be one of: "+strings.Join(constants.JobStatuses, ", "), common.ErrInvalidInput)
		}
		f.Status = &st
	}
	return f, nil
}

// XLSXContentType is the media type of the review report.
const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ListJobsRequest carries list parameters; the form tags serve query strings.
type ListJobsRequest struct {
	BrandName string `json:"brand_name" form:"brand_name"`
	Status    string `json:"status" form:"status"`
	Offset    int    `json:"offset" form:"offset"`
	Limit     int    `json:"limit" form:"limit"`
}

// Filter validates the request. A zero limit becomes the repository default.
func (r ListJobsRequest) Filter() (jobs.ListFilter, error) {
	f, err := ParseListFilter(r.BrandName, r.Status, r.Offset, r.Limit)
	if err != nil {
		return f, err
	}
	if f.Limit == 0 {
		f.Limit = repository.DefaultListLimit
	}
	return f, nil
}

func NewListJobsResponse(js []*entity.Job, total int, f jobs.ListFilter) *ListJobsResponse {
	return &ListJobsResponse{Jobs: ToJobDTOs(js), TotalCount: total, Offset: f.Offset, Limit: f.Limit}
}

type JobRequest struct {
	ID string `json:"id"`
}

type AnalyzeJobRequest struct {
	ID           string `json:"id"`
	AnalysisMode string `json:"analysis_mode"`
}

type SetJobStatusRequest struct {
	ID      string  `json:"id"`
	Status  string  `json:"status" binding:"required"`
	Comment *string `json:"comment"`
}

type AddReviewCommentRequest struct {
	ID      string `json:"id"`
	Comment string `json:"comment" binding:"required"`
}

// JobResponse wraps a single job.
type JobResponse struct {
	Job *JobDTO `json:"job"`
}

// ExportJobsResponse carries the XLSX report. Data is base64 on the wire.
type ExportJobsResponse struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Data        []byte `json:"data"`
}

// ExportFilename names a report generated at t.
func ExportFilename(t time.Time) string {
	return "label_reviews_" + t.UTC().Format("20060102_150405") + ".xlsx"
}
