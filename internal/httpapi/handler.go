package httpapi

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/label-approvals/constants"
	"github.com/joseph-ayodele/label-approvals/internal/common"
	"github.com/joseph-ayodele/label-approvals/internal/entity"
	"github.com/joseph-ayodele/label-approvals/internal/ingest"
	ingestsvc "github.com/joseph-ayodele/label-approvals/internal/services/ingest"
	"github.com/joseph-ayodele/label-approvals/internal/services/jobs"
	"github.com/joseph-ayodele/label-approvals/internal/utils"
)

type JobService interface {
	Create(ctx context.Context, in jobs.CreateJobInput) (*entity.Job, error)
	Get(ctx context.Context, id uuid.UUID) (*entity.Job, error)
	List(ctx context.Context, filter jobs.ListFilter) ([]*entity.Job, int, error)
	Analyze(ctx context.Context, id uuid.UUID, override *constants.AnalysisMode) (*entity.Job, error)
	SetStatus(ctx context.Context, id uuid.UUID, status constants.JobStatus, comment *string) (*entity.Job, error)
	AddReviewComment(ctx context.Context, id uuid.UUID, comment string) (*entity.Job, error)
}

type Exporter interface {
	ExportJobsXLSX(ctx context.Context, filter jobs.ListFilter) ([]byte, error)
}

type IngestService interface {
	IngestFile(ctx context.Context, req ingestsvc.FileIngestRequest) (ingest.Result, error)
	IngestDirectory(ctx context.Context, req ingestsvc.DirectoryIngestRequest) (*ingestsvc.DirectoryIngestResult, error)
}

// HealthFunc reports whether the service's dependencies are reachable.
type HealthFunc func(ctx context.Context) error

// Handler holds dependencies for HTTP handlers. Ingest and health are optional.
type Handler struct {
	jobs     JobService
	exporter Exporter
	ingest   IngestService
	health   HealthFunc
	logger   *slog.Logger
	now      func() time.Time
}

func NewHandler(js JobService, exp Exporter, ing IngestService, health HealthFunc, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{jobs: js, exporter: exp, ingest: ing, health: health, logger: logger, now: time.Now}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	if h.health != nil {
		if err := h.health(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "label-approvals"})
}

func (h *Handler) CreateJob(c *gin.Context) {
	var req utils.CreateJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	job, err := h.jobs.Create(c.Request.Context(), req.ToInput())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, utils.JobResponse{Job: utils.ToJobDTO(job)})
}

func (h *Handler) ListJobs(c *gin.Context) {
	var req utils.ListJobsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	filter, err := req.Filter()
	if err != nil {
		h.fail(c, err)
		return
	}
	js, total, err := h.jobs.List(c.Request.Context(), filter)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.NewListJobsResponse(js, total, filter))
}

func (h *Handler) GetJob(c *gin.Context) {
	id, err := utils.ParseJobID(c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	job, err := h.jobs.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.JobResponse{Job: utils.ToJobDTO(job)})
}

// AnalyzeJob re-runs analysis. The mode comes from an optional JSON body or the analysis_mode query parameter.
func (h *Handler) AnalyzeJob(c *gin.Context) {
	id, err := utils.ParseJobID(c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	var req utils.AnalyzeJobRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		h.badRequest(c, err)
		return
	}
	if req.AnalysisMode == "" {
		req.AnalysisMode = c.Query("analysis_mode")
	}
	mode, err := utils.ParseMode(req.AnalysisMode)
	if err != nil {
		h.fail(c, err)
		return
	}
	job, err := h.jobs.Analyze(c.Request.Context(), id, mode)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.JobResponse{Job: utils.ToJobDTO(job)})
}

func (h *Handler) SetJobStatus(c *gin.Context) {
	id, err := utils.ParseJobID(c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	var req utils.SetJobStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	job, err := h.jobs.SetStatus(c.Request.Context(), id, constants.JobStatus(req.Status), req.Comment)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.JobResponse{Job: utils.ToJobDTO(job)})
}

func (h *Handler) AddReviewComment(c *gin.Context) {
	id, err := utils.ParseJobID(c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	var req utils.AddReviewCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	job, err := h.jobs.AddReviewComment(c.Request.Context(), id, req.Comment)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.JobResponse{Job: utils.ToJobDTO(job)})
}

// ExportJobs streams the XLSX review report for the jobs matching the query filter.
func (h *Handler) ExportJobs(c *gin.Context) {
	var req utils.ListJobsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	filter, err := req.Filter()
	if err != nil {
		h.fail(c, err)
		return
	}
	data, err := h.exporter.ExportJobsXLSX(c.Request.Context(), filter)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+utils.ExportFilename(h.now())+`"`)
	c.Data(http.StatusOK, utils.XLSXContentType, data)
}

func (h *Handler) IngestFile(c *gin.Context) {
	if h.ingest == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "inbox ingestion is not configured"})
		return
	}
	var req ingestsvc.FileIngestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	res, err := h.ingest.IngestFile(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) IngestDirectory(c *gin.Context) {
	if h.ingest == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "inbox ingestion is not configured"})
		return
	}
	var req ingestsvc.DirectoryIngestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	res, err := h.ingest.IngestDirectory(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) badRequest(c *gin.Context, err error) {
	_ = c.Error(err)
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "INVALID_REQUEST"})
}

func (h *Handler) fail(c *gin.Context, err error) {
	_ = c.Error(err)
	body := gin.H{"error": err.Error()}
	var appErr *common.AppError
	if errors.As(err, &appErr) {
		body["error"] = appErr.Message
		body["code"] = appErr.Code
	}
	c.JSON(StatusFor(err), body)
}

// StatusFor maps an application error onto an HTTP status code.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, common.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, common.ErrValidation), errors.Is(err, common.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrProvider):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
