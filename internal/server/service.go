package server

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/joseph-ayodele/label-approvals/constants"
	"github.com/joseph-ayodele/label-approvals/internal/common"
	"github.com/joseph-ayodele/label-approvals/internal/entity"
	"github.com/joseph-ayodele/label-approvals/internal/ingest"
	ingestsvc "github.com/joseph-ayodele/label-approvals/internal/services/ingest"
	"github.com/joseph-ayodele/label-approvals/internal/services/jobs"
	"github.com/joseph-ayodele/label-approvals/internal/utils"
)

// JobService is the slice of the jobs service exposed over gRPC.
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

// LabelApprovalService implements LabelApprovalServer. A nil ingest service
// makes the ingest methods report FailedPrecondition.
type LabelApprovalService struct {
	jobs     JobService
	exporter Exporter
	ingest   IngestService
	logger   *slog.Logger
	now      func() time.Time
}

func NewLabelApprovalService(js JobService, exp Exporter, ing IngestService, logger *slog.Logger) *LabelApprovalService {
	if logger == nil {
		logger = slog.Default()
	}
	return &LabelApprovalService{jobs: js, exporter: exp, ingest: ing, logger: logger, now: time.Now}
}

var _ LabelApprovalServer = (*LabelApprovalService)(nil)

func (s *LabelApprovalService) CreateJob(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req utils.CreateJobRequest
	if err := decodeStruct(in, &req); err != nil {
		return nil, s.fail(MethodCreateJob, err)
	}
	job, err := s.jobs.Create(ctx, req.ToInput())
	if err != nil {
		return nil, s.fail(MethodCreateJob, err)
	}
	return s.reply(MethodCreateJob, utils.JobResponse{Job: utils.ToJobDTO(job)})
}

func (s *LabelApprovalService) GetJob(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req utils.JobRequest
	if err := decodeStruct(in, &req); err != nil {
		return nil, s.fail(MethodGetJob, err)
	}
	id, err := utils.ParseJobID(req.ID)
	if err != nil {
		return nil, s.fail(MethodGetJob, err)
	}
	job, err := s.jobs.Get(ctx, id)
	if err != nil {
		return nil, s.fail(MethodGetJob, err)
	}
	return s.reply(MethodGetJob, utils.JobResponse{Job: utils.ToJobDTO(job)})
}

func (s *LabelApprovalService) ListJobs(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req utils.ListJobsRequest
	if err := decodeStruct(in, &req); err != nil {
		return nil, s.fail(MethodListJobs, err)
	}
	filter, err := req.Filter()
	if err != nil {
		return nil, s.fail(MethodListJobs, err)
	}
	js, total, err := s.jobs.List(ctx, filter)
	if err != nil {
		return nil, s.fail(MethodListJobs, err)
	}
	return s.reply(MethodListJobs, utils.NewListJobsResponse(js, total, filter))
}

func (s *LabelApprovalService) AnalyzeJob(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req utils.AnalyzeJobRequest
	if err := decodeStruct(in, &req); err != nil {
		return nil, s.fail(MethodAnalyzeJob, err)
	}
	id, err := utils.ParseJobID(req.ID)
	if err != nil {
		return nil, s.fail(MethodAnalyzeJob, err)
	}
	mode, err := utils.ParseMode(req.AnalysisMode)
	if err != nil {
		return nil, s.fail(MethodAnalyzeJob, err)
	}
	job, err := s.jobs.Analyze(ctx, id, mode)
	if err != nil {
		return nil, s.fail(MethodAnalyzeJob, err)
	}
	return s.reply(MethodAnalyzeJob, utils.JobResponse{Job: utils.ToJobDTO(job)})
}

func (s *LabelApprovalService) SetJobStatus(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req utils.SetJobStatusRequest
	if err := decodeStruct(in, &req); err != nil {
		return nil, s.fail(MethodSetJobStatus, err)
	}
	id, err := utils.ParseJobID(req.ID)
	if err != nil {
		return nil, s.fail(MethodSetJobStatus, err)
	}
	job, err := s.jobs.SetStatus(ctx, id, constants.JobStatus(req.Status), req.Comment)
	if err != nil {
		return nil, s.fail(MethodSetJobStatus, err)
	}
	return s.reply(MethodSetJobStatus, utils.JobResponse{Job: utils.ToJobDTO(job)})
}

func (s *LabelApprovalService) AddReviewComment(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req utils.AddReviewCommentRequest
	if err := decodeStruct(in, &req); err != nil {
		return nil, s.fail(MethodAddReviewComment, err)
	}
	id, err := utils.ParseJobID(req.ID)
	if err != nil {
		return nil, s.fail(MethodAddReviewComment, err)
	}
	job, err := s.jobs.AddReviewComment(ctx, id, req.Comment)
	if err != nil {
		return nil, s.fail(MethodAddReviewComment, err)
	}
	return s.reply(MethodAddReviewComment, utils.JobResponse{Job: utils.ToJobDTO(job)})
}

func (s *LabelApprovalService) ExportJobs(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req utils.ListJobsRequest
	if err := decodeStruct(in, &req); err != nil {
		return nil, s.fail(MethodExportJobs, err)
	}
	filter, err := req.Filter()
	if err != nil {
		return nil, s.fail(MethodExportJobs, err)
	}
	data, err := s.exporter.ExportJobsXLSX(ctx, filter)
	if err != nil {
		return nil, s.fail(MethodExportJobs, err)
	}
	return s.reply(MethodExportJobs, utils.ExportJobsResponse{
		Filename:    utils.ExportFilename(s.now()),
		ContentType: utils.XLSXContentType,
		Data:        data,
	})
}

func (s *LabelApprovalService) IngestFile(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	if s.ingest == nil {
		return nil, s.fail(MethodIngestFile, errIngestDisabled)
	}
	var req ingestsvc.FileIngestRequest
	if err := decodeStruct(in, &req); err != nil {
		return nil, s.fail(MethodIngestFile, err)
	}
	res, err := s.ingest.IngestFile(ctx, req)
	if err != nil {
		return nil, s.fail(MethodIngestFile, err)
	}
	return s.reply(MethodIngestFile, res)
}

func (s *LabelApprovalService) IngestDirectory(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	if s.ingest == nil {
		return nil, s.fail(MethodIngestDirectory, errIngestDisabled)
	}
	var req ingestsvc.DirectoryIngestRequest
	if err := decodeStruct(in, &req); err != nil {
		return nil, s.fail(MethodIngestDirectory, err)
	}
	res, err := s.ingest.IngestDirectory(ctx, req)
	if err != nil {
		return nil, s.fail(MethodIngestDirectory, err)
	}
	return s.reply(MethodIngestDirectory, res)
}

func (s *LabelApprovalService) reply(method string, v any) (*structpb.Struct, error) {
	out, err := encodeStruct(v)
	if err != nil {
		return nil, s.fail(method, err)
	}
	return out, nil
}

func (s *LabelApprovalService) fail(method string, err error) error {
	st := common.ToStatus(err)
	s.logger.Warn("grpc.request.failed", "method", method, "error", err)
	return st
}
