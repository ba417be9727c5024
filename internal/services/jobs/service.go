package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/label-approvals/constants"
	"github.com/joseph-ayodele/label-approvals/internal/common"
	"github.com/joseph-ayodele/label-approvals/internal/entity"
	"github.com/joseph-ayodele/label-approvals/internal/media"
	"github.com/joseph-ayodele/label-approvals/internal/repository"
	"github.com/joseph-ayodele/label-approvals/internal/units"
)

// InitialReviewComment opens the review trail of every new job.
const InitialReviewComment = "Review initiated"

// Analyzer produces an updated copy of a job, or false when there is nothing to record.
type Analyzer interface {
	Analyze(ctx context.Context, job *entity.Job, override *constants.AnalysisMode) (*entity.Job, bool)
}

// Scheduler runs analysis outside the request. When set, Create hands new jobs to it
// instead of analyzing inline.
type Scheduler interface {
	Schedule(ctx context.Context, jobID uuid.UUID, mode *constants.AnalysisMode) error
}

type ListFilter = repository.ListFilter

// CreateJobInput is what a submitter declares for a label.
type CreateJobInput struct {
	BrandName         string
	ProductClass      string
	AlcoholContentABV *string
	NetContents       *string
	BottlerInfo       *string
	Manufacturer      *string
	Warnings          *string
	LabelImageBase64  *string
	AnalysisMode      *constants.AnalysisMode
	Status            *constants.JobStatus
	ReviewerID        *string
	ReviewerName      *string
}

// Service handles label approval job business logic.
type Service struct {
	repo      repository.JobRepository
	analyzer  Analyzer
	scheduler Scheduler
	logger    *slog.Logger
	now       func() time.Time
}

type Option func(*Service)

// WithScheduler makes Create schedule analysis instead of running it inline.
func WithScheduler(s Scheduler) Option {
	return func(svc *Service) { svc.scheduler = s }
}

// NewService creates a new job service.
func NewService(repo repository.JobRepository, analyzer Analyzer, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		repo:     repo,
		analyzer: analyzer,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// SetScheduler attaches a scheduler after construction, for queues that need the service first.
func (s *Service) SetScheduler(sch Scheduler) { s.scheduler = sch }

// Create validates the declaration, stores the job and analyzes its label.
func (s *Service) Create(ctx context.Context, in CreateJobInput) (*entity.Job, error) {
	if err := validateCreate(in); err != nil {
		s.logger.Info("jobs.create.invalid", "brand_name", in.BrandName, "error", err)
		return nil, err
	}

	in.AnalysisMode = normalizeMode(in.AnalysisMode)
	actor := ActorFromContext(ctx)
	job := &entity.Job{
		BrandName:    strings.TrimSpace(in.BrandName),
		ProductClass: strings.TrimSpace(in.ProductClass),
		Status:       constants.JobStatusPending,
		Metadata:     s.buildMetadata(in),
		CreatedBy:    actor,
		UpdatedBy:    actor,
	}
	if in.Status != nil {
		if st, ok := constants.ParseJobStatus(string(*in.Status)); ok {
			job.Status = st
		}
	}

	created, err := s.repo.Create(ctx, job)
	if err != nil {
		return nil, err
	}
	s.logger.Info("jobs.create.ok", "job_id", created.ID, "brand_name", created.BrandName, "images", len(created.Metadata.LabelImages))

	if s.scheduler != nil {
		if err := s.scheduler.Schedule(ctx, created.ID, nil); err != nil {
			s.logger.Warn("jobs.create.schedule_failed", "job_id", created.ID, "error", err)
		}
		return created, nil
	}
	return s.analyzeAndStore(ctx, created, nil, actor)
}

// Analyze re-runs analysis for a stored job. The override is used for this run only.
// When analysis produces nothing the stored job is returned unchanged.
func (s *Service) Analyze(ctx context.Context, id uuid.UUID, override *constants.AnalysisMode) (*entity.Job, error) {
	if override != nil && *override != "" {
		if _, ok := constants.ParseAnalysisMode(string(*override)); !ok {
			return nil, common.NewAppError("INVALID_MODE", fmt.Sprintf("unknown analysis mode %q", *override), common.ErrInvalidInput)
		}
		override = normalizeMode(override)
	}
	job, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.analyzeAndStore(ctx, job, override, ActorFromContext(ctx))
}

func (s *Service) analyzeAndStore(ctx context.Context, job *entity.Job, override *constants.AnalysisMode, actor entity.Actor) (*entity.Job, error) {
	updated, ok := s.analyzer.Analyze(ctx, job, override)
	if !ok {
		s.logger.Info("jobs.analyze.no_update", "job_id", job.ID)
		return job, nil
	}
	saved, err := s.repo.UpdateMetadata(ctx, job.ID, updated.Metadata, actor)
	if err != nil {
		return nil, err
	}
	s.logger.Info("jobs.analyze.ok", "job_id", job.ID)
	return saved, nil
}

// SetStatus moves a job to status, optionally appending a review comment. Approving or
// rejecting also stamps the first label image.
func (s *Service) SetStatus(ctx context.Context, id uuid.UUID, status constants.JobStatus, comment *string) (*entity.Job, error) {
	parsed, ok := constants.ParseJobStatus(string(status))
	if !ok {
		return nil, common.NewAppError("INVALID_STATUS",
			fmt.Sprintf("status must be one of: %s", strings.Join(constants.JobStatuses, ", ")), common.ErrInvalidInput)
	}
	job, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	meta := job.Metadata.Clone()
	if comment != nil && strings.TrimSpace(*comment) != "" {
		meta.ReviewComments = append(meta.ReviewComments, strings.TrimSpace(*comment))
	}
	if len(meta.LabelImages) > 0 {
		stampDecision(&meta.LabelImages[0], parsed, s.now())
	}

	updated, err := s.repo.UpdateStatus(ctx, id, parsed, meta, ActorFromContext(ctx))
	if err != nil {
		return nil, err
	}
	s.logger.Info("jobs.status.ok", "job_id", id, "from", job.Status, "to", parsed)
	return updated, nil
}

func stampDecision(img *entity.LabelImage, status constants.JobStatus, at time.Time) {
	switch status {
	case constants.JobStatusApproved:
		img.Approved, img.ApprovedDate = entity.Ptr(true), entity.Ptr(at)
		img.Rejected, img.RejectedDate = entity.Ptr(false), nil
	case constants.JobStatusRejected:
		img.Rejected, img.RejectedDate = entity.Ptr(true), entity.Ptr(at)
		img.Approved, img.ApprovedDate = entity.Ptr(false), nil
	default:
		img.Approved, img.ApprovedDate, img.Rejected, img.RejectedDate = nil, nil, nil, nil
	}
}

// AddReviewComment appends a reviewer note.
func (s *Service) AddReviewComment(ctx context.Context, id uuid.UUID, comment string) (*entity.Job, error) {
	v := common.NewValidator().Field("review_comment", comment, common.Required, common.MaxLength(4000))
	if err := v.Error(); err != nil {
		return nil, err
	}
	job, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	meta := job.Metadata.Clone()
	meta.ReviewComments = append(meta.ReviewComments, strings.TrimSpace(comment))

	updated, err := s.repo.UpdateMetadata(ctx, id, meta, ActorFromContext(ctx))
	if err != nil {
		return nil, err
	}
	s.logger.Info("jobs.comment.ok", "job_id", id, "comments", len(meta.ReviewComments))
	return updated, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*entity.Job, error) {
	return s.repo.Get(ctx, id)
}

// List returns a page of jobs and the number matching the filter.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]*entity.Job, int, error) {
	jobs, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	s.logger.Debug("jobs.list.ok", "count", len(jobs), "total", total)
	return jobs, total, nil
}

func (s *Service) buildMetadata(in CreateJobInput) entity.JobMetadata {
	brand := strings.TrimSpace(in.BrandName)
	product := entity.ProductInfo{
		Name:              entity.Ptr(brand),
		ProductClassType:  entity.Ptr(strings.TrimSpace(in.ProductClass)),
		AlcoholContentABV: trimmed(in.AlcoholContentABV),
		NetContents:       FormatNetContents(in.NetContents),
		OtherInfo: &entity.OtherInfo{
			BottlerInfo:  trimmed(in.BottlerInfo),
			Manufacturer: trimmed(in.Manufacturer),
			Warnings:     trimmed(in.Warnings),
		},
	}

	meta := entity.JobMetadata{
		ReviewerID:     in.ReviewerID,
		ReviewerName:   in.ReviewerName,
		ReviewComments: []string{InitialReviewComment},
		AnalysisMode:   in.AnalysisMode,
		ProductInfo: &entity.BrandData{
			BrandName: entity.Ptr(brand),
			Products:  []entity.ProductInfo{product},
		},
		LabelImages: []entity.LabelImage{},
	}
	if in.LabelImageBase64 != nil && strings.TrimSpace(*in.LabelImageBase64) != "" {
		uri := strings.TrimSpace(*in.LabelImageBase64)
		img := entity.LabelImage{Base64: entity.Ptr(uri), UploadDate: entity.Ptr(s.now())}
		if du, err := media.ParseDataURI(uri); err == nil {
			img.ImageContentType = entity.Ptr(du.ContentType)
		}
		meta.LabelImages = append(meta.LabelImages, img)
	}
	return meta
}

// FormatNetContents appends " mL" to a declared amount that carries no unit.
func FormatNetContents(s *string) *string {
	v := trimmed(s)
	if v == nil {
		return nil
	}
	if !strings.ContainsFunc(*v, unicode.IsLetter) {
		return entity.Ptr(*v + " mL")
	}
	return v
}

func validateCreate(in CreateJobInput) error {
	v := common.NewValidator()
	v.Field("brand_name", in.BrandName, common.Required, common.MaxLength(255))
	v.Field("product_class", in.ProductClass, common.Required, common.MaxLength(255))
	if in.Status != nil {
		v.Field("status", strings.ToLower(strings.TrimSpace(string(*in.Status))), common.OneOf(constants.JobStatuses...))
	}
	if in.AnalysisMode != nil && *in.AnalysisMode != "" {
		if _, ok := constants.ParseAnalysisMode(string(*in.AnalysisMode)); !ok {
			v.Add("analysis_mode", *in.AnalysisMode, "must be using_llm or pytesseract")
		}
	}
	if msg := checkAlcoholContent(in.AlcoholContentABV); msg != "" {
		v.Add("alcohol_content_abv", entity.Deref(in.AlcoholContentABV), msg)
	}
	if msg := checkNetContents(in.NetContents); msg != "" {
		v.Add("net_contents", entity.Deref(in.NetContents), msg)
	}
	if in.LabelImageBase64 != nil && strings.TrimSpace(*in.LabelImageBase64) != "" {
		if err := CheckLabelImage(*in.LabelImageBase64); err != nil {
			v.Add("label_image_base64", common.Truncate(*in.LabelImageBase64, 30, "..."), err.Error())
		}
	}
	return v.Error()
}

func checkAlcoholContent(s *string) string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return ""
	}
	raw := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(*s), "%"))
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return "must be a valid number followed by '%'"
	}
	if f < 0 || f > 100 {
		return "must be between 0% and 100%"
	}
	return ""
}

// checkNetContents accepts anything the volume parser understands, plus a bare number
// which is later stored in mL.
func checkNetContents(s *string) string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return ""
	}
	t := strings.TrimSpace(*s)
	if strings.HasPrefix(t, "-") {
		return "must be a positive number"
	}
	if _, err := units.ParseVolume(units.NormalizeNetContents(t)); err != nil {
		return "must be a number with a volume unit such as mL, L or fl oz"
	}
	return ""
}

// CheckLabelImage accepts only jpg, jpeg, png or gif data URIs whose bytes decode to an
// image of the declared format with real dimensions.
func CheckLabelImage(uri string) error {
	uri = strings.TrimSpace(uri)
	du, err := media.ParseDataURI(uri)
	if err != nil {
		return fmt.Errorf("must be a data URI of type: %s", strings.Join(constants.UploadImageFormats, ", "))
	}
	declared := strings.TrimPrefix(du.ContentType, "image/")
	if !strings.HasPrefix(du.ContentType, "image/") || !allowedUpload(declared) {
		return fmt.Errorf("must be one of the following types: %s", strings.Join(constants.UploadImageFormats, ", "))
	}
	p, err := media.DecodeBase64(uri)
	if err != nil {
		return fmt.Errorf("invalid or corrupted image: %v", err)
	}
	info, err := media.Inspect(p.Data)
	if err != nil {
		return fmt.Errorf("invalid or corrupted image: %v", err)
	}
	if declared == "jpg" {
		declared = "jpeg"
	}
	if info.Format != declared {
		return fmt.Errorf("image format %s does not match declared type in data URI", info.Format)
	}
	return nil
}

func allowedUpload(format string) bool {
	for _, f := range constants.UploadImageFormats {
		if f == format {
			return true
		}
	}
	return false
}

// normalizeMode maps aliases such as "ocr" onto the stored mode names.
func normalizeMode(m *constants.AnalysisMode) *constants.AnalysisMode {
	if m == nil || *m == "" {
		return nil
	}
	if parsed, ok := constants.ParseAnalysisMode(string(*m)); ok {
		return &parsed
	}
	return m
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}
