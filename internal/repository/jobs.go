package repository

import (
	"context"
	stdsql "database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/label-approvals/constants"
	"github.com/joseph-ayodele/label-approvals/internal/common"
	"github.com/joseph-ayodele/label-approvals/internal/entity"
)

const (
	colID                    = "id"
	colBrandName             = "brand_name"
	colProductClass          = "product_class"
	colStatus                = "status"
	colMetadata              = "job_metadata"
	colCreatedAt             = "created_at"
	colUpdatedAt             = "updated_at"
	colCreatedByEntity       = "created_by_entity"
	colCreatedByEntityID     = "created_by_entity_id"
	colCreatedByEntityDomain = "created_by_entity_domain"
	colUpdatedByEntity       = "updated_by_entity"
	colUpdatedByEntityID     = "updated_by_entity_id"
	colUpdatedByEntityDomain = "updated_by_entity_domain"
)

var jobColumns = []string{
	colID, colBrandName, colProductClass, colStatus, colMetadata,
	colCreatedAt, colUpdatedAt,
	colCreatedByEntity, colCreatedByEntityID, colCreatedByEntityDomain,
	colUpdatedByEntity, colUpdatedByEntityID, colUpdatedByEntityDomain,
}

// ListFilter narrows List. A zero Limit means DefaultListLimit.
type ListFilter struct {
	BrandNameLike string
	Status        *constants.JobStatus
	Offset        int
	Limit         int
}

const DefaultListLimit = 100

type JobRepository interface {
	Create(ctx context.Context, job *entity.Job) (*entity.Job, error)
	Get(ctx context.Context, id uuid.UUID) (*entity.Job, error)
	List(ctx context.Context, filter ListFilter) ([]*entity.Job, int, error)
	UpdateMetadata(ctx context.Context, id uuid.UUID, metadata entity.JobMetadata, actor entity.Actor) (*entity.Job, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status constants.JobStatus, metadata entity.JobMetadata, actor entity.Actor) (*entity.Job, error)
}

type jobRepository struct {
	drv    *entsql.Driver
	logger *slog.Logger
	now    func() time.Time
}

func NewJobRepository(db *DB, logger *slog.Logger) JobRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &jobRepository{drv: db.Driver, logger: logger, now: func() time.Time { return time.Now().UTC() }}
}

func (r *jobRepository) builder() *entsql.DialectBuilder {
	return entsql.Dialect(r.drv.Dialect())
}

// Create inserts job. A nil ID is replaced with a fresh one, and timestamps are set
// when zero.
func (r *jobRepository) Create(ctx context.Context, job *entity.Job) (*entity.Job, error) {
	out := job.Clone()
	if out.ID == uuid.Nil {
		out.ID = uuid.New()
	}
	if out.Status == "" {
		out.Status = constants.JobStatusPending
	}
	now := r.now()
	if out.CreatedAt.IsZero() {
		out.CreatedAt = now
	}
	if out.UpdatedAt.IsZero() {
		out.UpdatedAt = out.CreatedAt
	}
	meta, err := json.Marshal(out.Metadata)
	if err != nil {
		return nil, common.NewAppError("ENCODE_ERROR", "encode job metadata", err)
	}

	q, args := r.builder().Insert(jobsTableName).
		Columns(jobColumns...).
		Values(
			out.ID, out.BrandName, out.ProductClass, string(out.Status), meta,
			out.CreatedAt, out.UpdatedAt,
			out.CreatedBy.Entity, out.CreatedBy.EntityID, out.CreatedBy.EntityDomain,
			out.UpdatedBy.Entity, out.UpdatedBy.EntityID, out.UpdatedBy.EntityDomain,
		).
		Query()
	if err := r.drv.Exec(ctx, q, args, nil); err != nil {
		r.logger.Error("label_approval_job create failed", "job_id", out.ID, "error", err)
		return nil, dbError("create job", err)
	}
	r.logger.Info("label_approval_job created", "job_id", out.ID, "brand_name", out.BrandName)
	return out, nil
}

func (r *jobRepository) Get(ctx context.Context, id uuid.UUID) (*entity.Job, error) {
	b := r.builder()
	q, args := b.Select(jobColumns...).
		From(b.Table(jobsTableName)).
		Where(entsql.EQ(colID, id)).
		Limit(1).
		Query()
	jobs, err := r.query(ctx, q, args)
	if err != nil {
		r.logger.Error("label_approval_job get failed", "job_id", id, "error", err)
		return nil, err
	}
	if len(jobs) == 0 {
		return nil, common.NewAppError("NOT_FOUND", fmt.Sprintf("job %s not found", id), common.ErrNotFound)
	}
	return jobs[0], nil
}

// List returns one page of jobs, newest first, and the total matching the filter.
func (r *jobRepository) List(ctx context.Context, filter ListFilter) ([]*entity.Job, int, error) {
	if filter.Limit <= 0 {
		filter.Limit = DefaultListLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	b := r.builder()
	where := func(s *entsql.Selector) *entsql.Selector {
		if filter.BrandNameLike != "" {
			s.Where(entsql.ContainsFold(colBrandName, filter.BrandNameLike))
		}
		if filter.Status != nil {
			s.Where(entsql.EQ(colStatus, string(*filter.Status)))
		}
		return s
	}

	cq, cargs := where(b.Select(entsql.Count("*")).From(b.Table(jobsTableName))).Query()
	var rows entsql.Rows
	if err := r.drv.Query(ctx, cq, cargs, &rows); err != nil {
		return nil, 0, dbError("count jobs", err)
	}
	defer rows.Close()
	total, err := entsql.ScanInt(rows)
	if err != nil {
		return nil, 0, dbError("count jobs", err)
	}

	q, args := where(b.Select(jobColumns...).From(b.Table(jobsTableName))).
		OrderBy(entsql.Desc(colCreatedAt), entsql.Asc(colID)).
		Offset(filter.Offset).
		Limit(filter.Limit).
		Query()
	jobs, err := r.query(ctx, q, args)
	if err != nil {
		r.logger.Error("label_approval_job list failed", "error", err)
		return nil, 0, err
	}
	return jobs, total, nil
}

// UpdateMetadata replaces the metadata document of job id.
func (r *jobRepository) UpdateMetadata(ctx context.Context, id uuid.UUID, metadata entity.JobMetadata, actor entity.Actor) (*entity.Job, error) {
	return r.update(ctx, id, nil, metadata, actor)
}

// UpdateStatus sets the review status and the metadata document together.
func (r *jobRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status constants.JobStatus, metadata entity.JobMetadata, actor entity.Actor) (*entity.Job, error) {
	return r.update(ctx, id, &status, metadata, actor)
}

func (r *jobRepository) update(ctx context.Context, id uuid.UUID, status *constants.JobStatus, metadata entity.JobMetadata, actor entity.Actor) (*entity.Job, error) {
	meta, err := json.Marshal(metadata)
	if err != nil {
		return nil, common.NewAppError("ENCODE_ERROR", "encode job metadata", err)
	}
	u := r.builder().Update(jobsTableName).
		Set(colMetadata, meta).
		Set(colUpdatedAt, r.now()).
		Set(colUpdatedByEntity, actor.Entity).
		Set(colUpdatedByEntityID, actor.EntityID).
		Set(colUpdatedByEntityDomain, actor.EntityDomain)
	if status != nil {
		u.Set(colStatus, string(*status))
	}
	q, args := u.Where(entsql.EQ(colID, id)).Query()

	var res stdsql.Result
	if err := r.drv.Exec(ctx, q, args, &res); err != nil {
		r.logger.Error("label_approval_job update failed", "job_id", id, "error", err)
		return nil, dbError("update job", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, common.NewAppError("NOT_FOUND", fmt.Sprintf("job %s not found", id), common.ErrNotFound)
	}
	r.logger.Info("label_approval_job updated", "job_id", id, "status_changed", status != nil)
	return r.Get(ctx, id)
}

func (r *jobRepository) query(ctx context.Context, q string, args []any) ([]*entity.Job, error) {
	var rows entsql.Rows
	if err := r.drv.Query(ctx, q, args, &rows); err != nil {
		return nil, dbError("query jobs", err)
	}
	defer rows.Close()

	var out []*entity.Job
	for rows.Next() {
		var (
			j      entity.Job
			status string
			meta   []byte
		)
		if err := rows.Scan(
			&j.ID, &j.BrandName, &j.ProductClass, &status, &meta,
			&j.CreatedAt, &j.UpdatedAt,
			&j.CreatedBy.Entity, &j.CreatedBy.EntityID, &j.CreatedBy.EntityDomain,
			&j.UpdatedBy.Entity, &j.UpdatedBy.EntityID, &j.UpdatedBy.EntityDomain,
		); err != nil {
			return nil, dbError("scan job", err)
		}
		j.Status = constants.JobStatus(status)
		if len(meta) > 0 {
			if err := json.Unmarshal(meta, &j.Metadata); err != nil {
				return nil, common.NewAppError("DECODE_ERROR", fmt.Sprintf("decode metadata of job %s", j.ID), err)
			}
		}
		out = append(out, &j)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError("query jobs", err)
	}
	return out, nil
}

func dbError(op string, err error) error {
	if errors.Is(err, stdsql.ErrNoRows) {
		return common.NewAppError("NOT_FOUND", op, common.ErrNotFound)
	}
	return common.NewAppError("DATABASE_ERROR", op, fmt.Errorf("%w: %v", common.ErrDatabase, err))
}
