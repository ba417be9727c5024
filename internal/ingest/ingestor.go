package ingest

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/joseph-ayodele/label-approvals/internal/common"
	"github.com/joseph-ayodele/label-approvals/internal/entity"
	"github.com/joseph-ayodele/label-approvals/internal/services/jobs"
)

// Ingestor creates jobs from manifests and moves each processed manifest aside.
type Ingestor struct {
	jobs   JobCreator
	logger *slog.Logger
}

func NewIngestor(creator JobCreator, logger *slog.Logger) *Ingestor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ingestor{jobs: creator, logger: logger}
}

// IngestPath processes one manifest. The manifest is renamed to <name>.done on success and
// <name>.failed otherwise. A manifest that no longer exists is reported with fs.ErrNotExist
// and left alone.
func (i *Ingestor) IngestPath(ctx context.Context, path string) (Result, error) {
	start := time.Now()
	abs, err := filepath.Abs(path)
	if err != nil {
		return Result{SourcePath: path, Err: err.Error()}, fmt.Errorf("abs path: %w", err)
	}
	res := Result{SourcePath: abs}

	if !IsManifest(abs) {
		err := common.NewAppError("INVALID_MANIFEST", fmt.Sprintf("%s is not a *%s manifest", abs, ManifestExt), common.ErrInvalidInput)
		res.Err = err.Error()
		return res, err
	}
	if _, err := os.Stat(abs); err != nil {
		res.Err = err.Error()
		return res, err
	}

	in, err := LoadManifest(abs)
	if err != nil {
		return i.fail(res, start, common.NewAppError("INVALID_MANIFEST", "load manifest", fmt.Errorf("%w: %w", common.ErrInvalidInput, err)))
	}

	ctx = jobs.WithActor(ctx, entity.Actor{Entity: "inbox", EntityID: filepath.Base(abs), EntityDomain: "ingest"})
	job, err := i.jobs.Create(ctx, in)
	if err != nil {
		return i.fail(res, start, err)
	}
	res.JobID = job.ID.String()
	res.Status = string(job.Status)

	dst := abs + DoneSuffix
	if err := os.Rename(abs, dst); err != nil {
		// the job exists; a later pass would create a duplicate, so surface it loudly
		i.logger.Error("ingest.manifest.rename_failed", "path", abs, "job_id", res.JobID, "error", err)
		manifestsProcessed.WithLabelValues("rename_failed").Inc()
		res.Err = err.Error()
		return res, fmt.Errorf("rename manifest: %w", err)
	}
	res.MovedTo = dst
	manifestsProcessed.WithLabelValues("ok").Inc()
	i.logger.Info("ingest.manifest.ok",
		"path", abs,
		"job_id", res.JobID,
		"status", res.Status,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return res, nil
}

func (i *Ingestor) fail(res Result, start time.Time, cause error) (Result, error) {
	res.Err = cause.Error()
	manifestsProcessed.WithLabelValues("failed").Inc()

	dst := res.SourcePath + FailedSuffix
	if err := os.Rename(res.SourcePath, dst); err != nil {
		i.logger.Error("ingest.manifest.rename_failed", "path", res.SourcePath, "error", err)
	} else {
		res.MovedTo = dst
	}
	i.logger.Warn("ingest.manifest.failed",
		"path", res.SourcePath,
		"elapsed_ms", time.Since(start).Milliseconds(),
		"error", cause,
	)
	return res, cause
}

// IngestDirectory walks root and ingests every manifest it finds. Per-file failures are
// recorded in the results; only walk and context errors are returned.
func (i *Ingestor) IngestDirectory(ctx context.Context, root string, skipHidden bool) ([]Result, DirStats, error) {
	var (
		results []Result
		stats   DirStats
	)
	root = filepath.Clean(root)

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if walkErr != nil {
			i.logger.Warn("ingest.walk.error", "path", path, "error", walkErr)
			if d != nil && d.IsDir() && path != root {
				return filepath.SkipDir
			}
			return walkErr
		}
		if skipHidden && path != root && IsHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		stats.Scanned++
		if !IsManifest(path) {
			return nil
		}
		stats.Matched++

		r, err := i.IngestPath(ctx, path)
		results = append(results, r)
		if err != nil {
			stats.Failed++
			return nil
		}
		stats.Succeeded++
		return nil
	})
	if err != nil {
		return results, stats, fmt.Errorf("walk: %w", err)
	}

	i.logger.Info("ingest.directory.done",
		"root", root,
		"scanned", stats.Scanned,
		"matched", stats.Matched,
		"succeeded", stats.Succeeded,
		"failed", stats.Failed,
	)
	return results, stats, nil
}
