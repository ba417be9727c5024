package ingest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/joseph-ayodele/label-approvals/internal/common"
	"github.com/joseph-ayodele/label-approvals/internal/ingest"
)

// Ingestor is the behavior the service depends on.
type Ingestor interface {
	IngestPath(ctx context.Context, path string) (ingest.Result, error)
	IngestDirectory(ctx context.Context, root string, skipHidden bool) ([]ingest.Result, ingest.DirStats, error)
}

// Service validates inbox requests coming from the transports.
type Service struct {
	ingestor Ingestor
	logger   *slog.Logger
}

// NewService creates a new ingest service.
func NewService(ing Ingestor, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{ingestor: ing, logger: logger}
}

// FileIngestRequest names a single manifest.
type FileIngestRequest struct {
	Path string `json:"path"`
}

// DirectoryIngestRequest names a directory of manifests. SkipHidden defaults to true.
type DirectoryIngestRequest struct {
	RootPath   string `json:"root_path"`
	SkipHidden *bool  `json:"skip_hidden"`
}

// DirectoryIngestResult represents directory ingestion results.
type DirectoryIngestResult struct {
	Statistics ingest.DirStats `json:"statistics"`
	Results    []ingest.Result `json:"results"`
}

// IngestFile ingests a single manifest.
func (s *Service) IngestFile(ctx context.Context, req FileIngestRequest) (ingest.Result, error) {
	path := strings.TrimSpace(req.Path)
	if err := common.NewValidator().Field("path", path, common.Required).Error(); err != nil {
		s.logger.Error("ingest.file.invalid", "error", err)
		return ingest.Result{}, err
	}

	s.logger.Info("ingest.file.start", "path", path)
	r, err := s.ingestor.IngestPath(ctx, path)
	if err != nil {
		return r, ingestError("ingest "+path, err)
	}
	return r, nil
}

// IngestDirectory ingests every manifest under a directory.
func (s *Service) IngestDirectory(ctx context.Context, req DirectoryIngestRequest) (*DirectoryIngestResult, error) {
	root := strings.TrimSpace(req.RootPath)
	if err := common.NewValidator().Field("root_path", root, common.Required).Error(); err != nil {
		s.logger.Error("ingest.directory.invalid", "error", err)
		return nil, err
	}
	skipHidden := true
	if req.SkipHidden != nil {
		skipHidden = *req.SkipHidden
	}

	s.logger.Info("ingest.directory.start", "root", root, "skip_hidden", skipHidden)
	results, stats, err := s.ingestor.IngestDirectory(ctx, root, skipHidden)
	if err != nil {
		return nil, ingestError("ingest directory "+root, err)
	}
	return &DirectoryIngestResult{Statistics: stats, Results: results}, nil
}

// ingestError keeps application errors as they are and treats a missing path as bad input.
func ingestError(msg string, err error) error {
	var appErr *common.AppError
	if errors.As(err, &appErr) {
		return err
	}
	if errors.Is(err, fs.ErrNotExist) {
		err = fmt.Errorf("%w: %w", common.ErrInvalidInput, err)
	}
	return common.NewAppError("INGEST_FAILED", msg, err)
}
