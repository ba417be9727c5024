package extract

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/jellydator/ttlcache/v3"
	"golang.org/x/sync/singleflight"

	"github.com/joseph-ayodele/label-approvals/constants"
	"github.com/joseph-ayodele/label-approvals/internal/common"
)

// ResolveMode picks the analysis mode: a per-call override wins over the mode stored on
// the job, which wins over the system default.
func ResolveMode(override, stored *constants.AnalysisMode, def constants.AnalysisMode) constants.AnalysisMode {
	if override != nil && *override != "" {
		return *override
	}
	if stored != nil && *stored != "" {
		return *stored
	}
	if def == "" {
		return constants.DefaultAnalysisMode
	}
	return def
}

// Service dispatches an image to the extractor registered for a mode. Successful
// results are cached per (mode, image digest) when a TTL is configured, and concurrent
// identical requests share one provider call.
type Service struct {
	extractors map[constants.AnalysisMode]Extractor
	cache      *ttlcache.Cache[string, Result]
	sf         singleflight.Group
	sharedHits atomic.Uint64
	logger     *slog.Logger
}

type Option func(*Service)

// WithCache enables the result cache. ttl <= 0 leaves it disabled.
func WithCache(ttl time.Duration, capacity uint64) Option {
	return func(s *Service) {
		if ttl <= 0 {
			return
		}
		opts := []ttlcache.Option[string, Result]{ttlcache.WithTTL[string, Result](ttl)}
		if capacity > 0 {
			opts = append(opts, ttlcache.WithCapacity[string, Result](capacity))
		}
		s.cache = ttlcache.New(opts...)
	}
}

// WithExtractor registers or replaces the extractor for a mode.
func WithExtractor(mode constants.AnalysisMode, x Extractor) Option {
	return func(s *Service) { s.extractors[mode] = x }
}

func NewService(llmX, ocrX Extractor, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		extractors: map[constants.AnalysisMode]Extractor{},
		logger:     logger,
	}
	if llmX != nil {
		s.extractors[constants.AnalysisModeLLM] = llmX
	}
	if ocrX != nil {
		s.extractors[constants.AnalysisModeOCR] = ocrX
	}
	for _, o := range opts {
		o(s)
	}
	if s.cache != nil {
		go s.cache.Start()
	}
	return s
}

// Close stops the cache janitor.
func (s *Service) Close() {
	if s.cache != nil {
		s.cache.Stop()
		s.cache.DeleteAll()
	}
}

// Extract runs the extractor for mode. Errors from the extractor are returned unchanged.
func (s *Service) Extract(ctx context.Context, img Image, mode constants.AnalysisMode) (Result, error) {
	x, ok := s.extractors[mode]
	if !ok {
		return Result{}, common.NewAppError("UNKNOWN_MODE", fmt.Sprintf("no extractor for analysis mode %q", mode), common.ErrInvalidInput)
	}
	if img.Empty() {
		return Result{}, common.NewAppError("NO_IMAGE", "label image has neither base64 data nor a url", common.ErrInvalidInput)
	}
	if s.cache == nil {
		return x.Extract(ctx, img)
	}

	key := string(mode) + ":" + img.Digest()
	if item := s.cache.Get(key); item != nil {
		s.logger.Debug("extract.cache.hit", "mode", mode)
		return cloneResult(item.Value()), nil
	}

	led := false
	v, err, shared := s.sf.Do(key, func() (any, error) {
		led = true
		if item := s.cache.Get(key); item != nil {
			return item.Value(), nil
		}
		res, err := x.Extract(ctx, img)
		if err != nil {
			return nil, err
		}
		s.cache.Set(key, res, ttlcache.DefaultTTL)
		return res, nil
	})
	if shared && !led {
		s.sharedHits.Add(1)
		s.logger.Debug("extract.singleflight.shared", "mode", mode)
	}
	if err != nil {
		return Result{}, err
	}
	return cloneResult(v.(Result)), nil
}

func cloneResult(r Result) Result {
	r.Data = r.Data.Clone()
	return r
}

// SharedHits counts callers that waited on another caller's in-flight extraction
// instead of calling the extractor themselves.
func (s *Service) SharedHits() uint64 { return s.sharedHits.Load() }
