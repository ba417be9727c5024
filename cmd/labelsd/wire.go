package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/joseph-ayodele/label-approvals/constants"
	"github.com/joseph-ayodele/label-approvals/internal/analysis"
	"github.com/joseph-ayodele/label-approvals/internal/async"
	"github.com/joseph-ayodele/label-approvals/internal/common"
	"github.com/joseph-ayodele/label-approvals/internal/compliance"
	"github.com/joseph-ayodele/label-approvals/internal/export"
	"github.com/joseph-ayodele/label-approvals/internal/extract"
	"github.com/joseph-ayodele/label-approvals/internal/httpapi"
	"github.com/joseph-ayodele/label-approvals/internal/ingest"
	"github.com/joseph-ayodele/label-approvals/internal/llm/openai"
	"github.com/joseph-ayodele/label-approvals/internal/ocr"
	"github.com/joseph-ayodele/label-approvals/internal/repository"
	"github.com/joseph-ayodele/label-approvals/internal/server"
	ingestsvc "github.com/joseph-ayodele/label-approvals/internal/services/ingest"
	"github.com/joseph-ayodele/label-approvals/internal/services/jobs"
)

const extractCacheCapacity = 1024

type application struct {
	grpcService server.LabelApprovalServer
	httpHandler *httpapi.Handler
	queue       *async.AnalysisQueue
	extractor   *extract.Service
	watcher     *ingest.Watcher
}

func wire(cfg *common.Config, db *repository.DB, logger *slog.Logger) *application {
	engine := ocr.NewEngine(ocr.Config{
		Tesseract:   cfg.OCR.Tesseract,
		Lang:        cfg.OCR.Lang,
		TessdataDir: cfg.OCR.TessdataDir,
	}, logger)

	matchers := compliance.Matchers{constants.AnalysisModeOCR: compliance.NewOCRMatcher(logger)}
	extractOpts := []extract.Option{extract.WithCache(cfg.Analysis.CacheTTL, extractCacheCapacity)}
	if cfg.LLM.APIKey != "" {
		client := openai.NewClient(openai.Config{
			APIKey:            cfg.LLM.APIKey,
			BaseURL:           cfg.LLM.BaseURL,
			Model:             cfg.LLM.Model,
			Temperature:       cfg.LLM.Temperature,
			MaxTokens:         cfg.LLM.MaxTokens,
			Timeout:           cfg.LLM.Timeout,
			RequestsPerSecond: cfg.LLM.RequestsPerSecond,
		}, logger)
		extractOpts = append(extractOpts,
			extract.WithExtractor(constants.AnalysisModeLLM, extract.NewVisionExtractor(client, logger)))
		matchers[constants.AnalysisModeLLM] = compliance.NewLLMMatcher(client, logger)
	} else {
		logger.Warn("labelsd.llm.disabled", "reason", "OPENAI_API_KEY not set")
	}

	extractor := extract.NewService(nil, extract.NewOCRExtractor(engine, logger), logger, extractOpts...)
	registerExtractMetrics(extractor)
	analyzer := analysis.NewAnalyzer(logger, extractor, matchers, cfg.DefaultMode())

	jobSvc := jobs.NewService(repository.NewJobRepository(db, logger), analyzer, logger)
	queue := async.NewAnalysisQueue(jobSvc, logger,
		async.WithWorkers(cfg.Analysis.Workers),
		async.WithQueueSize(cfg.Analysis.QueueSize),
		async.WithProcessTimeout(cfg.Analysis.ProcessTimeout),
	)
	if cfg.Analysis.Async {
		jobSvc.SetScheduler(queue)
	}
	exporter := export.NewService(jobSvc, logger)

	app := &application{queue: queue, extractor: extractor}
	var (
		grpcIngest server.IngestService
		httpIngest httpapi.IngestService
	)
	if cfg.Ingest.Dir != "" {
		ingestor := ingest.NewIngestor(jobSvc, logger)
		svc := ingestsvc.NewService(ingestor, logger)
		grpcIngest, httpIngest = svc, svc
		app.watcher = ingest.NewWatcher(ingest.WatchConfig{
			Root:        cfg.Ingest.Dir,
			InitialScan: cfg.Ingest.InitialScan,
			Debounce:    cfg.Ingest.Debounce,
		}, ingestor, logger)
	}

	health := func(ctx context.Context) error {
		return db.HealthCheck(ctx, 2*time.Second, logger)
	}

	app.grpcService = server.NewLabelApprovalService(jobSvc, exporter, grpcIngest, logger)
	app.httpHandler = httpapi.NewHandler(jobSvc, exporter, httpIngest, health, logger)
	return app
}

func registerExtractMetrics(x *extract.Service) {
	prometheus.MustRegister(prometheus.NewCounterFunc(
		prometheus.CounterOpts{
			Namespace: "label_approvals",
			Subsystem: "extract",
			Name:      "singleflight_shared_total",
			Help:      "Extractions served by waiting on an identical in-flight request.",
		},
		func() float64 { return float64(x.SharedHits()) },
	))
}
