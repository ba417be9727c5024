package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"github.com/joseph-ayodele/label-approvals/internal/common"
	"github.com/joseph-ayodele/label-approvals/internal/httpapi"
	"github.com/joseph-ayodele/label-approvals/internal/repository"
	"github.com/joseph-ayodele/label-approvals/internal/server"
)

const shutdownTimeout = 20 * time.Second

func main() {
	configPath := flag.String("config", "", "path to a labels.yaml config file")
	flag.Parse()

	cfg, err := common.LoadConfigFrom(*configPath)
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(2)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid config", "error", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("labelsd.exit", "error", err)
		os.Exit(1)
	}
	logger.Info("labelsd.stopped")
}

func run(ctx context.Context, cfg *common.Config, logger *slog.Logger) error {
	db, err := repository.Open(ctx, repository.Config{
		DSN:              cfg.Database.DSN,
		MaxConns:         cfg.Database.MaxConns,
		MinConns:         cfg.Database.MinConns,
		MaxConnLifetime:  cfg.Database.MaxConnLifetime,
		MaxConnIdleTime:  cfg.Database.MaxConnIdleTime,
		DialTimeout:      cfg.Database.DialTimeout,
		StatementTimeout: cfg.Database.StatementTimeout,
	}, logger)
	if err != nil {
		return err
	}
	defer db.Close(logger)

	if err := db.HealthCheck(ctx, 5*time.Second, logger); err != nil {
		return err
	}
	if cfg.Database.AutoMigrate {
		if err := repository.Migrate(ctx, db, logger); err != nil {
			return err
		}
	}

	app := wire(cfg, db, logger)

	g, gctx := errgroup.WithContext(ctx)

	grpcSrv := server.NewGRPCServer(app.grpcService, logger)
	if addr := listenAddr(cfg.Server.GRPCAddr); addr != "" {
		lis, err := net.Listen("tcp", addr)
		if err != nil {
			return err
		}
		g.Go(func() error {
			logger.Info("labelsd.grpc.listen", "addr", addr)
			if err := grpcSrv.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
				return err
			}
			return nil
		})
	}

	httpSrv := &http.Server{
		Addr:              listenAddr(cfg.Server.HTTPAddr),
		Handler:           httpapi.SetupRouter(httpapi.Config{AllowedOrigins: cfg.Server.AllowedOrigins, Release: cfg.Server.Release}, app.httpHandler, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}
	if httpSrv.Addr != "" {
		g.Go(func() error {
			logger.Info("labelsd.http.listen", "addr", httpSrv.Addr)
			if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
	}

	if app.watcher != nil {
		g.Go(func() error { return app.watcher.Run(gctx) })
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("labelsd.shutdown")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		grpcSrv.Shutdown(sctx)
		if err := httpSrv.Shutdown(sctx); err != nil {
			logger.Warn("labelsd.http.shutdown_failed", "error", err)
		}
		app.queue.Shutdown(sctx)
		app.extractor.Close()
		return nil
	})

	return g.Wait()
}

// listenAddr accepts "8080" as shorthand for ":8080".
func listenAddr(addr string) string {
	addr = strings.TrimSpace(addr)
	if addr == "" || strings.Contains(addr, ":") {
		return addr
	}
	return ":" + addr
}
