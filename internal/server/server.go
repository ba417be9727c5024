package server

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"

	"github.com/joseph-ayodele/label-approvals/internal/common"
	"github.com/joseph-ayodele/label-approvals/internal/entity"
	"github.com/joseph-ayodele/label-approvals/internal/services/jobs"
)

var errIngestDisabled = status.Error(codes.FailedPrecondition, "inbox ingestion is not configured")

// HeaderReviewerID carries the reviewer recorded on the audit columns.
const HeaderReviewerID = "x-reviewer-id"

// GRPCServer bundles the gRPC server with its health service.
type GRPCServer struct {
	*grpc.Server
	Health *health.Server
}

// NewGRPCServer registers the label approval service, gRPC health and reflection.
func NewGRPCServer(svc LabelApprovalServer, logger *slog.Logger, opts ...grpc.ServerOption) *GRPCServer {
	if logger == nil {
		logger = slog.Default()
	}
	opts = append(opts, grpc.ChainUnaryInterceptor(UnaryLogging(logger), UnaryActor()))
	s := grpc.NewServer(opts...)

	hs := health.NewServer()
	healthpb.RegisterHealthServer(s, hs)
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	// reflection for grpcurl
	reflection.Register(s)

	RegisterLabelApprovalServer(s, svc)
	return &GRPCServer{Server: s, Health: hs}
}

// Shutdown marks the server NOT_SERVING and drains in-flight calls until ctx is done.
func (g *GRPCServer) Shutdown(ctx context.Context) {
	g.Health.Shutdown()
	done := make(chan struct{})
	go func() {
		g.GracefulStop()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		g.Stop()
	}
}

// UnaryLogging logs every call with a request id, its status code and latency.
func UnaryLogging(logger *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		reqID := uuid.NewString()
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if v := md.Get("x-request-id"); len(v) > 0 && v[0] != "" {
				reqID = v[0]
			}
		}
		ctx = common.WithRequestID(ctx, reqID)
		resp, err := handler(ctx, req)
		code := status.Code(err)
		attrs := []any{
			"method", info.FullMethod,
			"req_id", reqID,
			"code", code.String(),
			"elapsed_ms", time.Since(start).Milliseconds(),
		}
		if err != nil && code != codes.NotFound && code != codes.InvalidArgument {
			logger.Error("grpc.request", append(attrs, "error", err)...)
		} else {
			logger.Info("grpc.request", attrs...)
		}
		return resp, err
	}
}

// UnaryActor records the calling reviewer from metadata on the request context.
func UnaryActor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if ids := md.Get(HeaderReviewerID); len(ids) > 0 && ids[0] != "" {
				ctx = jobs.WithActor(ctx, entity.Actor{Entity: "reviewer", EntityID: ids[0], EntityDomain: "grpc"})
			}
		}
		return handler(ctx, req)
	}
}
