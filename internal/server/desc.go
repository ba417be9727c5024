package server

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "labels.v1.LabelApprovalService"

// Method names.
const (
	MethodCreateJob        = "CreateJob"
	MethodGetJob           = "GetJob"
	MethodListJobs         = "ListJobs"
	MethodAnalyzeJob       = "AnalyzeJob"
	MethodSetJobStatus     = "SetJobStatus"
	MethodAddReviewComment = "AddReviewComment"
	MethodExportJobs       = "ExportJobs"
	MethodIngestFile       = "IngestFile"
	MethodIngestDirectory  = "IngestDirectory"
)

// LabelApprovalServer is the server API. Every message is a google.protobuf.Struct whose
// fields follow the JSON shapes in internal/utils.
type LabelApprovalServer interface {
	CreateJob(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetJob(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListJobs(context.Context, *structpb.Struct) (*structpb.Struct, error)
	AnalyzeJob(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SetJobStatus(context.Context, *structpb.Struct) (*structpb.Struct, error)
	AddReviewComment(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ExportJobs(context.Context, *structpb.Struct) (*structpb.Struct, error)
	IngestFile(context.Context, *structpb.Struct) (*structpb.Struct, error)
	IngestDirectory(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryFunc func(LabelApprovalServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryMethod(name string, call unaryFunc) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(LabelApprovalServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(name)}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(LabelApprovalServer), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// FullMethod returns the "/service/method" path for name.
func FullMethod(name string) string {
	return "/" + ServiceName + "/" + name
}

// LabelApprovalServiceDesc describes the service for grpc.Server.RegisterService.
var LabelApprovalServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*LabelApprovalServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryMethod(MethodCreateJob, LabelApprovalServer.CreateJob),
		unaryMethod(MethodGetJob, LabelApprovalServer.GetJob),
		unaryMethod(MethodListJobs, LabelApprovalServer.ListJobs),
		unaryMethod(MethodAnalyzeJob, LabelApprovalServer.AnalyzeJob),
		unaryMethod(MethodSetJobStatus, LabelApprovalServer.SetJobStatus),
		unaryMethod(MethodAddReviewComment, LabelApprovalServer.AddReviewComment),
		unaryMethod(MethodExportJobs, LabelApprovalServer.ExportJobs),
		unaryMethod(MethodIngestFile, LabelApprovalServer.IngestFile),
		unaryMethod(MethodIngestDirectory, LabelApprovalServer.IngestDirectory),
	},
	Streams: []grpc.StreamDesc{},
}

func RegisterLabelApprovalServer(s grpc.ServiceRegistrar, srv LabelApprovalServer) {
	s.RegisterService(&LabelApprovalServiceDesc, srv)
}
