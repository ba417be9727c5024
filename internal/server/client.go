package server

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"

	ingestsvc "github.com/joseph-ayodele/label-approvals/internal/services/ingest"
	"github.com/joseph-ayodele/label-approvals/internal/utils"
)

// Client is a typed client for LabelApprovalService.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) call(ctx context.Context, method string, req, resp any, opts ...grpc.CallOption) error {
	in, err := encodeStruct(req)
	if err != nil {
		return err
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, FullMethod(method), in, out, opts...); err != nil {
		return err
	}
	return decodeInto(out, resp, false)
}

func (c *Client) CreateJob(ctx context.Context, req utils.CreateJobRequest, opts ...grpc.CallOption) (*utils.JobDTO, error) {
	var resp utils.JobResponse
	if err := c.call(ctx, MethodCreateJob, req, &resp, opts...); err != nil {
		return nil, err
	}
	return resp.Job, nil
}

func (c *Client) GetJob(ctx context.Context, id string, opts ...grpc.CallOption) (*utils.JobDTO, error) {
	var resp utils.JobResponse
	if err := c.call(ctx, MethodGetJob, utils.JobRequest{ID: id}, &resp, opts...); err != nil {
		return nil, err
	}
	return resp.Job, nil
}

func (c *Client) ListJobs(ctx context.Context, req utils.ListJobsRequest, opts ...grpc.CallOption) (*utils.ListJobsResponse, error) {
	var resp utils.ListJobsResponse
	if err := c.call(ctx, MethodListJobs, req, &resp, opts...); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) AnalyzeJob(ctx context.Context, req utils.AnalyzeJobRequest, opts ...grpc.CallOption) (*utils.JobDTO, error) {
	var resp utils.JobResponse
	if err := c.call(ctx, MethodAnalyzeJob, req, &resp, opts...); err != nil {
		return nil, err
	}
	return resp.Job, nil
}

func (c *Client) SetJobStatus(ctx context.Context, req utils.SetJobStatusRequest, opts ...grpc.CallOption) (*utils.JobDTO, error) {
	var resp utils.JobResponse
	if err := c.call(ctx, MethodSetJobStatus, req, &resp, opts...); err != nil {
		return nil, err
	}
	return resp.Job, nil
}

func (c *Client) AddReviewComment(ctx context.Context, req utils.AddReviewCommentRequest, opts ...grpc.CallOption) (*utils.JobDTO, error) {
	var resp utils.JobResponse
	if err := c.call(ctx, MethodAddReviewComment, req, &resp, opts...); err != nil {
		return nil, err
	}
	return resp.Job, nil
}

func (c *Client) ExportJobs(ctx context.Context, req utils.ListJobsRequest, opts ...grpc.CallOption) (*utils.ExportJobsResponse, error) {
	var resp utils.ExportJobsResponse
	if err := c.call(ctx, MethodExportJobs, req, &resp, opts...); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) IngestDirectory(ctx context.Context, req ingestsvc.DirectoryIngestRequest, opts ...grpc.CallOption) (*ingestsvc.DirectoryIngestResult, error) {
	var resp ingestsvc.DirectoryIngestResult
	if err := c.call(ctx, MethodIngestDirectory, req, &resp, opts...); err != nil {
		return nil, err
	}
	return &resp, nil
}
