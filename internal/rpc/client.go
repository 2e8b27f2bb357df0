package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/xtding233/refine-backend/internal/api/dto"
)

// Client calls refine.v1.Simulator with typed requests.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client { return &Client{cc: cc} }

func (c *Client) Simulate(ctx context.Context, req dto.SimulateRequest, opts ...grpc.CallOption) (dto.SimulateResponse, error) {
	return call[dto.SimulateResponse](ctx, c.cc, "Simulate", req, opts)
}

func (c *Client) RunOnce(ctx context.Context, req dto.SimulateRequest, opts ...grpc.CallOption) (dto.RunResponse, error) {
	return call[dto.RunResponse](ctx, c.cc, "RunOnce", req, opts)
}

func call[T any](ctx context.Context, cc grpc.ClientConnInterface, method string, req any, opts []grpc.CallOption) (T, error) {
	var zero T
	in, err := toStruct(req)
	if err != nil {
		return zero, err
	}
	out := new(structpb.Struct)
	if err := cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, out, opts...); err != nil {
		return zero, err
	}
	return fromStruct[T](out)
}
