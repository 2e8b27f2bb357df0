// Package rpc exposes the simulator over gRPC. Messages are
// google.protobuf.Struct values carrying the same JSON documents as the HTTP
// API, so no generated code is needed.
package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/xtding233/refine-backend/internal/api/dto"
	"github.com/xtding233/refine-backend/internal/converter"
	"github.com/xtding233/refine-backend/internal/service"
)

const ServiceName = "refine.v1.Simulator"

// SimulatorServer is the server side of refine.v1.Simulator.
type SimulatorServer interface {
	Simulate(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RunOnce(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*SimulatorServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Simulate", Handler: unary(SimulatorServer.Simulate, "Simulate")},
		{MethodName: "RunOnce", Handler: unary(SimulatorServer.RunOnce, "RunOnce")},
	},
	Metadata: "refine/v1/simulator.proto",
}

type methodFunc func(SimulatorServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unary(call methodFunc, name string) grpc.MethodHandler {
	full := "/" + ServiceName + "/" + name
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(SimulatorServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: full}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(SimulatorServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// Register attaches s to a grpc server.
func Register(gs grpc.ServiceRegistrar, s SimulatorServer) {
	gs.RegisterService(&serviceDesc, s)
}

// Server implements SimulatorServer on top of a service.Simulator.
type Server struct {
	sim *service.Simulator
	log *slog.Logger
}

func NewServer(sim *service.Simulator, log *slog.Logger) *Server {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Server{sim: sim, log: log.With("component", "grpc")}
}

func (s *Server) Simulate(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req, err := fromStruct[dto.SimulateRequest](in)
	if err != nil {
		return nil, err
	}
	si, err := converter.ToInput(req)
	if err != nil {
		return nil, s.status(ctx, err)
	}
	out, err := s.sim.Simulate(ctx, si)
	if err != nil {
		return nil, s.status(ctx, err)
	}
	return toStruct(converter.ToSimulateResponse(out, req.IncludeRuns))
}

func (s *Server) RunOnce(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req, err := fromStruct[dto.SimulateRequest](in)
	if err != nil {
		return nil, err
	}
	si, err := converter.ToInput(req)
	if err != nil {
		return nil, s.status(ctx, err)
	}
	out, err := s.sim.RunOnce(ctx, si)
	if err != nil {
		return nil, s.status(ctx, err)
	}
	return toStruct(converter.ToRunResponse(out))
}

func (s *Server) status(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	}
	s.log.ErrorContext(ctx, "rpc failed", "error", err)
	return status.Error(codes.Internal, err.Error())
}

// toStruct round-trips v through JSON. Numbers become float64 on the way,
// which is exact for every value below 2^53; seeds travel as strings.
func toStruct(v any) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	st, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return st, nil
}

func fromStruct[T any](st *structpb.Struct) (T, error) {
	var v T
	if st == nil {
		return v, status.Error(codes.InvalidArgument, "empty request")
	}
	b, err := json.Marshal(st.AsMap())
	if err != nil {
		return v, status.Error(codes.InvalidArgument, err.Error())
	}
	if err := json.Unmarshal(b, &v); err != nil {
		return v, status.Error(codes.InvalidArgument, fmt.Sprintf("decode request: %v", err))
	}
	return v, nil
}
