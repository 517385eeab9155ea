package monitor

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "ventmonitor.v1.MonitorService"

// Full method names.
const (
	GetHighestPriorityAlarmMethod = "/" + ServiceName + "/GetHighestPriorityAlarm"
	ListPendingAlarmsMethod       = "/" + ServiceName + "/ListPendingAlarms"
	AcknowledgeAlarmMethod        = "/" + ServiceName + "/AcknowledgeAlarm"
	GetPendingCountMethod         = "/" + ServiceName + "/GetPendingCount"
	GetParametersMethod           = "/" + ServiceName + "/GetParameters"
	WatchAcknowledgedMethod       = "/" + ServiceName + "/WatchAcknowledged"
)

// MonitorServer is the server API of the monitor service.
type MonitorServer interface {
	GetHighestPriorityAlarm(ctx context.Context, req *emptypb.Empty) (*structpb.Struct, error)
	ListPendingAlarms(ctx context.Context, req *emptypb.Empty) (*structpb.ListValue, error)
	AcknowledgeAlarm(ctx context.Context, req *structpb.Struct) (*wrapperspb.BoolValue, error)
	GetPendingCount(ctx context.Context, req *emptypb.Empty) (*wrapperspb.UInt32Value, error)
	GetParameters(ctx context.Context, req *emptypb.Empty) (*structpb.Struct, error)
	WatchAcknowledged(req *emptypb.Empty, stream grpc.ServerStreamingServer[wrapperspb.UInt32Value]) error
}

// ServiceDesc describes the monitor service for grpc.Server.RegisterService.
//
//nolint:gochecknoglobals // Service descriptors are package-level by convention.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*MonitorServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "GetHighestPriorityAlarm",
			Handler: unaryHandler(GetHighestPriorityAlarmMethod,
				func(s MonitorServer, ctx context.Context, in *emptypb.Empty) (*structpb.Struct, error) {
					return s.GetHighestPriorityAlarm(ctx, in)
				}),
		},
		{
			MethodName: "ListPendingAlarms",
			Handler: unaryHandler(ListPendingAlarmsMethod,
				func(s MonitorServer, ctx context.Context, in *emptypb.Empty) (*structpb.ListValue, error) {
					return s.ListPendingAlarms(ctx, in)
				}),
		},
		{
			MethodName: "AcknowledgeAlarm",
			Handler: unaryHandler(AcknowledgeAlarmMethod,
				func(s MonitorServer, ctx context.Context, in *structpb.Struct) (*wrapperspb.BoolValue, error) {
					return s.AcknowledgeAlarm(ctx, in)
				}),
		},
		{
			MethodName: "GetPendingCount",
			Handler: unaryHandler(GetPendingCountMethod,
				func(s MonitorServer, ctx context.Context, in *emptypb.Empty) (*wrapperspb.UInt32Value, error) {
					return s.GetPendingCount(ctx, in)
				}),
		},
		{
			MethodName: "GetParameters",
			Handler: unaryHandler(GetParametersMethod,
				func(s MonitorServer, ctx context.Context, in *emptypb.Empty) (*structpb.Struct, error) {
					return s.GetParameters(ctx, in)
				}),
		},
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "WatchAcknowledged",
			Handler:       watchAcknowledgedHandler,
			ServerStreams: true,
		},
	},
	Metadata: "ventmonitor/v1/monitor.proto",
}

// RegisterMonitorServer registers srv on s.
func RegisterMonitorServer(s grpc.ServiceRegistrar, srv MonitorServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// unaryHandler adapts a typed method to grpc.MethodHandler.
func unaryHandler[Req, Res any](
	fullMethod string,
	call func(MonitorServer, context.Context, *Req) (*Res, error),
) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}

		if interceptor == nil {
			return call(srv.(MonitorServer), ctx, in)
		}

		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}

		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(MonitorServer), ctx, req.(*Req))
		}

		return interceptor(ctx, in, info, handler)
	}
}

func watchAcknowledgedHandler(srv any, stream grpc.ServerStream) error {
	in := new(emptypb.Empty)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}

	return srv.(MonitorServer).WatchAcknowledged(
		in,
		&grpc.GenericServerStream[emptypb.Empty, wrapperspb.UInt32Value]{ServerStream: stream},
	)
}

// MonitorClient calls the monitor service over a client connection.
type MonitorClient struct {
	cc grpc.ClientConnInterface
}

// NewMonitorClient returns a client bound to cc.
func NewMonitorClient(cc grpc.ClientConnInterface) *MonitorClient {
	return &MonitorClient{cc: cc}
}

// GetHighestPriorityAlarm returns the most urgent pending alarm, or an empty struct.
func (c *MonitorClient) GetHighestPriorityAlarm(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, GetHighestPriorityAlarmMethod, new(emptypb.Empty), out, opts...); err != nil {
		return nil, err
	}

	return out, nil
}

// ListPendingAlarms returns every pending alarm in priority order.
func (c *MonitorClient) ListPendingAlarms(ctx context.Context, opts ...grpc.CallOption) (*structpb.ListValue, error) {
	out := new(structpb.ListValue)
	if err := c.cc.Invoke(ctx, ListPendingAlarmsMethod, new(emptypb.Empty), out, opts...); err != nil {
		return nil, err
	}

	return out, nil
}

// AcknowledgeAlarm acknowledges the alarm described by in.
func (c *MonitorClient) AcknowledgeAlarm(
	ctx context.Context,
	in *structpb.Struct,
	opts ...grpc.CallOption,
) (*wrapperspb.BoolValue, error) {
	out := new(wrapperspb.BoolValue)
	if err := c.cc.Invoke(ctx, AcknowledgeAlarmMethod, in, out, opts...); err != nil {
		return nil, err
	}

	return out, nil
}

// GetPendingCount returns the number of pending alarms.
func (c *MonitorClient) GetPendingCount(ctx context.Context, opts ...grpc.CallOption) (*wrapperspb.UInt32Value, error) {
	out := new(wrapperspb.UInt32Value)
	if err := c.cc.Invoke(ctx, GetPendingCountMethod, new(emptypb.Empty), out, opts...); err != nil {
		return nil, err
	}

	return out, nil
}

// GetParameters returns the latest decoded parameter set.
func (c *MonitorClient) GetParameters(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, GetParametersMethod, new(emptypb.Empty), out, opts...); err != nil {
		return nil, err
	}

	return out, nil
}

// WatchAcknowledged streams the acknowledged mask every time it changes.
func (c *MonitorClient) WatchAcknowledged(
	ctx context.Context,
	opts ...grpc.CallOption,
) (grpc.ServerStreamingClient[wrapperspb.UInt32Value], error) {
	stream, err := c.cc.NewStream(ctx, &ServiceDesc.Streams[0], WatchAcknowledgedMethod, opts...)
	if err != nil {
		return nil, err
	}

	x := &grpc.GenericClientStream[emptypb.Empty, wrapperspb.UInt32Value]{ClientStream: stream}
	if err := x.ClientStream.SendMsg(new(emptypb.Empty)); err != nil {
		return nil, err
	}

	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}

	return x, nil
}
