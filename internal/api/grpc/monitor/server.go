package monitor

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	domain "github.com/oshokin/vent-monitor/internal/domain/alarm"
	"github.com/oshokin/vent-monitor/internal/logger"
	"github.com/oshokin/vent-monitor/internal/packet"
)

// AlarmService abstracts the alarm operations the transport depends on.
type AlarmService interface {
	HighestPriorityAlarm() (domain.Alarm, bool)
	PendingAlarms() []domain.Alarm
	Acknowledge(ctx context.Context, a domain.Alarm) bool
	PendingCount() int
}

// ParameterSource returns the most recently decoded parameter set.
type ParameterSource interface {
	LatestParameters() (*packet.ParameterSet, bool)
}

// AcknowledgedFeed delivers acknowledged mask changes.
type AcknowledgedFeed interface {
	Subscribe() (<-chan uint32, func())
}

// Server implements MonitorServer.
type Server struct {
	// alarms provides the alarm state machine.
	alarms AlarmService
	// params provides the latest parameters; may be nil.
	params ParameterSource
	// feed provides acknowledgment notifications; may be nil.
	feed AcknowledgedFeed
}

var _ MonitorServer = (*Server)(nil)

// NewServer wires the provided collaborators into a gRPC handler.
func NewServer(alarms AlarmService, params ParameterSource, feed AcknowledgedFeed) *Server {
	return &Server{
		alarms: alarms,
		params: params,
		feed:   feed,
	}
}

// Register registers the server on a gRPC server.
func (s *Server) Register(registrar grpc.ServiceRegistrar) {
	RegisterMonitorServer(registrar, s)
}

// GetHighestPriorityAlarm returns the most urgent pending alarm or an empty struct.
func (s *Server) GetHighestPriorityAlarm(context.Context, *emptypb.Empty) (*structpb.Struct, error) {
	a, ok := s.alarms.HighestPriorityAlarm()
	if !ok {
		return new(structpb.Struct), nil
	}

	out, err := AlarmToStruct(a)
	if err != nil {
		return nil, status.Error(codes.Internal, "unable to encode alarm")
	}

	return out, nil
}

// ListPendingAlarms returns every pending alarm in priority order.
func (s *Server) ListPendingAlarms(context.Context, *emptypb.Empty) (*structpb.ListValue, error) {
	pending := s.alarms.PendingAlarms()
	out := &structpb.ListValue{Values: make([]*structpb.Value, 0, len(pending))}

	for _, a := range pending {
		item, err := AlarmToStruct(a)
		if err != nil {
			return nil, status.Error(codes.Internal, "unable to encode alarm")
		}

		out.Values = append(out.Values, structpb.NewStructValue(item))
	}

	return out, nil
}

// AcknowledgeAlarm acknowledges the alarm described by req. Acknowledging an
// alarm that is no longer pending is not an error; the result is false.
func (s *Server) AcknowledgeAlarm(ctx context.Context, req *structpb.Struct) (*wrapperspb.BoolValue, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	a, err := AlarmFromStruct(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	if actor := actorFromStruct(req); actor != nil {
		ctx = logger.WithKV(ctx, "actor", actor.Username+"@"+actor.Hostname)
	}

	return wrapperspb.Bool(s.alarms.Acknowledge(ctx, a)), nil
}

// GetPendingCount returns the number of pending alarms.
func (s *Server) GetPendingCount(context.Context, *emptypb.Empty) (*wrapperspb.UInt32Value, error) {
	return wrapperspb.UInt32(uint32(s.alarms.PendingCount())), nil //nolint:gosec // Queue holds at most 32 alarms.
}

// GetParameters returns the latest decoded parameter set.
func (s *Server) GetParameters(context.Context, *emptypb.Empty) (*structpb.Struct, error) {
	if s.params == nil {
		return nil, status.Error(codes.Unimplemented, "parameters are not available")
	}

	params, ok := s.params.LatestParameters()
	if !ok {
		return nil, status.Error(codes.NotFound, "no status packet received yet")
	}

	out, err := ParametersToStruct(params)
	if err != nil {
		return nil, status.Error(codes.Internal, "unable to encode parameters")
	}

	return out, nil
}

// WatchAcknowledged streams acknowledged mask changes until the client leaves.
func (s *Server) WatchAcknowledged(
	_ *emptypb.Empty,
	stream grpc.ServerStreamingServer[wrapperspb.UInt32Value],
) error {
	if s.feed == nil {
		return status.Error(codes.Unimplemented, "acknowledgment feed is not available")
	}

	masks, cancel := s.feed.Subscribe()
	defer cancel()

	ctx := stream.Context()

	for {
		select {
		case <-ctx.Done():
			return nil
		case mask, ok := <-masks:
			if !ok {
				return nil
			}

			if err := stream.Send(wrapperspb.UInt32(mask)); err != nil {
				return err
			}
		}
	}
}
