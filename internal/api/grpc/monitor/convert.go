package monitor

import (
	"errors"
	"fmt"
	"time"

	"google.golang.org/protobuf/types/known/structpb"

	domain "github.com/oshokin/vent-monitor/internal/domain/alarm"
	"github.com/oshokin/vent-monitor/internal/packet"
)

// Struct field names of the alarm message.
const (
	FieldIdentifier = "identifier"
	FieldBit        = "bit"
	FieldPriority   = "priority"
	FieldMessage    = "message"
	FieldRaisedAt   = "raised_at"
	FieldActor      = "actor"
	FieldHostname   = "hostname"
	FieldUsername   = "username"
)

var (
	errUnknownIdentifier = errors.New("unknown alarm identifier")
	errMissingRaisedAt   = errors.New("raised_at is required")
)

// AlarmToStruct converts a domain alarm into its wire form.
func AlarmToStruct(a domain.Alarm) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		FieldIdentifier: a.ID.String(),
		FieldBit:        int(a.ID.Bit()),
		FieldPriority:   a.Priority(),
		FieldMessage:    a.Message(),
		FieldRaisedAt:   a.RaisedAt.UTC().Format(time.RFC3339Nano),
	})
}

// AlarmFromStruct parses the wire form back into a domain alarm.
func AlarmFromStruct(s *structpb.Struct) (domain.Alarm, error) {
	fields := s.GetFields()

	name := fields[FieldIdentifier].GetStringValue()

	id, ok := domain.ParseIdentifier(name)
	if !ok {
		return domain.Alarm{}, fmt.Errorf("%w: %q", errUnknownIdentifier, name)
	}

	raw := fields[FieldRaisedAt].GetStringValue()
	if raw == "" {
		return domain.Alarm{}, errMissingRaisedAt
	}

	raisedAt, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return domain.Alarm{}, fmt.Errorf("parse raised_at: %w", err)
	}

	return domain.New(id, raisedAt), nil
}

// WithActor returns a copy of an alarm struct carrying who acknowledges it.
func WithActor(s *structpb.Struct, actor *domain.Actor) (*structpb.Struct, error) {
	out := &structpb.Struct{Fields: make(map[string]*structpb.Value, len(s.GetFields())+1)}
	for k, v := range s.GetFields() {
		out.Fields[k] = v
	}

	if actor == nil {
		return out, nil
	}

	value, err := structpb.NewValue(map[string]any{
		FieldHostname: actor.Hostname,
		FieldUsername: actor.Username,
	})
	if err != nil {
		return nil, fmt.Errorf("encode actor: %w", err)
	}

	out.Fields[FieldActor] = value

	return out, nil
}

// actorFromStruct extracts the acknowledging actor, if present.
func actorFromStruct(s *structpb.Struct) *domain.Actor {
	v, ok := s.GetFields()[FieldActor]
	if !ok {
		return nil
	}

	fields := v.GetStructValue().GetFields()

	return &domain.Actor{
		Hostname: fields[FieldHostname].GetStringValue(),
		Username: fields[FieldUsername].GetStringValue(),
	}
}

// ParametersToStruct converts a parameter set into its wire form.
func ParametersToStruct(p *packet.ParameterSet) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		"seq_num":        uint32(p.SeqNum),
		"packet_version": uint32(p.PacketVersion),
		"mode":           uint32(p.Mode),
		"run_state":      uint32(p.RunState),
		"running":        p.Running(),
		"control_state":  uint32(p.ControlState),
		"resp_rate_meas": p.RespRateMeas,
		"resp_rate_set":  p.RespRateSet,
		"ie_ratio_meas":  p.IERatioMeas,
		"ie_ratio_set":   p.IERatioSet,
		"tv_meas_ml":     p.TidalVolMeas,
		"tv_set_ml":      p.TidalVolSet,
		"tv_insp_ml":     p.VolumeIn,
		"tv_exp_ml":      p.VolumeOut,
		"tv_rate_ml":     p.VolumeRate,
		"peep_cmh2o":     p.PEEP,
		"ppeak_cmh2o":    p.PeakPressure,
		"pplat_cmh2o":    p.PlateauPress,
		"pressure_cmh2o": p.Pressure,
		"flow_slm":       p.Flow,
		"battery_level":  uint32(p.BatteryLevel),
		"alarm_bits":     p.AlarmBits,
	})
}
