package monitor

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	domain "github.com/oshokin/vent-monitor/internal/domain/alarm"
	"github.com/oshokin/vent-monitor/internal/packet"
	"github.com/oshokin/vent-monitor/internal/service/coordinator"
	"github.com/oshokin/vent-monitor/internal/transport/link"
	"github.com/oshokin/vent-monitor/internal/units"
)

var errTestLink = errors.New("test link failure")

// frameResult is one scripted ReadFrame outcome.
type frameResult struct {
	frame []byte
	err   error
	// before runs ahead of returning the frame, e.g. to acknowledge an alarm.
	before func()
}

// fakeLink replays frame results and records replies.
type fakeLink struct {
	results  []frameResult
	commands []*packet.Command
	writeErr error
}

// ReadFrame returns the next scripted result, then io.EOF.
func (f *fakeLink) ReadFrame(context.Context) ([]byte, error) {
	if len(f.results) == 0 {
		return nil, io.EOF
	}

	r := f.results[0]
	f.results = f.results[1:]

	if r.before != nil {
		r.before()
	}

	return r.frame, r.err
}

// WriteCommand records the command.
func (f *fakeLink) WriteCommand(cmd *packet.Command) error {
	f.commands = append(f.commands, cmd)

	return f.writeErr
}

// Stats returns zero counters.
func (f *fakeLink) Stats() link.Stats {
	return link.Stats{}
}

func statusFrame(seq uint16, alarmBits uint32) []byte {
	return packet.Encode(&packet.Record{
		Sequence:     seq,
		Version:      1,
		Mode:         0x81,
		RespRateSet:  20,
		TidalVolSet:  5000,
		IERatioSet:   2,
		PressureMeas: 1234,
		AlarmBits:    alarmBits,
	})
}

// TestPump_FeedsCoordinatorAndReplies walks frames through to commands.
func TestPump_FeedsCoordinatorAndReplies(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	alarms := coordinator.New()
	mask := domain.ACPowerLoss.Mask() | domain.LowBattery.Mask()

	fl := &fakeLink{}
	fl.results = []frameResult{
		{frame: statusFrame(1, mask)},
		{err: link.ErrChecksumMismatch},
		{
			frame: statusFrame(2, mask),
			before: func() {
				top, ok := alarms.HighestPriorityAlarm()
				require.True(t, ok)
				require.True(t, alarms.Acknowledge(ctx, top))
			},
		},
	}

	p := newPump(fl, alarms, units.Default())

	_, ok := p.LatestParameters()
	require.False(t, ok)

	require.NoError(t, p.run(ctx))

	require.Len(t, fl.commands, 2)
	require.Equal(t, uint16(1), fl.commands[0].Sequence)
	require.Zero(t, fl.commands[0].AlarmBits)
	require.Equal(t, uint32(20), fl.commands[0].RespRateSet)
	require.Equal(t, uint32(5000), fl.commands[0].TidalVolSet)
	require.Equal(t, uint8(0x81), fl.commands[0].Mode)

	require.Equal(t, uint16(2), fl.commands[1].Sequence)
	require.Equal(t, domain.ACPowerLoss.Mask(), fl.commands[1].AlarmBits)

	params, ok := p.LatestParameters()
	require.True(t, ok)
	require.Equal(t, uint16(2), params.SeqNum)
	require.InDelta(t, 12.34, params.Pressure, 1e-9)

	require.Equal(t, 1, alarms.PendingCount())

	top, _ := alarms.HighestPriorityAlarm()
	require.Equal(t, domain.LowBattery, top.ID)
}

// TestPump_StopsOnLinkFailure returns transport errors to the caller.
func TestPump_StopsOnLinkFailure(t *testing.T) {
	t.Parallel()

	fl := &fakeLink{results: []frameResult{{err: errTestLink}}}
	p := newPump(fl, coordinator.New(), units.Default())

	require.ErrorIs(t, p.run(context.Background()), errTestLink)
}

// TestPump_ReplyFailureIsNotFatal keeps processing when the ECU cannot be answered.
func TestPump_ReplyFailureIsNotFatal(t *testing.T) {
	t.Parallel()

	alarms := coordinator.New()
	fl := &fakeLink{
		results:  []frameResult{{frame: statusFrame(1, domain.EStopPressed.Mask())}, {frame: statusFrame(2, 0)}},
		writeErr: errTestLink,
	}

	require.NoError(t, newPump(fl, alarms, units.Default()).run(context.Background()))
	require.Len(t, fl.commands, 2)
	require.Zero(t, alarms.PendingCount())
}
