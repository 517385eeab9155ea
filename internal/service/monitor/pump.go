package monitor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/oshokin/vent-monitor/internal/logger"
	"github.com/oshokin/vent-monitor/internal/packet"
	"github.com/oshokin/vent-monitor/internal/service/coordinator"
	"github.com/oshokin/vent-monitor/internal/transport/link"
	"github.com/oshokin/vent-monitor/internal/units"
)

// frameLink is the part of link.Link the pump uses.
type frameLink interface {
	ReadFrame(ctx context.Context) ([]byte, error)
	WriteCommand(cmd *packet.Command) error
	Stats() link.Stats
}

// pump moves packets from the ECU link into the monitor state.
type pump struct {
	// link delivers validated status frames.
	link frameLink
	// alarms receives every alarm status word.
	alarms *coordinator.Coordinator
	// conv converts raw counts to engineering units.
	conv *units.Converter

	// mu guards latest.
	mu     sync.RWMutex
	latest *packet.ParameterSet
}

func newPump(l frameLink, alarms *coordinator.Coordinator, conv *units.Converter) *pump {
	return &pump{
		link:   l,
		alarms: alarms,
		conv:   conv,
	}
}

// run processes frames until ctx is canceled or the stream ends.
// A clean end of a replay stream returns nil.
func (p *pump) run(ctx context.Context) error {
	for {
		frame, err := p.link.ReadFrame(ctx)

		switch {
		case err == nil:
		case errors.Is(err, link.ErrChecksumMismatch):
			stats := p.link.Stats()
			logger.WarnKV(ctx, "Dropping status packet with bad checksum",
				"bad_checksum", stats.BadChecksum, "valid", stats.Valid)

			continue
		case errors.Is(err, io.EOF):
			logger.InfoKV(ctx, "ECU stream ended", "stats", p.link.Stats())
			return nil
		case ctx.Err() != nil:
			return nil
		default:
			return err
		}

		if err := p.handle(ctx, frame); err != nil {
			return err
		}
	}
}

// handle decodes one frame, updates state and replies to the ECU.
func (p *pump) handle(ctx context.Context, frame []byte) error {
	rec, err := packet.Decode(frame)
	if err != nil {
		// The link only hands out full frames, so this is a programming error.
		return fmt.Errorf("decode status packet: %w", err)
	}

	params := packet.ToParameterSet(rec, p.conv)

	p.mu.Lock()
	p.latest = params
	p.mu.Unlock()

	p.alarms.UpdateActiveMask(ctx, rec.AlarmBits)

	logger.DebugKV(ctx, "Status packet",
		"seq", rec.Sequence, "mode", rec.Mode, "running", rec.Running(), "alarm_bits", rec.AlarmBits)

	// Setpoints are echoed back: this process does not edit them.
	reply := &packet.Command{
		Sequence:    rec.Sequence,
		Version:     rec.Version,
		Mode:        rec.Mode,
		RespRateSet: rec.RespRateSet,
		TidalVolSet: uint32(rec.TidalVolSet), //nolint:gosec // Setpoint counts are never negative.
		IERatioSet:  rec.IERatioSet,
		AlarmBits:   p.alarms.AcknowledgedMask(),
	}

	if err := p.link.WriteCommand(reply); err != nil {
		logger.ErrorKV(ctx, "Reply to ECU failed", "seq", rec.Sequence, "error", err)
	}

	return nil
}

// LatestParameters returns the parameter set of the last decoded packet.
func (p *pump) LatestParameters() (*packet.ParameterSet, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.latest, p.latest != nil
}
