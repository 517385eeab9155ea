package simulator

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/oshokin/vent-monitor/internal/config"
	"github.com/oshokin/vent-monitor/internal/logger"
	"github.com/oshokin/vent-monitor/internal/packet"
	"github.com/oshokin/vent-monitor/internal/transport/link"
	"github.com/oshokin/vent-monitor/internal/units"
)

// Options configures the simulated ECU.
type Options struct {
	// ConfigPath to YAML settings file; used for the serial settings.
	ConfigPath string
	// SerialPort overrides the port from the configuration.
	SerialPort string
	// OutputFile writes frames to a file instead of a serial port.
	OutputFile string
	// Interval between frames.
	Interval time.Duration
	// AlarmBits is the alarm status word sent in every frame.
	AlarmBits uint32
	// Mode is the mode byte; bit 7 marks the ventilator as running.
	Mode uint8
	// Count stops after this many frames; zero runs until canceled.
	Count int
}

const (
	// DefaultInterval matches the ECU send period.
	DefaultInterval = 60 * time.Millisecond
	// DefaultMode is a running ventilator in its first mode.
	DefaultMode = packet.RunStateMask | 0x01
	// protocolVersion is stamped into every frame.
	protocolVersion = 1
)

// errNoSink is returned when neither a port nor a file is configured.
var errNoSink = errors.New("serial port or output file must be provided")

// Run emits frames until ctx is canceled or Count frames were written.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "vent-sim")

	out, conv, err := openSink(opts)
	if err != nil {
		return err
	}

	defer func() {
		_ = out.Close()
	}()

	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}

	logger.InfoKV(ctx, "Emitting status packets",
		"interval", interval.String(),
		"alarm_bits", fmt.Sprintf("%#08x", opts.AlarmBits),
		"mode", fmt.Sprintf("%#02x", opts.Mode))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var (
		// seq wraps like the ECU counter; sent counts frames for the budget.
		seq  uint16
		sent int
	)

	for {
		if err = out.WriteStatus(Frame(conv, seq, opts.Mode, opts.AlarmBits)); err != nil {
			return err
		}

		seq++
		sent++

		if opts.Count > 0 && sent >= opts.Count {
			logger.InfoKV(ctx, "Frame budget reached", "frames", sent)
			return nil
		}

		select {
		case <-ctx.Done():
			logger.InfoKV(ctx, "Context canceled, exiting", "frames", sent)
			return nil
		case <-ticker.C:
		}
	}
}

// openSink opens the output file or the serial port.
func openSink(opts *Options) (*link.Link, *units.Converter, error) {
	if opts.OutputFile != "" {
		file, err := os.Create(filepath.Clean(opts.OutputFile))
		if err != nil {
			return nil, nil, fmt.Errorf("create output file: %w", err)
		}

		return link.New(file), units.Default(), nil
	}

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load configuration: %w", err)
	}

	if opts.SerialPort != "" {
		cfg.Serial.Port = opts.SerialPort
	}

	if cfg.Serial.Port == "" {
		return nil, nil, errNoSink
	}

	out, err := link.Open(&cfg.Serial)
	if err != nil {
		return nil, nil, err
	}

	return out, &cfg.Units, nil
}

// Frame builds a plausible status packet for sequence number seq.
// Measured values follow a slow breathing cycle around the setpoints.
func Frame(conv *units.Converter, seq uint16, mode uint8, alarmBits uint32) *packet.Record {
	const (
		respRate  = 20
		tidalML   = 500.0
		ieRatio   = 2
		peep      = 5.0
		peak      = 25.0
		plateau   = 20.0
		flowPeak  = 40.0
		batteryPc = 95
	)

	// A breath of 3s at 60ms per frame is 50 frames.
	phase := 2 * math.Pi * float64(seq%50) / 50
	wave := math.Sin(phase)

	return &packet.Record{
		Sequence:         seq,
		Version:          protocolVersion,
		Mode:             mode,
		RespRateMeas:     respRate,
		RespRateSet:      respRate,
		TidalVolMeas:     conv.MLToCount(tidalML + 5*wave),
		TidalVolSet:      conv.MLToCount(tidalML),
		IERatioMeas:      ieRatio,
		IERatioSet:       ieRatio,
		PEEPMeas:         conv.CmH2OToCount(peep),
		PeakPressureMeas: conv.CmH2OToCount(peak),
		PlateauMeas:      conv.CmH2OToCount(plateau),
		PressureMeas:     conv.CmH2OToCount(peep + (peak-peep)*math.Max(wave, 0)),
		FlowMeas:         conv.SLMToCount(flowPeak * wave),
		VolumeInMeas:     conv.MLToCount(tidalML * math.Max(wave, 0)),
		VolumeOutMeas:    conv.MLToCount(tidalML * math.Max(-wave, 0)),
		VolumeRateMeas:   conv.MLToCount(tidalML * respRate),
		BatteryLevel:     batteryPc,
		AlarmBits:        alarmBits,
	}
}
