package monitor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"

	"github.com/mitchellh/go-ps"
	"google.golang.org/grpc"

	api "github.com/oshokin/vent-monitor/internal/api/grpc/monitor"
	"github.com/oshokin/vent-monitor/internal/config"
	"github.com/oshokin/vent-monitor/internal/logger"
	"github.com/oshokin/vent-monitor/internal/service/coordinator"
	"github.com/oshokin/vent-monitor/internal/transport/link"
	"github.com/oshokin/vent-monitor/internal/version"
)

// Options controls the monitor process and configuration.
type Options struct {
	// ConfigPath specifies the path to settings YAML file.
	ConfigPath string
	// ListenAddress provides an optional listen address override for the gRPC server.
	ListenAddress string
	// SerialPort overrides the configured ECU serial device.
	SerialPort string
	// ReplayFile reads status packets from a capture instead of the serial port.
	ReplayFile string
	// AllowMultiple skips the single instance check.
	AllowMultiple bool
}

// ErrNoServerAddress indicates missing server configuration.
var ErrNoServerAddress = errors.New("no server address configured")

// Run starts the ECU pump and the gRPC server and blocks until the context
// is canceled or one of them fails.
//
//nolint:funlen // Sequential wiring reads best in one place.
func Run(ctx context.Context, opts *Options) error {
	settings, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	logFile, err := logger.Setup(settings.Log.Level, logger.FileOptions{
		Path:       settings.Log.File,
		MaxSizeMB:  settings.Log.MaxSizeMB,
		MaxBackups: settings.Log.MaxBackups,
		MaxAgeDays: settings.Log.MaxAgeDays,
		Compress:   settings.Log.Compress,
	})
	if err != nil {
		return fmt.Errorf("setup logging: %w", err)
	}

	defer func() {
		_ = logFile.Close()
	}()

	ctx = logger.WithName(ctx, "vent-monitor")
	startFields := append(version.LogFields(), "log_level", logger.Level().String())
	logger.InfoKV(ctx, "Monitor starting", startFields...)

	if !opts.AllowMultiple {
		if err = ensureSingleInstance(ps.Processes, ProcessName); err != nil {
			return err
		}
	}

	listenAddress, err := resolveListenAddress(settings.ServerAddress, opts.ListenAddress)
	if err != nil {
		return fmt.Errorf("resolve listen address: %w", err)
	}

	ecu, source, err := openLink(settings, opts)
	if err != nil {
		return err
	}

	defer func() {
		_ = ecu.Close()
	}()

	feed := coordinator.NewBroadcaster()
	alarms := coordinator.New(coordinator.WithNotifier(feed))
	p := newPump(ecu, alarms, &settings.Units)

	lc := net.ListenConfig{}

	lis, err := lc.Listen(ctx, "tcp", listenAddress)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", listenAddress, err)
	}

	grpcServer := grpc.NewServer()
	api.NewServer(alarms, p, feed).Register(grpcServer)

	logger.InfoKV(ctx, "Monitor listening", "listen_address", listenAddress, "ecu", source)

	runErr := serve(ctx, grpcServer, lis, func(ctx context.Context) error {
		return p.run(logger.WithName(ctx, "pump"))
	}, feed.Close)

	logger.InfoKV(ctx, "Monitor stopped", "link_stats", ecu.Stats())

	return runErr
}

// serve runs pump next to the gRPC server until ctx is canceled, the pump
// fails or Serve fails. It returns once the server and the pump have both
// stopped. release is called before GracefulStop so open streams can end.
func serve(
	ctx context.Context,
	srv *grpc.Server,
	lis net.Listener,
	pump func(context.Context) error,
	release func(),
) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		pumpDone = make(chan struct{})
		pumpErr  error
	)

	go func() {
		defer close(pumpDone)

		pumpErr = pump(runCtx)
	}()

	// Done channel is closed after GracefulStop finishes to ensure we block
	// until the server fully stops before returning.
	var (
		done   = make(chan struct{})
		runErr error
	)

	go func() {
		defer close(done)

		select {
		case <-runCtx.Done():
		case <-pumpDone:
			if pumpErr != nil {
				logger.ErrorKV(ctx, "ECU link failed", "error", pumpErr)
				runErr = pumpErr

				break
			}

			// A finished replay keeps the state available until shutdown.
			<-runCtx.Done()
		}

		logger.Info(ctx, "Shutting down gRPC server")

		// Watch streams never end on their own; release them first.
		release()
		srv.GracefulStop()
	}()

	serveErr := srv.Serve(lis)

	cancel()
	<-done
	<-pumpDone

	if serveErr != nil && !errors.Is(serveErr, grpc.ErrServerStopped) {
		return fmt.Errorf("serve gRPC: %w", serveErr)
	}

	return runErr
}

// openLink opens the replay capture or the serial port.
func openLink(settings *config.Config, opts *Options) (*link.Link, string, error) {
	if opts.ReplayFile != "" {
		f, err := os.Open(filepath.Clean(opts.ReplayFile))
		if err != nil {
			return nil, "", fmt.Errorf("open replay file: %w", err)
		}

		return link.New(&replayStream{Reader: f, Closer: f}), opts.ReplayFile, nil
	}

	serial := settings.Serial
	if opts.SerialPort != "" {
		serial.Port = opts.SerialPort
	}

	ecu, err := link.Open(&serial)
	if err != nil {
		return nil, "", err
	}

	return ecu, serial.Port, nil
}

// replayStream reads a capture and discards command replies.
type replayStream struct {
	io.Reader
	io.Closer
}

// Write discards p.
func (replayStream) Write(p []byte) (int, error) {
	return len(p), nil
}

// resolveListenAddress determines the listen address for the gRPC server.
// If override is provided, uses it directly. Otherwise extracts port from configAddr.
func resolveListenAddress(configAddr, override string) (string, error) {
	if override != "" {
		return override, nil
	}

	if configAddr == "" {
		return "", ErrNoServerAddress
	}

	host, port, err := net.SplitHostPort(configAddr)
	if err != nil {
		return "", fmt.Errorf("invalid server address format %q: %w", configAddr, err)
	}

	// The banner usually runs on the same box; keep loopback binds local.
	if ip := net.ParseIP(host); ip != nil && ip.IsLoopback() {
		return configAddr, nil
	}

	return ":" + port, nil
}
