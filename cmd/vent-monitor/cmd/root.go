package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/vent-monitor/internal/config"
	"github.com/oshokin/vent-monitor/internal/service/monitor"
	"github.com/oshokin/vent-monitor/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// serialPort overrides the configured ECU device.
	serialPort string
	// replayFile reads status packets from a capture.
	replayFile string
	// allowMultiple skips the single instance check.
	allowMultiple bool

	// rootCmd represents the base command for running the monitor.
	rootCmd = &cobra.Command{
		Use:   "vent-monitor [listen-address]",
		Short: "Decode ECU status packets and serve the alarm queue.",
		Long: `Reads status packets from the ventilator ECU over the serial link, tracks
alarm bits and keeps a prioritized queue of alarms awaiting acknowledgment.

The queue is served over gRPC to the alarm banner (vent-alarms). Only the port
from server_addr is used for listening unless the address is a loopback one.
Listen address can be provided as argument to override config (e.g., :9090).
Every status packet is answered with a command packet carrying the mask of
acknowledged alarms.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			var listenAddress string
			if len(args) > 0 {
				listenAddress = args[0]
			}

			options := &monitor.Options{
				ConfigPath:    configPath,
				ListenAddress: listenAddress,
				SerialPort:    serialPort,
				ReplayFile:    replayFile,
				AllowMultiple: allowMultiple,
			}

			return monitor.Run(ctx, options)
		},
	}
)

// Execute runs the vent-monitor CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.Flags().StringVarP(&serialPort, "port", "p", "", "serial device of the ECU, overrides config")
	rootCmd.Flags().StringVarP(&replayFile, "replay", "r", "", "replay status packets from a capture file")

	// Hidden flag for running next to another monitor on a bench.
	rootCmd.Flags().BoolVar(&allowMultiple, "allow-multiple", false, "skip the single instance check")

	err := rootCmd.Flags().MarkHidden("allow-multiple")
	if err != nil {
		panic(err)
	}
}
