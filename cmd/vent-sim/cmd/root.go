package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/vent-monitor/internal/config"
	domain "github.com/oshokin/vent-monitor/internal/domain/alarm"
	"github.com/oshokin/vent-monitor/internal/service/simulator"
	"github.com/oshokin/vent-monitor/internal/version"
)

// errUnknownAlarm is returned for an --alarm name outside the catalog.
var errUnknownAlarm = errors.New("unknown alarm")

var (
	// configPath to the configuration YAML file.
	configPath string
	// options collects the simulator flags.
	options simulator.Options
	// alarmNames raise alarms by name in addition to --bits.
	alarmNames []string

	// rootCmd represents the base command for the bench ECU.
	rootCmd = &cobra.Command{
		Use:   "vent-sim",
		Short: "Emit simulated ECU status packets.",
		Long: `Plays the ECU side of the serial link for bench testing.

Sends a status packet every interval with the given alarm word and mode byte,
to the configured serial port or to a capture file (--out) that vent-monitor
can replay with --replay. Alarms can be raised by bit mask (--bits) or by name
(--alarm LOW_BATTERY --alarm HIGH_PRESSURE).`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			for _, name := range alarmNames {
				id, ok := domain.ParseIdentifier(name)
				if !ok {
					return fmt.Errorf("%w: %q", errUnknownAlarm, name)
				}

				options.AlarmBits |= id.Mask()
			}

			options.ConfigPath = configPath

			return simulator.Run(ctx, &options)
		},
	}
)

// Execute runs the vent-sim CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	flags := rootCmd.Flags()
	flags.StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	flags.StringVarP(&options.SerialPort, "port", "p", "", "serial device, overrides config")
	flags.StringVarP(&options.OutputFile, "out", "o", "", "write packets to a capture file instead of a port")
	flags.DurationVarP(&options.Interval, "interval", "i", simulator.DefaultInterval, "time between packets")
	flags.Uint32VarP(&options.AlarmBits, "bits", "b", 0, "alarm status word")
	flags.StringArrayVarP(&alarmNames, "alarm", "a", nil, "raise an alarm by name; repeatable")
	flags.Uint8VarP(&options.Mode, "mode", "m", simulator.DefaultMode, "mode byte; bit 7 marks running")
	flags.IntVarP(&options.Count, "count", "n", 0, "stop after this many packets; 0 runs until interrupted")
}
