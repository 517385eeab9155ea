package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/oshokin/vent-monitor/internal/config"
	"github.com/oshokin/vent-monitor/internal/service/banner"
	"github.com/oshokin/vent-monitor/internal/version"
)

var (
	// configPath stores the path to the configuration YAML file.
	configPath string
	// serverAddress overrides the monitor address from config.
	serverAddress string
	// pollInterval is the watch refresh rate.
	pollInterval time.Duration

	// rootCmd represents the base command for the alarm banner.
	rootCmd = &cobra.Command{
		Use:   "vent-alarms",
		Short: "Show and acknowledge ventilator alarms.",
		Long: `Alarm banner client for vent-monitor.

Shows the most urgent pending alarm, lists the queue, acknowledges alarms on
behalf of the current user and watches the queue for changes. Server address
is loaded from configuration file unless --server is given.`,
	}
)

// bannerCommand builds a subcommand that runs fn with a signal-aware context.
func bannerCommand(use, short string, fn func(context.Context, *banner.Options) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			options := &banner.Options{
				ConfigPath:    configPath,
				ServerAddress: serverAddress,
				PollInterval:  pollInterval,
				Out:           cmd.OutOrStdout(),
			}

			return fn(ctx, options)
		},
	}
}

// Execute runs the vent-alarms CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.PersistentFlags().
		StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.PersistentFlags().StringVarP(&serverAddress, "server", "s", "", "monitor address, overrides config")

	watchCmd := bannerCommand("watch", "Print queue changes and acknowledgments until interrupted.", banner.Watch)
	watchCmd.Flags().
		DurationVarP(&pollInterval, "interval", "i", banner.DefaultPollInterval, "queue polling interval")

	rootCmd.AddCommand(
		bannerCommand("show", "Print the most urgent pending alarm.", banner.Show),
		bannerCommand("list", "Print every pending alarm in priority order.", banner.List),
		bannerCommand("ack", "Acknowledge the most urgent pending alarm.", banner.Acknowledge),
		bannerCommand("params", "Print the latest ventilator parameters as JSON.", banner.Params),
		watchCmd,
	)
}
