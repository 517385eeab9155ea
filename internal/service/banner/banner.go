package banner

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/oshokin/vent-monitor/internal/config"
	domain "github.com/oshokin/vent-monitor/internal/domain/alarm"
	"github.com/oshokin/vent-monitor/internal/service/common"
)

// Options configures every banner command.
type Options struct {
	// ConfigPath to YAML settings file, defaults to standard filename if empty.
	ConfigPath string
	// ServerAddress overrides server address from config when specified.
	ServerAddress string
	// PollInterval defines the interval between queue checks in watch mode.
	PollInterval time.Duration
	// Out receives command output; defaults to stdout.
	Out io.Writer
}

// DefaultPollInterval is the watch mode refresh rate.
const DefaultPollInterval = time.Second

// monitorClient is the subset of common.Client the commands use.
type monitorClient interface {
	HighestPriorityAlarm(ctx context.Context) (domain.Alarm, bool, error)
	PendingAlarms(ctx context.Context) ([]domain.Alarm, error)
	Acknowledge(ctx context.Context, a domain.Alarm, actor *domain.Actor) (bool, error)
	PendingCount(ctx context.Context) (int, error)
	Parameters(ctx context.Context) (*structpb.Struct, error)
	WatchAcknowledged(ctx context.Context, fn func(mask uint32)) error
}

// connect loads settings and dials the monitor.
func connect(ctx context.Context, opts *Options) (*common.Client, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	// Command line argument overrides config.
	serverAddress := cfg.ServerAddress
	if opts.ServerAddress != "" {
		serverAddress = opts.ServerAddress
	}

	client, err := common.Dial(ctx, serverAddress, common.WithCallTimeout(cfg.Timeout))
	if err != nil {
		return nil, fmt.Errorf("dial monitor: %w", err)
	}

	return client, nil
}

// withClient dials the monitor, runs fn and closes the connection.
func withClient(ctx context.Context, opts *Options, fn func(monitorClient, io.Writer) error) error {
	client, err := connect(ctx, opts)
	if err != nil {
		return err
	}

	defer func() {
		_ = client.Close()
	}()

	return fn(client, output(opts))
}

func output(opts *Options) io.Writer {
	if opts.Out != nil {
		return opts.Out
	}

	return os.Stdout
}

// formatAlarm renders one alarm as a banner line.
func formatAlarm(a domain.Alarm) string {
	return fmt.Sprintf(
		"[P%d] %s: %s (raised %s)",
		a.Priority(),
		a.ID,
		a.Message(),
		a.RaisedAt.Local().Format(time.TimeOnly),
	)
}
