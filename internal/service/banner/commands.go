package banner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"google.golang.org/protobuf/encoding/protojson"

	domain "github.com/oshokin/vent-monitor/internal/domain/alarm"
	"github.com/oshokin/vent-monitor/internal/logger"
	"github.com/oshokin/vent-monitor/internal/service/common"
)

// Show prints the most urgent pending alarm and the pending count.
func Show(ctx context.Context, opts *Options) error {
	return withClient(ctx, opts, func(client monitorClient, out io.Writer) error {
		return show(ctx, client, out)
	})
}

// List prints every pending alarm in priority order.
func List(ctx context.Context, opts *Options) error {
	return withClient(ctx, opts, func(client monitorClient, out io.Writer) error {
		return list(ctx, client, out)
	})
}

// Acknowledge acknowledges the most urgent pending alarm on behalf of the
// current user.
func Acknowledge(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "vent-alarms")

	// Identify current user and hostname for the audit trail.
	actor, err := common.DetectActor()
	if err != nil {
		return fmt.Errorf("detect actor: %w", err)
	}

	return withClient(ctx, opts, func(client monitorClient, out io.Writer) error {
		return acknowledge(ctx, client, actor, out)
	})
}

// Params prints the latest decoded parameter set as JSON.
func Params(ctx context.Context, opts *Options) error {
	return withClient(ctx, opts, func(client monitorClient, out io.Writer) error {
		return params(ctx, client, out)
	})
}

// Watch polls the queue and prints every change until ctx is canceled.
// Acknowledgment notifications are printed as they arrive.
func Watch(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "vent-alarms")

	interval := opts.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	return withClient(ctx, opts, func(client monitorClient, out io.Writer) error {
		return watch(ctx, client, interval, out)
	})
}

func show(ctx context.Context, client monitorClient, out io.Writer) error {
	top, ok, err := client.HighestPriorityAlarm(ctx)
	if err != nil {
		return err
	}

	if !ok {
		_, err = fmt.Fprintln(out, "No pending alarms")
		return err
	}

	count, err := client.PendingCount(ctx)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(out, "%s\nPending alarms: %d\n", formatAlarm(top), count)

	return err
}

func list(ctx context.Context, client monitorClient, out io.Writer) error {
	pending, err := client.PendingAlarms(ctx)
	if err != nil {
		return err
	}

	if len(pending) == 0 {
		_, err = fmt.Fprintln(out, "No pending alarms")
		return err
	}

	for _, a := range pending {
		if _, err = fmt.Fprintln(out, formatAlarm(a)); err != nil {
			return err
		}
	}

	return nil
}

func acknowledge(ctx context.Context, client monitorClient, actor *domain.Actor, out io.Writer) error {
	top, ok, err := client.HighestPriorityAlarm(ctx)
	if err != nil {
		return err
	}

	if !ok {
		_, err = fmt.Fprintln(out, "Nothing to acknowledge")
		return err
	}

	acked, err := client.Acknowledge(ctx, top, actor)
	if err != nil {
		return err
	}

	if !acked {
		// The alarm cleared or another banner acknowledged it first.
		logger.InfoKV(ctx, "Alarm no longer pending", "alarm", top.ID.String())

		_, err = fmt.Fprintf(out, "%s is no longer pending\n", top.ID)

		return err
	}

	logger.InfoKV(ctx, "Alarm acknowledged",
		"alarm", top.ID.String(),
		"actor", fmt.Sprintf("%s@%s", actor.Username, actor.Hostname))

	_, err = fmt.Fprintf(out, "Acknowledged %s\n", top.ID)

	return err
}

func params(ctx context.Context, client monitorClient, out io.Writer) error {
	set, err := client.Parameters(ctx)
	if err != nil {
		return err
	}

	raw, err := protojson.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(set)
	if err != nil {
		return fmt.Errorf("encode parameters: %w", err)
	}

	_, err = fmt.Fprintln(out, string(raw))

	return err
}

// errWatchStopped ends the polling loop when the acknowledgment stream fails.
var errWatchStopped = errors.New("acknowledgment stream stopped")

func watch(ctx context.Context, client monitorClient, interval time.Duration, out io.Writer) error {
	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	lines := make(chan string, 1)

	go func() {
		err := client.WatchAcknowledged(ctx, func(mask uint32) {
			select {
			case lines <- fmt.Sprintf("Acknowledged mask: %#08x", mask):
			case <-ctx.Done():
			}
		})
		if err != nil {
			logger.ErrorKV(ctx, "Acknowledgment stream failed", "error", err)
			cancel(fmt.Errorf("%w: %w", errWatchStopped, err))
		}
	}()

	var last string

	poll := func() {
		snapshot, err := snapshotLine(ctx, client)
		if err != nil {
			logger.ErrorKV(ctx, "Poll failed", "error", err)
			return
		}

		if snapshot == last {
			return
		}

		last = snapshot
		_, _ = fmt.Fprintln(out, snapshot)
	}

	poll()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if cause := context.Cause(ctx); errors.Is(cause, errWatchStopped) {
				return cause
			}

			return nil
		case line := <-lines:
			_, _ = fmt.Fprintln(out, line)
		case <-ticker.C:
			poll()
		}
	}
}

// snapshotLine summarizes the queue head and size for change detection.
func snapshotLine(ctx context.Context, client monitorClient) (string, error) {
	top, ok, err := client.HighestPriorityAlarm(ctx)
	if err != nil {
		return "", err
	}

	if !ok {
		return "No pending alarms", nil
	}

	count, err := client.PendingCount(ctx)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%s | pending: %d", formatAlarm(top), count), nil
}
