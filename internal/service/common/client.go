//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"

	api "github.com/oshokin/vent-monitor/internal/api/grpc/monitor"
	"github.com/oshokin/vent-monitor/internal/config"
	domain "github.com/oshokin/vent-monitor/internal/domain/alarm"
	"github.com/oshokin/vent-monitor/internal/version"
)

// Client wraps the monitor gRPC client and speaks domain types.
type Client struct {
	// conn is the underlying gRPC connection to the monitor.
	conn *grpc.ClientConn
	// api is the monitor service client.
	api *api.MonitorClient

	// callTimeout is the default timeout for individual RPC calls.
	callTimeout time.Duration
}

// Option configures client behaviour.
type Option func(*Client)

// WithCallTimeout sets a default timeout for service calls.
func WithCallTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.callTimeout = timeout
		}
	}
}

// errAddressRequired is returned when a required address value is missing.
var errAddressRequired = errors.New("address must be provided")

// Dial creates a client for the monitor at address.
// The monitor and the banner share a host or a closed bedside network, so
// the connection is not encrypted.
func Dial(_ context.Context, address string, opts ...Option) (*Client, error) {
	if address == "" {
		return nil, errAddressRequired
	}

	conn, err := grpc.NewClient(
		address,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUserAgent(version.UserAgent("vent-alarms")),
	)
	if err != nil {
		return nil, fmt.Errorf("dial monitor: %w", err)
	}

	client := &Client{
		conn:        conn,
		api:         api.NewMonitorClient(conn),
		callTimeout: config.DefaultTimeout,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

// Close releases the underlying gRPC connection.
func (c *Client) Close() error {
	if c == nil || c.conn == nil {
		return nil
	}

	return c.conn.Close()
}

// HighestPriorityAlarm returns the most urgent pending alarm, if any.
func (c *Client) HighestPriorityAlarm(ctx context.Context) (domain.Alarm, bool, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	resp, err := c.api.GetHighestPriorityAlarm(callCtx)
	if err != nil {
		return domain.Alarm{}, false, fmt.Errorf("get highest priority alarm: %w", err)
	}

	if len(resp.GetFields()) == 0 {
		return domain.Alarm{}, false, nil
	}

	a, err := api.AlarmFromStruct(resp)
	if err != nil {
		return domain.Alarm{}, false, fmt.Errorf("decode alarm: %w", err)
	}

	return a, true, nil
}

// PendingAlarms returns every pending alarm in priority order.
func (c *Client) PendingAlarms(ctx context.Context) ([]domain.Alarm, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	resp, err := c.api.ListPendingAlarms(callCtx)
	if err != nil {
		return nil, fmt.Errorf("list pending alarms: %w", err)
	}

	result := make([]domain.Alarm, 0, len(resp.GetValues()))

	for _, v := range resp.GetValues() {
		a, err := api.AlarmFromStruct(v.GetStructValue())
		if err != nil {
			return nil, fmt.Errorf("decode alarm: %w", err)
		}

		result = append(result, a)
	}

	return result, nil
}

// Acknowledge acknowledges a on behalf of actor. It reports false when the
// alarm was no longer pending.
func (c *Client) Acknowledge(ctx context.Context, a domain.Alarm, actor *domain.Actor) (bool, error) {
	req, err := api.AlarmToStruct(a)
	if err != nil {
		return false, fmt.Errorf("encode alarm: %w", err)
	}

	if req, err = api.WithActor(req, actor); err != nil {
		return false, err
	}

	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	resp, err := c.api.AcknowledgeAlarm(callCtx, req)
	if err != nil {
		return false, fmt.Errorf("acknowledge alarm: %w", err)
	}

	return resp.GetValue(), nil
}

// PendingCount returns the number of pending alarms.
func (c *Client) PendingCount(ctx context.Context) (int, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	resp, err := c.api.GetPendingCount(callCtx)
	if err != nil {
		return 0, fmt.Errorf("get pending count: %w", err)
	}

	return int(resp.GetValue()), nil
}

// Parameters returns the latest parameter set in its wire form.
func (c *Client) Parameters(ctx context.Context) (*structpb.Struct, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	resp, err := c.api.GetParameters(callCtx)
	if err != nil {
		return nil, fmt.Errorf("get parameters: %w", err)
	}

	return resp, nil
}

// WatchAcknowledged calls fn with every acknowledged mask until ctx is
// canceled or the stream ends.
func (c *Client) WatchAcknowledged(ctx context.Context, fn func(mask uint32)) error {
	stream, err := c.api.WatchAcknowledged(ctx)
	if err != nil {
		return fmt.Errorf("watch acknowledged: %w", err)
	}

	for {
		mask, err := stream.Recv()
		if err != nil {
			if errors.Is(err, io.EOF) || ctx.Err() != nil {
				return nil
			}

			return fmt.Errorf("receive acknowledged mask: %w", err)
		}

		fn(mask.GetValue())
	}
}

// callContext returns a context with the client's call timeout if configured,
// otherwise a cancellable child context without a deadline.
func (c *Client) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.callTimeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, c.callTimeout)
}
