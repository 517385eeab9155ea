package monitor

import (
	"context"
	"errors"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
)

// TestResolveListenAddress covers override, loopback and wildcard binds.
func TestResolveListenAddress(t *testing.T) {
	t.Parallel()

	addr, err := resolveListenAddress("10.0.0.5:7000", ":9000")
	require.NoError(t, err)
	require.Equal(t, ":9000", addr)

	addr, err = resolveListenAddress("10.0.0.5:7000", "")
	require.NoError(t, err)
	require.Equal(t, ":7000", addr)

	addr, err = resolveListenAddress("127.0.0.1:7000", "")
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1:7000", addr)

	_, err = resolveListenAddress("", "")
	require.ErrorIs(t, err, ErrNoServerAddress)

	_, err = resolveListenAddress("no-port", "")
	require.Error(t, err)
}

var (
	errAcceptFailed = errors.New("accept failed")
	errLinkLost     = errors.New("link lost")
)

// failingListener refuses every connection.
type failingListener struct{}

func (failingListener) Accept() (net.Conn, error) { return nil, errAcceptFailed }
func (failingListener) Close() error              { return nil }
func (failingListener) Addr() net.Addr            { return &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1)} }

// TestServe_ServeFailureStopsPump returns the Serve error only after the
// pump has observed cancellation.
func TestServe_ServeFailureStopsPump(t *testing.T) {
	t.Parallel()

	var pumpStopped, released atomic.Bool

	err := serve(context.Background(), grpc.NewServer(), failingListener{}, func(ctx context.Context) error {
		<-ctx.Done()
		pumpStopped.Store(true)

		return nil
	}, func() { released.Store(true) })

	require.ErrorIs(t, err, errAcceptFailed)
	require.True(t, pumpStopped.Load())
	require.True(t, released.Load())
}

// TestServe_PumpFailureStopsServer shuts the server down when the link fails.
func TestServe_PumpFailureStopsServer(t *testing.T) {
	t.Parallel()

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	done := make(chan error, 1)

	go func() {
		done <- serve(context.Background(), grpc.NewServer(), lis, func(context.Context) error {
			return errLinkLost
		}, func() {})
	}()

	select {
	case err := <-done:
		require.ErrorIs(t, err, errLinkLost)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not return after the pump failed")
	}
}

// TestServe_CancelReleasesStreams calls release before stopping on cancel.
func TestServe_CancelReleasesStreams(t *testing.T) {
	t.Parallel()

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	released := make(chan struct{})
	done := make(chan error, 1)

	go func() {
		done <- serve(ctx, grpc.NewServer(), lis, func(ctx context.Context) error {
			<-ctx.Done()
			return nil
		}, func() { close(released) })
	}()

	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not return after cancel")
	}

	_, open := <-released
	require.False(t, open)
}
