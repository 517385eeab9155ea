package simulator

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/vent-monitor/internal/packet"
	"github.com/oshokin/vent-monitor/internal/units"
)

// TestRun_WritesFrames writes a bounded number of frames to a file.
func TestRun_WritesFrames(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "frames.bin")

	err := Run(context.Background(), &Options{
		OutputFile: path,
		Interval:   time.Millisecond,
		AlarmBits:  0b11,
		Mode:       DefaultMode,
		Count:      3,
	})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Len(t, data, 3*packet.Size)

	for i := range 3 {
		buf := data[i*packet.Size : (i+1)*packet.Size]
		require.True(t, packet.VerifyChecksum(buf))

		rec, err := packet.Decode(buf)
		require.NoError(t, err)
		require.Equal(t, uint16(i), rec.Sequence)
		require.Equal(t, uint32(0b11), rec.AlarmBits)
		require.True(t, rec.Running())
	}
}

// TestRun_NoSink fails without a port or file.
func TestRun_NoSink(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server_addr: 127.0.0.1:9090\n"), 0o600))

	err := Run(context.Background(), &Options{ConfigPath: path})
	require.ErrorIs(t, err, errNoSink)
}

// TestRun_StopsOnCancel exits cleanly when the context is canceled.
func TestRun_StopsOnCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Run(ctx, &Options{OutputFile: filepath.Join(t.TempDir(), "frames.bin")})
	require.NoError(t, err)
}

// TestFrame_Setpoints converts back to the nominal setpoints.
func TestFrame_Setpoints(t *testing.T) {
	t.Parallel()

	conv := units.Default()
	set := packet.ToParameterSet(Frame(conv, 0, DefaultMode, 0), conv)

	require.InDelta(t, 500.0, set.TidalVolSet, 1e-9)
	require.InDelta(t, 5.0, set.PEEP, 1e-9)
	require.InDelta(t, 25.0, set.PeakPressure, 1e-9)
	require.Equal(t, uint32(20), set.RespRateSet)
	require.True(t, set.Running())
}

// TestRun_CountBeyondSequenceWrap stops on the budget after the counter wraps.
func TestRun_CountBeyondSequenceWrap(t *testing.T) {
	t.Parallel()

	const count = 1<<16 + 5

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	path := filepath.Join(t.TempDir(), "frames.bin")

	err := Run(ctx, &Options{
		OutputFile: path,
		Interval:   time.Nanosecond,
		Count:      count,
	})
	require.NoError(t, err)
	require.NoError(t, ctx.Err(), "budget was not reached before the deadline")

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, int64(count*packet.Size), info.Size())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	rec, err := packet.Decode(data[len(data)-packet.Size:])
	require.NoError(t, err)
	require.Equal(t, uint16(4), rec.Sequence)
}
