package packet

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestCommand_Layout pins the 22-byte command packet layout.
func TestCommand_Layout(t *testing.T) {
	t.Parallel()

	cmd := &Command{
		Sequence:    0x0102,
		Version:     1,
		Mode:        0x80,
		RespRateSet: 20,
		TidalVolSet: 5000,
		IERatioSet:  2,
		AlarmBits:   1 << 24,
	}

	buf := cmd.Encode()
	require.Len(t, buf, CommandSize)
	require.Equal(t, []byte{0x02, 0x01, 0x01, 0x80}, buf[:4])
	require.Equal(t, []byte{0x00, 0x00, 0x00, 0x01}, buf[16:20])
	require.True(t, VerifyChecksum(buf))

	decoded, err := DecodeCommand(buf)
	require.NoError(t, err)
	require.Equal(t, cmd, decoded)

	_, err = DecodeCommand(buf[:CommandSize-1])
	require.ErrorIs(t, err, ErrInvalidPacket)
}
