package packet

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/vent-monitor/internal/units"
)

// TestToParameterSet_ConvertsPhysicalFields checks scaled and verbatim fields.
func TestToParameterSet_ConvertsPhysicalFields(t *testing.T) {
	t.Parallel()

	conv := units.Default()

	params, err := DecodeParameters(rawPacket(), conv)
	require.NoError(t, err)

	require.Equal(t, uint16(0x1234), params.SeqNum)
	require.Equal(t, uint8(3), params.PacketVersion)
	require.Equal(t, uint8(0x81), params.Mode)
	require.True(t, params.Running())
	require.Equal(t, uint32(18), params.RespRateMeas)
	require.Equal(t, uint32(20), params.RespRateSet)
	require.Equal(t, uint32(2), params.IERatioMeas)
	require.Equal(t, uint32(3), params.IERatioSet)
	require.Equal(t, uint8(95), params.BatteryLevel)
	require.Equal(t, uint8(7), params.ControlState)
	require.Equal(t, uint32(0b11), params.AlarmBits)

	require.InDelta(t, 450.0, params.TidalVolMeas, 1e-9)
	require.InDelta(t, 500.0, params.TidalVolSet, 1e-9)
	require.InDelta(t, 440.0, params.VolumeIn, 1e-9)
	require.InDelta(t, -1.0, params.VolumeOut, 1e-9)
	require.InDelta(t, 8000.0, params.VolumeRate, 1e-9)
	require.InDelta(t, 5.0, params.PEEP, 1e-9)
	require.InDelta(t, 25.0, params.PeakPressure, 1e-9)
	require.InDelta(t, 22.0, params.PlateauPress, 1e-9)
	require.InDelta(t, -1.5, params.Pressure, 1e-9)
	require.InDelta(t, -45.67, params.Flow, 1e-9)
}

// TestParameterSet_RoundTrip encodes physical values as counts and decodes them back.
func TestParameterSet_RoundTrip(t *testing.T) {
	t.Parallel()

	conv := &units.Converter{
		MLPerCount:    0.1,
		CmH2OPerCount: 0.05,
		SLMPerCount:   0.02,
	}

	const (
		tidalVolume = 487.3
		peep        = 6.35
		pressure    = -3.1
		flow        = -58.44
	)

	frame := Encode(&Record{
		Sequence:     9,
		Mode:         0x80,
		TidalVolMeas: conv.MLToCount(tidalVolume),
		PEEPMeas:     conv.CmH2OToCount(peep),
		PressureMeas: conv.CmH2OToCount(pressure),
		FlowMeas:     conv.SLMToCount(flow),
	})

	params, err := DecodeParameters(frame, conv)
	require.NoError(t, err)

	require.InDelta(t, tidalVolume, params.TidalVolMeas, conv.MLPerCount/2)
	require.InDelta(t, peep, params.PEEP, conv.CmH2OPerCount/2)
	require.InDelta(t, pressure, params.Pressure, conv.CmH2OPerCount/2)
	require.InDelta(t, flow, params.Flow, conv.SLMPerCount/2)
}
