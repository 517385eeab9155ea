package packet

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrInvalidPacket is returned when a buffer cannot be a status packet.
var ErrInvalidPacket = errors.New("invalid packet")

// Record is a status packet in raw device counts.
type Record struct {
	Sequence         uint16
	Version          uint8
	Mode             uint8
	RespRateMeas     uint32
	RespRateSet      uint32
	TidalVolMeas     int32
	TidalVolSet      int32
	IERatioMeas      uint32
	IERatioSet       uint32
	PEEPMeas         int32
	PeakPressureMeas int32
	PlateauMeas      int32
	PressureMeas     int32
	FlowMeas         int32
	VolumeInMeas     int32
	VolumeOutMeas    int32
	VolumeRateMeas   int32
	ControlState     uint8
	BatteryLevel     uint8
	Reserved         uint16
	AlarmBits        uint32
	// Checksum is carried through as received; Decode does not verify it.
	Checksum uint16
	// RunState is Mode masked with RunStateMask: non-zero when ventilating.
	RunState uint8
}

// Decode parses a status packet. The transport has already validated the
// checksum; a buffer of the wrong length is rejected with ErrInvalidPacket.
func Decode(buf []byte) (*Record, error) {
	if len(buf) != Size {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidPacket, len(buf), Size)
	}

	le := binary.LittleEndian

	rec := &Record{
		Sequence:         le.Uint16(buf[offSequence:]),
		Version:          buf[offVersion],
		Mode:             buf[offMode],
		RespRateMeas:     le.Uint32(buf[offRespRateMeas:]),
		RespRateSet:      le.Uint32(buf[offRespRateSet:]),
		TidalVolMeas:     int32(le.Uint32(buf[offTidalVolMeas:])),
		TidalVolSet:      int32(le.Uint32(buf[offTidalVolSet:])),
		IERatioMeas:      le.Uint32(buf[offIERatioMeas:]),
		IERatioSet:       le.Uint32(buf[offIERatioSet:]),
		PEEPMeas:         int32(le.Uint32(buf[offPEEPMeas:])),
		PeakPressureMeas: int32(le.Uint32(buf[offPeakPressureMeas:])),
		PlateauMeas:      int32(le.Uint32(buf[offPlateauMeas:])),
		PressureMeas:     int32(le.Uint32(buf[offPressureMeas:])),
		FlowMeas:         int32(le.Uint32(buf[offFlowMeas:])),
		VolumeInMeas:     int32(le.Uint32(buf[offVolumeInMeas:])),
		VolumeOutMeas:    int32(le.Uint32(buf[offVolumeOutMeas:])),
		VolumeRateMeas:   int32(le.Uint32(buf[offVolumeRateMeas:])),
		ControlState:     buf[offControlState],
		BatteryLevel:     buf[offBatteryLevel],
		Reserved:         le.Uint16(buf[offReserved:]),
		AlarmBits:        le.Uint32(buf[offAlarmBits:]),
		Checksum:         le.Uint16(buf[offChecksum:]),
	}

	rec.RunState = RunState(rec.Mode)

	return rec, nil
}

// RunState extracts the running flag from a mode byte.
func RunState(mode uint8) uint8 {
	return mode & RunStateMask
}

// Running reports whether the ECU is ventilating.
func (r *Record) Running() bool {
	return r.RunState != 0
}

// Encode serializes r into a status packet. The Checksum field is ignored
// and recomputed over the payload.
func Encode(r *Record) []byte {
	buf := make([]byte, Size)
	le := binary.LittleEndian

	le.PutUint16(buf[offSequence:], r.Sequence)
	buf[offVersion] = r.Version
	buf[offMode] = r.Mode
	le.PutUint32(buf[offRespRateMeas:], r.RespRateMeas)
	le.PutUint32(buf[offRespRateSet:], r.RespRateSet)
	le.PutUint32(buf[offTidalVolMeas:], uint32(r.TidalVolMeas))
	le.PutUint32(buf[offTidalVolSet:], uint32(r.TidalVolSet))
	le.PutUint32(buf[offIERatioMeas:], r.IERatioMeas)
	le.PutUint32(buf[offIERatioSet:], r.IERatioSet)
	le.PutUint32(buf[offPEEPMeas:], uint32(r.PEEPMeas))
	le.PutUint32(buf[offPeakPressureMeas:], uint32(r.PeakPressureMeas))
	le.PutUint32(buf[offPlateauMeas:], uint32(r.PlateauMeas))
	le.PutUint32(buf[offPressureMeas:], uint32(r.PressureMeas))
	le.PutUint32(buf[offFlowMeas:], uint32(r.FlowMeas))
	le.PutUint32(buf[offVolumeInMeas:], uint32(r.VolumeInMeas))
	le.PutUint32(buf[offVolumeOutMeas:], uint32(r.VolumeOutMeas))
	le.PutUint32(buf[offVolumeRateMeas:], uint32(r.VolumeRateMeas))
	buf[offControlState] = r.ControlState
	buf[offBatteryLevel] = r.BatteryLevel
	le.PutUint16(buf[offReserved:], r.Reserved)
	le.PutUint32(buf[offAlarmBits:], r.AlarmBits)
	le.PutUint16(buf[offChecksum:], Checksum(buf[:offChecksum]))

	return buf
}
