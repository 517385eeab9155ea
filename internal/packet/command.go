package packet

import (
	"encoding/binary"
	"fmt"
)

// Command is the packet the UI sends back to the ECU after each status packet.
type Command struct {
	// Sequence echoes the sequence counter of the status packet being answered.
	Sequence    uint16
	Version     uint8
	Mode        uint8
	RespRateSet uint32
	TidalVolSet uint32
	IERatioSet  uint32
	// AlarmBits carries the acknowledged alarm mask.
	AlarmBits uint32
}

// Encode serializes the command with its checksum.
func (c *Command) Encode() []byte {
	buf := make([]byte, CommandSize)
	le := binary.LittleEndian

	le.PutUint16(buf[cmdOffSequence:], c.Sequence)
	buf[cmdOffVersion] = c.Version
	buf[cmdOffMode] = c.Mode
	le.PutUint32(buf[cmdOffRespRateSet:], c.RespRateSet)
	le.PutUint32(buf[cmdOffTidalVolSet:], c.TidalVolSet)
	le.PutUint32(buf[cmdOffIERatioSet:], c.IERatioSet)
	le.PutUint32(buf[cmdOffAlarmBits:], c.AlarmBits)
	le.PutUint16(buf[cmdOffChecksum:], Checksum(buf[:cmdOffChecksum]))

	return buf
}

// DecodeCommand parses a command packet. The checksum is carried, not verified.
func DecodeCommand(buf []byte) (*Command, error) {
	if len(buf) != CommandSize {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidPacket, len(buf), CommandSize)
	}

	le := binary.LittleEndian

	return &Command{
		Sequence:    le.Uint16(buf[cmdOffSequence:]),
		Version:     buf[cmdOffVersion],
		Mode:        buf[cmdOffMode],
		RespRateSet: le.Uint32(buf[cmdOffRespRateSet:]),
		TidalVolSet: le.Uint32(buf[cmdOffTidalVolSet:]),
		IERatioSet:  le.Uint32(buf[cmdOffIERatioSet:]),
		AlarmBits:   le.Uint32(buf[cmdOffAlarmBits:]),
	}, nil
}
