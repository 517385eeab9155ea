package alarm

import "strconv"

// Identifier names one alarm condition. Its numeric value is the bit
// position of the condition in the ECU alarm status word.
type Identifier uint8

// Bit positions 7, 15, 18-23 and 25-31 are reserved by the ECU.
const (
	ACPowerLoss        Identifier = 0
	LowBattery         Identifier = 1
	BadPressureSensor  Identifier = 2
	BadFlowSensor      Identifier = 3
	ECUCommsFailure    Identifier = 4
	ECUHardwareFailure Identifier = 5
	EStopPressed       Identifier = 6
	HighPressure       Identifier = 8
	LowPressure        Identifier = 9
	HighVolume         Identifier = 10
	LowVolume          Identifier = 11
	HighRespRate       Identifier = 12
	LowRespRate        Identifier = 13
	ContinuousPressure Identifier = 14
	UICommsFailure     Identifier = 16
	UIHardwareFailure  Identifier = 17
	SetpointMismatch   Identifier = 24
)

// StatusWordBits is the width of the ECU alarm status word.
const StatusWordBits = 32

// Bit returns the status word position of the identifier.
func (id Identifier) Bit() uint {
	return uint(id)
}

// Mask returns the status word with only this identifier's bit set.
func (id Identifier) Mask() uint32 {
	return 1 << id.Bit()
}

// String returns the wire name of the identifier, e.g. "AC_POWER_LOSS".
func (id Identifier) String() string {
	if e, ok := catalog[id]; ok {
		return e.name
	}

	return "UNKNOWN_" + strconv.Itoa(int(id))
}

// ParseIdentifier resolves a wire name back to an identifier.
func ParseIdentifier(name string) (Identifier, bool) {
	for id, e := range catalog {
		if e.name == name {
			return id, true
		}
	}

	return 0, false
}

// FromBit maps a status word position to its identifier.
// Reserved positions report false.
func FromBit(pos uint) (Identifier, bool) {
	if pos >= StatusWordBits {
		return 0, false
	}

	id := Identifier(pos)
	if _, ok := catalog[id]; !ok {
		return 0, false
	}

	return id, true
}
