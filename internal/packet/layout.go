package packet

// Status packet layout. Offsets are protocol-locked and MUST NOT be configurable.
const (
	// Size is the length of an ECU status packet in bytes.
	Size = 70

	offSequence         = 0
	offVersion          = 2
	offMode             = 3
	offRespRateMeas     = 4
	offRespRateSet      = 8
	offTidalVolMeas     = 12
	offTidalVolSet      = 16
	offIERatioMeas      = 20
	offIERatioSet       = 24
	offPEEPMeas         = 28
	offPeakPressureMeas = 32
	offPlateauMeas      = 36
	offPressureMeas     = 40
	offFlowMeas         = 44
	offVolumeInMeas     = 48
	offVolumeOutMeas    = 52
	offVolumeRateMeas   = 56
	offControlState     = 60
	offBatteryLevel     = 61
	offReserved         = 62
	offAlarmBits        = 64
	offChecksum         = 68
)

// Command packet layout.
const (
	// CommandSize is the length of a UI command packet in bytes.
	CommandSize = 22

	cmdOffSequence    = 0
	cmdOffVersion     = 2
	cmdOffMode        = 3
	cmdOffRespRateSet = 4
	cmdOffTidalVolSet = 8
	cmdOffIERatioSet  = 12
	cmdOffAlarmBits   = 16
	cmdOffChecksum    = 20
)

// RunStateMask selects the bit of the mode byte that separates running
// ("on") modes from stopped ("off") modes.
const RunStateMask = 0b1000_0000
