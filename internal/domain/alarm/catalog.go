package alarm

import "sort"

// entry is one row of the alarm catalog.
type entry struct {
	name     string
	priority int
	message  string
}

// catalog is built once and never mutated.
// Priority ranks follow clinical severity, not bit order: 0 is the most urgent.
//
//nolint:gochecknoglobals // Immutable lookup table.
var catalog = map[Identifier]entry{
	ACPowerLoss: {
		name:     "AC_POWER_LOSS",
		priority: 0,
		message:  "AC Power is disconnected",
	},
	LowBattery: {
		name:     "LOW_BATTERY",
		priority: 1,
		message:  "Battery reaches 20% or less",
	},
	BadPressureSensor: {
		name:     "BAD_PRESSURE_SENSOR",
		priority: 2,
		message:  "A problem has been detected in the pressure sensing circuit",
	},
	BadFlowSensor: {
		name:     "BAD_FLOW_SENSOR",
		priority: 3,
		message:  "A problem has been detected in the flow sensing circuit",
	},
	ECUCommsFailure: {
		name:     "ECU_COMMS_FAILURE",
		priority: 4,
		message:  "Communications are too unreliable to operate",
	},
	ECUHardwareFailure: {
		name:     "ECU_HARDWARE_FAILURE",
		priority: 5,
		message:  "A hardware failure has been detected",
	},
	EStopPressed: {
		name:     "ESTOP_PRESSED",
		priority: 6,
		message:  "Emergency stop button has been pressed",
	},
	HighPressure: {
		name:     "HIGH_PRESSURE",
		priority: 7,
		message:  "Pressure exceeded the high pressure limit",
	},
	LowPressure: {
		name:     "LOW_PRESSURE",
		priority: 8,
		message:  "Pressure is below the low pressure limit",
	},
	ContinuousPressure: {
		name:     "CONTINUOUS_PRESSURE",
		priority: 9,
		message:  "Pressure difference lower than 10cmH2O for more than 15s",
	},
	HighVolume: {
		name:     "HIGH_VOLUME",
		priority: 10,
		message:  "Volume IN detected exceeding the high volume limit",
	},
	LowVolume: {
		name:     "LOW_VOLUME",
		priority: 11,
		message:  "Volume IN detected exceeding the low volume limit",
	},
	HighRespRate: {
		name:     "HIGH_RESP_RATE",
		priority: 12,
		message:  "Respiratory rate exceeded the high rate limit",
	},
	LowRespRate: {
		name:     "LOW_RESP_RATE",
		priority: 13,
		message:  "Respiratory rate below the low rate limit",
	},
	UICommsFailure: {
		name:     "UI_COMMS_FAILURE",
		priority: 14,
		message:  "Communications are too unreliable to operate",
	},
	UIHardwareFailure: {
		name:     "UI_HARDWARE_FAILURE",
		priority: 15,
		message:  "A hardware failure has been detected",
	},
	SetpointMismatch: {
		name:     "SETPOINT_MISMATCH",
		priority: 16,
		message:  "One or more setpoints does not match between UI and ECU",
	},
}

// lowestUrgency is used to sort identifiers missing from the catalog last.
const lowestUrgency = int(^uint(0) >> 1)

// Message returns the display text for id, or "" when id is not catalogued.
func Message(id Identifier) string {
	return catalog[id].message
}

// Priority returns the rank of id. Smaller ranks are more urgent.
func Priority(id Identifier) (int, bool) {
	e, ok := catalog[id]

	return e.priority, ok
}

// rank is Priority without the presence flag.
func rank(id Identifier) int {
	if e, ok := catalog[id]; ok {
		return e.priority
	}

	return lowestUrgency
}

// Identifiers returns every catalogued identifier in bit order.
func Identifiers() []Identifier {
	ids := make([]Identifier, 0, len(catalog))
	for id := range catalog {
		ids = append(ids, id)
	}

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	return ids
}
