package packet

import (
	"fmt"

	"github.com/oshokin/vent-monitor/internal/units"
)

// ParameterSet is a status packet in engineering units, ready for display.
type ParameterSet struct {
	SeqNum        uint16
	PacketVersion uint8
	Mode          uint8
	RunState      uint8
	ControlState  uint8
	RespRateMeas  uint32
	RespRateSet   uint32
	IERatioMeas   uint32
	IERatioSet    uint32
	// Volumes in millilitres.
	TidalVolMeas float64
	TidalVolSet  float64
	VolumeIn     float64
	VolumeOut    float64
	VolumeRate   float64
	// Pressures in cmH2O.
	PEEP         float64
	PeakPressure float64
	PlateauPress float64
	Pressure     float64
	// Flow in standard litres per minute.
	Flow         float64
	BatteryLevel uint8
	AlarmBits    uint32
}

// ToParameterSet applies the converter to the physical quantities of rec and
// copies every other field verbatim.
func ToParameterSet(rec *Record, conv *units.Converter) *ParameterSet {
	return &ParameterSet{
		SeqNum:        rec.Sequence,
		PacketVersion: rec.Version,
		Mode:          rec.Mode,
		RunState:      rec.RunState,
		ControlState:  rec.ControlState,
		RespRateMeas:  rec.RespRateMeas,
		RespRateSet:   rec.RespRateSet,
		IERatioMeas:   rec.IERatioMeas,
		IERatioSet:    rec.IERatioSet,
		TidalVolMeas:  conv.CountToML(rec.TidalVolMeas),
		TidalVolSet:   conv.CountToML(rec.TidalVolSet),
		VolumeIn:      conv.CountToML(rec.VolumeInMeas),
		VolumeOut:     conv.CountToML(rec.VolumeOutMeas),
		VolumeRate:    conv.CountToML(rec.VolumeRateMeas),
		PEEP:          conv.CountToCmH2O(rec.PEEPMeas),
		PeakPressure:  conv.CountToCmH2O(rec.PeakPressureMeas),
		PlateauPress:  conv.CountToCmH2O(rec.PlateauMeas),
		Pressure:      conv.CountToCmH2O(rec.PressureMeas),
		Flow:          conv.CountToSLM(rec.FlowMeas),
		BatteryLevel:  rec.BatteryLevel,
		AlarmBits:     rec.AlarmBits,
	}
}

// DecodeParameters decodes buf and converts it in one step.
func DecodeParameters(buf []byte, conv *units.Converter) (*ParameterSet, error) {
	rec, err := Decode(buf)
	if err != nil {
		return nil, fmt.Errorf("decode status packet: %w", err)
	}

	return ToParameterSet(rec, conv), nil
}

// Running reports whether the ECU is ventilating.
func (p *ParameterSet) Running() bool {
	return p.RunState != 0
}
