// Package units converts raw ECU counts into physical quantities.
//
// Every conversion is linear: quantity = count * scale. The scales are
// calibration data and come from configuration; the defaults match the
// bench ECU firmware.
package units

import (
	"errors"
	"math"
)

const (
	// DefaultMLPerCount is the volume resolution of the ECU.
	DefaultMLPerCount = 0.1
	// DefaultCmH2OPerCount is the pressure resolution of the ECU.
	DefaultCmH2OPerCount = 0.01
	// DefaultSLMPerCount is the flow resolution of the ECU.
	DefaultSLMPerCount = 0.01
)

// ErrNonPositiveScale is returned for scales that would make conversions lossy or inverted.
var ErrNonPositiveScale = errors.New("conversion scale must be positive")

// Converter holds the linear scales for each physical quantity.
type Converter struct {
	// MLPerCount converts volume counts to millilitres.
	MLPerCount float64 `yaml:"ml_per_count"`
	// CmH2OPerCount converts pressure counts to centimetres of water.
	CmH2OPerCount float64 `yaml:"cmh2o_per_count"`
	// SLMPerCount converts flow counts to standard litres per minute.
	SLMPerCount float64 `yaml:"slm_per_count"`
}

// Default returns the converter for the stock ECU firmware.
func Default() *Converter {
	return &Converter{
		MLPerCount:    DefaultMLPerCount,
		CmH2OPerCount: DefaultCmH2OPerCount,
		SLMPerCount:   DefaultSLMPerCount,
	}
}

// FillDefaults replaces every unset (zero) scale with its default.
// Negative scales are left for Validate to reject.
func (c *Converter) FillDefaults() {
	if c.MLPerCount == 0 {
		c.MLPerCount = DefaultMLPerCount
	}

	if c.CmH2OPerCount == 0 {
		c.CmH2OPerCount = DefaultCmH2OPerCount
	}

	if c.SLMPerCount == 0 {
		c.SLMPerCount = DefaultSLMPerCount
	}
}

// Validate rejects zero or negative scales.
func (c *Converter) Validate() error {
	if c.MLPerCount <= 0 || c.CmH2OPerCount <= 0 || c.SLMPerCount <= 0 {
		return ErrNonPositiveScale
	}

	return nil
}

// CountToML converts a volume count to millilitres.
func (c *Converter) CountToML(count int32) float64 {
	return float64(count) * c.MLPerCount
}

// CountToCmH2O converts a pressure count to cmH2O.
func (c *Converter) CountToCmH2O(count int32) float64 {
	return float64(count) * c.CmH2OPerCount
}

// CountToSLM converts a flow count to standard litres per minute.
func (c *Converter) CountToSLM(count int32) float64 {
	return float64(count) * c.SLMPerCount
}

// MLToCount is the inverse of CountToML, rounded to the nearest count.
func (c *Converter) MLToCount(ml float64) int32 {
	return toCount(ml / c.MLPerCount)
}

// CmH2OToCount is the inverse of CountToCmH2O, rounded to the nearest count.
func (c *Converter) CmH2OToCount(cmh2o float64) int32 {
	return toCount(cmh2o / c.CmH2OPerCount)
}

// SLMToCount is the inverse of CountToSLM, rounded to the nearest count.
func (c *Converter) SLMToCount(slm float64) int32 {
	return toCount(slm / c.SLMPerCount)
}

// toCount rounds and clamps v into the int32 range the ECU can carry.
func toCount(v float64) int32 {
	v = math.Round(v)

	switch {
	case v > math.MaxInt32:
		return math.MaxInt32
	case v < math.MinInt32:
		return math.MinInt32
	default:
		return int32(v)
	}
}
