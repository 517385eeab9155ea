// Package packet decodes the ECU status packet and encodes the UI command packet.
//
// Decoding is split in two steps. Decode is purely structural: it reads the
// fixed little-endian layout into a Record of raw device counts. ToParameterSet
// applies unit calibration and is the only place where device scaling lives.
package packet
