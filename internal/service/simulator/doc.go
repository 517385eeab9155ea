// Package simulator plays the ECU side of the serial link on a bench.
//
// It emits status packets at a fixed period with a configurable alarm word
// and mode byte, either to a serial port or to a file that the monitor can
// replay. Command packets sent back by the monitor are not read.
package simulator
