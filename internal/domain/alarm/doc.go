// Package alarm contains the alarm domain of the ventilator monitor.
//
// Identifier values are the bit positions the ECU uses in its 32-bit alarm
// status word. The catalog maps every identifier to a clinical priority rank
// and a display message. Queue keeps pending alarms ordered by priority and
// then by the moment they were raised.
package alarm
