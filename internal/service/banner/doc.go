// Package banner implements the vent-alarms commands used by the bedside
// alarm banner: showing, listing, acknowledging and watching pending alarms,
// and dumping the latest ventilator parameters.
package banner
