// Package config defines the settings shared by the monitor binaries and
// provides helpers to load, validate and save them in YAML format.
//
// Config holds the gRPC address of the monitor, the serial link to the ECU,
// unit calibration and logging.
package config
