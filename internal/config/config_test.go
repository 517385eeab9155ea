package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/vent-monitor/internal/units"
)

// TestValidate checks required fields, defaults and format validations.
func TestValidate(t *testing.T) {
	t.Parallel()

	// Missing address.
	settings := new(Config)

	err := Validate(settings)
	require.Error(t, err)

	// Bad address.
	settings = &Config{
		ServerAddress: "bad:address",
	}

	err = Validate(settings)
	require.Error(t, err)

	// Defaults.
	settings = &Config{
		ServerAddress: "127.0.0.1:0",
	}

	require.NoError(t, Validate(settings))
	require.Equal(t, DefaultTimeout, settings.Timeout)
	require.Equal(t, DefaultBaudRate, settings.Serial.BaudRate)
	require.Equal(t, 8, settings.Serial.DataBits)
	require.Equal(t, "N", settings.Serial.Parity)
	require.Equal(t, DefaultReadTimeout, settings.Serial.ReadTimeout)
	require.Equal(t, *units.Default(), settings.Units)
	require.Equal(t, DefaultLogLevel, settings.Log.Level)

	// Bad parity.
	settings = &Config{
		ServerAddress: "127.0.0.1:0",
		Serial:        Serial{Parity: "X"},
	}

	require.ErrorIs(t, Validate(settings), errBadParity)

	// Unset scales of a partial calibration take their defaults.
	settings = &Config{
		ServerAddress: "127.0.0.1:0",
		Units:         units.Converter{MLPerCount: 1},
	}

	require.NoError(t, Validate(settings))
	require.Equal(t, units.Converter{
		MLPerCount:    1,
		CmH2OPerCount: units.DefaultCmH2OPerCount,
		SLMPerCount:   units.DefaultSLMPerCount,
	}, settings.Units)

	// Negative scales are still rejected.
	settings = &Config{
		ServerAddress: "127.0.0.1:0",
		Units:         units.Converter{SLMPerCount: -0.01},
	}

	require.ErrorIs(t, Validate(settings), units.ErrNonPositiveScale)
}

// TestLoad_PartialUnits loads a file that overrides a single scale.
func TestLoad_PartialUnits(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), DefaultConfigFilename)
	contents := "server_addr: 127.0.0.1:9090\nunits:\n  ml_per_count: 0.5\n"
	require.NoError(t, os.WriteFile(path, []byte(contents), DefaultFilePermissions))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.InDelta(t, 0.5, loaded.Units.MLPerCount, 1e-12)
	require.InDelta(t, units.DefaultCmH2OPerCount, loaded.Units.CmH2OPerCount, 1e-12)
	require.InDelta(t, units.DefaultSLMPerCount, loaded.Units.SLMPerCount, 1e-12)
}

// TestSaveLoadRoundtrip ensures settings are persisted and loaded back correctly.
func TestSaveLoadRoundtrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yaml")

	settings := &Config{
		ServerAddress: "127.0.0.1:50051",
		Serial: Serial{
			Port:        "/dev/ttyACM0",
			BaudRate:    115200,
			ReadTimeout: 40 * time.Millisecond,
		},
		Units: units.Converter{
			MLPerCount:    1,
			CmH2OPerCount: 0.1,
			SLMPerCount:   0.1,
		},
		Log: Log{
			Level: "debug",
			File:  filepath.Join(dir, "monitor.log"),
		},
	}

	require.NoError(t, Save(path, settings))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, settings.ServerAddress, loaded.ServerAddress)
	require.Equal(t, settings.Serial, loaded.Serial)
	require.Equal(t, settings.Units, loaded.Units)
	require.Equal(t, "debug", loaded.Log.Level)
	require.Equal(t, DefaultLogMaxSizeMB, loaded.Log.MaxSizeMB)

	// File exists.
	_, err = os.Stat(path)
	require.NoError(t, err)

	require.Error(t, Save(path, nil))
}
