package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/oshokin/vent-monitor/internal/units"
)

// Config holds settings shared by the monitor binaries.
type Config struct {
	// ServerAddress is the gRPC address the monitor listens on and the banner dials.
	ServerAddress string `yaml:"server_addr"`
	// Timeout is the duration for RPC calls.
	Timeout time.Duration `yaml:"timeout"`
	// Serial describes the link to the ECU.
	Serial Serial `yaml:"serial"`
	// Units holds the calibration used to convert device counts.
	Units units.Converter `yaml:"units"`
	// Log controls log level and the optional rotating log file.
	Log Log `yaml:"log"`
}

// Serial describes the ECU serial link.
type Serial struct {
	// Port is the device path, e.g. /dev/ttyACM0.
	Port string `yaml:"port"`
	// BaudRate of the link.
	BaudRate int `yaml:"baud_rate"`
	// DataBits per character.
	DataBits int `yaml:"data_bits"`
	// StopBits per character.
	StopBits int `yaml:"stop_bits"`
	// Parity is "N", "E" or "O".
	Parity string `yaml:"parity"`
	// ReadTimeout is slightly shorter than the ECU send period so an
	// incomplete frame is discarded before the next one starts.
	ReadTimeout time.Duration `yaml:"read_timeout"`
}

// Log controls logging.
type Log struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`
	// File enables a rotating log file when set.
	File string `yaml:"file"`
	// MaxSizeMB triggers rotation.
	MaxSizeMB int `yaml:"max_size_mb"`
	// MaxBackups is the number of rotated files kept.
	MaxBackups int `yaml:"max_backups"`
	// MaxAgeDays is how long rotated files are kept.
	MaxAgeDays int `yaml:"max_age_days"`
	// Compress gzips rotated files.
	Compress bool `yaml:"compress"`
}

const (
	// DefaultConfigFilename is the default filename for settings.
	DefaultConfigFilename = "vent-monitor-settings.yaml"

	// DefaultTimeout is the default duration for RPC calls.
	DefaultTimeout = 5 * time.Second

	// DefaultBaudRate matches the ECU firmware.
	DefaultBaudRate = 38400

	// DefaultReadTimeout is a little less than the ECU polling period.
	DefaultReadTimeout = 55 * time.Millisecond

	// DefaultLogLevel is used when none is configured.
	DefaultLogLevel = "info"

	// DefaultLogMaxSizeMB is the rotation size of the log file.
	DefaultLogMaxSizeMB = 20

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errServerAddressRequired is returned when server address is missing.
	errServerAddressRequired = errors.New("server address must be provided")
	// errBadParity is returned for parity values other than N, E, O.
	errBadParity = errors.New("parity must be one of N, E, O")
)

// Load reads configuration from the provided path and validates essential fields.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes cfg to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks required fields and fills defaults for optional ones.
func Validate(settings *Config) error {
	if settings.ServerAddress == "" {
		return errServerAddressRequired
	}

	if _, err := net.ResolveTCPAddr("tcp", settings.ServerAddress); err != nil {
		return fmt.Errorf("invalid server address: %w", err)
	}

	if settings.Timeout <= 0 {
		settings.Timeout = DefaultTimeout
	}

	if err := validateSerial(&settings.Serial); err != nil {
		return err
	}

	settings.Units.FillDefaults()

	if err := settings.Units.Validate(); err != nil {
		return fmt.Errorf("invalid units: %w", err)
	}

	if settings.Log.Level == "" {
		settings.Log.Level = DefaultLogLevel
	}

	if settings.Log.File != "" && settings.Log.MaxSizeMB <= 0 {
		settings.Log.MaxSizeMB = DefaultLogMaxSizeMB
	}

	return nil
}

// validateSerial fills link defaults (38400 8N1) and checks parity.
func validateSerial(s *Serial) error {
	if s.BaudRate <= 0 {
		s.BaudRate = DefaultBaudRate
	}

	if s.DataBits <= 0 {
		s.DataBits = 8
	}

	if s.StopBits <= 0 {
		s.StopBits = 1
	}

	switch s.Parity {
	case "":
		s.Parity = "N"
	case "N", "E", "O":
	default:
		return errBadParity
	}

	if s.ReadTimeout <= 0 {
		s.ReadTimeout = DefaultReadTimeout
	}

	return nil
}
