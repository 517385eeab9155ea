package version

import "fmt"

// Set at build time, e.g.
// -ldflags "-X github.com/oshokin/vent-monitor/internal/version.Version=0.3.1".
var (
	// Version is the release of the monitor tools.
	Version = "0.1.0-dev"
	// Commit is the short git SHA, or "none" for local builds.
	Commit = "none"
	// BuildTime is the UTC build timestamp.
	BuildTime = "unknown"
)

// Short returns only the semantic version string.
func Short() string {
	return Version
}

// Full returns version, commit and build time on one line.
func Full() string {
	return fmt.Sprintf("version: %s, commit: %s, built at: %s", Version, Commit, BuildTime)
}

// UserAgent identifies a tool in gRPC metadata, e.g. "vent-alarms/0.1.0-dev".
func UserAgent(tool string) string {
	return tool + "/" + Short()
}

// LogFields returns the build metadata as logger key-value pairs.
func LogFields() []any {
	return []any{"version", Version, "commit", Commit, "build_time", BuildTime}
}
