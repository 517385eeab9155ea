// Package common holds helpers shared by the banner commands.
//
// It provides a gRPC client for the monitor service with per-call timeouts
// and detects the local actor (hostname/username) recorded with every
// acknowledgment.
//
//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common
