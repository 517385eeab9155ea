// Package coordinator owns the live alarm state of one ECU connection.
//
// The transport feeds it every alarm status word it receives; the UI reads
// the most urgent pending alarm and acknowledges it. All bookkeeping happens
// under a single mutex so a status update is never observed half applied.
package coordinator
