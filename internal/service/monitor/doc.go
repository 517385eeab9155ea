// Package monitor runs the bedside monitor process.
//
// It reads status packets from the ECU link, keeps the latest parameter set,
// feeds the alarm status word to the coordinator and answers every packet
// with a command carrying the acknowledged alarm mask. The alarm banner
// reaches the coordinator through the gRPC API.
package monitor
