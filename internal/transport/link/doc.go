// Package link carries packets between the monitor and the ECU.
//
// The ECU sends one status packet per polling period over a serial line and
// expects a command packet in reply. Frames carry no delimiter: the link
// relies on the idle gap between packets, so a read timeout in the middle of
// a frame discards the partial bytes and the next read starts a new frame.
// Every complete frame is checksum-verified before it leaves this package.
package link
