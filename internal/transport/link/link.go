package link

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	goserial "github.com/goburrow/serial"

	"github.com/oshokin/vent-monitor/internal/config"
	"github.com/oshokin/vent-monitor/internal/packet"
)

// ErrChecksumMismatch is returned for a complete frame with a bad checksum.
var ErrChecksumMismatch = errors.New("status packet checksum mismatch")

// Stats counts link-level events since the link was opened.
type Stats struct {
	// Valid is the number of frames that passed the checksum.
	Valid uint64
	// BadChecksum is the number of complete frames rejected by the checksum.
	BadChecksum uint64
	// Partial is the number of incomplete frames discarded on an idle gap.
	Partial uint64
	// Dropped is the number of frames missing from the sequence counter.
	Dropped uint64
}

// Link reads status frames and writes command frames over a byte stream.
type Link struct {
	// rw is the underlying serial port or replay file.
	rw io.ReadWriter
	// closer releases rw, if it can be released.
	closer io.Closer

	// readMu guards the frame buffer and sequence tracking.
	readMu  sync.Mutex
	frame   [packet.Size]byte
	lastSeq uint16
	haveSeq bool

	// statsMu guards stats so they can be read while a read blocks.
	statsMu sync.Mutex
	stats   Stats

	// writeMu serializes command writes.
	writeMu sync.Mutex
}

// New wraps an already open stream.
func New(rw io.ReadWriter) *Link {
	l := &Link{rw: rw}

	if c, ok := rw.(io.Closer); ok {
		l.closer = c
	}

	return l
}

// Open opens the configured serial port.
func Open(cfg *config.Serial) (*Link, error) {
	port, err := OpenPort(cfg)
	if err != nil {
		return nil, err
	}

	return New(port), nil
}

// OpenPort opens the configured serial port without framing.
func OpenPort(cfg *config.Serial) (goserial.Port, error) {
	port, err := goserial.Open(&goserial.Config{
		Address:  cfg.Port,
		BaudRate: cfg.BaudRate,
		DataBits: cfg.DataBits,
		StopBits: cfg.StopBits,
		Parity:   cfg.Parity,
		Timeout:  cfg.ReadTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", cfg.Port, err)
	}

	return port, nil
}

// ReadFrame blocks until a complete, checksum-valid status frame arrives,
// the context is canceled or the stream fails. The returned slice is owned
// by the caller. A frame with a bad checksum is reported with
// ErrChecksumMismatch; the caller may keep reading.
func (l *Link) ReadFrame(ctx context.Context) ([]byte, error) {
	l.readMu.Lock()
	defer l.readMu.Unlock()

	n := 0

	for n < packet.Size {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		read, err := l.rw.Read(l.frame[n:])
		n += read

		switch {
		case err == nil:
		case isTimeout(err):
			if n > 0 && n < packet.Size {
				l.count(func(s *Stats) { s.Partial++ })

				n = 0
			}
		case errors.Is(err, io.EOF) && n == packet.Size:
		default:
			return nil, fmt.Errorf("read status packet: %w", err)
		}
	}

	if !packet.VerifyChecksum(l.frame[:]) {
		l.count(func(s *Stats) { s.BadChecksum++ })

		return nil, ErrChecksumMismatch
	}

	l.count(func(s *Stats) { s.Valid++ })
	l.trackSequenceLocked(uint16(l.frame[0]) | uint16(l.frame[1])<<8)

	frame := make([]byte, packet.Size)
	copy(frame, l.frame[:])

	return frame, nil
}

// trackSequenceLocked counts gaps in the 16-bit sequence counter.
func (l *Link) trackSequenceLocked(seq uint16) {
	if l.haveSeq {
		if gap := seq - l.lastSeq - 1; gap != 0 && gap < 1<<15 {
			l.count(func(s *Stats) { s.Dropped += uint64(gap) })
		}
	}

	l.lastSeq, l.haveSeq = seq, true
}

// WriteCommand sends a command packet to the ECU.
func (l *Link) WriteCommand(cmd *packet.Command) error {
	l.writeMu.Lock()
	defer l.writeMu.Unlock()

	if _, err := l.rw.Write(cmd.Encode()); err != nil {
		return fmt.Errorf("write command packet: %w", err)
	}

	return nil
}

// WriteStatus sends a status packet. Only the bench simulator plays the ECU
// side of the link.
func (l *Link) WriteStatus(rec *packet.Record) error {
	l.writeMu.Lock()
	defer l.writeMu.Unlock()

	if _, err := l.rw.Write(packet.Encode(rec)); err != nil {
		return fmt.Errorf("write status packet: %w", err)
	}

	return nil
}

// Stats returns a copy of the link counters.
func (l *Link) Stats() Stats {
	l.statsMu.Lock()
	defer l.statsMu.Unlock()

	return l.stats
}

func (l *Link) count(update func(*Stats)) {
	l.statsMu.Lock()
	defer l.statsMu.Unlock()

	update(&l.stats)
}

// Close releases the underlying stream.
func (l *Link) Close() error {
	if l.closer == nil {
		return nil
	}

	return l.closer.Close()
}

// isTimeout reports whether err means "no bytes within the read timeout".
func isTimeout(err error) bool {
	return errors.Is(err, goserial.ErrTimeout) || errors.Is(err, os.ErrDeadlineExceeded)
}
