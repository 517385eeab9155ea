package monitor

import (
	"errors"
	"fmt"
	"os"

	"github.com/mitchellh/go-ps"
)

// ProcessName is the executable name of the monitor binary.
const ProcessName = "vent-monitor"

// ErrAlreadyRunning means another monitor process owns the ECU link.
var ErrAlreadyRunning = errors.New("another monitor process is running")

// processLister lists running processes.
type processLister func() ([]ps.Process, error)

// ensureSingleInstance fails when a process other than this one runs the
// named executable. Two monitors on one serial port would split the frames
// between them.
func ensureSingleInstance(list processLister, executable string) error {
	processList, err := list()
	if err != nil {
		return fmt.Errorf("list processes: %w", err)
	}

	thisProcessID := os.Getpid()

	for _, process := range processList {
		if process.Pid() == thisProcessID {
			continue
		}

		if process.Executable() == executable {
			return fmt.Errorf("%w: pid %d", ErrAlreadyRunning, process.Pid())
		}
	}

	return nil
}
