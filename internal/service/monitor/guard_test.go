package monitor

import (
	"errors"
	"os"
	"testing"

	"github.com/mitchellh/go-ps"
	"github.com/stretchr/testify/require"
)

var errTestList = errors.New("test list error")

// fakeProcess implements ps.Process.
type fakeProcess struct {
	pid        int
	executable string
}

// Pid returns the process ID.
func (p fakeProcess) Pid() int { return p.pid }

// PPid returns the parent process ID.
func (p fakeProcess) PPid() int { return 1 }

// Executable returns the executable name.
func (p fakeProcess) Executable() string { return p.executable }

func listing(processes ...ps.Process) processLister {
	return func() ([]ps.Process, error) {
		return processes, nil
	}
}

// TestEnsureSingleInstance covers self, foreign and failing listings.
func TestEnsureSingleInstance(t *testing.T) {
	t.Parallel()

	self := fakeProcess{pid: os.Getpid(), executable: ProcessName}

	require.NoError(t, ensureSingleInstance(listing(self, fakeProcess{pid: 1, executable: "init"}), ProcessName))

	err := ensureSingleInstance(listing(self, fakeProcess{pid: os.Getpid() + 1, executable: ProcessName}), ProcessName)
	require.ErrorIs(t, err, ErrAlreadyRunning)

	err = ensureSingleInstance(func() ([]ps.Process, error) { return nil, errTestList }, ProcessName)
	require.ErrorIs(t, err, errTestList)

	// The real process table never holds a second test binary under this name.
	require.NoError(t, ensureSingleInstance(ps.Processes, "vent-monitor-test-absent"))
}
