// Package pidfile enforces the single-daemon rule: only one reinforced
// instance may own the engine and control sockets at a time.
package pidfile

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"
	"time"
)

// PIDFile guards a daemon instance through a pid file on disk.
type PIDFile struct {
	path string
}

// New creates a PIDFile manager for the given path.
func New(path string) *PIDFile {
	return &PIDFile{path: path}
}

// Acquire claims the pid file for this process. A live holder makes the
// claim fail; a stale file left behind by a dead daemon is taken over.
func (p *PIDFile) Acquire() error {
	if pid, ok := p.readPID(); ok {
		if isProcessRunning(pid) {
			return fmt.Errorf("daemon is already running (PID %d)", pid)
		}
		_ = os.Remove(p.path)
	}

	data := fmt.Sprintf("%d\n", os.Getpid())
	if err := os.WriteFile(p.path, []byte(data), 0644); err != nil {
		return fmt.Errorf("failed to write PID file: %w", err)
	}
	return nil
}

// Release removes the pid file. A missing file is not an error.
func (p *PIDFile) Release() error {
	if err := os.Remove(p.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove PID file: %w", err)
	}
	return nil
}

// KillExisting terminates the daemon instance recorded in the PID file.
// It sends SIGTERM and waits briefly for the process to exit.
func (p *PIDFile) KillExisting() error {
	pid, ok := p.readPID()
	if !ok {
		_ = os.Remove(p.path)
		return nil
	}

	if !isProcessRunning(pid) {
		_ = os.Remove(p.path)
		return nil
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("failed to find process %d: %w", pid, err)
	}

	if err := process.Signal(syscall.SIGTERM); err != nil {
		return fmt.Errorf("failed to signal process %d: %w", pid, err)
	}

	// Give the daemon a moment to shut down cleanly
	for i := 0; i < 50; i++ {
		if !isProcessRunning(pid) {
			_ = os.Remove(p.path)
			return nil
		}
		time.Sleep(100 * time.Millisecond)
	}

	return fmt.Errorf("process %d did not exit after SIGTERM", pid)
}

// readPID reports the pid recorded in the file, if one can be parsed.
func (p *PIDFile) readPID() (int, bool) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		return 0, false
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, false
	}
	return pid, true
}

// isProcessRunning probes a pid with signal 0. EPERM still counts as
// running: the process exists but belongs to another user.
func isProcessRunning(pid int) bool {
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = process.Signal(syscall.Signal(0))
	switch {
	case err == nil:
		return true
	case errors.Is(err, syscall.EPERM):
		return true
	default:
		return false
	}
}
