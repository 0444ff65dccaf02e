package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
)

const lockFileName = "store.lock"

// Lock is a PID file that keeps a second writer out of the data directory.
type Lock struct {
	path string
}

// NewLock returns a lock for dataDir. Nothing is created until Acquire.
func NewLock(dataDir string) *Lock {
	return &Lock{
		path: filepath.Join(dataDir, lockFileName),
	}
}

// Acquire takes the lock. It fails if a live process already holds it;
// locks left behind by dead processes are cleared first.
func (l *Lock) Acquire() error {
	err := l.create()
	if err == nil {
		return nil
	}
	if !os.IsExist(err) {
		return fmt.Errorf("failed to create lock file: %w", err)
	}

	pid, held, err := l.holder()
	if err != nil {
		return err
	}
	if held {
		return fmt.Errorf("task store is locked by another process (PID %d)", pid)
	}

	if err := l.create(); err != nil {
		if os.IsExist(err) {
			return fmt.Errorf("lock acquired by another process during retry")
		}
		return fmt.Errorf("failed to create lock file on retry: %w", err)
	}
	return nil
}

// Release removes the lock file. Releasing an unheld lock is not an error.
func (l *Lock) Release() error {
	err := os.Remove(l.path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove lock file: %w", err)
	}
	return nil
}

// IsLocked reports whether a live process holds the lock. Stale or invalid
// lock files are removed.
func (l *Lock) IsLocked() (bool, error) {
	_, held, err := l.holder()
	return held, err
}

// With runs fn while holding the lock.
func (l *Lock) With(fn func() error) error {
	if err := l.Acquire(); err != nil {
		return err
	}
	defer l.Release()
	return fn()
}

func (l *Lock) create() error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return err
	}
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	_, writeErr := fmt.Fprintf(f, "%d", os.Getpid())
	f.Close()
	if writeErr != nil {
		os.Remove(l.path)
		return fmt.Errorf("failed to write lock file: %w", writeErr)
	}
	return nil
}

// holder reads the lock file. A stale or unparsable file is removed and
// reported as not held.
func (l *Lock) holder() (int, bool, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("failed to read existing lock file: %w", err)
	}

	pid, parseErr := strconv.Atoi(strings.TrimSpace(string(data)))
	if parseErr == nil && processExists(pid) {
		return pid, true, nil
	}

	if removeErr := os.Remove(l.path); removeErr != nil && !os.IsNotExist(removeErr) {
		return 0, false, fmt.Errorf("failed to remove stale lock file: %w", removeErr)
	}
	return 0, false, nil
}

// processExists sends signal 0, which probes for a process without touching it.
func processExists(pid int) bool {
	if pid == os.Getpid() {
		return true
	}
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return process.Signal(syscall.Signal(0)) == nil
}
