// Package signal models the completion marker the game scripts leave behind.
//
// The marker is level-triggered: the game script sets it when the round
// ends, and the console consumes it with a single test-and-clear poll. The
// storage medium is an implementation detail behind the Channel contract.
package signal

import (
	"fmt"
	"os"
	"strings"
	"sync"
)

// Channel is a one-shot completion signal between the console and the
// launched game process.
type Channel interface {
	// Set raises the signal.
	Set() error
	// Clear lowers the signal. Clearing an absent signal is not an error.
	Clear() error
	// TakeIfSet atomically tests and clears the signal. It returns true at
	// most once per Set.
	TakeIfSet() (bool, error)
}

// FileMarker signals completion through the existence of a flag file.
type FileMarker struct {
	mu   sync.Mutex
	path string
}

// NewFileMarker returns a file-backed completion channel at path.
func NewFileMarker(path string) (*FileMarker, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("marker file path is required")
	}
	return &FileMarker{path: path}, nil
}

// Set creates the flag file.
func (m *FileMarker) Set() error {
	if m == nil {
		return fmt.Errorf("marker is not configured")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := os.WriteFile(m.path, nil, 0o644); err != nil {
		return fmt.Errorf("write marker file: %w", err)
	}
	return nil
}

// Clear removes the flag file. A missing file is not an error.
func (m *FileMarker) Clear() error {
	if m == nil {
		return fmt.Errorf("marker is not configured")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := os.Remove(m.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove marker file: %w", err)
	}
	return nil
}

// TakeIfSet removes the flag file and reports whether it existed. The
// removal is the atomic test-and-clear: whichever caller wins the unlink
// observes true, everyone else observes false.
func (m *FileMarker) TakeIfSet() (bool, error) {
	if m == nil {
		return false, fmt.Errorf("marker is not configured")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	err := os.Remove(m.path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, fmt.Errorf("take marker file: %w", err)
}

var _ Channel = (*FileMarker)(nil)
