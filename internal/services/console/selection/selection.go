// Package selection persists the current game/level choice for the game
// scripts to read.
package selection

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
)

// Selection is the currently chosen game and level pair.
type Selection struct {
	GameNumber  int `json:"game_number"`
	LevelNumber int `json:"level_number"`
}

// ErrNoSelection indicates that no selection was ever persisted.
var ErrNoSelection = errors.New("no session selection")

// FileStore persists the selection as a small JSON file. The game scripts
// read the same file, so the on-disk format is part of the contract with
// them. Last writer wins; only one session is meant to be active.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore returns a selection store writing to path.
func NewFileStore(path string) (*FileStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("selection file path is required")
	}
	return &FileStore{path: path}, nil
}

// Save overwrites the persisted selection.
func (s *FileStore) Save(sel Selection) error {
	if s == nil {
		return fmt.Errorf("selection store is not configured")
	}
	payload, err := json.Marshal(sel)
	if err != nil {
		return fmt.Errorf("encode selection: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.WriteFile(s.path, payload, 0o644); err != nil {
		return fmt.Errorf("write selection file: %w", err)
	}
	return nil
}

// Load returns the last persisted selection.
// Returns ErrNoSelection when the file does not exist or is unreadable:
// a corrupt meta file and a missing one both mean "no usable selection".
func (s *FileStore) Load() (Selection, error) {
	if s == nil {
		return Selection{}, fmt.Errorf("selection store is not configured")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	payload, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return Selection{}, ErrNoSelection
		}
		return Selection{}, fmt.Errorf("read selection file: %w", err)
	}
	var sel Selection
	if err := json.Unmarshal(payload, &sel); err != nil {
		return Selection{}, ErrNoSelection
	}
	if sel.GameNumber < 1 || sel.GameNumber > 3 {
		return Selection{}, ErrNoSelection
	}
	return sel, nil
}
