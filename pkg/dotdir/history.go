package dotdir

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	historyFile = "history.json"
)

// HistoryState records the last set of URLs a research session ingested.
// "clipper research" with no URLs resumes from it.
type HistoryState struct {
	// URLs is the reading list, in the order it was ingested.
	URLs []string `json:"urls"`

	// IngestedAt is when the list was last ingested.
	IngestedAt time.Time `json:"ingested_at"`
}

// LoadHistory loads the reading history from a target .clipper/history.json.
// Returns nil, nil if no history exists yet.
// If overrideDir is non-empty, it is used instead of the default ~/.clipper/ location.
func (m *Manager) LoadHistory(overrideDir string) (*HistoryState, error) {
	dir, err := m.Target(overrideDir)
	if err != nil {
		return nil, err
	}

	path := filepath.Join(dir, historyFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading history: %w", err)
	}

	state := &HistoryState{}
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("parsing history: %w", err)
	}

	return state, nil
}

// SaveHistory persists the reading history to a target .clipper/history.json.
func (m *Manager) SaveHistory(state *HistoryState, overrideDir string) error {
	if state == nil {
		return errors.New("cannot save nil history")
	}

	dir, err := m.Target(overrideDir)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling history: %w", err)
	}

	path := filepath.Join(dir, historyFile)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing history: %w", err)
	}

	return nil
}

// ClearHistory removes the reading history file.
// Returns nil if the file doesn't exist (already cleared).
func (m *Manager) ClearHistory(overrideDir string) error {
	dir, err := m.Target(overrideDir)
	if err != nil {
		return err
	}

	path := filepath.Join(dir, historyFile)
	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("removing history: %w", err)
	}

	return nil
}
