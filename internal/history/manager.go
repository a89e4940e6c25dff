// Package history persists command history between sessions.
package history

import (
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
	"gitlab.com/tozd/go/errors"
)

// Manager handles loading and saving history to TOML files
type Manager struct {
	historyDir string
	maxEntries int
}

// HistoryFile represents the structure of a history TOML file
type HistoryFile struct {
	Entries []string `toml:"entries"`
}

// NewManager creates a history manager in ~/.local/share/jsontree/history/.
func NewManager(maxEntries int) (*Manager, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return NewManagerIn(filepath.Join(homeDir, ".local", "share", "jsontree", "history"), maxEntries)
}

// NewManagerIn creates a history manager storing files in dir. Saved
// histories keep at most maxEntries of the newest entries; zero or less
// keeps everything.
func NewManagerIn(dir string, maxEntries int) (*Manager, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Errorf("failed to create history directory: %w", err)
	}
	return &Manager{historyDir: dir, maxEntries: maxEntries}, nil
}

// Load loads history entries from a TOML file
func (m *Manager) Load(filename string) ([]string, error) {
	data, err := os.ReadFile(filepath.Join(m.historyDir, filename))
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, errors.WithStack(err)
	}

	var histFile HistoryFile
	if err := toml.Unmarshal(data, &histFile); err != nil {
		// A corrupted file starts a fresh history.
		return []string{}, nil
	}
	return histFile.Entries, nil
}

// Save saves history entries to a TOML file
func (m *Manager) Save(filename string, entries []string) error {
	if m.maxEntries > 0 && len(entries) > m.maxEntries {
		entries = entries[len(entries)-m.maxEntries:]
	}

	data, err := toml.Marshal(HistoryFile{Entries: entries})
	if err != nil {
		return errors.WithStack(err)
	}
	return errors.WithStack(os.WriteFile(filepath.Join(m.historyDir, filename), data, 0o644))
}

// Append adds one entry to a history file. An entry equal to the newest one
// is not repeated.
func (m *Manager) Append(filename, entry string) error {
	entries, err := m.Load(filename)
	if err != nil {
		return err
	}
	if n := len(entries); n > 0 && entries[n-1] == entry {
		return nil
	}
	return m.Save(filename, append(entries, entry))
}
