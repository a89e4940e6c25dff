package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"gitlab.com/tozd/go/errors"

	"github.com/pstuifzand/jsontree/internal/model"
)

const backupTimeLayout = "20060102_150405"

// BackupManager keeps timestamped copies of document files.
type BackupManager struct {
	backupDir string
}

// NewBackupManager creates a backup manager using the default directory
func NewBackupManager() (*BackupManager, error) {
	return NewBackupManagerIn(getBackupDir())
}

// NewBackupManagerIn creates a backup manager storing backups in dir.
func NewBackupManagerIn(dir string) (*BackupManager, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Errorf("%w: failed to create backup directory: %w", model.ErrIOFailure, err)
	}
	return &BackupManager{backupDir: dir}, nil
}

// Dir returns the directory holding the backups.
func (bm *BackupManager) Dir() string {
	return bm.backupDir
}

// NewSessionID returns a short identifier grouping the backups of one
// editing session.
func NewSessionID() string {
	return uuid.NewString()[:8]
}

// CreateBackup stores data as a backup of originalPath and returns the
// backup file path.
func (bm *BackupManager) CreateBackup(data []byte, originalPath string, sessionID string) (string, error) {
	if sessionID == "" {
		sessionID = NewSessionID()
	}
	backupPath := filepath.Join(bm.backupDir, bm.generateBackupFilename(originalPath, sessionID, time.Now()))
	if err := os.WriteFile(backupPath, data, 0o644); err != nil {
		return "", errors.Errorf("%w: failed to write backup file: %w", model.ErrIOFailure, err)
	}
	return backupPath, nil
}

// generateBackupFilename creates a filename in the format:
// YYYYMMDD_HHMMSS_<sessionID>_<original name>
func (bm *BackupManager) generateBackupFilename(originalPath, sessionID string, now time.Time) string {
	return fmt.Sprintf("%s_%s_%s", now.Format(backupTimeLayout), sessionID, filepath.Base(originalPath))
}

func getBackupDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".jsontree", "backups")
	}
	return filepath.Join(homeDir, ".local", "share", "jsontree", "backups")
}

// BackupMetadata holds parsed information about a backup file
type BackupMetadata struct {
	FilePath     string    // Full path to backup file
	Timestamp    time.Time // Parsed timestamp from filename
	SessionID    string
	OriginalName string // Base name of the backed up file
}

// FindBackupsForFile returns the backups of a file, oldest first. An empty
// path returns every backup.
func (bm *BackupManager) FindBackupsForFile(originalPath string) ([]BackupMetadata, error) {
	entries, err := os.ReadDir(bm.backupDir)
	if err != nil {
		return nil, errors.Errorf("%w: failed to read backup directory: %w", model.ErrIOFailure, err)
	}

	name := ""
	if originalPath != "" {
		name = filepath.Base(originalPath)
	}

	var backups []BackupMetadata
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		metadata, err := parseBackupFilename(entry.Name(), filepath.Join(bm.backupDir, entry.Name()))
		if err != nil {
			continue
		}
		if name != "" && metadata.OriginalName != name {
			continue
		}
		backups = append(backups, metadata)
	}

	slices.SortFunc(backups, func(a, b BackupMetadata) int {
		return a.Timestamp.Compare(b.Timestamp)
	})
	return backups, nil
}

// Prune removes all but the newest keep backups of a file.
func (bm *BackupManager) Prune(originalPath string, keep int) (int, error) {
	backups, err := bm.FindBackupsForFile(originalPath)
	if err != nil {
		return 0, err
	}
	removed := 0
	for len(backups)-removed > keep {
		if err := os.Remove(backups[removed].FilePath); err != nil {
			return removed, errors.Errorf("%w: failed to remove backup: %w", model.ErrIOFailure, err)
		}
		removed++
	}
	return removed, nil
}

// parseBackupFilename extracts metadata from a backup filename
func parseBackupFilename(filename string, fullPath string) (BackupMetadata, error) {
	// YYYYMMDD_HHMMSS_XXXXXXXX_name
	if len(filename) < 26 || filename[15] != '_' || filename[24] != '_' {
		return BackupMetadata{}, errors.New("not a backup filename")
	}

	timestamp, err := time.ParseInLocation(backupTimeLayout, filename[:15], time.Local)
	if err != nil {
		return BackupMetadata{}, errors.Errorf("invalid timestamp format: %w", err)
	}

	sessionID := filename[16:24]
	if strings.ContainsAny(sessionID, "_/") {
		return BackupMetadata{}, errors.New("invalid session id")
	}

	return BackupMetadata{
		FilePath:     fullPath,
		Timestamp:    timestamp,
		SessionID:    sessionID,
		OriginalName: filename[25:],
	}, nil
}
