package command

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-mudmap/internal/storage"
)

// StorageConfig locates the files the map lives in. Areas are hand authored
// asset files; the rest is written by the service.
type StorageConfig struct {
	Areas        AssetConfig[*storage.AreaSpec] `json:"areas"`
	SnapshotPath string                         `json:"snapshot_path"`
	JournalPath  string                         `json:"journal_path,omitempty"`
	HistoryPath  string                         `json:"history_path,omitempty"`
}

func (c *StorageConfig) validate() error {
	el := errors.NewErrorList()
	el.Add(c.Areas.Validate("areas"))

	if c.SnapshotPath == "" {
		el.Add(fmt.Errorf("snapshot_path is required"))
	}
	for name, path := range map[string]string{
		"snapshot_path": c.SnapshotPath,
		"journal_path":  c.JournalPath,
		"history_path":  c.HistoryPath,
	} {
		if path == "" {
			continue
		}
		if _, err := os.Stat(filepath.Dir(path)); err != nil {
			el.Add(fmt.Errorf("%s: invalid directory for %q: %w", name, path, err))
		}
	}
	return el.Err()
}

func (c *StorageConfig) buildSnapshots() *storage.SnapshotFile {
	return storage.NewSnapshotFile(c.SnapshotPath)
}

// buildJournal returns nil when no journal is configured.
func (c *StorageConfig) buildJournal() *storage.Journal {
	if c.JournalPath == "" {
		return nil
	}
	return storage.NewJournal(c.JournalPath)
}

// buildHistory returns nil when no history database is configured.
func (c *StorageConfig) buildHistory() (*storage.History, error) {
	if c.HistoryPath == "" {
		return nil, nil
	}
	h, err := storage.OpenHistory(c.HistoryPath)
	if err != nil {
		return nil, fmt.Errorf("opening history: %w", err)
	}
	return h, nil
}

type AssetConfig[T storage.ValidatingSpec] struct {
	Path string `json:"path"`
}

func (c *AssetConfig[T]) Validate(name string) error {
	if c.Path == "" {
		return fmt.Errorf("%s: path is required", name)
	}
	_, err := os.Stat(c.Path)
	if err != nil {
		return fmt.Errorf("%s: invalid path %q: %w", name, c.Path, err)
	}

	return nil
}

func (c *AssetConfig[T]) BuildFileStore() (*storage.FileStore[T], error) {
	return storage.NewFileStore[T](c.Path)
}
