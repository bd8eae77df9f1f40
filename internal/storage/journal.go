package storage

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"
	"github.com/pixil98/go-mudmap/internal/change"
)

// JournalAction names what produced a journal entry.
type JournalAction string

const (
	ActionApply  JournalAction = "apply"
	ActionUndo   JournalAction = "undo"
	ActionRedo   JournalAction = "redo"
	ActionMerge  JournalAction = "merge"
	ActionRevert JournalAction = "revert"
	ActionSave   JournalAction = "save"
)

// JournalEntry is one line of the change journal.
type JournalEntry struct {
	Batch   uuid.UUID     `json:"batch"`
	Time    time.Time     `json:"time"`
	Action  JournalAction `json:"action"`
	Source  string        `json:"source,omitempty"`
	Flags   []string      `json:"flags,omitempty"`
	Changes change.List   `json:"changes,omitempty"`
}

// Journal appends entries to a file of concatenated zstd frames, one frame
// per entry, so a crash loses at most the entry being written.
type Journal struct {
	path string
	mu   sync.Mutex
}

func NewJournal(path string) *Journal {
	return &Journal{path: path}
}

func (j *Journal) Path() string {
	return j.path
}

func (j *Journal) Append(e JournalEntry) error {
	line, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encoding journal entry: %w", err)
	}
	line = append(line, '\n')

	j.mu.Lock()
	defer j.mu.Unlock()

	f, err := os.OpenFile(j.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("opening journal: %w", err)
	}

	zw, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return fmt.Errorf("creating encoder: %w", err)
	}
	if _, err := zw.Write(line); err != nil {
		_ = zw.Close()
		_ = f.Close()
		return fmt.Errorf("writing journal: %w", err)
	}
	if err := zw.Close(); err != nil {
		_ = f.Close()
		return fmt.Errorf("flushing journal: %w", err)
	}
	return f.Close()
}

// ReadJournal returns every entry in the journal at path. A missing file is
// an empty journal.
func ReadJournal(path string) ([]JournalEntry, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	zr, err := zstd.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("creating decoder: %w", err)
	}
	defer zr.Close()

	sc := bufio.NewScanner(zr)
	sc.Buffer(make([]byte, 0, 64*1024), maxSnapshotLine)

	var out []JournalEntry
	for sc.Scan() {
		var e JournalEntry
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			return nil, fmt.Errorf("entry %d: %w", len(out)+1, err)
		}
		out = append(out, e)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading journal: %w", err)
	}
	return out, nil
}
