package storage

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/pixil98/go-mudmap/internal/infomark"
	"github.com/pixil98/go-mudmap/internal/room"
)

const (
	SnapshotVersion = 1

	maxSnapshotLine = 16 << 20
)

// ErrNoSnapshot is returned by SnapshotFile.Load when nothing was saved yet.
var ErrNoSnapshot = errors.New("no snapshot")

// SnapshotHeader is the first line of a snapshot file.
type SnapshotHeader struct {
	Version int                        `json:"version"`
	SavedAt time.Time                  `json:"saved_at"`
	Rooms   int                        `json:"rooms"`
	Marks   int                        `json:"marks"`
	Meta    map[string]json.RawMessage `json:"meta,omitempty"`
}

// SetMeta stores v under key after marshalling it to JSON.
func (h *SnapshotHeader) SetMeta(key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshalling meta %q: %w", key, err)
	}
	if h.Meta == nil {
		h.Meta = map[string]json.RawMessage{}
	}
	h.Meta[key] = b
	return nil
}

// GetMeta unmarshals the value at key into out. It reports false when the
// key is absent.
func (h *SnapshotHeader) GetMeta(key string, out any) (bool, error) {
	raw, ok := h.Meta[key]
	if !ok || len(raw) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return true, fmt.Errorf("unmarshalling meta %q: %w", key, err)
	}
	return true, nil
}

// Snapshot is a whole map in external ids.
type Snapshot struct {
	Header SnapshotHeader
	Rooms  []room.ExternalRawRoom
	Marks  []infomark.Fields
}

// WriteSnapshot writes s as a zstd compressed stream of JSON lines: the
// header, then one line per room, then one line per mark.
func WriteSnapshot(path string, s *Snapshot) error {
	hdr := s.Header
	hdr.Version = SnapshotVersion
	hdr.Rooms = len(s.Rooms)
	hdr.Marks = len(s.Marks)
	if hdr.SavedAt.IsZero() {
		hdr.SavedAt = time.Now().UTC()
	}

	return atomicWrite(path, 0644, func(w io.Writer) error {
		zw, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return fmt.Errorf("creating encoder: %w", err)
		}
		enc := json.NewEncoder(zw)

		if err := enc.Encode(&hdr); err != nil {
			_ = zw.Close()
			return fmt.Errorf("encoding header: %w", err)
		}
		for i := range s.Rooms {
			if err := enc.Encode(&s.Rooms[i]); err != nil {
				_ = zw.Close()
				return fmt.Errorf("encoding room %s: %w", s.Rooms[i].Id, err)
			}
		}
		for i := range s.Marks {
			if err := enc.Encode(&s.Marks[i]); err != nil {
				_ = zw.Close()
				return fmt.Errorf("encoding mark %d: %w", i, err)
			}
		}
		return zw.Close()
	})
}

// ReadSnapshot reads a file produced by WriteSnapshot.
func ReadSnapshot(path string) (*Snapshot, error) {
	f, err := os.Open(path)
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

	line := 0
	next := func(out any) error {
		if !sc.Scan() {
			if err := sc.Err(); err != nil {
				return fmt.Errorf("line %d: %w", line+1, err)
			}
			return fmt.Errorf("line %d: unexpected end of snapshot", line+1)
		}
		line++
		if err := json.Unmarshal(sc.Bytes(), out); err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
		return nil
	}

	s := &Snapshot{}
	if err := next(&s.Header); err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	if s.Header.Version != SnapshotVersion {
		return nil, fmt.Errorf("unsupported snapshot version %d", s.Header.Version)
	}
	if s.Header.Rooms < 0 || s.Header.Marks < 0 {
		return nil, fmt.Errorf("invalid snapshot header")
	}

	s.Rooms = make([]room.ExternalRawRoom, s.Header.Rooms)
	for i := range s.Rooms {
		if err := next(&s.Rooms[i]); err != nil {
			return nil, fmt.Errorf("reading room %d: %w", i, err)
		}
	}
	s.Marks = make([]infomark.Fields, s.Header.Marks)
	for i := range s.Marks {
		if err := next(&s.Marks[i]); err != nil {
			return nil, fmt.Errorf("reading mark %d: %w", i, err)
		}
	}
	if sc.Scan() {
		return nil, fmt.Errorf("line %d: trailing data after %d marks", line+1, s.Header.Marks)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	return s, nil
}

// SnapshotFile is a snapshot at a fixed path.
type SnapshotFile struct {
	path string
}

func NewSnapshotFile(path string) *SnapshotFile {
	return &SnapshotFile{path: path}
}

func (f *SnapshotFile) Path() string {
	return f.path
}

func (f *SnapshotFile) Load() (*Snapshot, error) {
	s, err := ReadSnapshot(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("reading snapshot %s: %w", f.path, err)
	}
	return s, nil
}

func (f *SnapshotFile) Save(s *Snapshot) error {
	return WriteSnapshot(f.path, s)
}
