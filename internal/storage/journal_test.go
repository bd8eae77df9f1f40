package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pixil98/go-mudmap/internal/change"
	"github.com/pixil98/go-mudmap/internal/coordinate"
	"github.com/pixil98/go-testutil"
)

func TestJournal_AppendAndRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.zst")
	j := NewJournal(path)

	entries := []JournalEntry{
		{
			Batch:  uuid.New(),
			Time:   time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
			Action: ActionApply,
			Source: "console",
			Flags:  []string{"BoundsChanged"},
			Changes: change.List{
				change.AddPermanentRoom{Position: coordinate.Coordinate{X: 1}},
			},
		},
		{
			Batch:  uuid.New(),
			Time:   time.Date(2024, 1, 2, 3, 5, 0, 0, time.UTC),
			Action: ActionUndo,
		},
	}
	for _, e := range entries {
		if err := j.Append(e); err != nil {
			t.Fatalf("unexpected error appending: %v", err)
		}
	}

	got, err := ReadJournal(path)
	if err != nil {
		t.Fatalf("unexpected error reading: %v", err)
	}
	testutil.AssertEqual(t, "count", len(got), 2)
	testutil.AssertEqual(t, "first batch", got[0].Batch, entries[0].Batch)
	testutil.AssertEqual(t, "first action", got[0].Action, ActionApply)
	testutil.AssertEqual(t, "first source", got[0].Source, "console")
	testutil.AssertEqual(t, "first flags", got[0].Flags, []string{"BoundsChanged"})
	testutil.AssertEqual(t, "first changes", len(got[0].Changes), 1)
	testutil.AssertEqual(t, "first change", got[0].Changes[0].Name(), entries[0].Changes[0].Name())
	testutil.AssertEqual(t, "second action", got[1].Action, ActionUndo)
	testutil.AssertEqual(t, "second changes", len(got[1].Changes), 0)
}

func TestReadJournal_Missing(t *testing.T) {
	got, err := ReadJournal(filepath.Join(t.TempDir(), "nope.zst"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "count", len(got), 0)
}

func TestHistory_RecordAndRecent(t *testing.T) {
	ctx := context.Background()
	h, err := OpenHistory(filepath.Join(t.TempDir(), "db", "history.db"))
	if err != nil {
		t.Fatalf("unexpected error opening: %v", err)
	}
	defer func() { _ = h.Close() }()

	batches := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	for i, b := range batches {
		err := h.Record(ctx, HistoryRecord{
			Batch:   b,
			Time:    time.UnixMilli(int64(1000 * (i + 1))),
			Action:  ActionApply,
			Source:  "nats",
			Changes: i + 1,
			Rooms:   10 + i,
			Flags:   []string{"MARKS", "BOUNDS"},
		})
		if err != nil {
			t.Fatalf("unexpected error recording: %v", err)
		}
	}

	got, err := h.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("unexpected error querying: %v", err)
	}
	testutil.AssertEqual(t, "count", len(got), 2)
	testutil.AssertEqual(t, "newest", got[0].Batch, batches[2])
	testutil.AssertEqual(t, "next", got[1].Batch, batches[1])
	testutil.AssertEqual(t, "changes", got[0].Changes, 3)
	testutil.AssertEqual(t, "rooms", got[0].Rooms, 12)
	testutil.AssertEqual(t, "source", got[0].Source, "nats")
	testutil.AssertEqual(t, "flags", got[0].Flags, []string{"MARKS", "BOUNDS"})
	testutil.AssertEqual(t, "time", got[0].Time.UnixMilli(), int64(3000))
}

func TestOpenHistory_EmptyPath(t *testing.T) {
	_, err := OpenHistory("")
	testutil.AssertErrorContains(t, err, "empty history path")
}
