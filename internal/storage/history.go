package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// HistoryRecord summarizes one committed batch.
type HistoryRecord struct {
	Batch   uuid.UUID
	Time    time.Time
	Action  JournalAction
	Source  string
	Changes int
	Rooms   int
	Flags   []string
}

// History is a queryable index of committed batches, kept in sqlite next to
// the journal.
type History struct {
	db *sql.DB
}

func OpenHistory(path string) (*History, error) {
	if path == "" {
		return nil, fmt.Errorf("empty history path")
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("setting pragma: %w", err)
		}
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS batches (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		batch TEXT NOT NULL,
		at INTEGER NOT NULL,
		action TEXT NOT NULL,
		source TEXT NOT NULL,
		changes INTEGER NOT NULL,
		rooms INTEGER NOT NULL,
		flags TEXT NOT NULL
	);`)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &History{db: db}, nil
}

func (h *History) Record(ctx context.Context, r HistoryRecord) error {
	_, err := h.db.ExecContext(ctx,
		`INSERT INTO batches (batch, at, action, source, changes, rooms, flags) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.Batch.String(), r.Time.UnixMilli(), string(r.Action), r.Source, r.Changes, r.Rooms, strings.Join(r.Flags, " "),
	)
	if err != nil {
		return fmt.Errorf("recording batch %s: %w", r.Batch, err)
	}
	return nil
}

// Recent returns up to limit records, newest first.
func (h *History) Recent(ctx context.Context, limit int) ([]HistoryRecord, error) {
	rows, err := h.db.QueryContext(ctx,
		`SELECT batch, at, action, source, changes, rooms, flags FROM batches ORDER BY seq DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []HistoryRecord
	for rows.Next() {
		var (
			r      HistoryRecord
			batch  string
			at     int64
			action string
			flags  string
		)
		if err := rows.Scan(&batch, &at, &action, &r.Source, &r.Changes, &r.Rooms, &flags); err != nil {
			return nil, err
		}
		r.Batch, err = uuid.Parse(batch)
		if err != nil {
			return nil, fmt.Errorf("parsing batch id %q: %w", batch, err)
		}
		r.Time = time.UnixMilli(at).UTC()
		r.Action = JournalAction(action)
		r.Flags = strings.Fields(flags)
		out = append(out, r)
	}
	return out, rows.Err()
}

func (h *History) Close() error {
	return h.db.Close()
}
