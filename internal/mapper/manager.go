// Package mapper owns the live map. Every mutation goes through a single
// Manager, which keeps the undo history, journals each batch and saves
// snapshots.
package mapper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/pixil98/go-mudmap/internal/change"
	"github.com/pixil98/go-mudmap/internal/coordinate"
	"github.com/pixil98/go-mudmap/internal/gamemap"
	"github.com/pixil98/go-mudmap/internal/progress"
	"github.com/pixil98/go-mudmap/internal/roomid"
	"github.com/pixil98/go-mudmap/internal/storage"
	"github.com/pixil98/go-mudmap/internal/world"
)

const DefaultMaxUndo = 100

// Snapshot header meta keys.
const (
	metaNextExternalId = "next_external_id"
	metaLocalSpaces    = "local_spaces"
)

// Undo and redo may change anything, so clients redraw everything.
const historyFlags = gamemap.BoundsChanged | gamemap.RoomMeshNeedsUpdate | gamemap.MarksChanged

var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
	ErrNoChanges     = errors.New("batch made no changes")
)

type Snapshotter interface {
	Load() (*storage.Snapshot, error)
	Save(*storage.Snapshot) error
}

type Journaler interface {
	Append(storage.JournalEntry) error
}

type Recorder interface {
	Record(context.Context, storage.HistoryRecord) error
}

// Update describes a committed batch.
type Update struct {
	Batch   uuid.UUID
	Action  storage.JournalAction
	Source  string
	Flags   gamemap.RoomUpdateFlags
	Changes int
	Rooms   int
}

type Manager struct {
	mu sync.Mutex

	current atomic.Pointer[gamemap.Map]
	saved   atomic.Pointer[gamemap.Map]

	undo    []gamemap.Map
	redo    []gamemap.Map
	maxUndo int

	dirty       bool
	unchecked   bool
	lastSave    time.Time
	autosave    time.Duration
	checkOnTick bool
	opts        world.ApplyOptions

	snapshots Snapshotter
	journal   Journaler
	history   Recorder

	subMu       sync.RWMutex
	subscribers []func(Update)

	now func() time.Time
}

func NewManager(opts ...ManagerOpt) *Manager {
	m := &Manager{
		maxUndo: DefaultMaxUndo,
		opts:    world.DefaultApplyOptions(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}

	empty := gamemap.New()
	m.current.Store(&empty)
	m.saved.Store(&empty)
	m.lastSave = m.now()
	return m
}

// Current returns the live map. The returned map is immutable and stays
// valid after later batches are applied.
func (m *Manager) Current() gamemap.Map {
	return *m.current.Load()
}

// Saved returns the map as it was last loaded or saved.
func (m *Manager) Saved() gamemap.Map {
	return *m.saved.Load()
}

func (m *Manager) Dirty() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dirty
}

// HistoryDepth returns the number of undo and redo steps available.
func (m *Manager) HistoryDepth() (int, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.undo), len(m.redo)
}

// Subscribe registers fn to be called after every committed batch.
func (m *Manager) Subscribe(fn func(Update)) {
	m.subMu.Lock()
	defer m.subMu.Unlock()
	m.subscribers = append(m.subscribers, fn)
}

func (m *Manager) notify(u Update) {
	m.subMu.RLock()
	defer m.subMu.RUnlock()
	for _, fn := range m.subscribers {
		fn(u)
	}
}

// Load replaces the live map with the saved snapshot. Without a snapshot the
// areas are merged, in id order, into a new map which is left dirty so the
// next save writes it.
func (m *Manager) Load(ctx context.Context, areas map[string]*storage.AreaSpec) error {
	pc := progress.NewWithContext(ctx)
	defer pc.Close()

	m.mu.Lock()
	defer m.mu.Unlock()

	var snap *storage.Snapshot
	var err error
	if m.snapshots != nil {
		snap, err = m.snapshots.Load()
		if err != nil && !errors.Is(err, storage.ErrNoSnapshot) {
			return err
		}
	}

	if snap != nil {
		pair, err := gamemap.NewWorldBuilder(snap.Rooms, snap.Marks, m.opts).Build(pc)
		if err != nil {
			return fmt.Errorf("building map from snapshot: %w", err)
		}
		var spaces []gamemap.ExternalLocalSpace
		if _, err := snap.Header.GetMeta(metaLocalSpaces, &spaces); err != nil {
			return err
		}
		if pair.Base, err = pair.Base.WithLocalSpaces(pc, spaces, m.opts); err != nil {
			return fmt.Errorf("restoring local spaces: %w", err)
		}
		if pair.Modified, err = pair.Modified.WithLocalSpaces(pc, spaces, m.opts); err != nil {
			return fmt.Errorf("restoring local spaces: %w", err)
		}
		m.reset(pair.Base, pair.Modified)
		m.dirty = !pair.Base.Equal(pair.Modified)
		slog.InfoContext(ctx, "loaded map snapshot",
			"rooms", pair.Modified.NumRooms(),
			"marks", pair.Modified.NumMarks(),
			"saved_at", snap.Header.SavedAt,
		)
		return nil
	}

	ids := make([]string, 0, len(areas))
	for id := range areas {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	cur := gamemap.New()
	for _, id := range ids {
		area := areas[id].Clone()
		cur, err = gamemap.Merge(pc, cur, area.Rooms, area.Marks, area.Offset, m.opts)
		if err != nil {
			return fmt.Errorf("merging area %s: %w", id, err)
		}
		slog.InfoContext(ctx, "merged area", "area", id, "rooms", len(area.Rooms))
	}

	m.reset(gamemap.New(), cur)
	m.dirty = len(ids) > 0
	return nil
}

func (m *Manager) reset(saved, current gamemap.Map) {
	m.saved.Store(&saved)
	m.current.Store(&current)
	m.undo = nil
	m.redo = nil
	m.unchecked = true
	m.lastSave = m.now()
}

// Apply commits changes as a single batch. Nothing is committed when any
// change fails.
func (m *Manager) Apply(ctx context.Context, source string, changes []change.Change) (Update, error) {
	pc := progress.NewWithContext(ctx)
	defer pc.Close()

	m.mu.Lock()
	cur := m.Current()
	res, err := cur.Apply(pc, changes, m.opts)
	if err != nil {
		m.mu.Unlock()
		return Update{}, err
	}
	if res.Map.Equal(cur) {
		m.mu.Unlock()
		return Update{}, ErrNoChanges
	}

	u := m.commit(ctx, res.Map, res.Flags, storage.ActionApply, source, changes)
	m.mu.Unlock()

	m.notify(u)
	return u, nil
}

// Merge adds the rooms and marks of area to the live map, shifted by the
// area's own offset plus offset.
func (m *Manager) Merge(ctx context.Context, source string, area *storage.AreaSpec, offset coordinate.Coordinate) (Update, error) {
	pc := progress.NewWithContext(ctx)
	defer pc.Close()
	area = area.Clone()

	m.mu.Lock()
	cur := m.Current()
	merged, err := gamemap.Merge(pc, cur, area.Rooms, area.Marks, area.Offset.Add(offset), m.opts)
	if err != nil {
		m.mu.Unlock()
		return Update{}, err
	}

	flags := gamemap.BoundsChanged | gamemap.RoomMeshNeedsUpdate
	if len(area.Marks) > 0 {
		flags |= gamemap.MarksChanged
	}
	u := m.commit(ctx, merged, flags, storage.ActionMerge, source, nil)
	m.mu.Unlock()

	m.notify(u)
	return u, nil
}

// Revert restores the room with external id ext to its saved version.
// Warnings are written to out. The bool is false when there was nothing
// that could be reverted.
func (m *Manager) Revert(ctx context.Context, out io.Writer, source string, ext roomid.ExternalRoomId) (Update, bool, error) {
	pc := progress.NewWithContext(ctx)
	defer pc.Close()

	m.mu.Lock()
	cur := m.Current()
	h, err := cur.GetRoomHandleExternal(ext)
	if err != nil {
		m.mu.Unlock()
		return Update{}, false, err
	}

	plan, ok, err := gamemap.BuildRevertPlan(out, cur, h.Id(), m.Saved())
	if err != nil || !ok {
		m.mu.Unlock()
		return Update{}, false, err
	}
	if plan.HintUndelete {
		fmt.Fprintln(out, "Hint: Undo the removal of the missing rooms first to restore their exits.")
	}
	if plan.WarnNoEntrances {
		fmt.Fprintln(out, "Warning: Entrances from other rooms are not restored.")
	}
	if len(plan.Changes) == 0 {
		m.mu.Unlock()
		fmt.Fprintf(out, "Room %s has no changes to revert.\n", ext)
		return Update{}, false, nil
	}

	res, err := cur.Apply(pc, plan.Changes, m.opts)
	if err != nil {
		m.mu.Unlock()
		return Update{}, false, err
	}

	u := m.commit(ctx, res.Map, res.Flags, storage.ActionRevert, source, plan.Changes)
	m.mu.Unlock()

	m.notify(u)
	return u, true, nil
}

// commit makes next the live map. The caller holds m.mu.
func (m *Manager) commit(ctx context.Context, next gamemap.Map, flags gamemap.RoomUpdateFlags, action storage.JournalAction, source string, changes []change.Change) Update {
	m.undo = append(m.undo, m.Current())
	if m.maxUndo > 0 && len(m.undo) > m.maxUndo {
		m.undo = m.undo[len(m.undo)-m.maxUndo:]
	}
	m.redo = nil

	return m.swap(ctx, next, flags, action, source, changes)
}

// swap stores next and records the batch. The caller holds m.mu.
func (m *Manager) swap(ctx context.Context, next gamemap.Map, flags gamemap.RoomUpdateFlags, action storage.JournalAction, source string, changes []change.Change) Update {
	m.current.Store(&next)
	m.dirty = true
	m.unchecked = true

	u := Update{
		Batch:   uuid.New(),
		Action:  action,
		Source:  source,
		Flags:   flags,
		Changes: len(changes),
		Rooms:   next.NumRooms(),
	}
	m.record(ctx, u, changes)
	return u
}

func (m *Manager) record(ctx context.Context, u Update, changes []change.Change) {
	at := m.now().UTC()

	if m.journal != nil {
		err := m.journal.Append(storage.JournalEntry{
			Batch:   u.Batch,
			Time:    at,
			Action:  u.Action,
			Source:  u.Source,
			Flags:   u.Flags.Names(),
			Changes: change.List(changes),
		})
		if err != nil {
			slog.ErrorContext(ctx, "failed to journal batch", "batch", u.Batch, "error", err)
		}
	}

	if m.history != nil {
		err := m.history.Record(ctx, storage.HistoryRecord{
			Batch:   u.Batch,
			Time:    at,
			Action:  u.Action,
			Source:  u.Source,
			Changes: u.Changes,
			Rooms:   u.Rooms,
			Flags:   u.Flags.Names(),
		})
		if err != nil {
			slog.ErrorContext(ctx, "failed to record batch", "batch", u.Batch, "error", err)
		}
	}

	slog.InfoContext(ctx, "committed batch",
		"batch", u.Batch,
		"action", u.Action,
		"source", u.Source,
		"changes", u.Changes,
		"rooms", u.Rooms,
	)
}

func (m *Manager) Undo(ctx context.Context, source string) (Update, error) {
	m.mu.Lock()
	if len(m.undo) == 0 {
		m.mu.Unlock()
		return Update{}, ErrNothingToUndo
	}
	prev := m.undo[len(m.undo)-1]
	m.undo = m.undo[:len(m.undo)-1]
	m.redo = append(m.redo, m.Current())

	u := m.swap(ctx, prev, historyFlags, storage.ActionUndo, source, nil)
	m.mu.Unlock()

	m.notify(u)
	return u, nil
}

func (m *Manager) Redo(ctx context.Context, source string) (Update, error) {
	m.mu.Lock()
	if len(m.redo) == 0 {
		m.mu.Unlock()
		return Update{}, ErrNothingToRedo
	}
	next := m.redo[len(m.redo)-1]
	m.redo = m.redo[:len(m.redo)-1]
	m.undo = append(m.undo, m.Current())

	u := m.swap(ctx, next, historyFlags, storage.ActionRedo, source, nil)
	m.mu.Unlock()

	m.notify(u)
	return u, nil
}

// Start blocks until ctx is done and then writes any unsaved changes.
func (m *Manager) Start(ctx context.Context) error {
	<-ctx.Done()

	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.dirty || m.snapshots == nil {
		return nil
	}
	if err := m.save(context.WithoutCancel(ctx)); err != nil {
		return fmt.Errorf("saving on shutdown: %w", err)
	}
	return nil
}

// Save writes the live map to the snapshot store and makes it the base for
// diffs and reverts.
func (m *Manager) Save(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.save(ctx)
}

func (m *Manager) save(ctx context.Context) error {
	if m.snapshots == nil {
		return fmt.Errorf("no snapshot store configured")
	}

	cur := m.Current()
	snap := &storage.Snapshot{
		Header: storage.SnapshotHeader{SavedAt: m.now().UTC()},
		Rooms:  cur.World().ExternalRooms(),
		Marks:  cur.Infomarks().All(),
	}
	if err := snap.Header.SetMeta(metaNextExternalId, cur.World().NextExternalId()); err != nil {
		return err
	}
	if spaces := cur.ExternalLocalSpaces(); len(spaces) > 0 {
		if err := snap.Header.SetMeta(metaLocalSpaces, spaces); err != nil {
			return err
		}
	}
	if err := m.snapshots.Save(snap); err != nil {
		return fmt.Errorf("saving snapshot: %w", err)
	}

	m.saved.Store(&cur)
	m.dirty = false
	m.lastSave = m.now()

	if m.journal != nil {
		err := m.journal.Append(storage.JournalEntry{
			Batch:  uuid.New(),
			Time:   snap.Header.SavedAt,
			Action: storage.ActionSave,
		})
		if err != nil {
			slog.ErrorContext(ctx, "failed to journal save", "error", err)
		}
	}

	slog.InfoContext(ctx, "saved map", "rooms", len(snap.Rooms), "marks", len(snap.Marks))
	return nil
}

// Tick runs the periodic housekeeping: the consistency check of a changed
// map and autosave. Failures are logged and never stop the driver.
func (m *Manager) Tick(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.checkOnTick && m.unchecked {
		m.unchecked = false
		pc := progress.NewWithContext(ctx)
		if err := m.Current().CheckConsistency(pc); err != nil {
			slog.ErrorContext(ctx, "map failed consistency check", "error", err)
		}
		pc.Close()
	}

	if m.autosave > 0 && m.dirty && m.snapshots != nil && m.now().Sub(m.lastSave) >= m.autosave {
		if err := m.save(ctx); err != nil {
			slog.WarnContext(ctx, "failed to save map", "error", err)
		}
	}

	return nil
}
