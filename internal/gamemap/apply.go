package gamemap

import (
	"log/slog"
	"strings"

	"github.com/pixil98/go-mudmap/internal/change"
	"github.com/pixil98/go-mudmap/internal/progress"
	"github.com/pixil98/go-mudmap/internal/world"
)

// RoomUpdateFlags tells a consumer which derived data needs rebuilding
// after a transaction.
type RoomUpdateFlags uint8

const (
	BoundsChanged RoomUpdateFlags = 1 << iota
	MarksChanged
	RoomMeshNeedsUpdate
)

func (f RoomUpdateFlags) Contains(o RoomUpdateFlags) bool { return f&o == o && o != 0 }

func (f RoomUpdateFlags) Empty() bool { return f == 0 }

func (f RoomUpdateFlags) Names() []string {
	var out []string
	if f.Contains(BoundsChanged) {
		out = append(out, "BoundsChanged")
	}
	if f.Contains(MarksChanged) {
		out = append(out, "MarksChanged")
	}
	if f.Contains(RoomMeshNeedsUpdate) {
		out = append(out, "RoomMeshNeedsUpdate")
	}
	return out
}

func (f RoomUpdateFlags) String() string { return strings.Join(f.Names(), " ") }

// MapApplyResult is the new map produced by a transaction.
type MapApplyResult struct {
	Map   Map
	Flags RoomUpdateFlags
}

// update runs fn against a private copy of the world. The receiver is never
// modified, even when fn fails.
func (m Map) update(pc *progress.Counter, fn func(w *world.World) error) (MapApplyResult, error) {
	w := m.World().Copy()
	if err := fn(w); err != nil {
		return MapApplyResult{}, err
	}

	result := MapApplyResult{Map: fromWorld(w)}
	if w.Equal(m.World()) {
		slog.Info("transaction made no changes")
		return result, nil
	}

	stats, err := world.GetComparisonStats(pc, m.World(), w)
	if err != nil {
		return MapApplyResult{}, err
	}
	slog.Info("transaction changed the map",
		"boundsChanged", stats.BoundsChanged,
		"roomsAdded", stats.AnyRoomsAdded,
		"roomsRemoved", stats.AnyRoomsRemoved,
		"spatialDbChanged", stats.SpatialDbChanged,
		"serverIdsChanged", stats.ServerIdsChanged,
		"meshChanged", stats.HasMeshDifferences,
		"marksChanged", stats.AnyInfomarksChanged,
	)

	if stats.BoundsChanged {
		result.Flags |= BoundsChanged
	}
	if stats.AnyInfomarksChanged {
		result.Flags |= MarksChanged
	}
	if stats.HasMeshDifferences {
		result.Flags |= RoomMeshNeedsUpdate
	}
	return result, nil
}

// Apply applies changes in order to a copy of the map. The first failing
// change aborts the whole transaction.
func (m Map) Apply(pc *progress.Counter, changes []change.Change, opts world.ApplyOptions) (MapApplyResult, error) {
	if len(changes) == 0 {
		return MapApplyResult{}, world.NewInvalidMapOperation("Changes are empty")
	}
	return m.update(pc, func(w *world.World) error {
		return w.ApplyAll(pc, changes, opts)
	})
}

func (m Map) ApplySingle(pc *progress.Counter, c change.Change, opts world.ApplyOptions) (MapApplyResult, error) {
	return m.update(pc, func(w *world.World) error {
		return w.ApplyOne(pc, c, opts)
	})
}

// FilterBaseMap returns the map reduced to what can be reached from the seed
// rooms without using secret exits.
func (m Map) FilterBaseMap(pc *progress.Counter, opts world.ApplyOptions) (Map, error) {
	res, err := m.ApplySingle(pc, change.GenerateBaseMap{}, opts)
	if err != nil {
		return Map{}, err
	}
	return res.Map, nil
}

// CheckConsistency verifies every invariant of the snapshot.
func (m Map) CheckConsistency(pc *progress.Counter) error {
	return m.World().Copy().CheckConsistency(pc)
}
