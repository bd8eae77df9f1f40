package gamemap

import (
	"log/slog"

	"github.com/pixil98/go-mudmap/internal/room"
	"github.com/pixil98/go-mudmap/internal/roomid"
	"github.com/pixil98/go-mudmap/internal/world"
)

// Comparison is how well a stored room matches a parse event.
type Comparison uint8

const (
	ComparisonEqual Comparison = iota
	ComparisonTolerance
	ComparisonDifferent
)

func (c Comparison) String() string {
	switch c {
	case ComparisonEqual:
		return "EQUAL"
	case ComparisonTolerance:
		return "TOLERANCE"
	default:
		return "DIFFERENT"
	}
}

// CompareRoom matches a room against an event. A matching server id
// downgrades any later mismatch to a tolerance match.
func CompareRoom(r *room.RawRoom, ev *room.ParseEvent) Comparison {
	f := &r.Fields
	if f.Name == "" && f.Description == "" && f.TerrainType == room.TerrainUndefined {
		return ComparisonTolerance
	}

	idMatch := false
	if ev.ServerId.IsValid() && r.ServerId.IsValid() {
		if ev.ServerId != r.ServerId {
			return ComparisonDifferent
		}
		idMatch = true
	}

	mismatch := func() Comparison {
		if idMatch {
			return ComparisonTolerance
		}
		return ComparisonDifferent
	}

	if ev.Terrain != f.TerrainType || ev.Name != f.Name || ev.Desc != f.Description {
		return mismatch()
	}
	if ev.ServerId.IsValid() && !idMatch {
		return ComparisonTolerance
	}
	if ev.Area != f.Area {
		return ComparisonTolerance
	}
	return ComparisonEqual
}

// candidates picks the narrowest index that knows about the event.
func (m Map) candidates(ev *room.ParseEvent) roomid.RoomIdSet {
	w := m.World()
	tree := w.ParseTree()

	if ev.Name != "" && ev.Desc != "" {
		if set, ok := tree.NameDesc[world.NameDesc{Name: ev.Name, Desc: ev.Desc}]; ok {
			return set
		}
		slog.Debug("no name+desc match, falling back to name or desc")
	}
	if ev.Name != "" {
		if set, ok := tree.NameOnly[ev.Name]; ok {
			return set
		}
	}
	if ev.Desc != "" {
		if set, ok := tree.DescOnly[ev.Desc]; ok {
			return set
		}
	}

	if set, ok := w.FindAreaRoomSet(ev.Area); ok && !set.Empty() {
		slog.Debug("falling back to the current area", "area", ev.Area)
		return set
	}
	if ev.Area != "" {
		if set, ok := w.FindAreaRoomSet(""); ok && !set.Empty() {
			slog.Debug("falling back to the remainder area")
			return set
		}
	}
	slog.Debug("falling back to the whole map")
	return w.RoomSet()
}

// GetRooms returns every room that could be the one described by ev.
func (m Map) GetRooms(ev *room.ParseEvent) roomid.RoomIdSet {
	var out roomid.RoomIdSet
	if m.NumRooms() == 0 {
		return out
	}

	set := m.candidates(ev)
	for id := range set.All {
		r := m.World().Room(id)
		if r == nil {
			continue
		}
		if CompareRoom(r, ev) != ComparisonDifferent {
			out.Insert(id)
		}
	}
	slog.Debug("matched rooms", "candidates", set.Len(), "matches", out.Len())
	return out
}
