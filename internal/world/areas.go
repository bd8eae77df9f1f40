package world

import (
	"cmp"
	"maps"
	"slices"
	"strings"

	"github.com/pixil98/go-mudmap/internal/room"
	"github.com/pixil98/go-mudmap/internal/roomid"
)

// AreaInfoMap indexes rooms by area name and tracks the global set of live
// rooms. Rooms without an area live in the area named "".
type AreaInfoMap struct {
	areas  map[room.RoomArea]roomid.RoomIdSet
	global roomid.OwnedSet[roomid.RoomId]
}

func newAreaInfoMap() AreaInfoMap {
	return AreaInfoMap{areas: map[room.RoomArea]roomid.RoomIdSet{}}
}

func (m *AreaInfoMap) Clone() AreaInfoMap {
	return AreaInfoMap{areas: maps.Clone(m.areas), global: m.global.Clone()}
}

func (m *AreaInfoMap) Equal(o *AreaInfoMap) bool {
	return m.global.Equal(&o.global) && maps.EqualFunc(m.areas, o.areas, setsEqual)
}

func (m *AreaInfoMap) Insert(area room.RoomArea, id roomid.RoomId) {
	insertId(m.areas, area, id)
	m.global.Insert(id)
}

// Remove drops id from area and from the global set. Empty areas are
// forgotten.
func (m *AreaInfoMap) Remove(area room.RoomArea, id roomid.RoomId) {
	removeId(m.areas, area, id)
	m.global.Erase(id)
}

// Find returns the rooms of area.
func (m *AreaInfoMap) Find(area room.RoomArea) (roomid.RoomIdSet, bool) {
	set, ok := m.areas[area]
	return set, ok
}

// Global returns the live rooms. The result is not changed by later
// inserts or removals.
func (m *AreaInfoMap) Global() roomid.RoomIdSet { return m.global.Share() }

func (m *AreaInfoMap) NumRooms() int { return m.global.Len() }

func (m *AreaInfoMap) LastRoom() (roomid.RoomId, bool) { return m.global.Last() }

func (m *AreaInfoMap) freeze() { m.global.Share() }

func (m *AreaInfoMap) NumAreas() int { return len(m.areas) }

// SortedAreas orders area names alphabetically, ignoring a leading "the ".
func (m *AreaInfoMap) SortedAreas() []room.RoomArea {
	names := slices.Collect(maps.Keys(m.areas))
	key := func(a room.RoomArea) string {
		return strings.TrimPrefix(string(a), "the ")
	}
	slices.SortFunc(names, func(a, b room.RoomArea) int {
		return cmp.Or(strings.Compare(key(a), key(b)), strings.Compare(string(a), string(b)))
	})
	return names
}
