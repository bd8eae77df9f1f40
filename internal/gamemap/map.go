// Package gamemap wraps a World in an immutable Map value. Every
// transaction copies the world, applies its changes to the copy and
// returns a new Map, so a Map can be shared between goroutines and kept
// around for undo without locking.
package gamemap

import (
	"github.com/pixil98/go-mudmap/internal/coordinate"
	"github.com/pixil98/go-mudmap/internal/infomark"
	"github.com/pixil98/go-mudmap/internal/room"
	"github.com/pixil98/go-mudmap/internal/roomid"
	"github.com/pixil98/go-mudmap/internal/world"
)

// Map is an immutable snapshot of the world. The zero value is an empty map.
type Map struct {
	world *world.World
}

func New() Map {
	return fromWorld(world.New())
}

func fromWorld(w *world.World) Map {
	w.Freeze()
	return Map{world: w}
}

// World returns the snapshot. It must not be modified.
func (m Map) World() *world.World {
	if m.world == nil {
		return world.New()
	}
	return m.world
}

func (m Map) NumRooms() int {
	return m.World().NumRooms()
}

func (m Map) NumMarks() int {
	return m.World().Infomarks().Len()
}

func (m Map) Empty() bool {
	return m.NumRooms() == 0 && m.NumMarks() == 0
}

func (m Map) RoomSet() roomid.RoomIdSet {
	return m.World().RoomSet()
}

func (m Map) Bounds() (coordinate.Bounds, bool) {
	return m.World().Bounds()
}

func (m Map) Infomarks() infomark.Db {
	return m.World().Infomarks()
}

// Equal reports structural equality of the underlying worlds.
func (m Map) Equal(o Map) bool {
	if m.world == o.world {
		return true
	}
	return m.World().Equal(o.World())
}

// RoomHandle is a read-only view of one room in a specific Map. The zero
// value refers to no room.
type RoomHandle struct {
	m    Map
	room *room.RawRoom
}

func (h RoomHandle) Exists() bool { return h.room != nil }

func (h RoomHandle) Map() Map { return h.m }

// Raw returns the stored room. It must not be modified.
func (h RoomHandle) Raw() *room.RawRoom { return h.room }

func (h RoomHandle) Id() roomid.RoomId { return h.room.Id }

func (h RoomHandle) ExternalId() roomid.ExternalRoomId {
	return h.m.World().ConvertToExternal(h.room.Id)
}

func (h RoomHandle) ServerId() roomid.ServerRoomId { return h.room.ServerId }

func (h RoomHandle) Position() coordinate.Coordinate { return h.room.Position }

func (h RoomHandle) Fields() *room.RoomFields { return &h.room.Fields }

func (h RoomHandle) Exit(dir room.ExitDirection) *room.RawExit { return h.room.Exit(dir) }

func (h RoomHandle) IsTemporary() bool { return !h.room.IsPermanent() }

// ExternalCopy returns the room with every id in the external id space.
func (h RoomHandle) ExternalCopy() room.ExternalRawRoom {
	r, _ := h.m.World().ExternalRoom(h.room.Id)
	return r
}

func (m Map) FindRoomHandle(id roomid.RoomId) RoomHandle {
	if r := m.World().Room(id); r != nil {
		return RoomHandle{m: m, room: r}
	}
	return RoomHandle{}
}

func (m Map) FindRoomHandleExternal(ext roomid.ExternalRoomId) RoomHandle {
	return m.FindRoomHandle(m.World().ConvertToInternal(ext))
}

func (m Map) FindRoomHandleServer(sid roomid.ServerRoomId) RoomHandle {
	if !sid.IsValid() {
		return RoomHandle{}
	}
	if id, ok := m.World().Lookup(sid); ok {
		return m.FindRoomHandle(id)
	}
	return RoomHandle{}
}

func (m Map) FindRoomHandleAt(c coordinate.Coordinate) RoomHandle {
	if id, ok := m.World().FindRoom(c); ok {
		return m.FindRoomHandle(id)
	}
	return RoomHandle{}
}

// GetRoomHandle is FindRoomHandle for callers that require the room to exist.
func (m Map) GetRoomHandle(id roomid.RoomId) (RoomHandle, error) {
	if h := m.FindRoomHandle(id); h.Exists() {
		return h, nil
	}
	return RoomHandle{}, world.NewInvalidMapOperation("RoomId not found")
}

func (m Map) GetRoomHandleExternal(ext roomid.ExternalRoomId) (RoomHandle, error) {
	if h := m.FindRoomHandleExternal(ext); h.Exists() {
		return h, nil
	}
	return RoomHandle{}, world.NewInvalidMapOperation("ExternalRoomId not found")
}

func (m Map) ExternalRoomId(id roomid.RoomId) roomid.ExternalRoomId {
	return m.World().ConvertToExternal(id)
}

func (m Map) CountRoomsWithArea(area room.RoomArea) int {
	set, _ := m.World().FindAreaRoomSet(area)
	return set.Len()
}

func (m Map) CountRoomsWithName(name room.RoomName) int {
	return m.World().ParseTree().NameOnly[name].Len()
}

func (m Map) CountRoomsWithDesc(desc room.RoomDesc) int {
	return m.World().ParseTree().DescOnly[desc].Len()
}

func (m Map) CountRoomsWithNameDesc(name room.RoomName, desc room.RoomDesc) int {
	return m.World().ParseTree().NameDesc[world.NameDesc{Name: name, Desc: desc}].Len()
}

func onlyMember(set roomid.RoomIdSet) (roomid.RoomId, bool) {
	if set.Len() != 1 {
		return roomid.InvalidRoomId, false
	}
	return set.First(), true
}

// FindUniqueName returns the only room called name.
func (m Map) FindUniqueName(name room.RoomName) (roomid.RoomId, bool) {
	return onlyMember(m.World().ParseTree().NameOnly[name])
}

func (m Map) FindUniqueDesc(desc room.RoomDesc) (roomid.RoomId, bool) {
	return onlyMember(m.World().ParseTree().DescOnly[desc])
}

func (m Map) FindUniqueNameDesc(name room.RoomName, desc room.RoomDesc) (roomid.RoomId, bool) {
	return onlyMember(m.World().ParseTree().NameDesc[world.NameDesc{Name: name, Desc: desc}])
}

func (m Map) HasUniqueName(id roomid.RoomId) bool {
	r := m.World().Room(id)
	if r == nil {
		return false
	}
	found, ok := m.FindUniqueName(r.Fields.Name)
	return ok && found == id
}

func (m Map) HasUniqueDesc(id roomid.RoomId) bool {
	r := m.World().Room(id)
	if r == nil {
		return false
	}
	found, ok := m.FindUniqueDesc(r.Fields.Description)
	return ok && found == id
}

func (m Map) HasUniqueNameDesc(id roomid.RoomId) bool {
	r := m.World().Room(id)
	if r == nil {
		return false
	}
	found, ok := m.FindUniqueNameDesc(r.Fields.Name, r.Fields.Description)
	return ok && found == id
}

// WouldAllowRelativeMove reports whether every room in set can be moved by
// offset without landing on a room outside the set.
func (m Map) WouldAllowRelativeMove(set roomid.RoomIdSet, offset coordinate.Coordinate) bool {
	w := m.World()
	for id := range set.All {
		pos, ok := w.Position(id)
		if !ok {
			return false
		}
		for other := range w.FindRooms(pos.Add(offset)).All {
			if !set.Contains(other) {
				return false
			}
		}
	}
	return true
}

// MapPair is the result of loading a map: the world exactly as loaded and
// the world after the post-load repairs were applied.
type MapPair struct {
	Base     Map
	Modified Map
}
