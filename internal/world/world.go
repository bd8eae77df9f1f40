// Package world holds the versioned room graph and every index derived from
// it. A World is mutated only through Apply; callers that publish a World
// copy it first and treat the published value as immutable.
package world

import (
	"github.com/pixil98/go-mudmap/internal/coordinate"
	"github.com/pixil98/go-mudmap/internal/infomark"
	"github.com/pixil98/go-mudmap/internal/room"
	"github.com/pixil98/go-mudmap/internal/roomid"
)

type World struct {
	remapping Remapping
	rooms     RawRooms
	spatialDb SpatialDb
	serverIds ServerIdMap
	parseTree ParseTree
	areaInfos AreaInfoMap
	infomarks infomark.Db

	localSpaces LocalSpaceMap

	checkedConsistency bool
}

// New returns an empty world.
func New() *World {
	return &World{
		parseTree: newParseTree(),
		areaInfos: newAreaInfoMap(),
		infomarks: infomark.NewDb(),
	}
}

// Copy returns a world that shares nothing mutable with w.
func (w *World) Copy() *World {
	return &World{
		remapping: w.remapping.Clone(),
		rooms:     w.rooms.Clone(),
		spatialDb: w.spatialDb.Clone(),
		serverIds: w.serverIds.Clone(),
		parseTree: w.parseTree.Clone(),
		areaInfos: w.areaInfos.Clone(),
		infomarks: w.infomarks.Clone(),

		localSpaces: w.localSpaces.Clone(),
	}
}

// Freeze must be called before w is read from more than one goroutine.
// Later writes to w still work but copy the shared indexes first.
func (w *World) Freeze() {
	w.areaInfos.freeze()
}

// Equal reports structural equality of the rooms and every index.
func (w *World) Equal(o *World) bool {
	return w.remapping.Equal(&o.remapping) &&
		w.rooms.Equal(&o.rooms) &&
		w.spatialDb.Equal(&o.spatialDb) &&
		w.serverIds.Equal(&o.serverIds) &&
		w.parseTree.Equal(&o.parseTree) &&
		w.areaInfos.Equal(&o.areaInfos) &&
		w.infomarks.Equal(o.infomarks) &&
		w.localSpaces.Equal(&o.localSpaces)
}

func (w *World) RoomSet() roomid.RoomIdSet { return w.areaInfos.Global() }

func (w *World) NumRooms() int { return w.areaInfos.NumRooms() }

// HasRoom reports whether id names a live room. Invalid ids are never live.
func (w *World) HasRoom(id roomid.RoomId) bool {
	return id.IsValid() && w.remapping.Contains(id) && w.rooms.IsInitialized(id)
}

func (w *World) requireValidRoom(id roomid.RoomId) error {
	if !id.IsValid() {
		return NewInvalidMapOperation("Invalid RoomId")
	}
	if !w.HasRoom(id) {
		return NewInvalidMapOperation("RoomId not valid")
	}
	return nil
}

// Room returns the stored room or nil. The result must not be modified.
func (w *World) Room(id roomid.RoomId) *room.RawRoom {
	if !w.HasRoom(id) {
		return nil
	}
	return w.rooms.Get(id)
}

// RoomCopy returns an independent copy of a live room.
func (w *World) RoomCopy(id roomid.RoomId) (room.RawRoom, error) {
	if err := w.requireValidRoom(id); err != nil {
		return room.RawRoom{}, err
	}
	return w.rooms.Get(id).Clone(), nil
}

func (w *World) Position(id roomid.RoomId) (coordinate.Coordinate, bool) {
	if r := w.Room(id); r != nil {
		return r.Position, true
	}
	return coordinate.Coordinate{}, false
}

func (w *World) ServerId(id roomid.RoomId) roomid.ServerRoomId {
	if r := w.Room(id); r != nil {
		return r.ServerId
	}
	return roomid.InvalidServerRoomId
}

// FindRoom returns the room at c.
func (w *World) FindRoom(c coordinate.Coordinate) (roomid.RoomId, bool) {
	return w.spatialDb.FindFirst(c)
}

func (w *World) FindRooms(c coordinate.Coordinate) roomid.RoomIdSet {
	return w.spatialDb.FindRooms(c)
}

func (w *World) HasRoomAt(c coordinate.Coordinate) bool {
	return w.spatialDb.HasRoomAt(c)
}

func (w *World) HasUniqueCoords() bool {
	return w.spatialDb.HasUniqueCoords()
}

// Lookup finds the room the game server knows as sid.
func (w *World) Lookup(sid roomid.ServerRoomId) (roomid.RoomId, bool) {
	return w.serverIds.Lookup(sid)
}

func (w *World) ConvertToInternal(ext roomid.ExternalRoomId) roomid.RoomId {
	return w.remapping.ToInternal(ext)
}

func (w *World) ConvertToExternal(id roomid.RoomId) roomid.ExternalRoomId {
	return w.remapping.ToExternal(id)
}

// ExternalRoom returns a room with every id converted to the external space.
func (w *World) ExternalRoom(id roomid.RoomId) (room.ExternalRawRoom, bool) {
	r := w.Room(id)
	if r == nil {
		return room.ExternalRawRoom{}, false
	}
	return w.remapping.RoomToExternal(r), true
}

// ExternalRooms returns every live room in external form, in internal id
// order.
func (w *World) ExternalRooms() []room.ExternalRawRoom {
	out := make([]room.ExternalRawRoom, 0, w.NumRooms())
	for id := range w.RoomSet().All {
		out = append(out, w.remapping.RoomToExternal(w.rooms.Get(id)))
	}
	return out
}

// NextId is the id addRoom would allocate.
func (w *World) NextId() roomid.RoomId {
	last, ok := w.areaInfos.LastRoom()
	if !ok {
		return 0
	}
	return last + 1
}

func (w *World) NextExternalId() roomid.ExternalRoomId {
	return w.remapping.NextExternal()
}

func (w *World) Bounds() (coordinate.Bounds, bool) {
	return w.spatialDb.Bounds()
}

func (w *World) NeedsBoundsUpdate() bool {
	return w.spatialDb.NeedsBoundsUpdate()
}

// ParseTree returns the name and description index. It must not be
// modified.
func (w *World) ParseTree() *ParseTree { return &w.parseTree }

// FindAreaRoomSet returns the rooms of area.
func (w *World) FindAreaRoomSet(area room.RoomArea) (roomid.RoomIdSet, bool) {
	return w.areaInfos.Find(area)
}

func (w *World) Infomarks() infomark.Db { return w.infomarks }

func (w *World) Exit(id roomid.RoomId, dir room.ExitDirection) *room.RawExit {
	if r := w.Room(id); r != nil {
		return r.Exit(dir)
	}
	return nil
}

func (w *World) IsTemporary(id roomid.RoomId) bool {
	r := w.Room(id)
	return r != nil && !r.IsPermanent()
}

func (w *World) hasOutgoing(from roomid.RoomId, dir room.ExitDirection, to roomid.RoomId) bool {
	r := w.Room(from)
	return r != nil && r.Exit(dir).Outgoing.Contains(to)
}

func (w *World) hasIncoming(at roomid.RoomId, dir room.ExitDirection, from roomid.RoomId) bool {
	r := w.Room(at)
	return r != nil && r.Exit(dir).Incoming.Contains(from)
}

func (w *World) HasConsistentOneWayExit(from roomid.RoomId, dir room.ExitDirection, to roomid.RoomId) bool {
	return w.hasOutgoing(from, dir, to) && w.hasIncoming(to, dir.Opposite(), from)
}

func (w *World) HasConsistentTwoWayExit(from roomid.RoomId, dir room.ExitDirection, to roomid.RoomId) bool {
	return w.HasConsistentOneWayExit(from, dir, to) && w.HasConsistentOneWayExit(to, dir.Opposite(), from)
}
