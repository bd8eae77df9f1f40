package world

import (
	"slices"

	"github.com/pixil98/go-mudmap/internal/room"
	"github.com/pixil98/go-mudmap/internal/roomid"
)

// RawRooms is dense room storage indexed by internal id. Unused slots hold a
// room whose Id is invalid.
type RawRooms struct {
	rooms []room.RawRoom
}

func newUninitializedRoom() room.RawRoom {
	return room.RawRoom{Id: roomid.InvalidRoomId}
}

// Clone shares nothing mutable with rr since room id sets never write into a
// shared backing array.
func (rr *RawRooms) Clone() RawRooms {
	return RawRooms{rooms: slices.Clone(rr.rooms)}
}

// Equal compares live rooms slot by slot. Trailing holes are ignored.
func (rr *RawRooms) Equal(o *RawRooms) bool {
	a, b := rr.trimmed(), o.trimmed()
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(&b[i]) {
			return false
		}
	}
	return true
}

func (rr *RawRooms) trimmed() []room.RawRoom {
	n := len(rr.rooms)
	for n > 0 && !rr.rooms[n-1].Id.IsValid() {
		n--
	}
	return rr.rooms[:n]
}

func (rr *RawRooms) Len() int { return len(rr.rooms) }

// Resize grows storage to hold n slots.
func (rr *RawRooms) Resize(n int) {
	for len(rr.rooms) < n {
		rr.rooms = append(rr.rooms, newUninitializedRoom())
	}
}

func (rr *RawRooms) inRange(id roomid.RoomId) bool {
	return id.IsValid() && int(id) < len(rr.rooms)
}

// Get returns a pointer into storage. Callers outside World must treat it as
// read only.
func (rr *RawRooms) Get(id roomid.RoomId) *room.RawRoom {
	if !rr.inRange(id) {
		return nil
	}
	return &rr.rooms[id]
}

func (rr *RawRooms) IsInitialized(id roomid.RoomId) bool {
	return rr.inRange(id) && rr.rooms[id].Id == id
}

// Set stores r at its own id and enforces exit invariants.
func (rr *RawRooms) Set(r room.RawRoom) {
	rr.Resize(int(r.Id) + 1)
	r.EnforceInvariants()
	rr.rooms[r.Id] = r
}

// RemoveAt turns the slot into a hole.
func (rr *RawRooms) RemoveAt(id roomid.RoomId) {
	if rr.inRange(id) {
		rr.rooms[id] = newUninitializedRoom()
	}
}

func (rr *RawRooms) exit(id roomid.RoomId, dir room.ExitDirection) *room.RawExit {
	return rr.rooms[id].Exit(dir)
}

// SetExitFlags writes raw flags and re-derives the EXIT, DOOR and UNMAPPED
// flags.
func (rr *RawRooms) SetExitFlags(id roomid.RoomId, dir room.ExitDirection, flags room.ExitFlags) {
	e := rr.exit(id, dir)
	e.Fields.ExitFlags = flags
	e.EnforceInvariants()
}

func (rr *RawRooms) SetDoorFlags(id roomid.RoomId, dir room.ExitDirection, flags room.DoorFlags) {
	e := rr.exit(id, dir)
	e.Fields.DoorFlags = flags
	e.EnforceInvariants()
}

func (rr *RawRooms) SetDoorName(id roomid.RoomId, dir room.ExitDirection, name room.DoorName) {
	e := rr.exit(id, dir)
	e.Fields.DoorName = name
	e.EnforceInvariants()
}

func (rr *RawRooms) SetExitFields(id roomid.RoomId, dir room.ExitDirection, f room.ExitFields) {
	e := rr.exit(id, dir)
	e.Fields = f
	e.EnforceInvariants()
}

func (rr *RawRooms) SetExitOutgoing(id roomid.RoomId, dir room.ExitDirection, set roomid.RoomIdSet) {
	e := rr.exit(id, dir)
	e.Outgoing = set
	e.EnforceInvariants()
}

func (rr *RawRooms) SetExitIncoming(id roomid.RoomId, dir room.ExitDirection, set roomid.RoomIdSet) {
	e := rr.exit(id, dir)
	e.Incoming = set
	e.EnforceInvariants()
}

func (rr *RawRooms) EnforceInvariants(id roomid.RoomId) {
	rr.rooms[id].EnforceInvariants()
}

func (rr *RawRooms) SatisfiesInvariants(id roomid.RoomId) bool {
	return rr.rooms[id].SatisfiesInvariants()
}
