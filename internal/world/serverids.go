package world

import (
	"fmt"
	"io"
	"maps"

	"github.com/pixil98/go-mudmap/internal/roomid"
)

// ServerIdMap maps game server room ids to internal ids. Invalid server ids
// are never stored.
type ServerIdMap struct {
	ids map[roomid.ServerRoomId]roomid.RoomId
}

func (m *ServerIdMap) Clone() ServerIdMap {
	return ServerIdMap{ids: maps.Clone(m.ids)}
}

func (m *ServerIdMap) Equal(o *ServerIdMap) bool {
	return maps.Equal(m.ids, o.ids)
}

func (m *ServerIdMap) Len() int { return len(m.ids) }

func (m *ServerIdMap) Set(sid roomid.ServerRoomId, id roomid.RoomId) {
	if !sid.IsValid() {
		return
	}
	if m.ids == nil {
		m.ids = map[roomid.ServerRoomId]roomid.RoomId{}
	}
	m.ids[sid] = id
}

func (m *ServerIdMap) Remove(sid roomid.ServerRoomId) {
	delete(m.ids, sid)
}

func (m *ServerIdMap) Lookup(sid roomid.ServerRoomId) (roomid.RoomId, bool) {
	if !sid.IsValid() {
		return roomid.InvalidRoomId, false
	}
	id, ok := m.ids[sid]
	return id, ok
}

func (m *ServerIdMap) ForEach(fn func(roomid.ServerRoomId, roomid.RoomId)) {
	for sid, id := range m.ids {
		fn(sid, id)
	}
}

func (m *ServerIdMap) PrintStats(w io.Writer) {
	fmt.Fprintf(w, "Known server IDs: %d.\n", len(m.ids))
}
