package world

import (
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/pixil98/go-mudmap/internal/progress"
	"github.com/pixil98/go-mudmap/internal/room"
	"github.com/pixil98/go-mudmap/internal/roomid"
)

// Remapping translates between stable external room ids and the dense
// internal ids used to index room storage.
type Remapping struct {
	extToInt map[roomid.ExternalRoomId]roomid.RoomId
	intToExt []roomid.ExternalRoomId
}

// ComputeRemapping assigns a dense internal id to every external id
// mentioned by rooms, including ids only referenced by exits. Internal ids
// follow ascending external id order.
func ComputeRemapping(rooms []room.ExternalRawRoom) Remapping {
	if len(rooms) == 0 {
		return Remapping{}
	}

	seen := map[roomid.ExternalRoomId]struct{}{}
	for i := range rooms {
		r := &rooms[i]
		seen[r.Id] = struct{}{}
		for j := range r.Exits {
			for to := range r.Exits[j].Outgoing.All {
				seen[to] = struct{}{}
			}
			for from := range r.Exits[j].Incoming.All {
				seen[from] = struct{}{}
			}
		}
	}

	ordered := slices.Sorted(maps.Keys(seen))
	m := Remapping{
		extToInt: make(map[roomid.ExternalRoomId]roomid.RoomId, len(ordered)),
		intToExt: ordered,
	}
	for i, ext := range ordered {
		m.extToInt[ext] = roomid.RoomId(i)
	}
	return m
}

func (m *Remapping) Clone() Remapping {
	return Remapping{
		extToInt: maps.Clone(m.extToInt),
		intToExt: slices.Clone(m.intToExt),
	}
}

func (m *Remapping) Equal(o *Remapping) bool {
	return maps.Equal(m.extToInt, o.extToInt) && slices.Equal(m.trimmed(), o.trimmed())
}

func (m *Remapping) trimmed() []roomid.ExternalRoomId {
	n := len(m.intToExt)
	for n > 0 && !m.intToExt[n-1].IsValid() {
		n--
	}
	return m.intToExt[:n]
}

// Size is the number of allocated internal slots, including holes.
func (m *Remapping) Size() int { return len(m.intToExt) }

// Len is the number of live external ids.
func (m *Remapping) Len() int { return len(m.extToInt) }

func (m *Remapping) ToInternal(ext roomid.ExternalRoomId) roomid.RoomId {
	if id, ok := m.extToInt[ext]; ok {
		return id
	}
	return roomid.InvalidRoomId
}

func (m *Remapping) ToExternal(id roomid.RoomId) roomid.ExternalRoomId {
	if id.IsValid() && int(id) < len(m.intToExt) {
		return m.intToExt[id]
	}
	return roomid.InvalidExternalRoomId
}

func (m *Remapping) RoomToInternal(r *room.ExternalRawRoom) room.RawRoom {
	return room.Convert(r, func(ext roomid.ExternalRoomId) (roomid.RoomId, bool) {
		return m.ToInternal(ext), true
	})
}

func (m *Remapping) RoomToExternal(r *room.RawRoom) room.ExternalRawRoom {
	return room.Convert(r, func(id roomid.RoomId) (roomid.ExternalRoomId, bool) {
		return m.ToExternal(id), true
	})
}

func (m *Remapping) Contains(id roomid.RoomId) bool {
	return m.ToExternal(id).IsValid()
}

// NextExternal returns an external id higher than every allocated one.
func (m *Remapping) NextExternal() roomid.ExternalRoomId {
	if len(m.extToInt) == 0 {
		return 0
	}
	var highest roomid.ExternalRoomId
	first := true
	for _, ext := range m.intToExt {
		if !ext.IsValid() {
			continue
		}
		if first || ext > highest {
			highest = ext
			first = false
		}
	}
	return highest.Next()
}

func (m *Remapping) grow(size int) {
	for len(m.intToExt) < size {
		m.intToExt = append(m.intToExt, roomid.InvalidExternalRoomId)
	}
}

func (m *Remapping) ensureMaps() {
	if m.extToInt == nil {
		m.extToInt = map[roomid.ExternalRoomId]roomid.RoomId{}
	}
}

// AddNew maps id to the next free external id.
func (m *Remapping) AddNew(id roomid.RoomId) error {
	return m.Undelete(id, m.NextExternal())
}

// Undelete restores a specific internal/external pair.
func (m *Remapping) Undelete(id roomid.RoomId, ext roomid.ExternalRoomId) error {
	if !id.IsValid() || !ext.IsValid() {
		return NewInvalidMapOperation("Invalid room id")
	}
	if m.Contains(id) {
		return fmt.Errorf("remapping already contains room %d", uint32(id))
	}
	if _, ok := m.extToInt[ext]; ok {
		return fmt.Errorf("remapping already contains external id %d", uint32(ext))
	}
	m.ensureMaps()
	m.grow(int(id) + 1)
	m.intToExt[id] = ext
	m.extToInt[ext] = id
	return nil
}

// RemoveAt breaks both directions of the mapping for id. The internal slot
// may be reused later.
func (m *Remapping) RemoveAt(id roomid.RoomId) error {
	if !id.IsValid() || int(id) >= len(m.intToExt) {
		return NewInvalidMapOperation("Invalid RoomId")
	}
	ext := m.intToExt[id]
	m.intToExt[id] = roomid.InvalidExternalRoomId
	if ext.IsValid() {
		delete(m.extToInt, ext)
	}
	return nil
}

// Compact renumbers external ids contiguously from firstId, preserving
// their relative order.
func (m *Remapping) Compact(pc *progress.Counter, firstId roomid.ExternalRoomId) error {
	if !firstId.IsValid() {
		return NewInvalidMapOperation("Invalid external room id")
	}

	old := slices.Sorted(maps.Keys(m.extToInt))
	pc.IncreaseTotalStepsBy(uint64(len(old)))

	next := firstId
	extToInt := make(map[roomid.ExternalRoomId]roomid.RoomId, len(old))
	for _, ext := range old {
		id := m.extToInt[ext]
		m.intToExt[id] = next
		extToInt[next] = id
		next = next.Next()
		if err := pc.Step(); err != nil {
			return err
		}
	}
	m.extToInt = extToInt
	return nil
}

// PrintStats writes the allocated id ranges.
func (m *Remapping) PrintStats(w io.Writer) {
	lo, hi := -1, -1
	for i, ext := range m.intToExt {
		if ext.IsValid() {
			if lo < 0 {
				lo = i
			}
			hi = i
		}
	}

	extLo, extHi := roomid.InvalidExternalRoomId, roomid.InvalidExternalRoomId
	for ext := range m.extToInt {
		if !extLo.IsValid() || ext < extLo {
			extLo = ext
		}
		if !extHi.IsValid() || ext > extHi {
			extHi = ext
		}
	}

	fmt.Fprintf(w, "Allocated internal IDs: %d", len(m.intToExt))
	if lo >= 0 {
		fmt.Fprintf(w, " (%d to %d)", lo, hi)
	}
	fmt.Fprint(w, ".\n")
	fmt.Fprintf(w, "Allocated external IDs: %d", len(m.extToInt))
	if extLo.IsValid() {
		fmt.Fprintf(w, " (%d to %d)", uint32(extLo), uint32(extHi))
	}
	fmt.Fprint(w, ".\n")
}
