package world

import (
	"log/slog"

	"github.com/pixil98/go-mudmap/internal/coordinate"
	"github.com/pixil98/go-mudmap/internal/parallel"
	"github.com/pixil98/go-mudmap/internal/progress"
	"github.com/pixil98/go-mudmap/internal/room"
	"github.com/pixil98/go-mudmap/internal/roomid"
	"github.com/pixil98/go-mudmap/internal/sanitizer"
)

func (w *World) checkAllExitsConsistent(id roomid.RoomId) error {
	r := w.Room(id)
	if r == nil {
		return NewInvalidMapOperation("RoomId not found")
	}
	for _, dir := range room.AllExits {
		rev := dir.Opposite()
		e := r.Exit(dir)
		for other := range e.Outgoing.All {
			if !w.hasIncoming(other, rev, id) {
				return NewConsistencyError("missing incoming one-way exit: room %d %s to %d", uint32(id), dir, uint32(other))
			}
		}
		for other := range e.Incoming.All {
			if !w.hasOutgoing(other, rev, id) {
				return NewConsistencyError("missing outgoing one-way exit: room %d %s from %d", uint32(id), dir, uint32(other))
			}
		}
	}
	return nil
}

func (w *World) checkRoom(id roomid.RoomId) error {
	if err := w.checkAllExitsConsistent(id); err != nil {
		return err
	}
	r := w.rooms.Get(id)

	if r.HasInvalidEnums() {
		return NewConsistencyError("invalid enum value in room %d", uint32(id))
	}
	if r.HasInvalidFlags() {
		return NewConsistencyError("invalid flags in room %d", uint32(id))
	}
	for _, dir := range room.AllExits {
		e := r.Exit(dir)
		if !sanitizer.IsSanitizedOneLine(string(e.DoorName())) {
			return NewConsistencyError("door name fails sanity check in room %d", uint32(id))
		}
		if !e.SatisfiesInvariants() {
			return NewConsistencyError("room exit flags do not satisfy invariants in room %d", uint32(id))
		}
	}

	name, desc := r.Fields.Name, r.Fields.Description
	if !w.parseTree.NameOnly[name].Contains(id) {
		return NewConsistencyError("unable to find room name only for room %d", uint32(id))
	}
	if !w.parseTree.DescOnly[desc].Contains(id) {
		return NewConsistencyError("unable to find room desc only for room %d", uint32(id))
	}
	if !w.parseTree.NameDesc[NameDesc{name, desc}].Contains(id) {
		return NewConsistencyError("unable to find room name_desc for room %d", uint32(id))
	}

	if !w.spatialDb.FindRooms(r.Position).Contains(id) {
		return NewConsistencyError("room %d not found at its coordinate in spatial index", uint32(id))
	}

	if set, _ := w.areaInfos.Find(r.Fields.Area); !set.Contains(id) {
		return NewConsistencyError("room set does not contain the room id %d", uint32(id))
	}
	if !w.remapping.Contains(id) {
		return NewConsistencyError("remapping did not contain room %d", uint32(id))
	}
	if w.remapping.ToInternal(w.remapping.ToExternal(id)) != id {
		return NewConsistencyError("unable to convert room %d to internal id", uint32(id))
	}

	if r.ServerId.IsValid() {
		if found, ok := w.serverIds.Lookup(r.ServerId); !ok || found != id {
			slog.Warn("server id does not map back to room", "room", w.ConvertToExternal(id), "server_id", r.ServerId)
		}
	}
	return nil
}

// CheckConsistency cross-checks every room against every index. The first
// violation found is returned as a *ConsistencyError. A world that passed
// and has not been modified since is not checked again.
func (w *World) CheckConsistency(pc *progress.Counter) error {
	if w.checkedConsistency || w.RoomSet().Empty() {
		return nil
	}

	ids := w.RoomSet().Items()
	err := parallel.ForEach(pc, ids,
		func() struct{} { return struct{}{} },
		func(_ *struct{}, id roomid.RoomId) error { return w.checkRoom(id) },
		func(*struct{}) error { return nil },
	)
	if err != nil {
		return err
	}

	var serverErr error
	w.serverIds.ForEach(func(sid roomid.ServerRoomId, id roomid.RoomId) {
		if serverErr != nil {
			return
		}
		if r := w.Room(id); r == nil || r.ServerId != sid {
			serverErr = NewConsistencyError("room server id was not the expected value for server id %d", uint32(sid))
		}
	})
	if serverErr != nil {
		return serverErr
	}

	var posErr error
	w.spatialDb.ForEach(func(id roomid.RoomId, c coordinate.Coordinate) {
		if posErr != nil {
			return
		}
		if r := w.Room(id); r == nil || r.Position != c {
			posErr = NewConsistencyError("room position was not the expected coord at %s", c)
		}
	})
	if posErr != nil {
		return posErr
	}

	if err := w.checkLocalSpaces(); err != nil {
		return err
	}

	if w.spatialDb.NeedsBoundsUpdate() {
		return NewConsistencyError("needs bounds update")
	}
	known, _ := w.spatialDb.Bounds()
	if computed, _ := w.spatialDb.computeBounds(); computed != known {
		return NewConsistencyError("known bounds were not the computed bounds")
	}
	var fromRooms coordinate.Bounds
	first := true
	for id := range w.RoomSet().All {
		pos := w.rooms.Get(id).Position
		if first {
			fromRooms = coordinate.NewBounds(pos, pos)
			first = false
			continue
		}
		fromRooms.Insert(pos)
	}
	if fromRooms != known {
		return NewConsistencyError("computed bounds were not the known bounds")
	}

	w.checkedConsistency = true
	return nil
}
