package world

import (
	"log/slog"
	"math"

	"github.com/pixil98/go-mudmap/internal/change"
	"github.com/pixil98/go-mudmap/internal/coordinate"
	"github.com/pixil98/go-mudmap/internal/room"
	"github.com/pixil98/go-mudmap/internal/roomid"
)

func (w *World) insertParse(id roomid.RoomId, keys ParseKeys) {
	w.parseTree.insert(w.rooms.Get(id), keys)
}

func (w *World) removeParse(id roomid.RoomId, keys ParseKeys) {
	w.parseTree.remove(w.rooms.Get(id), keys)
}

// setRoom replaces a live room and keeps every index in step with it.
func (w *World) setRoom(r room.RawRoom) error {
	id := r.Id
	if !id.IsValid() {
		return NewInvalidMapOperation("Invalid RoomId")
	}
	if !w.HasRoom(id) {
		return NewInvalidMapOperation("RoomId not found")
	}

	r.EnforceInvariants()
	old := *w.rooms.Get(id)
	if old.Equal(&r) {
		return nil
	}

	keys := parseKeysChanged(&old, &r)
	w.removeParse(id, keys)
	w.areaInfos.Remove(old.Fields.Area, id)
	w.areaInfos.Insert(r.Fields.Area, id)

	serverIdChanged := old.ServerId != r.ServerId
	if serverIdChanged {
		w.serverIds.Remove(old.ServerId)
	}
	moved := old.Position != r.Position
	if moved {
		w.spatialDb.Remove(id, old.Position)
	}

	w.rooms.Set(r)
	w.insertParse(id, keys)

	if serverIdChanged {
		w.serverIds.Set(r.ServerId, id)
	}
	if moved {
		w.spatialDb.Add(id, r.Position)
	}
	return nil
}

// applyUpdate edits a copy of a live room and stores the result.
func (w *World) applyUpdate(id roomid.RoomId, fn func(*room.RawRoom)) error {
	r, err := w.RoomCopy(id)
	if err != nil {
		return err
	}
	fn(&r)
	return w.setRoom(r)
}

func (w *World) addExitInconsistent(from roomid.RoomId, dir room.ExitDirection, incoming bool, to roomid.RoomId) error {
	if !w.HasRoom(from) {
		return NewInvalidMapOperation("RoomId not found")
	}
	e := w.rooms.Get(from).Exit(dir)
	if incoming {
		if !e.Incoming.Contains(to) {
			set := e.Incoming
			set.Insert(to)
			w.rooms.SetExitIncoming(from, dir, set)
		}
		return nil
	}
	if !e.Outgoing.Contains(to) {
		set := e.Outgoing
		set.Insert(to)
		w.rooms.SetExitOutgoing(from, dir, set)
	}
	return nil
}

func (w *World) removeExitInconsistent(from roomid.RoomId, dir room.ExitDirection, incoming bool, to roomid.RoomId) {
	if !w.HasRoom(from) {
		return
	}
	e := w.rooms.Get(from).Exit(dir)
	if incoming {
		if e.Incoming.Contains(to) {
			set := e.Incoming
			set.Erase(to)
			w.rooms.SetExitIncoming(from, dir, set)
		}
		return
	}
	if e.Outgoing.Contains(to) {
		set := e.Outgoing
		set.Erase(to)
		w.rooms.SetExitOutgoing(from, dir, set)
	}
}

func (w *World) hasConsistentExit(from roomid.RoomId, dir room.ExitDirection, to roomid.RoomId, ways change.Ways) bool {
	if ways == change.TwoWay {
		return w.HasConsistentTwoWayExit(from, dir, to)
	}
	return w.HasConsistentOneWayExit(from, dir, to)
}

// addExit connects from to to. A two-way exit also adds the one-way reverse
// connection; the recursion never goes deeper than that.
func (w *World) addExit(from roomid.RoomId, dir room.ExitDirection, to roomid.RoomId, ways change.Ways) error {
	if w.hasConsistentExit(from, dir, to, ways) {
		return nil
	}
	if !w.HasRoom(to) {
		return NewInvalidMapOperation("RoomId not found")
	}
	if err := w.addExitInconsistent(from, dir, false, to); err != nil {
		return err
	}
	if err := w.addExitInconsistent(to, dir.Opposite(), true, from); err != nil {
		return err
	}
	if ways == change.TwoWay {
		return w.addExit(to, dir.Opposite(), from, change.OneWay)
	}
	return nil
}

func (w *World) removeExit(from roomid.RoomId, dir room.ExitDirection, to roomid.RoomId, ways change.Ways) {
	w.removeExitInconsistent(from, dir, false, to)
	w.removeExitInconsistent(to, dir.Opposite(), true, from)
	if ways == change.TwoWay {
		w.removeExit(to, dir.Opposite(), from, change.OneWay)
	}
}

// clearExit resets an exit. A one-way clear keeps the incoming connections.
func (w *World) clearExit(id roomid.RoomId, dir room.ExitDirection, ways change.Ways) {
	r := w.rooms.Get(id)
	if ways == change.OneWay {
		incoming := r.Exit(dir).Incoming
		*r.Exit(dir) = room.RawExit{Incoming: incoming}
	} else {
		*r.Exit(dir) = room.RawExit{}
	}
	r.Exit(dir).EnforceInvariants()
}

func (w *World) nukeHelper(id roomid.RoomId, dir room.ExitDirection, ex *room.RawExit, ways change.Ways) {
	for to := range ex.Outgoing.All {
		w.removeExit(id, dir, to, ways)
	}
	if ways == change.TwoWay {
		rev := dir.Opposite()
		for from := range ex.Incoming.All {
			w.removeExit(from, rev, id, ways)
		}
	}
}

func (w *World) nukeExit(id roomid.RoomId, dir room.ExitDirection, ways change.Ways) {
	if !w.HasRoom(id) {
		return
	}
	ex := w.rooms.Get(id).Exit(dir).Clone()
	w.clearExit(id, dir, ways)
	w.nukeHelper(id, dir, &ex, ways)
}

func (w *World) nukeAllExits(id roomid.RoomId, ways change.Ways) {
	if !w.HasRoom(id) {
		return
	}
	var exits [room.NumExits]room.RawExit
	for _, dir := range room.AllExits {
		exits[dir] = w.rooms.Get(id).Exit(dir).Clone()
		w.clearExit(id, dir, ways)
	}
	for _, dir := range room.AllExits {
		w.nukeHelper(id, dir, &exits[dir], ways)
	}
}

func (w *World) setPosition(id roomid.RoomId, c coordinate.Coordinate) error {
	return w.applyUpdate(id, func(r *room.RawRoom) {
		r.Position = c
	})
}

func (w *World) setServerId(id roomid.RoomId, sid roomid.ServerRoomId) error {
	return w.applyUpdate(id, func(r *room.RawRoom) {
		r.ServerId = sid
	})
}

func (w *World) setScaleFactor(id roomid.RoomId, scale float32) error {
	if math.IsNaN(float64(scale)) || math.IsInf(float64(scale), 0) || scale <= 0 {
		return NewInvalidMapOperation("Invalid scale factor %g", scale)
	}
	if scale == room.DefaultScaleFactor {
		scale = 0
	}
	return w.applyUpdate(id, func(r *room.RawRoom) {
		r.ScaleFactor = scale
	})
}

func (w *World) moveRelative(id roomid.RoomId, offset coordinate.Coordinate) error {
	pos, ok := w.Position(id)
	if !ok {
		return NewInvalidMapOperation("RoomId not found")
	}
	return w.setPosition(id, pos.Add(offset))
}

// wouldAllowRelativeMove reports whether every room in set exists and every
// destination is either free or occupied by another member of set.
func (w *World) wouldAllowRelativeMove(set roomid.RoomIdSet, offset coordinate.Coordinate) bool {
	for id := range set.All {
		pos, ok := w.Position(id)
		if !ok {
			return false
		}
		for other := range w.spatialDb.FindRooms(pos.Add(offset)).All {
			if !set.Contains(other) {
				return false
			}
		}
	}
	return true
}

func (w *World) moveRelativeSet(set roomid.RoomIdSet, offset coordinate.Coordinate) error {
	if set.Empty() {
		return NewInvalidMapOperation("no rooms specified")
	}
	if !w.wouldAllowRelativeMove(set, offset) {
		return NewInvalidMapOperation("invalid batch movement")
	}
	for id := range set.All {
		w.spatialDb.Remove(id, w.rooms.Get(id).Position)
	}
	for id := range set.All {
		r := w.rooms.Get(id)
		r.Position = r.Position.Add(offset)
		w.spatialDb.Add(id, r.Position)
	}
	return nil
}

// removeFromWorld deletes a room and its index entries. With removeLinks all
// connections to and from the room are severed in both directions.
func (w *World) removeFromWorld(id roomid.RoomId, removeLinks bool) error {
	if err := w.requireValidRoom(id); err != nil {
		return err
	}
	w.localSpaces.RemoveRoom(id)
	r := w.rooms.Get(id)
	w.removeParse(id, AllParseKeys)
	w.spatialDb.Remove(id, r.Position)
	if sid, ok := w.serverIds.Lookup(r.ServerId); ok && sid == id {
		w.serverIds.Remove(r.ServerId)
	}
	if removeLinks {
		w.nukeAllExits(id, change.TwoWay)
	}
	area := w.rooms.Get(id).Fields.Area
	if err := w.remapping.RemoveAt(id); err != nil {
		return err
	}
	w.rooms.RemoveAt(id)
	w.areaInfos.Remove(area, id)
	return nil
}

// updateRoom stores a room that may only differ from the live one in its
// fields, status and server id.
func (w *World) updateRoom(r room.RawRoom) error {
	cur := w.Room(r.Id)
	if cur == nil {
		return NewInvalidMapOperation("RoomId not found")
	}
	rest := r.Clone()
	rest.Fields = cur.Fields
	rest.Status = cur.Status
	rest.ServerId = cur.ServerId
	if !rest.Equal(cur) {
		return NewInvalidMapOperation("Room mismatch")
	}
	return w.setRoom(r)
}

// mergeUpdate folds the non-empty fields of source into target. Notes are
// concatenated and flag sets are combined; everything else is replaced.
func mergeUpdate(target *room.RawRoom, source *room.RawRoom) {
	for _, d := range room.RoomFieldTable {
		v := d.Get(&source.Fields)
		if v == d.Zero {
			continue
		}
		switch sv := v.(type) {
		case room.RoomNote:
			target.Fields.Note += sv
		case room.MobFlags:
			target.Fields.MobFlags |= sv
		case room.LoadFlags:
			target.Fields.LoadFlags |= sv
		default:
			d.Set(&target.Fields, v)
		}
	}
	for _, dir := range room.NESWUD {
		src := source.Exit(dir)
		if src.Fields == (room.ExitFields{}) {
			continue
		}
		target.Exit(dir).Fields = src.Fields
	}
}

// copyExits reconnects every connection of source to target.
func (w *World) copyExits(target roomid.RoomId, source *room.RawRoom) error {
	if target == source.Id {
		return NewInvalidMapOperation("RoomId can not match")
	}
	remap := func(id roomid.RoomId) roomid.RoomId {
		if id == source.Id {
			return target
		}
		return id
	}
	for _, dir := range room.AllExits {
		ex := source.Exit(dir)
		for from := range ex.Incoming.All {
			if err := w.addExit(remap(from), dir.Opposite(), target, change.OneWay); err != nil {
				return err
			}
		}
		for to := range ex.Outgoing.All {
			if err := w.addExit(target, dir, remap(to), change.OneWay); err != nil {
				return err
			}
		}
	}
	w.rooms.EnforceInvariants(target)
	return nil
}

func (w *World) mergeRelative(id roomid.RoomId, offset coordinate.Coordinate) error {
	if err := w.requireValidRoom(id); err != nil {
		return err
	}
	if offset.IsNull() {
		return nil
	}
	pos := w.rooms.Get(id).Position.Add(offset)
	targetId, ok := w.spatialDb.FindFirst(pos)
	if !ok {
		return w.setPosition(id, pos)
	}
	if targetId == id {
		return NewInvalidMapOperation("cannot merge a room with itself")
	}

	source := w.rooms.Get(id).Clone()
	target := w.rooms.Get(targetId).Clone()
	mergeUpdate(&target, &source)
	if err := w.setRoom(target); err != nil {
		return err
	}
	if err := w.copyExits(targetId, &source); err != nil {
		return err
	}
	return w.removeFromWorld(id, true)
}

func (w *World) initRoom(r room.RawRoom) {
	id := r.Id
	w.rooms.Set(r)
	w.areaInfos.Insert(r.Fields.Area, id)
	w.insertParse(id, AllParseKeys)
	w.spatialDb.Add(id, r.Position)
	w.serverIds.Set(r.ServerId, id)
}

func (w *World) addRoom(pos coordinate.Coordinate) (roomid.RoomId, error) {
	if w.spatialDb.HasRoomAt(pos) {
		return roomid.InvalidRoomId, NewInvalidMapOperation("Position in use")
	}
	id := w.NextId()
	if err := w.remapping.AddNew(id); err != nil {
		return roomid.InvalidRoomId, err
	}
	w.initRoom(room.RawRoom{Id: id, Position: pos, ServerId: roomid.InvalidServerRoomId})
	slog.Info("added new room", "room", w.ConvertToExternal(id))
	return id, nil
}

func (w *World) undeleteRoom(ext roomid.ExternalRoomId, raw room.RawRoom) error {
	id := raw.Id
	if !ext.IsValid() || !id.IsValid() {
		return NewInvalidMapOperation("Invalid room id")
	}
	if w.spatialDb.HasRoomAt(raw.Position) {
		return NewInvalidMapOperation("Position in use")
	}
	if w.HasRoom(id) {
		return NewInvalidMapOperation("World already contains that room id")
	}
	if w.ConvertToInternal(ext).IsValid() {
		return NewInvalidMapOperation("World already contains that external room id")
	}
	if id > w.NextId() && int(id) >= w.rooms.Len() {
		return NewInvalidMapOperation("Cannot allocate that room id.")
	}
	if ext > w.NextExternalId() {
		return NewInvalidMapOperation("Cannot allocate that external id.")
	}
	for _, dir := range room.AllExits {
		e := raw.Exit(dir)
		if !e.Incoming.Empty() || !e.Outgoing.Empty() {
			return NewInvalidMapOperation("exits must be restored separately")
		}
	}
	if err := w.remapping.Undelete(id, ext); err != nil {
		return err
	}
	w.initRoom(raw)
	slog.Info("added new room", "room", ext)
	return nil
}
