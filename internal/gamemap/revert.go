package gamemap

import (
	"fmt"
	"io"

	"github.com/pixil98/go-mudmap/internal/change"
	"github.com/pixil98/go-mudmap/internal/room"
	"github.com/pixil98/go-mudmap/internal/roomid"
)

// RevertPlan is the list of changes that restores a room to the state it
// had in an older map.
type RevertPlan struct {
	// Expect is the room as it was in the older map, in that map's ids.
	Expect room.RawRoom
	// Changes are expressed in the current map's ids.
	Changes []change.Change
	// HintUndelete is set when an exit could not be restored because its
	// target has been removed since.
	HintUndelete bool
	// WarnNoEntrances is set when the room's entrances differ. Entrances are
	// owned by the neighbouring rooms and are never restored.
	WarnNoEntrances bool
}

// BuildRevertPlan compares room id of current with the room that has the
// same external id in base. Warnings are written to out. The bool is false
// when the room did not exist in base.
func BuildRevertPlan(out io.Writer, current Map, id roomid.RoomId, base Map) (RevertPlan, bool, error) {
	after, err := current.GetRoomHandle(id)
	if err != nil {
		return RevertPlan{}, false, err
	}
	ext := after.ExternalId()
	before := base.FindRoomHandleExternal(ext)
	if !before.Exists() {
		fmt.Fprintf(out, "Room %s has been added since the last save, so it cannot be reverted.\n", ext)
		return RevertPlan{}, false, nil
	}

	plan := RevertPlan{Expect: before.Raw().Clone()}
	cw := current.World()

	// Translate the old exits into current ids, dropping targets that no
	// longer exist.
	var beforeOut [room.NumExits]roomid.RoomIdSet
	for _, dir := range room.AllExits {
		for to := range before.Exit(dir).Outgoing.All {
			toExt := base.ExternalRoomId(to)
			if h := current.FindRoomHandleExternal(toExt); h.Exists() {
				beforeOut[dir].Insert(h.Id())
				continue
			}
			fmt.Fprintf(out, "Warning: Room %s does not exist in the current map, so the exit %s cannot be restored.\n",
				toExt, dir)
			plan.HintUndelete = true
		}

		var beforeIn roomid.ExternalRoomIdSet
		for from := range before.Exit(dir).Incoming.All {
			beforeIn.Insert(base.ExternalRoomId(from))
		}
		var afterIn roomid.ExternalRoomIdSet
		for from := range after.Exit(dir).Incoming.All {
			afterIn.Insert(cw.ConvertToExternal(from))
		}
		if !beforeIn.Equal(afterIn) {
			plan.WarnNoEntrances = true
		}
	}

	// Connections are added before they are removed so the exit never
	// becomes empty in between, which would clear its flags.
	for _, dir := range room.AllExits {
		afterEx := after.Exit(dir)
		beforeEx := before.Exit(dir)
		changed := false

		for to := range beforeOut[dir].All {
			if !afterEx.Outgoing.Contains(to) {
				changed = true
				plan.Changes = append(plan.Changes, change.ModifyExitConnection{
					Type: change.ChangeAdd, Room: id, Dir: dir, To: to, Ways: change.OneWay,
				})
			}
		}
		for to := range afterEx.Outgoing.All {
			if !beforeOut[dir].Contains(to) {
				changed = true
				plan.Changes = append(plan.Changes, change.ModifyExitConnection{
					Type: change.ChangeRemove, Room: id, Dir: dir, To: to, Ways: change.OneWay,
				})
			}
		}

		for i := range room.ExitFieldTable {
			d := &room.ExitFieldTable[i]
			old := d.Get(&beforeEx.Fields)
			if changed || old != d.Get(&afterEx.Fields) {
				plan.Changes = append(plan.Changes, change.ModifyExitFlags{
					Room: id, Dir: dir, Field: old, Mode: change.ModeAssign,
				})
			}
		}
	}

	for i := range room.RoomFieldTable {
		d := &room.RoomFieldTable[i]
		if old := d.Get(before.Fields()); old != d.Get(after.Fields()) {
			plan.Changes = append(plan.Changes, change.ModifyRoomFlags{
				Room: id, Field: old, Mode: change.ModeAssign,
			})
		}
	}

	if before.ServerId() != after.ServerId() {
		plan.Changes = append(plan.Changes, change.SetServerId{Room: id, ServerId: before.ServerId()})
	}

	if pos := before.Position(); pos != after.Position() {
		if current.FindRoomHandleAt(pos).Exists() {
			fmt.Fprintln(out, "Warning: The room's old position is occupied, so it will not be moved.")
		} else {
			plan.Changes = append(plan.Changes, change.TryMoveCloseTo{Room: id, Desired: pos})
		}
	}

	if before.IsTemporary() != after.IsTemporary() {
		if before.IsTemporary() {
			fmt.Fprintln(out, "Warning: Room status cannot be restored.")
		} else {
			plan.Changes = append(plan.Changes, change.MakePermanent{Room: id})
		}
	}

	return plan, true, nil
}
