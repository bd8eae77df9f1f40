package world

import (
	"fmt"
	"log/slog"

	"github.com/pixil98/go-mudmap/internal/change"
	"github.com/pixil98/go-mudmap/internal/coordinate"
	"github.com/pixil98/go-mudmap/internal/progress"
	"github.com/pixil98/go-mudmap/internal/room"
	"github.com/pixil98/go-mudmap/internal/roomid"
	"github.com/pixil98/go-mudmap/internal/sanitizer"
)

// ApplyOptions controls the work done after a batch of changes.
type ApplyOptions struct {
	// CheckConsistency runs the full consistency check after the batch.
	CheckConsistency bool
	BaseMap          BaseMapOptions
}

func DefaultApplyOptions() ApplyOptions {
	return ApplyOptions{
		CheckConsistency: true,
		BaseMap:          DefaultBaseMapOptions(),
	}
}

// ApplyOne applies a single change and restores every derived index.
func (w *World) ApplyOne(pc *progress.Counter, c change.Change, opts ApplyOptions) error {
	pc.SetNewTask("applying change", 1)
	if err := w.apply(pc, c, opts); err != nil {
		return err
	}
	if err := pc.Step(); err != nil {
		return err
	}
	return w.postChangeUpdates(pc, opts)
}

// ApplyAll applies changes strictly in order. The first failure aborts the
// batch and leaves the world partially modified, so callers apply batches to
// a copy.
func (w *World) ApplyAll(pc *progress.Counter, changes []change.Change, opts ApplyOptions) error {
	if len(changes) == 0 {
		return NewInvalidMapOperation("Changes are empty")
	}
	slog.Info("applying changes", "count", len(changes))

	pc.SetNewTask("applying changes", uint64(len(changes)))
	for i, c := range changes {
		if err := w.apply(pc, c, opts); err != nil {
			return fmt.Errorf("change %d (%s): %w", i, c.Name(), err)
		}
		if err := pc.Step(); err != nil {
			return err
		}
	}
	return w.postChangeUpdates(pc, opts)
}

func (w *World) postChangeUpdates(pc *progress.Counter, opts ApplyOptions) error {
	if w.NeedsBoundsUpdate() {
		if err := w.spatialDb.UpdateBounds(pc); err != nil {
			return err
		}
	}
	if opts.CheckConsistency {
		w.checkedConsistency = false
		if err := w.CheckConsistency(pc); err != nil {
			return err
		}
	}
	return nil
}

func (w *World) apply(pc *progress.Counter, c change.Change, opts ApplyOptions) error {
	switch c := c.(type) {
	case change.CompactRoomIds:
		return w.remapping.Compact(pc, c.FirstId)
	case change.RemoveAllDoorNames:
		w.removeAllDoorNames()
		return nil
	case change.GenerateBaseMap:
		return w.generateBaseMap(pc, opts.BaseMap)
	case change.CreateLocalSpace:
		return w.createLocalSpace(c.Space)
	case change.SetLocalSpacePortal:
		return w.setLocalSpacePortal(c.Space, Portal{X: c.X, Y: c.Y, Z: c.Z, W: c.W, H: c.H})
	case change.AddRoomToLocalSpace:
		return w.addRoomToLocalSpace(c.Space, c.Room)

	case change.AddPermanentRoom:
		id, err := w.addRoom(c.Position)
		if err != nil {
			return err
		}
		w.rooms.Get(id).Status = room.StatusPermanent
		return nil
	case change.AddRoom2:
		return w.addRoom2(c.Position, &c.Event)
	case change.RemoveRoom:
		return w.removeFromWorld(c.Room, true)
	case change.UndeleteRoom:
		return w.undeleteRoom(c.Room, c.Raw)
	case change.MakePermanent:
		return w.applyUpdate(c.Room, func(r *room.RawRoom) {
			r.Status = room.StatusPermanent
		})
	case change.Update:
		return w.applyParseEvent(c.Room, &c.Event, c.Type)
	case change.SetServerId:
		return w.setServerId(c.Room, c.ServerId)
	case change.SetScaleFactor:
		return w.setScaleFactor(c.Room, c.Scale)
	case change.MoveRelative:
		return w.moveRelative(c.Room, c.Offset)
	case change.MoveRelative2:
		return w.moveRelativeSet(c.Rooms, c.Offset)
	case change.MergeRelative:
		return w.mergeRelative(c.Room, c.Offset)
	case change.ModifyRoomFlags:
		return w.modifyRoomFlags(c)
	case change.TryMoveCloseTo:
		return w.tryMoveCloseTo(c.Room, c.Desired)

	case change.ModifyExitConnection:
		return w.modifyExitConnection(c)
	case change.ModifyExitFlags:
		return w.modifyExitFlags(c)
	case change.NukeExit:
		if err := w.requireValidRoom(c.Room); err != nil {
			return err
		}
		w.nukeExit(c.Room, c.Dir, c.Ways)
		return nil
	case change.SetExitFlags:
		return w.applyUpdate(c.Room, func(r *room.RawRoom) {
			e := &r.Exit(c.Dir).Fields
			e.ExitFlags = applyFlagChange(c.Type, e.ExitFlags, c.Flags).Sanitize()
		})
	case change.SetDoorFlags:
		return w.applyUpdate(c.Room, func(r *room.RawRoom) {
			e := &r.Exit(c.Dir).Fields
			e.DoorFlags = applyFlagChange(c.Type, e.DoorFlags, c.Flags).Sanitize()
		})
	case change.SetDoorName:
		return w.applyUpdate(c.Room, func(r *room.RawRoom) {
			r.Exit(c.Dir).Fields.DoorName = sanitizeDoorName(c.DoorName)
		})

	case change.AddInfomark:
		w.infomarks.Add(c.Fields)
		return nil
	case change.UpdateInfomark:
		if err := w.infomarks.Update(c.Id, c.Fields); err != nil {
			return NewInvalidMapOperation("%v", err)
		}
		return nil
	case change.RemoveInfomark:
		if err := w.infomarks.Remove(c.Id); err != nil {
			return NewInvalidMapOperation("%v", err)
		}
		return nil
	}
	return NewInvalidMapOperation("unsupported change %T", c)
}

type flagSet interface {
	~uint16 | ~uint32
}

func applyFlagChange[T flagSet](kind change.FlagChange, cur, v T) T {
	switch kind {
	case change.FlagAdd:
		return cur | v
	case change.FlagRemove:
		return cur &^ v
	default:
		return v
	}
}

func applyFlagMode[T flagSet](mode change.FlagModifyMode, cur, v T) T {
	switch mode {
	case change.ModeAssign:
		return v
	case change.ModeInsert:
		return cur | v
	case change.ModeRemove:
		return cur &^ v
	default:
		return 0
	}
}

func sanitizeEnum(v room.RoomField) room.RoomField {
	switch t := v.(type) {
	case room.Align:
		return t.Sanitize()
	case room.Light:
		return t.Sanitize()
	case room.Portable:
		return t.Sanitize()
	case room.Ridable:
		return t.Sanitize()
	case room.Sundeath:
		return t.Sanitize()
	case room.Terrain:
		return t.Sanitize()
	}
	return v
}

// modifiedRoomField combines the current value of a field with v according
// to mode. Strings and enums only support ASSIGN and CLEAR.
func modifiedRoomField(f *room.RoomFields, v room.RoomField, mode change.FlagModifyMode) room.RoomField {
	d := v.RoomField().Descriptor()
	cur := d.Get(f)
	if mode == change.ModeClear {
		return d.Zero
	}
	switch t := v.(type) {
	case room.MobFlags:
		return applyFlagMode(mode, cur.(room.MobFlags), t).Sanitize()
	case room.LoadFlags:
		return applyFlagMode(mode, cur.(room.LoadFlags), t).Sanitize()
	}
	if mode != change.ModeAssign {
		return cur
	}
	if d.Kind == room.KindEnum {
		return sanitizeEnum(v)
	}
	return v
}

func (w *World) modifyRoomFlags(c change.ModifyRoomFlags) error {
	if c.Field == nil {
		return NewInvalidMapOperation("missing room field")
	}
	return w.applyUpdate(c.Room, func(r *room.RawRoom) {
		r.Fields.Set(modifiedRoomField(&r.Fields, c.Field, c.Mode))
	})
}

func (w *World) modifyExitFlags(c change.ModifyExitFlags) error {
	if c.Field == nil {
		return NewInvalidMapOperation("missing exit field")
	}
	return w.applyUpdate(c.Room, func(r *room.RawRoom) {
		e := &r.Exit(c.Dir).Fields
		switch v := c.Field.(type) {
		case room.DoorName:
			switch c.Mode {
			case change.ModeAssign:
				e.DoorName = sanitizeDoorName(v)
			case change.ModeClear:
				e.DoorName = ""
			}
		case room.ExitFlags:
			e.ExitFlags = applyFlagMode(c.Mode, e.ExitFlags, v).Sanitize()
		case room.DoorFlags:
			e.DoorFlags = applyFlagMode(c.Mode, e.DoorFlags, v).Sanitize()
		}
	})
}

func sanitizeDoorName(n room.DoorName) room.DoorName {
	return room.DoorName(sanitizer.SanitizeOneLine(string(n)))
}

func (w *World) modifyExitConnection(c change.ModifyExitConnection) error {
	if err := w.requireValidRoom(c.Room); err != nil {
		return err
	}
	switch c.Type {
	case change.ChangeAdd:
		return w.addExit(c.Room, c.Dir, c.To, c.Ways)
	case change.ChangeRemove:
		w.removeExit(c.Room, c.Dir, c.To, c.Ways)
		return nil
	}
	return NewInvalidMapOperation("invalid change type %d", c.Type)
}

func (w *World) tryMoveCloseTo(id roomid.RoomId, desired coordinate.Coordinate) error {
	cur, ok := w.Position(id)
	if !ok {
		return NewInvalidMapOperation("RoomId not found")
	}
	if cur == desired {
		return nil
	}
	pos := coordinate.NearestFree(desired, func(c coordinate.Coordinate) bool {
		return c.Z == desired.Z && !w.HasRoomAt(c)
	})
	return w.setPosition(id, pos)
}

func (w *World) addRoom2(desired coordinate.Coordinate, ev *room.ParseEvent) error {
	pos := coordinate.NearestFree(desired, func(c coordinate.Coordinate) bool {
		return !w.HasRoomAt(c)
	})
	id, err := w.addRoom(pos)
	if err != nil {
		return err
	}
	return w.applyParseEvent(id, ev, change.UpdateNew)
}

// applyParseEvent copies what the parser observed into a room. Empty names
// and descriptions never overwrite known ones.
func (w *World) applyParseEvent(id roomid.RoomId, ev *room.ParseEvent, kind change.UpdateType) error {
	r, err := w.RoomCopy(id)
	if err != nil {
		return err
	}
	r.Fields.Area = room.RoomArea(sanitizer.SanitizeOneLine(string(ev.Area)))
	if kind != change.UpdateUpdate {
		r.Fields.Contents = ev.Contents
	}
	r.ServerId = ev.ServerId
	r.Fields.TerrainType = ev.Terrain.Sanitize()
	if ev.Name != "" {
		r.Fields.Name = ev.Name
	}
	if ev.Desc != "" {
		r.Fields.Description = ev.Desc
	}
	return w.updateRoom(r)
}

func (w *World) removeAllDoorNames() {
	n := 0
	for id := range w.RoomSet().All {
		r := w.rooms.Get(id)
		for _, dir := range room.AllExits {
			e := r.Exit(dir)
			if e.IsExit() && e.IsDoor() && e.DoorFlags().IsHidden() && e.HasDoorName() {
				e.Fields.DoorName = ""
				n++
			}
		}
	}
	slog.Info("removed hidden door names", "count", n)
}
