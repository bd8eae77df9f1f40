package gamemap

import (
	"cmp"
	"log/slog"
	"slices"
	"strings"

	"github.com/pixil98/go-mudmap/internal/change"
	"github.com/pixil98/go-mudmap/internal/coordinate"
	"github.com/pixil98/go-mudmap/internal/infomark"
	"github.com/pixil98/go-mudmap/internal/progress"
	"github.com/pixil98/go-mudmap/internal/room"
	"github.com/pixil98/go-mudmap/internal/roomid"
	"github.com/pixil98/go-mudmap/internal/sanitizer"
	"github.com/pixil98/go-mudmap/internal/world"
)

// MovedRoom records a room that sanitize relocated to a free coordinate.
type MovedRoom struct {
	Room     roomid.ExternalRoomId
	Original coordinate.Coordinate
}

// RemovedDoorName records a door name dropped from an exit that cannot have
// a door.
type RemovedDoorName struct {
	Room roomid.ExternalRoomId
	Dir  room.ExitDirection
	Name room.DoorName
}

// SanitizerChanges lists the repairs sanitize made that are replayed as
// changes after loading, so they show up in the diff against the loaded map.
type SanitizerChanges struct {
	MovedRooms       []MovedRoom
	RemovedDoorNames []RemovedDoorName
}

// WorldBuilder turns an externally sourced room list into a MapPair.
type WorldBuilder struct {
	rooms []room.ExternalRawRoom
	marks []infomark.Fields
	opts  world.ApplyOptions
}

func NewWorldBuilder(rooms []room.ExternalRawRoom, marks []infomark.Fields, opts world.ApplyOptions) *WorldBuilder {
	return &WorldBuilder{rooms: rooms, marks: marks, opts: opts}
}

// FromRooms builds a map from rooms with the default options.
func FromRooms(pc *progress.Counter, rooms []room.ExternalRawRoom, marks []infomark.Fields) (MapPair, error) {
	return NewWorldBuilder(rooms, marks, world.DefaultApplyOptions()).Build(pc)
}

// Build sanitizes the input, loads it as the base map and applies the
// post-load repairs to produce the modified map. The builder's room slice is
// modified in place.
func (b *WorldBuilder) Build(pc *progress.Counter) (MapPair, error) {
	if len(b.rooms) == 0 && len(b.marks) == 0 {
		return MapPair{Base: New(), Modified: New()}, nil
	}

	slices.SortFunc(b.rooms, func(x, y room.ExternalRawRoom) int {
		return cmp.Compare(x.Id, y.Id)
	})

	fixes, err := Sanitize(pc, b.rooms)
	if err != nil {
		return MapPair{}, err
	}

	w, err := world.Init(pc, b.rooms, b.marks)
	if err != nil {
		return MapPair{}, err
	}
	base := fromWorld(w)

	modified, err := b.applySanitizerChanges(pc, base, fixes)
	if err != nil {
		return MapPair{}, err
	}
	return MapPair{Base: base, Modified: modified}, nil
}

func (b *WorldBuilder) applySanitizerChanges(pc *progress.Counter, base Map, fixes SanitizerChanges) (Map, error) {
	changes := fixes.Changes(pc, base)
	if len(changes) == 0 {
		slog.Info("no post-load changes necessary")
		return base, nil
	}
	slog.Info("applying post-load changes", "count", len(changes))
	res, err := base.Apply(pc, changes, b.opts)
	if err != nil {
		return Map{}, err
	}
	return res.Map, nil
}

// Changes converts the recorded repairs into changes against base: removed
// door names are appended to the room note and moved rooms are moved back
// as close as possible to where they were.
func (s SanitizerChanges) Changes(pc *progress.Counter, base Map) []change.Change {
	var out []change.Change

	notes := map[roomid.RoomId]string{}
	var order []roomid.RoomId
	pc.IncreaseTotalStepsBy(uint64(len(s.RemovedDoorNames)))
	for _, rd := range s.RemovedDoorNames {
		h := base.FindRoomHandleExternal(rd.Room)
		if !h.Exists() {
			continue
		}
		note, ok := notes[h.Id()]
		if !ok {
			note = string(h.Fields().Note)
			order = append(order, h.Id())
		}
		if note != "" && !strings.HasSuffix(note, "\n") {
			note += "\n"
		}
		name := strings.TrimSuffix(string(rd.Name), "\n")
		note += "auto-removed door name " + rd.Dir.String() + ": " + name + "\n"
		notes[h.Id()] = note
		_ = pc.Step()
	}
	for _, id := range order {
		out = append(out, change.ModifyRoomFlags{
			Room:  id,
			Field: room.RoomNote(notes[id]),
			Mode:  change.ModeAssign,
		})
	}

	pc.IncreaseTotalStepsBy(uint64(len(s.MovedRooms)))
	for _, mr := range s.MovedRooms {
		h := base.FindRoomHandleExternal(mr.Room)
		if h.Exists() {
			out = append(out, change.TryMoveCloseTo{Room: h.Id(), Desired: mr.Original})
		}
		_ = pc.Step()
	}
	return out
}

func sanitizeFields(f *room.RoomFields) {
	f.Area = room.RoomArea(sanitizer.SanitizeOneLine(string(f.Area)))
	f.Name = room.RoomName(sanitizer.SanitizeOneLine(string(f.Name)))
	f.Description = room.RoomDesc(sanitizer.SanitizeMultiline(string(f.Description)))
	f.Contents = room.RoomContents(sanitizer.SanitizeMultiline(string(f.Contents)))
	f.Note = room.RoomNote(sanitizer.SanitizeUserSupplied(string(f.Note)))
}

func sanitizeRoom(r *room.ExternalRawRoom) {
	sanitizeFields(&r.Fields)
	for i := range r.Exits {
		e := &r.Exits[i].Fields
		e.DoorName = room.DoorName(sanitizer.SanitizeOneLine(string(e.DoorName)))
	}
	r.SanitizeEnums()
}

type connectionRepairs struct {
	missingIn, missingOut int
	removedIn, removedOut int
}

type flagRepairs struct {
	addedExit, removedExit int
	addedDoor, removedDoor int
	removedDoorNames       int
	removedDoorFlags       int
}

type roomTable struct {
	rooms []room.ExternalRawRoom
	index map[roomid.ExternalRoomId]int
}

func (t *roomTable) find(id roomid.ExternalRoomId) *room.ExternalRawRoom {
	if i, ok := t.index[id]; ok {
		return &t.rooms[i]
	}
	return nil
}

// repairExit makes every connection of one exit refer to a known room and
// adds the reverse entries that are missing. incoming selects which of the
// two sets is walked.
func (t *roomTable) repairExit(r *room.ExternalRawRoom, dir room.ExitDirection, incoming bool, added, removed *int) {
	rev := dir.Opposite()
	set := &r.Exit(dir).Outgoing
	if incoming {
		set = &r.Exit(dir).Incoming
	}
	for _, otherId := range set.Items() {
		other := t.find(otherId)
		if other == nil {
			set.Erase(otherId)
			*removed++
			continue
		}
		otherSet := &other.Exit(rev).Incoming
		if incoming {
			otherSet = &other.Exit(rev).Outgoing
		}
		if !otherSet.Contains(r.Id) {
			otherSet.Insert(r.Id)
			*added++
		}
	}
}

func repairFlags(r *room.ExternalRawRoom, dir room.ExitDirection, st *flagRepairs, fixes *SanitizerChanges) {
	e := r.Exit(dir)
	f := &e.Fields

	hasExits := !e.Outgoing.Empty()
	hasDoorFlags := f.DoorFlags != 0
	hasDoorName := f.DoorName != ""
	hasDoorFlag := f.ExitFlags.IsDoor()

	shouldHaveExit := hasExits
	shouldHaveDoor := shouldHaveExit && (hasDoorFlag || hasDoorFlags || hasDoorName)

	switch {
	case shouldHaveExit && !f.ExitFlags.IsExit():
		f.ExitFlags |= room.ExitFlagExit
		st.addedExit++
	case !shouldHaveExit && f.ExitFlags.IsExit():
		f.ExitFlags &^= room.ExitFlagExit
		st.removedExit++
	}

	if shouldHaveDoor && !hasDoorFlag {
		f.ExitFlags |= room.ExitFlagDoor
		st.addedDoor++
	}
	if shouldHaveDoor {
		return
	}
	if hasDoorFlag {
		f.ExitFlags &^= room.ExitFlagDoor
		st.removedDoor++
	}
	if hasDoorName {
		if f.DoorName != "\n" {
			fixes.RemovedDoorNames = append(fixes.RemovedDoorNames, RemovedDoorName{Room: r.Id, Dir: dir, Name: f.DoorName})
		}
		f.DoorName = ""
		st.removedDoorNames++
	}
	if hasDoorFlags {
		f.DoorFlags = 0
		st.removedDoorFlags++
	}
}

func hasUniqueCoords(rooms []room.ExternalRawRoom) bool {
	seen := make(map[coordinate.Coordinate]struct{}, len(rooms))
	for i := range rooms {
		if _, ok := seen[rooms[i].Position]; ok {
			return false
		}
		seen[rooms[i].Position] = struct{}{}
	}
	return true
}

// repairCoords moves every room that shares a coordinate with an earlier
// room to a fresh row above the map, keeping its layer.
func (t *roomTable) repairCoords(fixes *SanitizerChanges) error {
	var bounds coordinate.Bounds
	seen := make(map[coordinate.Coordinate]struct{}, len(t.rooms))
	var relocate roomid.ExternalRoomIdSet
	for i := range t.rooms {
		pos := t.rooms[i].Position
		if i == 0 {
			bounds = coordinate.NewBounds(pos, pos)
		} else {
			bounds.Insert(pos)
		}
		if _, ok := seen[pos]; ok {
			relocate.Insert(t.rooms[i].Id)
			continue
		}
		seen[pos] = struct{}{}
	}
	if relocate.Empty() {
		return nil
	}

	lo, hi := bounds.Min.X, bounds.Max.X
	cursor := coordinate.New(lo, bounds.Max.Y+1, 0)
	next := func(z int) (coordinate.Coordinate, error) {
		result := cursor
		if cursor.X == hi {
			cursor.X++
		} else {
			cursor.X = lo
			cursor.Y++
		}
		result.Z = z
		if _, ok := seen[result]; ok {
			return result, world.NewInvalidMapOperation("sanitize assigned an occupied coordinate %s", result)
		}
		seen[result] = struct{}{}
		return result, nil
	}

	for id := range relocate.All {
		r := t.find(id)
		fixes.MovedRooms = append(fixes.MovedRooms, MovedRoom{Room: id, Original: r.Position})
		pos, err := next(r.Position.Z)
		if err != nil {
			return err
		}
		r.Position = pos
	}
	return nil
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

// Sanitize repairs an externally sourced room list in place so it can be
// loaded: text and enum fields are normalized, connections to unknown rooms
// are dropped, missing reverse connections are added, exit and door flags
// are made consistent and rooms sharing a coordinate are moved apart. Room
// ids must be valid and unique.
func Sanitize(pc *progress.Counter, rooms []room.ExternalRawRoom) (SanitizerChanges, error) {
	var fixes SanitizerChanges

	pc.SetNewTask("sanitizing input", uint64(len(rooms)))
	changed := 0
	for i := range rooms {
		before := rooms[i].Clone()
		sanitizeRoom(&rooms[i])
		if !before.Equal(&rooms[i]) {
			changed++
		}
		if err := pc.Step(); err != nil {
			return fixes, err
		}
	}
	slog.Info("sanitize updated room fields", "rooms", changed)

	t := &roomTable{rooms: rooms, index: make(map[roomid.ExternalRoomId]int, len(rooms))}
	for i := range rooms {
		id := rooms[i].Id
		if !id.IsValid() {
			return fixes, world.NewInvalidMapOperation("invalid room id in input")
		}
		if _, ok := t.index[id]; ok {
			return fixes, world.NewInvalidMapOperation("duplicate room id %d in input", uint32(id))
		}
		t.index[id] = i
	}

	var conns connectionRepairs
	var flags flagRepairs
	pc.SetNewTask("checking exits and flags", uint64(len(rooms)))
	for i := range rooms {
		r := &rooms[i]
		for _, dir := range room.AllExits {
			t.repairExit(r, dir, false, &conns.missingIn, &conns.removedOut)
			t.repairExit(r, dir, true, &conns.missingOut, &conns.removedIn)
			repairFlags(r, dir, &flags, &fixes)
		}
		if err := pc.Step(); err != nil {
			return fixes, err
		}
	}

	if !hasUniqueCoords(rooms) {
		if err := t.repairCoords(&fixes); err != nil {
			return fixes, err
		}
		if !hasUniqueCoords(rooms) {
			return fixes, world.NewInvalidMapOperation("unable to assign unique coordinates")
		}
	}

	logCount := func(msg string, n int) {
		if n > 0 {
			slog.Info(msg, "count", n)
		}
	}
	logCount("sanitize added missing incoming connections", conns.missingIn)
	logCount("sanitize added missing outgoing connections", conns.missingOut)
	logCount("sanitize removed invalid incoming connections", conns.removedIn)
	logCount("sanitize removed invalid outgoing connections", conns.removedOut)
	logCount("sanitize added missing exit flags", flags.addedExit)
	logCount("sanitize removed invalid exit flags", flags.removedExit)
	logCount("sanitize added missing door flags", flags.addedDoor)
	logCount("sanitize removed invalid door flags", flags.removedDoor)
	logCount("sanitize removed invalid door names", flags.removedDoorNames)
	logCount("sanitize removed invalid door flag sets", flags.removedDoorFlags)

	if n := len(fixes.MovedRooms); n > 0 {
		slog.Warn("sanitize altered room positions to make coordinates unique", "rooms", n)
		slog.Info("will attempt to move room"+plural(n)+" back after loading", "count", n)
	}
	if n := len(fixes.RemovedDoorNames); n > 0 {
		slog.Info("will attempt to add removed door name"+plural(n)+" to room notes after loading", "count", n)
	}
	return fixes, nil
}
