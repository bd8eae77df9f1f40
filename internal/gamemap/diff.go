package gamemap

import (
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/pixil98/go-mudmap/internal/diff"
	"github.com/pixil98/go-mudmap/internal/parallel"
	"github.com/pixil98/go-mudmap/internal/progress"
	"github.com/pixil98/go-mudmap/internal/room"
	"github.com/pixil98/go-mudmap/internal/roomid"
	"github.com/pixil98/go-mudmap/internal/world"
)

// RoomDifference is one difference between two versions of a room, or a
// room that only exists on one side. The set of variants is closed.
type RoomDifference interface {
	isRoomDifference()
}

type RoomAdded struct{ Room RoomHandle }

type RoomRemoved struct{ Room RoomHandle }

type ServerIdDifference struct{ A, B RoomHandle }

type PositionDifference struct{ A, B RoomHandle }

type StatusDifference struct{ A, B RoomHandle }

type RoomFieldDifference struct {
	A, B     RoomHandle
	Old, New room.RoomField
}

type ExitFieldDifference struct {
	A, B     RoomHandle
	Dir      room.ExitDirection
	Old, New room.ExitField
}

type ExitOutgoingDifference struct {
	A, B RoomHandle
	Dir  room.ExitDirection
}

func (RoomAdded) isRoomDifference()              {}
func (RoomRemoved) isRoomDifference()            {}
func (ServerIdDifference) isRoomDifference()     {}
func (PositionDifference) isRoomDifference()     {}
func (StatusDifference) isRoomDifference()       {}
func (RoomFieldDifference) isRoomDifference()    {}
func (ExitFieldDifference) isRoomDifference()    {}
func (ExitOutgoingDifference) isRoomDifference() {}

// externalOutgoing returns the exit targets of a room in external ids.
func externalOutgoing(h RoomHandle, dir room.ExitDirection) roomid.ExternalRoomIdSet {
	var out roomid.ExternalRoomIdSet
	w := h.Map().World()
	for to := range h.Exit(dir).Outgoing.All {
		out.Insert(w.ConvertToExternal(to))
	}
	return out
}

// CompareRooms reports every difference between two versions of the same
// room, in field table order. Both handles must refer to the same external
// id.
func CompareRooms(a, b RoomHandle, report func(RoomDifference)) error {
	if a.ExternalId() != b.ExternalId() {
		return world.NewInvalidMapOperation("cannot compare room %d with room %d",
			uint32(a.ExternalId()), uint32(b.ExternalId()))
	}

	if a.ServerId() != b.ServerId() {
		report(ServerIdDifference{A: a, B: b})
	}
	if a.Position() != b.Position() {
		report(PositionDifference{A: a, B: b})
	}
	if a.IsTemporary() != b.IsTemporary() {
		report(StatusDifference{A: a, B: b})
	}

	for i := range room.RoomFieldTable {
		d := &room.RoomFieldTable[i]
		if av, bv := d.Get(a.Fields()), d.Get(b.Fields()); av != bv {
			report(RoomFieldDifference{A: a, B: b, Old: av, New: bv})
		}
	}

	for _, dir := range room.AllExits {
		ae, be := &a.Exit(dir).Fields, &b.Exit(dir).Fields
		for i := range room.ExitFieldTable {
			d := &room.ExitFieldTable[i]
			if av, bv := d.Get(ae), d.Get(be); av != bv {
				report(ExitFieldDifference{A: a, B: b, Dir: dir, Old: av, New: bv})
			}
		}
		if !externalOutgoing(a, dir).Equal(externalOutgoing(b, dir)) {
			report(ExitOutgoingDifference{A: a, B: b, Dir: dir})
		}
	}
	return nil
}

// TextReporter renders differences as "- " and "+ " prefixed lines, with
// word level diffs for text fields.
type TextReporter struct {
	out *strings.Builder
}

func NewTextReporter(out *strings.Builder) *TextReporter {
	return &TextReporter{out: out}
}

func (r *TextReporter) remove() { r.out.WriteString("- ") }
func (r *TextReporter) add()    { r.out.WriteString("+ ") }

func (r *TextReporter) roomPrefix(h RoomHandle) {
	r.out.WriteString("Room/")
	r.out.WriteString(strconv.FormatUint(uint64(h.ExternalId()), 10))
}

func (r *TextReporter) exitPrefix(h RoomHandle, dir room.ExitDirection) {
	r.roomPrefix(h)
	name := dir.String()
	r.out.WriteString("/Exit/")
	r.out.WriteString(strings.ToUpper(name[:1]) + name[1:])
}

func (r *TextReporter) serverId(h RoomHandle) {
	r.roomPrefix(h)
	r.out.WriteString("/ServerId: ")
	if sid := h.ServerId(); sid.IsValid() {
		r.out.WriteString(strconv.FormatUint(uint64(sid), 10))
	} else {
		r.out.WriteString("undefined")
	}
	r.out.WriteString("\n")
}

func (r *TextReporter) position(h RoomHandle) {
	r.roomPrefix(h)
	r.out.WriteString("/Position: ")
	r.out.WriteString(h.Position().Plain())
	r.out.WriteString("\n")
}

func (r *TextReporter) status(h RoomHandle) {
	r.roomPrefix(h)
	r.out.WriteString("/Status: ")
	if h.IsTemporary() {
		r.out.WriteString("TEMPORARY")
	} else {
		r.out.WriteString("PERMANENT")
	}
	r.out.WriteString("\n")
}

func fieldValue(v any) string {
	switch v.(type) {
	case room.RoomArea, room.RoomName, room.RoomDesc, room.RoomContents, room.RoomNote, room.DoorName:
		return strconv.Quote(room.FieldString(v))
	}
	return room.FieldString(v)
}

func (r *TextReporter) roomField(h RoomHandle, v room.RoomField) {
	r.roomPrefix(h)
	r.out.WriteString("/" + v.RoomField().String() + ": ")
	r.out.WriteString(fieldValue(v))
	r.out.WriteString("\n")
}

func (r *TextReporter) exitField(h RoomHandle, dir room.ExitDirection, v room.ExitField) {
	r.exitPrefix(h, dir)
	r.out.WriteString("/" + v.ExitField().String() + ": ")
	r.out.WriteString(fieldValue(v))
	r.out.WriteString("\n")
}

func (r *TextReporter) outgoing(h RoomHandle, dir room.ExitDirection) {
	r.exitPrefix(h, dir)
	r.out.WriteString("/Outgoing: ")
	ids := externalOutgoing(h, dir).Items()
	strs := make([]string, len(ids))
	for i, id := range ids {
		strs[i] = strconv.FormatUint(uint64(id), 10)
	}
	r.out.WriteString(strings.Join(strs, " "))
	r.out.WriteString("\n")
}

// everything prints every non-default property of a room behind prefix.
func (r *TextReporter) everything(h RoomHandle, prefix func()) {
	prefix()
	r.position(h)
	prefix()
	r.status(h)

	for i := range room.RoomFieldTable {
		d := &room.RoomFieldTable[i]
		if v := d.Get(h.Fields()); v != d.Zero {
			prefix()
			r.roomField(h, v)
		}
	}
	for _, dir := range room.AllExits {
		e := h.Exit(dir)
		for i := range room.ExitFieldTable {
			d := &room.ExitFieldTable[i]
			if v := d.Get(&e.Fields); v != d.Zero {
				prefix()
				r.exitField(h, dir, v)
			}
		}
		if !e.Outgoing.Empty() {
			prefix()
			r.outgoing(h, dir)
		}
	}
}

// Report renders one difference.
func (r *TextReporter) Report(d RoomDifference) {
	switch d := d.(type) {
	case RoomAdded:
		r.everything(d.Room, r.add)
	case RoomRemoved:
		r.everything(d.Room, r.remove)
	case ServerIdDifference:
		r.remove()
		r.serverId(d.A)
		r.add()
		r.serverId(d.B)
	case PositionDifference:
		r.remove()
		r.position(d.A)
		r.add()
		r.position(d.B)
	case StatusDifference:
		r.remove()
		r.status(d.A)
		r.add()
		r.status(d.B)
	case RoomFieldDifference:
		desc := d.Old.RoomField().Descriptor()
		if desc.Kind == room.KindString {
			r.roomPrefix(d.A)
			r.out.WriteString("/" + desc.Name + ": \n")
			diff.PrintWords(r.out, room.FieldString(d.Old), room.FieldString(d.New))
			return
		}
		if d.Old != desc.Zero {
			r.remove()
			r.roomField(d.A, d.Old)
		}
		if d.New != desc.Zero {
			r.add()
			r.roomField(d.B, d.New)
		}
	case ExitFieldDifference:
		zero := room.ExitFieldTable[d.Old.ExitField()].Zero
		if d.Old != zero {
			r.remove()
			r.exitField(d.A, d.Dir, d.Old)
		}
		if d.New != zero {
			r.add()
			r.exitField(d.B, d.Dir, d.New)
		}
	case ExitOutgoingDifference:
		if !d.A.Exit(d.Dir).Outgoing.Empty() {
			r.remove()
			r.outgoing(d.A, d.Dir)
		}
		if !d.B.Exit(d.Dir).Outgoing.Empty() {
			r.add()
			r.outgoing(d.B, d.Dir)
		}
	}
}

type diffSets struct {
	removed, added, common []roomid.ExternalRoomId
}

func sortedIds(locals []diffSets, pick func(*diffSets) []roomid.ExternalRoomId) []roomid.ExternalRoomId {
	var out []roomid.ExternalRoomId
	for i := range locals {
		out = append(out, pick(&locals[i])...)
	}
	slices.Sort(out)
	return out
}

// reportRooms renders each room in ids on a worker and concatenates the
// results in id order.
func reportRooms(pc *progress.Counter, ids []roomid.ExternalRoomId, render func(*strings.Builder, roomid.ExternalRoomId) error) (string, error) {
	locals, err := parallel.Map(pc, ids,
		func() strings.Builder { return strings.Builder{} },
		render,
	)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	for i := range locals {
		sb.WriteString(locals[i].String())
	}
	return sb.String(), nil
}

// Diff writes a report of every room removed, added or changed between a
// and b. Rooms are matched by external id.
func Diff(pc *progress.Counter, out io.Writer, a, b Map) error {
	aw, bw := a.World(), b.World()

	pc.SetNewTask("scanning old rooms", uint64(a.NumRooms()))
	oldScan, err := parallel.Map(pc, a.RoomSet().Items(),
		func() diffSets { return diffSets{} },
		func(s *diffSets, id roomid.RoomId) error {
			ext := aw.ConvertToExternal(id)
			if b.FindRoomHandleExternal(ext).Exists() {
				s.common = append(s.common, ext)
			} else {
				s.removed = append(s.removed, ext)
			}
			return nil
		},
	)
	if err != nil {
		return err
	}

	pc.SetNewTask("scanning new rooms", uint64(b.NumRooms()))
	newScan, err := parallel.Map(pc, b.RoomSet().Items(),
		func() diffSets { return diffSets{} },
		func(s *diffSets, id roomid.RoomId) error {
			ext := bw.ConvertToExternal(id)
			if !a.FindRoomHandleExternal(ext).Exists() {
				s.added = append(s.added, ext)
			}
			return nil
		},
	)
	if err != nil {
		return err
	}

	removed := sortedIds(oldScan, func(s *diffSets) []roomid.ExternalRoomId { return s.removed })
	common := sortedIds(oldScan, func(s *diffSets) []roomid.ExternalRoomId { return s.common })
	added := sortedIds(newScan, func(s *diffSets) []roomid.ExternalRoomId { return s.added })

	var sb strings.Builder
	hasChange := false

	if len(removed) > 0 {
		hasChange = true
		sb.WriteString("Removed rooms:\n\n")
		pc.SetNewTask("reporting removed rooms", uint64(len(removed)))
		text, err := reportRooms(pc, removed, func(local *strings.Builder, ext roomid.ExternalRoomId) error {
			fmt.Fprintf(local, "Removed room %d:\n", uint32(ext))
			NewTextReporter(local).Report(RoomRemoved{Room: a.FindRoomHandleExternal(ext)})
			return nil
		})
		if err != nil {
			return err
		}
		sb.WriteString(text)
	}

	if len(added) > 0 {
		if hasChange {
			sb.WriteString("\n")
		}
		hasChange = true
		sb.WriteString("Added rooms:\n\n")
		pc.SetNewTask("reporting added rooms", uint64(len(added)))
		text, err := reportRooms(pc, added, func(local *strings.Builder, ext roomid.ExternalRoomId) error {
			fmt.Fprintf(local, "Added room %d:\n", uint32(ext))
			NewTextReporter(local).Report(RoomAdded{Room: b.FindRoomHandleExternal(ext)})
			return nil
		})
		if err != nil {
			return err
		}
		sb.WriteString(text)
	}

	pc.SetNewTask("scanning common rooms", uint64(len(common)))
	text, err := reportRooms(pc, common, func(local *strings.Builder, ext roomid.ExternalRoomId) error {
		var one strings.Builder
		rep := NewTextReporter(&one)
		if err := CompareRooms(a.FindRoomHandleExternal(ext), b.FindRoomHandleExternal(ext), rep.Report); err != nil {
			return err
		}
		if one.Len() == 0 {
			return nil
		}
		fmt.Fprintf(local, "\nChanges to room %d:\n", uint32(ext))
		local.WriteString(one.String())
		return nil
	})
	if err != nil {
		return err
	}
	if text != "" {
		if hasChange {
			sb.WriteString("\n")
		}
		hasChange = true
		sb.WriteString("Changes to existing rooms:\n")
		sb.WriteString(text)
	}

	if !hasChange {
		sb.WriteString("None.\n")
	} else {
		sb.WriteString("\nEnd of changes.\n")
	}
	_, err = io.WriteString(out, sb.String())
	return err
}

// BasicDiffStats counts rooms removed, added and changed between two maps
// that share internal ids.
type BasicDiffStats struct {
	RoomsRemoved int
	RoomsAdded   int
	RoomsChanged int
}

func GetBasicDiffStats(pc *progress.Counter, base, modified Map) (BasicDiffStats, error) {
	bw, mw := base.World(), modified.World()
	var st BasicDiffStats

	err := parallel.ForEach(pc, base.RoomSet().Items(),
		func() int { return 0 },
		func(n *int, id roomid.RoomId) error {
			if !mw.HasRoom(id) {
				*n++
			}
			return nil
		},
		func(n *int) error {
			st.RoomsRemoved += *n
			return nil
		},
	)
	if err != nil {
		return st, err
	}

	err = parallel.ForEach(pc, modified.RoomSet().Items(),
		func() BasicDiffStats { return BasicDiffStats{} },
		func(local *BasicDiffStats, id roomid.RoomId) error {
			if !bw.HasRoom(id) {
				local.RoomsAdded++
				return nil
			}
			if !bw.Room(id).Equal(mw.Room(id)) {
				local.RoomsChanged++
			}
			return nil
		},
		func(local *BasicDiffStats) error {
			st.RoomsAdded += local.RoomsAdded
			st.RoomsChanged += local.RoomsChanged
			return nil
		},
	)
	return st, err
}
