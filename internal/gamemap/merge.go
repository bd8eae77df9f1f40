package gamemap

import (
	"errors"
	"slices"

	"github.com/pixil98/go-mudmap/internal/coordinate"
	"github.com/pixil98/go-mudmap/internal/infomark"
	"github.com/pixil98/go-mudmap/internal/progress"
	"github.com/pixil98/go-mudmap/internal/room"
	"github.com/pixil98/go-mudmap/internal/roomid"
	"github.com/pixil98/go-mudmap/internal/world"
)

var ErrNothingToMerge = errors.New("no rooms to merge")

// remapExternal gives every id mentioned by rooms a fresh external id
// starting at next, so the rooms cannot collide with an existing map.
// Room ids are allocated before ids that only appear in exits.
func remapExternal(pc *progress.Counter, rooms []room.ExternalRawRoom, next roomid.ExternalRoomId) error {
	remap := map[roomid.ExternalRoomId]roomid.ExternalRoomId{}
	alloc := func(id roomid.ExternalRoomId) {
		if _, ok := remap[id]; ok {
			return
		}
		remap[id] = next
		next = next.Next()
	}

	pc.SetNewTask("computing new room ids", uint64(2*len(rooms)))
	for i := range rooms {
		alloc(rooms[i].Id)
		if err := pc.Step(); err != nil {
			return err
		}
	}
	for i := range rooms {
		for j := range rooms[i].Exits {
			for to := range rooms[i].Exits[j].Outgoing.All {
				alloc(to)
			}
			for from := range rooms[i].Exits[j].Incoming.All {
				alloc(from)
			}
		}
		if err := pc.Step(); err != nil {
			return err
		}
	}

	remapSet := func(set roomid.ExternalRoomIdSet) roomid.ExternalRoomIdSet {
		var out roomid.ExternalRoomIdSet
		for id := range set.All {
			out.Insert(remap[id])
		}
		return out
	}

	pc.SetNewTask("applying new room ids", uint64(len(rooms)))
	for i := range rooms {
		r := &rooms[i]
		r.Id = remap[r.Id]
		for j := range r.Exits {
			r.Exits[j].Outgoing = remapSet(r.Exits[j].Outgoing)
			r.Exits[j].Incoming = remapSet(r.Exits[j].Incoming)
		}
		if err := pc.Step(); err != nil {
			return err
		}
	}
	return nil
}

// Merge adds newRooms and newMarks to current. The new rooms get external
// ids after every id current uses and are shifted by offset; marks are
// shifted by the same offset in mark units. The combined list goes through
// the same sanitize and build pipeline as a fresh load. The local spaces of
// current are kept. newRooms is not modified.
func Merge(
	pc *progress.Counter,
	current Map,
	newRooms []room.ExternalRawRoom,
	newMarks []infomark.Fields,
	offset coordinate.Coordinate,
	opts world.ApplyOptions,
) (Map, error) {
	if len(newRooms) == 0 {
		return Map{}, ErrNothingToMerge
	}
	newRooms = slices.Clone(newRooms)

	if err := remapExternal(pc, newRooms, current.World().NextExternalId()); err != nil {
		return Map{}, err
	}

	if !offset.IsNull() {
		pc.SetNewTask("offsetting new rooms", uint64(len(newRooms)))
		for i := range newRooms {
			newRooms[i].Position = newRooms[i].Position.Add(offset)
			if err := pc.Step(); err != nil {
				return Map{}, err
			}
		}
	}

	oldMarks := current.Infomarks()
	pc.SetNewTask("creating combined map",
		uint64(current.NumRooms()+len(newRooms)+oldMarks.Len()+len(newMarks)))

	rooms := make([]room.ExternalRawRoom, 0, current.NumRooms()+len(newRooms))
	rooms = append(rooms, current.World().ExternalRooms()...)
	if err := pc.StepN(uint64(current.NumRooms())); err != nil {
		return Map{}, err
	}
	rooms = append(rooms, newRooms...)
	if err := pc.StepN(uint64(len(newRooms))); err != nil {
		return Map{}, err
	}

	marks := make([]infomark.Fields, 0, oldMarks.Len()+len(newMarks))
	marks = append(marks, oldMarks.All()...)
	for _, f := range newMarks {
		marks = append(marks, f.Offset(offset))
	}
	if err := pc.StepN(uint64(oldMarks.Len() + len(newMarks))); err != nil {
		return Map{}, err
	}

	pair, err := NewWorldBuilder(rooms, marks, opts).Build(pc)
	if err != nil {
		return Map{}, err
	}
	return pair.Modified.WithLocalSpaces(pc, current.ExternalLocalSpaces(), opts)
}
