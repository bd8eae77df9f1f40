package world

import (
	"fmt"

	"github.com/pixil98/go-mudmap/internal/infomark"
	"github.com/pixil98/go-mudmap/internal/progress"
	"github.com/pixil98/go-mudmap/internal/room"
	"github.com/pixil98/go-mudmap/internal/roomid"
)

// Init builds a world from externally identified rooms. The input must
// already be sanitized: every exit must refer to a room in the list and
// every connection must be mirrored by its reverse entry.
func Init(pc *progress.Counter, extRooms []room.ExternalRawRoom, marks []infomark.Fields) (*World, error) {
	w := New()

	pc.SetNewTask("computing remapping", 1)
	w.remapping = ComputeRemapping(extRooms)
	if err := pc.Step(); err != nil {
		return nil, err
	}

	pc.SetNewTask("copying rooms", uint64(len(extRooms)))
	w.rooms.Resize(w.remapping.Size())
	rooms := make([]room.RawRoom, 0, len(extRooms))
	for i := range extRooms {
		r := w.remapping.RoomToInternal(&extRooms[i])
		if w.rooms.IsInitialized(r.Id) {
			return nil, NewInvalidMapOperation("duplicate room id %d", uint32(extRooms[i].Id))
		}
		w.rooms.Set(r)
		rooms = append(rooms, *w.rooms.Get(r.Id))
		if err := pc.Step(); err != nil {
			return nil, err
		}
	}

	pc.SetNewTask("indexing rooms", uint64(len(rooms)))
	var (
		global   = make([]roomid.RoomId, 0, len(rooms))
		areas    = map[room.RoomArea][]roomid.RoomId{}
		names    = map[room.RoomName][]roomid.RoomId{}
		descs    = map[room.RoomDesc][]roomid.RoomId{}
		namesAnd = map[NameDesc][]roomid.RoomId{}
	)
	for i := range rooms {
		r := &rooms[i]
		global = append(global, r.Id)
		areas[r.Fields.Area] = append(areas[r.Fields.Area], r.Id)
		names[r.Fields.Name] = append(names[r.Fields.Name], r.Id)
		descs[r.Fields.Description] = append(descs[r.Fields.Description], r.Id)
		nd := NameDesc{r.Fields.Name, r.Fields.Description}
		namesAnd[nd] = append(namesAnd[nd], r.Id)
		w.spatialDb.Add(r.Id, r.Position)
		w.serverIds.Set(r.ServerId, r.Id)
		if err := pc.Step(); err != nil {
			return nil, err
		}
	}
	w.areaInfos.global = roomid.Own(roomid.SetFromSlice(global))
	fillIndex(w.areaInfos.areas, areas)
	fillIndex(w.parseTree.NameOnly, names)
	fillIndex(w.parseTree.DescOnly, descs)
	fillIndex(w.parseTree.NameDesc, namesAnd)

	pc.SetNewTask("updating bounds", 1)
	if err := w.spatialDb.UpdateBounds(pc); err != nil {
		return nil, err
	}

	pc.SetNewTask("checking map consistency", 1)
	if err := w.CheckConsistency(pc); err != nil {
		return nil, fmt.Errorf("building world: %w", err)
	}

	for _, m := range marks {
		w.infomarks.Add(m)
	}
	return w, nil
}

func fillIndex[K comparable](dst map[K]roomid.RoomIdSet, src map[K][]roomid.RoomId) {
	for k, ids := range src {
		dst[k] = roomid.SetFromSlice(ids)
	}
}
