package world

import (
	"log/slog"
	"strings"

	"github.com/pixil98/go-mudmap/internal/change"
	"github.com/pixil98/go-mudmap/internal/progress"
	"github.com/pixil98/go-mudmap/internal/room"
	"github.com/pixil98/go-mudmap/internal/roomid"
)

// BaseMapOptions names the rooms the base map is grown from.
type BaseMapOptions struct {
	SeedNames []string
}

func DefaultBaseMapOptions() BaseMapOptions {
	return BaseMapOptions{SeedNames: []string{"The Fountain Square", "Cosy Room"}}
}

func (o BaseMapOptions) isSeed(name room.RoomName) bool {
	for _, seed := range o.SeedNames {
		if strings.EqualFold(string(name), seed) {
			return true
		}
	}
	return false
}

func isSecretExit(e *room.RawExit) bool {
	return e.IsHidden() || e.ExitFlags().IsNoMatch()
}

// baseRooms returns every room reachable from a seed room without walking
// through a hidden or no-match exit.
func (w *World) baseRooms(pc *progress.Counter, opts BaseMapOptions) (roomid.RoomIdSet, error) {
	var todo []roomid.RoomId
	queued := make(map[roomid.RoomId]struct{}, w.NumRooms())
	enqueue := func(id roomid.RoomId) {
		if _, ok := queued[id]; !ok {
			queued[id] = struct{}{}
			todo = append(todo, id)
		}
	}

	pc.SetNewTask("looking for seed rooms", uint64(w.NumRooms()))
	for id := range w.RoomSet().All {
		r := w.rooms.Get(id)
		if r.IsPermanent() && opts.isSeed(r.Fields.Name) {
			enqueue(id)
		}
		if err := pc.Step(); err != nil {
			return roomid.RoomIdSet{}, err
		}
	}
	if len(todo) == 0 {
		return roomid.RoomIdSet{}, nil
	}

	pc.SetNewTask("walking reachable rooms", uint64(w.NumRooms()))
	base := make([]roomid.RoomId, 0, len(queued))
	for len(todo) > 0 {
		id := todo[len(todo)-1]
		todo = todo[:len(todo)-1]
		base = append(base, id)

		r := w.rooms.Get(id)
		for _, dir := range room.AllExits {
			e := r.Exit(dir)
			if isSecretExit(e) {
				continue
			}
			for to := range e.Outgoing.All {
				enqueue(to)
			}
		}
		if err := pc.Step(); err != nil {
			return roomid.RoomIdSet{}, err
		}
	}
	return roomid.SetFromSlice(base), nil
}

// generateBaseMap strips secret exits from the reachable rooms and then
// removes every room that cannot be reached. The two passes must run in that
// order; removing rooms first leaves stale exit flags behind.
func (w *World) generateBaseMap(pc *progress.Counter, opts BaseMapOptions) error {
	base, err := w.baseRooms(pc, opts)
	if err != nil {
		return err
	}
	if base.Empty() {
		slog.Warn("Unable to filter the map.")
		return nil
	}

	all := w.RoomSet().Clone()

	pc.SetNewTask("removing secret exits", uint64(base.Len()))
	exits := 0
	for id := range base.All {
		for _, dir := range room.AllExits {
			e := w.rooms.Get(id).Exit(dir)
			if e.Outgoing.Empty() && e.Incoming.Empty() && e.Fields == (room.ExitFields{}) {
				continue
			}
			if isSecretExit(e) {
				w.nukeExit(id, dir, change.OneWay)
				exits++
			}
		}
		if err := pc.Step(); err != nil {
			return err
		}
	}
	slog.Info("GenerateBaseMap removed hidden or no-match exits", "count", exits)

	pc.SetNewTask("removing inaccessible rooms", uint64(all.Len()))
	removed := 0
	for id := range all.All {
		if !base.Contains(id) {
			if err := w.removeFromWorld(id, true); err != nil {
				return err
			}
			removed++
		}
		if err := pc.Step(); err != nil {
			return err
		}
	}
	slog.Info("GenerateBaseMap removed inaccessible rooms", "count", removed)
	return nil
}
