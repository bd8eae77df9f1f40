package world

import (
	"fmt"
	"io"
	"maps"

	"github.com/pixil98/go-mudmap/internal/coordinate"
	"github.com/pixil98/go-mudmap/internal/progress"
	"github.com/pixil98/go-mudmap/internal/roomid"
)

// SpatialDb indexes rooms by position. A coordinate normally holds one room;
// the set form lets the index represent a conflicting map so the consistency
// check can report it. Bounds are cached and only recomputed by UpdateBounds.
type SpatialDb struct {
	rooms map[coordinate.Coordinate]roomid.RoomIdSet

	bounds      coordinate.Bounds
	hasBounds   bool
	needsUpdate bool
}

func (s *SpatialDb) Clone() SpatialDb {
	c := *s
	c.rooms = maps.Clone(s.rooms)
	return c
}

// Equal compares the indexed rooms only.
func (s *SpatialDb) Equal(o *SpatialDb) bool {
	return maps.EqualFunc(s.rooms, o.rooms, setsEqual)
}

func (s *SpatialDb) Len() int {
	n := 0
	for _, set := range s.rooms {
		n += set.Len()
	}
	return n
}

func (s *SpatialDb) Add(id roomid.RoomId, c coordinate.Coordinate) {
	if s.rooms == nil {
		s.rooms = map[coordinate.Coordinate]roomid.RoomIdSet{}
	}
	set := s.rooms[c]
	set.Insert(id)
	s.rooms[c] = set
	s.needsUpdate = true
}

func (s *SpatialDb) Remove(id roomid.RoomId, c coordinate.Coordinate) {
	set, ok := s.rooms[c]
	if !ok {
		return
	}
	set.Erase(id)
	if set.Empty() {
		delete(s.rooms, c)
	} else {
		s.rooms[c] = set
	}
	s.needsUpdate = true
}

func (s *SpatialDb) Move(id roomid.RoomId, from, to coordinate.Coordinate) {
	s.Remove(id, from)
	s.Add(id, to)
}

// FindRooms returns every room at c.
func (s *SpatialDb) FindRooms(c coordinate.Coordinate) roomid.RoomIdSet {
	return s.rooms[c]
}

// FindFirst returns the lowest id at c.
func (s *SpatialDb) FindFirst(c coordinate.Coordinate) (roomid.RoomId, bool) {
	set, ok := s.rooms[c]
	if !ok || set.Empty() {
		return roomid.InvalidRoomId, false
	}
	return set.First(), true
}

func (s *SpatialDb) HasRoomAt(c coordinate.Coordinate) bool {
	return !s.rooms[c].Empty()
}

// HasUniqueCoords reports whether no coordinate holds more than one room.
func (s *SpatialDb) HasUniqueCoords() bool {
	for _, set := range s.rooms {
		if set.Len() > 1 {
			return false
		}
	}
	return true
}

// ForEach visits every room with its position in no particular order.
func (s *SpatialDb) ForEach(fn func(roomid.RoomId, coordinate.Coordinate)) {
	for c, set := range s.rooms {
		for id := range set.All {
			fn(id, c)
		}
	}
}

func (s *SpatialDb) NeedsBoundsUpdate() bool { return s.needsUpdate }

// Bounds returns the cached bounds. ok is false for an empty index.
func (s *SpatialDb) Bounds() (coordinate.Bounds, bool) {
	return s.bounds, s.hasBounds
}

func (s *SpatialDb) computeBounds() (coordinate.Bounds, bool) {
	var b coordinate.Bounds
	found := false
	for c := range s.rooms {
		if !found {
			b = coordinate.NewBounds(c, c)
			found = true
			continue
		}
		b.Insert(c)
	}
	return b, found
}

func (s *SpatialDb) UpdateBounds(pc *progress.Counter) error {
	if err := pc.CheckCancel(); err != nil {
		return err
	}
	s.bounds, s.hasBounds = s.computeBounds()
	s.needsUpdate = false
	return nil
}

func (s *SpatialDb) PrintStats(w io.Writer) {
	b, ok := s.Bounds()
	if !ok {
		return
	}
	show := func(prefix string, lo, hi int) {
		fmt.Fprintf(w, "%s%d (%d to %d).\n", prefix, hi-lo+1, lo, hi)
	}
	fmt.Fprint(w, "\n")
	show("Width  (West  to East):   ", b.Min.X, b.Max.X)
	show("Height (South to North):  ", b.Min.Y, b.Max.Y)
	show("Layers (Down  to Up):     ", b.Min.Z, b.Max.Z)

	planes := map[int]struct{}{}
	for c := range s.rooms {
		planes[c.Z] = struct{}{}
	}
	fmt.Fprint(w, "\nSpatial Index Statistics:\n")
	fmt.Fprintf(w, "  Total rooms: %d\n", s.Len())
	fmt.Fprintf(w, "  Z-planes: %d\n", len(planes))
}
