package world

import (
	"github.com/pixil98/go-mudmap/internal/parallel"
	"github.com/pixil98/go-mudmap/internal/progress"
	"github.com/pixil98/go-mudmap/internal/room"
	"github.com/pixil98/go-mudmap/internal/roomid"
)

// ComparisonStats summarizes the classes of difference between two worlds.
type ComparisonStats struct {
	BoundsChanged       bool
	AnyRoomsAdded       bool
	AnyRoomsRemoved     bool
	SpatialDbChanged    bool
	ServerIdsChanged    bool
	HasMeshDifferences  bool
	AnyInfomarksChanged bool
}

// Any reports whether any category differs.
func (s ComparisonStats) Any() bool {
	return s.BoundsChanged || s.AnyRoomsAdded || s.AnyRoomsRemoved || s.SpatialDbChanged ||
		s.ServerIdsChanged || s.HasMeshDifferences || s.AnyInfomarksChanged
}

// hasMeshDifference reports whether two versions of a room render
// differently. Text fields and door names never affect the mesh.
func hasMeshDifference(a, b *room.RawRoom) bool {
	if a.Position != b.Position || a.Scale() != b.Scale() {
		return true
	}
	for i := range room.RoomFieldTable {
		d := &room.RoomFieldTable[i]
		if d.Mesh && d.Get(&a.Fields) != d.Get(&b.Fields) {
			return true
		}
	}
	for _, dir := range room.AllExits {
		ea, eb := a.Exit(dir), b.Exit(dir)
		if ea.ExitFlags() != eb.ExitFlags() || ea.DoorFlags() != eb.DoorFlags() {
			return true
		}
		if !ea.Outgoing.Equal(eb.Outgoing) || !ea.Incoming.Equal(eb.Incoming) {
			return true
		}
	}
	return false
}

// GetComparisonStats compares modified against base. The per-room mesh
// comparison runs in parallel over the rooms both worlds share.
func GetComparisonStats(pc *progress.Counter, base, modified *World) (ComparisonStats, error) {
	var s ComparisonStats

	baseRooms, modRooms := base.RoomSet(), modified.RoomSet()
	s.AnyRoomsAdded = modRooms.ContainsElementNotIn(baseRooms)
	s.AnyRoomsRemoved = baseRooms.ContainsElementNotIn(modRooms)
	s.SpatialDbChanged = !base.spatialDb.Equal(&modified.spatialDb)
	s.ServerIdsChanged = !base.serverIds.Equal(&modified.serverIds)
	s.AnyInfomarksChanged = !base.infomarks.Equal(modified.infomarks)

	bb, bok := base.Bounds()
	mb, mok := modified.Bounds()
	s.BoundsChanged = bok != mok || bb != mb

	if s.AnyRoomsAdded || s.AnyRoomsRemoved || s.SpatialDbChanged ||
		!base.localSpaces.Equal(&modified.localSpaces) {
		s.HasMeshDifferences = true
		return s, nil
	}

	pc.SetNewTask("comparing rooms", uint64(baseRooms.Len()))
	locals, err := parallel.Map(pc, baseRooms.Items(),
		func() bool { return false },
		func(found *bool, id roomid.RoomId) error {
			if !*found {
				*found = hasMeshDifference(base.rooms.Get(id), modified.rooms.Get(id))
			}
			return nil
		},
	)
	if err != nil {
		return s, err
	}
	for _, found := range locals {
		if found {
			s.HasMeshDifferences = true
			break
		}
	}
	return s, nil
}
