package world

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/pixil98/go-mudmap/internal/change"
	"github.com/pixil98/go-mudmap/internal/coordinate"
	"github.com/pixil98/go-mudmap/internal/room"
	"github.com/pixil98/go-mudmap/internal/roomid"
	"github.com/pixil98/go-testutil"
)

func extRoom(id roomid.ExternalRoomId, pos coordinate.Coordinate, name string) room.ExternalRawRoom {
	return room.ExternalRawRoom{
		Id:       id,
		Position: pos,
		Status:   room.StatusPermanent,
		Fields:   room.RoomFields{Name: room.RoomName(name)},
	}
}

// connect adds a consistent two-way connection between two external rooms.
func connect(a *room.ExternalRawRoom, dir room.ExitDirection, b *room.ExternalRawRoom) {
	out := a.Exit(dir)
	out.Outgoing.Insert(b.Id)
	out.Incoming.Insert(b.Id)
	in := b.Exit(dir.Opposite())
	in.Outgoing.Insert(a.Id)
	in.Incoming.Insert(a.Id)
}

func mustInit(t *testing.T, rooms ...room.ExternalRawRoom) *World {
	t.Helper()
	w, err := Init(nil, rooms, nil)
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	return w
}

func mustApply(t *testing.T, w *World, changes ...change.Change) {
	t.Helper()
	if err := w.ApplyAll(nil, changes, DefaultApplyOptions()); err != nil {
		t.Fatalf("apply: %v", err)
	}
}

func TestComputeRemapping(t *testing.T) {
	a := extRoom(10, coordinate.New(0, 0, 0), "")
	b := extRoom(5, coordinate.New(1, 0, 0), "")
	b.Exit(room.East).Outgoing.Insert(7)

	m := ComputeRemapping([]room.ExternalRawRoom{a, b})
	testutil.AssertEqual(t, "size", m.Size(), 3)
	testutil.AssertEqual(t, "5", m.ToInternal(5), roomid.RoomId(0))
	testutil.AssertEqual(t, "7", m.ToInternal(7), roomid.RoomId(1))
	testutil.AssertEqual(t, "10", m.ToInternal(10), roomid.RoomId(2))
	testutil.AssertEqual(t, "missing", m.ToInternal(6), roomid.InvalidRoomId)
	testutil.AssertEqual(t, "missing internal", m.ToExternal(9), roomid.InvalidExternalRoomId)

	for _, ext := range []roomid.ExternalRoomId{5, 7, 10} {
		testutil.AssertEqual(t, "round trip", m.ToExternal(m.ToInternal(ext)), ext)
	}
	testutil.AssertEqual(t, "next", m.NextExternal(), roomid.ExternalRoomId(11))
}

func TestRemapping_Compact(t *testing.T) {
	m := ComputeRemapping([]room.ExternalRawRoom{
		extRoom(40, coordinate.New(0, 0, 0), ""),
		extRoom(8, coordinate.New(1, 0, 0), ""),
	})
	if err := m.Compact(nil, 100); err != nil {
		t.Fatalf("compact: %v", err)
	}
	testutil.AssertEqual(t, "first", m.ToExternal(0), roomid.ExternalRoomId(100))
	testutil.AssertEqual(t, "second", m.ToExternal(1), roomid.ExternalRoomId(101))
	testutil.AssertEqual(t, "old id gone", m.ToInternal(40), roomid.InvalidRoomId)
}

func TestRemapping_Undelete(t *testing.T) {
	tests := map[string]struct {
		id     roomid.RoomId
		ext    roomid.ExternalRoomId
		expErr string
	}{
		"restores hole":    {id: 1, ext: 1},
		"internal in use":  {id: 0, ext: 9, expErr: "already contains room"},
		"external in use":  {id: 1, ext: 0, expErr: "already contains external id"},
		"invalid internal": {id: roomid.InvalidRoomId, ext: 3, expErr: "Invalid room id"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			m := ComputeRemapping([]room.ExternalRawRoom{
				extRoom(0, coordinate.New(0, 0, 0), ""),
				extRoom(1, coordinate.New(1, 0, 0), ""),
			})
			if err := m.RemoveAt(1); err != nil {
				t.Fatalf("remove: %v", err)
			}

			err := m.Undelete(tt.id, tt.ext)
			if tt.expErr != "" {
				testutil.AssertErrorContains(t, err, tt.expErr)
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			testutil.AssertEqual(t, "restored", m.ToInternal(tt.ext), tt.id)
		})
	}
}

func TestWorld_AddRemovePermanentRoom(t *testing.T) {
	start := mustInit(t, extRoom(0, coordinate.New(0, 0, 0), ""))

	added := start.Copy()
	mustApply(t, added, change.AddPermanentRoom{Position: coordinate.New(1, 1, 0)})
	testutil.AssertEqual(t, "rooms after add", added.NumRooms(), 2)

	id, ok := added.FindRoom(coordinate.New(1, 1, 0))
	testutil.AssertEqual(t, "found", ok, true)
	testutil.AssertEqual(t, "permanent", added.IsTemporary(id), false)

	addStats, err := GetComparisonStats(nil, start, added)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	testutil.AssertEqual(t, "added", addStats.AnyRoomsAdded, true)
	testutil.AssertEqual(t, "removed", addStats.AnyRoomsRemoved, false)
	testutil.AssertEqual(t, "bounds", addStats.BoundsChanged, true)
	testutil.AssertEqual(t, "mesh", addStats.HasMeshDifferences, true)

	removed := added.Copy()
	mustApply(t, removed, change.RemoveRoom{Room: id})
	testutil.AssertEqual(t, "rooms after remove", removed.NumRooms(), 1)
	testutil.AssertEqual(t, "equal to start", removed.Equal(start), true)

	removeStats, err := GetComparisonStats(nil, added, removed)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	testutil.AssertEqual(t, "removed", removeStats.AnyRoomsRemoved, true)
	testutil.AssertEqual(t, "added", removeStats.AnyRoomsAdded, false)

	roundTrip, err := GetComparisonStats(nil, start, removed)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	testutil.AssertEqual(t, "no differences", roundTrip.Any(), false)
}

func TestWorld_DoorFlagStateMachine(t *testing.T) {
	w := mustInit(t,
		extRoom(0, coordinate.New(0, 0, 0), "West"),
		extRoom(1, coordinate.New(1, 0, 0), "East"),
	)
	exit := func() *room.RawExit { return w.Exit(0, room.East) }
	hidden := change.SetDoorFlags{Type: change.FlagAdd, Room: 0, Dir: room.East, Flags: room.DoorFlagHidden}
	unhidden := change.SetDoorFlags{Type: change.FlagRemove, Room: 0, Dir: room.East, Flags: room.DoorFlagHidden}
	door := change.SetExitFlags{Type: change.FlagAdd, Room: 0, Dir: room.East, Flags: room.ExitFlagDoor}
	noDoor := change.SetExitFlags{Type: change.FlagRemove, Room: 0, Dir: room.East, Flags: room.ExitFlagDoor}

	mustApply(t, w, hidden)
	testutil.AssertEqual(t, "hidden without exit", exit().IsHidden(), false)
	mustApply(t, w, door)
	testutil.AssertEqual(t, "door without exit", exit().IsDoor(), false)
	testutil.AssertEqual(t, "no exit yet", exit().IsExit(), false)

	mustApply(t, w, change.ModifyExitConnection{Type: change.ChangeAdd, Room: 0, Dir: room.East, To: 1, Ways: change.OneWay})
	testutil.AssertEqual(t, "one way", w.HasConsistentOneWayExit(0, room.East, 1), true)
	testutil.AssertEqual(t, "not two way", w.HasConsistentTwoWayExit(0, room.East, 1), false)
	mustApply(t, w, change.ModifyExitConnection{Type: change.ChangeAdd, Room: 0, Dir: room.East, To: 1, Ways: change.TwoWay})
	testutil.AssertEqual(t, "two way", w.HasConsistentTwoWayExit(0, room.East, 1), true)

	mustApply(t, w, hidden)
	testutil.AssertEqual(t, "hidden implies door", exit().IsDoor(), true)
	testutil.AssertEqual(t, "hidden", exit().IsHidden(), true)

	mustApply(t, w, unhidden)
	testutil.AssertEqual(t, "visible door", exit().IsDoor(), true)
	testutil.AssertEqual(t, "not hidden", exit().IsHidden(), false)

	mustApply(t, w, hidden, noDoor)
	testutil.AssertEqual(t, "door kept while hidden", exit().IsDoor(), true)

	mustApply(t, w, unhidden, noDoor)
	testutil.AssertEqual(t, "door removed", exit().IsDoor(), false)
	testutil.AssertEqual(t, "still an exit", exit().IsExit(), true)
}

func TestWorld_ModifyRoomFlags(t *testing.T) {
	tests := map[string]struct {
		field room.RoomField
		mode  change.FlagModifyMode
		check func(*testing.T, *room.RawRoom)
	}{
		"invalid enum becomes undefined": {
			field: room.Align(255),
			mode:  change.ModeAssign,
			check: func(t *testing.T, r *room.RawRoom) {
				testutil.AssertEqual(t, "align", r.Fields.AlignType, room.AlignUndefined)
			},
		},
		"valid enum assigned": {
			field: room.AlignGood,
			mode:  change.ModeAssign,
			check: func(t *testing.T, r *room.RawRoom) {
				testutil.AssertEqual(t, "align", r.Fields.AlignType, room.AlignGood)
			},
		},
		"flags inserted": {
			field: room.LoadFlagTreasure,
			mode:  change.ModeInsert,
			check: func(t *testing.T, r *room.RawRoom) {
				testutil.AssertEqual(t, "treasure", r.Fields.LoadFlags.Contains(room.LoadFlagTreasure), true)
			},
		},
		"note assigned": {
			field: room.RoomNote("watch out"),
			mode:  change.ModeAssign,
			check: func(t *testing.T, r *room.RawRoom) {
				testutil.AssertEqual(t, "note", r.Fields.Note, room.RoomNote("watch out"))
			},
		},
		"name cleared": {
			field: room.RoomName("ignored"),
			mode:  change.ModeClear,
			check: func(t *testing.T, r *room.RawRoom) {
				testutil.AssertEqual(t, "name", r.Fields.Name, room.RoomName(""))
			},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			w := mustInit(t, extRoom(0, coordinate.New(0, 0, 0), "Hall"))
			mustApply(t, w, change.ModifyRoomFlags{Room: 0, Field: tt.field, Mode: tt.mode})
			tt.check(t, w.Room(0))
		})
	}
}

func TestWorld_ParseTreeFollowsNameChange(t *testing.T) {
	w := mustInit(t, extRoom(0, coordinate.New(0, 0, 0), "Hall"))
	mustApply(t, w, change.ModifyRoomFlags{Room: 0, Field: room.RoomName("Kitchen"), Mode: change.ModeAssign})

	tree := w.ParseTree()
	testutil.AssertEqual(t, "old name gone", tree.NameOnly["Hall"].Contains(0), false)
	testutil.AssertEqual(t, "new name", tree.NameOnly["Kitchen"].Contains(0), true)
	testutil.AssertEqual(t, "name desc", tree.NameDesc[NameDesc{Name: "Kitchen"}].Contains(0), true)
}

func TestInit_Errors(t *testing.T) {
	dangling := extRoom(0, coordinate.New(0, 0, 0), "")
	dangling.Exit(room.East).Outgoing.Insert(1)
	target := extRoom(1, coordinate.New(1, 0, 0), "")

	_, err := Init(nil, []room.ExternalRawRoom{dangling, target}, nil)
	var ce *ConsistencyError
	testutil.AssertEqual(t, "consistency error", errors.As(err, &ce), true)
	testutil.AssertErrorContains(t, err, "missing incoming one-way exit")

	_, err = Init(nil, []room.ExternalRawRoom{target, target}, nil)
	var ie *InvalidMapOperation
	testutil.AssertEqual(t, "invalid operation", errors.As(err, &ie), true)
	testutil.AssertErrorContains(t, err, "duplicate room id")
}

func TestWorld_ApplyErrors(t *testing.T) {
	tests := map[string]struct {
		changes []change.Change
		expErr  string
	}{
		"empty batch": {
			expErr: "Changes are empty",
		},
		"unknown room": {
			changes: []change.Change{change.RemoveRoom{Room: 42}},
			expErr:  "RoomId not valid",
		},
		"position in use": {
			changes: []change.Change{change.AddPermanentRoom{Position: coordinate.New(0, 0, 0)}},
			expErr:  "Position in use",
		},
		"exit to missing room": {
			changes: []change.Change{change.ModifyExitConnection{Type: change.ChangeAdd, Room: 0, Dir: room.North, To: 7, Ways: change.OneWay}},
			expErr:  "RoomId not found",
		},
		"blocked batch move": {
			changes: []change.Change{change.MoveRelative2{Rooms: roomid.NewSet[roomid.RoomId](0), Offset: coordinate.New(1, 0, 0)}},
			expErr:  "invalid batch movement",
		},
		"unnamed local space": {
			changes: []change.Change{change.CreateLocalSpace{}},
			expErr:  "Local space name is empty",
		},
		"portal for unknown space": {
			changes: []change.Change{change.SetLocalSpacePortal{Space: "attic", W: 2, H: 2}},
			expErr:  "Unknown localspace name",
		},
		"room into unknown space": {
			changes: []change.Change{change.AddRoomToLocalSpace{Space: "attic", Room: 0}},
			expErr:  "Unknown localspace name",
		},
		"missing room into space": {
			changes: []change.Change{change.AddRoomToLocalSpace{Space: "attic", Room: 42}},
			expErr:  "RoomId not valid",
		},
		"zero scale": {
			changes: []change.Change{change.SetScaleFactor{Room: 0, Scale: 0}},
			expErr:  "Invalid scale factor",
		},
		"negative scale": {
			changes: []change.Change{change.SetScaleFactor{Room: 0, Scale: -2}},
			expErr:  "Invalid scale factor",
		},
		"nan scale": {
			changes: []change.Change{change.SetScaleFactor{Room: 0, Scale: float32(math.NaN())}},
			expErr:  "Invalid scale factor",
		},
		"scale of missing room": {
			changes: []change.Change{change.SetScaleFactor{Room: 42, Scale: 2}},
			expErr:  "RoomId not",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			w := mustInit(t,
				extRoom(0, coordinate.New(0, 0, 0), ""),
				extRoom(1, coordinate.New(1, 0, 0), ""),
			)
			before := w.Copy()
			err := w.ApplyAll(nil, tt.changes, DefaultApplyOptions())
			var ie *InvalidMapOperation
			testutil.AssertEqual(t, "invalid operation", errors.As(err, &ie), true)
			testutil.AssertErrorContains(t, err, tt.expErr)
			testutil.AssertEqual(t, "unchanged", w.Equal(before), true)
		})
	}
}

func TestWorld_Move(t *testing.T) {
	w := mustInit(t,
		extRoom(0, coordinate.New(0, 0, 0), ""),
		extRoom(1, coordinate.New(1, 0, 0), ""),
	)

	mustApply(t, w, change.MoveRelative2{Rooms: roomid.NewSet[roomid.RoomId](0, 1), Offset: coordinate.New(1, 0, 0)})
	pos0, _ := w.Position(0)
	pos1, _ := w.Position(1)
	testutil.AssertEqual(t, "room 0", pos0, coordinate.New(1, 0, 0))
	testutil.AssertEqual(t, "room 1", pos1, coordinate.New(2, 0, 0))

	mustApply(t, w, change.MoveRelative{Room: 1, Offset: coordinate.New(0, 3, 0)})
	id, ok := w.FindRoom(coordinate.New(2, 3, 0))
	testutil.AssertEqual(t, "found", ok, true)
	testutil.AssertEqual(t, "moved", id, roomid.RoomId(1))

	mustApply(t, w, change.TryMoveCloseTo{Room: 1, Desired: coordinate.New(1, 0, 0)})
	pos1, _ = w.Position(1)
	testutil.AssertEqual(t, "not on top", pos1 != coordinate.New(1, 0, 0), true)
	testutil.AssertEqual(t, "same layer", pos1.Z, 0)
	testutil.AssertEqual(t, "unique", w.HasUniqueCoords(), true)
}

func TestWorld_MergeRelative(t *testing.T) {
	a := extRoom(0, coordinate.New(0, 0, 0), "Hall")
	a.Fields.Note = "first."
	b := extRoom(1, coordinate.New(5, 0, 0), "")
	b.Fields.Note = "second."
	b.Fields.LoadFlags = room.LoadFlagTreasure
	c := extRoom(2, coordinate.New(5, 1, 0), "North")
	connect(&b, room.North, &c)

	w := mustInit(t, a, b, c)
	mustApply(t, w, change.MergeRelative{Room: 1, Offset: coordinate.New(-5, 0, 0)})

	testutil.AssertEqual(t, "rooms", w.NumRooms(), 2)
	testutil.AssertEqual(t, "source gone", w.HasRoom(1), false)
	merged := w.Room(0)
	testutil.AssertEqual(t, "name kept", merged.Fields.Name, room.RoomName("Hall"))
	testutil.AssertEqual(t, "notes joined", merged.Fields.Note, room.RoomNote("first.second."))
	testutil.AssertEqual(t, "flags", merged.Fields.LoadFlags.Contains(room.LoadFlagTreasure), true)
	testutil.AssertEqual(t, "exit copied", w.HasConsistentTwoWayExit(0, room.North, 2), true)
}

func TestWorld_GenerateBaseMap(t *testing.T) {
	square := extRoom(0, coordinate.New(0, 0, 0), "The Fountain Square")
	street := extRoom(1, coordinate.New(1, 0, 0), "Street")
	secret := extRoom(2, coordinate.New(0, 1, 0), "Secret")
	island := extRoom(3, coordinate.New(5, 5, 0), "Island")
	connect(&square, room.East, &street)
	connect(&square, room.North, &secret)
	square.Exit(room.North).Fields.DoorFlags = room.DoorFlagHidden
	square.Exit(room.North).Fields.ExitFlags = room.ExitFlagExit | room.ExitFlagDoor

	t.Run("prunes secret and unreachable rooms", func(t *testing.T) {
		w := mustInit(t, square, street, secret, island)
		mustApply(t, w, change.GenerateBaseMap{})

		testutil.AssertEqual(t, "rooms", w.NumRooms(), 2)
		testutil.AssertEqual(t, "secret removed", w.HasRoom(2), false)
		testutil.AssertEqual(t, "island removed", w.HasRoom(3), false)
		testutil.AssertEqual(t, "hidden exit removed", w.Exit(0, room.North).IsExit(), false)
		testutil.AssertEqual(t, "street kept", w.HasConsistentTwoWayExit(0, room.East, 1), true)
	})

	t.Run("no seed rooms", func(t *testing.T) {
		w := mustInit(t, island, extRoom(4, coordinate.New(9, 9, 0), "Nowhere"))
		before := w.Copy()
		mustApply(t, w, change.GenerateBaseMap{})
		testutil.AssertEqual(t, "unchanged", w.Equal(before), true)
	})
}

func TestWorld_UndeleteRoom(t *testing.T) {
	w := mustInit(t,
		extRoom(0, coordinate.New(0, 0, 0), ""),
		extRoom(1, coordinate.New(1, 0, 0), "Gone"),
	)
	before := w.Copy()
	raw, err := w.RoomCopy(1)
	if err != nil {
		t.Fatalf("copy: %v", err)
	}

	mustApply(t, w, change.RemoveRoom{Room: 1})
	mustApply(t, w, change.UndeleteRoom{Room: 1, Raw: raw})
	testutil.AssertEqual(t, "restored", w.Equal(before), true)
}

func TestWorld_PrintStats(t *testing.T) {
	a := extRoom(0, coordinate.New(0, 0, 0), "Hall")
	a.Fields.Area = "the keep"
	b := extRoom(1, coordinate.New(1, 0, 0), "Yard")
	connect(&a, room.East, &b)
	w := mustInit(t, a, b)

	var sb strings.Builder
	if err := w.PrintStats(nil, &sb); err != nil {
		t.Fatalf("print: %v", err)
	}
	out := sb.String()
	for _, want := range []string{
		"Total rooms: 2.",
		"Total areas: 2.",
		"adjacent 2-way:     2.",
		`The "the keep" area contains 1 room.`,
		"The default area contains 1 room.",
		"Width  (West  to East):  1.",
	} {
		testutil.AssertEqual(t, want, strings.Contains(out, want), true)
	}
}

func TestWorld_LocalSpaces(t *testing.T) {
	w := mustInit(t,
		extRoom(0, coordinate.New(0, 0, 0), ""),
		extRoom(1, coordinate.New(1, 0, 0), ""),
		extRoom(2, coordinate.New(3, 2, 1), ""),
	)
	start := w.Copy()

	mustApply(t, w,
		change.CreateLocalSpace{Space: "inn"},
		change.CreateLocalSpace{Space: "inn"},
		change.SetLocalSpacePortal{Space: "inn", X: 10, Y: 20, W: 4, H: 3},
		change.AddRoomToLocalSpace{Space: "inn", Room: 0},
		change.AddRoomToLocalSpace{Space: "inn", Room: 1},
	)
	spaces := w.LocalSpaces()
	testutil.AssertEqual(t, "create is idempotent", spaces.Len(), 1)
	inn, ok := spaces.Find("inn")
	testutil.AssertEqual(t, "found", ok, true)
	testutil.AssertEqual(t, "inn id", inn, roomid.LocalSpaceId(0))

	data, ok := w.LocalSpaceRenderData(inn)
	testutil.AssertEqual(t, "drawable", ok, true)
	testutil.AssertEqual(t, "render data", data, LocalSpaceRenderData{
		PortalScale: 2,
		PortalX:     10.5,
		PortalY:     20.5,
		LocalCx:     1,
		LocalCy:     0.5,
	})
	forRoom, ok := w.LocalSpaceRenderDataForRoom(1)
	testutil.AssertEqual(t, "room drawable", ok, true)
	testutil.AssertEqual(t, "room render data", forRoom, data)
	_, ok = w.LocalSpaceRenderDataForRoom(2)
	testutil.AssertEqual(t, "outside room", ok, false)

	stats, err := GetComparisonStats(nil, start, w)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	testutil.AssertEqual(t, "mesh", stats.HasMeshDifferences, true)

	mustApply(t, w,
		change.CreateLocalSpace{Space: "cellar"},
		change.AddRoomToLocalSpace{Space: "cellar", Room: 1},
	)
	cellar, _ := spaces.Find("cellar")
	testutil.AssertEqual(t, "cellar id", cellar, roomid.LocalSpaceId(1))
	moved, _ := spaces.RoomSpace(1)
	testutil.AssertEqual(t, "moved", moved, cellar)
	innSpace, _ := spaces.Get(inn)
	testutil.AssertEqual(t, "inn rooms", innSpace.Rooms.Items(), []roomid.RoomId{0})
	_, ok = w.LocalSpaceRenderData(cellar)
	testutil.AssertEqual(t, "no portal", ok, false)
	testutil.AssertEqual(t, "one drawable", len(w.LocalSpaceRenderDataList()), 1)

	copied := w.Copy()
	mustApply(t, copied, change.AddRoomToLocalSpace{Space: "inn", Room: 2})
	_, ok = spaces.RoomSpace(2)
	testutil.AssertEqual(t, "copy is independent", ok, false)
	innSpace, _ = spaces.Get(inn)
	testutil.AssertEqual(t, "original inn rooms", innSpace.Rooms.Items(), []roomid.RoomId{0})

	mustApply(t, w, change.RemoveRoom{Room: 0})
	_, ok = spaces.RoomSpace(0)
	testutil.AssertEqual(t, "removed room left space", ok, false)
	innSpace, _ = spaces.Get(inn)
	testutil.AssertEqual(t, "inn empty", innSpace.Rooms.Empty(), true)
	_, ok = w.LocalSpaceRenderData(inn)
	testutil.AssertEqual(t, "empty space not drawable", ok, false)
	testutil.AssertEqual(t, "spaces kept", spaces.Len(), 2)
}

func TestPortalScale(t *testing.T) {
	tests := map[string]struct {
		portal Portal
		bounds coordinate.Bounds
		exp    float32
	}{
		"keeps aspect": {
			portal: Portal{W: 4, H: 3},
			bounds: coordinate.NewBounds(coordinate.New(0, 0, 0), coordinate.New(1, 0, 0)),
			exp:    2,
		},
		"width only": {
			portal: Portal{W: 6},
			bounds: coordinate.NewBounds(coordinate.New(0, 0, 0), coordinate.New(2, 5, 0)),
			exp:    2,
		},
		"height only": {
			portal: Portal{H: 3},
			bounds: coordinate.NewBounds(coordinate.New(0, 0, 0), coordinate.New(2, 5, 0)),
			exp:    0.5,
		},
		"empty portal": {
			bounds: coordinate.NewBounds(coordinate.New(0, 0, 0), coordinate.New(2, 5, 0)),
			exp:    0,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			testutil.AssertEqual(t, "scale", portalScale(tt.portal, tt.bounds), tt.exp)
		})
	}
}

func TestWorld_LocalSpaceConsistency(t *testing.T) {
	w := mustInit(t,
		extRoom(0, coordinate.New(0, 0, 0), ""),
		extRoom(1, coordinate.New(1, 0, 0), ""),
	)
	mustApply(t, w,
		change.CreateLocalSpace{Space: "inn"},
		change.AddRoomToLocalSpace{Space: "inn", Room: 0},
	)
	if err := w.CheckConsistency(nil); err != nil {
		t.Fatalf("consistency: %v", err)
	}

	w.localSpaces.byRoom[1] = 0
	w.checkedConsistency = false
	testutil.AssertErrorContains(t, w.CheckConsistency(nil), "local space index has 2 rooms")
}

func TestWorld_SetScaleFactor(t *testing.T) {
	w := mustInit(t, extRoom(0, coordinate.New(0, 0, 0), ""))
	start := w.Copy()

	mustApply(t, w, change.SetScaleFactor{Room: 0, Scale: 2})
	testutil.AssertEqual(t, "scale", w.Room(0).Scale(), float32(2))

	stats, err := GetComparisonStats(nil, start, w)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	testutil.AssertEqual(t, "mesh", stats.HasMeshDifferences, true)

	mustApply(t, w, change.SetScaleFactor{Room: 0, Scale: 1})
	testutil.AssertEqual(t, "default stored as zero", w.Room(0).ScaleFactor, float32(0))
	testutil.AssertEqual(t, "default scale", w.Room(0).Scale(), room.DefaultScaleFactor)
	testutil.AssertEqual(t, "back to start", w.Equal(start), true)
}

func TestWorld_UpdateReplacesServerId(t *testing.T) {
	r := extRoom(0, coordinate.New(0, 0, 0), "Hall")
	r.ServerId = 7
	w := mustInit(t, r)

	update := func(sid roomid.ServerRoomId) change.Update {
		return change.Update{Room: 0, Event: room.ParseEvent{ServerId: sid}, Type: change.UpdateUpdate}
	}

	mustApply(t, w, update(9))
	testutil.AssertEqual(t, "new id", w.ServerId(0), roomid.ServerRoomId(9))
	id, ok := w.Lookup(9)
	testutil.AssertEqual(t, "new id found", ok, true)
	testutil.AssertEqual(t, "new id room", id, roomid.RoomId(0))
	_, ok = w.Lookup(7)
	testutil.AssertEqual(t, "old id gone", ok, false)

	mustApply(t, w, update(roomid.InvalidServerRoomId))
	testutil.AssertEqual(t, "cleared", w.ServerId(0), roomid.InvalidServerRoomId)
	_, ok = w.Lookup(9)
	testutil.AssertEqual(t, "cleared id gone", ok, false)
	testutil.AssertEqual(t, "name kept", w.Room(0).Fields.Name, room.RoomName("Hall"))
}

func TestWorld_RoomSetSurvivesCopyAndEdit(t *testing.T) {
	w := mustInit(t,
		extRoom(0, coordinate.New(0, 0, 0), ""),
		extRoom(1, coordinate.New(1, 0, 0), ""),
		extRoom(2, coordinate.New(2, 0, 0), ""),
	)
	view := w.RoomSet()
	copied := w.Copy()

	mustApply(t, copied, change.RemoveRoom{Room: 1})
	mustApply(t, w, change.AddPermanentRoom{Position: coordinate.New(5, 5, 0)})

	testutil.AssertEqual(t, "view", view.Items(), []roomid.RoomId{0, 1, 2})
	testutil.AssertEqual(t, "copy", copied.RoomSet().Items(), []roomid.RoomId{0, 2})
	testutil.AssertEqual(t, "original rooms", w.NumRooms(), 4)
	testutil.AssertEqual(t, "original keeps removed room", w.HasRoom(1), true)
}
