package change

import (
	"testing"

	"github.com/pixil98/go-mudmap/internal/coordinate"
	"github.com/pixil98/go-mudmap/internal/room"
	"github.com/pixil98/go-mudmap/internal/roomid"
	"github.com/pixil98/go-testutil"
)

func TestEncode(t *testing.T) {
	tests := map[string]struct {
		change Change
		exp    string
	}{
		"empty variant": {
			change: GenerateBaseMap{},
			exp:    `{"type":"GenerateBaseMap"}`,
		},
		"remove room": {
			change: RemoveRoom{Room: 4},
			exp:    `{"type":"RemoveRoom","room":4}`,
		},
		"exit connection": {
			change: ModifyExitConnection{Type: ChangeRemove, Room: 1, Dir: room.East, To: 2, Ways: TwoWay},
			exp:    `{"type":"ModifyExitConnection","change_type":"Remove","room":1,"dir":"east","to":2,"ways":"TwoWay"}`,
		},
		"room field": {
			change: ModifyRoomFlags{Room: 3, Field: room.LoadFlagTreasure | room.LoadFlagArmour, Mode: ModeInsert},
			exp:    `{"type":"ModifyRoomFlags","room":3,"field":"LoadFlags","value":"TREASURE ARMOUR","mode":"INSERT"}`,
		},
		"local space room": {
			change: AddRoomToLocalSpace{Space: "inn", Room: 3},
			exp:    `{"type":"AddRoomToLocalSpace","name":"inn","room":3}`,
		},
		"scale factor": {
			change: SetScaleFactor{Room: 2, Scale: 0.5},
			exp:    `{"type":"SetScaleFactor","room":2,"scale":0.5}`,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			b, err := Encode(tt.change)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			testutil.AssertEqual(t, "json", string(b), tt.exp)
		})
	}
}

func TestDecode(t *testing.T) {
	tests := map[string]struct {
		input  string
		exp    Change
		expErr string
	}{
		"local space portal": {
			input: `{"type":"SetLocalSpacePortal","name":"inn","x":1,"y":2,"z":0,"w":4,"h":3}`,
			exp:   SetLocalSpacePortal{Space: "inn", X: 1, Y: 2, W: 4, H: 3},
		},
		"move relative": {
			input: `{"type":"MoveRelative","room":2,"offset":{"x":1,"y":-1,"z":0}}`,
			exp:   MoveRelative{Room: 2, Offset: coordinate.New(1, -1, 0)},
		},
		"room field by name": {
			input: `{"type":"ModifyRoomFlags","room":7,"field":"AlignType","value":"EVIL","mode":"ASSIGN"}`,
			exp:   ModifyRoomFlags{Room: 7, Field: room.AlignEvil, Mode: ModeAssign},
		},
		"exit field by name": {
			input: `{"type":"ModifyExitFlags","room":1,"dir":"up","field":"DoorName","value":"hatch","mode":"ASSIGN"}`,
			exp:   ModifyExitFlags{Room: 1, Dir: room.Up, Field: room.DoorName("hatch"), Mode: ModeAssign},
		},
		"unknown type": {
			input:  `{"type":"Teleport"}`,
			expErr: "unknown change type",
		},
		"unknown field": {
			input:  `{"type":"ModifyRoomFlags","room":7,"field":"Colour","value":"red","mode":"ASSIGN"}`,
			expErr: "unknown room field",
		},
		"bad direction": {
			input:  `{"type":"NukeExit","room":1,"dir":"sideways","ways":"OneWay"}`,
			expErr: "unknown direction",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := Decode([]byte(tt.input))
			if tt.expErr != "" {
				testutil.AssertErrorContains(t, err, tt.expErr)
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			testutil.AssertEqual(t, "change", got, tt.exp)
		})
	}
}

func TestList_RoundTripOrder(t *testing.T) {
	in := List{
		AddPermanentRoom{Position: coordinate.New(1, 1, 0)},
		SetDoorName{Room: 1, Dir: room.North, DoorName: "gate"},
		RemoveAllDoorNames{},
	}
	b, err := in.MarshalJSON()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var out List
	if err := out.UnmarshalJSON(b); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "length", len(out), 3)
	for i := range in {
		testutil.AssertEqual(t, "name", out[i].Name(), in[i].Name())
	}
}

func TestPrinter_Format(t *testing.T) {
	ext := func(id roomid.RoomId) string { return roomid.ExternalRoomId(id + 100).String() }

	tests := map[string]struct {
		printer Printer
		change  Change
		exp     string
	}{
		"no fields": {
			change: RemoveAllDoorNames{},
			exp:    "RemoveAllDoorNames{}",
		},
		"internal ids": {
			change: NukeExit{Room: 3, Dir: room.East, Ways: TwoWay},
			exp:    "NukeExit{room = 3, dir = east, ways = TwoWay}",
		},
		"formatted ids": {
			printer: Printer{Room: ext},
			change:  ModifyExitConnection{Type: ChangeAdd, Room: 1, Dir: room.Up, To: 2, Ways: OneWay},
			exp:     "ModifyExitConnection{type = Add, room = 101, dir = up, to = 102, ways = OneWay}",
		},
		"position": {
			change: AddPermanentRoom{Position: coordinate.New(1, 2, 3)},
			exp:    "AddPermanentRoom{position = Coordinate{1, 2, 3}}",
		},
		"door flags": {
			change: SetDoorFlags{Type: FlagAdd, Room: 5, Dir: room.South, Flags: room.DoorFlagHidden},
			exp:    "SetDoorFlags{type = Add, room = 5, dir = south, flags = DoorFlags{HIDDEN}}",
		},
		"string field": {
			change: ModifyRoomFlags{Room: 2, Field: room.RoomNote("look up"), Mode: ModeAssign},
			exp:    `ModifyRoomFlags{room = 2, field = Note{"look up"}, mode = ASSIGN}`,
		},
		"local space portal": {
			change: SetLocalSpacePortal{Space: "inn", X: 1, Y: 2, W: 4, H: 3},
			exp:    `SetLocalSpacePortal{name = "inn", portal = {1, 2, 0, 4 x 3}}`,
		},
		"scale factor": {
			change: SetScaleFactor{Room: 4, Scale: 0.5},
			exp:    "SetScaleFactor{room = 4, scale = 0.5}",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			testutil.AssertEqual(t, "format", tt.printer.Format(tt.change), tt.exp)
		})
	}
}
