package storage

import (
	"strings"
	"testing"

	"github.com/pixil98/go-mudmap/internal/coordinate"
	"github.com/pixil98/go-mudmap/internal/room"
	"github.com/pixil98/go-mudmap/internal/roomid"
	"github.com/pixil98/go-testutil"
)

func testArea(name string, ids ...roomid.ExternalRoomId) *AreaSpec {
	a := &AreaSpec{Name: name}
	for i, id := range ids {
		a.Rooms = append(a.Rooms, room.ExternalRawRoom{
			Id:       id,
			Position: coordinate.Coordinate{X: i},
			Fields:   room.RoomFields{Name: room.RoomName(name)},
		})
	}
	return a
}

func TestAsset_Validate(t *testing.T) {
	tests := map[string]struct {
		asset   Asset[*AreaSpec]
		expErrs []string
	}{
		"valid asset": {
			asset: Asset[*AreaSpec]{Version: 1, Identifier: "test-id", Spec: testArea("Town", 1)},
		},
		"version not set": {
			asset:   Asset[*AreaSpec]{Identifier: "test-id", Spec: testArea("Town", 1)},
			expErrs: []string{"version must be set"},
		},
		"empty identifier": {
			asset:   Asset[*AreaSpec]{Version: 1, Spec: testArea("Town", 1)},
			expErrs: []string{"id must be set"},
		},
		"identifier with underscore": {
			asset:   Asset[*AreaSpec]{Version: 1, Identifier: "test_id", Spec: testArea("Town", 1)},
			expErrs: []string{"id must be alphanumeric"},
		},
		"missing spec": {
			asset:   Asset[*AreaSpec]{Version: 1, Identifier: "test-id"},
			expErrs: []string{"spec must be set"},
		},
		"multiple errors": {
			asset: Asset[*AreaSpec]{Spec: testArea("")},
			expErrs: []string{
				"version must be set",
				"id must be set",
				"name must be set",
				"has no rooms",
			},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			err := tt.asset.Validate()

			if len(tt.expErrs) == 0 {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}

			if err == nil {
				t.Fatalf("expected errors %v, got nil", tt.expErrs)
			}
			for _, e := range tt.expErrs {
				if !strings.Contains(err.Error(), e) {
					t.Errorf("error %q does not contain %q", err.Error(), e)
				}
			}
		})
	}
}

func TestAreaSpec_Validate(t *testing.T) {
	tests := map[string]struct {
		area   *AreaSpec
		expErr string
	}{
		"valid": {
			area: testArea("Town", 1, 2, 3),
		},
		"duplicate room id": {
			area:   testArea("Town", 1, 2, 1),
			expErr: "room 2: duplicate id 1",
		},
		"invalid room id": {
			area:   testArea("Town", 1, roomid.InvalidExternalRoomId),
			expErr: "room 1: invalid id",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			err := tt.area.Validate()
			if tt.expErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			testutil.AssertErrorContains(t, err, tt.expErr)
		})
	}
}

func TestAreaSpec_Clone(t *testing.T) {
	a := testArea("Town", 1, 2)
	c := a.Clone()
	c.Rooms[0].Fields.Name = "Changed"
	c.Rooms[1].Position = coordinate.Coordinate{Y: 9}

	testutil.AssertEqual(t, "original name", a.Rooms[0].Fields.Name, room.RoomName("Town"))
	testutil.AssertEqual(t, "original position", a.Rooms[1].Position, coordinate.Coordinate{X: 1})
}

func TestDecodeAsset(t *testing.T) {
	tests := map[string]struct {
		path     string
		data     string
		expName  string
		expRooms int
		expErr   string
	}{
		"json": {
			path:     "town.json",
			data:     `{"version":1,"id":"town","spec":{"name":"Town","rooms":[{"id":1,"position":{"x":0,"y":0,"z":0},"fields":{"name":"Square"}}]}}`,
			expName:  "Town",
			expRooms: 1,
		},
		"yaml": {
			path: "forest.yaml",
			data: `version: 1
id: forest
spec:
  name: Forest
  rooms:
    - id: 1
      position: {x: 0, y: 0, z: 0}
      fields:
        name: Clearing
    - id: 2
      position: {x: 1, y: 0, z: 0}
      fields:
        name: Path
`,
			expName:  "Forest",
			expRooms: 2,
		},
		"bad yaml": {
			path:   "broken.yml",
			data:   "spec: [unclosed",
			expErr: "parsing yaml",
		},
		"bad json": {
			path:   "broken.json",
			data:   "{",
			expErr: "unmarshalling asset",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			asset, err := decodeAsset[*AreaSpec](tt.path, []byte(tt.data))
			if tt.expErr != "" {
				testutil.AssertErrorContains(t, err, tt.expErr)
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			testutil.AssertEqual(t, "name", asset.Spec.Name, tt.expName)
			testutil.AssertEqual(t, "rooms", len(asset.Spec.Rooms), tt.expRooms)
			if err := asset.Validate(); err != nil {
				t.Errorf("unexpected validation error: %v", err)
			}
		})
	}
}
