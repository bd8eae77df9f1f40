package console

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pixil98/go-mudmap/internal/change"
	"github.com/pixil98/go-mudmap/internal/coordinate"
	"github.com/pixil98/go-mudmap/internal/mapper"
	"github.com/pixil98/go-mudmap/internal/room"
	"github.com/pixil98/go-mudmap/internal/roomid"
	"github.com/pixil98/go-mudmap/internal/storage"
	"github.com/pixil98/go-testutil"
	"github.com/sirupsen/logrus/hooks/test"
)

func testArea(name string, rooms ...string) *storage.AreaSpec {
	a := &storage.AreaSpec{Name: name}
	for i, n := range rooms {
		a.Rooms = append(a.Rooms, room.ExternalRawRoom{
			Id:       roomid.ExternalRoomId(i + 1),
			Position: coordinate.New(i, 0, 0),
			Status:   room.StatusPermanent,
			Fields:   room.RoomFields{Name: room.RoomName(n), Area: room.RoomArea(name)},
		})
	}
	return a
}

func loadedManager(t *testing.T) *mapper.Manager {
	t.Helper()
	m := mapper.NewManager()
	err := m.Load(context.Background(), map[string]*storage.AreaSpec{
		"town": testArea("town", "Market", "Gate"),
	})
	if err != nil {
		t.Fatalf("loading areas: %v", err)
	}
	return m
}

type scriptConn struct {
	io.Reader
	out strings.Builder
}

func (c *scriptConn) Write(p []byte) (int, error) { return c.out.Write(p) }

func runScript(t *testing.T, h *Handler, script string) (string, error) {
	t.Helper()
	logger, _ := test.NewNullLogger()
	conn := &scriptConn{Reader: strings.NewReader(script)}
	err := h.RunSession(context.Background(), conn, logger)
	return conn.out.String(), err
}

func TestHandler_RunSession(t *testing.T) {
	tests := map[string]struct {
		script string
		expOut []string
	}{
		"unknown command": {
			script: "frobnicate\nquit\n",
			expOut: []string{`Unknown command "frobnicate"`, "Goodbye!"},
		},
		"blank lines are ignored": {
			script: "\n   \nquit\n",
			expOut: []string{"Goodbye!"},
		},
		"nothing to undo": {
			script: "undo\nquit\n",
			expOut: []string{"Nothing to undo."},
		},
		"nothing to redo": {
			script: "redo\nquit\n",
			expOut: []string{"Nothing to redo."},
		},
		"apply then undo and redo": {
			script: `apply {"type":"AddPermanentRoom","position":{"x":5,"y":0,"z":0}}` + "\nundo\nredo\nquit\n",
			expOut: []string{"Apply batch", "Undo batch", "Redo batch"},
		},
		"apply array": {
			script: `apply [{"type":"AddPermanentRoom","position":{"x":5,"y":0,"z":0}},{"type":"AddPermanentRoom","position":{"x":6,"y":0,"z":0}}]` + "\nquit\n",
			expOut: []string{"2 changes"},
		},
		"apply without json": {
			script: "apply\nquit\n",
			expOut: []string{"Apply what?"},
		},
		"apply broken json": {
			script: "apply {\nquit\n",
			expOut: []string{"Invalid change"},
		},
		"apply empty array": {
			script: "apply []\nquit\n",
			expOut: []string{"The batch is empty."},
		},
		"apply refused by map": {
			script: `apply {"type":"RemoveRoom","room":4000}` + "\nquit\n",
			expOut: []string{"The map refused the change"},
		},
		"room without id": {
			script: "room\nquit\n",
			expOut: []string{"Which room?"},
		},
		"room with bad id": {
			script: "room abc\nquit\n",
			expOut: []string{`"abc" is not a room id.`},
		},
		"missing room": {
			script: "preview 999\nquit\n",
			expOut: []string{"Room 999 does not exist."},
		},
		"stats": {
			script: "stats\nquit\n",
			expOut: []string{"Map: 2 rooms, 0 marks (unsaved changes).", "Undo: 0, redo: 0.", "Total rooms: 2."},
		},
		"help lists commands": {
			script: "help\nquit\n",
			expOut: []string{"revert <id>", "apply <json>", "quit"},
		},
		"help for one command": {
			script: "help undo\nquit\n",
			expOut: []string{"Undo the last batch."},
		},
		"check": {
			script: "check\nquit\n",
			expOut: []string{"The map is consistent."},
		},
		"diff against empty save": {
			script: "diff\nquit\n",
			expOut: []string{"Since the last save: 2 added, 0 removed, 0 changed."},
		},
		"save without a store": {
			script: "save\nquit\n",
			expOut: []string{"Command failed: no snapshot store configured"},
		},
		"commands are case insensitive": {
			script: "QUIT\n",
			expOut: []string{"Goodbye!"},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			out, err := runScript(t, NewHandler(loadedManager(t)), tt.script)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			for _, exp := range tt.expOut {
				if !strings.Contains(out, exp) {
					t.Errorf("output does not contain %q:\n%s", exp, out)
				}
			}
		})
	}
}

func TestHandler_RunSessionEOF(t *testing.T) {
	_, err := runScript(t, NewHandler(loadedManager(t)), "stats\n")
	if !errors.Is(err, io.EOF) {
		t.Errorf("expected io.EOF, got %v", err)
	}
}

func TestHandler_Room(t *testing.T) {
	m := loadedManager(t)
	id, ok := m.Current().FindUniqueName("Market")
	if !ok {
		t.Fatal("no room named Market")
	}
	ext := m.Current().FindRoomHandle(id).ExternalId()

	out, err := runScript(t, NewHandler(m), "preview "+ext.String()+"\nquit\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "Market") {
		t.Errorf("preview does not name the room:\n%s", out)
	}
}

func TestHandler_Revert(t *testing.T) {
	tests := map[string]struct {
		answer  string
		expOut  string
		expName room.RoomName
	}{
		"declined": {
			answer:  "no",
			expOut:  "Nothing reverted.",
			expName: "Bazaar",
		},
		"confirmed after a bad answer": {
			answer:  "maybe\nyes",
			expOut:  "Revert batch",
			expName: "Market",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			m := mapper.NewManager(mapper.WithSnapshots(storage.NewSnapshotFile(filepath.Join(t.TempDir(), "map.snapshot"))))
			if err := m.Load(ctx, map[string]*storage.AreaSpec{"town": testArea("town", "Market", "Gate")}); err != nil {
				t.Fatalf("loading: %v", err)
			}
			if err := m.Save(ctx); err != nil {
				t.Fatalf("saving: %v", err)
			}

			id, _ := m.Current().FindUniqueName("Market")
			ext := m.Current().FindRoomHandle(id).ExternalId()
			_, err := m.Apply(ctx, "test", []change.Change{
				change.ModifyRoomFlags{Room: id, Field: room.RoomName("Bazaar"), Mode: change.ModeAssign},
			})
			if err != nil {
				t.Fatalf("renaming: %v", err)
			}

			out, err := runScript(t, NewHandler(m), "revert "+ext.String()+"\n"+tt.answer+"\nquit\n")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !strings.Contains(out, tt.expOut) {
				t.Errorf("output does not contain %q:\n%s", tt.expOut, out)
			}
			testutil.AssertEqual(t, "name", m.Current().FindRoomHandleExternal(ext).Fields().Name, tt.expName)
		})
	}
}

func TestHandler_Import(t *testing.T) {
	store, err := storage.NewFileStore[*storage.AreaSpec](t.TempDir())
	if err != nil {
		t.Fatalf("creating store: %v", err)
	}
	if err := store.Save("forest", testArea("forest", "Clearing")); err != nil {
		t.Fatalf("saving area: %v", err)
	}
	areas := storage.NewSelectableStorer[*storage.AreaSpec](store)

	tests := map[string]struct {
		script   string
		expOut   string
		expRooms int
	}{
		"by id with offset": {
			script:   "import forest 10 0 0\nquit\n",
			expOut:   "Merge batch",
			expRooms: 3,
		},
		"from the menu": {
			script:   "import\n1\nquit\n",
			expOut:   "Import which area?",
			expRooms: 3,
		},
		"unknown area": {
			script:   "import swamp\nquit\n",
			expOut:   `There is no area "swamp".`,
			expRooms: 2,
		},
		"bad offset": {
			script:   "import forest 1 2\nquit\n",
			expOut:   "An offset needs three numbers",
			expRooms: 2,
		},
		"too many wrong picks": {
			script:   "import\n7\n8\n9\nquit\n",
			expOut:   "Too many tries.",
			expRooms: 2,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			m := loadedManager(t)
			out, err := runScript(t, NewHandler(m, WithAreas(areas)), tt.script)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !strings.Contains(out, tt.expOut) {
				t.Errorf("output does not contain %q:\n%s", tt.expOut, out)
			}
			testutil.AssertEqual(t, "rooms", m.Current().NumRooms(), tt.expRooms)
		})
	}
}
