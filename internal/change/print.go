package change

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pixil98/go-mudmap/internal/coordinate"
	"github.com/pixil98/go-mudmap/internal/infomark"
	"github.com/pixil98/go-mudmap/internal/room"
	"github.com/pixil98/go-mudmap/internal/roomid"
)

// RoomFormatter renders an internal room id, typically as its external id.
type RoomFormatter func(roomid.RoomId) string

// Printer renders changes as one line each, e.g.
// NukeExit{room = 3, dir = east, ways = TwoWay}.
type Printer struct {
	Room RoomFormatter
}

func (p Printer) room(id roomid.RoomId) string {
	if p.Room != nil {
		return p.Room(id)
	}
	return strconv.FormatUint(uint64(id), 10)
}

type members struct {
	sb    strings.Builder
	first bool
}

func newMembers(name string) *members {
	m := &members{first: true}
	m.sb.WriteString(name)
	m.sb.WriteString("{")
	return m
}

func (m *members) add(name, value string) *members {
	if !m.first {
		m.sb.WriteString(", ")
	}
	m.first = false
	m.sb.WriteString(name)
	m.sb.WriteString(" = ")
	m.sb.WriteString(value)
	return m
}

func (m *members) String() string {
	return m.sb.String() + "}"
}

func coord(c coordinate.Coordinate) string {
	return fmt.Sprintf("Coordinate{%d, %d, %d}", c.X, c.Y, c.Z)
}

func serverId(id roomid.ServerRoomId) string {
	if !id.IsValid() {
		return "INVALID_SERVER_ID"
	}
	return fmt.Sprintf("ServerRoomId{%d}", uint32(id))
}

func flags(name string, names []string) string {
	return name + "{" + strings.Join(names, " | ") + "}"
}

func event(ev *room.ParseEvent) string {
	return newMembers("ParseEvent").
		add("area", strconv.Quote(string(ev.Area))).
		add("name", strconv.Quote(string(ev.Name))).
		add("desc", strconv.Quote(string(ev.Desc))).
		add("contents", strconv.Quote(string(ev.Contents))).
		add("server_id", serverId(ev.ServerId)).
		add("terrain", ev.Terrain.String()).
		String()
}

func field(v any) string {
	switch t := v.(type) {
	case room.MobFlags:
		return flags("RoomMobFlags", t.Names())
	case room.LoadFlags:
		return flags("RoomLoadFlags", t.Names())
	case room.ExitFlags:
		return flags("ExitFlags", t.Names())
	case room.DoorFlags:
		return flags("DoorFlags", t.Names())
	case room.RoomField:
		if t.RoomField().Descriptor().Kind == room.KindString {
			return t.RoomField().String() + "{" + strconv.Quote(room.FieldString(t)) + "}"
		}
		return t.RoomField().String() + "{" + room.FieldString(t) + "}"
	case room.DoorName:
		return "DoorName{" + strconv.Quote(string(t)) + "}"
	}
	return "__ERROR__"
}

func mark(f *infomark.Fields) string {
	return newMembers("InfomarkFields").
		add("type", f.Type.String()).
		add("class", f.Class.String()).
		add("text", strconv.Quote(f.Text)).
		add("pos1", coord(f.Position1)).
		add("pos2", coord(f.Position2)).
		String()
}

// Format renders a single change.
func (p Printer) Format(c Change) string {
	switch c := c.(type) {
	case CompactRoomIds:
		return newMembers(c.Name()).add("first_id", c.FirstId.String()).String()
	case RemoveAllDoorNames, GenerateBaseMap:
		return c.Name() + "{}"
	case CreateLocalSpace:
		return newMembers(c.Name()).add("name", strconv.Quote(c.Space)).String()
	case SetLocalSpacePortal:
		return newMembers(c.Name()).
			add("name", strconv.Quote(c.Space)).
			add("portal", fmt.Sprintf("{%g, %g, %g, %g x %g}", c.X, c.Y, c.Z, c.W, c.H)).
			String()
	case AddRoomToLocalSpace:
		return newMembers(c.Name()).add("name", strconv.Quote(c.Space)).add("room", p.room(c.Room)).String()
	case AddPermanentRoom:
		return newMembers(c.Name()).add("position", coord(c.Position)).String()
	case AddRoom2:
		return newMembers(c.Name()).add("position", coord(c.Position)).add("event", event(&c.Event)).String()
	case RemoveRoom:
		return newMembers(c.Name()).add("room", p.room(c.Room)).String()
	case UndeleteRoom:
		return newMembers(c.Name()).add("room", c.Room.String()).String()
	case MakePermanent:
		return newMembers(c.Name()).add("room", p.room(c.Room)).String()
	case Update:
		return newMembers(c.Name()).
			add("room", p.room(c.Room)).
			add("type", c.Type.String()).
			add("change", event(&c.Event)).
			String()
	case SetServerId:
		return newMembers(c.Name()).add("room", p.room(c.Room)).add("server_id", serverId(c.ServerId)).String()
	case SetScaleFactor:
		return newMembers(c.Name()).add("room", p.room(c.Room)).add("scale", strconv.FormatFloat(float64(c.Scale), 'g', -1, 32)).String()
	case MoveRelative:
		return newMembers(c.Name()).add("room", p.room(c.Room)).add("offset", coord(c.Offset)).String()
	case MoveRelative2:
		ids := make([]string, 0, c.Rooms.Len())
		for id := range c.Rooms.All {
			ids = append(ids, p.room(id))
		}
		return newMembers(c.Name()).
			add("rooms", "{"+strings.Join(ids, ", ")+"}").
			add("offset", coord(c.Offset)).
			String()
	case MergeRelative:
		return newMembers(c.Name()).add("room", p.room(c.Room)).add("offset", coord(c.Offset)).String()
	case ModifyRoomFlags:
		return newMembers(c.Name()).
			add("room", p.room(c.Room)).
			add("field", field(c.Field)).
			add("mode", c.Mode.String()).
			String()
	case TryMoveCloseTo:
		return newMembers(c.Name()).add("room", p.room(c.Room)).add("desired", coord(c.Desired)).String()
	case ModifyExitConnection:
		return newMembers(c.Name()).
			add("type", c.Type.String()).
			add("room", p.room(c.Room)).
			add("dir", c.Dir.String()).
			add("to", p.room(c.To)).
			add("ways", c.Ways.String()).
			String()
	case ModifyExitFlags:
		return newMembers(c.Name()).
			add("room", p.room(c.Room)).
			add("dir", c.Dir.String()).
			add("field", field(c.Field)).
			add("mode", c.Mode.String()).
			String()
	case NukeExit:
		return newMembers(c.Name()).
			add("room", p.room(c.Room)).
			add("dir", c.Dir.String()).
			add("ways", c.Ways.String()).
			String()
	case SetExitFlags:
		return newMembers(c.Name()).
			add("type", c.Type.String()).
			add("room", p.room(c.Room)).
			add("dir", c.Dir.String()).
			add("flags", field(c.Flags)).
			String()
	case SetDoorFlags:
		return newMembers(c.Name()).
			add("type", c.Type.String()).
			add("room", p.room(c.Room)).
			add("dir", c.Dir.String()).
			add("flags", field(c.Flags)).
			String()
	case SetDoorName:
		return newMembers(c.Name()).
			add("room", p.room(c.Room)).
			add("dir", c.Dir.String()).
			add("name", field(c.DoorName)).
			String()
	case AddInfomark:
		return newMembers(c.Name()).add("fields", mark(&c.Fields)).String()
	case UpdateInfomark:
		return newMembers(c.Name()).add("id", strconv.FormatUint(uint64(c.Id), 10)).add("fields", mark(&c.Fields)).String()
	case RemoveInfomark:
		return newMembers(c.Name()).add("id", strconv.FormatUint(uint64(c.Id), 10)).String()
	}
	return "__ERROR__"
}

// FormatAll renders a batch one change per line.
func (p Printer) FormatAll(changes []Change) string {
	var sb strings.Builder
	for _, c := range changes {
		sb.WriteString(p.Format(c))
		sb.WriteString("\n")
	}
	return sb.String()
}
