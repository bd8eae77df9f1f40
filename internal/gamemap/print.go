package gamemap

import (
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/pixil98/go-mudmap/internal/change"
	"github.com/pixil98/go-mudmap/internal/progress"
	"github.com/pixil98/go-mudmap/internal/room"
	"github.com/pixil98/go-mudmap/internal/roomid"
)

// connectionOrder is the order exits are listed in room reports.
var connectionOrder = []room.ExitDirection{
	room.North, room.East, room.South, room.West, room.Up, room.Down, room.Unknown,
}

func writeFlags(sb *strings.Builder, names []string) {
	if len(names) == 0 {
		sb.WriteString(" (none)")
		return
	}
	for _, n := range names {
		sb.WriteString(" ")
		sb.WriteString(n)
	}
}

func writeQuotedLines(sb *strings.Builder, label, text string) {
	sb.WriteString("\n")
	sb.WriteString(label)
	sb.WriteString(":\n")
	if text == "" {
		sb.WriteString(strconv.Quote("") + "\n")
		return
	}
	for line := range strings.Lines(text) {
		sb.WriteString(strconv.Quote(strings.TrimSuffix(line, "\n")))
		sb.WriteString("\n")
	}
}

func (m Map) writeNameStats(sb *strings.Builder, f *room.RoomFields) {
	sb.WriteString(strconv.Quote(string(f.Name)))
	if f.Name == "" {
		return
	}

	nameCount := m.CountRoomsWithName(f.Name)
	descCount := m.CountRoomsWithDesc(f.Description)

	sb.WriteString(" [")
	switch {
	case nameCount == 1:
		sb.WriteString("unique name")
		if descCount == 1 {
			sb.WriteString(", and unique desc")
		}
	case descCount == 1:
		fmt.Fprintf(sb, "name collisions: %d, but unique desc", nameCount)
	default:
		fmt.Fprintf(sb, "name collisions: %d", nameCount)
		nameDescCount := m.CountRoomsWithNameDesc(f.Name, f.Description)
		switch {
		case nameDescCount == 1:
			sb.WriteString(", but unique name+desc")
		case nameCount == nameDescCount:
			sb.WriteString("; all with same name/desc")
		default:
			fmt.Fprintf(sb, "; name/desc collisions: %d", nameDescCount)
		}
	}
	sb.WriteString("]")
}

func (m Map) writeConnection(sb *strings.Builder, h RoomHandle, other RoomHandle, out, adj, loop, twoWay bool) {
	sb.WriteString("  ")
	if !twoWay {
		if out {
			sb.WriteString("OUT ")
		} else {
			sb.WriteString("IN ")
		}
	}
	switch {
	case adj:
		sb.WriteString("adjacent")
	case loop:
		sb.WriteString("looping")
	default:
		sb.WriteString("distant")
	}
	if twoWay {
		sb.WriteString(" two-way ")
	} else {
		sb.WriteString(" one-way ")
	}
	if out {
		sb.WriteString("to ")
	} else {
		sb.WriteString("from ")
	}

	if loop {
		sb.WriteString("itself\n")
		return
	}
	fmt.Fprintf(sb, "%s (%s)", other.ExternalId(), strconv.Quote(string(other.Fields().Name)))
	if !adj {
		fmt.Fprintf(sb, " at %s; Delta%s", other.Position(),
			strings.TrimPrefix(other.Position().Sub(h.Position()).String(), "Coordinate"))
	}
	sb.WriteString("\n")
}

// StatRoom writes a detailed report about one room: ids, area share, name
// uniqueness, every field and every connection.
func (m Map) StatRoom(out io.Writer, id roomid.RoomId) error {
	h, err := m.GetRoomHandle(id)
	if err != nil {
		return err
	}
	f := h.Fields()
	var sb strings.Builder

	fmt.Fprintf(&sb, "Room %s (internal ID: %d), Server ID: %s, %s\n",
		h.ExternalId(), uint32(id), h.ServerId(), h.Position())

	numInArea := m.CountRoomsWithArea(f.Area)
	sb.WriteString("Area: ")
	if f.Area != "" {
		sb.WriteString(strconv.Quote(string(f.Area)))
	} else {
		sb.WriteString("undefined")
	}
	pct := 100.0 * float64(numInArea) / float64(m.NumRooms())
	fmt.Fprintf(&sb, " (relative size: %.1f%%, rooms: %d)\n", pct, numInArea)

	sb.WriteString("Name: ")
	m.writeNameStats(&sb, f)
	sb.WriteString("\n")

	status := "PERMANENT"
	if h.IsTemporary() {
		status = "TEMPORARY"
	}
	fmt.Fprintf(&sb, "Status: %s, Sector: %s\n", status, f.TerrainType)
	fmt.Fprintf(&sb, "Align: %s, Light: %s, Portable: %s, Rideable: %s, Sundeath: %s\n",
		f.AlignType, f.LightType, f.PortableType, f.RidableType, f.SundeathType)

	sb.WriteString("Mob Flags:")
	writeFlags(&sb, f.MobFlags.Names())
	sb.WriteString("\nLoad Flags:")
	writeFlags(&sb, f.LoadFlags.Names())
	sb.WriteString("\n")

	writeQuotedLines(&sb, "Description", string(f.Description))
	writeQuotedLines(&sb, "Contents", string(f.Contents))
	writeQuotedLines(&sb, "Note", string(f.Note))

	sb.WriteString("\nConnections:\n")
	for _, dir := range connectionOrder {
		ex := h.Exit(dir)
		if !ex.IsExit() && ex.Outgoing.Empty() && ex.Incoming.Empty() {
			continue
		}
		isUnknown := dir == room.Unknown
		rev := dir.Opposite()

		fmt.Fprintf(&sb, "\n%s:", dir)
		if ex.IsExit() {
			sb.WriteString("\n  exit flags:")
			writeFlags(&sb, ex.ExitFlags().Names())
		}
		if ex.IsDoor() {
			sb.WriteString("\n  door flags:")
			writeFlags(&sb, ex.DoorFlags().Names())
			sb.WriteString("\n  door name: ")
			sb.WriteString(strconv.Quote(string(ex.DoorName())))
		}
		sb.WriteString("\n")

		for to := range ex.Outgoing.All {
			other := m.FindRoomHandle(to)
			if !other.Exists() {
				continue
			}
			twoWay := other.Exit(rev).Outgoing.Contains(id)
			adj := !isUnknown && h.Position().Add(dir.Offset()) == other.Position()
			m.writeConnection(&sb, h, other, true, adj, id == to, twoWay)
		}
		for from := range ex.Incoming.All {
			other := m.FindRoomHandle(from)
			if !other.Exists() || other.Exit(rev).Incoming.Contains(id) {
				continue
			}
			adj := !isUnknown && h.Position().Add(dir.Offset()) == other.Position()
			m.writeConnection(&sb, h, other, false, adj, id == from, false)
		}
	}

	_, err = io.WriteString(out, sb.String())
	return err
}

// exitKeywords lists the hidden properties of an exit that a player would
// otherwise have to discover.
func exitKeywords(h RoomHandle, dir room.ExitDirection) []string {
	ex := h.Exit(dir)
	ef := ex.ExitFlags()

	var kws []string
	for _, kw := range []struct {
		flag room.ExitFlags
		word string
	}{
		{room.ExitFlagNoFlee, "noflee"},
		{room.ExitFlagRandom, "random"},
		{room.ExitFlagSpecial, "special"},
		{room.ExitFlagDamage, "damage"},
		{room.ExitFlagFall, "fall"},
		{room.ExitFlagGuarded, "guarded"},
	} {
		if ef.Contains(kw.flag) {
			kws = append(kws, kw.word)
		}
	}

	if ex.Outgoing.Contains(h.Id()) {
		return append(kws, "loop")
	}
	if ex.Outgoing.Empty() {
		return kws
	}

	target := h.Map().FindRoomHandle(ex.Outgoing.First())
	if !target.Exists() {
		return kws
	}

	oneWay := !target.Exit(dir.Opposite()).Outgoing.Contains(h.Id())
	exitCount := 0
	hasNoFlee := false
	for _, j := range room.NESWUD {
		te := target.Exit(j)
		if !te.IsExit() {
			continue
		}
		exitCount++
		if te.Outgoing.Contains(h.Id()) {
			oneWay = false
		}
		if te.ExitFlags().Contains(room.ExitFlagNoFlee) {
			hasNoFlee = true
		}
	}
	if oneWay {
		kws = append(kws, "oneway")
	}
	if hasNoFlee && exitCount == 1 {
		kws = append(kws, "hasnoflee")
	}

	tf := target.Fields()
	if tf.LoadFlags.Contains(room.LoadFlagAttention) {
		kws = append(kws, "attention")
	} else if tf.LoadFlags.Contains(room.LoadFlagDeathtrap) {
		return []string{"deathtrap"}
	}
	if tf.MobFlags.Contains(room.MobFlagSuperMob) {
		kws = append(kws, "smob")
	}
	if tf.MobFlags.Contains(room.MobFlagRattlesnake) {
		kws = append(kws, "rattlesnake")
	}
	if tf.TerrainType == room.TerrainUnderwater {
		kws = append(kws, "underwater")
	}
	return kws
}

func writeEnhancedExits(sb *strings.Builder, h RoomHandle) {
	prefix := " - "
	enhanced := false
	for _, dir := range room.NESWUD {
		ex := h.Exit(dir)
		if !ex.IsExit() {
			continue
		}
		kws := exitKeywords(h, dir)
		dn := ex.DoorName()
		if !(ex.IsHidden() && dn != "") && len(kws) == 0 {
			continue
		}
		enhanced = true
		sb.WriteString(prefix)
		prefix = " "
		sb.WriteString(dir.Char())
		sb.WriteString(":")
		sb.WriteString(string(dn))
		if len(kws) > 0 {
			sb.WriteString("(" + strings.Join(kws, ",") + ")")
		}
	}
	if enhanced {
		sb.WriteString(".")
	}
	sb.WriteString("\n")
}

func isSwimTerrain(t room.Terrain) bool {
	return t == room.TerrainRapids || t == room.TerrainUnderwater || t == room.TerrainWater
}

func writeExits(sb *strings.Builder, h RoomHandle, sun string) {
	sb.WriteString("Exits(emulated):")

	hasExits := slices.ContainsFunc(room.NESWUD[:], func(d room.ExitDirection) bool {
		return h.Exit(d).IsExit()
	})
	if !hasExits {
		sb.WriteString(" none.\n")
		return
	}

	prefix := " "
	source := h.Fields().TerrainType
	for _, dir := range room.NESWUD {
		ex := h.Exit(dir)
		if !ex.IsExit() {
			continue
		}
		var door, road, trail, climb, directSun, swim bool
		sb.WriteString(prefix)
		prefix = ", "

		if !ex.Outgoing.Empty() {
			if target := h.Map().FindRoomHandle(ex.Outgoing.First()); target.Exists() {
				tf := target.Fields()
				if tf.SundeathType == room.SundeathSundeath {
					directSun = true
					sb.WriteString(sun)
				}
				if isSwimTerrain(tf.TerrainType) {
					swim = true
					sb.WriteString("~")
				} else if tf.TerrainType == room.TerrainRoad && source == room.TerrainRoad {
					road = true
					sb.WriteString("=")
				}
			}
		}

		if !road && ex.ExitFlags().IsRoad() {
			if source == room.TerrainRoad {
				road = true
				sb.WriteString("=")
			} else {
				trail = true
				sb.WriteString("-")
			}
		}

		if ex.IsDoor() {
			door = true
			sb.WriteString("{")
		} else if ex.ExitFlags().IsClimb() {
			climb = true
			sb.WriteString("|")
		}

		sb.WriteString(dir.String())

		if door {
			sb.WriteString("}")
		} else if climb {
			sb.WriteString("|")
		}
		switch {
		case swim:
			sb.WriteString("~")
		case road:
			sb.WriteString("=")
		case trail:
			sb.WriteString("-")
		}
		if directSun {
			sb.WriteString(sun)
		}
	}
	sb.WriteString(".")
	writeEnhancedExits(sb, h)
}

func writeNote(sb *strings.Builder, note room.RoomNote) {
	if note == "" {
		return
	}
	text := string(note)
	sb.WriteString("Note:")
	if strings.Count(strings.TrimSuffix(text, "\n"), "\n") == 0 {
		sb.WriteString(" ")
		sb.WriteString(text)
		if !strings.HasSuffix(text, "\n") {
			sb.WriteString("\n")
		}
		return
	}
	sb.WriteString("\n")
	for line := range strings.Lines(text) {
		line = strings.TrimSuffix(line, "\n")
		if line == "" {
			continue
		}
		sb.WriteString("  ")
		sb.WriteString(line)
		sb.WriteString("\n")
	}
}

// PreviewRoom renders a room the way the game would show it, with an
// emulated exits line and any hidden exit information appended.
func PreviewRoom(h RoomHandle) string {
	if !h.Exists() {
		return "Error: Room does not exist.\n"
	}
	f := h.Fields()
	var sb strings.Builder
	sb.WriteString(string(f.Name))
	sb.WriteString("\n")
	sb.WriteString(string(f.Description))
	sb.WriteString(string(f.Contents))
	writeExits(&sb, h, "*")
	writeNote(&sb, f.Note)
	return sb.String()
}

// PreviewRoomWithHeader prefixes PreviewRoom with the room's ids, area and
// position.
func PreviewRoomWithHeader(h RoomHandle) string {
	if !h.Exists() {
		return PreviewRoom(h)
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "### Room %s", h.ExternalId())
	if sid := h.ServerId(); sid.IsValid() {
		fmt.Fprintf(&sb, " (server ID %s)", sid)
	}
	if area := h.Fields().Area; area != "" {
		fmt.Fprintf(&sb, " in %s", area)
	}
	fmt.Fprintf(&sb, " at Coordinates (%s)\n\n", h.Position().Plain())
	sb.WriteString(PreviewRoom(h))
	return sb.String()
}

// sortedExternal returns the external ids of the rooms matching keep, in
// ascending order.
func (m Map) sortedExternal(pc *progress.Counter, keep func(RoomHandle) bool) ([]roomid.ExternalRoomId, error) {
	pc.SetNewTask("scanning rooms", uint64(m.NumRooms()))
	var out []roomid.ExternalRoomId
	for id := range m.RoomSet().All {
		if h := m.FindRoomHandle(id); keep(h) {
			out = append(out, h.ExternalId())
		}
		if err := pc.Step(); err != nil {
			return nil, err
		}
	}
	slices.Sort(out)
	return out, nil
}

// PrintMulti lists every exit that leads to more than one room.
func (m Map) PrintMulti(pc *progress.Counter, out io.Writer) error {
	rooms, err := m.sortedExternal(pc, func(h RoomHandle) bool {
		for _, dir := range room.NESWUD {
			if !h.Exit(dir).ExitFlags().IsRandom() {
				return true
			}
		}
		return false
	})
	if err != nil {
		return err
	}

	var sb strings.Builder
	pc.SetNewTask("processing rooms", uint64(len(rooms)))
	for _, ext := range rooms {
		h := m.FindRoomHandleExternal(ext)
		for _, dir := range room.NESWUD {
			ex := h.Exit(dir)
			if ex.ExitFlags().IsRandom() || ex.Outgoing.Len() <= 1 {
				continue
			}
			fmt.Fprintf(&sb, "%s (%s) at %s connects %s to...\n",
				ext, strconv.Quote(string(h.Fields().Name)), h.Position(), dir)

			for to := range ex.Outgoing.All {
				sb.WriteString(" ...")
				other := m.FindRoomHandle(to)
				if !other.Exists() {
					sb.WriteString(m.ExternalRoomId(to).String() + "\n")
					continue
				}
				twoWay := other.Exit(dir.Opposite()).Outgoing.Contains(h.Id())
				looping := to == h.Id()
				adj := !looping && h.Position().Add(dir.Offset()) == other.Position()

				if twoWay {
					sb.WriteString("two-way ")
				} else {
					sb.WriteString("one-way ")
				}
				switch {
				case looping:
					sb.WriteString("looping")
				case adj:
					sb.WriteString("adjacent")
				default:
					sb.WriteString("non-adjacent")
				}
				fmt.Fprintf(&sb, " %s to ", dir)
				if looping {
					sb.WriteString("itself\n")
					continue
				}
				fmt.Fprintf(&sb, "%s (%s)", other.ExternalId(), strconv.Quote(string(other.Fields().Name)))
				if !adj {
					fmt.Fprintf(&sb, " at %s", other.Position())
				}
				sb.WriteString("\n")
			}
			sb.WriteString("\n")
		}
		if err := pc.Step(); err != nil {
			return err
		}
	}

	_, err = io.WriteString(out, sb.String())
	return err
}

// PrintUnknown lists rooms that still have a legacy Unknown exit or
// entrance.
func (m Map) PrintUnknown(pc *progress.Counter, out io.Writer) error {
	rooms, err := m.sortedExternal(pc, func(h RoomHandle) bool {
		ex := h.Exit(room.Unknown)
		return !ex.Outgoing.Empty() || !ex.Incoming.Empty()
	})
	if err != nil {
		return err
	}

	if len(rooms) == 0 {
		_, err = io.WriteString(out, "There are no legacy Unknown exits.\n")
		return err
	}

	var sb strings.Builder
	plural := "s"
	if len(rooms) == 1 {
		plural = ""
	}
	fmt.Fprintf(&sb, "The following %d room%s have at least one legacy Unknown entrance or exit:\n",
		len(rooms), plural)
	for _, ext := range rooms {
		h := m.FindRoomHandleExternal(ext)
		fmt.Fprintf(&sb, "%s: %s at %s\n", ext, strconv.Quote(string(h.Fields().Name)), h.Position())
	}

	_, err = io.WriteString(out, sb.String())
	return err
}

// ChangePrinter formats changes against this map, showing rooms by their
// external id.
func (m Map) ChangePrinter() change.Printer {
	return change.Printer{Room: func(id roomid.RoomId) string {
		return m.ExternalRoomId(id).String()
	}}
}

func (m Map) PrintChange(out io.Writer, c change.Change) error {
	_, err := io.WriteString(out, m.ChangePrinter().Format(c)+"\n")
	return err
}

func (m Map) PrintChanges(out io.Writer, changes []change.Change) error {
	_, err := io.WriteString(out, m.ChangePrinter().FormatAll(changes))
	return err
}
