package world

import (
	"fmt"
	"io"
	"strings"

	"github.com/pixil98/go-mudmap/internal/coordinate"
	"github.com/pixil98/go-mudmap/internal/parallel"
	"github.com/pixil98/go-mudmap/internal/progress"
	"github.com/pixil98/go-mudmap/internal/room"
	"github.com/pixil98/go-mudmap/internal/roomid"
)

type roomCounts struct {
	missingServerId, missingArea          int
	missingName, missingDesc, missingBoth int
	noConnections, noEntrances, noExits   int

	exits, doors, doorNames, hidden, hiddenDoorNames, loopExits int
	multipleOut, multipleIn                                     int

	connections                          int
	adj1, adj2, loop1, loop2, non1, non2 int
}

func (c *roomCounts) add(o *roomCounts) {
	c.missingServerId += o.missingServerId
	c.missingArea += o.missingArea
	c.missingName += o.missingName
	c.missingDesc += o.missingDesc
	c.missingBoth += o.missingBoth
	c.noConnections += o.noConnections
	c.noEntrances += o.noEntrances
	c.noExits += o.noExits
	c.exits += o.exits
	c.doors += o.doors
	c.doorNames += o.doorNames
	c.hidden += o.hidden
	c.hiddenDoorNames += o.hiddenDoorNames
	c.loopExits += o.loopExits
	c.multipleOut += o.multipleOut
	c.multipleIn += o.multipleIn
	c.connections += o.connections
	c.adj1 += o.adj1
	c.adj2 += o.adj2
	c.loop1 += o.loop1
	c.loop2 += o.loop2
	c.non1 += o.non1
	c.non2 += o.non2
}

func (w *World) countRoom(c *roomCounts, id roomid.RoomId) {
	r := w.rooms.Get(id)
	if !r.ServerId.IsValid() {
		c.missingServerId++
	}
	if r.Fields.Area == "" {
		c.missingArea++
	}
	noName, noDesc := r.Fields.Name == "", r.Fields.Description == ""
	if noName {
		c.missingName++
	}
	if noDesc {
		c.missingDesc++
	}
	if noName && noDesc {
		c.missingBoth++
	}

	hasExits, hasEntrances := false, false
	for _, dir := range room.AllExits {
		e := r.Exit(dir)
		if e.IsExit() {
			c.exits++
		}
		if e.IsDoor() {
			c.doors++
			if e.HasDoorName() {
				c.doorNames++
			}
		}
		if e.DoorFlags().IsHidden() {
			c.hidden++
			if e.HasDoorName() {
				c.hiddenDoorNames++
			}
		}
		if !e.Outgoing.Empty() {
			hasExits = true
		}
		if !e.Incoming.Empty() {
			hasEntrances = true
		}
		c.connections += e.Outgoing.Len()
		if e.Outgoing.Len() > 1 {
			c.multipleOut++
		}
		if e.Incoming.Len() > 1 {
			c.multipleIn++
		}
		if e.Outgoing.Contains(id) {
			c.loopExits++
		}

		rev := dir.Opposite()
		for to := range e.Outgoing.All {
			other := w.Room(to)
			if other == nil {
				continue
			}
			twoWay := other.Exit(rev).Outgoing.Contains(id)
			switch {
			case to == id:
				c.loop1, c.loop2 = countWay(twoWay, c.loop1, c.loop2)
			case r.Position.Add(dir.Offset()) == other.Position:
				c.adj1, c.adj2 = countWay(twoWay, c.adj1, c.adj2)
			default:
				c.non1, c.non2 = countWay(twoWay, c.non1, c.non2)
			}
		}
	}
	if !hasEntrances && !hasExits {
		c.noConnections++
	}
	if !hasEntrances {
		c.noEntrances++
	}
	if !hasExits {
		c.noExits++
	}
}

func countWay(twoWay bool, one, two int) (int, int) {
	if twoWay {
		return one, two + 1
	}
	return one + 1, two
}

type areaStats struct {
	center, lo, hi coordinate.Coordinate
	nearest        roomid.RoomId
}

func (w *World) computeAreaStats(rooms roomid.RoomIdSet) (areaStats, bool) {
	if rooms.Empty() {
		return areaStats{}, false
	}
	var st areaStats
	var sum coordinate.Coordinate
	first := w.rooms.Get(rooms.First()).Position
	st.lo, st.hi = first, first
	for id := range rooms.All {
		pos := w.rooms.Get(id).Position
		sum = sum.Add(pos)
		st.lo = coordinate.Min(st.lo, pos)
		st.hi = coordinate.Max(st.hi, pos)
	}
	n := rooms.Len()
	st.center = coordinate.New(sum.X/n, sum.Y/n, sum.Z/n)

	best := -1
	for id := range rooms.All {
		d := w.rooms.Get(id).Position.Sub(st.center)
		len2 := d.X*d.X + d.Y*d.Y + d.Z*d.Z
		if best < 0 || len2 < best {
			best = len2
			st.nearest = id
		}
	}
	return st, true
}

func printVec(out io.Writer, what string, c coordinate.Coordinate) {
	fmt.Fprintf(out, "%s: (%d, %d, %d)\n", what, c.X, c.Y, c.Z)
}

// PrintStats writes a human readable report about the world: id ranges,
// room and exit counts, index statistics and a summary of every area.
func (w *World) PrintStats(pc *progress.Counter, out io.Writer) error {
	w.remapping.PrintStats(out)
	w.serverIds.PrintStats(out)

	pc.SetNewTask("counting rooms", uint64(w.NumRooms()))
	var c roomCounts
	err := parallel.ForEach(pc, w.RoomSet().Items(),
		func() roomCounts { return roomCounts{} },
		func(local *roomCounts, id roomid.RoomId) error {
			w.countRoom(local, id)
			return nil
		},
		func(local *roomCounts) error {
			c.add(local)
			return nil
		},
	)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "\nTotal areas: %d.\n\n", w.areaInfos.NumAreas())
	fmt.Fprintf(out, "Total rooms: %d.\n\n", w.NumRooms())
	fmt.Fprintf(out, "  missing server id: %d.\n", c.missingServerId)
	fmt.Fprintf(out, "  missing area:      %d.\n\n", c.missingArea)
	fmt.Fprintf(out, "  with no name and no desc: %d.\n", c.missingBoth)
	fmt.Fprintf(out, "  with name but no desc:    %d.\n", c.missingDesc-c.missingBoth)
	fmt.Fprintf(out, "  with desc but no name:    %d.\n\n", c.missingName-c.missingBoth)
	fmt.Fprintf(out, "  with no connections:         %d.\n", c.noConnections)
	fmt.Fprintf(out, "  with entrances but no exits: %d.\n", c.noExits-c.noConnections)
	fmt.Fprintf(out, "  with exits but no entrances: %d.\n\n", c.noEntrances-c.noConnections)
	fmt.Fprintf(out, "Total exits: %d.\n\n", c.exits)
	fmt.Fprintf(out, "  doors:  %d (with names: %d).\n", c.doors, c.doorNames)
	fmt.Fprintf(out, "  hidden: %d (with names: %d).\n", c.hidden, c.hiddenDoorNames)
	fmt.Fprintf(out, "  loops:  %d.\n\n", c.loopExits)
	fmt.Fprintf(out, "  with multiple outputs: %d.\n", c.multipleOut)
	fmt.Fprintf(out, "  with multiple inputs:  %d.\n\n", c.multipleIn)
	fmt.Fprintf(out, "Total connections: %d.\n\n", c.connections)
	fmt.Fprintf(out, "  adjacent 1-way:     %d.\n", c.adj1)
	fmt.Fprintf(out, "  adjacent 2-way:     %d.\n", c.adj2)
	fmt.Fprintf(out, "  looping 1-way:      %d.\n", c.loop1)
	fmt.Fprintf(out, "  looping 2-way:      %d.\n", c.loop2)
	fmt.Fprintf(out, "  non-adjacent 1-way: %d.\n", c.non1)
	fmt.Fprintf(out, "  non-adjacent 2-way: %d.\n\n", c.non2)
	fmt.Fprintf(out, "  total 1-way:        %d.\n", c.non1+c.adj1+c.loop1)
	fmt.Fprintf(out, "  total 2-way:        %d.\n", c.non2+c.adj2+c.loop2)
	fmt.Fprintf(out, "  total adjacent:     %d.\n", c.adj1+c.adj2)
	fmt.Fprintf(out, "  total looping:      %d.\n", c.loop1+c.loop2)
	fmt.Fprintf(out, "  total non-adjacent: %d.\n", c.non1+c.non2+c.loop1+c.loop2)

	w.spatialDb.PrintStats(out)

	line := strings.Repeat("_", 80) + "\n"
	fmt.Fprintf(out, "\n%s\nWithin the global area (# rooms = %d):\n", line, w.NumRooms())
	w.parseTree.PrintStats(out)

	areas := w.areaInfos.SortedAreas()
	pc.SetNewTask("computing area centers", uint64(len(areas)))
	for _, area := range areas {
		rooms, _ := w.areaInfos.Find(area)
		n := rooms.Len()

		fmt.Fprintf(out, "\n%s\nThe ", line)
		if area == "" {
			fmt.Fprint(out, "default")
		} else {
			fmt.Fprintf(out, "%q", string(area))
		}
		plural := "s"
		if n == 1 {
			plural = ""
		}
		fmt.Fprintf(out, " area contains %d room%s.\n", n, plural)

		if st, ok := w.computeAreaStats(rooms); ok {
			fmt.Fprintln(out)
			printVec(out, "Center of mass", st.center)
			fmt.Fprintf(out, "Closest room: %d: %q", uint32(w.ConvertToExternal(st.nearest)),
				string(w.rooms.Get(st.nearest).Fields.Name))
			printVec(out, " at", w.rooms.Get(st.nearest).Position)
			fmt.Fprintln(out)
			printVec(out, "Bounds center", st.lo.Add(coordinate.New(
				(st.hi.X-st.lo.X)/2, (st.hi.Y-st.lo.Y)/2, (st.hi.Z-st.lo.Z)/2)))
			printVec(out, "Lower bounds", st.lo)
			printVec(out, "Upper bounds", st.hi)
			fmt.Fprintln(out)
			size := st.hi.Sub(st.lo).Add(coordinate.New(1, 1, 1))
			fmt.Fprintf(out, "Width  (West  to East):  %d.\n", size.X)
			fmt.Fprintf(out, "Height (South to North): %d.\n", size.Y)
			fmt.Fprintf(out, "Layers (Down  to Up):    %d.\n", size.Z)
		}
		if err := pc.Step(); err != nil {
			return err
		}
	}
	fmt.Fprintf(out, "\n%s", line)
	return nil
}
