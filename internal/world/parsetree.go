package world

import (
	"fmt"
	"io"
	"maps"
	"strings"

	"github.com/pixil98/go-mudmap/internal/room"
	"github.com/pixil98/go-mudmap/internal/roomid"
)

type NameDesc struct {
	Name room.RoomName
	Desc room.RoomDesc
}

// ParseKeys selects which parse tree indexes an operation touches.
type ParseKeys uint8

const (
	ParseKeyName ParseKeys = 1 << iota
	ParseKeyDesc

	AllParseKeys = ParseKeyName | ParseKeyDesc
)

// ParseTree indexes rooms by name, by description and by both.
type ParseTree struct {
	NameOnly map[room.RoomName]roomid.RoomIdSet
	DescOnly map[room.RoomDesc]roomid.RoomIdSet
	NameDesc map[NameDesc]roomid.RoomIdSet
}

func newParseTree() ParseTree {
	return ParseTree{
		NameOnly: map[room.RoomName]roomid.RoomIdSet{},
		DescOnly: map[room.RoomDesc]roomid.RoomIdSet{},
		NameDesc: map[NameDesc]roomid.RoomIdSet{},
	}
}

func (t *ParseTree) Clone() ParseTree {
	return ParseTree{
		NameOnly: maps.Clone(t.NameOnly),
		DescOnly: maps.Clone(t.DescOnly),
		NameDesc: maps.Clone(t.NameDesc),
	}
}

func setsEqual(a, b roomid.RoomIdSet) bool { return a.Equal(b) }

func (t *ParseTree) Equal(o *ParseTree) bool {
	return maps.EqualFunc(t.NameOnly, o.NameOnly, setsEqual) &&
		maps.EqualFunc(t.DescOnly, o.DescOnly, setsEqual) &&
		maps.EqualFunc(t.NameDesc, o.NameDesc, setsEqual)
}

func insertId[K comparable](m map[K]roomid.RoomIdSet, key K, id roomid.RoomId) {
	set := m[key]
	set.Insert(id)
	m[key] = set
}

func removeId[K comparable](m map[K]roomid.RoomIdSet, key K, id roomid.RoomId) {
	set, ok := m[key]
	if !ok {
		return
	}
	set.Erase(id)
	if set.Empty() {
		delete(m, key)
		return
	}
	m[key] = set
}

func (t *ParseTree) insert(r *room.RawRoom, keys ParseKeys) {
	if keys == 0 {
		return
	}
	if keys&ParseKeyName != 0 {
		insertId(t.NameOnly, r.Fields.Name, r.Id)
	}
	if keys&ParseKeyDesc != 0 {
		insertId(t.DescOnly, r.Fields.Description, r.Id)
	}
	insertId(t.NameDesc, NameDesc{r.Fields.Name, r.Fields.Description}, r.Id)
}

func (t *ParseTree) remove(r *room.RawRoom, keys ParseKeys) {
	if keys == 0 {
		return
	}
	if keys&ParseKeyName != 0 {
		removeId(t.NameOnly, r.Fields.Name, r.Id)
	}
	if keys&ParseKeyDesc != 0 {
		removeId(t.DescOnly, r.Fields.Description, r.Id)
	}
	removeId(t.NameDesc, NameDesc{r.Fields.Name, r.Fields.Description}, r.Id)
}

// parseKeysChanged reports which keys differ between two versions of a room.
func parseKeysChanged(a, b *room.RawRoom) ParseKeys {
	var keys ParseKeys
	if a.Fields.Name != b.Fields.Name {
		keys |= ParseKeyName
	}
	if a.Fields.Description != b.Fields.Description {
		keys |= ParseKeyDesc
	}
	return keys
}

func countUnique[K comparable](m map[K]roomid.RoomIdSet) (unique, nonUniqueRooms int) {
	for _, set := range m {
		if set.Len() == 1 {
			unique++
		} else {
			nonUniqueRooms += set.Len()
		}
	}
	return unique, nonUniqueRooms
}

func mostCommon[K comparable](m map[K]roomid.RoomIdSet) (K, int) {
	var zero, best K
	bestCount := 0
	for k, set := range m {
		if k == zero {
			continue
		}
		n := set.Len()
		if n > bestCount || (n == bestCount && bestCount > 0 && lessKey(k, best)) {
			best, bestCount = k, n
		}
	}
	return best, bestCount
}

// lessKey makes ties in mostCommon deterministic.
func lessKey[K comparable](a, b K) bool {
	return fmt.Sprint(a) < fmt.Sprint(b)
}

func (t *ParseTree) PrintStats(w io.Writer) {
	totalName, totalDesc, totalNameDesc := len(t.NameOnly), len(t.DescOnly), len(t.NameDesc)
	uniqueName, nonName := countUnique(t.NameOnly)
	uniqueDesc, nonDesc := countUnique(t.DescOnly)
	uniqueNameDesc, nonNameDesc := countUnique(t.NameDesc)

	fmt.Fprint(w, "\n")
	fmt.Fprintf(w, "Total name combinations:              %d.\n", totalName)
	fmt.Fprintf(w, "Total desc combinations:              %d.\n", totalDesc)
	fmt.Fprintf(w, "Total name+desc combinations:         %d.\n", totalNameDesc)
	fmt.Fprint(w, "\n")
	fmt.Fprintf(w, "  unique name:              %d.\n", uniqueName)
	fmt.Fprintf(w, "  unique desc:              %d.\n", uniqueDesc)
	fmt.Fprintf(w, "  unique name+desc:         %d.\n", uniqueNameDesc)
	fmt.Fprint(w, "\n")
	fmt.Fprintf(w, "  non-unique names:             %d.\n", totalName-uniqueName)
	fmt.Fprintf(w, "  non-unique descs:             %d.\n", totalDesc-uniqueDesc)
	fmt.Fprintf(w, "  non-unique name+desc:         %d.\n", totalNameDesc-uniqueNameDesc)
	fmt.Fprint(w, "\n")
	fmt.Fprintf(w, "  rooms w/ non-unique names:             %d.\n", nonName)
	fmt.Fprintf(w, "  rooms w/ non-unique descs:             %d.\n", nonDesc)
	fmt.Fprintf(w, "  rooms w/ non-unique name+desc:         %d.\n", nonNameDesc)

	printQuotedLines := func(s string) {
		for _, line := range strings.Split(strings.TrimSuffix(s, "\n"), "\n") {
			fmt.Fprintf(w, "%q\n", line)
		}
	}
	plural := func(n int) string {
		if n == 1 {
			return ""
		}
		return "s"
	}

	if name, n := mostCommon(t.NameOnly); n > 1 {
		fmt.Fprintf(w, "\nMost common name appears %d time%s:\n", n, plural(n))
		printQuotedLines(string(name))
	}
	if desc, n := mostCommon(t.DescOnly); n > 1 {
		fmt.Fprintf(w, "\nMost common desc appears %d time%s:\n", n, plural(n))
		printQuotedLines(string(desc))
	}
	if nd, n := mostCommon(t.NameDesc); n > 1 {
		fmt.Fprintf(w, "\nMost common name+desc appears %d time%s:\n", n, plural(n))
		fmt.Fprint(w, "Name:\n")
		printQuotedLines(string(nd.Name))
		fmt.Fprint(w, "Desc:\n")
		printQuotedLines(string(nd.Desc))
	}
}
