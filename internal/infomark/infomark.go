// Package infomark models the text, line and arrow annotations drawn on the map.
package infomark

import (
	"fmt"
	"maps"
	"slices"

	"github.com/pixil98/go-mudmap/internal/coordinate"
	"github.com/pixil98/go-mudmap/internal/roomid"
)

// Scale is the number of infomark units per room in the x and y axes.
const Scale = 100

type Type uint8

const (
	TypeText Type = iota
	TypeLine
	TypeArrow
)

var typeNames = []string{"TEXT", "LINE", "ARROW"}

func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return fmt.Sprintf("INVALID(%d)", uint8(t))
}

type Class uint8

const (
	ClassGeneric Class = iota
	ClassHerb
	ClassRiver
	ClassPlace
	ClassMob
	ClassComment
	ClassRoad
	ClassObject
	ClassAction
	ClassLocality
)

var classNames = []string{
	"GENERIC", "HERB", "RIVER", "PLACE", "MOB", "COMMENT", "ROAD", "OBJECT", "ACTION", "LOCALITY",
}

func (c Class) String() string {
	if int(c) < len(classNames) {
		return classNames[c]
	}
	return fmt.Sprintf("INVALID(%d)", uint8(c))
}

type Fields struct {
	Text          string                `json:"text,omitempty"`
	Type          Type                  `json:"type"`
	Class         Class                 `json:"class"`
	Position1     coordinate.Coordinate `json:"position1"`
	Position2     coordinate.Coordinate `json:"position2"`
	RotationAngle int                   `json:"rotation_angle,omitempty"`
}

// Offset moves both endpoints by a room offset.
func (f Fields) Offset(roomOffset coordinate.Coordinate) Fields {
	scaled := roomOffset.Mul(coordinate.New(Scale, Scale, 1))
	f.Position1 = f.Position1.Add(scaled)
	f.Position2 = f.Position2.Add(scaled)
	return f
}

// Db is a copy-on-write collection of infomarks. Methods that modify the
// collection return an error for unknown ids and never touch a Db obtained
// from Clone.
type Db struct {
	next  roomid.InfomarkId
	marks map[roomid.InfomarkId]Fields
}

func NewDb() Db {
	return Db{}
}

// Clone returns an independent copy.
func (d Db) Clone() Db {
	return Db{next: d.next, marks: maps.Clone(d.marks)}
}

func (d *Db) Add(f Fields) roomid.InfomarkId {
	if d.marks == nil {
		d.marks = map[roomid.InfomarkId]Fields{}
	}
	id := d.next
	d.next++
	d.marks[id] = f
	return id
}

func (d *Db) Update(id roomid.InfomarkId, f Fields) error {
	if _, ok := d.marks[id]; !ok {
		return fmt.Errorf("invalid infomark id %d", id)
	}
	d.marks[id] = f
	return nil
}

func (d *Db) Remove(id roomid.InfomarkId) error {
	if _, ok := d.marks[id]; !ok {
		return fmt.Errorf("invalid infomark id %d", id)
	}
	delete(d.marks, id)
	return nil
}

func (d Db) Get(id roomid.InfomarkId) (Fields, bool) {
	f, ok := d.marks[id]
	return f, ok
}

func (d Db) Len() int    { return len(d.marks) }
func (d Db) Empty() bool { return len(d.marks) == 0 }

// Ids returns every id in ascending order.
func (d Db) Ids() []roomid.InfomarkId {
	return slices.Sorted(maps.Keys(d.marks))
}

// All returns the fields of every mark in id order.
func (d Db) All() []Fields {
	out := make([]Fields, 0, len(d.marks))
	for _, id := range d.Ids() {
		out = append(out, d.marks[id])
	}
	return out
}

func (d Db) Equal(o Db) bool {
	return maps.Equal(d.marks, o.marks)
}
