package room

import (
	"cmp"

	"github.com/pixil98/go-mudmap/internal/roomid"
)

// Exit is one directional slot of a room. T is the id space the connection
// sets refer to.
type Exit[T cmp.Ordered] struct {
	Fields   ExitFields    `json:"fields"`
	Outgoing roomid.Set[T] `json:"outgoing"`
	Incoming roomid.Set[T] `json:"incoming"`
}

type RawExit = Exit[roomid.RoomId]
type ExternalRawExit = Exit[roomid.ExternalRoomId]

func (e *Exit[T]) ExitFlags() ExitFlags { return e.Fields.ExitFlags }
func (e *Exit[T]) DoorFlags() DoorFlags { return e.Fields.DoorFlags }
func (e *Exit[T]) DoorName() DoorName   { return e.Fields.DoorName }

func (e *Exit[T]) IsExit() bool      { return e.Fields.ExitFlags.IsExit() }
func (e *Exit[T]) IsDoor() bool      { return e.Fields.ExitFlags.IsDoor() }
func (e *Exit[T]) IsHidden() bool    { return e.IsDoor() && e.Fields.DoorFlags.IsHidden() }
func (e *Exit[T]) HasDoorName() bool { return e.Fields.DoorName != "" }

// Clone returns a copy that shares nothing mutable with e.
func (e *Exit[T]) Clone() Exit[T] {
	return Exit[T]{
		Fields:   e.Fields,
		Outgoing: e.Outgoing.Clone(),
		Incoming: e.Incoming.Clone(),
	}
}

func (e *Exit[T]) Equal(o *Exit[T]) bool {
	return e.Fields == o.Fields && e.Outgoing.Equal(o.Outgoing) && e.Incoming.Equal(o.Incoming)
}

type exitExpectations struct {
	exit     bool
	door     bool
	unmapped bool
}

func (e *Exit[T]) expectations() exitExpectations {
	flags := e.Fields.ExitFlags
	hasAnyExits := !e.Outgoing.Empty()
	hasDoorInfo := e.Fields.DoorFlags != 0 || e.HasDoorName()

	shouldHaveUnmapped := !hasAnyExits && flags.IsExit()
	shouldHaveExit := hasAnyExits || shouldHaveUnmapped
	shouldHaveDoor := shouldHaveExit && (flags.IsDoor() || hasDoorInfo)
	return exitExpectations{exit: shouldHaveExit, door: shouldHaveDoor, unmapped: shouldHaveUnmapped}
}

// SatisfiesInvariants reports whether the EXIT, DOOR and UNMAPPED flags agree
// with the connection sets and the door data.
func (e *Exit[T]) SatisfiesInvariants() bool {
	exp := e.expectations()
	flags := e.Fields.ExitFlags
	if flags.IsExit() != exp.exit {
		return false
	}
	if flags.IsDoor() != exp.door {
		return false
	}
	if (e.Fields.DoorFlags != 0 || e.HasDoorName()) && !exp.door {
		return false
	}
	return flags.IsUnmapped() == exp.unmapped
}

// EnforceInvariants rewrites the derived flags so SatisfiesInvariants holds.
func (e *Exit[T]) EnforceInvariants() {
	exp := e.expectations()
	flags := &e.Fields.ExitFlags
	setFlag(flags, ExitFlagExit, exp.exit)
	setFlag(flags, ExitFlagDoor, exp.door)
	if !exp.door {
		e.Fields.DoorFlags = 0
		e.Fields.DoorName = ""
	}
	setFlag(flags, ExitFlagUnmapped, exp.unmapped)
}

func setFlag(flags *ExitFlags, f ExitFlags, on bool) {
	if on {
		*flags |= f
	} else {
		*flags &^= f
	}
}
