// Package change defines the typed mutations understood by the world.
package change

import (
	"github.com/pixil98/go-mudmap/internal/coordinate"
	"github.com/pixil98/go-mudmap/internal/infomark"
	"github.com/pixil98/go-mudmap/internal/room"
	"github.com/pixil98/go-mudmap/internal/roomid"
)

// Change is a closed set of mutation requests. Every variant is declared in
// this package.
type Change interface {
	// Name is the variant name used in printing and in the JSON encoding.
	Name() string
	isChange()
}

// World changes.

// CompactRoomIds renumbers external ids contiguously from FirstId.
type CompactRoomIds struct {
	FirstId roomid.ExternalRoomId `json:"first_id"`
}

type RemoveAllDoorNames struct{}

// GenerateBaseMap prunes hidden and no-match exits, then every room that is
// not reachable from the seed rooms.
type GenerateBaseMap struct{}

// CreateLocalSpace adds an empty local space. Creating a name that already
// exists does nothing.
type CreateLocalSpace struct {
	Space string `json:"name"`
}

// SetLocalSpacePortal places the rectangle, in map units, that a local space
// is drawn into.
type SetLocalSpacePortal struct {
	Space string  `json:"name"`
	X     float32 `json:"x"`
	Y     float32 `json:"y"`
	Z     float32 `json:"z"`
	W     float32 `json:"w"`
	H     float32 `json:"h"`
}

// AddRoomToLocalSpace moves Room into the named space, out of any space it
// was in before.
type AddRoomToLocalSpace struct {
	Space string        `json:"name"`
	Room  roomid.RoomId `json:"room"`
}

// Room changes.

type AddPermanentRoom struct {
	Position coordinate.Coordinate `json:"position"`
}

// AddRoom2 creates a room from a parse event at the nearest free position.
type AddRoom2 struct {
	Position coordinate.Coordinate `json:"position"`
	Event    room.ParseEvent       `json:"event"`
}

type RemoveRoom struct {
	Room roomid.RoomId `json:"room"`
}

// UndeleteRoom restores a removed room with its original ids. Exits are
// restored by separate changes.
type UndeleteRoom struct {
	Room roomid.ExternalRoomId `json:"room"`
	Raw  room.RawRoom          `json:"raw"`
}

type MakePermanent struct {
	Room roomid.RoomId `json:"room"`
}

type Update struct {
	Room  roomid.RoomId   `json:"room"`
	Event room.ParseEvent `json:"event"`
	Type  UpdateType      `json:"update_type"`
}

type SetServerId struct {
	Room     roomid.RoomId       `json:"room"`
	ServerId roomid.ServerRoomId `json:"server_id"`
}

// SetScaleFactor sets the drawing scale of a room. The scale must be
// positive and finite.
type SetScaleFactor struct {
	Room  roomid.RoomId `json:"room"`
	Scale float32       `json:"scale"`
}

type MoveRelative struct {
	Room   roomid.RoomId         `json:"room"`
	Offset coordinate.Coordinate `json:"offset"`
}

// MoveRelative2 moves a set of rooms together; the move fails if any
// destination is occupied by a room outside the set.
type MoveRelative2 struct {
	Rooms  roomid.RoomIdSet      `json:"rooms"`
	Offset coordinate.Coordinate `json:"offset"`
}

// MergeRelative folds Room into the room found at its position plus Offset.
type MergeRelative struct {
	Room   roomid.RoomId         `json:"room"`
	Offset coordinate.Coordinate `json:"offset"`
}

type ModifyRoomFlags struct {
	Room  roomid.RoomId
	Field room.RoomField
	Mode  FlagModifyMode
}

// TryMoveCloseTo moves a room to the free position nearest Desired on the
// same z layer. The move is best effort.
type TryMoveCloseTo struct {
	Room    roomid.RoomId         `json:"room"`
	Desired coordinate.Coordinate `json:"desired"`
}

// Exit changes.

// ModifyExitConnection adds or removes one connection. Use NukeExit to clear
// an exit entirely.
type ModifyExitConnection struct {
	Type ChangeType         `json:"change_type"`
	Room roomid.RoomId      `json:"room"`
	Dir  room.ExitDirection `json:"dir"`
	To   roomid.RoomId      `json:"to"`
	Ways Ways               `json:"ways"`
}

type ModifyExitFlags struct {
	Room  roomid.RoomId
	Dir   room.ExitDirection
	Field room.ExitField
	Mode  FlagModifyMode
}

type NukeExit struct {
	Room roomid.RoomId      `json:"room"`
	Dir  room.ExitDirection `json:"dir"`
	Ways Ways               `json:"ways"`
}

type SetExitFlags struct {
	Type  FlagChange         `json:"change_type"`
	Room  roomid.RoomId      `json:"room"`
	Dir   room.ExitDirection `json:"dir"`
	Flags room.ExitFlags     `json:"flags"`
}

type SetDoorFlags struct {
	Type  FlagChange         `json:"change_type"`
	Room  roomid.RoomId      `json:"room"`
	Dir   room.ExitDirection `json:"dir"`
	Flags room.DoorFlags     `json:"flags"`
}

type SetDoorName struct {
	Room     roomid.RoomId      `json:"room"`
	Dir      room.ExitDirection `json:"dir"`
	DoorName room.DoorName      `json:"name"`
}

// Infomark changes.

type AddInfomark struct {
	Fields infomark.Fields `json:"fields"`
}

type UpdateInfomark struct {
	Id     roomid.InfomarkId `json:"id"`
	Fields infomark.Fields   `json:"fields"`
}

type RemoveInfomark struct {
	Id roomid.InfomarkId `json:"id"`
}

func (CompactRoomIds) Name() string       { return "CompactRoomIds" }
func (RemoveAllDoorNames) Name() string   { return "RemoveAllDoorNames" }
func (GenerateBaseMap) Name() string      { return "GenerateBaseMap" }
func (CreateLocalSpace) Name() string     { return "CreateLocalSpace" }
func (SetLocalSpacePortal) Name() string  { return "SetLocalSpacePortal" }
func (AddRoomToLocalSpace) Name() string  { return "AddRoomToLocalSpace" }
func (AddPermanentRoom) Name() string     { return "AddPermanentRoom" }
func (AddRoom2) Name() string             { return "AddRoom2" }
func (RemoveRoom) Name() string           { return "RemoveRoom" }
func (UndeleteRoom) Name() string         { return "UndeleteRoom" }
func (MakePermanent) Name() string        { return "MakePermanent" }
func (Update) Name() string               { return "Update" }
func (SetServerId) Name() string          { return "SetServerId" }
func (SetScaleFactor) Name() string       { return "SetScaleFactor" }
func (MoveRelative) Name() string         { return "MoveRelative" }
func (MoveRelative2) Name() string        { return "MoveRelative2" }
func (MergeRelative) Name() string        { return "MergeRelative" }
func (ModifyRoomFlags) Name() string      { return "ModifyRoomFlags" }
func (TryMoveCloseTo) Name() string       { return "TryMoveCloseTo" }
func (ModifyExitConnection) Name() string { return "ModifyExitConnection" }
func (ModifyExitFlags) Name() string      { return "ModifyExitFlags" }
func (NukeExit) Name() string             { return "NukeExit" }
func (SetExitFlags) Name() string         { return "SetExitFlags" }
func (SetDoorFlags) Name() string         { return "SetDoorFlags" }
func (SetDoorName) Name() string          { return "SetDoorName" }
func (AddInfomark) Name() string          { return "AddInfomark" }
func (UpdateInfomark) Name() string       { return "UpdateInfomark" }
func (RemoveInfomark) Name() string       { return "RemoveInfomark" }

func (CompactRoomIds) isChange()       {}
func (RemoveAllDoorNames) isChange()   {}
func (GenerateBaseMap) isChange()      {}
func (CreateLocalSpace) isChange()     {}
func (SetLocalSpacePortal) isChange()  {}
func (AddRoomToLocalSpace) isChange()  {}
func (AddPermanentRoom) isChange()     {}
func (AddRoom2) isChange()             {}
func (RemoveRoom) isChange()           {}
func (UndeleteRoom) isChange()         {}
func (MakePermanent) isChange()        {}
func (Update) isChange()               {}
func (SetServerId) isChange()          {}
func (SetScaleFactor) isChange()       {}
func (MoveRelative) isChange()         {}
func (MoveRelative2) isChange()        {}
func (MergeRelative) isChange()        {}
func (ModifyRoomFlags) isChange()      {}
func (TryMoveCloseTo) isChange()       {}
func (ModifyExitConnection) isChange() {}
func (ModifyExitFlags) isChange()      {}
func (NukeExit) isChange()             {}
func (SetExitFlags) isChange()         {}
func (SetDoorFlags) isChange()         {}
func (SetDoorName) isChange()          {}
func (AddInfomark) isChange()          {}
func (UpdateInfomark) isChange()       {}
func (RemoveInfomark) isChange()       {}
