package room

import "github.com/pixil98/go-mudmap/internal/roomid"

// Command is the movement or look command that produced a ParseEvent.
type Command uint8

const (
	CommandNorth Command = iota
	CommandSouth
	CommandEast
	CommandWest
	CommandUp
	CommandDown
	CommandUnknown
	CommandLook
	CommandFlee
	CommandScout
	CommandNone
)

// PromptFlags carries the terrain-derived prompt information.
type PromptFlags struct {
	Valid bool `json:"valid"`
	Lit   bool `json:"lit,omitempty"`
	Dark  bool `json:"dark,omitempty"`
}

// ConnectedRoomFlags describes sunlight in neighbouring rooms.
type ConnectedRoomFlags struct {
	Valid    bool           `json:"valid"`
	Sunlight [NumExits]bool `json:"sunlight"`
}

// ParseEvent is what the text parser observed when entering or looking at a
// room.
type ParseEvent struct {
	Area               RoomArea                      `json:"area,omitempty"`
	Name               RoomName                      `json:"name,omitempty"`
	Desc               RoomDesc                      `json:"desc,omitempty"`
	Contents           RoomContents                  `json:"contents,omitempty"`
	ExitIds            [NumExits]roomid.ServerRoomId `json:"exit_ids"`
	Exits              [NumExits]ExitFields          `json:"exits"`
	PromptFlags        PromptFlags                   `json:"prompt_flags"`
	ConnectedRoomFlags ConnectedRoomFlags            `json:"connected_room_flags"`
	ServerId           roomid.ServerRoomId           `json:"server_id,omitempty"`
	Terrain            Terrain                       `json:"terrain,omitempty"`
	MoveType           Command                       `json:"move_type,omitempty"`
}

// NumSkipped counts the missing name, desc and prompt components.
func (e *ParseEvent) NumSkipped() int {
	n := 0
	if e.Name == "" {
		n++
	}
	if e.Desc == "" {
		n++
	}
	if !e.PromptFlags.Valid {
		n++
	}
	return n
}

func (e *ParseEvent) HasNameDescFlags() bool { return e.NumSkipped() == 0 }
func (e *ParseEvent) HasServerId() bool      { return e.ServerId.IsValid() }

func (e *ParseEvent) CanCreateNewRoom() bool {
	return e.HasServerId() || e.HasNameDescFlags()
}
