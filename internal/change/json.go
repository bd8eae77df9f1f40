package change

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/pixil98/go-mudmap/internal/room"
	"github.com/pixil98/go-mudmap/internal/roomid"
)

type modifyRoomFlagsJSON struct {
	Room  roomid.RoomId  `json:"room"`
	Field string         `json:"field"`
	Value string         `json:"value"`
	Mode  FlagModifyMode `json:"mode"`
}

func (c ModifyRoomFlags) MarshalJSON() ([]byte, error) {
	if c.Field == nil {
		return nil, fmt.Errorf("modify room flags: missing field")
	}
	return json.Marshal(modifyRoomFlagsJSON{
		Room:  c.Room,
		Field: c.Field.RoomField().String(),
		Value: room.FieldString(c.Field),
		Mode:  c.Mode,
	})
}

func (c *ModifyRoomFlags) UnmarshalJSON(b []byte) error {
	var j modifyRoomFlagsJSON
	if err := json.Unmarshal(b, &j); err != nil {
		return err
	}
	e, ok := room.ParseRoomFieldEnum(j.Field)
	if !ok {
		return fmt.Errorf("unknown room field %q", j.Field)
	}
	v, err := room.ParseRoomField(e, j.Value)
	if err != nil {
		return fmt.Errorf("room field %s: %w", j.Field, err)
	}
	*c = ModifyRoomFlags{Room: j.Room, Field: v, Mode: j.Mode}
	return nil
}

type modifyExitFlagsJSON struct {
	Room  roomid.RoomId      `json:"room"`
	Dir   room.ExitDirection `json:"dir"`
	Field string             `json:"field"`
	Value string             `json:"value"`
	Mode  FlagModifyMode     `json:"mode"`
}

func (c ModifyExitFlags) MarshalJSON() ([]byte, error) {
	if c.Field == nil {
		return nil, fmt.Errorf("modify exit flags: missing field")
	}
	return json.Marshal(modifyExitFlagsJSON{
		Room:  c.Room,
		Dir:   c.Dir,
		Field: c.Field.ExitField().String(),
		Value: room.FieldString(c.Field),
		Mode:  c.Mode,
	})
}

func (c *ModifyExitFlags) UnmarshalJSON(b []byte) error {
	var j modifyExitFlagsJSON
	if err := json.Unmarshal(b, &j); err != nil {
		return err
	}
	e, ok := room.ParseExitFieldEnum(j.Field)
	if !ok {
		return fmt.Errorf("unknown exit field %q", j.Field)
	}
	v, err := room.ParseExitField(e, j.Value)
	if err != nil {
		return fmt.Errorf("exit field %s: %w", j.Field, err)
	}
	*c = ModifyExitFlags{Room: j.Room, Dir: j.Dir, Field: v, Mode: j.Mode}
	return nil
}

func decodeAs[T Change](b []byte) (Change, error) {
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return nil, err
	}
	return v, nil
}

var decoders = map[string]func([]byte) (Change, error){
	"CompactRoomIds":       decodeAs[CompactRoomIds],
	"RemoveAllDoorNames":   decodeAs[RemoveAllDoorNames],
	"GenerateBaseMap":      decodeAs[GenerateBaseMap],
	"CreateLocalSpace":     decodeAs[CreateLocalSpace],
	"SetLocalSpacePortal":  decodeAs[SetLocalSpacePortal],
	"AddRoomToLocalSpace":  decodeAs[AddRoomToLocalSpace],
	"AddPermanentRoom":     decodeAs[AddPermanentRoom],
	"AddRoom2":             decodeAs[AddRoom2],
	"RemoveRoom":           decodeAs[RemoveRoom],
	"UndeleteRoom":         decodeAs[UndeleteRoom],
	"MakePermanent":        decodeAs[MakePermanent],
	"Update":               decodeAs[Update],
	"SetServerId":          decodeAs[SetServerId],
	"SetScaleFactor":       decodeAs[SetScaleFactor],
	"MoveRelative":         decodeAs[MoveRelative],
	"MoveRelative2":        decodeAs[MoveRelative2],
	"MergeRelative":        decodeAs[MergeRelative],
	"ModifyRoomFlags":      decodeAs[ModifyRoomFlags],
	"TryMoveCloseTo":       decodeAs[TryMoveCloseTo],
	"ModifyExitConnection": decodeAs[ModifyExitConnection],
	"ModifyExitFlags":      decodeAs[ModifyExitFlags],
	"NukeExit":             decodeAs[NukeExit],
	"SetExitFlags":         decodeAs[SetExitFlags],
	"SetDoorFlags":         decodeAs[SetDoorFlags],
	"SetDoorName":          decodeAs[SetDoorName],
	"AddInfomark":          decodeAs[AddInfomark],
	"UpdateInfomark":       decodeAs[UpdateInfomark],
	"RemoveInfomark":       decodeAs[RemoveInfomark],
}

// Names returns every variant name accepted by Decode.
func Names() []string {
	out := make([]string, 0, len(decoders))
	for n := range decoders {
		out = append(out, n)
	}
	return out
}

// Encode renders c as a JSON object whose "type" member names the variant.
func Encode(c Change) ([]byte, error) {
	body, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", c.Name(), err)
	}
	typ, _ := json.Marshal(c.Name())

	var buf bytes.Buffer
	buf.WriteString(`{"type":`)
	buf.Write(typ)
	if inner := bytes.TrimSpace(body[1 : len(body)-1]); len(inner) > 0 {
		buf.WriteByte(',')
		buf.Write(inner)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Decode parses one object produced by Encode.
func Decode(b []byte) (Change, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(b, &head); err != nil {
		return nil, err
	}
	dec, ok := decoders[head.Type]
	if !ok {
		return nil, fmt.Errorf("unknown change type %q", head.Type)
	}
	c, err := dec(b)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", head.Type, err)
	}
	return c, nil
}

// List is an ordered batch of changes with a JSON array encoding.
type List []Change

func (l List) MarshalJSON() ([]byte, error) {
	items := make([]json.RawMessage, 0, len(l))
	for _, c := range l {
		b, err := Encode(c)
		if err != nil {
			return nil, err
		}
		items = append(items, b)
	}
	return json.Marshal(items)
}

func (l *List) UnmarshalJSON(b []byte) error {
	var items []json.RawMessage
	if err := json.Unmarshal(b, &items); err != nil {
		return err
	}
	out := make(List, 0, len(items))
	for i, item := range items {
		c, err := Decode(item)
		if err != nil {
			return fmt.Errorf("change %d: %w", i, err)
		}
		out = append(out, c)
	}
	*l = out
	return nil
}
