package storage

import (
	"fmt"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-mudmap/internal/coordinate"
	"github.com/pixil98/go-mudmap/internal/infomark"
	"github.com/pixil98/go-mudmap/internal/room"
	"github.com/pixil98/go-mudmap/internal/roomid"
)

// AreaSpec is a hand-authored or exported fragment of a map. The room ids
// are local to the document; they are renumbered when the area is merged.
type AreaSpec struct {
	Name   string                 `json:"name"`
	Offset coordinate.Coordinate  `json:"offset"`
	Rooms  []room.ExternalRawRoom `json:"rooms"`
	Marks  []infomark.Fields      `json:"marks,omitempty"`
}

func (a *AreaSpec) Validate() error {
	if a == nil {
		return fmt.Errorf("spec must be set")
	}

	el := errors.NewErrorList()

	if a.Name == "" {
		el.Add(fmt.Errorf("name must be set"))
	}
	if len(a.Rooms) == 0 {
		el.Add(fmt.Errorf("area %q has no rooms", a.Name))
	}

	seen := make(map[roomid.ExternalRoomId]struct{}, len(a.Rooms))
	for i := range a.Rooms {
		id := a.Rooms[i].Id
		if !id.IsValid() {
			el.Add(fmt.Errorf("room %d: invalid id", i))
			continue
		}
		if _, ok := seen[id]; ok {
			el.Add(fmt.Errorf("room %d: duplicate id %s", i, id))
		}
		seen[id] = struct{}{}
	}

	return el.Err()
}

func (a *AreaSpec) Selector() string {
	return a.Name
}

// Clone returns a copy whose rooms and marks may be modified freely.
func (a *AreaSpec) Clone() *AreaSpec {
	out := *a
	out.Rooms = make([]room.ExternalRawRoom, len(a.Rooms))
	for i := range a.Rooms {
		out.Rooms[i] = a.Rooms[i].Clone()
	}
	out.Marks = append([]infomark.Fields(nil), a.Marks...)
	return &out
}
