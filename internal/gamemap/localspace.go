package gamemap

import (
	"github.com/pixil98/go-mudmap/internal/change"
	"github.com/pixil98/go-mudmap/internal/progress"
	"github.com/pixil98/go-mudmap/internal/roomid"
	"github.com/pixil98/go-mudmap/internal/world"
)

// ExternalLocalSpace is a local space with its rooms in external ids, the
// form it is saved in.
type ExternalLocalSpace struct {
	Name   string                  `json:"name"`
	Rooms  []roomid.ExternalRoomId `json:"rooms,omitempty"`
	Portal *world.Portal           `json:"portal,omitempty"`
}

// ExternalLocalSpaces lists the local spaces in creation order.
func (m Map) ExternalLocalSpaces() []ExternalLocalSpace {
	w := m.World()
	var out []ExternalLocalSpace
	for s := range w.LocalSpaces().All {
		ext := ExternalLocalSpace{Name: s.Name}
		for id := range s.Rooms.All {
			ext.Rooms = append(ext.Rooms, w.ConvertToExternal(id))
		}
		if s.HasPortal {
			p := s.Portal
			ext.Portal = &p
		}
		out = append(out, ext)
	}
	return out
}

// localSpaceChanges recreates spaces on w. Rooms that no longer exist are
// skipped.
func localSpaceChanges(w *world.World, spaces []ExternalLocalSpace) []change.Change {
	var out []change.Change
	for _, s := range spaces {
		out = append(out, change.CreateLocalSpace{Space: s.Name})
		if p := s.Portal; p != nil {
			out = append(out, change.SetLocalSpacePortal{Space: s.Name, X: p.X, Y: p.Y, Z: p.Z, W: p.W, H: p.H})
		}
		for _, ext := range s.Rooms {
			if id := w.ConvertToInternal(ext); w.HasRoom(id) {
				out = append(out, change.AddRoomToLocalSpace{Space: s.Name, Room: id})
			}
		}
	}
	return out
}

// WithLocalSpaces returns the map with spaces added. An empty list returns
// the map unchanged.
func (m Map) WithLocalSpaces(pc *progress.Counter, spaces []ExternalLocalSpace, opts world.ApplyOptions) (Map, error) {
	changes := localSpaceChanges(m.World(), spaces)
	if len(changes) == 0 {
		return m, nil
	}
	res, err := m.Apply(pc, changes, opts)
	if err != nil {
		return Map{}, err
	}
	return res.Map, nil
}
