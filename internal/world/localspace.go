package world

import (
	"maps"
	"slices"

	"github.com/pixil98/go-mudmap/internal/coordinate"
	"github.com/pixil98/go-mudmap/internal/roomid"
)

// Portal is the rectangle on the main map a local space is drawn into.
type Portal struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
	Z float32 `json:"z"`
	W float32 `json:"w"`
	H float32 `json:"h"`
}

// LocalSpace is a named group of rooms drawn scaled down inside a portal.
// A room belongs to at most one local space.
type LocalSpace struct {
	Id        roomid.LocalSpaceId
	Name      string
	Rooms     roomid.RoomIdSet
	Portal    Portal
	HasPortal bool
}

func (s *LocalSpace) equal(o *LocalSpace) bool {
	return s.Id == o.Id && s.Name == o.Name && s.Rooms.Equal(o.Rooms) &&
		s.Portal == o.Portal && s.HasPortal == o.HasPortal
}

// LocalSpaceRenderData places the rooms of a local space inside its portal.
type LocalSpaceRenderData struct {
	PortalScale float32
	PortalX     float32
	PortalY     float32
	PortalZ     float32
	LocalCx     float32
	LocalCy     float32
	LocalCz     float32
}

// LocalSpaceMap holds the local spaces in creation order and the space of
// every member room.
type LocalSpaceMap struct {
	spaces []LocalSpace
	byRoom map[roomid.RoomId]roomid.LocalSpaceId
	next   roomid.LocalSpaceId
}

func (m *LocalSpaceMap) Clone() LocalSpaceMap {
	return LocalSpaceMap{
		spaces: slices.Clone(m.spaces),
		byRoom: maps.Clone(m.byRoom),
		next:   m.next,
	}
}

func (m *LocalSpaceMap) Equal(o *LocalSpaceMap) bool {
	return m.next == o.next &&
		slices.EqualFunc(m.spaces, o.spaces, func(a, b LocalSpace) bool { return a.equal(&b) }) &&
		maps.Equal(m.byRoom, o.byRoom)
}

func (m *LocalSpaceMap) Len() int { return len(m.spaces) }

func (m *LocalSpaceMap) index(id roomid.LocalSpaceId) int {
	return slices.IndexFunc(m.spaces, func(s LocalSpace) bool { return s.Id == id })
}

// Find looks a space up by name.
func (m *LocalSpaceMap) Find(name string) (roomid.LocalSpaceId, bool) {
	i := slices.IndexFunc(m.spaces, func(s LocalSpace) bool { return s.Name == name })
	if i < 0 {
		return roomid.InvalidLocalSpaceId, false
	}
	return m.spaces[i].Id, true
}

// Get returns a copy of the space.
func (m *LocalSpaceMap) Get(id roomid.LocalSpaceId) (LocalSpace, bool) {
	i := m.index(id)
	if i < 0 {
		return LocalSpace{}, false
	}
	return m.spaces[i], true
}

// RoomSpace returns the space room belongs to.
func (m *LocalSpaceMap) RoomSpace(room roomid.RoomId) (roomid.LocalSpaceId, bool) {
	id, ok := m.byRoom[room]
	return id, ok
}

// All iterates the spaces in creation order.
func (m *LocalSpaceMap) All(yield func(LocalSpace) bool) {
	for _, s := range m.spaces {
		if !yield(s) {
			return
		}
	}
}

// Create returns the id of the space called name, adding it if needed.
func (m *LocalSpaceMap) Create(name string) roomid.LocalSpaceId {
	if id, ok := m.Find(name); ok {
		return id
	}
	id := m.next
	m.next++
	m.spaces = append(m.spaces, LocalSpace{Id: id, Name: name})
	return id
}

func (m *LocalSpaceMap) SetPortal(id roomid.LocalSpaceId, p Portal) bool {
	i := m.index(id)
	if i < 0 {
		return false
	}
	m.spaces[i].Portal = p
	m.spaces[i].HasPortal = true
	return true
}

// AddRoom moves room into space id.
func (m *LocalSpaceMap) AddRoom(id roomid.LocalSpaceId, room roomid.RoomId) bool {
	i := m.index(id)
	if i < 0 {
		return false
	}
	m.RemoveRoom(room)
	m.spaces[i].Rooms.Insert(room)
	if m.byRoom == nil {
		m.byRoom = map[roomid.RoomId]roomid.LocalSpaceId{}
	}
	m.byRoom[room] = id
	return true
}

// RemoveRoom takes room out of its space, if any. The space itself stays.
func (m *LocalSpaceMap) RemoveRoom(room roomid.RoomId) {
	id, ok := m.byRoom[room]
	if !ok {
		return
	}
	delete(m.byRoom, room)
	if i := m.index(id); i >= 0 {
		m.spaces[i].Rooms.Erase(room)
	}
}

// localSpaceBounds is the box around the live rooms of a space.
func (w *World) localSpaceBounds(s *LocalSpace) (coordinate.Bounds, bool) {
	var b coordinate.Bounds
	found := false
	for id := range s.Rooms.All {
		pos, ok := w.Position(id)
		if !ok {
			continue
		}
		if !found {
			b = coordinate.NewBounds(pos, pos)
			found = true
			continue
		}
		b.Insert(pos)
	}
	return b, found
}

// portalScale fits the local bounds into the portal, keeping the aspect
// ratio when the portal has both a width and a height. Zero means the space
// cannot be drawn.
func portalScale(p Portal, b coordinate.Bounds) float32 {
	localW := float32(b.Max.X-b.Min.X) + 1
	localH := float32(b.Max.Y-b.Min.Y) + 1
	hasW, hasH := localW > 0, localH > 0
	switch {
	case hasW && hasH && p.W > 0 && p.H > 0:
		return min(p.W/localW, p.H/localH)
	case hasW && p.W > 0:
		return p.W / localW
	case hasH && p.H > 0:
		return p.H / localH
	}
	return 0
}

func (w *World) renderData(s *LocalSpace) (LocalSpaceRenderData, bool) {
	if !s.HasPortal {
		return LocalSpaceRenderData{}, false
	}
	b, ok := w.localSpaceBounds(s)
	if !ok {
		return LocalSpaceRenderData{}, false
	}
	scale := portalScale(s.Portal, b)
	if scale <= 0 {
		return LocalSpaceRenderData{}, false
	}
	return LocalSpaceRenderData{
		PortalScale: scale,
		PortalX:     s.Portal.X + 0.5,
		PortalY:     s.Portal.Y + 0.5,
		PortalZ:     s.Portal.Z,
		LocalCx:     float32(b.Min.X+b.Max.X+1) * 0.5,
		LocalCy:     float32(b.Min.Y+b.Max.Y+1) * 0.5,
		LocalCz:     float32(b.Min.Z+b.Max.Z) * 0.5,
	}, true
}

// LocalSpaces must not be modified; use the local space changes instead.
func (w *World) LocalSpaces() *LocalSpaceMap { return &w.localSpaces }

// LocalSpaceRenderData is only available for a space with a portal and at
// least one live room.
func (w *World) LocalSpaceRenderData(id roomid.LocalSpaceId) (LocalSpaceRenderData, bool) {
	s, ok := w.localSpaces.Get(id)
	if !ok {
		return LocalSpaceRenderData{}, false
	}
	return w.renderData(&s)
}

// LocalSpaceRenderDataList returns the drawable spaces in creation order.
func (w *World) LocalSpaceRenderDataList() []LocalSpaceRenderData {
	var out []LocalSpaceRenderData
	for _, s := range w.localSpaces.spaces {
		if d, ok := w.renderData(&s); ok {
			out = append(out, d)
		}
	}
	return out
}

func (w *World) LocalSpaceRenderDataForRoom(room roomid.RoomId) (LocalSpaceRenderData, bool) {
	id, ok := w.localSpaces.RoomSpace(room)
	if !ok {
		return LocalSpaceRenderData{}, false
	}
	return w.LocalSpaceRenderData(id)
}

func (w *World) createLocalSpace(name string) error {
	if name == "" {
		return NewInvalidMapOperation("Local space name is empty")
	}
	w.localSpaces.Create(name)
	return nil
}

func (w *World) setLocalSpacePortal(name string, p Portal) error {
	id, ok := w.localSpaces.Find(name)
	if !ok {
		return NewInvalidMapOperation("Unknown localspace name")
	}
	if !w.localSpaces.SetPortal(id, p) {
		return NewInvalidMapOperation("Unable to set localspace portal")
	}
	return nil
}

func (w *World) addRoomToLocalSpace(name string, room roomid.RoomId) error {
	if err := w.requireValidRoom(room); err != nil {
		return err
	}
	id, ok := w.localSpaces.Find(name)
	if !ok {
		return NewInvalidMapOperation("Unknown localspace name")
	}
	if !w.localSpaces.AddRoom(id, room) {
		return NewInvalidMapOperation("Unable to add room to localspace")
	}
	return nil
}

// checkLocalSpaces verifies that room membership and the per-room index
// agree and that only live rooms are members.
func (w *World) checkLocalSpaces() error {
	names := make(map[string]struct{}, len(w.localSpaces.spaces))
	members := 0
	for i := range w.localSpaces.spaces {
		s := &w.localSpaces.spaces[i]
		if !s.Id.IsValid() || s.Id >= w.localSpaces.next {
			return NewConsistencyError("local space %q has id %s beyond the next id", s.Name, s.Id)
		}
		if _, dup := names[s.Name]; dup {
			return NewConsistencyError("duplicate local space name %q", s.Name)
		}
		names[s.Name] = struct{}{}
		for id := range s.Rooms.All {
			if !w.HasRoom(id) {
				return NewConsistencyError("local space %q contains missing room %d", s.Name, uint32(id))
			}
			if got, ok := w.localSpaces.byRoom[id]; !ok || got != s.Id {
				return NewConsistencyError("room %d is not indexed under local space %q", uint32(id), s.Name)
			}
			members++
		}
	}
	if members != len(w.localSpaces.byRoom) {
		return NewConsistencyError("local space index has %d rooms but the spaces have %d", len(w.localSpaces.byRoom), members)
	}
	return nil
}
