package room

import (
	"cmp"

	"github.com/pixil98/go-mudmap/internal/coordinate"
	"github.com/pixil98/go-mudmap/internal/roomid"
)

// Room is the complete state of one room. T is the id space of the room and
// of its exit connections.
type Room[T cmp.Ordered] struct {
	Id       T                     `json:"id"`
	ServerId roomid.ServerRoomId   `json:"server_id,omitempty"`
	Position coordinate.Coordinate `json:"position"`
	Status   Status                `json:"status"`
	Fields   RoomFields            `json:"fields"`
	Exits    [NumExits]Exit[T]     `json:"exits"`

	// ScaleFactor is the drawing scale. Zero stands for the default of 1.
	ScaleFactor float32 `json:"scale_factor,omitempty"`
}

// DefaultScaleFactor is the scale of a room that never had one set.
const DefaultScaleFactor float32 = 1

func (r *Room[T]) Scale() float32 {
	if r.ScaleFactor == 0 {
		return DefaultScaleFactor
	}
	return r.ScaleFactor
}

type RawRoom = Room[roomid.RoomId]
type ExternalRawRoom = Room[roomid.ExternalRoomId]

func (r *Room[T]) Exit(dir ExitDirection) *Exit[T] {
	return &r.Exits[dir]
}

func (r *Room[T]) IsPermanent() bool {
	return r.Status == StatusPermanent
}

func (r *Room[T]) Clone() Room[T] {
	out := *r
	for i := range r.Exits {
		out.Exits[i] = r.Exits[i].Clone()
	}
	return out
}

func (r *Room[T]) Equal(o *Room[T]) bool {
	if r.Id != o.Id || r.ServerId != o.ServerId || r.Position != o.Position ||
		r.Status != o.Status || r.Fields != o.Fields || r.Scale() != o.Scale() {
		return false
	}
	for i := range r.Exits {
		if !r.Exits[i].Equal(&o.Exits[i]) {
			return false
		}
	}
	return true
}

func (r *Room[T]) SatisfiesInvariants() bool {
	for i := range r.Exits {
		if !r.Exits[i].SatisfiesInvariants() {
			return false
		}
	}
	return true
}

func (r *Room[T]) EnforceInvariants() {
	for i := range r.Exits {
		r.Exits[i].EnforceInvariants()
	}
}

// HasInvalidEnums reports whether any enum or flag field is out of range.
func (r *Room[T]) HasInvalidEnums() bool {
	f := &r.Fields
	return !f.AlignType.IsValid() || !f.LightType.IsValid() || !f.PortableType.IsValid() ||
		!f.RidableType.IsValid() || !f.SundeathType.IsValid() || !f.TerrainType.IsValid()
}

func (r *Room[T]) HasInvalidFlags() bool {
	f := &r.Fields
	if !f.MobFlags.IsValid() || !f.LoadFlags.IsValid() {
		return true
	}
	for i := range r.Exits {
		e := &r.Exits[i].Fields
		if !e.ExitFlags.IsValid() || !e.DoorFlags.IsValid() {
			return true
		}
	}
	return false
}

// SanitizeEnums replaces out of range enum values and masks flag sets.
func (r *Room[T]) SanitizeEnums() {
	f := &r.Fields
	f.AlignType = f.AlignType.Sanitize()
	f.LightType = f.LightType.Sanitize()
	f.PortableType = f.PortableType.Sanitize()
	f.RidableType = f.RidableType.Sanitize()
	f.SundeathType = f.SundeathType.Sanitize()
	f.TerrainType = f.TerrainType.Sanitize()
	f.MobFlags = f.MobFlags.Sanitize()
	f.LoadFlags = f.LoadFlags.Sanitize()
	for i := range r.Exits {
		e := &r.Exits[i].Fields
		e.ExitFlags = e.ExitFlags.Sanitize()
		e.DoorFlags = e.DoorFlags.Sanitize()
	}
}

// Convert maps a room between id spaces. Ids for which conv reports false are
// dropped from the connection sets.
func Convert[From, To cmp.Ordered](r *Room[From], conv func(From) (To, bool)) Room[To] {
	var out Room[To]
	if id, ok := conv(r.Id); ok {
		out.Id = id
	}
	out.ServerId = r.ServerId
	out.Position = r.Position
	out.Status = r.Status
	out.Fields = r.Fields
	out.ScaleFactor = r.ScaleFactor
	for i := range r.Exits {
		src := &r.Exits[i]
		dst := &out.Exits[i]
		dst.Fields = src.Fields
		for id := range src.Outgoing.All {
			if to, ok := conv(id); ok {
				dst.Outgoing.Insert(to)
			}
		}
		for id := range src.Incoming.All {
			if to, ok := conv(id); ok {
				dst.Incoming.Insert(to)
			}
		}
	}
	return out
}
