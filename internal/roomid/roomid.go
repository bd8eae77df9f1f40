// Package roomid defines the strongly typed identifiers used by the map engine.
package roomid

import (
	"fmt"
	"math"
)

// RoomId is a dense internal index into room storage. It is not stable
// across rebuilds.
type RoomId uint32

// ExternalRoomId is the stable identity of a room across sessions.
type ExternalRoomId uint32

// ServerRoomId is the id assigned by the game server.
type ServerRoomId uint32

// InfomarkId identifies an infomark.
type InfomarkId uint32

// LocalSpaceId identifies a local space, a group of rooms drawn through a
// portal on the main map.
type LocalSpaceId uint32

const (
	InvalidRoomId         RoomId         = math.MaxUint32
	InvalidExternalRoomId ExternalRoomId = math.MaxUint32
	InvalidServerRoomId   ServerRoomId   = 0
	InvalidInfomarkId     InfomarkId     = math.MaxUint32
	InvalidLocalSpaceId   LocalSpaceId   = math.MaxUint32
)

func (id RoomId) IsValid() bool         { return id != InvalidRoomId }
func (id ExternalRoomId) IsValid() bool { return id != InvalidExternalRoomId }
func (id ServerRoomId) IsValid() bool   { return id != InvalidServerRoomId }
func (id InfomarkId) IsValid() bool     { return id != InvalidInfomarkId }
func (id LocalSpaceId) IsValid() bool   { return id != InvalidLocalSpaceId }

func (id RoomId) String() string {
	if !id.IsValid() {
		return "invalid"
	}
	return fmt.Sprintf("%d", uint32(id))
}

func (id ExternalRoomId) String() string {
	if !id.IsValid() {
		return "invalid"
	}
	return fmt.Sprintf("%d", uint32(id))
}

func (id ServerRoomId) String() string {
	if !id.IsValid() {
		return "undefined"
	}
	return fmt.Sprintf("%d", uint32(id))
}

func (id LocalSpaceId) String() string {
	if !id.IsValid() {
		return "invalid"
	}
	return fmt.Sprintf("%d", uint32(id))
}

// Next returns the id following this one.
func (id ExternalRoomId) Next() ExternalRoomId {
	return id + 1
}
