// Package room holds the per-room and per-exit data model of the map.
package room

import (
	"fmt"

	"github.com/pixil98/go-mudmap/internal/coordinate"
)

type ExitDirection uint8

const (
	North ExitDirection = iota
	South
	East
	West
	Up
	Down
	Unknown
)

// NumExits is the number of exit slots in every room.
const NumExits = 7

// AllExits lists every exit slot in storage order.
var AllExits = [NumExits]ExitDirection{North, South, East, West, Up, Down, Unknown}

// NESWUD lists the six real movement directions.
var NESWUD = [6]ExitDirection{North, South, East, West, Up, Down}

var directionNames = [NumExits]string{"north", "south", "east", "west", "up", "down", "unknown"}

func (d ExitDirection) String() string {
	if int(d) < NumExits {
		return directionNames[d]
	}
	return fmt.Sprintf("direction(%d)", uint8(d))
}

// Char returns the one letter abbreviation used in exit listings.
func (d ExitDirection) Char() string {
	if int(d) < NumExits {
		return directionNames[d][:1]
	}
	return "?"
}

func (d ExitDirection) IsValid() bool {
	return int(d) < NumExits
}

// Opposite returns the reverse direction. Unknown is its own opposite.
func (d ExitDirection) Opposite() ExitDirection {
	switch d {
	case North:
		return South
	case South:
		return North
	case East:
		return West
	case West:
		return East
	case Up:
		return Down
	case Down:
		return Up
	default:
		return Unknown
	}
}

// Offset is the coordinate step taken by moving in d. Unknown does not move.
func (d ExitDirection) Offset() coordinate.Coordinate {
	switch d {
	case North:
		return coordinate.New(0, 1, 0)
	case South:
		return coordinate.New(0, -1, 0)
	case East:
		return coordinate.New(1, 0, 0)
	case West:
		return coordinate.New(-1, 0, 0)
	case Up:
		return coordinate.New(0, 0, 1)
	case Down:
		return coordinate.New(0, 0, -1)
	default:
		return coordinate.Coordinate{}
	}
}

// ParseDirection accepts full names and single letter abbreviations.
func ParseDirection(s string) (ExitDirection, error) {
	for i, name := range directionNames {
		if s == name || s == name[:1] {
			return ExitDirection(i), nil
		}
	}
	return Unknown, fmt.Errorf("unknown direction %q", s)
}

func (d ExitDirection) MarshalText() ([]byte, error) {
	if !d.IsValid() {
		return nil, fmt.Errorf("invalid direction %d", uint8(d))
	}
	return []byte(d.String()), nil
}

func (d *ExitDirection) UnmarshalText(b []byte) error {
	v, err := ParseDirection(string(b))
	if err != nil {
		return err
	}
	*d = v
	return nil
}
