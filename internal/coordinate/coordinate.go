// Package coordinate provides integer map positions and bounds.
package coordinate

import "fmt"

type Coordinate struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
	Z int `json:"z" yaml:"z"`
}

func New(x, y, z int) Coordinate {
	return Coordinate{X: x, Y: y, Z: z}
}

func (c Coordinate) Add(o Coordinate) Coordinate {
	return Coordinate{X: c.X + o.X, Y: c.Y + o.Y, Z: c.Z + o.Z}
}

func (c Coordinate) Sub(o Coordinate) Coordinate {
	return Coordinate{X: c.X - o.X, Y: c.Y - o.Y, Z: c.Z - o.Z}
}

func (c Coordinate) Scale(s int) Coordinate {
	return Coordinate{X: c.X * s, Y: c.Y * s, Z: c.Z * s}
}

// Mul multiplies each axis independently.
func (c Coordinate) Mul(o Coordinate) Coordinate {
	return Coordinate{X: c.X * o.X, Y: c.Y * o.Y, Z: c.Z * o.Z}
}

func (c Coordinate) IsNull() bool {
	return c.X == 0 && c.Y == 0 && c.Z == 0
}

// Distance returns the manhattan distance between two coordinates.
func (c Coordinate) Distance(o Coordinate) int {
	return abs(c.X-o.X) + abs(c.Y-o.Y) + abs(c.Z-o.Z)
}

// String renders the coordinate as Coordinate(x, y, z).
func (c Coordinate) String() string {
	return fmt.Sprintf("Coordinate(%d, %d, %d)", c.X, c.Y, c.Z)
}

// Plain renders the coordinate as x, y, z.
func (c Coordinate) Plain() string {
	return fmt.Sprintf("%d, %d, %d", c.X, c.Y, c.Z)
}

func Min(a, b Coordinate) Coordinate {
	return Coordinate{X: min(a.X, b.X), Y: min(a.Y, b.Y), Z: min(a.Z, b.Z)}
}

func Max(a, b Coordinate) Coordinate {
	return Coordinate{X: max(a.X, b.X), Y: max(a.Y, b.Y), Z: max(a.Z, b.Z)}
}

func abs(i int) int {
	if i < 0 {
		return -i
	}
	return i
}
