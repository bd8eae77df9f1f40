package coordinate

type Bounds struct {
	Min Coordinate
	Max Coordinate
}

// NewBounds accepts any two corners.
func NewBounds(a, b Coordinate) Bounds {
	return Bounds{Min: Min(a, b), Max: Max(a, b)}
}

func (b Bounds) Contains(c Coordinate) bool {
	return b.Min.X <= c.X && c.X <= b.Max.X &&
		b.Min.Y <= c.Y && c.Y <= b.Max.Y &&
		b.Min.Z <= c.Z && c.Z <= b.Max.Z
}

func (b *Bounds) Insert(c Coordinate) {
	b.Min = Min(b.Min, c)
	b.Max = Max(b.Max, c)
}

// Center returns the integer midpoint of the bounds.
func (b Bounds) Center() Coordinate {
	return b.Min.Add(b.Max).div(2)
}

func (c Coordinate) div(d int) Coordinate {
	return Coordinate{X: c.X / d, Y: c.Y / d, Z: c.Z / d}
}
