package coordinate

// iterator walks coordinates in growing shells around the origin,
// visiting each sign permutation of an offset before moving outward.
type iterator struct {
	c         Coordinate
	threshold int
	state     int
}

func newIterator() *iterator {
	return &iterator{threshold: 1, state: 7}
}

func (it *iterator) next() Coordinate {
	switch it.state {
	case 0:
		it.c.Y = -it.c.Y
		it.c.X = -it.c.X
		it.c.Z = -it.c.Z
	case 1:
		it.c.Z = -it.c.Z
	case 2:
		it.c.Z = -it.c.Z
		it.c.Y = -it.c.Y
	case 3, 6:
		it.c.Y = -it.c.Y
		it.c.X = -it.c.X
	case 4:
		it.c.Y = -it.c.Y
	case 5:
		it.c.Y = -it.c.Y
		it.c.Z = -it.c.Z
	case 7:
		it.c.X = -it.c.X
	case 8:
		if it.c.Z < it.threshold {
			it.c.Z++
		} else {
			it.c.Z = 0
			if it.c.Y < it.threshold {
				it.c.Y++
			} else {
				it.c.Y = 0
				if it.c.X >= it.threshold {
					it.threshold++
					it.c.X = 0
				} else {
					it.c.X++
				}
			}
		}
		it.state = -1
	}
	it.state++
	return it.c
}

// NearestFree returns the first coordinate around p accepted by available,
// starting with p itself. The walk direction depends on the parity of p so
// that neighbouring requests spread in different directions.
func NearestFree(p Coordinate, available func(Coordinate) bool) Coordinate {
	if available(p) {
		return p
	}
	sum := p.X + p.Y + p.Z
	forward := sum/2 == (sum+1)/2
	it := newIterator()
	for {
		var c Coordinate
		if forward {
			c = p.Add(it.next())
		} else {
			c = p.Sub(it.next())
		}
		if available(c) {
			return c
		}
	}
}
