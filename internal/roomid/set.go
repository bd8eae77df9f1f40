package roomid

import (
	"cmp"
	"encoding/json"
	"slices"
)

// Set is a small sorted set of ids. The zero value is an empty set.
// Mutations never write into a backing array shared with a copy, so
// copying a Set by value yields an independent snapshot.
type Set[T cmp.Ordered] struct {
	items []T
}

type RoomIdSet = Set[RoomId]
type ExternalRoomIdSet = Set[ExternalRoomId]

// NewSet returns a set containing ids.
func NewSet[T cmp.Ordered](ids ...T) Set[T] {
	if len(ids) == 0 {
		return Set[T]{}
	}
	return SetFromSlice(ids)
}

// SetFromSlice builds a set from ids in any order.
func SetFromSlice[T cmp.Ordered](ids []T) Set[T] {
	items := slices.Clone(ids)
	slices.Sort(items)
	return Set[T]{items: slices.Compact(items)}
}

func (s *Set[T]) Insert(id T) {
	i, found := slices.BinarySearch(s.items, id)
	if found {
		return
	}
	s.items = slices.Insert(slices.Clip(s.items), i, id)
}

func (s *Set[T]) Erase(id T) {
	i, found := slices.BinarySearch(s.items, id)
	if !found {
		return
	}
	s.items = append(slices.Clip(s.items[:i]), s.items[i+1:]...)
}

func (s Set[T]) Contains(id T) bool {
	_, found := slices.BinarySearch(s.items, id)
	return found
}

func (s Set[T]) Len() int      { return len(s.items) }
func (s Set[T]) Empty() bool   { return len(s.items) == 0 }
func (s *Set[T]) Clear()       { s.items = nil }
func (s Set[T]) Items() []T    { return slices.Clone(s.items) }
func (s Set[T]) Clone() Set[T] { return Set[T]{items: slices.Clone(s.items)} }

// First returns the smallest id. It panics on an empty set.
func (s Set[T]) First() T { return s.items[0] }

// Last returns the largest id. It panics on an empty set.
func (s Set[T]) Last() T { return s.items[len(s.items)-1] }

// All iterates the ids in ascending order.
func (s Set[T]) All(yield func(T) bool) {
	for _, id := range s.items {
		if !yield(id) {
			return
		}
	}
}

func (s Set[T]) Equal(o Set[T]) bool {
	return slices.Equal(s.items, o.items)
}

// ContainsElementNotIn reports whether s has any id missing from o.
func (s Set[T]) ContainsElementNotIn(o Set[T]) bool {
	for _, id := range s.items {
		if !o.Contains(id) {
			return true
		}
	}
	return false
}

// InsertAll adds every id from o in a single merge.
func (s *Set[T]) InsertAll(o Set[T]) {
	if len(o.items) == 0 {
		return
	}
	if len(s.items) == 0 {
		s.items = o.items
		return
	}
	out := make([]T, 0, len(s.items)+len(o.items))
	i, j := 0, 0
	for i < len(s.items) && j < len(o.items) {
		switch a, b := s.items[i], o.items[j]; {
		case a < b:
			out = append(out, a)
			i++
		case b < a:
			out = append(out, b)
			j++
		default:
			out = append(out, a)
			i++
			j++
		}
	}
	out = append(out, s.items[i:]...)
	s.items = append(out, o.items[j:]...)
}

func (s Set[T]) MarshalJSON() ([]byte, error) {
	if s.items == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(s.items)
}

func (s *Set[T]) UnmarshalJSON(b []byte) error {
	var items []T
	if err := json.Unmarshal(b, &items); err != nil {
		return err
	}
	*s = NewSet(items...)
	return nil
}
