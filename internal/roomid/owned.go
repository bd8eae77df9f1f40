package roomid

import (
	"cmp"
	"slices"
)

// OwnedSet is a sorted set that writes into its backing array in place
// until Share hands the array out. The first write after sharing copies it.
// It is meant for large sets with a single writer, such as the set of all
// live rooms.
type OwnedSet[T cmp.Ordered] struct {
	set    Set[T]
	shared bool
}

// Own wraps s. The array of s may be referenced elsewhere, so the first
// write copies it.
func Own[T cmp.Ordered](s Set[T]) OwnedSet[T] {
	return OwnedSet[T]{set: s, shared: true}
}

func (o *OwnedSet[T]) unshare() {
	if o.shared {
		o.set.items = slices.Clone(o.set.items)
		o.shared = false
	}
}

func (o *OwnedSet[T]) Insert(id T) {
	i, found := slices.BinarySearch(o.set.items, id)
	if found {
		return
	}
	o.unshare()
	o.set.items = slices.Insert(o.set.items, i, id)
}

func (o *OwnedSet[T]) Erase(id T) {
	i, found := slices.BinarySearch(o.set.items, id)
	if !found {
		return
	}
	o.unshare()
	o.set.items = slices.Delete(o.set.items, i, i+1)
}

func (o *OwnedSet[T]) Contains(id T) bool { return o.set.Contains(id) }
func (o *OwnedSet[T]) Len() int           { return o.set.Len() }

// Last returns the largest id, or false for an empty set.
func (o *OwnedSet[T]) Last() (T, bool) {
	if o.set.Empty() {
		var zero T
		return zero, false
	}
	return o.set.Last(), true
}

// Share returns a Set that stays unchanged by later writes to o. Once o is
// shared, Share and Clone only read it, so concurrent readers are safe as
// long as nobody writes.
func (o *OwnedSet[T]) Share() Set[T] {
	o.markShared()
	return o.set
}

// Clone returns an independent OwnedSet. Both sides copy on their next write.
func (o *OwnedSet[T]) Clone() OwnedSet[T] {
	o.markShared()
	return OwnedSet[T]{set: o.set, shared: true}
}

func (o *OwnedSet[T]) markShared() {
	if !o.shared {
		o.shared = true
	}
}

func (o *OwnedSet[T]) Equal(p *OwnedSet[T]) bool { return o.set.Equal(p.set) }
