package roomid

import (
	"testing"

	"github.com/pixil98/go-testutil"
)

func TestSet_Insert(t *testing.T) {
	tests := map[string]struct {
		input []RoomId
		exp   []RoomId
	}{
		"empty": {
			input: nil,
			exp:   nil,
		},
		"sorted on insert": {
			input: []RoomId{5, 1, 3},
			exp:   []RoomId{1, 3, 5},
		},
		"duplicates ignored": {
			input: []RoomId{2, 2, 1, 2},
			exp:   []RoomId{1, 2},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			s := NewSet(tt.input...)
			testutil.AssertEqual(t, "items", s.Items(), tt.exp)
			testutil.AssertEqual(t, "len", s.Len(), len(tt.exp))
		})
	}
}

func TestSet_Erase(t *testing.T) {
	s := NewSet[RoomId](1, 2, 3)
	s.Erase(2)
	s.Erase(7)

	testutil.AssertEqual(t, "items", s.Items(), []RoomId{1, 3})
	testutil.AssertEqual(t, "contains 2", s.Contains(2), false)
	testutil.AssertEqual(t, "first", s.First(), RoomId(1))
	testutil.AssertEqual(t, "last", s.Last(), RoomId(3))
}

func TestSet_CloneIsIndependent(t *testing.T) {
	a := NewSet[RoomId](1, 2)
	b := a.Clone()
	b.Insert(3)

	testutil.AssertEqual(t, "original len", a.Len(), 2)
	testutil.AssertEqual(t, "clone len", b.Len(), 3)
	testutil.AssertEqual(t, "equal", a.Equal(b), false)
	testutil.AssertEqual(t, "b has extra", b.ContainsElementNotIn(a), true)
	testutil.AssertEqual(t, "a has extra", a.ContainsElementNotIn(b), false)
}

func TestIds_IsValid(t *testing.T) {
	testutil.AssertEqual(t, "room", InvalidRoomId.IsValid(), false)
	testutil.AssertEqual(t, "room zero", RoomId(0).IsValid(), true)
	testutil.AssertEqual(t, "external", InvalidExternalRoomId.IsValid(), false)
	testutil.AssertEqual(t, "server zero", ServerRoomId(0).IsValid(), false)
	testutil.AssertEqual(t, "server string", ServerRoomId(0).String(), "undefined")
	testutil.AssertEqual(t, "server value", ServerRoomId(42).String(), "42")
}

func TestSet_ValueCopyIsIndependent(t *testing.T) {
	a := NewSet[RoomId](1, 2, 3, 4)
	b := a
	b.Erase(1)
	b.Insert(9)

	testutil.AssertEqual(t, "original", a.Items(), []RoomId{1, 2, 3, 4})
	testutil.AssertEqual(t, "copy", b.Items(), []RoomId{2, 3, 4, 9})
}

func TestSet_InsertAll(t *testing.T) {
	tests := map[string]struct {
		a   []RoomId
		b   []RoomId
		exp []RoomId
	}{
		"into empty": {
			b:   []RoomId{2, 1},
			exp: []RoomId{1, 2},
		},
		"from empty": {
			a:   []RoomId{1},
			exp: []RoomId{1},
		},
		"interleaved": {
			a:   []RoomId{1, 4, 7},
			b:   []RoomId{2, 4, 9},
			exp: []RoomId{1, 2, 4, 7, 9},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			a := NewSet(tt.a...)
			b := NewSet(tt.b...)
			a.InsertAll(b)
			testutil.AssertEqual(t, "items", a.Items(), tt.exp)
			testutil.AssertEqual(t, "source untouched", b.Items(), NewSet(tt.b...).Items())
		})
	}
}

func TestOwnedSet_ShareIsStable(t *testing.T) {
	o := Own(NewSet[RoomId](1, 2, 3))
	o.Insert(0)

	view := o.Share()
	o.Erase(2)
	o.Insert(5)

	testutil.AssertEqual(t, "view", view.Items(), []RoomId{0, 1, 2, 3})
	testutil.AssertEqual(t, "owner", o.Share().Items(), []RoomId{0, 1, 3, 5})
	last, ok := o.Last()
	testutil.AssertEqual(t, "has last", ok, true)
	testutil.AssertEqual(t, "last", last, RoomId(5))
}

func TestOwnedSet_CloneIsIndependent(t *testing.T) {
	a := Own(NewSet[RoomId](1, 2))
	b := a.Clone()
	b.Insert(3)
	a.Erase(1)

	testutil.AssertEqual(t, "a", a.Share().Items(), []RoomId{2})
	testutil.AssertEqual(t, "b", b.Share().Items(), []RoomId{1, 2, 3})
	testutil.AssertEqual(t, "equal", a.Equal(&b), false)
}

func TestOwnedSet_Empty(t *testing.T) {
	var o OwnedSet[RoomId]
	_, ok := o.Last()
	testutil.AssertEqual(t, "has last", ok, false)
	o.Erase(4)
	testutil.AssertEqual(t, "len", o.Len(), 0)
}

func BenchmarkSet_InsertAscending(b *testing.B) {
	for b.Loop() {
		var s Set[RoomId]
		for i := range RoomId(30000) {
			s.Insert(i)
		}
	}
}

func BenchmarkOwnedSet_InsertAscending(b *testing.B) {
	for b.Loop() {
		var o OwnedSet[RoomId]
		for i := range RoomId(30000) {
			o.Insert(i)
		}
	}
}

func BenchmarkOwnedSet_EraseDescending(b *testing.B) {
	ids := make([]RoomId, 30000)
	for i := range ids {
		ids[i] = RoomId(i)
	}
	for b.Loop() {
		o := Own(SetFromSlice(ids))
		for i := len(ids) - 1; i >= 0; i-- {
			o.Erase(ids[i])
		}
	}
}
