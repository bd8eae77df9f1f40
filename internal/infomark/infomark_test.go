package infomark

import (
	"testing"

	"github.com/pixil98/go-mudmap/internal/coordinate"
	"github.com/pixil98/go-mudmap/internal/roomid"
	"github.com/pixil98/go-testutil"
)

func TestDb_AddUpdateRemove(t *testing.T) {
	db := NewDb()
	a := db.Add(Fields{Text: "a"})
	b := db.Add(Fields{Text: "b"})

	testutil.AssertEqual(t, "ids", db.Ids(), []roomid.InfomarkId{a, b})

	snapshot := db.Clone()
	if err := db.Update(a, Fields{Text: "changed"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := db.Remove(b); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, _ := db.Get(a)
	testutil.AssertEqual(t, "updated", got.Text, "changed")
	testutil.AssertEqual(t, "len", db.Len(), 1)
	testutil.AssertEqual(t, "snapshot len", snapshot.Len(), 2)
	testutil.AssertEqual(t, "equal", db.Equal(snapshot), false)

	testutil.AssertErrorContains(t, db.Remove(b), "invalid infomark id")
	testutil.AssertErrorContains(t, db.Update(b, Fields{}), "invalid infomark id")
}

func TestFields_Offset(t *testing.T) {
	f := Fields{Position1: coordinate.New(50, 50, 0), Position2: coordinate.New(150, 50, 0)}
	got := f.Offset(coordinate.New(1, -2, 3))

	testutil.AssertEqual(t, "pos1", got.Position1, coordinate.New(150, -150, 3))
	testutil.AssertEqual(t, "pos2", got.Position2, coordinate.New(250, -150, 3))
}
