package storage

import (
	"strings"
	"testing"

	"github.com/pixil98/go-testutil"
)

// memStorer implements Storer[*AreaSpec] without touching disk.
type memStorer struct {
	records map[string]*AreaSpec
}

func (m *memStorer) Save(id string, o *AreaSpec) error {
	m.records[id] = o
	return nil
}

func (m *memStorer) Get(id string) *AreaSpec {
	return m.records[id]
}

func (m *memStorer) GetAll() map[string]*AreaSpec {
	return m.records
}

func newTestSelecter() *SelectableStorer[*AreaSpec] {
	return NewSelectableStorer[*AreaSpec](&memStorer{records: map[string]*AreaSpec{
		"gamma": testArea("Gamma", 1),
		"alpha": testArea("Alpha", 1),
		"beta":  testArea("Beta", 1),
	}})
}

func TestNewSelectableStorer(t *testing.T) {
	tests := map[string]struct {
		records  map[string]*AreaSpec
		expLen   int
		expMenu  int
		expFirst string
	}{
		"empty store": {
			records: map[string]*AreaSpec{},
		},
		"single item": {
			records:  map[string]*AreaSpec{"town": testArea("Town", 1)},
			expLen:   1,
			expMenu:  1,
			expFirst: " 1. Town",
		},
		"sorted by selector": {
			records: map[string]*AreaSpec{
				"z": testArea("Alpha", 1),
				"a": testArea("Beta", 1),
			},
			expLen:   2,
			expMenu:  2,
			expFirst: " 1. Alpha",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			ss := NewSelectableStorer[*AreaSpec](&memStorer{records: tt.records})

			testutil.AssertEqual(t, "len", ss.Len(), tt.expLen)
			testutil.AssertEqual(t, "menu rows", len(ss.Menu()), tt.expMenu)
			if tt.expMenu > 0 {
				testutil.AssertEqual(t, "first row", ss.Menu()[0], tt.expFirst)
			}
		})
	}
}

func TestSelectableStorer_Select(t *testing.T) {
	ss := newTestSelecter()

	tests := map[string]struct {
		index int
		exp   string
	}{
		"first":          {index: 1, exp: "alpha"},
		"second":         {index: 2, exp: "beta"},
		"third":          {index: 3, exp: "gamma"},
		"zero":           {index: 0, exp: ""},
		"negative index": {index: -1, exp: ""},
		"index too large": {
			index: 4,
			exp:   "",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			testutil.AssertEqual(t, "result", ss.Select(tt.index), tt.exp)
		})
	}
}

func TestSelectableStorer_Lookup(t *testing.T) {
	ss := newTestSelecter()

	tests := map[string]struct {
		input string
		expId string
		expOk bool
	}{
		"by number":          {input: "2", expId: "beta", expOk: true},
		"by id":              {input: "gamma", expId: "gamma", expOk: true},
		"padded":             {input: " 1 ", expId: "alpha", expOk: true},
		"number out of range": {input: "9"},
		"unknown id":         {input: "delta"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			id, ok := ss.Lookup(tt.input)
			testutil.AssertEqual(t, "id", id, tt.expId)
			testutil.AssertEqual(t, "ok", ok, tt.expOk)
		})
	}
}

func TestSelectableStorer_MenuColumns(t *testing.T) {
	records := map[string]*AreaSpec{}
	for _, n := range []string{"a", "b", "c", "d", "e", "f", "g"} {
		records[n] = testArea(strings.ToUpper(n), 1)
	}
	ss := NewSelectableStorer[*AreaSpec](&memStorer{records: records})

	menu := ss.Menu()
	testutil.AssertEqual(t, "rows", len(menu), defaultSelectorRowCount)
	if !strings.HasPrefix(menu[0], " 1. A") || !strings.Contains(menu[0], " 6. F") {
		t.Errorf("unexpected first row %q", menu[0])
	}
}

func TestSelectableStorer_Refresh(t *testing.T) {
	st := &memStorer{records: map[string]*AreaSpec{"a": testArea("A", 1)}}
	ss := NewSelectableStorer[*AreaSpec](st)
	testutil.AssertEqual(t, "before", ss.Len(), 1)

	st.records["b"] = testArea("B", 1)
	ss.Refresh()
	testutil.AssertEqual(t, "after", ss.Len(), 2)
	testutil.AssertEqual(t, "second", ss.Select(2), "b")
}
