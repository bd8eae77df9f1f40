package storage

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

const (
	defaultSelectorRowLength = 80
	defaultSelectorRowCount  = 5
)

type validatingSelectable interface {
	ValidatingSpec
	Selector() string
}

// SelectableStorer presents the assets of a store as a numbered menu, laid
// out in columns that fill top to bottom.
type SelectableStorer[T validatingSelectable] struct {
	Storer[T]

	options []option[T]
	menu    []string
}

type option[T validatingSelectable] struct {
	id  string
	val T
}

func NewSelectableStorer[T validatingSelectable](st Storer[T]) *SelectableStorer[T] {
	s := &SelectableStorer[T]{Storer: st}
	s.Refresh()
	return s
}

// Refresh rebuilds the menu from the current contents of the store.
func (s *SelectableStorer[T]) Refresh() {
	s.options = s.options[:0]
	for id, val := range s.GetAll() {
		s.options = append(s.options, option[T]{id: id, val: val})
	}
	slices.SortFunc(s.options, func(a, b option[T]) int {
		if c := strings.Compare(a.val.Selector(), b.val.Selector()); c != 0 {
			return c
		}
		return strings.Compare(a.id, b.id)
	})
	s.build()
}

func (s *SelectableStorer[T]) build() {
	s.menu = nil
	if len(s.options) == 0 {
		return
	}

	// Each cell is "nn. <val>  ".
	colWidth := 1
	for _, v := range s.options {
		if l := len(v.val.Selector()) + 6; l > colWidth {
			colWidth = l
		}
	}

	numCols := max(defaultSelectorRowLength/colWidth, 1)
	numRows := max((len(s.options)+numCols-1)/numCols, defaultSelectorRowCount)

	rows := make([]string, numRows)
	for i, v := range s.options {
		rows[i%numRows] += fmt.Sprintf("%2d. %-*s  ", i+1, colWidth-6, v.val.Selector())
	}

	for _, r := range rows {
		if r = strings.TrimRight(r, " "); r != "" {
			s.menu = append(s.menu, r)
		}
	}
}

// Menu returns the rendered menu rows.
func (s *SelectableStorer[T]) Menu() []string {
	return s.menu
}

func (s *SelectableStorer[T]) Len() int {
	return len(s.options)
}

// Select returns the id of the 1-based menu entry i, or "" when out of range.
func (s *SelectableStorer[T]) Select(i int) string {
	if i < 1 || i > len(s.options) {
		return ""
	}
	return s.options[i-1].id
}

// Lookup accepts either a menu number or an asset id.
func (s *SelectableStorer[T]) Lookup(input string) (string, bool) {
	input = strings.TrimSpace(input)
	if i, err := strconv.Atoi(input); err == nil {
		id := s.Select(i)
		return id, id != ""
	}
	for _, o := range s.options {
		if o.id == input {
			return o.id, true
		}
	}
	return "", false
}
