// Package diff implements a weighted longest-common-subsequence diff over
// token sequences.
package diff

// Side identifies which input a reported run of tokens belongs to.
type Side uint8

const (
	SideA Side = iota
	SideB
	SideCommon
)

func (s Side) String() string {
	switch s {
	case SideA:
		return "A"
	case SideB:
		return "B"
	default:
		return "Common"
	}
}

// Scorer returns the weight of matching a against b. Scores at or below zero
// mean the tokens do not match. A Scorer must be pure.
type Scorer[T any] func(a, b T) float32

// Reporter receives contiguous runs of tokens in output order.
type Reporter[T any] func(side Side, run []T)

// Equal scores every equal pair as 1.
func Equal[T comparable](a, b T) float32 {
	if a == b {
		return 1
	}
	return 0
}

// pair is a back-pointer cell; aidx and bidx are reverse indices.
type pair struct {
	next  *pair
	aidx  int
	bidx  int
	score float32
}

func (p *pair) value() float32 {
	if p == nil {
		return 0
	}
	return p.score
}

func (p *pair) isRepeat(apos, bpos int) bool {
	return p != nil && (p.aidx == apos || p.bidx == bpos)
}

// Compare diffs a against b and reports the runs to report. The shorter input
// is processed against the longer one internally, but sides are always
// reported relative to the caller's a and b.
func Compare[T comparable](a, b []T, score Scorer[T], report Reporter[T]) {
	d := &differ[T]{score: score, sink: report}
	if len(a) < len(b) {
		a, b = b, a
		d.swapped = true
	}
	d.compareUntrimmed(a, b)
}

type differ[T comparable] struct {
	score   Scorer[T]
	sink    Reporter[T]
	swapped bool
}

func (d *differ[T]) report(side Side, run []T) {
	if d.swapped {
		switch side {
		case SideA:
			side = SideB
		case SideB:
			side = SideA
		}
	}
	d.sink(side, run)
}

func (d *differ[T]) compareUntrimmed(inA, inB []T) {
	ra, rb := inA, inB

	start := 0
	for len(ra) > 0 && len(rb) > 0 && ra[0] == rb[0] {
		ra, rb = ra[1:], rb[1:]
		start++
	}
	end := 0
	for len(ra) > 0 && len(rb) > 0 && ra[len(ra)-1] == rb[len(rb)-1] {
		ra, rb = ra[:len(ra)-1], rb[:len(rb)-1]
		end++
	}

	if start != 0 {
		d.report(SideCommon, inA[:start])
	}

	d.compareTrimmed(ra, rb)

	if end != 0 {
		d.report(SideCommon, inA[start+len(ra):])
	}
}

type span struct {
	begin int
	end   int
}

type deferredCommon struct {
	a span
	b span
}

func (c *deferredCommon) canExtend(aidx, bidx int) bool {
	return c.a.end == aidx && c.b.end == bidx
}

func (d *differ[T]) compareTrimmed(ra, rb []T) {
	if len(rb) == 0 {
		if len(ra) != 0 {
			d.report(SideA, ra)
		}
		return
	}

	asize, bsize := len(ra), len(rb)

	scoreAb := func(apos, bpos int) float32 {
		a, b := ra[asize-apos-1], rb[bsize-bpos-1]
		if d.swapped {
			a, b = b, a
		}
		return d.score(a, b)
	}

	update := func(here **pair, apos, bpos int, def *pair) {
		*here = def
		s := scoreAb(apos, bpos)
		if s <= 0 {
			return
		}
		if !def.isRepeat(apos, bpos) {
			*here = &pair{next: def, aidx: apos, bidx: bpos, score: s + def.value()}
		} else if def.score < s {
			*here = &pair{aidx: apos, bidx: bpos, score: s}
		}
	}

	// One row of cells; each cell heads a chain back to the best path so far.
	v := make([]*pair, bsize)
	if s := scoreAb(0, 0); s > 0 {
		v[0] = &pair{score: s}
	}
	for bpos := 1; bpos < bsize; bpos++ {
		update(&v[bpos], 0, bpos, v[bpos-1])
	}
	for apos := 1; apos < asize; apos++ {
		update(&v[0], apos, 0, v[0])
		for bpos := 1; bpos < bsize; bpos++ {
			best := v[bpos]
			if v[bpos-1].value() > best.value() {
				best = v[bpos-1]
			}
			update(&v[bpos], apos, bpos, best)
		}
	}

	apos, bpos := 0, 0
	advance := func(side Side, pos *int, idx int) {
		if *pos >= idx {
			return
		}
		r := ra
		if side == SideB {
			r = rb
		}
		d.report(side, r[*pos:idx])
		*pos = idx
	}
	showAB := func(aidx, bidx int) {
		showA := func() {
			if aidx > 0 {
				advance(SideA, &apos, aidx)
			}
		}
		showB := func() {
			if bidx > 0 {
				advance(SideB, &bpos, bidx)
			}
		}
		if d.swapped {
			showB()
			showA()
		} else {
			showA()
			showB()
		}
	}

	var common *deferredCommon
	flush := func() {
		if common == nil {
			return
		}
		d.report(SideCommon, ra[common.a.begin:common.a.end])
		common = nil
	}

	for p := v[bsize-1]; p != nil; p = p.next {
		aidx := asize - p.aidx - 1
		bidx := bsize - p.bidx - 1

		if common != nil && !common.canExtend(aidx, bidx) {
			flush()
		}
		showAB(aidx, bidx)

		apos, bpos = aidx+1, bidx+1
		if common != nil {
			common.a.end++
			common.b.end++
			continue
		}
		common = &deferredCommon{a: span{aidx, aidx + 1}, b: span{bidx, bidx + 1}}
	}

	flush()
	showAB(asize, bsize)
}
