// Package parallel runs read-only fan-out work over a slice.
package parallel

import (
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/pixil98/go-mudmap/internal/progress"
)

type config struct {
	workers int
}

type Opt func(*config)

// WithWorkers overrides the number of workers. Values below one mean one.
func WithWorkers(n int) Opt {
	return func(c *config) {
		c.workers = max(1, n)
	}
}

// Map splits items into contiguous chunks, one per worker, and calls fn for
// each item with that worker's local accumulator. The accumulators are
// returned in worker order regardless of completion order, so merging them
// in sequence is deterministic.
//
// Workers check pc for cancellation before each item; a cancelled run
// returns progress.ErrCancelled. When several chunks fail, the error of the
// earliest chunk is returned, which is the error a sequential scan would
// have hit first.
func Map[T, L any](pc *progress.Counter, items []T, newLocal func() L, fn func(*L, T) error, opts ...Opt) ([]L, error) {
	cfg := &config{workers: runtime.GOMAXPROCS(0)}
	for _, opt := range opts {
		opt(cfg)
	}

	n := max(1, min(cfg.workers, len(items)))
	chunk := (len(items) + n - 1) / n

	locals := make([]L, n)
	errs := make([]error, n)
	var g errgroup.Group
	for w := range n {
		lo := min(w*chunk, len(items))
		hi := min(lo+chunk, len(items))
		locals[w] = newLocal()
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					errs[w] = fmt.Errorf("worker %d: %v", w, r)
				}
			}()
			for _, item := range items[lo:hi] {
				if err := pc.CheckCancel(); err != nil {
					errs[w] = err
					return nil
				}
				if err := fn(&locals[w], item); err != nil {
					errs[w] = err
					return nil
				}
			}
			return nil
		})
	}

	_ = g.Wait()
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	if err := pc.CheckCancel(); err != nil {
		return nil, err
	}
	return locals, nil
}

// ForEach is Map followed by merging each local accumulator, in worker
// order, on the calling goroutine.
func ForEach[T, L any](pc *progress.Counter, items []T, newLocal func() L, fn func(*L, T) error, merge func(*L) error, opts ...Opt) error {
	locals, err := Map(pc, items, newLocal, fn, opts...)
	if err != nil {
		return err
	}
	for i := range locals {
		if err := merge(&locals[i]); err != nil {
			return err
		}
	}
	return nil
}
