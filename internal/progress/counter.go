// Package progress tracks the progress of long map operations and carries
// their cooperative cancellation flag.
package progress

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

// ErrCancelled is returned by operations that observed a cancellation request.
var ErrCancelled = errors.New("operation cancelled")

type Status struct {
	Task    string
	Steps   uint64
	Total   uint64
	Percent int
}

// Counter is safe for concurrent use. A nil *Counter is valid and never
// reports cancellation.
type Counter struct {
	mu    sync.Mutex
	task  string
	steps uint64
	total uint64

	cancelled atomic.Bool
	stop      func() bool
}

func New() *Counter {
	return &Counter{}
}

// NewWithContext returns a counter that is cancelled when ctx is done.
// Close it when the operation ends so ctx no longer holds on to it.
func NewWithContext(ctx context.Context) *Counter {
	c := New()
	c.stop = context.AfterFunc(ctx, c.RequestCancel)
	return c
}

// Close detaches the counter from its context. Later cancellation of the
// context no longer reaches it.
func (c *Counter) Close() {
	if c == nil || c.stop == nil {
		return
	}
	c.stop()
}

// SetNewTask resets the step count for a new named phase.
func (c *Counter) SetNewTask(task string, total uint64) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.task = task
	c.steps = 0
	c.total = total
}

func (c *Counter) IncreaseTotalStepsBy(n uint64) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.total += n
}

// Step advances the counter by one and reports a pending cancellation.
func (c *Counter) Step() error {
	return c.StepN(1)
}

func (c *Counter) StepN(n uint64) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	c.steps += n
	c.mu.Unlock()
	return c.CheckCancel()
}

func (c *Counter) RequestCancel() {
	if c == nil {
		return
	}
	c.cancelled.Store(true)
}

func (c *Counter) IsCancelRequested() bool {
	return c != nil && c.cancelled.Load()
}

// CheckCancel returns ErrCancelled once cancellation was requested.
func (c *Counter) CheckCancel() error {
	if c.IsCancelRequested() {
		return ErrCancelled
	}
	return nil
}

func (c *Counter) Status() Status {
	if c == nil {
		return Status{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	s := Status{Task: c.task, Steps: c.steps, Total: c.total}
	if c.total > 0 {
		s.Percent = int(min(100, c.steps*100/c.total))
	}
	return s
}
