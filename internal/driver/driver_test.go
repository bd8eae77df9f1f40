package driver

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pixil98/go-testutil"
)

type countingManager struct {
	ticks atomic.Int32
	err   error
}

func (m *countingManager) Tick(context.Context) error {
	m.ticks.Add(1)
	return m.err
}

func TestDriver_Tick(t *testing.T) {
	tests := map[string]struct {
		errs     []error
		expTicks []int32
		expErr   string
	}{
		"all managers tick": {
			errs:     []error{nil, nil},
			expTicks: []int32{1, 1},
		},
		"stops at first error": {
			errs:     []error{errors.New("disk full"), nil},
			expTicks: []int32{1, 0},
			expErr:   "manager 0: disk full",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			var managers []Manager
			var counters []*countingManager
			for _, err := range tt.errs {
				c := &countingManager{err: err}
				counters = append(counters, c)
				managers = append(managers, c)
			}

			err := NewDriver(managers).Tick(context.Background())
			if tt.expErr != "" {
				testutil.AssertErrorContains(t, err, tt.expErr)
			} else if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			for i, c := range counters {
				testutil.AssertEqual(t, "ticks", c.ticks.Load(), tt.expTicks[i])
			}
		})
	}
}

func TestDriver_Start(t *testing.T) {
	m := &countingManager{}
	d := NewDriver([]Manager{m}, WithTickLength(5*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.Start(ctx) }()

	deadline := time.After(5 * time.Second)
	for m.ticks.Load() < 3 {
		select {
		case <-deadline:
			t.Fatal("driver did not tick")
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()

	if err := <-done; err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDriver_StartStopsOnError(t *testing.T) {
	m := &countingManager{err: errors.New("broken")}
	d := NewDriver([]Manager{m}, WithTickLength(time.Millisecond))

	err := d.Start(context.Background())
	testutil.AssertErrorContains(t, err, "broken")
}
