package parallel

import (
	"errors"
	"fmt"
	"testing"

	"github.com/pixil98/go-mudmap/internal/progress"
	"github.com/pixil98/go-testutil"
)

func TestForEach_MergesInOrder(t *testing.T) {
	tests := map[string]struct {
		items   int
		workers int
	}{
		"empty":               {items: 0, workers: 4},
		"fewer items":         {items: 3, workers: 8},
		"even split":          {items: 16, workers: 4},
		"uneven split":        {items: 17, workers: 4},
		"more chunks than fit": {items: 5, workers: 4},
		"single worker":       {items: 10, workers: 1},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			items := make([]int, tt.items)
			for i := range items {
				items[i] = i
			}

			var got []int
			err := ForEach(progress.New(), items,
				func() []int { return nil },
				func(local *[]int, item int) error {
					*local = append(*local, item)
					return nil
				},
				func(local *[]int) error {
					got = append(got, *local...)
					return nil
				},
				WithWorkers(tt.workers))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			testutil.AssertEqual(t, "count", len(got), tt.items)
			for i, v := range got {
				testutil.AssertEqual(t, "order", v, i)
			}
		})
	}
}

func TestMap_Cancelled(t *testing.T) {
	pc := progress.New()
	pc.RequestCancel()

	_, err := Map(pc, []int{1, 2, 3}, func() int { return 0 }, func(*int, int) error { return nil })
	testutil.AssertEqual(t, "cancelled", errors.Is(err, progress.ErrCancelled), true)
}

func TestMap_WorkerError(t *testing.T) {
	_, err := Map(progress.New(), []int{1, 2, 3, 4}, func() int { return 0 },
		func(_ *int, item int) error {
			if item == 3 {
				return errors.New("bad item")
			}
			return nil
		}, WithWorkers(2))
	testutil.AssertErrorContains(t, err, "bad item")
}

func TestMap_WorkerPanic(t *testing.T) {
	_, err := Map(progress.New(), []int{1}, func() int { return 0 },
		func(*int, int) error { panic("boom") })
	testutil.AssertErrorContains(t, err, "boom")
}

func TestMap_FirstChunkErrorWins(t *testing.T) {
	items := make([]int, 64)
	for i := range items {
		items[i] = i
	}

	for range 20 {
		_, err := Map(progress.New(), items, func() int { return 0 },
			func(_ *int, item int) error {
				if item%8 == 5 {
					return fmt.Errorf("bad item [%d]", item)
				}
				return nil
			}, WithWorkers(8))
		testutil.AssertErrorContains(t, err, "bad item [5]")
	}
}
