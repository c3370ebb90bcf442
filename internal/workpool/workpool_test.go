package workpool

import (
	"errors"
	"sync"
	"testing"
)

func TestWorkersAtLeastOne(t *testing.T) {
	if Workers() < 1 {
		t.Errorf("Workers() = %v, want >= 1", Workers())
	}
}

func TestRowBatchesCoversEveryRowExactlyOnce(t *testing.T) {
	const n = 137
	var mu sync.Mutex
	seen := make([]int, n)

	RowBatches(n, 4, func(lower, upper int) {
		mu.Lock()
		defer mu.Unlock()
		for i := lower; i < upper; i++ {
			seen[i]++
		}
	})

	for i, count := range seen {
		if count != 1 {
			t.Errorf("row %d covered %d times, want 1", i, count)
		}
	}
}

func TestRowBatchesEmpty(t *testing.T) {
	called := false
	RowBatches(0, 4, func(lower, upper int) { called = true })
	if called {
		t.Error("RowBatches(0, ...) should not invoke fn")
	}
}

func TestParallelPropagatesFirstError(t *testing.T) {
	want := errors.New("boom")
	err := Parallel(
		func() error { return nil },
		func() error { return want },
		func() error { return nil },
	)
	if err != want {
		t.Errorf("Parallel error = %v, want %v", err, want)
	}
}

func TestParallelAllSucceed(t *testing.T) {
	var n int32
	var mu sync.Mutex
	err := Parallel(
		func() error { mu.Lock(); n++; mu.Unlock(); return nil },
		func() error { mu.Lock(); n++; mu.Unlock(); return nil },
	)
	if err != nil {
		t.Fatalf("Parallel: %v", err)
	}
	if n != 2 {
		t.Errorf("n = %v, want 2", n)
	}
}
