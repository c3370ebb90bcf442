// Copyright (C) 2020 Markus L. Noga
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Package workpool generalizes the teacher repository's stacking
// batch-splitting idiom (a chan bool semaphore sized to the number of
// available cores, row-contiguous batches, drain-the-semaphore
// completion) into a small reusable helper. It drives both the two
// parallel flood-fill invocations of pass 5 (Parallel) and the
// row-batch parallelism of pass 3 (RowBatches).
package workpool

import (
	"runtime"
	"sync"

	"github.com/klauspost/cpuid/v2"
)

// Workers returns the default worker count: the number of logical CPUs
// as seen by the Go runtime, informed by cpuid the same way the teacher
// repository's noise_amd64.go gates SIMD code paths on detected CPU
// features rather than assuming a fixed core count.
func Workers() int {
	n := runtime.NumCPU()
	if cpuid.CPU.LogicalCores > 0 && cpuid.CPU.LogicalCores < n {
		n = cpuid.CPU.LogicalCores
	}
	if n < 1 {
		n = 1
	}
	return n
}

// RowBatches splits [0,n) into row-contiguous batches and calls fn(lower,
// upper) for each batch concurrently, bounded by workers concurrent
// goroutines. It blocks until every batch has completed.
func RowBatches(n, workers int, fn func(lower, upper int)) {
	if n <= 0 {
		return
	}
	if workers < 1 {
		workers = 1
	}

	numBatches := workers
	if numBatches > n {
		numBatches = n
	}
	batchSize := (n + numBatches - 1) / numBatches

	sem := make(chan bool, workers)
	for lower := 0; lower < n; lower += batchSize {
		upper := lower + batchSize
		if upper > n {
			upper = n
		}

		sem <- true
		go func(lower, upper int) {
			defer func() { <-sem }()
			fn(lower, upper)
		}(lower, upper)
	}
	for i := 0; i < cap(sem); i++ {
		sem <- true
	}
}

// Parallel runs the given thunks concurrently and waits for all of them
// to complete, collecting the first non-nil error. Used to drive the
// two independent flood-fill tasks of pass 5.
func Parallel(tasks ...func() error) error {
	var wg sync.WaitGroup
	errs := make([]error, len(tasks))
	for i, t := range tasks {
		wg.Add(1)
		go func(i int, t func() error) {
			defer wg.Done()
			errs[i] = t()
		}(i, t)
	}
	wg.Wait()

	for _, e := range errs {
		if e != nil {
			return e
		}
	}
	return nil
}
