package exporter

import "sync"

// accumulator is a capacity-bounded append buffer. Each record kind gets its
// own accumulator so trace ingestion never contends with metric ingestion.
// Drain swaps the backing slice out under the lock, so every appended record
// is drained exactly once and a concurrent append is either fully included in
// a drain or fully deferred to the next one.
type accumulator[T any] struct {
	mu    sync.Mutex
	items []T
	max   int
}

func newAccumulator[T any](max int) *accumulator[T] {
	return &accumulator[T]{max: max}
}

// Append buffers records in arrival order. When the batch would exceed
// capacity the whole batch is rejected and nothing already buffered is
// touched.
func (a *accumulator[T]) Append(items ...T) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.max > 0 && len(a.items)+len(items) > a.max {
		return ErrBufferFull
	}

	a.items = append(a.items, items...)

	return nil
}

// Drain returns all buffered records and leaves the accumulator empty.
func (a *accumulator[T]) Drain() []T {
	a.mu.Lock()
	defer a.mu.Unlock()

	items := a.items
	a.items = nil

	return items
}

// Len reports the number of buffered records.
func (a *accumulator[T]) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()

	return len(a.items)
}
