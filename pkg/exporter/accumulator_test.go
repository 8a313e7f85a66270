package exporter

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccumulatorAppendDrain(t *testing.T) {
	acc := newAccumulator[int](10)

	require.NoError(t, acc.Append(1, 2, 3))
	assert.Equal(t, 3, acc.Len())

	assert.Equal(t, []int{1, 2, 3}, acc.Drain())
	assert.Equal(t, 0, acc.Len())
	assert.Nil(t, acc.Drain())
}

func TestAccumulatorCapacity(t *testing.T) {
	acc := newAccumulator[int](2)

	require.NoError(t, acc.Append(1, 2))

	err := acc.Append(3)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBufferFull)

	// The rejected batch must not disturb buffered records.
	assert.Equal(t, []int{1, 2}, acc.Drain())
}

func TestAccumulatorRejectsWholeBatch(t *testing.T) {
	acc := newAccumulator[int](3)

	require.NoError(t, acc.Append(1, 2))
	require.ErrorIs(t, acc.Append(3, 4), ErrBufferFull)
	assert.Equal(t, []int{1, 2}, acc.Drain())
}

func TestAccumulatorConcurrentDrainExactlyOnce(t *testing.T) {
	const (
		writers = 8
		perW    = 500
	)

	acc := newAccumulator[int](0)

	var (
		wg      sync.WaitGroup
		drained sync.Map
	)

	done := make(chan struct{})

	// Concurrent drainer racing the writers.
	go func() {
		defer close(done)

		for i := 0; i < 100; i++ {
			for _, v := range acc.Drain() {
				if _, loaded := drained.LoadOrStore(v, true); loaded {
					t.Errorf("value %d drained twice", v)
				}
			}
		}
	}()

	for w := 0; w < writers; w++ {
		wg.Add(1)

		go func(w int) {
			defer wg.Done()

			for i := 0; i < perW; i++ {
				_ = acc.Append(w*perW + i)
			}
		}(w)
	}

	wg.Wait()
	<-done

	for _, v := range acc.Drain() {
		if _, loaded := drained.LoadOrStore(v, true); loaded {
			t.Errorf("value %d drained twice", v)
		}
	}

	count := 0

	drained.Range(func(_, _ any) bool {
		count++
		return true
	})

	assert.Equal(t, writers*perW, count)
}
