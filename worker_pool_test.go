package streetgraph

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWorkerPool(t *testing.T) {
	jobs := 100
	pool := newWorkerPool[int, int](4, jobs)
	pool.start(func(job int) int {
		return job * job
	})
	go func() {
		for i := 0; i < jobs; i++ {
			pool.addJob(i)
		}
		pool.close()
		pool.wait()
	}()

	var collected []int
	for result := range pool.collectResults() {
		collected = append(collected, result)
	}
	require.Len(t, collected, jobs)
	sort.Ints(collected)
	for i := 0; i < jobs; i++ {
		require.Equal(t, i*i, collected[i])
	}
}
