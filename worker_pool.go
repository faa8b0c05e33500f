package streetgraph

import (
	"sync"
)

type jobFunc[T any, G any] func(job T) G

// workerPool fans per-intersection geometry jobs out to a fixed number of
// goroutines. Results are collected on a single channel; applying them to the
// shared network stays on the caller's goroutine.
type workerPool[T any, G any] struct {
	numWorkers int
	jobQueue   chan T
	results    chan G
	wg         sync.WaitGroup
}

func newWorkerPool[T any, G any](numWorkers, jobQueueSize int) *workerPool[T, G] {
	return &workerPool[T, G]{
		numWorkers: numWorkers,
		jobQueue:   make(chan T, jobQueueSize),
		results:    make(chan G, jobQueueSize),
	}
}

func (wp *workerPool[T, G]) worker(fn jobFunc[T, G]) {
	defer wp.wg.Done()
	for job := range wp.jobQueue {
		wp.results <- fn(job)
	}
}

func (wp *workerPool[T, G]) start(fn jobFunc[T, G]) {
	for i := 0; i < wp.numWorkers; i++ {
		wp.wg.Add(1)
		go wp.worker(fn)
	}
}

func (wp *workerPool[T, G]) addJob(job T) {
	wp.jobQueue <- job
}

func (wp *workerPool[T, G]) close() {
	close(wp.jobQueue)
}

func (wp *workerPool[T, G]) wait() {
	wp.wg.Wait()
	close(wp.results)
}

func (wp *workerPool[T, G]) collectResults() chan G {
	return wp.results
}
