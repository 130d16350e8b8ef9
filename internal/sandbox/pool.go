package sandbox

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// DefaultWorkers is the number of blocking reads a Pool runs at once when no
// explicit size is configured.
const DefaultWorkers = 4

// Pool runs blocking file I/O off the caller's goroutine, at most a fixed
// number of jobs at a time. A submitted job always runs to completion.
type Pool struct {
	sem *semaphore.Weighted
}

// NewPool creates a Pool running up to workers jobs concurrently.
// Values below one fall back to DefaultWorkers.
func NewPool(workers int) *Pool {
	if workers < 1 {
		workers = DefaultWorkers
	}
	return &Pool{sem: semaphore.NewWeighted(int64(workers))}
}

// Submit dispatches job and returns a Future for its result.
func (p *Pool) Submit(job func() ([]byte, error)) *Future {
	f := &Future{done: make(chan struct{})}
	go func() {
		// Acquire with a background context cannot fail; there is no
		// cancellation once a job has been handed over.
		_ = p.sem.Acquire(context.Background(), 1)
		defer p.sem.Release(1)

		f.data, f.err = job()
		close(f.done)
	}()
	return f
}

// Future is the pending result of a job dispatched to a Pool.
type Future struct {
	done chan struct{}
	data []byte
	err  error
}

// completed returns a Future that is already resolved.
func completed(data []byte, err error) *Future {
	f := &Future{done: make(chan struct{}), data: data, err: err}
	close(f.done)
	return f
}

// Done is closed once the job has finished.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Await blocks until the job finishes or ctx is done. Giving up on ctx does
// not stop the job; its result is simply dropped.
func (f *Future) Await(ctx context.Context) ([]byte, error) {
	select {
	case <-f.done:
		return f.data, f.err
	default:
	}

	select {
	case <-f.done:
		return f.data, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
