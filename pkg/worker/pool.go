package worker

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/semaphore"
)

// DefaultLimit is the number of jobs a Pool runs at once when none is given
const DefaultLimit = 5

// Pool runs submitted jobs with at most limit running at a time. Jobs beyond
// the limit wait in submission order; each finished job, successful or not,
// frees its slot for the next one in line.
type Pool struct {
	sem   *semaphore.Weighted
	limit int

	mu      sync.Mutex
	queue   []func()
	running int
}

// NewPool creates a pool. limit <= 0 means DefaultLimit.
func NewPool(limit int) *Pool {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Pool{
		sem:   semaphore.NewWeighted(int64(limit)),
		limit: limit,
	}
}

// Limit is the maximum number of concurrently running jobs
func (p *Pool) Limit() int {
	return p.limit
}

// Stats reports running and queued job counts
func (p *Pool) Stats() (running, queued int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running, len(p.queue)
}

// Future is the eventual result of a submitted job
type Future[T any] struct {
	done  chan struct{}
	value T
	err   error
}

// Done is closed once the job has finished
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until the job finishes or ctx is done
func (f *Future[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Submit queues job on p and returns its future. The job receives ctx; a
// panicking job resolves its future with an error and still frees its slot.
func Submit[T any](ctx context.Context, p *Pool, job func(context.Context) (T, error)) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}

	p.enqueue(func() {
		defer close(f.done)
		defer func() {
			if r := recover(); r != nil {
				f.err = fmt.Errorf("job panicked: %v", r)
			}
		}()
		f.value, f.err = job(ctx)
	})

	return f
}

func (p *Pool) enqueue(run func()) {
	p.mu.Lock()
	p.queue = append(p.queue, run)
	p.mu.Unlock()

	p.dispatch()
}

// dispatch starts queued jobs while slots are free
func (p *Pool) dispatch() {
	for {
		p.mu.Lock()
		if len(p.queue) == 0 || !p.sem.TryAcquire(1) {
			p.mu.Unlock()
			return
		}
		run := p.queue[0]
		p.queue[0] = nil
		p.queue = p.queue[1:]
		p.running++
		p.mu.Unlock()

		go func() {
			defer func() {
				p.mu.Lock()
				p.running--
				p.mu.Unlock()
				p.sem.Release(1)
				p.dispatch()
			}()
			run()
		}()
	}
}
