package background

import (
	"context"
	"sync"
)

// workerPool runs batch units with bounded parallelism. Units share no
// mutable state, so workers coordinate only through the job channel.
type workerPool struct {
	size int
	jobs chan func(ctx context.Context)
	wg   sync.WaitGroup
}

func newWorkerPool(size int) *workerPool {
	return &workerPool{
		size: size,
		jobs: make(chan func(ctx context.Context), size),
	}
}

func (p *workerPool) Start(ctx context.Context) {
	for i := 0; i < p.size; i++ {
		p.wg.Add(1)
		go p.worker(ctx)
	}
}

func (p *workerPool) worker(ctx context.Context) {
	defer p.wg.Done()

	for job := range p.jobs {
		// Cancellation is cooperative: checked between units only. An
		// in-flight unit always completes or fails on its own.
		if ctx.Err() != nil {
			continue
		}
		job(ctx)
	}
}

// Submit blocks when the queue is full; the dispatcher simply waits for a
// worker to free up.
func (p *workerPool) Submit(job func(ctx context.Context)) {
	p.jobs <- job
}

// Stop closes the queue and waits for in-flight units to finish. This is
// the join barrier before a run's terminal status is computed.
func (p *workerPool) Stop() {
	close(p.jobs)
	p.wg.Wait()
}
