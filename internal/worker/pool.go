package worker

import (
	"context"
	"sync"
)

// Job represents a unit of work to be executed
type Job interface {
	Execute(ctx context.Context) Result
}

// Result represents the result of a job execution
type Result interface {
	GetError() error
}

// Pool manages a pool of workers that execute jobs concurrently.
// Results are drained by a collector goroutine so workers never block on output.
type Pool struct {
	workers    int
	jobQueue   chan Job
	results    chan Result
	collected  []Result
	collectEnd chan struct{}
	wg         sync.WaitGroup
	ctx        context.Context
	cancelFunc context.CancelFunc
	startOnce  sync.Once
	closeOnce  sync.Once
	started    bool
}

// NewPool creates a new worker pool with the specified number of workers
func NewPool(workers int) *Pool {
	return NewPoolWithContext(context.Background(), workers)
}

// NewPoolWithContext creates a pool whose jobs observe ctx cancellation
func NewPoolWithContext(ctx context.Context, workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}

	ctx, cancel := context.WithCancel(ctx)

	return &Pool{
		workers:    workers,
		jobQueue:   make(chan Job, workers*2),
		results:    make(chan Result, workers*2),
		collectEnd: make(chan struct{}),
		ctx:        ctx,
		cancelFunc: cancel,
	}
}

// Start starts the worker pool
func (p *Pool) Start() {
	p.startOnce.Do(func() {
		p.started = true
		go p.collect()
		for i := 0; i < p.workers; i++ {
			p.wg.Add(1)
			go p.worker(i)
		}
	})
}

func (p *Pool) collect() {
	defer close(p.collectEnd)
	for result := range p.results {
		p.collected = append(p.collected, result)
	}
}

// worker is the worker goroutine that processes jobs
func (p *Pool) worker(id int) {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case job, ok := <-p.jobQueue:
			if !ok {
				return
			}
			p.results <- job.Execute(p.ctx)
		}
	}
}

// Submit submits a job to the pool for execution
func (p *Pool) Submit(job Job) {
	select {
	case <-p.ctx.Done():
		return
	case p.jobQueue <- job:
	}
}

// Wait waits for all submitted jobs to complete and returns their results
// in completion order
func (p *Pool) Wait() []Result {
	close(p.jobQueue)
	p.wg.Wait()
	p.closeResults()
	if p.started {
		<-p.collectEnd
	}
	p.cancelFunc()
	return p.collected
}

// Shutdown shuts down the worker pool immediately
func (p *Pool) Shutdown() {
	p.cancelFunc()
	p.wg.Wait()
	p.closeResults()
	if p.started {
		<-p.collectEnd
	}
}

func (p *Pool) closeResults() {
	p.closeOnce.Do(func() {
		close(p.results)
	})
}

// Outcome is one element of a Map call, tagged with its input position
type Outcome[R any] struct {
	Index int
	Value R
	Err   error
}

// GetError implements Result
func (o *Outcome[R]) GetError() error {
	return o.Err
}

type mapJob[T, R any] struct {
	index int
	item  T
	fn    func(context.Context, T) (R, error)
}

func (j *mapJob[T, R]) Execute(ctx context.Context) Result {
	v, err := j.fn(ctx, j.item)
	return &Outcome[R]{Index: j.index, Value: v, Err: err}
}

// Map runs fn over items on a bounded pool and returns one outcome per item
// in input order. A failing item does not stop its siblings. Items never run
// because ctx was cancelled carry the context error.
func Map[T, R any](ctx context.Context, workers int, items []T, fn func(context.Context, T) (R, error)) []Outcome[R] {
	if len(items) == 0 {
		return nil
	}
	if workers > len(items) {
		workers = len(items)
	}

	pool := NewPoolWithContext(ctx, workers)
	pool.Start()
	for i, item := range items {
		pool.Submit(&mapJob[T, R]{index: i, item: item, fn: fn})
	}

	outcomes := make([]Outcome[R], len(items))
	ran := make([]bool, len(items))
	for _, r := range pool.Wait() {
		o := r.(*Outcome[R])
		outcomes[o.Index] = *o
		ran[o.Index] = true
	}
	for i := range outcomes {
		if ran[i] {
			continue
		}
		err := ctx.Err()
		if err == nil {
			err = context.Canceled
		}
		outcomes[i] = Outcome[R]{Index: i, Err: err}
	}
	return outcomes
}
