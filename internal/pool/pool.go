// Package pool runs submitted units of work on a fixed set of goroutines.
package pool

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Pool is a fixed-size worker pool consuming a FIFO queue.
type Pool struct {
	queue   chan func()
	group   errgroup.Group
	pending sync.WaitGroup
	logger  *zap.Logger

	closeOnce sync.Once
}

// Option configures a Pool.
type Option func(*Pool)

// WithLogger sets the logger used to report recovered panics.
func WithLogger(logger *zap.Logger) Option {
	return func(p *Pool) {
		p.logger = logger
	}
}

// WithQueueSize sets the queue capacity. Submit blocks when the queue is full.
func WithQueueSize(n int) Option {
	return func(p *Pool) {
		if n >= 0 {
			p.queue = make(chan func(), n)
		}
	}
}

// New starts workers goroutines. Values below 1 start a single worker.
func New(workers int, opts ...Option) *Pool {
	if workers < 1 {
		workers = 1
	}
	p := &Pool{
		queue:  make(chan func(), workers*4),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	for i := 0; i < workers; i++ {
		p.group.Go(p.work)
	}
	return p
}

func (p *Pool) work() error {
	for unit := range p.queue {
		p.run(unit)
	}
	return nil
}

func (p *Pool) run(unit func()) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("unit of work panicked", zap.String("panic", fmt.Sprint(r)))
		}
	}()
	unit()
}

// Submit queues unit for execution. It must not be called after Close.
func (p *Pool) Submit(unit func()) {
	p.pending.Add(1)
	p.queue <- func() {
		defer p.pending.Done()
		unit()
	}
}

// Barrier queues a unit that completes once every unit submitted before it
// has finished, and blocks the caller until that happens.
func (p *Pool) Barrier() {
	done := make(chan struct{})
	p.queue <- func() {
		p.pending.Wait()
		close(done)
	}
	<-done
}

// Close stops accepting work, lets queued units finish and waits for the
// workers to exit.
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		close(p.queue)
	})
	_ = p.group.Wait()
}
