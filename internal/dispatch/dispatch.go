// Package dispatch fans the combination search out over a worker pool.
package dispatch

import (
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/verte-zerg/wordcomb/internal/catalog"
	"github.com/verte-zerg/wordcomb/internal/output"
	"github.com/verte-zerg/wordcomb/internal/pool"
	"github.com/verte-zerg/wordcomb/internal/search"
)

// ProgressFunc is called after each task with the number of finished tasks
// and the total number of tasks in the run. It may be called concurrently.
type ProgressFunc func(done, total int)

// Result summarizes a finished run.
type Result struct {
	Generated uint64
	Bytes     int64
	Tasks     int
	// Levels[i] counts combinations of i+1 words.
	Levels   []uint64
	Duration time.Duration
}

type searchFunc func(start, level, minChars, maxChars int, emit search.EmitFunc) int

// Dispatcher submits one search task per (level, start word) pair.
type Dispatcher struct {
	cat       *catalog.Catalog
	pool      *pool.Pool
	sink      *output.Sink
	logger    *zap.Logger
	progress  ProgressFunc
	newSearch func() searchFunc
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the logger for per-task debug messages.
func WithLogger(logger *zap.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

// WithProgress registers a progress callback.
func WithProgress(fn ProgressFunc) Option {
	return func(d *Dispatcher) {
		d.progress = fn
	}
}

// New returns a Dispatcher over a finalized catalog.
func New(cat *catalog.Catalog, p *pool.Pool, sink *output.Sink, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		cat:    cat,
		pool:   p,
		sink:   sink,
		logger: zap.NewNop(),
	}
	d.newSearch = func() searchFunc {
		return search.New(cat).Search
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Run generates every combination of words whose length lies in
// [minChars, maxChars] and blocks until all tasks have finished. Levels
// deeper than maxChars/shortest cannot fit and get no tasks.
func (d *Dispatcher) Run(minChars, maxChars int) Result {
	started := time.Now()
	if !d.cat.Finalized() {
		d.cat.Finalize()
	}
	words := d.cat.Len()
	levels := maxLevels(words, d.cat.Shortest(), maxChars)
	total := levels * words

	var counter output.Counter
	perLevel := make([]atomic.Uint64, levels)
	var finished atomic.Int64

	for level := 0; level < levels; level++ {
		for start := 0; start < words; start++ {
			d.pool.Submit(func() {
				d.runTask(start, level, minChars, maxChars, &counter, &perLevel[level])
				n := finished.Add(1)
				if d.progress != nil {
					d.progress(int(n), total)
				}
			})
		}
	}
	d.pool.Barrier()

	res := Result{
		Generated: counter.Load(),
		Bytes:     d.sink.Written(),
		Tasks:     total,
		Levels:    make([]uint64, levels),
		Duration:  time.Since(started),
	}
	for i := range perLevel {
		res.Levels[i] = perLevel[i].Load()
	}
	return res
}

// maxLevels returns the number of word counts worth searching: a
// combination of k words is at least k*shortest long.
func maxLevels(words, shortest, maxChars int) int {
	if words == 0 || maxChars <= 0 {
		return 0
	}
	return min(maxChars, maxChars/max(shortest, 1))
}

func (d *Dispatcher) runTask(start, level, minChars, maxChars int, counter *output.Counter, levelCount *atomic.Uint64) {
	word := d.cat.Entry(start).Text
	if ce := d.logger.Check(zap.DebugLevel, "start task"); ce != nil {
		ce.Write(zap.Int("level", level), zap.String("word", word))
	}

	agg := output.NewAggregator(d.cat, d.sink, counter)
	// Whatever was emitted before a panic is still written and counted.
	defer func() {
		agg.Close()
		levelCount.Add(agg.Generated())
	}()
	n := d.newSearch()(start, level, minChars, maxChars, agg.Emit)

	if ce := d.logger.Check(zap.DebugLevel, "finish task"); ce != nil {
		ce.Write(zap.Int("level", level), zap.String("word", word), zap.Int("generated", n))
	}
}
