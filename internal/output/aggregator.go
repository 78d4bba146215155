package output

import "github.com/verte-zerg/wordcomb/internal/catalog"

// FlushThreshold is the buffered size above which an Aggregator flushes.
const FlushThreshold = 128 * 1024

// Aggregator renders one task's combinations into a private buffer and hands
// full chunks to the shared Sink. It is not safe for concurrent use.
type Aggregator struct {
	entries []catalog.Entry
	sink    *Sink
	counter *Counter

	buf       []byte
	generated uint64
	closed    bool
}

// NewAggregator returns an Aggregator for one task.
func NewAggregator(cat *catalog.Catalog, sink *Sink, counter *Counter) *Aggregator {
	return &Aggregator{
		entries: cat.Entries(),
		sink:    sink,
		counter: counter,
	}
}

// Emit appends the concatenation of the selected words and a newline.
func (a *Aggregator) Emit(selected []int) {
	for _, i := range selected {
		a.buf = append(a.buf, a.entries[i].Text...)
	}
	a.buf = append(a.buf, '\n')
	a.generated++
	if len(a.buf) > FlushThreshold {
		a.flush()
	}
}

// Generated returns the number of combinations emitted so far.
func (a *Aggregator) Generated() uint64 {
	return a.generated
}

// Buffered returns the number of bytes waiting to be flushed.
func (a *Aggregator) Buffered() int {
	return len(a.buf)
}

// Close flushes buffered output and adds the task total to the counter.
// Only the first call has any effect.
func (a *Aggregator) Close() {
	if a.closed {
		return
	}
	a.closed = true
	a.flush()
	a.counter.Add(a.generated)
}

func (a *Aggregator) flush() {
	if len(a.buf) == 0 {
		return
	}
	// Write errors are kept by the sink and reported once at the end of the run.
	_, _ = a.sink.Write(a.buf)
	a.buf = a.buf[:0]
}
