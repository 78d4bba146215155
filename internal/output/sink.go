// Package output buffers generated candidates and serializes them to a sink.
package output

import (
	"errors"
	"io"
	"sync"
	"sync/atomic"
)

// ErrSinkClosed is returned by Write after Close.
var ErrSinkClosed = errors.New("output: sink closed")

// Sink serializes whole-chunk writes from many goroutines onto one writer.
type Sink struct {
	mu     sync.Mutex
	w      io.Writer
	closed bool
	err    error

	written atomic.Int64
}

// NewSink wraps w.
func NewSink(w io.Writer) *Sink {
	return &Sink{w: w}
}

// Write writes p as one uninterrupted chunk. After the first failure the
// sink stops writing and keeps returning that error.
func (s *Sink) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, ErrSinkClosed
	}
	if s.err != nil {
		return 0, s.err
	}
	n, err := s.w.Write(p)
	s.written.Add(int64(n))
	if err == nil && n < len(p) {
		err = io.ErrShortWrite
	}
	if err != nil {
		s.err = err
	}
	return n, err
}

// Written returns the number of bytes accepted by the underlying writer.
func (s *Sink) Written() int64 {
	return s.written.Load()
}

// Err returns the first write error, if any.
func (s *Sink) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close rejects further writes and returns the first write error. The
// underlying writer is left open for its owner to close.
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return s.err
}

// Counter is a thread-safe total of generated candidates.
type Counter struct {
	n atomic.Uint64
}

// Add adds delta and returns the new total.
func (c *Counter) Add(delta uint64) uint64 {
	return c.n.Add(delta)
}

// Load returns the current total.
func (c *Counter) Load() uint64 {
	return c.n.Load()
}
