package pool

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestBarrierWaitsForAllUnits(t *testing.T) {
	p := New(4)
	defer p.Close()

	var done atomic.Int64
	for i := 0; i < 200; i++ {
		p.Submit(func() {
			time.Sleep(time.Millisecond)
			done.Add(1)
		})
	}
	p.Barrier()
	assert.Equal(t, int64(200), done.Load())
}

func TestBarrierWithSingleWorker(t *testing.T) {
	p := New(1)
	defer p.Close()

	var order []int
	for i := 0; i < 5; i++ {
		p.Submit(func() { order = append(order, i) })
	}
	p.Barrier()
	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
}

func TestBarrierOnIdlePool(t *testing.T) {
	p := New(2)
	defer p.Close()

	finished := make(chan struct{})
	go func() {
		p.Barrier()
		close(finished)
	}()
	select {
	case <-finished:
	case <-time.After(5 * time.Second):
		t.Fatal("barrier on an idle pool did not return")
	}
}

func TestBarrierReusable(t *testing.T) {
	p := New(3)
	defer p.Close()

	var n atomic.Int64
	for round := 1; round <= 3; round++ {
		for i := 0; i < 10; i++ {
			p.Submit(func() { n.Add(1) })
		}
		p.Barrier()
		require.Equal(t, int64(round*10), n.Load())
	}
}

func TestUnitsRunConcurrently(t *testing.T) {
	const workers = 4
	p := New(workers)
	defer p.Close()

	var wg sync.WaitGroup
	wg.Add(workers)
	release := make(chan struct{})
	for i := 0; i < workers; i++ {
		p.Submit(func() {
			wg.Done()
			<-release
		})
	}
	waited := make(chan struct{})
	go func() {
		wg.Wait()
		close(waited)
	}()
	select {
	case <-waited:
	case <-time.After(5 * time.Second):
		t.Fatal("units did not start in parallel")
	}
	close(release)
	p.Barrier()
}

func TestPanicDoesNotKillPool(t *testing.T) {
	p := New(1)
	defer p.Close()

	var ran atomic.Bool
	p.Submit(func() { panic("boom") })
	p.Submit(func() { ran.Store(true) })
	p.Barrier()
	assert.True(t, ran.Load())
}

func TestCloseDrainsQueue(t *testing.T) {
	p := New(2, WithQueueSize(64))
	var n atomic.Int64
	for i := 0; i < 50; i++ {
		p.Submit(func() { n.Add(1) })
	}
	p.Close()
	p.Close()
	assert.Equal(t, int64(50), n.Load())
}

func TestNewClampsWorkers(t *testing.T) {
	p := New(0)
	defer p.Close()

	var ran atomic.Bool
	p.Submit(func() { ran.Store(true) })
	p.Barrier()
	assert.True(t, ran.Load())
}
