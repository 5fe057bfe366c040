package display

import (
	"sync"
	"sync/atomic"
)

// Surface receives console notifications and batches.
type Surface interface {
	MessageAppended(index int)
	Messages(start int, kinds, data []string)
}

// Async hands notifications to a surface on its own goroutine so a slow
// surface never holds up appends. Notifications beyond the buffer are
// dropped; the latest dropped index is redelivered once the queue drains.
type Async struct {
	inner Surface
	queue chan int
	done  chan struct{}
	wg    sync.WaitGroup

	dropped atomic.Int64
	latest  atomic.Int64 // latest dropped index, -1 when none is owed
	once    sync.Once
}

// NewAsync starts delivering to inner. buffer is the queue capacity.
func NewAsync(inner Surface, buffer int) *Async {
	if buffer < 1 {
		buffer = 1
	}
	a := &Async{
		inner: inner,
		queue: make(chan int, buffer),
		done:  make(chan struct{}),
	}
	a.latest.Store(-1)
	a.wg.Add(1)
	go a.run()
	return a
}

// MessageAppended queues index without blocking.
func (a *Async) MessageAppended(index int) {
	select {
	case <-a.done:
		return
	default:
	}
	select {
	case a.queue <- index:
	default:
		a.dropped.Add(1)
		a.latest.Store(int64(index))
	}
}

// Messages passes a batch straight to the surface.
func (a *Async) Messages(start int, kinds, data []string) {
	a.inner.Messages(start, kinds, data)
}

// Dropped returns how many notifications were dropped.
func (a *Async) Dropped() int64 {
	return a.dropped.Load()
}

// Close delivers what is queued and stops the goroutine.
func (a *Async) Close() {
	a.once.Do(func() {
		close(a.done)
	})
	a.wg.Wait()
}

func (a *Async) run() {
	defer a.wg.Done()
	for {
		select {
		case index := <-a.queue:
			a.inner.MessageAppended(index)
			a.redeliver()
		case <-a.done:
			a.drain()
			return
		}
	}
}

func (a *Async) drain() {
	for {
		select {
		case index := <-a.queue:
			a.inner.MessageAppended(index)
		default:
			a.redeliver()
			return
		}
	}
}

// redeliver forwards the latest dropped index once the queue is empty.
func (a *Async) redeliver() {
	if len(a.queue) > 0 {
		return
	}
	if index := a.latest.Swap(-1); index >= 0 {
		a.inner.MessageAppended(int(index))
	}
}
