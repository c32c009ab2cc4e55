// Package queue carries input events from producer goroutines to the
// engine tick without ever blocking either side.
package queue

import (
	"sync"

	"git.lost.host/meutraa/tapbeat/pkg/metrics"
)

const defaultCapacity = 256

// Drop reasons reported to metrics.
const (
	DropFull   = "full"
	DropClosed = "closed"
)

// Queue provides non-blocking enqueue and polling dequeue.
type Queue interface {
	// Enqueue adds an event. Returns false if the queue is full or closed
	// and the event was dropped.
	Enqueue(e Event) bool

	// TryDequeue returns the oldest event, or false when none is waiting.
	TryDequeue() (Event, bool)

	// Len returns the current number of queued events.
	Len() int

	// Close stops accepting events. Queued events can still be dequeued.
	Close() error

	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	events   chan Event
	capacity int

	mu     sync.RWMutex
	closed bool
}

func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{capacity: defaultCapacity}
	for _, opt := range opts {
		opt(q)
	}
	q.events = make(chan Event, q.capacity)
	metrics.UpdateQueueSize(0)
	return q
}

func (q *InMemoryQueue) Enqueue(e Event) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueDrop(DropClosed)
		return false
	}

	select {
	case q.events <- e:
		metrics.RecordQueueEnqueue()
		metrics.UpdateQueueSize(len(q.events))
		return true
	default:
		metrics.RecordQueueDrop(DropFull)
		return false
	}
}

func (q *InMemoryQueue) TryDequeue() (Event, bool) {
	select {
	case e, ok := <-q.events:
		if !ok {
			return Event{}, false
		}
		metrics.RecordQueueDequeue()
		metrics.UpdateQueueSize(len(q.events))
		return e, true
	default:
		return Event{}, false
	}
}

// Drain dequeues up to max events, or all waiting events when max <= 0,
// and calls fn for each in order. It returns the number handled.
func (q *InMemoryQueue) Drain(max int, fn func(Event)) int {
	n := 0
	for max <= 0 || n < max {
		e, ok := q.TryDequeue()
		if !ok {
			break
		}
		fn(e)
		n++
	}
	return n
}

func (q *InMemoryQueue) Len() int { return len(q.events) }

func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.events)
	q.closed = true
	return nil
}

func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
