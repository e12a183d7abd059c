// Package events broadcasts stack mutations to watch subscribers. The
// engine itself never notifies anyone; the transport layer publishes an
// event after each successful operation.
package events

import (
	"sync"
	"time"
)

// Op identifies the kind of stack mutation an event describes.
type Op string

const (
	OpPush   Op = "push"
	OpPop    Op = "pop"
	OpResize Op = "resize"
)

// Event is one observed stack mutation. Value is set for push and pop;
// Depth and Capacity are the state observed right after the operation.
type Event struct {
	Op       Op        `json:"op"`
	Value    *int32    `json:"value,omitempty"`
	Depth    int       `json:"depth"`
	Capacity int       `json:"capacity"`
	Time     time.Time `json:"time"`
}

// subscriberBuffer is the per-subscriber channel depth. A subscriber that
// falls further behind loses events rather than stalling publishers.
const subscriberBuffer = 16

// Broadcaster fans stack events out to any number of subscribers.
type Broadcaster struct {
	mu     sync.Mutex
	subs   map[int]chan Event
	nextID int
	closed bool
}

// NewBroadcaster creates a broadcaster with no subscribers.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[int]chan Event)}
}

// Subscribe registers a new subscriber. The returned cancel function
// unregisters it and closes the channel; it is safe to call more than once.
func (b *Broadcaster) Subscribe() (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Event, subscriberBuffer)
	if b.closed {
		close(ch)
		return ch, func() {}
	}

	id := b.nextID
	b.nextID++
	b.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if _, ok := b.subs[id]; ok {
				delete(b.subs, id)
				close(ch)
			}
		})
	}
	return ch, cancel
}

// Publish delivers e to every subscriber without blocking. Subscribers with
// full buffers miss the event.
func (b *Broadcaster) Publish(e Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	for _, ch := range b.subs {
		select {
		case ch <- e:
		default:
		}
	}
}

// Close shuts the broadcaster down and closes all subscriber channels.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
}
