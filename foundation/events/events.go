// Package events fans ledger event messages out to registered receivers,
// such as websocket clients watching the node.
package events

import (
	"fmt"
	"sync"
)

// messageBuffer is the capacity of each receiver. A message is dropped for a
// receiver whose buffer is full.
const messageBuffer = 100

type receiver struct {
	ch      chan string
	dropped uint64
}

// Events maintains the set of receivers keyed by a unique id.
type Events struct {
	mu sync.RWMutex
	m  map[string]*receiver
}

// New constructs an empty set of receivers.
func New() *Events {
	return &Events{
		m: make(map[string]*receiver),
	}
}

// Acquire registers the id and returns the channel its events arrive on.
// Acquiring an id twice returns the same channel.
func (evt *Events) Acquire(id string) <-chan string {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	if r, exists := evt.m[id]; exists {
		return r.ch
	}

	r := receiver{ch: make(chan string, messageBuffer)}
	evt.m[id] = &r

	return r.ch
}

// Release unregisters the id and closes its channel.
func (evt *Events) Release(id string) error {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	r, exists := evt.m[id]
	if !exists {
		return fmt.Errorf("id %q does not exist", id)
	}

	delete(evt.m, id)
	close(r.ch)

	return nil
}

// Send delivers the message to every receiver without blocking and returns
// the number of receivers that got it.
func (evt *Events) Send(msg string) int {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	var delivered int
	for _, r := range evt.m {
		select {
		case r.ch <- msg:
			delivered++
		default:
			r.dropped++
		}
	}

	return delivered
}

// Dropped returns the number of messages the id missed because its buffer
// was full.
func (evt *Events) Dropped(id string) uint64 {
	evt.mu.RLock()
	defer evt.mu.RUnlock()

	if r, exists := evt.m[id]; exists {
		return r.dropped
	}
	return 0
}

// Count returns the number of registered receivers.
func (evt *Events) Count() int {
	evt.mu.RLock()
	defer evt.mu.RUnlock()

	return len(evt.m)
}

// Shutdown releases every receiver.
func (evt *Events) Shutdown() {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	for id, r := range evt.m {
		delete(evt.m, id)
		close(r.ch)
	}
}
