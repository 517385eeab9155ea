package coordinator

import "sync"

// subscriberBuffer is how many undelivered masks a slow subscriber may hold.
const subscriberBuffer = 8

// Broadcaster fans acknowledged mask changes out to any number of subscribers.
// A subscriber whose buffer is full misses the update rather than stalling
// the coordinator.
type Broadcaster struct {
	mu   sync.Mutex
	subs map[int]chan uint32
	next int
	// last is replayed to new subscribers so they start from current state.
	last    uint32
	hasLast bool
	// closed is set by Close; later subscribers get a closed channel.
	closed bool
}

// NewBroadcaster returns a broadcaster without subscribers.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		subs: make(map[int]chan uint32),
	}
}

// AcknowledgedMaskChanged implements Notifier.
func (b *Broadcaster) AcknowledgedMaskChanged(mask uint32) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.last, b.hasLast = mask, true

	for _, ch := range b.subs {
		select {
		case ch <- mask:
		default:
		}
	}
}

// Subscribe registers a new receiver. The returned cancel function
// unregisters it and closes the channel.
func (b *Broadcaster) Subscribe() (<-chan uint32, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan uint32, subscriberBuffer)
	if b.closed {
		close(ch)
		return ch, func() {}
	}

	id := b.next
	b.next++

	if b.hasLast {
		ch <- b.last
	}

	b.subs[id] = ch

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()

		// Close may have released the channel already.
		if _, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(ch)
		}
	}

	return ch, cancel
}

// Close ends every subscription so stream handlers can return on shutdown.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.closed = true

	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
}

// Subscribers returns the number of registered receivers.
func (b *Broadcaster) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return len(b.subs)
}
