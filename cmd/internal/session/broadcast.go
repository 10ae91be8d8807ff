package session

import "sync"

// Change is the payload delivered to subscribers whenever the session
// mutates. A zero Change (both fields empty) signals logout.
type Change struct {
	AccessToken string
	UserID      string
}

// LoggedOut reports whether this change represents a cleared session.
func (c Change) LoggedOut() bool {
	return c.AccessToken == "" && c.UserID == ""
}

const subscriberQueueSize = 8

// broadcaster is an in-memory fanout primitive for session changes.
//
// Concurrency guarantees:
// - Subscribe/Unsubscribe are safe under concurrent publish.
// - publish never blocks (drops under backpressure).
// - publish is panic-safe because subscriber channels are never closed by
//   the publisher side.
type broadcaster struct {
	mu     sync.RWMutex
	nextID int
	subs   map[int]*subscriber
}

type subscriber struct {
	ch        chan Change
	done      chan struct{}
	closeOnce sync.Once
}

func (s *subscriber) close() {
	s.closeOnce.Do(func() {
		close(s.done)
	})
}

func newBroadcaster() *broadcaster {
	return &broadcaster{subs: make(map[int]*subscriber)}
}

// Subscription is a live feed of session changes.
type Subscription struct {
	// C delivers the latest session state. Slow consumers may miss
	// intermediate states but always observe a later one.
	C <-chan Change

	cancel func()
}

// Cancel detaches the subscription (idempotent).
func (s *Subscription) Cancel() {
	if s == nil || s.cancel == nil {
		return
	}
	s.cancel()
}

func (b *broadcaster) subscribe() *Subscription {
	sub := &subscriber{
		ch:   make(chan Change, subscriberQueueSize),
		done: make(chan struct{}),
	}

	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subs[id] = sub
	b.mu.Unlock()

	return &Subscription{
		C: sub.ch,
		cancel: func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
			sub.close()
		},
	}
}

// publish fans out a change to all subscribers.
// Non-blocking: if a subscriber queue is full or the subscriber is
// cancelling, the change is dropped for that subscriber.
func (b *broadcaster) publish(c Change) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, s := range b.subs {
		select {
		case <-s.done:
			continue
		default:
		}

		select {
		case s.ch <- c:
		default:
			// Drop rather than block the publisher.
		}
	}
}
