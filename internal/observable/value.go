// Package observable provides small reactive state holders: a Value that fans
// its latest state out to subscribers, Shared upstreams that run only while
// observed, and Combine for deriving state from two sources.
//
// Delivery is conflated: a subscriber that falls behind sees the newest value
// and skips intermediate ones. Producers never block on slow subscribers.
package observable

import "sync"

// Source is anything that can be subscribed to for values of T.
type Source[T any] interface {
	Subscribe() *Subscription[T]
}

// Subscription is a live view on a Source. The current value is delivered
// immediately after subscribing, then every subsequent change.
type Subscription[T any] struct {
	ch     chan T
	once   sync.Once
	cancel func()
}

func newSubscription[T any](ch chan T, cancel func()) *Subscription[T] {
	return &Subscription[T]{ch: ch, cancel: cancel}
}

// C returns the delivery channel. It is closed after Close.
func (s *Subscription[T]) C() <-chan T {
	return s.ch
}

// Close detaches the subscription. It is safe to call more than once.
func (s *Subscription[T]) Close() {
	s.once.Do(s.cancel)
}

// Value is an owned piece of mutable state with change notification.
type Value[T any] struct {
	mu    sync.Mutex
	cur   T
	subs  map[uint64]chan T
	next  uint64
	equal func(a, b T) bool
}

// NewValue creates a Value holding initial. Every Set is delivered.
func NewValue[T any](initial T) *Value[T] {
	return &Value[T]{cur: initial, subs: make(map[uint64]chan T)}
}

// NewDistinct creates a Value that ignores Set calls with the current value.
func NewDistinct[T comparable](initial T) *Value[T] {
	v := NewValue(initial)
	v.equal = func(a, b T) bool { return a == b }
	return v
}

// Get returns the current value.
func (v *Value[T]) Get() T {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.cur
}

// Set replaces the current value and notifies subscribers.
func (v *Value[T]) Set(x T) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.equal != nil && v.equal(v.cur, x) {
		return
	}
	v.cur = x
	for _, ch := range v.subs {
		offer(ch, x)
	}
}

// Subscribe registers a new subscriber.
func (v *Value[T]) Subscribe() *Subscription[T] {
	v.mu.Lock()
	defer v.mu.Unlock()

	id := v.next
	v.next++
	ch := make(chan T, 1)
	ch <- v.cur
	v.subs[id] = ch

	return newSubscription(ch, func() {
		v.mu.Lock()
		defer v.mu.Unlock()
		delete(v.subs, id)
		close(ch)
	})
}

// Subscribers returns the number of attached subscribers.
func (v *Value[T]) Subscribers() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.subs)
}

// offer puts x into a one-slot channel, replacing any undelivered value.
// Callers must be the only sender on ch.
func offer[T any](ch chan T, x T) {
	select {
	case ch <- x:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	ch <- x
}
