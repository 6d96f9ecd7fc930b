package observable

import (
	"context"
	"sync"
	"time"
)

// Producer feeds values into emit until ctx is cancelled.
type Producer[T any] func(ctx context.Context, emit func(T))

// Shared runs a single Producer on behalf of all of its subscribers.
//
// The producer starts with the first subscriber. When the last subscriber
// leaves, it keeps running for stopTimeout so that a quick resubscribe reuses
// it; after that it is cancelled. The last emitted value is retained across
// restarts and delivered to new subscribers immediately.
type Shared[T any] struct {
	produce     Producer[T]
	stopTimeout time.Duration
	value       *Value[T]

	mu       sync.Mutex
	refs     int
	cancel   context.CancelFunc
	gen      uint64
	timerGen uint64
	timer    *time.Timer
	closed   bool
	wg       sync.WaitGroup
}

// Share wraps produce into a Shared holding initial until the first emission.
func Share[T any](initial T, stopTimeout time.Duration, produce Producer[T]) *Shared[T] {
	return &Shared[T]{
		produce:     produce,
		stopTimeout: stopTimeout,
		value:       NewValue(initial),
	}
}

// Subscribe attaches a subscriber, starting the producer if needed.
func (s *Shared[T]) Subscribe() *Subscription[T] {
	s.mu.Lock()
	s.refs++
	s.timerGen++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if s.cancel == nil && !s.closed {
		s.start()
	}
	s.mu.Unlock()

	inner := s.value.Subscribe()
	return newSubscription(inner.ch, func() {
		inner.Close()
		s.release()
	})
}

// Get returns the most recently emitted value.
func (s *Shared[T]) Get() T {
	return s.value.Get()
}

// Active reports whether the producer is currently running.
func (s *Shared[T]) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancel != nil
}

// Close stops the producer and waits for it to return. Later subscribers
// only see the retained value.
func (s *Shared[T]) Close() {
	s.mu.Lock()
	s.closed = true
	s.timerGen++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.stop()
	s.mu.Unlock()

	s.wg.Wait()
}

// start must be called with s.mu held.
func (s *Shared[T]) start() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.gen++
	gen := s.gen

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.produce(ctx, func(x T) {
			s.mu.Lock()
			defer s.mu.Unlock()
			if s.gen != gen || s.cancel == nil {
				return
			}
			s.value.Set(x)
		})
	}()
}

// stop must be called with s.mu held.
func (s *Shared[T]) stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	s.cancel = nil
	s.gen++
}

func (s *Shared[T]) release() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.refs--
	if s.refs > 0 || s.cancel == nil {
		return
	}
	if s.stopTimeout <= 0 {
		s.stop()
		return
	}

	s.timerGen++
	gen := s.timerGen
	s.timer = time.AfterFunc(s.stopTimeout, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.timerGen != gen || s.refs > 0 {
			return
		}
		s.timer = nil
		s.stop()
	})
}
