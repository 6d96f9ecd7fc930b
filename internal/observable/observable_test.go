package observable

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive[T any](t *testing.T, sub *Subscription[T]) T {
	t.Helper()
	select {
	case v, ok := <-sub.C():
		require.True(t, ok, "subscription closed")
		return v
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for value")
	}
	var zero T
	return zero
}

func assertNoValue[T any](t *testing.T, sub *Subscription[T], wait time.Duration) {
	t.Helper()
	select {
	case v := <-sub.C():
		t.Fatalf("unexpected value %v", v)
	case <-time.After(wait):
	}
}

func TestValue_DeliversCurrentThenUpdates(t *testing.T) {
	v := NewValue(1)
	sub := v.Subscribe()
	defer sub.Close()

	assert.Equal(t, 1, receive(t, sub))
	v.Set(2)
	assert.Equal(t, 2, receive(t, sub))
	assert.Equal(t, 2, v.Get())
}

func TestValue_ConflatesForSlowSubscriber(t *testing.T) {
	v := NewValue(0)
	sub := v.Subscribe()
	defer sub.Close()

	done := make(chan struct{})
	go func() {
		for i := 1; i <= 100; i++ {
			v.Set(i)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("producer blocked on a slow subscriber")
	}
	assert.Equal(t, 100, receive(t, sub))
}

func TestValue_DistinctSkipsEqual(t *testing.T) {
	v := NewDistinct("milk")
	sub := v.Subscribe()
	defer sub.Close()

	assert.Equal(t, "milk", receive(t, sub))
	v.Set("milk")
	assertNoValue(t, sub, 50*time.Millisecond)
	v.Set("trip")
	assert.Equal(t, "trip", receive(t, sub))
}

func TestValue_CloseDetaches(t *testing.T) {
	v := NewValue(0)
	sub := v.Subscribe()
	require.Equal(t, 1, v.Subscribers())

	sub.Close()
	sub.Close()
	assert.Equal(t, 0, v.Subscribers())

	_, ok := <-sub.C()
	assert.False(t, ok)
	v.Set(1)
}

func TestCombine_RecomputesOnEitherInput(t *testing.T) {
	a := NewValue(2)
	b := NewValue(3)
	out := NewValue(0)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go Combine[int, int, int](a, b, func(x, y int) int { return x * y })(ctx, out.Set)

	sub := out.Subscribe()
	defer sub.Close()

	require.Eventually(t, func() bool { return out.Get() == 6 }, time.Second, 5*time.Millisecond)
	a.Set(5)
	require.Eventually(t, func() bool { return out.Get() == 15 }, time.Second, 5*time.Millisecond)
	b.Set(1)
	require.Eventually(t, func() bool { return out.Get() == 5 }, time.Second, 5*time.Millisecond)
}

func countingProducer(started, running *atomic.Int32, src *Value[int]) Producer[int] {
	return func(ctx context.Context, emit func(int)) {
		started.Add(1)
		running.Add(1)
		defer running.Add(-1)
		sub := src.Subscribe()
		defer sub.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case v := <-sub.C():
				emit(v)
			}
		}
	}
}

func TestShared_KeepsUpstreamDuringStopWindow(t *testing.T) {
	var started, running atomic.Int32
	src := NewValue(7)
	s := Share(0, 200*time.Millisecond, countingProducer(&started, &running, src))
	defer s.Close()

	first := s.Subscribe()
	require.Eventually(t, func() bool { return s.Get() == 7 }, time.Second, 5*time.Millisecond)
	first.Close()

	time.Sleep(50 * time.Millisecond)
	assert.True(t, s.Active(), "upstream stopped inside the window")

	second := s.Subscribe()
	defer second.Close()
	assert.Equal(t, 7, receive(t, second))
	assert.Equal(t, int32(1), started.Load(), "resubscribe inside the window restarted upstream")
}

func TestShared_StopsAfterWindow(t *testing.T) {
	var started, running atomic.Int32
	src := NewValue(1)
	s := Share(0, 30*time.Millisecond, countingProducer(&started, &running, src))
	defer s.Close()

	sub := s.Subscribe()
	require.Eventually(t, func() bool { return running.Load() == 1 }, time.Second, 5*time.Millisecond)
	sub.Close()

	require.Eventually(t, func() bool { return running.Load() == 0 }, time.Second, 5*time.Millisecond)
	assert.False(t, s.Active())
	assert.Equal(t, 0, src.Subscribers())

	again := s.Subscribe()
	defer again.Close()
	require.Eventually(t, func() bool { return started.Load() == 2 }, time.Second, 5*time.Millisecond)
}

func TestShared_RetainsLastValue(t *testing.T) {
	var started, running atomic.Int32
	src := NewValue(4)
	s := Share(0, 0, countingProducer(&started, &running, src))
	defer s.Close()

	sub := s.Subscribe()
	require.Eventually(t, func() bool { return s.Get() == 4 }, time.Second, 5*time.Millisecond)
	sub.Close()
	require.Eventually(t, func() bool { return running.Load() == 0 }, time.Second, 5*time.Millisecond)

	late := s.Subscribe()
	defer late.Close()
	assert.Equal(t, 4, receive(t, late))
}

func TestShared_CloseWaitsForProducer(t *testing.T) {
	var started, running atomic.Int32
	s := Share(0, time.Hour, countingProducer(&started, &running, NewValue(1)))

	sub := s.Subscribe()
	require.Eventually(t, func() bool { return running.Load() == 1 }, time.Second, 5*time.Millisecond)

	s.Close()
	assert.Equal(t, int32(0), running.Load())
	sub.Close()
}

func TestFromChannel_ReportsOpenError(t *testing.T) {
	var got error
	p := FromChannel(func(context.Context) (<-chan int, error) {
		return nil, assert.AnError
	}, func(err error) { got = err })

	p(context.Background(), func(int) { t.Fatal("unexpected emit") })
	assert.ErrorIs(t, got, assert.AnError)
}

func TestFromChannel_ForwardsUntilClosed(t *testing.T) {
	ch := make(chan int, 3)
	ch <- 1
	ch <- 2
	close(ch)

	var got []int
	FromChannel(func(context.Context) (<-chan int, error) { return ch, nil }, nil)(
		context.Background(), func(v int) { got = append(got, v) })
	assert.Equal(t, []int{1, 2}, got)
}
