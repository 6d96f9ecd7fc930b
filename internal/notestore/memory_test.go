package notestore

import (
	"context"
	"testing"
	"time"

	"github.com/atinyakov/NoteNest/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	timeout = time.Second
	tick    = 5 * time.Millisecond
)

func next[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v, ok := <-ch:
		require.True(t, ok, "stream closed")
		return v
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for emission")
	}
	var zero T
	return zero
}

func quiet[T any](t *testing.T, ch <-chan T) {
	t.Helper()
	select {
	case v := <-ch:
		t.Fatalf("unexpected emission: %+v", v)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestMemoryStore_InsertAssignsIDsAndOrders(t *testing.T) {
	s := NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	all, err := s.ObserveAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, next(t, all))

	require.NoError(t, s.Insert(ctx, models.Note{Title: "old", Timestamp: 1}))
	assert.Len(t, next(t, all), 1)
	require.NoError(t, s.Insert(ctx, models.Note{Title: "new", Timestamp: 2}))

	notes := next(t, all)
	require.Len(t, notes, 2)
	assert.Equal(t, "new", notes[0].Title)
	assert.Equal(t, int64(2), notes[0].ID)
	assert.Equal(t, int64(1), notes[1].ID)
}

func TestMemoryStore_InsertWithIDReplaces(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.Insert(ctx, models.Note{ID: 5, Title: "a"}))
	require.NoError(t, s.Insert(ctx, models.Note{ID: 5, Title: "b"}))
	require.NoError(t, s.Insert(ctx, models.Note{Title: "c"}))

	notes, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, int64(6), notes[0].ID, "fresh id must follow the highest seen")
	assert.Equal(t, "b", notes[1].Title)
}

func TestMemoryStore_UnknownIDsDoNotNotify(t *testing.T) {
	s := NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, s.Insert(ctx, models.Note{Title: "keep"}))
	all, err := s.ObserveAll(ctx)
	require.NoError(t, err)
	next(t, all)

	require.NoError(t, s.Delete(ctx, models.Note{ID: 99}))
	require.NoError(t, s.Update(ctx, models.Note{ID: 99, Title: "ghost"}))
	quiet(t, all)
}

func TestMemoryStore_ObserveByID(t *testing.T) {
	s := NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	byID, err := s.ObserveByID(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, next(t, byID), "absent note starts as nil")

	require.NoError(t, s.Insert(ctx, models.Note{Title: "first"}))
	got := next(t, byID)
	require.NotNil(t, got)
	assert.Equal(t, "first", got.Title)

	require.NoError(t, s.Insert(ctx, models.Note{Title: "other"}))
	quiet(t, byID)

	require.NoError(t, s.Update(ctx, models.Note{ID: 1, Title: "edited"}))
	got = next(t, byID)
	require.NotNil(t, got)
	assert.Equal(t, "edited", got.Title)

	require.NoError(t, s.Delete(ctx, models.Note{ID: 1}))
	assert.Nil(t, next(t, byID))
}

func TestMemoryStore_StreamClosesWithContext(t *testing.T) {
	s := NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())

	all, err := s.ObserveAll(ctx)
	require.NoError(t, err)
	cancel()

	require.Eventually(t, func() bool {
		select {
		case _, ok := <-all:
			return !ok
		default:
			return false
		}
	}, timeout, tick)
	require.Eventually(t, func() bool { return s.feed.Subscribers() == 0 }, timeout, tick)
}
