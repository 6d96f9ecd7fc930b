// Package notestore provides Note Store implementations: durable keyed
// collections of notes that publish their full contents on every change.
package notestore

import (
	"context"
	"sort"
	"sync"

	"github.com/atinyakov/NoteNest/internal/models"
	"github.com/atinyakov/NoteNest/internal/observable"
)

// MemoryStore keeps notes in process. It is safe for concurrent use.
type MemoryStore struct {
	mu     sync.Mutex
	notes  map[int64]models.Note
	nextID int64
	feed   *observable.Value[[]models.Note]
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		notes:  make(map[int64]models.Note),
		nextID: 1,
		feed:   observable.NewValue([]models.Note{}),
	}
}

// Insert stores n. A zero ID gets a fresh one; an existing ID is replaced.
func (s *MemoryStore) Insert(_ context.Context, n models.Note) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n.ID == 0 {
		n.ID = s.nextID
	}
	if n.ID >= s.nextID {
		s.nextID = n.ID + 1
	}
	s.notes[n.ID] = n
	s.publish()
	return nil
}

// Update replaces the note with n.ID. Unknown IDs are ignored.
func (s *MemoryStore) Update(_ context.Context, n models.Note) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	old, ok := s.notes[n.ID]
	if !ok || old == n {
		return nil
	}
	s.notes[n.ID] = n
	s.publish()
	return nil
}

// Delete removes the note with n.ID. Unknown IDs are ignored.
func (s *MemoryStore) Delete(_ context.Context, n models.Note) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.notes[n.ID]; !ok {
		return nil
	}
	delete(s.notes, n.ID)
	s.publish()
	return nil
}

// List returns the current collection, newest first.
func (s *MemoryStore) List(context.Context) ([]models.Note, error) {
	return s.feed.Get(), nil
}

// ObserveAll streams the full collection, newest first, until ctx is done.
func (s *MemoryStore) ObserveAll(ctx context.Context) (<-chan []models.Note, error) {
	sub := s.feed.Subscribe()
	out := make(chan []models.Note)
	go func() {
		defer close(out)
		defer sub.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case notes := <-sub.C():
				select {
				case out <- notes:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

// ObserveByID streams the state of one note until ctx is done.
func (s *MemoryStore) ObserveByID(ctx context.Context, id int64) (<-chan *models.Note, error) {
	all, err := s.ObserveAll(ctx)
	if err != nil {
		return nil, err
	}
	return followNote(ctx, all, id), nil
}

// publish must be called with s.mu held.
func (s *MemoryStore) publish() {
	notes := make([]models.Note, 0, len(s.notes))
	for _, n := range s.notes {
		notes = append(notes, n)
	}
	sortNewestFirst(notes)
	s.feed.Set(notes)
}

func sortNewestFirst(notes []models.Note) {
	sort.Slice(notes, func(i, j int) bool {
		if notes[i].Timestamp != notes[j].Timestamp {
			return notes[i].Timestamp > notes[j].Timestamp
		}
		return notes[i].ID > notes[j].ID
	})
}
