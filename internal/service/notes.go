// Package service provides the note repository the controller talks to,
// delegating persistence and change notification to a NoteStore.
package service

import (
	"context"

	"github.com/atinyakov/NoteNest/internal/models"
)

// NoteStore defines the persistence operations needed by the NoteService.
type NoteStore interface {
	// Insert stores a note. A zero ID means a fresh ID is assigned.
	Insert(ctx context.Context, note models.Note) error
	// Update overwrites the note with the same ID.
	Update(ctx context.Context, note models.Note) error
	// Delete removes the note with the same ID.
	Delete(ctx context.Context, note models.Note) error
	// List returns the current collection, newest first.
	List(ctx context.Context) ([]models.Note, error)
	// ObserveAll emits the full collection, newest first, on subscribe and on every change.
	ObserveAll(ctx context.Context) (<-chan []models.Note, error)
	// ObserveByID emits the state of one note (nil when absent) on subscribe and on every change.
	ObserveByID(ctx context.Context, id int64) (<-chan *models.Note, error)
}

// NoteService is a pass-through adapter exposing a NoteStore's change
// streams and mutations. It adds no policy of its own.
type NoteService struct {
	// store is the underlying note store.
	store NoteStore
}

// NewNoteService constructs a NoteService with the provided NoteStore.
func NewNoteService(store NoteStore) *NoteService {
	return &NoteService{store: store}
}

// Insert forwards to the store.
func (s *NoteService) Insert(ctx context.Context, note models.Note) error {
	return s.store.Insert(ctx, note)
}

// Update forwards to the store.
func (s *NoteService) Update(ctx context.Context, note models.Note) error {
	return s.store.Update(ctx, note)
}

// Delete forwards to the store.
func (s *NoteService) Delete(ctx context.Context, note models.Note) error {
	return s.store.Delete(ctx, note)
}

// List returns the store's current collection.
func (s *NoteService) List(ctx context.Context) ([]models.Note, error) {
	return s.store.List(ctx)
}

// ObserveAll returns the store's collection stream.
func (s *NoteService) ObserveAll(ctx context.Context) (<-chan []models.Note, error) {
	return s.store.ObserveAll(ctx)
}

// ObserveByID returns the store's stream for one note.
func (s *NoteService) ObserveByID(ctx context.Context, id int64) (<-chan *models.Note, error) {
	return s.store.ObserveByID(ctx, id)
}
