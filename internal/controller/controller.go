// Package controller holds the note controller: the current note collection
// and search query as two independent pieces of reactive state, combined into
// a filtered view that clients observe.
package controller

import (
	"context"
	"time"

	"github.com/atinyakov/NoteNest/internal/models"
	"github.com/atinyakov/NoteNest/internal/observable"
	"go.uber.org/zap"
)

// DefaultStopTimeout is how long shared streams outlive their last subscriber.
const DefaultStopTimeout = 500 * time.Millisecond

// NoteRepository defines the operations the controller forwards to.
// *service.NoteService implements it.
type NoteRepository interface {
	Insert(ctx context.Context, note models.Note) error
	Update(ctx context.Context, note models.Note) error
	Delete(ctx context.Context, note models.Note) error
	List(ctx context.Context) ([]models.Note, error)
	ObserveAll(ctx context.Context) (<-chan []models.Note, error)
	ObserveByID(ctx context.Context, id int64) (<-chan *models.Note, error)
}

// Option configures a NoteController.
type Option func(*NoteController)

// WithStopTimeout sets how long the note streams stay subscribed upstream
// after their last observer leaves.
func WithStopTimeout(d time.Duration) Option {
	return func(c *NoteController) { c.stopTimeout = d }
}

// WithClock replaces the clock used to stamp saved notes.
func WithClock(now func() time.Time) Option {
	return func(c *NoteController) { c.now = now }
}

// NoteController combines the stored notes with the search query.
//
// Mutations are fire-and-forget: they are queued, issued to the repository in
// call order, and their effect is observed through the next store
// notification. Repository failures are logged, never returned.
type NoteController struct {
	repo        NoteRepository
	log         *zap.Logger
	stopTimeout time.Duration
	now         func() time.Time

	allNotes *observable.Shared[[]models.Note]
	query    *observable.Value[string]
	filtered *observable.Shared[[]models.Note]

	mutations *dispatcher
}

// NewNoteController creates a NoteController on top of repo.
func NewNoteController(repo NoteRepository, log *zap.Logger, opts ...Option) *NoteController {
	c := &NoteController{
		repo:        repo,
		log:         log,
		stopTimeout: DefaultStopTimeout,
		now:         time.Now,
		query:       observable.NewDistinct(""),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.allNotes = observable.Share([]models.Note{}, c.stopTimeout,
		observable.FromChannel(repo.ObserveAll, func(err error) {
			c.log.Error("failed to observe notes", zap.Error(err))
		}))
	c.filtered = observable.Share([]models.Note{}, c.stopTimeout,
		observable.Combine[[]models.Note, string, []models.Note](c.allNotes, c.query, FilterNotes))
	c.mutations = newDispatcher()
	return c
}

// SetSearchQuery replaces the search query. An empty query disables filtering.
func (c *NoteController) SetSearchQuery(q string) {
	c.query.Set(q)
}

// SearchQuery returns the current search query.
func (c *NoteController) SearchQuery() string {
	return c.query.Get()
}

// WatchSearchQuery subscribes to search query changes.
func (c *NoteController) WatchSearchQuery() *observable.Subscription[string] {
	return c.query.Subscribe()
}

// WatchAllNotes subscribes to the unfiltered collection, newest first.
func (c *NoteController) WatchAllNotes() *observable.Subscription[[]models.Note] {
	return c.allNotes.Subscribe()
}

// WatchFilteredNotes subscribes to the filtered view.
func (c *NoteController) WatchFilteredNotes() *observable.Subscription[[]models.Note] {
	return c.filtered.Subscribe()
}

// AddNote saves n as a new note. Its ID is ignored; the store assigns one.
func (c *NoteController) AddNote(n models.Note) {
	n.ID = 0
	n.Timestamp = c.now().UnixMilli()
	if n.Category == "" {
		n.Category = models.Personal
	}
	c.enqueue("insert", n, c.repo.Insert)
}

// UpdateNote overwrites the note with n.ID.
func (c *NoteController) UpdateNote(n models.Note) {
	n.Timestamp = c.now().UnixMilli()
	if n.Category == "" {
		n.Category = models.Personal
	}
	c.enqueue("update", n, c.repo.Update)
}

// DeleteNote removes the note with n.ID.
func (c *NoteController) DeleteNote(n models.Note) {
	c.enqueue("delete", n, c.repo.Delete)
}

func (c *NoteController) enqueue(op string, n models.Note, fn func(context.Context, models.Note) error) {
	ok := c.mutations.submit(func(ctx context.Context) {
		if err := fn(ctx, n); err != nil {
			c.log.Error("note mutation failed",
				zap.String("op", op),
				zap.Int64("id", n.ID),
				zap.Error(err),
			)
		}
	})
	if !ok {
		c.log.Warn("note mutation after close dropped", zap.String("op", op), zap.Int64("id", n.ID))
	}
}

// GetNoteByID streams the note with id every time it changes, until ctx is
// done. Nothing is emitted while no such note exists.
func (c *NoteController) GetNoteByID(ctx context.Context, id int64) <-chan models.Note {
	out := make(chan models.Note)
	src, err := c.repo.ObserveByID(ctx, id)
	if err != nil {
		c.log.Error("failed to observe note", zap.Int64("id", id), zap.Error(err))
		go func() {
			<-ctx.Done()
			close(out)
		}()
		return out
	}

	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case n, ok := <-src:
				if !ok {
					return
				}
				if n == nil {
					continue
				}
				select {
				case out <- *n:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}

// LookupNote reads the current state of the note with id. Store read
// failures are returned.
func (c *NoteController) LookupNote(ctx context.Context, id int64) (models.Note, bool, error) {
	notes, err := c.repo.List(ctx)
	if err != nil {
		return models.Note{}, false, err
	}
	for _, n := range notes {
		if n.ID == id {
			return n, true, nil
		}
	}
	return models.Note{}, false, nil
}

// Snapshot computes the filtered view from the store's current contents.
// Store read failures are returned.
func (c *NoteController) Snapshot(ctx context.Context) ([]models.Note, error) {
	notes, err := c.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return FilterNotes(notes, c.query.Get()), nil
}

// Close waits for queued mutations and stops the shared streams.
func (c *NoteController) Close() {
	c.mutations.close()
	c.filtered.Close()
	c.allNotes.Close()
}
