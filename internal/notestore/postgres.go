package notestore

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/atinyakov/NoteNest/internal/models"
	"github.com/atinyakov/NoteNest/internal/observable"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

// NoteTable is the persistence surface PostgresStore needs.
// *repository.PostgresNoteRepository implements it.
type NoteTable interface {
	Insert(ctx context.Context, note models.Note) (int64, error)
	Update(ctx context.Context, note models.Note) (int64, error)
	Delete(ctx context.Context, id int64) (int64, error)
	List(ctx context.Context) ([]models.Note, error)
}

const (
	minRetryDelay = 250 * time.Millisecond
	maxRetryDelay = 30 * time.Second
)

// PostgresStore is a Note Store over a notes table. Change notifications come
// from a LISTEN channel fed by a table trigger; every notification triggers a
// full re-read for each observer.
type PostgresStore struct {
	table   NoteTable
	log     *zap.Logger
	changes *observable.Value[uint64]

	// first and last delay between reads after a failed one
	retryMin, retryMax time.Duration
}

// NewPostgresStore creates a PostgresStore and starts consuming notify until
// ctx is done or the channel is closed. notify is normally (*pq.Listener).Notify.
func NewPostgresStore(ctx context.Context, table NoteTable, notify <-chan *pq.Notification, log *zap.Logger) *PostgresStore {
	s := &PostgresStore{
		table:    table,
		log:      log,
		changes:  observable.NewValue[uint64](0),
		retryMin: minRetryDelay,
		retryMax: maxRetryDelay,
	}
	go s.listen(ctx, notify)
	return s
}

func (s *PostgresStore) listen(ctx context.Context, notify <-chan *pq.Notification) {
	var seq uint64
	for {
		select {
		case <-ctx.Done():
			return
		case n, ok := <-notify:
			if !ok {
				return
			}
			// nil is sent after the listener reconnects; anything may have changed.
			if n == nil {
				s.log.Info("notes listener reconnected, reloading")
			} else {
				s.log.Debug("notes changed", zap.String("op", n.Extra))
			}
			seq++
			s.changes.Set(seq)
		}
	}
}

// Insert stores note; a zero ID gets a fresh one.
func (s *PostgresStore) Insert(ctx context.Context, note models.Note) error {
	id, err := s.table.Insert(ctx, note)
	if err != nil {
		return err
	}
	s.log.Debug("note inserted", zap.Int64("id", id))
	return nil
}

// Update overwrites the note with note.ID. Unknown IDs are a no-op.
func (s *PostgresStore) Update(ctx context.Context, note models.Note) error {
	n, err := s.table.Update(ctx, note)
	if err != nil {
		return err
	}
	if n == 0 {
		s.log.Debug("update matched no note", zap.Int64("id", note.ID))
	}
	return nil
}

// Delete removes the note with note.ID. Unknown IDs are a no-op.
func (s *PostgresStore) Delete(ctx context.Context, note models.Note) error {
	n, err := s.table.Delete(ctx, note.ID)
	if err != nil {
		return err
	}
	if n == 0 {
		s.log.Debug("delete matched no note", zap.Int64("id", note.ID))
	}
	return nil
}

// List reads the current collection, newest first.
func (s *PostgresStore) List(ctx context.Context) ([]models.Note, error) {
	notes, err := s.table.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	return notes, nil
}

// ObserveAll streams the full collection, newest first: once on subscribe and
// again after every change notification. Identical consecutive reads are
// not repeated. A failed read is logged and retried with exponential backoff
// until it succeeds or the next notification arrives.
func (s *PostgresStore) ObserveAll(ctx context.Context) (<-chan []models.Note, error) {
	sub := s.changes.Subscribe()
	out := make(chan []models.Note)
	go func() {
		defer close(out)
		defer sub.Close()

		retry := time.NewTimer(s.retryMin)
		retry.Stop()
		defer retry.Stop()

		var (
			last  []models.Note
			sent  bool
			delay = s.retryMin
		)
		for {
			select {
			case <-ctx.Done():
				return
			case <-sub.C():
				retry.Stop()
			case <-retry.C:
			}

			notes, err := s.table.List(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				s.log.Error("failed to reload notes", zap.Duration("retry_in", delay), zap.Error(err))
				retry.Reset(delay)
				delay = min(delay*2, s.retryMax)
				continue
			}
			delay = s.retryMin
			if sent && slices.Equal(last, notes) {
				continue
			}
			select {
			case out <- notes:
				last, sent = notes, true
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

// ObserveByID streams the state of one note until ctx is done.
func (s *PostgresStore) ObserveByID(ctx context.Context, id int64) (<-chan *models.Note, error) {
	all, err := s.ObserveAll(ctx)
	if err != nil {
		return nil, err
	}
	return followNote(ctx, all, id), nil
}
