// Package repository provides persistence implementations for notes and
// preferences using a PostgreSQL database.
package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/atinyakov/NoteNest/internal/models"
)

// PostgresNoteRepository implements note persistence against a PostgreSQL database.
type PostgresNoteRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresNoteRepository creates a new PostgresNoteRepository using the provided *sql.DB.
// db must be a valid connection to a PostgreSQL instance.
func NewPostgresNoteRepository(db *sql.DB) *PostgresNoteRepository {
	return &PostgresNoteRepository{DB: db}
}

// Insert stores a note and returns its ID.
// A note without ID gets one from the table sequence; a note with an ID
// replaces any existing row with that ID.
//
//	ctx:  context for cancellation and deadlines
//	note: the note to store
func (r *PostgresNoteRepository) Insert(ctx context.Context, note models.Note) (int64, error) {
	var id int64
	var err error
	if note.IsNew() {
		err = r.DB.QueryRowContext(ctx, `
			INSERT INTO notes (title, content, category, timestamp)
			VALUES ($1, $2, $3, $4)
			RETURNING id
		`, note.Title, note.Content, string(note.Category), note.Timestamp).Scan(&id)
	} else {
		err = r.DB.QueryRowContext(ctx, `
			INSERT INTO notes (id, title, content, category, timestamp)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (id) DO UPDATE SET
				title = EXCLUDED.title,
				content = EXCLUDED.content,
				category = EXCLUDED.category,
				timestamp = EXCLUDED.timestamp
			RETURNING id
		`, note.ID, note.Title, note.Content, string(note.Category), note.Timestamp).Scan(&id)
	}
	if err != nil {
		return 0, fmt.Errorf("insert note: %w", err)
	}
	return id, nil
}

// Update overwrites the note with the same ID.
// It returns the number of affected rows; 0 means no such note.
func (r *PostgresNoteRepository) Update(ctx context.Context, note models.Note) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE notes SET title = $1, content = $2, category = $3, timestamp = $4
		WHERE id = $5
	`, note.Title, note.Content, string(note.Category), note.Timestamp, note.ID)
	if err != nil {
		return 0, fmt.Errorf("update note: %w", err)
	}
	return res.RowsAffected()
}

// Delete removes the note with the given ID.
// It returns the number of affected rows; 0 means no such note.
func (r *PostgresNoteRepository) Delete(ctx context.Context, id int64) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM notes WHERE id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("delete note: %w", err)
	}
	return res.RowsAffected()
}

// List fetches all notes, newest first.
func (r *PostgresNoteRepository) List(ctx context.Context) ([]models.Note, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, title, content, category, timestamp FROM notes ORDER BY timestamp DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	defer rows.Close()

	notes := []models.Note{}
	for rows.Next() {
		var (
			n        models.Note
			category string
		)
		if err := rows.Scan(&n.ID, &n.Title, &n.Content, &category, &n.Timestamp); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		n.Category = models.Category(category)
		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	return notes, nil
}
