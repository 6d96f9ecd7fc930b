// Package db opens the PostgreSQL database, prepares its schema and sets up
// the change listener used by the note store.
package db

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

// NotesChannel is the LISTEN/NOTIFY channel fired on every notes row change.
const NotesChannel = "notes_changed"

const schema = `
CREATE TABLE IF NOT EXISTS notes (
    id BIGSERIAL PRIMARY KEY,
    title TEXT NOT NULL,
    content TEXT NOT NULL,
    category TEXT NOT NULL DEFAULT 'Personal',
    timestamp BIGINT NOT NULL
);

CREATE INDEX IF NOT EXISTS notes_timestamp_idx ON notes (timestamp DESC);

CREATE TABLE IF NOT EXISTS preferences (
    key TEXT PRIMARY KEY,
    value BIGINT NOT NULL
);

CREATE OR REPLACE FUNCTION notify_notes_changed() RETURNS trigger AS $$
BEGIN
    PERFORM pg_notify('` + NotesChannel + `', TG_OP);
    RETURN NULL;
END;
$$ LANGUAGE plpgsql;

DROP TRIGGER IF EXISTS notes_changed ON notes;
CREATE TRIGGER notes_changed
    AFTER INSERT OR UPDATE OR DELETE ON notes
    FOR EACH ROW EXECUTE FUNCTION notify_notes_changed();
`

func InitPostgres(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return db, nil
}
