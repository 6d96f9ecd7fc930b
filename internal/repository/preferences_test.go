package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func setupPreferenceMock(t *testing.T) (*PostgresPreferenceRepository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock database: %v", err)
	}
	repo := NewPostgresPreferenceRepository(db)
	cleanup := func() { db.Close() }
	return repo, mock, cleanup
}

func TestGetInt64_Found(t *testing.T) {
	repo, mock, cleanup := setupPreferenceMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT value FROM preferences WHERE key = $1`)).
		WithArgs("steps_goal").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow(int64(12000)))

	v, ok, err := repo.GetInt64(context.Background(), "steps_goal")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok || v != 12000 {
		t.Errorf("GetInt64 = %d, %v; want 12000, true", v, ok)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestGetInt64_Missing(t *testing.T) {
	repo, mock, cleanup := setupPreferenceMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT value FROM preferences`)).
		WithArgs("workout_goal").
		WillReturnRows(sqlmock.NewRows([]string{"value"}))

	_, ok, err := repo.GetInt64(context.Background(), "workout_goal")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("expected missing key to report false")
	}
}

func TestGetInt64_Error(t *testing.T) {
	repo, mock, cleanup := setupPreferenceMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT value FROM preferences`)).
		WillReturnError(errors.New("db down"))

	if _, _, err := repo.GetInt64(context.Background(), "steps_goal"); err == nil {
		t.Error("expected error")
	}
}

func TestPutInt64_Upserts(t *testing.T) {
	repo, mock, cleanup := setupPreferenceMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO preferences (key, value) VALUES ($1, $2)`)).
		WithArgs("steps_goal", int64(8000)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.PutInt64(context.Background(), "steps_goal", 8000); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}
