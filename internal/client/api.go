// Package client talks to the notes server over its JSON API and provides
// the interactive shell used by cmd/client.
package client

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/atinyakov/NoteNest/internal/goals"
	"github.com/atinyakov/NoteNest/internal/models"
	"github.com/go-resty/resty/v2"
)

// ErrNotFound is returned when the requested note does not exist.
var ErrNotFound = errors.New("not found")

// APIError is a non-success response from the server.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Body)
}

// NoteInput is the editable part of a note.
type NoteInput struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	Category string `json:"category"`
}

// Notes is the server's filtered view and the query that produced it.
type Notes struct {
	Query string        `json:"query"`
	Notes []models.Note `json:"notes"`
}

// API is a client for the notes server.
type API struct {
	http *resty.Client
}

// NewAPI creates a client for the server at baseURL.
func NewAPI(baseURL string) *API {
	c := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(10 * time.Second).
		SetHeader("Accept", "application/json")
	return &API{http: c}
}

// List returns the current filtered view.
func (a *API) List(ctx context.Context) (Notes, error) {
	var out Notes
	resp, err := a.http.R().SetContext(ctx).SetResult(&out).Get("/api/notes")
	if err := check(resp, err); err != nil {
		return Notes{}, err
	}
	return out, nil
}

// Get returns the note with id.
func (a *API) Get(ctx context.Context, id int64) (models.Note, error) {
	var out models.Note
	resp, err := a.http.R().SetContext(ctx).SetResult(&out).Get(notePath(id))
	if err := check(resp, err); err != nil {
		return models.Note{}, err
	}
	return out, nil
}

// Add creates a note. The server saves it asynchronously.
func (a *API) Add(ctx context.Context, in NoteInput) error {
	resp, err := a.http.R().SetContext(ctx).SetBody(in).Post("/api/notes")
	return check(resp, err)
}

// Edit overwrites the note with id.
func (a *API) Edit(ctx context.Context, id int64, in NoteInput) error {
	resp, err := a.http.R().SetContext(ctx).SetBody(in).Put(notePath(id))
	return check(resp, err)
}

// Delete removes the note with id.
func (a *API) Delete(ctx context.Context, id int64) error {
	resp, err := a.http.R().SetContext(ctx).Delete(notePath(id))
	return check(resp, err)
}

// Search sets the server's search query.
func (a *API) Search(ctx context.Context, q string) error {
	resp, err := a.http.R().SetContext(ctx).SetBody(map[string]string{"query": q}).Put("/api/search")
	return check(resp, err)
}

// Goals returns today's progress.
func (a *API) Goals(ctx context.Context) (goals.Daily, error) {
	var out goals.Daily
	resp, err := a.http.R().SetContext(ctx).SetResult(&out).Get("/api/goals")
	if err := check(resp, err); err != nil {
		return goals.Daily{}, err
	}
	return out, nil
}

// SetGoal stores a goal from raw user input and returns the saved value.
func (a *API) SetGoal(ctx context.Context, kind, value string) (int64, error) {
	var out struct {
		Goal int64 `json:"goal"`
	}
	resp, err := a.http.R().
		SetContext(ctx).
		SetBody(map[string]string{"value": value}).
		SetResult(&out).
		Put("/api/goals/" + kind)
	if err := check(resp, err); err != nil {
		return 0, err
	}
	return out.Goal, nil
}

func notePath(id int64) string {
	return "/api/notes/" + strconv.FormatInt(id, 10)
}

func check(resp *resty.Response, err error) error {
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	if resp.StatusCode() == 404 {
		return ErrNotFound
	}
	if resp.IsError() {
		return &APIError{Status: resp.StatusCode(), Body: string(resp.Body())}
	}
	return nil
}
