// Package http provides HTTP handlers exposing the note controller and the
// goals tracker as a JSON API.
package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/atinyakov/NoteNest/internal/models"
	"github.com/atinyakov/NoteNest/internal/observable"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// NoteController defines the controller operations required by the
// NoteHandler.
type NoteController interface {
	// SearchQuery returns the current search query.
	SearchQuery() string
	// SetSearchQuery replaces the search query.
	SetSearchQuery(q string)
	// Snapshot returns the filtered view as of now.
	Snapshot(ctx context.Context) ([]models.Note, error)
	// LookupNote returns the note with id and whether it exists.
	LookupNote(ctx context.Context, id int64) (models.Note, bool, error)
	// WatchFilteredNotes subscribes to every change of the filtered view.
	WatchFilteredNotes() *observable.Subscription[[]models.Note]
	// GetNoteByID streams one note's changes until ctx is done.
	GetNoteByID(ctx context.Context, id int64) <-chan models.Note
	AddNote(n models.Note)
	UpdateNote(n models.Note)
	DeleteNote(n models.Note)
}

// NoteHandler handles HTTP requests for notes and the search query.
type NoteHandler struct {
	// Controller owns the note state.
	Controller NoteController
	// Log records failures that are not reported to the client in detail.
	Log *zap.Logger
}

// NoteRequest is the JSON payload for creating or editing a note.
type NoteRequest struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	Category string `json:"category"`
}

// NotesResponse is the filtered view together with the query that produced it.
type NotesResponse struct {
	Query string        `json:"query"`
	Notes []models.Note `json:"notes"`
}

// SearchRequest is the JSON payload of the search endpoints.
type SearchRequest struct {
	Query string `json:"query"`
}

func (req NoteRequest) toNote() (models.Note, bool) {
	cat, ok := models.ParseCategory(req.Category)
	if !ok {
		return models.Note{}, false
	}
	return models.Note{Title: req.Title, Content: req.Content, Category: cat}, true
}

// List handles GET /api/notes and returns the filtered view.
func (h *NoteHandler) List(w http.ResponseWriter, r *http.Request) {
	query := h.Controller.SearchQuery()
	notes, err := h.Controller.Snapshot(r.Context())
	if err != nil {
		h.Log.Error("failed to read notes", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if notes == nil {
		notes = []models.Note{}
	}
	writeJSON(w, http.StatusOK, NotesResponse{Query: query, Notes: notes})
}

// Create handles POST /api/notes. The note is saved asynchronously.
func (h *NoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	note, ok := decodeNote(w, r)
	if !ok {
		return
	}
	h.Controller.AddNote(note)
	w.WriteHeader(http.StatusAccepted)
}

// Get handles GET /api/notes/{id}.
func (h *NoteHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := noteID(w, r)
	if !ok {
		return
	}
	note, found, err := h.Controller.LookupNote(r.Context(), id)
	if err != nil {
		h.Log.Error("failed to look up note", zap.Int64("id", id), zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if !found {
		http.Error(w, "note not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, note)
}

// Update handles PUT /api/notes/{id}. The note is saved asynchronously.
func (h *NoteHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := noteID(w, r)
	if !ok {
		return
	}
	note, ok := decodeNote(w, r)
	if !ok {
		return
	}
	note.ID = id
	h.Controller.UpdateNote(note)
	w.WriteHeader(http.StatusAccepted)
}

// Delete handles DELETE /api/notes/{id}.
func (h *NoteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := noteID(w, r)
	if !ok {
		return
	}
	h.Controller.DeleteNote(models.Note{ID: id})
	w.WriteHeader(http.StatusAccepted)
}

// GetSearch handles GET /api/search.
func (h *NoteHandler) GetSearch(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, SearchRequest{Query: h.Controller.SearchQuery()})
}

// PutSearch handles PUT /api/search.
func (h *NoteHandler) PutSearch(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	h.Controller.SetSearchQuery(req.Query)
	w.WriteHeader(http.StatusNoContent)
}

func decodeNote(w http.ResponseWriter, r *http.Request) (models.Note, bool) {
	var req NoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return models.Note{}, false
	}
	note, ok := req.toNote()
	if !ok {
		http.Error(w, "unknown category", http.StatusBadRequest)
		return models.Note{}, false
	}
	return note, true
}

func noteID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "invalid note id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
