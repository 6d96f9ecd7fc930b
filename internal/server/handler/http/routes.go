package http

import (
	"net/http"

	"github.com/atinyakov/NoteNest/internal/middleware"
	"go.uber.org/zap"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// NewRouter constructs and returns an HTTP handler that serves the notes
// API.
//
// Routes:
//
//	GET    /api/notes          → noteHandler.List
//	POST   /api/notes          → noteHandler.Create
//	GET    /api/notes/ws       → noteHandler.Stream
//	GET    /api/notes/{id}     → noteHandler.Get
//	PUT    /api/notes/{id}     → noteHandler.Update
//	DELETE /api/notes/{id}     → noteHandler.Delete
//	GET    /api/notes/{id}/ws  → noteHandler.WatchNote
//	GET    /api/search         → noteHandler.GetSearch
//	PUT    /api/search         → noteHandler.PutSearch
//	GET    /api/goals          → goalHandler.Today
//	PUT    /api/goals/{kind}   → goalHandler.Set
//
// Middleware chain (applied in order):
//  1. AllowContentType("application/json"), for requests with a body
//  2. WithRequestLogging(logger)
//  3. Recoverer
func NewRouter(
	noteHandler *NoteHandler,
	goalHandler *GoalHandler,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Only allow requests with Content-Type: application/json
	r.Use(chiMiddleware.AllowContentType("application/json"))

	// Log each request and its metadata
	r.Use(middleware.WithRequestLogging(logger))
	r.Use(chiMiddleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Route("/notes", func(r chi.Router) {
			r.Get("/", noteHandler.List)
			r.Post("/", noteHandler.Create)
			r.Get("/ws", noteHandler.Stream)
			r.Get("/{id}", noteHandler.Get)
			r.Put("/{id}", noteHandler.Update)
			r.Delete("/{id}", noteHandler.Delete)
			r.Get("/{id}/ws", noteHandler.WatchNote)
		})
		r.Get("/search", noteHandler.GetSearch)
		r.Put("/search", noteHandler.PutSearch)

		r.Get("/goals", goalHandler.Today)
		r.Put("/goals/{kind}", goalHandler.Set)
	})

	return r
}
