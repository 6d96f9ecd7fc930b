// Package main initializes and starts the NoteNest server, setting up
// configuration, logging, the note store, the controller, handlers and
// optional TLS.
package main

import (
	"cmp"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	nethttp "net/http"

	"github.com/atinyakov/NoteNest/internal/config"
	"github.com/atinyakov/NoteNest/internal/controller"
	"github.com/atinyakov/NoteNest/internal/db"
	"github.com/atinyakov/NoteNest/internal/goals"
	"github.com/atinyakov/NoteNest/internal/logger"
	"github.com/atinyakov/NoteNest/internal/notestore"
	"github.com/atinyakov/NoteNest/internal/repository"
	"github.com/atinyakov/NoteNest/internal/server/handler/http"
	"github.com/atinyakov/NoteNest/internal/service"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

// storage bundles the backing stores selected by configuration.
type storage struct {
	notes   service.NoteStore
	prefs   goals.PreferenceStore
	closers []io.Closer
}

func (s *storage) Close() error {
	var err error
	for i := len(s.closers) - 1; i >= 0; i-- {
		err = multierr.Append(err, s.closers[i].Close())
	}
	return err
}

func main() {
	// Parse command-line and environment configuration.
	options := config.Parse()

	// Print build metadata (or "N/A" if unset).
	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	// Initialize structured logging.
	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init(options.LogLevel); err != nil {
		fmt.Fprintln(os.Stderr, "failed to init logger:", err)
		os.Exit(1)
	}
	zapLogger := log.Log

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStorage(ctx, options, zapLogger)
	if err != nil {
		zapLogger.Fatal("cannot init storage", zap.Error(err))
	}

	// Repository and controller for notes, tracker for goals.
	noteService := service.NewNoteService(store.notes)
	noteController := controller.NewNoteController(noteService, zapLogger,
		controller.WithStopTimeout(options.StopTimeout))
	tracker := goals.NewTracker(store.prefs, nil, zapLogger)

	router := http.NewRouter(
		&http.NoteHandler{Controller: noteController, Log: zapLogger},
		&http.GoalHandler{Tracker: tracker, Log: zapLogger},
		zapLogger,
	)

	server := &nethttp.Server{
		Addr:              options.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	useTLS := options.TLSCert != "" && options.TLSKey != ""
	if useTLS {
		server.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	serveErr := make(chan error, 1)
	go func() {
		if useTLS {
			zapLogger.Info("starting HTTPS server", zap.String("addr", options.Port))
			serveErr <- server.ListenAndServeTLS(options.TLSCert, options.TLSKey)
			return
		}
		zapLogger.Info("starting HTTP server", zap.String("addr", options.Port))
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, nethttp.ErrServerClosed) {
			zapLogger.Error("server failed", zap.Error(err))
		}
	case <-ctx.Done():
		zapLogger.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err = server.Shutdown(shutdownCtx)

	// Drain queued mutations before the stores go away.
	noteController.Close()
	stop()
	err = multierr.Append(err, store.Close())
	if err != nil {
		zapLogger.Error("shutdown finished with errors", zap.Error(err))
	}
}

// openStorage selects PostgreSQL when a DSN is configured and in-memory
// storage otherwise.
func openStorage(ctx context.Context, options *config.Options, log *zap.Logger) (*storage, error) {
	if options.DatabaseDSN == "" {
		log.Info("no database configured, notes are kept in memory")
		return &storage{
			notes: notestore.NewMemoryStore(),
			prefs: goals.NewMemoryPreferences(),
		}, nil
	}

	// Initialize PostgreSQL connection.
	postgresDB, err := db.InitPostgres(options.DatabaseDSN)
	if err != nil {
		return nil, err
	}
	s := &storage{closers: []io.Closer{postgresDB}}

	listener, err := db.NewNotesListener(options.DatabaseDSN, log)
	if err != nil {
		_ = s.Close()
		return nil, err
	}
	s.closers = append(s.closers, listener)

	// Keep the change feed connection alive.
	db.StartListenerKeepAlive(ctx, listener, options.KeepAlive, log)

	s.notes = notestore.NewPostgresStore(ctx, repository.NewPostgresNoteRepository(postgresDB), listener.Notify, log)
	s.prefs = repository.NewPostgresPreferenceRepository(postgresDB)
	return s, nil
}
