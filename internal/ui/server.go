// Package ui provides the web viewer for PDG payloads.
package ui

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/sessions"
	"github.com/leapstack-labs/pdgview/internal/source"
	"github.com/leapstack-labs/pdgview/internal/ui/notifier"
	"github.com/leapstack-labs/pdgview/internal/ui/router"
	"golang.org/x/sync/errgroup"
)

// debounceDelay coalesces the bursts of events editors emit per save.
const debounceDelay = 100 * time.Millisecond

// Server is the main UI server.
type Server struct {
	store        *source.DirSource
	sessionStore *sessions.CookieStore
	port         int
	watch        bool
	dev          bool
	logger       *slog.Logger
	notifier     *notifier.Notifier
}

// Config holds configuration for the UI server.
type Config struct {
	Store         *source.DirSource
	Port          int
	Watch         bool
	Dev           bool
	SessionSecret string
	Logger        *slog.Logger
}

// NewServer creates a new UI server instance.
func NewServer(cfg Config) *Server {
	sessionStore := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	sessionStore.MaxAge(86400 * 30) // 30 days
	sessionStore.Options.Path = "/"
	sessionStore.Options.HttpOnly = true
	sessionStore.Options.SameSite = http.SameSiteLaxMode

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Server{
		store:        cfg.Store,
		sessionStore: sessionStore,
		port:         cfg.Port,
		watch:        cfg.Watch,
		dev:          cfg.Dev,
		logger:       logger,
		notifier:     notifier.New(),
	}
}

// Handler builds the HTTP handler with all routes and middleware.
func (s *Server) Handler() (http.Handler, error) {
	r := chi.NewMux()
	r.Use(
		middleware.Logger,
		middleware.Recoverer,
		middleware.Compress(5),
	)

	if err := router.SetupRoutes(r, s.store, s.sessionStore, s.notifier, s.logger, s.dev); err != nil {
		return nil, fmt.Errorf("failed to setup routes: %w", err)
	}
	return r, nil
}

// Serve starts the UI server and blocks until the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Info("starting UI server", "addr", fmt.Sprintf("http://localhost:%d", s.port), "payload_dir", s.store.Root())

	handler, err := s.Handler()
	if err != nil {
		return err
	}

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:    addr,
		Handler: handler,
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	if s.watch {
		eg.Go(func() error {
			return s.watchPayloads(egctx)
		})
	}

	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down UI server...")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

// IsDev reports whether hot reload is enabled.
func (s *Server) IsDev() bool {
	return s.dev
}

// Notifier returns the server's notifier for SSE updates.
func (s *Server) Notifier() *notifier.Notifier {
	return s.notifier
}

// watchPayloads re-renders open viewers when their payload file changes.
func (s *Server) watchPayloads(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	root := s.store.Root()
	if err := watchDirRecursive(watcher, root); err != nil {
		s.logger.Error("failed to watch payload directory", "path", root, "error", err)
		// Don't fail - continue without watching
	}

	d := newDebouncer(debounceDelay)
	defer d.stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			s.handleEvent(watcher, d, event)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Error("watcher error", "error", err)
		}
	}
}

func (s *Server) handleEvent(watcher *fsnotify.Watcher, d *debouncer, event fsnotify.Event) {
	// New scan directories need their own watch.
	if event.Has(fsnotify.Create) && filepath.Dir(event.Name) == filepath.Clean(s.store.Root()) {
		if err := watcher.Add(event.Name); err == nil {
			s.logger.Debug("watching new scan", "path", event.Name)
			s.announceScan(d, event.Name)
		}
		return
	}

	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return
	}

	ref, ok := source.RefFromPath(event.Name, s.store.Root())
	if !ok {
		return
	}

	s.announce(d, ref, event.Op.String())
}

// announceScan notifies viewers of payloads that were already in a scan
// directory when its watch was added. Files moved in with the directory
// produce no events of their own.
func (s *Server) announceScan(d *debouncer, dir string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		s.logger.Debug("failed to read new scan", "path", dir, "error", err)
		return
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if ref, ok := source.RefFromPath(filepath.Join(dir, e.Name()), s.store.Root()); ok {
			s.announce(d, ref, "scan added")
		}
	}
}

func (s *Server) announce(d *debouncer, ref source.Ref, op string) {
	d.trigger(ref, func() {
		s.logger.Debug("payload changed", "ref", ref.String(), "op", op)
		s.notifier.Broadcast(ref)
	})
}

// watchDirRecursive adds a directory and all subdirectories to the watcher.
func watchDirRecursive(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
}

// debouncer runs the latest callback per payload once events stop.
type debouncer struct {
	mu     sync.Mutex
	delay  time.Duration
	timers map[source.Ref]*time.Timer
}

func newDebouncer(delay time.Duration) *debouncer {
	return &debouncer{delay: delay, timers: make(map[source.Ref]*time.Timer)}
}

func (d *debouncer) trigger(ref source.Ref, fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if t, ok := d.timers[ref]; ok {
		t.Stop()
	}
	var t *time.Timer
	t = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		if d.timers[ref] == t {
			delete(d.timers, ref)
		}
		d.mu.Unlock()
		fn()
	})
	d.timers[ref] = t
}

func (d *debouncer) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for ref, t := range d.timers {
		t.Stop()
		delete(d.timers, ref)
	}
}
