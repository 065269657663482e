package viewer

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	"github.com/leapstack-labs/pdgview/internal/ui/notifier"
)

// SetupRoutes registers the viewer feature routes.
func SetupRoutes(
	router chi.Router,
	store PayloadStore,
	sessionStore sessions.Store,
	notify *notifier.Notifier,
	logger *slog.Logger,
	isDev bool,
) error {
	handlers := NewHandlers(store, sessionStore, notify, logger, isDev)

	router.Get("/", handlers.Index)

	router.Route("/scans/{scanID}/pdg/{fileID}", func(r chi.Router) {
		// Page route (shell with placeholder canvas)
		r.Get("/", handlers.ViewerPage)

		// SSE route (live updates only)
		r.Get("/updates", handlers.ViewerUpdates)

		r.Get("/svg", handlers.SVG)
		r.Get("/graph", handlers.Graph)
	})

	return nil
}
