// Package viewer serves PDG payloads as live-updating SVG pages.
package viewer

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/leapstack-labs/pdgview/internal/pdg"
	"github.com/leapstack-labs/pdgview/internal/source"
	"github.com/leapstack-labs/pdgview/internal/svg"
	"github.com/leapstack-labs/pdgview/internal/ui/features/viewer/pages"
	"github.com/leapstack-labs/pdgview/internal/ui/notifier"
	"github.com/starfederation/datastar-go/datastar"
)

// Session keys for the last viewed payload.
const (
	SessionName = "pdgview"
	sessionScan = "scan"
	sessionFile = "file"
)

// PayloadStore is a Source whose payloads can be enumerated.
type PayloadStore interface {
	source.Source
	List(ctx context.Context) ([]source.Ref, error)
}

// Handlers provides HTTP handlers for the viewer feature.
type Handlers struct {
	store        PayloadStore
	normalizer   *pdg.Normalizer
	sessionStore sessions.Store
	notifier     *notifier.Notifier
	logger       *slog.Logger
	isDev        bool
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(store PayloadStore, sessionStore sessions.Store, notify *notifier.Notifier, logger *slog.Logger, isDev bool) *Handlers {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handlers{
		store:        store,
		normalizer:   pdg.NewNormalizer(logger),
		sessionStore: sessionStore,
		notifier:     notify,
		logger:       logger,
		isDev:        isDev,
	}
}

// refFromRequest reads and validates the scan and file ids of the route.
func refFromRequest(r *http.Request) (source.Ref, error) {
	ref := source.Ref{
		ScanID: chi.URLParam(r, "scanID"),
		FileID: chi.URLParam(r, "fileID"),
	}
	if err := source.ValidateID(ref.ScanID); err != nil {
		return ref, err
	}
	if err := source.ValidateID(ref.FileID); err != nil {
		return ref, err
	}
	return ref, nil
}

// load fetches and normalizes the payload for ref. A nil result means the
// payload could not be fetched and the placeholder should be shown.
func (h *Handlers) load(ctx context.Context, ref source.Ref) (*pdg.Result, error) {
	p, err := h.store.Fetch(ctx, ref.ScanID, ref.FileID)
	if err != nil {
		return nil, err
	}
	return h.normalizer.Normalize(p), nil
}

// canvas returns the graph to draw for ref, or nil for the placeholder.
func (h *Handlers) canvas(ctx context.Context, ref source.Ref) *pdg.Graph {
	res, err := h.load(ctx, ref)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			h.logger.Warn("failed to load pdg payload", "ref", ref.String(), "error", err)
		}
		return nil
	}
	return &res.Graph
}

// Index lists the available payloads. With ?resume=1 it redirects to the
// payload last viewed in this session.
func (h *Handlers) Index(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("resume") == "1" {
		if ref, ok := h.lastViewed(r); ok {
			http.Redirect(w, r, pages.ViewerPath(ref), http.StatusSeeOther)
			return
		}
	}

	refs, err := h.store.List(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if err := pages.IndexPage(refs, h.isDev).Render(r.Context(), w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// ViewerPage renders the page shell for one payload. The graph itself
// arrives over the updates stream.
func (h *Handlers) ViewerPage(w http.ResponseWriter, r *http.Request) {
	ref, err := refFromRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.remember(w, r, ref)

	if err := pages.ViewerPage(ref, h.isDev).Render(r.Context(), w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// ViewerUpdates is the long-lived SSE endpoint for a viewer page. It sends
// the rendered graph at once and again whenever the payload changes.
func (h *Handlers) ViewerUpdates(w http.ResponseWriter, r *http.Request) {
	ref, err := refFromRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	sse := datastar.NewSSE(w, r)
	clientID := uuid.NewString()
	logger := h.logger.With("client", clientID, "ref", ref.String())

	updates := h.notifier.Subscribe(ref)
	defer h.notifier.Unsubscribe(updates)
	logger.Debug("sse client connected")

	ctx := r.Context()
	if err := sse.PatchElementTempl(svg.Component(h.canvas(ctx, ref))); err != nil {
		_ = sse.ConsoleError(err)
	}

	for {
		select {
		case <-ctx.Done():
			logger.Debug("sse client disconnected")
			return
		case <-updates:
			logger.Debug("payload changed, re-rendering")
			if err := sse.PatchElementTempl(svg.Component(h.canvas(ctx, ref))); err != nil {
				_ = sse.ConsoleError(err)
				// Don't return - keep trying on next update
			}
		}
	}
}

// SVG serves the rendered graph as a standalone image.
func (h *Handlers) SVG(w http.ResponseWriter, r *http.Request) {
	ref, err := refFromRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	if err := svg.Render(w, h.canvas(r.Context(), ref)); err != nil {
		h.logger.Debug("failed to write svg", "error", err)
	}
}

// Graph serves the canonical graph and the decoder that produced it.
func (h *Handlers) Graph(w http.ResponseWriter, r *http.Request) {
	ref, err := refFromRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	res, err := h.load(r.Context(), ref)
	switch {
	case errors.Is(err, source.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	case err != nil:
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, res)
}

// remember stores ref as the session's last viewed payload.
func (h *Handlers) remember(w http.ResponseWriter, r *http.Request, ref source.Ref) {
	session, err := h.sessionStore.Get(r, SessionName)
	if err != nil {
		// A stale or tampered cookie yields a fresh session; keep going.
		h.logger.Debug("discarding session", "error", err)
	}
	session.Values[sessionScan] = ref.ScanID
	session.Values[sessionFile] = ref.FileID
	if err := session.Save(r, w); err != nil {
		h.logger.Warn("failed to save session", "error", err)
	}
}

// lastViewed returns the payload remembered in the session.
func (h *Handlers) lastViewed(r *http.Request) (source.Ref, bool) {
	session, err := h.sessionStore.Get(r, SessionName)
	if err != nil {
		return source.Ref{}, false
	}
	scan, _ := session.Values[sessionScan].(string)
	file, _ := session.Values[sessionFile].(string)
	ref := source.Ref{ScanID: scan, FileID: file}
	if source.ValidateID(scan) != nil || source.ValidateID(file) != nil {
		return ref, false
	}
	return ref, true
}
