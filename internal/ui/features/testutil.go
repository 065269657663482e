// Package features provides shared test utilities for UI feature tests.
package features

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/pdgview/internal/source"
	"github.com/leapstack-labs/pdgview/internal/testutil"
	"github.com/leapstack-labs/pdgview/internal/ui/notifier"
)

// TestPayload is a payload file to write into the fixture's directory.
type TestPayload struct {
	ScanID  string
	FileID  string
	Ext     string // ".json" (default) or ".dot"
	Content string
}

// TestFixture holds all dependencies needed for UI handler tests.
type TestFixture struct {
	Root         string
	Store        *source.DirSource
	Notifier     *notifier.Notifier
	SessionStore *sessions.CookieStore

	t *testing.T
}

// SetupTestFixture creates a payload directory holding payloads and a
// DirSource, notifier and session store over it.
func SetupTestFixture(t *testing.T, payloads ...TestPayload) *TestFixture {
	t.Helper()

	f := &TestFixture{
		Root:         t.TempDir(),
		Notifier:     notifier.New(),
		SessionStore: NewTestSessionStore(),
		t:            t,
	}
	f.Store = source.NewDirSource(f.Root, testutil.NewTestLogger(t))

	for _, p := range payloads {
		f.Write(p)
	}
	return f
}

// Write creates or replaces a payload file.
func (f *TestFixture) Write(p TestPayload) string {
	f.t.Helper()

	ext := p.Ext
	if ext == "" {
		ext = source.ExtJSON
	}
	dir := filepath.Join(f.Root, p.ScanID)
	require.NoError(f.t, os.MkdirAll(dir, 0o750))

	path := filepath.Join(dir, p.FileID+ext)
	require.NoError(f.t, os.WriteFile(path, []byte(p.Content), 0o600))
	return path
}

// RequestWithPathParams wraps a request with chi URL params.
func RequestWithPathParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// RequestWithTimeout wraps a request with a context timeout.
func RequestWithTimeout(r *http.Request, timeout time.Duration) *http.Request {
	ctx, cancel := context.WithTimeout(r.Context(), timeout)
	// The timeout releases the context; tests don't need the cancel func.
	_ = cancel
	return r.WithContext(ctx)
}

// NewTestSessionStore creates a session store for testing.
func NewTestSessionStore() *sessions.CookieStore {
	return sessions.NewCookieStore([]byte("test-secret-key-32-bytes-long!!"))
}
