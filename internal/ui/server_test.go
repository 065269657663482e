package ui

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/leapstack-labs/pdgview/internal/source"
	"github.com/leapstack-labs/pdgview/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePayload(t *testing.T, root, scan, file, content string) string {
	t.Helper()
	dir := filepath.Join(root, scan)
	require.NoError(t, os.MkdirAll(dir, 0o750))
	path := filepath.Join(dir, file)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func newTestServer(t *testing.T, root string) *Server {
	t.Helper()
	logger := testutil.NewTestLogger(t)
	return NewServer(Config{
		Store:         source.NewDirSource(root, logger),
		Watch:         true,
		SessionSecret: "test-secret-key-32-bytes-long!!",
		Logger:        logger,
	})
}

func TestServer_Handler(t *testing.T) {
	root := t.TempDir()
	writePayload(t, root, "scan-1", "main.dot", `digraph { a [label="gets", color="red"]; }`)

	handler, err := newTestServer(t, root).Handler()
	require.NoError(t, err)

	tests := []struct {
		path     string
		status   int
		contains string
	}{
		{"/", http.StatusOK, "scan-1"},
		{"/scans/scan-1/pdg/main", http.StatusOK, "pdg-canvas"},
		{"/scans/scan-1/pdg/main/svg", http.StatusOK, "gets"},
		{"/scans/scan-1/pdg/main/graph", http.StatusOK, `"source": "dot"`},
		{"/static/pdgview.css", http.StatusOK, ".canvas"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.status, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.contains)
		})
	}
}

func TestServer_IsDev(t *testing.T) {
	assert.False(t, NewServer(Config{Store: source.NewDirSource(t.TempDir(), nil)}).IsDev())
	assert.True(t, NewServer(Config{Store: source.NewDirSource(t.TempDir(), nil), Dev: true}).IsDev())
}

func TestServer_WatchBroadcastsChangedPayload(t *testing.T) {
	root := t.TempDir()
	writePayload(t, root, "scan-1", "main.json", `{"pdg_data":{"nodes":{"a":{}}}}`)
	writePayload(t, root, "scan-1", "other.json", `{"pdg_data":{"nodes":{"b":{}}}}`)

	s := newTestServer(t, root)
	mainCh := s.Notifier().Subscribe(source.Ref{ScanID: "scan-1", FileID: "main"})
	otherCh := s.Notifier().Subscribe(source.Ref{ScanID: "scan-1", FileID: "other"})
	defer s.Notifier().Unsubscribe(mainCh)
	defer s.Notifier().Unsubscribe(otherCh)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.watchPayloads(ctx) }()
	defer func() {
		cancel()
		require.NoError(t, <-done)
	}()

	// Give the watcher time to register the directories.
	time.Sleep(100 * time.Millisecond)

	writePayload(t, root, "scan-1", "main.json", `{"pdg_data":{"nodes":{"c":{}}}}`)

	select {
	case <-mainCh:
	case <-time.After(2 * time.Second):
		t.Fatal("main listener was not notified")
	}

	select {
	case <-otherCh:
		t.Fatal("other listener should not be notified")
	case <-time.After(300 * time.Millisecond):
	}
}

func TestServer_WatchPicksUpNewScan(t *testing.T) {
	root := t.TempDir()

	s := newTestServer(t, root)
	ch := s.Notifier().Subscribe(source.Ref{ScanID: "scan-9", FileID: "late"})
	defer s.Notifier().Unsubscribe(ch)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.watchPayloads(ctx) }()
	defer func() {
		cancel()
		require.NoError(t, <-done)
	}()

	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.MkdirAll(filepath.Join(root, "scan-9"), 0o750))
	time.Sleep(100 * time.Millisecond)
	writePayload(t, root, "scan-9", "late.dot", `digraph { a; }`)

	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatal("listener on new scan was not notified")
	}
}

func TestServer_WatchAnnouncesFilesInMovedScan(t *testing.T) {
	root := t.TempDir()
	staging := t.TempDir()
	writePayload(t, staging, "scan-7", "early.json", `{"pdg_data":{"nodes":{"a":{}}}}`)

	s := newTestServer(t, root)
	ch := s.Notifier().Subscribe(source.Ref{ScanID: "scan-7", FileID: "early"})
	defer s.Notifier().Unsubscribe(ch)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.watchPayloads(ctx) }()
	defer func() {
		cancel()
		require.NoError(t, <-done)
	}()

	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.Rename(filepath.Join(staging, "scan-7"), filepath.Join(root, "scan-7")))

	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatal("payload already in the new scan was not announced")
	}
}

func TestDebouncer_CoalescesPerRef(t *testing.T) {
	d := newDebouncer(50 * time.Millisecond)
	defer d.stop()

	a := source.Ref{ScanID: "s", FileID: "a"}
	b := source.Ref{ScanID: "s", FileID: "b"}

	var aCalls, bCalls atomic.Int32
	var wg sync.WaitGroup
	wg.Add(2)

	for i := 0; i < 5; i++ {
		d.trigger(a, func() { aCalls.Add(1); wg.Done() })
	}
	d.trigger(b, func() { bCalls.Add(1); wg.Done() })

	wg.Wait()
	time.Sleep(100 * time.Millisecond)

	assert.Equal(t, int32(1), aCalls.Load())
	assert.Equal(t, int32(1), bCalls.Load())
}

func TestDebouncer_Stop(t *testing.T) {
	d := newDebouncer(50 * time.Millisecond)

	var calls atomic.Int32
	d.trigger(source.Ref{ScanID: "s", FileID: "a"}, func() { calls.Add(1) })
	d.stop()

	time.Sleep(100 * time.Millisecond)
	assert.Zero(t, calls.Load())
}
