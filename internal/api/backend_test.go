package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/leadpanel/panelctl/internal/config"
	"github.com/leadpanel/panelctl/internal/logging"
)

// fakeBackend mimics the dashboard's Flask endpoints closely enough for
// the client: JSON envelopes, a session cookie set on upload, and
// success:false errors with 4xx/5xx statuses.
type fakeBackend struct {
	t      *testing.T
	router chi.Router
	srv    *httptest.Server

	mu       sync.Mutex
	requests []*http.Request
	bodies   [][]byte
}

func newFakeBackend(t *testing.T) *fakeBackend {
	t.Helper()
	fb := &fakeBackend{t: t, router: chi.NewRouter()}
	fb.router.Use(fb.record)
	fb.srv = httptest.NewServer(fb.router)
	t.Cleanup(fb.srv.Close)
	return fb
}

func (fb *fakeBackend) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body.Close()
		r.Body = io.NopCloser(bytes.NewReader(body))
		fb.mu.Lock()
		fb.requests = append(fb.requests, r.Clone(r.Context()))
		fb.bodies = append(fb.bodies, body)
		fb.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (fb *fakeBackend) last() (*http.Request, []byte) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	require.NotEmpty(fb.t, fb.requests, "no request reached the backend")
	i := len(fb.requests) - 1
	return fb.requests[i], fb.bodies[i]
}

func (fb *fakeBackend) count() int {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return len(fb.requests)
}

func (fb *fakeBackend) client(t *testing.T) *Client {
	t.Helper()
	cfg := config.Default()
	cfg.Server.BaseURL = fb.srv.URL
	cfg.Server.APIToken = "test-token"
	c, err := NewClient(cfg, logging.NewNopLogger())
	require.NoError(t, err)
	return c
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func ok(fields map[string]any) map[string]any {
	out := map[string]any{"success": true}
	for k, v := range fields {
		out[k] = v
	}
	return out
}

func fail(msg string) map[string]any {
	return map[string]any{"success": false, "error": msg}
}
