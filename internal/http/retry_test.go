package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leadpanel/panelctl/internal/config"
	"github.com/leadpanel/panelctl/internal/logging"
)

// flakyServer fails the first n requests with 503.
func flakyServer(t *testing.T, n int32) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) <= n {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"success":false,"error":"busy"}`))
			return
		}
		_, _ = w.Write([]byte(`{"success":true}`))
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func testConfig(retries int) *config.Config {
	cfg := config.Default()
	cfg.Server.RetryMax = retries
	return cfg
}

func TestReadClientRetriesGet(t *testing.T) {
	srv, hits := flakyServer(t, 2)

	clients, err := NewClients(testConfig(3), logging.NewNopLogger())
	require.NoError(t, err)

	resp, err := clients.Read.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(3), hits.Load())
}

func TestReadClientPassesThroughFinalFailure(t *testing.T) {
	srv, hits := flakyServer(t, 10)

	clients, err := NewClients(testConfig(1), logging.NewNopLogger())
	require.NoError(t, err)

	resp, err := clients.Read.Get(srv.URL)
	require.NoError(t, err, "exhausted retries still return the last response")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, int32(2), hits.Load())
}

func TestWriteClientNeverRetries(t *testing.T) {
	srv, hits := flakyServer(t, 1)

	clients, err := NewClients(testConfig(3), logging.NewNopLogger())
	require.NoError(t, err)

	resp, err := clients.Write.Post(srv.URL, "application/json", strings.NewReader(`{}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, int32(1), hits.Load())
}

func TestRetriesDisabledByDefault(t *testing.T) {
	srv, hits := flakyServer(t, 1)

	clients, err := NewClients(testConfig(0), logging.NewNopLogger())
	require.NoError(t, err)
	assert.Same(t, clients.Write, clients.Read)

	resp, err := clients.Read.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, int32(1), hits.Load())
}

func TestSharedCookieJar(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/upload" {
			http.SetCookie(w, &http.Cookie{Name: "session", Value: "abc", Path: "/"})
			return
		}
		if c, err := r.Cookie("session"); err == nil && c.Value == "abc" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	clients, err := NewClients(testConfig(2), logging.NewNopLogger())
	require.NoError(t, err)

	resp, err := clients.Write.Post(srv.URL+"/upload", "text/plain", nil)
	require.NoError(t, err)
	resp.Body.Close()

	resp, err = clients.Read.Get(srv.URL + "/import")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestIdempotent(t *testing.T) {
	assert.True(t, idempotent(http.MethodGet))
	assert.False(t, idempotent(http.MethodPost))
	assert.False(t, idempotent(http.MethodDelete))
}
