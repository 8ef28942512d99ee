package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

// dashboard is a fake backend for command tests. Handlers are added per
// test; every request is recorded.
type dashboard struct {
	t      *testing.T
	router chi.Router
	srv    *httptest.Server

	mu       sync.Mutex
	requests []recorded
}

type recorded struct {
	method string
	path   string
	query  url.Values
	body   []byte
}

func newDashboard(t *testing.T) *dashboard {
	t.Helper()
	d := &dashboard{t: t, router: chi.NewRouter()}
	d.router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, _ := io.ReadAll(r.Body)
			r.Body.Close()
			r.Body = io.NopCloser(bytes.NewReader(body))
			d.mu.Lock()
			d.requests = append(d.requests, recorded{method: r.Method, path: r.URL.Path, query: r.URL.Query(), body: body})
			d.mu.Unlock()
			next.ServeHTTP(w, r)
		})
	})
	d.srv = httptest.NewServer(d.router)
	t.Cleanup(d.srv.Close)
	return d
}

// to returns the recorded requests for path, oldest first.
func (d *dashboard) to(path string) []recorded {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []recorded
	for _, r := range d.requests {
		if r.path == path {
			out = append(out, r)
		}
	}
	return out
}

func (d *dashboard) lastTo(path string) recorded {
	d.t.Helper()
	reqs := d.to(path)
	require.NotEmpty(d.t, reqs, "no request to %s", path)
	return reqs[len(reqs)-1]
}

func reply(w http.ResponseWriter, status int, fields map[string]any) {
	body := map[string]any{"success": status < 400}
	for k, v := range fields {
		body[k] = v
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// cliRun is the result of one command invocation.
type cliRun struct {
	out    string
	errOut string
	err    error
}

// run executes the CLI against d with stdin and a throwaway config file.
func (d *dashboard) run(stdin string, args ...string) cliRun {
	d.t.Helper()
	return runCLI(d.t, stdin, append([]string{"--base-url", d.srv.URL, "--token", "test-token"}, args...)...)
}

func runCLI(t *testing.T, stdin string, args ...string) cliRun {
	t.Helper()
	root := NewRootCmd()
	AddCommands(root)

	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(stdin))
	if !hasFlag(args, "--config") {
		args = append([]string{"--config", filepath.Join(t.TempDir(), "panelctl.ini")}, args...)
	}
	root.SetArgs(args)

	err := root.Execute()
	return cliRun{out: out.String(), errOut: errOut.String(), err: err}
}

func hasFlag(args []string, flag string) bool {
	for _, a := range args {
		if a == flag || strings.HasPrefix(a, flag+"=") {
			return true
		}
	}
	return false
}

// prospectPage serves a fixed prospects page of total rows.
func prospectPage(total int, rows ...map[string]any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		if rows == nil {
			rows = []map[string]any{}
		}
		reply(w, http.StatusOK, map[string]any{
			"data":  rows,
			"total": total,
			"page":  page,
		})
	}
}
