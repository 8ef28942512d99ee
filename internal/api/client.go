package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	nethttp "net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/leadpanel/panelctl/internal/config"
	"github.com/leadpanel/panelctl/internal/http"
	"github.com/leadpanel/panelctl/internal/logging"
	"github.com/leadpanel/panelctl/internal/models"
	"github.com/leadpanel/panelctl/internal/progress"
	"github.com/leadpanel/panelctl/internal/version"
)

// maxBodySize bounds how much of a response is read.
const maxBodySize = 32 << 20

// Client talks to the dashboard backend.
type Client struct {
	baseURL string
	token   string
	read    *nethttp.Client
	write   *nethttp.Client
	log     *logging.Logger

	// newProgress returns the reporter for one upload.
	newProgress func() progress.Reporter
}

// NewClient creates a client for cfg.Server.
func NewClient(cfg *config.Config, logger *logging.Logger) (*Client, error) {
	if cfg == nil || cfg.Server.BaseURL == "" {
		return nil, fmt.Errorf("API base URL is empty: %w", config.ErrMissingBaseURL)
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	clients, err := http.NewClients(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to configure HTTP client: %w", err)
	}

	return &Client{
		baseURL:     cfg.Server.BaseURL,
		token:       cfg.Server.APIToken,
		read:        clients.Read,
		write:       clients.Write,
		log:         logger.Named("api"),
		newProgress: func() progress.Reporter { return progress.NoOpProgress{} },
	}, nil
}

// SetProgress installs the reporter factory used by uploads.
func (c *Client) SetProgress(fn func() progress.Reporter) {
	if fn == nil {
		fn = func() progress.Reporter { return progress.NoOpProgress{} }
	}
	c.newProgress = fn
}

// BaseURL returns the backend root URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body io.Reader) (*nethttp.Request, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := nethttp.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

// do sends a JSON request and decodes the envelope into out.
func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: failed to marshal request body: %w", op, err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := c.newRequest(ctx, method, path, query, reader)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(op, req, out)
}

func (c *Client) get(ctx context.Context, op, path string, query url.Values, out any) error {
	return c.do(ctx, op, nethttp.MethodGet, path, query, nil, out)
}

func (c *Client) post(ctx context.Context, op, path string, body, out any) error {
	return c.do(ctx, op, nethttp.MethodPost, path, nil, body, out)
}

// send executes req. Reads go through the retrying client.
func (c *Client) send(op string, req *nethttp.Request, out any) error {
	client := c.write
	if req.Method == nethttp.MethodGet {
		client = c.read
	}

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		c.log.Error().Err(err).Str("op", op).Str("method", req.Method).Str("path", req.URL.Path).Msg("request failed")
		return &Error{Kind: KindTransport, Op: op, Method: req.Method, Path: req.URL.Path, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return &Error{Kind: KindTransport, Op: op, Method: req.Method, Path: req.URL.Path, Status: resp.StatusCode, Err: err}
	}

	c.log.Debug().
		Str("op", op).
		Str("method", req.Method).
		Str("path", req.URL.Path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("response")

	return decodeEnvelope(op, req, resp.StatusCode, raw, out)
}

// decodeEnvelope maps the body onto the error taxonomy. A body that is not
// a JSON object is a decode error; success:false is an application error
// carrying the backend message.
func decodeEnvelope(op string, req *nethttp.Request, status int, raw []byte, out any) error {
	base := Error{Op: op, Method: req.Method, Path: req.URL.Path, Status: status}

	var env models.Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		base.Kind, base.Err = KindDecode, err
		return &base
	}
	if !env.Success || status >= nethttp.StatusBadRequest {
		base.Kind = KindApplication
		base.Message = env.Error
		if base.Message == "" {
			base.Message = env.Message
		}
		return &base
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		base.Kind, base.Err = KindDecode, err
		return &base
	}
	return nil
}

// upload posts path as the multipart "file" field while reporting progress.
func (c *Client) upload(ctx context.Context, op, endpoint, path string, out any) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%s: failed to open file: %w", op, err)
	}
	defer f.Close()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return fmt.Errorf("%s: failed to create form: %w", op, err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return fmt.Errorf("%s: failed to read file: %w", op, err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("%s: failed to finish form: %w", op, err)
	}

	size := int64(buf.Len())
	reporter := c.newProgress()
	reporter.Start(size, "Subiendo "+filepath.Base(path))
	defer reporter.Finish()

	req, err := c.newRequest(ctx, nethttp.MethodPost, endpoint, nil, progress.NewReader(&buf, reporter))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	req.ContentLength = size
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return c.send(op, req, out)
}
