// Package http builds the HTTP clients panelctl uses to reach the
// dashboard backend: proxy selection, read retries and the session cookie
// jar shared between requests.
package http

import (
	"fmt"
	nethttp "net/http"
	"net/http/cookiejar"

	"github.com/leadpanel/panelctl/internal/config"
	"github.com/leadpanel/panelctl/internal/logging"
)

// Clients pairs the read and write clients. Both share one transport and
// one cookie jar; the spreadsheet import relies on the session cookie set
// by the upload call.
type Clients struct {
	// Read retries GET requests up to the configured retry_max.
	Read *nethttp.Client
	// Write never retries. Mutations go out exactly once.
	Write *nethttp.Client
	// Jar holds the backend session cookie.
	Jar nethttp.CookieJar
}

// NewClients builds the client pair from cfg.
func NewClients(cfg *config.Config, logger *logging.Logger) (*Clients, error) {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	logger = logger.Named("http")

	rt, err := ConfigureRoundTripper(cfg.Proxy, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to configure HTTP transport: %w", err)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	base := &nethttp.Client{
		Transport: rt,
		Jar:       jar,
		Timeout:   cfg.Server.Timeout(),
	}

	read := base
	if cfg.Server.RetryMax > 0 {
		read = wrapWithRetry(base, cfg.Server.RetryMax, logger)
	}

	return &Clients{Read: read, Write: base, Jar: jar}, nil
}
