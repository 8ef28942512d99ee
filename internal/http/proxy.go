package http

import (
	"crypto/tls"
	"fmt"
	"net"
	nethttp "net/http"
	"net/url"

	ntlmssp "github.com/Azure/go-ntlmssp"
	"golang.org/x/net/http/httpproxy"

	"github.com/leadpanel/panelctl/internal/config"
	"github.com/leadpanel/panelctl/internal/constants"
	"github.com/leadpanel/panelctl/internal/logging"
)

// newTransport returns the base transport shared by every client.
func newTransport() *nethttp.Transport {
	return &nethttp.Transport{
		DialContext: (&net.Dialer{
			Timeout:   constants.DialTimeout,
			KeepAlive: constants.KeepAlive,
		}).DialContext,
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
		MaxIdleConns:          constants.MaxIdleConns,
		MaxIdleConnsPerHost:   constants.MaxIdleConnsPerHost,
		IdleConnTimeout:       constants.IdleConnTimeout,
		TLSHandshakeTimeout:   constants.TLSHandshakeTimeout,
		ResponseHeaderTimeout: constants.ResponseHeaderTimeout,
		ForceAttemptHTTP2:     true,
	}
}

// ConfigureRoundTripper builds the transport for the configured proxy mode.
// Basic and NTLM modes without a host fall back to a direct connection so a
// half-written config never locks the user out of "config set".
func ConfigureRoundTripper(cfg config.ProxyConfig, logger *logging.Logger) (nethttp.RoundTripper, error) {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	transport := newTransport()

	switch cfg.Mode {
	case config.ProxyNone, "":
		transport.Proxy = nil
		return transport, nil

	case config.ProxySystem:
		transport.Proxy = nethttp.ProxyFromEnvironment
		return transport, nil

	case config.ProxyBasic, config.ProxyNTLM:
		if cfg.Host == "" {
			logger.Warn().Str("mode", cfg.Mode).Msg("proxy host is missing, connecting directly")
			transport.Proxy = nil
			return transport, nil
		}
		if cfg.User != "" && cfg.Password == "" {
			logger.Warn().Str("user", cfg.User).Msg("proxy user configured but password missing, proxy auth disabled")
		}

		transport.Proxy = proxyFuncWithBypass(buildProxyURL(cfg), cfg.NoProxy, logger)
		if cfg.Mode == config.ProxyNTLM {
			// Negotiator speaks the NTLM handshake and needs a stable connection.
			transport.ForceAttemptHTTP2 = false
			return ntlmssp.Negotiator{RoundTripper: transport}, nil
		}
		return transport, nil

	default:
		return nil, fmt.Errorf("unsupported proxy mode: %s", cfg.Mode)
	}
}

// buildProxyURL constructs a proxy URL from config
func buildProxyURL(cfg config.ProxyConfig) *url.URL {
	port := cfg.Port
	if port == 0 {
		port = 8080
	}

	proxyURL := &url.URL{
		Scheme: "http",
		Host:   net.JoinHostPort(cfg.Host, fmt.Sprint(port)),
	}

	// Only embed credentials when both halves are present; an empty
	// password in the URL fails auth on some proxies.
	if cfg.User != "" && cfg.Password != "" {
		proxyURL.User = url.UserPassword(cfg.User, cfg.Password)
	}
	return proxyURL
}

// proxyFuncWithBypass returns a proxy function that respects the NoProxy
// bypass list. With an empty list it behaves like nethttp.ProxyURL.
func proxyFuncWithBypass(proxyURL *url.URL, noProxy string, logger *logging.Logger) func(*nethttp.Request) (*url.URL, error) {
	if noProxy == "" {
		return nethttp.ProxyURL(proxyURL)
	}
	pc := httpproxy.Config{
		HTTPProxy:  proxyURL.String(),
		HTTPSProxy: proxyURL.String(),
		NoProxy:    noProxy,
	}
	proxyFunc := pc.ProxyFunc()
	return func(req *nethttp.Request) (*url.URL, error) {
		result, err := proxyFunc(req.URL)
		if result == nil {
			logger.Debug().Str("host", req.URL.Host).Msg("proxy bypass")
		} else {
			logger.Debug().Str("host", req.URL.Host).Str("proxy", result.Host).Msg("proxied")
		}
		return result, err
	}
}

// NeedsProxyPassword reports whether the proxy needs a password that has
// not been provided, so the CLI can prompt for it.
func NeedsProxyPassword(cfg config.ProxyConfig) bool {
	if cfg.Mode != config.ProxyBasic && cfg.Mode != config.ProxyNTLM {
		return false
	}
	return cfg.User != "" && cfg.Password == ""
}
