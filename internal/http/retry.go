package http

import (
	"context"
	nethttp "net/http"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog"

	"github.com/leadpanel/panelctl/internal/constants"
	"github.com/leadpanel/panelctl/internal/logging"
)

// retryLogger implements retryablehttp.LeveledLogger on top of zerolog.
// Per-attempt chatter goes to debug; only retries and give-ups surface.
type retryLogger struct {
	log *logging.Logger
}

func (l *retryLogger) Error(msg string, keysAndValues ...interface{}) {
	withFields(l.log.Error(), keysAndValues).Msg(msg)
}

func (l *retryLogger) Info(msg string, keysAndValues ...interface{}) {
	withFields(l.log.Debug(), keysAndValues).Msg(msg)
}

func (l *retryLogger) Debug(msg string, keysAndValues ...interface{}) {
	withFields(l.log.Debug(), keysAndValues).Msg(msg)
}

func (l *retryLogger) Warn(msg string, keysAndValues ...interface{}) {
	withFields(l.log.Warn(), keysAndValues).Msg(msg)
}

func withFields(e *zerolog.Event, kv []interface{}) *zerolog.Event {
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		e = e.Interface(key, kv[i+1])
	}
	return e
}

// readRetryPolicy retries connection errors, 429 and 5xx, but never a
// request whose method may have side effects.
func readRetryPolicy(ctx context.Context, resp *nethttp.Response, err error) (bool, error) {
	if resp != nil && resp.Request != nil && !idempotent(resp.Request.Method) {
		return false, nil
	}
	return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
}

func idempotent(method string) bool {
	switch method {
	case nethttp.MethodGet, nethttp.MethodHead, nethttp.MethodOptions:
		return true
	}
	return false
}

// wrapWithRetry returns an *http.Client that retries reads on base.
// The last response is handed back unchanged after retries run out so the
// caller can still decode the backend's error envelope.
func wrapWithRetry(base *nethttp.Client, retryMax int, logger *logging.Logger) *nethttp.Client {
	rc := retryablehttp.NewClient()
	rc.HTTPClient = base
	rc.RetryMax = retryMax
	rc.RetryWaitMin = constants.RetryWaitMin
	rc.RetryWaitMax = constants.RetryWaitMax
	rc.CheckRetry = readRetryPolicy
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler
	rc.Logger = &retryLogger{log: logger}
	return rc.StandardClient()
}
