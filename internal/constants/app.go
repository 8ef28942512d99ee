package constants

import (
	"time"
)

// List views
const (
	// DefaultPageSize - rows per page when a view does not override it (50)
	DefaultPageSize = 50

	// MaxPageSize - the backend caps page_size; larger values are clamped client-side
	MaxPageSize = 500

	// NullFilterLabel - how a NULL column value is shown in filter option lists
	NullFilterLabel = "(Vacío)"
)

// Notifications
const (
	// NotificationTTL - how long a transient notification stays visible (3s)
	NotificationTTL = 3 * time.Second
)

// Event System
const (
	// EventBusDefaultBuffer - default buffer size for event channels
	EventBusDefaultBuffer = 256

	// EventBusMaxBuffer - maximum buffer size
	EventBusMaxBuffer = 5000
)

// HTTP transport timeouts
const (
	// HTTPClientTimeout - default total request timeout when config does not set one
	HTTPClientTimeout = 30 * time.Second

	// DialTimeout - TCP connect timeout
	DialTimeout = 10 * time.Second

	// KeepAlive - TCP keep-alive period
	KeepAlive = 30 * time.Second

	// TLSHandshakeTimeout - TLS handshake timeout
	TLSHandshakeTimeout = 10 * time.Second

	// ResponseHeaderTimeout - max wait for response headers once the request is written
	ResponseHeaderTimeout = 30 * time.Second

	// IdleConnTimeout - how long idle keep-alive connections stay pooled
	IdleConnTimeout = 90 * time.Second

	// MaxIdleConns - idle connection pool size
	MaxIdleConns = 20

	// MaxIdleConnsPerHost - idle connections per host
	MaxIdleConnsPerHost = 10
)

// Retry configuration for read requests. Retries are off unless retry_max > 0.
const (
	// RetryWaitMin - minimum backoff between retries
	RetryWaitMin = 500 * time.Millisecond

	// RetryWaitMax - maximum backoff between retries
	RetryWaitMax = 5 * time.Second
)

// CLI output
const (
	// SpinnerInterval - frame interval of the loading spinner
	SpinnerInterval = 150 * time.Millisecond

	// ProgressThrottle - minimum interval between progress bar redraws
	ProgressThrottle = 100 * time.Millisecond
)
