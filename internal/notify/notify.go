// Package notify shows transient user-facing messages on the terminal.
// A message stays active for a fixed TTL and is then dismissed; a newer
// message replaces it immediately.
package notify

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/leadpanel/panelctl/internal/constants"
	"github.com/leadpanel/panelctl/internal/events"
	"github.com/leadpanel/panelctl/internal/logging"
)

// Message is one notification.
type Message struct {
	Level events.Level
	Text  string
	At    time.Time
}

// Config holds notifier settings.
type Config struct {
	// Enabled determines if messages are shown. Disabled notifiers still log.
	Enabled bool
	// TTL is how long a message stays active. Zero means NotificationTTL.
	TTL time.Duration
	// Out receives one line per message. Nil means stderr.
	Out io.Writer
	// Bus, when set, also receives a NotificationEvent per message.
	Bus *events.EventBus
}

// DefaultConfig returns the default notification configuration.
func DefaultConfig() *Config {
	return &Config{Enabled: true, TTL: constants.NotificationTTL}
}

// Notifier shows messages. It satisfies listview.Notifier.
type Notifier struct {
	logger *logging.Logger
	out    io.Writer
	ttl    time.Duration
	bus    *events.EventBus

	mu      sync.RWMutex
	enabled bool
	current *Message
	seq     uint64
}

// NewNotifier creates a notifier with the given configuration.
func NewNotifier(cfg *Config, logger *logging.Logger) *Notifier {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	out := cfg.Out
	if out == nil {
		out = os.Stderr
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = constants.NotificationTTL
	}
	return &Notifier{
		logger:  logger.Named("notify"),
		out:     out,
		ttl:     ttl,
		bus:     cfg.Bus,
		enabled: cfg.Enabled,
	}
}

// Success shows a success message.
func (n *Notifier) Success(message string) { n.show(events.LevelSuccess, message) }

// Error shows an error message as given.
func (n *Notifier) Error(message string) { n.show(events.LevelError, message) }

// Info shows an informational message.
func (n *Notifier) Info(message string) { n.show(events.LevelInfo, message) }

func (n *Notifier) show(level events.Level, text string) {
	n.logger.Debug().Str("level", level.String()).Str("message", text).Msg("notification")

	n.mu.Lock()
	if !n.enabled {
		n.mu.Unlock()
		return
	}
	n.seq++
	seq := n.seq
	msg := Message{Level: level, Text: text, At: time.Now()}
	n.current = &msg
	_, _ = fmt.Fprintln(n.out, Format(msg))
	n.mu.Unlock()

	if n.bus != nil {
		n.bus.PublishNotification(level, text)
	}

	// Each message owns its timer. A later message bumps seq, so an older
	// timer firing leaves the newer message in place.
	time.AfterFunc(n.ttl, func() { n.dismiss(seq) })
}

func (n *Notifier) dismiss(seq uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.seq == seq {
		n.current = nil
	}
}

// Active returns the message currently shown, if any.
func (n *Notifier) Active() (Message, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	if n.current == nil {
		return Message{}, false
	}
	return *n.current, true
}

// Format renders msg as one line with a level marker.
func Format(msg Message) string {
	switch msg.Level {
	case events.LevelSuccess:
		return "✓ " + msg.Text
	case events.LevelError:
		return "✗ " + msg.Text
	default:
		return "i " + msg.Text
	}
}
