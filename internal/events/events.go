// Package events is an in-process publish/subscribe bus. Publishing never
// blocks: a subscriber whose buffer is full misses the event.
package events

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/leadpanel/panelctl/internal/constants"
)

// EventType defines the types of events that can be emitted
type EventType string

// EventNotification carries a message shown to the user. List view event
// types live in package listview.
const EventNotification EventType = "notification"

// Level is the severity of a user-facing notification.
type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelInfo:
		return "info"
	case LevelSuccess:
		return "success"
	case LevelError:
		return "error"
	default:
		return "unknown"
	}
}

// Event is the base interface for all events
type Event interface {
	Type() EventType
	Timestamp() time.Time
}

// BaseEvent provides common event fields
type BaseEvent struct {
	EventType EventType
	Time      time.Time
}

func (e BaseEvent) Type() EventType      { return e.EventType }
func (e BaseEvent) Timestamp() time.Time { return e.Time }

// NewBase stamps an event header with the current time.
func NewBase(t EventType) BaseEvent {
	return BaseEvent{EventType: t, Time: time.Now()}
}

// NotificationEvent mirrors a message shown to the user.
type NotificationEvent struct {
	BaseEvent
	Level   Level
	Message string
}

// subscription is one subscriber channel. A nil types set receives every
// event type.
type subscription struct {
	ch    chan Event
	types map[EventType]struct{}
}

func (s *subscription) wants(t EventType) bool {
	if s.types == nil {
		return true
	}
	_, ok := s.types[t]
	return ok
}

// EventBus fans events out to subscriber channels in subscription order.
type EventBus struct {
	mu         sync.RWMutex
	subs       []*subscription
	bufferSize int
	closed     bool
	dropped    atomic.Int64
}

// NewEventBus creates a bus whose subscriber channels hold bufferSize
// events. Out of range sizes are clamped to the package defaults.
func NewEventBus(bufferSize int) *EventBus {
	switch {
	case bufferSize <= 0:
		bufferSize = constants.EventBusDefaultBuffer
	case bufferSize > constants.EventBusMaxBuffer:
		bufferSize = constants.EventBusMaxBuffer
	}
	return &EventBus{bufferSize: bufferSize}
}

// Subscribe returns a channel receiving events of the given types, or of
// every type when none are given.
func (eb *EventBus) Subscribe(types ...EventType) <-chan Event {
	s := &subscription{}
	if len(types) > 0 {
		s.types = make(map[EventType]struct{}, len(types))
		for _, t := range types {
			s.types[t] = struct{}{}
		}
	}

	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		ch := make(chan Event)
		close(ch)
		return ch
	}
	s.ch = make(chan Event, eb.bufferSize)
	eb.subs = append(eb.subs, s)
	return s.ch
}

// Publish delivers event to every interested subscriber that has room.
func (eb *EventBus) Publish(event Event) {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	if eb.closed {
		return
	}
	for _, s := range eb.subs {
		if !s.wants(event.Type()) {
			continue
		}
		select {
		case s.ch <- event:
		default:
			eb.dropped.Add(1)
		}
	}
}

// PublishNotification publishes a NotificationEvent.
func (eb *EventBus) PublishNotification(level Level, message string) {
	eb.Publish(&NotificationEvent{
		BaseEvent: NewBase(EventNotification),
		Level:     level,
		Message:   message,
	})
}

// Unsubscribe closes ch and stops delivering to it. Unknown channels are
// ignored.
func (eb *EventBus) Unsubscribe(ch <-chan Event) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		return
	}
	for i, s := range eb.subs {
		if s.ch == ch {
			eb.subs = append(eb.subs[:i], eb.subs[i+1:]...)
			close(s.ch)
			return
		}
	}
}

// Close closes every subscriber channel. Later publishes are ignored and
// later subscriptions get a closed channel.
func (eb *EventBus) Close() {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		return
	}
	eb.closed = true
	for _, s := range eb.subs {
		close(s.ch)
	}
	eb.subs = nil
}

// Dropped returns how many deliveries were skipped because a subscriber
// buffer was full.
func (eb *EventBus) Dropped() int64 {
	return eb.dropped.Load()
}
