package listview

import (
	"github.com/leadpanel/panelctl/internal/events"
)

// List view event types
const (
	EventListLoading      events.EventType = "list_loading"
	EventListLoaded       events.EventType = "list_loaded"
	EventListError        events.EventType = "list_error"
	EventSelectionChanged events.EventType = "selection_changed"
	EventQueryChanged     events.EventType = "query_changed"
)

// ListLoadingEvent is published when a reload is issued.
type ListLoadingEvent struct {
	events.BaseEvent
	View  string
	Token uint64
	Query Query
}

// ListLoadedEvent is published after a response has been applied.
type ListLoadedEvent struct {
	events.BaseEvent
	View       string
	Token      uint64
	Query      Query
	Count      int
	Total      int
	TotalPages int
}

// ListErrorEvent is published when a reload or bulk action fails.
type ListErrorEvent struct {
	events.BaseEvent
	View  string
	Op    string
	Query Query
	Error error
}

// SelectionChangedEvent is published when the selection or select mode changes.
type SelectionChangedEvent struct {
	events.BaseEvent
	View       string
	SelectMode bool
	Count      int
}

// QueryChangedEvent is published when a mutator changed the pending query.
type QueryChangedEvent struct {
	events.BaseEvent
	View  string
	Query Query
}

func newListLoadingEvent(view string, token uint64, q Query) *ListLoadingEvent {
	return &ListLoadingEvent{BaseEvent: events.NewBase(EventListLoading), View: view, Token: token, Query: q}
}

func newListLoadedEvent(view string, token uint64, q Query, count, total, totalPages int) *ListLoadedEvent {
	return &ListLoadedEvent{
		BaseEvent:  events.NewBase(EventListLoaded),
		View:       view,
		Token:      token,
		Query:      q,
		Count:      count,
		Total:      total,
		TotalPages: totalPages,
	}
}

func newListErrorEvent(view, op string, q Query, err error) *ListErrorEvent {
	return &ListErrorEvent{BaseEvent: events.NewBase(EventListError), View: view, Op: op, Query: q, Error: err}
}

func newSelectionChangedEvent(view string, selectMode bool, count int) *SelectionChangedEvent {
	return &SelectionChangedEvent{
		BaseEvent:  events.NewBase(EventSelectionChanged),
		View:       view,
		SelectMode: selectMode,
		Count:      count,
	}
}

func newQueryChangedEvent(view string, q Query) *QueryChangedEvent {
	return &QueryChangedEvent{BaseEvent: events.NewBase(EventQueryChanged), View: view, Query: q}
}
