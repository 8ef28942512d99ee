// Package api is the typed client for the CRM dashboard backend.
package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind classifies a failed call.
type Kind int

const (
	// KindTransport means the request was not sent or no response arrived.
	KindTransport Kind = iota + 1
	// KindDecode means the body was not the expected JSON.
	KindDecode
	// KindApplication means the backend answered success:false.
	KindApplication
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindDecode:
		return "decode"
	case KindApplication:
		return "application"
	default:
		return "unknown"
	}
}

// Error is returned by every Client call that reached the network layer.
type Error struct {
	Kind    Kind
	Op      string // e.g. "prospects list"
	Method  string
	Path    string
	Status  int    // 0 for transport errors
	Message string // backend "error" field, verbatim
	Err     error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	switch e.Kind {
	case KindTransport:
		b.WriteString(": request failed")
	case KindDecode:
		fmt.Fprintf(&b, ": unexpected response (status %d)", e.Status)
	case KindApplication:
		fmt.Fprintf(&b, ": backend error (status %d)", e.Status)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// UserMessage is the text shown in a notification. Application errors
// surface the backend message as-is.
func (e *Error) UserMessage() string {
	switch e.Kind {
	case KindApplication:
		if e.Message != "" {
			return e.Message
		}
		return fmt.Sprintf("Error del servidor (%d)", e.Status)
	case KindDecode:
		return fmt.Sprintf("Respuesta inválida del servidor (%d)", e.Status)
	default:
		if e.Err != nil {
			return "Error de conexión: " + e.Err.Error()
		}
		return "Error de conexión"
	}
}

// KindOf returns the Kind of err, or 0 when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// IsNotFound reports whether err is a 404 from the backend.
func IsNotFound(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Status == http.StatusNotFound
}

// IsConflict reports whether err says the resource already exists, such as
// a knowledge base with a taken collection name.
func IsConflict(err error) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	if e.Status == http.StatusConflict {
		return true
	}
	msg := strings.ToLower(e.Message)
	return strings.Contains(msg, "ya existe") || strings.Contains(msg, "already exists")
}

// UserMessage returns the notification text for any error.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.UserMessage()
	}
	return err.Error()
}
