// Package errors defines typed application errors for the console service.
package errors

import (
	stderrors "errors"
	"net/http"
	"strings"
)

// Kind classifies application failures for consistent HTTP mapping.
type Kind string

const (
	KindUnknown                 Kind = "unknown"
	KindInvalidInput            Kind = "invalid_input"
	KindInvalidSelection        Kind = "invalid_selection"
	KindCollaboratorUnavailable Kind = "collaborator_unavailable"
	KindCollaboratorTimeout     Kind = "collaborator_timeout"
	KindSpawnFailed             Kind = "spawn_failed"
	KindPersistence             Kind = "persistence"
	KindStore                   Kind = "store"
	KindNotFound                Kind = "not_found"
	KindUnavailable             Kind = "unavailable"
)

// Error is a typed console application failure.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

// Error renders the human-readable message.
func (e Error) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return e.Message
}

// Unwrap returns the underlying cause for error chain traversal.
func (e Error) Unwrap() error {
	return e.Cause
}

// E builds a typed Error.
func E(kind Kind, message string) error {
	return Error{Kind: kind, Message: message}
}

// Wrap builds a typed Error that wraps an underlying cause.
func Wrap(kind Kind, message string, cause error) error {
	return Error{Kind: kind, Message: strings.TrimSpace(message), Cause: cause}
}

// KindOf returns the kind of err, or KindUnknown for untyped errors.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var appErr Error
	if !stderrors.As(err, &appErr) {
		return KindUnknown
	}
	return appErr.Kind
}

// HTTPStatus maps an error to an HTTP status code.
func HTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}
	var appErr Error
	if !stderrors.As(err, &appErr) {
		return http.StatusInternalServerError
	}
	switch appErr.Kind {
	case KindInvalidInput, KindInvalidSelection:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindCollaboratorUnavailable, KindUnavailable:
		return http.StatusServiceUnavailable
	case KindCollaboratorTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
