// Package apperr defines the error taxonomy shared by handlers and stores.
package apperr

import (
	"errors"
	"net/http"
)

// Kind classifies an error for the HTTP layer.
type Kind int

const (
	KindUpstream Kind = iota
	KindUnauthenticated
	KindProfileMissing
	KindForbidden
	KindPendingApproval
	KindValidation
	KindNotFound
	KindInvalidState
	KindConflict
)

var kindNames = map[Kind]string{
	KindUpstream:        "upstream_failure",
	KindUnauthenticated: "unauthenticated",
	KindProfileMissing:  "profile_missing",
	KindForbidden:       "forbidden",
	KindPendingApproval: "pending_approval",
	KindValidation:      "validation_error",
	KindNotFound:        "not_found",
	KindInvalidState:    "invalid_state",
	KindConflict:        "conflict",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// Error is a classified error with a message safe to show to callers.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Message == "" {
		return e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// New returns an Error of the given kind.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Wrap attaches a kind and message to an underlying error.
func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

func Unauthenticated(msg string) *Error { return New(KindUnauthenticated, msg) }
func ProfileMissing(msg string) *Error  { return New(KindProfileMissing, msg) }
func Forbidden(msg string) *Error       { return New(KindForbidden, msg) }
func PendingApproval(msg string) *Error { return New(KindPendingApproval, msg) }
func Validation(msg string) *Error      { return New(KindValidation, msg) }
func NotFound(msg string) *Error        { return New(KindNotFound, msg) }
func InvalidState(msg string) *Error    { return New(KindInvalidState, msg) }
func Conflict(msg string) *Error        { return New(KindConflict, msg) }

// Upstream wraps a store or collaborator failure, passing its message through.
func Upstream(err error) *Error {
	return Wrap(KindUpstream, err.Error(), err)
}

// KindOf reports the kind of err. Unclassified errors are KindUpstream.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUpstream
}

// Is reports whether err is classified as kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Status maps a kind to its HTTP status code.
func Status(kind Kind) int {
	switch kind {
	case KindValidation, KindInvalidState:
		return http.StatusBadRequest
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden, KindProfileMissing, KindPendingApproval:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the caller-facing message for err.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Error()
	}
	return err.Error()
}
