// Package apierr defines the error kinds the HTTP surface maps to status
// codes, grounded on the teacher's fmt.Errorf wrapping chains and
// writeError response helper.
package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind identifies a category of request-facing failure.
type Kind string

const (
	KindValidation       Kind = "validation"
	KindMissingParameter Kind = "missing_parameter"
	KindNotFound         Kind = "not_found"
	KindForbidden        Kind = "forbidden"
	KindAlgorithmFailure Kind = "algorithm_failure"
	KindCancelled        Kind = "cancelled"
	KindLoadFailure      Kind = "load_failure"
)

var statusByKind = map[Kind]int{
	KindValidation:       http.StatusBadRequest,
	KindMissingParameter: http.StatusBadRequest,
	KindNotFound:         http.StatusNotFound,
	KindForbidden:        http.StatusUnauthorized,
	KindAlgorithmFailure: http.StatusUnprocessableEntity,
	KindCancelled:        http.StatusConflict,
	KindLoadFailure:      http.StatusInternalServerError,
}

// Error is a request-facing error carrying a Kind the HTTP layer maps to
// a status code, wrapping an underlying cause.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// Status returns the HTTP status code for e's kind, defaulting to 500.
func (e *Error) Status() int {
	if s, ok := statusByKind[e.Kind]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// New builds an *Error of the given kind.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Wrap builds an *Error of the given kind wrapping err.
func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// StatusOf returns the HTTP status for err, unwrapping to find an *Error,
// defaulting to 500 when err isn't one of ours.
func StatusOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Status()
	}
	return http.StatusInternalServerError
}
