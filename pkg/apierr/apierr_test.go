package apierr

import (
	"errors"
	"net/http"
	"testing"
)

func TestStatusOfMapsKinds(t *testing.T) {
	cases := []struct {
		kind Kind
		want int
	}{
		{KindValidation, http.StatusBadRequest},
		{KindNotFound, http.StatusNotFound},
		{KindForbidden, http.StatusUnauthorized},
		{KindAlgorithmFailure, http.StatusUnprocessableEntity},
		{KindCancelled, http.StatusConflict},
	}
	for _, c := range cases {
		err := New(c.kind, "x")
		if got := StatusOf(err); got != c.want {
			t.Fatalf("kind %v: expected status %d, got %d", c.kind, c.want, got)
		}
	}
}

func TestStatusOfDefaultsTo500ForUnknownError(t *testing.T) {
	if got := StatusOf(errors.New("plain error")); got != http.StatusInternalServerError {
		t.Fatalf("expected 500 for non-apierr error, got %d", got)
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("underlying")
	wrapped := Wrap(KindLoadFailure, "could not load", cause)
	if !errors.Is(wrapped, cause) {
		t.Fatalf("expected wrapped error to unwrap to cause")
	}
}
