package server

import (
	"net/http"

	"github.com/rakunlabs/algofab/pkg/apierr"
	"github.com/rakunlabs/algofab/pkg/auth"
)

const (
	headerID  = "easyapi-id"
	headerKey = "easyapi-key"
)

// authenticate extracts and verifies the easyapi-id/easyapi-key header
// pair, mirroring the source routers' dependency on Authenticator.check,
// and returns the caller's granted access set.
func (s *Server) authenticate(r *http.Request) (string, auth.AccessSet, error) {
	id := r.Header.Get(headerID)
	key := r.Header.Get(headerKey)
	if id == "" || key == "" {
		return "", auth.AccessSet{}, apierr.New(apierr.KindForbidden, "missing easyapi-id/easyapi-key headers")
	}

	ok, err := s.deps.Authenticator.Authenticate(r.Context(), id, key)
	if err != nil {
		return "", auth.AccessSet{}, apierr.Wrap(apierr.KindForbidden, "authentication check failed", err)
	}
	if !ok {
		return "", auth.AccessSet{}, apierr.New(apierr.KindForbidden, "invalid credentials")
	}

	access, found, err := s.deps.Authenticator.AccessFor(r.Context(), id)
	if err != nil {
		return "", auth.AccessSet{}, apierr.Wrap(apierr.KindForbidden, "access lookup failed", err)
	}
	if !found {
		return "", auth.AccessSet{}, apierr.New(apierr.KindForbidden, "invalid credentials")
	}

	return id, access, nil
}
