package server

import (
	"net/http"
	"strings"

	"github.com/rakunlabs/algofab/pkg/apierr"
)

func (s *Server) handleListIOTypes(w http.ResponseWriter, r *http.Request) {
	skip, limit, full := paginationParams(r)
	types, err := s.deps.IOTypes.List(skip, limit, full)
	if err != nil {
		writeAPIErr(w, apierr.Wrap(apierr.KindValidation, "invalid pagination", err))
		return
	}
	writeJSON(w, http.StatusOK, types)
}

func (s *Server) handleGetIOType(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/io/")
	id = strings.Trim(id, "/")
	ty, ok := s.deps.IOTypes.Get(id)
	if !ok {
		writeAPIErr(w, apierr.New(apierr.KindNotFound, "unknown io type "+id))
		return
	}
	writeJSON(w, http.StatusOK, ty)
}
