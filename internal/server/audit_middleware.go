package server

import (
	"net/http"
	"time"
)

type statusCapture struct {
	http.ResponseWriter
	status int
}

func (w *statusCapture) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// auditMiddleware records every request into the server's bounded audit
// ring, run last in the chain so it sees the final response status.
func (s *Server) auditMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			capture := &statusCapture{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(capture, r)

			if s.deps.Audit == nil {
				return
			}
			s.deps.Audit.Record(AuditEntry{
				Time:     time.Now().UTC(),
				AccessID: r.Header.Get(headerID),
				Method:   r.Method,
				Path:     r.URL.Path,
				Status:   capture.status,
			})
		})
	}
}
