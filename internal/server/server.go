// Package server implements the HTTP/WS surface: IO type listing,
// algorithm entry listing/submission, task status/cancel, and a small
// admin surface. Grounded on the teacher's internal/server/server.go
// middleware chain and route-group layout.
package server

import (
	"context"
	"embed"
	"fmt"
	"net/http"

	"github.com/rakunlabs/ada"
	"github.com/rakunlabs/ada/handler/folder"
	mcors "github.com/rakunlabs/ada/middleware/cors"
	mlog "github.com/rakunlabs/ada/middleware/log"
	mrecover "github.com/rakunlabs/ada/middleware/recover"
	mrequestid "github.com/rakunlabs/ada/middleware/requestid"
	mserver "github.com/rakunlabs/ada/middleware/server"
	mtelemetry "github.com/rakunlabs/ada/middleware/telemetry"

	"github.com/rakunlabs/algofab/internal/config"
	"github.com/rakunlabs/algofab/pkg/algorithm"
	"github.com/rakunlabs/algofab/pkg/auth"
	"github.com/rakunlabs/algofab/pkg/cache"
	"github.com/rakunlabs/algofab/pkg/iotype"
	"github.com/rakunlabs/algofab/pkg/queue"
)

//go:embed all:ui
var uiFS embed.FS

// Deps bundles every component the HTTP surface dispatches into.
type Deps struct {
	IOTypes       *iotype.Registry
	Algorithms    *algorithm.Registry
	Queue         *queue.TaskQueue
	Cache         cache.Cache
	CacheHash     *cache.HashAlg
	Authenticator auth.Authenticator
	Audit         *AuditLog
}

// Server is the running HTTP/WS surface.
type Server struct {
	ctx  context.Context
	cfg  config.Config
	deps Deps
	mux  *ada.Server
}

// New builds the router, wiring every route group and middleware,
// mirroring the order the teacher applies mrecover -> mserver -> mcors
// -> mrequestid -> mlog -> mtelemetry before any route-specific
// middleware like forwardauth.
func New(ctx context.Context, cfg config.Config, deps Deps) (*Server, error) {
	s := &Server{ctx: ctx, cfg: cfg, deps: deps}

	mux := ada.New()
	mux.Use(
		mrecover.Middleware(),
		mserver.Middleware(mserver.WithAddr(cfg.Server.Addr)),
		mcors.Middleware(),
		mrequestid.Middleware(),
		mlog.Middleware(),
		mtelemetry.Middleware(),
		s.auditMiddleware(),
	)

	base := mux.Group(cfg.Server.BasePath)

	base.Get("/", s.handleRoot)
	base.Get("/healthz", s.handleHealthz)

	base.Get("/io/", s.handleListIOTypes)
	base.Get("/io/*", s.handleGetIOType)

	base.Get("/entries/", s.handleListEntries)
	base.Get("/entries/*", s.handleGetEntry)
	base.Post("/entries/*", s.handleSubmitTask)

	base.Get("/tasks/*", s.handleGetTask)
	base.Post("/tasks/*", s.handleTaskAction)

	admin := base.Group("/admin")
	admin.Use(s.adminAuthMiddleware())
	admin.Get("/audit", s.handleAdminAudit)
	admin.Post("/cache/rotate", s.handleAdminCacheRotate)

	base.Handle("/ui/*", folder.New(uiFS, folder.WithStrip("ui")))

	s.mux = mux
	return s, nil
}

// ListenAndServe runs the HTTP server until ctx is cancelled, mirroring
// the into.Init lifecycle the teacher's cmd/at/main.go drives the
// process with.
func (s *Server) ListenAndServe(ctx context.Context) error {
	return s.mux.Run(ctx)
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	accessID, _, err := s.authenticate(r)
	if err != nil {
		writeAPIErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"server": "algofab",
		"id":     accessID,
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

// adminAuthMiddleware checks Authorization: Bearer <AdminToken>,
// mirroring the teacher's adminAuthMiddleware in internal/server/server.go.
func (s *Server) adminAuthMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if s.cfg.AdminToken == "" {
				writeError(w, fmt.Errorf("admin endpoints are disabled: no admin token configured"), http.StatusForbidden)
				return
			}
			want := "Bearer " + s.cfg.AdminToken
			if r.Header.Get("Authorization") != want {
				writeError(w, fmt.Errorf("invalid admin token"), http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
