package server

import (
	"net/http"
	"strconv"

	"github.com/rakunlabs/algofab/pkg/apierr"
	"github.com/rakunlabs/algofab/pkg/cache"
)

func (s *Server) handleAdminAudit(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if s.deps.Audit == nil {
		writeJSON(w, http.StatusOK, []AuditEntry{})
		return
	}
	writeJSON(w, http.StatusOK, s.deps.Audit.Recent(limit))
}

// rotateCacheRequest selects the hash algorithm every future signature
// computation should use, mirroring the teacher's RotateEncryptionKey
// admin action generalized from re-encrypting rows to re-hashing the
// cache's signature space going forward (entries recorded under the
// previous algorithm stay in the store but no longer match, since every
// signature computed afterwards uses the new digest).
type rotateCacheRequest struct {
	HashAlgorithm string `json:"hash_algorithm"`
}

func (s *Server) handleAdminCacheRotate(w http.ResponseWriter, r *http.Request) {
	var body rotateCacheRequest
	if err := decodeJSON(r, &body); err != nil {
		writeAPIErr(w, apierr.Wrap(apierr.KindValidation, "malformed request body", err))
		return
	}

	switch cache.HashAlg(body.HashAlgorithm) {
	case cache.HashMD5, cache.HashSHA1, cache.HashSHA224, cache.HashSHA256, cache.HashSHA512:
		*s.deps.CacheHash = cache.HashAlg(body.HashAlgorithm)
	default:
		writeAPIErr(w, apierr.New(apierr.KindValidation, "unknown hash algorithm "+body.HashAlgorithm))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"hash_algorithm": *s.deps.CacheHash})
}
