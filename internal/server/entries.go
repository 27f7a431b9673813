package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rakunlabs/algofab/pkg/apierr"
)

func entryNameFromPath(prefix string, r *http.Request) string {
	name := strings.TrimPrefix(r.URL.Path, prefix)
	return strings.Trim(name, "/")
}

func (s *Server) handleListEntries(w http.ResponseWriter, r *http.Request) {
	_, access, err := s.authenticate(r)
	if err != nil {
		writeAPIErr(w, err)
		return
	}

	skip, limit, full := paginationParams(r)
	algos, err := s.deps.Algorithms.List(skip, limit, full)
	if err != nil {
		writeAPIErr(w, apierr.Wrap(apierr.KindValidation, "invalid pagination", err))
		return
	}

	ids := make([]string, 0, len(algos))
	byID := make(map[string]any, len(algos))
	for _, a := range algos {
		ids = append(ids, a.ID)
		byID[a.ID] = entrySummary(a.ID, a.Name, a.Version, a.Doc)
	}
	allowed := access.Filter(ids)

	out := make([]any, 0, len(allowed))
	for _, id := range allowed {
		out = append(out, byID[id])
	}
	writeJSON(w, http.StatusOK, out)
}

func entrySummary(id, name, version, doc string) map[string]any {
	return map[string]any{"id": id, "name": name, "version": version, "doc": doc}
}

func (s *Server) handleGetEntry(w http.ResponseWriter, r *http.Request) {
	_, access, err := s.authenticate(r)
	if err != nil {
		writeAPIErr(w, err)
		return
	}

	id := entryNameFromPath("/entries/", r)
	algo, ok := s.deps.Algorithms.Get(id)
	if !ok || !access.Allows(id) {
		writeAPIErr(w, apierr.New(apierr.KindNotFound, "unknown algorithm "+id))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"id":      algo.ID,
		"name":    algo.Name,
		"version": algo.Version,
		"doc":     algo.Doc,
		"ref":     algo.Ref,
		"inputs":  algo.Inputs,
		"outputs": algo.Outputs,
	})
}

// handleSubmitTask decodes the POST /entries/{id} body: algorithm inputs
// plus an optional reserved "resources" key declaring the resource vector this
// invocation needs, mirroring the reserved resources kwarg the source
// strips before hashing or routing.
func (s *Server) handleSubmitTask(w http.ResponseWriter, r *http.Request) {
	accessID, access, err := s.authenticate(r)
	if err != nil {
		writeAPIErr(w, err)
		return
	}

	id := entryNameFromPath("/entries/", r)
	algo, ok := s.deps.Algorithms.Get(id)
	if !ok || !access.Allows(id) {
		writeAPIErr(w, apierr.New(apierr.KindNotFound, "unknown algorithm "+id))
		return
	}

	var body map[string]any
	if r.Body != nil {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil && err.Error() != "EOF" {
			writeAPIErr(w, apierr.Wrap(apierr.KindValidation, "malformed request body", err))
			return
		}
	}
	if body == nil {
		body = map[string]any{}
	}

	resources := parseResources(body["resources"])
	delete(body, "resources")

	bound, err := algo.Inputs.BindAll(body)
	if err != nil {
		writeAPIErr(w, apierr.Wrap(apierr.KindMissingParameter, "invalid input", err))
		return
	}

	t := s.newTaskFor(algo.ID, accessID, bound, resources)
	if err := s.deps.Queue.Enqueue(t); err != nil {
		writeAPIErr(w, apierr.Wrap(apierr.KindValidation, "unable to schedule task", err))
		return
	}

	snap := t.Snapshot()
	writeJSON(w, http.StatusOK, map[string]any{
		"task_id":     snap.ID,
		"create_time": snap.CreateTime,
	})
}

func parseResources(v any) map[string]float64 {
	out := map[string]float64{}
	m, ok := v.(map[string]any)
	if !ok {
		return out
	}
	for k, raw := range m {
		if f, ok := raw.(float64); ok {
			out[k] = f
		}
	}
	return out
}
