package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/rakunlabs/algofab/pkg/apierr"
)

func decodeJSON(r *http.Request, v any) error {
	if r.Body == nil {
		return nil
	}
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil && err.Error() != "EOF" {
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, err error, status int) {
	writeJSON(w, status, map[string]any{"error": err.Error()})
}

// writeAPIErr maps an apierr.Error (or any error) to its HTTP status.
func writeAPIErr(w http.ResponseWriter, err error) {
	writeJSON(w, apierr.StatusOf(err), map[string]any{"error": err.Error()})
}

// paginationParams parses the ?skip=&limit=&full= query parameters
// shared by the /io/ and /entries/ listing endpoints.
func paginationParams(r *http.Request) (skip, limit int, full bool) {
	q := r.URL.Query()
	skip, _ = strconv.Atoi(q.Get("skip"))
	limit, _ = strconv.Atoi(q.Get("limit"))
	full = q.Get("full") == "true" || q.Get("full") == "1"
	return
}
