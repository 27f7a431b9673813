package server

import (
	"net/http"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/rakunlabs/algofab/pkg/apierr"
	"github.com/rakunlabs/algofab/pkg/task"
)

// newTaskFor creates a Task rooted in the server's own lifetime context
// rather than the HTTP request's, so the task keeps running after the
// submitting request completes; only an explicit cancel or process
// shutdown stops it.
func (s *Server) newTaskFor(algorithmID, accessID string, input map[string]any, resources map[string]float64) *task.Task {
	return task.New(s.ctx, algorithmID, accessID, input, resources)
}

// taskIDFromPath extracts the {task_id} segment and trailing action
// (empty, "cancel", or "ws") from /tasks/{task_id}[/action].
func taskIDFromPath(r *http.Request) (id, action string) {
	trimmed := strings.Trim(strings.TrimPrefix(r.URL.Path, "/tasks/"), "/")
	parts := strings.SplitN(trimmed, "/", 2)
	id = parts[0]
	if len(parts) > 1 {
		action = parts[1]
	}
	return
}

// buildTaskResponse renders the three task status shapes — in-queue,
// in-progress, and done — and evicts the task on a done read, mirroring
// the source's build_task_response doing the same eviction inline with
// response construction. A cancelled task is rendered through the done
// shape with success=false and an error mentioning "cancelled", since
// cancellation is a terminal state counted as done with error="cancelled".
func (s *Server) buildTaskResponse(accessID string, t *task.Task) (map[string]any, error) {
	snap := t.Snapshot()
	if snap.AccessID != accessID {
		return nil, apierr.New(apierr.KindNotFound, "unknown task")
	}

	if snap.IsDone() {
		s.deps.Queue.Evict(snap.ID)
		resp := map[string]any{
			"task_id":     snap.ID,
			"algorithm":   snap.AlgorithmID,
			"create_time": snap.CreateTime,
			"start_time":  snap.StartTime,
			"done_time":   snap.EndTime,
			"success":     snap.Err == nil,
		}
		if snap.Err != nil {
			resp["output"] = snap.Err.Error()
		} else {
			resp["output"] = snap.Output
		}
		return resp, nil
	}

	if snap.InProgress() {
		return map[string]any{
			"task_id":     snap.ID,
			"status":      "in-progress",
			"create_time": snap.CreateTime,
			"start_time":  snap.StartTime,
		}, nil
	}

	queueLength, _ := s.deps.Queue.PositionOf(snap.ID)
	return map[string]any{
		"task_id":      snap.ID,
		"status":       "in-queue",
		"create_time":  snap.CreateTime,
		"queue_length": queueLength,
	}, nil
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	accessID, _, err := s.authenticate(r)
	if err != nil {
		writeAPIErr(w, err)
		return
	}

	id, action := taskIDFromPath(r)
	if action == "ws" {
		s.handleTaskWS(w, r, accessID, id)
		return
	}

	t, ok := s.deps.Queue.Lookup(id)
	if !ok {
		writeAPIErr(w, apierr.New(apierr.KindNotFound, "unknown task"))
		return
	}

	resp, err := s.buildTaskResponse(accessID, t)
	if err != nil {
		writeAPIErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleTaskAction(w http.ResponseWriter, r *http.Request) {
	accessID, _, err := s.authenticate(r)
	if err != nil {
		writeAPIErr(w, err)
		return
	}

	id, action := taskIDFromPath(r)
	if action != "cancel" {
		writeAPIErr(w, apierr.New(apierr.KindValidation, "unknown task action "+action))
		return
	}

	t, ok := s.deps.Queue.Lookup(id)
	if !ok {
		writeAPIErr(w, apierr.New(apierr.KindNotFound, "unknown task"))
		return
	}
	if t.AccessID != accessID {
		writeAPIErr(w, apierr.New(apierr.KindNotFound, "unknown task"))
		return
	}

	if err := s.deps.Queue.Cancel(id); err != nil {
		writeJSON(w, http.StatusOK, map[string]any{"task_id": id, "success": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"task_id": id, "success": true})
}

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// handleTaskWS mirrors the source's ConnectionManager: a client connects,
// sends the text command "get", and receives the same JSON
// buildTaskResponse would return over HTTP, looping until disconnect.
func (s *Server) handleTaskWS(w http.ResponseWriter, r *http.Request, accessID, id string) {
	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if string(msg) != "get" {
			_ = conn.WriteJSON(map[string]any{"error": "unknown command"})
			continue
		}

		t, ok := s.deps.Queue.Lookup(id)
		if !ok {
			_ = conn.WriteJSON(map[string]any{"error": "unknown task"})
			continue
		}
		resp, err := s.buildTaskResponse(accessID, t)
		if err != nil {
			_ = conn.WriteJSON(map[string]any{"error": err.Error()})
			continue
		}
		if err := conn.WriteJSON(resp); err != nil {
			return
		}
	}
}
