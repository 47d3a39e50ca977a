package handlers

import (
	"net/http"
	"strconv"

	"github.com/reasonrank/reasongraph/internal/service"
)

type NodeHandler struct {
	engine *service.Engine
}

func NewNodeHandler(engine *service.Engine) *NodeHandler {
	return &NodeHandler{engine: engine}
}

func (h *NodeHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid node id")
		return
	}

	node, err := h.engine.Graph().GetNode(id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, node)
}

func (h *NodeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid node id")
		return
	}

	if err := h.engine.RemoveNode(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *NodeHandler) GetScore(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid node id")
		return
	}

	breakdown, err := h.engine.GetScore(id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, breakdown)
}

// Events returns the most recent propagation events, newest last.
func (h *NodeHandler) Events(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	events := h.engine.RecentEvents(limit)
	writeJSON(w, http.StatusOK, map[string]any{
		"events": events,
		"count":  len(events),
	})
}
