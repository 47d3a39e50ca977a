package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/reasonrank/reasongraph/internal/service"
)

type EdgeHandler struct {
	engine *service.Engine
}

func NewEdgeHandler(engine *service.Engine) *EdgeHandler {
	return &EdgeHandler{engine: engine}
}

type createEdgeRequest struct {
	SourceID   string  `json:"source_id"`
	TargetID   string  `json:"target_id"`
	Relevance  float64 `json:"relevance,omitempty"`
	Similarity float64 `json:"similarity,omitempty"`
}

func (req *createEdgeRequest) endpoints() (source, target uuid.UUID, err error) {
	source, err = uuid.Parse(req.SourceID)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	target, err = uuid.Parse(req.TargetID)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return source, target, nil
}

func (h *EdgeHandler) CreateSupports(w http.ResponseWriter, r *http.Request) {
	var req createEdgeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	source, target, err := req.endpoints()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid node id")
		return
	}

	edge, err := h.engine.LinkSupports(r.Context(), source, target, req.Relevance)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, edge)
}

func (h *EdgeHandler) CreateAttacks(w http.ResponseWriter, r *http.Request) {
	var req createEdgeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	source, target, err := req.endpoints()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid node id")
		return
	}

	edge, err := h.engine.LinkAttacks(r.Context(), source, target, req.Relevance)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, edge)
}

func (h *EdgeHandler) CreateEvidenceLink(w http.ResponseWriter, r *http.Request) {
	var req createEdgeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	source, target, err := req.endpoints()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid node id")
		return
	}

	edge, err := h.engine.LinkEvidence(r.Context(), source, target)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, edge)
}

func (h *EdgeHandler) CreateSimilar(w http.ResponseWriter, r *http.Request) {
	var req createEdgeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	source, target, err := req.endpoints()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid node id")
		return
	}

	edge, err := h.engine.LinkSimilar(r.Context(), source, target, req.Similarity)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, edge)
}

func (h *EdgeHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid edge id")
		return
	}

	edge, err := h.engine.Graph().GetEdge(id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, edge)
}

type relevanceResponse struct {
	EdgeID    uuid.UUID `json:"edge_id"`
	Relevance float64   `json:"relevance"`
	Debated   bool      `json:"debated"`
}

// GetRelevance reports the effective relevance of an edge: the debate
// consensus when linkage arguments exist, the declared value otherwise.
func (h *EdgeHandler) GetRelevance(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid edge id")
		return
	}

	relevance, err := h.engine.GetRelevance(id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	_, debated := h.engine.Linkage().EdgeRelevance(id)
	writeJSON(w, http.StatusOK, relevanceResponse{
		EdgeID:    id,
		Relevance: relevance,
		Debated:   debated,
	})
}
