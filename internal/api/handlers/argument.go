package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/reasonrank/reasongraph/internal/domain"
	"github.com/reasonrank/reasongraph/internal/service"
)

type ArgumentHandler struct {
	engine *service.Engine
}

func NewArgumentHandler(engine *service.Engine) *ArgumentHandler {
	return &ArgumentHandler{engine: engine}
}

type createArgumentRequest struct {
	Statement    string  `json:"statement"`
	ArgumentType string  `json:"argument_type"`
	BaseImpact   float64 `json:"base_impact,omitempty"`
	CreatedBy    string  `json:"created_by,omitempty"`
}

func (h *ArgumentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createArgumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	createdBy, err := parseOptionalUUID(req.CreatedBy)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid created_by")
		return
	}

	node, err := h.engine.CreateArgument(r.Context(), req.Statement,
		domain.ArgumentType(req.ArgumentType), req.BaseImpact, createdBy)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, node)
}

type similarNeighborResponse struct {
	NodeID     uuid.UUID `json:"node_id"`
	Statement  string    `json:"statement"`
	Similarity float64   `json:"similarity"`
}

type similarReportResponse struct {
	ArgumentID       uuid.UUID                 `json:"argument_id"`
	UniquenessFactor float64                   `json:"uniqueness_factor"`
	Neighbors        []similarNeighborResponse `json:"neighbors"`
	Count            int                       `json:"count"`
}

// Similar reports the SIMILAR_TO neighborhood of an argument together with
// the uniqueness discount currently applied to it.
func (h *ArgumentHandler) Similar(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid argument id")
		return
	}

	breakdown, err := h.engine.GetScore(id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	neighbors := h.engine.Graph().SimilarArguments(id)
	resp := similarReportResponse{
		ArgumentID:       id,
		UniquenessFactor: breakdown.UniquenessFactor,
		Neighbors:        make([]similarNeighborResponse, 0, len(neighbors)),
		Count:            len(neighbors),
	}
	for _, n := range neighbors {
		entry := similarNeighborResponse{NodeID: n.NodeID, Similarity: n.Similarity}
		if node, err := h.engine.Graph().GetNode(n.NodeID); err == nil {
			entry.Statement = node.Statement
		}
		resp.Neighbors = append(resp.Neighbors, entry)
	}

	writeJSON(w, http.StatusOK, resp)
}
