package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/reasonrank/reasongraph/internal/service"
)

type ClaimHandler struct {
	engine *service.Engine
}

func NewClaimHandler(engine *service.Engine) *ClaimHandler {
	return &ClaimHandler{engine: engine}
}

type createClaimRequest struct {
	Statement string `json:"statement"`
	CreatedBy string `json:"created_by,omitempty"`
}

func (h *ClaimHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createClaimRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	createdBy, err := parseOptionalUUID(req.CreatedBy)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid created_by")
		return
	}

	node, err := h.engine.CreateClaim(r.Context(), req.Statement, createdBy)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, node)
}

func (h *ClaimHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	entries := h.engine.Leaderboard()
	writeJSON(w, http.StatusOK, map[string]any{
		"entries": entries,
		"count":   len(entries),
	})
}

func parseOptionalUUID(s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, nil
	}
	return uuid.Parse(s)
}
