package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/reasonrank/reasongraph/internal/domain"
	"github.com/reasonrank/reasongraph/internal/service"
)

type ChallengeHandler struct {
	engine *service.Engine
}

func NewChallengeHandler(engine *service.Engine) *ChallengeHandler {
	return &ChallengeHandler{engine: engine}
}

func (h *ChallengeHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid challenge id")
		return
	}

	challenge, err := h.engine.Challenges().Get(id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, challenge)
}

type evaluateChallengeRequest struct {
	EvaluatorID string  `json:"evaluator_id"`
	Verdict     string  `json:"verdict"`
	Reasoning   string  `json:"reasoning,omitempty"`
	ImpactScore float64 `json:"impact_score"`
}

func (h *ChallengeHandler) Evaluate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid challenge id")
		return
	}

	var req evaluateChallengeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	evaluatorID, err := uuid.Parse(req.EvaluatorID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid evaluator_id")
		return
	}

	if err := h.engine.EvaluateChallenge(r.Context(), id, evaluatorID,
		domain.Verdict(req.Verdict), req.Reasoning, req.ImpactScore); err != nil {
		writeServiceError(w, err)
		return
	}

	challenge, err := h.engine.Challenges().Get(id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, challenge)
}
