package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/reasonrank/reasongraph/internal/domain"
	"github.com/reasonrank/reasongraph/internal/service"
)

type EvidenceHandler struct {
	engine *service.Engine
}

func NewEvidenceHandler(engine *service.Engine) *EvidenceHandler {
	return &EvidenceHandler{engine: engine}
}

type createEvidenceRequest struct {
	Statement          string                  `json:"statement"`
	SourceURL          string                  `json:"source_url,omitempty"`
	VerificationStatus string                  `json:"verification_status"`
	CreatedBy          string                  `json:"created_by,omitempty"`
	Quality            *domain.EvidenceQuality `json:"quality,omitempty"`
}

type evidenceResponse struct {
	domain.Node
	QualityScore float64 `json:"quality_score"`
}

func (h *EvidenceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createEvidenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	createdBy, err := parseOptionalUUID(req.CreatedBy)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid created_by")
		return
	}

	node, err := h.engine.CreateEvidence(r.Context(), req.Statement, req.SourceURL,
		domain.VerificationStatus(req.VerificationStatus), createdBy, req.Quality)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, evidenceResponse{
		Node:         node,
		QualityScore: h.engine.Quality().Score(node.ID),
	})
}

type setStatusRequest struct {
	VerificationStatus string `json:"verification_status"`
}

func (h *EvidenceHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid evidence id")
		return
	}

	var req setStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.engine.SetVerificationStatus(r.Context(), id,
		domain.VerificationStatus(req.VerificationStatus)); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": req.VerificationStatus})
}

type submitChallengeRequest struct {
	SubmittedBy     string `json:"submitted_by"`
	Type            string `json:"type"`
	AffectedPattern string `json:"affected_pattern"`
	Claim           string `json:"claim"`
	Description     string `json:"description,omitempty"`
}

func (h *EvidenceHandler) SubmitChallenge(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid evidence id")
		return
	}

	var req submitChallengeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	submitterID, err := parseOptionalUUID(req.SubmittedBy)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid submitted_by")
		return
	}

	challenge, err := h.engine.SubmitMethodologyChallenge(r.Context(), id, submitterID,
		domain.ChallengeType(req.Type), domain.QualityPattern(req.AffectedPattern),
		req.Claim, req.Description)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, challenge)
}

func (h *EvidenceHandler) ListChallenges(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid evidence id")
		return
	}

	challenges := h.engine.Challenges().ForEvidence(id)
	writeJSON(w, http.StatusOK, map[string]any{
		"challenges": challenges,
		"count":      len(challenges),
	})
}

func (h *EvidenceHandler) GetQuality(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid evidence id")
		return
	}

	record, err := h.engine.Quality().Get(id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"quality": record,
		"score":   h.engine.Quality().Score(id),
	})
}
