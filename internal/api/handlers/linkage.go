package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/reasonrank/reasongraph/internal/domain"
	"github.com/reasonrank/reasongraph/internal/service"
)

type LinkageHandler struct {
	engine *service.Engine
}

func NewLinkageHandler(engine *service.Engine) *LinkageHandler {
	return &LinkageHandler{engine: engine}
}

type recordLinkageRequest struct {
	ParentID  string  `json:"parent_id,omitempty"`
	Side      string  `json:"side"`
	Statement string  `json:"statement"`
	Strength  float64 `json:"strength"`
	CreatedBy string  `json:"created_by"`
}

func (h *LinkageHandler) Record(w http.ResponseWriter, r *http.Request) {
	edgeID, ok := pathUUID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid edge id")
		return
	}

	var req recordLinkageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if !domain.ValidLinkageSide(req.Side) {
		writeError(w, http.StatusBadRequest, "side must be pro or con")
		return
	}

	createdBy, err := parseOptionalUUID(req.CreatedBy)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid created_by")
		return
	}

	var parentID *uuid.UUID
	if req.ParentID != "" {
		parsed, err := uuid.Parse(req.ParentID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid parent_id")
			return
		}
		parentID = &parsed
	}

	arg, err := h.engine.RecordLinkageArgument(r.Context(), edgeID, parentID,
		domain.LinkageSide(req.Side), req.Statement, req.Strength, createdBy)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, arg)
}

func (h *LinkageHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid linkage argument id")
		return
	}

	arg, err := h.engine.Linkage().Get(id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, arg)
}

func (h *LinkageHandler) List(w http.ResponseWriter, r *http.Request) {
	edgeID, ok := pathUUID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid edge id")
		return
	}

	args := h.engine.Linkage().Arguments(edgeID)
	writeJSON(w, http.StatusOK, map[string]any{
		"arguments": args,
		"count":     len(args),
	})
}
