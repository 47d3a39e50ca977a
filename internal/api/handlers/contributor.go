package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/reasonrank/reasongraph/internal/domain"
	"github.com/reasonrank/reasongraph/internal/service"
)

type ContributorHandler struct {
	engine *service.Engine
}

func NewContributorHandler(engine *service.Engine) *ContributorHandler {
	return &ContributorHandler{engine: engine}
}

type createContributorRequest struct {
	Name string `json:"name"`
}

func (h *ContributorHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createContributorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	contributor, err := h.engine.RegisterContributor(r.Context(), req.Name)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, contributor)
}

func (h *ContributorHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid contributor id")
		return
	}

	contributor, err := h.engine.Reputation().Get(id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, contributor)
}

type addCredentialRequest struct {
	Title       string `json:"title"`
	Institution string `json:"institution,omitempty"`
	Year        int    `json:"year,omitempty"`
}

func (h *ContributorHandler) AddCredential(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid contributor id")
		return
	}

	var req addCredentialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}

	cred := domain.Credential{
		Title:       req.Title,
		Institution: req.Institution,
		Year:        req.Year,
	}
	if err := h.engine.AddCredential(r.Context(), id, cred); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, cred)
}

func (h *ContributorHandler) GetReputation(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid contributor id")
		return
	}

	breakdown, err := h.engine.Reputation().Reputation(id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, breakdown)
}
