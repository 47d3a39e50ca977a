package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/reasonrank/reasongraph/internal/service"
	"github.com/reasonrank/reasongraph/internal/similarity"
)

// SimilarityHandler serves the embedding ingest and provider-backed duplicate
// detection. vectors is nil when the server runs without a database; the
// embedding routes then report the provider as unavailable.
type SimilarityHandler struct {
	engine  *service.Engine
	vectors *similarity.PGVector
}

func NewSimilarityHandler(engine *service.Engine, vectors *similarity.PGVector) *SimilarityHandler {
	return &SimilarityHandler{engine: engine, vectors: vectors}
}

type upsertEmbeddingRequest struct {
	Embedding []float32 `json:"embedding"`
}

func (h *SimilarityHandler) UpsertEmbedding(w http.ResponseWriter, r *http.Request) {
	if h.vectors == nil {
		writeServiceError(w, service.ErrNoSimilarityProvider)
		return
	}

	id, ok := pathUUID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid node id")
		return
	}

	var req upsertEmbeddingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Embedding) == 0 {
		writeError(w, http.StatusBadRequest, "embedding is required")
		return
	}

	if err := h.vectors.Upsert(r.Context(), id, req.Embedding); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"node_id":    id,
		"dimensions": len(req.Embedding),
	})
}

func (h *SimilarityHandler) Nearest(w http.ResponseWriter, r *http.Request) {
	if h.vectors == nil {
		writeServiceError(w, service.ErrNoSimilarityProvider)
		return
	}

	id, ok := pathUUID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid node id")
		return
	}

	limit := 10
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	neighbors, err := h.vectors.Nearest(r.Context(), id, limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"node_id":   id,
		"neighbors": neighbors,
		"count":     len(neighbors),
	})
}

type linkSimilarAutoRequest struct {
	SourceID string `json:"source_id"`
	TargetID string `json:"target_id"`
}

// LinkAuto creates a SIMILAR_TO edge with the score looked up from the
// provider instead of supplied by the caller.
func (h *SimilarityHandler) LinkAuto(w http.ResponseWriter, r *http.Request) {
	var req linkSimilarAutoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sourceID, err := uuid.Parse(req.SourceID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid source_id")
		return
	}
	targetID, err := uuid.Parse(req.TargetID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid target_id")
		return
	}

	edge, err := h.engine.LinkSimilarAuto(r.Context(), sourceID, targetID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, edge)
}
