package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/reasonrank/reasongraph/internal/graph"
	"github.com/reasonrank/reasongraph/internal/service"
	"github.com/reasonrank/reasongraph/internal/similarity"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeServiceError maps sentinel errors from the graph and service layers
// onto HTTP status codes.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, graph.ErrNodeNotFound),
		errors.Is(err, graph.ErrEdgeNotFound),
		errors.Is(err, service.ErrChallengeNotFound),
		errors.Is(err, service.ErrQualityNotFound),
		errors.Is(err, service.ErrContributorNotFound),
		errors.Is(err, service.ErrLinkageNotFound),
		errors.Is(err, similarity.ErrEmbeddingMissing):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, graph.ErrCycle),
		errors.Is(err, service.ErrDuplicateEvaluation):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrConsensusPending):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, service.ErrNoSimilarityProvider):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, graph.ErrDanglingEdge),
		errors.Is(err, graph.ErrBadEndpoint),
		errors.Is(err, service.ErrInvalidScoreInput),
		errors.Is(err, service.ErrStatementEmpty),
		errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, service.ErrInvalidArgType),
		errors.Is(err, service.ErrInvalidChallengeType),
		errors.Is(err, service.ErrInvalidPattern),
		errors.Is(err, service.ErrInvalidVerdict),
		errors.Is(err, service.ErrNotEvidence),
		errors.Is(err, service.ErrLinkageEdgeKind),
		errors.Is(err, service.ErrLinkageParentMissing):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// pathUUID parses the named chi URL parameter as a UUID.
func pathUUID(r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
