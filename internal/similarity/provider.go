// Package similarity provides the externally computed textual-similarity
// scores consumed by SIMILAR_TO edges. The scoring core never computes text
// similarity itself; it only reads what a provider hands it.
package similarity

import (
	"context"

	"github.com/google/uuid"
)

// Provider mirrors domain.SimilarityProvider for local wiring.
type Provider interface {
	Similarity(ctx context.Context, a, b uuid.UUID) (float64, error)
}

// Static serves fixed pairwise scores. Useful in tests and when similarity
// arrives precomputed from an offline pipeline.
type Static struct {
	scores map[[2]uuid.UUID]float64
}

func NewStatic() *Static {
	return &Static{scores: make(map[[2]uuid.UUID]float64)}
}

// Set records a symmetric similarity score for a pair.
func (s *Static) Set(a, b uuid.UUID, score float64) {
	s.scores[pairKey(a, b)] = score
}

func (s *Static) Similarity(_ context.Context, a, b uuid.UUID) (float64, error) {
	return s.scores[pairKey(a, b)], nil
}

func pairKey(a, b uuid.UUID) [2]uuid.UUID {
	if a.String() > b.String() {
		a, b = b, a
	}
	return [2]uuid.UUID{a, b}
}
