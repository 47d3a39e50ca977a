package domain

import (
	"time"

	"github.com/google/uuid"
)

type EdgeKind string

const (
	EdgeSupports    EdgeKind = "supports"
	EdgeAttacks     EdgeKind = "attacks"
	EdgeHasEvidence EdgeKind = "has_evidence"
	EdgeSimilarTo   EdgeKind = "similar_to"
)

func ValidEdgeKind(k string) bool {
	switch EdgeKind(k) {
	case EdgeSupports, EdgeAttacks, EdgeHasEvidence, EdgeSimilarTo:
		return true
	}
	return false
}

// Edge is always stored directed. SIMILAR_TO is symmetric in meaning and is
// traversed both ways; only one direction is stored. Relevance applies to
// SUPPORTS/ATTACKS, Similarity to SIMILAR_TO; HAS_EVIDENCE carries neither,
// since evidence gates through its own verification status.
type Edge struct {
	ID         uuid.UUID `json:"id"`
	Kind       EdgeKind  `json:"kind"`
	SourceID   uuid.UUID `json:"source_id"`
	TargetID   uuid.UUID `json:"target_id"`
	Relevance  float64   `json:"relevance,omitempty"`
	Similarity float64   `json:"similarity,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
