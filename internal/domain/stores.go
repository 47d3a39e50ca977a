package domain

import (
	"context"

	"github.com/google/uuid"
)

// Persistence adapters. The engine keeps the graph resident in memory; these
// interfaces are the storage collaborator boundary: load-on-start plus
// write-through on mutation, with score snapshots flushed behind.

type NodeStore interface {
	Save(ctx context.Context, n *Node) error
	Delete(ctx context.Context, id uuid.UUID) error
	LoadAll(ctx context.Context) ([]Node, error)
}

type EdgeStore interface {
	Save(ctx context.Context, e *Edge) error
	Delete(ctx context.Context, id uuid.UUID) error
	LoadAll(ctx context.Context) ([]Edge, error)
}

type QualityStore interface {
	Save(ctx context.Context, q *EvidenceQuality) error
	LoadAll(ctx context.Context) ([]EvidenceQuality, error)
}

type ChallengeStore interface {
	Save(ctx context.Context, c *MethodologyChallenge) error
	LoadAll(ctx context.Context) ([]MethodologyChallenge, error)
}

type ContributorStore interface {
	Save(ctx context.Context, c *Contributor) error
	LoadAll(ctx context.Context) ([]Contributor, error)
}

type LinkageStore interface {
	Save(ctx context.Context, a *LinkageArgument) error
	LoadAll(ctx context.Context) ([]LinkageArgument, error)
}

// ScoreSnapshot is one row of the write-behind score flush.
type ScoreSnapshot struct {
	NodeID uuid.UUID
	Final  float64
	IsDead bool
}

type ScoreStore interface {
	SaveSnapshot(ctx context.Context, scores []ScoreSnapshot) error
}

// SimilarityProvider supplies externally computed textual similarity for
// SIMILAR_TO edges. The core never computes text similarity itself.
type SimilarityProvider interface {
	Similarity(ctx context.Context, a, b uuid.UUID) (float64, error)
}
