package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultMaxDepth bounds how far a single update propagates up the graph.
	DefaultMaxDepth = 100
	// DefaultEpsilon suppresses recomputation once score deltas fall below it.
	DefaultEpsilon = 0.001
	// MinRankScore is the floor for live node scores so ordering stays total.
	MinRankScore = 0.001
	// DebunkedThreshold marks nodes whose final score has collapsed. Debunked
	// nodes are never deleted; they sink in ordering.
	DebunkedThreshold = 0.1
	// MinUniquenessFactor is the floor applied after redundancy discounting.
	MinUniquenessFactor = 0.01
)

// PropagationConfig bounds a propagation pass.
type PropagationConfig struct {
	MaxDepth int
	Epsilon  float64
}

func DefaultPropagationConfig() PropagationConfig {
	return PropagationConfig{MaxDepth: DefaultMaxDepth, Epsilon: DefaultEpsilon}
}

// ChildContribution reports one child's weighted force on its parent.
type ChildContribution struct {
	NodeID     uuid.UUID `json:"node_id"`
	Statement  string    `json:"statement"`
	ChildScore float64   `json:"child_score"`
	Relevance  float64   `json:"relevance"`
	Force      float64   `json:"force"`
}

// ScoreBreakdown is the full scoring picture for one node. Scores are owned
// by the propagation engine and readable only through it.
type ScoreBreakdown struct {
	NodeID           uuid.UUID           `json:"node_id"`
	Intrinsic        float64             `json:"intrinsic"`
	UniquenessFactor float64             `json:"uniqueness_factor"`
	EvidenceScore    float64             `json:"evidence_score"`
	Extrinsic        float64             `json:"extrinsic"`
	SupportingForce  float64             `json:"supporting_force"`
	AttackingForce   float64             `json:"attacking_force"`
	Final            float64             `json:"final"`
	IsDead           bool                `json:"is_dead"`
	IsDebunked       bool                `json:"is_debunked"`
	DepthTruncated   bool                `json:"depth_truncated"`
	Supporting       []ChildContribution `json:"supporting,omitempty"`
	Attacking        []ChildContribution `json:"attacking,omitempty"`
	UpdatedAt        time.Time           `json:"updated_at"`
}

// PropagationEvent is emitted for every score change a propagation pass
// commits. The stream is subscribable for auditing and testing.
type PropagationEvent struct {
	NodeID        uuid.UUID `json:"node_id"`
	PreviousScore float64   `json:"previous_score"`
	NewScore      float64   `json:"new_score"`
	Delta         float64   `json:"delta"`
	Depth         int       `json:"depth"`
	Timestamp     time.Time `json:"timestamp"`
}

// LeaderboardEntry ranks a root claim by how its argument tree nets out.
type LeaderboardEntry struct {
	NodeID        uuid.UUID `json:"node_id"`
	Statement     string    `json:"statement"`
	Rank          int       `json:"rank"`
	FinalScore    float64   `json:"final_score"`
	ProCount      int       `json:"pro_count"`
	ConCount      int       `json:"con_count"`
	Impact        float64   `json:"impact"`
	CounterImpact float64   `json:"counter_impact"`
	NetScore      float64   `json:"net_score"`
	IsDebunked    bool      `json:"is_debunked"`
}
