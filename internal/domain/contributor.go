package domain

import (
	"time"

	"github.com/google/uuid"
)

// Reputation component weights.
const (
	MethodologyRepWeight = 0.50
	ArgumentRepWeight    = 0.30
	LinkageRepWeight     = 0.20

	// Methodology assessment internal split.
	ChallengeAccuracyWeight  = 0.60
	EvaluationAccuracyWeight = 0.40

	// Activity bonus: small and bounded so volume never substitutes for
	// accuracy.
	ActivityBonusPerAction = 0.005
	ActivityBonusCap       = 0.05

	// NeutralAssessment is used for any component with no activity yet.
	NeutralAssessment = 0.5
)

// Credential is recorded for display only. No reputation term reads it.
type Credential struct {
	Title       string `json:"title"`
	Institution string `json:"institution,omitempty"`
	Year        int    `json:"year,omitempty"`
}

// MethodologyStats are counters maintained by the challenge workflow.
type MethodologyStats struct {
	ValidChallenges      int `json:"valid_challenges"`
	InvalidChallenges    int `json:"invalid_challenges"`
	AccurateEvaluations  int `json:"accurate_evaluations"`
	EvaluationsSubmitted int `json:"evaluations_submitted"`
}

// Contributor is a human or automated agent that creates nodes, edges,
// challenges and evaluations. Credentials are deliberately outside every
// reputation formula.
type Contributor struct {
	ID          uuid.UUID        `json:"id"`
	Name        string           `json:"name"`
	Credentials []Credential     `json:"credentials,omitempty"`
	Methodology MethodologyStats `json:"methodology_stats"`
	CreatedAt   time.Time        `json:"created_at"`
}

// ReputationBreakdown is the result of the reputation computation.
type ReputationBreakdown struct {
	ContributorID         uuid.UUID `json:"contributor_id"`
	MethodologyAssessment float64   `json:"methodology_assessment"`
	ArgumentAssessment    float64   `json:"argument_assessment"`
	LinkageAssessment     float64   `json:"linkage_assessment"`
	Overall               float64   `json:"overall"`
}
