package domain

import (
	"time"

	"github.com/google/uuid"
)

// QualityPattern names the four independently weighted scoring patterns.
type QualityPattern string

const (
	PatternTransparency   QualityPattern = "transparent_measurement"
	PatternReplication    QualityPattern = "replication"
	PatternFalsifiability QualityPattern = "falsifiability"
	PatternAssumptions    QualityPattern = "explicit_assumptions"
)

func ValidQualityPattern(p string) bool {
	switch QualityPattern(p) {
	case PatternTransparency, PatternReplication, PatternFalsifiability, PatternAssumptions:
		return true
	}
	return false
}

// Pattern weights in the overall 0-100 quality score.
const (
	TransparencyWeight   = 0.40
	ReplicationWeight    = 0.20
	FalsifiabilityWeight = 0.15
	AssumptionsWeight    = 0.25
)

type TransparencyRecord struct {
	HasDisclosedMethod  bool `json:"has_disclosed_method"`
	HasControlVariables bool `json:"has_control_variables"`
	HasRawDataAvailable bool `json:"has_raw_data_available"`
	HasPeerReview       bool `json:"has_peer_review"`
}

type ReplicationRecord struct {
	HasIndependentReplications bool `json:"has_independent_replications"`
	SuccessfulContexts         int  `json:"successful_contexts"`
}

type FalsifiabilityRecord struct {
	HasFalsifiablePredictions bool `json:"has_falsifiable_predictions"`
	ValidatedPredictions      int  `json:"validated_predictions"`
	FalsifiedPredictions      int  `json:"falsified_predictions"`
}

type DeclaredAssumption struct {
	Statement     string `json:"statement"`
	Justification string `json:"justification,omitempty"`
	Challenged    bool   `json:"challenged"`
}

type AssumptionRecord struct {
	Declared      []DeclaredAssumption `json:"declared,omitempty"`
	HiddenExposed int                  `json:"hidden_exposed"`
}

// ChallengeImpact accumulates the permanent effect of accepted methodology
// challenges on a piece of evidence.
type ChallengeImpact struct {
	AcceptedChallenges    int     `json:"accepted_challenges"`
	TotalQualityReduction float64 `json:"total_quality_reduction"`
}

// EvidenceQuality carries the four pattern sub-structures for one evidence
// item plus the accumulated challenge impact. It can be scored standalone
// before the evidence node is inserted into the graph.
type EvidenceQuality struct {
	EvidenceID     uuid.UUID            `json:"evidence_id"`
	Transparency   TransparencyRecord   `json:"transparency"`
	Replication    ReplicationRecord    `json:"replication"`
	Falsifiability FalsifiabilityRecord `json:"falsifiability"`
	Assumptions    AssumptionRecord     `json:"assumptions"`
	Impact         ChallengeImpact      `json:"challenge_impact"`
	UpdatedAt      time.Time            `json:"updated_at"`
}
