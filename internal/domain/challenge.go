package domain

import (
	"time"

	"github.com/google/uuid"
)

type ChallengeType string

const (
	ChallengeControlVariables     ChallengeType = "control_variables"
	ChallengeSampleIssues         ChallengeType = "sample_issues"
	ChallengeCherryPicking        ChallengeType = "cherry_picking"
	ChallengeMeasurementError     ChallengeType = "measurement_error"
	ChallengeStatisticalFlaws     ChallengeType = "statistical_flaws"
	ChallengeConfoundingFactors   ChallengeType = "confounding_factors"
	ChallengeSelectionBias        ChallengeType = "selection_bias"
	ChallengePublicationBias      ChallengeType = "publication_bias"
	ChallengeReplicationFailure   ChallengeType = "replication_failure"
	ChallengeUndisclosedConflicts ChallengeType = "undisclosed_conflicts"
)

func ValidChallengeType(t string) bool {
	switch ChallengeType(t) {
	case ChallengeControlVariables, ChallengeSampleIssues, ChallengeCherryPicking,
		ChallengeMeasurementError, ChallengeStatisticalFlaws, ChallengeConfoundingFactors,
		ChallengeSelectionBias, ChallengePublicationBias, ChallengeReplicationFailure,
		ChallengeUndisclosedConflicts:
		return true
	}
	return false
}

type Verdict string

const (
	VerdictValid   Verdict = "valid"
	VerdictInvalid Verdict = "invalid"
)

func ValidVerdict(v string) bool {
	return Verdict(v) == VerdictValid || Verdict(v) == VerdictInvalid
}

// MinEvaluationsForConsensus is how many evaluations a challenge must collect
// before a consensus verdict can be computed.
const MinEvaluationsForConsensus = 3

type ChallengeEvaluation struct {
	EvaluatorID uuid.UUID `json:"evaluator_id"`
	Verdict     Verdict   `json:"verdict"`
	Reasoning   string    `json:"reasoning"`
	ImpactScore float64   `json:"impact_score"`
	CreatedAt   time.Time `json:"created_at"`
}

// MethodologyChallenge disputes one quality pattern of one evidence item.
// Once enough evaluations accumulate, a reputation-weighted consensus
// verdict is computed; an accepted challenge permanently subtracts its
// weighted impact from the evidence's quality score.
type MethodologyChallenge struct {
	ID               uuid.UUID             `json:"id"`
	EvidenceID       uuid.UUID             `json:"evidence_id"`
	Type             ChallengeType         `json:"type"`
	AffectedPattern  QualityPattern        `json:"affected_pattern"`
	Claim            string                `json:"claim"`
	Description      string                `json:"description"`
	SubmittedBy      uuid.UUID             `json:"submitted_by"`
	Evaluations      []ChallengeEvaluation `json:"evaluations"`
	ConsensusVerdict *Verdict              `json:"consensus_verdict,omitempty"`
	WeightedImpact   float64               `json:"weighted_impact"`
	Applied          bool                  `json:"applied"`
	CreatedAt        time.Time             `json:"created_at"`
}
