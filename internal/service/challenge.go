package service

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/reasonrank/reasongraph/internal/domain"
	"github.com/reasonrank/reasongraph/internal/graph"
	"go.uber.org/zap"
)

var (
	ErrChallengeNotFound    = errors.New("challenge not found")
	ErrInvalidChallengeType = errors.New("invalid challenge type")
	ErrInvalidPattern       = errors.New("invalid quality pattern")
	ErrInvalidVerdict       = errors.New("invalid verdict")
	ErrConsensusPending     = errors.New("consensus requires at least 3 evaluations")
	ErrDuplicateEvaluation  = errors.New("contributor already evaluated this challenge")
	ErrNotEvidence          = errors.New("challenges target evidence nodes")
)

// ChallengeService runs the methodology challenge workflow: any contributor
// may dispute one quality pattern of a piece of evidence; reputation-weighted
// evaluations accumulate until a consensus verdict lands; an accepted
// challenge permanently reduces the evidence's quality.
type ChallengeService struct {
	graph      *graph.Graph
	quality    *QualityService
	reputation *ReputationService
	logger     *zap.Logger

	mu         sync.RWMutex
	challenges map[uuid.UUID]*domain.MethodologyChallenge
}

func NewChallengeService(g *graph.Graph, quality *QualityService, reputation *ReputationService, logger *zap.Logger) *ChallengeService {
	return &ChallengeService{
		graph:      g,
		quality:    quality,
		reputation: reputation,
		logger:     logger,
		challenges: make(map[uuid.UUID]*domain.MethodologyChallenge),
	}
}

// Submit opens a challenge against a specific pattern of an evidence node.
func (s *ChallengeService) Submit(evidenceID, submitterID uuid.UUID, challengeType domain.ChallengeType, pattern domain.QualityPattern, claim, description string) (domain.MethodologyChallenge, error) {
	if !domain.ValidChallengeType(string(challengeType)) {
		return domain.MethodologyChallenge{}, ErrInvalidChallengeType
	}
	if !domain.ValidQualityPattern(string(pattern)) {
		return domain.MethodologyChallenge{}, ErrInvalidPattern
	}
	node, err := s.graph.GetNode(evidenceID)
	if err != nil {
		return domain.MethodologyChallenge{}, err
	}
	if node.Kind != domain.NodeEvidence {
		return domain.MethodologyChallenge{}, ErrNotEvidence
	}
	if _, err := s.reputation.Get(submitterID); err != nil {
		return domain.MethodologyChallenge{}, err
	}

	c := &domain.MethodologyChallenge{
		ID:              uuid.New(),
		EvidenceID:      evidenceID,
		Type:            challengeType,
		AffectedPattern: pattern,
		Claim:           claim,
		Description:     description,
		SubmittedBy:     submitterID,
		CreatedAt:       time.Now().UTC(),
	}

	s.mu.Lock()
	s.challenges[c.ID] = c
	s.mu.Unlock()

	s.logger.Info("methodology challenge submitted",
		zap.String("challenge_id", c.ID.String()),
		zap.String("evidence_id", evidenceID.String()),
		zap.String("type", string(challengeType)),
		zap.String("pattern", string(pattern)))

	return *c, nil
}

// Evaluate records one contributor's verdict. Once three or more evaluations
// exist, consensus is computed; the first valid consensus applies its
// weighted impact to the evidence. The returned bool reports whether the
// evidence quality changed, in which case the caller must re-propagate from
// the evidence node.
func (s *ChallengeService) Evaluate(challengeID, evaluatorID uuid.UUID, verdict domain.Verdict, reasoning string, impactScore float64) (bool, error) {
	if !domain.ValidVerdict(string(verdict)) {
		return false, ErrInvalidVerdict
	}
	if impactScore < 0 || impactScore > 100 {
		return false, ErrInvalidScoreInput
	}
	if _, err := s.reputation.Get(evaluatorID); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.challenges[challengeID]
	if !ok {
		return false, ErrChallengeNotFound
	}
	for _, ev := range c.Evaluations {
		if ev.EvaluatorID == evaluatorID {
			return false, ErrDuplicateEvaluation
		}
	}

	c.Evaluations = append(c.Evaluations, domain.ChallengeEvaluation{
		EvaluatorID: evaluatorID,
		Verdict:     verdict,
		Reasoning:   reasoning,
		ImpactScore: impactScore,
		CreatedAt:   time.Now().UTC(),
	})

	if len(c.Evaluations) < domain.MinEvaluationsForConsensus {
		return false, nil
	}
	return s.applyConsensusLocked(c)
}

// Apply computes and applies consensus on demand. It fails with
// ErrConsensusPending while fewer than three evaluations exist.
func (s *ChallengeService) Apply(challengeID uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.challenges[challengeID]
	if !ok {
		return false, ErrChallengeNotFound
	}
	if len(c.Evaluations) < domain.MinEvaluationsForConsensus {
		return false, ErrConsensusPending
	}
	return s.applyConsensusLocked(c)
}

func (s *ChallengeService) Get(challengeID uuid.UUID) (domain.MethodologyChallenge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.challenges[challengeID]
	if !ok {
		return domain.MethodologyChallenge{}, ErrChallengeNotFound
	}
	return *c, nil
}

// ForEvidence lists all challenges against one evidence node.
func (s *ChallengeService) ForEvidence(evidenceID uuid.UUID) []domain.MethodologyChallenge {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.MethodologyChallenge
	for _, c := range s.challenges {
		if c.EvidenceID == evidenceID {
			out = append(out, *c)
		}
	}
	return out
}

// All returns every challenge, for persistence.
func (s *ChallengeService) All() []domain.MethodologyChallenge {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.MethodologyChallenge, 0, len(s.challenges))
	for _, c := range s.challenges {
		out = append(out, *c)
	}
	return out
}

// Restore re-inserts a persisted challenge, for load-on-start.
func (s *ChallengeService) Restore(c domain.MethodologyChallenge) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := c
	s.challenges[c.ID] = &stored
}

// applyConsensusLocked computes the reputation-weighted verdict and, on the
// first valid consensus, applies the weighted impact. An applied verdict is
// permanent; later evaluations never un-apply it.
func (s *ChallengeService) applyConsensusLocked(c *domain.MethodologyChallenge) (bool, error) {
	var validMass, invalidMass, validImpact, validWeight float64
	for _, ev := range c.Evaluations {
		w := s.reputation.VoteWeight(ev.EvaluatorID)
		if ev.Verdict == domain.VerdictValid {
			validMass += w
			validImpact += ev.ImpactScore * w
			validWeight += w
		} else {
			invalidMass += w
		}
	}

	verdict := domain.VerdictInvalid
	weightedImpact := 0.0
	if validMass > invalidMass {
		verdict = domain.VerdictValid
		if validWeight > 0 {
			weightedImpact = validImpact / validWeight
		}
	}

	first := c.ConsensusVerdict == nil
	if c.Applied {
		// Consensus already acted on; the reduction is permanent.
		return false, nil
	}

	c.ConsensusVerdict = &verdict
	c.WeightedImpact = weightedImpact

	if first {
		s.reputation.RecordChallengeOutcome(c.SubmittedBy, verdict)
		for _, ev := range c.Evaluations {
			s.reputation.RecordEvaluation(ev.EvaluatorID, ev.Verdict == verdict)
		}
	}

	if verdict != domain.VerdictValid {
		return false, nil
	}

	c.Applied = true
	s.quality.ApplyChallengeImpact(c.EvidenceID, weightedImpact)

	s.logger.Info("challenge accepted",
		zap.String("challenge_id", c.ID.String()),
		zap.String("evidence_id", c.EvidenceID.String()),
		zap.Float64("weighted_impact", weightedImpact))

	return true, nil
}
