package service

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/reasonrank/reasongraph/internal/domain"
	"go.uber.org/zap"
)

var ErrQualityNotFound = errors.New("evidence quality record not found")

// QualityService owns evidence quality records and the four-pattern scoring
// formula. Evidence with no record scores a full 100 so verification status
// alone drives its weight.
type QualityService struct {
	logger *zap.Logger

	mu      sync.RWMutex
	records map[uuid.UUID]*domain.EvidenceQuality
}

func NewQualityService(logger *zap.Logger) *QualityService {
	return &QualityService{
		logger:  logger,
		records: make(map[uuid.UUID]*domain.EvidenceQuality),
	}
}

// Attach stores (or replaces) the quality record for an evidence item.
func (s *QualityService) Attach(q domain.EvidenceQuality) {
	s.mu.Lock()
	defer s.mu.Unlock()

	q.UpdatedAt = time.Now().UTC()
	s.records[q.EvidenceID] = &q
}

func (s *QualityService) Get(evidenceID uuid.UUID) (domain.EvidenceQuality, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	q, ok := s.records[evidenceID]
	if !ok {
		return domain.EvidenceQuality{}, ErrQualityNotFound
	}
	return *q, nil
}

// Score returns the overall 0-100 quality score for an evidence item.
// Items without a record score 100.
func (s *QualityService) Score(evidenceID uuid.UUID) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	q, ok := s.records[evidenceID]
	if !ok {
		return 100
	}
	return OverallQuality(*q)
}

// ApplyChallengeImpact permanently subtracts an accepted challenge's weighted
// impact and bumps the counters.
func (s *QualityService) ApplyChallengeImpact(evidenceID uuid.UUID, weightedImpact float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	q, ok := s.records[evidenceID]
	if !ok {
		q = &domain.EvidenceQuality{EvidenceID: evidenceID}
		s.records[evidenceID] = q
	}
	q.Impact.AcceptedChallenges++
	q.Impact.TotalQualityReduction += weightedImpact
	q.UpdatedAt = time.Now().UTC()

	s.logger.Info("challenge impact applied",
		zap.String("evidence_id", evidenceID.String()),
		zap.Float64("weighted_impact", weightedImpact),
		zap.Int("accepted_challenges", q.Impact.AcceptedChallenges))
}

// Records returns a snapshot of all quality records, for persistence.
func (s *QualityService) Records() []domain.EvidenceQuality {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.EvidenceQuality, 0, len(s.records))
	for _, q := range s.records {
		out = append(out, *q)
	}
	return out
}

// OverallQuality combines the four pattern scores under their fixed weights
// and subtracts accumulated challenge reductions, clamped to [0,100].
func OverallQuality(q domain.EvidenceQuality) float64 {
	score := domain.TransparencyWeight*TransparencyScore(q.Transparency) +
		domain.ReplicationWeight*ReplicationScore(q.Replication) +
		domain.FalsifiabilityWeight*FalsifiabilityScore(q.Falsifiability) +
		domain.AssumptionsWeight*AssumptionScore(q.Assumptions)
	score -= q.Impact.TotalQualityReduction
	return clamp100(score)
}

// TransparencyScore grants 25 points per disclosed indicator.
func TransparencyScore(t domain.TransparencyRecord) float64 {
	score := 0.0
	if t.HasDisclosedMethod {
		score += 25
	}
	if t.HasControlVariables {
		score += 25
	}
	if t.HasRawDataAvailable {
		score += 25
	}
	if t.HasPeerReview {
		score += 25
	}
	return score
}

// ReplicationScore is 0 without independent replications, then a 30-point
// base plus 14 per successful context, capped at 100 (reached at 5+).
func ReplicationScore(r domain.ReplicationRecord) float64 {
	if !r.HasIndependentReplications {
		return 0
	}
	return clamp100(30 + 14*float64(r.SuccessfulContexts))
}

// FalsifiabilityScore is 0 with no falsifiable predictions, 40 while they
// remain untested, otherwise the validated share scaled toward 100 with a
// 20-point penalty per falsified prediction.
func FalsifiabilityScore(f domain.FalsifiabilityRecord) float64 {
	if !f.HasFalsifiablePredictions {
		return 0
	}
	tested := f.ValidatedPredictions + f.FalsifiedPredictions
	if tested == 0 {
		return 40
	}
	score := 100*float64(f.ValidatedPredictions)/float64(tested) - 20*float64(f.FalsifiedPredictions)
	return clamp100(score)
}

// AssumptionScore: 50 neutral with nothing declared; declaring sets a
// 70-point base, +30 when every declared assumption is justified, -15 per
// hidden assumption later exposed, -10 per successfully challenged one.
func AssumptionScore(a domain.AssumptionRecord) float64 {
	if len(a.Declared) == 0 {
		return clamp100(50 - 15*float64(a.HiddenExposed))
	}
	score := 70.0
	allJustified := true
	for _, d := range a.Declared {
		if d.Justification == "" {
			allJustified = false
		}
		if d.Challenged {
			score -= 10
		}
	}
	if allJustified {
		score += 30
	}
	score -= 15 * float64(a.HiddenExposed)
	return clamp100(score)
}

func clamp100(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
