package service

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/reasonrank/reasongraph/internal/domain"
	"go.uber.org/zap"
)

var ErrContributorNotFound = errors.New("contributor not found")

// ArgumentStatser reports how many arguments a contributor has created and
// how many of those currently hold a score above the debunked threshold.
type ArgumentStatser interface {
	ArgumentStats(contributorID uuid.UUID) (created, surviving int)
}

// LinkageStatser reports a contributor's linkage argument record.
type LinkageStatser interface {
	AffirmationStats(contributorID uuid.UUID) (submitted, affirmed int)
}

// ReputationService owns the contributor registry and derives standing
// scores from challenge and evaluation accuracy. Credentials are stored on
// the record but no term below ever reads them.
type ReputationService struct {
	logger *zap.Logger

	arguments ArgumentStatser
	linkage   LinkageStatser

	mu           sync.RWMutex
	contributors map[uuid.UUID]*domain.Contributor
}

func NewReputationService(logger *zap.Logger) *ReputationService {
	return &ReputationService{
		logger:       logger,
		contributors: make(map[uuid.UUID]*domain.Contributor),
	}
}

// SetStatsSources wires in the live argument and linkage assessments.
// Optional; missing sources leave those components neutral.
func (s *ReputationService) SetStatsSources(a ArgumentStatser, l LinkageStatser) {
	s.arguments = a
	s.linkage = l
}

func (s *ReputationService) Register(name string) domain.Contributor {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := &domain.Contributor{ID: uuid.New(), Name: name, CreatedAt: time.Now().UTC()}
	s.contributors[c.ID] = c
	return *c
}

// Restore re-inserts a persisted contributor, for load-on-start.
func (s *ReputationService) Restore(c domain.Contributor) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := c
	s.contributors[c.ID] = &stored
}

func (s *ReputationService) Get(id uuid.UUID) (domain.Contributor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.contributors[id]
	if !ok {
		return domain.Contributor{}, ErrContributorNotFound
	}
	return *c, nil
}

// AddCredential records a credential for display. It has no effect on any
// reputation term.
func (s *ReputationService) AddCredential(id uuid.UUID, cred domain.Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.contributors[id]
	if !ok {
		return ErrContributorNotFound
	}
	c.Credentials = append(c.Credentials, cred)
	return nil
}

// RecordChallengeOutcome updates the submitter's challenge accuracy counters
// once a consensus verdict lands.
func (s *ReputationService) RecordChallengeOutcome(submitterID uuid.UUID, verdict domain.Verdict) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.contributors[submitterID]
	if !ok {
		return
	}
	if verdict == domain.VerdictValid {
		c.Methodology.ValidChallenges++
	} else {
		c.Methodology.InvalidChallenges++
	}
}

// RecordEvaluation counts a submitted evaluation; accurate marks agreement
// with the eventual consensus.
func (s *ReputationService) RecordEvaluation(evaluatorID uuid.UUID, accurate bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.contributors[evaluatorID]
	if !ok {
		return
	}
	c.Methodology.EvaluationsSubmitted++
	if accurate {
		c.Methodology.AccurateEvaluations++
	}
}

// Reputation computes the full standing breakdown:
// 0.50*methodology + 0.30*argument + 0.20*linkage.
func (s *ReputationService) Reputation(id uuid.UUID) (domain.ReputationBreakdown, error) {
	s.mu.RLock()
	c, ok := s.contributors[id]
	if !ok {
		s.mu.RUnlock()
		return domain.ReputationBreakdown{}, ErrContributorNotFound
	}
	stats := c.Methodology
	s.mu.RUnlock()

	meth := methodologyAssessment(stats)

	arg := domain.NeutralAssessment
	if s.arguments != nil {
		if created, surviving := s.arguments.ArgumentStats(id); created > 0 {
			arg = float64(surviving) / float64(created)
		}
	}

	link := domain.NeutralAssessment
	if s.linkage != nil {
		if submitted, affirmed := s.linkage.AffirmationStats(id); submitted > 0 {
			link = float64(affirmed) / float64(submitted)
		}
	}

	return domain.ReputationBreakdown{
		ContributorID:         id,
		MethodologyAssessment: meth,
		ArgumentAssessment:    arg,
		LinkageAssessment:     link,
		Overall: domain.MethodologyRepWeight*meth +
			domain.ArgumentRepWeight*arg +
			domain.LinkageRepWeight*link,
	}, nil
}

// VoteWeight is the weight a contributor's linkage arguments and challenge
// evaluations carry. The linkage component is held neutral here so weighting
// a debate never recurses into the debate being weighted. Unknown
// contributors weigh a flat neutral.
func (s *ReputationService) VoteWeight(id uuid.UUID) float64 {
	s.mu.RLock()
	c, ok := s.contributors[id]
	if !ok {
		s.mu.RUnlock()
		return domain.NeutralAssessment
	}
	stats := c.Methodology
	s.mu.RUnlock()

	meth := methodologyAssessment(stats)

	arg := domain.NeutralAssessment
	if s.arguments != nil {
		if created, surviving := s.arguments.ArgumentStats(id); created > 0 {
			arg = float64(surviving) / float64(created)
		}
	}

	return domain.MethodologyRepWeight*meth +
		domain.ArgumentRepWeight*arg +
		domain.LinkageRepWeight*domain.NeutralAssessment
}

// Contributors returns a snapshot of the registry, for persistence.
func (s *ReputationService) Contributors() []domain.Contributor {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Contributor, 0, len(s.contributors))
	for _, c := range s.contributors {
		out = append(out, *c)
	}
	return out
}

// methodologyAssessment = 0.60*challenge accuracy + 0.40*evaluation accuracy
// plus a small bounded activity bonus. Components with no activity sit at
// neutral. Credentials never enter this function.
func methodologyAssessment(m domain.MethodologyStats) float64 {
	challengeAccuracy := domain.NeutralAssessment
	if total := m.ValidChallenges + m.InvalidChallenges; total > 0 {
		challengeAccuracy = float64(m.ValidChallenges) / float64(total)
	}

	evalAccuracy := domain.NeutralAssessment
	if m.EvaluationsSubmitted > 0 {
		evalAccuracy = float64(m.AccurateEvaluations) / float64(m.EvaluationsSubmitted)
	}

	activity := m.ValidChallenges + m.InvalidChallenges + m.EvaluationsSubmitted
	bonus := domain.ActivityBonusPerAction * float64(activity)
	if bonus > domain.ActivityBonusCap {
		bonus = domain.ActivityBonusCap
	}

	score := domain.ChallengeAccuracyWeight*challengeAccuracy +
		domain.EvaluationAccuracyWeight*evalAccuracy + bonus
	if score > 1 {
		score = 1
	}
	return score
}
