package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/reasonrank/reasongraph/internal/domain"
)

// transparentQuality scores 52.5: full transparency plus the neutral
// assumption base, nothing else.
func transparentQuality() *domain.EvidenceQuality {
	return &domain.EvidenceQuality{
		Transparency: domain.TransparencyRecord{
			HasDisclosedMethod:  true,
			HasControlVariables: true,
			HasRawDataAvailable: true,
			HasPeerReview:       true,
		},
	}
}

func setupChallengeTest(t *testing.T) (*Engine, domain.Node, domain.MethodologyChallenge, [3]uuid.UUID) {
	t.Helper()
	e := newTestEngine()
	ctx := context.Background()

	submitter, _ := e.RegisterContributor(ctx, "submitter")
	var evaluators [3]uuid.UUID
	for i, name := range []string{"eval-a", "eval-b", "eval-c"} {
		c, _ := e.RegisterContributor(ctx, name)
		evaluators[i] = c.ID
	}

	evidence, err := e.CreateEvidence(ctx, "survey results", "https://example.org/survey",
		domain.VerificationVerified, uuid.Nil, transparentQuality())
	if err != nil {
		t.Fatalf("create evidence: %v", err)
	}

	challenge, err := e.SubmitMethodologyChallenge(ctx, evidence.ID, submitter.ID,
		domain.ChallengeControlVariables, domain.PatternTransparency,
		"no control group was used", "")
	if err != nil {
		t.Fatalf("submit challenge: %v", err)
	}

	return e, evidence, challenge, evaluators
}

func TestChallenge_ConsensusRequiresThreeEvaluations(t *testing.T) {
	e, _, challenge, evaluators := setupChallengeTest(t)
	ctx := context.Background()

	_ = e.EvaluateChallenge(ctx, challenge.ID, evaluators[0], domain.VerdictValid, "agreed", 20)
	_ = e.EvaluateChallenge(ctx, challenge.ID, evaluators[1], domain.VerdictValid, "agreed", 30)

	c, _ := e.Challenges().Get(challenge.ID)
	if c.ConsensusVerdict != nil || c.Applied {
		t.Fatal("expected no consensus below three evaluations")
	}
	if _, err := e.Challenges().Apply(challenge.ID); err != ErrConsensusPending {
		t.Fatalf("expected ErrConsensusPending, got %v", err)
	}
}

func TestChallenge_ValidConsensusAppliesWeightedImpact(t *testing.T) {
	e, evidence, challenge, evaluators := setupChallengeTest(t)
	ctx := context.Background()

	_ = e.EvaluateChallenge(ctx, challenge.ID, evaluators[0], domain.VerdictValid, "missing controls", 20)
	_ = e.EvaluateChallenge(ctx, challenge.ID, evaluators[1], domain.VerdictValid, "confirmed", 30)
	if err := e.EvaluateChallenge(ctx, challenge.ID, evaluators[2], domain.VerdictValid, "confirmed", 40); err != nil {
		t.Fatalf("third evaluation: %v", err)
	}

	c, _ := e.Challenges().Get(challenge.ID)
	if c.ConsensusVerdict == nil || *c.ConsensusVerdict != domain.VerdictValid {
		t.Fatalf("expected valid consensus, got %+v", c.ConsensusVerdict)
	}
	if !c.Applied {
		t.Fatal("expected challenge applied")
	}
	// equal neutral weights, so the weighted impact is the plain mean
	if !floatEq(c.WeightedImpact, 30) {
		t.Fatalf("expected weighted impact 30, got %v", c.WeightedImpact)
	}

	if got := e.Quality().Score(evidence.ID); !floatEq(got, 22.5) {
		t.Fatalf("expected quality 22.5 after impact, got %v", got)
	}

	// The reduction reaches the evidence node's rank.
	b, _ := e.GetScore(evidence.ID)
	if !floatEq(b.Final, 0.225) {
		t.Fatalf("expected evidence rank 0.225, got %v", b.Final)
	}

	// Accuracy counters land on everyone involved.
	sub, _ := e.Reputation().Get(c.SubmittedBy)
	if sub.Methodology.ValidChallenges != 1 {
		t.Fatalf("expected submitter credited, got %+v", sub.Methodology)
	}
	ev0, _ := e.Reputation().Get(evaluators[0])
	if ev0.Methodology.EvaluationsSubmitted != 1 || ev0.Methodology.AccurateEvaluations != 1 {
		t.Fatalf("expected evaluator credited, got %+v", ev0.Methodology)
	}
}

func TestChallenge_InvalidConsensusLeavesQualityUntouched(t *testing.T) {
	e, evidence, challenge, evaluators := setupChallengeTest(t)
	ctx := context.Background()

	_ = e.EvaluateChallenge(ctx, challenge.ID, evaluators[0], domain.VerdictValid, "plausible", 50)
	_ = e.EvaluateChallenge(ctx, challenge.ID, evaluators[1], domain.VerdictInvalid, "controls are described in the appendix", 0)
	_ = e.EvaluateChallenge(ctx, challenge.ID, evaluators[2], domain.VerdictInvalid, "agreed, appendix covers it", 0)

	c, _ := e.Challenges().Get(challenge.ID)
	if c.ConsensusVerdict == nil || *c.ConsensusVerdict != domain.VerdictInvalid {
		t.Fatal("expected invalid consensus")
	}
	if c.Applied || c.WeightedImpact != 0 {
		t.Fatalf("expected no applied impact, got %+v", c)
	}
	if got := e.Quality().Score(evidence.ID); !floatEq(got, 52.5) {
		t.Fatalf("expected quality unchanged at 52.5, got %v", got)
	}

	sub, _ := e.Reputation().Get(c.SubmittedBy)
	if sub.Methodology.InvalidChallenges != 1 {
		t.Fatalf("expected submitter debited, got %+v", sub.Methodology)
	}
	ev0, _ := e.Reputation().Get(evaluators[0])
	if ev0.Methodology.AccurateEvaluations != 0 || ev0.Methodology.EvaluationsSubmitted != 1 {
		t.Fatalf("expected dissenting evaluator uncredited, got %+v", ev0.Methodology)
	}
}

func TestChallenge_AppliedImpactIsPermanent(t *testing.T) {
	e, evidence, challenge, evaluators := setupChallengeTest(t)
	ctx := context.Background()

	_ = e.EvaluateChallenge(ctx, challenge.ID, evaluators[0], domain.VerdictValid, "", 30)
	_ = e.EvaluateChallenge(ctx, challenge.ID, evaluators[1], domain.VerdictValid, "", 30)
	_ = e.EvaluateChallenge(ctx, challenge.ID, evaluators[2], domain.VerdictValid, "", 30)

	after := e.Quality().Score(evidence.ID)

	// A fourth evaluation arrives late; the verdict has acted and the
	// reduction must not double up.
	late, _ := e.RegisterContributor(ctx, "late evaluator")
	if err := e.EvaluateChallenge(ctx, challenge.ID, late.ID, domain.VerdictInvalid, "too late", 0); err != nil {
		t.Fatalf("late evaluation: %v", err)
	}
	if got := e.Quality().Score(evidence.ID); !floatEq(got, after) {
		t.Fatalf("expected quality stable at %v, got %v", after, got)
	}
}

func TestChallenge_Validation(t *testing.T) {
	e := newTestEngine()
	ctx := context.Background()

	contributor, _ := e.RegisterContributor(ctx, "reviewer")
	claim, _ := e.CreateClaim(ctx, "not evidence", uuid.Nil)
	evidence, _ := e.CreateEvidence(ctx, "real evidence", "", domain.VerificationVerified, uuid.Nil, nil)

	if _, err := e.SubmitMethodologyChallenge(ctx, claim.ID, contributor.ID,
		domain.ChallengeSampleIssues, domain.PatternReplication, "wrong target", ""); err != ErrNotEvidence {
		t.Fatalf("expected ErrNotEvidence, got %v", err)
	}

	if _, err := e.SubmitMethodologyChallenge(ctx, evidence.ID, contributor.ID,
		"made_up_type", domain.PatternReplication, "x", ""); err != ErrInvalidChallengeType {
		t.Fatalf("expected ErrInvalidChallengeType, got %v", err)
	}

	if _, err := e.SubmitMethodologyChallenge(ctx, evidence.ID, uuid.New(),
		domain.ChallengeSampleIssues, domain.PatternReplication, "x", ""); err != ErrContributorNotFound {
		t.Fatalf("expected ErrContributorNotFound, got %v", err)
	}

	challenge, err := e.SubmitMethodologyChallenge(ctx, evidence.ID, contributor.ID,
		domain.ChallengeSampleIssues, domain.PatternReplication, "sample too small", "")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	if err := e.EvaluateChallenge(ctx, challenge.ID, contributor.ID, domain.VerdictValid, "", 150); err != ErrInvalidScoreInput {
		t.Fatalf("expected ErrInvalidScoreInput, got %v", err)
	}
	if err := e.EvaluateChallenge(ctx, challenge.ID, contributor.ID, "maybe", "", 10); err != ErrInvalidVerdict {
		t.Fatalf("expected ErrInvalidVerdict, got %v", err)
	}

	if err := e.EvaluateChallenge(ctx, challenge.ID, contributor.ID, domain.VerdictValid, "", 10); err != nil {
		t.Fatalf("first evaluation: %v", err)
	}
	if err := e.EvaluateChallenge(ctx, challenge.ID, contributor.ID, domain.VerdictValid, "", 10); err != ErrDuplicateEvaluation {
		t.Fatalf("expected ErrDuplicateEvaluation, got %v", err)
	}
}
