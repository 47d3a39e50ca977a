package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/reasonrank/reasongraph/internal/domain"
	"go.uber.org/zap"
)

func newTestEngine() *Engine {
	return NewEngine(zap.NewNop(), Stores{})
}

func TestPropagation_NewNodesScoreImmediately(t *testing.T) {
	e := newTestEngine()
	ctx := context.Background()

	claim, err := e.CreateClaim(ctx, "solar output is declining", uuid.Nil)
	if err != nil {
		t.Fatalf("create claim: %v", err)
	}
	b, err := e.GetScore(claim.ID)
	if err != nil {
		t.Fatalf("get score: %v", err)
	}
	if !floatEq(b.Final, domain.NeutralAssessment) {
		t.Fatalf("expected childless claim at neutral, got %v", b.Final)
	}

	arg, _ := e.CreateArgument(ctx, "irradiance records trend down", domain.ArgumentTruth, 0, uuid.Nil)
	b, _ = e.GetScore(arg.ID)
	if !floatEq(b.Final, 1.0) {
		t.Fatalf("expected unopposed argument at 1.0, got %v", b.Final)
	}
}

func TestPropagation_EvidenceStatusGatesArgument(t *testing.T) {
	e := newTestEngine()
	ctx := context.Background()

	arg, _ := e.CreateArgument(ctx, "the trial showed a large effect", domain.ArgumentRelevance, 0, uuid.Nil)
	verified, _ := e.CreateEvidence(ctx, "registered trial report", "https://example.org/a", domain.VerificationVerified, uuid.Nil, nil)
	unverified, _ := e.CreateEvidence(ctx, "conference abstract", "https://example.org/b", domain.VerificationUnverified, uuid.Nil, nil)

	if _, err := e.LinkEvidence(ctx, arg.ID, verified.ID); err != nil {
		t.Fatalf("link evidence: %v", err)
	}
	if _, err := e.LinkEvidence(ctx, arg.ID, unverified.ID); err != nil {
		t.Fatalf("link evidence: %v", err)
	}

	b, _ := e.GetScore(arg.ID)
	// mean of 1.0 and 0.5
	if !floatEq(b.EvidenceScore, 0.75) {
		t.Fatalf("expected evidence score 0.75, got %v", b.EvidenceScore)
	}
	if !floatEq(b.Final, 0.75) {
		t.Fatalf("expected final 0.75, got %v", b.Final)
	}
}

func TestPropagation_FalsifiedEvidenceZeroesArgument(t *testing.T) {
	e := newTestEngine()
	ctx := context.Background()

	claim, _ := e.CreateClaim(ctx, "the supplement improves memory", uuid.Nil)
	arg, _ := e.CreateArgument(ctx, "the original study found gains", domain.ArgumentRelevance, 0, uuid.Nil)
	good, _ := e.CreateEvidence(ctx, "original study", "", domain.VerificationVerified, uuid.Nil, nil)

	if _, err := e.LinkSupports(ctx, arg.ID, claim.ID, 1.0); err != nil {
		t.Fatalf("link supports: %v", err)
	}
	if _, err := e.LinkEvidence(ctx, arg.ID, good.ID); err != nil {
		t.Fatalf("link evidence: %v", err)
	}

	// Falsifying one piece of linked evidence zeroes the argument outright,
	// regardless of what else it cites.
	if err := e.SetVerificationStatus(ctx, good.ID, domain.VerificationFalsified); err != nil {
		t.Fatalf("set status: %v", err)
	}

	argScore, _ := e.GetScore(arg.ID)
	if argScore.Final != 0 {
		t.Fatalf("expected argument zeroed, got %v", argScore.Final)
	}
	if !argScore.IsDebunked {
		t.Fatal("expected argument flagged debunked")
	}

	claimScore, _ := e.GetScore(claim.ID)
	if !floatEq(claimScore.Final, domain.MinRankScore) {
		t.Fatalf("expected claim floored at min rank score, got %v", claimScore.Final)
	}
	if !claimScore.IsDebunked {
		t.Fatal("expected claim flagged debunked")
	}
}

func TestPropagation_ZeroRelevanceTransmitsNothing(t *testing.T) {
	e := newTestEngine()
	ctx := context.Background()

	claim, _ := e.CreateClaim(ctx, "the bridge is safe", uuid.Nil)
	arg, _ := e.CreateArgument(ctx, "the paint is fresh", domain.ArgumentRelevance, 0, uuid.Nil)

	if _, err := e.LinkSupports(ctx, arg.ID, claim.ID, 0); err != nil {
		t.Fatalf("link supports: %v", err)
	}

	b, _ := e.GetScore(claim.ID)
	if b.SupportingForce != 0 {
		t.Fatalf("expected no transmitted force, got %v", b.SupportingForce)
	}
	if !floatEq(b.Final, domain.MinRankScore) {
		t.Fatalf("expected floor, got %v", b.Final)
	}
}

func TestPropagation_NetNegativeForceKillsNode(t *testing.T) {
	e := newTestEngine()
	ctx := context.Background()

	claim, _ := e.CreateClaim(ctx, "the dataset is untampered", uuid.Nil)
	attacker, _ := e.CreateArgument(ctx, "checksums do not match", domain.ArgumentTruth, 0, uuid.Nil)

	if _, err := e.LinkAttacks(ctx, attacker.ID, claim.ID, 1.0); err != nil {
		t.Fatalf("link attacks: %v", err)
	}

	b, _ := e.GetScore(claim.ID)
	if !b.IsDead {
		t.Fatal("expected claim dead under net negative force")
	}
	if b.Final != 0 {
		t.Fatalf("expected dead claim at 0, no floor, got %v", b.Final)
	}
	if !b.IsDebunked {
		t.Fatal("expected dead claim flagged debunked")
	}
}

func TestPropagation_SaturationDiminishes(t *testing.T) {
	e := newTestEngine()
	ctx := context.Background()

	claim, _ := e.CreateClaim(ctx, "exercise lowers resting heart rate", uuid.Nil)
	a1, _ := e.CreateArgument(ctx, "meta-analysis of trials", domain.ArgumentRelevance, 0, uuid.Nil)
	a2, _ := e.CreateArgument(ctx, "physiological mechanism", domain.ArgumentTruth, 0, uuid.Nil)

	_, _ = e.LinkSupports(ctx, a1.ID, claim.ID, 1.0)
	b, _ := e.GetScore(claim.ID)
	one := b.Final

	_, _ = e.LinkSupports(ctx, a2.ID, claim.ID, 1.0)
	b, _ = e.GetScore(claim.ID)
	two := b.Final

	if !floatEq(one, 0.5) {
		t.Fatalf("expected 1/(1+1) with one supporter, got %v", one)
	}
	if !floatEq(two, 2.0/3.0) {
		t.Fatalf("expected 2/(2+1) with two supporters, got %v", two)
	}
	if two-one >= one {
		t.Fatal("expected diminishing returns from the second supporter")
	}
}

func TestPropagation_DuplicateArgumentsCollapse(t *testing.T) {
	e := newTestEngine()
	ctx := context.Background()

	claim, _ := e.CreateClaim(ctx, "the drug is effective", uuid.Nil)
	a1, _ := e.CreateArgument(ctx, "trial A showed improvement", domain.ArgumentRelevance, 0, uuid.Nil)
	a2, _ := e.CreateArgument(ctx, "trial A demonstrated improvement", domain.ArgumentRelevance, 0, uuid.Nil)

	_, _ = e.LinkSupports(ctx, a1.ID, claim.ID, 1.0)
	_, _ = e.LinkSupports(ctx, a2.ID, claim.ID, 1.0)

	if _, err := e.LinkSimilar(ctx, a1.ID, a2.ID, 1.0); err != nil {
		t.Fatalf("link similar: %v", err)
	}

	b1, _ := e.GetScore(a1.ID)
	b2, _ := e.GetScore(a2.ID)

	// Exactly one of the pair is discounted to the uniqueness floor; the
	// other keeps full weight.
	lo, hi := b1.Final, b2.Final
	if lo > hi {
		lo, hi = hi, lo
	}
	if !floatEq(lo, domain.MinUniquenessFactor) {
		t.Fatalf("expected discounted twin at uniqueness floor, got %v", lo)
	}
	if !floatEq(hi, 1.0) {
		t.Fatalf("expected dominant twin untouched, got %v", hi)
	}

	cb, _ := e.GetScore(claim.ID)
	// force = 1.01, saturated to 1.01/2.01
	if !floatEq(cb.Final, 1.01/2.01) {
		t.Fatalf("expected collapsed support, got %v", cb.Final)
	}
}

func TestPropagation_SimilarityWithoutSharedTargetNoDiscount(t *testing.T) {
	e := newTestEngine()
	ctx := context.Background()

	c1, _ := e.CreateClaim(ctx, "claim one", uuid.Nil)
	c2, _ := e.CreateClaim(ctx, "claim two", uuid.Nil)
	a1, _ := e.CreateArgument(ctx, "shared reasoning", domain.ArgumentRelevance, 0, uuid.Nil)
	a2, _ := e.CreateArgument(ctx, "shared reasoning elsewhere", domain.ArgumentRelevance, 0, uuid.Nil)

	_, _ = e.LinkSupports(ctx, a1.ID, c1.ID, 1.0)
	_, _ = e.LinkSupports(ctx, a2.ID, c2.ID, 1.0)
	_, _ = e.LinkSimilar(ctx, a1.ID, a2.ID, 0.9)

	b1, _ := e.GetScore(a1.ID)
	b2, _ := e.GetScore(a2.ID)
	if !floatEq(b1.Final, 1.0) || !floatEq(b2.Final, 1.0) {
		t.Fatalf("expected no discount across distinct targets, got %v and %v", b1.Final, b2.Final)
	}
}

func TestPropagation_IdempotentRerunEmitsNoEvents(t *testing.T) {
	e := newTestEngine()
	ctx := context.Background()

	claim, _ := e.CreateClaim(ctx, "idempotence claim", uuid.Nil)
	arg, _ := e.CreateArgument(ctx, "idempotence argument", domain.ArgumentRelevance, 0, uuid.Nil)
	_, _ = e.LinkSupports(ctx, arg.ID, claim.ID, 0.7)

	events := e.propagator.RecomputeAll()
	if len(events) != 0 {
		t.Fatalf("expected converged graph to emit no events, got %d", len(events))
	}
}

func TestPropagation_MaxDepthTruncates(t *testing.T) {
	e := newTestEngine()
	e.SetPropagationConfig(domain.PropagationConfig{MaxDepth: 1, Epsilon: domain.DefaultEpsilon})
	ctx := context.Background()

	claim, _ := e.CreateClaim(ctx, "deep chain root", uuid.Nil)
	a1, _ := e.CreateArgument(ctx, "middle link", domain.ArgumentRelevance, 0, uuid.Nil)
	a2, _ := e.CreateArgument(ctx, "bottom link", domain.ArgumentRelevance, 0, uuid.Nil)

	_, _ = e.LinkSupports(ctx, a1.ID, claim.ID, 1.0)
	_, _ = e.LinkSupports(ctx, a2.ID, a1.ID, 1.0)

	b, _ := e.GetScore(claim.ID)
	if !b.DepthTruncated {
		t.Fatal("expected truncation flag on the node cut off at max depth")
	}
}

func TestPropagation_EventsCarryDeltas(t *testing.T) {
	e := newTestEngine()
	ctx := context.Background()

	sub, cancel := e.Subscribe()
	defer cancel()

	claim, _ := e.CreateClaim(ctx, "event source", uuid.Nil)

	select {
	case ev := <-sub:
		if ev.NodeID != claim.ID {
			t.Fatalf("unexpected node in event: %v", ev.NodeID)
		}
		if !floatEq(ev.Delta, domain.NeutralAssessment) {
			t.Fatalf("expected delta 0.5 on first score, got %v", ev.Delta)
		}
	default:
		t.Fatal("expected a propagation event on the subscription")
	}

	if len(e.RecentEvents(10)) == 0 {
		t.Fatal("expected recent events recorded")
	}
}

func TestPropagation_ScoreBreakdownContributions(t *testing.T) {
	e := newTestEngine()
	ctx := context.Background()

	claim, _ := e.CreateClaim(ctx, "contribution claim", uuid.Nil)
	strong, _ := e.CreateArgument(ctx, "strong support", domain.ArgumentRelevance, 0, uuid.Nil)
	weak, _ := e.CreateArgument(ctx, "weak support", domain.ArgumentRelevance, 0, uuid.Nil)
	con, _ := e.CreateArgument(ctx, "counterpoint", domain.ArgumentRelevance, 0, uuid.Nil)

	_, _ = e.LinkSupports(ctx, strong.ID, claim.ID, 1.0)
	_, _ = e.LinkSupports(ctx, weak.ID, claim.ID, 0.2)
	_, _ = e.LinkAttacks(ctx, con.ID, claim.ID, 0.5)

	b, _ := e.GetScore(claim.ID)
	if len(b.Supporting) != 2 || len(b.Attacking) != 1 {
		t.Fatalf("expected 2 supporting / 1 attacking, got %d / %d", len(b.Supporting), len(b.Attacking))
	}
	if b.Supporting[0].NodeID != strong.ID {
		t.Fatal("expected contributions sorted strongest first")
	}
	if !floatEq(b.Supporting[1].Force, 0.2) {
		t.Fatalf("expected weak contribution force 0.2, got %v", b.Supporting[1].Force)
	}
}

func TestPropagation_RemoveNodeReScoresParents(t *testing.T) {
	e := newTestEngine()
	ctx := context.Background()

	claim, _ := e.CreateClaim(ctx, "removable support", uuid.Nil)
	arg, _ := e.CreateArgument(ctx, "sole supporter", domain.ArgumentRelevance, 0, uuid.Nil)
	_, _ = e.LinkSupports(ctx, arg.ID, claim.ID, 1.0)

	if err := e.RemoveNode(ctx, arg.ID); err != nil {
		t.Fatalf("remove node: %v", err)
	}

	b, _ := e.GetScore(claim.ID)
	if !floatEq(b.Final, domain.NeutralAssessment) {
		t.Fatalf("expected claim back at neutral after losing its supporter, got %v", b.Final)
	}
}

func TestLeaderboard_RanksRootsByScore(t *testing.T) {
	e := newTestEngine()
	ctx := context.Background()

	weakClaim, _ := e.CreateClaim(ctx, "weak claim", uuid.Nil)
	strongClaim, _ := e.CreateClaim(ctx, "strong claim", uuid.Nil)
	arg, _ := e.CreateArgument(ctx, "support for the strong claim", domain.ArgumentRelevance, 0, uuid.Nil)
	_, _ = e.LinkSupports(ctx, arg.ID, strongClaim.ID, 1.0)

	entries := e.Leaderboard()
	if len(entries) != 2 {
		t.Fatalf("expected 2 root claims, got %d", len(entries))
	}
	if entries[0].NodeID != strongClaim.ID || entries[0].Rank != 1 {
		t.Fatal("expected the supported claim ranked first")
	}
	if entries[1].NodeID != weakClaim.ID || entries[1].Rank != 2 {
		t.Fatal("expected the bare claim ranked second")
	}
	if entries[0].ProCount != 1 || entries[0].ConCount != 0 {
		t.Fatalf("unexpected pro/con counts: %+v", entries[0])
	}
	// Both claims sit at 0.5; the supported one wins on net force.
	if !floatEq(entries[0].NetScore, 1.0) || !floatEq(entries[1].NetScore, 0) {
		t.Fatalf("unexpected net scores: %v / %v", entries[0].NetScore, entries[1].NetScore)
	}
	if !floatEq(entries[0].Impact, 1.0) {
		t.Fatalf("expected impact 1.0 on the supported claim, got %v", entries[0].Impact)
	}
}

func TestPropagation_UnchangedFinalStillCommitsComponents(t *testing.T) {
	e := newTestEngine()
	ctx := context.Background()

	claim, _ := e.CreateClaim(ctx, "claim held at neutral", uuid.Nil)
	arg, _ := e.CreateArgument(ctx, "full-strength support", domain.ArgumentTruth, 0, uuid.Nil)
	_, _ = e.LinkSupports(ctx, arg.ID, claim.ID, 1.0)

	// Extrinsic 1/(1+1) equals the childless neutral, so the final holds at
	// 0.5 with zero delta; the force components must still land.
	b, err := e.GetScore(claim.ID)
	if err != nil {
		t.Fatalf("get score: %v", err)
	}
	if !floatEq(b.Final, 0.5) {
		t.Fatalf("expected final 0.5, got %v", b.Final)
	}
	if !floatEq(b.SupportingForce, 1.0) || !floatEq(b.AttackingForce, 0) {
		t.Fatalf("expected forces 1.0/0, got %v/%v", b.SupportingForce, b.AttackingForce)
	}
	if !floatEq(b.Extrinsic, 0.5) {
		t.Fatalf("expected extrinsic 0.5, got %v", b.Extrinsic)
	}
	if len(b.Supporting) != 1 || !floatEq(b.Supporting[0].Force, b.SupportingForce) {
		t.Fatalf("breakdown disagrees with its own contribution list: %+v", b)
	}
}

func TestPropagation_RemovedNodeLeavesSnapshot(t *testing.T) {
	e := newTestEngine()
	ctx := context.Background()

	kept, _ := e.CreateClaim(ctx, "kept claim", uuid.Nil)
	removed, _ := e.CreateClaim(ctx, "removed claim", uuid.Nil)

	if err := e.RemoveNode(ctx, removed.ID); err != nil {
		t.Fatalf("remove node: %v", err)
	}

	snapshot := e.ScoreSnapshot()
	if len(snapshot) != 1 {
		t.Fatalf("expected 1 snapshot row, got %d", len(snapshot))
	}
	if snapshot[0].NodeID != kept.ID {
		t.Fatalf("expected only the kept claim in the snapshot, got %v", snapshot[0].NodeID)
	}
}
