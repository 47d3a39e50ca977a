package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/reasonrank/reasongraph/internal/domain"
)

func setupLinkageTest(t *testing.T) (*Engine, domain.Node, domain.Edge) {
	t.Helper()
	e := newTestEngine()
	ctx := context.Background()

	claim, _ := e.CreateClaim(ctx, "the levee will hold", uuid.Nil)
	arg, _ := e.CreateArgument(ctx, "stress test passed", domain.ArgumentTruth, 0, uuid.Nil)
	edge, err := e.LinkSupports(ctx, arg.ID, claim.ID, 0.8)
	if err != nil {
		t.Fatalf("link supports: %v", err)
	}
	return e, claim, edge
}

func TestLinkage_DeclaredRelevanceUntilDebated(t *testing.T) {
	e, _, edge := setupLinkageTest(t)

	rel, err := e.GetRelevance(edge.ID)
	if err != nil {
		t.Fatalf("get relevance: %v", err)
	}
	if !floatEq(rel, 0.8) {
		t.Fatalf("expected declared relevance 0.8, got %v", rel)
	}
}

func TestLinkage_ProArgumentDrivesRelevance(t *testing.T) {
	e, claim, edge := setupLinkageTest(t)
	ctx := context.Background()

	if _, err := e.RecordLinkageArgument(ctx, edge.ID, nil, domain.LinkagePro,
		"the test covered the relevant load case", 0.9, uuid.New()); err != nil {
		t.Fatalf("record linkage: %v", err)
	}

	// Unopposed affirmation saturates to full relevance.
	rel, _ := e.GetRelevance(edge.ID)
	if !floatEq(rel, 1.0) {
		t.Fatalf("expected relevance 1.0, got %v", rel)
	}

	// The target re-scored under the new relevance: force 1.0 saturates
	// to 0.5.
	b, _ := e.GetScore(claim.ID)
	if !floatEq(b.Final, 0.5) {
		t.Fatalf("expected claim at 0.5, got %v", b.Final)
	}
}

func TestLinkage_BalancedDebateSeversEdge(t *testing.T) {
	e, claim, edge := setupLinkageTest(t)
	ctx := context.Background()

	_, _ = e.RecordLinkageArgument(ctx, edge.ID, nil, domain.LinkagePro, "covers the load case", 0.9, uuid.New())
	_, _ = e.RecordLinkageArgument(ctx, edge.ID, nil, domain.LinkageCon, "wrong soil model", 0.9, uuid.New())

	rel, _ := e.GetRelevance(edge.ID)
	if rel != 0 {
		t.Fatalf("expected balanced debate to transmit nothing, got %v", rel)
	}

	b, _ := e.GetScore(claim.ID)
	if !floatEq(b.Final, domain.MinRankScore) {
		t.Fatalf("expected claim floored once the edge severed, got %v", b.Final)
	}
}

func TestLinkage_NestedRebuttalAttenuates(t *testing.T) {
	e, _, edge := setupLinkageTest(t)
	ctx := context.Background()

	pro, err := e.RecordLinkageArgument(ctx, edge.ID, nil, domain.LinkagePro,
		"covers the load case", 0.8, uuid.New())
	if err != nil {
		t.Fatalf("record pro: %v", err)
	}

	con, err := e.RecordLinkageArgument(ctx, edge.ID, &pro.ID, domain.LinkageCon,
		"only under lab conditions", 0.8, uuid.New())
	if err != nil {
		t.Fatalf("record nested con: %v", err)
	}
	if con.Depth != 1 {
		t.Fatalf("expected nested depth 1, got %d", con.Depth)
	}

	// pro = 0.8*0.5, con = 0.8*0.5*0.5: rebuttal carries half the weight,
	// so (A-D)/(A+D) = 1/3 instead of severing the edge.
	rel, _ := e.GetRelevance(edge.ID)
	if !floatEq(rel, 1.0/3.0) {
		t.Fatalf("expected attenuated relevance 1/3, got %v", rel)
	}
}

func TestLinkage_GetByID(t *testing.T) {
	e, _, edge := setupLinkageTest(t)
	ctx := context.Background()

	if _, err := e.Linkage().Get(uuid.New()); err != ErrLinkageNotFound {
		t.Fatalf("expected ErrLinkageNotFound, got %v", err)
	}

	recorded, err := e.RecordLinkageArgument(ctx, edge.ID, nil, domain.LinkagePro,
		"load case matches", 0.7, uuid.Nil)
	if err != nil {
		t.Fatalf("record linkage: %v", err)
	}

	got, err := e.Linkage().Get(recorded.ID)
	if err != nil {
		t.Fatalf("get linkage argument: %v", err)
	}
	if got.EdgeID != edge.ID || got.Statement != "load case matches" {
		t.Fatalf("unexpected linkage argument: %+v", got)
	}
}

func TestLinkage_Validation(t *testing.T) {
	e, _, edge := setupLinkageTest(t)
	ctx := context.Background()

	arg, _ := e.CreateArgument(ctx, "cited inspection", domain.ArgumentTruth, 0, uuid.Nil)
	evidence, _ := e.CreateEvidence(ctx, "inspection report", "", domain.VerificationVerified, uuid.Nil, nil)
	evEdge, _ := e.LinkEvidence(ctx, arg.ID, evidence.ID)

	if _, err := e.RecordLinkageArgument(ctx, evEdge.ID, nil, domain.LinkagePro, "x", 0.5, uuid.New()); err != ErrLinkageEdgeKind {
		t.Fatalf("expected ErrLinkageEdgeKind, got %v", err)
	}

	missing := uuid.New()
	if _, err := e.RecordLinkageArgument(ctx, edge.ID, &missing, domain.LinkagePro, "x", 0.5, uuid.New()); err != ErrLinkageParentMissing {
		t.Fatalf("expected ErrLinkageParentMissing, got %v", err)
	}

	if _, err := e.RecordLinkageArgument(ctx, edge.ID, nil, domain.LinkagePro, "x", 1.5, uuid.New()); err != ErrInvalidScoreInput {
		t.Fatalf("expected ErrInvalidScoreInput, got %v", err)
	}

	if _, err := e.RecordLinkageArgument(ctx, edge.ID, nil, "tangent", "x", 0.5, uuid.New()); err != ErrInvalidScoreInput {
		t.Fatalf("expected ErrInvalidScoreInput for bad side, got %v", err)
	}
}

func TestLinkage_KindClassification(t *testing.T) {
	e, _, edge := setupLinkageTest(t)
	ctx := context.Background()

	kind, err := e.Linkage().Kind(edge.ID)
	if err != nil {
		t.Fatalf("kind: %v", err)
	}
	if kind != domain.LinkageArgumentToConclusion {
		t.Fatalf("expected argument_to_conclusion, got %v", kind)
	}

	// Once the source argument carries evidence, the debate is about an
	// evidence-to-conclusion link.
	evidence, _ := e.CreateEvidence(ctx, "stress test data", "", domain.VerificationVerified, uuid.Nil, nil)
	if _, err := e.LinkEvidence(ctx, edge.SourceID, evidence.ID); err != nil {
		t.Fatalf("link evidence: %v", err)
	}
	kind, _ = e.Linkage().Kind(edge.ID)
	if kind != domain.LinkageEvidenceToConclusion {
		t.Fatalf("expected evidence_to_conclusion, got %v", kind)
	}
}

func TestLinkage_AffirmationStats(t *testing.T) {
	e, _, edge := setupLinkageTest(t)
	ctx := context.Background()

	author := uuid.New()
	pro, _ := e.RecordLinkageArgument(ctx, edge.ID, nil, domain.LinkagePro, "solid grounds", 0.8, author)
	_, _ = e.RecordLinkageArgument(ctx, edge.ID, &pro.ID, domain.LinkageCon, "nested objection", 0.4, author)

	submitted, affirmed := e.Linkage().AffirmationStats(author)
	// Only root-level arguments count, and the pro side is currently winning.
	if submitted != 1 || affirmed != 1 {
		t.Fatalf("expected 1 submitted / 1 affirmed, got %d / %d", submitted, affirmed)
	}
}
