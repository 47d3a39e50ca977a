package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/reasonrank/reasongraph/internal/domain"
	"github.com/reasonrank/reasongraph/internal/graph"
	"go.uber.org/zap"
)

var (
	ErrInvalidScoreInput = errors.New("relevance, similarity and impact values must be in range")
	ErrStatementEmpty    = errors.New("statement is required")
	ErrInvalidStatus     = errors.New("invalid verification status")
	ErrInvalidArgType    = errors.New("invalid argument type")

	ErrNoSimilarityProvider = errors.New("no similarity provider configured")
)

// Stores bundles the optional persistence adapters. Any nil field simply
// disables that write path; the engine is fully functional in memory.
type Stores struct {
	Nodes        domain.NodeStore
	Edges        domain.EdgeStore
	Quality      domain.QualityStore
	Challenges   domain.ChallengeStore
	Contributors domain.ContributorStore
	Linkage      domain.LinkageStore
}

// Engine is the public face of the scoring core. All mutations pass through
// it: it serializes writers, runs the propagation pass triggered by each
// write to completion, and writes through to the storage adapters. Reads are
// served from the converged score table.
type Engine struct {
	graph      *graph.Graph
	propagator *Propagator
	quality    *QualityService
	challenges *ChallengeService
	linkage    *LinkageService
	reputation *ReputationService
	bus        *EventBus
	stores     Stores
	similarity domain.SimilarityProvider
	logger     *zap.Logger

	// serializes mutations; the graph and score table carry their own
	// read locks so queries run concurrently with each other
	writeMu sync.Mutex

	// createdBy index for the argument reputation component
	argMu       sync.RWMutex
	argsByOwner map[uuid.UUID][]uuid.UUID
}

func NewEngine(logger *zap.Logger, stores Stores) *Engine {
	g := graph.New()
	bus := NewEventBus()
	quality := NewQualityService(logger)
	reputation := NewReputationService(logger)
	propagator := NewPropagator(g, quality, bus, logger)
	linkage := NewLinkageService(g, reputation, logger)
	propagator.SetRelevanceReader(linkage)
	challenges := NewChallengeService(g, quality, reputation, logger)

	e := &Engine{
		graph:       g,
		propagator:  propagator,
		quality:     quality,
		challenges:  challenges,
		linkage:     linkage,
		reputation:  reputation,
		bus:         bus,
		stores:      stores,
		logger:      logger,
		argsByOwner: make(map[uuid.UUID][]uuid.UUID),
	}
	reputation.SetStatsSources(e, linkage)
	return e
}

// Graph exposes read-only traversal to the API layer.
func (e *Engine) Graph() *graph.Graph { return e.graph }

// Quality exposes quality record reads to the API layer.
func (e *Engine) Quality() *QualityService { return e.quality }

// Challenges exposes challenge reads to the API layer.
func (e *Engine) Challenges() *ChallengeService { return e.challenges }

// Linkage exposes linkage debate reads to the API layer.
func (e *Engine) Linkage() *LinkageService { return e.linkage }

// Reputation exposes the contributor registry.
func (e *Engine) Reputation() *ReputationService { return e.reputation }

func (e *Engine) SetPropagationConfig(cfg domain.PropagationConfig) {
	e.propagator.SetConfig(cfg)
}

// SetSimilarityProvider attaches an external similarity source used by
// LinkSimilarAuto. Without one, only explicit similarity scores are accepted.
func (e *Engine) SetSimilarityProvider(p domain.SimilarityProvider) {
	e.similarity = p
}

// CreateClaim inserts a claim node and scores it.
func (e *Engine) CreateClaim(ctx context.Context, statement string, createdBy uuid.UUID) (domain.Node, error) {
	if statement == "" {
		return domain.Node{}, ErrStatementEmpty
	}
	n := domain.Node{
		ID:        uuid.New(),
		Kind:      domain.NodeClaim,
		Statement: statement,
		CreatedBy: createdBy,
		CreatedAt: time.Now().UTC(),
	}
	return e.insertNode(ctx, n)
}

// CreateArgument inserts an argument node and scores it. A zero baseImpact
// defaults to 1.0.
func (e *Engine) CreateArgument(ctx context.Context, statement string, argType domain.ArgumentType, baseImpact float64, createdBy uuid.UUID) (domain.Node, error) {
	if statement == "" {
		return domain.Node{}, ErrStatementEmpty
	}
	if !domain.ValidArgumentType(string(argType)) {
		return domain.Node{}, ErrInvalidArgType
	}
	if baseImpact < 0 {
		return domain.Node{}, ErrInvalidScoreInput
	}
	if baseImpact == 0 {
		baseImpact = domain.DefaultBaseImpact
	}
	n := domain.Node{
		ID:           uuid.New(),
		Kind:         domain.NodeArgument,
		Statement:    statement,
		ArgumentType: argType,
		BaseImpact:   baseImpact,
		CreatedBy:    createdBy,
		CreatedAt:    time.Now().UTC(),
	}
	n, err := e.insertNode(ctx, n)
	if err != nil {
		return domain.Node{}, err
	}
	e.argMu.Lock()
	e.argsByOwner[createdBy] = append(e.argsByOwner[createdBy], n.ID)
	e.argMu.Unlock()
	return n, nil
}

// CreateEvidence inserts an evidence node, optionally with a quality record
// scored before insertion, and scores it.
func (e *Engine) CreateEvidence(ctx context.Context, statement, sourceURL string, status domain.VerificationStatus, createdBy uuid.UUID, quality *domain.EvidenceQuality) (domain.Node, error) {
	if statement == "" {
		return domain.Node{}, ErrStatementEmpty
	}
	if !domain.ValidVerificationStatus(string(status)) {
		return domain.Node{}, ErrInvalidStatus
	}
	n := domain.Node{
		ID:           uuid.New(),
		Kind:         domain.NodeEvidence,
		Statement:    statement,
		SourceURL:    sourceURL,
		Verification: status,
		CreatedBy:    createdBy,
		CreatedAt:    time.Now().UTC(),
	}
	if quality != nil {
		q := *quality
		q.EvidenceID = n.ID
		e.quality.Attach(q)
		e.persistQuality(ctx, q)
	}
	return e.insertNode(ctx, n)
}

// SetVerificationStatus updates an evidence node's status and re-propagates
// through every dependent ancestor.
func (e *Engine) SetVerificationStatus(ctx context.Context, evidenceID uuid.UUID, status domain.VerificationStatus) error {
	if !domain.ValidVerificationStatus(string(status)) {
		return ErrInvalidStatus
	}

	e.writeMu.Lock()
	defer e.writeMu.Unlock()

	n, err := e.graph.GetNode(evidenceID)
	if err != nil {
		return err
	}
	if n.Kind != domain.NodeEvidence {
		return ErrNotEvidence
	}
	n.Verification = status
	if err := e.graph.UpdateNode(n); err != nil {
		return err
	}
	e.persistNode(ctx, n)
	e.propagator.Propagate(evidenceID)
	return nil
}

// LinkSupports connects an argument to a claim or argument with an initial
// relevance. Fails with graph.ErrCycle when the edge would close a cycle.
func (e *Engine) LinkSupports(ctx context.Context, sourceArgID, targetID uuid.UUID, relevance float64) (domain.Edge, error) {
	return e.linkForce(ctx, domain.EdgeSupports, sourceArgID, targetID, relevance)
}

// LinkAttacks is the attacking counterpart of LinkSupports.
func (e *Engine) LinkAttacks(ctx context.Context, sourceArgID, targetID uuid.UUID, relevance float64) (domain.Edge, error) {
	return e.linkForce(ctx, domain.EdgeAttacks, sourceArgID, targetID, relevance)
}

func (e *Engine) linkForce(ctx context.Context, kind domain.EdgeKind, sourceID, targetID uuid.UUID, relevance float64) (domain.Edge, error) {
	if relevance < 0 || relevance > 1 {
		return domain.Edge{}, ErrInvalidScoreInput
	}
	edge := domain.Edge{
		ID:        uuid.New(),
		Kind:      kind,
		SourceID:  sourceID,
		TargetID:  targetID,
		Relevance: relevance,
		CreatedAt: time.Now().UTC(),
	}
	// The source re-scores first: joining an aggregation can change its
	// uniqueness discount before the target reads it.
	return e.insertEdge(ctx, edge, sourceID, targetID)
}

// LinkEvidence attaches an evidence node to an argument. The argument
// re-scores immediately: evidence gates through its verification status.
func (e *Engine) LinkEvidence(ctx context.Context, argID, evidenceID uuid.UUID) (domain.Edge, error) {
	edge := domain.Edge{
		ID:        uuid.New(),
		Kind:      domain.EdgeHasEvidence,
		SourceID:  argID,
		TargetID:  evidenceID,
		CreatedAt: time.Now().UTC(),
	}
	return e.insertEdge(ctx, edge, argID)
}

// LinkSimilar marks two arguments as near-duplicates with an externally
// supplied similarity score. Both endpoints re-score.
func (e *Engine) LinkSimilar(ctx context.Context, argA, argB uuid.UUID, similarity float64) (domain.Edge, error) {
	if similarity < 0 || similarity > 1 {
		return domain.Edge{}, ErrInvalidScoreInput
	}
	edge := domain.Edge{
		ID:         uuid.New(),
		Kind:       domain.EdgeSimilarTo,
		SourceID:   argA,
		TargetID:   argB,
		Similarity: similarity,
		CreatedAt:  time.Now().UTC(),
	}
	return e.insertEdge(ctx, edge, argA, argB)
}

// LinkSimilarAuto looks the similarity score up from the attached provider
// instead of taking it from the caller.
func (e *Engine) LinkSimilarAuto(ctx context.Context, argA, argB uuid.UUID) (domain.Edge, error) {
	if e.similarity == nil {
		return domain.Edge{}, ErrNoSimilarityProvider
	}
	score, err := e.similarity.Similarity(ctx, argA, argB)
	if err != nil {
		return domain.Edge{}, err
	}
	return e.LinkSimilar(ctx, argA, argB, score)
}

// RemoveNode cascades removal of incident edges, drops the node and
// re-propagates from its former parents.
func (e *Engine) RemoveNode(ctx context.Context, id uuid.UUID) error {
	e.writeMu.Lock()
	defer e.writeMu.Unlock()

	parents := e.graph.Parents(id)
	if err := e.graph.RemoveNode(id); err != nil {
		return err
	}
	e.propagator.Forget(id)
	if e.stores.Nodes != nil {
		if err := e.stores.Nodes.Delete(ctx, id); err != nil {
			e.logger.Error("node delete write-through failed", zap.String("node_id", id.String()), zap.Error(err))
		}
	}
	if len(parents) > 0 {
		e.propagator.Propagate(parents...)
	}
	return nil
}

// GetScore returns the full score breakdown for a node.
func (e *Engine) GetScore(nodeID uuid.UUID) (domain.ScoreBreakdown, error) {
	return e.propagator.GetScore(nodeID)
}

// Leaderboard ranks root claims.
func (e *Engine) Leaderboard() []domain.LeaderboardEntry {
	return e.propagator.Leaderboard()
}

// SubmitMethodologyChallenge opens a community challenge against one quality
// pattern of an evidence item.
func (e *Engine) SubmitMethodologyChallenge(ctx context.Context, evidenceID, submitterID uuid.UUID, challengeType domain.ChallengeType, pattern domain.QualityPattern, claim, description string) (domain.MethodologyChallenge, error) {
	e.writeMu.Lock()
	defer e.writeMu.Unlock()

	c, err := e.challenges.Submit(evidenceID, submitterID, challengeType, pattern, claim, description)
	if err != nil {
		return domain.MethodologyChallenge{}, err
	}
	e.persistChallenge(ctx, c)
	return c, nil
}

// EvaluateChallenge records an evaluation; when a consensus lands and the
// challenge is accepted, every ancestor of the evidence re-scores.
func (e *Engine) EvaluateChallenge(ctx context.Context, challengeID, evaluatorID uuid.UUID, verdict domain.Verdict, reasoning string, impactScore float64) error {
	e.writeMu.Lock()
	defer e.writeMu.Unlock()

	applied, err := e.challenges.Evaluate(challengeID, evaluatorID, verdict, reasoning, impactScore)
	if err != nil {
		return err
	}

	c, getErr := e.challenges.Get(challengeID)
	if getErr == nil {
		e.persistChallenge(ctx, c)
		e.persistContributorStats(ctx, c)
	}

	if applied {
		q, qErr := e.quality.Get(c.EvidenceID)
		if qErr == nil {
			e.persistQuality(ctx, q)
		}
		e.propagator.Propagate(c.EvidenceID)
	}
	return nil
}

// RecordLinkageArgument adds a pro or con entry to an edge's relevance
// debate and re-propagates from the edge's target.
func (e *Engine) RecordLinkageArgument(ctx context.Context, edgeID uuid.UUID, parentID *uuid.UUID, side domain.LinkageSide, statement string, strength float64, createdBy uuid.UUID) (domain.LinkageArgument, error) {
	if statement == "" {
		return domain.LinkageArgument{}, ErrStatementEmpty
	}
	if !domain.ValidLinkageSide(string(side)) {
		return domain.LinkageArgument{}, ErrInvalidScoreInput
	}
	if strength < 0 || strength > 1 {
		return domain.LinkageArgument{}, ErrInvalidScoreInput
	}

	e.writeMu.Lock()
	defer e.writeMu.Unlock()

	arg, err := e.linkage.Record(domain.LinkageArgument{
		EdgeID:    edgeID,
		ParentID:  parentID,
		Side:      side,
		Statement: statement,
		Strength:  strength,
		CreatedBy: createdBy,
	})
	if err != nil {
		return domain.LinkageArgument{}, err
	}
	if e.stores.Linkage != nil {
		if err := e.stores.Linkage.Save(ctx, &arg); err != nil {
			e.logger.Error("linkage write-through failed", zap.String("edge_id", edgeID.String()), zap.Error(err))
		}
	}

	edge, err := e.graph.GetEdge(edgeID)
	if err == nil {
		e.propagator.Propagate(edge.TargetID)
	}
	return arg, nil
}

// GetRelevance returns the effective relevance of an edge.
func (e *Engine) GetRelevance(edgeID uuid.UUID) (float64, error) {
	return e.linkage.Relevance(edgeID)
}

// Subscribe taps the propagation event stream.
func (e *Engine) Subscribe() (<-chan domain.PropagationEvent, func()) {
	return e.bus.Subscribe()
}

// RecentEvents returns the audit tail of the event stream.
func (e *Engine) RecentEvents(n int) []domain.PropagationEvent {
	return e.bus.Recent(n)
}

// ScoreSnapshot feeds the write-behind score flusher.
func (e *Engine) ScoreSnapshot() []domain.ScoreSnapshot {
	return e.propagator.Snapshot()
}

// ArgumentStats implements ArgumentStatser: an argument survives while its
// final score holds above the debunked threshold.
func (e *Engine) ArgumentStats(contributorID uuid.UUID) (created, surviving int) {
	e.argMu.RLock()
	ids := append([]uuid.UUID{}, e.argsByOwner[contributorID]...)
	e.argMu.RUnlock()

	for _, id := range ids {
		if _, err := e.graph.GetNode(id); err != nil {
			continue
		}
		created++
		if e.propagator.Final(id) >= domain.DebunkedThreshold {
			surviving++
		}
	}
	return created, surviving
}

// Load restores persisted state and recomputes all scores. Call before
// serving traffic.
func (e *Engine) Load(ctx context.Context) error {
	e.writeMu.Lock()
	defer e.writeMu.Unlock()

	if e.stores.Contributors != nil {
		cs, err := e.stores.Contributors.LoadAll(ctx)
		if err != nil {
			return err
		}
		for _, c := range cs {
			e.reputation.Restore(c)
		}
	}
	if e.stores.Nodes != nil {
		nodes, err := e.stores.Nodes.LoadAll(ctx)
		if err != nil {
			return err
		}
		for _, n := range nodes {
			if err := e.graph.AddNode(n); err != nil {
				return err
			}
			if n.Kind == domain.NodeArgument {
				e.argsByOwner[n.CreatedBy] = append(e.argsByOwner[n.CreatedBy], n.ID)
			}
		}
	}
	if e.stores.Edges != nil {
		edges, err := e.stores.Edges.LoadAll(ctx)
		if err != nil {
			return err
		}
		for _, edge := range edges {
			if err := e.graph.AddEdge(edge); err != nil {
				e.logger.Warn("skipping persisted edge", zap.String("edge_id", edge.ID.String()), zap.Error(err))
			}
		}
	}
	if e.stores.Quality != nil {
		qs, err := e.stores.Quality.LoadAll(ctx)
		if err != nil {
			return err
		}
		for _, q := range qs {
			e.quality.Attach(q)
		}
	}
	if e.stores.Challenges != nil {
		cs, err := e.stores.Challenges.LoadAll(ctx)
		if err != nil {
			return err
		}
		for _, c := range cs {
			e.challenges.Restore(c)
		}
	}
	if e.stores.Linkage != nil {
		args, err := e.stores.Linkage.LoadAll(ctx)
		if err != nil {
			return err
		}
		for _, a := range args {
			e.linkage.Restore(a)
		}
	}

	events := e.propagator.RecomputeAll()
	e.logger.Info("graph loaded",
		zap.Int("nodes", len(e.graph.Nodes())),
		zap.Int("edges", len(e.graph.Edges())),
		zap.Int("score_updates", len(events)))
	return nil
}

func (e *Engine) insertNode(ctx context.Context, n domain.Node) (domain.Node, error) {
	e.writeMu.Lock()
	defer e.writeMu.Unlock()

	if err := e.graph.AddNode(n); err != nil {
		return domain.Node{}, err
	}
	e.persistNode(ctx, n)
	e.propagator.Propagate(n.ID)
	return n, nil
}

func (e *Engine) insertEdge(ctx context.Context, edge domain.Edge, reseed ...uuid.UUID) (domain.Edge, error) {
	e.writeMu.Lock()
	defer e.writeMu.Unlock()

	if err := e.graph.AddEdge(edge); err != nil {
		return domain.Edge{}, err
	}
	if e.stores.Edges != nil {
		if err := e.stores.Edges.Save(ctx, &edge); err != nil {
			e.logger.Error("edge write-through failed", zap.String("edge_id", edge.ID.String()), zap.Error(err))
		}
	}
	e.propagator.Propagate(reseed...)
	return edge, nil
}

func (e *Engine) persistNode(ctx context.Context, n domain.Node) {
	if e.stores.Nodes == nil {
		return
	}
	if err := e.stores.Nodes.Save(ctx, &n); err != nil {
		e.logger.Error("node write-through failed", zap.String("node_id", n.ID.String()), zap.Error(err))
	}
}

func (e *Engine) persistQuality(ctx context.Context, q domain.EvidenceQuality) {
	if e.stores.Quality == nil {
		return
	}
	if err := e.stores.Quality.Save(ctx, &q); err != nil {
		e.logger.Error("quality write-through failed", zap.String("evidence_id", q.EvidenceID.String()), zap.Error(err))
	}
}

func (e *Engine) persistChallenge(ctx context.Context, c domain.MethodologyChallenge) {
	if e.stores.Challenges == nil {
		return
	}
	if err := e.stores.Challenges.Save(ctx, &c); err != nil {
		e.logger.Error("challenge write-through failed", zap.String("challenge_id", c.ID.String()), zap.Error(err))
	}
}

func (e *Engine) persistContributorStats(ctx context.Context, c domain.MethodologyChallenge) {
	if e.stores.Contributors == nil {
		return
	}
	ids := []uuid.UUID{c.SubmittedBy}
	for _, ev := range c.Evaluations {
		ids = append(ids, ev.EvaluatorID)
	}
	for _, id := range ids {
		contributor, err := e.reputation.Get(id)
		if err != nil {
			continue
		}
		if err := e.stores.Contributors.Save(ctx, &contributor); err != nil {
			e.logger.Error("contributor write-through failed", zap.String("contributor_id", id.String()), zap.Error(err))
		}
	}
}

// RegisterContributor adds a contributor to the registry.
func (e *Engine) RegisterContributor(ctx context.Context, name string) (domain.Contributor, error) {
	c := e.reputation.Register(name)
	if e.stores.Contributors != nil {
		if err := e.stores.Contributors.Save(ctx, &c); err != nil {
			e.logger.Error("contributor write-through failed", zap.String("contributor_id", c.ID.String()), zap.Error(err))
		}
	}
	return c, nil
}

// AddCredential records a display-only credential.
func (e *Engine) AddCredential(ctx context.Context, contributorID uuid.UUID, cred domain.Credential) error {
	if err := e.reputation.AddCredential(contributorID, cred); err != nil {
		return err
	}
	if e.stores.Contributors != nil {
		c, err := e.reputation.Get(contributorID)
		if err == nil {
			if err := e.stores.Contributors.Save(ctx, &c); err != nil {
				e.logger.Error("contributor write-through failed", zap.String("contributor_id", contributorID.String()), zap.Error(err))
			}
		}
	}
	return nil
}
