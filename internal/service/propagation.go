package service

import (
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/reasonrank/reasongraph/internal/domain"
	"github.com/reasonrank/reasongraph/internal/graph"
	"go.uber.org/zap"
)

// QualityReader supplies the 0-100 quality score for an evidence item.
type QualityReader interface {
	Score(evidenceID uuid.UUID) float64
}

// RelevanceReader supplies debate-derived relevance for an edge, when a
// linkage debate exists. The second return is false when the edge's stored
// relevance should be used instead.
type RelevanceReader interface {
	EdgeRelevance(edgeID uuid.UUID) (float64, bool)
}

// Propagator owns every score field. Nodes never carry scores; callers read
// them only through GetScore. A single update walks the ancestor chain
// through a work queue, bounded by max depth and suppressed below epsilon.
type Propagator struct {
	graph     *graph.Graph
	quality   QualityReader
	relevance RelevanceReader
	bus       *EventBus
	logger    *zap.Logger
	cfg       domain.PropagationConfig

	mu     sync.RWMutex
	scores map[uuid.UUID]domain.ScoreBreakdown
}

func NewPropagator(g *graph.Graph, quality QualityReader, bus *EventBus, logger *zap.Logger) *Propagator {
	return &Propagator{
		graph:   g,
		quality: quality,
		bus:     bus,
		logger:  logger,
		cfg:     domain.DefaultPropagationConfig(),
		scores:  make(map[uuid.UUID]domain.ScoreBreakdown),
	}
}

// SetRelevanceReader wires the linkage debate subsystem in. Optional; edges
// fall back to their stored relevance.
func (p *Propagator) SetRelevanceReader(r RelevanceReader) { p.relevance = r }

func (p *Propagator) SetConfig(cfg domain.PropagationConfig) {
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = domain.DefaultMaxDepth
	}
	if cfg.Epsilon <= 0 {
		cfg.Epsilon = domain.DefaultEpsilon
	}
	p.cfg = cfg
}

type workItem struct {
	id    uuid.UUID
	depth int
}

// Propagate recomputes the given nodes and walks changes upward through
// their parents. It returns the events it committed. The pass is synchronous
// and bounded; scores are readable as a converged snapshot once it returns.
func (p *Propagator) Propagate(seeds ...uuid.UUID) []domain.PropagationEvent {
	p.mu.Lock()
	defer p.mu.Unlock()

	pending := make(map[uuid.UUID]domain.ScoreBreakdown)
	var events []domain.PropagationEvent

	queue := make([]workItem, 0, len(seeds))
	for _, id := range seeds {
		queue = append(queue, workItem{id: id})
	}

	for len(queue) > 0 {
		item := queue[0]
		queue = queue[1:]

		node, err := p.graph.GetNode(item.id)
		if err != nil {
			continue
		}

		prev := p.currentFinal(item.id, pending)
		breakdown := p.compute(node, pending)
		delta := breakdown.Final - prev

		if math.Abs(delta) < p.cfg.Epsilon {
			// Converged here; commit the fresh components (forces, extrinsic,
			// flags may have moved even when the final held) but push nothing
			// upward and emit no event.
			pending[item.id] = breakdown
			continue
		}

		if item.depth >= p.cfg.MaxDepth {
			breakdown.DepthTruncated = true
			pending[item.id] = breakdown
			p.logger.Warn("propagation truncated at max depth",
				zap.String("node_id", item.id.String()),
				zap.Int("max_depth", p.cfg.MaxDepth))
			events = append(events, p.event(item, prev, breakdown.Final))
			continue
		}

		pending[item.id] = breakdown
		events = append(events, p.event(item, prev, breakdown.Final))

		for _, parent := range p.graph.Parents(item.id) {
			queue = append(queue, workItem{id: parent, depth: item.depth + 1})
		}
		// A changed argument also shifts the uniqueness discount of the
		// siblings it is similar to.
		if node.Kind == domain.NodeArgument {
			for _, n := range p.graph.SimilarArguments(item.id) {
				queue = append(queue, workItem{id: n.NodeID, depth: item.depth + 1})
			}
		}
	}

	for id, b := range pending {
		p.scores[id] = b
	}
	for _, ev := range events {
		p.bus.Publish(ev)
	}
	return events
}

// RecomputeAll seeds a propagation pass with every node, used after
// load-on-start. The queue converges bottom-up as changed children re-enqueue
// their parents.
func (p *Propagator) RecomputeAll() []domain.PropagationEvent {
	nodes := p.graph.Nodes()
	ids := make([]uuid.UUID, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID
	}
	return p.Propagate(ids...)
}

func (p *Propagator) event(item workItem, prev, next float64) domain.PropagationEvent {
	return domain.PropagationEvent{
		NodeID:        item.id,
		PreviousScore: prev,
		NewScore:      next,
		Delta:         next - prev,
		Depth:         item.depth,
		Timestamp:     time.Now().UTC(),
	}
}

// GetScore returns the full breakdown for a node, including per-child
// weighted contributions. Pure read.
func (p *Propagator) GetScore(nodeID uuid.UUID) (domain.ScoreBreakdown, error) {
	if _, err := p.graph.GetNode(nodeID); err != nil {
		return domain.ScoreBreakdown{}, err
	}

	p.mu.RLock()
	breakdown, ok := p.scores[nodeID]
	p.mu.RUnlock()
	if !ok {
		breakdown = domain.ScoreBreakdown{NodeID: nodeID}
	}

	breakdown.Supporting = p.contributions(p.graph.Supporters(nodeID))
	breakdown.Attacking = p.contributions(p.graph.Attackers(nodeID))
	return breakdown, nil
}

// Forget drops a removed node's score entry so snapshots and reads stop
// carrying it.
func (p *Propagator) Forget(nodeID uuid.UUID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.scores, nodeID)
}

// Final returns a node's committed final score, 0 if never scored.
func (p *Propagator) Final(nodeID uuid.UUID) float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.scores[nodeID].Final
}

// Snapshot returns final scores for the write-behind flusher.
func (p *Propagator) Snapshot() []domain.ScoreSnapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]domain.ScoreSnapshot, 0, len(p.scores))
	for id, b := range p.scores {
		out = append(out, domain.ScoreSnapshot{NodeID: id, Final: b.Final, IsDead: b.IsDead})
	}
	return out
}

// Leaderboard ranks root claims by final score, strongest first. Debunked
// claims stay listed; they sink.
func (p *Propagator) Leaderboard() []domain.LeaderboardEntry {
	roots := p.graph.Roots()

	p.mu.RLock()
	entries := make([]domain.LeaderboardEntry, 0, len(roots))
	for _, n := range roots {
		b := p.scores[n.ID]
		entries = append(entries, domain.LeaderboardEntry{
			NodeID:        n.ID,
			Statement:     n.Statement,
			FinalScore:    b.Final,
			Impact:        b.SupportingForce,
			CounterImpact: b.AttackingForce,
			NetScore:      b.SupportingForce - b.AttackingForce,
			IsDebunked:    b.IsDebunked,
		})
	}
	p.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].FinalScore != entries[j].FinalScore {
			return entries[i].FinalScore > entries[j].FinalScore
		}
		if entries[i].NetScore != entries[j].NetScore {
			return entries[i].NetScore > entries[j].NetScore
		}
		return entries[i].NodeID.String() < entries[j].NodeID.String()
	})
	for i := range entries {
		entries[i].Rank = i + 1
		entries[i].ProCount = len(p.graph.Supporters(entries[i].NodeID))
		entries[i].ConCount = len(p.graph.Attackers(entries[i].NodeID))
	}
	return entries
}

func (p *Propagator) currentFinal(id uuid.UUID, pending map[uuid.UUID]domain.ScoreBreakdown) float64 {
	if b, ok := pending[id]; ok {
		return b.Final
	}
	return p.scores[id].Final
}

// compute derives a node's breakdown from the graph and the current score
// table. Kinds are matched exhaustively; a new kind will not score silently.
func (p *Propagator) compute(node domain.Node, pending map[uuid.UUID]domain.ScoreBreakdown) domain.ScoreBreakdown {
	b := domain.ScoreBreakdown{
		NodeID:           node.ID,
		UniquenessFactor: 1.0,
		UpdatedAt:        time.Now().UTC(),
	}

	switch node.Kind {
	case domain.NodeEvidence:
		// Evidence is a leaf: verification status gated by quality.
		b.EvidenceScore = domain.StatusWeight[node.Verification] * p.quality.Score(node.ID) / 100
		b.Intrinsic = b.EvidenceScore
		b.Final = b.Intrinsic

	case domain.NodeArgument:
		b.EvidenceScore = p.evidenceScore(node.ID)
		b.UniquenessFactor = p.uniquenessFactor(node.ID, pending)
		baseImpact := node.BaseImpact
		if baseImpact == 0 {
			baseImpact = domain.DefaultBaseImpact
		}
		b.Intrinsic = baseImpact * b.UniquenessFactor * b.EvidenceScore
		p.applyExtrinsic(node.ID, &b, pending)

	case domain.NodeClaim:
		// A claim's rank is entirely derived from its children; with no
		// children it sits at neutral.
		b.Intrinsic = domain.NeutralAssessment
		p.applyExtrinsic(node.ID, &b, pending)
	}

	b.IsDebunked = b.Final < domain.DebunkedThreshold
	return b
}

// applyExtrinsic computes net child force, clamps dead nodes at zero,
// saturates via force/(force+1), and blends with the intrinsic score.
// Arguments blend with extrinsic weight n/(n+2); claims with children are
// pure extrinsic.
func (p *Propagator) applyExtrinsic(nodeID uuid.UUID, b *domain.ScoreBreakdown, pending map[uuid.UUID]domain.ScoreBreakdown) {
	supporters := p.graph.Supporters(nodeID)
	attackers := p.graph.Attackers(nodeID)

	for _, e := range supporters {
		b.SupportingForce += p.currentFinal(e.SourceID, pending) * p.edgeRelevance(e)
	}
	for _, e := range attackers {
		b.AttackingForce += p.currentFinal(e.SourceID, pending) * p.edgeRelevance(e)
	}

	n := len(supporters) + len(attackers)
	if n == 0 {
		b.Final = b.Intrinsic
		return
	}

	net := b.SupportingForce - b.AttackingForce
	if net < 0 {
		b.IsDead = true
		net = 0
	}
	b.Extrinsic = net / (net + 1)

	node, _ := p.graph.GetNode(nodeID)
	if node.Kind == domain.NodeClaim {
		b.Final = b.Extrinsic
	} else {
		w := float64(n) / float64(n+2)
		b.Final = (1-w)*b.Intrinsic + w*b.Extrinsic
	}
	if !b.IsDead && b.Final < domain.MinRankScore {
		b.Final = domain.MinRankScore
	}
}

func (p *Propagator) edgeRelevance(e domain.Edge) float64 {
	if p.relevance != nil {
		if v, ok := p.relevance.EdgeRelevance(e.ID); ok {
			return v
		}
	}
	return e.Relevance
}

// evidenceScore is the argument-side evidence gate: exactly 0 if any linked
// evidence is falsified, otherwise the mean of linked evidence weights
// (status gated by quality), or 1 with no evidence linked.
func (p *Propagator) evidenceScore(argumentID uuid.UUID) float64 {
	edges := p.graph.EvidenceFor(argumentID)
	if len(edges) == 0 {
		return 1.0
	}

	sum := 0.0
	for _, e := range edges {
		ev, err := p.graph.GetNode(e.TargetID)
		if err != nil {
			continue
		}
		if ev.Verification == domain.VerificationFalsified {
			return 0
		}
		sum += domain.StatusWeight[ev.Verification] * p.quality.Score(ev.ID) / 100
	}
	return sum / float64(len(edges))
}

// uniquenessFactor discounts an argument for each SIMILAR_TO neighbor that
// shares an aggregation with it and outranks it: near-duplicates collapse
// toward a single strong entry instead of stacking. The higher-scoring twin
// keeps full weight; ties break on id so the discount is deterministic.
func (p *Propagator) uniquenessFactor(argumentID uuid.UUID, pending map[uuid.UUID]domain.ScoreBreakdown) float64 {
	neighbors := p.graph.SimilarArguments(argumentID)
	if len(neighbors) == 0 {
		return 1.0
	}

	targets := make(map[uuid.UUID]bool)
	for _, t := range p.graph.ArgumentTargets(argumentID) {
		targets[t] = true
	}
	if len(targets) == 0 {
		return 1.0
	}

	own := p.currentFinal(argumentID, pending)
	factor := 1.0
	for _, n := range neighbors {
		shared := false
		for _, t := range p.graph.ArgumentTargets(n.NodeID) {
			if targets[t] {
				shared = true
				break
			}
		}
		if !shared {
			continue
		}
		other := p.currentFinal(n.NodeID, pending)
		outranked := other > own ||
			(other == own && strings.Compare(n.NodeID.String(), argumentID.String()) < 0)
		if outranked {
			factor *= 1 - n.Similarity
		}
	}
	if factor < domain.MinUniquenessFactor {
		factor = domain.MinUniquenessFactor
	}
	return factor
}

func (p *Propagator) contributions(edges []domain.Edge) []domain.ChildContribution {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]domain.ChildContribution, 0, len(edges))
	for _, e := range edges {
		child, err := p.graph.GetNode(e.SourceID)
		if err != nil {
			continue
		}
		score := p.scores[e.SourceID].Final
		rel := p.edgeRelevance(e)
		out = append(out, domain.ChildContribution{
			NodeID:     e.SourceID,
			Statement:  child.Statement,
			ChildScore: score,
			Relevance:  rel,
			Force:      score * rel,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Force > out[j].Force })
	return out
}
