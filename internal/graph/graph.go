package graph

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/reasonrank/reasongraph/internal/domain"
)

var (
	ErrCycle        = errors.New("edge would create a cycle in the supports/attacks subgraph")
	ErrDanglingEdge = errors.New("edge references a missing node")
	ErrNodeNotFound = errors.New("node not found")
	ErrEdgeNotFound = errors.New("edge not found")
	ErrBadEndpoint  = errors.New("edge endpoints have the wrong node kinds")
)

// Graph is the in-memory store of nodes and typed edges. One RWMutex covers
// the whole graph: writes are exclusive, traversal reads run concurrently and
// see a consistent snapshot. Scores are not stored here.
type Graph struct {
	mu    sync.RWMutex
	nodes map[uuid.UUID]domain.Node
	edges map[uuid.UUID]domain.Edge
	out   map[uuid.UUID][]uuid.UUID // node id -> edge ids where node is source
	in    map[uuid.UUID][]uuid.UUID // node id -> edge ids where node is target
}

func New() *Graph {
	return &Graph{
		nodes: make(map[uuid.UUID]domain.Node),
		edges: make(map[uuid.UUID]domain.Edge),
		out:   make(map[uuid.UUID][]uuid.UUID),
		in:    make(map[uuid.UUID][]uuid.UUID),
	}
}

func (g *Graph) AddNode(n domain.Node) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if n.ID == uuid.Nil {
		return fmt.Errorf("%w: node has no id", ErrNodeNotFound)
	}
	g.nodes[n.ID] = n
	return nil
}

func (g *Graph) GetNode(id uuid.UUID) (domain.Node, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	n, ok := g.nodes[id]
	if !ok {
		return domain.Node{}, ErrNodeNotFound
	}
	return n, nil
}

func (g *Graph) UpdateNode(n domain.Node) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.nodes[n.ID]; !ok {
		return ErrNodeNotFound
	}
	g.nodes[n.ID] = n
	return nil
}

// RemoveNode removes a node after cascading removal of all incident edges,
// so no dangling edges survive.
func (g *Graph) RemoveNode(id uuid.UUID) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.nodes[id]; !ok {
		return ErrNodeNotFound
	}
	for _, edgeID := range append(append([]uuid.UUID{}, g.out[id]...), g.in[id]...) {
		g.removeEdgeLocked(edgeID)
	}
	delete(g.out, id)
	delete(g.in, id)
	delete(g.nodes, id)
	return nil
}

// AddEdge validates endpoints and kinds, rejects SUPPORTS/ATTACKS edges that
// would close a cycle, and stores the edge. The graph is unchanged on error.
func (g *Graph) AddEdge(e domain.Edge) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	src, ok := g.nodes[e.SourceID]
	if !ok {
		return fmt.Errorf("%w: source %s", ErrDanglingEdge, e.SourceID)
	}
	tgt, ok := g.nodes[e.TargetID]
	if !ok {
		return fmt.Errorf("%w: target %s", ErrDanglingEdge, e.TargetID)
	}

	switch e.Kind {
	case domain.EdgeSupports, domain.EdgeAttacks:
		if src.Kind != domain.NodeArgument {
			return fmt.Errorf("%w: %s source must be an argument", ErrBadEndpoint, e.Kind)
		}
		if tgt.Kind == domain.NodeEvidence {
			return fmt.Errorf("%w: %s target must be a claim or argument", ErrBadEndpoint, e.Kind)
		}
		if e.SourceID == e.TargetID || g.reachesLocked(e.TargetID, e.SourceID) {
			return ErrCycle
		}
	case domain.EdgeHasEvidence:
		if src.Kind != domain.NodeArgument || tgt.Kind != domain.NodeEvidence {
			return fmt.Errorf("%w: has_evidence links an argument to evidence", ErrBadEndpoint)
		}
	case domain.EdgeSimilarTo:
		if src.Kind != domain.NodeArgument || tgt.Kind != domain.NodeArgument {
			return fmt.Errorf("%w: similar_to links two arguments", ErrBadEndpoint)
		}
	default:
		return fmt.Errorf("%w: unknown edge kind %q", ErrBadEndpoint, e.Kind)
	}

	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	g.edges[e.ID] = e
	g.out[e.SourceID] = append(g.out[e.SourceID], e.ID)
	g.in[e.TargetID] = append(g.in[e.TargetID], e.ID)
	return nil
}

func (g *Graph) GetEdge(id uuid.UUID) (domain.Edge, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	e, ok := g.edges[id]
	if !ok {
		return domain.Edge{}, ErrEdgeNotFound
	}
	return e, nil
}

func (g *Graph) UpdateEdge(e domain.Edge) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	old, ok := g.edges[e.ID]
	if !ok {
		return ErrEdgeNotFound
	}
	// Endpoints and kind are immutable; only weights may change.
	e.SourceID, e.TargetID, e.Kind, e.CreatedAt = old.SourceID, old.TargetID, old.Kind, old.CreatedAt
	g.edges[e.ID] = e
	return nil
}

func (g *Graph) RemoveEdge(id uuid.UUID) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.edges[id]; !ok {
		return ErrEdgeNotFound
	}
	g.removeEdgeLocked(id)
	return nil
}

func (g *Graph) removeEdgeLocked(id uuid.UUID) {
	e, ok := g.edges[id]
	if !ok {
		return
	}
	g.out[e.SourceID] = removeID(g.out[e.SourceID], id)
	g.in[e.TargetID] = removeID(g.in[e.TargetID], id)
	delete(g.edges, id)
}

func removeID(ids []uuid.UUID, id uuid.UUID) []uuid.UUID {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}

// reachesLocked reports whether target is reachable from start following
// SUPPORTS/ATTACKS edges. Breadth-first, bounded by the reachable subgraph.
func (g *Graph) reachesLocked(start, target uuid.UUID) bool {
	visited := map[uuid.UUID]bool{start: true}
	queue := []uuid.UUID{start}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, edgeID := range g.out[cur] {
			e := g.edges[edgeID]
			if e.Kind != domain.EdgeSupports && e.Kind != domain.EdgeAttacks {
				continue
			}
			if e.TargetID == target {
				return true
			}
			if !visited[e.TargetID] {
				visited[e.TargetID] = true
				queue = append(queue, e.TargetID)
			}
		}
	}
	return false
}

// Supporters returns SUPPORTS edges whose target is the given node.
func (g *Graph) Supporters(nodeID uuid.UUID) []domain.Edge {
	return g.incoming(nodeID, domain.EdgeSupports)
}

// Attackers returns ATTACKS edges whose target is the given node.
func (g *Graph) Attackers(nodeID uuid.UUID) []domain.Edge {
	return g.incoming(nodeID, domain.EdgeAttacks)
}

// EvidenceFor returns HAS_EVIDENCE edges sourced at the given argument.
func (g *Graph) EvidenceFor(argumentID uuid.UUID) []domain.Edge {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var edges []domain.Edge
	for _, edgeID := range g.out[argumentID] {
		if e := g.edges[edgeID]; e.Kind == domain.EdgeHasEvidence {
			edges = append(edges, e)
		}
	}
	return edges
}

// SimilarNeighbor pairs a neighboring argument with the similarity of the
// SIMILAR_TO edge that connects it.
type SimilarNeighbor struct {
	NodeID     uuid.UUID
	Similarity float64
}

// SimilarArguments traverses SIMILAR_TO edges in both directions.
func (g *Graph) SimilarArguments(argumentID uuid.UUID) []SimilarNeighbor {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var neighbors []SimilarNeighbor
	for _, edgeID := range g.out[argumentID] {
		if e := g.edges[edgeID]; e.Kind == domain.EdgeSimilarTo {
			neighbors = append(neighbors, SimilarNeighbor{NodeID: e.TargetID, Similarity: e.Similarity})
		}
	}
	for _, edgeID := range g.in[argumentID] {
		if e := g.edges[edgeID]; e.Kind == domain.EdgeSimilarTo {
			neighbors = append(neighbors, SimilarNeighbor{NodeID: e.SourceID, Similarity: e.Similarity})
		}
	}
	return neighbors
}

// Parents returns the ids of nodes whose score depends directly on the given
// node: targets of its SUPPORTS/ATTACKS edges, and for evidence the
// arguments holding HAS_EVIDENCE edges to it.
func (g *Graph) Parents(nodeID uuid.UUID) []uuid.UUID {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var parents []uuid.UUID
	for _, edgeID := range g.out[nodeID] {
		if e := g.edges[edgeID]; e.Kind == domain.EdgeSupports || e.Kind == domain.EdgeAttacks {
			parents = append(parents, e.TargetID)
		}
	}
	for _, edgeID := range g.in[nodeID] {
		if e := g.edges[edgeID]; e.Kind == domain.EdgeHasEvidence {
			parents = append(parents, e.SourceID)
		}
	}
	return parents
}

// ArgumentTargets returns the targets of the argument's SUPPORTS/ATTACKS
// edges, i.e. the aggregations the argument participates in.
func (g *Graph) ArgumentTargets(argumentID uuid.UUID) []uuid.UUID {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var targets []uuid.UUID
	for _, edgeID := range g.out[argumentID] {
		if e := g.edges[edgeID]; e.Kind == domain.EdgeSupports || e.Kind == domain.EdgeAttacks {
			targets = append(targets, e.TargetID)
		}
	}
	return targets
}

// Siblings returns arguments sharing at least one SUPPORTS/ATTACKS target
// with the given argument.
func (g *Graph) Siblings(argumentID uuid.UUID) []uuid.UUID {
	targets := g.ArgumentTargets(argumentID)

	g.mu.RLock()
	defer g.mu.RUnlock()

	seen := map[uuid.UUID]bool{argumentID: true}
	var siblings []uuid.UUID
	for _, t := range targets {
		for _, edgeID := range g.in[t] {
			e := g.edges[edgeID]
			if e.Kind != domain.EdgeSupports && e.Kind != domain.EdgeAttacks {
				continue
			}
			if !seen[e.SourceID] {
				seen[e.SourceID] = true
				siblings = append(siblings, e.SourceID)
			}
		}
	}
	return siblings
}

// Roots returns claims with no outgoing SUPPORTS/ATTACKS edges.
func (g *Graph) Roots() []domain.Node {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var roots []domain.Node
	for id, n := range g.nodes {
		if n.Kind != domain.NodeClaim {
			continue
		}
		top := true
		for _, edgeID := range g.out[id] {
			if e := g.edges[edgeID]; e.Kind == domain.EdgeSupports || e.Kind == domain.EdgeAttacks {
				top = false
				break
			}
		}
		if top {
			roots = append(roots, n)
		}
	}
	return roots
}

// Nodes returns a snapshot of all nodes.
func (g *Graph) Nodes() []domain.Node {
	g.mu.RLock()
	defer g.mu.RUnlock()

	nodes := make([]domain.Node, 0, len(g.nodes))
	for _, n := range g.nodes {
		nodes = append(nodes, n)
	}
	return nodes
}

// Edges returns a snapshot of all edges.
func (g *Graph) Edges() []domain.Edge {
	g.mu.RLock()
	defer g.mu.RUnlock()

	edges := make([]domain.Edge, 0, len(g.edges))
	for _, e := range g.edges {
		edges = append(edges, e)
	}
	return edges
}

func (g *Graph) incoming(nodeID uuid.UUID, kind domain.EdgeKind) []domain.Edge {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var edges []domain.Edge
	for _, edgeID := range g.in[nodeID] {
		if e := g.edges[edgeID]; e.Kind == kind {
			edges = append(edges, e)
		}
	}
	return edges
}
