package service

import (
	"errors"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/reasonrank/reasongraph/internal/domain"
	"github.com/reasonrank/reasongraph/internal/graph"
	"go.uber.org/zap"
)

var (
	ErrLinkageEdgeKind      = errors.New("linkage debates apply to supports/attacks edges only")
	ErrLinkageParentMissing = errors.New("parent linkage argument not found")
	ErrLinkageNotFound      = errors.New("linkage argument not found")
)

// VoteWeighter supplies the reputation weight applied to a contributor's
// linkage arguments and challenge evaluations.
type VoteWeighter interface {
	VoteWeight(contributorID uuid.UUID) float64
}

// LinkageService treats an edge's relevance as the derived score of a nested
// debate. Each recorded argument contributes its strength, weighted by its
// author's reputation and attenuated geometrically per nesting level.
type LinkageService struct {
	graph   *graph.Graph
	weights VoteWeighter
	logger  *zap.Logger

	mu     sync.RWMutex
	byEdge map[uuid.UUID][]*domain.LinkageArgument
	byID   map[uuid.UUID]*domain.LinkageArgument
	// derived relevance per edge, present once a debate has any arguments
	derived map[uuid.UUID]float64
}

func NewLinkageService(g *graph.Graph, weights VoteWeighter, logger *zap.Logger) *LinkageService {
	return &LinkageService{
		graph:   g,
		weights: weights,
		logger:  logger,
		byEdge:  make(map[uuid.UUID][]*domain.LinkageArgument),
		byID:    make(map[uuid.UUID]*domain.LinkageArgument),
		derived: make(map[uuid.UUID]float64),
	}
}

// Record adds a linkage argument to an edge's debate and recomputes the
// derived relevance. The caller is responsible for propagating the change.
func (s *LinkageService) Record(arg domain.LinkageArgument) (domain.LinkageArgument, error) {
	edge, err := s.graph.GetEdge(arg.EdgeID)
	if err != nil {
		return domain.LinkageArgument{}, err
	}
	if edge.Kind != domain.EdgeSupports && edge.Kind != domain.EdgeAttacks {
		return domain.LinkageArgument{}, ErrLinkageEdgeKind
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if arg.ParentID != nil {
		parent, ok := s.byID[*arg.ParentID]
		if !ok || parent.EdgeID != arg.EdgeID {
			return domain.LinkageArgument{}, ErrLinkageParentMissing
		}
		arg.Depth = parent.Depth + 1
	}
	if arg.ID == uuid.Nil {
		arg.ID = uuid.New()
	}
	arg.CreatedAt = time.Now().UTC()

	stored := arg
	s.byID[stored.ID] = &stored
	s.byEdge[stored.EdgeID] = append(s.byEdge[stored.EdgeID], &stored)
	s.derived[stored.EdgeID] = s.relevanceLocked(stored.EdgeID)

	s.logger.Debug("linkage argument recorded",
		zap.String("edge_id", stored.EdgeID.String()),
		zap.String("side", string(stored.Side)),
		zap.Int("depth", stored.Depth),
		zap.Float64("derived_relevance", s.derived[stored.EdgeID]))

	return stored, nil
}

// Restore re-inserts a persisted linkage argument without touching depth or
// timestamps. Used by load-on-start.
func (s *LinkageService) Restore(arg domain.LinkageArgument) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := arg
	s.byID[stored.ID] = &stored
	s.byEdge[stored.EdgeID] = append(s.byEdge[stored.EdgeID], &stored)
	s.derived[stored.EdgeID] = s.relevanceLocked(stored.EdgeID)
}

// EdgeRelevance implements RelevanceReader: it returns the debate-derived
// relevance when a debate exists for the edge.
func (s *LinkageService) EdgeRelevance(edgeID uuid.UUID) (float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.derived[edgeID]
	return v, ok
}

// Relevance returns the current relevance of an edge: debate-derived when a
// debate exists, the stored value otherwise.
func (s *LinkageService) Relevance(edgeID uuid.UUID) (float64, error) {
	edge, err := s.graph.GetEdge(edgeID)
	if err != nil {
		return 0, err
	}
	if v, ok := s.EdgeRelevance(edgeID); ok {
		return v, nil
	}
	return edge.Relevance, nil
}

// Kind classifies the debate for reporting: edges whose source argument
// carries evidence are evidence-to-conclusion debates.
func (s *LinkageService) Kind(edgeID uuid.UUID) (domain.LinkageKind, error) {
	edge, err := s.graph.GetEdge(edgeID)
	if err != nil {
		return "", err
	}
	if len(s.graph.EvidenceFor(edge.SourceID)) > 0 {
		return domain.LinkageEvidenceToConclusion, nil
	}
	return domain.LinkageArgumentToConclusion, nil
}

// Get returns one linkage argument by id.
func (s *LinkageService) Get(id uuid.UUID) (domain.LinkageArgument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.byID[id]
	if !ok {
		return domain.LinkageArgument{}, ErrLinkageNotFound
	}
	return *a, nil
}

// Arguments returns the debate entries for an edge.
func (s *LinkageService) Arguments(edgeID uuid.UUID) []domain.LinkageArgument {
	s.mu.RLock()
	defer s.mu.RUnlock()

	args := s.byEdge[edgeID]
	out := make([]domain.LinkageArgument, len(args))
	for i, a := range args {
		out[i] = *a
	}
	return out
}

// All returns every linkage argument, for persistence.
func (s *LinkageService) All() []domain.LinkageArgument {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.LinkageArgument, 0, len(s.byID))
	for _, a := range s.byID {
		out = append(out, *a)
	}
	return out
}

// AffirmationStats reports, for one contributor, how many root linkage
// arguments they have submitted and how many sit on the currently winning
// side of their debate. Feed for the linkage reputation component.
func (s *LinkageService) AffirmationStats(contributorID uuid.UUID) (submitted, affirmed int) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for edgeID, args := range s.byEdge {
		a, d := s.forcesLocked(edgeID)
		for _, arg := range args {
			if arg.CreatedBy != contributorID || arg.Depth != 0 {
				continue
			}
			submitted++
			if (arg.Side == domain.LinkagePro && a > d) || (arg.Side == domain.LinkageCon && d > a) {
				affirmed++
			}
		}
	}
	return submitted, affirmed
}

// relevanceLocked computes (A-D)/(A+D) clamped to [0,1]; an unresolved
// debate (A == D == 0) transmits nothing.
func (s *LinkageService) relevanceLocked(edgeID uuid.UUID) float64 {
	a, d := s.forcesLocked(edgeID)
	if a == 0 && d == 0 {
		return 0
	}
	rel := (a - d) / (a + d)
	if rel < 0 {
		return 0
	}
	return rel
}

func (s *LinkageService) forcesLocked(edgeID uuid.UUID) (pro, con float64) {
	for _, arg := range s.byEdge[edgeID] {
		weight := 1.0
		if s.weights != nil {
			weight = s.weights.VoteWeight(arg.CreatedBy)
		}
		contribution := arg.Strength * weight * math.Pow(domain.DepthAttenuation, float64(arg.Depth))
		if arg.Side == domain.LinkagePro {
			pro += contribution
		} else {
			con += contribution
		}
	}
	return pro, con
}
