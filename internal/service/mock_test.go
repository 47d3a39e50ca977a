package service

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/reasonrank/reasongraph/internal/domain"
)

type mockNodeStore struct {
	mu    sync.Mutex
	nodes map[uuid.UUID]domain.Node
}

func newMockNodeStore() *mockNodeStore {
	return &mockNodeStore{nodes: make(map[uuid.UUID]domain.Node)}
}

func (m *mockNodeStore) Save(ctx context.Context, n *domain.Node) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nodes[n.ID] = *n
	return nil
}

func (m *mockNodeStore) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.nodes, id)
	return nil
}

func (m *mockNodeStore) LoadAll(ctx context.Context) ([]domain.Node, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Node, 0, len(m.nodes))
	for _, n := range m.nodes {
		out = append(out, n)
	}
	return out, nil
}

type mockEdgeStore struct {
	mu    sync.Mutex
	edges map[uuid.UUID]domain.Edge
}

func newMockEdgeStore() *mockEdgeStore {
	return &mockEdgeStore{edges: make(map[uuid.UUID]domain.Edge)}
}

func (m *mockEdgeStore) Save(ctx context.Context, e *domain.Edge) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.edges[e.ID] = *e
	return nil
}

func (m *mockEdgeStore) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.edges, id)
	return nil
}

func (m *mockEdgeStore) LoadAll(ctx context.Context) ([]domain.Edge, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Edge, 0, len(m.edges))
	for _, e := range m.edges {
		out = append(out, e)
	}
	return out, nil
}

type mockQualityStore struct {
	mu      sync.Mutex
	records map[uuid.UUID]domain.EvidenceQuality
}

func newMockQualityStore() *mockQualityStore {
	return &mockQualityStore{records: make(map[uuid.UUID]domain.EvidenceQuality)}
}

func (m *mockQualityStore) Save(ctx context.Context, q *domain.EvidenceQuality) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[q.EvidenceID] = *q
	return nil
}

func (m *mockQualityStore) LoadAll(ctx context.Context) ([]domain.EvidenceQuality, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.EvidenceQuality, 0, len(m.records))
	for _, q := range m.records {
		out = append(out, q)
	}
	return out, nil
}

type mockChallengeStore struct {
	mu         sync.Mutex
	challenges map[uuid.UUID]domain.MethodologyChallenge
}

func newMockChallengeStore() *mockChallengeStore {
	return &mockChallengeStore{challenges: make(map[uuid.UUID]domain.MethodologyChallenge)}
}

func (m *mockChallengeStore) Save(ctx context.Context, c *domain.MethodologyChallenge) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.challenges[c.ID] = *c
	return nil
}

func (m *mockChallengeStore) LoadAll(ctx context.Context) ([]domain.MethodologyChallenge, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.MethodologyChallenge, 0, len(m.challenges))
	for _, c := range m.challenges {
		out = append(out, c)
	}
	return out, nil
}

type mockContributorStore struct {
	mu           sync.Mutex
	contributors map[uuid.UUID]domain.Contributor
}

func newMockContributorStore() *mockContributorStore {
	return &mockContributorStore{contributors: make(map[uuid.UUID]domain.Contributor)}
}

func (m *mockContributorStore) Save(ctx context.Context, c *domain.Contributor) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.contributors[c.ID] = *c
	return nil
}

func (m *mockContributorStore) LoadAll(ctx context.Context) ([]domain.Contributor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Contributor, 0, len(m.contributors))
	for _, c := range m.contributors {
		out = append(out, c)
	}
	return out, nil
}

type mockLinkageStore struct {
	mu   sync.Mutex
	args map[uuid.UUID]domain.LinkageArgument
}

func newMockLinkageStore() *mockLinkageStore {
	return &mockLinkageStore{args: make(map[uuid.UUID]domain.LinkageArgument)}
}

func (m *mockLinkageStore) Save(ctx context.Context, a *domain.LinkageArgument) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.args[a.ID] = *a
	return nil
}

func (m *mockLinkageStore) LoadAll(ctx context.Context) ([]domain.LinkageArgument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.LinkageArgument, 0, len(m.args))
	for _, a := range m.args {
		out = append(out, a)
	}
	return out, nil
}

type mockScoreStore struct {
	mu      sync.Mutex
	flushes int
	last    []domain.ScoreSnapshot
}

func (m *mockScoreStore) SaveSnapshot(ctx context.Context, scores []domain.ScoreSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.flushes++
	m.last = append([]domain.ScoreSnapshot{}, scores...)
	return nil
}
