package similarity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	gocache "github.com/patrickmn/go-cache"
	"github.com/pgvector/pgvector-go"
	"go.uber.org/zap"
)

var ErrEmbeddingMissing = errors.New("statement embedding not found")

// PGVector stores statement embeddings and reads cosine similarity between
// them. Embeddings arrive from an external encoder through Upsert; the engine
// never computes them. Pair lookups are memoized with a TTL cache since a
// pair's similarity only moves when its embeddings are re-ingested.
type PGVector struct {
	db     *pgxpool.Pool
	cache  *gocache.Cache
	ttl    time.Duration
	logger *zap.Logger
}

func NewPGVector(db *pgxpool.Pool, ttl time.Duration, logger *zap.Logger) *PGVector {
	return &PGVector{
		db:     db,
		cache:  gocache.New(ttl, 2*ttl),
		ttl:    ttl,
		logger: logger,
	}
}

func (p *PGVector) Similarity(ctx context.Context, a, b uuid.UUID) (float64, error) {
	key := cacheKey(a, b)
	if v, found := p.cache.Get(key); found {
		return v.(float64), nil
	}

	var similarity float64
	err := p.db.QueryRow(ctx,
		`SELECT 1 - (ea.embedding <=> eb.embedding)
		 FROM statement_embeddings ea, statement_embeddings eb
		 WHERE ea.node_id = $1 AND eb.node_id = $2`,
		a, b,
	).Scan(&similarity)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("%w: %s / %s", ErrEmbeddingMissing, a, b)
		}
		return 0, err
	}

	// Cosine distance can drift slightly outside [0,2] with quantized
	// vectors; keep the similarity score in range.
	if similarity < 0 {
		similarity = 0
	}
	if similarity > 1 {
		similarity = 1
	}

	p.cache.Set(key, similarity, p.ttl)
	p.logger.Debug("similarity computed",
		zap.String("a", a.String()),
		zap.String("b", b.String()),
		zap.Float64("similarity", similarity))
	return similarity, nil
}

// Upsert writes a statement embedding and drops any memoized pairs involving
// the node. Pair invalidation scans the cache; embeddings re-ingest rarely.
func (p *PGVector) Upsert(ctx context.Context, nodeID uuid.UUID, embedding []float32) error {
	_, err := p.db.Exec(ctx,
		`INSERT INTO statement_embeddings (node_id, embedding, updated_at)
		 VALUES ($1, $2, now())
		 ON CONFLICT (node_id) DO UPDATE SET embedding = $2, updated_at = now()`,
		nodeID, pgvector.NewVector(embedding),
	)
	if err != nil {
		return err
	}

	prefix := nodeID.String()
	for key := range p.cache.Items() {
		if strings.HasPrefix(key, prefix) || strings.HasSuffix(key, prefix) {
			p.cache.Delete(key)
		}
	}
	return nil
}

// Neighbor is one nearest-embedding candidate.
type Neighbor struct {
	NodeID     uuid.UUID `json:"node_id"`
	Similarity float64   `json:"similarity"`
}

// Nearest returns the closest embedded nodes to the given one, most similar
// first. The node itself is excluded.
func (p *PGVector) Nearest(ctx context.Context, nodeID uuid.UUID, limit int) ([]Neighbor, error) {
	rows, err := p.db.Query(ctx,
		`SELECT eb.node_id, 1 - (ea.embedding <=> eb.embedding)
		 FROM statement_embeddings ea
		 JOIN statement_embeddings eb ON eb.node_id <> ea.node_id
		 WHERE ea.node_id = $1
		 ORDER BY ea.embedding <=> eb.embedding
		 LIMIT $2`,
		nodeID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var neighbors []Neighbor
	for rows.Next() {
		var n Neighbor
		if err := rows.Scan(&n.NodeID, &n.Similarity); err != nil {
			return nil, err
		}
		if n.Similarity < 0 {
			n.Similarity = 0
		}
		if n.Similarity > 1 {
			n.Similarity = 1
		}
		neighbors = append(neighbors, n)
	}
	return neighbors, rows.Err()
}

func cacheKey(a, b uuid.UUID) string {
	as, bs := a.String(), b.String()
	if as > bs {
		as, bs = bs, as
	}
	return as + ":" + bs
}
