package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/reasonrank/reasongraph/internal/domain"
)

type EdgeStore struct {
	db *pgxpool.Pool
}

func NewEdgeStore(db *pgxpool.Pool) *EdgeStore {
	return &EdgeStore{db: db}
}

func (s *EdgeStore) Save(ctx context.Context, e *domain.Edge) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO edges (id, kind, source_id, target_id, relevance, similarity, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (id) DO UPDATE
		 SET relevance = EXCLUDED.relevance,
		     similarity = EXCLUDED.similarity`,
		e.ID, e.Kind, e.SourceID, e.TargetID, e.Relevance, e.Similarity, e.CreatedAt,
	)
	return err
}

func (s *EdgeStore) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM edges WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *EdgeStore) LoadAll(ctx context.Context) ([]domain.Edge, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, kind, source_id, target_id, relevance, similarity, created_at FROM edges`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var edges []domain.Edge
	for rows.Next() {
		var e domain.Edge
		if err := rows.Scan(&e.ID, &e.Kind, &e.SourceID, &e.TargetID, &e.Relevance, &e.Similarity, &e.CreatedAt); err != nil {
			return nil, err
		}
		edges = append(edges, e)
	}
	return edges, rows.Err()
}
