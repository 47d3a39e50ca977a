package store

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/reasonrank/reasongraph/internal/domain"
)

type ScoreStore struct {
	db *pgxpool.Pool
}

func NewScoreStore(db *pgxpool.Pool) *ScoreStore {
	return &ScoreStore{db: db}
}

// SaveSnapshot bulk-upserts the write-behind score snapshot in one batch.
func (s *ScoreStore) SaveSnapshot(ctx context.Context, scores []domain.ScoreSnapshot) error {
	batch := &pgx.Batch{}
	for _, sc := range scores {
		batch.Queue(
			`INSERT INTO node_scores (node_id, final_score, is_dead, updated_at)
			 VALUES ($1, $2, $3, now())
			 ON CONFLICT (node_id) DO UPDATE
			 SET final_score = EXCLUDED.final_score,
			     is_dead = EXCLUDED.is_dead,
			     updated_at = now()`,
			sc.NodeID, sc.Final, sc.IsDead,
		)
	}
	return s.db.SendBatch(ctx, batch).Close()
}
