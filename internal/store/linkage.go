package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/reasonrank/reasongraph/internal/domain"
)

type LinkageStore struct {
	db *pgxpool.Pool
}

func NewLinkageStore(db *pgxpool.Pool) *LinkageStore {
	return &LinkageStore{db: db}
}

func (s *LinkageStore) Save(ctx context.Context, a *domain.LinkageArgument) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO linkage_arguments (id, edge_id, parent_id, side, statement, strength, created_by, depth, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (id) DO NOTHING`,
		a.ID, a.EdgeID, a.ParentID, a.Side, a.Statement, a.Strength, a.CreatedBy, a.Depth, a.CreatedAt,
	)
	return err
}

func (s *LinkageStore) LoadAll(ctx context.Context) ([]domain.LinkageArgument, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, edge_id, parent_id, side, statement, strength, created_by, depth, created_at
		 FROM linkage_arguments ORDER BY depth, created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var args []domain.LinkageArgument
	for rows.Next() {
		var a domain.LinkageArgument
		var parentID *uuid.UUID
		if err := rows.Scan(&a.ID, &a.EdgeID, &parentID, &a.Side, &a.Statement, &a.Strength, &a.CreatedBy, &a.Depth, &a.CreatedAt); err != nil {
			return nil, err
		}
		a.ParentID = parentID
		args = append(args, a)
	}
	return args, rows.Err()
}
