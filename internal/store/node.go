package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/reasonrank/reasongraph/internal/domain"
)

type NodeStore struct {
	db *pgxpool.Pool
}

func NewNodeStore(db *pgxpool.Pool) *NodeStore {
	return &NodeStore{db: db}
}

func (s *NodeStore) Save(ctx context.Context, n *domain.Node) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO nodes (id, kind, statement, created_by, created_at, argument_type, base_impact, source_url, verification_status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (id) DO UPDATE
		 SET statement = EXCLUDED.statement,
		     base_impact = EXCLUDED.base_impact,
		     source_url = EXCLUDED.source_url,
		     verification_status = EXCLUDED.verification_status`,
		n.ID, n.Kind, n.Statement, n.CreatedBy, n.CreatedAt,
		nullString(string(n.ArgumentType)), n.BaseImpact, nullString(n.SourceURL), nullString(string(n.Verification)),
	)
	return err
}

func (s *NodeStore) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM nodes WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *NodeStore) LoadAll(ctx context.Context) ([]domain.Node, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, kind, statement, created_by, created_at,
		        COALESCE(argument_type, ''), base_impact,
		        COALESCE(source_url, ''), COALESCE(verification_status, '')
		 FROM nodes`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var nodes []domain.Node
	for rows.Next() {
		var n domain.Node
		var argType, status string
		if err := rows.Scan(&n.ID, &n.Kind, &n.Statement, &n.CreatedBy, &n.CreatedAt,
			&argType, &n.BaseImpact, &n.SourceURL, &status); err != nil {
			return nil, err
		}
		n.ArgumentType = domain.ArgumentType(argType)
		n.Verification = domain.VerificationStatus(status)
		nodes = append(nodes, n)
	}
	return nodes, rows.Err()
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
