package store

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/reasonrank/reasongraph/internal/domain"
)

type ContributorStore struct {
	db *pgxpool.Pool
}

func NewContributorStore(db *pgxpool.Pool) *ContributorStore {
	return &ContributorStore{db: db}
}

func (s *ContributorStore) Save(ctx context.Context, c *domain.Contributor) error {
	credentials, err := json.Marshal(c.Credentials)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(ctx,
		`INSERT INTO contributors
		   (id, name, credentials, valid_challenges, invalid_challenges,
		    accurate_evaluations, evaluations_submitted, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (id) DO UPDATE
		 SET name = EXCLUDED.name,
		     credentials = EXCLUDED.credentials,
		     valid_challenges = EXCLUDED.valid_challenges,
		     invalid_challenges = EXCLUDED.invalid_challenges,
		     accurate_evaluations = EXCLUDED.accurate_evaluations,
		     evaluations_submitted = EXCLUDED.evaluations_submitted`,
		c.ID, c.Name, credentials,
		c.Methodology.ValidChallenges, c.Methodology.InvalidChallenges,
		c.Methodology.AccurateEvaluations, c.Methodology.EvaluationsSubmitted,
		c.CreatedAt,
	)
	return err
}

func (s *ContributorStore) LoadAll(ctx context.Context) ([]domain.Contributor, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, name, credentials, valid_challenges, invalid_challenges,
		        accurate_evaluations, evaluations_submitted, created_at
		 FROM contributors`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var contributors []domain.Contributor
	for rows.Next() {
		var c domain.Contributor
		var credentials []byte
		if err := rows.Scan(&c.ID, &c.Name, &credentials,
			&c.Methodology.ValidChallenges, &c.Methodology.InvalidChallenges,
			&c.Methodology.AccurateEvaluations, &c.Methodology.EvaluationsSubmitted,
			&c.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(credentials, &c.Credentials); err != nil {
			return nil, err
		}
		contributors = append(contributors, c)
	}
	return contributors, rows.Err()
}
