package store

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/reasonrank/reasongraph/internal/domain"
)

type ChallengeStore struct {
	db *pgxpool.Pool
}

func NewChallengeStore(db *pgxpool.Pool) *ChallengeStore {
	return &ChallengeStore{db: db}
}

func (s *ChallengeStore) Save(ctx context.Context, c *domain.MethodologyChallenge) error {
	evaluations, err := json.Marshal(c.Evaluations)
	if err != nil {
		return err
	}

	var verdict any
	if c.ConsensusVerdict != nil {
		verdict = string(*c.ConsensusVerdict)
	}

	_, err = s.db.Exec(ctx,
		`INSERT INTO methodology_challenges
		   (id, evidence_id, challenge_type, affected_pattern, claim, description,
		    submitted_by, evaluations, consensus_verdict, weighted_impact, applied, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 ON CONFLICT (id) DO UPDATE
		 SET evaluations = EXCLUDED.evaluations,
		     consensus_verdict = EXCLUDED.consensus_verdict,
		     weighted_impact = EXCLUDED.weighted_impact,
		     applied = EXCLUDED.applied`,
		c.ID, c.EvidenceID, c.Type, c.AffectedPattern, c.Claim, c.Description,
		c.SubmittedBy, evaluations, verdict, c.WeightedImpact, c.Applied, c.CreatedAt,
	)
	return err
}

func (s *ChallengeStore) LoadAll(ctx context.Context) ([]domain.MethodologyChallenge, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, evidence_id, challenge_type, affected_pattern, claim, description,
		        submitted_by, evaluations, consensus_verdict, weighted_impact, applied, created_at
		 FROM methodology_challenges`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var challenges []domain.MethodologyChallenge
	for rows.Next() {
		var c domain.MethodologyChallenge
		var evaluations []byte
		var verdict *string
		if err := rows.Scan(&c.ID, &c.EvidenceID, &c.Type, &c.AffectedPattern, &c.Claim, &c.Description,
			&c.SubmittedBy, &evaluations, &verdict, &c.WeightedImpact, &c.Applied, &c.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(evaluations, &c.Evaluations); err != nil {
			return nil, err
		}
		if verdict != nil {
			v := domain.Verdict(*verdict)
			c.ConsensusVerdict = &v
		}
		challenges = append(challenges, c)
	}
	return challenges, rows.Err()
}
