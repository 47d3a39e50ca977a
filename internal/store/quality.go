package store

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/reasonrank/reasongraph/internal/domain"
)

type QualityStore struct {
	db *pgxpool.Pool
}

func NewQualityStore(db *pgxpool.Pool) *QualityStore {
	return &QualityStore{db: db}
}

// Save upserts the full quality record. The four pattern sub-structures are
// stored as one JSONB document; challenge impact counters get columns so the
// audit queries stay cheap.
func (s *QualityStore) Save(ctx context.Context, q *domain.EvidenceQuality) error {
	patterns, err := json.Marshal(struct {
		Transparency   domain.TransparencyRecord   `json:"transparency"`
		Replication    domain.ReplicationRecord    `json:"replication"`
		Falsifiability domain.FalsifiabilityRecord `json:"falsifiability"`
		Assumptions    domain.AssumptionRecord     `json:"assumptions"`
	}{q.Transparency, q.Replication, q.Falsifiability, q.Assumptions})
	if err != nil {
		return err
	}

	_, err = s.db.Exec(ctx,
		`INSERT INTO evidence_quality (evidence_id, patterns, accepted_challenges, total_quality_reduction, updated_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (evidence_id) DO UPDATE
		 SET patterns = EXCLUDED.patterns,
		     accepted_challenges = EXCLUDED.accepted_challenges,
		     total_quality_reduction = EXCLUDED.total_quality_reduction,
		     updated_at = EXCLUDED.updated_at`,
		q.EvidenceID, patterns, q.Impact.AcceptedChallenges, q.Impact.TotalQualityReduction, q.UpdatedAt,
	)
	return err
}

func (s *QualityStore) LoadAll(ctx context.Context) ([]domain.EvidenceQuality, error) {
	rows, err := s.db.Query(ctx,
		`SELECT evidence_id, patterns, accepted_challenges, total_quality_reduction, updated_at FROM evidence_quality`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []domain.EvidenceQuality
	for rows.Next() {
		var q domain.EvidenceQuality
		var patterns []byte
		if err := rows.Scan(&q.EvidenceID, &patterns, &q.Impact.AcceptedChallenges, &q.Impact.TotalQualityReduction, &q.UpdatedAt); err != nil {
			return nil, err
		}
		var doc struct {
			Transparency   domain.TransparencyRecord   `json:"transparency"`
			Replication    domain.ReplicationRecord    `json:"replication"`
			Falsifiability domain.FalsifiabilityRecord `json:"falsifiability"`
			Assumptions    domain.AssumptionRecord     `json:"assumptions"`
		}
		if err := json.Unmarshal(patterns, &doc); err != nil {
			return nil, err
		}
		q.Transparency = doc.Transparency
		q.Replication = doc.Replication
		q.Falsifiability = doc.Falsifiability
		q.Assumptions = doc.Assumptions
		records = append(records, q)
	}
	return records, rows.Err()
}
