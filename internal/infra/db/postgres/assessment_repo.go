package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	domain "github.com/bryanwahyu/assessment-intake/internal/domain/assessments"
)

type AssessmentRepository struct{ db *sql.DB }

func NewAssessmentRepository(db *sql.DB) *AssessmentRepository {
	return &AssessmentRepository{db: db}
}

// Save inserts or updates a stored assessment
func (r *AssessmentRepository) Save(ctx context.Context, a *domain.StoredAssessment) error {
	const q = `
INSERT INTO assessment_records
  (id, tenant_id, user_id, assessment_type, record_json, status, client_ip, user_agent, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
ON CONFLICT (id) DO UPDATE SET
  record_json = EXCLUDED.record_json,
  status = EXCLUDED.status;`

	body, err := json.Marshal(a.Record)
	if err != nil {
		return fmt.Errorf("encoding record: %w", err)
	}
	created := a.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	_, err = r.db.ExecContext(ctx, q,
		a.ID, stringOrDash(a.TenantID), a.UserID, a.AssessmentType,
		string(body), stringOrDash(string(a.Status)), a.ClientIP, a.UserAgent, created,
	)
	return err
}

func (r *AssessmentRepository) Get(ctx context.Context, tenant string, id domain.ID) (*domain.StoredAssessment, error) {
	q := `SELECT ` + selectColumns + ` FROM assessment_records WHERE tenant_id=$1 AND id=$2 LIMIT 1;`
	return scanAssessment(r.db.QueryRowContext(ctx, q, tenant, id))
}

func (r *AssessmentRepository) Latest(ctx context.Context, tenant, userID, assessmentType string) (*domain.StoredAssessment, error) {
	q := `SELECT ` + selectColumns + `
FROM assessment_records
WHERE tenant_id=$1 AND user_id=$2 AND assessment_type=$3
ORDER BY created_at DESC, id DESC
LIMIT 1;`
	return scanAssessment(r.db.QueryRowContext(ctx, q, tenant, userID, assessmentType))
}

func (r *AssessmentRepository) History(ctx context.Context, tenant, userID string, limit int) ([]*domain.StoredAssessment, error) {
	if limit <= 0 {
		limit = 20
	}
	q := `SELECT ` + selectColumns + `
FROM assessment_records
WHERE tenant_id=$1 AND user_id=$2
ORDER BY created_at DESC, id DESC
LIMIT $3;`
	rows, err := r.db.QueryContext(ctx, q, tenant, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var out []*domain.StoredAssessment
	for rows.Next() {
		a, err := scanAssessment(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *AssessmentRepository) CountByType(ctx context.Context, tenant string, since time.Time) (map[string]int, error) {
	const q = `
SELECT assessment_type, COUNT(*)
FROM assessment_records
WHERE tenant_id=$1 AND created_at >= $2
GROUP BY assessment_type;`
	rows, err := r.db.QueryContext(ctx, q, tenant, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]int{}
	for rows.Next() {
		var typ string
		var n int
		if err := rows.Scan(&typ, &n); err != nil {
			return nil, err
		}
		out[typ] = n
	}
	return out, rows.Err()
}
