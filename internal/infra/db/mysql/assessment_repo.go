package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	domain "github.com/bryanwahyu/assessment-intake/internal/domain/assessments"
)

type AssessmentRepository struct {
	db *sql.DB
}

func NewAssessmentRepository(db *sql.DB) *AssessmentRepository {
	return &AssessmentRepository{db: db}
}

// Save insert/update StoredAssessment record
func (r *AssessmentRepository) Save(ctx context.Context, a *domain.StoredAssessment) error {
	const q = `
INSERT INTO assessment_records
  (id, tenant_id, user_id, assessment_type, record_json, status, client_ip, user_agent, created_at)
VALUES (?,?,?,?,?,?,?,?,?)
ON DUPLICATE KEY UPDATE
  record_json=VALUES(record_json), status=VALUES(status);
`
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
		string(body), stringOrDash(string(a.Status)), a.ClientIP, a.UserAgent, created.UTC(),
	)
	return err
}

// Get by ID + Tenant
func (r *AssessmentRepository) Get(ctx context.Context, tenant string, id domain.ID) (*domain.StoredAssessment, error) {
	q := `SELECT ` + selectColumns + ` FROM assessment_records WHERE tenant_id=? AND id=? LIMIT 1;`
	return scanAssessment(r.db.QueryRowContext(ctx, q, tenant, id))
}

// Latest assessment of one type for a user
func (r *AssessmentRepository) Latest(ctx context.Context, tenant, userID, assessmentType string) (*domain.StoredAssessment, error) {
	q := `SELECT ` + selectColumns + `
FROM assessment_records
WHERE tenant_id=? AND user_id=? AND assessment_type=?
ORDER BY created_at DESC, id DESC
LIMIT 1;`
	return scanAssessment(r.db.QueryRowContext(ctx, q, tenant, userID, assessmentType))
}

// History returns a user's assessments newest first
func (r *AssessmentRepository) History(ctx context.Context, tenant, userID string, limit int) ([]*domain.StoredAssessment, error) {
	if limit <= 0 {
		limit = 20
	}
	q := `SELECT ` + selectColumns + `
FROM assessment_records
WHERE tenant_id=? AND user_id=?
ORDER BY created_at DESC, id DESC
LIMIT ?;`
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

// CountByType counts assessments per type since a point in time
func (r *AssessmentRepository) CountByType(ctx context.Context, tenant string, since time.Time) (map[string]int, error) {
	const q = `
SELECT assessment_type, COUNT(*)
FROM assessment_records
WHERE tenant_id=? AND created_at >= ?
GROUP BY assessment_type;`
	rows, err := r.db.QueryContext(ctx, q, tenant, since.UTC())
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
