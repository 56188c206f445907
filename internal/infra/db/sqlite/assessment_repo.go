package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	domain "github.com/bryanwahyu/assessment-intake/internal/domain/assessments"
)

// AssessmentRepository stores created_at as unix nanoseconds so ordering
// is numeric.
type AssessmentRepository struct {
	db *sql.DB
}

func NewAssessmentRepository(db *sql.DB) *AssessmentRepository {
	return &AssessmentRepository{db: db}
}

const selectColumns = `id, tenant_id, user_id, assessment_type, record_json, status, client_ip, user_agent, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAssessment(row rowScanner) (*domain.StoredAssessment, error) {
	var a domain.StoredAssessment
	var recordJSON string
	var created int64
	if err := row.Scan(&a.ID, &a.TenantID, &a.UserID, &a.AssessmentType, &recordJSON, &a.Status, &a.ClientIP, &a.UserAgent, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal([]byte(recordJSON), &a.Record); err != nil {
		return nil, fmt.Errorf("decoding record %s: %w", a.ID, err)
	}
	a.CreatedAt = time.Unix(0, created).UTC()
	return &a, nil
}

func (r *AssessmentRepository) Save(ctx context.Context, a *domain.StoredAssessment) error {
	const q = `
INSERT INTO assessment_records
  (id, tenant_id, user_id, assessment_type, record_json, status, client_ip, user_agent, created_at)
VALUES (?,?,?,?,?,?,?,?,?)
ON CONFLICT(id) DO UPDATE SET
  record_json = excluded.record_json,
  status = excluded.status;`

	body, err := json.Marshal(a.Record)
	if err != nil {
		return fmt.Errorf("encoding record: %w", err)
	}
	created := a.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	_, err = r.db.ExecContext(ctx, q,
		string(a.ID), a.TenantID, a.UserID, a.AssessmentType,
		string(body), string(a.Status), a.ClientIP, a.UserAgent, created.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("inserting assessment: %w", err)
	}
	return nil
}

func (r *AssessmentRepository) Get(ctx context.Context, tenant string, id domain.ID) (*domain.StoredAssessment, error) {
	q := `SELECT ` + selectColumns + ` FROM assessment_records WHERE tenant_id = ? AND id = ? LIMIT 1`
	return scanAssessment(r.db.QueryRowContext(ctx, q, tenant, string(id)))
}

func (r *AssessmentRepository) Latest(ctx context.Context, tenant, userID, assessmentType string) (*domain.StoredAssessment, error) {
	q := `SELECT ` + selectColumns + `
FROM assessment_records
WHERE tenant_id = ? AND user_id = ? AND assessment_type = ?
ORDER BY created_at DESC, id DESC
LIMIT 1`
	return scanAssessment(r.db.QueryRowContext(ctx, q, tenant, userID, assessmentType))
}

func (r *AssessmentRepository) History(ctx context.Context, tenant, userID string, limit int) ([]*domain.StoredAssessment, error) {
	if limit <= 0 {
		limit = 20
	}
	q := `SELECT ` + selectColumns + `
FROM assessment_records
WHERE tenant_id = ? AND user_id = ?
ORDER BY created_at DESC, id DESC
LIMIT ?`
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
WHERE tenant_id = ? AND created_at >= ?
GROUP BY assessment_type`
	rows, err := r.db.QueryContext(ctx, q, tenant, since.UnixNano())
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
