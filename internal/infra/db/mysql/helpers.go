package mysql

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	domain "github.com/bryanwahyu/assessment-intake/internal/domain/assessments"
)

// stringOrDash returns "-" when the input is empty/whitespace
func stringOrDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

type rowScanner interface {
	Scan(dest ...any) error
}

const selectColumns = `id, tenant_id, user_id, assessment_type, record_json, status, client_ip, user_agent, created_at`

func scanAssessment(row rowScanner) (*domain.StoredAssessment, error) {
	var a domain.StoredAssessment
	var recordJSON string
	var created time.Time
	if err := row.Scan(&a.ID, &a.TenantID, &a.UserID, &a.AssessmentType, &recordJSON, &a.Status, &a.ClientIP, &a.UserAgent, &created); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal([]byte(recordJSON), &a.Record); err != nil {
		return nil, fmt.Errorf("decoding record %s: %w", a.ID, err)
	}
	a.CreatedAt = created
	return &a, nil
}
