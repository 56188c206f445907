package assessments

import (
	"time"
)

// ID tipe untuk StoredAssessment
type ID string

// Status enum
type Status string

const (
	StatusCompleted Status = "completed"
)

// Identity is who a submission belongs to. It is passed in explicitly;
// an empty UserID means there is nobody to store the record for.
type Identity struct {
	TenantID string
	UserID   string
}

func (i Identity) IsZero() bool { return i.UserID == "" }

// Aggregate Root: StoredAssessment
type StoredAssessment struct {
	ID             ID        `json:"id"`
	TenantID       string    `json:"tenant_id"`
	UserID         string    `json:"user_id"`
	AssessmentType string    `json:"assessment_type"`
	Record         Record    `json:"data"`
	Status         Status    `json:"status"`
	ClientIP       string    `json:"client_ip,omitempty"`
	UserAgent      string    `json:"user_agent,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// Ack confirms a record was stored
type Ack struct {
	ID         ID        `json:"id"`
	MetaKey    string    `json:"meta_key"`
	StoredAt   time.Time `json:"stored_at"`
	ArchiveURL string    `json:"archive_url,omitempty"`
}

// MetaKey names the per-user "latest" slot of an assessment type.
func MetaKey(assessmentType string) string {
	return "assessment_latest_" + assessmentType
}

// LatestMeta is the snapshot kept in the per-user latest slot.
type LatestMeta struct {
	Data   Record `json:"data"`
	Date   string `json:"date"`
	Status Status `json:"status"`
}

// DateLayout is the MySQL-style timestamp used in LatestMeta.Date
const DateLayout = "2006-01-02 15:04:05"

func NewLatestMeta(rec Record, at time.Time) LatestMeta {
	return LatestMeta{Data: rec, Date: at.Format(DateLayout), Status: StatusCompleted}
}
