package mysql

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/bryanwahyu/assessment-intake/internal/domain/assessments"
)

var columns = []string{"id", "tenant_id", "user_id", "assessment_type", "record_json", "status", "client_ip", "user_agent", "created_at"}

func newMockRepo(t *testing.T) (*AssessmentRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return NewAssessmentRepository(db), mock
}

func TestAssessmentRepository_Save(t *testing.T) {
	repo, mock := newMockRepo(t)
	at := time.Date(2024, 3, 9, 14, 30, 5, 0, time.UTC)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO assessment_records")).
		WithArgs("a1", "acme", "42", "hair_assessment",
			`{"answers":{"q1":"male"},"assessment_type":"hair_assessment","contact_email":"","contact_name":"","contact_phone":""}`,
			"completed", "10.0.0.1", "", at).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Save(context.Background(), &domain.StoredAssessment{
		ID:             "a1",
		TenantID:       "acme",
		UserID:         "42",
		AssessmentType: "hair_assessment",
		Record:         domain.Record{AssessmentType: "hair_assessment", Answers: map[string]string{"q1": "male"}},
		Status:         domain.StatusCompleted,
		ClientIP:       "10.0.0.1",
		CreatedAt:      at,
	})
	assert.NoError(t, err)
}

func TestAssessmentRepository_Get(t *testing.T) {
	repo, mock := newMockRepo(t)
	at := time.Date(2024, 3, 9, 14, 30, 5, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("FROM assessment_records WHERE tenant_id=? AND id=?")).
		WithArgs("acme", "a1").
		WillReturnRows(sqlmock.NewRows(columns).AddRow(
			"a1", "acme", "42", "hair_assessment",
			`{"assessment_type":"hair_assessment","answers":{"q1":"male"},"dob_year":"1990"}`,
			"completed", "", "", at))

	a, err := repo.Get(context.Background(), "acme", "a1")
	require.NoError(t, err)
	assert.Equal(t, domain.ID("a1"), a.ID)
	assert.Equal(t, "male", a.Record.Answers["q1"])
	assert.Equal(t, "1990", a.Record.Extra["dob_year"])
	assert.Equal(t, at, a.CreatedAt)
}

func TestAssessmentRepository_LatestNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE tenant_id=? AND user_id=? AND assessment_type=?")).
		WithArgs("acme", "42", "hair_assessment").
		WillReturnRows(sqlmock.NewRows(columns))

	_, err := repo.Latest(context.Background(), "acme", "42", "hair_assessment")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAssessmentRepository_HistoryDefaultLimit(t *testing.T) {
	repo, mock := newMockRepo(t)
	at := time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY created_at DESC, id DESC\nLIMIT ?")).
		WithArgs("acme", "42", 20).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow("a2", "acme", "42", "weight_loss", `{"answers":{}}`, "completed", "", "", at).
			AddRow("a1", "acme", "42", "hair_assessment", `{"answers":{}}`, "completed", "", "", at.Add(-time.Hour)))

	list, err := repo.History(context.Background(), "acme", "42", 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, domain.ID("a2"), list[0].ID)
}

func TestAssessmentRepository_CountByType(t *testing.T) {
	repo, mock := newMockRepo(t)
	since := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("GROUP BY assessment_type")).
		WithArgs("acme", since).
		WillReturnRows(sqlmock.NewRows([]string{"assessment_type", "count"}).
			AddRow("hair_assessment", 3).
			AddRow("weight_loss", 1))

	counts, err := repo.CountByType(context.Background(), "acme", since)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"hair_assessment": 3, "weight_loss": 1}, counts)
}

func TestEnsureSchema(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("assessment_type VARCHAR(128)")).WillReturnResult(sqlmock.NewResult(0, 0))
	assert.NoError(t, EnsureSchema(context.Background(), db))
	assert.NoError(t, mock.ExpectationsWereMet())
}
