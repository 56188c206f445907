package insights

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/assessment-intake/internal/application"
	appassess "github.com/bryanwahyu/assessment-intake/internal/application/assessments"
	"github.com/bryanwahyu/assessment-intake/internal/domain/assessments"
	"github.com/bryanwahyu/assessment-intake/internal/domain/insights"
)

type stubRepo struct {
	assessments.Repository
	item *assessments.StoredAssessment
}

func (s stubRepo) Get(_ context.Context, tenant string, id assessments.ID) (*assessments.StoredAssessment, error) {
	if s.item == nil || s.item.TenantID != tenant || s.item.ID != id {
		return nil, assessments.ErrNotFound
	}
	return s.item, nil
}

type stubClient struct {
	got insights.Request
}

func (c *stubClient) Summarize(_ context.Context, req insights.Request) (string, error) {
	c.got = req
	return `{"summary":"ok"}`, nil
}

func newAssessments(t *testing.T, item *assessments.StoredAssessment) *appassess.Service {
	t.Helper()
	c, err := assessments.NewCatalog([]assessments.Definition{
		{Name: "hair_assessment", Title: "Hair Loss Assessment", Questions: 5},
	})
	require.NoError(t, err)
	return &appassess.Service{
		Repo:     stubRepo{item: item},
		Catalogs: appassess.StaticCatalog{C: c},
		Clock:    application.FixedClock{T: time.Now()},
	}
}

func TestGenerate_Disabled(t *testing.T) {
	svc := NewService(nil, newAssessments(t, nil))
	require.Nil(t, svc)

	_, err := svc.Generate(context.Background(), "acme", "id")
	assert.ErrorIs(t, err, insights.ErrDisabled)
}

func TestGenerate_UsesCatalogDefinition(t *testing.T) {
	item := &assessments.StoredAssessment{
		ID:             "a1",
		TenantID:       "acme",
		AssessmentType: "hair_assessment",
		Record:         assessments.Record{AssessmentType: "hair_assessment", Answers: map[string]string{"q1": "male"}},
	}
	client := &stubClient{}
	svc := NewService(client, newAssessments(t, item))

	out, err := svc.Generate(context.Background(), "acme", "a1")
	require.NoError(t, err)

	assert.Equal(t, `{"summary":"ok"}`, out)
	assert.Equal(t, "Hair Loss Assessment", client.got.Definition.Title)
	assert.Equal(t, 5, client.got.Definition.Questions)
	assert.Equal(t, "male", client.got.Record.Answers["q1"])
}

func TestGenerate_UnknownTypeFallsBack(t *testing.T) {
	item := &assessments.StoredAssessment{ID: "a1", TenantID: "acme", AssessmentType: "retired_type"}
	client := &stubClient{}
	svc := NewService(client, newAssessments(t, item))

	_, err := svc.Generate(context.Background(), "acme", "a1")
	require.NoError(t, err)
	assert.Equal(t, "retired_type", client.got.Definition.Title)
}

func TestGenerate_NotFound(t *testing.T) {
	svc := NewService(&stubClient{}, newAssessments(t, nil))

	_, err := svc.Generate(context.Background(), "acme", "missing")
	assert.ErrorIs(t, err, assessments.ErrNotFound)
}
