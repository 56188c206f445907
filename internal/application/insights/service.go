package insights

import (
	"context"

	appassess "github.com/bryanwahyu/assessment-intake/internal/application/assessments"
	"github.com/bryanwahyu/assessment-intake/internal/domain/assessments"
	"github.com/bryanwahyu/assessment-intake/internal/domain/insights"
)

type Service struct {
	client      insights.Client
	assessments *appassess.Service
}

// NewService returns nil when no client is configured; the router reports
// insights as disabled in that case.
func NewService(client insights.Client, assessments *appassess.Service) *Service {
	if client == nil {
		return nil
	}
	return &Service{client: client, assessments: assessments}
}

// Generate produces a narrative for one stored assessment.
func (s *Service) Generate(ctx context.Context, tenant string, id assessments.ID) (string, error) {
	if s == nil {
		return "", insights.ErrDisabled
	}
	stored, err := s.assessments.Get(ctx, tenant, id)
	if err != nil {
		return "", err
	}

	def, ok := s.assessments.Catalog().Lookup(stored.AssessmentType)
	if !ok {
		def = assessments.Definition{Name: stored.AssessmentType, Title: stored.AssessmentType}
	}
	return s.client.Summarize(ctx, insights.Request{Definition: def, Record: stored.Record})
}
