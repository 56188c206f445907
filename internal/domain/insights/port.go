package insights

import (
	"context"

	"github.com/bryanwahyu/assessment-intake/internal/domain/assessments"
)

// Request is what the model gets to see about one stored assessment
type Request struct {
	Definition assessments.Definition
	Record     assessments.Record
}

// Client port for the narrative generator
type Client interface {
	Summarize(ctx context.Context, req Request) (string, error)
}
