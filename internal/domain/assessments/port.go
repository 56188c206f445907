package assessments

import (
	"context"
	"time"
)

// Repository port (interface untuk persistence)
type Repository interface {
	Save(ctx context.Context, a *StoredAssessment) error
	Get(ctx context.Context, tenant string, id ID) (*StoredAssessment, error)
	// Latest returns ErrNotFound when the user never completed the type.
	Latest(ctx context.Context, tenant, userID, assessmentType string) (*StoredAssessment, error)
	History(ctx context.Context, tenant, userID string, limit int) ([]*StoredAssessment, error)
	CountByType(ctx context.Context, tenant string, since time.Time) (map[string]int, error)
}

// Archive port (penyimpanan snapshot JSON)
type Archive interface {
	Put(ctx context.Context, key string, body []byte) (string, error)
}
