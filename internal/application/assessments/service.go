package assessments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bryanwahyu/assessment-intake/internal/application"
	domain "github.com/bryanwahyu/assessment-intake/internal/domain/assessments"
)

// CatalogSource hands out the current catalog. The config holder swaps
// it on reload, so the service never caches it.
type CatalogSource interface {
	Catalog() *domain.Catalog
}

// StaticCatalog serves a fixed catalog.
type StaticCatalog struct{ C *domain.Catalog }

func (s StaticCatalog) Catalog() *domain.Catalog { return s.C }

// Service implements use-cases untuk assessment intake.
// Safe for concurrent use; it holds no mutable state of its own.
type Service struct {
	Repo     domain.Repository
	Archive  domain.Archive // optional
	Catalogs CatalogSource
	Clock    application.Clock
	Rules    domain.Rules
	Validate bool
	Log      *zap.Logger
}

//
// ==== USE CASES ====
//

// SubmitCommand carries one raw submission plus who sent it
type SubmitCommand struct {
	Identity   domain.Identity
	Submission domain.Submission
	ClientIP   string
	UserAgent  string
}

type SubmitResult struct {
	Persisted bool          `json:"persisted"`
	Record    domain.Record `json:"data"`
	Ack       *domain.Ack   `json:"ack,omitempty"`
}

// Submit sanitizes, validates and stores a submission. A missing identity
// is not an error: the result just reports Persisted=false.
func (s *Service) Submit(ctx context.Context, cmd SubmitCommand) (SubmitResult, error) {
	rec := domain.Sanitize(cmd.Submission)
	res := SubmitResult{Record: rec}

	if s.Validate {
		if err := domain.Validate(rec, s.catalog(), s.Rules); err != nil {
			return res, err
		}
	}

	ack, err := s.store(ctx, cmd.Identity, rec.AssessmentType, rec, s.now(), cmd.ClientIP, cmd.UserAgent)
	if errors.Is(err, domain.ErrNotPersisted) {
		s.logger().Info("submission not persisted",
			zap.String("tenant", cmd.Identity.TenantID),
			zap.String("assessment_type", rec.AssessmentType),
		)
		return res, nil
	}
	if err != nil {
		return res, err
	}
	res.Persisted = true
	res.Ack = &ack
	return res, nil
}

// Store persists an already-sanitized record for identity at ts.
// It returns domain.ErrNotPersisted when the identity is empty.
func (s *Service) Store(ctx context.Context, identity domain.Identity, assessmentType string, rec domain.Record, ts time.Time) (domain.Ack, error) {
	return s.store(ctx, identity, assessmentType, rec, ts, "", "")
}

func (s *Service) store(ctx context.Context, identity domain.Identity, assessmentType string, rec domain.Record, ts time.Time, ip, ua string) (domain.Ack, error) {
	if identity.IsZero() {
		return domain.Ack{}, domain.ErrNotPersisted
	}
	if err := domain.CheckStorable(assessmentType); err != nil {
		return domain.Ack{}, err
	}

	a := &domain.StoredAssessment{
		ID:             domain.ID(uuid.New().String()),
		TenantID:       identity.TenantID,
		UserID:         identity.UserID,
		AssessmentType: assessmentType,
		Record:         rec,
		Status:         domain.StatusCompleted,
		ClientIP:       ip,
		UserAgent:      ua,
		CreatedAt:      ts,
	}
	if err := s.Repo.Save(ctx, a); err != nil {
		return domain.Ack{}, fmt.Errorf("saving assessment: %w", err)
	}

	ack := domain.Ack{
		ID:       a.ID,
		MetaKey:  domain.MetaKey(assessmentType),
		StoredAt: ts,
	}

	// snapshot "latest" ke archive; gagal di sini tidak membatalkan penyimpanan
	if s.Archive != nil {
		url, err := s.archiveLatest(ctx, identity, assessmentType, rec, ts)
		if err != nil {
			s.logger().Warn("archive latest snapshot failed",
				zap.String("id", string(a.ID)),
				zap.Error(err),
			)
		} else {
			ack.ArchiveURL = url
		}
	}

	s.logger().Info("assessment stored",
		zap.String("id", string(a.ID)),
		zap.String("tenant", identity.TenantID),
		zap.String("assessment_type", assessmentType),
		zap.Int("answers", len(rec.Answers)),
	)
	return ack, nil
}

func (s *Service) archiveLatest(ctx context.Context, identity domain.Identity, assessmentType string, rec domain.Record, ts time.Time) (string, error) {
	body, err := json.Marshal(domain.NewLatestMeta(rec, ts))
	if err != nil {
		return "", err
	}
	key := fmt.Sprintf("%s/%s/%s.json", identity.TenantID, identity.UserID, domain.MetaKey(assessmentType))
	return s.Archive.Put(ctx, key, body)
}

// Preview sanitizes without storing, for dry runs.
func (s *Service) Preview(sub domain.Submission) (domain.Record, error) {
	rec := domain.Sanitize(sub)
	if !s.Validate {
		return rec, nil
	}
	return rec, domain.Validate(rec, s.catalog(), s.Rules)
}

// Get ambil 1 assessment by id
func (s *Service) Get(ctx context.Context, tenant string, id domain.ID) (*domain.StoredAssessment, error) {
	return s.Repo.Get(ctx, tenant, id)
}

// Latest ambil assessment terakhir user untuk satu tipe
func (s *Service) Latest(ctx context.Context, tenant, userID, assessmentType string) (*domain.StoredAssessment, error) {
	return s.Repo.Latest(ctx, tenant, userID, domain.SanitizeKey(assessmentType))
}

// History ambil N assessment terakhir user
func (s *Service) History(ctx context.Context, tenant, userID string, limit int) ([]*domain.StoredAssessment, error) {
	return s.Repo.History(ctx, tenant, userID, limit)
}

// Summary rekap jumlah assessment per tipe N hari terakhir
func (s *Service) Summary(ctx context.Context, tenant string, sinceDays int) (map[string]any, error) {
	if sinceDays <= 0 {
		sinceDays = 7
	}
	since := s.now().AddDate(0, 0, -sinceDays)
	counts, err := s.Repo.CountByType(ctx, tenant, since)
	if err != nil {
		return nil, err
	}
	total := 0
	for _, n := range counts {
		total += n
	}
	return map[string]any{
		"days":    sinceDays,
		"total":   total,
		"by_type": counts,
	}, nil
}

// Catalog returns the current assessment catalog.
func (s *Service) Catalog() *domain.Catalog { return s.catalog() }

func (s *Service) catalog() *domain.Catalog {
	if s.Catalogs == nil {
		return nil
	}
	return s.Catalogs.Catalog()
}

func (s *Service) now() time.Time {
	if s.Clock == nil {
		return time.Now()
	}
	return s.Clock.Now()
}

func (s *Service) logger() *zap.Logger {
	if s.Log == nil {
		return zap.NewNop()
	}
	return s.Log
}
