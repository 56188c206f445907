package httpserver

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	appassess "github.com/bryanwahyu/assessment-intake/internal/application/assessments"
	appinsights "github.com/bryanwahyu/assessment-intake/internal/application/insights"
	domain "github.com/bryanwahyu/assessment-intake/internal/domain/assessments"
	"github.com/bryanwahyu/assessment-intake/internal/domain/insights"
	"github.com/bryanwahyu/assessment-intake/internal/logging"
	"github.com/bryanwahyu/assessment-intake/internal/middleware"
)

// maxBodyBytes caps a submission body
const maxBodyBytes = 1 << 20

// Options carries the optional pieces of the HTTP surface
type Options struct {
	Logger      *zap.Logger
	APIKeys     map[string]string
	CORSOrigins []string
	Limiter     *middleware.RateLimiter
	Checks      map[string]middleware.HealthChecker
}

type Router struct {
	svc      *appassess.Service
	insights *appinsights.Service
	log      *zap.Logger
}

func NewRouter(svc *appassess.Service, insightsSvc *appinsights.Service, opts Options) http.Handler {
	log := opts.Logger
	if log == nil {
		log = logging.NewNop()
	}
	r := &Router{svc: svc, insights: insightsSvc, log: log}
	mux := chi.NewRouter()

	if len(opts.CORSOrigins) > 0 {
		mux.Use(cors.Handler(cors.Options{
			AllowedOrigins:   opts.CORSOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders:   []string{"Authorization", "Content-Type", middleware.UserHeader, middleware.RequestIDHeader},
			ExposedHeaders:   []string{middleware.RequestIDHeader},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}
	mux.Use(middleware.LoggingMiddleware(log))
	mux.Use(middleware.MetricsMiddleware)
	mux.Use(middleware.APIKeyAuth(opts.APIKeys))
	if opts.Limiter != nil {
		mux.Use(middleware.RateLimitMiddleware(opts.Limiter))
	}

	mux.Get("/health", middleware.HealthHandler(opts.Checks))
	mux.Get("/livez", middleware.LivenessHandler)
	mux.Get("/readyz", middleware.ReadinessHandler)
	mux.Get("/metrics", middleware.MetricsHandler)

	mux.Route("/v1/{tenant}", func(rt chi.Router) {
		rt.Use(middleware.RequireValidTenant)

		rt.Post("/assessments", r.wrap(r.handleSubmit))
		rt.Post("/assessments/sanitize", r.wrap(r.handleSanitize))
		rt.Get("/assessments/catalog", r.wrap(r.handleCatalog))
		rt.Get("/assessments/{id}", r.wrap(r.handleGet))
		rt.Post("/assessments/{id}/insights", r.wrap(r.handleInsights))
		rt.Get("/users/{user}/assessments", r.wrap(r.handleHistory))
		rt.Get("/users/{user}/assessments/{type}/latest", r.wrap(r.handleLatest))
		rt.Get("/summary", r.wrap(r.handleSummary))
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

// badRequest is an error whose message is safe to show the client
type badRequest struct{ msg string }

func (e badRequest) Error() string { return e.msg }

func badRequestf(format string, args ...any) error {
	return badRequest{msg: fmt.Sprintf(format, args...)}
}

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		err := h(w, req)
		if err == nil {
			return
		}

		var verr *domain.ValidationError
		var br badRequest
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &verr):
			writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
				"error":    "invalid assessment",
				"problems": verr.Problems,
			})
		case errors.As(err, &br):
			http.Error(w, br.msg, http.StatusBadRequest)
		case errors.As(err, &tooLarge):
			http.Error(w, "request body too large", http.StatusRequestEntityTooLarge)
		case errors.Is(err, domain.ErrNotFound), errors.Is(err, sql.ErrNoRows):
			http.Error(w, "not found", http.StatusNotFound)
		case errors.Is(err, insights.ErrQuotaExceeded):
			http.Error(w, "ai quota exceeded", http.StatusTooManyRequests)
		case errors.Is(err, insights.ErrDisabled):
			http.Error(w, err.Error(), http.StatusNotImplemented)
		default:
			r.log.Error("request failed",
				zap.String("method", req.Method),
				zap.String("path", req.URL.Path),
				zap.Error(err),
			)
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

// readSubmission decodes a JSON or urlencoded body, keeping field order.
func readSubmission(w http.ResponseWriter, req *http.Request) (domain.Submission, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, req.Body, maxBodyBytes))
	if err != nil {
		return domain.Submission{}, err
	}

	mediaType := "application/x-www-form-urlencoded"
	if ct := req.Header.Get("Content-Type"); ct != "" {
		mt, _, err := mime.ParseMediaType(ct)
		if err != nil {
			return domain.Submission{}, badRequestf("invalid Content-Type")
		}
		mediaType = mt
	}

	switch mediaType {
	case "application/json":
		sub, err := domain.DecodeJSONBytes(body)
		if err != nil {
			return domain.Submission{}, badRequestf("%v", err)
		}
		return sub, nil
	case "application/x-www-form-urlencoded":
		sub, err := domain.ParseForm(string(body))
		if err != nil {
			return domain.Submission{}, badRequestf("%v", err)
		}
		return sub, nil
	default:
		return domain.Submission{}, badRequestf("unsupported Content-Type %q", mediaType)
	}
}

// POST /v1/{tenant}/assessments
// Identity comes from the X-User-ID header; without it the record is
// sanitized and validated but not stored (202, persisted=false).
func (r *Router) handleSubmit(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	userID, err := middleware.UserIDFromRequest(req)
	if err != nil {
		return badRequestf("%v", err)
	}
	sub, err := readSubmission(w, req)
	if err != nil {
		return err
	}

	res, err := r.svc.Submit(req.Context(), appassess.SubmitCommand{
		Identity:   domain.Identity{TenantID: tenant, UserID: userID},
		Submission: sub,
		ClientIP:   middleware.ClientIP(req),
		UserAgent:  middleware.TruncateString(middleware.SanitizeString(req.UserAgent()), 512),
	})
	if err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			middleware.RecordSubmission(middleware.OutcomeRejected)
			logging.WithTenant(r.log, tenant).Info("submission rejected",
				zap.String("assessment_type", res.Record.AssessmentType),
				zap.Strings("problems", verr.Problems),
			)
		}
		return err
	}

	if !res.Persisted {
		middleware.RecordSubmission(middleware.OutcomeSkipped)
		return writeJSON(w, http.StatusAccepted, res)
	}
	middleware.RecordSubmission(middleware.OutcomePersisted)
	return writeJSON(w, http.StatusCreated, res)
}

// POST /v1/{tenant}/assessments/sanitize
// Dry run: returns the sanitized record and any validation problems.
func (r *Router) handleSanitize(w http.ResponseWriter, req *http.Request) error {
	sub, err := readSubmission(w, req)
	if err != nil {
		return err
	}
	rec, verr := r.svc.Preview(sub)

	problems := []string{}
	var ve *domain.ValidationError
	if errors.As(verr, &ve) {
		problems = ve.Problems
	}
	return writeJSON(w, http.StatusOK, map[string]any{
		"data":     rec,
		"valid":    verr == nil,
		"problems": problems,
	})
}

// GET /v1/{tenant}/assessments/catalog
func (r *Router) handleCatalog(w http.ResponseWriter, req *http.Request) error {
	defs := r.svc.Catalog().Definitions()
	if defs == nil {
		defs = []domain.Definition{}
	}
	return writeJSON(w, http.StatusOK, defs)
}

// GET /v1/{tenant}/assessments/{id}
func (r *Router) handleGet(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	id := chi.URLParam(req, "id")
	if err := middleware.ValidateRecordID(id); err != nil {
		return badRequestf("%v", err)
	}

	a, err := r.svc.Get(req.Context(), tenant, domain.ID(id))
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, a)
}

// POST /v1/{tenant}/assessments/{id}/insights
func (r *Router) handleInsights(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	id := chi.URLParam(req, "id")
	if err := middleware.ValidateRecordID(id); err != nil {
		return badRequestf("%v", err)
	}

	out, err := r.insights.Generate(req.Context(), tenant, domain.ID(id))
	if err != nil {
		return err
	}

	// model output should already be a JSON object; pass it through when it is
	if json.Valid([]byte(out)) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, err := w.Write([]byte(out))
		return err
	}
	return writeJSON(w, http.StatusOK, map[string]string{"summary": out})
}

// GET /v1/{tenant}/users/{user}/assessments?limit=20
func (r *Router) handleHistory(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	user := chi.URLParam(req, "user")
	if err := middleware.ValidateUserID(user); err != nil {
		return badRequestf("%v", err)
	}
	limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))

	list, err := r.svc.History(req.Context(), tenant, user, middleware.ValidateLimit(limit))
	if err != nil {
		return err
	}
	if list == nil {
		list = []*domain.StoredAssessment{}
	}
	return writeJSON(w, http.StatusOK, list)
}

// GET /v1/{tenant}/users/{user}/assessments/{type}/latest
func (r *Router) handleLatest(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	user := chi.URLParam(req, "user")
	typ := chi.URLParam(req, "type")
	if err := middleware.ValidateUserID(user); err != nil {
		return badRequestf("%v", err)
	}
	if err := middleware.ValidateAssessmentType(typ); err != nil {
		return badRequestf("%v", err)
	}

	a, err := r.svc.Latest(req.Context(), tenant, user, typ)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, map[string]any{
		"id":       a.ID,
		"meta_key": domain.MetaKey(a.AssessmentType),
		"value":    domain.NewLatestMeta(a.Record, a.CreatedAt),
	})
}

// GET /v1/{tenant}/summary?days=7
func (r *Router) handleSummary(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	days, _ := strconv.Atoi(req.URL.Query().Get("days"))

	summary, err := r.svc.Summary(req.Context(), tenant, middleware.ValidateDays(days))
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, summary)
}
