package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/bryanwahyu/assessment-intake/internal/application"
	appassess "github.com/bryanwahyu/assessment-intake/internal/application/assessments"
	appinsights "github.com/bryanwahyu/assessment-intake/internal/application/insights"
	"github.com/bryanwahyu/assessment-intake/internal/config"
	domain "github.com/bryanwahyu/assessment-intake/internal/domain/assessments"
	"github.com/bryanwahyu/assessment-intake/internal/domain/insights"
	aiopenai "github.com/bryanwahyu/assessment-intake/internal/infra/ai/openai"
	mysqlp "github.com/bryanwahyu/assessment-intake/internal/infra/db/mysql"
	pgp "github.com/bryanwahyu/assessment-intake/internal/infra/db/postgres"
	sqlitep "github.com/bryanwahyu/assessment-intake/internal/infra/db/sqlite"
	"github.com/bryanwahyu/assessment-intake/internal/infra/httpserver"
	minioStore "github.com/bryanwahyu/assessment-intake/internal/infra/storage"
	"github.com/bryanwahyu/assessment-intake/internal/logging"
	"github.com/bryanwahyu/assessment-intake/internal/middleware"
)

func main() {
	// path config.yaml
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load error: %v\n", err)
		os.Exit(1)
	}

	log := logging.New(cfg.Log.Debug)
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, repo, err := openRepository(ctx, cfg)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer db.Close()

	catalog, err := config.LoadCatalog(cfg.Catalog.Path)
	if err != nil {
		return err
	}
	holder := config.NewCatalogHolder(catalog)
	log.Info("catalog loaded", zap.String("path", cfg.Catalog.Path), zap.Int("assessments", catalog.Len()))
	if cfg.Catalog.Watch {
		go func() {
			if err := config.WatchCatalog(ctx, cfg.Catalog.Path, holder, log); err != nil {
				log.Error("catalog watcher stopped", zap.Error(err))
			}
		}()
	}

	svc := &appassess.Service{
		Repo:     repo,
		Catalogs: holder,
		Clock:    application.SystemClock{},
		Rules: domain.Rules{
			MinAnswers:     cfg.Validation.MinAnswers,
			MinPhoneLength: cfg.Validation.MinPhoneLength,
		},
		Validate: cfg.ValidationEnabled(),
		Log:      log,
	}

	// init minio (opsional)
	if cfg.Minio.Enabled {
		store, err := minioStore.New(ctx,
			cfg.Minio.Endpoint,
			cfg.Minio.Region,
			cfg.Minio.BucketName,
			cfg.Minio.AccessKey,
			cfg.Minio.SecretKey,
			cfg.Minio.UseSSL,
		)
		if err != nil {
			return fmt.Errorf("minio init: %w", err)
		}
		svc.Archive = store
	}

	var aiClient insights.Client
	if cfg.OpenAI.APIKey != "" {
		if cfg.OpenAI.BaseURL != "" {
			aiClient = aiopenai.NewClientWithBaseURL(cfg.OpenAI.APIKey, cfg.OpenAI.Model, cfg.OpenAI.BaseURL)
		} else {
			aiClient = aiopenai.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.Model)
		}
	}
	insightsSvc := appinsights.NewService(aiClient, svc)

	limiter := middleware.NewRateLimiter(cfg.RateLimit.Capacity, cfg.RateLimit.RefillRate)
	defer limiter.Stop()

	handler := httpserver.NewRouter(svc, insightsSvc, httpserver.Options{
		Logger:      log,
		APIKeys:     cfg.Auth.APIKeys,
		CORSOrigins: cfg.Server.CORSOrigins,
		Limiter:     limiter,
		Checks: map[string]middleware.HealthChecker{
			"database": &middleware.DatabaseHealthChecker{DB: db},
			"catalog":  middleware.CatalogHealthChecker{Len: func() int { return holder.Catalog().Len() }},
		},
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("addr", addr), zap.String("driver", cfg.Database.Driver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// graceful shutdown
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	log.Info("shutting down server...")

	ctx2, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(ctx2)
}

func openRepository(ctx context.Context, cfg *config.Config) (*sql.DB, domain.Repository, error) {
	switch cfg.Database.Driver {
	case "mysql":
		db, err := mysqlp.Connect(ctx, cfg.MySQLDSN())
		if err != nil {
			return nil, nil, err
		}
		return db, mysqlp.NewAssessmentRepository(db), nil
	case "postgres":
		db, err := pgp.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			return nil, nil, err
		}
		return db, pgp.NewAssessmentRepository(db), nil
	default:
		db, err := sqlitep.Open(ctx, cfg.Database.Path)
		if err != nil {
			return nil, nil, err
		}
		return db, sqlitep.NewAssessmentRepository(db), nil
	}
}
