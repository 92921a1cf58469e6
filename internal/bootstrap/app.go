package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"resume-analyzer/internal/analyses"
	"resume-analyzer/internal/llm"
	"resume-analyzer/internal/llm/gemini"
	"resume-analyzer/internal/llm/openai"
	"resume-analyzer/internal/shared/cache"
	"resume-analyzer/internal/shared/config"
	"resume-analyzer/internal/shared/server"
	"resume-analyzer/internal/shared/storage/db"
	"resume-analyzer/internal/shared/storage/object"
	localstore "resume-analyzer/internal/shared/storage/object/local"
	s3store "resume-analyzer/internal/shared/storage/object/s3"
	"resume-analyzer/internal/shared/telemetry"
	"resume-analyzer/internal/uploads"
)

const analysisCachePrefix = "resume-analyzer:analysis:"

// App holds shared dependencies.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB
	Redis  *redis.Client
	Store  object.ObjectStore

	AnalysesRepo    analyses.Repo
	AnalysesService *analyses.Service
	AnalysisHandler *analyses.Handler
	UploadHandler   *uploads.Handler
}

// Build wires configuration into repositories, services and the router.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app := &App{Config: cfg, DB: sqlDB}
	fail := func(err error) (*App, error) {
		app.Close()
		return nil, err
	}

	if app.Store, err = buildStore(ctx, cfg); err != nil {
		return fail(err)
	}

	svc, err := BuildAnalysisService(ctx, app)
	if err != nil {
		return fail(err)
	}
	app.AnalysesService = svc
	app.AnalysisHandler = analyses.NewHandler(svc)
	app.UploadHandler = uploads.NewHandler(app.Store, cfg.ExtractTimeout)

	app.Router = server.NewRouter(server.RouterDeps{
		Config:          cfg,
		AnalysisHandler: app.AnalysisHandler,
		UploadHandler:   app.UploadHandler,
	})
	return app, nil
}

// BuildAnalysisService wires the analysis pipeline only; the CLI uses it without a router.
func BuildAnalysisService(ctx context.Context, app *App) (*analyses.Service, error) {
	cfg := app.Config
	if app.DB != nil {
		app.AnalysesRepo = &analyses.PGRepo{DB: app.DB}
	} else {
		app.AnalysesRepo = analyses.NewMemoryRepo()
	}

	client, provider, err := buildLLM(ctx, cfg)
	if err != nil {
		return nil, err
	}
	resultCache := buildCache(ctx, app)

	return &analyses.Service{
		Repo:      app.AnalysesRepo,
		AI:        analyses.NewAIAnalyzer(client, resultCache, provider),
		AITimeout: cfg.AITimeout,
	}, nil
}

// Close releases external connections.
func (a *App) Close() {
	if a == nil {
		return
	}
	if a.Redis != nil {
		_ = a.Redis.Close()
	}
	if a.DB != nil {
		_ = a.DB.Close()
	}
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			telemetry.Info("bootstrap.memory_store", map[string]any{"reason": "DATABASE_URL empty"})
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
	if err != nil {
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.memory_store", map[string]any{"reason": "database connect failed", "err": err})
			return nil, nil
		}
		return nil, err
	}

	if cfg.RunMigrations {
		if err := db.RunMigrations(ctx, sqlDB); err != nil {
			_ = sqlDB.Close()
			return nil, fmt.Errorf("run migrations: %w", err)
		}
	}
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		if strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, fmt.Errorf("OBJECT_STORE=s3 requires S3_BUCKET")
		}
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

// buildLLM returns the configured provider, or the placeholder when no key is set.
// The placeholder makes every analysis fall back to the heuristic.
func buildLLM(ctx context.Context, cfg config.Config) (llm.Client, string, error) {
	switch cfg.LLMProvider {
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			break
		}
		client, err := openai.NewClient(cfg.OpenAIAPIKey, cfg.LLMModel, cfg.AITimeout)
		if err != nil {
			return nil, "", err
		}
		return client, "openai", nil
	case "gemini":
		if cfg.GeminiAPIKey == "" {
			break
		}
		client, err := gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.LLMModel)
		if err != nil {
			return nil, "", err
		}
		return client, "gemini", nil
	}
	telemetry.Warn("bootstrap.llm_disabled", map[string]any{
		"provider": cfg.LLMProvider,
		"reason":   "no API key configured; analyses will use the heuristic",
	})
	return llm.PlaceholderClient{}, "none", nil
}

func buildCache(ctx context.Context, app *App) cache.Cache {
	cfg := app.Config
	switch cfg.AnalysisCache {
	case "lru":
		c, err := cache.NewLRU(cfg.AnalysisCacheSize)
		if err != nil {
			telemetry.Warn("bootstrap.cache_disabled", map[string]any{"backend": "lru", "err": err})
			return nil
		}
		return c
	case "redis":
		rdb, err := cache.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			telemetry.Warn("bootstrap.cache_disabled", map[string]any{"backend": "redis", "err": err})
			return nil
		}
		app.Redis = rdb
		return cache.NewRedis(rdb, analysisCachePrefix, cfg.AnalysisCacheTTL)
	default:
		return nil
	}
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
