package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Port            string
	CORSAllowOrigin []string
	Env             string

	DatabaseURL   string
	RunMigrations bool

	ObjectStoreType string
	LocalStoreDir   string
	AWSRegion       string
	S3Bucket        string
	S3Prefix        string
	SSEKMSKeyID     string

	LLMProvider  string
	LLMModel     string
	OpenAIAPIKey string
	GeminiAPIKey string

	AITimeout      time.Duration
	ExtractTimeout time.Duration

	AnalysisCache     string
	AnalysisCacheSize int
	AnalysisCacheTTL  time.Duration
	RedisURL          string

	LogJSON  bool
	LogDebug bool

	RateLimitAnalyzePerMin int
	RateLimitUploadPerMin  int
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")
	return FromViper(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("ENV", "dev")
	v.SetDefault("PORT", "8080")
	v.SetDefault("CORS_ALLOW_ORIGINS", "http://localhost:5173")
	v.SetDefault("RUN_MIGRATIONS", false)
	v.SetDefault("OBJECT_STORE", "local")
	v.SetDefault("LOCAL_STORE_DIR", "./data")
	v.SetDefault("LLM_PROVIDER", "openai")
	v.SetDefault("AI_TIMEOUT", "30s")
	v.SetDefault("EXTRACT_TIMEOUT", "20s")
	v.SetDefault("ANALYSIS_CACHE", "lru")
	v.SetDefault("ANALYSIS_CACHE_SIZE", 256)
	v.SetDefault("ANALYSIS_CACHE_TTL", "24h")
	v.SetDefault("LOG_JSON", true)
	v.SetDefault("LOG_DEBUG", false)
	v.SetDefault("RATE_LIMIT_ANALYZE_PER_MIN", 10)
	v.SetDefault("RATE_LIMIT_UPLOAD_PER_MIN", 20)
	return v
}

// FromViper builds a Config from an already populated viper instance.
func FromViper(v *viper.Viper) Config {
	return Config{
		Port:            v.GetString("PORT"),
		CORSAllowOrigin: splitAndTrim(v.GetString("CORS_ALLOW_ORIGINS")),
		Env:             normalizeEnv(v.GetString("ENV")),

		DatabaseURL:   strings.TrimSpace(v.GetString("DATABASE_URL")),
		RunMigrations: v.GetBool("RUN_MIGRATIONS"),

		ObjectStoreType: normalizeStoreType(v.GetString("OBJECT_STORE")),
		LocalStoreDir:   v.GetString("LOCAL_STORE_DIR"),
		AWSRegion:       v.GetString("AWS_REGION"),
		S3Bucket:        v.GetString("S3_BUCKET"),
		S3Prefix:        v.GetString("S3_PREFIX"),
		SSEKMSKeyID:     v.GetString("SSE_KMS_KEY_ID"),

		LLMProvider:  normalizeProvider(v.GetString("LLM_PROVIDER")),
		LLMModel:     strings.TrimSpace(v.GetString("LLM_MODEL")),
		OpenAIAPIKey: strings.TrimSpace(v.GetString("OPENAI_API_KEY")),
		GeminiAPIKey: strings.TrimSpace(v.GetString("GEMINI_API_KEY")),

		AITimeout:      positiveDuration(v.GetDuration("AI_TIMEOUT"), 30*time.Second),
		ExtractTimeout: positiveDuration(v.GetDuration("EXTRACT_TIMEOUT"), 20*time.Second),

		AnalysisCache:     normalizeCache(v.GetString("ANALYSIS_CACHE")),
		AnalysisCacheSize: v.GetInt("ANALYSIS_CACHE_SIZE"),
		AnalysisCacheTTL:  v.GetDuration("ANALYSIS_CACHE_TTL"),
		RedisURL:          strings.TrimSpace(v.GetString("REDIS_URL")),

		LogJSON:  v.GetBool("LOG_JSON"),
		LogDebug: v.GetBool("LOG_DEBUG"),

		RateLimitAnalyzePerMin: v.GetInt("RATE_LIMIT_ANALYZE_PER_MIN"),
		RateLimitUploadPerMin:  v.GetInt("RATE_LIMIT_UPLOAD_PER_MIN"),
	}
}

func positiveDuration(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	case "development", "dev":
		return "dev"
	default:
		return "dev"
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return "s3"
	default:
		return "local"
	}
}

func normalizeProvider(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "gemini", "google":
		return "gemini"
	case "none", "off", "demo":
		return "none"
	default:
		return "openai"
	}
}

func normalizeCache(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "redis":
		return "redis"
	case "none", "off", "":
		return "none"
	default:
		return "lru"
	}
}
