package server

import (
	"time"

	"github.com/gin-gonic/gin"

	"resume-analyzer/internal/shared/config"
	"resume-analyzer/internal/shared/metrics"
	"resume-analyzer/internal/shared/server/middleware"
	"resume-analyzer/internal/shared/server/respond"
)

// ServiceName is reported by the health endpoint.
const ServiceName = "resume-analyzer"

const defaultRequestsPerMin = 120

// RouteRegistrar is implemented by feature handlers.
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// RouterDeps holds the handlers mounted under /api.
type RouterDeps struct {
	Config          config.Config
	AnalysisHandler RouteRegistrar
	UploadHandler   RouteRegistrar
	// Limiter is shared across rate limit groups; nil creates one.
	Limiter *middleware.RateLimiter
	Now     func() time.Time
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	cfg := deps.Config

	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(cfg.CORSAllowOrigin),
	)
	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api")
	api.Use(middleware.RateLimit(middleware.RateLimitConfig{
		Limiter: deps.Limiter,
		GroupFor: middleware.GroupByRoute(map[string]string{
			"POST /api/analyze-resume": "ANALYZE",
			"POST /api/upload-resume":  "UPLOAD",
		}),
		Rules: map[string]middleware.RateLimitRule{
			"ANALYZE": middleware.PerMinute(cfg.RateLimitAnalyzePerMin),
			"UPLOAD":  middleware.PerMinute(cfg.RateLimitUploadPerMin),
			"DEFAULT": middleware.PerMinute(defaultRequestsPerMin),
		},
	}))

	api.GET("/health", func(c *gin.Context) {
		respond.OK(c, gin.H{
			"status":    "OK",
			"service":   ServiceName,
			"timestamp": now().UTC().Format(time.RFC3339),
		})
	})
	if deps.UploadHandler != nil {
		deps.UploadHandler.RegisterRoutes(api)
	}
	if deps.AnalysisHandler != nil {
		deps.AnalysisHandler.RegisterRoutes(api)
	}

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
