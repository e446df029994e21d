package router

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/jwalitptl/healthcare-api/internal/middleware"
	"github.com/jwalitptl/healthcare-api/pkg/metrics"
)

// Handler registers versioned API routes.
type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

// OpsHandler registers unversioned operational routes such as health checks.
type OpsHandler interface {
	RegisterRoutes(gin.IRoutes)
}

type Handlers struct {
	Facility Handler
	Patient  Handler
	Audit    Handler
	Chat     Handler
	Health   OpsHandler
	Metrics  OpsHandler
}

type RouterConfig struct {
	Mode             string
	CORSOrigins      []string
	RateLimitEnabled bool
	RateLimit        middleware.RateLimiterConfig
	MaxBodySize      int64
}

type Router struct {
	engine   *gin.Engine
	auth     *middleware.AuthMiddleware
	handlers Handlers
}

func NewRouter(
	logger zerolog.Logger,
	m *metrics.Metrics,
	auth *middleware.AuthMiddleware,
	handlers Handlers,
	config RouterConfig,
) *Router {
	if config.Mode == "" {
		config.Mode = gin.ReleaseMode
	}
	gin.SetMode(config.Mode)
	if config.MaxBodySize <= 0 {
		config.MaxBodySize = middleware.DefaultMaxBodySize
	}

	engine := gin.New()
	engine.Use(
		middleware.Recovery(),
		middleware.RequestID(logger),
		middleware.Logger(),
		middleware.Metrics(m),
		middleware.SecurityHeaders(),
		middleware.CORS(middleware.DefaultCORSConfig(config.CORSOrigins)),
		middleware.SizeLimit(config.MaxBodySize),
	)
	if config.RateLimitEnabled {
		engine.Use(middleware.NewRateLimiter(config.RateLimit).RateLimit())
	}

	return &Router{
		engine:   engine,
		auth:     auth,
		handlers: handlers,
	}
}

func (r *Router) Setup() {
	r.handlers.Health.RegisterRoutes(r.engine)
	r.handlers.Metrics.RegisterRoutes(r.engine)

	api := r.engine.Group("/api/v1")
	api.Use(r.auth.Actor())

	r.handlers.Facility.RegisterRoutes(api)
	r.handlers.Patient.RegisterRoutes(api)
	r.handlers.Audit.RegisterRoutes(api)
	r.handlers.Chat.RegisterRoutes(api)
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
