package router

import (
	"html/template"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/appointment-scheduler/internal/handler"
	"github.com/jwalitptl/appointment-scheduler/internal/middleware"
	"github.com/jwalitptl/appointment-scheduler/pkg/metrics"
)

type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

type RouterConfig struct {
	Production bool
	// RateLimit is nil when rate limiting is disabled
	RateLimit   *middleware.RateLimiterConfig
	CORSConfig  middleware.CORSConfig
	Security    middleware.SecurityConfig
	SizeLimit   middleware.SizeLimitConfig
	MetricsPath string
	Templates   *template.Template
}

// Handlers groups the route owners mounted by the router. Ops may be nil to
// leave the metrics endpoint unexposed.
type Handlers struct {
	Appointments Handler
	Health       Handler
	Web          Handler
	Ops          *handler.Handler
}

type Router struct {
	engine   *gin.Engine
	config   RouterConfig
	handlers Handlers
}

func NewRouter(config RouterConfig, m *metrics.Metrics, handlers Handlers) *Router {
	if config.Production {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.HandleMethodNotAllowed = true

	engine.Use(
		middleware.RequestID(),
		middleware.Recovery(),
		middleware.Logger(),
		middleware.SecurityHeaders(config.Security),
		middleware.CORS(config.CORSConfig),
		middleware.SizeLimit(config.SizeLimit),
	)
	if config.RateLimit != nil {
		engine.Use(middleware.NewRateLimiter(*config.RateLimit).RateLimit())
	}
	if m != nil {
		engine.Use(middleware.Metrics(m))
	}

	if config.Templates != nil {
		engine.SetHTMLTemplate(config.Templates)
	}

	return &Router{
		engine:   engine,
		config:   config,
		handlers: handlers,
	}
}

func (r *Router) Setup() {
	root := r.engine.Group("")

	api := r.engine.Group("/api")
	if r.handlers.Appointments != nil {
		r.handlers.Appointments.RegisterRoutes(api)
	}
	if r.handlers.Health != nil {
		r.handlers.Health.RegisterRoutes(root)
	}
	if r.handlers.Web != nil {
		r.handlers.Web.RegisterRoutes(root)
	}
	if r.handlers.Ops != nil && r.config.MetricsPath != "" {
		r.engine.GET(r.config.MetricsPath, r.handlers.Ops.MetricsHandler())
	}

	r.engine.NoRoute(notFound)
	r.engine.NoMethod(methodNotAllowed)
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
