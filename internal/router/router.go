package router

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/keshav-rathi-0/Medilink-sub001/internal/handler/health"
	"github.com/keshav-rathi-0/Medilink-sub001/internal/handler/prometheus"
	"github.com/keshav-rathi-0/Medilink-sub001/internal/middleware"
	"github.com/keshav-rathi-0/Medilink-sub001/pkg/metrics"
	"github.com/keshav-rathi-0/Medilink-sub001/pkg/validator"
)

// Handler is a resource handler mounted under /api
type Handler interface {
	RegisterRoutes(r *gin.RouterGroup, auth *middleware.AuthMiddleware)
}

// Handlers lists every resource mounted by the router. Auth mounts on the
// public group and guards its own private routes.
type Handlers struct {
	Auth          Handler
	Users         Handler
	Doctors       Handler
	Patients      Handler
	Staff         Handler
	Appointments  Handler
	Wards         Handler
	Medicines     Handler
	Prescriptions Handler
	Billing       Handler
	Reports       Handler
	Dashboards    Handler

	Health  *health.Handler
	Metrics *prometheus.Handler
}

func (h Handlers) protected() []Handler {
	return []Handler{
		h.Users, h.Doctors, h.Patients, h.Staff, h.Appointments, h.Wards,
		h.Medicines, h.Prescriptions, h.Billing, h.Reports, h.Dashboards,
	}
}

type Config struct {
	ServiceName      string
	Release          bool
	Tracing          bool
	RateLimitEnabled bool
	RateLimit        middleware.RateLimiterConfig
	CORS             middleware.CORSConfig
	Security         middleware.SecurityConfig
	SizeLimit        middleware.SizeLimitConfig
	Timeout          middleware.TimeoutConfig
}

type Router struct {
	engine *gin.Engine
}

// New builds the engine with the global middleware chain and every route
func New(cfg Config, auth *middleware.AuthMiddleware, m *metrics.Metrics, h Handlers) (*Router, error) {
	if cfg.Release {
		gin.SetMode(gin.ReleaseMode)
	}
	if err := validator.RegisterBinding(); err != nil {
		return nil, fmt.Errorf("register validators: %w", err)
	}

	engine := gin.New()
	engine.HandleMethodNotAllowed = false

	engine.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger("/health/live", "/health/ready", "/metrics"),
	)
	if cfg.Tracing {
		engine.Use(otelgin.Middleware(cfg.ServiceName))
	}
	if m != nil {
		engine.Use(middleware.Metrics(m))
	}
	engine.Use(
		middleware.SecurityHeaders(cfg.Security),
		middleware.CORS(cfg.CORS),
		middleware.SizeLimit(cfg.SizeLimit),
	)
	if cfg.RateLimitEnabled {
		engine.Use(middleware.NewRateLimiter(cfg.RateLimit).RateLimit())
	}
	engine.Use(
		middleware.Timeout(cfg.Timeout),
		middleware.ErrorHandler(),
	)

	if h.Health != nil {
		h.Health.RegisterRoutes(engine)
	}
	if h.Metrics != nil {
		h.Metrics.RegisterRoutes(engine)
	}

	api := engine.Group("/api")
	if h.Auth != nil {
		h.Auth.RegisterRoutes(api, auth)
	}

	protected := api.Group("", auth.Authenticate())
	for _, handler := range h.protected() {
		if handler != nil {
			handler.RegisterRoutes(protected, auth)
		}
	}

	engine.NoRoute(middleware.NotFound())

	return &Router{engine: engine}, nil
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
