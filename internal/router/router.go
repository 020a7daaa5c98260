package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/matt11seven/fuelogic-enterprise-control-sub000/internal/handler"
	"github.com/matt11seven/fuelogic-enterprise-control-sub000/internal/middleware"
)

// Handler registers a group of routes.
type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

type Config struct {
	RateLimit      rate.Limit
	RateBurst      int
	MetricsEnabled bool
}

type Router struct {
	engine   *gin.Engine
	health   *handler.HealthHandler
	handlers []Handler
	config   Config
}

func NewRouter(health *handler.HealthHandler, config Config, handlers ...Handler) *Router {
	gin.SetMode(gin.ReleaseMode)
	return &Router{
		engine:   gin.New(),
		health:   health,
		handlers: handlers,
		config:   config,
	}
}

func (r *Router) Setup() {
	r.engine.Use(middleware.RequestID())
	r.engine.Use(middleware.Logger())
	r.engine.Use(middleware.Recovery())

	if r.config.RateLimit > 0 {
		r.engine.Use(middleware.RateLimit(r.config.RateLimit, r.config.RateBurst))
	}

	r.engine.GET("/health/live", r.health.Live)
	r.engine.GET("/health/ready", r.health.Ready)
	if r.config.MetricsEnabled {
		r.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	api := r.engine.Group("/api/v1")
	for _, h := range r.handlers {
		h.RegisterRoutes(api)
	}
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
