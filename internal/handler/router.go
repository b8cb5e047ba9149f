package handler

import (
	"io/fs"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"skybridge/internal/service"
)

// RouterOptions wires the HTTP surface
type RouterOptions struct {
	Agent          *service.AgentService
	Build          BuildInfo
	AllowedOrigins []string
	Limiter        *RateLimiter // nil disables rate limiting
	Static         fs.FS        // nil disables the frontend
	Logger         *zap.Logger
}

// NewRouter builds the gin engine with every route registered
func NewRouter(opts RouterOptions) *gin.Engine {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()
	router.Use(gin.Recovery(), RequestLogger(logger))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = opts.AllowedOrigins
	if len(opts.AllowedOrigins) == 0 || (len(opts.AllowedOrigins) == 1 && opts.AllowedOrigins[0] == "*") {
		corsConfig.AllowOrigins = nil
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Content-Type", "Authorization", SessionHeader}
	corsConfig.ExposeHeaders = []string{SessionHeader}
	router.Use(cors.New(corsConfig))

	health := NewHealthHandler(opts.Build)
	router.GET("/health", health.Health)
	router.GET("/version", health.Version)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	agentHandler := NewAgentHandler(opts.Agent)
	fillsHandler := NewFillsHandler(opts.Agent)

	api := router.Group("/api")
	if opts.Limiter != nil {
		api.Use(opts.Limiter.Middleware())
	}
	{
		api.POST("/agent", agentHandler.Turn)
		api.GET("/agent/sessions/:id", agentHandler.GetSession)
		api.DELETE("/agent/sessions/:id", agentHandler.ResetSession)
		api.GET("/v1/fills", fillsHandler.List)
	}

	if opts.Static != nil {
		ServeStatic(router, opts.Static)
	}

	return router
}
