package http

import (
	"context"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tumorvision/tumorvision/internal/config"
	"github.com/tumorvision/tumorvision/internal/http/handlers"
	"github.com/tumorvision/tumorvision/internal/http/middlewares"
	"github.com/tumorvision/tumorvision/internal/observability"
	"github.com/tumorvision/tumorvision/internal/session"
	"github.com/tumorvision/tumorvision/internal/store"
	"github.com/tumorvision/tumorvision/internal/upload"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

type RouterDeps struct {
	Log      *slog.Logger
	Cfg      config.Config
	Store    store.Store
	Sessions *session.Manager
	Auth     handlers.Authenticator
	Pipeline handlers.Analyzer
	Prom     *observability.Prom
	Registry *prometheus.Registry
}

func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// middleware

	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(deps.Log))
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(deps.Cfg.AllowedOrigins))
	r.Use(middlewares.MaxBodyBytes(upload.MaxUploadBytes + 1<<20)) // upload cap + form overhead

	if deps.Prom != nil {
		r.Use(deps.Prom.GinHandleMiddleware())
	}
	if deps.Cfg.TracingEnabled {
		r.Use(otelgin.Middleware("tumorvision-api"))
	}

	// health
	ping := func() error {
		if deps.Store == nil {
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()

		return deps.Store.Ping(ctx)
	}

	h := handlers.NewHealthHandler(ping)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)

	if deps.Registry != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{})))
	}

	// wire up handlers

	guard := middlewares.NewSessionGuard(deps.Sessions)
	authLimiter := middlewares.NewRateLimiter(10, time.Minute)

	authHandler := handlers.NewAuthHandler(deps.Auth, deps.Sessions)
	analysesHandler := handlers.NewAnalysesHandler(deps.Pipeline)
	historyHandler := handlers.NewHistoryHandler(deps.Store)

	authGroup := r.Group("/auth")
	authGroup.Use(authLimiter.RateLimiterMiddleware(middlewares.KeyByIP))
	{
		authGroup.POST("/signin", middlewares.RequireJSON(), authHandler.SignIn)
		authGroup.POST("/signup", middlewares.RequireJSON(), authHandler.SignUp)
		authGroup.POST("/logout", authHandler.Logout)
		authGroup.GET("/me", authHandler.Me)
	}

	// the upload and history surfaces are the two gated sections
	r.POST("/analyses", guard.RequireSession(), analysesHandler.Create)
	r.GET("/history", guard.RequireSession(), historyHandler.List)
	r.GET("/history/sample", historyHandler.Sample)

	return r
}
