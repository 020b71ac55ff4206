package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/tumorvision/tumorvision/internal/auth"
	"github.com/tumorvision/tumorvision/internal/clockx"
	"github.com/tumorvision/tumorvision/internal/config"
	httpx "github.com/tumorvision/tumorvision/internal/http"
	"github.com/tumorvision/tumorvision/internal/notifications"
	"github.com/tumorvision/tumorvision/internal/observability"
	"github.com/tumorvision/tumorvision/internal/session"
	"github.com/tumorvision/tumorvision/internal/store"
	"github.com/tumorvision/tumorvision/internal/store/cached"
	"github.com/tumorvision/tumorvision/internal/store/memory"
	pgstore "github.com/tumorvision/tumorvision/internal/store/postgres"
	"github.com/tumorvision/tumorvision/internal/store/redisstore"
	"github.com/tumorvision/tumorvision/internal/upload"
)

func main() {
	// .env is optional; real env always wins
	_ = godotenv.Load()

	cfg := config.Load()

	log := observability.NewLogger(cfg.Env)

	ctx := context.Background()

	if cfg.TracingEnabled {
		shutdownTracer, err := observability.InitTracer(ctx, "tumorvision-api", cfg.OTLPEndpoint)
		if err != nil {
			log.Error("tracer init failed", "err", err)
			os.Exit(1)
		}
		defer func() {
			shutdownCtx, cancel := config.WithTimeout(5 * time.Second)
			defer cancel()
			_ = shutdownTracer(shutdownCtx)
		}()
	}

	registry := prometheus.NewRegistry()
	prom := observability.NewProm(registry)

	backend, cleanup, err := buildStore(ctx, cfg, prom)
	if err != nil {
		log.Error("store init failed", "driver", cfg.StoreDriver, "err", err)
		os.Exit(1)
	}
	defer cleanup()

	// history reads go through a short TTL cache; appends invalidate it
	st := cached.New(backend, 5*time.Second)

	sessions := session.NewManager(st)

	// restore any previously stored session before taking traffic
	restoreCtx, cancel := config.WithTimeout(3 * time.Second)
	if err := sessions.Restore(restoreCtx); err != nil {
		log.Warn("session restore failed", "err", err)
	}
	cancel()

	clock := clockx.NewReal()

	authService := auth.NewService(st, sessions, clock)
	provider := upload.NewSimulatedProvider(clock, nil)
	notifier := notifications.NewLogNotifier(log)
	pipeline := upload.NewPipeline(provider, st, clock, notifier, prom, log)

	router := httpx.NewRouter(httpx.RouterDeps{
		Log:      log,
		Cfg:      cfg,
		Store:    st,
		Sessions: sessions,
		Auth:     authService,
		Pipeline: pipeline,
		Prom:     prom,
		Registry: registry,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second, // analyses run for several seconds by design
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.Port, "env", cfg.Env, "store", cfg.StoreDriver)
		err := srv.ListenAndServe()

		if err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	// graceful shutdown

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("server shutting down")

	shutdownCh := make(chan struct{})

	go func() {
		defer close(shutdownCh)

		shutdownCtx, cancel := config.WithTimeout(10 * time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("graceful shutdown failed", "err", err)
		}
	}()

	select {
	case <-shutdownCh:
		log.Info("shutdown complete")

	case <-time.After(12 * time.Second):
		log.Error("shutdown timed out")
	}
}

func buildStore(ctx context.Context, cfg config.Config, prom *observability.Prom) (store.Store, func(), error) {
	switch cfg.StoreDriver {
	case "redis":
		st := redisstore.New(redisstore.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}, prom)

		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()

		if err := st.Ping(pingCtx); err != nil {
			return nil, func() {}, err
		}
		return st, func() { _ = st.Close() }, nil

	case "postgres":
		pool, err := pgstore.NewPool(cfg.DBURL)
		if err != nil {
			return nil, func() {}, err
		}

		st := pgstore.New(pool, prom)

		schemaCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		if err := st.EnsureSchema(schemaCtx); err != nil {
			pool.Close()
			return nil, func() {}, err
		}
		return st, pool.Close, nil

	case "memory":
		return memory.New(), func() {}, nil

	default:
		return nil, func() {}, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}
