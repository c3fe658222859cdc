package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"real-estate-crm/internal/alerts"
	"real-estate-crm/internal/auth"
	"real-estate-crm/internal/cache"
	"real-estate-crm/internal/cleanup"
	"real-estate-crm/internal/config"
	"real-estate-crm/internal/handlers"
	"real-estate-crm/internal/logger"
	"real-estate-crm/internal/ratelimit"
	"real-estate-crm/internal/scheduler"
	"real-estate-crm/internal/search"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/spf13/cobra"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the daily jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}
}

func runServe() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := logger.Component("main")
	gin.SetMode(cfg.Server.GinMode)

	db, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.InitSchema(); err != nil {
		return err
	}

	store := newTokenStore(cfg.Redis)

	var engine search.Engine
	if cfg.Search.Meilisearch.Enabled {
		m := cfg.Search.Meilisearch
		client := search.NewSearchClient(m.Host, m.APIKey, m.Index)
		if err := client.InitIndex(); err != nil {
			log.WithError(err).Warn("Failed to initialize search index, using SQL search")
		} else {
			engine = search.NewBreaker(client, 3, 30*time.Second)
			log.Infof("Meilisearch index %q ready at %s", m.Index, m.Host)
		}
	}

	loginLimiter := ratelimit.NewKeyedLimiter(cfg.RateLimit.LoginPerMinute, cfg.RateLimit.LoginPerHour, cfg.RateLimit.Enabled)
	log.Infof("Login rate limiter: %d/min, %d/hour (enabled: %v)",
		cfg.RateLimit.LoginPerMinute, cfg.RateLimit.LoginPerHour, cfg.RateLimit.Enabled)

	sched := scheduler.NewScheduler(alerts.NewService(db.DB()), cleanup.NewService(db.DB()), cfg)
	if err := sched.Start(); err != nil {
		log.WithError(err).Warn("Failed to start scheduler")
	}
	defer sched.Stop()

	router := handlers.NewRouter(handlers.Deps{
		DB:           db,
		Config:       cfg,
		Tokens:       auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.GetTokenTTL()),
		TokenStore:   store,
		Search:       engine,
		Scheduler:    sched,
		LoginLimiter: loginLimiter,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("Server starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		log.Infof("Received %s, shutting down", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return err
	}
	log.Info("Server stopped")
	return nil
}

// newTokenStore prefers redis and falls back to process memory when it is
// disabled or unreachable
func newTokenStore(cfg config.RedisConfig) cache.TokenStore {
	log := logger.Component("main")
	if !cfg.Enabled {
		log.Info("Token revocation kept in memory")
		return cache.NewMemoryStore()
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.WithError(err).Warn("Redis unreachable, token revocation kept in memory")
		_ = client.Close()
		return cache.NewMemoryStore()
	}
	log.Infof("Token revocation stored in redis at %s", cfg.Addr)
	return cache.NewRedisStore(client)
}
