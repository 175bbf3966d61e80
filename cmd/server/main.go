package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/kalissr/voting-system/internal/audit"
	"github.com/kalissr/voting-system/internal/auth"
	"github.com/kalissr/voting-system/internal/config"
	"github.com/kalissr/voting-system/internal/db"
	httpserver "github.com/kalissr/voting-system/internal/http"
	"github.com/kalissr/voting-system/internal/ratelimit"
	"github.com/kalissr/voting-system/internal/repository"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("dotenv: %v", err)
	}

	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := db.Migrate(ctx, cfg.DatabaseURL); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer pool.Close()

	store := repository.NewStore(pool)

	var counter ratelimit.Counter = ratelimit.NewMemoryCounter()
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			log.Fatalf("redis: %v", err)
		}
		defer client.Close()
		counter = ratelimit.NewRedisCounter(client)
		log.Printf("rate limiting backed by redis at %s", cfg.RedisAddr)
	} else {
		log.Printf("rate limiting backed by in-process counters")
	}

	server := httpserver.NewServer(
		cfg,
		store,
		auth.NewTracker(store, cfg.LockoutWindow, cfg.LockoutThreshold),
		ratelimit.NewLimiter(counter, cfg.RateLimitMax, cfg.RateLimitWindow, cfg.RateLimitFailOpen),
		auth.NewCSRFGuard(cfg.CSRFTokenTTL, cfg.IsProduction()),
		audit.NewRecorder(store),
	)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           server.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Printf("listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("serve: %v", err)
		}
	}()

	<-ctx.Done()
	log.Printf("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
