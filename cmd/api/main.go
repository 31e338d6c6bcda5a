package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Siddarth2230/domain-keys/internal/config"
	"github.com/Siddarth2230/domain-keys/internal/handler"
	"github.com/Siddarth2230/domain-keys/internal/logging"
	"github.com/Siddarth2230/domain-keys/internal/middleware"
	"github.com/Siddarth2230/domain-keys/internal/models"
	"github.com/Siddarth2230/domain-keys/internal/repository"
	"github.com/Siddarth2230/domain-keys/internal/service"
	"github.com/Siddarth2230/domain-keys/pkg/cache"
	"github.com/Siddarth2230/domain-keys/pkg/idgen"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	logging.Init(cfg.ServiceName, cfg.SlogLevel())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Postgres
	db, err := sql.Open("postgres", cfg.DBDSN)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		log.Fatalf("db ping failed: %v", err)
	}
	repo := repository.NewRecordRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		log.Fatal(err)
	}

	// Redis
	redisClient := redis.NewClient(&redis.Options{
		Addr:        cfg.RedisAddr,
		Password:    cfg.RedisPassword,
		DB:          cfg.RedisDB,
		DialTimeout: 5 * time.Second,
		ReadTimeout: 3 * time.Second,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatalf("redis ping failed: %v", err)
	}
	defer func() {
		_ = redisClient.Close()
	}()

	var filter service.KeyFilter
	if cfg.BloomExpected > 0 {
		kf := cache.NewKeyFilter(cfg.BloomExpected, cfg.BloomFPRate)
		warmCtx, cancelWarm := context.WithTimeout(context.Background(), time.Minute)
		err := repo.EachKey(warmCtx, kf.Add)
		cancelWarm()
		if err != nil {
			log.Fatalf("warm key filter: %v", err)
		}
		slog.Info("key filter warmed", "keys", kf.ApproxCount())
		filter = kf
	}

	keys := idgen.NewRouteKey()
	svc, err := service.NewKeyService(repo, service.Options{
		Routes:    cfg.Routes,
		TxKeySize: cfg.TxKeySize,
		LRUSize:   cfg.LRUSize,
		L1TTL:     cfg.L1TTL,
		L2:        cache.NewRedisCache[*models.Record](redisClient, "record", cfg.CacheTTL),
		Counter:   idgen.NewRouteCounter(redisClient, ""),
		Filter:    filter,
		Keys:      keys,
	})
	if err != nil {
		log.Fatal(err)
	}

	r := mux.NewRouter()
	r.Use(middleware.Recover, middleware.RequestID(keys), middleware.AccessLog, middleware.Metrics)
	handler.NewKeyHandler(svc).Register(r)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		pingCtx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(pingCtx); err != nil {
			http.Error(w, "db unavailable", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodGet)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errch := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", cfg.Addr, "routes", svc.Routes())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errch <- err
		}
		close(errch)
	}()

	select {
	case err := <-errch:
		if err != nil {
			log.Fatal(err)
		}
	case <-stopCtx.Done():
	}

	slog.Info("shutting down", "timeout", cfg.ShutdownTimeout)
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("graceful shutdown failed", "error", err)
	}
}
