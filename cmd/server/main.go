package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/yukeru/gelande/internal/api"
	"github.com/yukeru/gelande/internal/conditions"
	"github.com/yukeru/gelande/internal/recommend"
	"github.com/yukeru/gelande/internal/registry"
	"github.com/yukeru/gelande/internal/resort"
	"github.com/yukeru/gelande/internal/storage"
	"github.com/yukeru/gelande/internal/travel"
	"github.com/yukeru/gelande/migrations"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	if err := run(log); err != nil {
		log.Error("server exited with error", "err", err)
		os.Exit(1)
	}
}

func run(log *slog.Logger) error {
	databaseURL := mustEnv("DATABASE_URL")
	redisURL := mustEnv("REDIS_URL")
	bearerToken := mustEnv("BEARER_TOKEN")
	routingKey := os.Getenv("ROUTING_API_KEY") // optional: absent means geometric fallback only
	port := getEnv("PORT", "8080")
	origin := originFromEnv(log)

	ctx := context.Background()

	// Connect to PostgreSQL.
	pool, err := storage.Connect(ctx, databaseURL)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer pool.Close()

	if err := storage.RunMigrations(ctx, pool, migrations.FS); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	log.Info("migrations applied")

	// Connect to Redis.
	redisClient, err := conditions.Connect(ctx, redisURL)
	if err != nil {
		return fmt.Errorf("connecting to redis: %w", err)
	}
	defer func() { _ = redisClient.Close() }()

	// Wire dependencies.
	reg := registry.NewFromCatalog()
	resolver := registry.NewResolver(reg)
	store := conditions.NewStore(redisClient)
	estimates := storage.NewEstimateRepo(pool)
	router := travel.NewRouterClient(routingKey)
	estimator := travel.NewEstimator(estimates, router, origin, log)
	svc := recommend.NewService(reg, resolver, store, estimator, log)
	handlers := api.NewHandlers(svc, log)

	dbPinger := &pgxPoolPinger{pool: pool}
	redisPinger := &redisPingerAdapter{client: redisClient}

	mux := api.NewRouter(handlers, bearerToken, dbPinger, redisPinger, log)

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Error("server goroutine panicked", "recover", r)
				errCh <- fmt.Errorf("server panicked: %v", r)
			}
		}()
		log.Info("server starting", "port", port, "origin", origin.Label)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("listening: %w", err)
		}
	}()

	select {
	case sig := <-quit:
		log.Info("shutdown signal received", "signal", sig)
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}

	log.Info("server shut down cleanly")
	return nil
}

// originFromEnv reads the fixed origin, defaulting to Tokyo.
func originFromEnv(log *slog.Logger) travel.Origin {
	origin := travel.Tokyo
	if label := os.Getenv("ORIGIN_LABEL"); label != "" {
		origin.Label = label
	}
	lat, latErr := strconv.ParseFloat(os.Getenv("ORIGIN_LAT"), 64)
	lon, lonErr := strconv.ParseFloat(os.Getenv("ORIGIN_LON"), 64)
	if latErr == nil && lonErr == nil {
		origin.Coord = resort.Coordinate{Lat: lat, Lon: lon}
	} else if os.Getenv("ORIGIN_LAT") != "" || os.Getenv("ORIGIN_LON") != "" {
		log.Warn("ignoring malformed ORIGIN_LAT/ORIGIN_LON, using default origin")
	}
	return origin
}

func mustEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		slog.Error("required environment variable not set", "key", key)
		os.Exit(1)
	}
	return v
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// pgxPoolPinger adapts pgxpool.Pool to the api.dbPinger interface.
type pgxPoolPinger struct {
	pool interface {
		Ping(ctx context.Context) error
	}
}

func (p *pgxPoolPinger) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// redisPingerAdapter adapts redis.Client to the api.redisPinger interface.
type redisPingerAdapter struct {
	client *redis.Client
}

func (r *redisPingerAdapter) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
