// Package main is the entry point for the FilmVault server.
// FilmVault keeps per-user movie favorites, folders and reviews behind
// a JSON API, with an external catalog for search and lookups.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/filmvault/filmvault/internal/blob"
	"github.com/filmvault/filmvault/internal/cache"
	cachememory "github.com/filmvault/filmvault/internal/cache/memory"
	cacheredis "github.com/filmvault/filmvault/internal/cache/redis"
	"github.com/filmvault/filmvault/internal/catalog"
	"github.com/filmvault/filmvault/internal/config"
	"github.com/filmvault/filmvault/internal/handler"
	"github.com/filmvault/filmvault/internal/lock"
	"github.com/filmvault/filmvault/internal/repository/storekv"
	"github.com/filmvault/filmvault/internal/service"
	"github.com/filmvault/filmvault/internal/store"
	storememory "github.com/filmvault/filmvault/internal/store/memory"
	storepostgres "github.com/filmvault/filmvault/internal/store/postgres"
	storeredis "github.com/filmvault/filmvault/internal/store/redis"
	storesqlite "github.com/filmvault/filmvault/internal/store/sqlite"
)

// Version information (set at build time)
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	configPath := ""
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}
	cfg := config.MustLoad(configPath)

	logger := newLogger(cfg.Logging)
	log.Logger = logger

	logger.Info().
		Str("version", Version).
		Str("build_time", BuildTime).
		Str("git_commit", GitCommit).
		Msg("starting FilmVault server")

	if err := run(cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("server exited with error")
	}
}

func run(cfg *config.Config, logger zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var redisClient *goredis.Client
	if cfg.Store.Driver == "redis" || cfg.Catalog.Cache == "redis" {
		redisClient = goredis.NewClient(&goredis.Options{
			Addr:        cfg.Redis.Addr(),
			Password:    cfg.Redis.Password,
			DB:          cfg.Redis.DB,
			PoolSize:    cfg.Redis.PoolSize,
			DialTimeout: cfg.Redis.DialTimeout,
		})
		defer redisClient.Close()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis ping: %w", err)
		}
	}

	adapter, err := buildStore(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("init store: %w", err)
	}
	defer adapter.Close()
	logger.Info().Str("driver", cfg.Store.Driver).Msg("store ready")

	var locker lock.Locker
	if redisClient != nil && cfg.Store.Driver == "redis" {
		locker = lock.NewRedisLocker(redisClient)
	} else {
		locker = lock.NewMemoryLocker()
	}

	pictures, err := buildBlobStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("init blob store: %w", err)
	}

	catalogClient := buildCatalog(cfg, redisClient, logger)

	users := storekv.NewUserRepo(adapter, locker, logger)
	sessions := storekv.NewSessionRepo(adapter, logger)

	sessionService := service.NewSessionService(sessions, logger)
	userService := service.NewUserService(users, sessionService, pictures, logger)

	api := handler.NewAPIHandler(handler.APIConfig{
		UserService:     userService,
		FavoriteService: service.NewFavoriteService(users, logger),
		FolderService:   service.NewFolderService(users, logger),
		ReviewService:   service.NewReviewService(users, logger),
		Catalog:         catalogClient,
		Logger:          logger,
	})

	var registry *prometheus.Registry
	if cfg.Metrics.Enabled {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	router := handler.NewRouter(handler.RouterConfig{
		API:         api,
		Registry:    registry,
		MetricsPath: cfg.Metrics.Path,
		Logger:      logger,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	logger.Info().Msg("server stopped")
	return nil
}

func newLogger(cfg config.LoggingConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.TimeFieldFormat = cfg.TimeFormat

	var logger zerolog.Logger
	if cfg.Format == "console" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	} else {
		logger = zerolog.New(os.Stderr)
	}
	return logger.Level(level).With().Timestamp().Logger()
}

func buildStore(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (store.Adapter, error) {
	switch cfg.Store.Driver {
	case "memory":
		return storememory.NewStore(), nil
	case "sqlite":
		sqliteCfg := storesqlite.DefaultConfig(cfg.Store.Path)
		if cfg.Store.BusyTimeout > 0 {
			sqliteCfg.BusyTimeout = cfg.Store.BusyTimeout
		}
		return storesqlite.NewStore(ctx, sqliteCfg, logger)
	case "postgres":
		return storepostgres.NewStore(ctx, storepostgres.Config{
			Host:     cfg.Store.Host,
			Port:     cfg.Store.Port,
			User:     cfg.Store.User,
			Password: cfg.Store.Password,
			Database: cfg.Store.Database,
			SSLMode:  cfg.Store.SSLMode,
		}, logger)
	case "redis":
		return storeredis.NewStore(ctx, storeredis.Config{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		}, logger)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

func buildBlobStore(ctx context.Context, cfg *config.Config) (blob.Store, error) {
	switch cfg.Blob.Backend {
	case "filesystem":
		return blob.NewFSStore(cfg.Blob.DataDir)
	case "s3":
		return blob.NewS3Store(ctx, blob.S3Config{
			Endpoint:        cfg.Blob.S3.Endpoint,
			Region:          cfg.Blob.S3.Region,
			Bucket:          cfg.Blob.S3.Bucket,
			AccessKeyID:     cfg.Blob.S3.AccessKeyID,
			SecretAccessKey: cfg.Blob.S3.SecretAccessKey,
		})
	default:
		return nil, fmt.Errorf("unknown blob backend %q", cfg.Blob.Backend)
	}
}

func buildCatalog(cfg *config.Config, redisClient *goredis.Client, logger zerolog.Logger) catalog.Client {
	client := catalog.NewOMDbClient(catalog.OMDbConfig{
		BaseURL: cfg.Catalog.BaseURL,
		APIKey:  cfg.Catalog.APIKey,
		Timeout: cfg.Catalog.Timeout,
	}, logger)

	var responseCache cache.Cache
	switch cfg.Catalog.Cache {
	case "memory":
		responseCache = cachememory.NewCache()
	case "redis":
		responseCache = cacheredis.NewCache(redisClient)
	default:
		return client
	}

	return catalog.NewCachedClient(client, responseCache, cfg.Catalog.CacheTTL, logger)
}
