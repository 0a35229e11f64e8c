package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	mw "github.com/5w1tchy/bookshelf-api/internal/api/middlewares"
	"github.com/5w1tchy/bookshelf-api/internal/api/router"
	"github.com/5w1tchy/bookshelf-api/internal/config"
	"github.com/5w1tchy/bookshelf-api/internal/coordinator"
	"github.com/5w1tchy/bookshelf-api/internal/logger"
	"github.com/5w1tchy/bookshelf-api/internal/repository/sqlconnect"
	"github.com/5w1tchy/bookshelf-api/internal/security/password"
	"github.com/5w1tchy/bookshelf-api/internal/store/catalog"
	"github.com/5w1tchy/bookshelf-api/internal/store/userdocs"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger.Init(cfg.App.Environment, cfg.App.LogLevel)
	log := logger.New("server")

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func run(cfg *config.Config, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := sqlconnect.ConnectDB(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("connect catalog: %w", err)
	}
	defer db.Close()
	log.Info().Msg("connected to postgres")

	catalogStore := catalog.New(db)
	if cfg.Postgres.AutoMigrate {
		if err := catalogStore.EnsureSchema(ctx); err != nil {
			return err
		}
	}

	rdb, err := openRedis(ctx, cfg.Redis, log)
	if err != nil {
		return err
	}
	if rdb != nil {
		defer rdb.Close()
	}
	books := catalog.NewCached(catalogStore, rdb, catalog.CacheOptions{
		TTL:       cfg.Redis.CacheTTL,
		Timeout:   cfg.Redis.CacheTimeout,
		Tombstone: cfg.Redis.CacheTombstone,
	}, logger.New("catalog_cache"))

	users, closeUsers, err := openUserDocs(ctx, cfg.UserDocs, log)
	if err != nil {
		return err
	}
	defer closeUsers()

	params := password.DefaultParams()
	params.Memory = cfg.Password.Memory
	params.Iterations = cfg.Password.Iterations
	params.Parallelism = cfg.Password.Parallelism

	coord := coordinator.New(books, users, password.NewHasher(params), logger.New("coordinator"))

	chain := []mw.Middleware{
		mw.RequestID(logger.New("http")),
		mw.AccessLog,
		mw.Recovery,
		mw.ResponseTime,
		mw.SecurityHeaders,
	}
	if rdb != nil && cfg.HTTP.RateLimitRPS > 0 {
		tb := mw.NewRedisTokenBucket(rdb, cfg.HTTP.RateLimitRPS, cfg.HTTP.RateLimitBurst, mw.PerIPKey("rl:writes"))
		chain = append(chain, tb.Middleware)
	}
	chain = append(chain, mw.BodySizeLimit(cfg.HTTP.MaxBodySize))

	server := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           mw.Chain(router.Router(coord), chain...),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.HTTP.Addr).Str("userdocs", cfg.UserDocs.Backend).Msg("server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// openRedis returns nil when no REDIS_URL is configured. An unreachable server
// is logged and kept: the cache and rate limiter both fail open.
func openRedis(ctx context.Context, cfg config.RedisConfig, log zerolog.Logger) (*redis.Client, error) {
	if cfg.URL == "" {
		log.Info().Msg("REDIS_URL not set; catalog cache and rate limiting disabled")
		return nil, nil
	}
	opt, err := redis.ParseURL(cfg.URL) // e.g. rediss://default:<token>@host:port
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	opt.DialTimeout = 2 * time.Second
	opt.ReadTimeout = 500 * time.Millisecond
	opt.WriteTimeout = 500 * time.Millisecond
	rdb := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		log.Warn().Err(err).Msg("redis unreachable at startup; continuing without it")
	} else {
		log.Info().Msg("connected to redis")
	}
	return rdb, nil
}

func openUserDocs(ctx context.Context, cfg config.UserDocsConfig, log zerolog.Logger) (coordinator.UserDocumentStore, func(), error) {
	switch cfg.Backend {
	case config.BackendBadger:
		s, err := userdocs.OpenBadger(cfg.BadgerPath)
		if err != nil {
			return nil, nil, err
		}
		log.Info().Str("path", cfg.BadgerPath).Msg("opened badger user documents")
		return s, func() {
			if err := s.Close(); err != nil {
				log.Error().Err(err).Msg("close badger")
			}
		}, nil

	default:
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			return nil, nil, fmt.Errorf("connect mongo: %w", err)
		}
		closeFn := func() {
			dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := client.Disconnect(dctx); err != nil {
				log.Error().Err(err).Msg("disconnect mongo")
			}
		}
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx, nil); err != nil {
			closeFn()
			return nil, nil, fmt.Errorf("ping mongo: %w", err)
		}

		s := userdocs.NewMongoStore(client.Database(cfg.MongoDatabase), cfg.MongoCollection)
		if err := s.EnsureIndexes(ctx); err != nil {
			closeFn()
			return nil, nil, err
		}
		log.Info().Str("database", cfg.MongoDatabase).Msg("connected to mongo")
		return s, closeFn, nil
	}
}
