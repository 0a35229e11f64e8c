// Package config reads the service configuration from the environment.
// main loads .env (godotenv) before calling Load.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	BackendMongo  = "mongo"
	BackendBadger = "badger"
)

type Config struct {
	App      AppConfig
	HTTP     HTTPConfig
	Postgres PostgresConfig
	UserDocs UserDocsConfig
	Redis    RedisConfig
	Password PasswordConfig
}

type AppConfig struct {
	Name        string
	Environment string // development, staging, production
	LogLevel    string
}

type HTTPConfig struct {
	Addr            string
	MaxBodySize     int64
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	RateLimitRPS    float64 // write requests per second per client IP; 0 disables
	RateLimitBurst  int
}

type PostgresConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxIdleTime time.Duration
	ConnMaxLifetime time.Duration
	AutoMigrate     bool
}

type UserDocsConfig struct {
	Backend         string // mongo or badger
	MongoURI        string
	MongoDatabase   string
	MongoCollection string
	BadgerPath      string
}

// RedisConfig is optional; an empty URL disables the catalog cache and rate limiting.
type RedisConfig struct {
	URL          string
	CacheTTL       time.Duration
	CacheTimeout   time.Duration
	CacheTombstone time.Duration
}

type PasswordConfig struct {
	Memory      uint32 // kibibytes
	Iterations  uint32
	Parallelism uint8
}

func Load() (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "bookshelf-api"),
			Environment: getEnv("APP_ENV", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
		},
		HTTP: HTTPConfig{
			Addr:            getEnv("HTTP_ADDR", ":3000"),
			MaxBodySize:     int64(getEnvInt("MAX_BODY_SIZE", 1<<20)),
			ReadTimeout:     getEnvDuration("HTTP_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getEnvDuration("HTTP_WRITE_TIMEOUT", 15*time.Second),
			ShutdownTimeout: getEnvDuration("HTTP_SHUTDOWN_TIMEOUT", 10*time.Second),
			RateLimitRPS:    getEnvFloat("RATE_LIMIT_RPS", 5),
			RateLimitBurst:  getEnvInt("RATE_LIMIT_BURST", 20),
		},
		Postgres: PostgresConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 10),
			ConnMaxIdleTime: getEnvDuration("DB_CONN_MAX_IDLE_TIME", 5*time.Minute),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
			AutoMigrate:     getEnvBool("DB_AUTO_MIGRATE", true),
		},
		UserDocs: UserDocsConfig{
			Backend:         strings.ToLower(getEnv("USERDOCS_BACKEND", BackendMongo)),
			MongoURI:        os.Getenv("MONGO_URI"),
			MongoDatabase:   getEnv("MONGO_DATABASE", "bookshelf"),
			MongoCollection: getEnv("MONGO_USERS_COLLECTION", "Users"),
			BadgerPath:      getEnv("BADGER_PATH", "./data/userdocs"),
		},
		Redis: RedisConfig{
			URL:            os.Getenv("REDIS_URL"),
			CacheTTL:       getEnvDuration("CATALOG_CACHE_TTL", 10*time.Minute),
			CacheTimeout:   time.Duration(getEnvInt("CATALOG_CACHE_TIMEOUT_MS", 150)) * time.Millisecond,
			CacheTombstone: getEnvDuration("CATALOG_CACHE_TOMBSTONE", 5*time.Second),
		},
		Password: PasswordConfig{
			Memory:      uint32(getEnvInt("ARGON2_MEMORY", 131072)), // 128 MiB
			Iterations:  uint32(getEnvInt("ARGON2_ITER", 3)),
			Parallelism: uint8(getEnvInt("ARGON2_PAR", 1)),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.Postgres.URL == "" {
		errs = append(errs, errors.New("DATABASE_URL must be set"))
	}
	switch c.UserDocs.Backend {
	case BackendMongo:
		if c.UserDocs.MongoURI == "" {
			errs = append(errs, errors.New("MONGO_URI must be set for the mongo backend"))
		}
	case BackendBadger:
		if c.UserDocs.BadgerPath == "" {
			errs = append(errs, errors.New("BADGER_PATH must be set for the badger backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("USERDOCS_BACKEND must be %q or %q, got %q",
			BackendMongo, BackendBadger, c.UserDocs.Backend))
	}
	if c.HTTP.MaxBodySize <= 0 {
		errs = append(errs, errors.New("MAX_BODY_SIZE must be positive"))
	}
	if c.Password.Memory == 0 || c.Password.Iterations == 0 || c.Password.Parallelism == 0 {
		errs = append(errs, errors.New("ARGON2_MEMORY, ARGON2_ITER and ARGON2_PAR must be positive"))
	}
	return errors.Join(errs...)
}

func (c *Config) IsDevelopment() bool { return c.App.Environment == "development" }

// Helper functions

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvFloat(key string, defaultValue float64) float64 {
	value, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvDuration accepts Go durations ("90s") or a bare number of seconds.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	if n, err := strconv.Atoi(raw); err == nil {
		return time.Duration(n) * time.Second
	}
	return defaultValue
}
