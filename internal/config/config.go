package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverBolt     = "bolt"
)

const defaultDatabaseURL = "postgres://tasks@localhost:5432/tasks?sslmode=disable"

// Config holds every runtime setting of the task service.
type Config struct {
	AppName     string
	Environment string
	HTTP        HTTPConfig
	Storage     StorageConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	RateLimit   RateLimitConfig
	Context     ContextConfig
	Monitor     MonitorConfig
	Logger      LoggerConfig
}

type HTTPConfig struct {
	Host         string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// StorageConfig selects the task store. Bolt keeps everything in one local file.
type StorageConfig struct {
	Driver   string
	BoltPath string
}

// DatabaseConfig is only read by the postgres driver.
type DatabaseConfig struct {
	URL           string
	MaxConns      int
	MinConns      int
	ConnLifetime  time.Duration
	RunMigrations bool
}

// RedisConfig is optional; an empty URL disables Redis entirely.
// Password and database index travel in the URL.
type RedisConfig struct {
	URL string
}

type RateLimitConfig struct {
	RequestsPerMin int
	Burst          int
}

type ContextConfig struct {
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

type MonitorConfig struct {
	Interval time.Duration
}

type LoggerConfig struct {
	Level    string
	Encoding string
}

// Load reads an optional .env file, then the process environment.
// Unset or unparsable values fall back to their defaults.
func Load() (*Config, error) {
	_ = godotenv.Load(".env")

	cfg := &Config{
		AppName:     env("APP_NAME", "task-service", asString),
		Environment: env("APP_ENV", "development", asString),
		HTTP: HTTPConfig{
			Host:         env("SERVER_HOST", "0.0.0.0", asString),
			Port:         env("SERVER_PORT", "8080", asString),
			ReadTimeout:  env("SERVER_READ_TIMEOUT", 10*time.Second, asDuration),
			WriteTimeout: env("SERVER_WRITE_TIMEOUT", 10*time.Second, asDuration),
			IdleTimeout:  env("SERVER_IDLE_TIMEOUT", 2*time.Minute, asDuration),
		},
		Storage: StorageConfig{
			Driver:   env("STORAGE_DRIVER", DriverPostgres, asString),
			BoltPath: env("BOLTDB_PATH", "./data/tasks.db", asString),
		},
		Database: DatabaseConfig{
			URL:           env("DATABASE_URL", defaultDatabaseURL, asString),
			MaxConns:      env("DB_MAX_OPEN_CONNS", 25, strconv.Atoi),
			MinConns:      env("DB_MAX_IDLE_CONNS", 2, strconv.Atoi),
			ConnLifetime:  env("DB_CONN_LIFETIME", time.Hour, asDuration),
			RunMigrations: env("RUN_MIGRATIONS", true, strconv.ParseBool),
		},
		Redis: RedisConfig{
			URL: env("REDIS_URL", "", asString),
		},
		RateLimit: RateLimitConfig{
			RequestsPerMin: env("RATE_LIMIT_REQUESTS_PER_MIN", 600, strconv.Atoi),
			Burst:          env("RATE_LIMIT_BURST", 50, strconv.Atoi),
		},
		Context: ContextConfig{
			RequestTimeout:  env("REQUEST_TIMEOUT_SECONDS", 5*time.Second, asDuration),
			ShutdownTimeout: env("SHUTDOWN_TIMEOUT_SECONDS", 15*time.Second, asDuration),
		},
		Monitor: MonitorConfig{
			Interval: env("HEALTH_CHECK_INTERVAL", 10*time.Second, asDuration),
		},
		Logger: LoggerConfig{
			Level:    env("LOG_LEVEL", "info", asString),
			Encoding: env("LOG_ENCODING", "json", asString),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings that have no safe fallback.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case DriverPostgres, DriverBolt:
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q (want %s or %s)", c.Storage.Driver, DriverPostgres, DriverBolt)
	}
	if c.Storage.Driver == DriverBolt && c.Storage.BoltPath == "" {
		return fmt.Errorf("BOLTDB_PATH is required for the %s driver", DriverBolt)
	}
	if c.RateLimit.RequestsPerMin < 0 || c.RateLimit.Burst < 0 {
		return fmt.Errorf("rate limit settings must not be negative")
	}
	return nil
}

// RedisEnabled reports whether a Redis URL was configured.
func (c *Config) RedisEnabled() bool {
	return c.Redis.URL != ""
}

// Address returns the HTTP listen address for the fasthttp server.
func (c *Config) Address() string {
	return c.HTTP.Host + ":" + c.HTTP.Port
}

func env[T any](key string, fallback T, parse func(string) (T, error)) T {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	v, err := parse(raw)
	if err != nil {
		return fallback
	}
	return v
}

func asString(s string) (string, error) { return s, nil }

// asDuration accepts Go duration syntax or a bare number of seconds.
func asDuration(s string) (time.Duration, error) {
	if d, err := time.ParseDuration(s); err == nil {
		return d, nil
	}
	secs, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	return time.Duration(secs) * time.Second, nil
}
