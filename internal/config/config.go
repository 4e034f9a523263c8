package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	pkgconfig "github.com/Brodino96/TasteTracker/pkg/config"
	"github.com/Brodino96/TasteTracker/pkg/database"
	"github.com/Brodino96/TasteTracker/pkg/logger"
	"github.com/Brodino96/TasteTracker/pkg/middleware"
	"github.com/Brodino96/TasteTracker/pkg/tracing"
)

// ServiceName identifies this service in logs, metrics and traces.
const ServiceName = "tastetracker-api"

// Config holds all configuration for the TasteTracker API.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"HTTP_PORT" envDefault:"8080"`

	// PostgreSQL
	PostgresHost string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser string `env:"POSTGRES_USER" envDefault:"tastetracker"`
	PostgresPass string `env:"POSTGRES_PASSWORD" envDefault:"tastetracker_secret"`
	PostgresDB   string `env:"POSTGRES_DB_NAME" envDefault:"tastetracker"`
	PostgresSSL  string `env:"POSTGRES_SSL_MODE" envDefault:"disable"`
	DBMaxConns   int32  `env:"DB_MAX_CONNS" envDefault:"25"`
	DBMinConns   int32  `env:"DB_MIN_CONNS" envDefault:"5"`

	// Redis
	RedisEnabled  bool   `env:"REDIS_ENABLED" envDefault:"true"`
	RedisHost     string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort     int    `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	// Kafka
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// Identity platform tokens
	JWTSecret   string `env:"AUTH_JWT_SECRET"`
	JWTIssuer   string `env:"AUTH_JWT_ISSUER" envDefault:""`
	JWTAudience string `env:"AUTH_JWT_AUDIENCE" envDefault:""`

	// Images
	ImageBaseURL string `env:"IMAGE_BASE_URL" envDefault:"http://localhost:8080"`

	// Reviews
	SubmissionLockTTLSeconds int     `env:"SUBMISSION_LOCK_TTL_SECONDS" envDefault:"10"`
	ReviewRateLimitRPS       float64 `env:"REVIEW_RATE_LIMIT_RPS" envDefault:"2"`
	ReviewRateLimitBurst     int     `env:"REVIEW_RATE_LIMIT_BURST" envDefault:"5"`
	UserCacheTTLSeconds      int     `env:"USER_CACHE_TTL_SECONDS" envDefault:"300"`

	// Observability
	OTELEnabled      bool     `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint     string   `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate   float64  `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`
	PprofAllowedCIDR []string `env:"PPROF_ALLOWED_CIDRS" envSeparator:","`
	SlowQueryMS      int      `env:"LOG_SLOW_QUERY_MS" envDefault:"500"`

	// CORS
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
}

// Load reads configuration from environment variables and validates it.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load tastetracker config: %w", err)
	}
	if len(cfg.PprofAllowedCIDR) == 0 {
		cfg.PprofAllowedCIDR = append([]string(nil), middleware.DefaultPprofCIDRs...)
	}
	return cfg, nil
}

// Validate implements pkgconfig.Validator.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.JWTSecret) == "" {
		errs = append(errs, errors.New("AUTH_JWT_SECRET is required"))
	}
	if !logger.ValidLevel(c.LogLevel) {
		errs = append(errs, fmt.Errorf("LOG_LEVEL %q is not one of debug, info, warn, error", c.LogLevel))
	}
	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		errs = append(errs, fmt.Errorf("HTTP_PORT %d out of range", c.HTTPPort))
	}
	if c.DBMinConns < 0 || c.DBMaxConns < 1 || c.DBMinConns > c.DBMaxConns {
		errs = append(errs, fmt.Errorf("DB_MIN_CONNS %d and DB_MAX_CONNS %d are inconsistent", c.DBMinConns, c.DBMaxConns))
	}
	if c.SubmissionLockTTLSeconds <= 0 {
		errs = append(errs, errors.New("SUBMISSION_LOCK_TTL_SECONDS must be positive"))
	}
	if c.ReviewRateLimitRPS <= 0 || c.ReviewRateLimitBurst <= 0 {
		errs = append(errs, errors.New("REVIEW_RATE_LIMIT_RPS and REVIEW_RATE_LIMIT_BURST must be positive"))
	}
	if c.OTELSampleRate < 0 || c.OTELSampleRate > 1 {
		errs = append(errs, fmt.Errorf("OTEL_SAMPLE_RATE %v must be within [0, 1]", c.OTELSampleRate))
	}
	if len(c.KafkaBrokers) == 0 {
		errs = append(errs, errors.New("KAFKA_BROKERS must list at least one broker"))
	}
	return errors.Join(errs...)
}

// IsDevelopment reports whether the service runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// Postgres returns the database pool configuration.
func (c *Config) Postgres() database.PostgresConfig {
	pg := database.DefaultPostgresConfig()
	pg.Host = c.PostgresHost
	pg.Port = c.PostgresPort
	pg.User = c.PostgresUser
	pg.Password = c.PostgresPass
	pg.DBName = c.PostgresDB
	pg.SSLMode = c.PostgresSSL
	pg.MaxConns = c.DBMaxConns
	pg.MinConns = c.DBMinConns
	return pg
}

// Redis returns the Redis client configuration.
func (c *Config) Redis() database.RedisConfig {
	rc := database.DefaultRedisConfig()
	rc.Host = c.RedisHost
	rc.Port = c.RedisPort
	rc.Password = c.RedisPassword
	rc.DB = c.RedisDB
	return rc
}

// Tracing returns the OpenTelemetry configuration.
func (c *Config) Tracing() tracing.Config {
	tc := tracing.DefaultConfig(ServiceName)
	tc.Environment = c.Environment
	tc.Enabled = c.OTELEnabled
	tc.OTLPEndpoint = c.OTELEndpoint
	tc.SampleRate = c.OTELSampleRate
	return tc
}

// SubmissionLockTTL is how long a review submission guard may be held.
func (c *Config) SubmissionLockTTL() time.Duration {
	return time.Duration(c.SubmissionLockTTLSeconds) * time.Second
}

// UserCacheTTL is how long author profiles stay cached.
func (c *Config) UserCacheTTL() time.Duration {
	return time.Duration(c.UserCacheTTLSeconds) * time.Second
}

// SlowQueryThreshold is the duration above which queries are logged.
func (c *Config) SlowQueryThreshold() time.Duration {
	return time.Duration(c.SlowQueryMS) * time.Millisecond
}
