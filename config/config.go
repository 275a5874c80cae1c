package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/greghart/entityp"
	"github.com/greghart/entityp/sqlp"
	"github.com/joho/godotenv"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds all entityp configuration
type Config struct {
	Database DatabaseConfig
	Log      LogConfig
	// LiteralIdentity embeds integer identities in statement text instead of binding them.
	LiteralIdentity bool
}

// DatabaseConfig holds connection settings
type DatabaseConfig struct {
	Driver          string
	DSN             string
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

// LogConfig holds logger settings
type LogConfig struct {
	Level       string
	Development bool
}

// Load reads the given .env files (default ".env") if they exist, then configuration from
// environment variables with defaults. Variables already set win over .env files.
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load env file: %w", err)
	}

	var err error
	cfg := &Config{
		Database: DatabaseConfig{
			Driver:          getEnv("ENTITYP_DB_DRIVER", "sqlite3"),
			DSN:             getEnv("ENTITYP_DB_DSN", "entityp.db"),
			MaxOpenConns:    getIntEnv(&err, "ENTITYP_DB_MAX_OPEN_CONNS", 0),
			ConnMaxLifetime: getDurationEnv(&err, "ENTITYP_DB_CONN_MAX_LIFETIME", 0),
		},
		Log: LogConfig{
			Level:       getEnv("ENTITYP_LOG_LEVEL", "info"),
			Development: getBoolEnv(&err, "ENTITYP_LOG_DEVELOPMENT", false),
		},
		LiteralIdentity: getBoolEnv(&err, "ENTITYP_LITERAL_IDENTITY", false),
	}
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every setting, returning all failures at once.
func (c *Config) Validate() error {
	var err error
	if _, dErr := sqlp.DialectFor(c.Database.Driver); dErr != nil {
		err = multierr.Append(err, fmt.Errorf("ENTITYP_DB_DRIVER: %w", dErr))
	}
	if c.Database.DSN == "" {
		err = multierr.Append(err, errors.New("ENTITYP_DB_DSN is required"))
	}
	if c.Database.MaxOpenConns < 0 {
		err = multierr.Append(err, fmt.Errorf("ENTITYP_DB_MAX_OPEN_CONNS must not be negative, got %d", c.Database.MaxOpenConns))
	}
	if c.Database.ConnMaxLifetime < 0 {
		err = multierr.Append(err, fmt.Errorf("ENTITYP_DB_CONN_MAX_LIFETIME must not be negative, got %s", c.Database.ConnMaxLifetime))
	}
	if _, lErr := zapcore.ParseLevel(c.Log.Level); lErr != nil {
		err = multierr.Append(err, fmt.Errorf("ENTITYP_LOG_LEVEL: %w", lErr))
	}
	return err
}

// Logger builds a production logger, or a development one if configured, at the
// configured level.
func (c *Config) Logger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("failed to parse log level: %w", err)
	}
	zc := zap.NewProductionConfig()
	if c.Log.Development {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}

// OpenDB opens the configured database. It does not connect until first use, see
// sqlp.DB.Ping.
func (c *Config) OpenDB(logger *zap.Logger) (*sqlp.DB, error) {
	db, err := sqlp.Open(c.Database.Driver, c.Database.DSN, sqlp.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", c.Database.Driver, err)
	}
	db.SetMaxOpenConns(c.Database.MaxOpenConns)
	db.SetConnMaxLifetime(c.Database.ConnMaxLifetime)
	return db, nil
}

// RepositoryOptions returns the entityp options this configuration implies.
func (c *Config) RepositoryOptions(logger *zap.Logger) []entityp.Option {
	opts := []entityp.Option{entityp.WithLogger(logger)}
	if c.LiteralIdentity {
		opts = append(opts, entityp.WithLiteralIdentity())
	}
	return opts
}

////////////////////////////////////////////////////////////////////////////////

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(errs *error, key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		*errs = multierr.Append(*errs, fmt.Errorf("%s must be an integer: %w", key, err))
		return defaultValue
	}
	return n
}

func getBoolEnv(errs *error, key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		*errs = multierr.Append(*errs, fmt.Errorf("%s must be a boolean: %w", key, err))
		return defaultValue
	}
	return b
}

func getDurationEnv(errs *error, key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		*errs = multierr.Append(*errs, fmt.Errorf("%s must be a duration: %w", key, err))
		return defaultValue
	}
	return d
}
