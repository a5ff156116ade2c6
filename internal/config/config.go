package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Environments accepted on the command line
const (
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"
)

// Config holds all back-office job configuration
type Config struct {
	// Environment the job runs against (local/dev/prod). Set from the command line.
	Env string `ignored:"true"`

	// Database
	DatabaseHost     string `envconfig:"DATABASE_HOST" default:"localhost"`
	DatabasePort     int    `envconfig:"DATABASE_PORT" default:"5432"`
	DatabaseName     string `envconfig:"DATABASE_NAME" default:"ipdb"`
	DatabaseUser     string `envconfig:"DATABASE_USER" default:"admin_scripts"`
	DatabasePassword string `envconfig:"DATABASE_PASSWORD"`
	DatabaseSSLMode  string `envconfig:"DATABASE_SSL_MODE" default:"disable"`

	// Redis (run lock)
	RedisHost     string        `envconfig:"REDIS_HOST" default:"localhost"`
	RedisPort     int           `envconfig:"REDIS_PORT" default:"6379"`
	RedisPassword string        `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int           `envconfig:"REDIS_DB" default:"0"`
	RunLockTTL    time.Duration `envconfig:"RUN_LOCK_TTL" default:"10m"`

	// Logging
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// Monitoring. Metrics are pushed at the end of a run when set.
	PushgatewayURL string `envconfig:"PUSHGATEWAY_URL" default:""`

	// Trophies
	MinUsersInPoolForFriendWin int  `envconfig:"MIN_USERS_IN_POOL_FOR_FRIEND_WIN" default:"3"`
	ParallelTrophyEvaluation   bool `envconfig:"PARALLEL_TROPHY_EVALUATION" default:"false"`

	// Data feeds
	FeedBaseURL     string        `envconfig:"FEED_BASE_URL" default:"http://www.goalserve.com/getfeed"`
	FeedAPIKey      string        `envconfig:"FEED_API_KEY" default:""`
	FeedTimeout     time.Duration `envconfig:"FEED_TIMEOUT" default:"30s"`
	DataFolder      string        `envconfig:"DATA_FOLDER" default:"/var/tmp/inplayrs/data"`
	PreplayInterval time.Duration `envconfig:"PREPLAY_FEED_INTERVAL" default:"600s"`
	InplayInterval  time.Duration `envconfig:"INPLAY_FEED_INTERVAL" default:"10s"`
}

// Load loads configuration for the given environment.
// Values come from .env.<env>, then .env, then the process environment;
// files that don't exist are skipped and never override variables already set.
func Load(env string) (*Config, error) {
	if !ValidEnv(env) {
		return nil, fmt.Errorf("unknown environment %q (expected local, dev or prod)", env)
	}

	_ = godotenv.Load(".env." + env)
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}
	cfg.Env = env

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// ValidEnv reports whether env is one of the supported environments
func ValidEnv(env string) bool {
	switch env {
	case EnvLocal, EnvDev, EnvProd:
		return true
	}
	return false
}

// Validate validates the settings shared by every job
func (c *Config) Validate() error {
	if c.MinUsersInPoolForFriendWin < 0 {
		return fmt.Errorf("MIN_USERS_IN_POOL_FOR_FRIEND_WIN must not be negative")
	}

	if c.RunLockTTL <= 0 {
		return fmt.Errorf("RUN_LOCK_TTL must be positive")
	}

	if c.PreplayInterval <= 0 || c.InplayInterval <= 0 {
		return fmt.Errorf("feed intervals must be positive")
	}

	return nil
}

// ValidateDatabase checks the settings needed by jobs that talk to the store
func (c *Config) ValidateDatabase() error {
	if c.DatabasePassword == "" {
		return fmt.Errorf("DATABASE_PASSWORD is required")
	}
	return nil
}

// ValidateFeeds checks the settings needed by the feed loader
func (c *Config) ValidateFeeds() error {
	if c.FeedAPIKey == "" {
		return fmt.Errorf("FEED_API_KEY is required")
	}
	if c.DataFolder == "" {
		return fmt.Errorf("DATA_FOLDER is required")
	}
	return nil
}

// RedisAddr returns the Redis address
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// IsLocal returns true when running against a developer machine
func (c *Config) IsLocal() bool {
	return c.Env == EnvLocal
}

// IsProduction returns true if running against production
func (c *Config) IsProduction() bool {
	return c.Env == EnvProd
}

// FeedInterval returns the polling interval for a feed type
func (c *Config) FeedInterval(feedType string) (time.Duration, error) {
	switch feedType {
	case "preplay":
		return c.PreplayInterval, nil
	case "inplay":
		return c.InplayInterval, nil
	}
	return 0, fmt.Errorf("unknown feed type %q", feedType)
}

// MustLoad loads configuration or exits on error
// Use this in main() where we want to fail fast
func MustLoad(env string) *Config {
	cfg, err := Load(env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	return cfg
}
