package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to every environment override, e.g.
// YOGITRACK_SERVER_PORT.
const EnvPrefix = "YOGITRACK_"

const (
	DriverMemory   = "memory"
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
)

type Config struct {
	App      AppConfig      `yaml:"app" env:", prefix=APP_"`
	Server   ServerConfig   `yaml:"server" env:", prefix=SERVER_"`
	Store    StoreConfig    `yaml:"store" env:", prefix=STORE_"`
	Mongo    MongoConfig    `yaml:"mongo" env:", prefix=MONGO_"`
	Postgres PostgresConfig `yaml:"postgres" env:", prefix=POSTGRES_"`
	Retry    RetryConfig    `yaml:"retry" env:", prefix=RETRY_"`
	Metrics  MetricsConfig  `yaml:"metrics" env:", prefix=METRICS_"`
}

type AppConfig struct {
	Name        string `yaml:"name" env:"NAME, overwrite"`
	Environment string `yaml:"environment" env:"ENVIRONMENT, overwrite"`
	LogLevel    string `yaml:"log_level" env:"LOG_LEVEL, overwrite"`
}

type ServerConfig struct {
	Port            string        `yaml:"port" env:"PORT, overwrite"`
	TemplatePath    string        `yaml:"template_path" env:"TEMPLATE_PATH, overwrite"`
	StaticPath      string        `yaml:"static_path" env:"STATIC_PATH, overwrite"`
	BodyLimit       int           `yaml:"body_limit" env:"BODY_LIMIT, overwrite"`
	RateLimit       int           `yaml:"rate_limit" env:"RATE_LIMIT, overwrite"` // requests per minute
	RequestTimeout  time.Duration `yaml:"request_timeout" env:"REQUEST_TIMEOUT, overwrite"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT, overwrite"`
	ProblemBaseURL  string        `yaml:"problem_base_url" env:"PROBLEM_BASE_URL, overwrite"`
	CORSOrigins     string        `yaml:"cors_origins" env:"CORS_ORIGINS, overwrite"`
}

type StoreConfig struct {
	Driver string `yaml:"driver" env:"DRIVER, overwrite"`
}

type MongoConfig struct {
	URI          string `yaml:"uri" env:"URI, overwrite"`
	Database     string `yaml:"database" env:"DATABASE, overwrite"`
	Transactions bool   `yaml:"transactions" env:"TRANSACTIONS, overwrite"`
}

type PostgresConfig struct {
	Host            string        `yaml:"host" env:"HOST, overwrite"`
	Port            string        `yaml:"port" env:"PORT, overwrite"`
	User            string        `yaml:"user" env:"USER, overwrite"`
	Password        string        `yaml:"password" env:"PASSWORD, overwrite"`
	DBName          string        `yaml:"dbname" env:"DBNAME, overwrite"`
	SSLMode         string        `yaml:"sslmode" env:"SSLMODE, overwrite"`
	MaxOpenConns    int           `yaml:"max_open_conns" env:"MAX_OPEN_CONNS, overwrite"`
	MaxIdleConns    int           `yaml:"max_idle_conns" env:"MAX_IDLE_CONNS, overwrite"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" env:"CONN_MAX_LIFETIME, overwrite"`
}

// RetryConfig bounds the connection attempts made at startup.
type RetryConfig struct {
	Attempts uint          `yaml:"attempts" env:"ATTEMPTS, overwrite"`
	Delay    time.Duration `yaml:"delay" env:"DELAY, overwrite"`
	MaxDelay time.Duration `yaml:"max_delay" env:"MAX_DELAY, overwrite"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" env:"ENABLED, overwrite"`
	Path    string `yaml:"path" env:"PATH, overwrite"`
}

// Default returns the configuration used when no file or variable sets a
// value.
func Default() *Config {
	cfg := &Config{}
	cfg.App.Name = "YogiTrack"
	cfg.App.Environment = "development"
	cfg.App.LogLevel = "info"

	cfg.Server.Port = ":8080"
	cfg.Server.TemplatePath = "./web/templates"
	cfg.Server.StaticPath = "./web/static"
	cfg.Server.BodyLimit = 10 * 1024 * 1024
	cfg.Server.RateLimit = 120
	cfg.Server.RequestTimeout = 5 * time.Second
	cfg.Server.ShutdownTimeout = 10 * time.Second

	cfg.Store.Driver = DriverMemory

	cfg.Mongo.URI = "mongodb://localhost:27017"
	cfg.Mongo.Database = "yogitrack"

	cfg.Postgres.Host = "localhost"
	cfg.Postgres.Port = "5432"
	cfg.Postgres.User = "postgres"
	cfg.Postgres.DBName = "yogitrack"
	cfg.Postgres.SSLMode = "disable"
	cfg.Postgres.MaxOpenConns = 25
	cfg.Postgres.MaxIdleConns = 25
	cfg.Postgres.ConnMaxLifetime = 5 * time.Minute

	cfg.Retry.Attempts = 5
	cfg.Retry.Delay = 500 * time.Millisecond
	cfg.Retry.MaxDelay = 5 * time.Second

	cfg.Metrics.Enabled = true
	cfg.Metrics.Path = "/metrics"
	return cfg
}

// Load builds the configuration from defaults, dir/config.yaml,
// dir/config.secret.yaml and YOGITRACK_* variables, in that order. Both files
// are optional.
func Load(ctx context.Context, dir string) (*Config, error) {
	return load(ctx, dir, envconfig.OsLookuper())
}

func load(ctx context.Context, dir string, l envconfig.Lookuper) (*Config, error) {
	cfg := Default()
	for _, name := range []string{"config.yaml", "config.secret.yaml"} {
		if err := readFile(filepath.Join(dir, name), cfg); err != nil {
			return nil, err
		}
	}
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   cfg,
		Lookuper: envconfig.PrefixLookuper(EnvPrefix, l),
	}); err != nil {
		return nil, fmt.Errorf("config: environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// readFile overlays the keys present in path onto cfg.
func readFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

func (c *Config) Validate() error {
	switch c.Store.Driver {
	case DriverMemory, DriverMongo, DriverPostgres:
	default:
		return fmt.Errorf("config: store.driver must be one of %s, %s, %s; got %q",
			DriverMemory, DriverMongo, DriverPostgres, c.Store.Driver)
	}
	if strings.TrimSpace(c.Server.Port) == "" {
		return errors.New("config: server.port is required")
	}
	if c.Store.Driver == DriverMongo && (c.Mongo.URI == "" || c.Mongo.Database == "") {
		return errors.New("config: mongo.uri and mongo.database are required for the mongo driver")
	}
	if c.Store.Driver == DriverPostgres && c.Postgres.Password == "" {
		return errors.New("config: postgres.password is required, set it in config.secret.yaml")
	}
	if c.Retry.Attempts == 0 {
		return errors.New("config: retry.attempts must be at least 1")
	}
	return nil
}

func (c *AppConfig) IsProduction() bool {
	return c.Environment == "production" || c.Environment == "prod"
}

// DSN returns the lib/pq connection string.
func (c *PostgresConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}
