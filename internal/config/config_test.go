package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func writeFile(t *testing.T, dir, name, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := load(context.Background(), t.TempDir(), envconfig.MapLookuper(nil))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Store.Driver != DriverMemory || cfg.Server.Port != ":8080" {
		t.Errorf("driver=%q port=%q", cfg.Store.Driver, cfg.Server.Port)
	}
	if cfg.Retry.Attempts != 5 || cfg.Postgres.MaxOpenConns != 25 {
		t.Errorf("retry=%d maxOpen=%d", cfg.Retry.Attempts, cfg.Postgres.MaxOpenConns)
	}
}

func TestLoadLayersFilesThenEnv(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "config.yaml", `
app:
  environment: production
server:
  port: ":9000"
  request_timeout: 2s
store:
  driver: postgres
postgres:
  host: db.internal
`)
	writeFile(t, dir, "config.secret.yaml", `
postgres:
  password: hunter2
`)
	env := envconfig.MapLookuper(map[string]string{
		"YOGITRACK_SERVER_PORT":      ":9100",
		"YOGITRACK_RETRY_ATTEMPTS":   "2",
		"YOGITRACK_POSTGRES_SSLMODE": "require",
	})

	cfg, err := load(context.Background(), dir, env)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	tests := []struct {
		name string
		got  any
		want any
	}{
		{"env beats file", cfg.Server.Port, ":9100"},
		{"file beats default", cfg.Postgres.Host, "db.internal"},
		{"secret file", cfg.Postgres.Password, "hunter2"},
		{"env beats default", cfg.Postgres.SSLMode, "require"},
		{"default kept", cfg.Postgres.DBName, "yogitrack"},
		{"duration", cfg.Server.RequestTimeout, 2 * time.Second},
		{"retry attempts", cfg.Retry.Attempts, uint(2)},
		{"production", cfg.App.IsProduction(), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}
	if dsn := cfg.Postgres.DSN(); !strings.Contains(dsn, "host=db.internal") || !strings.Contains(dsn, "password=hunter2") {
		t.Errorf("DSN = %q", dsn)
	}
}

func TestLoadFromProcessEnv(t *testing.T) {
	t.Setenv("YOGITRACK_STORE_DRIVER", "mongo")
	t.Setenv("YOGITRACK_MONGO_DATABASE", "studio")
	cfg, err := Load(context.Background(), t.TempDir())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Store.Driver != DriverMongo || cfg.Mongo.Database != "studio" {
		t.Errorf("driver=%q database=%q", cfg.Store.Driver, cfg.Mongo.Database)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errSub string
	}{
		{"ok", func(*Config) {}, ""},
		{"unknown driver", func(c *Config) { c.Store.Driver = "sqlite" }, "store.driver"},
		{"no port", func(c *Config) { c.Server.Port = " " }, "server.port"},
		{"postgres without password", func(c *Config) { c.Store.Driver = DriverPostgres }, "postgres.password"},
		{"mongo without uri", func(c *Config) { c.Store.Driver = DriverMongo; c.Mongo.URI = "" }, "mongo.uri"},
		{"zero attempts", func(c *Config) { c.Retry.Attempts = 0 }, "retry.attempts"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.errSub == "" {
				if err != nil {
					t.Fatalf("Validate: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.errSub) {
				t.Errorf("err = %v, want mention of %q", err, tt.errSub)
			}
		})
	}
}

func TestLoadRejectsBadYAML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "config.yaml", "server: [unclosed")
	if _, err := load(context.Background(), dir, envconfig.MapLookuper(nil)); err == nil {
		t.Fatal("expected parse error")
	}
}
