package config

import (
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		DatabaseURL:        "postgres://localhost/leave",
		JWTSecret:          "secret",
		Environment:        "development",
		LogLevel:           "info",
		MaxBodyBytes:       4096,
		RateLimitPerMinute: 60,
		DBMaxConns:         10,
		DBMinConns:         2,
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ADDR", "")
	t.Setenv("DB_MAX_CONN_LIFETIME", "")
	t.Setenv("RUN_SEED", "")

	cfg := Load()
	if cfg.Addr != ":8080" {
		t.Fatalf("expected default addr, got %q", cfg.Addr)
	}
	if cfg.DBMaxConnLifetime != time.Hour {
		t.Fatalf("expected 1h conn lifetime, got %v", cfg.DBMaxConnLifetime)
	}
	if !cfg.RunSeed {
		t.Fatal("expected seeding enabled by default")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_ADDR", ":9090")
	t.Setenv("RUN_MIGRATIONS", "false")
	t.Setenv("DB_MAX_CONNS", "25")
	t.Setenv("DB_MAX_CONN_LIFETIME", "15m")
	t.Setenv("MAX_BODY_BYTES", "not-a-number")

	cfg := Load()
	if cfg.Addr != ":9090" {
		t.Fatalf("expected :9090, got %q", cfg.Addr)
	}
	if cfg.RunMigrations {
		t.Fatal("expected migrations disabled")
	}
	if cfg.DBMaxConns != 25 {
		t.Fatalf("expected 25 conns, got %d", cfg.DBMaxConns)
	}
	if cfg.DBMaxConnLifetime != 15*time.Minute {
		t.Fatalf("expected 15m, got %v", cfg.DBMaxConnLifetime)
	}
	if cfg.MaxBodyBytes != 1048576 {
		t.Fatalf("expected fallback body limit, got %d", cfg.MaxBodyBytes)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "missing database", mutate: func(c *Config) { c.DatabaseURL = " " }, wantErr: true},
		{name: "missing secret", mutate: func(c *Config) { c.JWTSecret = "" }, wantErr: true},
		{name: "short production secret", mutate: func(c *Config) { c.Environment = "production" }, wantErr: true},
		{name: "small body limit", mutate: func(c *Config) { c.MaxBodyBytes = 10 }, wantErr: true},
		{name: "min above max", mutate: func(c *Config) { c.DBMinConns = 20 }, wantErr: true},
		{name: "unknown log level", mutate: func(c *Config) { c.LogLevel = "verbose" }, wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantErr && err == nil {
				t.Fatal("expected validation error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}
