package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		ConfigPathEnvVar, "SERVER_ADDR", "ADDR", "SERVER_READ_HEADER_TIMEOUT", "CORS_ORIGINS",
		"RATE_LIMIT_REQUESTS", "RATE_LIMIT_WINDOW", "DATABASE_URL", "DB_URL",
		"DATABASE_MAX_IDLE_CONNS", "DATABASE_MAX_OPEN_CONNS", "DATABASE_CONN_MAX_LIFETIME",
		"DATABASE_CONN_MAX_IDLE_TIME", "DATABASE_USE_MOCK", "LOG_LEVEL", "SESSION_LIFETIME",
		"SESSION_COOKIE_NAME", "SESSION_COOKIE_DOMAIN", "SESSION_COOKIE_SECURE", "SESSION_REDIS_URL", "IMAGES_BACKEND",
		"IMAGES_DIR", "IMAGES_BASE_URL", "IMAGES_BUCKET", "IMAGES_REGION", "IMAGES_ENDPOINT",
		"IMAGES_ACCESS_KEY", "IMAGES_SECRET_KEY", "DEFAULT_RECIPES_LIMIT", "DEFAULT_PAGE_SIZE",
	} {
		t.Setenv(key, "")
	}
}

func TestFirstNonEmpty(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		values []string
		want   string
	}{
		{"all empty", []string{"", "   "}, ""},
		{"first non empty", []string{"foo", "bar"}, "foo"},
		{"skips whitespace", []string{"   ", "bar"}, "bar"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := firstNonEmpty(tt.values...); got != tt.want {
				t.Fatalf("firstNonEmpty(%v) = %q, want %q", tt.values, got, tt.want)
			}
		})
	}
}

func TestParseHelpers(t *testing.T) {
	t.Parallel()

	if got := parseIntWithDefault("", 7); got != 7 {
		t.Fatalf("blank int = %d, want 7", got)
	}
	if got := parseIntWithDefault("abc", 3); got != 3 {
		t.Fatalf("invalid int = %d, want 3", got)
	}
	if got := parseIntWithDefault("42", 0); got != 42 {
		t.Fatalf("valid int = %d, want 42", got)
	}
	if got := parseDurationWithDefault("nonsense", time.Second); got != time.Second {
		t.Fatalf("invalid duration = %s", got)
	}
	if got := parseDurationWithDefault("2m", time.Second); got != 2*time.Minute {
		t.Fatalf("valid duration = %s", got)
	}
	if got := parseBoolWithDefault("nope", true); !got {
		t.Fatal("invalid bool should keep default")
	}
	if got := parseBoolWithDefault("false", true); got {
		t.Fatal("valid bool should parse")
	}
	if got := splitList(" a, ,b "); len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("splitList = %v", got)
	}
}

func TestLoadUsesEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://example")
	t.Setenv("DATABASE_MAX_IDLE_CONNS", "10")
	t.Setenv("DATABASE_MAX_OPEN_CONNS", "100")
	t.Setenv("DATABASE_CONN_MAX_LIFETIME", "1h")
	t.Setenv("DATABASE_USE_MOCK", "true")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("SESSION_LIFETIME", "45m")
	t.Setenv("SESSION_COOKIE_NAME", "custom_session")
	t.Setenv("SESSION_COOKIE_SECURE", "false")
	t.Setenv("SESSION_REDIS_URL", "redis://cache:6379/1")
	t.Setenv("DEFAULT_RECIPES_LIMIT", "5")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Addr != ":8080" {
		t.Fatalf("Server.Addr = %q, want %q", cfg.Server.Addr, ":8080")
	}
	if cfg.Database.URL != "postgres://example" {
		t.Fatalf("Database.URL = %q", cfg.Database.URL)
	}
	if cfg.Database.MaxIdleConns != 10 || cfg.Database.MaxOpenConns != 100 {
		t.Fatalf("unexpected pool sizes: %+v", cfg.Database)
	}
	if cfg.Database.ConnMaxLifetime != time.Hour {
		t.Fatalf("Database.ConnMaxLifetime = %s", cfg.Database.ConnMaxLifetime)
	}
	if !cfg.Database.UseMock {
		t.Fatal("Database.UseMock = false, want true")
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("Logging.Level = %q", cfg.Logging.Level)
	}
	if cfg.Auth.Session.Lifetime != 45*time.Minute || cfg.Auth.Session.CookieName != "custom_session" {
		t.Fatalf("unexpected session config: %+v", cfg.Auth.Session)
	}
	if cfg.Auth.Session.CookieSecure {
		t.Fatal("Auth.Session.CookieSecure = true, want false")
	}
	if cfg.Auth.Session.RedisURL != "redis://cache:6379/1" {
		t.Fatalf("Auth.Session.RedisURL = %q", cfg.Auth.Session.RedisURL)
	}
	if cfg.Recipes.RecipesLimit != 5 || cfg.Recipes.PageSize != 6 {
		t.Fatalf("unexpected recipes config: %+v", cfg.Recipes)
	}
	if len(cfg.Server.CORSOrigins) != 2 {
		t.Fatalf("Server.CORSOrigins = %v", cfg.Server.CORSOrigins)
	}
}

func TestLoadPrefersServerAddr(t *testing.T) {
	clearEnv(t)
	t.Setenv("SERVER_ADDR", "127.0.0.1:9000")
	t.Setenv("ADDR", ":7000")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Addr != "127.0.0.1:9000" {
		t.Fatalf("Server.Addr = %q, want %q", cfg.Server.Addr, "127.0.0.1:9000")
	}
}

func TestLoadReadsYAMLFileBeneathEnvironment(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	contents := []byte(`server:
  addr: ":9191"
database:
  url: "postgres://from-file"
recipes:
  recipes_limit: 9
auth:
  session:
    lifetime: 2h
`)
	if err := os.WriteFile(path, contents, 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("DATABASE_URL", "postgres://from-env")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Addr != ":9191" {
		t.Fatalf("Server.Addr = %q, want value from file", cfg.Server.Addr)
	}
	if cfg.Database.URL != "postgres://from-env" {
		t.Fatalf("Database.URL = %q, want env to win", cfg.Database.URL)
	}
	if cfg.Recipes.RecipesLimit != 9 {
		t.Fatalf("Recipes.RecipesLimit = %d, want 9", cfg.Recipes.RecipesLimit)
	}
	if cfg.Recipes.PageSize != 6 {
		t.Fatalf("Recipes.PageSize = %d, want default 6", cfg.Recipes.PageSize)
	}
	if cfg.Auth.Session.Lifetime != 2*time.Hour {
		t.Fatalf("Auth.Session.Lifetime = %s", cfg.Auth.Session.Lifetime)
	}
}

func TestLoadRejectsUnknownImageBackend(t *testing.T) {
	clearEnv(t)
	t.Setenv("IMAGES_BACKEND", "ftp")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for unknown image backend")
	}
}

func TestLoadRequiresBucketForS3(t *testing.T) {
	clearEnv(t)
	t.Setenv("IMAGES_BACKEND", "s3")

	if _, err := Load(); err == nil {
		t.Fatal("expected error when s3 bucket is missing")
	}
}
