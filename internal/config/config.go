package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// ConfigPathEnvVar names the environment variable pointing at an optional YAML file.
const ConfigPathEnvVar = "CONFIG_PATH"

const (
	ImageBackendDisk = "disk"
	ImageBackendS3   = "s3"
)

// Config captures the runtime configuration for the application.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Logging  LoggingConfig  `koanf:"logging"`
	Auth     AuthConfig     `koanf:"auth"`
	Images   ImagesConfig   `koanf:"images"`
	Recipes  RecipesConfig  `koanf:"recipes"`
}

// ServerConfig configures the HTTP server runtime behavior.
type ServerConfig struct {
	Addr              string        `koanf:"addr"`
	ReadHeaderTimeout time.Duration `koanf:"read_header_timeout"`
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitRequests int           `koanf:"rate_limit_requests"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
}

// DatabaseConfig contains the database connection settings.
type DatabaseConfig struct {
	URL             string        `koanf:"url"`
	MaxIdleConns    int           `koanf:"max_idle_conns"`
	MaxOpenConns    int           `koanf:"max_open_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `koanf:"conn_max_idle_time"`
	UseMock         bool          `koanf:"use_mock"`
}

// LoggingConfig controls the global logger.
type LoggingConfig struct {
	Level string `koanf:"level"`
}

// AuthConfig groups the session settings used to identify the acting user.
type AuthConfig struct {
	Session SessionConfig `koanf:"session"`
}

// SessionConfig controls cookie sessions.
type SessionConfig struct {
	Lifetime     time.Duration `koanf:"lifetime"`
	CookieName   string        `koanf:"cookie_name"`
	CookieDomain string        `koanf:"cookie_domain"`
	CookieSecure bool          `koanf:"cookie_secure"`
	// RedisURL selects a shared Redis session store; empty keeps sessions in memory.
	RedisURL     string        `koanf:"redis_url"`
}

// ImagesConfig selects where recipe images are stored.
type ImagesConfig struct {
	Backend   string `koanf:"backend"`
	Dir       string `koanf:"dir"`
	BaseURL   string `koanf:"base_url"`
	Bucket    string `koanf:"bucket"`
	Region    string `koanf:"region"`
	Endpoint  string `koanf:"endpoint"`
	AccessKey string `koanf:"access_key"`
	SecretKey string `koanf:"secret_key"`
}

// RecipesConfig holds listing defaults.
type RecipesConfig struct {
	RecipesLimit int `koanf:"recipes_limit"`
	PageSize     int `koanf:"page_size"`
}

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Addr:              ":8080",
			ReadHeaderTimeout: 5 * time.Second,
			RateLimitRequests: 300,
			RateLimitWindow:   time.Minute,
		},
		Logging: LoggingConfig{Level: "info"},
		Auth: AuthConfig{
			Session: SessionConfig{
				Lifetime:     12 * time.Hour,
				CookieName:   "foodgram_session",
				CookieSecure: true,
			},
		},
		Images: ImagesConfig{
			Backend: ImageBackendDisk,
			Dir:     "media/recipes",
			BaseURL: "/media/recipes",
		},
		Recipes: RecipesConfig{
			RecipesLimit: 3,
			PageSize:     6,
		},
	}
}

// Load builds a Config from defaults, an optional YAML file and the environment,
// in increasing order of precedence.
func Load() (Config, error) {
	cfg := defaults()

	if path := strings.TrimSpace(os.Getenv(ConfigPathEnvVar)); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	applyEnv(&cfg)

	if strings.TrimSpace(cfg.Server.Addr) == "" {
		return Config{}, fmt.Errorf("server address must not be empty")
	}
	switch cfg.Images.Backend {
	case ImageBackendDisk, ImageBackendS3:
	default:
		return Config{}, fmt.Errorf("unknown image backend: %s", cfg.Images.Backend)
	}
	if cfg.Images.Backend == ImageBackendS3 && strings.TrimSpace(cfg.Images.Bucket) == "" {
		return Config{}, fmt.Errorf("images bucket must be set for the s3 backend")
	}

	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return fmt.Errorf("load config file %s: %w", path, err)
	}
	if err := k.Unmarshal("", cfg); err != nil {
		return fmt.Errorf("decode config file %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.Server.Addr = firstNonEmpty(os.Getenv("SERVER_ADDR"), os.Getenv("ADDR"), cfg.Server.Addr)
	cfg.Server.ReadHeaderTimeout = parseDurationWithDefault(os.Getenv("SERVER_READ_HEADER_TIMEOUT"), cfg.Server.ReadHeaderTimeout)
	if origins := splitList(os.Getenv("CORS_ORIGINS")); len(origins) > 0 {
		cfg.Server.CORSOrigins = origins
	}
	cfg.Server.RateLimitRequests = parseIntWithDefault(os.Getenv("RATE_LIMIT_REQUESTS"), cfg.Server.RateLimitRequests)
	cfg.Server.RateLimitWindow = parseDurationWithDefault(os.Getenv("RATE_LIMIT_WINDOW"), cfg.Server.RateLimitWindow)

	cfg.Database.URL = firstNonEmpty(os.Getenv("DATABASE_URL"), os.Getenv("DB_URL"), cfg.Database.URL)
	cfg.Database.MaxIdleConns = parseIntWithDefault(os.Getenv("DATABASE_MAX_IDLE_CONNS"), cfg.Database.MaxIdleConns)
	cfg.Database.MaxOpenConns = parseIntWithDefault(os.Getenv("DATABASE_MAX_OPEN_CONNS"), cfg.Database.MaxOpenConns)
	cfg.Database.ConnMaxLifetime = parseDurationWithDefault(os.Getenv("DATABASE_CONN_MAX_LIFETIME"), cfg.Database.ConnMaxLifetime)
	cfg.Database.ConnMaxIdleTime = parseDurationWithDefault(os.Getenv("DATABASE_CONN_MAX_IDLE_TIME"), cfg.Database.ConnMaxIdleTime)
	cfg.Database.UseMock = parseBoolWithDefault(os.Getenv("DATABASE_USE_MOCK"), cfg.Database.UseMock)

	cfg.Logging.Level = firstNonEmpty(os.Getenv("LOG_LEVEL"), cfg.Logging.Level)

	cfg.Auth.Session.Lifetime = parseDurationWithDefault(os.Getenv("SESSION_LIFETIME"), cfg.Auth.Session.Lifetime)
	cfg.Auth.Session.CookieName = firstNonEmpty(os.Getenv("SESSION_COOKIE_NAME"), cfg.Auth.Session.CookieName)
	cfg.Auth.Session.CookieDomain = firstNonEmpty(os.Getenv("SESSION_COOKIE_DOMAIN"), cfg.Auth.Session.CookieDomain)
	cfg.Auth.Session.CookieSecure = parseBoolWithDefault(os.Getenv("SESSION_COOKIE_SECURE"), cfg.Auth.Session.CookieSecure)
	cfg.Auth.Session.RedisURL = firstNonEmpty(os.Getenv("SESSION_REDIS_URL"), cfg.Auth.Session.RedisURL)

	cfg.Images.Backend = strings.ToLower(firstNonEmpty(os.Getenv("IMAGES_BACKEND"), cfg.Images.Backend))
	cfg.Images.Dir = firstNonEmpty(os.Getenv("IMAGES_DIR"), cfg.Images.Dir)
	cfg.Images.BaseURL = firstNonEmpty(os.Getenv("IMAGES_BASE_URL"), cfg.Images.BaseURL)
	cfg.Images.Bucket = firstNonEmpty(os.Getenv("IMAGES_BUCKET"), cfg.Images.Bucket)
	cfg.Images.Region = firstNonEmpty(os.Getenv("IMAGES_REGION"), cfg.Images.Region)
	cfg.Images.Endpoint = firstNonEmpty(os.Getenv("IMAGES_ENDPOINT"), cfg.Images.Endpoint)
	cfg.Images.AccessKey = firstNonEmpty(os.Getenv("IMAGES_ACCESS_KEY"), cfg.Images.AccessKey)
	cfg.Images.SecretKey = firstNonEmpty(os.Getenv("IMAGES_SECRET_KEY"), cfg.Images.SecretKey)

	cfg.Recipes.RecipesLimit = parseIntWithDefault(os.Getenv("DEFAULT_RECIPES_LIMIT"), cfg.Recipes.RecipesLimit)
	cfg.Recipes.PageSize = parseIntWithDefault(os.Getenv("DEFAULT_PAGE_SIZE"), cfg.Recipes.PageSize)
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}

func parseIntWithDefault(value string, def int) int {
	value = strings.TrimSpace(value)
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}

func parseDurationWithDefault(value string, def time.Duration) time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return def
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return def
	}
	return parsed
}

func parseBoolWithDefault(value string, def bool) bool {
	value = strings.TrimSpace(value)
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return def
	}
	return parsed
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
