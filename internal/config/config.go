package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variable names honored by the loader.
const (
	EnvConfigPath     = "CONFIG_PATH"
	EnvDBConnection   = "DB_CONNECTION"
	EnvJWTSecret      = "JWT_SECRET"
	EnvJWTExpiry      = "JWT_EXPIRY"
	EnvListenAddr     = "LISTEN_ADDR"
	EnvFrontendOrigin = "FRONTEND_ORIGIN"
	EnvEnvironment    = "APP_ENV"
)

// EnvProduction marks the production environment; it controls the Secure
// attribute on the session cookie.
const EnvProduction = "production"

// defaultTokenExpiry is the session token lifetime when unconfigured.
const defaultTokenExpiry = 12 * time.Hour

// ErrMissingDatabaseDSN indicates no database DSN is present in config or env.
var ErrMissingDatabaseDSN = errors.New("missing database dsn (set `database.dsn` in config file or DB_CONNECTION)")

// ErrMissingJWTSecret indicates the signing secret is absent. It is a fatal
// startup condition, never a per-request error.
var ErrMissingJWTSecret = errors.New("missing jwt secret (set `jwt.secret` in config file or JWT_SECRET)")

// JWTConfig holds token signing settings.
type JWTConfig struct {
	Secret string        `yaml:"secret"`
	Expiry time.Duration `yaml:"expiry"`
}

// RedisConfig holds the optional Redis backend for login rate limiting.
type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
}

// SeedConfig controls bootstrap records created at migration time.
type SeedConfig struct {
	AdminEmail    string `yaml:"admin-email"`
	AdminName     string `yaml:"admin-name"`
	AdminPassword string `yaml:"admin-password"`
	DemoPackages  bool   `yaml:"demo-packages"`
}

// Config holds the resolved application configuration.
type Config struct {
	Environment    string `yaml:"environment"`
	ListenAddr     string `yaml:"listen-addr"`
	FrontendOrigin string `yaml:"frontend-origin"`
	DatabaseDSN    string `yaml:"database-dsn"`
	Database       struct {
		DSN string `yaml:"dsn"`
	} `yaml:"database"`
	JWT            JWTConfig   `yaml:"jwt"`
	Redis          RedisConfig `yaml:"redis"`
	Seed           SeedConfig  `yaml:"seed"`
	LoginRateLimit int         `yaml:"login-rate-limit"`
}

// ResolveConfigPath normalizes the config path and applies defaults.
func ResolveConfigPath(p string) string {
	trimmed := strings.TrimSpace(p)
	if trimmed == "" {
		trimmed = strings.TrimSpace(os.Getenv(EnvConfigPath))
	}
	if trimmed == "" {
		trimmed = "./config.yaml"
	}
	if abs, err := filepath.Abs(trimmed); err == nil {
		return abs
	}
	return trimmed
}

// Load reads the YAML config file and applies environment overrides.
// A missing file is not an error as long as env vars supply the DSN and secret.
func Load(configPath string) (Config, error) {
	var cfg Config

	data, errRead := os.ReadFile(configPath)
	if errRead == nil {
		if errUnmarshal := yaml.Unmarshal(data, &cfg); errUnmarshal != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", configPath, errUnmarshal)
		}
	} else if !os.IsNotExist(errRead) {
		return Config{}, fmt.Errorf("config: read %s: %w", configPath, errRead)
	}

	applyEnvOverrides(&cfg)
	applyDefaults(&cfg)

	if cfg.DSN() == "" {
		return Config{}, ErrMissingDatabaseDSN
	}
	if strings.TrimSpace(cfg.JWT.Secret) == "" {
		return Config{}, ErrMissingJWTSecret
	}
	return cfg, nil
}

// DSN returns the effective database DSN.
func (c Config) DSN() string {
	if dsn := strings.TrimSpace(c.DatabaseDSN); dsn != "" {
		return dsn
	}
	return strings.TrimSpace(c.Database.DSN)
}

// IsProduction reports whether the production environment is configured.
func (c Config) IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(c.Environment), EnvProduction)
}

func applyEnvOverrides(cfg *Config) {
	if dsn := strings.TrimSpace(os.Getenv(EnvDBConnection)); dsn != "" {
		cfg.DatabaseDSN = dsn
	}
	if secret := strings.TrimSpace(os.Getenv(EnvJWTSecret)); secret != "" {
		cfg.JWT.Secret = secret
	}
	if expiryRaw := strings.TrimSpace(os.Getenv(EnvJWTExpiry)); expiryRaw != "" {
		if expiry, errParse := time.ParseDuration(expiryRaw); errParse == nil && expiry > 0 {
			cfg.JWT.Expiry = expiry
		}
	}
	if addr := strings.TrimSpace(os.Getenv(EnvListenAddr)); addr != "" {
		cfg.ListenAddr = addr
	}
	if origin := strings.TrimSpace(os.Getenv(EnvFrontendOrigin)); origin != "" {
		cfg.FrontendOrigin = origin
	}
	if env := strings.TrimSpace(os.Getenv(EnvEnvironment)); env != "" {
		cfg.Environment = env
	}
}

func applyDefaults(cfg *Config) {
	if cfg.JWT.Expiry <= 0 {
		cfg.JWT.Expiry = defaultTokenExpiry
	}
	if strings.TrimSpace(cfg.ListenAddr) == "" {
		cfg.ListenAddr = ":5000"
	}
	if strings.TrimSpace(cfg.FrontendOrigin) == "" {
		cfg.FrontendOrigin = "http://localhost:5173"
	}
	if strings.TrimSpace(cfg.Redis.Prefix) == "" {
		cfg.Redis.Prefix = "pdfgate:rl"
	}
	// Zero means unset; a negative value disables the limiter.
	if cfg.LoginRateLimit == 0 {
		cfg.LoginRateLimit = 10
	}
	if cfg.LoginRateLimit < 0 {
		cfg.LoginRateLimit = 0
	}
}
