// Package config loads the server configuration.
//
// Values are resolved in three layers, each overriding the one before:
//
//  1. Defaults from Default().
//  2. An optional YAML file named by the CIVIC_CONFIG environment variable.
//  3. Environment variables (PORT, DB_PATH, JWT_SECRET, ...).
//
// A .env file in the working directory is loaded into the process
// environment first, so it behaves like real environment variables but never
// overrides a variable that is already set.
package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// FileEnv names the environment variable holding the YAML config path.
const FileEnv = "CIVIC_CONFIG"

// MinSecretLength matches the token service's minimum HMAC key length.
const MinSecretLength = 16

// DefaultAdminCode is the admin portal code used when none is configured.
const DefaultAdminCode = "ADMIN2025"

// Config is the full server configuration.
type Config struct {
	// Port the HTTP server listens on.
	Port int `yaml:"port"`

	// DBPath is the SQLite file holding tickets and strict-mode accounts.
	DBPath string `yaml:"db_path"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	// SeedData loads the demo issues, events and tickets on startup.
	SeedData bool `yaml:"seed_data"`

	Auth      AuthConfig      `yaml:"auth"`
	Geocode   GeocodeConfig   `yaml:"geocode"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Chat      ChatConfig      `yaml:"chat"`

	// GeneratedSecret is set when no JWT secret was configured and Load
	// made one up. Sessions will not survive a restart.
	GeneratedSecret bool `yaml:"-"`
}

// AuthConfig configures login.
type AuthConfig struct {
	// Mode is "mock" (any credentials accepted) or "strict" (bcrypt accounts).
	Mode      string        `yaml:"mode"`
	JWTSecret string        `yaml:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"token_ttl"`

	// AdminCode must accompany every admin portal login, in both modes.
	AdminCode string `yaml:"admin_code"`

	// Admin account created on startup in strict mode.
	AdminName     string `yaml:"admin_name"`
	AdminEmail    string `yaml:"admin_email"`
	AdminPassword string `yaml:"admin_password"`
}

// GeocodeConfig configures the simulated reverse geocoder.
type GeocodeConfig struct {
	Delay         time.Duration `yaml:"delay"`
	Timeout       time.Duration `yaml:"timeout"`
	MaxConcurrent int           `yaml:"max_concurrent"`
}

// RateLimitConfig configures per-client API throttling. A zero rate turns
// throttling off.
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

// ChatConfig configures the in-memory chat rooms.
type ChatConfig struct {
	// History is the number of messages kept per room.
	History int `yaml:"history"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Port:     8080,
		DBPath:   "data/civic.db",
		LogLevel: "info",
		SeedData: true,
		Auth: AuthConfig{
			Mode:      "mock",
			TokenTTL:  24 * time.Hour,
			AdminCode: DefaultAdminCode,
			AdminName: "Admin User",
		},
		Geocode: GeocodeConfig{
			Delay:         300 * time.Millisecond,
			Timeout:       5 * time.Second,
			MaxConcurrent: 16,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 20,
			Burst:             40,
		},
		Chat: ChatConfig{
			History: 200,
		},
	}
}

// Load reads .env (if present), the CIVIC_CONFIG file (if set) and the
// process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("reading .env: %w", err)
	}
	return Resolve(os.Getenv(FileEnv), os.Getenv)
}

// Resolve builds a Config from an optional YAML file and an environment
// lookup function. path may be empty.
func Resolve(path string, getenv func(string) string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(getenv); err != nil {
		return nil, err
	}

	if cfg.Auth.JWTSecret == "" {
		secret, err := randomSecret()
		if err != nil {
			return nil, fmt.Errorf("generating JWT secret: %w", err)
		}
		cfg.Auth.JWTSecret = secret
		cfg.GeneratedSecret = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, c)
}

// applyEnv overrides fields with any environment variables that are set.
func (c *Config) applyEnv(getenv func(string) string) error {
	var errs []error

	str := func(key string, dst *string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	integer := func(key string, dst *int) {
		if v := getenv(key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("invalid %s %q: not an integer", key, v))
				return
			}
			*dst = n
		}
	}
	float := func(key string, dst *float64) {
		if v := getenv(key); v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				errs = append(errs, fmt.Errorf("invalid %s %q: not a number", key, v))
				return
			}
			*dst = f
		}
	}
	duration := func(key string, dst *time.Duration) {
		if v := getenv(key); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("invalid %s %q: %w", key, v, err))
				return
			}
			*dst = d
		}
	}
	boolean := func(key string, dst *bool) {
		if v := getenv(key); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("invalid %s %q: not a boolean", key, v))
				return
			}
			*dst = b
		}
	}

	integer("PORT", &c.Port)
	str("DB_PATH", &c.DBPath)
	str("LOG_LEVEL", &c.LogLevel)
	boolean("SEED_DATA", &c.SeedData)

	str("AUTH_MODE", &c.Auth.Mode)
	str("JWT_SECRET", &c.Auth.JWTSecret)
	duration("TOKEN_TTL", &c.Auth.TokenTTL)
	str("ADMIN_CODE", &c.Auth.AdminCode)
	str("ADMIN_NAME", &c.Auth.AdminName)
	str("ADMIN_EMAIL", &c.Auth.AdminEmail)
	str("ADMIN_PASSWORD", &c.Auth.AdminPassword)

	duration("GEOCODE_DELAY", &c.Geocode.Delay)
	duration("GEOCODE_TIMEOUT", &c.Geocode.Timeout)
	integer("GEOCODE_MAX_CONCURRENT", &c.Geocode.MaxConcurrent)

	float("RATE_LIMIT", &c.RateLimit.RequestsPerSecond)
	integer("RATE_BURST", &c.RateLimit.Burst)

	integer("CHAT_HISTORY", &c.Chat.History)

	return errors.Join(errs...)
}

// Validate checks ranges and enumerations.
func (c *Config) Validate() error {
	var errs []error

	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Port))
	}
	if c.DBPath == "" {
		errs = append(errs, errors.New("db_path is required"))
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}

	switch c.Auth.Mode {
	case "mock":
	case "strict":
		if c.Auth.AdminEmail != "" && c.Auth.AdminPassword == "" {
			errs = append(errs, errors.New("admin_password is required when admin_email is set"))
		}
	default:
		errs = append(errs, fmt.Errorf("auth mode %q must be mock or strict", c.Auth.Mode))
	}
	if len(c.Auth.JWTSecret) < MinSecretLength {
		errs = append(errs, fmt.Errorf("jwt_secret must be at least %d characters", MinSecretLength))
	}
	if c.Auth.TokenTTL <= 0 {
		errs = append(errs, errors.New("token_ttl must be positive"))
	}
	if strings.TrimSpace(c.Auth.AdminCode) == "" {
		errs = append(errs, errors.New("admin_code is required"))
	}

	if c.Geocode.Delay < 0 {
		errs = append(errs, errors.New("geocode delay must not be negative"))
	}
	if c.Geocode.Timeout <= 0 {
		errs = append(errs, errors.New("geocode timeout must be positive"))
	}
	if c.Geocode.Timeout > 0 && c.Geocode.Delay >= c.Geocode.Timeout {
		errs = append(errs, errors.New("geocode timeout must be longer than the delay"))
	}
	if c.Geocode.MaxConcurrent < 1 {
		errs = append(errs, errors.New("geocode max_concurrent must be at least 1"))
	}
	if c.RateLimit.RequestsPerSecond < 0 {
		errs = append(errs, errors.New("rate limit must not be negative"))
	}
	if c.RateLimit.RequestsPerSecond > 0 && c.RateLimit.Burst < 1 {
		errs = append(errs, errors.New("rate burst must be at least 1 when rate limiting is on"))
	}
	if c.Chat.History < 1 {
		errs = append(errs, errors.New("chat history must be at least 1"))
	}

	return errors.Join(errs...)
}

// SlogLevel returns the configured log level. Validate has already
// rejected anything unparseable.
func (c *Config) SlogLevel() slog.Level {
	level, _ := ParseLevel(c.LogLevel)
	return level
}

// ParseLevel converts a level name such as "debug" or "WARN" to a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q", s)
	}
	return level, nil
}

func randomSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
