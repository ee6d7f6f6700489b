package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/BariVakhidov/academyhub/internal/services/dashboard"
	"github.com/BariVakhidov/academyhub/internal/services/login"
	"github.com/go-playground/validator/v10"
	"github.com/ilyakaznacheev/cleanenv"
	"gopkg.in/yaml.v3"
)

const (
	EnvLocal = "local"
	EnvDev   = "development"
	EnvProd  = "production"

	configPathEnv = "CONFIG_PATH"
)

type Config struct {
	Env        string                `yaml:"env" env:"ACADEMYHUB_ENV" validate:"oneof=local development production"`
	ClientID   string                `yaml:"client_id" env:"ACADEMYHUB_CLIENT_ID" validate:"required"`
	Landing    string                `yaml:"landing" validate:"required"`
	Auth       AuthConfig            `yaml:"auth"`
	Security   login.SecurityConfig  `yaml:"security"`
	Validation login.ValidationRules `yaml:"validation"`
	Toasts     login.Lifetimes       `yaml:"toasts"`
	Verify     VerifyConfig          `yaml:"verify"`
	Storage    StorageConfig         `yaml:"storage"`
	Metrics    MetricsConfig         `yaml:"metrics"`
	Audit      AuditConfig           `yaml:"audit"`
	Dashboard  DashboardConfig       `yaml:"dashboard"`
}

// AuthConfig signs the token a console login receives.
type AuthConfig struct {
	Secret   string        `yaml:"secret" env:"ACADEMYHUB_AUTH_SECRET" validate:"required"`
	TokenTTL time.Duration `yaml:"token_ttl" env:"ACADEMYHUB_TOKEN_TTL" validate:"gt=0"`
}

type VerifyConfig struct {
	Timeout time.Duration `yaml:"timeout" validate:"gte=0"`
}

type SeedUser struct {
	Username string `yaml:"username" validate:"required"`
	Password string `yaml:"password" validate:"required"`
}

type StorageConfig struct {
	// Users selects where the verifier looks up accounts.
	Users string     `yaml:"users" validate:"oneof=memory postgres sqlite"`
	DSN   string     `yaml:"dsn" env:"ACADEMYHUB_STORAGE_DSN" validate:"required_unless=Users memory"`
	Seed  []SeedUser `yaml:"seed" validate:"dive"`
	// Attempts selects where the attempt record survives between console runs.
	Attempts    string        `yaml:"attempts" validate:"oneof=memory redis"`
	RedisAddr   string        `yaml:"redis_addr" env:"ACADEMYHUB_REDIS_ADDR" validate:"required_if=Attempts redis"`
	AttemptsTTL time.Duration `yaml:"attempts_ttl" validate:"gte=0"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled" env:"ACADEMYHUB_METRICS_ENABLED"`
	Port    int  `yaml:"port" env:"ACADEMYHUB_METRICS_PORT" validate:"required_if=Enabled true,gte=0,lte=65535"`
}

type AuditConfig struct {
	Enabled    bool          `yaml:"enabled" env:"ACADEMYHUB_AUDIT_ENABLED"`
	Brokers    []string      `yaml:"brokers" env:"ACADEMYHUB_AUDIT_BROKERS" validate:"required_if=Enabled true"`
	Topic      string        `yaml:"topic" validate:"required_if=Enabled true"`
	BufferSize int           `yaml:"buffer_size" validate:"gt=0"`
	BatchLimit int           `yaml:"batch_limit" validate:"gt=0"`
	Interval   time.Duration `yaml:"interval" validate:"gt=0"`
}

type DashboardConfig struct {
	dashboard.Config `yaml:",inline"`
	MonthlyGrowth    float64 `yaml:"monthly_growth"`
}

// Default is the canonical policy used when no file is given.
func Default() *Config {
	return &Config{
		Env:        EnvLocal,
		ClientID:   defaultClientID(),
		Landing:    login.DefaultLanding,
		Auth:       AuthConfig{Secret: "academyhub-local-secret", TokenTTL: time.Hour},
		Security:   login.DefaultSecurityConfig(),
		Validation: login.DefaultValidationRules(),
		Toasts:     login.DefaultLifetimes(),
		Verify:     VerifyConfig{Timeout: 10 * time.Second},
		Storage: StorageConfig{
			Users:    "memory",
			Seed:     []SeedUser{{Username: "admin", Password: "password123A!"}},
			Attempts: "memory",
		},
		Metrics: MetricsConfig{Port: 9090},
		Audit: AuditConfig{
			Topic:      "login_outcomes",
			BufferSize: 256,
			BatchLimit: 100,
			Interval:   time.Second,
		},
		Dashboard: DashboardConfig{
			Config:        dashboard.DefaultConfig(),
			MonthlyGrowth: 8.5,
		},
	}
}

// MustLoad loads the config from path, falling back to CONFIG_PATH, and panics on error.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}

	return cfg
}

// Load reads the YAML file over the defaults, then applies ACADEMYHUB_* environment
// overrides. An empty path with no CONFIG_PATH yields the defaults.
func Load(path string) (*Config, error) {
	const op = "config.Load"

	if path == "" {
		path = os.Getenv(configPathEnv)
	}

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		if err := Parse(data, cfg); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return cfg, nil
}

// Parse decodes YAML into cfg, rejecting unknown keys.
func Parse(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}

	return nil
}

func Validate(cfg *Config) error {
	return validator.New(validator.WithRequiredStructEnabled()).Struct(cfg)
}

func (c *Config) AttemptsTTL() time.Duration {
	if c.Storage.AttemptsTTL > 0 {
		return c.Storage.AttemptsTTL
	}

	return max(c.Security.LockoutDuration, c.Security.AttemptWindow)
}

func defaultClientID() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		return "console"
	}

	return "console@" + host
}
