// Package config loads engine configuration from config.yaml with
// environment variable overrides. Secrets (connection passwords, API keys)
// must only come from environment variables.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for schemadoc-engine.
type Config struct {
	Env     string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	Version string `yaml:"-"` // injected at build time

	// Catalog is the engine's own PostgreSQL database where generated
	// documentation datasets are persisted.
	Catalog CatalogConfig `yaml:"catalog"`

	// Datasource is the documented database whose schema is introspected.
	Datasource DatasourceConfig `yaml:"datasource"`

	AI       AIConfig       `yaml:"ai"`
	Pipeline PipelineConfig `yaml:"pipeline"`

	// ChangeLogPath points at the XLSX change log to process in batch mode.
	ChangeLogPath string `yaml:"change_log_path" env:"CHANGE_LOG_PATH" env-default:""`

	// RulesPath optionally overrides the built-in extraction rule table.
	RulesPath string `yaml:"rules_path" env:"RULES_PATH" env-default:""`

	MigrationsPath string `yaml:"migrations_path" env:"MIGRATIONS_PATH" env-default:"migrations"`
}

// CatalogConfig holds the catalog PostgreSQL configuration.
type CatalogConfig struct {
	Host           string `yaml:"host" env:"PGHOST" env-default:"localhost"`
	Port           int    `yaml:"port" env:"PGPORT" env-default:"5432"`
	User           string `yaml:"user" env:"PGUSER" env-default:"schemadoc"`
	Password       string `yaml:"-" env:"PGPASSWORD"` // Secret - not in YAML
	Database       string `yaml:"database" env:"PGDATABASE" env-default:"schemadoc_engine"`
	SSLMode        string `yaml:"ssl_mode" env:"PGSSLMODE" env-default:"disable"`
	MaxConnections int32  `yaml:"max_connections" env:"PGMAX_CONNECTIONS" env-default:"10"`
}

// ConnectionString returns a PostgreSQL connection string for the catalog.
func (c *CatalogConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// DatasourceConfig identifies the documented database.
type DatasourceConfig struct {
	// Type selects the introspector: "postgres" or "mssql".
	Type string `yaml:"type" env:"DATASOURCE_TYPE" env-default:"postgres"`

	// URL is the full connection string. It carries credentials, so it is
	// env-only.
	URL string `yaml:"-" env:"DATASOURCE_URL"`

	// DefaultSchema is assumed when an input names no schema.
	DefaultSchema string `yaml:"default_schema" env:"DATASOURCE_DEFAULT_SCHEMA" env-default:""`
}

// AIConfig holds generative enrichment settings.
type AIConfig struct {
	// Provider selects the client: "openai" (or any OpenAI-compatible
	// endpoint via BaseURL) or "anthropic".
	Provider string `yaml:"provider" env:"AI_PROVIDER" env-default:"openai"`
	BaseURL  string `yaml:"base_url" env:"AI_BASE_URL" env-default:""`
	Model    string `yaml:"model" env:"AI_MODEL" env-default:"gpt-4o-mini"`
	APIKey   string `yaml:"-" env:"AI_API_KEY"` // Secret - not in YAML

	// Enabled turns AI enrichment off entirely; the pipeline then runs with
	// failed-enrichment markers.
	Enabled bool `yaml:"enabled" env:"AI_ENABLED" env-default:"true"`
}

// PipelineConfig tunes batch processing.
type PipelineConfig struct {
	// MaxConcurrent bounds parallel pipeline invocations in batch mode.
	MaxConcurrent int `yaml:"max_concurrent" env:"PIPELINE_MAX_CONCURRENT" env-default:"4"`

	// RetryMaxAttempts caps retries for one enrichment call.
	RetryMaxAttempts int `yaml:"retry_max_attempts" env:"PIPELINE_RETRY_MAX_ATTEMPTS" env-default:"3"`

	// RetryInitialDelayMs is the first backoff delay.
	RetryInitialDelayMs int `yaml:"retry_initial_delay_ms" env:"PIPELINE_RETRY_INITIAL_DELAY_MS" env-default:"500"`
}

// Load reads configuration from path (default "config.yaml") with
// environment variable overrides. A missing file is not an error; the
// configuration then comes entirely from the environment.
func Load(path, version string) (*Config, error) {
	if path == "" {
		path = "config.yaml"
	}

	cfg := &Config{Version: version}

	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch strings.ToLower(c.Datasource.Type) {
	case "postgres", "mssql":
	default:
		return fmt.Errorf("unknown datasource type %q", c.Datasource.Type)
	}

	switch strings.ToLower(c.AI.Provider) {
	case "openai", "anthropic":
	default:
		return fmt.Errorf("unknown ai provider %q", c.AI.Provider)
	}

	if c.Pipeline.MaxConcurrent < 1 {
		return fmt.Errorf("pipeline max_concurrent must be at least 1")
	}
	return nil
}
