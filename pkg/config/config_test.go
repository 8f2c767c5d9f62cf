package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsFromEnvOnly(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), "test")
	require.NoError(t, err)

	assert.Equal(t, "local", cfg.Env)
	assert.Equal(t, "test", cfg.Version)
	assert.Equal(t, "postgres", cfg.Datasource.Type)
	assert.Equal(t, "openai", cfg.AI.Provider)
	assert.Equal(t, 4, cfg.Pipeline.MaxConcurrent)
	assert.Equal(t, "migrations", cfg.MigrationsPath)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("AI_PROVIDER", "anthropic")
	t.Setenv("AI_MODEL", "claude-sonnet-4-20250514")
	t.Setenv("PGPASSWORD", "s3cret")
	t.Setenv("DATASOURCE_TYPE", "mssql")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), "test")
	require.NoError(t, err)

	assert.Equal(t, "anthropic", cfg.AI.Provider)
	assert.Equal(t, "claude-sonnet-4-20250514", cfg.AI.Model)
	assert.Equal(t, "s3cret", cfg.Catalog.Password)
	assert.Equal(t, "mssql", cfg.Datasource.Type)
	assert.Contains(t, cfg.Catalog.ConnectionString(), "password=s3cret")
}

func TestLoad_YAMLWithEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `env: staging
ai:
  provider: openai
  model: gpt-4o
pipeline:
  max_concurrent: 8
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))
	t.Setenv("AI_MODEL", "gpt-4o-mini")

	cfg, err := Load(path, "test")
	require.NoError(t, err)

	assert.Equal(t, "staging", cfg.Env)
	assert.Equal(t, 8, cfg.Pipeline.MaxConcurrent)
	// Environment always wins over YAML.
	assert.Equal(t, "gpt-4o-mini", cfg.AI.Model)
}

func TestLoad_RejectsUnknownProvider(t *testing.T) {
	t.Setenv("AI_PROVIDER", "bard")
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), "test")
	assert.ErrorContains(t, err, "ai provider")
}

func TestLoad_RejectsUnknownDatasourceType(t *testing.T) {
	t.Setenv("DATASOURCE_TYPE", "oracle")
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), "test")
	assert.ErrorContains(t, err, "datasource type")
}
