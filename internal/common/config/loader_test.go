// internal/common/config/loader_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"volunteer-engine/internal/engine/policy"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

const minimalConfig = `
database:
  postgres:
    host: localhost
    database: church
    user: engine
    password: ${TEST_ENGINE_DB_PASSWORD}
workers:
  run-recruitment-analysis:
    enabled: true
`

func TestLoadFromFile_AppliesDefaults(t *testing.T) {
	t.Setenv("TEST_ENGINE_DB_PASSWORD", "s3cret")

	cfg, err := LoadFromFile(writeConfig(t, minimalConfig))
	require.NoError(t, err)

	assert.Equal(t, "s3cret", cfg.Database.Postgres.Password)
	assert.Equal(t, 5432, cfg.Database.Postgres.Port)
	assert.Equal(t, "disable", cfg.Database.Postgres.SSLMode)
	assert.Equal(t, "localhost:26500", cfg.Camunda.BrokerAddress)
	assert.True(t, cfg.Camunda.Plaintext)
	assert.True(t, cfg.Engine.PersistProfiles)
	assert.False(t, cfg.Database.Redis.Enabled())
	assert.Equal(t, 10*time.Minute, GetDuration(cfg.Engine.MinistryCacheTTL))

	w := cfg.Workers["run-recruitment-analysis"]
	assert.True(t, w.Enabled)
	assert.Equal(t, 5, w.MaxJobsActive)
	assert.Equal(t, 120000, w.Timeout)
	assert.False(t, w.OmitProfiles)

	assert.Equal(t, policy.Default(), cfg.Policy)
}

func TestLoadFromFile_WorkerOutputShaping(t *testing.T) {
	cfg, err := LoadFromFile(writeConfig(t, minimalConfig+`
  run-workload-analysis:
    enabled: true
    max_recommendations: 5
`))
	require.NoError(t, err)

	assert.False(t, cfg.Workers["run-recruitment-analysis"].OmitProfiles)
	assert.Equal(t, 5, cfg.Workers["run-workload-analysis"].MaxRecommendations)

	cfg, err = LoadFromFile(writeConfig(t, `
database:
  postgres:
    host: localhost
    database: church
    user: engine
    password: pw
workers:
  run-recruitment-analysis:
    enabled: true
    omit_profiles: true
`))
	require.NoError(t, err)
	assert.True(t, cfg.Workers["run-recruitment-analysis"].OmitProfiles)
}

func TestLoadFromFile_PolicyOverlay(t *testing.T) {
	cfg, err := LoadFromFile(writeConfig(t, minimalConfig+`
policy:
  version: "2024.2"
  pipeline:
    concurrency: 4
    member_timeout: 2s
  workload:
    weekly_window: 168h
`))
	require.NoError(t, err)

	p, err := ResolvePolicy(cfg)
	require.NoError(t, err)
	assert.Equal(t, "2024.2", p.Version)
	assert.Equal(t, 4, p.Pipeline.Concurrency)
	assert.Equal(t, 2*time.Second, p.Pipeline.MemberTimeout)
	assert.Equal(t, 7*24*time.Hour, p.Workload.WeeklyWindow)
	// untouched fields keep their defaults
	assert.Equal(t, policy.Default().Scoring, p.Scoring)
	assert.Equal(t, policy.Default().Pipeline.DonationWindow, p.Pipeline.DonationWindow)
}

func TestLoadFromFile_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{
			name:    "missing postgres host",
			body:    "database:\n  postgres:\n    database: church\n    user: engine\n",
			wantErr: "database.postgres.host is required",
		},
		{
			name:    "bad policy",
			body:    minimalConfig + "policy:\n  pipeline:\n    concurrency: 0\n",
			wantErr: "policy",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromFile(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadFromFile_MissingFile(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestWorkerHelpers(t *testing.T) {
	cfg := &Config{Workers: map[string]WorkerConfig{"off": {Enabled: false}}}

	assert.False(t, IsWorkerEnabled(cfg, "off"))
	assert.True(t, IsWorkerEnabled(cfg, "unknown"))
	assert.Equal(t, 3, GetWorkerConfig(cfg, "unknown").MaxRetries)
}

func TestPostgresDSN(t *testing.T) {
	p := PostgresConfig{Host: "db", Port: 5432, User: "u", Password: "p", Database: "d", SSLMode: "require"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=d sslmode=require", p.GetDSN())
}
