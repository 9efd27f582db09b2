package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, "8080", cfg.Port)
	assert.NotEmpty(t, cfg.Teams.AuthURL)
	assert.Empty(t, cfg.Teams.ClientID, "integration is off until configured")
}

func TestLoadYAMLFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "desk.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
port: "9090"
session_secret: "a-long-enough-secret-value"
teams:
  client_id: "desk-client"
  redirect_url: "http://localhost:9090/api/integrations/teams/callback"
`), 0o600))
	t.Setenv("DESK_CONFIG", path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "desk-client", cfg.Teams.ClientID)
}

func TestLoadEnvWinsOverFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "desk.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`port: "9090"`), 0o600))
	t.Setenv("DESK_CONFIG", path)
	t.Setenv("API_PORT", "7070")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "7070", cfg.Port)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Setenv("SESSION_SECRET", "short")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestLoadRejectsUnparseableFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "desk.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: [not"), 0o600))
	t.Setenv("DESK_CONFIG", path)

	_, err := Load()
	assert.Error(t, err)
}
