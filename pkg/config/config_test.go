package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, ProvisionerLocal, cfg.Provisioner)
	assert.Equal(t, ":8080", cfg.ServerAddr)
	assert.Equal(t, "gpt-4o", cfg.LLM.Model)
	assert.Equal(t, 10, cfg.Local.MaxSessions)
	assert.True(t, cfg.Local.Headless)
}

func TestLoadEmptyPath(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ProvisionerLocal, cfg.Provisioner)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	assert.Error(t, err)
}

func TestLoadYAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
provisioner: remote
server_addr: ":9090"
llm:
  model: gpt-4o-mini
remote:
  base_url: https://provisioner.example.com
  api_key: secret
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ProvisionerRemote, cfg.Provisioner)
	assert.Equal(t, ":9090", cfg.ServerAddr)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	assert.Equal(t, "https://provisioner.example.com", cfg.Remote.BaseURL)
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("llm:\n  model: from-file\n"), 0600))

	t.Setenv("OPENAI_MODEL", "from-env")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.LLM.Model)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "defaults are valid",
			mutate: func(c *Config) {},
		},
		{
			name:    "unknown provisioner",
			mutate:  func(c *Config) { c.Provisioner = "cloud" },
			wantErr: "invalid provisioner",
		},
		{
			name:    "remote without base url",
			mutate:  func(c *Config) { c.Provisioner = ProvisionerRemote },
			wantErr: "PROVISIONER_BASE_URL",
		},
		{
			name:    "zero max sessions",
			mutate:  func(c *Config) { c.Local.MaxSessions = 0 },
			wantErr: "max_sessions",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}
