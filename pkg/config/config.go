// Package config loads application configuration from environment
// variables with an optional YAML file overlay. Environment variables win
// over file values so deployments can override a checked-in config.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Provisioner modes selectable via configuration.
const (
	ProvisionerLocal  = "local"
	ProvisionerRemote = "remote"
)

// LLM holds credentials and model selection for the automation agent.
type LLM struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
}

// Remote configures the hosted browser provisioning API client.
type Remote struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
}

// Local configures the playwright-backed provisioner.
type Local struct {
	// DataDir is where profiles and session scratch state live.
	// Defaults to ~/.profiles-demo.
	DataDir string `yaml:"data_dir"`

	// LiveViewAddr is the listen address for the live-view CDP proxy.
	LiveViewAddr string `yaml:"live_view_addr"`

	// MaxSessions caps concurrently open sessions.
	MaxSessions int `yaml:"max_sessions"`

	Headless bool `yaml:"headless"`
}

// Config is the full application configuration.
type Config struct {
	// Provisioner selects "local" or "remote".
	Provisioner string `yaml:"provisioner"`

	// ServerAddr is the listen address for the action HTTP server.
	ServerAddr string `yaml:"server_addr"`

	LLM    LLM    `yaml:"llm"`
	Remote Remote `yaml:"remote"`
	Local  Local  `yaml:"local"`
}

// Default returns the configuration defaults applied before file and
// environment values.
func Default() *Config {
	return &Config{
		Provisioner: ProvisionerLocal,
		ServerAddr:  ":8080",
		LLM: LLM{
			Model: "gpt-4o",
		},
		Local: Local{
			LiveViewAddr: "127.0.0.1:9223",
			MaxSessions:  10,
			Headless:     true,
		},
	}
}

// Load builds a Config from defaults, an optional YAML file, and the
// environment, in that precedence order. path may be empty.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	setString(&c.Provisioner, "PROVISIONER")
	setString(&c.ServerAddr, "ACTIONS_ADDR")

	setString(&c.LLM.APIKey, "OPENAI_API_KEY")
	setString(&c.LLM.BaseURL, "OPENAI_BASE_URL")
	setString(&c.LLM.Model, "OPENAI_MODEL")

	setString(&c.Remote.BaseURL, "PROVISIONER_BASE_URL")
	setString(&c.Remote.APIKey, "PROVISIONER_API_KEY")

	setString(&c.Local.DataDir, "PROFILES_DATA_DIR")
	setString(&c.Local.LiveViewAddr, "LIVE_VIEW_ADDR")
	setInt(&c.Local.MaxSessions, "MAX_SESSIONS")
	setBool(&c.Local.Headless, "BROWSER_HEADLESS")
}

// Validate checks cross-field consistency. The LLM API key is deliberately
// not required here: only the task execution operation needs it, and that
// precondition is enforced at the operation boundary.
func (c *Config) Validate() error {
	switch c.Provisioner {
	case ProvisionerLocal, ProvisionerRemote:
	default:
		return fmt.Errorf("invalid provisioner %q (want %q or %q)", c.Provisioner, ProvisionerLocal, ProvisionerRemote)
	}

	if c.Provisioner == ProvisionerRemote && c.Remote.BaseURL == "" {
		return fmt.Errorf("remote provisioner requires PROVISIONER_BASE_URL")
	}

	if c.Local.MaxSessions < 1 {
		return fmt.Errorf("max_sessions must be at least 1")
	}

	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}
