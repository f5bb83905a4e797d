package config

import (
	"testing"

	"bitrise-mcp/src/bitrise"
)

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("BITRISE_TOKEN", "token-from-env")
	t.Setenv("BITRISE_API_BASE", "https://api.example.com/v0.1")

	cfg := LoadFromEnv()
	if cfg.APIToken != "token-from-env" {
		t.Errorf("APIToken = %q", cfg.APIToken)
	}
	if cfg.BaseURL != "https://api.example.com/v0.1" {
		t.Errorf("BaseURL = %q", cfg.BaseURL)
	}
}

func TestLoadFromEnvDefaults(t *testing.T) {
	t.Setenv("BITRISE_TOKEN", "")
	t.Setenv("BITRISE_API_BASE", "")

	cfg := LoadFromEnv()
	if cfg.BaseURL != bitrise.DefaultBaseURL {
		t.Errorf("BaseURL = %q, expected the default API base", cfg.BaseURL)
	}
	if cfg.APIToken != "" {
		t.Errorf("APIToken = %q, expected empty", cfg.APIToken)
	}
}

func TestRequireToken(t *testing.T) {
	cfg := &Config{APIToken: "t"}
	if err := cfg.RequireToken(); err != nil {
		t.Errorf("RequireToken with token returned %v", err)
	}

	cfg = &Config{}
	if err := cfg.RequireToken(); err == nil {
		t.Error("RequireToken accepted an empty token")
	}
}
