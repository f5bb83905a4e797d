// Package config provides configuration management for the Bitrise MCP server.
package config

import (
	"fmt"
	"os"

	"bitrise-mcp/src/bitrise"
)

// Config holds the process-wide configuration. It is built once at startup
// and never mutated afterwards.
type Config struct {
	// APIToken is the Bitrise personal access token sent on every request.
	APIToken string

	// BaseURL is the Bitrise API base URL.
	BaseURL string

	// EnabledGroups is the operator's API group selection. Empty means all
	// tools are enabled.
	EnabledGroups []string
}

// LoadFromEnv loads configuration from environment variables. A missing
// token is not an error here: whether a token is required depends on the
// resolved tool set, which is checked at server construction.
func LoadFromEnv() *Config {
	base := os.Getenv("BITRISE_API_BASE")
	if base == "" {
		base = bitrise.DefaultBaseURL
	}
	return &Config{
		APIToken: os.Getenv("BITRISE_TOKEN"),
		BaseURL:  base,
	}
}

// RequireToken returns an error if no API token is configured.
func (c *Config) RequireToken() error {
	if c.APIToken == "" {
		return fmt.Errorf("BITRISE_TOKEN environment variable is required")
	}
	return nil
}
