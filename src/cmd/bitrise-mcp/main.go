// Package main provides the Bitrise MCP server entry point. The server
// speaks the Model Context Protocol over stdin/stdout and maps tool calls
// onto the Bitrise v0.1 API.
package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"bitrise-mcp/src/config"
	"bitrise-mcp/src/logger"
	"bitrise-mcp/src/mcp"
	"bitrise-mcp/src/registry"
)

var (
	enabledGroups string
	apiBaseURL    string
)

var rootCmd = &cobra.Command{
	Use:   "bitrise-mcp",
	Short: "MCP server for the Bitrise API",
	Long: `bitrise-mcp exposes the Bitrise v0.1 API as Model Context Protocol
tools over stdio. Authentication uses a personal access token read from
the BITRISE_TOKEN environment variable.

The registered tool set can be narrowed with --enabled-api-groups, a
comma-separated list of API group names (apps, builds, workspaces,
webhooks, build-artifacts, group-roles, cache-items, pipelines, account)
plus the special selector "read-only". An empty list enables every tool.`,
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	rootCmd.Flags().StringVar(&enabledGroups, "enabled-api-groups", "",
		"comma-separated API groups to enable (empty enables all)")
	rootCmd.Flags().StringVar(&apiBaseURL, "api-base-url", "",
		"override the Bitrise API base URL (default from BITRISE_API_BASE)")
}

func run(cmd *cobra.Command, args []string) error {
	// Best effort; a missing .env file is not an error.
	_ = godotenv.Load()

	cfg := config.LoadFromEnv()
	cfg.EnabledGroups = splitGroups(enabledGroups)
	if apiBaseURL != "" {
		cfg.BaseURL = apiBaseURL
	}

	lg := logger.NewConsoleLogger()
	if len(cfg.EnabledGroups) > 0 {
		lg.Info("enabled API groups: %s", strings.Join(cfg.EnabledGroups, ", "))
	} else {
		lg.Info("all API groups enabled")
	}

	server, err := mcp.New(cfg, lg)
	if err != nil {
		var unknown *registry.UnknownGroupError
		if errors.As(err, &unknown) {
			return fmt.Errorf("invalid --enabled-api-groups: %w", err)
		}
		return err
	}
	return server.Run()
}

// splitGroups parses the flag value into trimmed, non-empty group names.
func splitGroups(s string) []string {
	var groups []string
	for _, part := range strings.Split(s, ",") {
		if name := strings.TrimSpace(part); name != "" {
			groups = append(groups, name)
		}
	}
	return groups
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
