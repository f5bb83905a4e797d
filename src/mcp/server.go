// Package mcp exposes the Bitrise tool catalog over the Model Context
// Protocol: it registers the resolved tool set with the MCP runtime and
// dispatches tool calls to the Bitrise API.
package mcp

import (
	"context"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	mcpsrv "github.com/mark3labs/mcp-go/server"

	"bitrise-mcp/src/bitrise"
	"bitrise-mcp/src/config"
	"bitrise-mcp/src/logger"
	"bitrise-mcp/src/registry"
	"bitrise-mcp/src/stream"
)

const (
	serverName    = "bitrise"
	serverVersion = "1.0.0"
)

// Server wraps the MCP server and the dispatcher over the active tool set.
type Server struct {
	mcp        *mcpsrv.MCPServer
	dispatcher *Dispatcher
	logger     logger.Logger
}

// New constructs a server for the given configuration. The active tool set
// is computed once here; configuration problems (unknown API group, missing
// token with tools enabled) fail before anything is registered.
func New(cfg *config.Config, lg logger.Logger) (*Server, error) {
	if lg == nil {
		lg = logger.NewConsoleLogger()
	}

	active, err := registry.Resolve(registry.Catalog(), cfg.EnabledGroups)
	if err != nil {
		return nil, err
	}
	if len(active) > 0 {
		if err := cfg.RequireToken(); err != nil {
			return nil, err
		}
	}

	client := bitrise.NewClient(cfg.APIToken, bitrise.WithBaseURL(cfg.BaseURL))
	dispatcher := NewDispatcher(client, active)
	registerHooks(dispatcher, client, lg)

	mcpServer := mcpsrv.NewMCPServer(
		serverName,
		serverVersion,
		mcpsrv.WithToolCapabilities(true),
		mcpsrv.WithInstructions(
			"You are connected to a Bitrise MCP server. Tools map one-to-one onto "+
				"Bitrise v0.1 API endpoints for apps, builds, artifacts, webhooks, "+
				"cache items, pipelines, group roles, workspaces and the account. "+
				"Listing tools are paginated; pass the next cursor argument to fetch "+
				"further pages."),
	)

	s := &Server{
		mcp:        mcpServer,
		dispatcher: dispatcher,
		logger:     lg,
	}
	for _, desc := range active {
		mcpServer.AddTool(toolFromDescriptor(desc), s.handlerFor(desc.Name))
	}
	return s, nil
}

// Run serves MCP over stdin/stdout until the client disconnects.
func (s *Server) Run() error {
	s.logger.Info("bitrise MCP server listening on stdio (%d tools)", len(s.dispatcher.Active()))
	return mcpsrv.ServeStdio(s.mcp)
}

// ActiveTools returns the descriptors registered with the runtime, in
// catalog order.
func (s *Server) ActiveTools() []registry.ToolDescriptor {
	return s.dispatcher.Active()
}

// Dispatcher exposes the underlying dispatcher.
func (s *Server) Dispatcher() *Dispatcher {
	return s.dispatcher
}

// handlerFor builds the generic tool handler: every call goes through the
// dispatcher, and every dispatcher error comes back as a structured tool
// error rather than a protocol failure.
func (s *Server) handlerFor(name string) mcpsrv.ToolHandlerFunc {
	return func(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		args := req.GetArguments()
		if args == nil {
			args = map[string]any{}
		}
		ctx = stream.WithReporter(ctx, s.reporterFor(ctx, req))

		out, err := s.dispatcher.Invoke(ctx, name, args)
		if err != nil {
			s.logger.Debug("tool %s failed: %v", name, err)
			return mcplib.NewToolResultError(err.Error()), nil
		}
		return mcplib.NewToolResultText(out), nil
	}
}

// reporterFor wires build-monitor progress to MCP progress notifications
// when the caller supplied a progress token, falling back to the log.
func (s *Server) reporterFor(ctx context.Context, req mcplib.CallToolRequest) stream.Reporter {
	var token mcplib.ProgressToken
	if req.Params.Meta != nil {
		token = req.Params.Meta.ProgressToken
	}
	srv := mcpsrv.ServerFromContext(ctx)
	if srv == nil || token == nil {
		return stream.ReporterFunc(func(_ context.Context, _ float64, msg string) {
			s.logger.Info("%s", msg)
		})
	}
	return stream.ReporterFunc(func(ctx context.Context, progress float64, msg string) {
		err := srv.SendNotificationToClient(ctx, "notifications/progress", map[string]any{
			"progressToken": token,
			"progress":      progress,
			"total":         1.0,
			"message":       msg,
		})
		if err != nil {
			s.logger.Debug("progress notification failed: %v", err)
		}
	})
}

// toolFromDescriptor converts a registry descriptor into an MCP tool
// declaration with the equivalent JSON schema.
func toolFromDescriptor(d registry.ToolDescriptor) mcplib.Tool {
	opts := []mcplib.ToolOption{mcplib.WithDescription(d.Description)}
	if d.ReadOnly {
		opts = append(opts, mcplib.WithReadOnlyHintAnnotation(true))
	}

	for _, p := range d.Params {
		var prop []mcplib.PropertyOption
		if p.Description != "" {
			prop = append(prop, mcplib.Description(p.Description))
		}
		if p.Required {
			prop = append(prop, mcplib.Required())
		}

		switch p.Type {
		case registry.TypeString:
			if def, ok := p.Default.(string); ok {
				prop = append(prop, mcplib.DefaultString(def))
			}
			opts = append(opts, mcplib.WithString(p.Name, prop...))
		case registry.TypeEnum:
			prop = append(prop, mcplib.Enum(p.Enum...))
			opts = append(opts, mcplib.WithString(p.Name, prop...))
		case registry.TypeInteger:
			opts = append(opts, mcplib.WithNumber(p.Name, prop...))
		case registry.TypeBoolean:
			opts = append(opts, mcplib.WithBoolean(p.Name, prop...))
		case registry.TypeStringList:
			prop = append(prop, mcplib.Items(map[string]any{"type": "string"}))
			opts = append(opts, mcplib.WithArray(p.Name, prop...))
		case registry.TypeObject:
			opts = append(opts, mcplib.WithObject(p.Name, prop...))
		}
	}
	return mcplib.NewTool(d.Name, opts...)
}
