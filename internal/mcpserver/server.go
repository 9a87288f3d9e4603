// Package mcpserver exposes the script registry and engine as MCP tools
// over stdio.
package mcpserver

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/ZacheryGlass/scriptdeck/internal/engine"
	"github.com/ZacheryGlass/scriptdeck/internal/history"
	"github.com/ZacheryGlass/scriptdeck/internal/registry"
)

// Deps holds shared dependencies injected into the tool handlers.
type Deps struct {
	Registry *registry.Registry
	Engine   *engine.Engine
	// History may be nil when recording is disabled.
	History *history.Store
	Logger  *slog.Logger
	Version string
}

// NewServer creates and configures the MCP server with all tools
// registered.
func NewServer(deps *Deps) *server.MCPServer {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	s := server.NewMCPServer(
		"ScriptDeck",
		deps.Version,
		server.WithToolCapabilities(true),
		server.WithLogging(),
	)

	registerTools(s, deps)

	return s
}

// Serve runs the server over stdin/stdout until the client disconnects.
func Serve(s *server.MCPServer) error {
	return server.ServeStdio(s)
}

func registerTools(s *server.MCPServer, deps *Deps) {
	s.AddTool(mcp.NewTool("list_scripts",
		mcp.WithDescription("List the scripts available for execution, with their display names and execution strategies."),
	), ListScripts(deps))

	s.AddTool(mcp.NewTool("describe_script",
		mcp.WithDescription("Show a script's parameters, entry point and execution strategy."),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Script file name, with or without the .py suffix."),
		),
	), DescribeScript(deps))

	s.AddTool(mcp.NewTool("run_script",
		mcp.WithDescription("Execute a script by name and return its normalized result."),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Script file name, with or without the .py suffix."),
		),
		mcp.WithObject("args",
			mcp.Description("Argument values keyed by parameter name."),
		),
		mcp.WithNumber("timeout_seconds",
			mcp.Description("Per-run timeout override in seconds."),
		),
	), RunScript(deps))

	s.AddTool(mcp.NewTool("execution_history",
		mcp.WithDescription("Show recent executions, newest first."),
		mcp.WithString("script",
			mcp.Description("Limit to one script's history."),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of entries, default 20."),
		),
	), ExecutionHistory(deps))
}
