package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/ZacheryGlass/scriptdeck/internal/engine"
	"github.com/ZacheryGlass/scriptdeck/internal/history"
	"github.com/ZacheryGlass/scriptdeck/internal/registry"
)

// ListScripts returns a handler that rescans the directory and lists every
// script the registry knows about.
func ListScripts(deps *Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		snap, err := deps.Registry.Refresh(ctx)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to scan scripts: %s", err)), nil
		}
		all := snap.All()
		if len(all) == 0 {
			return mcp.NewToolResultText(fmt.Sprintf("No scripts found in %s.", deps.Registry.Dir())), nil
		}

		var sb strings.Builder
		fmt.Fprintf(&sb, "Scripts (%d found)\n\n", len(all))
		for _, d := range all {
			fmt.Fprintf(&sb, "- %s (%s)", d.Info.DisplayName, d.Name)
			switch {
			case d.Disabled:
				sb.WriteString(" [disabled]")
			case !d.Info.Executable():
				fmt.Fprintf(&sb, " [broken: %s]", firstLine(d.Info.Err))
			default:
				fmt.Fprintf(&sb, " strategy=%s", d.Info.Strategy)
				if len(d.Info.Parameters) > 0 {
					names := make([]string, 0, len(d.Info.Parameters))
					for _, p := range d.Info.Parameters {
						names = append(names, p.Name)
					}
					fmt.Fprintf(&sb, " params=%s", strings.Join(names, ","))
				}
			}
			sb.WriteString("\n")
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

// DescribeScript returns a handler that renders one script's contract as
// JSON.
func DescribeScript(deps *Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := req.GetArguments()
		name, _ := args["name"].(string)
		if name == "" {
			return mcp.NewToolResultError("name is required"), nil
		}
		d, ok := lookupScript(ctx, deps.Registry, name)
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("Script not found: %s", name)), nil
		}
		out, err := json.MarshalIndent(d, "", "  ")
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to encode script info: %s", err)), nil
		}
		return mcp.NewToolResultText(string(out)), nil
	}
}

// RunScript returns a handler that executes one script and reports the
// normalized result as JSON.
func RunScript(deps *Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := req.GetArguments()
		name, _ := args["name"].(string)
		if name == "" {
			return mcp.NewToolResultError("name is required"), nil
		}
		d, ok := lookupScript(ctx, deps.Registry, name)
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("Script not found: %s", name)), nil
		}
		if d.Disabled {
			return mcp.NewToolResultError(fmt.Sprintf("Script is disabled: %s", d.Name)), nil
		}

		scriptArgs, _ := args["args"].(map[string]any)
		var timeout time.Duration
		if secs, ok := args["timeout_seconds"].(float64); ok && secs > 0 {
			timeout = time.Duration(secs * float64(time.Second))
		}

		res := deps.Engine.Execute(ctx, engine.Request{
			Path:    d.Info.Path,
			Args:    scriptArgs,
			Timeout: timeout,
		})
		recordResult(ctx, deps, d.Name, d.Info.Path, res)

		out, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to encode result: %s", err)), nil
		}
		if !res.Succeeded {
			return mcp.NewToolResultError(string(out)), nil
		}
		return mcp.NewToolResultText(string(out)), nil
	}
}

// ExecutionHistory returns a handler that lists recent executions.
func ExecutionHistory(deps *Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if deps.History == nil {
			return mcp.NewToolResultError("History recording is disabled."), nil
		}
		args := req.GetArguments()
		script, _ := args["script"].(string)
		limit := 0
		if n, ok := args["limit"].(float64); ok && n > 0 {
			limit = int(n)
		}
		entries, err := deps.History.Recent(ctx, script, limit)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to read history: %s", err)), nil
		}
		if len(entries) == 0 {
			return mcp.NewToolResultText("No executions recorded yet."), nil
		}
		out, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to encode history: %s", err)), nil
		}
		return mcp.NewToolResultText(string(out)), nil
	}
}

// lookupScript resolves a name against the current snapshot, refreshing
// once when the snapshot is empty or stale.
func lookupScript(ctx context.Context, reg *registry.Registry, name string) (registry.Descriptor, bool) {
	if d, ok := reg.Snapshot().Lookup(name); ok {
		return d, true
	}
	snap, err := reg.Refresh(ctx)
	if err != nil {
		return registry.Descriptor{}, false
	}
	return snap.Lookup(name)
}

func recordResult(ctx context.Context, deps *Deps, name, path string, res engine.Result) {
	if deps.History == nil {
		return
	}
	_, err := deps.History.Record(ctx, history.Entry{
		Script:     name,
		Path:       path,
		Strategy:   string(res.Strategy),
		Kind:       string(res.Kind),
		Succeeded:  res.Succeeded,
		Message:    res.Message,
		ExitCode:   res.ExitCode,
		DurationMs: res.Duration.Milliseconds(),
		StartedAt:  time.Now().Add(-res.Duration),
	})
	if err != nil {
		log := deps.Logger
		if log == nil {
			log = slog.Default()
		}
		log.Warn("failed to record execution", "script", name, "error", err)
	}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
