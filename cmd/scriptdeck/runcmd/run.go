package runcmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ZacheryGlass/scriptdeck/internal/app"
	"github.com/ZacheryGlass/scriptdeck/internal/engine"
	"github.com/ZacheryGlass/scriptdeck/internal/history"
)

var (
	cfgPath     string
	argFlags    []string
	flagTimeout time.Duration
)

// Cmd represents the `scriptdeck run` command.
var Cmd = &cobra.Command{
	Use:           "run <script>",
	Short:         "Run a script and print its result as a single JSON line",
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.Load(cfgPath)
		if err != nil {
			return err
		}
		defer func() { _ = a.Close() }()

		ctx := cmd.Context()
		snap, err := a.Registry.Refresh(ctx)
		if err != nil {
			return err
		}
		d, ok := snap.Lookup(args[0])
		if !ok {
			return fmt.Errorf("script not found: %s", args[0])
		}
		if d.Disabled {
			return fmt.Errorf("script is disabled: %s", d.Name)
		}

		scriptArgs, err := parseArgFlags(argFlags)
		if err != nil {
			return err
		}

		res := a.Engine.Execute(ctx, engine.Request{
			Path:    d.Info.Path,
			Args:    scriptArgs,
			Timeout: flagTimeout,
		})
		if a.History != nil {
			_, err := a.History.Record(ctx, history.Entry{
				Script:     d.Name,
				Path:       d.Info.Path,
				Strategy:   string(res.Strategy),
				Kind:       string(res.Kind),
				Succeeded:  res.Succeeded,
				Message:    res.Message,
				ExitCode:   res.ExitCode,
				DurationMs: res.Duration.Milliseconds(),
				StartedAt:  time.Now().Add(-res.Duration),
			})
			if err != nil {
				a.Logger.Warn("failed to record execution", "script", d.Name, "error", err)
			}
		}

		// The result is always a single JSON line on stdout, success or not.
		line, err := json.Marshal(res)
		if err != nil {
			return err
		}
		fmt.Fprintln(os.Stdout, string(line))
		return evaluateRunExit(res)
	},
}

// parseArgFlags turns repeated --arg name=value flags into a value map.
func parseArgFlags(flags []string) (map[string]any, error) {
	if len(flags) == 0 {
		return nil, nil
	}
	out := make(map[string]any, len(flags))
	for _, f := range flags {
		name, value, ok := strings.Cut(f, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid --arg %q, expected name=value", f)
		}
		out[name] = value
	}
	return out, nil
}

func init() {
	Cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "Path to config file (.yaml)")
	Cmd.Flags().StringArrayVarP(&argFlags, "arg", "a", nil, "Script argument as name=value (repeatable)")
	Cmd.Flags().DurationVar(&flagTimeout, "timeout", 0, "Override the execution timeout")
}
