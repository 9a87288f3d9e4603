package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ZacheryGlass/scriptdeck/internal/analyzer"
)

// runCommandLine executes the script as its own process with rendered
// command line flags, the way a user would invoke it from a shell.
func (e *Engine) runCommandLine(ctx context.Context, info analyzer.ScriptInfo, args map[string]any, timeout time.Duration) Result {
	argv := append([]string{info.Path}, renderCommandArgs(info.Parameters, args)...)
	out := e.runPython(ctx, argv, timeout)
	if res, done := e.checkOutcome(out, info, timeout); done {
		return res
	}
	exit := out.exitCode
	res := Result{
		Stdout:   out.stdout,
		Stderr:   out.stderr,
		ExitCode: &exit,
		Strategy: info.Strategy,
	}
	normalizeProcess(&res, exit == 0)
	return res
}

// runEntryCall loads the script in a fresh interpreter and calls its entry
// function with the validated arguments as keyword arguments.
func (e *Engine) runEntryCall(ctx context.Context, info analyzer.ScriptInfo, args map[string]any, timeout time.Duration) Result {
	kwargs, err := json.Marshal(args)
	if err != nil {
		return Result{
			Kind:     KindRuntimeFailure,
			Message:  fmt.Sprintf("cannot encode arguments: %v", err),
			Strategy: info.Strategy,
		}
	}
	argv := []string{"-c", entryCallBootstrap, info.Path, string(kwargs), info.EntryPoint}
	out := e.runPython(ctx, argv, timeout)
	if res, done := e.checkOutcome(out, info, timeout); done {
		return res
	}
	report, cleaned, found := extractReport(out.stdout)
	res := Result{
		Stdout:   cleaned,
		Stderr:   out.stderr,
		Strategy: info.Strategy,
	}
	if !found {
		res.Succeeded = false
		res.Kind = KindRuntimeFailure
		res.Message = "script produced no result"
		if summary := exceptionSummary(out.stderr); summary != "" {
			res.Message = summary
		}
		return res
	}
	normalizeEntryReport(&res, report)
	return res
}

// runModuleExec executes the script top to bottom under the __main__ run
// name with the rendered flags on sys.argv.
func (e *Engine) runModuleExec(ctx context.Context, info analyzer.ScriptInfo, args map[string]any, timeout time.Duration) Result {
	rendered, err := json.Marshal(renderCommandArgs(info.Parameters, args))
	if err != nil {
		return Result{
			Kind:     KindRuntimeFailure,
			Message:  fmt.Sprintf("cannot encode arguments: %v", err),
			Strategy: info.Strategy,
		}
	}
	argv := []string{"-c", moduleExecBootstrap, info.Path, string(rendered)}
	out := e.runPython(ctx, argv, timeout)
	if res, done := e.checkOutcome(out, info, timeout); done {
		return res
	}
	report, cleaned, found := extractReport(out.stdout)
	res := Result{
		Stdout:   cleaned,
		Stderr:   out.stderr,
		Strategy: info.Strategy,
	}
	if !found {
		res.Succeeded = false
		res.Kind = KindRuntimeFailure
		res.Message = "script produced no result"
		if summary := exceptionSummary(out.stderr); summary != "" {
			res.Message = summary
		}
		return res
	}
	normalizeModuleReport(&res, report)
	return res
}

// checkOutcome maps start failures, timeouts and cancellation to terminal
// results shared by all strategies.
func (e *Engine) checkOutcome(out runOutcome, info analyzer.ScriptInfo, timeout time.Duration) (Result, bool) {
	if out.startErr != "" {
		return Result{
			Kind:     KindRuntimeFailure,
			Message:  out.startErr,
			Strategy: info.Strategy,
		}, true
	}
	if out.timedOut || out.canceled {
		msg := fmt.Sprintf("Script execution timed out (%s)", timeout)
		if out.canceled {
			msg = "Script execution canceled"
		}
		return Result{
			Kind:     KindTimeout,
			Message:  msg,
			Stdout:   out.stdout,
			Stderr:   out.stderr,
			Strategy: info.Strategy,
		}, true
	}
	return Result{}, false
}

// renderCommandArgs turns validated arguments into command line tokens in
// declared parameter order. Booleans become bare flags when true and are
// omitted when false; empty strings are skipped.
func renderCommandArgs(params []analyzer.Parameter, args map[string]any) []string {
	tokens := make([]string, 0, 2*len(args))
	for _, p := range params {
		value, ok := args[p.Name]
		if !ok || value == nil {
			continue
		}
		if p.Kind == analyzer.KindBool {
			if b, isBool := value.(bool); isBool && b {
				tokens = append(tokens, "--"+p.Name)
			}
			continue
		}
		text := fmt.Sprint(value)
		if text == "" {
			continue
		}
		tokens = append(tokens, "--"+p.Name, text)
	}
	return tokens
}
