// Package engine runs one script to completion and produces a normalized
// Result.
//
// The engine analyzes the script, validates the supplied arguments against
// its declared parameters, dispatches to the strategy the analyzer chose,
// and normalizes whatever happened into a Result. Every strategy executes
// the script through a CPython child process in its own process group, so
// a timeout always terminates the whole process tree; the entry-call and
// module-exec strategies wrap the script in a small constant bootstrap that
// reports the outcome on a marker line.
//
// Execute never returns a Go error and never lets a script failure
// propagate: every outcome, including unparseable sources and bad
// arguments, is encoded in the Result.
package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/ZacheryGlass/scriptdeck/internal/analyzer"
)

// Default option values.
const (
	DefaultPython          = "python3"
	DefaultTimeout         = 30 * time.Second
	DefaultCaptureMaxBytes = 1 << 20
	DefaultTermGrace       = 2 * time.Second
)

// Options configures an Engine. The zero value is usable; unset fields
// take the defaults above.
type Options struct {
	// Python is the interpreter executable, resolved on PATH if relative.
	Python string

	// DefaultTimeout applies when a Request carries no timeout.
	DefaultTimeout time.Duration

	// CaptureMaxBytes caps each captured stream; zero means DefaultCaptureMaxBytes.
	CaptureMaxBytes int

	// TermGrace is how long a timed-out process gets between SIGTERM and
	// SIGKILL.
	TermGrace time.Duration

	Logger *slog.Logger
}

func (o *Options) applyDefaults() {
	if o.Python == "" {
		o.Python = DefaultPython
	}
	if o.DefaultTimeout <= 0 {
		o.DefaultTimeout = DefaultTimeout
	}
	if o.CaptureMaxBytes <= 0 {
		o.CaptureMaxBytes = DefaultCaptureMaxBytes
	}
	if o.TermGrace <= 0 {
		o.TermGrace = DefaultTermGrace
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
}

// Request describes one execution attempt.
type Request struct {
	// Path is the script file to run.
	Path string

	// Args maps parameter names to values. Values are coerced toward the
	// declared parameter kinds before anything is started.
	Args map[string]any

	// Timeout overrides the engine default when positive.
	Timeout time.Duration
}

// Engine executes scripts. It is safe for concurrent use; each call is an
// independent, exactly-once attempt with no shared state.
type Engine struct {
	opts Options
	log  *slog.Logger
}

// New creates an Engine with the given options.
func New(opts Options) *Engine {
	opts.applyDefaults()
	return &Engine{opts: opts, log: opts.Logger}
}

// Analyze classifies the script at path without executing it. Exposed so
// callers can render parameter inputs before running.
func (e *Engine) Analyze(path string) analyzer.ScriptInfo {
	return analyzer.Analyze(path)
}

// Execute runs one script and returns its normalized Result.
func (e *Engine) Execute(ctx context.Context, req Request) Result {
	start := time.Now()
	res := e.execute(ctx, req)
	res.Duration = time.Since(start)
	return res
}

func (e *Engine) execute(ctx context.Context, req Request) Result {
	info := analyzer.Analyze(req.Path)
	if !info.Executable() {
		return Result{
			Kind:    KindAnalysisFailure,
			Message: "script is not executable: " + firstLine(info.Err),
			Stderr:  info.Err,
		}
	}

	args, err := validateArgs(info.Parameters, req.Args)
	if err != nil {
		return Result{
			Kind:     KindValidationFailure,
			Message:  err.Error(),
			Strategy: info.Strategy,
		}
	}

	timeout := req.Timeout
	if timeout <= 0 {
		timeout = e.opts.DefaultTimeout
	}

	e.log.Debug("executing script",
		"script", info.DisplayName,
		"strategy", info.Strategy,
		"timeout", timeout)

	switch info.Strategy {
	case analyzer.StrategyCommandLine:
		return e.runCommandLine(ctx, info, args, timeout)
	case analyzer.StrategyEntryCall:
		return e.runEntryCall(ctx, info, args, timeout)
	default:
		return e.runModuleExec(ctx, info, args, timeout)
	}
}
