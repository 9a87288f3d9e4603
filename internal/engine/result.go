package engine

import (
	"time"

	"github.com/ZacheryGlass/scriptdeck/internal/analyzer"
)

// Kind classifies an execution outcome.
type Kind string

const (
	KindSuccess           Kind = "success"
	KindAnalysisFailure   Kind = "analysis-failure"
	KindValidationFailure Kind = "validation-failure"
	KindTimeout           Kind = "timeout"
	KindRuntimeFailure    Kind = "runtime-failure"
	// KindMalformedOutput marks a structured payload that was present but
	// unparseable. It is a runtime failure with the parse error captured.
	KindMalformedOutput Kind = "malformed-output"
)

// Result is the canonical outcome of one execution attempt. Message is
// always populated and suitable for direct display, whatever the script
// did or didn't do.
type Result struct {
	Succeeded bool   `json:"succeeded"`
	Kind      Kind   `json:"kind"`
	Message   string `json:"message"`

	// Stdout and Stderr hold the captured (trimmed, size-capped) streams.
	// On an exception path Stderr carries the full traceback.
	Stdout string `json:"stdout,omitempty"`
	Stderr string `json:"stderr,omitempty"`

	// ExitCode is set for the command-line and module-exec strategies.
	ExitCode *int `json:"exit_code,omitempty"`

	// Data holds the fields of the script's structured payload, when one
	// was emitted.
	Data map[string]any `json:"data,omitempty"`

	Strategy analyzer.Strategy `json:"strategy,omitempty"`
	Duration time.Duration     `json:"duration,omitempty"`
}
