package runcmd

import "github.com/ZacheryGlass/scriptdeck/internal/engine"

const (
	exitCodeSuccess    = 0
	exitCodeRunFailed  = 1
	exitCodeBadRequest = 2
	exitCodeTimedOut   = 3
)

type runExitError struct {
	code int
	msg  string
}

func (e runExitError) Error() string { return e.msg }
func (e runExitError) ExitCode() int { return e.code }

// evaluateRunExit maps a result onto the process exit code. Bad requests
// (unrunnable script, invalid arguments) are distinguishable from script
// failures, and timeouts from both.
func evaluateRunExit(res engine.Result) error {
	if res.Succeeded {
		return nil
	}
	switch res.Kind {
	case engine.KindAnalysisFailure, engine.KindValidationFailure:
		return runExitError{code: exitCodeBadRequest, msg: res.Message}
	case engine.KindTimeout:
		return runExitError{code: exitCodeTimedOut, msg: res.Message}
	default:
		return runExitError{code: exitCodeRunFailed, msg: res.Message}
	}
}
